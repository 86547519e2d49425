// Package domain defines the core business types for the speaker registry.
//
// Types in this package are value objects with no database dependencies and
// no HTTP concerns. They are the shared language between handlers, the
// registration service, and the storage adapters.
//
// Rules for this package:
//   - No imports from other internal/ packages
//   - No *sql.DB, no http.Request, no context.Context in struct fields
//   - JSON/DB tags are allowed (they're metadata, not behavior)
//   - Small pure helpers are allowed (EmailDomain, FullName, ...)
//   - Constants and enums belong here
package domain
