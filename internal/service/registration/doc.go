// Package registration implements speaker registration.
//
// A submission is checked for required fields, classified by reputation
// (exceptional credentials can outweigh red flags), has its sessions
// screened for off-topic content, is assigned a tiered fee, and is finally
// persisted through the Repository interface defined in repository.go.
//
// The service layer contains pure business logic. It never imports
// net/http or database/sql directly; adapters live in repository/.
package registration
