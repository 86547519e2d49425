package domain

import (
	"strings"
	"time"
)

// Speaker is a conference-speaker submission. It is built by the caller,
// passed once through registration, then handed to storage.
type Speaker struct {
	ID              int        `json:"id,omitempty" db:"id"`
	FirstName       string     `json:"first_name" db:"first_name"`
	LastName        string     `json:"last_name" db:"last_name"`
	Email           string     `json:"email" db:"email"`
	Experience      *int       `json:"experience" db:"experience"`
	HasBlog         bool       `json:"has_blog" db:"has_blog"`
	BlogURL         string     `json:"blog_url" db:"blog_url"`
	Browser         WebBrowser `json:"browser" db:"-"`
	Certifications  []string   `json:"certifications" db:"certifications"`
	Employer        string     `json:"employer" db:"employer"`
	Sessions        []Session  `json:"sessions" db:"-"`
	RegistrationFee int        `json:"registration_fee" db:"registration_fee"`
	CreatedAt       time.Time  `json:"created_at,omitempty" db:"created_at"`
}

// Session is a talk proposed by a speaker. Approved is decided during
// registration.
type Session struct {
	ID          int    `json:"id,omitempty" db:"id"`
	Title       string `json:"title" db:"title"`
	Description string `json:"description" db:"description"`
	Approved    bool   `json:"approved" db:"approved"`
}

// NewSession returns an unapproved session.
func NewSession(title, description string) Session {
	return Session{Title: title, Description: description}
}

// NormalizedEmail is the lowercased, trimmed email used as the uniqueness key
// by every store.
func (s *Speaker) NormalizedEmail() string {
	return strings.ToLower(strings.TrimSpace(s.Email))
}

// EmailDomain returns everything after the last '@' of the email address.
// An address without '@' is returned unchanged.
func (s *Speaker) EmailDomain() string {
	at := strings.LastIndex(s.Email, "@")
	if at < 0 {
		return s.Email
	}
	return s.Email[at+1:]
}

// FullName joins first and last name.
func (s *Speaker) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(s.FirstName) + " " + strings.TrimSpace(s.LastName))
}

// ApprovedSessions returns the sessions flagged as approved, in order.
func (s *Speaker) ApprovedSessions() []Session {
	var out []Session
	for _, sess := range s.Sessions {
		if sess.Approved {
			out = append(out, sess)
		}
	}
	return out
}

// IntPtr is a convenience for building optional integer fields.
func IntPtr(v int) *int { return &v }
