// Package postgres implements the registration storage contract against
// PostgreSQL using database/sql and lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/ignite/speaker-registry/internal/domain"
	"github.com/ignite/speaker-registry/internal/service/registration"
)

// SpeakerRepo implements registration.Store against PostgreSQL.
type SpeakerRepo struct{ db *sql.DB }

// NewSpeakerRepo creates a Postgres-backed speaker repository.
func NewSpeakerRepo(db *sql.DB) *SpeakerRepo { return &SpeakerRepo{db: db} }

// SaveSpeaker inserts the speaker and its sessions in one transaction. A
// speaker whose normalized email already exists is declined with a nil id.
func (r *SpeakerRepo) SaveSpeaker(ctx context.Context, s *domain.Speaker) (*int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	certs := s.Certifications
	if certs == nil {
		certs = []string{}
	}

	var (
		id        int
		createdAt time.Time
	)
	err = tx.QueryRowContext(ctx, `
		INSERT INTO speakers (first_name, last_name, email, email_normalized, experience,
			has_blog, blog_url, browser_name, browser_major_version, certifications,
			employer, registration_fee)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (email_normalized) DO NOTHING
		RETURNING id, created_at
	`,
		s.FirstName, s.LastName, s.Email, s.NormalizedEmail(), nullableInt(s.Experience),
		s.HasBlog, s.BlogURL, string(s.Browser.Name), s.Browser.MajorVersion, pq.Array(certs),
		s.Employer, s.RegistrationFee,
	).Scan(&id, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("insert speaker: %w", err)
	}

	sessionIDs := make([]int, len(s.Sessions))
	for i, sess := range s.Sessions {
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO speaker_sessions (speaker_id, position, title, description, approved)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, id, i, sess.Title, sess.Description, sess.Approved).Scan(&sessionIDs[i]); err != nil {
			return nil, fmt.Errorf("insert session %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	s.ID = id
	s.CreatedAt = createdAt
	for i := range s.Sessions {
		s.Sessions[i].ID = sessionIDs[i]
	}
	return &id, nil
}

// FindSpeaker loads a speaker and its sessions in submission order.
func (r *SpeakerRepo) FindSpeaker(ctx context.Context, id int) (*domain.Speaker, error) {
	var (
		s          domain.Speaker
		experience sql.NullInt64
		browser    string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, email, experience, has_blog, blog_url,
			browser_name, browser_major_version, certifications, employer,
			registration_fee, created_at
		FROM speakers
		WHERE id = $1
	`, id).Scan(
		&s.ID, &s.FirstName, &s.LastName, &s.Email, &experience, &s.HasBlog, &s.BlogURL,
		&browser, &s.Browser.MajorVersion, pq.Array(&s.Certifications), &s.Employer,
		&s.RegistrationFee, &s.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, registration.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get speaker: %w", err)
	}
	s.Browser.Name = domain.BrowserName(browser)
	if experience.Valid {
		v := int(experience.Int64)
		s.Experience = &v
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, description, approved
		FROM speaker_sessions
		WHERE speaker_id = $1
		ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sess domain.Session
		if err := rows.Scan(&sess.ID, &sess.Title, &sess.Description, &sess.Approved); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		s.Sessions = append(s.Sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return &s, nil
}

func nullableInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
