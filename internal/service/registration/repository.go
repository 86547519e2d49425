package registration

import (
	"context"

	"github.com/ignite/speaker-registry/internal/domain"
)

// Repository is the storage collaborator consumed by Register.
type Repository interface {
	// SaveSpeaker persists a validated, fee-assigned speaker and returns its
	// identifier. A nil identifier with a nil error means storage declined
	// the speaker (an address that is already registered).
	SaveSpeaker(ctx context.Context, s *domain.Speaker) (*int, error)
}

// Reader looks up previously registered speakers.
type Reader interface {
	// FindSpeaker returns ErrNotFound if no speaker has the given id.
	FindSpeaker(ctx context.Context, id int) (*domain.Speaker, error)
}

// Store is implemented by every storage adapter.
type Store interface {
	Repository
	Reader
}

// Notifier is told about each speaker that registered successfully.
type Notifier interface {
	SpeakerRegistered(ctx context.Context, id int, s *domain.Speaker) error
}
