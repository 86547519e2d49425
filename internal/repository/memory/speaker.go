// Package memory provides an in-process speaker store. It backs the server
// when no external storage is configured and is used by handler tests.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/ignite/speaker-registry/internal/domain"
	"github.com/ignite/speaker-registry/internal/service/registration"
)

// SpeakerRepo implements registration.Store in memory. Safe for concurrent use.
type SpeakerRepo struct {
	mu       sync.RWMutex
	speakers map[int]*domain.Speaker
	byEmail  map[string]int
	nextID   int
	now      func() time.Time
}

// NewSpeakerRepo creates an empty in-memory repository.
func NewSpeakerRepo() *SpeakerRepo {
	return &SpeakerRepo{
		speakers: make(map[int]*domain.Speaker),
		byEmail:  make(map[string]int),
		now:      time.Now,
	}
}

// SaveSpeaker stores a copy of s. An email that is already registered is
// declined with a nil id.
func (r *SpeakerRepo) SaveSpeaker(_ context.Context, s *domain.Speaker) (*int, error) {
	key := s.NormalizedEmail()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[key]; exists {
		return nil, nil
	}

	r.nextID++
	id := r.nextID
	cp := copySpeaker(s)
	cp.ID = id
	cp.CreatedAt = r.now().UTC()
	for i := range cp.Sessions {
		cp.Sessions[i].ID = i + 1
		s.Sessions[i].ID = i + 1
	}
	r.speakers[id] = cp
	r.byEmail[key] = id

	s.ID = id
	s.CreatedAt = cp.CreatedAt
	return &id, nil
}

// FindSpeaker returns a copy of the stored speaker.
func (r *SpeakerRepo) FindSpeaker(_ context.Context, id int) (*domain.Speaker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.speakers[id]
	if !ok {
		return nil, registration.ErrNotFound
	}
	return copySpeaker(s), nil
}

// Count returns the number of stored speakers.
func (r *SpeakerRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.speakers)
}

func copySpeaker(s *domain.Speaker) *domain.Speaker {
	cp := *s
	cp.Certifications = slices.Clone(s.Certifications)
	cp.Sessions = slices.Clone(s.Sessions)
	if s.Experience != nil {
		exp := *s.Experience
		cp.Experience = &exp
	}
	return &cp
}
