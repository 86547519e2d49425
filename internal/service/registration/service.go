package registration

import (
	"context"
	"fmt"
	"strings"

	"github.com/ignite/speaker-registry/internal/domain"
	"github.com/ignite/speaker-registry/internal/pkg/logger"
)

// Service registers speakers. The reference rules are fixed at construction,
// so a Service may be shared across goroutines as long as each call works on
// its own Speaker and the repository is concurrency-safe.
type Service struct {
	repo     Repository
	rules    Rules
	notifier Notifier
}

// NewService creates a registration service with DefaultRules.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, rules: DefaultRules()}
}

// NewServiceWithRules creates a registration service with custom reference
// data. The rules are validated and copied.
func NewServiceWithRules(repo Repository, rules Rules) (*Service, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return &Service{repo: repo, rules: rules.Clone()}, nil
}

// SetNotifier installs a notifier called after each successful registration.
func (s *Service) SetNotifier(n Notifier) { s.notifier = n }

// Rules returns a copy of the active reference data.
func (s *Service) Rules() Rules { return s.rules.Clone() }

// Register validates the speaker, approves its sessions, assigns the
// registration fee and persists it. The repository is only called when every
// check passed. Session approval flags may already be set when a later step
// fails.
func (s *Service) Register(ctx context.Context, sp *domain.Speaker) (*int, error) {
	if err := s.Evaluate(sp); err != nil {
		logger.Info("registration rejected", "email", sp.Email, "reason", err.Error())
		return nil, err
	}

	id, err := s.repo.SaveSpeaker(ctx, sp)
	if err != nil {
		logger.Error("save speaker failed", "email", sp.Email, "error", err)
		return nil, fmt.Errorf("save speaker: %w", err)
	}
	if id == nil {
		logger.Warn("storage declined speaker", "email", sp.Email)
		return nil, nil
	}

	logger.Info("speaker registered",
		"speaker_id", *id,
		"email", sp.Email,
		"fee", sp.RegistrationFee,
		"approved_sessions", len(sp.ApprovedSessions()),
	)

	if s.notifier != nil {
		if err := s.notifier.SpeakerRegistered(ctx, *id, sp); err != nil {
			logger.Warn("registration notification failed", "speaker_id", *id, "error", err)
		}
	}
	return id, nil
}

// Evaluate runs every registration check and assigns the fee without
// persisting anything.
func (s *Service) Evaluate(sp *domain.Speaker) error {
	if err := checkRequiredFields(sp); err != nil {
		return err
	}

	if !s.rules.AppearsExceptional(sp) && s.rules.HasRedFlags(sp) {
		return ErrDoesNotMeetRequirements
	}

	if s.rules.ApproveSessions(sp.Sessions) == 0 {
		return ErrNoSessionsApproved
	}

	fee, err := s.rules.Fee(sp.Experience)
	if err != nil {
		return err
	}
	sp.RegistrationFee = fee
	return nil
}

func checkRequiredFields(sp *domain.Speaker) error {
	switch {
	case isBlank(sp.FirstName):
		return ErrMissingFirstName
	case isBlank(sp.LastName):
		return ErrMissingLastName
	case isBlank(sp.Email):
		return ErrMissingEmail
	case len(sp.Sessions) == 0:
		return ErrNoSessionsProvided
	}
	return nil
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }
