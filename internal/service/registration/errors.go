package registration

import (
	"errors"
	"fmt"
)

// ErrMissingField is wrapped by every required-field error.
var ErrMissingField = errors.New("required field missing")

// Sentinel errors for the registration service layer.
var (
	ErrMissingFirstName        = fmt.Errorf("first name is required: %w", ErrMissingField)
	ErrMissingLastName         = fmt.Errorf("last name is required: %w", ErrMissingField)
	ErrMissingEmail            = fmt.Errorf("email is required: %w", ErrMissingField)
	ErrNoSessionsProvided      = errors.New("can't register speaker with no sessions to present")
	ErrDoesNotMeetRequirements = errors.New("speaker doesn't meet requirements")
	ErrNoSessionsApproved      = errors.New("no sessions approved")
	ErrExperienceRequired      = errors.New("years of experience is required to calculate the registration fee")
	ErrNoFeeTier               = errors.New("no fee tier matches the speaker's experience")
	ErrInvalidFeeTiers         = errors.New("invalid fee tiers")
	ErrNotFound                = errors.New("speaker not found")
)
