package api

import (
	"errors"
	"net/http"

	"github.com/ignite/speaker-registry/internal/pkg/httputil"
	"github.com/ignite/speaker-registry/internal/service/registration"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

// Order matters: the specific missing-field errors come before their base.
var registrationErrors = []errorMapping{
	{registration.ErrMissingFirstName, http.StatusBadRequest, "missing_first_name"},
	{registration.ErrMissingLastName, http.StatusBadRequest, "missing_last_name"},
	{registration.ErrMissingEmail, http.StatusBadRequest, "missing_email"},
	{registration.ErrMissingField, http.StatusBadRequest, "missing_field"},
	{registration.ErrNoSessionsProvided, http.StatusBadRequest, "no_sessions_provided"},
	{registration.ErrExperienceRequired, http.StatusBadRequest, "experience_required"},
	{registration.ErrDoesNotMeetRequirements, http.StatusUnprocessableEntity, "does_not_meet_requirements"},
	{registration.ErrNoSessionsApproved, http.StatusUnprocessableEntity, "no_sessions_approved"},
	{registration.ErrNotFound, http.StatusNotFound, "not_found"},
}

// writeRegistrationError maps service errors to responses. Anything
// unrecognised is logged and reported as a generic 500.
func writeRegistrationError(w http.ResponseWriter, err error) {
	for _, m := range registrationErrors {
		if errors.Is(err, m.err) {
			httputil.ErrorWithCode(w, m.status, m.code, m.err.Error())
			return
		}
	}
	httputil.InternalError(w, err)
}
