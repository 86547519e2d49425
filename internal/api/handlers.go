package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/speaker-registry/internal/domain"
	"github.com/ignite/speaker-registry/internal/pkg/httputil"
	"github.com/ignite/speaker-registry/internal/service/registration"
)

// Handlers contains the HTTP handlers for the speaker API.
type Handlers struct {
	svc    *registration.Service
	reader registration.Reader
	health *HealthChecker
}

func NewHandlers(svc *registration.Service, reader registration.Reader, storageType string) *Handlers {
	return &Handlers{
		svc:    svc,
		reader: reader,
		health: NewHealthChecker(storageType),
	}
}

type browserRequest struct {
	Name         string `json:"name"`
	MajorVersion int    `json:"major_version"`
}

type sessionRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// speakerRequest is the submission body for register and evaluate.
type speakerRequest struct {
	FirstName      string           `json:"first_name"`
	LastName       string           `json:"last_name"`
	Email          string           `json:"email"`
	Experience     *int             `json:"experience"`
	HasBlog        bool             `json:"has_blog"`
	BlogURL        string           `json:"blog_url"`
	Browser        browserRequest   `json:"browser"`
	Certifications []string         `json:"certifications"`
	Employer       string           `json:"employer"`
	Sessions       []sessionRequest `json:"sessions"`
}

func (req *speakerRequest) toDomain() *domain.Speaker {
	s := &domain.Speaker{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Experience:     req.Experience,
		HasBlog:        req.HasBlog,
		BlogURL:        req.BlogURL,
		Browser:        domain.NewWebBrowser(req.Browser.Name, req.Browser.MajorVersion),
		Certifications: req.Certifications,
		Employer:       req.Employer,
	}
	for _, sess := range req.Sessions {
		s.Sessions = append(s.Sessions, domain.NewSession(sess.Title, sess.Description))
	}
	return s
}

type sessionResult struct {
	ID       int    `json:"id,omitempty"`
	Title    string `json:"title"`
	Approved bool   `json:"approved"`
}

// registrationResponse is returned by register (with an id) and evaluate.
type registrationResponse struct {
	ID              int             `json:"id,omitempty"`
	RegistrationFee int             `json:"registration_fee"`
	Sessions        []sessionResult `json:"sessions"`
	CreatedAt       *time.Time      `json:"created_at,omitempty"`
}

func newRegistrationResponse(s *domain.Speaker) registrationResponse {
	resp := registrationResponse{
		ID:              s.ID,
		RegistrationFee: s.RegistrationFee,
		Sessions:        make([]sessionResult, len(s.Sessions)),
	}
	for i, sess := range s.Sessions {
		resp.Sessions[i] = sessionResult{ID: sess.ID, Title: sess.Title, Approved: sess.Approved}
	}
	if !s.CreatedAt.IsZero() {
		t := s.CreatedAt
		resp.CreatedAt = &t
	}
	return resp
}

// RegisterSpeaker validates and stores a submission.
//
//	POST /api/speakers
func (h *Handlers) RegisterSpeaker(w http.ResponseWriter, r *http.Request) {
	var req speakerRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	s := req.toDomain()
	id, err := h.svc.Register(r.Context(), s)
	if err != nil {
		writeRegistrationError(w, err)
		return
	}
	if id == nil {
		httputil.Conflict(w, "already_registered", "a speaker with this email is already registered")
		return
	}

	resp := newRegistrationResponse(s)
	resp.ID = *id
	httputil.Created(w, resp)
}

// EvaluateSpeaker runs every check without storing anything.
//
//	POST /api/speakers/evaluate
func (h *Handlers) EvaluateSpeaker(w http.ResponseWriter, r *http.Request) {
	var req speakerRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	s := req.toDomain()
	if err := h.svc.Evaluate(s); err != nil {
		writeRegistrationError(w, err)
		return
	}
	httputil.OK(w, newRegistrationResponse(s))
}

// GetSpeaker returns a stored speaker.
//
//	GET /api/speakers/{id}
func (h *Handlers) GetSpeaker(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		httputil.BadRequest(w, "invalid speaker id")
		return
	}

	s, err := h.reader.FindSpeaker(r.Context(), id)
	if err != nil {
		writeRegistrationError(w, err)
		return
	}
	httputil.OK(w, s)
}

// GetRules returns the reference lists and fee tiers in effect.
//
//	GET /api/rules
func (h *Handlers) GetRules(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, h.svc.Rules())
}
