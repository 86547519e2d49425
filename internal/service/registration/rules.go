package registration

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/ignite/speaker-registry/internal/domain"
)

// FeeTier maps an inclusive range of experience years to a flat fee.
type FeeTier struct {
	Low  int `json:"low"`
	High int `json:"high"`
	Fee  int `json:"fee"`
}

// Contains reports whether years falls inside [Low, High].
func (t FeeTier) Contains(years int) bool {
	return years >= t.Low && years <= t.High
}

// Rules is the reference data registration is evaluated against.
// A Service keeps its own copy; the lists never change after construction.
type Rules struct {
	OffTopics        []string  `json:"off_topics"`
	BlockedDomains   []string  `json:"blocked_domains"`
	TrustedEmployers []string  `json:"trusted_employers"`
	FeeTiers         []FeeTier `json:"fee_tiers"`
}

// Thresholds used by the reputation check.
const (
	exceptionalExperience     = 10
	exceptionalCertifications = 3
	minimumIEVersion          = 9
)

// DefaultRules returns the standard reference lists and fee schedule.
func DefaultRules() Rules {
	return Rules{
		OffTopics:        []string{"Cobol", "Punch Cards", "Commodore", "VBScript"},
		BlockedDomains:   []string{"aol.com", "hotmail.com", "prodigy.com", "CompuServe.com"},
		TrustedEmployers: []string{"Microsoft", "Google", "Fog Creek Software", "37Signals"},
		FeeTiers: []FeeTier{
			{Low: math.MinInt, High: 1, Fee: 500},
			{Low: 2, High: 3, Fee: 250},
			{Low: 4, High: 5, Fee: 100},
			{Low: 6, High: 9, Fee: 50},
			{Low: 10, High: math.MaxInt, Fee: 0},
		},
	}
}

// Validate checks that the fee tiers are ordered, contiguous, non-overlapping
// and together cover every int value.
func (r Rules) Validate() error {
	tiers := r.FeeTiers
	if len(tiers) == 0 {
		return fmt.Errorf("%w: at least one tier is required", ErrInvalidFeeTiers)
	}
	if tiers[0].Low != math.MinInt {
		return fmt.Errorf("%w: first tier must start at the minimum int, got %d", ErrInvalidFeeTiers, tiers[0].Low)
	}
	for i, t := range tiers {
		if t.Low > t.High {
			return fmt.Errorf("%w: tier %d has low %d above high %d", ErrInvalidFeeTiers, i, t.Low, t.High)
		}
		if i == 0 {
			continue
		}
		prev := tiers[i-1]
		if prev.High == math.MaxInt || t.Low != prev.High+1 {
			return fmt.Errorf("%w: tier %d [%d,%d] does not follow [%d,%d]",
				ErrInvalidFeeTiers, i, t.Low, t.High, prev.Low, prev.High)
		}
	}
	if last := tiers[len(tiers)-1]; last.High != math.MaxInt {
		return fmt.Errorf("%w: last tier must end at the maximum int, got %d", ErrInvalidFeeTiers, last.High)
	}
	return nil
}

// Clone returns a deep copy of r.
func (r Rules) Clone() Rules {
	return Rules{
		OffTopics:        slices.Clone(r.OffTopics),
		BlockedDomains:   slices.Clone(r.BlockedDomains),
		TrustedEmployers: slices.Clone(r.TrustedEmployers),
		FeeTiers:         slices.Clone(r.FeeTiers),
	}
}

// AppearsExceptional reports whether the speaker's credentials are strong
// enough to outweigh red flags.
func (r Rules) AppearsExceptional(s *domain.Speaker) bool {
	return (s.Experience != nil && *s.Experience > exceptionalExperience) ||
		s.HasBlog ||
		len(s.Certifications) > exceptionalCertifications ||
		slices.Contains(r.TrustedEmployers, s.Employer)
}

// HasRedFlags reports a blocked email domain or an Internet Explorer older
// than version 9.
func (r Rules) HasRedFlags(s *domain.Speaker) bool {
	return slices.Contains(r.BlockedDomains, s.EmailDomain()) || isOldInternetExplorer(s.Browser)
}

func isOldInternetExplorer(b domain.WebBrowser) bool {
	return b.IsInternetExplorer() && b.MajorVersion < minimumIEVersion
}

// IsOffTopic reports whether the session title or description mentions an
// off-topic keyword. Matching is a case-sensitive substring search.
func (r Rules) IsOffTopic(sess domain.Session) bool {
	for _, topic := range r.OffTopics {
		if strings.Contains(sess.Title, topic) || strings.Contains(sess.Description, topic) {
			return true
		}
	}
	return false
}

// ApproveSessions sets Approved on every session in place and returns how
// many were approved. Running it twice over the same sessions gives the same
// flags.
func (r Rules) ApproveSessions(sessions []domain.Session) int {
	approved := 0
	for i := range sessions {
		sessions[i].Approved = !r.IsOffTopic(sessions[i])
		if sessions[i].Approved {
			approved++
		}
	}
	return approved
}

// Fee returns the fee of the single tier containing experience.
func (r Rules) Fee(experience *int) (int, error) {
	if experience == nil {
		return 0, ErrExperienceRequired
	}
	for _, t := range r.FeeTiers {
		if t.Contains(*experience) {
			return t.Fee, nil
		}
	}
	return 0, fmt.Errorf("%w: %d years", ErrNoFeeTier, *experience)
}
