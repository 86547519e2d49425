// Package notify sends the confirmation email after a speaker registered.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/osteele/liquid"

	"github.com/ignite/speaker-registry/internal/domain"
	"github.com/ignite/speaker-registry/internal/pkg/logger"
)

const (
	DefaultSubject = `Your registration is confirmed, {{ speaker.first_name }}`
	DefaultBody    = `Hi {{ speaker.full_name }},

Thanks for registering. Your speaker id is {{ speaker_id }}.
{% if fee > 0 %}Registration fee: ${{ fee }}.{% else %}There is no registration fee for you.{% endif %}

Approved sessions:
{% for s in approved_sessions %}- {{ s.title }}
{% endfor %}{% if rejected_count > 0 %}
{{ rejected_count }} session(s) were not accepted.
{% endif %}`
)

// SESAPI is the subset of *sesv2.Client the notifier uses.
type SESAPI interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// Config holds sender identity and optional template overrides.
type Config struct {
	FromEmail string
	FromName  string
	Subject   string
	Body      string
}

// SESNotifier implements registration.Notifier over Amazon SES.
type SESNotifier struct {
	client  SESAPI
	from    string
	subject *liquid.Template
	body    *liquid.Template
}

// NewSESNotifier parses the templates up front so a bad template fails at
// startup.
func NewSESNotifier(client SESAPI, cfg Config) (*SESNotifier, error) {
	if cfg.FromEmail == "" {
		return nil, errors.New("notify: from email is required")
	}
	if cfg.Subject == "" {
		cfg.Subject = DefaultSubject
	}
	if cfg.Body == "" {
		cfg.Body = DefaultBody
	}

	engine := liquid.NewEngine()
	subject, err := engine.ParseString(cfg.Subject)
	if err != nil {
		return nil, fmt.Errorf("parse subject template: %w", err)
	}
	body, err := engine.ParseString(cfg.Body)
	if err != nil {
		return nil, fmt.Errorf("parse body template: %w", err)
	}

	from := cfg.FromEmail
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail)
	}
	return &SESNotifier{client: client, from: from, subject: subject, body: body}, nil
}

// Render returns the subject and text body for a registered speaker.
func (n *SESNotifier) Render(id int, s *domain.Speaker) (subject, body string, err error) {
	bindings := bindingsFor(id, s)
	if subject, err = n.subject.RenderString(bindings); err != nil {
		return "", "", fmt.Errorf("render subject: %w", err)
	}
	if body, err = n.body.RenderString(bindings); err != nil {
		return "", "", fmt.Errorf("render body: %w", err)
	}
	return subject, body, nil
}

func (n *SESNotifier) SpeakerRegistered(ctx context.Context, id int, s *domain.Speaker) error {
	subject, body, err := n.Render(id, s)
	if err != nil {
		return err
	}

	out, err := n.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(n.from),
		Destination:      &types.Destination{ToAddresses: []string{s.Email}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body), Charset: aws.String("UTF-8")},
				},
			},
		},
		EmailTags: []types.MessageTag{
			{Name: aws.String("speaker_id"), Value: aws.String(strconv.Itoa(id))},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send to %s: %w", logger.RedactEmail(s.Email), err)
	}

	logger.Info("confirmation sent", "speaker_id", id, "email", s.Email, "message_id", aws.ToString(out.MessageId))
	return nil
}

func bindingsFor(id int, s *domain.Speaker) map[string]any {
	sessions := make([]map[string]any, 0, len(s.Sessions))
	approved := make([]map[string]any, 0, len(s.Sessions))
	for _, sess := range s.Sessions {
		m := map[string]any{
			"title":       sess.Title,
			"description": sess.Description,
			"approved":    sess.Approved,
		}
		sessions = append(sessions, m)
		if sess.Approved {
			approved = append(approved, m)
		}
	}
	return map[string]any{
		"speaker_id": id,
		"speaker": map[string]any{
			"first_name": s.FirstName,
			"last_name":  s.LastName,
			"full_name":  s.FullName(),
			"email":      s.Email,
			"employer":   s.Employer,
		},
		"fee":               s.RegistrationFee,
		"sessions":          sessions,
		"approved_sessions": approved,
		"rejected_count":    len(sessions) - len(approved),
	}
}
