package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/speaker-registry/internal/domain"
)

type fakeSES struct {
	sent []*sesv2.SendEmailInput
	err  error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, in)
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func registered() *domain.Speaker {
	return &domain.Speaker{
		FirstName:       "Barbara",
		LastName:        "Liskov",
		Email:           "barbara@mit.edu",
		RegistrationFee: 250,
		Sessions: []domain.Session{
			{Title: "Substitution", Approved: true},
			{Title: "Cobol", Approved: false},
			{Title: "CLU", Approved: true},
		},
	}
}

func TestSESNotifier_SendsRenderedEmail(t *testing.T) {
	ses := &fakeSES{}
	n, err := NewSESNotifier(ses, Config{FromEmail: "talks@conf.dev", FromName: "Conf"})
	require.NoError(t, err)

	require.NoError(t, n.SpeakerRegistered(context.Background(), 12, registered()))
	require.Len(t, ses.sent, 1)

	in := ses.sent[0]
	assert.Equal(t, "Conf <talks@conf.dev>", aws.ToString(in.FromEmailAddress))
	assert.Equal(t, []string{"barbara@mit.edu"}, in.Destination.ToAddresses)
	assert.Equal(t, "Your registration is confirmed, Barbara", aws.ToString(in.Content.Simple.Subject.Data))

	body := aws.ToString(in.Content.Simple.Body.Text.Data)
	assert.Contains(t, body, "Hi Barbara Liskov")
	assert.Contains(t, body, "speaker id is 12")
	assert.Contains(t, body, "Registration fee: $250.")
	assert.Contains(t, body, "- Substitution\n- CLU\n")
	assert.NotContains(t, body, "- Cobol")
	assert.Contains(t, body, "1 session(s) were not accepted.")
}

func TestSESNotifier_NoFee(t *testing.T) {
	n, err := NewSESNotifier(&fakeSES{}, Config{FromEmail: "talks@conf.dev"})
	require.NoError(t, err)

	s := registered()
	s.RegistrationFee = 0
	_, body, err := n.Render(1, s)
	require.NoError(t, err)
	assert.Contains(t, body, "There is no registration fee for you.")
}

func TestSESNotifier_CustomTemplates(t *testing.T) {
	n, err := NewSESNotifier(&fakeSES{}, Config{
		FromEmail: "talks@conf.dev",
		Subject:   "#{{ speaker_id }} {{ speaker.last_name | upcase }}",
		Body:      "{{ approved_sessions | size }} of {{ sessions | size }}",
	})
	require.NoError(t, err)

	subject, body, err := n.Render(3, registered())
	require.NoError(t, err)
	assert.Equal(t, "#3 LISKOV", subject)
	assert.Equal(t, "2 of 3", body)
}

func TestNewSESNotifier_Errors(t *testing.T) {
	_, err := NewSESNotifier(&fakeSES{}, Config{})
	assert.Error(t, err)

	_, err = NewSESNotifier(&fakeSES{}, Config{FromEmail: "a@b.c", Body: "{% if fee > 0 %}unterminated"})
	assert.Error(t, err)
}

func TestSESNotifier_SendFailureRedactsEmail(t *testing.T) {
	n, err := NewSESNotifier(&fakeSES{err: errors.New("throttled")}, Config{FromEmail: "talks@conf.dev"})
	require.NoError(t, err)

	err = n.SpeakerRegistered(context.Background(), 1, registered())
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "barbara@mit.edu")
}
