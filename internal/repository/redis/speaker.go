// Package redis stores speakers as JSON documents in Redis. Ids come from an
// INCR counter and emails are claimed with SETNX so a duplicate registration
// is declined.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ignite/speaker-registry/internal/domain"
	"github.com/ignite/speaker-registry/internal/pkg/logger"
	"github.com/ignite/speaker-registry/internal/service/registration"
)

const defaultPrefix = "speaker-registry:"

// SpeakerRepo implements registration.Store on top of Redis.
type SpeakerRepo struct {
	client goredis.Cmdable
	prefix string
	now    func() time.Time
}

// NewSpeakerRepo creates a Redis-backed repository. An empty prefix uses
// "speaker-registry:".
func NewSpeakerRepo(client goredis.Cmdable, prefix string) *SpeakerRepo {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &SpeakerRepo{client: client, prefix: prefix, now: time.Now}
}

func (r *SpeakerRepo) counterKey() string           { return r.prefix + "speaker:id" }
func (r *SpeakerRepo) emailKey(email string) string { return r.prefix + "speaker:email:" + email }
func (r *SpeakerRepo) speakerKey(id int) string     { return r.prefix + "speaker:" + strconv.Itoa(id) }

// SaveSpeaker claims the normalized email, allocates an id and writes the
// document. If the email is already claimed the speaker is declined with a
// nil id.
func (r *SpeakerRepo) SaveSpeaker(ctx context.Context, s *domain.Speaker) (*int, error) {
	emailKey := r.emailKey(s.NormalizedEmail())

	n, err := r.client.Incr(ctx, r.counterKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("allocate speaker id: %w", err)
	}
	id := int(n)

	claimed, err := r.client.SetNX(ctx, emailKey, id, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("claim email: %w", err)
	}
	if !claimed {
		return nil, nil
	}

	doc := *s
	doc.ID = id
	doc.CreatedAt = r.now().UTC()
	doc.Sessions = make([]domain.Session, len(s.Sessions))
	for i, sess := range s.Sessions {
		sess.ID = i + 1
		doc.Sessions[i] = sess
	}
	data, err := json.Marshal(&doc)
	if err != nil {
		r.releaseClaim(ctx, emailKey)
		return nil, fmt.Errorf("encode speaker: %w", err)
	}
	if err := r.client.Set(ctx, r.speakerKey(id), data, 0).Err(); err != nil {
		r.releaseClaim(ctx, emailKey)
		return nil, fmt.Errorf("store speaker %d: %w", id, err)
	}

	s.ID = id
	s.CreatedAt = doc.CreatedAt
	for i := range s.Sessions {
		s.Sessions[i].ID = i + 1
	}
	return &id, nil
}

func (r *SpeakerRepo) releaseClaim(ctx context.Context, key string) {
	if err := r.client.Del(context.WithoutCancel(ctx), key).Err(); err != nil {
		logger.Warn("release email claim failed", "key", key, "error", err)
	}
}

// FindSpeaker loads and decodes the speaker document.
func (r *SpeakerRepo) FindSpeaker(ctx context.Context, id int) (*domain.Speaker, error) {
	data, err := r.client.Get(ctx, r.speakerKey(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, registration.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get speaker %d: %w", id, err)
	}

	var s domain.Speaker
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode speaker %d: %w", id, err)
	}
	return &s, nil
}
