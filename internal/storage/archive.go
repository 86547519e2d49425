// Package storage holds storage decorators that are independent of the
// backing repository.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/ignite/speaker-registry/internal/domain"
	"github.com/ignite/speaker-registry/internal/pkg/logger"
	"github.com/ignite/speaker-registry/internal/service/registration"
)

// S3API is the subset of *s3.Client used for archiving.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ArchivingRepository writes a JSON snapshot of every stored speaker to S3
// after the wrapped store accepted it. Archive failures are logged only.
type ArchivingRepository struct {
	registration.Store
	s3     S3API
	bucket string
	newID  func() string
}

// NewArchivingRepository wraps inner.
func NewArchivingRepository(inner registration.Store, client S3API, bucket string) *ArchivingRepository {
	return &ArchivingRepository{
		Store:  inner,
		s3:     client,
		bucket: bucket,
		newID:  uuid.NewString,
	}
}

// SnapshotKey is the object key of one snapshot.
func SnapshotKey(id int, snapshot string) string {
	return fmt.Sprintf("speakers/%d/%s.json", id, snapshot)
}

func (a *ArchivingRepository) SaveSpeaker(ctx context.Context, s *domain.Speaker) (*int, error) {
	id, err := a.Store.SaveSpeaker(ctx, s)
	if err != nil || id == nil {
		return id, err
	}
	if err := a.archive(ctx, *id, s); err != nil {
		logger.Warn("speaker archive failed", "speaker_id", *id, "bucket", a.bucket, "error", err)
	}
	return id, nil
}

func (a *ArchivingRepository) archive(ctx context.Context, id int, s *domain.Speaker) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling speaker: %w", err)
	}
	key := SnapshotKey(id, a.newID())
	_, err = a.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("putting object to S3: %w", err)
	}
	logger.Debug("speaker archived", "speaker_id", id, "key", key)
	return nil
}
