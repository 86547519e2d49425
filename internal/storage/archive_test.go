package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/speaker-registry/internal/domain"
	"github.com/ignite/speaker-registry/internal/repository/memory"
)

type fakeS3 struct {
	objects map[string][]byte
	err     error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if f.objects == nil {
		f.objects = make(map[string][]byte)
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = body
	return &s3.PutObjectOutput{}, nil
}

func speaker(email string) *domain.Speaker {
	return &domain.Speaker{
		FirstName:  "Margaret",
		LastName:   "Hamilton",
		Email:      email,
		Experience: domain.IntPtr(20),
		Sessions:   []domain.Session{{Title: "Apollo", Approved: true}},
	}
}

func TestArchivingRepository_WritesSnapshot(t *testing.T) {
	s3c := &fakeS3{}
	repo := NewArchivingRepository(memory.NewSpeakerRepo(), s3c, "archive")
	repo.newID = func() string { return "snap" }

	id, err := repo.SaveSpeaker(context.Background(), speaker("mh@nasa.gov"))
	require.NoError(t, err)
	require.NotNil(t, id)

	body, ok := s3c.objects["archive/speakers/1/snap.json"]
	require.True(t, ok)
	var got domain.Speaker
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, 1, got.ID)
	assert.Equal(t, "Apollo", got.Sessions[0].Title)

	// reads go straight to the wrapped store
	found, err := repo.FindSpeaker(context.Background(), *id)
	require.NoError(t, err)
	assert.Equal(t, "mh@nasa.gov", found.Email)
}

func TestArchivingRepository_SkipsDeclined(t *testing.T) {
	s3c := &fakeS3{}
	repo := NewArchivingRepository(memory.NewSpeakerRepo(), s3c, "archive")

	_, err := repo.SaveSpeaker(context.Background(), speaker("mh@nasa.gov"))
	require.NoError(t, err)
	id, err := repo.SaveSpeaker(context.Background(), speaker("MH@nasa.gov"))
	require.NoError(t, err)
	assert.Nil(t, id)
	assert.Len(t, s3c.objects, 1)
}

func TestArchivingRepository_ArchiveFailureIsNotReturned(t *testing.T) {
	repo := NewArchivingRepository(memory.NewSpeakerRepo(), &fakeS3{err: errors.New("AccessDenied")}, "archive")

	id, err := repo.SaveSpeaker(context.Background(), speaker("mh@nasa.gov"))
	require.NoError(t, err)
	assert.NotNil(t, id)
}

func TestSnapshotKey(t *testing.T) {
	assert.Equal(t, "speakers/12/abc.json", SnapshotKey(12, "abc"))
}
