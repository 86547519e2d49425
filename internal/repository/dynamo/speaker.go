// Package dynamo stores speakers in a single DynamoDB table. Each speaker is
// one PROFILE item holding the JSON document; emails are claimed with a
// conditional put and ids come from an atomic counter item.
package dynamo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/ignite/speaker-registry/internal/domain"
	"github.com/ignite/speaker-registry/internal/pkg/logger"
	"github.com/ignite/speaker-registry/internal/service/registration"
)

// API is the subset of *dynamodb.Client the repository uses.
type API interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

type itemKey struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
}

// speakerItem is the PROFILE item of one speaker.
type speakerItem struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	Email     string `dynamodbav:"Email"`
	Data      string `dynamodbav:"Data"`
	Timestamp string `dynamodbav:"Timestamp"`
}

type claimItem struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	SpeakerID int    `dynamodbav:"SpeakerID"`
}

var counterKey = itemKey{PK: "COUNTER", SK: "SPEAKER"}

func speakerKey(id int) itemKey      { return itemKey{PK: "SPEAKER#" + strconv.Itoa(id), SK: "PROFILE"} }
func emailKey(email string) itemKey { return itemKey{PK: "EMAIL#" + email, SK: "CLAIM"} }

// SpeakerRepo implements registration.Store against DynamoDB.
type SpeakerRepo struct {
	client API
	table  string
	now    func() time.Time
}

// NewSpeakerRepo creates a repository over table.
func NewSpeakerRepo(client API, table string) *SpeakerRepo {
	return &SpeakerRepo{client: client, table: table, now: time.Now}
}

// SaveSpeaker allocates an id, claims the normalized email and writes the
// profile. A speaker whose email is already claimed is declined with a nil id.
func (r *SpeakerRepo) SaveSpeaker(ctx context.Context, s *domain.Speaker) (*int, error) {
	id, err := r.nextID(ctx)
	if err != nil {
		return nil, err
	}

	email := s.NormalizedEmail()
	claim, err := attributevalue.MarshalMap(claimItem{PK: emailKey(email).PK, SK: emailKey(email).SK, SpeakerID: id})
	if err != nil {
		return nil, fmt.Errorf("marshaling claim: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                claim,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	var conflict *types.ConditionalCheckFailedException
	if errors.As(err, &conflict) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("claiming email: %w", err)
	}

	createdAt := r.now().UTC()
	doc := *s
	doc.ID = id
	doc.CreatedAt = createdAt
	doc.Sessions = make([]domain.Session, len(s.Sessions))
	for i, sess := range s.Sessions {
		sess.ID = i + 1
		doc.Sessions[i] = sess
	}
	data, err := json.Marshal(&doc)
	if err != nil {
		r.releaseClaim(ctx, email)
		return nil, fmt.Errorf("marshaling speaker: %w", err)
	}

	key := speakerKey(id)
	item, err := attributevalue.MarshalMap(speakerItem{
		PK:        key.PK,
		SK:        key.SK,
		Email:     email,
		Data:      string(data),
		Timestamp: createdAt.Format(time.RFC3339),
	})
	if err != nil {
		r.releaseClaim(ctx, email)
		return nil, fmt.Errorf("marshaling item: %w", err)
	}
	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	}); err != nil {
		r.releaseClaim(ctx, email)
		return nil, fmt.Errorf("putting speaker to DynamoDB: %w", err)
	}

	s.ID = id
	s.CreatedAt = createdAt
	for i := range s.Sessions {
		s.Sessions[i].ID = i + 1
	}
	return &id, nil
}

func (r *SpeakerRepo) nextID(ctx context.Context) (int, error) {
	key, err := attributevalue.MarshalMap(counterKey)
	if err != nil {
		return 0, fmt.Errorf("marshaling counter key: %w", err)
	}
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(r.table),
		Key:                      key,
		UpdateExpression:         aws.String("ADD #v :one"),
		ExpressionAttributeNames: map[string]string{"#v": "Value"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, fmt.Errorf("allocating speaker id: %w", err)
	}

	var counter struct {
		Value int `dynamodbav:"Value"`
	}
	if err := attributevalue.UnmarshalMap(out.Attributes, &counter); err != nil {
		return 0, fmt.Errorf("reading counter: %w", err)
	}
	if counter.Value <= 0 {
		return 0, fmt.Errorf("counter returned %d", counter.Value)
	}
	return counter.Value, nil
}

func (r *SpeakerRepo) releaseClaim(ctx context.Context, email string) {
	key, err := attributevalue.MarshalMap(emailKey(email))
	if err == nil {
		_, err = r.client.DeleteItem(context.WithoutCancel(ctx), &dynamodb.DeleteItemInput{
			TableName: aws.String(r.table),
			Key:       key,
		})
	}
	if err != nil {
		logger.Warn("release email claim failed", "email", email, "error", err)
	}
}

// FindSpeaker reads the PROFILE item and decodes its document.
func (r *SpeakerRepo) FindSpeaker(ctx context.Context, id int) (*domain.Speaker, error) {
	key, err := attributevalue.MarshalMap(speakerKey(id))
	if err != nil {
		return nil, fmt.Errorf("marshaling key: %w", err)
	}
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("getting speaker %d: %w", id, err)
	}
	if len(out.Item) == 0 {
		return nil, registration.ErrNotFound
	}

	var item speakerItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshaling item: %w", err)
	}
	var s domain.Speaker
	if err := json.Unmarshal([]byte(item.Data), &s); err != nil {
		return nil, fmt.Errorf("decoding speaker %d: %w", id, err)
	}
	return &s, nil
}
