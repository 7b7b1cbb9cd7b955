package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordgame/internal/game"
)

// fakeDynamo is an in-memory stand-in for a single DynamoDB table keyed by "uuid".
type fakeDynamo struct {
	mu      sync.Mutex
	exists  bool
	created *dynamodb.CreateTableInput
	items   map[string]map[string]types.AttributeValue
	failGet error
}

func newFakeDynamo(exists bool) *fakeDynamo {
	return &fakeDynamo{exists: exists, items: map[string]map[string]types.AttributeValue{}}
}

func hashKey(m map[string]types.AttributeValue) string {
	if s, ok := m["uuid"].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func (f *fakeDynamo) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet != nil {
		return nil, f.failGet
	}
	return &dynamodb.GetItemOutput{Item: f.items[hashKey(in.Key)]}, nil
}

func (f *fakeDynamo) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[hashKey(in.Item)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.exists {
		return nil, &types.ResourceNotFoundException{Message: aws.String("no table")}
	}
	return &dynamodb.DescribeTableOutput{Table: &types.TableDescription{
		TableName:   in.TableName,
		TableStatus: types.TableStatusActive,
	}}, nil
}

func (f *fakeDynamo) CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = in
	f.exists = true
	return &dynamodb.CreateTableOutput{}, nil
}

func TestDynamoStore(t *testing.T) {
	fake := newFakeDynamo(true)
	s, err := newDynamoStore(context.Background(), fake, "wordgame-state", false)
	require.NoError(t, err)
	assert.Nil(t, fake.created)

	exerciseStore(t, s)

	item := fake.items["alice"]
	require.NotNil(t, item)
	status, ok := item["game_status"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, string(game.Won), status.Value)
	assert.Contains(t, item, "state")
	assert.Contains(t, item, "last_updated")
}

func TestDynamoStoreCreatesTable(t *testing.T) {
	fake := newFakeDynamo(false)
	_, err := newDynamoStore(context.Background(), fake, "wordgame-state", true)
	require.NoError(t, err)

	require.NotNil(t, fake.created)
	assert.Equal(t, "wordgame-state", aws.ToString(fake.created.TableName))
	assert.Equal(t, types.BillingModePayPerRequest, fake.created.BillingMode)
	require.Len(t, fake.created.KeySchema, 1)
	assert.Equal(t, "uuid", aws.ToString(fake.created.KeySchema[0].AttributeName))
	assert.Equal(t, types.KeyTypeHash, fake.created.KeySchema[0].KeyType)
}

func TestDynamoStoreMissingTable(t *testing.T) {
	_, err := newDynamoStore(context.Background(), newFakeDynamo(false), "wordgame-state", false)
	assert.Error(t, err)
}

func TestDynamoStoreGetError(t *testing.T) {
	fake := newFakeDynamo(true)
	s, err := newDynamoStore(context.Background(), fake, "t", false)
	require.NoError(t, err)

	boom := errors.New("throttled")
	fake.failGet = boom
	_, err = s.Load(context.Background(), "alice")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)
}
