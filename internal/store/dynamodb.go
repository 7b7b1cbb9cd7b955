// internal/store/dynamodb.go
//
// DynamoDB Store.
//
// Table layout: hash key "uuid" (the session key) only, so each key holds a
// single item. Attributes:
//   - uuid:         session key
//   - game_status:  IN_PROGRESS | WON | LOST
//   - state:        game.State as JSON
//   - last_updated: RFC3339 timestamp
//
// The table is created on demand (PAY_PER_REQUEST) when CreateTable is set.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordgame/internal/config"
	"github.com/robalobadob/wordgame/internal/game"
)

const tableWaitTimeout = 2 * time.Minute

// DynamoAPI is the subset of *dynamodb.Client the store uses.
type DynamoAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// dynamoItem is the on-table shape of a game record.
type dynamoItem struct {
	Key         string `dynamodbav:"uuid"`
	Status      string `dynamodbav:"game_status"`
	State       string `dynamodbav:"state"`
	LastUpdated string `dynamodbav:"last_updated"`
}

// DynamoStore persists games in a DynamoDB table.
type DynamoStore struct {
	client DynamoAPI
	table  string
}

// NewDynamoStore builds an SDK client from cfg and prepares the table.
//
// auth_type "static_credentials" uses the configured key pair; anything else
// lets the SDK resolve credentials (environment, shared config, IAM role).
func NewDynamoStore(ctx context.Context, cfg config.DynamoDBStore) (*DynamoStore, error) {
	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(cfg.Region))

	switch cfg.AuthType {
	case "static_credentials":
		if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
			return nil, errors.New("store: dynamodb static_credentials requires access_key_id and secret_access_key")
		}
		log.Info().Msg("configuring dynamodb with static credentials")
		creds := credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
		opts = append(opts, awsconfig.WithCredentialsProvider(creds))
	case "iam_role", "":
		log.Info().Msg("configuring dynamodb with default credential chain")
	default:
		log.Warn().Str("type", cfg.AuthType).Msg("unknown dynamodb auth_type, using default credential chain")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("store: load aws config: %w", err)
	}
	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return newDynamoStore(ctx, client, cfg.Table, cfg.CreateTable)
}

func newDynamoStore(ctx context.Context, client DynamoAPI, table string, create bool) (*DynamoStore, error) {
	s := &DynamoStore{client: client, table: table}
	if err := s.ensureTable(ctx, create); err != nil {
		return nil, err
	}
	return s, nil
}

// ensureTable checks the table exists, creating it and waiting for it to
// become active if allowed.
func (s *DynamoStore) ensureTable(ctx context.Context, create bool) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.table)})
	if err == nil {
		return nil
	}
	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return fmt.Errorf("store: describe table %s: %w", s.table, err)
	}
	if !create {
		return fmt.Errorf("store: table %s does not exist", s.table)
	}

	log.Info().Str("table", s.table).Msg("creating dynamodb table")
	_, err = s.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(s.table),
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("uuid"), KeyType: types.KeyTypeHash},
		},
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("uuid"), AttributeType: types.ScalarAttributeTypeS},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		return fmt.Errorf("store: create table %s: %w", s.table, err)
	}

	waiter := dynamodb.NewTableExistsWaiter(s.client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.table)}, tableWaitTimeout); err != nil {
		return fmt.Errorf("store: wait for table %s: %w", s.table, err)
	}
	return nil
}

// Save replaces the item for key.
func (s *DynamoStore) Save(ctx context.Context, key string, st game.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("store: encode: %w", err)
	}
	item, err := attributevalue.MarshalMap(dynamoItem{
		Key:         key,
		Status:      string(st.Status),
		State:       string(data),
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("store: marshal item: %w", err)
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("store: put %s: %w", key, err)
	}
	return nil
}

// Load reads the item for key with a consistent read.
func (s *DynamoStore) Load(ctx context.Context, key string) (game.State, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            map[string]types.AttributeValue{"uuid": &types.AttributeValueMemberS{Value: key}},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return game.State{}, fmt.Errorf("store: get %s: %w", key, err)
	}
	if len(out.Item) == 0 {
		return game.State{}, ErrNotFound
	}
	var item dynamoItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return game.State{}, fmt.Errorf("store: unmarshal item %s: %w", key, err)
	}
	var st game.State
	if err := json.Unmarshal([]byte(item.State), &st); err != nil {
		return game.State{}, fmt.Errorf("store: decode %s: %w", key, err)
	}
	return st, nil
}

func (s *DynamoStore) Close() error { return nil }
