// internal/store/redis.go
//
// Redis Store: each game is a JSON string under KeyGame, with an optional
// expiry refreshed on every Save.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/robalobadob/wordgame/internal/game"
)

// KeyGame is the Redis key format for a game; %s is the session key.
const KeyGame = "wordgame:game:%s"

// RedisStore persists games in Redis.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to addr and verifies the connection with PING.
// A zero ttl keeps games until they are overwritten.
func NewRedisStore(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("store: connect to redis: %w", err)
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

// Save writes the JSON record for key.
func (s *RedisStore) Save(ctx context.Context, key string, st game.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("store: encode: %w", err)
	}
	if err := s.client.Set(ctx, fmt.Sprintf(KeyGame, key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("store: save %s: %w", key, err)
	}
	return nil
}

// Load reads the record for key; redis.Nil maps to ErrNotFound.
func (s *RedisStore) Load(ctx context.Context, key string) (game.State, error) {
	data, err := s.client.Get(ctx, fmt.Sprintf(KeyGame, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return game.State{}, ErrNotFound
	}
	if err != nil {
		return game.State{}, fmt.Errorf("store: load %s: %w", key, err)
	}
	var st game.State
	if err := json.Unmarshal(data, &st); err != nil {
		return game.State{}, fmt.Errorf("store: decode %s: %w", key, err)
	}
	return st, nil
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error { return s.client.Ping(ctx).Err() }

func (s *RedisStore) Close() error { return s.client.Close() }
