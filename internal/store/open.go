package store

import (
	"context"
	"fmt"

	"github.com/robalobadob/wordgame/internal/config"
)

// Open constructs the backend named by cfg.Backend.
func Open(ctx context.Context, cfg config.Store) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case "memory":
		return NewMemoryStore(), nil
	case "file":
		var fs *FileStore
		if fs, err = NewFileStore(cfg.File.Path); err == nil {
			s = fs
		}
	case "sqlite":
		var sq *SQLiteStore
		if sq, err = NewSQLiteStore(cfg.SQLite.DSN); err == nil {
			s = sq
		}
	case "redis":
		var rs *RedisStore
		if rs, err = NewRedisStore(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL); err == nil {
			s = rs
		}
	case "dynamodb":
		var ds *DynamoStore
		if ds, err = NewDynamoStore(ctx, cfg.DynamoDB); err == nil {
			s = ds
		}
	default:
		return nil, fmt.Errorf("store: unknown backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
