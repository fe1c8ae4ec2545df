package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/okian/langvote/internal/config"
)

// Open builds the store selected by cfg.StoreBackend.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (Store, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory, "":
		return NewMemoryStore(opts...), nil
	case config.BackendSQLite:
		return OpenSQL(ctx, DialectSQLite, cfg.SQLiteDSN, opts...)
	case config.BackendPostgres:
		return OpenSQL(ctx, DialectPostgres, cfg.PostgresDSN, opts...)
	case config.BackendRedis:
		return OpenRedis(ctx, &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, cfg.RedisKeyPrefix, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, cfg.StoreBackend)
	}
}
