package shared

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"

	redisad "safari_reviews/internal/adapters/redis"
	"safari_reviews/internal/domain"
	"safari_reviews/internal/storage/sqlhistory"
)

// Redis returns a client when REDIS_ADDR is set, nil otherwise.
func (c Config) Redis() *redis.Client {
	if c.RedisAddr == "" {
		return nil
	}
	return redisad.NewClient(c.RedisAddr, c.RedisPass, c.RedisDB)
}

// OpenHistory opens the configured history backend. The returned close
// func is never nil. Backend "none" yields a nil store.
func (c Config) OpenHistory(ctx context.Context, rdb *redis.Client) (domain.HistoryStore, func(), error) {
	noop := func() {}
	switch c.HistoryBackend {
	case HistoryNone:
		return nil, noop, nil
	case HistoryRedis:
		if rdb == nil {
			return nil, noop, fmt.Errorf("history backend redis needs REDIS_ADDR")
		}
		return redisad.NewHistory(rdb, redisad.HistoryKey), noop, nil
	case HistoryMySQL:
		repo, err := sqlhistory.Open(ctx, sqlhistory.DriverMySQL, c.MySQLDSN)
		if err != nil {
			return nil, noop, err
		}
		return repo, func() { _ = repo.Close() }, nil
	default:
		if dir := filepath.Dir(c.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, noop, fmt.Errorf("history dir: %w", err)
			}
		}
		repo, err := sqlhistory.Open(ctx, sqlhistory.DriverSQLite, c.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		return repo, func() { _ = repo.Close() }, nil
	}
}
