package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/scentpos/backend/internal/application/report"
	"github.com/scentpos/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// New builds the report cache selected by configuration. The Redis backend
// is verified with a ping so a misconfigured cache fails at startup, not on
// the first report request.
func New(cfg *config.Config, logger *zap.Logger) (report.Cache, error) {
	switch cfg.Cache.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping failed: %w", err)
		}
		return NewRedisCache(client, logger), nil
	case "memory":
		return NewMemoryCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}
