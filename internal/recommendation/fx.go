package recommendation

import (
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/mercado/internal/config"
	"github.com/smallbiznis/mercado/internal/recommendation/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("recommendation.service",
	fx.Provide(NewRedisClient),
	fx.Provide(service.New),
)

// NewRedisClient returns nil when no redis address is configured; the service
// then recomputes every snapshot instead of caching.
func NewRedisClient(cfg config.Config, log *zap.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	log.Info("recommendation cache enabled", zap.String("addr", cfg.RedisAddr))
	return client
}
