package bootstrap

import (
	"context"
	"log/slog"

	"github.com/eleven-am/audiogen/internal/playback"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// ProvideRedisClient returns nil when REDIS_ADDR is unset.
func ProvideRedisClient(lc fx.Lifecycle, cfg *Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return client
}

func ProvideHandleStore(cfg *Config, client *redis.Client, logger *slog.Logger) playback.HandleStore {
	if client == nil {
		logger.Info("media handles kept in memory")
		return playback.NewMemoryStore()
	}
	logger.Info("media handles kept in redis", "addr", cfg.RedisAddr, "ttl", cfg.MediaTTL())
	return playback.NewRedisStore(client, cfg.MediaTTL())
}

var InfrastructureModule = fx.Options(
	fx.Provide(
		ProvideRedisClient,
		ProvideHandleStore,
	),
)
