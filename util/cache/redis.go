package cache

import (
	"context"
	"log/slog"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/viper"
)

// New returns a redis client, or nil when redis is unreachable. Callers
// treat a nil client as "caching disabled" rather than a fatal condition.
func New(ctx context.Context) *redis.Client {
	addr := viper.GetString("REDIS_HOST") + ":" + viper.GetString("REDIS_PORT")
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: viper.GetString("REDIS_PASSWORD"),
		DB:       viper.GetInt("REDIS_DB"),
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, continuing without cache", "addr", addr, "err", err)
		return nil
	}
	return rdb
}
