package config

import (
	"log/slog"
	"time"

	"github.com/spf13/viper"
)

// Load reads .env (when present) and the process environment into a typed
// App. DATABASE_URL and JWT_SECRET are required; everything else defaults.
func Load() App {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		slog.Info("no .env file, using environment only")
	}

	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_ENV", "dev")
	viper.SetDefault("JWT_TTL_HOURS", 168)
	viper.SetDefault("SWEEP_INTERVAL", "1h")
	viper.SetDefault("STATS_CACHE_TTL", "60s")

	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)

	cfg := App{
		Port:          viper.GetString("APP_PORT"),
		DatabaseURL:   must("DATABASE_URL"),
		JWTSecret:     must("JWT_SECRET"),
		JWTTTLHours:   viper.GetInt("JWT_TTL_HOURS"),
		Env:           viper.GetString("APP_ENV"),
		SweepInterval: viper.GetDuration("SWEEP_INTERVAL"),
		StatsCacheTTL: viper.GetDuration("STATS_CACHE_TTL"),
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Hour
	}
	return cfg
}

func must(k string) string {
	v := viper.GetString(k)
	if v == "" {
		slog.Error("required env missing", "key", k)
		panic("missing env " + k)
	}
	return v
}
