package config

import "time"

type App struct {
	Port          string
	DatabaseURL   string
	JWTSecret     string
	JWTTTLHours   int
	Env           string
	SweepInterval time.Duration
	StatsCacheTTL time.Duration
}
