package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env           string
	Port          string
	DataDir       string
	SessionSecret string
	SessionTTL    time.Duration
	Origin        string // CORS

	// Default admin seeded on first boot.
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func Load() Config {
	_ = godotenv.Load()

	ttl := 7 * 24 * time.Hour
	if v := os.Getenv("SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			ttl = d
		}
	}
	return Config{
		Env:           env("APP_ENV", "dev"),
		Port:          env("API_PORT", "8080"),
		DataDir:       env("DATA_DIR", "./data"),
		SessionSecret: env("SESSION_SECRET", "change-me-in-production"),
		SessionTTL:    ttl,
		Origin:        env("CORS_ORIGIN", "http://localhost:3000"),
		AdminName:     env("ADMIN_NAME", "System Administrator"),
		AdminEmail:    env("ADMIN_EMAIL", "admin@almeshkat.local"),
		AdminPassword: env("ADMIN_PASSWORD", "admin123"),
	}
}
