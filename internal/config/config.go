package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr          string
	DatabaseURL   string
	AccessSecret  string
	RefreshSecret string
	AllowedOrigin string
}

// Load reads .env when present, then the environment. Defaults match the
// local dev setup: server on :4000, frontend on localhost:3000.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:          getenv("LISTEN_ADDR", ":4000"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		AccessSecret:  getenv("ACCESS_TOKEN_SECRET", "your-access-secret"),
		RefreshSecret: getenv("REFRESH_TOKEN_SECRET", "your-refresh-secret"),
		AllowedOrigin: getenv("ALLOWED_ORIGIN", "http://localhost:3000"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
