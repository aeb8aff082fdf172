package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings, read from the environment. A local .env
// file is honored but never overrides real environment variables.
type Config struct {
	DatabaseURL   string
	DataPath      string
	Port          string
	JWTSecret     string
	AdminUsername string
	AdminPassword string
	LogLevel      string
	Environment   string
}

// Load reads configuration from the environment and an optional .env file.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		DataPath:      getenv("DATA_PATH", "sigalit.db"),
		Port:          getenv("PORT", "8000"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		AdminUsername: getenv("ADMIN_USERNAME", "admin"),
		AdminPassword: getenv("ADMIN_PASSWORD", "admin123"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		Environment:   getenv("ENVIRONMENT", "development"),
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
