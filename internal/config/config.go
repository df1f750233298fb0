// Package config loads runtime configuration from the environment.
package config

import "os"

// AppConfig holds everything the server needs at startup.
type AppConfig struct {
	HTTPAddr  string
	DBPath    string
	JWTSecret string
}

// Load reads configuration from environment variables, falling back to
// development defaults.
func Load() AppConfig {
	return AppConfig{
		HTTPAddr:  getEnv("HTTP_ADDR", ":8080"),
		DBPath:    getEnv("DB_PATH", "./data/splitward.db"),
		JWTSecret: getEnv("JWT_SECRET", "dev-insecure-secret-change"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
