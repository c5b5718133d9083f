package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the complete application configuration, loaded once at
// startup from environment variables.
type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string
	UploadDir   string
	CORSOrigin  string

	// Per-IP rate limit applied to mutating endpoints
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads the .env file (if present) and assembles the configuration
// with local-dev defaults.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		DatabaseURL:    getEnv("DATABASE_URL", "sqlite://devchannels.db"),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		UploadDir:      getEnv("UPLOAD_DIR", "./uploads"),
		CORSOrigin:     getEnv("CORS_ORIGIN", "*"),
		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 10),
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "secret_key_change_me"
		log.Println("JWT_SECRET not set, using insecure development default")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
