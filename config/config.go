package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

var (
	PORT      string
	APP_ENV   string
	LOG_LEVEL string
	APP_URL   string

	DB_URL      string
	JWT_SECRET  string
	CORS_ORIGIN string

	STRIPE_SECRET_KEY       string
	STRIPE_WEBHOOK_SECRET   string
	STRIPE_PRICE_STARTER    string
	STRIPE_PRICE_PRO        string
	STRIPE_PRICE_ENTERPRISE string

	OPENAI_API_KEY     string
	OPENAI_BASE_URL    string
	OPENAI_IMAGE_MODEL string

	// Upper bound on a single provider call; timeouts count as failures.
	GENERATION_TIMEOUT       time.Duration
	GENERATE_RATE_PER_MINUTE int

	WEBHOOK_EVENT_RETENTION_DAYS int

	// Durable copies of generated images, served under /media.
	MEDIA_DIR      string
	MEDIA_BASE_URL string
)

func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, using system environment variables")
	}

	PORT = getEnv("PORT", "8080")
	APP_ENV = getEnv("APP_ENV", "development")
	LOG_LEVEL = getEnv("LOG_LEVEL", "info")
	APP_URL = getEnv("APP_URL", "http://localhost:5173")

	DB_URL = mustEnv("DB_URL")
	JWT_SECRET = mustEnv("JWT_SECRET")
	CORS_ORIGIN = getEnv("CORS_ORIGIN", APP_URL)

	// Stripe stays optional at boot: handlers answer with a configuration
	// error instead of the process refusing to start.
	STRIPE_SECRET_KEY = getEnv("STRIPE_SECRET_KEY", "")
	STRIPE_WEBHOOK_SECRET = getEnv("STRIPE_WEBHOOK_SECRET", "")
	STRIPE_PRICE_STARTER = getEnv("STRIPE_PRICE_STARTER", "price_starter_monthly")
	STRIPE_PRICE_PRO = getEnv("STRIPE_PRICE_PRO", "price_pro_monthly")
	STRIPE_PRICE_ENTERPRISE = getEnv("STRIPE_PRICE_ENTERPRISE", "price_enterprise_monthly")

	OPENAI_API_KEY = getEnv("OPENAI_API_KEY", "")
	OPENAI_BASE_URL = getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1")
	OPENAI_IMAGE_MODEL = getEnv("OPENAI_IMAGE_MODEL", "dall-e-3")

	GENERATION_TIMEOUT = getDuration("GENERATION_TIMEOUT", 60*time.Second)
	GENERATE_RATE_PER_MINUTE = getInt("GENERATE_RATE_PER_MINUTE", 10)
	WEBHOOK_EVENT_RETENTION_DAYS = getInt("WEBHOOK_EVENT_RETENTION_DAYS", 30)

	MEDIA_DIR = getEnv("MEDIA_DIR", "./media")
	MEDIA_BASE_URL = getEnv("MEDIA_BASE_URL", "http://localhost:"+PORT+"/media")
}

func IsProduction() bool {
	return APP_ENV == "production"
}

func mustEnv(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatal().Str("key", key).Msg("missing required environment variable")
	}
	return v
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Warn().Str("key", key).Str("value", raw).Int("fallback", fallback).Msg("invalid integer, using fallback")
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Warn().Str("key", key).Str("value", raw).Dur("fallback", fallback).Msg("invalid duration, using fallback")
		return fallback
	}
	return d
}
