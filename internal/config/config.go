package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds application configuration
type Config struct {
	// Server
	HTTPAddr         string
	LogLevel         string
	HTTPWriteTimeout time.Duration // generous so a slow text + image round trip is not cut off

	// Text generation (Gemini)
	TextBackend       string // genai or langchain
	GeminiModel       string
	GeminiAPIEndpoint string // if set, overrides default Gemini API base URL (e.g. http://host.docker.internal:31300/gemini)

	// Image generation (Stability AI)
	StabilityAPIHost string

	// Secrets: empty means environment variables (+ .env); otherwise a YAML document path or s3://bucket/key
	SecretsSource string

	// S3 (only used when SecretsSource is an s3:// URL)
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string

	// Input
	MaxIdeaLength int
}

// Load loads configuration from environment variables. A .env file in the
// working directory is applied first when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("Failed to load .env file")
	}

	return &Config{
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		HTTPWriteTimeout: getEnvDuration("HTTP_WRITE_TIMEOUT", 180*time.Second),

		TextBackend:       getEnv("TEXT_BACKEND", "genai"),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiAPIEndpoint: getEnv("GEMINI_API_ENDPOINT", ""),

		StabilityAPIHost: getEnv("STABILITY_API_HOST", "https://api.stability.ai"),

		SecretsSource: getEnv("SECRETS_SOURCE", ""),

		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_KEY", ""),

		MaxIdeaLength: clampMin(getEnvInt("MAX_IDEA_LENGTH", 0), 0),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// clampMin returns v if v >= min, otherwise min. Used to ensure config values are in valid range.
func clampMin(v, min int) int {
	if v < min {
		return min
	}
	return v
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
