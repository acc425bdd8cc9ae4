package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Mistral  MistralConfig
	Database DatabaseConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr        string
	MaxUploadMB int64
}

// MistralConfig holds configuration for the hosted OCR and structuring models
type MistralConfig struct {
	APIKey         string
	BaseURL        string
	OCRModel       string
	StructureModel string
	OCRTimeout     time.Duration
	ChatTimeout    time.Duration
}

// DatabaseConfig holds database-related configuration.
// The DSN is optional: without it the service runs extraction-only.
type DatabaseConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        getEnv("HTTP_ADDR", ":8080"),
			MaxUploadMB: int64(getEnvAsInt("MAX_UPLOAD_MB", 10)),
		},
		Mistral: MistralConfig{
			APIKey:         getEnv("MISTRAL_API_KEY", ""),
			BaseURL:        getEnv("MISTRAL_BASE_URL", "https://api.mistral.ai"),
			OCRModel:       getEnv("OCR_MODEL", "mistral-ocr-latest"),
			StructureModel: getEnv("STRUCTURE_MODEL", "pixtral-12b-latest"),
			OCRTimeout:     getEnvAsDuration("OCR_TIMEOUT", 60*time.Second),
			ChatTimeout:    getEnvAsDuration("CHAT_TIMEOUT", 90*time.Second),
		},
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", ""),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvAsInt32(key string, fallback int32) int32 {
	return int32(getEnvAsInt(key, int(fallback)))
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
