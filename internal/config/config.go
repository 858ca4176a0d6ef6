package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string
	BaseURL    string

	// Database
	DatabaseURL string

	// Redis (optional) - shared rate limiter storage across replicas
	RedisURL string

	// TLS
	TLSEnabled  bool
	TLSCertFile string
	TLSKeyFile  string

	// CORS
	CORSOrigins string // Comma-separated allowed origins

	// Escalation lifecycle
	RequestTTL    time.Duration // env: REQUEST_TTL_MINUTES, default 2m
	SweepInterval time.Duration // env: SWEEP_INTERVAL_SECONDS, default 30s

	// Learned-answer cache
	FuzzyThreshold int // env: FUZZY_MATCH_THRESHOLD, 0-100, default 80

	// Dashboard
	HistoryPageSize int // env: HISTORY_PAGE_SIZE, default 50

	// Conversation endpoint
	AgentReplyURL string // env: AGENT_REPLY_URL, optional default reply sink
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:         getEnv("ENV", "development"),
		ServerAddr:  getEnv("SERVER_ADDR", ":5005"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:5005"),
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/frontdesk?sslmode=disable"),
		RedisURL:    getEnv("REDIS_URL", ""),
		TLSEnabled:  getEnv("TLS_ENABLED", "") != "",
		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),
		CORSOrigins: getEnv("CORS_ORIGINS", ""),

		RequestTTL:    time.Duration(getEnvInt("REQUEST_TTL_MINUTES", 2)) * time.Minute,
		SweepInterval: time.Duration(getEnvInt("SWEEP_INTERVAL_SECONDS", 30)) * time.Second,

		FuzzyThreshold:  clamp(getEnvInt("FUZZY_MATCH_THRESHOLD", 80), 1, 100),
		HistoryPageSize: getEnvInt("HISTORY_PAGE_SIZE", 50),

		AgentReplyURL: getEnv("AGENT_REPLY_URL", ""),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}
