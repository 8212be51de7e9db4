package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server configuration
	Port        string
	Environment string

	// Remote platform API
	APIBaseURL string
	APITimeout time.Duration

	// Redis configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// PubNub configuration
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string

	// Session configuration
	SessionTTL    time.Duration
	SessionCookie string

	// Booking workflow
	WorkflowTTL  time.Duration
	MaxAttendees int

	// Payment polling
	PaymentPollInterval  time.Duration
	PaymentPollMaxErrors int

	// Monitoring
	EnableMetrics bool
	MetricsPort   string
}

func LoadConfig() *Config {
	// .env is optional; real deployments use the environment directly.
	_ = godotenv.Load()

	return &Config{
		// Server
		Port:        getEnv("PORT", "8090"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// Platform API
		APIBaseURL: getEnv("API_BASE_URL", "http://127.0.0.1:8000/api/v1"),
		APITimeout: getEnvAsDuration("API_TIMEOUT", "10s"),

		// Redis
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),

		// Sessions
		SessionTTL:    getEnvAsDuration("SESSION_TTL", "24h"),
		SessionCookie: getEnv("SESSION_COOKIE", "portal_session"),

		// Workflow
		WorkflowTTL:  getEnvAsDuration("WORKFLOW_TTL", "30m"),
		MaxAttendees: getEnvAsInt("MAX_ATTENDEES", 10),

		// Payment polling
		PaymentPollInterval:  getEnvAsDuration("PAYMENT_POLL_INTERVAL", "5s"),
		PaymentPollMaxErrors: getEnvAsInt("PAYMENT_POLL_MAX_ERRORS", 3),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
		MetricsPort:   getEnv("METRICS_PORT", "9090"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
