package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	SecretKey   string

	ServerPort  string
	ServerHost  string
	Environment string

	SessionLifetime     time.Duration
	SessionCookieSecure bool
	ForceHTTPS          bool
	BcryptCost          int
	AllowedOrigins      []string

	SecurityLogPath    string
	DatabaseLogPath    string
	SlowQueryThreshold time.Duration
	TrackedTables      []string

	RedisURL               string
	RateLimitLoginLimit    int
	RateLimitLoginWindow   time.Duration
	RateLimitRegisterLimit int
	RateLimitRegisterWin   time.Duration
	BlockAfterFailures     int
	BlockDuration          time.Duration

	LogLevel  string
	LogFormat string
}

var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")
	ErrMissingSecretKey   = errors.New("SECRET_KEY is required")
)

// defaultTrackedTables are the tables whose mutations always reach the
// database audit stream.
var defaultTrackedTables = []string{
	"users", "vehicles", "reservations", "drivers", "assignments",
	"maintenance", "providers", "organizations", "permissions",
}

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SecretKey:   os.Getenv("SECRET_KEY"),

		ServerPort:  getEnvOrDefault("SERVER_PORT", "8080"),
		ServerHost:  getEnvOrDefault("SERVER_HOST", "localhost"),
		Environment: getEnvOrDefault("ENV", "development"),

		SessionCookieSecure: getEnvOrDefaultBool("SESSION_COOKIE_SECURE", false),
		ForceHTTPS:          getEnvOrDefaultBool("FORCE_HTTPS", false),
		BcryptCost:          getEnvOrDefaultInt("BCRYPT_COST", 0),
		AllowedOrigins:      splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),

		SecurityLogPath: getEnvOrDefault("SECURITY_LOG_PATH", "logs/security.log"),
		DatabaseLogPath: getEnvOrDefault("DATABASE_LOG_PATH", "logs/database.log"),
		TrackedTables:   defaultTrackedTables,

		RedisURL: os.Getenv("REDIS_URL"),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),
	}

	if cfg.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}
	if cfg.SecretKey == "" {
		return nil, ErrMissingSecretKey
	}

	cfg.SessionLifetime = getEnvOrDefaultDuration("SESSION_LIFETIME", 8*time.Hour)
	cfg.SlowQueryThreshold = time.Duration(getEnvOrDefaultInt("SLOW_QUERY_THRESHOLD_MS", 100)) * time.Millisecond

	cfg.RateLimitLoginLimit = getEnvOrDefaultInt("RATE_LIMIT_LOGIN_ATTEMPTS", 5)
	cfg.RateLimitLoginWindow = getEnvOrDefaultDuration("RATE_LIMIT_LOGIN_WINDOW", time.Minute)
	cfg.RateLimitRegisterLimit = getEnvOrDefaultInt("RATE_LIMIT_REGISTER_ATTEMPTS", 3)
	cfg.RateLimitRegisterWin = getEnvOrDefaultDuration("RATE_LIMIT_REGISTER_WINDOW", time.Hour)
	cfg.BlockAfterFailures = getEnvOrDefaultInt("BLOCK_AFTER_FAILURES", 5)
	cfg.BlockDuration = getEnvOrDefaultDuration("BLOCK_DURATION", 15*time.Minute)

	return cfg, nil
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvOrDefaultBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

func getEnvOrDefaultDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		// numeric values are seconds, otherwise Go duration syntax
		if n, err := strconv.Atoi(value); err == nil {
			return time.Duration(n) * time.Second
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			return defaultValue
		}
		return d
	}
	return defaultValue
}
