// Package config provides configuration for the application
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Session store backends
const (
	SessionStoreMemory = "memory"
	SessionStoreFile   = "file"
	SessionStoreRedis  = "redis"
)

// Config holds all configuration for the application
type Config struct {
	API       APIConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Server    ServerConfig
	Logging   LoggingConfig
	CORS      CORSConfig
	Session   SessionConfig
	RateLimit int
}

// APIConfig holds settings of the remote learning platform API
type APIConfig struct {
	BaseURL string
	// Timeout of zero leaves the transport default in place
	Timeout time.Duration
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port int
	// Body limits in bytes, uploads are multipart requests forwarded to the platform
	MaxRequestSize int64
	MaxUploadSize  int64
	// OpsAPIKey enables the operator endpoints when set
	OpsAPIKey string
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// SessionConfig holds portal session settings
type SessionConfig struct {
	Store         string
	TTL           time.Duration
	FilePath      string
	EncryptionKey string
	CookieSecure  bool
	SweepSchedule string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	godotenv.Load()

	cfg := &Config{}

	// Remote API configuration
	baseURL := os.Getenv("API_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080/api/v1" // default
	}
	cfg.API.BaseURL = strings.TrimRight(baseURL, "/")

	apiTimeout, err := durationEnv("API_TIMEOUT", "0s")
	if err != nil {
		return nil, err
	}
	cfg.API.Timeout = apiTimeout

	// Server configuration
	serverPort, err := intEnv("SERVER_PORT", "3000")
	if err != nil {
		return nil, err
	}
	cfg.Server.Port = serverPort

	maxUploadMB, err := intEnv("MAX_UPLOAD_MB", "200")
	if err != nil {
		return nil, err
	}
	cfg.Server.MaxRequestSize = 1 << 20 // 1 MB
	cfg.Server.MaxUploadSize = int64(maxUploadMB) << 20

	cfg.Server.OpsAPIKey = os.Getenv("OPS_API_KEY") // optional

	// Logging configuration
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info" // default level
	}
	cfg.Logging.Level = logLevel

	// CORS configuration
	cfg.CORS.AllowedOrigins = parseOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"))

	// Rate limit configuration
	rateLimit, err := intEnv("RATE_LIMIT_PER_MINUTE", "100")
	if err != nil {
		return nil, err
	}
	cfg.RateLimit = rateLimit

	// Session configuration
	store := strings.ToLower(os.Getenv("SESSION_STORE"))
	if store == "" {
		store = SessionStoreMemory
	}
	switch store {
	case SessionStoreMemory, SessionStoreFile, SessionStoreRedis:
	default:
		return nil, fmt.Errorf("invalid SESSION_STORE: %s", store)
	}
	cfg.Session.Store = store

	sessionTTL, err := durationEnv("SESSION_TTL", "168h") // 7 days
	if err != nil {
		return nil, err
	}
	cfg.Session.TTL = sessionTTL

	cfg.Session.FilePath = os.Getenv("SESSION_FILE_PATH")
	if cfg.Session.Store == SessionStoreFile && cfg.Session.FilePath == "" {
		return nil, fmt.Errorf("SESSION_FILE_PATH is required for the file session store")
	}

	cfg.Session.EncryptionKey = os.Getenv("SESSION_ENCRYPTION_KEY") // optional
	if key := cfg.Session.EncryptionKey; key != "" && len(key) != 32 {
		return nil, fmt.Errorf("SESSION_ENCRYPTION_KEY must be 32 bytes long")
	}
	cfg.Session.CookieSecure = os.Getenv("SESSION_COOKIE_SECURE") == "true"

	cfg.Session.SweepSchedule = os.Getenv("SESSION_SWEEP_SCHEDULE")
	if cfg.Session.SweepSchedule == "" {
		cfg.Session.SweepSchedule = "@every 10m" // default
	}

	// Redis configuration (used by the redis session store)
	redisHost := os.Getenv("REDIS_HOST")
	if redisHost == "" {
		redisHost = "localhost" // default
	}
	cfg.Redis.Host = redisHost

	redisPort, err := intEnv("REDIS_PORT", "6379")
	if err != nil {
		return nil, err
	}
	cfg.Redis.Port = redisPort

	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD") // optional

	redisDB, err := intEnv("REDIS_DB", "0")
	if err != nil {
		return nil, err
	}
	cfg.Redis.DB = redisDB

	// Database configuration (optional, enables the sync journal)
	cfg.Database.Host = os.Getenv("DB_HOST")
	if cfg.Database.Host != "" {
		dbPort, err := intEnv("DB_PORT", "3306")
		if err != nil {
			return nil, err
		}
		cfg.Database.Port = dbPort

		cfg.Database.User = os.Getenv("DB_USER")
		if cfg.Database.User == "" {
			return nil, fmt.Errorf("DB_USER is required when DB_HOST is set")
		}
		cfg.Database.Password = os.Getenv("DB_PASSWORD")

		cfg.Database.DBName = os.Getenv("DB_NAME")
		if cfg.Database.DBName == "" {
			return nil, fmt.Errorf("DB_NAME is required when DB_HOST is set")
		}
	}

	return cfg, nil
}

// JournalEnabled reports whether a database for the sync journal is configured
func (c *Config) JournalEnabled() bool {
	return c.Database.Host != ""
}

// DSN returns the database connection string
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
	)
}

// RedisAddr returns the Redis address in host:port form
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func intEnv(key, fallback string) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		raw = fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func durationEnv(key, fallback string) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		raw = fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

// parseOrigins parses comma-separated origins, defaulting to all origins
func parseOrigins(raw string) []string {
	if raw == "" {
		// Default to allow all origins if not specified (for development)
		return []string{"*"}
	}

	origins := strings.Split(raw, ",")
	allowed := make([]string, 0, len(origins))
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowed = append(allowed, origin)
		}
	}
	// If no valid origins found, default to allow all
	if len(allowed) == 0 {
		return []string{"*"}
	}
	return allowed
}
