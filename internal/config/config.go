package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Database drivers
const (
	DatabaseDriverSQLite   = "sqlite"
	DatabaseDriverPostgres = "postgres"
)

// Password hash schemes
const (
	PasswordHashPBKDF2 = "pbkdf2"
	PasswordHashHMAC   = "hmac"
)

// Rate limit stores
const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"
)

// Metrics cache types
const (
	MetricsCacheTypeMemory     = "memory"
	MetricsCacheTypeRedis      = "redis"
	MetricsCacheTypeRedisAside = "redis-aside"
)

const defaultAccessTokenTTL = 7 * 24 * time.Hour

type Config struct {
	// Server settings
	ServerAddr   string
	Environment  string
	IsProduction bool

	// Database
	DatabaseDriver string // "sqlite" or "postgres"
	DatabaseDSN    string

	// Tokens and gate
	AccessTokenTTL  time.Duration
	ClientIDHeader  string
	GateCallerParam string

	// Users
	PasswordHashScheme string
	MaxUsersPerUDID    int

	// Declarative clients and scopes, applied at startup
	PolicyFile string

	// Audit logging
	EnableAuditLogging      bool
	AuditLogBufferSize      int
	AuditLogRetention       time.Duration
	AuditLogCleanupInterval time.Duration

	// Prometheus metrics
	MetricsEnabled             bool
	MetricsToken               string
	MetricsGaugeUpdateEnabled  bool
	MetricsGaugeUpdateInterval time.Duration
	MetricsCacheType           string
	MetricsCacheTTL            time.Duration
	MetricsCacheClientTTL      time.Duration

	// Rate limiting
	EnableRateLimit          bool
	RateLimitStore           string
	RateLimitCleanupInterval time.Duration
	LoginRateLimit           int // requests per minute
	SignUpRateLimit          int

	// Redis, shared by the rate limiter and the metrics cache
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Timeouts
	DBInitTimeout         time.Duration
	DBCloseTimeout        time.Duration
	RedisConnTimeout      time.Duration
	RedisCloseTimeout     time.Duration
	CacheInitTimeout      time.Duration
	CacheCloseTimeout     time.Duration
	ServerShutdownTimeout time.Duration
	AuditShutdownTimeout  time.Duration
}

func Load() *Config {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	driver := getEnv("DATABASE_DRIVER", DatabaseDriverSQLite)
	var dsn string
	if driver == DatabaseDriverSQLite {
		dsn = getEnv("DATABASE_DSN", "enchilada.db")
	} else {
		dsn = getEnv("DATABASE_DSN", "")
	}

	env := getEnv("ENVIRONMENT", "development")

	return &Config{
		ServerAddr:   getEnv("SERVER_ADDR", ":8080"),
		Environment:  env,
		IsProduction: strings.EqualFold(env, "production"),

		DatabaseDriver: driver,
		DatabaseDSN:    dsn,

		AccessTokenTTL:  getEnvDuration("ACCESS_TOKEN_TTL", defaultAccessTokenTTL),
		ClientIDHeader:  getEnv("CLIENT_ID_HEADER", "X-Client-Id"),
		GateCallerParam: getEnv("GATE_CALLER_PARAM", ""),

		PasswordHashScheme: strings.ToLower(getEnv("PASSWORD_HASH_SCHEME", PasswordHashPBKDF2)),
		MaxUsersPerUDID:    getEnvInt("MAX_USERS_PER_UDID", 3),

		PolicyFile: getEnv("POLICY_FILE", ""),

		EnableAuditLogging:      getEnvBool("ENABLE_AUDIT_LOGGING", true),
		AuditLogBufferSize:      getEnvInt("AUDIT_LOG_BUFFER_SIZE", 1000),
		AuditLogRetention:       getEnvDuration("AUDIT_LOG_RETENTION", 90*24*time.Hour),
		AuditLogCleanupInterval: getEnvDuration("AUDIT_LOG_CLEANUP_INTERVAL", 24*time.Hour),

		MetricsEnabled:             getEnvBool("METRICS_ENABLED", false),
		MetricsToken:               getEnv("METRICS_TOKEN", ""),
		MetricsGaugeUpdateEnabled:  getEnvBool("METRICS_GAUGE_UPDATE_ENABLED", true),
		MetricsGaugeUpdateInterval: getEnvDuration("METRICS_GAUGE_UPDATE_INTERVAL", 5*time.Minute),
		MetricsCacheType:           getEnv("METRICS_CACHE_TYPE", MetricsCacheTypeMemory),
		MetricsCacheTTL:            getEnvDuration("METRICS_CACHE_TTL", 5*time.Minute),
		MetricsCacheClientTTL:      getEnvDuration("METRICS_CACHE_CLIENT_TTL", 30*time.Second),

		EnableRateLimit:          getEnvBool("ENABLE_RATE_LIMIT", true),
		RateLimitStore:           getEnv("RATE_LIMIT_STORE", RateLimitStoreMemory),
		RateLimitCleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		LoginRateLimit:           getEnvInt("LOGIN_RATE_LIMIT", 10),
		SignUpRateLimit:          getEnvInt("SIGNUP_RATE_LIMIT", 5),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		DBInitTimeout:         getEnvDuration("DB_INIT_TIMEOUT", 30*time.Second),
		DBCloseTimeout:        getEnvDuration("DB_CLOSE_TIMEOUT", 5*time.Second),
		RedisConnTimeout:      getEnvDuration("REDIS_CONN_TIMEOUT", 5*time.Second),
		RedisCloseTimeout:     getEnvDuration("REDIS_CLOSE_TIMEOUT", 5*time.Second),
		CacheInitTimeout:      getEnvDuration("CACHE_INIT_TIMEOUT", 5*time.Second),
		CacheCloseTimeout:     getEnvDuration("CACHE_CLOSE_TIMEOUT", 5*time.Second),
		ServerShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 5*time.Second),
		AuditShutdownTimeout:  getEnvDuration("AUDIT_SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case DatabaseDriverSQLite, DatabaseDriverPostgres:
	default:
		return fmt.Errorf("invalid DATABASE_DRIVER value: %q (must be %q or %q)",
			c.DatabaseDriver, DatabaseDriverSQLite, DatabaseDriverPostgres)
	}
	if c.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN is required")
	}

	switch c.PasswordHashScheme {
	case PasswordHashPBKDF2, PasswordHashHMAC:
	default:
		return fmt.Errorf("invalid PASSWORD_HASH_SCHEME value: %q (must be %q or %q)",
			c.PasswordHashScheme, PasswordHashPBKDF2, PasswordHashHMAC)
	}

	if c.AccessTokenTTL <= 0 {
		return errors.New("ACCESS_TOKEN_TTL must be a positive duration")
	}
	if c.ClientIDHeader == "" {
		return errors.New("CLIENT_ID_HEADER must not be empty")
	}
	if c.MaxUsersPerUDID <= 0 {
		return errors.New("MAX_USERS_PER_UDID must be positive")
	}

	if c.EnableRateLimit {
		switch c.RateLimitStore {
		case RateLimitStoreMemory:
		case RateLimitStoreRedis:
			if c.RedisAddr == "" {
				return fmt.Errorf("RATE_LIMIT_STORE=%q requires REDIS_ADDR", c.RateLimitStore)
			}
		default:
			return fmt.Errorf("invalid RATE_LIMIT_STORE value: %q (must be %q or %q)",
				c.RateLimitStore, RateLimitStoreMemory, RateLimitStoreRedis)
		}
	}

	switch c.MetricsCacheType {
	case MetricsCacheTypeMemory:
	case MetricsCacheTypeRedis, MetricsCacheTypeRedisAside:
		if c.MetricsEnabled && c.MetricsGaugeUpdateEnabled && c.RedisAddr == "" {
			return fmt.Errorf("METRICS_CACHE_TYPE=%q requires REDIS_ADDR", c.MetricsCacheType)
		}
	default:
		return fmt.Errorf("invalid METRICS_CACHE_TYPE value: %q (must be %q, %q or %q)",
			c.MetricsCacheType, MetricsCacheTypeMemory, MetricsCacheTypeRedis, MetricsCacheTypeRedisAside)
	}

	if c.MetricsEnabled && c.MetricsGaugeUpdateEnabled && c.MetricsGaugeUpdateInterval <= 0 {
		return errors.New("METRICS_GAUGE_UPDATE_INTERVAL must be a positive duration")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
