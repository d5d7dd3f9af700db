package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		DatabaseDriver:     DatabaseDriverSQLite,
		DatabaseDSN:        ":memory:",
		AccessTokenTTL:     time.Hour,
		ClientIDHeader:     "X-Client-Id",
		PasswordHashScheme: PasswordHashPBKDF2,
		MaxUsersPerUDID:    3,
		EnableRateLimit:    true,
		RateLimitStore:     RateLimitStoreMemory,
		MetricsCacheType:   MetricsCacheTypeMemory,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		errorMsg string
	}{
		{name: "valid defaults", mutate: func(*Config) {}},
		{name: "postgres", mutate: func(c *Config) { c.DatabaseDriver = DatabaseDriverPostgres }},
		{name: "hmac scheme", mutate: func(c *Config) { c.PasswordHashScheme = PasswordHashHMAC }},
		{
			name:     "unknown driver",
			mutate:   func(c *Config) { c.DatabaseDriver = "mysql" },
			errorMsg: `invalid DATABASE_DRIVER value: "mysql"`,
		},
		{
			name:     "empty dsn",
			mutate:   func(c *Config) { c.DatabaseDSN = "" },
			errorMsg: "DATABASE_DSN is required",
		},
		{
			name:     "unknown hash scheme",
			mutate:   func(c *Config) { c.PasswordHashScheme = "md5" },
			errorMsg: `invalid PASSWORD_HASH_SCHEME value: "md5"`,
		},
		{
			name:     "zero ttl",
			mutate:   func(c *Config) { c.AccessTokenTTL = 0 },
			errorMsg: "ACCESS_TOKEN_TTL must be a positive duration",
		},
		{
			name:     "empty client id header",
			mutate:   func(c *Config) { c.ClientIDHeader = "" },
			errorMsg: "CLIENT_ID_HEADER must not be empty",
		},
		{
			name:     "zero udid cap",
			mutate:   func(c *Config) { c.MaxUsersPerUDID = 0 },
			errorMsg: "MAX_USERS_PER_UDID must be positive",
		},
		{
			name:     "rate limit store typo",
			mutate:   func(c *Config) { c.RateLimitStore = "reddis" },
			errorMsg: `invalid RATE_LIMIT_STORE value: "reddis"`,
		},
		{
			name:     "rate limit store case sensitive",
			mutate:   func(c *Config) { c.RateLimitStore = "MEMORY" },
			errorMsg: `invalid RATE_LIMIT_STORE value: "MEMORY"`,
		},
		{
			name:     "redis rate limit without address",
			mutate:   func(c *Config) { c.RateLimitStore = RateLimitStoreRedis },
			errorMsg: `RATE_LIMIT_STORE="redis" requires REDIS_ADDR`,
		},
		{
			name: "rate limit store ignored when disabled",
			mutate: func(c *Config) {
				c.EnableRateLimit = false
				c.RateLimitStore = "bogus"
			},
		},
		{
			name:     "metrics cache typo",
			mutate:   func(c *Config) { c.MetricsCacheType = "memcached" },
			errorMsg: `invalid METRICS_CACHE_TYPE value: "memcached"`,
		},
		{
			name: "redis-aside metrics cache without address",
			mutate: func(c *Config) {
				c.MetricsEnabled = true
				c.MetricsGaugeUpdateEnabled = true
				c.MetricsGaugeUpdateInterval = time.Minute
				c.MetricsCacheType = MetricsCacheTypeRedisAside
			},
			errorMsg: `METRICS_CACHE_TYPE="redis-aside" requires REDIS_ADDR`,
		},
		{
			name: "redis metrics cache unused without gauges",
			mutate: func(c *Config) {
				c.MetricsEnabled = true
				c.MetricsCacheType = MetricsCacheTypeRedis
			},
		},
		{
			name: "gauge interval",
			mutate: func(c *Config) {
				c.MetricsEnabled = true
				c.MetricsGaugeUpdateEnabled = true
			},
			errorMsg: "METRICS_GAUGE_UPDATE_INTERVAL must be a positive duration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"DATABASE_DRIVER", "DATABASE_DSN", "ACCESS_TOKEN_TTL", "CLIENT_ID_HEADER",
		"PASSWORD_HASH_SCHEME", "MAX_USERS_PER_UDID", "ENVIRONMENT", "DB_INIT_TIMEOUT",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, DatabaseDriverSQLite, cfg.DatabaseDriver)
	assert.Equal(t, "enchilada.db", cfg.DatabaseDSN)
	assert.Equal(t, 7*24*time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, "X-Client-Id", cfg.ClientIDHeader)
	assert.Equal(t, PasswordHashPBKDF2, cfg.PasswordHashScheme)
	assert.Equal(t, 3, cfg.MaxUsersPerUDID)
	assert.False(t, cfg.IsProduction)
	assert.Equal(t, 30*time.Second, cfg.DBInitTimeout)
	assert.Equal(t, 10*time.Second, cfg.AuditShutdownTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_DSN", "host=db user=app")
	t.Setenv("ACCESS_TOKEN_TTL", "2h")
	t.Setenv("CLIENT_ID_HEADER", "X-Echo-Client-Id")
	t.Setenv("PASSWORD_HASH_SCHEME", "HMAC")
	t.Setenv("MAX_USERS_PER_UDID", "5")
	t.Setenv("ENVIRONMENT", "Production")
	t.Setenv("ENABLE_RATE_LIMIT", "false")
	t.Setenv("DB_INIT_TIMEOUT", "not-a-duration")
	t.Setenv("REDIS_DB", "x")

	cfg := Load()
	assert.Equal(t, DatabaseDriverPostgres, cfg.DatabaseDriver)
	assert.Equal(t, "host=db user=app", cfg.DatabaseDSN)
	assert.Equal(t, 2*time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, "X-Echo-Client-Id", cfg.ClientIDHeader)
	assert.Equal(t, PasswordHashHMAC, cfg.PasswordHashScheme)
	assert.Equal(t, 5, cfg.MaxUsersPerUDID)
	assert.True(t, cfg.IsProduction)
	assert.False(t, cfg.EnableRateLimit)
	assert.Equal(t, 30*time.Second, cfg.DBInitTimeout, "invalid values fall back to defaults")
	assert.Equal(t, 0, cfg.RedisDB)
}
