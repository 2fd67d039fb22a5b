package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ErrConfiguration is returned when required configuration is missing or invalid.
var ErrConfiguration = errors.New("configuration error")

// Snapshot selection policies
const (
	SnapshotPolicyMixed       = "mixed"
	SnapshotPolicyGlobal      = "global"
	SnapshotPolicyPerPlatform = "per_platform"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	Database DatabaseConfig
	Redis    RedisConfig
	Upstream UpstreamConfig
	Collect  CollectConfig
	Market   MarketConfig
	Scoring  ScoringConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// UpstreamConfig holds the ranking data provider endpoints
type UpstreamConfig struct {
	BaseURL   string
	SignPath  string
	DataPath  string
	APIFlag   string
	Filename  string
	UserAgent string
	Timeout   time.Duration
	RPS       float64 // outbound requests per second
}

// CollectConfig holds collection cadence settings
type CollectConfig struct {
	// IntervalMinutes is the only place the collection cadence is defined.
	IntervalMinutes int
	LeaseTTL        time.Duration
}

// MarketConfig describes the market clock used for trading-day keys
type MarketConfig struct {
	UTCOffsetHours int
	CutoffHour     int // 이 시각 이전은 전일 거래일
}

// ScoringConfig holds query-side settings
type ScoringConfig struct {
	SnapshotPolicy   string
	PlatformCacheTTL time.Duration
}

// Location returns the fixed market time zone.
func (m MarketConfig) Location() *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+d", m.UTCOffsetHours), m.UTCOffsetHours*3600)
}

// Interval returns the collection cadence as a duration.
func (c CollectConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Upstream: UpstreamConfig{
			BaseURL:   getEnv("UPSTREAM_BASE_URL", "https://www.59155188.xyz"),
			SignPath:  getEnv("UPSTREAM_SIGN_PATH", "/api/get_sign"),
			DataPath:  getEnv("UPSTREAM_DATA_PATH", "/api/get_csv"),
			APIFlag:   getEnv("UPSTREAM_API_FLAG", "csv"),
			Filename:  getEnv("UPSTREAM_FILENAME", "S88.csv"),
			UserAgent: getEnv("UPSTREAM_USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"),
			Timeout:   getEnvAsDuration("UPSTREAM_TIMEOUT", "30s"),
			RPS:       getEnvAsFloat("UPSTREAM_RPS", 2),
		},

		Collect: CollectConfig{
			IntervalMinutes: getEnvAsInt("COLLECT_INTERVAL_MINUTES", 1),
			LeaseTTL:        getEnvAsDuration("COLLECT_LEASE_TTL", "5m"),
		},

		Market: MarketConfig{
			UTCOffsetHours: getEnvAsInt("MARKET_UTC_OFFSET_HOURS", 8),
			CutoffHour:     getEnvAsInt("TRADING_DAY_CUTOFF_HOUR", 6),
		},

		Scoring: ScoringConfig{
			SnapshotPolicy:   getEnv("SNAPSHOT_POLICY", SnapshotPolicyMixed),
			PlatformCacheTTL: getEnvAsDuration("PLATFORM_CACHE_TTL", "1m"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("%w: DATABASE_URL is required", ErrConfiguration)
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("%w: ENV must be one of: development, staging, production", ErrConfiguration)
	}

	if c.Collect.IntervalMinutes < 1 {
		return fmt.Errorf("%w: COLLECT_INTERVAL_MINUTES must be >= 1", ErrConfiguration)
	}

	if c.Market.CutoffHour < 0 || c.Market.CutoffHour > 23 {
		return fmt.Errorf("%w: TRADING_DAY_CUTOFF_HOUR must be within 0-23", ErrConfiguration)
	}

	if c.Market.UTCOffsetHours < -12 || c.Market.UTCOffsetHours > 14 {
		return fmt.Errorf("%w: MARKET_UTC_OFFSET_HOURS out of range", ErrConfiguration)
	}

	switch c.Scoring.SnapshotPolicy {
	case SnapshotPolicyMixed, SnapshotPolicyGlobal, SnapshotPolicyPerPlatform:
	default:
		return fmt.Errorf("%w: SNAPSHOT_POLICY must be one of: mixed, global, per_platform", ErrConfiguration)
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
		"backend/.env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
