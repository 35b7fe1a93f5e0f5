package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database   DatabaseConfig
	Redis      RedisConfig
	Queue      QueueConfig
	JWT        JWTConfig
	App        AppConfig
	Monitoring MonitoringConfig
	Rebuild    RebuildConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
}

// QueueConfig holds the recalculation queue configuration
type QueueConfig struct {
	Driver      string // redis or memory
	Name        string
	MaxAttempts int
	PollTimeout time.Duration
	Concurrency int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port               int
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string
}

// MonitoringConfig holds the aggregation and anomaly detection knobs
type MonitoringConfig struct {
	DefaultTimezone           string
	BaselineDays              int
	DashboardMinBaseline      int
	SuddenChangeMinBaseline   int
	HealthReportDays          int
	HealthReportHistoryMonths int
}

// RebuildConfig holds the nightly summary rebuild schedule
type RebuildConfig struct {
	Cron         string
	LookbackDays int
}

const (
	QueueDriverRedis  = "redis"
	QueueDriverMemory = "memory"
)

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded, using process environment", "error", err)
	}

	config := &Config{}
	var errs []error

	intEnv := func(key string, fallback int) int {
		v, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
		}
		return v
	}

	// Database configuration
	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     intEnv("DB_PORT", 5432),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "readiness"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(intEnv("DB_MAX_CONNS", 25)),
		MinConns: int32(intEnv("DB_MIN_CONNS", 5)),
	}

	// Redis configuration
	config.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Username: getEnv("REDIS_USERNAME", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       intEnv("REDIS_DB", 0),
	}

	// Queue configuration
	pollTimeout, err := time.ParseDuration(getEnv("QUEUE_POLL_TIMEOUT", "5s"))
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid QUEUE_POLL_TIMEOUT: %w", err))
	}
	config.Queue = QueueConfig{
		Driver:      getEnv("QUEUE_DRIVER", QueueDriverRedis),
		Name:        getEnv("QUEUE_NAME", "readiness:recalculation"),
		MaxAttempts: intEnv("QUEUE_MAX_ATTEMPTS", 3),
		PollTimeout: pollTimeout,
		Concurrency: intEnv("QUEUE_CONCURRENCY", 2),
	}

	// Application configuration
	config.App = AppConfig{
		Port:               intEnv("APP_PORT", 8080),
		Env:                getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Monitoring configuration
	config.Monitoring = MonitoringConfig{
		DefaultTimezone:           getEnv("DEFAULT_TIMEZONE", "Asia/Jakarta"),
		BaselineDays:              intEnv("BASELINE_DAYS", 7),
		DashboardMinBaseline:      intEnv("DASHBOARD_MIN_BASELINE", 3),
		SuddenChangeMinBaseline:   intEnv("SUDDEN_CHANGE_MIN_BASELINE", 2),
		HealthReportDays:          intEnv("HEALTH_REPORT_DAYS", 30),
		HealthReportHistoryMonths: intEnv("HEALTH_REPORT_HISTORY_MONTHS", 12),
	}

	// Rebuild configuration
	config.Rebuild = RebuildConfig{
		Cron:         getEnv("REBUILD_CRON", "0 2 * * *"),
		LookbackDays: intEnv("REBUILD_LOOKBACK_DAYS", 7),
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Queue.Driver != QueueDriverRedis && c.Queue.Driver != QueueDriverMemory {
		return fmt.Errorf("QUEUE_DRIVER must be %q or %q, got %q", QueueDriverRedis, QueueDriverMemory, c.Queue.Driver)
	}
	if c.Queue.MaxAttempts < 1 {
		return fmt.Errorf("QUEUE_MAX_ATTEMPTS must be at least 1")
	}
	if c.Monitoring.BaselineDays < 1 {
		return fmt.Errorf("BASELINE_DAYS must be at least 1")
	}
	if c.Rebuild.LookbackDays < 0 {
		return fmt.Errorf("REBUILD_LOOKBACK_DAYS must not be negative")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env, fallback string) []string {
	value := getEnv(env, fallback)
	if value == "" {
		return []string{}
	}
	var result []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}
