package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	// Server
	Port            string
	GinMode         string
	LogLevel        string
	PublicBaseURL   string
	AllowedOrigin   string
	ShutdownTimeout time.Duration

	// Queue store
	SeedDemoData bool

	// Activity log
	DBDriver       string
	DBDSN          string
	ActivityBuffer int

	// Rate limiting
	RateLimitPerSecond int
	JoinRatePerMinute  int

	// Staff auth
	StaffAuthEnabled  bool
	StaffPasswordHash string
	JWTSecret         string
	JWTTTL            time.Duration
}

func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "8080"),
		GinMode:         getEnv("GIN_MODE", "debug"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		PublicBaseURL:   strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		AllowedOrigin:   getEnv("CORS_ALLOWED_ORIGIN", "*"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", "10s"),

		SeedDemoData: getEnvAsBool("SEED_DEMO_DATA", true),

		DBDriver:       strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBDSN:          getEnv("DB_DSN", "queue_activity.db"),
		ActivityBuffer: getEnvAsInt("ACTIVITY_BUFFER", 256),

		RateLimitPerSecond: getEnvAsInt("RATE_LIMIT_PER_SECOND", 50),
		JoinRatePerMinute:  getEnvAsInt("JOIN_RATE_PER_MINUTE", 30),

		StaffAuthEnabled:  getEnvAsBool("STAFF_AUTH_ENABLED", false),
		StaffPasswordHash: getEnv("STAFF_PASSWORD_HASH", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		JWTTTL:            getEnvAsDuration("JWT_TTL", "24h"),
	}
}

// Validate catches settings that would only fail later at request time.
func (c *Config) Validate() error {
	if c.StaffAuthEnabled {
		if c.StaffPasswordHash == "" {
			return fmt.Errorf("STAFF_PASSWORD_HASH is required when STAFF_AUTH_ENABLED is set")
		}
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when STAFF_AUTH_ENABLED is set")
		}
	}
	switch c.DBDriver {
	case "sqlite", "mysql", "postgres", "none":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	return nil
}

// InitDB opens the activity log database. It returns a nil DB when the
// activity log is disabled with DB_DRIVER=none.
func InitDB(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "none":
		return nil, nil
	case "sqlite":
		dialector = sqlite.Open(cfg.DBDSN)
	case "mysql":
		dialector = mysql.Open(cfg.DBDSN)
	case "postgres":
		dialector = postgres.Open(cfg.DBDSN)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.DBDriver, err)
	}
	return db, nil
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
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
