package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"prediction-league/logging"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "change-me-in-production"

// Store drivers
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `json:"server"`

	// Document store configuration
	Database DatabaseConfig `json:"database"`

	// Logging configuration
	Logging LoggingConfig `json:"logging"`

	// Authentication configuration
	Auth AuthConfig `json:"auth"`

	// League configuration
	League LeagueConfig `json:"league"`

	// Backup configuration
	Backup BackupConfig `json:"backup"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string        `json:"port"`
	Host            string        `json:"host"`
	Environment     string        `json:"environment"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

// DatabaseConfig holds document store configuration
type DatabaseConfig struct {
	Driver      string        `json:"driver"`
	URI         string        `json:"uri"`
	Host        string        `json:"host"`
	Port        string        `json:"port"`
	Username    string        `json:"username"`
	Password    string        `json:"password"`
	Database    string        `json:"database"`
	Timeout     time.Duration `json:"timeout"`
	PostgresURL string        `json:"postgres_url"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level       string `json:"level"`
	Prefix      string `json:"prefix"`
	EnableColor bool   `json:"enable_color"`
	LogDir      string `json:"log_dir"`
	EnableFile  bool   `json:"enable_file"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	AdminPassword string        `json:"-"`
	JWTSecret     string        `json:"-"`
	TokenTTL      time.Duration `json:"token_ttl"`
}

// LeagueConfig holds league-specific configuration
type LeagueConfig struct {
	ID                 string `json:"id"`
	SeedFile           string `json:"seed_file"`
	LockSubmittedWeeks bool   `json:"lock_submitted_weeks"`
}

// BackupConfig holds backup configuration
type BackupConfig struct {
	Enabled       bool   `json:"enabled"`
	BackupDir     string `json:"backup_dir"`
	BackupTime    string `json:"backup_time"`
	RetentionDays int    `json:"retention_days"`
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		logging.Debugf("Could not load .env file: %v", err)
	}

	environment := getEnv("ENVIRONMENT", "development")

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Environment:     environment,
			ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Driver:      strings.ToLower(getEnv("STORE_DRIVER", DriverMongo)),
			URI:         getEnv("DB_URI", ""),
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "27017"),
			Username:    getEnv("DB_USERNAME", ""),
			Password:    getEnv("DB_PASSWORD", ""),
			Database:    getEnv("DB_NAME", "prediction_league"),
			Timeout:     getDurationEnv("DB_TIMEOUT", 10*time.Second),
			PostgresURL: getEnv("POSTGRES_CONN_STR", ""),
		},
		Logging: LoggingConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Prefix:      getEnv("LOG_PREFIX", "league"),
			EnableColor: getBoolEnv("LOG_COLOR", true),
			LogDir:      getEnv("LOG_DIR", "./logs"),
			EnableFile:  getBoolEnv("LOG_FILE", false),
		},
		Auth: AuthConfig{
			AdminPassword: getEnv("ADMIN_PASSWORD", ""),
			JWTSecret:     getEnv("JWT_SECRET", defaultJWTSecret),
			TokenTTL:      getDurationEnv("TOKEN_TTL", 12*time.Hour),
		},
		League: LeagueConfig{
			ID:                 getEnv("LEAGUE_ID", "default"),
			SeedFile:           getEnv("LEAGUE_SEED_FILE", ""),
			LockSubmittedWeeks: getBoolEnv("LOCK_SUBMITTED_WEEKS", true),
		},
		Backup: BackupConfig{
			Enabled:       getBoolEnv("BACKUP_ENABLED", false),
			BackupDir:     getEnv("BACKUP_DIR", "./backups"),
			BackupTime:    getEnv("BACKUP_TIME", "02:00"),
			RetentionDays: getIntEnv("BACKUP_RETENTION_DAYS", 30),
		},
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// IsDevelopment reports whether the server runs in development mode
func (c *Config) IsDevelopment() bool {
	return strings.ToLower(c.Server.Environment) == "development"
}

// Validate validates the configuration for required fields and sensible values
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	switch c.Database.Driver {
	case DriverMongo:
		if c.Database.URI == "" && (c.Database.Host == "" || c.Database.Port == "") {
			return fmt.Errorf("DB_URI or DB_HOST and DB_PORT are required for the mongo store")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
	case DriverPostgres:
		if c.Database.PostgresURL == "" {
			return fmt.Errorf("POSTGRES_CONN_STR is required for the postgres store")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want mongo, postgres or memory)", c.Database.Driver)
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if c.Auth.JWTSecret == defaultJWTSecret && !c.IsDevelopment() {
		return fmt.Errorf("JWT secret must be changed in production")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got: %s", c.Auth.TokenTTL)
	}

	if strings.TrimSpace(c.League.ID) == "" {
		return fmt.Errorf("LEAGUE_ID must not be blank")
	}
	if c.League.SeedFile != "" {
		if _, err := os.Stat(c.League.SeedFile); err != nil {
			return fmt.Errorf("league seed file not readable: %w", err)
		}
	}

	if c.Backup.Enabled {
		if _, err := time.Parse("15:04", c.Backup.BackupTime); err != nil {
			return fmt.Errorf("BACKUP_TIME must be HH:MM, got: %s", c.Backup.BackupTime)
		}
		if c.Backup.BackupDir == "" {
			return fmt.Errorf("BACKUP_DIR is required when backups are enabled")
		}
	}

	return nil
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return c.Server.Host + ":" + c.Server.Port
}

// LogConfiguration logs the current configuration (without sensitive data)
func (c *Config) LogConfiguration() {
	logging.Info("=== Application Configuration ===")
	logging.Infof("Server: %s (Environment: %s)", c.GetServerAddress(), c.Server.Environment)
	switch c.Database.Driver {
	case DriverMongo:
		logging.Infof("Store: mongo %s:%s/%s (URI set: %t, Auth: %t)",
			c.Database.Host, c.Database.Port, c.Database.Database,
			c.Database.URI != "", c.Database.Password != "")
	case DriverPostgres:
		logging.Info("Store: postgres (connection string set)")
	default:
		logging.Infof("Store: %s", c.Database.Driver)
	}
	logging.Infof("Logging: Level=%s, Prefix=%s, Color=%t, File=%t",
		c.Logging.Level, c.Logging.Prefix, c.Logging.EnableColor, c.Logging.EnableFile)
	logging.Infof("Auth: AdminPassword=%t, TokenTTL=%s", c.Auth.AdminPassword != "", c.Auth.TokenTTL)
	logging.Infof("League: ID=%s, SeedFile=%q, LockSubmittedWeeks=%t",
		c.League.ID, c.League.SeedFile, c.League.LockSubmittedWeeks)
	logging.Infof("Backup: Enabled=%t, Dir=%s, Time=%s, Retention=%d days",
		c.Backup.Enabled, c.Backup.BackupDir, c.Backup.BackupTime, c.Backup.RetentionDays)
	logging.Info("================================")
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
