package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port        string `yaml:"port" env:"SERVER_PORT"`
		Mode        string `yaml:"mode" env:"SERVER_MODE"`
		StoragePath string `yaml:"storage_path" env:"SERVER_STORAGE_PATH"`
		// PublicURL prefixes download links handed to clients.
		PublicURL       string `yaml:"public_url" env:"SERVER_PUBLIC_URL"`
		ShutdownTimeout string `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
	} `yaml:"server"`

	Database struct {
		// Driver is "memory" or "postgres".
		Driver          string `yaml:"driver" env:"DB_DRIVER"`
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
		Seed            bool   `yaml:"seed" env:"DB_SEED"`
	} `yaml:"database"`

	JWT struct {
		Secret                 string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration  string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		RefreshTokenExpiration string `yaml:"refresh_token_expiration" env:"JWT_REFRESH_TOKEN_EXPIRATION"`
		Issuer                 string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Mail struct {
		Host      string `yaml:"host" env:"SMTP_HOST"`
		Port      int    `yaml:"port" env:"SMTP_PORT"`
		Username  string `yaml:"username" env:"SMTP_USERNAME"`
		Password  string `yaml:"password" env:"SMTP_PASSWORD"`
		FromName  string `yaml:"from_name" env:"SMTP_FROM_NAME"`
		FromEmail string `yaml:"from_email" env:"SMTP_FROM_EMAIL"`
		UseTLS    bool   `yaml:"use_tls" env:"SMTP_USE_TLS"`
		ResetURL  string `yaml:"reset_url" env:"SMTP_RESET_URL"`
	} `yaml:"mail"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Client struct {
		BaseURL   string `yaml:"base_url" env:"LMS_API_URL"`
		StateFile string `yaml:"state_file" env:"LMS_STATE_FILE"`
		Theme     string `yaml:"theme" env:"LMS_THEME"`
	} `yaml:"client"`

	Transfer struct {
		Download TransferProfile `yaml:"download"`
		Upload   TransferProfile `yaml:"upload"`
	} `yaml:"transfer"`
}

// TransferProfile configures one simulated transfer kind.
type TransferProfile struct {
	Delay        string  `yaml:"delay"`
	Interval     string  `yaml:"interval"`
	MaxIncrement float64 `yaml:"max_increment"`
}

// LoadConfig loads configuration from a file and environment variables.
// A missing file is not an error; defaults and the environment still apply.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			file, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}

			if err := yaml.Unmarshal(file, config); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	// Server defaults
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.StoragePath = "./uploads"
	config.Server.ShutdownTimeout = "10s"

	// Database defaults
	config.Database.Driver = DriverMemory
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "svitlms"
	config.Database.SSLMode = "disable"
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"
	config.Database.Seed = true

	// JWT defaults
	config.JWT.Secret = "svit-lms-development-secret"
	config.JWT.AccessTokenExpiration = "1h"
	config.JWT.RefreshTokenExpiration = "720h"
	config.JWT.Issuer = "svit-lms"

	// Mail defaults
	config.Mail.Port = 587
	config.Mail.FromName = "SVIT LMS"
	config.Mail.FromEmail = "noreply@svit.edu"
	config.Mail.ResetURL = "http://localhost:3000/reset-password"

	// Logging defaults
	config.Logging.Level = "info"
	config.Logging.Format = "json"

	// Client defaults
	config.Client.BaseURL = "http://localhost:8080/api/v1"
	config.Client.StateFile = defaultStateFile()
	config.Client.Theme = "light"

	config.Transfer.Download = TransferProfile{Delay: "0s", Interval: "500ms", MaxIncrement: 15}
	config.Transfer.Upload = TransferProfile{Delay: "500ms", Interval: "300ms", MaxIncrement: 10}
}

// Database drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

func defaultStateFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".svit_lms.yaml"
	}
	return filepath.Join(dir, "svit-lms", "state.yaml")
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	switch config.Database.Driver {
	case DriverMemory:
	case DriverPostgres:
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
	default:
		return fmt.Errorf("unknown database driver %q", config.Database.Driver)
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if _, err := time.ParseDuration(config.JWT.AccessTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}

	if _, err := time.ParseDuration(config.JWT.RefreshTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT refresh token expiration format: %w", err)
	}

	if _, err := time.ParseDuration(config.Server.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if config.Client.Theme != "light" && config.Client.Theme != "dark" {
		return fmt.Errorf("theme must be light or dark, got %q", config.Client.Theme)
	}

	for name, p := range map[string]TransferProfile{"download": config.Transfer.Download, "upload": config.Transfer.Upload} {
		if _, _, err := p.Durations(); err != nil {
			return fmt.Errorf("invalid %s transfer profile: %w", name, err)
		}
		if p.MaxIncrement <= 0 {
			return fmt.Errorf("invalid %s transfer profile: max_increment must be positive", name)
		}
	}

	return nil
}

// Durations parses the delay and tick interval of a profile.
func (p TransferProfile) Durations() (delay, interval time.Duration, err error) {
	if delay, err = time.ParseDuration(p.Delay); err != nil {
		return 0, 0, fmt.Errorf("delay: %w", err)
	}
	if interval, err = time.ParseDuration(p.Interval); err != nil {
		return 0, 0, fmt.Errorf("interval: %w", err)
	}
	if interval <= 0 {
		return 0, 0, fmt.Errorf("interval must be positive")
	}
	return delay, interval, nil
}

// AccessTokenTTL returns the parsed access token lifetime.
func (c *Config) AccessTokenTTL() time.Duration {
	d, _ := time.ParseDuration(c.JWT.AccessTokenExpiration)
	return d
}

// RefreshTokenTTL returns the parsed refresh token lifetime.
func (c *Config) RefreshTokenTTL() time.Duration {
	d, _ := time.ParseDuration(c.JWT.RefreshTokenExpiration)
	return d
}

// ShutdownTimeout returns the parsed graceful shutdown timeout.
func (c *Config) ShutdownTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Server.ShutdownTimeout)
	return d
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetEnvAsBool gets an environment variable as a boolean or returns a default value
func GetEnvAsBool(key string, defaultValue bool) bool {
	valueStr := GetEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	switch strings.ToLower(valueStr) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}

	if v, err := strconv.ParseBool(valueStr); err == nil {
		return v
	}
	return defaultValue
}
