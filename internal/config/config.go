package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	School   SchoolConfig   `mapstructure:"school"`
	Import   ImportConfig   `mapstructure:"import"`
	Storage  StorageConfig  `mapstructure:"storage"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// SchoolConfig holds the details printed on fee vouchers
type SchoolConfig struct {
	Name          string `mapstructure:"name"`
	VoucherPrefix string `mapstructure:"voucher_prefix"`
	Currency      string `mapstructure:"currency"`
}

// ImportConfig limits student spreadsheet uploads
type ImportConfig struct {
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`
	MaxRows        int   `mapstructure:"max_rows"`
}

// StorageConfig holds file archive configuration
type StorageConfig struct {
	BaseDir string `mapstructure:"base_dir"`
}

// Load loads configuration from file and environment variables.
// A missing file is not an error; defaults and environment are used instead.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	// Override with environment variables
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Database defaults
	v.SetDefault("database.path", "data/school.db")
	v.SetDefault("database.max_open_conns", 1)
	v.SetDefault("database.max_idle_conns", 1)
	v.SetDefault("database.conn_max_lifetime", 0)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")

	// School defaults
	v.SetDefault("school.name", "School")
	v.SetDefault("school.voucher_prefix", "FV")
	v.SetDefault("school.currency", "PKR")

	// Import defaults
	v.SetDefault("import.max_upload_bytes", 5<<20)
	v.SetDefault("import.max_rows", 2000)

	v.SetDefault("storage.base_dir", "data/files")
}

// bindEnvVars binds deployment environment variables to configuration
func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("database.path", "SCHOOL_DB_PATH")
	_ = v.BindEnv("storage.base_dir", "SCHOOL_STORAGE_DIR")
	_ = v.BindEnv("school.name", "SCHOOL_NAME")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Storage.BaseDir == "" {
		return fmt.Errorf("storage.base_dir is required")
	}
	if strings.TrimSpace(c.School.VoucherPrefix) == "" {
		return fmt.Errorf("school.voucher_prefix is required")
	}
	if strings.ContainsAny(c.School.VoucherPrefix, "%_") {
		return fmt.Errorf("school.voucher_prefix must not contain %% or _")
	}
	if c.Import.MaxUploadBytes <= 0 {
		return fmt.Errorf("import.max_upload_bytes must be positive")
	}
	if c.Import.MaxRows < 0 {
		return fmt.Errorf("import.max_rows must not be negative")
	}

	return nil
}

// Addr returns the host:port the HTTP server listens on
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
