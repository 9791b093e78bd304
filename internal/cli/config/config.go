package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the restbound CLI configuration
type Config struct {
	Transport TransportConfig `mapstructure:"transport"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
}

// TransportConfig configures the HTTP transport
type TransportConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	AuthToken string `mapstructure:"auth_token"`
	JWTSecret string `mapstructure:"jwt_secret"`
	TimeoutMS int    `mapstructure:"timeout_ms"`
}

// DatabaseConfig configures the SQL transport
type DatabaseConfig struct {
	URL    string `mapstructure:"url"`
	Driver string `mapstructure:"driver"`
}

// RedisConfig configures the optional cache layer
type RedisConfig struct {
	Addr       string `mapstructure:"addr"`
	TTLSeconds int    `mapstructure:"ttl_seconds"`
	Prefix     string `mapstructure:"prefix"`
}

// Load loads the configuration from restbound.yml or restbound.yaml
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("transport.timeout_ms", 30000)
	v.SetDefault("database.driver", "pgx")
	v.SetDefault("redis.ttl_seconds", 300)
	v.SetDefault("redis.prefix", "restbound:")

	// Set config name and paths
	v.SetConfigName("restbound")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Enable environment variable support
	v.SetEnvPrefix("RESTBOUND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// GetDatabaseURL returns the database URL from config or environment
func GetDatabaseURL() string {
	// First check environment variable
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	// Then check config file
	cfg, err := Load()
	if err != nil {
		return ""
	}

	return cfg.Database.URL
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.Transport.BaseURL != "" {
		if !strings.HasPrefix(cfg.Transport.BaseURL, "http://") && !strings.HasPrefix(cfg.Transport.BaseURL, "https://") {
			return fmt.Errorf("transport.base_url must start with http:// or https://, got: %s", cfg.Transport.BaseURL)
		}
	}
	if cfg.Database.Driver != "" && cfg.Database.Driver != "pgx" && cfg.Database.Driver != "sqlite3" {
		return fmt.Errorf("database.driver must be 'pgx' or 'sqlite3', got: %s", cfg.Database.Driver)
	}
	if cfg.Redis.TTLSeconds < 0 {
		return fmt.Errorf("redis.ttl_seconds must not be negative, got: %d", cfg.Redis.TTLSeconds)
	}
	return nil
}
