package odbcscan

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the tunable settings of the scanner.
type Config struct {
	// LoginTimeoutSeconds is applied at connect time. Zero leaves the
	// driver default in place.
	LoginTimeoutSeconds int `mapstructure:"login_timeout_seconds"`
	// BatchCapacity is the maximum row count of one columnar batch.
	BatchCapacity int `mapstructure:"batch_capacity"`
	// ReadOnly requests read-only access mode on new connections.
	ReadOnly bool `mapstructure:"read_only"`
	// TraceQueries logs every remote statement at debug level.
	TraceQueries bool `mapstructure:"trace_queries"`
}

// DefaultConfig returns the shipped settings.
func DefaultConfig() Config {
	return Config{
		LoginTimeoutSeconds: 30,
		BatchCapacity:       2048,
		ReadOnly:            true,
		TraceQueries:        false,
	}
}

// LoadConfig reads settings from a YAML file, filling unset keys from
// DefaultConfig.
func LoadConfig(path string) (Config, error) {
	def := DefaultConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("login_timeout_seconds", def.LoginTimeoutSeconds)
	v.SetDefault("batch_capacity", def.BatchCapacity)
	v.SetDefault("read_only", def.ReadOnly)
	v.SetDefault("trace_queries", def.TraceQueries)

	if err := v.ReadInConfig(); err != nil {
		return def, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return def, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.BatchCapacity <= 0 {
		return def, fmt.Errorf("batch_capacity must be positive, got %d", cfg.BatchCapacity)
	}
	return cfg, nil
}
