package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "SPRACHWEG"

// envKeys lists every configuration key. Keys without a default are invisible
// to viper's AutomaticEnv during Unmarshal, so all of them are bound explicitly.
var envKeys = []string{
	"server.port",
	"server.log_level",
	"server.read_timeout",
	"server.write_timeout",
	"server.shutdown_timeout",
	"database.url",
	"database.max_open_conns",
	"database.max_idle_conns",
	"database.conn_max_lifetime",
	"auth.jwt_secret",
	"auth.issuer",
	"progress.points_divisor",
	"progress.default_daily_goal",
	"progress.time_zone",
	"srs.min_ease_factor",
	"srs.max_ease_factor",
	"srs.pass_threshold",
	"srs.first_interval",
	"srs.second_interval",
	"srs.max_interval",
	"srs.ease_base",
	"srs.ease_linear",
	"srs.ease_quadratic",
	"tracing.enabled",
	"tracing.endpoint",
	"tracing.insecure",
	"tracing.service_name",
	"tracing.sample_ratio",
}

// Load configuration from environment variables and optionally a config.yaml
// in the working directory. Environment variables take precedence over values
// from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return LoadFromFile("")
}

// LoadFromFile is Load with an explicit config file path. An empty path
// searches the working directory for an optional config.yaml.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicit path must exist; the implicit config.yaml is optional
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("error binding environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks struct tags and cross-field rules.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if _, err := cfg.Progress.Location(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if cfg.SRS.MaxEaseFactor != 0 && cfg.SRS.MinEaseFactor != 0 && cfg.SRS.MaxEaseFactor < cfg.SRS.MinEaseFactor {
		return fmt.Errorf("configuration validation failed: srs.max_ease_factor %.2f is below srs.min_ease_factor %.2f",
			cfg.SRS.MaxEaseFactor, cfg.SRS.MinEaseFactor)
	}

	if cfg.SRS.MaxInterval != 0 && cfg.SRS.SecondInterval != 0 && cfg.SRS.MaxInterval < cfg.SRS.SecondInterval {
		return fmt.Errorf("configuration validation failed: srs.max_interval %d is below srs.second_interval %d",
			cfg.SRS.MaxInterval, cfg.SRS.SecondInterval)
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 25)
	v.SetDefault("database.conn_max_lifetime", "5m")

	v.SetDefault("progress.points_divisor", 10)
	v.SetDefault("progress.default_daily_goal", 5)
	v.SetDefault("progress.time_zone", "UTC")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "sprachweg")
	v.SetDefault("tracing.sample_ratio", 1.0)
}
