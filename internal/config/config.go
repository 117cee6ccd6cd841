package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Progress ProgressConfig `mapstructure:"progress" validate:"required"`
	SRS      SRSConfig      `mapstructure:"srs"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url" validate:"required,url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
}

// AuthConfig contains the settings for validating bearer tokens issued by
// the identity service.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
	Issuer    string `mapstructure:"issuer"`
}

// ProgressConfig controls point accrual and streak bookkeeping.
type ProgressConfig struct {
	// Points awarded for a first completion are score / PointsDivisor.
	PointsDivisor    int    `mapstructure:"points_divisor" validate:"required,gt=0"`
	DefaultDailyGoal int    `mapstructure:"default_daily_goal" validate:"required,gt=0"`
	TimeZone         string `mapstructure:"time_zone" validate:"required"`
}

// Location resolves TimeZone. Activity days for streaks are taken in this zone.
func (c ProgressConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid progress time zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

// SRSConfig overrides scheduler parameters. Zero values keep the defaults.
// The ease coefficients may be set to zero; unset leaves them at the SM-2
// defaults.
type SRSConfig struct {
	MinEaseFactor  float64  `mapstructure:"min_ease_factor" validate:"omitempty,gte=1.3"`
	MaxEaseFactor  float64  `mapstructure:"max_ease_factor" validate:"gte=0"`
	PassThreshold  int      `mapstructure:"pass_threshold" validate:"gte=0,lte=5"`
	FirstInterval  int      `mapstructure:"first_interval" validate:"gte=0"`
	SecondInterval int      `mapstructure:"second_interval" validate:"gte=0"`
	MaxInterval    int      `mapstructure:"max_interval" validate:"gte=0,lte=365000"`
	EaseBase       *float64 `mapstructure:"ease_base" validate:"omitempty,gte=-1,lte=1"`
	EaseLinear     *float64 `mapstructure:"ease_linear" validate:"omitempty,gte=0,lte=1"`
	EaseQuadratic  *float64 `mapstructure:"ease_quadratic" validate:"omitempty,gte=0,lte=1"`
}

// TracingConfig controls OpenTelemetry trace export.
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint" validate:"required_if=Enabled true"`
	Insecure    bool    `mapstructure:"insecure"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRatio float64 `mapstructure:"sample_ratio" validate:"gte=0,lte=1"`
}
