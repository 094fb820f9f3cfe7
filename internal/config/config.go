package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Sweep    SweepConfig    `mapstructure:"sweep" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`

	// TokenLifetimeMinutes is the access token lifetime.
	TokenLifetimeMinutes int `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`

	// RefreshTokenLifetimeMinutes is the refresh token lifetime.
	RefreshTokenLifetimeMinutes int `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0"`
}

// SweepConfig contains settings for the periodic status sweep.
type SweepConfig struct {
	// IntervalSeconds is how often the in-process scheduler runs the sweep.
	IntervalSeconds int `mapstructure:"interval_seconds" validate:"required,gt=0"`

	// RunTimeoutSeconds bounds a single sweep run.
	RunTimeoutSeconds int `mapstructure:"run_timeout_seconds" validate:"required,gt=0"`

	// OverdueCutoffHour is the hour of day (0-23) before which tasks due
	// today are not yet marked overdue. Tasks due on earlier days are marked
	// overdue regardless of the hour.
	OverdueCutoffHour int `mapstructure:"overdue_cutoff_hour" validate:"gte=0,lte=23"`
}
