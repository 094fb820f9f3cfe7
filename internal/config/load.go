package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. Environment variables take precedence
// over file values and use the COLLAB_ prefix with underscores for nesting,
// e.g. COLLAB_SERVER_PORT, COLLAB_DATABASE_URL, COLLAB_AUTH_JWT_SECRET.
//
// Returns a populated Config or an error if loading or validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env vars and defaults still apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("COLLAB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers default values for settings that have sensible ones.
// Secrets and the database URL have no defaults and must be provided.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("auth.refresh_token_lifetime_minutes", 10080) // 7 days
	v.SetDefault("sweep.interval_seconds", 60)
	v.SetDefault("sweep.run_timeout_seconds", 30)
	v.SetDefault("sweep.overdue_cutoff_hour", 23)

	// Bind nested keys explicitly so AutomaticEnv sees them even when the
	// config file is absent.
	for _, key := range []string{
		"server.port",
		"server.log_level",
		"database.url",
		"auth.jwt_secret",
		"auth.token_lifetime_minutes",
		"auth.refresh_token_lifetime_minutes",
		"sweep.interval_seconds",
		"sweep.run_timeout_seconds",
		"sweep.overdue_cutoff_hour",
	} {
		if err := v.BindEnv(key); err != nil {
			// BindEnv only errors on an empty key, which cannot happen here.
			panic(err)
		}
	}
}
