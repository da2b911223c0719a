package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every configuration key read from the environment,
// e.g. TASKS_SERVER_PORT for server.port.
const EnvPrefix = "TASKS"

// ConfigPathEnv names an explicit configuration file to read.
const ConfigPathEnv = "TASKS_CONFIG_PATH"

// legacyEnv lists the bare environment variables recognised in addition to
// the prefixed ones. The prefixed variable always wins.
var legacyEnv = map[string][]string{
	"weather.api_key":  {"OPENWEATHER_API_KEY"},
	"weather.base_url": {"OPENWEATHER_API_URL"},
	"database.url":     {"DATABASE_URL"},
	"auth.secret_key":  {"SECRET_KEY"},
	"app.env":          {"APP_ENV", "FLASK_ENV"},
}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if path := os.Getenv(ConfigPathEnv); path != "" {
		v.SetConfigFile(path)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, names := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(append([]string{key, prefixed}, names...)...); err != nil {
			return nil, fmt.Errorf("failed to bind environment for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks struct-level rules and the cross-field rules that the
// validator tags cannot express.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.App.IsProduction() && cfg.Auth.SecretKey == DefaultSecretKey {
		return errors.New("config validation failed: the default secret key cannot be used in production")
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", EnvDevelopment)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.request_timeout", 30*time.Second)

	v.SetDefault("database.url", "sqlite:///tasks.db")
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("auth.secret_key", DefaultSecretKey)
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.token_lifetime_minutes", 24*60)

	v.SetDefault("weather.api_key", "")
	v.SetDefault("weather.base_url", "https://api.openweathermap.org/data/2.5/weather")
	v.SetDefault("weather.language", "ja")
	v.SetDefault("weather.timeout", 10*time.Second)
	v.SetDefault("weather.max_retries", 3)
	v.SetDefault("weather.retry_base_delay", time.Second)

	v.SetDefault("recurrence.generate_on_list", true)
	v.SetDefault("recurrence.schedule", "")
	v.SetDefault("recurrence.delete_policy", DeletePolicyOrphan)
}
