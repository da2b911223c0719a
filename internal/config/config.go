package config

import "time"

// Environment modes recognised by the application.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Delete policies applied to the generated children of a recurrence template.
const (
	DeletePolicyOrphan   = "orphan"
	DeletePolicyCascade  = "cascade"
	DeletePolicyReparent = "reparent"
)

// DefaultSecretKey is the development fallback for Auth.SecretKey.
// It is rejected when the application runs in production mode.
const DefaultSecretKey = "dev-secret-key-change-in-production"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	App        AppConfig        `mapstructure:"app"        validate:"required"`
	Server     ServerConfig     `mapstructure:"server"     validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"   validate:"required"`
	Auth       AuthConfig       `mapstructure:"auth"       validate:"required"`
	Weather    WeatherConfig    `mapstructure:"weather"    validate:"required"`
	Recurrence RecurrenceConfig `mapstructure:"recurrence" validate:"required"`
}

// AppConfig contains settings that describe the running environment.
type AppConfig struct {
	Env string `mapstructure:"env" validate:"required,oneof=development production test"`
}

// IsProduction reports whether the application runs in production mode.
func (c AppConfig) IsProduction() bool {
	return c.Env == EnvProduction
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port           int           `mapstructure:"port"            validate:"required,gt=0,lt=65536"`
	LogLevel       string        `mapstructure:"log_level"       validate:"required,oneof=debug info warn error"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gte=0"`
}

// DatabaseConfig contains all database-related configuration settings.
// URL selects the backend: postgres:// and postgresql:// use PostgreSQL,
// sqlite:// uses a local SQLite file.
type DatabaseConfig struct {
	URL         string `mapstructure:"url"          validate:"required"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

// AuthConfig contains the secret key and the optional API authentication settings.
type AuthConfig struct {
	SecretKey            string `mapstructure:"secret_key"             validate:"required,min=32"`
	Enabled              bool   `mapstructure:"enabled"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// WeatherConfig contains the OpenWeatherMap client settings.
// An empty APIKey disables weather enrichment.
type WeatherConfig struct {
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url"         validate:"required,url"`
	Language       string        `mapstructure:"language"         validate:"required"`
	Timeout        time.Duration `mapstructure:"timeout"          validate:"gt=0"`
	MaxRetries     int           `mapstructure:"max_retries"      validate:"gte=0,lte=10"`
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay" validate:"gt=0"`
}

// RecurrenceConfig controls when recurring task instances are generated
// and what happens to them when their template is deleted.
type RecurrenceConfig struct {
	GenerateOnList bool   `mapstructure:"generate_on_list"`
	Schedule       string `mapstructure:"schedule"`
	DeletePolicy   string `mapstructure:"delete_policy"    validate:"required,oneof=orphan cascade reparent"`
}
