package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Registry RegistryConfig `mapstructure:"registry" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Task     TaskConfig     `mapstructure:"task"     validate:"required"`
}

// ServerConfig contains all HTTP-server-related settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// RegistryConfig contains the schema-registry connection settings.
type RegistryConfig struct {
	URL      string `mapstructure:"url"             validate:"required,url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	// TimeoutSeconds bounds each registry HTTP call.
	TimeoutSeconds int `mapstructure:"timeout_seconds" validate:"gte=1"`
}

// AuthConfig contains authentication settings for the admin API.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gte=1"`
	AdminUsername        string `mapstructure:"admin_username"         validate:"required"`
	// AdminPasswordHash is the bcrypt hash of the admin credential.
	AdminPasswordHash string `mapstructure:"admin_password_hash" validate:"required"`
}

// TaskConfig contains task-subsystem tuning settings.
type TaskConfig struct {
	// WorkerCount sets the worker pool size for background tasks.
	WorkerCount int `mapstructure:"worker_count" validate:"gte=1"`
	// FanoutLimit caps concurrent sub-operations inside a single batch
	// operation.
	FanoutLimit int `mapstructure:"fanout_limit" validate:"gte=1"`
}
