package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/notes/database"
	noteshttp "github.com/sagarc03/notes/http"
	"github.com/sagarc03/notes/keybackend"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Auth modes.
const (
	AuthModeNone   = "none"
	AuthModeSigV4  = "sigv4"
	AuthModeHeader = "header"
)

// Config is the root configuration struct for notesd.
type Config struct {
	Server   ServerConfig    `mapstructure:"server"`
	Database database.Config `mapstructure:"database"`
	Auth     AuthConfig      `mapstructure:"auth"`
	Log      LogConfig       `mapstructure:"log"`
	Env      string          `mapstructure:"env" validate:"required,oneof=dev development prod production"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         int                   `mapstructure:"port" validate:"required,min=1,max=65535"`
	ErrorStatus  noteshttp.ErrorStatus `mapstructure:"error_status" validate:"required,oneof=uniform typed"`
	MaxBodyBytes int64                 `mapstructure:"max_body_bytes" validate:"min=0"`
}

// AuthConfig holds caller identity configuration.
type AuthConfig struct {
	Mode      string                `mapstructure:"mode" validate:"required,oneof=none sigv4 header"`
	Region    string                `mapstructure:"region" validate:"required_if=Mode sigv4"`
	Service   string                `mapstructure:"service" validate:"required_if=Mode sigv4"`
	Header    string                `mapstructure:"header" validate:"required_if=Mode header"`
	ClockSkew time.Duration         `mapstructure:"clock_skew"`
	Keys      keybackend.KeysConfig `mapstructure:"keys"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// IsProd reports whether the environment is production.
func (c *Config) IsProd() bool {
	return c.Env == "prod" || c.Env == "production"
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"db-type":      "database.type",
	"db-dsn":       "database.dsn",
	"port":         "server.port",
	"error-status": "server.error_status",
	"auth-mode":    "auth.mode",
	"log-level":    "log.level",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5708)
	v.SetDefault("server.error_status", string(noteshttp.ErrorStatusUniform))
	v.SetDefault("server.max_body_bytes", 2<<20)

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "notes.db")
	v.SetDefault("database.tables.notes", "notes")
	v.SetDefault("database.dynamodb.region", "")
	v.SetDefault("database.dynamodb.endpoint", "")
	v.SetDefault("database.dynamodb.access_key_id", "")
	v.SetDefault("database.dynamodb.secret_access_key", "")

	v.SetDefault("auth.mode", AuthModeSigV4)
	v.SetDefault("auth.region", "us-east-1")
	v.SetDefault("auth.service", "execute-api")
	v.SetDefault("auth.header", "X-Owner-Id")
	v.SetDefault("auth.clock_skew", "15m")
	v.SetDefault("auth.keys.file", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("env", "dev")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("NOTES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
