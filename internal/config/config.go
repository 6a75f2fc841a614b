// Package config loads application configuration from defaults and
// environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix shared by every environment variable Load reads.
// NOTIFYHUB_DB_HOST maps to the db.host key.
const EnvPrefix = "NOTIFYHUB_"

// Config holds the application configuration.
type Config struct {
	DB      DBConfig      `koanf:"db"`
	HTTP    HTTPConfig    `koanf:"http"`
	Log     LogConfig     `koanf:"log"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// DBConfig holds the PostgreSQL connection settings.
type DBConfig struct {
	Host           string        `koanf:"host"           validate:"required"`
	Port           int           `koanf:"port"           validate:"min=1,max=65535"`
	Name           string        `koanf:"name"           validate:"required"`
	User           string        `koanf:"user"           validate:"required"`
	Password       string        `koanf:"password"`
	SSLMode        string        `koanf:"sslmode"        validate:"oneof=disable allow prefer require verify-ca verify-full"`
	MaxConns       int32         `koanf:"maxconns"       validate:"min=1"`
	ConnectTimeout time.Duration `koanf:"connecttimeout" validate:"gt=0"`
}

// HTTPConfig holds the HTTP server settings.
type HTTPConfig struct {
	ListenAddr string `koanf:"listenaddr" validate:"required,hostname_port"`
}

// LogConfig selects the log level, output format and an optional rotated
// log file.
type LogConfig struct {
	Level  string `koanf:"level"  validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=text json"`
	File   string `koanf:"file"`
}

// MetricsConfig toggles the /metrics endpoint.
type MetricsConfig struct {
	Enabled bool `koanf:"enabled"`
}

// Default returns the configuration used when no environment variable is set.
// It points at the local development database.
func Default() *Config {
	return &Config{
		DB: DBConfig{
			Host:           "localhost",
			Port:           11001,
			Name:           "notifications_db",
			User:           "local",
			Password:       "local",
			SSLMode:        "disable",
			MaxConns:       10,
			ConnectTimeout: 5 * time.Second,
		},
		HTTP: HTTPConfig{
			ListenAddr: "127.0.0.1:3005",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Load layers NOTIFYHUB_ environment variables over Default and returns the
// validated result.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: transformEnvKey,
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// transformEnvKey turns NOTIFYHUB_DB_CONNECTTIMEOUT into db.connecttimeout.
// Variables without a section are dropped.
func transformEnvKey(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	section, field, ok := strings.Cut(key, "_")
	if !ok || section == "" || field == "" {
		return "", nil
	}
	return section + "." + field, value
}
