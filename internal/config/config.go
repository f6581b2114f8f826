// Package config loads client configuration from an optional YAML file and
// CAM_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/Havens-blog/e-cam-web/internal/retry"
)

// DefaultPath is read when Load is given no path. It may be absent.
const DefaultPath = "config.yaml"

// EnvPrefix prefixes environment overrides. Nesting uses "__", e.g.
// CAM_API__BASE_URL.
const EnvPrefix = "CAM_"

const (
	ModeDevelopment = "development"
	ModeProduction  = "production"
)

type Config struct {
	Mode      string          `koanf:"mode" validate:"oneof=development production"`
	API       APIConfig       `koanf:"api"`
	Auth      AuthConfig      `koanf:"auth"`
	Log       LogConfig       `koanf:"log"`
	Collector CollectorConfig `koanf:"collector"`
	Storage   StorageConfig   `koanf:"storage"`
	Retry     RetryConfig     `koanf:"retry"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Mock      MockConfig      `koanf:"mock"`
}

type APIConfig struct {
	BaseURL string            `koanf:"base_url" validate:"required,http_url"`
	Timeout time.Duration     `koanf:"timeout" validate:"gt=0"`
	UseMock bool              `koanf:"use_mock"`
	Headers map[string]string `koanf:"headers"`
}

type AuthConfig struct {
	Token    string `koanf:"token"`
	TenantID string `koanf:"tenant_id"`
}

type LogConfig struct {
	Level      string `koanf:"level" validate:"oneof=debug info warn error"`
	Format     string `koanf:"format" validate:"oneof=json text"`
	BufferSize int    `koanf:"buffer_size" validate:"gte=0"`
}

// CollectorConfig controls remote log shipping. It only takes effect in
// production mode.
type CollectorConfig struct {
	Enabled   bool    `koanf:"enabled"`
	Type      string  `koanf:"type" validate:"oneof=http nats"`
	URL       string  `koanf:"url" validate:"required_if=Enabled true"`
	Subject   string  `koanf:"subject"`
	QueueSize int     `koanf:"queue_size" validate:"gte=0"`
	BatchSize int     `koanf:"batch_size" validate:"gte=0"`
	Rate      float64 `koanf:"rate" validate:"gte=0"`
	Burst     int     `koanf:"burst" validate:"gte=0"`
}

type StorageConfig struct {
	Type          string `koanf:"type" validate:"oneof=memory sqlite redis"`
	Path          string `koanf:"path" validate:"required_if=Type sqlite"`
	RedisAddr     string `koanf:"redis_addr" validate:"required_if=Type redis"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db" validate:"gte=0"`
	Prefix        string `koanf:"prefix"`
	ExpireDays    int    `koanf:"expire_days" validate:"gte=0"`
}

type RetryConfig struct {
	MaxRetries int           `koanf:"max_retries"`
	Delay      time.Duration `koanf:"delay" validate:"gte=0"`
}

type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	ServiceName string `koanf:"service_name"`
}

// MockConfig configures cmd/cam-mock.
type MockConfig struct {
	Addr      string   `koanf:"addr"`
	Tokens    []string `koanf:"tokens"`
	RateLimit float64  `koanf:"rate_limit" validate:"gte=0"`
	Burst     int      `koanf:"burst" validate:"gte=0"`
}

// IsDevelopment reports whether debug logging and console-only logs apply.
func (c *Config) IsDevelopment() bool {
	return c.Mode != ModeProduction
}

// Expiry returns the persisted state lifetime.
func (c *Config) Expiry() time.Duration {
	return time.Duration(c.Storage.ExpireDays) * 24 * time.Hour
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

var defaults = map[string]any{
	"mode":                   ModeDevelopment,
	"api.base_url":           "http://localhost:8080/api/v1",
	"api.timeout":            30 * time.Second,
	"log.format":             "json",
	"log.buffer_size":        1000,
	"collector.type":         "http",
	"collector.subject":      "cam.logs",
	"collector.queue_size":   256,
	"collector.batch_size":   50,
	"collector.rate":         5.0,
	"collector.burst":        1,
	"storage.type":           "memory",
	"storage.prefix":         "cam_",
	"storage.expire_days":    7,
	"retry.max_retries":      retry.DefaultMaxRetries,
	"retry.delay":            retry.DefaultDelay,
	"telemetry.service_name": "e-cam-web",
	"mock.addr":              ":8080",
}

// Load reads path (DefaultPath when empty), applies environment overrides
// and defaults, and validates the result. A missing DefaultPath is not an
// error; a missing explicit path is.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// Environment variables override the file
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	for key, value := range defaults {
		if !k.Exists(key) {
			if err := k.Set(key, value); err != nil {
				return nil, fmt.Errorf("failed to set default %s: %w", key, err)
			}
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
		if cfg.IsDevelopment() {
			cfg.Log.Level = "debug"
		}
	}
	cfg.Auth.Token = substituteEnvVars(cfg.Auth.Token)
	cfg.Storage.RedisPassword = substituteEnvVars(cfg.Storage.RedisPassword)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s: %w", strings.Join(msgs, ", "), err)
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func substituteEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}
