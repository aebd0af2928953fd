package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AuthConfig selects and configures the token provider. Provider-specific
// settings ride in Settings and are handed to the registry untouched.
type AuthConfig struct {
	Provider        string         `yaml:"provider"`
	Secret          string         `yaml:"secret"`
	LifetimeMinutes int            `yaml:"lifetimeMinutes"`
	SkewSeconds     int            `yaml:"skewSeconds"`
	Header          string         `yaml:"header"`
	Settings        map[string]any `yaml:"settings"`
}

// StorageConfig selects the persistence provider by type.
type StorageConfig struct {
	Type     string         `yaml:"type"`
	Settings map[string]any `yaml:"settings"`
}

type Config struct {
	Port          int           `yaml:"port"`
	RedisAddr     string        `yaml:"redisAddr"`
	RedisPassword string        `yaml:"redisPassword"`
	RedisDB       int           `yaml:"redisDb"`
	Timezone      string        `yaml:"timezone"`
	LogLevel      string        `yaml:"logLevel"`
	LogFormat     string        `yaml:"logFormat"`
	Env           string        `yaml:"env"`
	Auth          AuthConfig    `yaml:"auth"`
	Storage       StorageConfig `yaml:"storage"`

	EnableImagesPerHour bool `yaml:"enableImagesPerHour"`
	EnableBrightness    bool `yaml:"enableBrightness"`

	TracingEnabled  bool   `yaml:"tracingEnabled"`
	TracingEndpoint string `yaml:"tracingEndpoint"`
}

func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return parse(data)
}

// LoadConfigOptional behaves like LoadConfig but treats an empty path or a
// missing file as "defaults plus environment".
func LoadConfigOptional(filePath string) (*Config, error) {
	if strings.TrimSpace(filePath) == "" {
		return parse(nil)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return parse(nil)
		}
		return nil, err
	}
	return parse(data)
}

func parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Port = p
		}
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.RedisPassword = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RedisDB = n
		}
	}
	if v := os.Getenv("AUTH_SECRET"); v != "" {
		c.Auth.Secret = v
	}
	if v := os.Getenv("AUTH_PROVIDER"); v != "" {
		c.Auth.Provider = v
	}
	if v := os.Getenv("AUTH_LIFETIME_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Auth.LifetimeMinutes = n
		}
	}
	if v := os.Getenv("TRACING_ENDPOINT"); v != "" {
		c.TracingEndpoint = v
		c.TracingEnabled = true
	}

	if c.Port == 0 {
		c.Port = 8080
	}
	if c.RedisAddr == "" {
		c.RedisAddr = "localhost:6379"
	}
	if c.Timezone == "" {
		c.Timezone = "Europe/Vienna"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "json"
	}
	if c.Env == "" {
		c.Env = "dev"
	}
	if c.Auth.Provider == "" {
		c.Auth.Provider = "hs256"
	}
	if c.Auth.LifetimeMinutes <= 0 {
		c.Auth.LifetimeMinutes = 60
	}
	if c.Auth.SkewSeconds < 0 {
		c.Auth.SkewSeconds = 0
	}
	if c.Auth.Header == "" {
		c.Auth.Header = "Authorization"
	}
	if c.Storage.Type == "" {
		c.Storage.Type = "redis"
	}
	return &c, nil
}

// ProviderSettings marshals the provider-specific settings block so it can be
// passed through a registry factory.
func (a AuthConfig) ProviderSettings() (json.RawMessage, error) {
	merged := map[string]any{}
	for k, v := range a.Settings {
		merged[k] = v
	}
	if a.Secret != "" {
		merged["secret"] = a.Secret
	}
	if a.LifetimeMinutes > 0 {
		merged["lifetimeMinutes"] = a.LifetimeMinutes
	}
	if a.SkewSeconds > 0 {
		merged["clockSkewSeconds"] = a.SkewSeconds
	}
	return json.Marshal(merged)
}

func (s StorageConfig) ProviderSettings() (json.RawMessage, error) {
	if s.Settings == nil {
		return json.Marshal(map[string]any{})
	}
	return json.Marshal(s.Settings)
}

func (c *Config) IsDev() bool {
	return strings.ToLower(strings.TrimSpace(c.Env)) == "dev"
}

func (c *Config) Validate() error {
	var errs []string

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, "port must be between 1 and 65535")
	}
	switch c.Auth.Provider {
	case "hs256":
		// The signer rejects short secrets in every env; catching it here
		// keeps the failure a config error instead of a startup crash.
		if len(strings.TrimSpace(c.Auth.Secret)) < 16 {
			errs = append(errs, "auth.secret must be at least 16 bytes")
		}
	case "jwks":
		// The provider hard-requires all three; surface the full set at once.
		for _, key := range []string{"jwksUrl", "issuer", "audience"} {
			if v, ok := c.Auth.Settings[key].(string); !ok || strings.TrimSpace(v) == "" {
				errs = append(errs, fmt.Sprintf("auth.settings.%s is required for the jwks provider", key))
			}
		}
	case "static":
		if !c.IsDev() {
			errs = append(errs, "the static auth provider is dev only")
		}
	}
	if c.Storage.Type == "redis" && c.RedisAddr == "" {
		errs = append(errs, "redisAddr is required for redis storage")
	}
	if _, err := timezoneLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Sprintf("timezone %q is not a valid IANA name", c.Timezone))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func timezoneLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}

// Location resolves the configured timezone. Validate has already checked the
// name, so failures here fall back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := timezoneLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
