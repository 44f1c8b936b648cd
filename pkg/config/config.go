package config

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/goliatone/go-config/cfgx"
)

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"

	payloadKeySize = 32
)

// Config captures module-level configuration knobs. Feature packages (state,
// viewing keys, activity) pull from these nested structs.
type Config struct {
	Persistence PersistenceConfig `mapstructure:"persistence" json:"persistence"`
	Credentials CredentialsConfig `mapstructure:"credentials" json:"credentials"`
	Encryption  EncryptionConfig  `mapstructure:"encryption" json:"encryption"`
	Activity    ActivityConfig    `mapstructure:"activity" json:"activity"`
	Logging     LoggingConfig     `mapstructure:"logging" json:"logging"`
}

// PersistenceConfig selects the storage backend.
type PersistenceConfig struct {
	Driver string `mapstructure:"driver" json:"driver"`
	DSN    string `mapstructure:"dsn" json:"dsn"`
}

// CredentialsConfig shapes issued viewing keys.
type CredentialsConfig struct {
	TokenPrefix      string `mapstructure:"token_prefix" json:"token_prefix"`
	MaxEntropyLength int    `mapstructure:"max_entropy_length" json:"max_entropy_length"`
}

// EncryptionConfig holds the payload sealing key, raw or base64 encoded.
type EncryptionConfig struct {
	PayloadKey string `mapstructure:"payload_key" json:"payload_key"`
}

// ActivityConfig toggles the audit trail. Nil means enabled.
type ActivityConfig struct {
	Enabled *bool `mapstructure:"enabled" json:"enabled"`
}

// LoggingConfig sets the level used by the basic logger.
type LoggingConfig struct {
	Level string `mapstructure:"level" json:"level"`
}

// IsEnabled reports whether activity hooks should be wired.
func (a ActivityConfig) IsEnabled() bool {
	return a.Enabled == nil || *a.Enabled
}

// Defaults returns the baseline configuration.
func Defaults() Config {
	enabled := true
	return Config{
		Persistence: PersistenceConfig{Driver: DriverMemory},
		Credentials: CredentialsConfig{
			TokenPrefix:      "api_key_",
			MaxEntropyLength: 1024,
		},
		Activity: ActivityConfig{Enabled: &enabled},
		Logging:  LoggingConfig{Level: "info"},
	}
}

// Validate ensures required fields are present and sane.
func (c *Config) Validate() error {
	switch c.Persistence.Driver {
	case DriverMemory:
	case DriverSQLite:
		if strings.TrimSpace(c.Persistence.DSN) == "" {
			return errors.New("persistence.dsn is required for sqlite")
		}
	default:
		return fmt.Errorf("persistence.driver %q is not supported", c.Persistence.Driver)
	}
	if c.Credentials.TokenPrefix == "" {
		return errors.New("credentials.token_prefix is required")
	}
	if c.Credentials.MaxEntropyLength <= 0 {
		return fmt.Errorf("credentials.max_entropy_length must be > 0")
	}
	if _, err := c.Encryption.Key(); err != nil {
		return err
	}
	return nil
}

// Key returns the decoded payload key, or nil when none is configured.
func (e EncryptionConfig) Key() ([]byte, error) {
	raw := strings.TrimSpace(e.PayloadKey)
	if raw == "" {
		return nil, nil
	}
	if len(raw) == payloadKeySize {
		return []byte(raw), nil
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || len(decoded) != payloadKeySize {
		return nil, fmt.Errorf("encryption.payload_key must be %d bytes (raw or base64)", payloadKeySize)
	}
	return decoded, nil
}

// Load decodes arbitrary input (struct, map, cfg struct) using cfgx helpers.
// When cfgx.Build yields a zero value we fall back to a lightweight decoder.
func Load(input any, opts ...LoadOption) (Config, error) {
	settings := loadOptions{}
	for _, opt := range opts {
		opt(&settings)
	}

	cfg, err := cfgx.Build(input, settings.buildOpts...)
	if err != nil {
		return Config{}, err
	}

	if isZero(cfg) {
		if err := decodeFallback(input, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg = cfg.withDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadOption lets callers amend cfgx build options.
type LoadOption func(*loadOptions)

type loadOptions struct {
	buildOpts []cfgx.Option[Config]
}

// WithBuildOptions forwards cfgx options (preprocessors, decode hooks, etc.).
func WithBuildOptions(opts ...cfgx.Option[Config]) LoadOption {
	return func(lo *loadOptions) {
		lo.buildOpts = append(lo.buildOpts, opts...)
	}
}

func (c Config) withDefaults() Config {
	defaults := Defaults()

	if c.Persistence.Driver == "" {
		c.Persistence.Driver = defaults.Persistence.Driver
	}
	c.Persistence.Driver = strings.ToLower(c.Persistence.Driver)
	if c.Credentials.TokenPrefix == "" {
		c.Credentials.TokenPrefix = defaults.Credentials.TokenPrefix
	}
	if c.Credentials.MaxEntropyLength == 0 {
		c.Credentials.MaxEntropyLength = defaults.Credentials.MaxEntropyLength
	}
	if c.Activity.Enabled == nil {
		c.Activity.Enabled = defaults.Activity.Enabled
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
	return c
}

func isZero(cfg Config) bool {
	return reflect.DeepEqual(cfg, Config{})
}

func decodeFallback(input any, cfg *Config) error {
	switch v := input.(type) {
	case nil:
		return nil
	case Config:
		*cfg = v
		return nil
	case *Config:
		if v != nil {
			*cfg = *v
		}
		return nil
	case map[string]any:
		return decodeMap(v, cfg)
	default:
		return fmt.Errorf("unsupported config input type: %T", input)
	}
}

func decodeMap(input map[string]any, cfg *Config) error {
	if input == nil {
		return nil
	}
	payload, err := json.Marshal(input)
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, cfg)
}
