// Package config loads and validates the options a client needs to dial an
// Open Protocol controller and drive its Link Layer.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/kulaginds/openprotocol/internal/protocol/linklayer"
	"github.com/kulaginds/openprotocol/internal/protocol/message"
)

// Config holds everything needed to open and drive one controller
// connection.
type Config struct {
	Connection ConnectionOptions `mapstructure:"connection" yaml:"connection"`
	LinkLayer  LinkLayerOptions  `mapstructure:"linklayer" yaml:"linklayer"`
	Logging    LoggingOptions    `mapstructure:"logging" yaml:"logging"`
}

// LoadOptions holds command-line/programmatic override values, applied with
// higher precedence than environment variables.
type LoadOptions struct {
	Host     string
	Port     int
	LogLevel string
}

// ConnectionOptions configures the TCP dial to the controller.
type ConnectionOptions struct {
	Host        string        `mapstructure:"host" env:"OPENPROTOCOL_HOST" default:"127.0.0.1" yaml:"host" validate:"required"`
	Port        int           `mapstructure:"port" env:"OPENPROTOCOL_PORT" default:"4545" yaml:"port" validate:"min=1,max=65535"`
	DialTimeout time.Duration `mapstructure:"dial_timeout" env:"OPENPROTOCOL_DIAL_TIMEOUT" default:"5s" yaml:"dial_timeout" validate:"gt=0"`
}

// Address returns the host:port dial target.
func (c ConnectionOptions) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LinkLayerOptions mirrors linklayer.Options, narrowed to the fields the
// protocol's Link Layer documents as caller-configurable.
type LinkLayerOptions struct {
	Timeout           time.Duration `mapstructure:"timeout" env:"OPENPROTOCOL_TIMEOUT" default:"3s" yaml:"timeout" validate:"gt=0"`
	RetryLimit        int           `mapstructure:"retry_limit" env:"OPENPROTOCOL_RETRY_LIMIT" default:"3" yaml:"retry_limit" validate:"min=0"`
	RawData           bool          `mapstructure:"raw_data" env:"OPENPROTOCOL_RAW_DATA" default:"false" yaml:"raw_data"`
	DisableMidParsing []int         `mapstructure:"disable_mid_parsing" env:"OPENPROTOCOL_DISABLE_MID_PARSING" default:"" yaml:"disable_mid_parsing"`
}

// ToOptions adapts LinkLayerOptions into the linklayer package's own
// Options type, which New requires.
func (o LinkLayerOptions) ToOptions() linklayer.Options {
	return linklayer.Options{
		Timeout:           o.Timeout,
		RetryLimit:        o.RetryLimit,
		RawData:           o.RawData,
		DisableMidParsing: o.DisableMidParsing,
	}
}

// LoggingOptions controls the default logger's verbosity.
type LoggingOptions struct {
	Level string `mapstructure:"level" env:"OPENPROTOCOL_LOG_LEVEL" default:"info" yaml:"level" validate:"oneof=debug info warn error"`
}

// Default returns a Config populated with the struct-tag defaults above.
func Default() *Config {
	return &Config{
		Connection: ConnectionOptions{
			Host:        "127.0.0.1",
			Port:        4545,
			DialTimeout: 5 * time.Second,
		},
		LinkLayer: LinkLayerOptions{
			Timeout:    linklayer.DefaultTimeout,
			RetryLimit: linklayer.DefaultRetryLimit,
		},
		Logging: LoggingOptions{Level: "info"},
	}
}

// Load loads configuration from environment variables, falling back to
// defaults for anything unset.
func Load() (*Config, error) {
	return LoadWithOverrides(LoadOptions{})
}

// LoadWithOverrides loads configuration from environment variables, with
// opts taking precedence over the environment.
func LoadWithOverrides(opts LoadOptions) (*Config, error) {
	cfg := Default()

	cfg.Connection.Host = getOverrideOrEnv(opts.Host, "OPENPROTOCOL_HOST", cfg.Connection.Host)
	if opts.Port != 0 {
		cfg.Connection.Port = opts.Port
	} else {
		cfg.Connection.Port = getIntWithDefault("OPENPROTOCOL_PORT", cfg.Connection.Port)
	}
	cfg.Connection.DialTimeout = getDurationWithDefault("OPENPROTOCOL_DIAL_TIMEOUT", cfg.Connection.DialTimeout)

	cfg.LinkLayer.Timeout = getDurationWithDefault("OPENPROTOCOL_TIMEOUT", cfg.LinkLayer.Timeout)
	cfg.LinkLayer.RetryLimit = getIntWithDefault("OPENPROTOCOL_RETRY_LIMIT", cfg.LinkLayer.RetryLimit)
	cfg.LinkLayer.RawData = getBoolWithDefault("OPENPROTOCOL_RAW_DATA", cfg.LinkLayer.RawData)
	cfg.LinkLayer.DisableMidParsing = getIntSliceWithDefault("OPENPROTOCOL_DISABLE_MID_PARSING", cfg.LinkLayer.DisableMidParsing)

	cfg.Logging.Level = getOverrideOrEnv(opts.LogLevel, "OPENPROTOCOL_LOG_LEVEL", cfg.Logging.Level)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// FromMap decodes a loosely-typed option map (for example, the body of a
// caller's own config file after a generic YAML/JSON unmarshal) into a
// Config using the same mapstructure tags Load populates from the
// environment, so either path produces an equally valid Config.
func FromMap(raw map[string]any) (*Config, error) {
	cfg := Default()

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return nil, fmt.Errorf("build config decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

var structValidator = validator.New()

// Validate checks every struct-tag constraint declared above, then the few
// cross-field rules a tag can't express.
func (c *Config) Validate() error {
	if err := structValidator.Struct(c); err != nil {
		return err
	}

	for _, mid := range c.LinkLayer.DisableMidParsing {
		if mid < message.MinMID || mid > message.MaxMID {
			return fmt.Errorf("disable_mid_parsing: mid %d out of range [%d, %d]", mid, message.MinMID, message.MaxMID)
		}
	}

	return nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getIntSliceWithDefault(key string, defaultValue []int) []int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []int
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return defaultValue
		}
		out = append(out, n)
	}
	return out
}

// getOverrideOrEnv returns the command-line override value, the
// environment value, or the default, in that order of precedence.
func getOverrideOrEnv(override, envKey, defaultValue string) string {
	if override != "" {
		return override
	}
	return getEnvWithDefault(envKey, defaultValue)
}
