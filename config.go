package asynclog

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/lixenwraith/config"
	"gopkg.in/yaml.v3"
)

// Config holds the runtime equivalent of the compile-time configuration
// symbols in §6. FileLogging selects the sink the way FILE_LOGGING once
// selected it at build time; the rest mirror LOG_FILE_NAME/EXTN/PATH,
// FILE_SIZE, and DEBUG.
type Config struct {
	FileLogging bool   `toml:"file_logging" yaml:"file_logging"`
	Name        string `toml:"name" yaml:"name"`           // required when FileLogging (LOG_FILE_NAME)
	Extension   string `toml:"extension" yaml:"extension"` // LOG_FILE_EXTN
	Directory   string `toml:"directory" yaml:"directory"` // LOG_FILE_PATH
	MaxBytes    int64  `toml:"max_bytes" yaml:"max_bytes"` // FILE_SIZE

	Debug bool  `toml:"debug" yaml:"debug"`
	Level int64 `toml:"level" yaml:"level"`

	ShowTimestamp   bool   `toml:"show_timestamp" yaml:"show_timestamp"`
	TimestampFormat string `toml:"timestamp_format" yaml:"timestamp_format"`
	TraceDepth      int64  `toml:"trace_depth" yaml:"trace_depth"`

	HeartbeatLevel     int64 `toml:"heartbeat_level" yaml:"heartbeat_level"`
	HeartbeatIntervalS int64 `toml:"heartbeat_interval_s" yaml:"heartbeat_interval_s"`

	EnableStdout           bool `toml:"enable_stdout" yaml:"enable_stdout"`
	InternalErrorsToStderr bool `toml:"internal_errors_to_stderr" yaml:"internal_errors_to_stderr"`
}

var defaultConfig = Config{
	FileLogging:            false,
	Name:                   "log",
	Extension:              "",
	Directory:              "",
	MaxBytes:               defaultMaxBytes,
	Debug:                  false,
	Level:                  LevelInfo,
	ShowTimestamp:          true,
	TimestampFormat:        time.RFC3339Nano,
	TraceDepth:             0,
	HeartbeatLevel:         0,
	HeartbeatIntervalS:     60,
	EnableStdout:           false,
	InternalErrorsToStderr: false,
}

// DefaultConfig returns a copy of the built-in defaults.
func DefaultConfig() *Config {
	cfg := defaultConfig
	return &cfg
}

// NewConfigFromFile loads configuration from a TOML file at path,
// through github.com/lixenwraith/config, and validates the result. For
// a YAML override document, use NewConfigFromYAMLFile instead.
func NewConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	loader := config.New()
	if err := loader.RegisterStruct("asynclog.", *cfg); err != nil {
		return nil, fmt.Errorf("asynclog: registering config struct: %w", err)
	}

	if err := loader.Load(path, nil); err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, fmt.Errorf("asynclog: loading config from %s: %w", path, err)
	}

	if err := extractConfig(loader, "asynclog.", cfg); err != nil {
		return nil, fmt.Errorf("asynclog: extracting config values: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewConfigFromYAMLFile loads a YAML override document at path on top
// of the built-in defaults, via gopkg.in/yaml.v3, and validates the
// result. Unlike NewConfigFromFile's lixenwraith/config-backed TOML
// path, this is a direct yaml.Unmarshal into Config's own yaml-tagged
// fields: the document only needs to set the keys it overrides, since
// unmarshal leaves every field DefaultConfig already populated alone.
func NewConfigFromYAMLFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("asynclog: reading yaml config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("asynclog: parsing yaml config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewConfigFromDefaults builds a Config from the defaults with string-keyed
// overrides applied (the toml tag names double as override keys).
func NewConfigFromDefaults(overrides map[string]any) (*Config, error) {
	cfg := DefaultConfig()
	if err := applyOverrides(cfg, overrides); err != nil {
		return nil, fmt.Errorf("asynclog: applying overrides: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func extractConfig(loader *config.Config, prefix string, cfg *Config) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("toml")
		if tag == "" {
			continue
		}
		val, found := loader.Get(prefix + tag)
		if !found {
			continue
		}
		if err := setFieldValue(v.Field(i), val); err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}
	}
	return nil
}

func applyOverrides(cfg *Config, overrides map[string]any) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	fields := make(map[string]reflect.Value, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if tag := t.Field(i).Tag.Get("toml"); tag != "" {
			fields[tag] = v.Field(i)
		}
	}

	for key, value := range overrides {
		fv, ok := fields[key]
		if !ok {
			return fmt.Errorf("unknown configuration key %q", key)
		}
		if err := setFieldValue(fv, value); err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
	}
	return nil
}

func setFieldValue(field reflect.Value, value any) error {
	switch field.Kind() {
	case reflect.String:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		field.SetString(s)

	case reflect.Int64:
		switch v := value.(type) {
		case int64:
			field.SetInt(v)
		case int:
			field.SetInt(int64(v))
		default:
			return fmt.Errorf("expected int64, got %T", value)
		}

	case reflect.Bool:
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", value)
		}
		field.SetBool(b)

	default:
		return fmt.Errorf("unsupported field kind %v", field.Kind())
	}
	return nil
}

// validate enforces §4.5's "missing file name when file sink is
// requested is an initialization failure" plus the cross-field
// constraints carried over from the teacher's config validation.
func (c *Config) validate() error {
	if c.FileLogging && strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("asynclog: file_logging requires a non-empty name")
	}
	if c.MaxBytes < 0 {
		return fmt.Errorf("asynclog: max_bytes cannot be negative")
	}
	if strings.TrimSpace(c.TimestampFormat) == "" {
		return fmt.Errorf("asynclog: timestamp_format cannot be empty")
	}
	if c.TraceDepth < 0 || c.TraceDepth > 10 {
		return fmt.Errorf("asynclog: trace_depth must be between 0 and 10: %d", c.TraceDepth)
	}
	if c.HeartbeatLevel < 0 || c.HeartbeatLevel > 3 {
		return fmt.Errorf("asynclog: heartbeat_level must be between 0 and 3: %d", c.HeartbeatLevel)
	}
	if c.HeartbeatLevel > 0 && c.HeartbeatIntervalS <= 0 {
		return fmt.Errorf("asynclog: heartbeat_interval_s must be positive when heartbeat_level > 0")
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	cfg := *c
	return &cfg
}
