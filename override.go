package asynclog

import (
	"fmt"
	"strconv"

	"go.uber.org/multierr"
)

// ApplyOverride applies "key=value" string overrides to a cloned copy of
// the logger's current configuration, then reconfigures the logger on
// success (grounded on the teacher's ApplyOverride in override.go).
// Unlike the teacher's hand-joined combineConfigErrors, multiple failures
// are combined with go.uber.org/multierr.
func (l *Logger) ApplyOverride(overrides ...string) error {
	cfg := l.getConfig().Clone()

	var errs error
	for _, o := range overrides {
		key, value, err := parseKeyValue(o)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if err := applyConfigField(cfg, key, value); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if errs != nil {
		return errs
	}

	return l.ApplyConfig(cfg)
}

func parseKeyValue(s string) (key, value string, err error) {
	for i := 0; i < len(s); i++ {
		if s[i] == '=' {
			return s[:i], s[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("asynclog: override %q is not in key=value form", s)
}

func applyConfigField(cfg *Config, key, value string) error {
	switch key {
	case "level":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid level %q: %w", value, err)
		}
		cfg.Level = n
	case "name":
		cfg.Name = value
	case "directory":
		cfg.Directory = value
	case "extension":
		cfg.Extension = value
	case "file_logging":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid file_logging %q: %w", value, err)
		}
		cfg.FileLogging = b
	case "max_bytes":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid max_bytes %q: %w", value, err)
		}
		cfg.MaxBytes = n
	case "debug":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid debug %q: %w", value, err)
		}
		cfg.Debug = b
	case "show_timestamp":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid show_timestamp %q: %w", value, err)
		}
		cfg.ShowTimestamp = b
	case "timestamp_format":
		cfg.TimestampFormat = value
	case "trace_depth":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid trace_depth %q: %w", value, err)
		}
		cfg.TraceDepth = n
	case "heartbeat_level":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid heartbeat_level %q: %w", value, err)
		}
		cfg.HeartbeatLevel = n
	case "heartbeat_interval_s":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid heartbeat_interval_s %q: %w", value, err)
		}
		cfg.HeartbeatIntervalS = n
	case "enable_stdout":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid enable_stdout %q: %w", value, err)
		}
		cfg.EnableStdout = b
	case "internal_errors_to_stderr":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid internal_errors_to_stderr %q: %w", value, err)
		}
		cfg.InternalErrorsToStderr = b
	default:
		return fmt.Errorf("unknown configuration key %q", key)
	}
	return nil
}
