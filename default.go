package asynclog

import "time"

// defaultLogger is the lazily-initialized process-wide engine named in
// §9's design note: instantiated eagerly here (Go has no static
// initialization-order hazard the way the C++ source's global did), but
// inert until Init/InitWithDefaults is called — writes before that are
// no-ops because getEngine() returns nil.
var defaultLogger = NewLogger()

// Init initializes or reconfigures the default logger.
func Init(cfg *Config) error { return defaultLogger.Init(cfg) }

// InitWithDefaults initializes the default logger with built-in
// defaults plus optional "key=value" overrides.
func InitWithDefaults(overrides ...string) error {
	return defaultLogger.InitWithDefaults(overrides...)
}

// Shutdown gracefully closes the default logger.
func Shutdown(timeout time.Duration) error { return defaultLogger.Shutdown(timeout) }

func Debug(args ...any) { defaultLogger.Debug(args...) }
func Info(args ...any)  { defaultLogger.Info(args...) }
func Warn(args ...any)  { defaultLogger.Warn(args...) }
func Error(args ...any) { defaultLogger.Error(args...) }
func Fatal(args ...any) { defaultLogger.Fatal(args...) }

func DebugTrace(depth int, args ...any) { defaultLogger.DebugTrace(depth, args...) }
func InfoTrace(depth int, args ...any)  { defaultLogger.InfoTrace(depth, args...) }
func WarnTrace(depth int, args ...any)  { defaultLogger.WarnTrace(depth, args...) }
func ErrorTrace(depth int, args ...any) { defaultLogger.ErrorTrace(depth, args...) }

func Log(args ...any)                     { defaultLogger.Log(args...) }
func Message(args ...any)                 { defaultLogger.Message(args...) }
func LogTrace(depth int, args ...any)     { defaultLogger.LogTrace(depth, args...) }
func Assert(cond bool, condText string, graceful bool, args ...any) {
	defaultLogger.Assert(cond, condText, graceful, args...)
}

// SaveConfig saves the default logger's configuration to path.
func SaveConfig(path string) error { return defaultLogger.SaveConfig(path) }

// LoadConfig loads and applies configuration from path.
func LoadConfig(path string) error { return defaultLogger.LoadConfig(path) }

// Flush triggers a flush of the default logger's active engine.
func Flush(timeout time.Duration) error { return defaultLogger.Flush(timeout) }
