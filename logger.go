package asynclog

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/config"
	"go.uber.org/zap"
)

// Logger is the stateful lifecycle wrapper around the facade (C6) and
// the engine (C5): it owns the currently active Config and Engine pair
// and lets both be swapped out at runtime via ApplyConfig, the way the
// teacher's Logger does with its atomic.Value-held config and state.
type Logger struct {
	currentConfig atomic.Value // *Config
	engine        atomic.Value // *Engine
	initMu        sync.Mutex
	startTime     time.Time

	heartbeatStop chan struct{}
	heartbeatDone chan struct{}
	heartbeatSeq  atomic.Uint64
}

// NewLogger returns an unconfigured logger; call ApplyConfig (or Init)
// before logging.
func NewLogger() *Logger {
	return &Logger{startTime: time.Now()}
}

// NewLoggerWithConfig constructs and immediately applies cfg.
func NewLoggerWithConfig(cfg *Config) (*Logger, error) {
	l := NewLogger()
	if err := l.ApplyConfig(cfg); err != nil {
		return nil, err
	}
	return l, nil
}

// ApplyConfig validates cfg, builds the sink and engine it implies,
// starts the new engine, and retires the previous one (if any) by
// destroying it after the swap so in-flight writes against the old
// engine are not lost mid-reconfiguration.
func (l *Logger) ApplyConfig(cfg *Config) error {
	l.initMu.Lock()
	defer l.initMu.Unlock()

	if err := cfg.validate(); err != nil {
		return err
	}

	var sink Sink
	if cfg.FileLogging {
		fs, err := NewFileSink(cfg.Directory, cfg.Name, cfg.Extension, cfg.MaxBytes)
		if err != nil {
			return err
		}
		sink = fs
	} else {
		sink = NewConsoleSink()
	}

	eng, err := NewEngine(sink)
	if err != nil {
		return err
	}
	eng.Start()

	old, _ := l.engine.Load().(*Engine)

	l.engine.Store(eng)
	l.currentConfig.Store(cfg)

	if old != nil {
		_ = old.Destroy()
	}

	l.restartHeartbeat(cfg)
	return nil
}

// ApplyConfigString builds a Config from the defaults plus the given
// "key=value" overrides and applies it.
func (l *Logger) ApplyConfigString(overrides ...string) error {
	cfg := DefaultConfig()
	for _, o := range overrides {
		key, value, err := parseKeyValue(o)
		if err != nil {
			return err
		}
		if err := applyConfigField(cfg, key, value); err != nil {
			return err
		}
	}
	return l.ApplyConfig(cfg)
}

// Init applies cfg; an alias kept for parity with the package-level
// function of the same name.
func (l *Logger) Init(cfg *Config) error { return l.ApplyConfig(cfg) }

// InitWithDefaults applies the built-in defaults plus string overrides.
func (l *Logger) InitWithDefaults(overrides ...string) error {
	return l.ApplyConfigString(overrides...)
}

func (l *Logger) getConfig() *Config {
	if c, ok := l.currentConfig.Load().(*Config); ok {
		return c
	}
	return DefaultConfig()
}

// GetConfig returns a copy of the active configuration.
func (l *Logger) GetConfig() *Config { return l.getConfig().Clone() }

func (l *Logger) getEngine() *Engine {
	e, _ := l.engine.Load().(*Engine)
	return e
}

// SaveConfig writes the active configuration to path via
// github.com/lixenwraith/config.
func (l *Logger) SaveConfig(path string) error {
	cfg := l.getConfig()
	loader := config.New()
	if err := loader.RegisterStruct("asynclog.", *cfg); err != nil {
		return fmt.Errorf("asynclog: registering config for save: %w", err)
	}
	return loader.Save(path)
}

// LoadConfig loads configuration from a TOML file at path and applies it.
func (l *Logger) LoadConfig(path string) error {
	cfg, err := NewConfigFromFile(path)
	if err != nil {
		return err
	}
	return l.ApplyConfig(cfg)
}

// LoadConfigYAML loads a YAML override document at path and applies it.
func (l *Logger) LoadConfigYAML(path string) error {
	cfg, err := NewConfigFromYAMLFile(path)
	if err != nil {
		return err
	}
	return l.ApplyConfig(cfg)
}

// Flush delegates to the active engine.
func (l *Logger) Flush(timeout time.Duration) error {
	eng := l.getEngine()
	if eng == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		eng.Flush()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("asynclog: flush timed out after %s", timeout)
	}
}

// Shutdown destroys the active engine and stops the heartbeat,
// honoring the supplied timeout.
func (l *Logger) Shutdown(timeout time.Duration) error {
	l.stopHeartbeat()

	eng := l.getEngine()
	if eng == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- eng.Destroy() }()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		return fmt.Errorf("asynclog: shutdown timed out after %s", timeout)
	}
}

// tid is a process-level placeholder used for the facade's <tid> field;
// see sink.go's exceptionEntry doc comment for why Go has nothing better.
func tid() int { return os.Getpid() }

func (l *Logger) dispatch(level int64, traceDepth int, args []any) {
	cfg := l.getConfig()
	if level == LevelDebug && !cfg.Debug {
		return
	}
	if level < cfg.Level {
		return
	}

	eng := l.getEngine()
	if eng == nil {
		return
	}

	site := resolveCallSite(3)
	payload := renderPayload(args)
	if traceDepth > 0 {
		if trace := callTrace(traceDepth, 2); trace != "" {
			payload = payload + " trace=" + trace
		}
	}

	prefix := buildPrefix(site, tid(), level, MidAngles, payload)
	_ = eng.Write(prefix)

	if cfg.EnableStdout {
		fmt.Fprintln(os.Stdout, prefix)
	}

	if level == LevelFatal {
		_ = eng.Destroy()
		os.Exit(1)
	}
}

func (l *Logger) Debug(args ...any) { l.dispatch(LevelDebug, 0, args) }
func (l *Logger) Info(args ...any)  { l.dispatch(LevelInfo, 0, args) }
func (l *Logger) Warn(args ...any)  { l.dispatch(LevelWarn, 0, args) }
func (l *Logger) Error(args ...any) { l.dispatch(LevelError, 0, args) }
func (l *Logger) Fatal(args ...any) { l.dispatch(LevelFatal, 0, args) }

func (l *Logger) DebugTrace(depth int, args ...any) { l.dispatch(LevelDebug, depth, args) }
func (l *Logger) InfoTrace(depth int, args ...any)  { l.dispatch(LevelInfo, depth, args) }
func (l *Logger) WarnTrace(depth int, args ...any)  { l.dispatch(LevelWarn, depth, args) }
func (l *Logger) ErrorTrace(depth int, args ...any) { l.dispatch(LevelError, depth, args) }

// Log writes a timestamp-only record without level information.
func (l *Logger) Log(args ...any) {
	eng := l.getEngine()
	if eng == nil {
		return
	}
	_ = eng.Write(fmt.Sprintf("|%s| %s", time.Now().Format(time.RFC3339Nano), renderPayload(args)))
}

// Message writes a plain record without timestamp or level info.
func (l *Logger) Message(args ...any) {
	eng := l.getEngine()
	if eng == nil {
		return
	}
	_ = eng.Write(renderPayload(args))
}

// LogTrace writes a timestamp record with a call trace but no level info.
func (l *Logger) LogTrace(depth int, args ...any) {
	eng := l.getEngine()
	if eng == nil {
		return
	}
	trace := callTrace(depth, 2)
	_ = eng.Write(fmt.Sprintf("|%s| %s trace=%s", time.Now().Format(time.RFC3339Nano), renderPayload(args), trace))
}

// LogJSON writes a structured record through the formatter's
// FlagStructuredJSON path instead of the txt-prefixed line buildPrefix
// produces: message/fields become a single {"time","level","message",
// "fields"} JSON object, for callers that want a machine-parseable
// record rather than the bracketed §4.6 prefix.
func (l *Logger) LogJSON(level int64, message string, fields map[string]any) {
	cfg := l.getConfig()
	if level == LevelDebug && !cfg.Debug {
		return
	}
	if level < cfg.Level {
		return
	}

	eng := l.getEngine()
	if eng == nil {
		return
	}
	_ = eng.Write(renderStructuredJSON(level, message, fields))
}

// Write is the raw passthrough (FlagRaw equivalent): the payload is
// pushed as-is, bypassing the facade prefix entirely.
func (l *Logger) Write(v any) error {
	eng := l.getEngine()
	if eng == nil {
		return fmt.Errorf("asynclog: logger has no active engine")
	}
	return eng.Write(v)
}

// Assert emits an assertion-level record when cond is false, then acts
// on the graceful flag per §4.6/error kind 4: graceful mode drains the
// engine and exits non-zero; non-graceful panics, which terminates the
// process unless the caller recovers.
func (l *Logger) Assert(cond bool, condText string, graceful bool, args ...any) {
	if cond {
		return
	}

	eng := l.getEngine()
	site := resolveCallSite(2)
	payload := renderPayload(args)
	prefix := buildAssertionPrefix(site, tid(), payload, condText)

	if eng != nil {
		_ = eng.Write(prefix)
		eng.Flush()
	}

	internalLogger().Error("assertion failure", zap.String("condition", condText), zap.String("site", site.fn))

	if graceful {
		if eng != nil {
			_ = eng.Destroy()
		}
		os.Exit(1)
	}
	panic(fmt.Sprintf("asynclog: assertion failure: %s", condText))
}

func (l *Logger) restartHeartbeat(cfg *Config) {
	l.stopHeartbeat()
	if cfg.HeartbeatLevel <= 0 {
		return
	}

	l.heartbeatStop = make(chan struct{})
	l.heartbeatDone = make(chan struct{})
	go l.runHeartbeat(cfg.HeartbeatLevel, time.Duration(cfg.HeartbeatIntervalS)*time.Second, l.heartbeatStop, l.heartbeatDone)
}

func (l *Logger) stopHeartbeat() {
	if l.heartbeatStop == nil {
		return
	}
	close(l.heartbeatStop)
	<-l.heartbeatDone
	l.heartbeatStop = nil
	l.heartbeatDone = nil
}

// runHeartbeat periodically emits proc/disk/sys-level status records,
// grounded on the teacher's logProcHeartbeat/logDiskHeartbeat/
// logSysHeartbeat trio in heartbeat.go, generalized from three fixed
// goroutines into one loop gated by the configured level.
func (l *Logger) runHeartbeat(level int64, interval time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			eng := l.getEngine()
			if eng == nil {
				continue
			}
			seq := l.heartbeatSeq.Add(1)
			uptime := time.Since(l.startTime).Round(time.Second)

			_ = eng.Write(fmt.Sprintf("HEARTBEAT proc seq=%d uptime=%s", seq, uptime))
			if level >= 2 {
				_ = eng.Write(fmt.Sprintf("HEARTBEAT disk dropped=%d", eng.DroppedRecords()))
			}
			if level >= 3 {
				_ = eng.Write(fmt.Sprintf("HEARTBEAT sys goroutines=%d", runtime.NumGoroutine()))
			}
		}
	}
}
