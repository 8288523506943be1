package asynclog

import (
	"sync"

	"go.uber.org/zap"
)

// internalLogger carries the engine's own operational diagnostics —
// failed rotations, writes it could not attribute to a caller, disabled
// sinks — distinct from the records producers push through Write. It
// never participates in the record buffer; it is the teacher's
// internalLog helper generalized to a structured logger instead of a
// raw os.Stderr print, per the ambient-stack expansion.
var (
	internalOnce sync.Once
	internal     *zap.Logger
)

func internalLogger() *zap.Logger {
	internalOnce.Do(func() {
		cfg := zap.NewProductionConfig()
		cfg.DisableStacktrace = true
		l, err := cfg.Build()
		if err != nil {
			l = zap.NewNop()
		}
		internal = l.Named("asynclog")
	})
	return internal
}

// SetInternalLogger overrides the package-wide internal diagnostics
// logger, e.g. to silence it in tests or route it through a host
// application's own zap instance.
func SetInternalLogger(l *zap.Logger) {
	internalOnce.Do(func() {})
	internal = l
}
