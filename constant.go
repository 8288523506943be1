package asynclog

import "time"

// Log levels. Values are chosen to leave headroom for intermediate
// severities, matching the spacing convention of the level set.
const (
	LevelDebug     int64 = -4
	LevelInfo      int64 = 0
	LevelWarn      int64 = 4
	LevelError     int64 = 8
	LevelImportant int64 = 12
	LevelAssert    int64 = 16
	LevelFatal     int64 = 20
)

// Marker conventions for the facade prefix (§4.6). The source
// (original_source/include/Logger.hpp) declares four angle-marker
// constants: FORWARD_ANGLE ">" (the default per-record marker,
// ForwardAngle below), FORWARD_ANGLES ">>" (entry-trace marker),
// BACKWARD_ANGLE ">>" (exit-trace marker in name only — it is defined
// to the same value as FORWARD_ANGLES, a duplication bug, and is never
// once passed as an actual call argument anywhere in the source's
// LogHelper.hpp), and BACKWARD_ANGLES "<<" (the marker exit-trace
// calls actually use). BackwardAngle is carried here only to document
// that duplication; it is never used as a marker argument, matching
// the source's own dead constant.
const (
	ForwardAngle   = ">"
	ForwardAngles  = ">>"
	BackwardAngle  = ForwardAngles // documented duplicate, unused — see comment above
	BackwardAngles = "<<"
	MidAngles      = ForwardAngle
)

// recordCapacity is R = 4096 + 1: payload bytes plus a null terminator.
const recordCapacity = 4096 + 1

// recordPayloadMax is the largest payload that fits one record without
// being split.
const recordPayloadMax = recordCapacity - 1

// notifyThreshold is N, the watcher-wakeup threshold (I3).
const notifyThreshold = 256

// defaultMaxBytes is the file sink's default rotation ceiling.
const defaultMaxBytes = 1_024_000

// defaultExtension is appended when a configured stem carries none.
const defaultExtension = ".txt"

// flushSettle is the cooperative hand-off pause performed by flush().
const flushSettle = 200 * time.Microsecond

// exceptionsFileName is the fixed ledger file drained at engine destruction.
const exceptionsFileName = "LoggingExceptionsList.txt"

// rotationTimestampLayout renders local time as ddmmyyyy_HHMMSS with no
// separators between date components, per §6.
const rotationTimestampLayout = "02012006_150405"

func levelName(level int64) string {
	switch level {
	case LevelDebug:
		return "DBG"
	case LevelInfo:
		return "INF"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERR"
	case LevelImportant:
		return "IMP"
	case LevelAssert:
		return "ASRT"
	case LevelFatal:
		return "FATAL"
	default:
		return "DEFAULT"
	}
}

// longestLevelName drives the facade's fixed padding width.
var longestLevelName = func() int {
	max := 0
	for _, n := range []string{"ERR", "INF", "WARN", "DBG", "FATAL", "IMP", "ASRT", "DEFAULT"} {
		if len(n) > max {
			max = len(n)
		}
	}
	return max
}()
