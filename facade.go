package asynclog

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/halcyon-systems/asynclog/formatter"
	"github.com/halcyon-systems/asynclog/sanitizer"
)

// payloadFormatters pools the formatter/sanitizer pair for rendering
// call arguments into the facade's payload field. A Formatter is not
// safe for concurrent use (it reuses an internal buffer), so each call
// borrows one from the pool rather than sharing a package-level
// instance across producer goroutines.
var payloadFormatters = sync.Pool{
	New: func() any {
		return formatter.New(sanitizer.New().Policy(sanitizer.PolicyTxt)).Type("txt")
	},
}

// jsonFormatters backs LogJSON's structured path (formatter.
// FlagStructuredJSON), kept in its own pool since a json-typed
// Formatter's Reset/buf state should never be interleaved with the
// txt-typed pool above.
var jsonFormatters = sync.Pool{
	New: func() any {
		return formatter.New(sanitizer.New().Policy(sanitizer.PolicyJSON)).Type("json")
	},
}

// conditionSanitizers sanitizes assertion condition text before it is
// embedded in buildAssertionPrefix's bracketed sentence, so a condition
// string containing its own ']' or a control character cannot forge a
// second bracketed field or inject a line break into the record.
var conditionSanitizers = sync.Pool{
	New: func() any {
		return sanitizer.New().Policy(sanitizer.PolicyCondition)
	},
}

// renderPayload formats args the way the platform's text-template
// renderer would (§4.6 defers that rendering out of scope; this is the
// in-repo stand-in grounded on the formatter package).
func renderPayload(args []any) string {
	f := payloadFormatters.Get().(*formatter.Formatter)
	defer payloadFormatters.Put(f)
	return string(f.FormatArgs(args...))
}

// renderStructuredJSON renders message/fields through the formatter's
// structured-JSON path (FlagStructuredJSON), the operation mode the
// facade's plain txt prefix never exercises.
func renderStructuredJSON(level int64, message string, fields map[string]any) string {
	f := jsonFormatters.Get().(*formatter.Formatter)
	defer jsonFormatters.Put(f)
	data := f.FormatWithOptions("json", formatter.FlagStructuredJSON|formatter.FlagDefault,
		time.Now(), level, "", []any{message, fields})
	return string(data)
}

// sanitizeCondition runs cond through the condition policy before it is
// embedded in an assertion sentence.
func sanitizeCondition(cond string) string {
	s := conditionSanitizers.Get().(*sanitizer.Sanitizer)
	defer conditionSanitizers.Put(s)
	return s.Sanitize(cond)
}

// callSite captures the caller location the facade needs to render its
// prefix: the fully-qualified function (split into class/func below),
// source file, and line.
type callSite struct {
	class string
	fn    string
	file  string
	line  int
}

// resolveCallSite walks the stack skip frames above its own caller.
// Go methods carry their receiver type in the function name
// ("pkg.(*Type).Method"); that portion becomes the facade's <class>,
// matching the C++ source's class::func convention as closely as a
// method-less language allows. Plain functions report their package
// name as the class.
func resolveCallSite(skip int) callSite {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return callSite{fn: "?", file: "?", line: 0}
	}

	fn := runtime.FuncForPC(pc)
	full := "?"
	if fn != nil {
		full = fn.Name()
	}

	class, name := splitFuncName(full)
	return callSite{class: class, fn: name, file: filepath.Base(file), line: line}
}

func splitFuncName(full string) (class, fn string) {
	// full looks like "github.com/org/pkg.Func" or
	// "github.com/org/pkg.(*Type).Method".
	slash := strings.LastIndex(full, "/")
	tail := full
	if slash >= 0 {
		tail = full[slash+1:]
	}
	dot := strings.Index(tail, ".")
	if dot < 0 {
		return "", tail
	}
	pkg, rest := tail[:dot], tail[dot+1:]
	if strings.Contains(rest, ".") {
		parts := strings.SplitN(rest, ".", 2)
		typ := strings.Trim(parts[0], "(*)")
		return pkg + "." + typ, parts[1]
	}
	return pkg, rest
}

// buildPrefix renders the single-line prefix described in §4.6:
//
//	[<class> : <func>]|<local_time>| <tid>| <file>|<line>|<LEVEL><marker>  <payload>
//
// tid is right-aligned to width 10, file left-aligned to width 20, line
// right-aligned to width 4, and the level+marker field is padded to the
// width of the longest level name plus one.
func buildPrefix(site callSite, tid int, level int64, marker, payload string) string {
	levelMarker := levelName(level) + marker
	var sb strings.Builder
	sb.WriteByte('[')
	sb.WriteString(site.class)
	sb.WriteString(" : ")
	sb.WriteString(site.fn)
	sb.WriteString("]|")
	sb.WriteString(time.Now().Format("2006-01-02T15:04:05.000Z07:00"))
	sb.WriteString("| ")
	fmt.Fprintf(&sb, "%10d", tid)
	sb.WriteString("| ")
	fmt.Fprintf(&sb, "%-20s", site.file)
	sb.WriteString("|")
	fmt.Fprintf(&sb, "%4d", site.line)
	sb.WriteString("|")
	fmt.Fprintf(&sb, "%-*s", longestLevelName+1, levelMarker)
	sb.WriteString("  ")
	sb.WriteString(stripQuotes(payload))
	return sb.String()
}

// buildAssertionPrefix extends buildPrefix with the fixed assertion
// sentence from §4.6.
func buildAssertionPrefix(site callSite, tid int, payload, cond string) string {
	base := buildPrefix(site, tid, LevelAssert, MidAngles, payload)
	return fmt.Sprintf("%s ASSERTION FAILURE in %s at LN:%d, for [CONDITION: %s] evaluating to FALSE.",
		base, site.file, site.line, sanitizeCondition(stripQuotes(cond)))
}
