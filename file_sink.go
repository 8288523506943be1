package asynclog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// FileSink writes drained records to a size-rotating file (C4). Rotation
// is evaluated before every batch write: if the on-disk size plus the
// pending batch would reach maxBytes, the active file is renamed to a
// local-timestamped archive name and a fresh file is opened at the
// original path.
type FileSink struct {
	mu            sync.Mutex
	dir           string
	stem          string
	ext           string
	maxBytes      int64
	file          *os.File
	ledger        exceptionLedger
	rotationCount atomic.Uint64
}

// NewFileSink resolves the path triple per §4.4's policy and returns a
// sink with no file yet opened (I4: created lazily on first write).
// name may itself carry an extension ("app.log"); an explicit non-empty
// extension always wins over one embedded in name.
func NewFileSink(directory, name, extension string, maxBytes int64) (*FileSink, error) {
	if name == "" {
		return nil, fmt.Errorf("file sink: name is required")
	}

	stem := name
	ext := extension
	if ext == "" {
		if e := filepath.Ext(name); e != "" {
			ext = e
			stem = strings.TrimSuffix(name, e)
		} else {
			ext = defaultExtension
		}
	} else {
		if e := filepath.Ext(name); e != "" {
			stem = strings.TrimSuffix(name, e)
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
	}

	if directory == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("file sink: resolving working directory: %w", err)
		}
		directory = wd
	}
	if !strings.HasSuffix(directory, string(filepath.Separator)) {
		directory += string(filepath.Separator)
	}

	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}

	return &FileSink{dir: directory, stem: stem, ext: ext, maxBytes: maxBytes}, nil
}

func (f *FileSink) staticPath() string {
	return filepath.Join(f.dir, f.stem+f.ext)
}

func (f *FileSink) archivePath(at time.Time) string {
	name := fmt.Sprintf("%s_%s%s", f.stem, at.Format(rotationTimestampLayout), f.ext)
	return filepath.Join(f.dir, name)
}

func (f *FileSink) writeBatch(batch []record) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := f.staticPath()

	if f.file == nil {
		if err := f.openAppend(path); err != nil {
			wrapped := fmt.Errorf("file sink: open %s: %w", path, err)
			f.ledger.capture(wrapped)
			return wrapped
		}
	}

	if err := f.file.Sync(); err != nil {
		f.ledger.capture(fmt.Errorf("file sink: sync %s: %w", path, err))
	}

	info, err := os.Stat(path)
	var size int64
	if err == nil {
		size = info.Size()
	}

	var payloadSize int64
	for _, r := range batch {
		payloadSize += int64(len(r.bytes())) + 1
	}

	if size+payloadSize >= f.maxBytes {
		if err := f.rotate(); err != nil {
			f.ledger.capture(err)
			return err
		}
	}

	w := bufio.NewWriter(f.file)
	for i, r := range batch {
		if _, err := w.Write(r.bytes()); err != nil {
			wrapped := fmt.Errorf("file sink: write record %d: %w", i, err)
			f.ledger.capture(wrapped)
			return wrapped
		}
		if err := w.WriteByte('\n'); err != nil {
			wrapped := fmt.Errorf("file sink: write newline after record %d: %w", i, err)
			f.ledger.capture(wrapped)
			return wrapped
		}
		if err := w.Flush(); err != nil {
			wrapped := fmt.Errorf("file sink: flush after record %d: %w", i, err)
			f.ledger.capture(wrapped)
			return wrapped
		}
		if err := f.file.Sync(); err != nil {
			f.ledger.capture(fmt.Errorf("file sink: sync after record %d: %w", i, err))
		}
	}
	return nil
}

// rotate renames the active file to its timestamped archive name and
// opens a fresh file at the static path. Called with f.mu held.
func (f *FileSink) rotate() error {
	path := f.staticPath()
	archive := f.archivePath(time.Now())

	if f.file != nil {
		_ = f.file.Close()
		f.file = nil
	}

	if err := os.Rename(path, archive); err != nil {
		return fmt.Errorf("file sink: rotate rename %s -> %s: %w", path, archive, err)
	}

	if err := f.openAppend(path); err != nil {
		return fmt.Errorf("file sink: open fresh file after rotation: %w", err)
	}
	f.rotationCount.Add(1)
	return nil
}

// RotationCount reports how many rotations this sink has performed.
func (f *FileSink) RotationCount() uint64 { return f.rotationCount.Load() }

func (f *FileSink) openAppend(path string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	f.file = file
	return nil
}

func (f *FileSink) exceptions() *exceptionLedger { return &f.ledger }

func (f *FileSink) close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}

// Static helpers (non-locking), §4.4. These operate on an arbitrary path
// and are used both standalone and through the *FileSink wrapper methods
// below, which capture failures into the sink's own ledger instead of
// returning an error.

// FileExists reports whether path names an existing file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// FileIsEmpty reports whether path exists and has zero size.
func FileIsEmpty(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.Size() == 0, nil
}

// ReadByteRange reads the half-open byte range [start, end) from path,
// validating start <= end <= size.
func ReadByteRange(path string, start, end int64) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if start < 0 || start > end || end > info.Size() {
		return nil, fmt.Errorf("file helper: invalid byte range [%d,%d] for size %d", start, end, info.Size())
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, end-start)
	if _, err := f.ReadAt(buf, start); err != nil && err != io.EOF {
		return nil, err
	}
	return buf, nil
}

// ReadLineRange reads 1-based inclusive lines [start, end] from path.
func ReadLineRange(path string, start, end int) ([]string, error) {
	if start < 1 || start > end {
		return nil, fmt.Errorf("file helper: invalid line range [%d,%d]", start, end)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if start > len(lines) {
		return nil, fmt.Errorf("file helper: start line %d beyond %d lines", start, len(lines))
	}
	if end > len(lines) {
		end = len(lines)
	}
	return lines[start-1 : end], nil
}

// CreateFile creates an empty file at path, truncating if it exists.
func CreateFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	return f.Close()
}

// RemoveFile removes the file at path.
func RemoveFile(path string) error {
	return os.Remove(path)
}

// TruncateFile truncates the file at path to zero length.
func TruncateFile(path string) error {
	return os.Truncate(path, 0)
}

// Exists wraps FileExists for this sink's static path.
func (f *FileSink) Exists() bool {
	return FileExists(f.staticPath())
}

// IsEmpty wraps FileIsEmpty, capturing any error into the sink's ledger.
func (f *FileSink) IsEmpty() bool {
	ok, err := FileIsEmpty(f.staticPath())
	if err != nil {
		f.ledger.capture(fmt.Errorf("file sink: is-empty: %w", err))
		return false
	}
	return ok
}

// ReadByteRange wraps the package-level helper against this sink's path.
func (f *FileSink) ReadByteRange(start, end int64) ([]byte, bool) {
	data, err := ReadByteRange(f.staticPath(), start, end)
	if err != nil {
		f.ledger.capture(fmt.Errorf("file sink: read byte range: %w", err))
		return nil, false
	}
	return data, true
}

// ReadLineRange wraps the package-level helper against this sink's path.
func (f *FileSink) ReadLineRange(start, end int) ([]string, bool) {
	lines, err := ReadLineRange(f.staticPath(), start, end)
	if err != nil {
		f.ledger.capture(fmt.Errorf("file sink: read line range: %w", err))
		return nil, false
	}
	return lines, true
}

// Create wraps CreateFile against this sink's static path.
func (f *FileSink) Create() bool {
	if err := CreateFile(f.staticPath()); err != nil {
		f.ledger.capture(fmt.Errorf("file sink: create: %w", err))
		return false
	}
	return true
}

// Remove wraps RemoveFile against this sink's static path.
func (f *FileSink) Remove() bool {
	if err := RemoveFile(f.staticPath()); err != nil {
		f.ledger.capture(fmt.Errorf("file sink: remove: %w", err))
		return false
	}
	return true
}

// Truncate wraps TruncateFile against this sink's static path.
func (f *FileSink) Truncate() bool {
	if err := TruncateFile(f.staticPath()); err != nil {
		f.ledger.capture(fmt.Errorf("file sink: truncate: %w", err))
		return false
	}
	return true
}

// DirSize returns the combined size in bytes of the active file and every
// rotated archive sharing this sink's stem, for heartbeat/metrics reporting.
func (f *FileSink) DirSize() int64 {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		f.ledger.capture(fmt.Errorf("file sink: dir size: %w", err))
		return 0
	}
	var total int64
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), f.stem) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		total += info.Size()
	}
	return total
}

// FileCount returns the number of files sharing this sink's stem (the
// active file plus every rotated archive).
func (f *FileSink) FileCount() int {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		f.ledger.capture(fmt.Errorf("file sink: file count: %w", err))
		return 0
	}
	count := 0
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), f.stem) {
			count++
		}
	}
	return count
}
