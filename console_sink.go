package asynclog

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// ConsoleSink writes drained records to standard output, one line per
// record, under its own lock (C3). NewConsoleSinkTo swaps the
// underlying stream for an in-memory buffer for assertions.
type ConsoleSink struct {
	mu     sync.Mutex
	w      io.Writer
	ledger exceptionLedger
}

// NewConsoleSink writes to os.Stdout.
func NewConsoleSink() *ConsoleSink {
	return &ConsoleSink{w: os.Stdout}
}

// NewConsoleSinkTo writes to an arbitrary writer; used by tests to inject
// an in-memory buffer in place of the real stream.
func NewConsoleSinkTo(w io.Writer) *ConsoleSink {
	return &ConsoleSink{w: w}
}

func (c *ConsoleSink) writeBatch(batch []record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, r := range batch {
		line := append(r.bytes(), '\n')
		if _, err := c.w.Write(line); err != nil {
			wrapped := fmt.Errorf("console sink: write failed at record %d (pid %d): %w", i, os.Getpid(), err)
			c.ledger.capture(wrapped)
			return wrapped
		}
		if f, ok := c.w.(*os.File); ok {
			_ = f.Sync()
		} else if fl, ok := c.w.(interface{ Flush() error }); ok {
			_ = fl.Flush()
		}
	}
	return nil
}

func (c *ConsoleSink) exceptions() *exceptionLedger { return &c.ledger }

func (c *ConsoleSink) close() error { return nil }
