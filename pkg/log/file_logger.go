package log

import (
	"fmt"
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// FileLogger appends events to a CBOR trace file (conventionally *.alog).
// Write errors never reach the login flow; the first one is kept for Err.
type FileLogger struct {
	mu      sync.Mutex
	path    string
	f       *os.File
	enc     *cbor.Encoder
	written int
	err     error
}

// NewFileLogger opens path for appending, creating it with mode 0600:
// traces name users and servers.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	return &FileLogger{path: path, f: f, enc: NewEncoder(f)}, nil
}

// Log appends event. Calls after Close are dropped.
func (l *FileLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.f == nil {
		return
	}
	if err := l.enc.Encode(event); err != nil {
		if l.err == nil {
			l.err = fmt.Errorf("write %s: %w", l.path, err)
		}
		return
	}
	l.written++
}

// Written returns the number of events stored.
func (l *FileLogger) Written() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.written
}

// Err returns the first write error, if any.
func (l *FileLogger) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Close closes the file. Further calls are no-ops.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}

var _ Logger = (*FileLogger)(nil)
