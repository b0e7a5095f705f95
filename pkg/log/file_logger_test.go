package log

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestFileLoggerWritesAndAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "login.alog")

	first, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	first.Log(Event{Timestamp: time.Now(), AttemptID: "one", Category: CategoryState})
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	second.Log(Event{Timestamp: time.Now(), AttemptID: "two", Category: CategoryState})
	second.Close()

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer reader.Close()

	var ids []string
	for {
		ev, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		ids = append(ids, ev.AttemptID)
	}
	if len(ids) != 2 || ids[0] != "one" || ids[1] != "two" {
		t.Errorf("ids = %v, want [one two]", ids)
	}
}

func TestFileLoggerPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "perm.alog")
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	defer logger.Close()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm&0077 != 0 {
		t.Errorf("log file mode %v is group/world accessible", perm)
	}
}

func TestFileLoggerCloseIsIdempotent(t *testing.T) {
	logger, err := NewFileLogger(filepath.Join(t.TempDir(), "x.alog"))
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	// Logging after close is ignored.
	logger.Log(Event{AttemptID: "late"})
}

func TestFileLoggerConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concurrent.alog")
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Log(Event{Timestamp: time.Now(), AttemptID: "c", Category: CategoryMessage,
				Frame: NewFrameEvent([]byte(`{"success":true}`), false)})
		}()
	}
	wg.Wait()
	logger.Close()

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer reader.Close()

	count := 0
	for {
		_, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		count++
	}
	if count != 20 {
		t.Errorf("read %d events, want 20", count)
	}
}

func TestFileLoggerCountsWrites(t *testing.T) {
	logger, err := NewFileLogger(filepath.Join(t.TempDir(), "count.alog"))
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	logger.Log(Event{AttemptID: "a"})
	logger.Log(Event{AttemptID: "b"})
	logger.Close()
	logger.Log(Event{AttemptID: "dropped"})

	if n := logger.Written(); n != 2 {
		t.Errorf("Written() = %d, want 2", n)
	}
	if err := logger.Err(); err != nil {
		t.Errorf("Err() = %v", err)
	}
}

func TestNewFileLoggerBadPath(t *testing.T) {
	if _, err := NewFileLogger(filepath.Join(t.TempDir(), "missing", "x.alog")); err == nil {
		t.Error("expected error for missing directory")
	}
}
