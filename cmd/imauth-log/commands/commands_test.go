package commands

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/imdesk/imclient/pkg/log"
)

func createTestLogFile(t *testing.T, events []log.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.alog")

	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

var base = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

// sampleAttempt returns the events of one rejected attempt.
func sampleAttempt(id string, at time.Time) []log.Event {
	common := log.Event{AttemptID: id, Username: "alice", RemoteAddr: "127.0.0.1:10001"}
	ev := func(offset time.Duration, e log.Event) log.Event {
		e.Timestamp = at.Add(offset)
		e.AttemptID, e.Username, e.RemoteAddr = common.AttemptID, common.Username, common.RemoteAddr
		return e
	}
	return []log.Event{
		ev(0, log.Event{Category: log.CategoryState, StateChange: &log.StateChangeEvent{OldState: "IDLE", NewState: "CONNECTING"}}),
		ev(time.Millisecond, log.Event{Category: log.CategoryMessage, Direction: log.DirectionOut,
			Frame: log.NewFrameEvent([]byte(`{"type":"auth","username":"alice","password":"***"}`), true)}),
		ev(2*time.Millisecond, log.Event{Category: log.CategoryMessage, Direction: log.DirectionIn,
			Frame: log.NewFrameEvent([]byte(`{"success":false,"message":"bad password"}`), false)}),
		ev(3*time.Millisecond, log.Event{Category: log.CategoryOutcome, Outcome: &log.OutcomeEvent{
			Kind: "REJECTED", Category: "APPLICATION_REJECTION", Message: "bad password", Elapsed: 3 * time.Millisecond}}),
	}
}

func TestFormatFrameEvent(t *testing.T) {
	var buf bytes.Buffer
	formatEvent(&buf, sampleAttempt("abc12345-6789", base)[1])
	out := buf.String()

	for _, want := range []string{
		"2026-03-02T09:30:00.001000Z",
		"[attempt:abc12345]",
		"alice@127.0.0.1:10001",
		"TRANSPORT OUT Frame",
		"(redacted)",
		`"password":"***"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestFormatBinaryFrameAsHex(t *testing.T) {
	var buf bytes.Buffer
	formatFrameDetails(&buf, &log.FrameEvent{Size: 2, Data: []byte{0x00, 0x01}})
	if !strings.Contains(buf.String(), "Data: 0001") {
		t.Errorf("expected hex data, got: %s", buf.String())
	}
}

func TestRunViewFilters(t *testing.T) {
	events := append(sampleAttempt("aaaa1111", base), sampleAttempt("bbbb2222", base.Add(time.Second))...)
	path := createTestLogFile(t, events)

	outcome := log.CategoryOutcome
	var buf bytes.Buffer
	if err := RunView(path, ViewFilter{Category: &outcome, AttemptID: "bbbb"}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}
	out := buf.String()
	if strings.Count(out, "Outcome") != 1 {
		t.Errorf("expected one outcome, got:\n%s", out)
	}
	if !strings.Contains(out, "[attempt:bbbb2222]") || strings.Contains(out, "aaaa1111") {
		t.Errorf("attempt filter not applied:\n%s", out)
	}

	in := log.DirectionIn
	buf.Reset()
	if err := RunView(path, ViewFilter{Direction: &in}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}
	if got := strings.Count(buf.String(), "IN Frame"); got != 2 {
		t.Errorf("expected 2 inbound frames, got %d", got)
	}
}

func TestRunViewMissingFile(t *testing.T) {
	if err := RunView(filepath.Join(t.TempDir(), "nope.alog"), ViewFilter{}, io.Discard); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseFlags(t *testing.T) {
	if l, err := ParseLayerFlag("SESSION"); err != nil || l != log.LayerSession {
		t.Errorf("ParseLayerFlag(SESSION) = %v, %v", l, err)
	}
	if _, err := ParseLayerFlag("service"); err == nil {
		t.Error("expected error for unknown layer")
	}
	if d, err := ParseDirectionFlag("out"); err != nil || d != log.DirectionOut {
		t.Errorf("ParseDirectionFlag(out) = %v, %v", d, err)
	}
	if c, err := ParseCategoryFlag("outcome"); err != nil || c != log.CategoryOutcome {
		t.Errorf("ParseCategoryFlag(outcome) = %v, %v", c, err)
	}
	if _, err := ParseCategoryFlag("control"); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestExportJSONL(t *testing.T) {
	path := createTestLogFile(t, sampleAttempt("abc12345", base))
	out := filepath.Join(t.TempDir(), "out.jsonl")

	if err := RunExport(path, "jsonl", out); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	var last log.Event
	if err := json.Unmarshal([]byte(lines[3]), &last); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if last.Outcome == nil || last.Outcome.Message != "bad password" {
		t.Errorf("unexpected outcome: %+v", last.Outcome)
	}
}

func TestExportCSV(t *testing.T) {
	path := createTestLogFile(t, sampleAttempt("abc12345", base))
	out := filepath.Join(t.TempDir(), "out.csv")

	if err := RunExport(path, "csv", out); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	if !strings.HasPrefix(s, "timestamp,attempt_id,username,remote_addr,layer,category,type,detail\n") {
		t.Errorf("unexpected header: %s", s)
	}
	if !strings.Contains(s, "outcome,REJECTED/APPLICATION_REJECTION") {
		t.Errorf("missing outcome row: %s", s)
	}
	if !strings.Contains(s, "state,CONNECTING") {
		t.Errorf("missing state row: %s", s)
	}
}

func TestExportUnknownFormat(t *testing.T) {
	path := createTestLogFile(t, nil)
	if err := RunExport(path, "xml", ""); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestRunFilter(t *testing.T) {
	events := append(sampleAttempt("aaaa1111", base), sampleAttempt("bbbb2222", base.Add(time.Hour))...)
	path := createTestLogFile(t, events)
	out := filepath.Join(t.TempDir(), "filtered.alog")

	n, err := RunFilter(path, FilterOptions{
		Output:    out,
		TimeStart: base.Add(30 * time.Minute).Format(time.RFC3339),
		Category:  "message",
	})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 events, got %d", n)
	}

	reader, err := log.NewReader(out)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()
	for {
		ev, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		if ev.AttemptID != "bbbb2222" || ev.Frame == nil {
			t.Errorf("unexpected event: %+v", ev)
		}
	}

	if _, err := RunFilter(path, FilterOptions{Output: out, TimeEnd: "yesterday"}); err == nil {
		t.Error("expected error for bad time")
	}
}

func TestRunFilterByOutcome(t *testing.T) {
	timedOut := []log.Event{
		{Timestamp: base.Add(time.Hour), AttemptID: "cccc3333", Username: "bob", Category: log.CategoryState,
			StateChange: &log.StateChangeEvent{OldState: "IDLE", NewState: "CONNECTING"}},
		{Timestamp: base.Add(time.Hour + 5*time.Second), AttemptID: "cccc3333", Username: "bob", Category: log.CategoryOutcome,
			Outcome: &log.OutcomeEvent{Kind: "TRANSPORT_ERROR", Category: "TIMEOUT", Message: "server did not respond in time"}},
	}
	events := append(sampleAttempt("aaaa1111", base), timedOut...)
	path := createTestLogFile(t, events)
	out := filepath.Join(t.TempDir(), "filtered.alog")

	tests := []struct {
		outcome string
		want    int
		id      string
	}{
		{"rejected", 4, "aaaa1111"},
		{"timeout", 2, "cccc3333"},
		{"transport-error", 2, "cccc3333"},
		{"success", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.outcome, func(t *testing.T) {
			n, err := RunFilter(path, FilterOptions{Output: out + "." + tt.outcome, Outcome: tt.outcome})
			if err != nil {
				t.Fatalf("RunFilter failed: %v", err)
			}
			if n != tt.want {
				t.Errorf("expected %d events, got %d", tt.want, n)
			}
			if n == 0 {
				return
			}
			reader, err := log.NewReader(out + "." + tt.outcome)
			if err != nil {
				t.Fatal(err)
			}
			defer reader.Close()
			for {
				ev, err := reader.Next()
				if err == io.EOF {
					break
				}
				if err != nil {
					t.Fatal(err)
				}
				if ev.AttemptID != tt.id {
					t.Errorf("unexpected attempt %q", ev.AttemptID)
				}
			}
		})
	}
}

func TestStats(t *testing.T) {
	events := sampleAttempt("aaaa1111", base)
	events = append(events,
		log.Event{Timestamp: base.Add(time.Second), AttemptID: "bbbb2222", Username: "bob", Category: log.CategoryError,
			Error: &log.ErrorEventData{Layer: log.LayerTransport, Message: "connection refused", Context: "dial"}},
		log.Event{Timestamp: base.Add(time.Second), AttemptID: "bbbb2222", Username: "bob", Category: log.CategoryOutcome,
			Outcome: &log.OutcomeEvent{Kind: "TRANSPORT_ERROR", Category: "CONNECTION_REFUSED", Dropped: 1}},
	)
	path := createTestLogFile(t, events)

	stats, err := CollectStats(path)
	if err != nil {
		t.Fatalf("CollectStats failed: %v", err)
	}
	if stats.TotalEvents != 6 {
		t.Errorf("TotalEvents = %d, want 6", stats.TotalEvents)
	}
	if len(stats.Attempts) != 2 {
		t.Errorf("Attempts = %d, want 2", len(stats.Attempts))
	}
	if stats.OutcomesByKind["REJECTED"] != 1 || stats.OutcomesByKind["TRANSPORT_ERROR"] != 1 {
		t.Errorf("unexpected outcomes: %v", stats.OutcomesByKind)
	}
	if stats.FailuresByCat["CONNECTION_REFUSED"] != 1 {
		t.Errorf("unexpected failures: %v", stats.FailuresByCat)
	}
	if stats.Errors != 1 || stats.Dropped != 1 {
		t.Errorf("Errors = %d, Dropped = %d", stats.Errors, stats.Dropped)
	}

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Total Events: 6", "Attempts: 2", "[aaaa1111] alice@127.0.0.1:10001 REJECTED", "CONNECTION_REFUSED:", "Errors: 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
}
