// Package commands implements the imauth-log CLI commands.
package commands

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/imdesk/imclient/pkg/log"
)

// ViewFilter specifies criteria for the view command.
type ViewFilter struct {
	Layer     *log.Layer
	Direction *log.Direction
	Category  *log.Category
	AttemptID string
}

func (f ViewFilter) matches(e log.Event) bool {
	if f.Layer != nil && e.Layer != *f.Layer {
		return false
	}
	if f.Direction != nil && (e.Frame == nil || e.Direction != *f.Direction) {
		return false
	}
	if f.Category != nil && e.Category != *f.Category {
		return false
	}
	if f.AttemptID != "" && !strings.HasPrefix(e.AttemptID, f.AttemptID) {
		return false
	}
	return true
}

const timeLayout = "2006-01-02T15:04:05.000000Z"

// formatEvent writes one event in human-readable form.
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format(timeLayout)
	id := shortenID(event.AttemptID)

	var label string
	switch {
	case event.Frame != nil:
		label = event.Direction.String() + " Frame"
	case event.StateChange != nil:
		label = "State"
	case event.Outcome != nil:
		label = "Outcome"
	case event.Error != nil:
		label = "Error"
	default:
		label = "Unknown"
	}

	fmt.Fprintf(w, "%s [attempt:%s] %s@%s %s %s\n", ts, id, event.Username, event.RemoteAddr, event.Layer.String(), label)

	switch {
	case event.Frame != nil:
		formatFrameDetails(w, event.Frame)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Outcome != nil:
		formatOutcomeDetails(w, event.Outcome)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w)
}

func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

// formatFrameDetails prints frame bytes as text when they are valid
// UTF-8, as hex otherwise.
func formatFrameDetails(w io.Writer, frame *log.FrameEvent) {
	fmt.Fprintf(w, "  Size: %d bytes", frame.Size)
	if frame.Redacted {
		fmt.Fprint(w, " (redacted)")
	}
	fmt.Fprintln(w)
	if len(frame.Data) == 0 {
		return
	}
	if utf8.Valid(frame.Data) && !strings.ContainsRune(string(frame.Data), 0) {
		fmt.Fprintf(w, "  Data: %s", string(frame.Data))
	} else {
		fmt.Fprintf(w, "  Data: %s", hex.EncodeToString(frame.Data))
	}
	if frame.Truncated {
		fmt.Fprint(w, " (truncated)")
	}
	fmt.Fprintln(w)
}

func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

func formatOutcomeDetails(w io.Writer, o *log.OutcomeEvent) {
	fmt.Fprintf(w, "  Kind: %s\n", o.Kind)
	if o.Category != "" {
		fmt.Fprintf(w, "  Category: %s\n", o.Category)
	}
	if o.Message != "" {
		fmt.Fprintf(w, "  Message: %s\n", o.Message)
	}
	fmt.Fprintf(w, "  Elapsed: %s\n", formatDuration(o.Elapsed))
	if o.Dropped > 0 {
		fmt.Fprintf(w, "  Dropped: %d\n", o.Dropped)
	}
}

func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", err.Layer.String())
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// ParseLayerFlag parses a layer name (case-insensitive).
func ParseLayerFlag(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "transport":
		return log.LayerTransport, nil
	case "wire":
		return log.LayerWire, nil
	case "session":
		return log.LayerSession, nil
	default:
		return 0, fmt.Errorf("invalid layer: %s (must be transport, wire, or session)", s)
	}
}

// ParseDirectionFlag parses a direction name (case-insensitive).
func ParseDirectionFlag(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
}

// ParseCategoryFlag parses a category name (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "message":
		return log.CategoryMessage, nil
	case "state":
		return log.CategoryState, nil
	case "outcome":
		return log.CategoryOutcome, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be message, state, outcome, or error)", s)
	}
}

// RunView prints every matching event in path.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if filter.matches(event) {
			formatEvent(output, event)
		}
	}
	return nil
}
