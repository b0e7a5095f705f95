package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Filter specifies criteria for filtering log events.
// Empty/nil fields match all events for that criterion.
type Filter struct {
	// AttemptID filters by exact attempt ID, or by prefix when shorter
	// than a full UUID.
	AttemptID string

	// Layer filters by layer.
	Layer *Layer

	// Category filters by event category.
	Category *Category

	// Username filters by login name.
	Username string

	// TimeStart filters events at or after this time.
	TimeStart *time.Time

	// TimeEnd filters events before this time.
	TimeEnd *time.Time
}

// Matches returns true if the event matches all filter criteria.
func (f *Filter) Matches(event Event) bool {
	if f.AttemptID != "" && !hasPrefix(event.AttemptID, f.AttemptID) {
		return false
	}
	if f.Layer != nil && event.Layer != *f.Layer {
		return false
	}
	if f.Category != nil && event.Category != *f.Category {
		return false
	}
	if f.Username != "" && event.Username != f.Username {
		return false
	}
	if f.TimeStart != nil && event.Timestamp.Before(*f.TimeStart) {
		return false
	}
	if f.TimeEnd != nil && !event.Timestamp.Before(*f.TimeEnd) {
		return false
	}
	return true
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// Reader streams events from a trace file, optionally filtered.
type Reader struct {
	f      *os.File
	dec    *cbor.Decoder
	filter Filter
	n      int
}

// NewReader opens path and yields every event.
func NewReader(path string) (*Reader, error) {
	return NewFilteredReader(path, Filter{})
}

// NewFilteredReader opens path and yields only events matching filter.
func NewFilteredReader(path string, filter Filter) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{f: f, dec: NewDecoder(f), filter: filter}, nil
}

// Next returns the next matching event, or io.EOF at the end of the file.
// A damaged record is reported with its position in the file.
func (r *Reader) Next() (Event, error) {
	for {
		var event Event
		err := r.dec.Decode(&event)
		if errors.Is(err, io.EOF) {
			return Event{}, io.EOF
		}
		if err != nil {
			return Event{}, fmt.Errorf("event %d: %w", r.n+1, err)
		}
		r.n++
		if r.filter.Matches(event) {
			return event, nil
		}
	}
}

// Close closes the file.
func (r *Reader) Close() error {
	return r.f.Close()
}
