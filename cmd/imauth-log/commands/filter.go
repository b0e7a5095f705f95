package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/imdesk/imclient/pkg/log"
)

// FilterOptions specifies criteria for the filter command.
type FilterOptions struct {
	Output    string
	AttemptID string
	Username  string
	TimeStart string
	TimeEnd   string
	Layer     string
	Category  string

	// Outcome keeps whole attempts whose outcome kind (SUCCESS, REJECTED,
	// TRANSPORT_ERROR) or failure category (TIMEOUT, RESET, ...) matches.
	Outcome string
}

// RunFilter copies matching events into a new log file and returns how
// many were written.
func RunFilter(path string, opts FilterOptions) (int, error) {
	filter := log.Filter{
		AttemptID: opts.AttemptID,
		Username:  opts.Username,
	}

	if opts.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, opts.TimeStart)
		if err != nil {
			return 0, fmt.Errorf("invalid time-start format: %w", err)
		}
		filter.TimeStart = &t
	}
	if opts.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, opts.TimeEnd)
		if err != nil {
			return 0, fmt.Errorf("invalid time-end format: %w", err)
		}
		filter.TimeEnd = &t
	}
	if opts.Layer != "" {
		l, err := ParseLayerFlag(opts.Layer)
		if err != nil {
			return 0, err
		}
		filter.Layer = &l
	}
	if opts.Category != "" {
		c, err := ParseCategoryFlag(opts.Category)
		if err != nil {
			return 0, err
		}
		filter.Category = &c
	}

	var attempts map[string]bool
	if opts.Outcome != "" {
		var err error
		if attempts, err = attemptsWithOutcome(path, opts.Outcome); err != nil {
			return 0, err
		}
	}

	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	logger, err := log.NewFileLogger(opts.Output)
	if err != nil {
		return 0, fmt.Errorf("failed to create output logger: %w", err)
	}
	defer logger.Close()

	count := 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return count, fmt.Errorf("failed to read event: %w", err)
		}
		if attempts != nil && !attempts[event.AttemptID] {
			continue
		}
		logger.Log(event)
		count++
	}
}

// attemptsWithOutcome scans path for outcome events and returns the IDs
// of attempts whose kind or category equals want.
func attemptsWithOutcome(path, want string) (map[string]bool, error) {
	reader, err := log.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	want = strings.ToUpper(strings.ReplaceAll(want, "-", "_"))
	ids := make(map[string]bool)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			return ids, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}
		o := event.Outcome
		if o != nil && (o.Kind == want || o.Category == want) {
			ids[event.AttemptID] = true
		}
	}
}
