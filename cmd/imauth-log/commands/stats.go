package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/imdesk/imclient/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents      int
	EventsByLayer    map[log.Layer]int
	EventsByCategory map[log.Category]int
	OutcomesByKind   map[string]int
	FailuresByCat    map[string]int
	Attempts         map[string]*AttemptStats
	Errors           int
	Dropped          int
	TimeRange        struct {
		Start time.Time
		End   time.Time
	}
}

// AttemptStats holds statistics for one attempt.
type AttemptStats struct {
	FirstSeen  time.Time
	Events     int
	Username   string
	RemoteAddr string
	Outcome    string
	Elapsed    time.Duration
}

// CollectStats reads path and aggregates its events.
func CollectStats(path string) (*Stats, error) {
	reader, err := log.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByLayer:    make(map[log.Layer]int),
		EventsByCategory: make(map[log.Category]int),
		OutcomesByKind:   make(map[string]int),
		FailuresByCat:    make(map[string]int),
		Attempts:         make(map[string]*AttemptStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByLayer[event.Layer]++
		stats.EventsByCategory[event.Category]++

		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		a, ok := stats.Attempts[event.AttemptID]
		if !ok {
			a = &AttemptStats{
				FirstSeen:  event.Timestamp,
				Username:   event.Username,
				RemoteAddr: event.RemoteAddr,
			}
			stats.Attempts[event.AttemptID] = a
		}
		a.Events++

		if o := event.Outcome; o != nil {
			stats.OutcomesByKind[o.Kind]++
			if o.Category != "" {
				stats.FailuresByCat[o.Category]++
			}
			stats.Dropped += o.Dropped
			a.Outcome = o.Kind
			a.Elapsed = o.Elapsed
		}
		if event.Error != nil {
			stats.Errors++
		}
	}
	return stats, nil
}

// RunStats prints statistics for path.
func RunStats(path string, w io.Writer) error {
	stats, err := CollectStats(path)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Login Attempt Log Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryMessage, log.CategoryState, log.CategoryOutcome, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Outcomes:")
	for _, kind := range []string{"SUCCESS", "REJECTED", "TRANSPORT_ERROR"} {
		if count := stats.OutcomesByKind[kind]; count > 0 {
			fmt.Fprintf(w, "  %-16s %d\n", kind+":", count)
		}
	}
	if len(stats.FailuresByCat) > 0 {
		cats := make([]string, 0, len(stats.FailuresByCat))
		for c := range stats.FailuresByCat {
			cats = append(cats, c)
		}
		sort.Strings(cats)
		fmt.Fprintln(w, "Failures by Category:")
		for _, c := range cats {
			fmt.Fprintf(w, "  %-22s %d\n", c+":", stats.FailuresByCat[c])
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Attempts: %d\n", len(stats.Attempts))
	if len(stats.Attempts) > 0 {
		type attemptInfo struct {
			id    string
			stats *AttemptStats
		}
		attempts := make([]attemptInfo, 0, len(stats.Attempts))
		for id, as := range stats.Attempts {
			attempts = append(attempts, attemptInfo{id, as})
		}
		sort.Slice(attempts, func(i, j int) bool {
			return attempts[i].stats.FirstSeen.Before(attempts[j].stats.FirstSeen)
		})

		fmt.Fprintln(w)
		for _, a := range attempts {
			outcome := a.stats.Outcome
			if outcome == "" {
				outcome = "UNRESOLVED"
			}
			fmt.Fprintf(w, "  [%s] %s@%s %s in %s (%d events)\n",
				shortenID(a.id), a.stats.Username, a.stats.RemoteAddr, outcome,
				formatDuration(a.stats.Elapsed), a.stats.Events)
		}
	}

	if stats.Dropped > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Dropped racing events: %d\n", stats.Dropped)
	}
	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
