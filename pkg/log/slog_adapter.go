package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes attempt events to an slog.Logger at debug level,
// except outcomes which are logged at info.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter that writes to logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("attempt_id", event.AttemptID),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}
	if event.RemoteAddr != "" {
		attrs = append(attrs, slog.String("remote", event.RemoteAddr))
	}
	if event.Username != "" {
		attrs = append(attrs, slog.String("user", event.Username))
	}

	level := slog.LevelDebug

	switch {
	case event.Frame != nil:
		attrs = append(attrs,
			slog.String("direction", event.Direction.String()),
			slog.Int("frame_size", event.Frame.Size),
			slog.Bool("truncated", event.Frame.Truncated),
			slog.Bool("redacted", event.Frame.Redacted),
		)
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Outcome != nil:
		level = slog.LevelInfo
		attrs = append(attrs,
			slog.String("outcome", event.Outcome.Kind),
			slog.Duration("elapsed", event.Outcome.Elapsed),
		)
		if event.Outcome.Category != "" {
			attrs = append(attrs, slog.String("error_category", event.Outcome.Category))
		}
		if event.Outcome.Message != "" {
			attrs = append(attrs, slog.String("message", event.Outcome.Message))
		}
		if event.Outcome.Dropped > 0 {
			attrs = append(attrs, slog.Int("dropped", event.Outcome.Dropped))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
	}

	a.logger.LogAttrs(context.Background(), level, "login attempt", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)
