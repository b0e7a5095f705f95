package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/imdesk/imclient/pkg/dispatch"
	"github.com/imdesk/imclient/pkg/log"
	"github.com/imdesk/imclient/pkg/transport"
	"github.com/imdesk/imclient/pkg/wire"
)

// Session errors.
var (
	// ErrAttemptInFlight is returned by Submit while an attempt is unresolved.
	ErrAttemptInFlight = errors.New("login attempt already in progress")

	// ErrSessionComplete is returned by Submit after a successful login.
	ErrSessionComplete = errors.New("login session already complete")

	// ErrNoAttempt is returned by Wait when nothing was submitted.
	ErrNoAttempt = errors.New("no login attempt submitted")
)

// Notifier receives the caller-visible result of each attempt.
type Notifier interface {
	// ConnectionError reports a transport or protocol failure.
	ConnectionError(message string)

	// LoginFailed reports that the server rejected the credentials.
	LoginFailed(message string)

	// Proceed reports a successful login.
	Proceed()
}

// Starter begins login attempts. *transport.Client satisfies it.
type Starter interface {
	Start(ctx context.Context, creds wire.Credentials, deliver func(dispatch.Outcome)) *transport.Attempt
}

// LoginSession serializes attempts for one login window.
type LoginSession struct {
	client   Starter
	notifier Notifier
	logger   *slog.Logger
	trace    log.Logger

	mu       sync.Mutex
	current  *transport.Attempt
	user     string
	complete bool
	attempts int
}

// Option configures a LoginSession.
type Option func(*LoginSession)

// WithLogger sets the operational logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(s *LoginSession) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTrace records session-layer events (submissions and notifications)
// in the attempt trace. Nil disables it.
func WithTrace(l log.Logger) Option {
	return func(s *LoginSession) {
		if l != nil {
			s.trace = l
		}
	}
}

// New creates a session that reports to notifier.
func New(client Starter, notifier Notifier, opts ...Option) *LoginSession {
	s := &LoginSession{
		client:   client,
		notifier: notifier,
		logger:   slog.Default(),
		trace:    log.NoopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit starts an attempt with creds and returns without waiting.
// The previous attempt must have finished: an attempt counts as in
// flight until its Notifier call has returned.
func (s *LoginSession) Submit(ctx context.Context, creds wire.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.complete {
		return ErrSessionComplete
	}
	select {
	case <-s.doneChan():
	default:
		return ErrAttemptInFlight
	}

	s.attempts++
	s.user = creds.Username
	s.current = s.client.Start(ctx, creds, s.deliver)
	s.logger.Debug("login attempt started", "attempt", s.current.ID(), "user", creds.Username, "n", s.attempts)
	s.logEvent(s.current.ID(), creds.Username, "SUBMITTED", "")
	return nil
}

// doneChan returns the current attempt's Done channel, or a closed
// channel if there is none. Caller holds mu.
func (s *LoginSession) doneChan() <-chan struct{} {
	if s.current == nil {
		c := make(chan struct{})
		close(c)
		return c
	}
	return s.current.Done()
}

// deliver maps an outcome to exactly one Notifier call.
// Attempts always deliver from their own goroutine, so mu is free here
// once Submit has returned.
func (s *LoginSession) deliver(o dispatch.Outcome) {
	s.mu.Lock()
	var id string
	if s.current != nil {
		id = s.current.ID()
	}
	user := s.user
	if o.Kind == dispatch.KindSuccess {
		s.complete = true
	}
	s.mu.Unlock()

	switch {
	case o.Kind == dispatch.KindSuccess:
		s.logger.Info("login succeeded")
		s.logEvent(id, user, "PROCEED", "")
		s.notifier.Proceed()
	case o.Category.IsTransport():
		s.logger.Warn("login connection error", "category", o.Category.String(), "detail", o.Detail)
		s.logEvent(id, user, "CONNECTION_ERROR", o.Detail)
		s.notifier.ConnectionError(o.Detail)
	default:
		s.logger.Info("login rejected", "message", o.Message)
		s.logEvent(id, user, "LOGIN_FAILED", o.Message)
		s.notifier.LoginFailed(o.Message)
	}
}

func (s *LoginSession) logEvent(id, user, state, reason string) {
	s.trace.Log(log.Event{
		Timestamp:   time.Now(),
		AttemptID:   id,
		Layer:       log.LayerSession,
		Category:    log.CategoryState,
		Username:    user,
		StateChange: &log.StateChangeEvent{NewState: state, Reason: reason},
	})
}

// Wait blocks until the current attempt finishes or ctx is done.
func (s *LoginSession) Wait(ctx context.Context) (dispatch.Outcome, error) {
	s.mu.Lock()
	a := s.current
	s.mu.Unlock()

	if a == nil {
		return dispatch.Outcome{}, ErrNoAttempt
	}
	select {
	case <-a.Done():
		return a.Wait(), nil
	case <-ctx.Done():
		return dispatch.Outcome{}, ctx.Err()
	}
}

// Cancel abandons the current attempt, if any.
func (s *LoginSession) Cancel() {
	s.mu.Lock()
	a := s.current
	s.mu.Unlock()

	if a != nil {
		a.Cancel()
	}
}

// Complete reports whether a login has succeeded.
func (s *LoginSession) Complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.complete
}

// Attempts returns the number of attempts submitted.
func (s *LoginSession) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}
