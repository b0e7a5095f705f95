package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/imdesk/imclient/pkg/classify"
	"github.com/imdesk/imclient/pkg/dispatch"
	"github.com/imdesk/imclient/pkg/log"
	"github.com/imdesk/imclient/pkg/wire"
)

// State is the position of an attempt in its lifecycle.
type State int32

const (
	// StateIdle is an attempt that has not started dialing.
	StateIdle State = iota

	// StateConnecting indicates the dial is in progress.
	StateConnecting

	// StateAwaitingResponse indicates the request was sent.
	StateAwaitingResponse

	// StateResolved is terminal.
	StateResolved
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateConnecting:
		return "CONNECTING"
	case StateAwaitingResponse:
		return "AWAITING_RESPONSE"
	case StateResolved:
		return "RESOLVED"
	default:
		return "UNKNOWN"
	}
}

// socketEvent is one raw event from the connection.
type socketEvent struct {
	data []byte
	err  error
}

// Attempt is one in-flight handshake. It owns its socket exclusively.
type Attempt struct {
	id      string
	config  ClientConfig
	creds   wire.Credentials
	latch   *dispatch.Dispatcher
	started time.Time

	state  atomic.Int32
	cancel context.CancelFunc

	conn        net.Conn
	releaseOnce sync.Once
	releases    atomic.Int32

	finished chan struct{}
}

func newAttempt(config ClientConfig, creds wire.Credentials, deliver func(dispatch.Outcome)) *Attempt {
	a := &Attempt{
		id:       uuid.NewString(),
		config:   config,
		creds:    creds,
		latch:    dispatch.New(deliver),
		started:  time.Now(),
		finished: make(chan struct{}),
	}
	a.state.Store(int32(StateIdle))
	return a
}

// ID returns the attempt's unique identifier.
func (a *Attempt) ID() string {
	return a.id
}

// State returns the current state.
func (a *Attempt) State() State {
	return State(a.state.Load())
}

// Cancel abandons the attempt. If it is still unresolved it resolves as
// canceled and the socket is released immediately.
func (a *Attempt) Cancel() {
	a.cancel()
}

// Done is closed once the outcome is delivered and the socket released.
func (a *Attempt) Done() <-chan struct{} {
	return a.finished
}

// Wait blocks until the attempt finishes and returns its outcome.
func (a *Attempt) Wait() dispatch.Outcome {
	<-a.finished
	o, _ := a.latch.Outcome()
	return o
}

// Releases reports how many times the socket was released (0 or 1).
func (a *Attempt) Releases() int {
	return int(a.releases.Load())
}

// Dropped reports how many racing events were discarded by the latch.
func (a *Attempt) Dropped() int {
	return a.latch.Dropped()
}

func (a *Attempt) run(ctx context.Context) {
	defer close(a.finished)
	defer a.cancel()

	a.setState(StateConnecting, "dial "+a.config.Address)

	dialCtx, cancelDial := context.WithTimeout(ctx, a.config.DialTimeout)
	conn, err := a.config.Dialer.DialContext(dialCtx, "tcp", a.config.Address)
	cancelDial()
	if err != nil {
		a.logError(log.LayerTransport, err, "dial")
		a.finish(a.failure(ctx, err), nil)
		return
	}
	a.conn = conn

	// The response timeout starts at connect time.
	deadline := time.Now().Add(a.config.Timeout)
	timer := time.NewTimer(a.config.Timeout)
	defer timer.Stop()

	payload, err := wire.EncodeRequest(a.creds)
	if err != nil {
		a.logError(log.LayerWire, err, "encode request")
		a.finish(dispatch.TransportError(classify.ProtocolError), nil)
		return
	}

	// Unblock a stuck write on cancellation; the timeout is covered by
	// the write deadline.
	stopWatch := context.AfterFunc(ctx, func() {
		_ = conn.SetWriteDeadline(time.Unix(1, 0))
	})
	_ = conn.SetWriteDeadline(deadline)
	_, err = conn.Write(a.config.Framing.frame(payload))
	stopWatch()
	if err != nil {
		a.logError(log.LayerTransport, err, "write request")
		a.finish(a.failure(ctx, err), nil)
		return
	}
	_ = conn.SetWriteDeadline(time.Time{})
	a.logFrame(log.DirectionOut, wire.Redacted(payload), len(payload), true)

	a.setState(StateAwaitingResponse, "request sent")

	events := make(chan socketEvent, 1)
	go func() {
		data, err := NewResponseReader(a.config.Framing, conn, a.config.MaxResponseSize).ReadResponse()
		events <- socketEvent{data: data, err: err}
	}()

	var outcome dispatch.Outcome
	consumed := false
	select {
	case ev := <-events:
		consumed = true
		outcome = a.handleEvent(ctx, ev)
	case <-timer.C:
		outcome = dispatch.TransportError(classify.Timeout)
	case <-ctx.Done():
		outcome = dispatch.TransportError(classify.Classify(ctx.Err()))
	}

	if consumed {
		a.finish(outcome, nil)
		return
	}
	a.finish(outcome, events)
}

// handleEvent logs the first socket event and turns it into an outcome.
func (a *Attempt) handleEvent(ctx context.Context, ev socketEvent) dispatch.Outcome {
	if ev.err != nil {
		a.logError(log.LayerTransport, ev.err, "read response")
		if errors.Is(ev.err, ErrResponseTooLarge) {
			return dispatch.TransportError(classify.ProtocolError)
		}
		return a.failure(ctx, ev.err)
	}

	a.logFrame(log.DirectionIn, ev.data, len(ev.data), false)

	o, err := outcomeForReply(ev.data)
	if err != nil {
		a.logError(log.LayerWire, err, "decode response")
	}
	return o
}

// outcomeForReply maps reply bytes to Success, Rejected or ProtocolError.
func outcomeForReply(data []byte) (dispatch.Outcome, error) {
	resp, err := wire.DecodeResponse(data)
	if err != nil {
		return dispatch.TransportError(classify.ProtocolError), err
	}
	if resp.Success {
		return dispatch.Success(), nil
	}
	return dispatch.Rejected(resp.Message), nil
}

// failure classifies err, preferring the context's reason once it is done.
func (a *Attempt) failure(ctx context.Context, err error) dispatch.Outcome {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return dispatch.TransportError(classify.Classify(ctxErr))
	}
	return dispatch.TransportError(classify.Classify(err))
}

// finish enters RESOLVED: release the socket, deliver the outcome once,
// then feed any event still pending from the reader into the latch,
// where it is dropped.
func (a *Attempt) finish(outcome dispatch.Outcome, pending <-chan socketEvent) {
	a.setState(StateResolved, outcome.Kind.String())
	a.release()
	a.latch.Resolve(outcome)

	if pending != nil && a.conn != nil {
		// The reader is unblocked by the close in release.
		ev := <-pending
		late := dispatch.TransportError(classify.Classify(ev.err))
		if ev.err == nil {
			late, _ = outcomeForReply(ev.data)
		}
		a.latch.Resolve(late)
	}

	a.logOutcome(outcome)
}

// release shuts down the write side, then closes the socket.
// Safe to call any number of times; only the first call acts.
func (a *Attempt) release() {
	a.releaseOnce.Do(func() {
		if a.conn == nil {
			return
		}
		if hc, ok := a.conn.(interface{ CloseWrite() error }); ok {
			_ = hc.CloseWrite()
		}
		_ = a.conn.Close()
		a.releases.Add(1)
	})
}

func (a *Attempt) setState(next State, reason string) {
	prev := State(a.state.Swap(int32(next)))
	a.log(log.Event{
		Layer:    log.LayerTransport,
		Category: log.CategoryState,
		StateChange: &log.StateChangeEvent{
			OldState: prev.String(),
			NewState: next.String(),
			Reason:   reason,
		},
	})
}

func (a *Attempt) logFrame(dir log.Direction, data []byte, size int, redacted bool) {
	fe := log.NewFrameEvent(data, redacted)
	fe.Size = size
	a.log(log.Event{
		Direction: dir,
		Layer:     log.LayerTransport,
		Category:  log.CategoryMessage,
		Frame:     fe,
	})
}

func (a *Attempt) logError(layer log.Layer, err error, op string) {
	a.log(log.Event{
		Layer:    layer,
		Category: log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   layer,
			Message: err.Error(),
			Context: op,
		},
	})
}

func (a *Attempt) logOutcome(o dispatch.Outcome) {
	ev := &log.OutcomeEvent{
		Kind:    o.Kind.String(),
		Elapsed: time.Since(a.started),
		Dropped: a.latch.Dropped(),
	}
	switch o.Kind {
	case dispatch.KindRejected:
		ev.Category = o.Category.String()
		ev.Message = o.Message
	case dispatch.KindTransportError:
		ev.Category = o.Category.String()
		ev.Message = o.Detail
	}
	a.log(log.Event{
		Layer:    log.LayerTransport,
		Category: log.CategoryOutcome,
		Outcome:  ev,
	})
}

func (a *Attempt) log(ev log.Event) {
	ev.Timestamp = time.Now()
	ev.AttemptID = a.id
	ev.RemoteAddr = a.config.Address
	ev.Username = a.creds.Username
	a.config.Logger.Log(ev)
}

// String describes the attempt for operational logs.
func (a *Attempt) String() string {
	return fmt.Sprintf("attempt %s (%s@%s, %s)", a.id[:8], a.creds.Username, a.config.Address, a.State())
}
