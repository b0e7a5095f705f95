package log

import "time"

// Event is one entry in an attempt trace.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// AttemptID uniquely identifies the login attempt (UUID).
	AttemptID string `cbor:"2,keyasint"`

	// Direction indicates data flow for frame events.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event.
	Category Category `cbor:"5,keyasint"`

	// RemoteAddr is the server address (host:port).
	RemoteAddr string `cbor:"6,keyasint,omitempty"`

	// Username is the login name of the attempt. Never the password.
	Username string `cbor:"7,keyasint,omitempty"`

	// Type-specific payload (one of these is set).
	Frame       *FrameEvent       `cbor:"10,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"11,keyasint,omitempty"`
	Outcome     *OutcomeEvent     `cbor:"12,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"13,keyasint,omitempty"`
}

// Direction indicates the direction of data flow.
type Direction uint8

const (
	// DirectionIn indicates data received from the server.
	DirectionIn Direction = 0
	// DirectionOut indicates data sent to the server.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates where the event was captured.
type Layer uint8

const (
	// LayerTransport is the socket layer (raw bytes, dial, close).
	LayerTransport Layer = 0
	// LayerWire is the handshake codec layer.
	LayerWire Layer = 1
	// LayerSession is the login session layer.
	LayerSession Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerWire:
		return "WIRE"
	case LayerSession:
		return "SESSION"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage indicates request or reply bytes.
	CategoryMessage Category = 0
	// CategoryState indicates an attempt state change.
	CategoryState Category = 1
	// CategoryOutcome indicates the terminal outcome.
	CategoryOutcome Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryState:
		return "STATE"
	case CategoryOutcome:
		return "OUTCOME"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures bytes written to or read from the socket.
type FrameEvent struct {
	// Size is the payload size in bytes as sent or received.
	Size int `cbor:"1,keyasint"`

	// Data is the payload (possibly redacted or truncated).
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates Data was cut to MaxLogFrameDataSize.
	Truncated bool `cbor:"3,keyasint,omitempty"`

	// Redacted indicates secrets were removed from Data.
	Redacted bool `cbor:"4,keyasint,omitempty"`
}

// StateChangeEvent captures an attempt state transition.
type StateChangeEvent struct {
	// OldState is the previous state (may be empty).
	OldState string `cbor:"1,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"2,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"3,keyasint,omitempty"`
}

// OutcomeEvent captures the terminal result of an attempt.
type OutcomeEvent struct {
	// Kind is SUCCESS, REJECTED or TRANSPORT_ERROR.
	Kind string `cbor:"1,keyasint"`

	// Category is the failure category name (empty on success).
	Category string `cbor:"2,keyasint,omitempty"`

	// Message is the server or detail message.
	Message string `cbor:"3,keyasint,omitempty"`

	// Elapsed is the time from attempt start to resolution.
	Elapsed time.Duration `cbor:"4,keyasint"`

	// Dropped counts racing events discarded after resolution.
	Dropped int `cbor:"5,keyasint,omitempty"`
}

// ErrorEventData captures an error at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error text.
	Message string `cbor:"2,keyasint"`

	// Context describes the operation that failed.
	Context string `cbor:"3,keyasint,omitempty"`
}

// MaxLogFrameDataSize caps the frame bytes stored per event (4 KB).
const MaxLogFrameDataSize = 4096

// NewFrameEvent builds a frame payload, truncating large data.
func NewFrameEvent(data []byte, redacted bool) *FrameEvent {
	fe := &FrameEvent{Size: len(data), Data: data, Redacted: redacted}
	if len(data) > MaxLogFrameDataSize {
		fe.Data = data[:MaxLogFrameDataSize]
		fe.Truncated = true
	}
	return fe
}
