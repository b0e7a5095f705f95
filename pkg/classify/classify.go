package classify

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"syscall"
)

// Category is a stable, user-facing failure class.
type Category uint8

const (
	// Unknown is any transport failure that matches no other category.
	Unknown Category = iota

	// ConnectionRefused indicates the server actively refused the connection.
	ConnectionRefused

	// Timeout indicates no connection or no reply before the deadline.
	Timeout

	// Reset indicates the peer reset or closed the connection early.
	Reset

	// ProtocolError indicates a malformed or unparseable server reply.
	ProtocolError

	// ApplicationRejection indicates a well-formed reply with success=false.
	ApplicationRejection

	// Canceled indicates the caller abandoned the attempt.
	Canceled
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case ConnectionRefused:
		return "CONNECTION_REFUSED"
	case Timeout:
		return "TIMEOUT"
	case Reset:
		return "RESET"
	case ProtocolError:
		return "PROTOCOL_ERROR"
	case ApplicationRejection:
		return "APPLICATION_REJECTION"
	case Canceled:
		return "CANCELED"
	default:
		return "UNKNOWN"
	}
}

// Detail returns a human-readable description for presentation.
func (c Category) Detail() string {
	switch c {
	case ConnectionRefused:
		return "connection refused by server"
	case Timeout:
		return "server did not respond in time"
	case Reset:
		return "connection reset by server"
	case ProtocolError:
		return "invalid server response"
	case ApplicationRejection:
		return "login rejected"
	case Canceled:
		return "login attempt canceled"
	default:
		return "network error"
	}
}

// IsTransport reports whether the category belongs to the connection
// problem family rather than an application-level rejection.
func (c Category) IsTransport() bool {
	return c != ApplicationRejection
}

// Classify maps a transport error to its category.
// A nil error classifies as Unknown.
func Classify(err error) Category {
	if err == nil {
		return Unknown
	}

	switch {
	case errors.Is(err, context.Canceled):
		return Canceled
	case errors.Is(err, syscall.ECONNREFUSED):
		return ConnectionRefused
	case errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNABORTED),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF):
		return Reset
	case errors.Is(err, os.ErrDeadlineExceeded),
		errors.Is(err, context.DeadlineExceeded):
		return Timeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Timeout
	}

	return Unknown
}
