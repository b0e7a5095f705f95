package classify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
	"testing"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Category
	}{
		{"nil", nil, Unknown},
		{"refused", &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}, ConnectionRefused},
		{"reset", &net.OpError{Op: "read", Net: "tcp", Err: os.NewSyscallError("read", syscall.ECONNRESET)}, Reset},
		{"aborted", syscall.ECONNABORTED, Reset},
		{"broken pipe", fmt.Errorf("write request: %w", syscall.EPIPE), Reset},
		{"eof", io.EOF, Reset},
		{"unexpected eof", fmt.Errorf("read: %w", io.ErrUnexpectedEOF), Reset},
		{"deadline", &net.OpError{Op: "read", Net: "tcp", Err: os.ErrDeadlineExceeded}, Timeout},
		{"context deadline", fmt.Errorf("dial: %w", context.DeadlineExceeded), Timeout},
		{"net timeout", timeoutError{}, Timeout},
		{"canceled", fmt.Errorf("dial: %w", context.Canceled), Canceled},
		{"dns", &net.DNSError{Err: "no such host", Name: "nowhere.invalid", IsNotFound: true}, Unknown},
		{"unreachable", syscall.EHOSTUNREACH, Unknown},
		{"plain", errors.New("something odd"), Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %s, want %s", tt.err, got, tt.want)
			}
		})
	}
}

func TestCategoryStrings(t *testing.T) {
	all := []Category{Unknown, ConnectionRefused, Timeout, Reset, ProtocolError, ApplicationRejection, Canceled}
	seen := make(map[string]bool)
	for _, c := range all {
		name := c.String()
		if seen[name] {
			t.Errorf("duplicate name %q", name)
		}
		seen[name] = true
		if c.Detail() == "" {
			t.Errorf("%s has no detail", name)
		}
	}

	if Category(200).String() != "UNKNOWN" {
		t.Errorf("out-of-range category should print UNKNOWN")
	}
	if ProtocolError.Detail() != "invalid server response" {
		t.Errorf("ProtocolError detail = %q", ProtocolError.Detail())
	}
}

func TestIsTransport(t *testing.T) {
	if ApplicationRejection.IsTransport() {
		t.Error("ApplicationRejection must not be a transport category")
	}
	for _, c := range []Category{Unknown, ConnectionRefused, Timeout, Reset, ProtocolError, Canceled} {
		if !c.IsTransport() {
			t.Errorf("%s should be a transport category", c)
		}
	}
}
