package authstub

import (
	"net"
	"time"

	"github.com/imdesk/imclient/pkg/wire"
)

// Behavior acts on a connection after the request was read.
// It returns true if it closed the connection itself.
type Behavior func(conn net.Conn, req *wire.AuthRequest) (closed bool)

// DefaultRejectMessage is sent by Accept for unknown users or bad passwords.
const DefaultRejectMessage = "invalid username or password"

// Accept checks the request against users (name → password) and replies
// with success or a rejection.
func Accept(users map[string]string) Behavior {
	return func(conn net.Conn, req *wire.AuthRequest) bool {
		resp := wire.AuthResponse{Success: false, Message: DefaultRejectMessage}
		if req != nil {
			if pw, ok := users[req.Username]; ok && pw == req.Password {
				resp = wire.AuthResponse{Success: true}
			}
		}
		data, err := wire.EncodeResponse(resp)
		if err != nil {
			return false
		}
		_, _ = conn.Write(data)
		return false
	}
}

// Reply writes payload verbatim.
func Reply(payload []byte) Behavior {
	return func(conn net.Conn, _ *wire.AuthRequest) bool {
		_, _ = conn.Write(payload)
		return false
	}
}

// ReplySplit writes the parts with gap between them.
func ReplySplit(gap time.Duration, parts ...[]byte) Behavior {
	return func(conn net.Conn, _ *wire.AuthRequest) bool {
		for i, p := range parts {
			if i > 0 {
				time.Sleep(gap)
			}
			if _, err := conn.Write(p); err != nil {
				return false
			}
		}
		return false
	}
}

// Delay waits d before running next.
func Delay(d time.Duration, next Behavior) Behavior {
	return func(conn net.Conn, req *wire.AuthRequest) bool {
		time.Sleep(d)
		return next(conn, req)
	}
}

// Silent never replies. The connection stays open until the client
// closes it or the server stops.
func Silent() Behavior {
	return func(net.Conn, *wire.AuthRequest) bool {
		return false
	}
}

// Reset aborts the connection with a TCP RST and no reply.
func Reset() Behavior {
	return func(conn net.Conn, _ *wire.AuthRequest) bool {
		abort(conn)
		return true
	}
}

// ReplyThenReset writes payload, waits gap and then resets the connection.
func ReplyThenReset(payload []byte, gap time.Duration) Behavior {
	return func(conn net.Conn, _ *wire.AuthRequest) bool {
		_, _ = conn.Write(payload)
		time.Sleep(gap)
		abort(conn)
		return true
	}
}

// Hangup closes the connection cleanly without replying.
func Hangup() Behavior {
	return func(conn net.Conn, _ *wire.AuthRequest) bool {
		_ = conn.Close()
		return true
	}
}

// abort closes with SO_LINGER 0 so the peer sees ECONNRESET.
func abort(conn net.Conn) {
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetLinger(0)
	}
	_ = conn.Close()
}
