// Package transport runs the client side of the login handshake.
//
// A Client opens one TCP connection per attempt, writes the auth request
// as soon as the connection is up and waits for the first of:
//
//   - reply data
//   - a read error
//   - the response timeout (armed at connect time, default 5s)
//   - cancellation by the caller
//
// The first event decides the attempt's Outcome; anything that arrives
// later is fed to the same one-shot latch and dropped.
//
// # Attempt States
//
//	IDLE ──► CONNECTING ──► AWAITING_RESPONSE ──► RESOLVED
//	              │                                  ▲
//	              └──────── dial failure ────────────┘
//
// RESOLVED is terminal. The socket is released exactly once on entry:
// a CloseWrite is attempted first and the connection is then closed
// unconditionally.
//
// # Framing
//
// FramingRaw (default) assumes the whole reply arrives in one read, as
// deployed servers expect. FramingLine terminates the request with '\n'
// and reads the reply up to the next '\n'.
package transport
