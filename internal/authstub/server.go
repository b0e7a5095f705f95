package authstub

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/imdesk/imclient/pkg/transport"
	"github.com/imdesk/imclient/pkg/wire"
)

// Config configures a stub server.
type Config struct {
	// Address to listen on (default "127.0.0.1:0").
	Address string

	// Framing used to read the request (default FramingRaw).
	Framing transport.Framing

	// Behavior applied to each connection (default Silent).
	Behavior Behavior

	// Logger for operational messages (default slog.Default()).
	Logger *slog.Logger
}

// Request is one request observed by the server.
type Request struct {
	Raw    []byte
	Parsed *wire.AuthRequest
}

// Server is a running stub.
type Server struct {
	config   Config
	listener net.Listener
	logger   *slog.Logger

	mu       sync.Mutex
	requests []Request
	conns    map[net.Conn]struct{}

	accepted atomic.Int32
	peerEOF  atomic.Int32

	running atomic.Bool
	wg      sync.WaitGroup
}

// Start listens and begins serving.
func Start(config Config) (*Server, error) {
	if config.Address == "" {
		config.Address = "127.0.0.1:0"
	}
	if config.Behavior == nil {
		config.Behavior = Silent()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	listener, err := net.Listen("tcp", config.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}

	s := &Server{
		config:   config,
		listener: listener,
		logger:   config.Logger,
		conns:    make(map[net.Conn]struct{}),
	}
	s.running.Store(true)

	s.wg.Add(1)
	go s.acceptLoop()

	return s, nil
}

// Addr returns the listen address as host:port.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Port returns the listen port.
func (s *Server) Port() int {
	return s.listener.Addr().(*net.TCPAddr).Port
}

// Requests returns a copy of the requests seen so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Accepted returns the number of accepted connections.
func (s *Server) Accepted() int {
	return int(s.accepted.Load())
}

// PeerEOFs returns how many connections saw a clean EOF from the client
// after the behavior ran, i.e. the client shut down its write side.
func (s *Server) PeerEOFs() int {
	return int(s.peerEOF.Load())
}

// Stop closes the listener and all connections and waits for handlers.
func (s *Server) Stop() error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	err := s.listener.Close()

	s.mu.Lock()
	for c := range s.conns {
		_ = c.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	return err
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	delay := newBackoff(initialAcceptDelay, maxAcceptDelay)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.running.Load() && !errors.Is(err, net.ErrClosed) {
				d := delay.Next()
				s.logger.Warn("accept failed", "error", err, "retry_in", d, "failures", delay.Failures())
				time.Sleep(d)
				continue
			}
			return
		}
		delay.Reset()

		// Stop flips running before it walks conns under mu, so a
		// connection registered here is either closed by Stop or
		// closed now.
		s.mu.Lock()
		if !s.running.Load() {
			s.mu.Unlock()
			_ = conn.Close()
			return
		}
		s.conns[conn] = struct{}{}
		s.mu.Unlock()
		s.accepted.Add(1)

		s.wg.Add(1)
		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
	}()

	raw, err := transport.NewResponseReader(s.config.Framing, conn, transport.DefaultMaxResponseSize).ReadResponse()
	if err != nil {
		s.logger.Debug("read request failed", "remote", conn.RemoteAddr().String(), "error", err)
		_ = conn.Close()
		return
	}

	req, err := wire.DecodeRequest(raw)
	if err != nil {
		s.logger.Debug("bad request", "remote", conn.RemoteAddr().String(), "error", err)
	}

	s.mu.Lock()
	s.requests = append(s.requests, Request{Raw: raw, Parsed: req})
	s.mu.Unlock()

	if closed := s.config.Behavior(conn, req); closed {
		return
	}

	// Drain until the client goes away.
	_, err = io.Copy(io.Discard, conn)
	if err == nil {
		s.peerEOF.Add(1)
	}
	_ = conn.Close()
}

// Serve runs until ctx is done, then stops the server.
func (s *Server) Serve(ctx context.Context) error {
	<-ctx.Done()
	return s.Stop()
}
