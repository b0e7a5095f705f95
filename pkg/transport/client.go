package transport

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/imdesk/imclient/pkg/dispatch"
	"github.com/imdesk/imclient/pkg/log"
	"github.com/imdesk/imclient/pkg/wire"
)

// Defaults.
const (
	// DefaultPort is the auth server port deployed servers listen on.
	DefaultPort = 10001

	// DefaultTimeout is the response timeout, armed at connect time.
	DefaultTimeout = 5 * time.Second
)

// Configuration errors.
var (
	ErrNoAddress = errors.New("server address is required")
)

// Dialer opens network connections. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// ClientConfig configures a login client.
type ClientConfig struct {
	// Address is the server's host:port.
	Address string

	// Timeout bounds the wait for a reply after connect (default: 5s).
	Timeout time.Duration

	// DialTimeout bounds connection setup (default: Timeout).
	DialTimeout time.Duration

	// Framing selects reply framing (default: FramingRaw).
	Framing Framing

	// MaxResponseSize is the largest reply accepted (default: 64KB).
	MaxResponseSize int

	// Logger receives the attempt trace. Nil disables it.
	Logger log.Logger

	// Dialer overrides the default net.Dialer.
	Dialer Dialer
}

// Client runs login handshakes against one server.
// It holds no per-attempt state and is safe for concurrent use.
type Client struct {
	config ClientConfig
}

// NewClient creates a client, filling in defaults.
func NewClient(config ClientConfig) (*Client, error) {
	if config.Address == "" {
		return nil, ErrNoAddress
	}
	if _, _, err := net.SplitHostPort(config.Address); err != nil {
		return nil, err
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.DialTimeout <= 0 {
		config.DialTimeout = config.Timeout
	}
	if config.MaxResponseSize <= 0 {
		config.MaxResponseSize = DefaultMaxResponseSize
	}
	if config.Logger == nil {
		config.Logger = log.NoopLogger{}
	}
	if config.Dialer == nil {
		config.Dialer = &net.Dialer{}
	}
	return &Client{config: config}, nil
}

// Address returns the configured server address.
func (c *Client) Address() string {
	return c.config.Address
}

// Start begins an attempt and returns immediately. deliver, if non-nil,
// is called exactly once with the outcome, from the attempt's goroutine.
// Canceling ctx resolves the attempt as canceled.
func (c *Client) Start(ctx context.Context, creds wire.Credentials, deliver func(dispatch.Outcome)) *Attempt {
	a := newAttempt(c.config, creds, deliver)
	ctx, a.cancel = context.WithCancel(ctx)
	go a.run(ctx)
	return a
}

// Authenticate runs an attempt to completion and returns its outcome.
func (c *Client) Authenticate(ctx context.Context, creds wire.Credentials) dispatch.Outcome {
	return c.Start(ctx, creds, nil).Wait()
}
