package discovery

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/enbility/zeroconf/v3"
)

// BrowserConfig configures browsing.
type BrowserConfig struct {
	// Interface limits browsing to one network interface. Empty means all.
	Interface string

	// Timeout bounds Find when ctx has no deadline (default 3s).
	Timeout time.Duration
}

// Browser looks up login servers.
type Browser struct {
	config BrowserConfig
}

// NewBrowser creates a browser.
func NewBrowser(config BrowserConfig) *Browser {
	if config.Timeout <= 0 {
		config.Timeout = DefaultBrowseTimeout
	}
	return &Browser{config: config}
}

func (b *Browser) options() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption
	if ifaces := interfaces(b.config.Interface); ifaces != nil {
		opts = append(opts, zeroconf.SelectIfaces(ifaces))
	}
	return opts
}

// Browse streams servers until ctx is done. Each instance is reported
// once until it is withdrawn.
func (b *Browser) Browse(ctx context.Context) <-chan *Server {
	out := make(chan *Server)
	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	go func() {
		defer close(out)
		seen := make(map[string]bool)
		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				if seen[entry.Instance] {
					continue
				}
				srv := newServer(entry.Instance, entry.HostName, entry.Port, entry.Text, entry.AddrIPv4, entry.AddrIPv6)
				if srv == nil {
					continue
				}
				seen[entry.Instance] = true
				select {
				case out <- srv:
				case <-ctx.Done():
					return
				}
			case entry, ok := <-removed:
				if ok {
					delete(seen, entry.Instance)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		_ = zeroconf.Browse(ctx, ServiceType, Domain, entries, removed, b.options()...)
	}()

	return out
}

// Find returns the first usable server.
func (b *Browser) Find(ctx context.Context) (*Server, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.config.Timeout)
		defer cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for srv := range b.Browse(ctx) {
		if _, err := srv.Address(); err == nil {
			return srv, nil
		}
	}
	return nil, ErrNotFound
}

// AdvertiserConfig configures advertisement.
type AdvertiserConfig struct {
	// Interface limits advertisement to one network interface.
	Interface string

	// TTL for records. Zero uses the library default.
	TTL time.Duration
}

// Advertiser publishes a login server.
type Advertiser struct {
	config AdvertiserConfig

	mu     sync.Mutex
	server *zeroconf.Server
}

// NewAdvertiser creates an advertiser.
func NewAdvertiser(config AdvertiserConfig) *Advertiser {
	return &Advertiser{config: config}
}

// Advertise registers instance on port. A previous registration is replaced.
func (a *Advertiser) Advertise(instance, name string, port int) error {
	if err := ValidateInstanceName(instance); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}

	var opts []zeroconf.ServerOption
	if a.config.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(a.config.TTL.Seconds())))
	}

	server, err := zeroconf.Register(instance, ServiceType, Domain, port, EncodeTXT(name), interfaces(a.config.Interface), opts...)
	if err != nil {
		return fmt.Errorf("failed to register %s: %w", ServiceType, err)
	}
	a.server = server
	return nil
}

// Stop withdraws the advertisement.
func (a *Advertiser) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
}

// interfaces resolves an interface name. Nil means all interfaces.
func interfaces(name string) []net.Interface {
	if name == "" {
		return nil
	}
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}
