package discovery

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Service constants.
const (
	// ServiceType is the mDNS service type of login servers.
	ServiceType = "_imauth._tcp"

	// Domain is the mDNS domain.
	Domain = "local"

	// ProtocolVersion is advertised in the ver TXT key.
	ProtocolVersion = "1"

	// DefaultBrowseTimeout bounds Find when the context has no deadline.
	DefaultBrowseTimeout = 3 * time.Second

	// MaxInstanceNameLen is the DNS-SD limit for instance labels.
	MaxInstanceNameLen = 63
)

// TXT keys.
const (
	TXTKeyName    = "name"
	TXTKeyVersion = "ver"
)

// Discovery errors.
var (
	ErrNotFound            = errors.New("no login server found")
	ErrInvalidInstanceName = errors.New("invalid instance name")
	ErrNoAddress           = errors.New("service has no usable address")
)

// Server is a discovered login server.
type Server struct {
	Instance  string
	Host      string
	Port      int
	Addresses []string
	Name      string
	Version   string
}

// Address returns host:port for dialing, preferring the first IP address.
func (s *Server) Address() (string, error) {
	host := s.Host
	if len(s.Addresses) > 0 {
		host = s.Addresses[0]
	}
	host = strings.TrimSuffix(host, ".")
	if host == "" || s.Port <= 0 {
		return "", fmt.Errorf("%w: %s", ErrNoAddress, s.Instance)
	}
	return net.JoinHostPort(host, strconv.Itoa(s.Port)), nil
}

// DisplayName returns the advertised name, or the instance name.
func (s *Server) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Instance
}

// TXTRecordMap holds parsed TXT key/value pairs.
type TXTRecordMap map[string]string

// EncodeTXT builds the TXT strings for a server.
func EncodeTXT(name string) []string {
	txt := []string{TXTKeyVersion + "=" + ProtocolVersion}
	if name != "" {
		txt = append(txt, TXTKeyName+"="+name)
	}
	return txt
}

// ParseTXT parses "key=value" strings. A bare key maps to "".
func ParseTXT(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		k, v, found := strings.Cut(s, "=")
		if k == "" {
			continue
		}
		if !found {
			v = ""
		}
		txt[strings.ToLower(k)] = v
	}
	return txt
}

// ValidateInstanceName checks an instance name for advertisement.
func ValidateInstanceName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidInstanceName)
	}
	if len(name) > MaxInstanceNameLen {
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidInstanceName, MaxInstanceNameLen)
	}
	return nil
}

// newServer assembles a Server from the fields of a service entry.
// Entries for another protocol version are skipped (nil).
func newServer(instance, host string, port int, text []string, ips ...[]net.IP) *Server {
	txt := ParseTXT(text)
	if v, ok := txt[TXTKeyVersion]; ok && v != ProtocolVersion {
		return nil
	}

	var addrs []string
	for _, group := range ips {
		for _, ip := range group {
			addrs = append(addrs, ip.String())
		}
	}

	return &Server{
		Instance:  instance,
		Host:      host,
		Port:      port,
		Addresses: addrs,
		Name:      txt[TXTKeyName],
		Version:   txt[TXTKeyVersion],
	}
}
