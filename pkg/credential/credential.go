// Package credential holds a password in a memguard enclave between the
// prompt and the login attempt.
package credential

import (
	"errors"
	"fmt"
	"sync"

	"github.com/awnumar/memguard"

	"github.com/imdesk/imclient/pkg/wire"
)

// ErrDestroyed is returned after Destroy.
var ErrDestroyed = errors.New("credentials destroyed")

// Sealed is a username with an encrypted password.
type Sealed struct {
	username string

	mu        sync.Mutex
	enclave   *memguard.Enclave // nil for an empty password
	destroyed bool
}

// Seal encrypts password into an enclave. The password slice is wiped.
func Seal(username string, password []byte) *Sealed {
	return &Sealed{
		username: username,
		enclave:  memguard.NewEnclave(password),
	}
}

// Username returns the plain username.
func (s *Sealed) Username() string {
	return s.username
}

// Open decrypts the password for one attempt. The returned password is
// an ordinary Go string; callers should drop it once the request is sent.
func (s *Sealed) Open() (wire.Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed {
		return wire.Credentials{}, ErrDestroyed
	}
	creds := wire.Credentials{Username: s.username}
	if s.enclave == nil {
		return creds, nil
	}

	buf, err := s.enclave.Open()
	if err != nil {
		return wire.Credentials{}, fmt.Errorf("open credential enclave: %w", err)
	}
	defer buf.Destroy()

	creds.Password = string(buf.Bytes())
	return creds, nil
}

// Destroy drops the enclave. Subsequent Open calls fail.
func (s *Sealed) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enclave = nil
	s.destroyed = true
}
