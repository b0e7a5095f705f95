package transport

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFraming(t *testing.T) {
	tests := []struct {
		in      string
		want    Framing
		wantErr bool
	}{
		{"", FramingRaw, false},
		{"raw", FramingRaw, false},
		{" LINE ", FramingLine, false},
		{"length", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFraming(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownFraming)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFramingFrame(t *testing.T) {
	payload := []byte(`{"a":1}`)
	assert.Equal(t, payload, FramingRaw.frame(payload))
	assert.Equal(t, []byte("{\"a\":1}\n"), FramingLine.frame(payload))
	assert.Equal(t, `{"a":1}`, string(payload), "frame must not modify its input")
}

// stutterReader returns (0, nil) a few times before delivering data.
type stutterReader struct {
	empty int
	data  string
}

func (s *stutterReader) Read(p []byte) (int, error) {
	if s.empty > 0 {
		s.empty--
		return 0, nil
	}
	if s.data == "" {
		return 0, io.EOF
	}
	n := copy(p, s.data)
	s.data = s.data[n:]
	return n, nil
}

func TestChunkReader(t *testing.T) {
	t.Run("single read", func(t *testing.T) {
		r := NewResponseReader(FramingRaw, &stutterReader{empty: 3, data: `{"success":true}`}, 0)
		data, err := r.ReadResponse()
		require.NoError(t, err)
		assert.Equal(t, `{"success":true}`, string(data))
	})

	t.Run("eof", func(t *testing.T) {
		r := NewResponseReader(FramingRaw, strings.NewReader(""), 0)
		_, err := r.ReadResponse()
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("truncates at max size", func(t *testing.T) {
		r := NewResponseReader(FramingRaw, strings.NewReader("0123456789"), 4)
		data, err := r.ReadResponse()
		require.NoError(t, err)
		assert.Equal(t, "0123", string(data))
	})
}

func TestLineReader(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		max     int
		want    string
		wantErr error
	}{
		{"lf", "{\"success\":true}\nrest", 0, `{"success":true}`, nil},
		{"crlf", "abc\r\n", 0, "abc", nil},
		{"unterminated at eof", "abc", 0, "abc", nil},
		{"empty", "", 0, "", io.EOF},
		{"too large", strings.Repeat("x", 32) + "\n", 16, "", ErrResponseTooLarge},
		{"spans buffer", strings.Repeat("y", 5000) + "\n", 8192, strings.Repeat("y", 5000), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResponseReader(FramingLine, strings.NewReader(tt.input), tt.max)
			data, err := r.ReadResponse()
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func TestNewClientDefaults(t *testing.T) {
	c, err := NewClient(ClientConfig{Address: "127.0.0.1:10001"})
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, c.config.Timeout)
	assert.Equal(t, DefaultTimeout, c.config.DialTimeout)
	assert.Equal(t, DefaultMaxResponseSize, c.config.MaxResponseSize)
	assert.Equal(t, FramingRaw, c.config.Framing)
	assert.NotNil(t, c.config.Logger)
	assert.NotNil(t, c.config.Dialer)
	assert.Equal(t, "127.0.0.1:10001", c.Address())
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(ClientConfig{})
	assert.ErrorIs(t, err, ErrNoAddress)

	_, err = NewClient(ClientConfig{Address: "localhost"})
	assert.Error(t, err)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "IDLE", StateIdle.String())
	assert.Equal(t, "CONNECTING", StateConnecting.String())
	assert.Equal(t, "AWAITING_RESPONSE", StateAwaitingResponse.String())
	assert.Equal(t, "RESOLVED", StateResolved.String())
	assert.Equal(t, "UNKNOWN", State(42).String())
}
