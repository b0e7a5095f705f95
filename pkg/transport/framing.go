package transport

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Framing constants.
const (
	// DefaultMaxResponseSize is the largest reply accepted (64 KB).
	DefaultMaxResponseSize = 65536
)

// Framing errors.
var (
	// ErrResponseTooLarge indicates a line-framed reply exceeded the limit.
	ErrResponseTooLarge = errors.New("response too large")

	// ErrUnknownFraming indicates an unsupported framing name.
	ErrUnknownFraming = errors.New("unknown framing")
)

// Framing selects how request and reply boundaries are found.
type Framing uint8

const (
	// FramingRaw sends the bare request and takes a single read as the
	// whole reply.
	FramingRaw Framing = iota

	// FramingLine terminates messages with '\n'.
	FramingLine
)

// String returns the framing name.
func (f Framing) String() string {
	switch f {
	case FramingRaw:
		return "raw"
	case FramingLine:
		return "line"
	default:
		return "unknown"
	}
}

// ParseFraming parses a framing name ("raw" or "line").
// The empty string selects FramingRaw.
func ParseFraming(s string) (Framing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "raw":
		return FramingRaw, nil
	case "line":
		return FramingLine, nil
	default:
		return 0, fmt.Errorf("%w: %q (use raw or line)", ErrUnknownFraming, s)
	}
}

// frame prepares an encoded request for the wire.
func (f Framing) frame(payload []byte) []byte {
	if f != FramingLine {
		return payload
	}
	out := make([]byte, 0, len(payload)+1)
	out = append(out, payload...)
	return append(out, '\n')
}

// ResponseReader reads exactly one reply from a connection.
type ResponseReader interface {
	ReadResponse() ([]byte, error)
}

// NewResponseReader returns the reader for framing f.
func NewResponseReader(f Framing, r io.Reader, maxSize int) ResponseReader {
	if maxSize <= 0 {
		maxSize = DefaultMaxResponseSize
	}
	if f == FramingLine {
		return &lineReader{r: bufio.NewReaderSize(r, 4096), maxSize: maxSize}
	}
	return &chunkReader{r: r, maxSize: maxSize}
}

// chunkReader treats one Read as the complete reply.
type chunkReader struct {
	r       io.Reader
	maxSize int
}

// ReadResponse performs a single read. Data is returned even when the
// read also reported an error; a zero-byte read returns the error.
func (c *chunkReader) ReadResponse() ([]byte, error) {
	buf := make([]byte, c.maxSize)
	for {
		n, err := c.r.Read(buf)
		if n > 0 {
			return buf[:n], nil
		}
		if err != nil {
			return nil, err
		}
		// io.Reader permits (0, nil); read again.
	}
}

// lineReader reads up to and including the next '\n'.
type lineReader struct {
	r       *bufio.Reader
	maxSize int
}

// ReadResponse returns the line without its terminator. A final
// unterminated line is returned if the peer closes after writing it.
func (l *lineReader) ReadResponse() ([]byte, error) {
	var buf bytes.Buffer
	for {
		chunk, err := l.r.ReadSlice('\n')
		buf.Write(chunk)
		if buf.Len() > l.maxSize {
			return nil, fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, l.maxSize)
		}
		switch {
		case err == nil:
			return bytes.TrimRight(buf.Bytes(), "\r\n"), nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF) && buf.Len() > 0:
			return buf.Bytes(), nil
		default:
			return nil, err
		}
	}
}
