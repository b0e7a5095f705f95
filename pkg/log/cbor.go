package log

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// codec holds the CBOR modes for trace files. Encoding is canonical so
// the same event always yields the same bytes; timestamps are RFC 3339
// strings with nanoseconds.
var codec = mustCodec()

type eventCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

func mustCodec() eventCodec {
	enc, err := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("log: CBOR encode mode: %v", err))
	}

	// Traces may be cut short by a crash; be lenient on input.
	dec, err := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyQuiet,
		IndefLength: cbor.IndefLengthAllowed,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("log: CBOR decode mode: %v", err))
	}
	return eventCodec{enc: enc, dec: dec}
}

// EncodeEvent returns the CBOR form of event.
func EncodeEvent(event Event) ([]byte, error) {
	return codec.enc.Marshal(event)
}

// DecodeEvent parses one CBOR-encoded event.
func DecodeEvent(data []byte) (Event, error) {
	var event Event
	err := codec.dec.Unmarshal(data, &event)
	return event, err
}

// NewEncoder returns a streaming encoder writing events to w.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return codec.enc.NewEncoder(w)
}

// NewDecoder returns a streaming decoder reading events from r.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return codec.dec.NewDecoder(r)
}
