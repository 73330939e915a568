package protocol

import (
	"bytes"
	"fmt"
	"math"

	"github.com/vmihailenco/msgpack/v5"
)

// Encode builds one contiguous frame from h and payload. h.Length is
// ignored and recomputed from the payload; a zero Version is written as
// Version.
func Encode(h Header, payload []byte) ([]byte, error) {
	if uint64(len(payload)) > math.MaxUint32 {
		return nil, ErrPayloadTooLarge
	}
	if h.Version == 0 {
		h.Version = Version
	}
	h.Length = uint32(len(payload))

	frame := make([]byte, HeaderSize+len(payload))
	PutHeader(frame, h)
	copy(frame[HeaderSize:], payload)
	return frame, nil
}

// EncodeValue serializes v as a structured payload and frames it.
func EncodeValue(h Header, v any) ([]byte, error) {
	payload, err := marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", h.Channel, err)
	}
	return Encode(h, payload)
}

// DecodeHeaderOnly reads the header and returns a view of the payload
// region buf[16:16+Length]. The payload is neither copied nor parsed.
// Callers must buffer a whole frame first; a short buffer returns a
// format error.
func DecodeHeaderOnly(buf []byte) (Header, []byte, error) {
	h, err := UnpackHeader(buf)
	if err != nil {
		return Header{}, nil, err
	}
	end := uint64(HeaderSize) + uint64(h.Length)
	if uint64(len(buf)) < end {
		return h, nil, ErrTruncated
	}
	return h, buf[HeaderSize:end:end], nil
}

// DecodeStructured parses a structured payload into v. It must not be used
// on code channel payloads, which are raw CRDT bytes.
// Bytes left over after the value are an error.
func DecodeStructured(payload []byte, v any) error {
	r := bytes.NewReader(payload)
	if err := msgpack.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrPayloadDecode, err)
	}
	if r.Len() > 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrPayloadDecode, r.Len())
	}
	return nil
}

// marshal encodes v with compact integers and sorted map keys so identical
// inputs always produce identical bytes.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.UseCompactInts(true)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
