package transport

import (
	"fmt"

	"github.com/chronologos/costream/internal/protocol"
)

// Splitter reassembles frames from arbitrarily chunked input: one chunk may
// hold several frames and a frame may span chunks. Used by message-oriented
// transports where chunk boundaries carry no meaning.
type Splitter struct {
	buf        []byte
	maxPayload uint32
}

// NewSplitter returns a Splitter refusing payloads over maxPayload
// (0 = no limit).
func NewSplitter(maxPayload uint32) *Splitter {
	return &Splitter{maxPayload: maxPayload}
}

// Write buffers p. It never fails.
func (s *Splitter) Write(p []byte) (int, error) {
	s.buf = append(s.buf, p...)
	return len(p), nil
}

// Next returns the next complete frame, or nil when more input is needed.
// The returned slice is owned by the caller. An oversized header is a
// permanent error: the stream cannot be resynchronized.
func (s *Splitter) Next() ([]byte, error) {
	if len(s.buf) < protocol.HeaderSize {
		return nil, nil
	}
	h, err := protocol.UnpackHeader(s.buf)
	if err != nil {
		return nil, err
	}
	if s.maxPayload > 0 && h.Length > s.maxPayload {
		return nil, fmt.Errorf("%w: %d bytes", protocol.ErrPayloadTooLarge, h.Length)
	}
	n := h.FrameSize()
	if len(s.buf) < n {
		return nil, nil
	}

	frame := make([]byte, n)
	copy(frame, s.buf[:n])
	rest := copy(s.buf, s.buf[n:])
	s.buf = s.buf[:rest]
	return frame, nil
}

// Buffered returns the number of bytes held for an incomplete frame.
func (s *Splitter) Buffered() int {
	return len(s.buf)
}
