package transport

import (
	"fmt"
	"io"

	"github.com/chronologos/costream/internal/protocol"
)

// ReadFrame reads one frame from r. It returns io.EOF only when r ends on a
// frame boundary; a frame cut short yields io.ErrUnexpectedEOF. Payloads
// longer than maxPayload are refused before any allocation (0 = no limit).
func ReadFrame(r io.Reader, maxPayload uint32) ([]byte, error) {
	var header [protocol.HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}

	h, err := protocol.UnpackHeader(header[:])
	if err != nil {
		return nil, err
	}
	if maxPayload > 0 && h.Length > maxPayload {
		return nil, fmt.Errorf("%w: %d bytes", protocol.ErrPayloadTooLarge, h.Length)
	}

	frame := make([]byte, h.FrameSize())
	copy(frame, header[:])
	if h.Length > 0 {
		if _, err := io.ReadFull(r, frame[protocol.HeaderSize:]); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}
	}
	return frame, nil
}

// WriteFrame writes one complete frame to w in a single call.
func WriteFrame(w io.Writer, frame []byte) error {
	if err := checkFrame(frame); err != nil {
		return err
	}
	_, err := w.Write(frame)
	return err
}

// checkFrame verifies the header's length matches the buffer so a bad frame
// never desynchronizes the peer.
func checkFrame(frame []byte) error {
	h, _, err := protocol.DecodeHeaderOnly(frame)
	if err != nil {
		return err
	}
	if h.FrameSize() != len(frame) {
		return fmt.Errorf("%w: header declares %d bytes, buffer has %d",
			protocol.ErrFormat, h.FrameSize(), len(frame))
	}
	return nil
}
