// Package transport moves whole frames over byte streams and message
// transports. It does not dial, listen or authenticate; callers hand it an
// established connection.
package transport

// DefaultMaxPayload bounds a single payload on read (16 MB).
const DefaultMaxPayload = 16 << 20

// Conn carries complete frames in both directions. ReadFrame returns one
// whole frame (header + payload) that the caller owns. WriteFrame is safe
// for concurrent use; ReadFrame is not.
type Conn interface {
	ReadFrame() ([]byte, error)
	WriteFrame(frame []byte) error
	Close() error
}
