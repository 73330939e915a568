package protocol

import (
	"errors"
	"fmt"
)

// ErrFormat is matched by every framing error that a stream reader can
// recover from by buffering more bytes.
var ErrFormat = errors.New("malformed frame")

var (
	ErrShortHeader = fmt.Errorf("%w: fewer than %d header bytes", ErrFormat, HeaderSize)
	ErrTruncated   = fmt.Errorf("%w: payload shorter than header length", ErrFormat)

	ErrUnsupportedVersion = errors.New("unsupported protocol version")
	ErrUnknownMessage     = errors.New("unrecognized message")
	ErrPayloadDecode      = errors.New("payload decode failed")
	ErrPayloadTooLarge    = errors.New("payload exceeds maximum size")
	ErrTerminalIDRequired = errors.New("terminal id required")
	ErrInvalidTarget      = errors.New("invalid snapshot target")
)
