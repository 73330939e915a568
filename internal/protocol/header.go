package protocol

import "encoding/binary"

// Header is the fixed 16-byte frame header.
//
// FileID is 0 for session-scoped frames. Terminal frames (except SNAPSHOT)
// carry the terminal id in this slot.
type Header struct {
	Version uint8
	Channel Channel
	Type    uint8
	Flags   Flags
	Length  uint32
	FileID  uint32
	TxnID   uint32
}

// Pack returns the wire form of h.
func (h Header) Pack() [HeaderSize]byte {
	var b [HeaderSize]byte
	PutHeader(b[:], h)
	return b
}

// PutHeader writes h into the first HeaderSize bytes of dst.
// dst must be at least HeaderSize long.
func PutHeader(dst []byte, h Header) {
	_ = dst[HeaderSize-1]
	dst[0] = h.Version
	dst[1] = byte(h.Channel)
	dst[2] = h.Type
	dst[3] = byte(h.Flags)
	binary.BigEndian.PutUint32(dst[4:8], h.Length)
	binary.BigEndian.PutUint32(dst[8:12], h.FileID)
	binary.BigEndian.PutUint32(dst[12:16], h.TxnID)
}

// UnpackHeader reads a header from the start of b. Field values are not
// validated; an unknown channel or type is returned as-is.
func UnpackHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, ErrShortHeader
	}
	return Header{
		Version: b[0],
		Channel: Channel(b[1]),
		Type:    b[2],
		Flags:   Flags(b[3]),
		Length:  binary.BigEndian.Uint32(b[4:8]),
		FileID:  binary.BigEndian.Uint32(b[8:12]),
		TxnID:   binary.BigEndian.Uint32(b[12:16]),
	}, nil
}

// FrameSize is the total wire size of the frame h describes.
func (h Header) FrameSize() int {
	return HeaderSize + int(h.Length)
}
