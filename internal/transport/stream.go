package transport

import (
	"bufio"
	"io"
	"sync"
)

// StreamConn carries frames over a reliable byte stream such as a net.Conn
// or a QUIC stream. Frames are delimited by the header length alone.
type StreamConn struct {
	rwc        io.ReadWriteCloser
	r          *bufio.Reader
	writeMu    sync.Mutex // frames from concurrent writers must not interleave
	maxPayload uint32
	closeOnce  sync.Once
}

// NewStreamConn wraps rwc. maxPayload of 0 selects DefaultMaxPayload.
func NewStreamConn(rwc io.ReadWriteCloser, maxPayload uint32) *StreamConn {
	if maxPayload == 0 {
		maxPayload = DefaultMaxPayload
	}
	return &StreamConn{
		rwc:        rwc,
		r:          bufio.NewReaderSize(rwc, 32*1024),
		maxPayload: maxPayload,
	}
}

// ReadFrame reads the next frame. Not safe for concurrent use.
func (c *StreamConn) ReadFrame() ([]byte, error) {
	return ReadFrame(c.r, c.maxPayload)
}

// WriteFrame writes one frame, serialized with other writers.
func (c *StreamConn) WriteFrame(frame []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return WriteFrame(c.rwc, frame)
}

// Close closes the underlying stream once.
func (c *StreamConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.rwc.Close()
	})
	return err
}
