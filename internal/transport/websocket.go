package transport

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WSConn carries frames over binary WebSocket messages. Outbound, each
// frame is one message. Inbound, message boundaries are ignored: peers may
// batch several frames per message or split one across messages.
type WSConn struct {
	ws        *websocket.Conn
	split     *Splitter
	writeMu   sync.Mutex // gorilla allows one concurrent writer
	closeOnce sync.Once
}

// NewWSConn wraps an established WebSocket. maxPayload of 0 selects
// DefaultMaxPayload.
func NewWSConn(ws *websocket.Conn, maxPayload uint32) *WSConn {
	if maxPayload == 0 {
		maxPayload = DefaultMaxPayload
	}
	return &WSConn{ws: ws, split: NewSplitter(maxPayload)}
}

// ReadFrame returns the next complete frame, reading messages as needed.
// Not safe for concurrent use.
func (c *WSConn) ReadFrame() ([]byte, error) {
	for {
		frame, err := c.split.Next()
		if err != nil || frame != nil {
			return frame, err
		}

		kind, data, err := c.ws.ReadMessage()
		if err != nil {
			return nil, err
		}
		if kind != websocket.BinaryMessage {
			return nil, fmt.Errorf("websocket: unexpected message type %d", kind)
		}
		c.split.Write(data)
	}
}

// WriteFrame sends frame as one binary message.
func (c *WSConn) WriteFrame(frame []byte) error {
	if err := checkFrame(frame); err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteMessage(websocket.BinaryMessage, frame)
}

// Close sends a close message and closes the socket.
func (c *WSConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		c.writeMu.Unlock()
		err = c.ws.Close()
	})
	return err
}
