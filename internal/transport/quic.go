package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/quic-go/quic-go"
)

// ALPN is the application protocol negotiated on QUIC connections.
const ALPN = "costream-v1"

// QUICConfig is the connection config both sides should use.
func QUICConfig() *quic.Config {
	return &quic.Config{
		MaxIdleTimeout:    30 * time.Second,
		KeepAlivePeriod:   10 * time.Second,
		InitialPacketSize: 1200, // stay under small tunnel MTUs
	}
}

// WithALPN returns a copy of conf advertising ALPN. Certificates and
// verification are the caller's concern.
func WithALPN(conf *tls.Config) *tls.Config {
	c := conf.Clone()
	c.NextProtos = []string{ALPN}
	if c.MinVersion < tls.VersionTLS13 {
		c.MinVersion = tls.VersionTLS13
	}
	return c
}

// quicStream adapts a QUIC stream so Close tears down both directions and
// the connection the stream was opened on.
type quicStream struct {
	*quic.Stream
	qconn *quic.Conn
}

func (s quicStream) Close() error {
	s.Stream.CancelRead(0)
	err := s.Stream.Close()
	s.qconn.CloseWithError(0, "closed")
	return err
}

// OpenQUIC opens the frame stream on an established QUIC connection. The
// peer's AcceptQUIC returns once the first frame has been written.
func OpenQUIC(ctx context.Context, qconn *quic.Conn, maxPayload uint32) (*StreamConn, error) {
	stream, err := qconn.OpenStreamSync(ctx)
	if err != nil {
		return nil, fmt.Errorf("open frame stream: %w", err)
	}
	return NewStreamConn(quicStream{Stream: stream, qconn: qconn}, maxPayload), nil
}

// AcceptQUIC waits for the peer's frame stream.
func AcceptQUIC(ctx context.Context, qconn *quic.Conn, maxPayload uint32) (*StreamConn, error) {
	stream, err := qconn.AcceptStream(ctx)
	if err != nil {
		return nil, fmt.Errorf("accept frame stream: %w", err)
	}
	return NewStreamConn(quicStream{Stream: stream, qconn: qconn}, maxPayload), nil
}
