package router

import (
	"context"
	"errors"
	"io"

	"github.com/chronologos/costream/internal/metrics"
	"github.com/chronologos/costream/internal/protocol"
	"github.com/chronologos/costream/internal/transport"
)

// Serve routes frames from conn until the peer closes it (nil), a transport
// read fails (that error) or ctx is cancelled (ctx.Err()). Per-frame
// failures are logged and, with WithErrorReplies, answered on conn.
func (r *Router) Serve(ctx context.Context, conn transport.Conn) error {
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		frame, err := conn.ReadFrame()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		err = r.Route(ctx, frame)
		if err == nil {
			continue
		}
		fe, ok := AsFrameError(err)
		if !ok {
			return err
		}
		r.log.Warn().Err(fe.Err).
			Str("kind", string(fe.Kind)).
			Stringer("channel", fe.Header.Channel).
			Uint8("type", fe.Header.Type).
			Uint32("file_id", fe.Header.FileID).
			Msg("frame rejected")

		if !r.errorReplies {
			continue
		}
		reply, err := ErrorReply(fe)
		if err != nil || reply == nil {
			continue
		}
		if err := r.write(conn, reply); err != nil {
			return err
		}
	}
}

// Send encodes m and writes it to w.
func (r *Router) Send(w FrameWriter, m protocol.Message) error {
	frame, err := protocol.EncodeMessage(m)
	if err != nil {
		return err
	}
	return r.write(w, frame)
}

// FrameWriter is the write half of a transport.Conn.
type FrameWriter interface {
	WriteFrame(frame []byte) error
}

func (r *Router) write(w FrameWriter, frame []byte) error {
	if err := w.WriteFrame(frame); err != nil {
		return err
	}
	if h, err := protocol.UnpackHeader(frame); err == nil {
		r.metrics.RecordFrame(metrics.Outbound, h)
	}
	return nil
}
