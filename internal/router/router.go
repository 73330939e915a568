// Package router classifies inbound frames by header and dispatches decoded
// messages to per-channel handlers.
//
// A bad frame never takes down the connection: version mismatches, unknown
// (channel, type) pairs and undecodable payloads are reported per frame as a
// *FrameError, optionally answered with a Control ERROR, and the stream
// continues with the next frame.
package router

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"github.com/chronologos/costream/internal/config"
	"github.com/chronologos/costream/internal/logging"
	"github.com/chronologos/costream/internal/metrics"
	"github.com/chronologos/costream/internal/protocol"
)

// Control ERROR codes sent for rejected frames.
const (
	CodeMalformedFrame     = "MALFORMED_FRAME"
	CodeUnsupportedVersion = "UNSUPPORTED_VERSION"
	CodeUnknownMessage     = "UNKNOWN_MESSAGE"
	CodeBadPayload         = "BAD_PAYLOAD"
)

// Kind classifies a FrameError.
type Kind string

const (
	KindMalformed  Kind = "malformed"
	KindVersion    Kind = "unsupported_version"
	KindUnknown    Kind = "unknown_message"
	KindBadPayload Kind = "bad_payload"
	KindHandler    Kind = "handler"
)

// FrameError reports why one frame was not delivered.
type FrameError struct {
	Kind   Kind
	Header protocol.Header
	Err    error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("%s frame %s/%s: %v", e.Kind, e.Header.Channel,
		protocol.TypeName(e.Header.Channel, e.Header.Type), e.Err)
}

func (e *FrameError) Unwrap() error { return e.Err }

// code maps the error to the Control ERROR code a peer should see, or ""
// when no reply is warranted.
func (e *FrameError) code() string {
	switch e.Kind {
	case KindMalformed:
		return CodeMalformedFrame
	case KindVersion:
		return CodeUnsupportedVersion
	case KindUnknown:
		return CodeUnknownMessage
	case KindBadPayload:
		return CodeBadPayload
	default:
		return ""
	}
}

// HandlerFunc receives one decoded message. m is a pointer to the catalog
// struct for h.Channel/h.Type; Code messages alias the frame buffer.
type HandlerFunc func(ctx context.Context, h protocol.Header, m protocol.Message) error

type Router struct {
	handlers     [protocol.ChannelAudio + 1]HandlerFunc
	proto        config.ProtocolConfig
	errorReplies bool
	metrics      *metrics.Metrics
	log          zerolog.Logger
}

type Option func(*Router)

// WithVersions replaces the accepted header versions (default: Version).
func WithVersions(vs ...uint8) Option {
	return func(r *Router) { r.proto.SupportedVersions = slices.Clone(vs) }
}

// WithProtocol takes the accepted versions from a loaded [protocol] table.
func WithProtocol(p config.ProtocolConfig) Option {
	return WithVersions(p.SupportedVersions...)
}

// WithErrorReplies makes Serve answer rejected frames with a Control ERROR.
func WithErrorReplies() Option {
	return func(r *Router) { r.errorReplies = true }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Router) { r.metrics = m }
}

func WithLogger(l zerolog.Logger) Option {
	return func(r *Router) { r.log = l }
}

func New(opts ...Option) *Router {
	r := &Router{
		proto: config.Default().Protocol,
		log:   logging.Component("router"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle registers fn for every frame on ch, replacing any previous handler.
// Frames on channels without a handler are dropped.
func (r *Router) Handle(ch protocol.Channel, fn HandlerFunc) {
	if int(ch) >= len(r.handlers) {
		panic(fmt.Sprintf("router: no such channel %d", ch))
	}
	r.handlers[ch] = fn
}

// Route classifies and delivers one complete frame. Every failure is a
// *FrameError.
func (r *Router) Route(ctx context.Context, frame []byte) error {
	h, payload, err := protocol.DecodeHeaderOnly(frame)
	if err != nil {
		return r.reject(KindMalformed, h, err)
	}
	r.metrics.RecordFrame(metrics.Inbound, h)

	if !r.proto.Supports(h.Version) {
		return r.reject(KindVersion, h, fmt.Errorf("%w: %d", protocol.ErrUnsupportedVersion, h.Version))
	}
	if !protocol.Known(h.Channel, h.Type) {
		return r.reject(KindUnknown, h, fmt.Errorf("%w: %s type %d", protocol.ErrUnknownMessage, h.Channel, h.Type))
	}

	fn := r.handlers[h.Channel]
	if fn == nil {
		r.log.Debug().Stringer("channel", h.Channel).Uint8("type", h.Type).Msg("no handler, frame dropped")
		return nil
	}

	m, err := protocol.DecodePayload(h, payload)
	if err != nil {
		return r.reject(KindBadPayload, h, err)
	}
	if err := fn(ctx, h, m); err != nil {
		return r.reject(KindHandler, h, err)
	}
	return nil
}

func (r *Router) reject(kind Kind, h protocol.Header, err error) error {
	r.metrics.RecordError(string(kind))
	return &FrameError{Kind: kind, Header: h, Err: err}
}

// ErrorReply builds the Control ERROR frame answering fe, or nil when the
// error is not reported to peers. A rejected ERROR frame is never answered,
// so two routers cannot bounce errors forever.
func ErrorReply(fe *FrameError) ([]byte, error) {
	code := fe.code()
	if code == "" {
		return nil, nil
	}
	if fe.Header.Channel == protocol.ChannelControl && fe.Header.Type == uint8(protocol.ControlError) {
		return nil, nil
	}
	return protocol.EncodeControl(protocol.Error{Code: code, Message: fe.Error()})
}

// AsFrameError reports whether err carries a *FrameError.
func AsFrameError(err error) (*FrameError, bool) {
	var fe *FrameError
	ok := errors.As(err, &fe)
	return fe, ok
}
