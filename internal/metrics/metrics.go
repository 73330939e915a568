// Package metrics exposes Prometheus counters for frame traffic.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/chronologos/costream/internal/protocol"
)

// Direction labels which way a frame travelled.
type Direction string

const (
	Inbound  Direction = "in"
	Outbound Direction = "out"
)

// Metrics is a set of collectors. A nil *Metrics records nothing.
type Metrics struct {
	frames       *prometheus.CounterVec
	payloadBytes *prometheus.CounterVec
	errors       *prometheus.CounterVec
	frameSize    *prometheus.HistogramVec
}

func New(namespace string) *Metrics {
	return &Metrics{
		frames: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "frames",
				Name:      "total",
				Help:      "Frames by direction, channel and type.",
			},
			[]string{"direction", "channel", "type"},
		),
		payloadBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "frames",
				Name:      "payload_bytes_total",
				Help:      "Payload bytes by direction and channel.",
			},
			[]string{"direction", "channel"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "frames",
				Name:      "errors_total",
				Help:      "Frames rejected, by error kind.",
			},
			[]string{"kind"},
		),
		frameSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "frames",
				Name:      "size_bytes",
				Help:      "Whole frame size in bytes.",
				Buckets:   prometheus.ExponentialBuckets(16, 4, 10),
			},
			[]string{"channel"},
		),
	}
}

// Register adds every collector to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.frames, m.payloadBytes, m.errors, m.frameSize} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// RecordFrame counts one frame.
func (m *Metrics) RecordFrame(dir Direction, h protocol.Header) {
	if m == nil {
		return
	}
	ch := h.Channel.String()
	m.frames.WithLabelValues(string(dir), ch, protocol.TypeName(h.Channel, h.Type)).Inc()
	m.payloadBytes.WithLabelValues(string(dir), ch).Add(float64(h.Length))
	m.frameSize.WithLabelValues(ch).Observe(float64(h.FrameSize()))
}

// RecordError counts one rejected frame. kind is a short token such as
// "unknown_message".
func (m *Metrics) RecordError(kind string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(kind).Inc()
}
