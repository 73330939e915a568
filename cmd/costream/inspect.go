package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/chronologos/costream/internal/config"
	"github.com/chronologos/costream/internal/logging"
	"github.com/chronologos/costream/internal/metrics"
	"github.com/chronologos/costream/internal/protocol"
	"github.com/chronologos/costream/internal/router"
	"github.com/chronologos/costream/internal/termout"
	"github.com/chronologos/costream/internal/transport"
)

// runInspect decodes a captured frame stream and prints one line per frame.
// Rejected frames are reported and skipped; only a broken stream stops it.
func runInspect(ctx context.Context, args []string, stdin io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	configPath := fs.String("config", "", "TOML config file")
	maxPayload := fs.Uint("max-payload", 0, "override protocol.max_payload_bytes")
	showMetrics := fs.Bool("metrics", false, "print frame counters when done")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return err
		}
		applyLogConfig(cfg.Log)
	}
	if *maxPayload > 0 {
		cfg.Protocol.MaxPayloadBytes = uint32(*maxPayload)
	}

	src := stdin
	if fs.NArg() > 0 && fs.Arg(0) != "-" {
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			return err
		}
		defer f.Close()
		src = f
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(cfg.Metrics.Namespace)
	if err := m.Register(reg); err != nil {
		return err
	}

	ins := &inspector{out: out}
	r := router.New(
		router.WithProtocol(cfg.Protocol),
		router.WithMetrics(m),
	)
	for ch := protocol.ChannelControl; ch <= protocol.ChannelAudio; ch++ {
		r.Handle(ch, ins.handle)
	}

	log := logging.Component("inspect")
	br := bufio.NewReader(src)
	for ctx.Err() == nil {
		frame, err := transport.ReadFrame(br, cfg.Protocol.MaxPayloadBytes)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("frame %d: %w", ins.n+1, err)
		}
		ins.n++
		if err := r.Route(ctx, frame); err != nil {
			ins.rejected++
			fmt.Fprintf(out, "#%d ! %v\n", ins.n, err)
		}
	}
	log.Info().Int("frames", ins.n).Int("rejected", ins.rejected).Msg("inspect done")

	if *showMetrics {
		mfs, err := reg.Gather()
		if err != nil {
			return err
		}
		for _, mf := range mfs {
			if _, err := expfmt.MetricFamilyToText(out, mf); err != nil {
				return err
			}
		}
	}
	return ctx.Err()
}

// applyLogConfig installs the file's [log] settings. COSTREAM_LOG_* still wins.
func applyLogConfig(lc config.LogConfig) {
	lcfg := logging.DefaultConfig(logging.ProfileRuntime)
	if lvl, ok := logging.ParseLevel(lc.Level); ok {
		lcfg.Level = lvl
	}
	if lc.NoColor {
		lcfg.NoColor = true
	}
	logging.ApplyEnv(&lcfg)
	logging.Apply(lcfg)
}

type inspector struct {
	out      io.Writer
	n        int
	rejected int
}

func (i *inspector) handle(_ context.Context, h protocol.Header, m protocol.Message) error {
	fmt.Fprintf(i.out, "#%d %s/%s file=%d txn=%d flags=%s len=%d %s\n",
		i.n, h.Channel, protocol.TypeName(h.Channel, h.Type),
		h.FileID, h.TxnID, h.Flags, h.Length, describe(m))
	return nil
}

// describe renders a decoded message for humans.
func describe(m protocol.Message) string {
	switch v := m.(type) {
	case *protocol.CodeSnapshot:
		return fmt.Sprintf("state=%d bytes", len(v.State))
	case *protocol.CodeDelta:
		return fmt.Sprintf("update=%d bytes", len(v.Update))
	case *protocol.TerminalOutput:
		data, err := termout.OutputData(v)
		if err != nil {
			return fmt.Sprintf("seq=%d <%v>", v.Seq, err)
		}
		return fmt.Sprintf("seq=%d stream=%d %q", v.Seq, v.Stream, clip(data, 48))
	case *protocol.TerminalSnapshot:
		var b strings.Builder
		fmt.Fprintf(&b, "terminals=%d", len(v.Terminals))
		for _, t := range v.Terminals {
			fmt.Fprintf(&b, " [%d %q %dx%d scrollback=%d@%d]", t.ID, t.Name, t.Cols, t.Rows, len(t.Scrollback), t.ScrollbackSeqStart)
		}
		return b.String()
	case *protocol.TerminalInput:
		return fmt.Sprintf("seq=%d %q", v.Seq, clip(v.Data, 48))
	default:
		return fmt.Sprintf("%+v", reflect.Indirect(reflect.ValueOf(m)).Interface())
	}
}

func clip(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
