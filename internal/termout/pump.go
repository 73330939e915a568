package termout

import (
	"context"

	"github.com/chronologos/costream/internal/coalesce"
	"github.com/chronologos/costream/internal/protocol"
)

// Pump batches raw reads from in into OUTPUT frames for one terminal stream
// and hands each frame to emit. It returns nil when in is closed, after
// flushing what is buffered, and ctx.Err() on cancellation.
func (p *Producer) Pump(ctx context.Context, id protocol.TerminalID, stream uint8, in <-chan []byte, emit func([]byte) error) error {
	coal := coalesce.New(p.opts.CoalesceDelay, p.opts.CoalesceThreshold)
	defer coal.Stop()

	flush := func() error {
		data := coal.Flush()
		if data == nil {
			return nil
		}
		frame, err := p.Output(id, stream, data, false)
		if err != nil {
			return err
		}
		return emit(frame)
	}

	for {
		select {
		case <-ctx.Done():
			if err := flush(); err != nil {
				return err
			}
			return ctx.Err()

		case data, ok := <-in:
			if !ok {
				return flush()
			}
			if coal.Add(data) {
				if err := flush(); err != nil {
					return err
				}
			}

		case <-coal.Timer():
			if err := flush(); err != nil {
				return err
			}
		}
	}
}
