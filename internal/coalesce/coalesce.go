// Package coalesce batches small terminal output reads into fewer, larger
// OUTPUT frames.
//
// Each frame costs a 16-byte header plus a payload envelope, so a shell
// printing many short lines would otherwise emit one frame per read. The
// Coalescer accumulates bytes and flushes when:
//
//   - the delay expires, measured from the first byte in the batch and not
//     reset by later adds (a deadline, not a debounce)
//   - the threshold is reached
//   - the owner calls Flush at a boundary such as EXEC_END or close
package coalesce

import "time"

const (
	// DefaultDelay is the coalescing deadline from first byte in batch.
	DefaultDelay = 2 * time.Millisecond

	// DefaultThreshold triggers an immediate flush when reached.
	DefaultThreshold = 32 * 1024
)

// Coalescer accumulates bytes and flushes on deadline or threshold.
// It is owned by a single goroutine (the producer's select loop).
type Coalescer struct {
	buf       []byte
	delay     time.Duration
	threshold int
	timer     *time.Timer
	armed     bool
}

// New returns a Coalescer. Non-positive arguments select the defaults.
func New(delay time.Duration, threshold int) *Coalescer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	t := time.NewTimer(time.Hour)
	t.Stop()
	return &Coalescer{
		buf:       make([]byte, 0, threshold+4096),
		delay:     delay,
		threshold: threshold,
		timer:     t,
	}
}

// Add appends data and reports whether the threshold was reached, in which
// case the caller should flush now. The first byte of a batch arms the
// deadline; later adds leave it alone.
func (c *Coalescer) Add(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	if len(c.buf) == 0 && !c.armed {
		c.timer.Reset(c.delay)
		c.armed = true
	}
	c.buf = append(c.buf, data...)
	return len(c.buf) >= c.threshold
}

// Flush returns the batch and resets the buffer, or nil when empty. The
// caller owns the returned slice.
func (c *Coalescer) Flush() []byte {
	if len(c.buf) == 0 {
		return nil
	}
	c.disarm()

	out := make([]byte, len(c.buf))
	copy(out, c.buf)
	c.buf = c.buf[:0]
	return out
}

func (c *Coalescer) disarm() {
	if !c.armed {
		return
	}
	if !c.timer.Stop() {
		// Already fired: drain so a stale tick cannot reach the select loop.
		select {
		case <-c.timer.C:
		default:
		}
	}
	c.armed = false
}

// Timer fires when the deadline for the current batch expires. It is nil
// when nothing is pending, which disables the case in a select:
//
//	case <-coal.Timer():
//	    emit(coal.Flush())
func (c *Coalescer) Timer() <-chan time.Time {
	if !c.armed {
		return nil
	}
	return c.timer.C
}

// Stop releases the timer.
func (c *Coalescer) Stop() {
	c.timer.Stop()
	c.armed = false
}

// Pending returns the number of buffered bytes.
func (c *Coalescer) Pending() int {
	return len(c.buf)
}
