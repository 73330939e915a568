// Package scrollback keeps the recent output of one terminal so a SNAPSHOT
// can carry it to late joiners.
package scrollback

import "sync"

const DefaultSize = 256 * 1024 // 256 KB

// mark records where OUTPUT chunk seq begins inside Buffer.data.
type mark struct {
	seq uint64
	off int
}

// Buffer holds the trailing output of a terminal as one contiguous byte
// run. Eviction drops whole chunks from the front, so the held bytes always
// start at a chunk boundary with a known sequence number.
//
// Buffer is safe for concurrent use.
type Buffer struct {
	mu    sync.Mutex
	data  []byte
	marks []mark
	limit int
}

// New creates a buffer holding at most maxBytes of output (DefaultSize when
// maxBytes <= 0).
func New(maxBytes int) *Buffer {
	if maxBytes <= 0 {
		maxBytes = DefaultSize
	}
	return &Buffer{limit: maxBytes}
}

// Append adds chunk seq. A chunk larger than the whole buffer replaces
// everything and keeps only its trailing bytes. Empty chunks are ignored.
func (b *Buffer) Append(seq uint64, p []byte) {
	if len(p) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(p) >= b.limit {
		b.data = append(b.data[:0], p[len(p)-b.limit:]...)
		b.marks = append(b.marks[:0], mark{seq: seq})
		return
	}

	b.marks = append(b.marks, mark{seq: seq, off: len(b.data)})
	b.data = append(b.data, p...)
	if len(b.data) > b.limit {
		b.trim(len(b.data) - b.limit)
	}
}

// trim drops the fewest leading chunks that free at least n bytes.
func (b *Buffer) trim(n int) {
	i := 0
	for i < len(b.marks) && b.marks[i].off < n {
		i++
	}
	cut := len(b.data)
	if i < len(b.marks) {
		cut = b.marks[i].off
	}
	rest := copy(b.data, b.data[cut:])
	b.data = b.data[:rest]
	kept := copy(b.marks, b.marks[i:])
	b.marks = b.marks[:kept]
	for j := range b.marks {
		b.marks[j].off -= cut
	}
}

// Contents returns a copy of everything held together with the sequence
// number of its first chunk. An empty buffer returns (0, nil).
func (b *Buffer) Contents() (uint64, []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.marks) == 0 {
		return 0, nil
	}
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return b.marks[0].seq, out
}
