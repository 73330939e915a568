// Package termout turns terminal activity into terminal-channel frames.
//
// A Producer owns the per-terminal counters the wire format expects: OUTPUT
// and INPUT sequence numbers, exec ids, and the transaction id that ties an
// EXEC_START, its output and its EXEC_END together. Large output chunks are
// zstd-compressed and flagged COMPRESSED. Recent output is kept per terminal
// so Snapshot can describe every open terminal to a late joiner.
package termout

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/DataDog/zstd"
	"github.com/rs/zerolog"

	"github.com/chronologos/costream/internal/config"
	"github.com/chronologos/costream/internal/logging"
	"github.com/chronologos/costream/internal/protocol"
	"github.com/chronologos/costream/internal/scrollback"
)

var (
	ErrUnknownTerminal = errors.New("terminal not open")
	ErrTerminalOpen    = errors.New("terminal already open")
	ErrExecActive      = errors.New("exec already running")
	ErrNoExec          = errors.New("no exec running")
)

// Options tune output framing.
type Options struct {
	// CompressThreshold is the smallest chunk worth compressing; 0 disables.
	CompressThreshold int
	CompressLevel     int
	CoalesceDelay     time.Duration
	CoalesceThreshold int
	// ScrollbackBytes is how much output each terminal keeps; 0 keeps none.
	ScrollbackBytes int
	// Now stamps frames; nil means time.Now.
	Now func() time.Time
}

// OptionsFrom maps the [terminal] config section.
func OptionsFrom(cfg config.TerminalConfig) Options {
	return Options{
		CompressThreshold: cfg.CompressThreshold,
		CompressLevel:     cfg.CompressLevel,
		CoalesceDelay:     cfg.CoalesceDelay,
		CoalesceThreshold: cfg.CoalesceThreshold,
		ScrollbackBytes:   cfg.ScrollbackBytes,
	}
}

type termState struct {
	info   protocol.TerminalInfo
	scroll *scrollback.Buffer // nil when scrollback is off
	outSeq uint64
	inSeq  uint64
	execID uint32
	txn    uint32 // open exec bracket, 0 when idle
}

// Producer is safe for concurrent use.
type Producer struct {
	mu      sync.Mutex
	opts    Options
	terms   map[protocol.TerminalID]*termState
	lastTxn uint32
	log     zerolog.Logger
}

func NewProducer(opts Options) *Producer {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Producer{
		opts:  opts,
		terms: make(map[protocol.TerminalID]*termState),
		log:   logging.Component("termout"),
	}
}

func (p *Producer) now() int64 {
	return p.opts.Now().UnixMilli()
}

func (p *Producer) state(id protocol.TerminalID) (*termState, error) {
	st, ok := p.terms[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTerminal, id)
	}
	return st, nil
}

// Open registers a terminal and frames its OPEN.
func (p *Producer) Open(m protocol.TerminalOpen) ([]byte, error) {
	if m.ID == 0 {
		return nil, protocol.ErrTerminalIDRequired
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.terms[m.ID]; ok {
		return nil, fmt.Errorf("%w: %d", ErrTerminalOpen, m.ID)
	}
	frame, err := protocol.EncodeTerminal(m)
	if err != nil {
		return nil, err
	}
	st := &termState{info: protocol.TerminalInfo{
		ID:                  m.ID,
		Name:                m.Name,
		Cols:                m.Cols,
		Rows:                m.Rows,
		Cwd:                 m.Cwd,
		HasShellIntegration: m.HasShellIntegration,
		CreatedAt:           p.now(),
		IsActive:            m.IsActive,
	}}
	if p.opts.ScrollbackBytes > 0 {
		st.scroll = scrollback.New(p.opts.ScrollbackBytes)
	}
	p.terms[m.ID] = st
	p.log.Debug().Uint32("terminal", uint32(m.ID)).Str("name", m.Name).Msg("terminal opened")
	return frame, nil
}

// Output frames one chunk of terminal output. The chunk joins the open exec
// bracket, if any, and is compressed when it is large enough and shrinks.
func (p *Producer) Output(id protocol.TerminalID, stream uint8, data []byte, ack bool) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	st, err := p.state(id)
	if err != nil {
		return nil, err
	}

	out := protocol.TerminalOutput{
		Terminal:    id,
		AckRequired: ack,
		TxnID:       st.txn,
		Seq:         st.outSeq + 1,
		At:          p.now(),
		Stream:      stream,
		Data:        data,
	}
	if p.opts.CompressThreshold > 0 && len(data) >= p.opts.CompressThreshold {
		packed, err := zstd.CompressLevel(nil, data, p.opts.CompressLevel)
		if err != nil {
			return nil, fmt.Errorf("compress output: %w", err)
		}
		if len(packed) < len(data) {
			out.Data = packed
			out.Compressed = true
		}
	}

	frame, err := protocol.EncodeTerminal(out)
	if err != nil {
		return nil, err
	}
	st.outSeq = out.Seq
	if st.scroll != nil {
		st.scroll.Append(out.Seq, data)
	}
	return frame, nil
}

// Input frames text sent to a terminal.
func (p *Producer) Input(id protocol.TerminalID, data []byte, source string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	st, err := p.state(id)
	if err != nil {
		return nil, err
	}
	in := protocol.TerminalInput{
		Terminal: id,
		TxnID:    st.txn,
		Seq:      st.inSeq + 1,
		At:       p.now(),
		Data:     data,
		Source:   source,
	}
	frame, err := protocol.EncodeTerminal(in)
	if err != nil {
		return nil, err
	}
	st.inSeq = in.Seq
	return frame, nil
}

// ExecStart opens an exec bracket with a fresh transaction id.
func (p *Producer) ExecStart(id protocol.TerminalID, command, cwd string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	st, err := p.state(id)
	if err != nil {
		return nil, err
	}
	if st.txn != 0 {
		return nil, fmt.Errorf("%w: terminal %d txn %d", ErrExecActive, id, st.txn)
	}

	p.lastTxn++
	if p.lastTxn == 0 {
		p.lastTxn = 1
	}
	m := protocol.TerminalExecStart{
		Terminal: id,
		TxnID:    p.lastTxn,
		At:       p.now(),
		ExecID:   st.execID + 1,
		Command:  command,
		Cwd:      cwd,
	}
	frame, err := protocol.EncodeTerminal(m)
	if err != nil {
		return nil, err
	}
	st.execID = m.ExecID
	st.txn = m.TxnID
	if cwd != "" {
		st.info.Cwd = cwd
	}
	return frame, nil
}

// ExecEnd closes the open exec bracket.
func (p *Producer) ExecEnd(id protocol.TerminalID, exitCode *int32) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	st, err := p.state(id)
	if err != nil {
		return nil, err
	}
	if st.txn == 0 {
		return nil, fmt.Errorf("%w: terminal %d", ErrNoExec, id)
	}
	m := protocol.TerminalExecEnd{
		Terminal: id,
		TxnID:    st.txn,
		At:       p.now(),
		ExecID:   st.execID,
		ExitCode: exitCode,
	}
	frame, err := protocol.EncodeTerminal(m)
	if err != nil {
		return nil, err
	}
	st.txn = 0
	return frame, nil
}

// Resize frames a dimension change.
func (p *Producer) Resize(id protocol.TerminalID, cols, rows uint16) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	st, err := p.state(id)
	if err != nil {
		return nil, err
	}
	frame, err := protocol.EncodeTerminal(protocol.TerminalResize{Terminal: id, At: p.now(), Cols: cols, Rows: rows})
	if err != nil {
		return nil, err
	}
	st.info.Cols, st.info.Rows = cols, rows
	return frame, nil
}

// State frames the attributes set in m and remembers them for snapshots.
// Activating one terminal deactivates the others.
func (p *Producer) State(m protocol.TerminalState) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	st, err := p.state(m.Terminal)
	if err != nil {
		return nil, err
	}
	m.At = p.now()
	frame, err := protocol.EncodeTerminal(m)
	if err != nil {
		return nil, err
	}
	if m.Cwd != "" {
		st.info.Cwd = m.Cwd
	}
	if m.HasShellIntegration != nil {
		st.info.HasShellIntegration = *m.HasShellIntegration
	}
	if m.IsActive != nil {
		if *m.IsActive {
			for _, other := range p.terms {
				other.info.IsActive = false
			}
		}
		st.info.IsActive = *m.IsActive
	}
	return frame, nil
}

// Snapshot frames every open terminal, ordered by id, with its scrollback.
func (p *Producer) Snapshot() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	snap := protocol.TerminalSnapshot{At: p.now(), Terminals: make([]protocol.TerminalInfo, 0, len(p.terms))}
	for _, st := range p.terms {
		info := st.info
		if st.scroll != nil {
			info.ScrollbackSeqStart, info.Scrollback = st.scroll.Contents()
		}
		snap.Terminals = append(snap.Terminals, info)
	}
	slices.SortFunc(snap.Terminals, func(a, b protocol.TerminalInfo) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return protocol.EncodeTerminal(snap)
}

// Close frames the terminal's CLOSE and forgets its counters.
func (p *Producer) Close(id protocol.TerminalID, exitCode *int32, reason string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.state(id); err != nil {
		return nil, err
	}
	frame, err := protocol.EncodeTerminal(protocol.TerminalClose{
		Terminal: id,
		At:       p.now(),
		ExitCode: exitCode,
		Reason:   reason,
	})
	if err != nil {
		return nil, err
	}
	delete(p.terms, id)
	p.log.Debug().Uint32("terminal", uint32(id)).Str("reason", reason).Msg("terminal closed")
	return frame, nil
}

// OutputData returns the plain bytes of a decoded OUTPUT, inflating
// compressed chunks.
func OutputData(m *protocol.TerminalOutput) ([]byte, error) {
	if !m.Compressed {
		return m.Data, nil
	}
	data, err := zstd.Decompress(nil, m.Data)
	if err != nil {
		return nil, fmt.Errorf("decompress output seq %d: %w", m.Seq, err)
	}
	return data, nil
}
