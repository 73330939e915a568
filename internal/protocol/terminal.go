package protocol

// TerminalID is a caller-assigned, non-zero terminal identifier. It rides in
// the header's fileId slot on every per-terminal frame.
type TerminalID uint32

// TerminalMessage is a terminal channel payload.
type TerminalMessage interface {
	TerminalType() TerminalType
}

// EncodeTerminal frames a terminal message. Every type except
// TerminalSnapshot needs a non-zero terminal id.
func EncodeTerminal(m TerminalMessage) ([]byte, error) {
	return EncodeMessage(m)
}

// Output stream selectors.
const (
	StreamStdout uint8 = 0
	StreamStderr uint8 = 1
)

// TerminalOpen announces a new terminal. ID is both the payload id and the
// header terminal id.
type TerminalOpen struct {
	ID                  TerminalID `msgpack:"id"`
	Name                string     `msgpack:"name"`
	PID                 uint32     `msgpack:"pid,omitempty"`
	Cols                uint16     `msgpack:"cols"`
	Rows                uint16     `msgpack:"rows"`
	Cwd                 string     `msgpack:"cwd,omitempty"`
	HasShellIntegration bool       `msgpack:"hasShellIntegration"`
	IsActive            bool       `msgpack:"isActive,omitempty"`
}

type TerminalClose struct {
	Terminal TerminalID `msgpack:"-"`
	At       int64      `msgpack:"at"`
	ExitCode *int32     `msgpack:"exitCode,omitempty"`
	Reason   string     `msgpack:"reason,omitempty"`
}

// TerminalOutput is one chunk of terminal output. Seq increases per
// terminal. When Compressed is set, Data holds a compressed chunk.
type TerminalOutput struct {
	Terminal    TerminalID `msgpack:"-"`
	Compressed  bool       `msgpack:"-"`
	AckRequired bool       `msgpack:"-"`
	TxnID       uint32     `msgpack:"-"`

	Seq    uint64 `msgpack:"seq"`
	At     int64  `msgpack:"at"`
	Stream uint8  `msgpack:"stream,omitempty"`
	Data   []byte `msgpack:"data"`
	More   bool   `msgpack:"more,omitempty"`
}

// TerminalInput is text sent to a terminal.
type TerminalInput struct {
	Terminal    TerminalID `msgpack:"-"`
	Compressed  bool       `msgpack:"-"`
	AckRequired bool       `msgpack:"-"`
	TxnID       uint32     `msgpack:"-"`

	Seq    uint64 `msgpack:"seq"`
	At     int64  `msgpack:"at"`
	Data   []byte `msgpack:"data"`
	Source string `msgpack:"source,omitempty"` // "keyboard", "paste", "api"
	Echo   bool   `msgpack:"echo,omitempty"`
}

type TerminalResize struct {
	Terminal TerminalID `msgpack:"-"`
	At       int64      `msgpack:"at"`
	Cols     uint16     `msgpack:"cols"`
	Rows     uint16     `msgpack:"rows"`
}

type TerminalTitle struct {
	Terminal TerminalID `msgpack:"-"`
	At       int64      `msgpack:"at"`
	Name     string     `msgpack:"name"`
}

// TerminalState carries only the attributes that changed.
type TerminalState struct {
	Terminal            TerminalID `msgpack:"-"`
	At                  int64      `msgpack:"at"`
	IsActive            *bool      `msgpack:"isActive,omitempty"`
	Cwd                 string     `msgpack:"cwd,omitempty"`
	HasShellIntegration *bool      `msgpack:"hasShellIntegration,omitempty"`
}

// TerminalExecStart opens a command bracket; output frames and the matching
// TerminalExecEnd share its TxnID.
type TerminalExecStart struct {
	Terminal TerminalID `msgpack:"-"`
	TxnID    uint32     `msgpack:"-"`
	At       int64      `msgpack:"at"`
	ExecID   uint32     `msgpack:"execId"`
	Command  string     `msgpack:"command"`
	Cwd      string     `msgpack:"cwd,omitempty"`
}

type TerminalExecEnd struct {
	Terminal TerminalID `msgpack:"-"`
	TxnID    uint32     `msgpack:"-"`
	At       int64      `msgpack:"at"`
	ExecID   uint32     `msgpack:"execId"`
	ExitCode *int32     `msgpack:"exitCode,omitempty"`
}

// TerminalInfo describes one terminal inside a snapshot.
type TerminalInfo struct {
	ID                  TerminalID `msgpack:"id"`
	Name                string     `msgpack:"name"`
	Cols                uint16     `msgpack:"cols"`
	Rows                uint16     `msgpack:"rows"`
	Cwd                 string     `msgpack:"cwd,omitempty"`
	HasShellIntegration bool       `msgpack:"hasShellIntegration"`
	CreatedAt           int64      `msgpack:"createdAt"`
	IsActive            bool       `msgpack:"isActive"`
	ScrollbackSeqStart  uint64     `msgpack:"scrollbackSeqStart,omitempty"`
	Scrollback          []byte     `msgpack:"scrollback,omitempty"`
}

// TerminalSnapshot lists every open terminal. It is not per-terminal and
// always frames with fileId 0.
type TerminalSnapshot struct {
	At        int64          `msgpack:"at"`
	Terminals []TerminalInfo `msgpack:"terminals"`
}

func (TerminalOpen) TerminalType() TerminalType      { return TerminalOpenType }
func (TerminalClose) TerminalType() TerminalType     { return TerminalCloseType }
func (TerminalOutput) TerminalType() TerminalType    { return TerminalOutputType }
func (TerminalInput) TerminalType() TerminalType     { return TerminalInputType }
func (TerminalResize) TerminalType() TerminalType    { return TerminalResizeType }
func (TerminalTitle) TerminalType() TerminalType     { return TerminalTitleType }
func (TerminalState) TerminalType() TerminalType     { return TerminalStateType }
func (TerminalSnapshot) TerminalType() TerminalType  { return TerminalSnapshotType }
func (TerminalExecStart) TerminalType() TerminalType { return TerminalExecStartType }
func (TerminalExecEnd) TerminalType() TerminalType   { return TerminalExecEndType }

// Header addressing.

func (m TerminalOpen) frameFileID() uint32      { return uint32(m.ID) }
func (m TerminalClose) frameFileID() uint32     { return uint32(m.Terminal) }
func (m TerminalOutput) frameFileID() uint32    { return uint32(m.Terminal) }
func (m TerminalInput) frameFileID() uint32     { return uint32(m.Terminal) }
func (m TerminalResize) frameFileID() uint32    { return uint32(m.Terminal) }
func (m TerminalTitle) frameFileID() uint32     { return uint32(m.Terminal) }
func (m TerminalState) frameFileID() uint32     { return uint32(m.Terminal) }
func (m TerminalExecStart) frameFileID() uint32 { return uint32(m.Terminal) }
func (m TerminalExecEnd) frameFileID() uint32   { return uint32(m.Terminal) }

func (m TerminalOutput) frameTxnID() uint32    { return m.TxnID }
func (m TerminalInput) frameTxnID() uint32     { return m.TxnID }
func (m TerminalExecStart) frameTxnID() uint32 { return m.TxnID }
func (m TerminalExecEnd) frameTxnID() uint32   { return m.TxnID }

func (m TerminalOutput) frameFlags() Flags { return streamFlags(m.Compressed, m.AckRequired) }
func (m TerminalInput) frameFlags() Flags  { return streamFlags(m.Compressed, m.AckRequired) }

func streamFlags(compressed, ack bool) Flags {
	f := FlagNone
	if compressed {
		f |= FlagCompressed
	}
	if ack {
		f |= FlagAckRequired
	}
	return f
}

func (m *TerminalClose) bindHeader(h Header)  { m.Terminal = TerminalID(h.FileID) }
func (m *TerminalResize) bindHeader(h Header) { m.Terminal = TerminalID(h.FileID) }
func (m *TerminalTitle) bindHeader(h Header)  { m.Terminal = TerminalID(h.FileID) }
func (m *TerminalState) bindHeader(h Header)  { m.Terminal = TerminalID(h.FileID) }

func (m *TerminalOutput) bindHeader(h Header) {
	m.Terminal = TerminalID(h.FileID)
	m.Compressed = h.Flags.Compressed()
	m.AckRequired = h.Flags.AckRequired()
	m.TxnID = h.TxnID
}

func (m *TerminalInput) bindHeader(h Header) {
	m.Terminal = TerminalID(h.FileID)
	m.Compressed = h.Flags.Compressed()
	m.AckRequired = h.Flags.AckRequired()
	m.TxnID = h.TxnID
}

func (m *TerminalExecStart) bindHeader(h Header) {
	m.Terminal = TerminalID(h.FileID)
	m.TxnID = h.TxnID
}

func (m *TerminalExecEnd) bindHeader(h Header) {
	m.Terminal = TerminalID(h.FileID)
	m.TxnID = h.TxnID
}
