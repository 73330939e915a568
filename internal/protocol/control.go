package protocol

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// ControlMessage is a control channel payload. Control frames are
// session-scoped (fileId 0) except the file-addressed requests and overlays
// noted on each type.
type ControlMessage interface {
	ControlType() ControlType
}

// EncodeControl frames a control message.
func EncodeControl(m ControlMessage) ([]byte, error) {
	return EncodeMessage(m)
}

// Hello opens a session.
type Hello struct {
	V        uint32   `msgpack:"v"`        // client implementation version
	Protocol uint8    `msgpack:"protocol"` // wire version the client speaks
	Client   string   `msgpack:"client"`   // "vscode", "web" or "server"
	LastSeq  uint64   `msgpack:"lastSeq,omitempty"`
	Features []string `msgpack:"features,omitempty"`
}

// Welcome answers Hello.
type Welcome struct {
	V        uint32 `msgpack:"v"`
	Protocol uint8  `msgpack:"protocol"`
	RoomID   string `msgpack:"roomId"`
	Seq      uint64 `msgpack:"seq"` // current server sequence
}

// SnapshotTarget selects the file a SnapshotRequest is for.
type SnapshotTarget interface {
	snapshotTarget()
}

// SnapshotByPath requests a file by its workspace path.
type SnapshotByPath struct {
	Path string
}

// SnapshotByID requests a file by id.
type SnapshotByID struct {
	FileID uint32
}

func (SnapshotByPath) snapshotTarget() {}
func (SnapshotByID) snapshotTarget()   {}

// SnapshotRequest asks for the full state of a possibly inactive file.
// FileID is written to both the header and the payload; when zero and the
// target is a SnapshotByID, the target's id is used. A SnapshotByID that
// disagrees with a non-zero FileID does not encode.
type SnapshotRequest struct {
	Target SnapshotTarget
	FileID uint32
}

type snapshotRequestWire struct {
	FilePath *string `msgpack:"filePath,omitempty"`
	FileID   uint32  `msgpack:"fileId"`
}

func (r SnapshotRequest) frameFileID() uint32 {
	if r.FileID != 0 {
		return r.FileID
	}
	if t, ok := r.Target.(SnapshotByID); ok {
		return t.FileID
	}
	return 0
}

func (r SnapshotRequest) EncodeMsgpack(enc *msgpack.Encoder) error {
	w := snapshotRequestWire{FileID: r.frameFileID()}
	switch t := r.Target.(type) {
	case SnapshotByPath:
		if t.Path == "" {
			return fmt.Errorf("%w: empty path", ErrInvalidTarget)
		}
		w.FilePath = &t.Path
	case SnapshotByID:
		if t.FileID != w.FileID {
			return fmt.Errorf("%w: target id %d conflicts with fileId %d", ErrInvalidTarget, t.FileID, w.FileID)
		}
	default:
		return fmt.Errorf("%w: %T", ErrInvalidTarget, r.Target)
	}
	return enc.Encode(&w)
}

// DecodeMsgpack picks the target by the presence of filePath.
func (r *SnapshotRequest) DecodeMsgpack(dec *msgpack.Decoder) error {
	var w snapshotRequestWire
	if err := dec.Decode(&w); err != nil {
		return err
	}
	r.FileID = w.FileID
	if w.FilePath != nil {
		r.Target = SnapshotByPath{Path: *w.FilePath}
	} else {
		r.Target = SnapshotByID{FileID: w.FileID}
	}
	return nil
}

// ReplayRequest asks for deltas after FromSeq. FileID 0 means the active
// file; it is duplicated into the header so receivers can route without
// decoding the payload.
type ReplayRequest struct {
	FromSeq uint64 `msgpack:"fromSeq"`
	FileID  uint32 `msgpack:"fileId"`
}

func (r ReplayRequest) frameFileID() uint32 { return r.FileID }

type Ack struct {
	Seq uint64 `msgpack:"seq"`
}

// Error reports a failure to the peer. Code is a short machine-readable
// token such as "UNSUPPORTED_VERSION".
type Error struct {
	Code    string `msgpack:"code"`
	Message string `msgpack:"message"`
}

// FileInfo announces a file id to path mapping; the frame is addressed to
// the file it describes.
type FileInfo struct {
	FileID      uint32 `msgpack:"fileId"`
	Path        string `msgpack:"path"`
	DisplayName string `msgpack:"displayName,omitempty"`
}

func (f FileInfo) frameFileID() uint32 { return f.FileID }

type Position struct {
	Line uint32 `msgpack:"line"`
	Ch   uint32 `msgpack:"ch"`
}

type Selection struct {
	Anchor Position `msgpack:"anchor"`
	Head   Position `msgpack:"head"`
}

// Cursor carries the broadcaster's selections in FileID. FileID travels in
// the header only.
type Cursor struct {
	Cursors []Selection `msgpack:"cursors"`
	FileID  uint32      `msgpack:"-"`
}

func (c Cursor) frameFileID() uint32   { return c.FileID }
func (c *Cursor) bindHeader(h Header) { c.FileID = h.FileID }

// HighlightKind follows editor document highlight kinds.
type HighlightKind uint8

const (
	HighlightText  HighlightKind = 0
	HighlightRead  HighlightKind = 1
	HighlightWrite HighlightKind = 2
)

type HighlightRange struct {
	StartLine uint32         `msgpack:"sl"`
	StartCol  uint32         `msgpack:"sc"`
	EndLine   uint32         `msgpack:"el"`
	EndCol    uint32         `msgpack:"ec"`
	Kind      *HighlightKind `msgpack:"kind,omitempty"`
}

// Highlights carries highlight ranges for FileID (header only).
type Highlights struct {
	Ranges []HighlightRange `msgpack:"ranges"`
	FileID uint32           `msgpack:"-"`
}

func (h Highlights) frameFileID() uint32   { return h.FileID }
func (h *Highlights) bindHeader(hd Header) { h.FileID = hd.FileID }

type ViewerCount struct {
	Count uint32 `msgpack:"count"`
}

type StartStream struct{}

type StopStream struct{}

// StreamStatus reports whether the broadcast is live.
type StreamStatus struct {
	Live      bool   `msgpack:"live"`
	StartedAt int64  `msgpack:"startedAt,omitempty"` // epoch ms
	Reason    string `msgpack:"reason,omitempty"`
}

type UpdateMetadata struct {
	Title       string   `msgpack:"title,omitempty"`
	Description string   `msgpack:"description,omitempty"`
	Language    string   `msgpack:"language,omitempty"`
	Tags        []string `msgpack:"tags,omitempty"`
}

// Broadcaster designates the receiving connection as the session's
// broadcaster.
type Broadcaster struct{}

func (Hello) ControlType() ControlType           { return ControlHello }
func (Welcome) ControlType() ControlType         { return ControlWelcome }
func (SnapshotRequest) ControlType() ControlType { return ControlSnapshotRequest }
func (ReplayRequest) ControlType() ControlType   { return ControlReplayRequest }
func (Ack) ControlType() ControlType             { return ControlAck }
func (Error) ControlType() ControlType           { return ControlError }
func (FileInfo) ControlType() ControlType        { return ControlFileInfo }
func (Cursor) ControlType() ControlType          { return ControlCursor }
func (Highlights) ControlType() ControlType      { return ControlHighlights }
func (ViewerCount) ControlType() ControlType     { return ControlViewerCount }
func (StartStream) ControlType() ControlType     { return ControlStartStream }
func (UpdateMetadata) ControlType() ControlType  { return ControlUpdateMetadata }
func (Broadcaster) ControlType() ControlType     { return ControlBroadcaster }
func (StopStream) ControlType() ControlType      { return ControlStopStream }
func (StreamStatus) ControlType() ControlType    { return ControlStreamStatus }
