package protocol

// CodeMessage is a code channel payload. Code payloads are opaque CRDT
// updates produced and consumed by the document engine; they are framed
// verbatim and never pass through the structured serializer.
type CodeMessage interface {
	CodeType() CodeType
	rawPayload() []byte
}

// EncodeCode frames a code message.
func EncodeCode(m CodeMessage) ([]byte, error) {
	return EncodeMessage(m)
}

// CodeSnapshot is the full document state encoded as a single update.
// On decode State aliases the frame buffer.
type CodeSnapshot struct {
	FileID uint32
	State  []byte
}

// CodeDelta is one incremental document update.
// On decode Update aliases the frame buffer.
type CodeDelta struct {
	FileID uint32
	Update []byte
}

func (CodeSnapshot) CodeType() CodeType { return CodeSnapshotType }
func (CodeDelta) CodeType() CodeType    { return CodeDeltaType }

func (s CodeSnapshot) rawPayload() []byte { return s.State }
func (d CodeDelta) rawPayload() []byte    { return d.Update }

func (s CodeSnapshot) frameFileID() uint32 { return s.FileID }
func (d CodeDelta) frameFileID() uint32    { return d.FileID }
