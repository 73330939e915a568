package protocol

import (
	"fmt"
)

// Message is a catalog payload value: one of ControlMessage, CodeMessage,
// ChatMessage, TerminalMessage or AudioMessage. Decoders return pointers.
type Message any

// Optional hooks a message implements to address its own frame. Messages
// without them encode with fileId 0, txnId 0 and no flags.
type (
	fileScoped interface{ frameFileID() uint32 }
	transacted interface{ frameTxnID() uint32 }
	flagged    interface{ frameFlags() Flags }

	// rawMessage payloads bypass the structured serializer.
	rawMessage interface{ rawPayload() []byte }

	// headerBinder restores header-carried fields after decode.
	headerBinder interface{ bindHeader(h Header) }
)

// entry describes one (channel, type) pair. Exactly one of newFn and rawFn
// is set.
type entry struct {
	name  string
	newFn func() Message
	rawFn func(h Header, payload []byte) Message
}

var catalog = [...][]entry{
	ChannelControl: {
		ControlHello:           {name: "HELLO", newFn: func() Message { return new(Hello) }},
		ControlWelcome:         {name: "WELCOME", newFn: func() Message { return new(Welcome) }},
		ControlSnapshotRequest: {name: "SNAPSHOT_REQUEST", newFn: func() Message { return new(SnapshotRequest) }},
		ControlReplayRequest:   {name: "REPLAY_REQUEST", newFn: func() Message { return new(ReplayRequest) }},
		ControlAck:             {name: "ACK", newFn: func() Message { return new(Ack) }},
		ControlError:           {name: "ERROR", newFn: func() Message { return new(Error) }},
		ControlFileInfo:        {name: "FILE_INFO", newFn: func() Message { return new(FileInfo) }},
		ControlCursor:          {name: "CURSOR", newFn: func() Message { return new(Cursor) }},
		ControlHighlights:      {name: "HIGHLIGHTS", newFn: func() Message { return new(Highlights) }},
		ControlViewerCount:     {name: "VIEWER_COUNT", newFn: func() Message { return new(ViewerCount) }},
		ControlStartStream:     {name: "START_STREAM", newFn: func() Message { return new(StartStream) }},
		ControlUpdateMetadata:  {name: "UPDATE_METADATA", newFn: func() Message { return new(UpdateMetadata) }},
		ControlBroadcaster:     {name: "BROADCASTER", newFn: func() Message { return new(Broadcaster) }},
		ControlStopStream:      {name: "STOP_STREAM", newFn: func() Message { return new(StopStream) }},
		ControlStreamStatus:    {name: "STREAM_STATUS", newFn: func() Message { return new(StreamStatus) }},
	},
	ChannelCode: {
		CodeSnapshotType: {name: "SNAPSHOT", rawFn: func(h Header, p []byte) Message {
			return &CodeSnapshot{FileID: h.FileID, State: p}
		}},
		CodeDeltaType: {name: "DELTA", rawFn: func(h Header, p []byte) Message {
			return &CodeDelta{FileID: h.FileID, Update: p}
		}},
	},
	ChannelChat: {
		ChatUser:   {name: "USER", newFn: func() Message { return new(UserMessage) }},
		ChatSystem: {name: "SYSTEM", newFn: func() Message { return new(SystemMessage) }},
	},
	ChannelTerminal: {
		TerminalOpenType:      {name: "OPEN", newFn: func() Message { return new(TerminalOpen) }},
		TerminalCloseType:     {name: "CLOSE", newFn: func() Message { return new(TerminalClose) }},
		TerminalOutputType:    {name: "OUTPUT", newFn: func() Message { return new(TerminalOutput) }},
		TerminalInputType:     {name: "INPUT", newFn: func() Message { return new(TerminalInput) }},
		TerminalResizeType:    {name: "RESIZE", newFn: func() Message { return new(TerminalResize) }},
		TerminalTitleType:     {name: "TITLE", newFn: func() Message { return new(TerminalTitle) }},
		TerminalStateType:     {name: "STATE", newFn: func() Message { return new(TerminalState) }},
		TerminalSnapshotType:  {name: "SNAPSHOT", newFn: func() Message { return new(TerminalSnapshot) }},
		TerminalExecStartType: {name: "EXEC_START", newFn: func() Message { return new(TerminalExecStart) }},
		TerminalExecEndType:   {name: "EXEC_END", newFn: func() Message { return new(TerminalExecEnd) }},
	},
	ChannelAudio: {
		AudioStartIntent:       {name: "START_INTENT", newFn: func() Message { return new(StartIntent) }},
		AudioWebRTCOffer:       {name: "WEBRTC_OFFER", newFn: func() Message { return new(WebRTCOffer) }},
		AudioWebRTCAnswer:      {name: "WEBRTC_ANSWER", newFn: func() Message { return new(WebRTCAnswer) }},
		AudioTracksPublish:     {name: "TRACKS_PUBLISH", newFn: func() Message { return new(TracksPublish) }},
		AudioAvailable:         {name: "AVAILABLE", newFn: func() Message { return new(Available) }},
		AudioUnavailable:       {name: "UNAVAILABLE", newFn: func() Message { return new(Unavailable) }},
		AudioCatalog:           {name: "CATALOG", newFn: func() Message { return new(Catalog) }},
		AudioGrantMic:          {name: "GRANT_MIC", newFn: func() Message { return new(GrantMic) }},
		AudioRevokeMic:         {name: "REVOKE_MIC", newFn: func() Message { return new(RevokeMic) }},
		AudioSpeakEnable:       {name: "SPEAK_ENABLE", newFn: func() Message { return new(SpeakEnable) }},
		AudioSpeakDisable:      {name: "SPEAK_DISABLE", newFn: func() Message { return new(SpeakDisable) }},
		AudioTracksAdded:       {name: "TRACKS_ADDED", newFn: func() Message { return new(TracksAdded) }},
		AudioTracksRemoved:     {name: "TRACKS_REMOVED", newFn: func() Message { return new(TracksRemoved) }},
		AudioSubscribe:         {name: "SUBSCRIBE", newFn: func() Message { return new(Subscribe) }},
		AudioSubscribeAll:      {name: "SUBSCRIBE_ALL", newFn: func() Message { return new(SubscribeAll) }},
		AudioRenegotiateOffer:  {name: "RENEGOTIATE_OFFER", newFn: func() Message { return new(RenegotiateOffer) }},
		AudioRenegotiateAnswer: {name: "RENEGOTIATE_ANSWER", newFn: func() Message { return new(RenegotiateAnswer) }},
		AudioSubscribed:        {name: "SUBSCRIBED", newFn: func() Message { return new(Subscribed) }},
	},
}

func lookup(ch Channel, typ uint8) (entry, bool) {
	if int(ch) >= len(catalog) || int(typ) >= len(catalog[ch]) {
		return entry{}, false
	}
	e := catalog[ch][typ]
	return e, e.newFn != nil || e.rawFn != nil
}

// Known reports whether (ch, typ) is in the catalog.
func Known(ch Channel, typ uint8) bool {
	_, ok := lookup(ch, typ)
	return ok
}

// IsRaw reports whether payloads of (ch, typ) are opaque bytes rather than
// structured values.
func IsRaw(ch Channel, typ uint8) bool {
	e, ok := lookup(ch, typ)
	return ok && e.rawFn != nil
}

// TypeName returns the catalog name for (ch, typ), e.g. "OUTPUT".
func TypeName(ch Channel, typ uint8) string {
	if e, ok := lookup(ch, typ); ok {
		return e.name
	}
	return fmt.Sprintf("type(%d)", typ)
}

// kindOf maps a message value to its (channel, type).
func kindOf(m Message) (Channel, uint8, bool) {
	switch v := m.(type) {
	case ControlMessage:
		return ChannelControl, uint8(v.ControlType()), true
	case CodeMessage:
		return ChannelCode, uint8(v.CodeType()), true
	case ChatMessage:
		return ChannelChat, uint8(v.ChatType()), true
	case TerminalMessage:
		return ChannelTerminal, uint8(v.TerminalType()), true
	case AudioMessage:
		return ChannelAudio, uint8(v.AudioType()), true
	default:
		return 0, 0, false
	}
}

// HeaderFor computes the frame header m encodes with, minus Length.
func HeaderFor(m Message) (Header, error) {
	ch, typ, ok := kindOf(m)
	if !ok {
		return Header{}, fmt.Errorf("%w: %T", ErrUnknownMessage, m)
	}
	if !Known(ch, typ) {
		return Header{}, fmt.Errorf("%w: %s type %d", ErrUnknownMessage, ch, typ)
	}

	h := Header{Version: Version, Channel: ch, Type: typ}
	if s, ok := m.(fileScoped); ok {
		h.FileID = s.frameFileID()
	}
	if s, ok := m.(transacted); ok {
		h.TxnID = s.frameTxnID()
	}
	if s, ok := m.(flagged); ok {
		h.Flags = s.frameFlags()
	}

	if ch == ChannelTerminal && TerminalType(typ) != TerminalSnapshotType && h.FileID == 0 {
		return Header{}, fmt.Errorf("%w: %s", ErrTerminalIDRequired, TypeName(ch, typ))
	}
	return h, nil
}

// EncodeMessage frames any catalog message.
func EncodeMessage(m Message) ([]byte, error) {
	h, err := HeaderFor(m)
	if err != nil {
		return nil, err
	}
	if r, ok := m.(rawMessage); ok {
		return Encode(h, r.rawPayload())
	}
	return EncodeValue(h, m)
}

// Decode parses a complete frame: header, version check, then payload.
func Decode(frame []byte) (Header, Message, error) {
	h, payload, err := DecodeHeaderOnly(frame)
	if err != nil {
		return h, nil, err
	}
	if h.Version != Version {
		return h, nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	m, err := DecodePayload(h, payload)
	return h, m, err
}

// DecodePayload turns a payload view into a typed message using the
// catalog entry for h. Raw payloads are returned without copying.
func DecodePayload(h Header, payload []byte) (Message, error) {
	e, ok := lookup(h.Channel, h.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %s type %d", ErrUnknownMessage, h.Channel, h.Type)
	}
	if e.rawFn != nil {
		return e.rawFn(h, payload), nil
	}

	m := e.newFn()
	if err := DecodeStructured(payload, m); err != nil {
		return nil, fmt.Errorf("%s %s: %w", h.Channel, e.name, err)
	}
	if b, ok := m.(headerBinder); ok {
		b.bindHeader(h)
	}
	return m, nil
}
