package protocol

import (
	"fmt"
	"strings"
)

// Wire format version.
const Version = 1

// Header: [1B version][1B channel][1B type][1B flags]
// [4B length][4B file id][4B txn id], all big-endian.
const HeaderSize = 16

// Channel selects which message catalog a frame's type is looked up in.
type Channel uint8

const (
	ChannelControl  Channel = 0
	ChannelCode     Channel = 1
	ChannelChat     Channel = 2
	ChannelTerminal Channel = 3
	ChannelAudio    Channel = 4
)

func (c Channel) String() string {
	switch c {
	case ChannelControl:
		return "control"
	case ChannelCode:
		return "code"
	case ChannelChat:
		return "chat"
	case ChannelTerminal:
		return "terminal"
	case ChannelAudio:
		return "audio"
	default:
		return fmt.Sprintf("channel(%d)", uint8(c))
	}
}

// Flags is the header bitfield. Reserved bits are carried through untouched.
type Flags uint8

const (
	FlagNone        Flags = 0
	FlagCompressed  Flags = 1 << 0
	FlagAckRequired Flags = 1 << 1
)

func (f Flags) Compressed() bool  { return f&FlagCompressed != 0 }
func (f Flags) AckRequired() bool { return f&FlagAckRequired != 0 }

func (f Flags) String() string {
	if f == FlagNone {
		return "none"
	}
	var parts []string
	if f.Compressed() {
		parts = append(parts, "compressed")
	}
	if f.AckRequired() {
		parts = append(parts, "ack")
	}
	if rest := f &^ (FlagCompressed | FlagAckRequired); rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%02x", uint8(rest)))
	}
	return strings.Join(parts, "|")
}

// ControlType enumerates the control channel.
type ControlType uint8

const (
	ControlHello           ControlType = 0
	ControlWelcome         ControlType = 1
	ControlSnapshotRequest ControlType = 2 // full state for a (possibly inactive) file
	ControlReplayRequest   ControlType = 3 // deltas from a sequence number
	ControlAck             ControlType = 4
	ControlError           ControlType = 5
	ControlFileInfo        ControlType = 6
	ControlCursor          ControlType = 7
	ControlHighlights      ControlType = 8
	ControlViewerCount     ControlType = 9
	ControlStartStream     ControlType = 10
	ControlUpdateMetadata  ControlType = 11
	ControlBroadcaster     ControlType = 12
	ControlStopStream      ControlType = 13
	ControlStreamStatus    ControlType = 14
)

// CodeType enumerates the code channel. Both payloads are opaque CRDT updates.
type CodeType uint8

const (
	CodeSnapshotType CodeType = 0 // full document state encoded as an update
	CodeDeltaType    CodeType = 1 // incremental update
)

// ChatType enumerates the chat channel.
type ChatType uint8

const (
	ChatUser   ChatType = 0
	ChatSystem ChatType = 1
)

// TerminalType enumerates the terminal channel.
type TerminalType uint8

const (
	TerminalOpenType      TerminalType = 0 // terminal created
	TerminalCloseType     TerminalType = 1 // terminal disposed
	TerminalOutputType    TerminalType = 2 // stdout/stderr chunk
	TerminalInputType     TerminalType = 3 // text sent to the terminal
	TerminalResizeType    TerminalType = 4
	TerminalTitleType     TerminalType = 5
	TerminalStateType     TerminalType = 6 // focus/cwd/shell integration
	TerminalSnapshotType  TerminalType = 7 // every open terminal, fileId 0
	TerminalExecStartType TerminalType = 8
	TerminalExecEndType   TerminalType = 9
)

// AudioType enumerates the audio signaling channel.
type AudioType uint8

const (
	// Single publisher flow.
	AudioStartIntent   AudioType = 0 // broadcaster -> server
	AudioWebRTCOffer   AudioType = 1 // any -> server
	AudioWebRTCAnswer  AudioType = 2 // server -> any
	AudioTracksPublish AudioType = 3 // publisher -> server
	AudioAvailable     AudioType = 4 // server -> all
	AudioUnavailable   AudioType = 5 // server -> all

	// Multi-publisher flow.
	AudioCatalog       AudioType = 6  // server -> all
	AudioGrantMic      AudioType = 7  // host -> server
	AudioRevokeMic     AudioType = 8  // host -> server
	AudioSpeakEnable   AudioType = 9  // server -> target user
	AudioSpeakDisable  AudioType = 10 // server -> target user
	AudioTracksAdded   AudioType = 11 // server -> all
	AudioTracksRemoved AudioType = 12 // server -> all

	// Subscription and renegotiation.
	AudioSubscribe         AudioType = 13 // viewer -> server
	AudioSubscribeAll      AudioType = 14 // viewer -> server
	AudioRenegotiateOffer  AudioType = 15 // server -> viewer
	AudioRenegotiateAnswer AudioType = 16 // viewer -> server
	AudioSubscribed        AudioType = 17 // server -> viewer
)
