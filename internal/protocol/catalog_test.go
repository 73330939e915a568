package protocol

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

// roundTrip encodes m, decodes the frame and returns both halves.
func roundTrip(t *testing.T, m Message) (Header, Message) {
	t.Helper()
	frame, err := EncodeMessage(m)
	if err != nil {
		t.Fatalf("encode %T: %v", m, err)
	}
	h, decoded, err := Decode(frame)
	if err != nil {
		t.Fatalf("decode %T: %v", m, err)
	}
	if h.FrameSize() != len(frame) {
		t.Fatalf("%T: header length %d does not cover frame of %d bytes", m, h.Length, len(frame))
	}
	return h, decoded
}

// deref strips the pointer a decoder returns so values compare with inputs.
func deref(m Message) any {
	return reflect.ValueOf(m).Elem().Interface()
}

func TestHelloScenario(t *testing.T) {
	original := Hello{V: 1, Protocol: Version, Client: "web"}
	h, msg := roundTrip(t, original)

	if h.Channel != ChannelControl || h.Type != uint8(ControlHello) {
		t.Fatalf("routing mismatch: %s/%d", h.Channel, h.Type)
	}
	if h.Flags != FlagNone || h.FileID != 0 || h.TxnID != 0 {
		t.Fatalf("unexpected header fields: %+v", h)
	}
	decoded, ok := msg.(*Hello)
	if !ok {
		t.Fatalf("expected *Hello, got %T", msg)
	}
	if !reflect.DeepEqual(*decoded, original) {
		t.Fatalf("payload mismatch: got %+v, want %+v", *decoded, original)
	}
}

func TestControlSessionScoped(t *testing.T) {
	kind := HighlightWrite
	msgs := []ControlMessage{
		Hello{V: 1, Protocol: Version, Client: "vscode", LastSeq: 7, Features: []string{"delta"}},
		Welcome{V: 1, Protocol: Version, RoomID: "room-a", Seq: 123},
		Ack{Seq: 999},
		Error{Code: "BAD_REQ", Message: "nope"},
		ViewerCount{Count: 12},
		StartStream{},
		StopStream{},
		StreamStatus{Live: true, StartedAt: 1700000000000},
		UpdateMetadata{Title: "live coding", Tags: []string{"go"}},
		Broadcaster{},
	}
	for _, m := range msgs {
		h, decoded := roundTrip(t, m)
		if h.Channel != ChannelControl || h.Type != uint8(m.ControlType()) {
			t.Fatalf("%T: routing mismatch %s/%d", m, h.Channel, h.Type)
		}
		if h.FileID != 0 || h.TxnID != 0 || h.Flags != FlagNone {
			t.Fatalf("%T: control frames must be session-scoped, got %+v", m, h)
		}
		if !reflect.DeepEqual(deref(decoded), m) {
			t.Fatalf("%T: payload mismatch: got %+v", m, deref(decoded))
		}
	}

	// File-addressed overlays keep their file id in the header only.
	cur := Cursor{FileID: 5, Cursors: []Selection{{Anchor: Position{Line: 1, Ch: 2}, Head: Position{Line: 1, Ch: 9}}}}
	h, decoded := roundTrip(t, cur)
	if h.FileID != 5 {
		t.Fatalf("cursor fileId: got %d, want 5", h.FileID)
	}
	if !reflect.DeepEqual(deref(decoded), cur) {
		t.Fatalf("cursor mismatch: got %+v", deref(decoded))
	}

	hl := Highlights{FileID: 6, Ranges: []HighlightRange{{StartLine: 1, StartCol: 0, EndLine: 1, EndCol: 4, Kind: &kind}}}
	h, decoded = roundTrip(t, hl)
	if h.FileID != 6 {
		t.Fatalf("highlights fileId: got %d, want 6", h.FileID)
	}
	if !reflect.DeepEqual(deref(decoded), hl) {
		t.Fatalf("highlights mismatch: got %+v", deref(decoded))
	}

	info := FileInfo{FileID: FileIDFromPath("src/app.ts"), Path: "src/app.ts", DisplayName: "app.ts"}
	h, decoded = roundTrip(t, info)
	if h.FileID != info.FileID {
		t.Fatalf("file info fileId: got %d, want %d", h.FileID, info.FileID)
	}
	if !reflect.DeepEqual(deref(decoded), info) {
		t.Fatalf("file info mismatch: got %+v", deref(decoded))
	}
}

// requestWire mirrors what a receiver sees in the payload body.
type requestWire struct {
	FilePath string  `msgpack:"filePath"`
	FileID   *uint32 `msgpack:"fileId"`
	FromSeq  uint64  `msgpack:"fromSeq"`
}

func payloadOf(t *testing.T, frame []byte) requestWire {
	t.Helper()
	_, payload, err := DecodeHeaderOnly(frame)
	if err != nil {
		t.Fatal(err)
	}
	var w requestWire
	if err := DecodeStructured(payload, &w); err != nil {
		t.Fatal(err)
	}
	return w
}

func TestReplayRequestDuplicatesFileID(t *testing.T) {
	for _, fileID := range []uint32{0, 17} {
		frame, err := EncodeControl(ReplayRequest{FromSeq: 42, FileID: fileID})
		if err != nil {
			t.Fatal(err)
		}
		h, _, err := DecodeHeaderOnly(frame)
		if err != nil {
			t.Fatal(err)
		}
		if h.Type != uint8(ControlReplayRequest) || h.FileID != fileID {
			t.Fatalf("header mismatch: %+v", h)
		}
		w := payloadOf(t, frame)
		if w.FromSeq != 42 {
			t.Fatalf("fromSeq: got %d", w.FromSeq)
		}
		if w.FileID == nil || *w.FileID != fileID {
			t.Fatalf("payload must carry fileId %d, got %v", fileID, w.FileID)
		}
	}
}

func TestSnapshotRequestTargets(t *testing.T) {
	cases := []struct {
		name       string
		req        SnapshotRequest
		wantHeader uint32
		wantPath   string
		want       SnapshotRequest
	}{
		{
			name:       "by path",
			req:        SnapshotRequest{Target: SnapshotByPath{Path: "src/app.ts"}},
			wantHeader: 0,
			wantPath:   "src/app.ts",
			want:       SnapshotRequest{Target: SnapshotByPath{Path: "src/app.ts"}},
		},
		{
			name:       "by path with routing id",
			req:        SnapshotRequest{Target: SnapshotByPath{Path: "src/app.ts"}, FileID: 9},
			wantHeader: 9,
			wantPath:   "src/app.ts",
			want:       SnapshotRequest{Target: SnapshotByPath{Path: "src/app.ts"}, FileID: 9},
		},
		{
			name:       "by id",
			req:        SnapshotRequest{Target: SnapshotByID{FileID: 7}},
			wantHeader: 7,
			want:       SnapshotRequest{Target: SnapshotByID{FileID: 7}, FileID: 7},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			frame, err := EncodeControl(tc.req)
			if err != nil {
				t.Fatal(err)
			}
			h, msg, err := Decode(frame)
			if err != nil {
				t.Fatal(err)
			}
			if h.FileID != tc.wantHeader {
				t.Fatalf("header fileId: got %d, want %d", h.FileID, tc.wantHeader)
			}
			w := payloadOf(t, frame)
			if w.FileID == nil || *w.FileID != tc.wantHeader {
				t.Fatalf("payload fileId: got %v, want %d", w.FileID, tc.wantHeader)
			}
			if w.FilePath != tc.wantPath {
				t.Fatalf("payload filePath: got %q, want %q", w.FilePath, tc.wantPath)
			}
			if !reflect.DeepEqual(deref(msg), tc.want) {
				t.Fatalf("decoded mismatch: got %+v, want %+v", deref(msg), tc.want)
			}
		})
	}
}

func TestSnapshotRequestWithoutTarget(t *testing.T) {
	if _, err := EncodeControl(SnapshotRequest{FileID: 3}); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget for snapshot request without target, got %v", err)
	}
}

func TestSnapshotRequestRejectsConflictingID(t *testing.T) {
	_, err := EncodeControl(SnapshotRequest{Target: SnapshotByID{FileID: 7}, FileID: 9})
	if !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}

	// Agreeing ids are fine and land in both places.
	frame, err := EncodeControl(SnapshotRequest{Target: SnapshotByID{FileID: 7}, FileID: 7})
	if err != nil {
		t.Fatal(err)
	}
	h, _, err := DecodeHeaderOnly(frame)
	if err != nil {
		t.Fatal(err)
	}
	if w := payloadOf(t, frame); h.FileID != 7 || w.FileID == nil || *w.FileID != 7 {
		t.Fatalf("header fileId %d, payload fileId %v; want 7 in both", h.FileID, w.FileID)
	}
}

func TestSnapshotRequestRejectsEmptyPath(t *testing.T) {
	_, err := EncodeControl(SnapshotRequest{Target: SnapshotByPath{}})
	if !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}
}

func TestSnapshotRequestTargetFromPathKey(t *testing.T) {
	// A peer that sends filePath "" still asked by path.
	payload, err := marshal(map[string]any{"filePath": "", "fileId": 0})
	if err != nil {
		t.Fatal(err)
	}
	frame, err := Encode(Header{Channel: ChannelControl, Type: uint8(ControlSnapshotRequest)}, payload)
	if err != nil {
		t.Fatal(err)
	}
	_, msg, err := Decode(frame)
	if err != nil {
		t.Fatal(err)
	}
	if got := msg.(*SnapshotRequest).Target; got != (SnapshotByPath{}) {
		t.Fatalf("target: got %#v, want SnapshotByPath", got)
	}
}

func TestCodeFramesAreRaw(t *testing.T) {
	update := []byte{0x01, 0x02, 0x00, 0xFF}

	frame, err := EncodeCode(CodeDelta{Update: update})
	if err != nil {
		t.Fatal(err)
	}
	h, view, err := DecodeHeaderOnly(frame)
	if err != nil {
		t.Fatal(err)
	}
	if h.Channel != ChannelCode || h.Type != uint8(CodeDeltaType) || h.FileID != 0 {
		t.Fatalf("header mismatch: %+v", h)
	}
	if !bytes.Equal(view, update) {
		t.Fatalf("code payload must be framed verbatim: got %x", view)
	}
	if !IsRaw(h.Channel, h.Type) {
		t.Fatal("code delta should be a raw catalog entry")
	}

	_, msg := roundTrip(t, CodeSnapshot{FileID: 4, State: update})
	snap, ok := msg.(*CodeSnapshot)
	if !ok {
		t.Fatalf("expected *CodeSnapshot, got %T", msg)
	}
	if snap.FileID != 4 || !bytes.Equal(snap.State, update) {
		t.Fatalf("snapshot mismatch: %+v", snap)
	}
}

func TestChatFrames(t *testing.T) {
	author := ChatAuthor{ID: "u1", Username: "ann", DisplayName: "Ann", BadgeIDs: []string{"mod"}}
	user := UserMessage{ID: "m1", User: author, Content: "hello", SentAt: 1700000000123, Mentions: []string{"u2"}}
	system := SystemMessage{ID: "s1", Kind: "join", Content: "ann joined", SentAt: 1700000000124}

	for _, m := range []ChatMessage{user, system} {
		h, decoded := roundTrip(t, m)
		if h.Channel != ChannelChat || h.Type != uint8(m.ChatType()) {
			t.Fatalf("%T: routing mismatch", m)
		}
		if h.FileID != 0 || h.TxnID != 0 {
			t.Fatalf("%T: chat frames must be session-scoped", m)
		}
		if !reflect.DeepEqual(deref(decoded), m) {
			t.Fatalf("%T: payload mismatch: got %+v", m, deref(decoded))
		}
	}
}

func TestNewUserMessageStampsIDs(t *testing.T) {
	a := NewUserMessage(ChatAuthor{ID: "u1", Username: "ann"}, "hi")
	b := NewUserMessage(ChatAuthor{ID: "u1", Username: "ann"}, "hi")
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("expected distinct ids, got %q and %q", a.ID, b.ID)
	}
	if a.SentAt == 0 {
		t.Fatal("expected sentAt to be set")
	}
	if s := NewSystemMessage("notice", "stream starting"); s.ID == "" || s.Kind != "notice" {
		t.Fatalf("unexpected system message: %+v", s)
	}
}

func TestTerminalOutputScenario(t *testing.T) {
	original := TerminalOutput{
		Terminal:    123,
		Compressed:  true,
		AckRequired: true,
		TxnID:       42,
		Seq:         2,
		At:          1700000000000,
		Data:        []byte("world"),
	}
	h, msg := roundTrip(t, original)

	if h.Flags != FlagCompressed|FlagAckRequired {
		t.Fatalf("flags: got %s, want compressed|ack", h.Flags)
	}
	if uint8(h.Flags) != 0b11 {
		t.Fatalf("flags: got %08b, want 00000011", uint8(h.Flags))
	}
	if h.FileID != 123 || h.TxnID != 42 {
		t.Fatalf("header mismatch: %+v", h)
	}
	decoded := msg.(*TerminalOutput)
	if !decoded.Compressed || !decoded.AckRequired {
		t.Fatalf("flags should decode into independent booleans: %+v", decoded)
	}
	if !reflect.DeepEqual(*decoded, original) {
		t.Fatalf("output mismatch: got %+v, want %+v", *decoded, original)
	}
}

func TestTerminalFlagComposition(t *testing.T) {
	cases := []struct {
		compressed, ack bool
		want            Flags
	}{
		{false, false, FlagNone},
		{true, false, FlagCompressed},
		{false, true, FlagAckRequired},
		{true, true, FlagCompressed | FlagAckRequired},
	}
	for _, tc := range cases {
		h, msg := roundTrip(t, TerminalInput{Terminal: 9, Compressed: tc.compressed, AckRequired: tc.ack, Seq: 1, Data: []byte("ls\n")})
		if h.Flags != tc.want {
			t.Fatalf("flags: got %v, want %v", h.Flags, tc.want)
		}
		in := msg.(*TerminalInput)
		if in.Compressed != tc.compressed || in.AckRequired != tc.ack {
			t.Fatalf("decoded flags mismatch: %+v", in)
		}
	}
}

func TestTerminalIDPropagation(t *testing.T) {
	const id TerminalID = 123
	exit := int32(0)
	active := false

	msgs := []TerminalMessage{
		TerminalOpen{ID: id, Name: "Terminal 1", PID: 456, Cols: 80, Rows: 24, Cwd: "/home/user", HasShellIntegration: true, IsActive: true},
		TerminalClose{Terminal: id, At: 1, ExitCode: &exit, Reason: "normal exit"},
		TerminalOutput{Terminal: id, Seq: 1, At: 2, Stream: StreamStderr, Data: []byte("hello"), More: true},
		TerminalInput{Terminal: id, Seq: 1, At: 3, Data: []byte("ls\n"), Source: "keyboard", Echo: true},
		TerminalResize{Terminal: id, At: 4, Cols: 120, Rows: 30},
		TerminalTitle{Terminal: id, At: 5, Name: "New Terminal Title"},
		TerminalState{Terminal: id, At: 6, IsActive: &active, Cwd: "/new/directory"},
		TerminalExecStart{Terminal: id, TxnID: 77, At: 7, ExecID: 1, Command: "npm install", Cwd: "/project"},
		TerminalExecEnd{Terminal: id, TxnID: 77, At: 8, ExecID: 1, ExitCode: &exit},
	}
	for _, m := range msgs {
		h, decoded := roundTrip(t, m)
		if h.Channel != ChannelTerminal || h.Type != uint8(m.TerminalType()) {
			t.Fatalf("%T: routing mismatch", m)
		}
		if h.FileID != uint32(id) {
			t.Fatalf("%T: fileId got %d, want %d", m, h.FileID, id)
		}
		if !reflect.DeepEqual(deref(decoded), m) {
			t.Fatalf("%T: payload mismatch:\n got %+v\nwant %+v", m, deref(decoded), m)
		}
	}
}

func TestTerminalTxnOnlyWhereThreaded(t *testing.T) {
	h, _ := roundTrip(t, TerminalExecStart{Terminal: 1, TxnID: 77, ExecID: 1, Command: "make"})
	if h.TxnID != 77 || h.Flags != FlagNone {
		t.Fatalf("exec start header: %+v", h)
	}
	h, _ = roundTrip(t, TerminalResize{Terminal: 1, Cols: 80, Rows: 24})
	if h.TxnID != 0 || h.Flags != FlagNone {
		t.Fatalf("resize header should carry no txn or flags: %+v", h)
	}
}

func TestTerminalIDRequired(t *testing.T) {
	msgs := []TerminalMessage{
		TerminalOpen{Name: "x"},
		TerminalClose{},
		TerminalOutput{Data: []byte("x")},
		TerminalInput{},
		TerminalResize{},
		TerminalTitle{},
		TerminalState{},
		TerminalExecStart{},
		TerminalExecEnd{},
	}
	for _, m := range msgs {
		if _, err := EncodeTerminal(m); !errors.Is(err, ErrTerminalIDRequired) {
			t.Fatalf("%T: expected ErrTerminalIDRequired, got %v", m, err)
		}
	}
}

func TestTerminalSnapshotUsesFileIDZero(t *testing.T) {
	original := TerminalSnapshot{
		At: 1700000000000,
		Terminals: []TerminalInfo{
			{ID: 1, Name: "Terminal 1", Cols: 80, Rows: 24, Cwd: "/home/user", HasShellIntegration: true,
				CreatedAt: 1699999999000, IsActive: true, ScrollbackSeqStart: 3, Scrollback: []byte("welcome")},
			{ID: 2, Name: "Terminal 2", Cols: 120, Rows: 30, Cwd: "/tmp", CreatedAt: 1699999999500},
		},
	}
	h, msg := roundTrip(t, original)
	if h.FileID != 0 || h.TxnID != 0 || h.Flags != FlagNone {
		t.Fatalf("snapshot header: %+v", h)
	}
	if !reflect.DeepEqual(deref(msg), original) {
		t.Fatalf("snapshot mismatch: got %+v", deref(msg))
	}
}

func TestAudioFramesSessionScoped(t *testing.T) {
	ref := TrackRef{SessionID: "sfu-1", TrackName: "mic"}
	pub := Publisher{UserID: "u1", SessionID: "sfu-1", TrackName: "mic"}
	msgs := []AudioMessage{
		StartIntent{},
		WebRTCOffer{SDP: "v=0 offer", SessionID: "sfu-1"},
		WebRTCAnswer{SDP: "v=0 answer"},
		TracksPublish{SessionID: "sfu-1", Tracks: []TrackRef{ref}},
		Available{SessionID: "sfu-1", TrackName: "mic"},
		Unavailable{Reason: "broadcaster left"},
		Catalog{Publishers: []Publisher{pub}},
		GrantMic{UserID: "u2"},
		RevokeMic{UserID: "u2"},
		SpeakEnable{GrantedBy: "u1"},
		SpeakDisable{},
		TracksAdded{Publishers: []Publisher{pub}},
		TracksRemoved{Publishers: []Publisher{pub}},
		Subscribe{Tracks: []TrackRef{ref}},
		SubscribeAll{},
		RenegotiateOffer{SDP: "v=0 re-offer"},
		RenegotiateAnswer{SDP: "v=0 re-answer"},
		Subscribed{Tracks: []TrackRef{ref}},
	}
	seen := make(map[AudioType]bool)
	for _, m := range msgs {
		h, decoded := roundTrip(t, m)
		if h.Channel != ChannelAudio || h.Type != uint8(m.AudioType()) {
			t.Fatalf("%T: routing mismatch", m)
		}
		if h.FileID != 0 || h.TxnID != 0 {
			t.Fatalf("%T: audio frames must use fileId 0 and txnId 0", m)
		}
		if !reflect.DeepEqual(deref(decoded), m) {
			t.Fatalf("%T: payload mismatch: got %+v", m, deref(decoded))
		}
		seen[m.AudioType()] = true
	}
	if len(seen) != len(catalog[ChannelAudio]) {
		t.Fatalf("covered %d audio types, catalog has %d", len(seen), len(catalog[ChannelAudio]))
	}
}

func TestEncodingIsDeterministic(t *testing.T) {
	msgs := []Message{
		Hello{V: 1, Protocol: Version, Client: "web", Features: []string{"a", "b"}},
		TerminalOutput{Terminal: 1, Seq: 5, Data: []byte("abc"), AckRequired: true},
		SnapshotRequest{Target: SnapshotByPath{Path: "a.go"}, FileID: 2},
		UserMessage{ID: "m", User: ChatAuthor{ID: "u"}, Content: "c", SentAt: 1},
	}
	for _, m := range msgs {
		a, err := EncodeMessage(m)
		if err != nil {
			t.Fatal(err)
		}
		b, err := EncodeMessage(m)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(a, b) {
			t.Fatalf("%T: encodings differ:\n%x\n%x", m, a, b)
		}
	}
}

func TestEncodeAcceptsPointers(t *testing.T) {
	a, err := EncodeMessage(&Ack{Seq: 3})
	if err != nil {
		t.Fatal(err)
	}
	b, err := EncodeMessage(Ack{Seq: 3})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("pointer and value encodings should match")
	}
}

func TestEncodeUnknownMessage(t *testing.T) {
	_, err := EncodeMessage(struct{ X int }{1})
	if !errors.Is(err, ErrUnknownMessage) {
		t.Fatalf("expected ErrUnknownMessage, got %v", err)
	}
}

func TestDecodeUnknownPair(t *testing.T) {
	headers := []Header{
		{Channel: ChannelTerminal, Type: 10},
		{Channel: ChannelControl, Type: 200},
		{Channel: Channel(5), Type: 0},
		{Channel: Channel(255), Type: 255},
	}
	for _, h := range headers {
		frame, err := Encode(h, []byte{0x80})
		if err != nil {
			t.Fatal(err)
		}
		_, _, err = Decode(frame)
		if !errors.Is(err, ErrUnknownMessage) {
			t.Fatalf("%s/%d: expected ErrUnknownMessage, got %v", h.Channel, h.Type, err)
		}
		if Known(h.Channel, h.Type) {
			t.Fatalf("%s/%d should not be known", h.Channel, h.Type)
		}
	}
}

func TestDecodeUnsupportedVersion(t *testing.T) {
	hello, err := EncodeControl(Hello{V: 1, Protocol: 2, Client: "web"})
	if err != nil {
		t.Fatal(err)
	}
	hello[0] = 2
	h, msg, err := Decode(hello)
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
	if msg != nil {
		t.Fatal("payload must not be decoded for an unsupported version")
	}
	if h.Version != 2 || h.Channel != ChannelControl {
		t.Fatalf("header should still be returned: %+v", h)
	}
}

func TestDecodePayloadShapeMismatch(t *testing.T) {
	// A msgpack string where HELLO expects a map.
	frame, err := Encode(Header{Channel: ChannelControl, Type: uint8(ControlHello)}, []byte{0xA3, 'a', 'b', 'c'})
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = Decode(frame)
	if !errors.Is(err, ErrPayloadDecode) {
		t.Fatalf("expected ErrPayloadDecode, got %v", err)
	}
}

func TestCatalogIsConsistent(t *testing.T) {
	for ch, entries := range catalog {
		for typ, e := range entries {
			if !Known(Channel(ch), uint8(typ)) {
				t.Fatalf("%s/%d: gap in catalog", Channel(ch), typ)
			}
			var m Message
			if e.rawFn != nil {
				m = e.rawFn(Header{}, nil)
			} else {
				m = e.newFn()
			}
			gotCh, gotTyp, ok := kindOf(m)
			if !ok || gotCh != Channel(ch) || gotTyp != uint8(typ) {
				t.Fatalf("%s %s: constructor yields %T (%s/%d)", Channel(ch), e.name, m, gotCh, gotTyp)
			}
			if TypeName(Channel(ch), uint8(typ)) != e.name {
				t.Fatalf("%s/%d: name mismatch", Channel(ch), typ)
			}
		}
	}
}

func TestRouteByHeaderOnly(t *testing.T) {
	var frames [][]byte
	add := func(m Message) {
		f, err := EncodeMessage(m)
		if err != nil {
			t.Fatal(err)
		}
		frames = append(frames, f)
	}
	add(Hello{V: 1, Protocol: Version, Client: "web"})
	add(UserMessage{ID: "m2", User: ChatAuthor{ID: "u2", Username: "user2"}, Content: "hey", SentAt: 1})
	add(CodeSnapshot{State: []byte{0, 1, 2}})
	add(TerminalOpen{ID: 123, Name: "Terminal 1", Cols: 80, Rows: 24})
	add(SubscribeAll{})

	seen := make(map[Channel]int)
	for _, f := range frames {
		h, _, err := DecodeHeaderOnly(f)
		if err != nil {
			t.Fatal(err)
		}
		seen[h.Channel]++
	}
	for _, ch := range []Channel{ChannelControl, ChannelChat, ChannelCode, ChannelTerminal, ChannelAudio} {
		if seen[ch] != 1 {
			t.Fatalf("%s: counted %d frames, want 1", ch, seen[ch])
		}
	}
}
