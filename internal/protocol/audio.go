package protocol

// AudioMessage is an audio signaling payload. The channel is session-scoped:
// audio frames always carry fileId 0 and txnId 0.
type AudioMessage interface {
	AudioType() AudioType
}

// EncodeAudio frames an audio signaling message.
func EncodeAudio(m AudioMessage) ([]byte, error) {
	return EncodeMessage(m)
}

// TrackRef names one track held by the SFU.
type TrackRef struct {
	SessionID string `msgpack:"sessionId"`
	TrackName string `msgpack:"trackName"`
}

// Publisher is one speaker in the multi-publisher catalog.
type Publisher struct {
	UserID    string `msgpack:"userId"`
	SessionID string `msgpack:"sessionId"`
	TrackName string `msgpack:"trackName"`
	Muted     bool   `msgpack:"muted,omitempty"`
}

// Single publisher flow.

type StartIntent struct{}

type WebRTCOffer struct {
	SDP       string `msgpack:"sdp"`
	SessionID string `msgpack:"sessionId,omitempty"`
}

type WebRTCAnswer struct {
	SDP       string `msgpack:"sdp"`
	SessionID string `msgpack:"sessionId,omitempty"`
}

type TracksPublish struct {
	SessionID string     `msgpack:"sessionId"`
	Tracks    []TrackRef `msgpack:"tracks"`
}

type Available struct {
	SessionID string `msgpack:"sessionId"`
	TrackName string `msgpack:"trackName"`
}

type Unavailable struct {
	Reason string `msgpack:"reason,omitempty"`
}

// Multi-publisher flow.

type Catalog struct {
	Publishers []Publisher `msgpack:"publishers"`
}

type GrantMic struct {
	UserID string `msgpack:"userId"`
}

type RevokeMic struct {
	UserID string `msgpack:"userId"`
}

type SpeakEnable struct {
	GrantedBy string `msgpack:"grantedBy,omitempty"`
}

type SpeakDisable struct {
	Reason string `msgpack:"reason,omitempty"`
}

type TracksAdded struct {
	Publishers []Publisher `msgpack:"publishers"`
}

type TracksRemoved struct {
	Publishers []Publisher `msgpack:"publishers"`
}

// Subscription and renegotiation.

type Subscribe struct {
	Tracks []TrackRef `msgpack:"tracks"`
}

type SubscribeAll struct{}

type RenegotiateOffer struct {
	SDP       string `msgpack:"sdp"`
	SessionID string `msgpack:"sessionId,omitempty"`
}

type RenegotiateAnswer struct {
	SDP       string `msgpack:"sdp"`
	SessionID string `msgpack:"sessionId,omitempty"`
}

type Subscribed struct {
	Tracks []TrackRef `msgpack:"tracks"`
}

func (StartIntent) AudioType() AudioType       { return AudioStartIntent }
func (WebRTCOffer) AudioType() AudioType       { return AudioWebRTCOffer }
func (WebRTCAnswer) AudioType() AudioType      { return AudioWebRTCAnswer }
func (TracksPublish) AudioType() AudioType     { return AudioTracksPublish }
func (Available) AudioType() AudioType         { return AudioAvailable }
func (Unavailable) AudioType() AudioType       { return AudioUnavailable }
func (Catalog) AudioType() AudioType           { return AudioCatalog }
func (GrantMic) AudioType() AudioType          { return AudioGrantMic }
func (RevokeMic) AudioType() AudioType         { return AudioRevokeMic }
func (SpeakEnable) AudioType() AudioType       { return AudioSpeakEnable }
func (SpeakDisable) AudioType() AudioType      { return AudioSpeakDisable }
func (TracksAdded) AudioType() AudioType       { return AudioTracksAdded }
func (TracksRemoved) AudioType() AudioType     { return AudioTracksRemoved }
func (Subscribe) AudioType() AudioType         { return AudioSubscribe }
func (SubscribeAll) AudioType() AudioType      { return AudioSubscribeAll }
func (RenegotiateOffer) AudioType() AudioType  { return AudioRenegotiateOffer }
func (RenegotiateAnswer) AudioType() AudioType { return AudioRenegotiateAnswer }
func (Subscribed) AudioType() AudioType        { return AudioSubscribed }
