package domain

import "github.com/pion/webrtc/v3"

// Push event names delivered over the server-to-client channel.
const (
	EventConnected    = "connected"
	EventPeerJoined   = "peer-joined"
	EventPeerLeft     = "peer-left"
	EventOffer        = "offer"
	EventAnswer       = "answer"
	EventICECandidate = "ice-candidate"
	EventRefresh      = "refresh"
	EventVBGSettings  = "vbg-settings"
)

// Event is one named message on a peer's push channel.
type Event struct {
	Name    string `json:"event"`
	Payload any    `json:"data"`
}

type ConnectedPayload struct {
	PeerID string `json:"peerId"`
}

type PeerJoinedPayload struct {
	PeerID         string `json:"peerId"`
	UserName       string `json:"userName"`
	Role           string `json:"role"`
	ShouldInitiate bool   `json:"shouldInitiate"`
}

type PeerLeftPayload struct {
	PeerID string `json:"peerId"`
}

type OfferPayload struct {
	FromPeerID string                     `json:"fromPeerId"`
	Offer      *webrtc.SessionDescription `json:"offer"`
}

type AnswerPayload struct {
	FromPeerID string                     `json:"fromPeerId"`
	Answer     *webrtc.SessionDescription `json:"answer"`
}

type CandidatePayload struct {
	FromPeerID string                  `json:"fromPeerId"`
	Candidate  webrtc.ICECandidateInit `json:"candidate"`
}

type RefreshPayload struct {
	FromPeerID string `json:"fromPeerId"`
	Reason     string `json:"reason"`
	NewPeerID  string `json:"newPeerId,omitempty"`
}

// VBGSettingsPayload relays virtual-background settings between peers.
// The server never interprets it.
type VBGSettingsPayload struct {
	FromPeerID      string `json:"fromPeerId"`
	Enabled         bool   `json:"enabled"`
	Mode            string `json:"mode"`
	BlurAmount      int    `json:"blurAmount,omitempty"`
	BackgroundImage string `json:"backgroundImage,omitempty"`
}

// PeerInfo is the roster entry returned from a join.
type PeerInfo struct {
	PeerID   string `json:"peerId"`
	UserName string `json:"userName"`
	Role     string `json:"role"`
}

// PeerStatus extends the roster entry with signaling progress flags for
// clients operating in polling mode.
type PeerStatus struct {
	PeerID    string `json:"peerId"`
	UserName  string `json:"userName"`
	Role      string `json:"role"`
	HasOffer  bool   `json:"hasOffer"`
	HasAnswer bool   `json:"hasAnswer"`
	IceCount  int    `json:"iceCount"`
}
