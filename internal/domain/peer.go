package domain

import (
	"time"

	"github.com/pion/webrtc/v3"
)

const DefaultRole = "participant"

// Peer represents a single connection attempt by one participant in a room.
// A page reload produces a fresh Peer with a new ID for the same human; the
// old record lingers until join-time eviction or the sweeper reclaims it.
//
// All fields are guarded by the owning Room's mutex.
type Peer struct {
	ID           string
	UserID       int64 // 0 means anonymous
	UserName     string
	Role         string
	Offer        *webrtc.SessionDescription
	Answer       *webrtc.SessionDescription
	Candidates   []webrtc.ICECandidateInit
	JoinedAt     time.Time
	LastActivity time.Time
}

func NewPeer(id string, userID int64, userName, role string) *Peer {
	if role == "" {
		role = DefaultRole
	}
	now := time.Now().UTC()
	return &Peer{
		ID:           id,
		UserID:       userID,
		UserName:     userName,
		Role:         role,
		JoinedAt:     now,
		LastActivity: now,
	}
}

// Touch refreshes the activity timestamp.
func (p *Peer) Touch() {
	p.LastActivity = time.Now().UTC()
}

// StaleAfter reports whether the peer has been silent for longer than
// threshold. Join-time eviction, poll heartbeats and the sweeper all decide
// liveness through this single predicate.
func (p *Peer) StaleAfter(now time.Time, threshold time.Duration) bool {
	return now.Sub(p.LastActivity) > threshold
}

// SameIdentity reports whether the given identity describes the same human
// as p: a matching non-zero user id, or a matching display name when both
// sides are anonymous.
func (p *Peer) SameIdentity(userID int64, userName string) bool {
	if userID != 0 {
		return p.UserID == userID
	}
	return p.UserID == 0 && p.UserName == userName
}
