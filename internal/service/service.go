package service

import (
	"context"

	"github.com/nqh2610/lophoconline-sub002/internal/domain"
	"github.com/pion/webrtc/v3"
)

type JoinRequest struct {
	RoomID   string
	PeerID   string
	UserID   int64
	UserName string
	Role     string
}

type JoinResult struct {
	Peers          []domain.PeerInfo `json:"peers"`
	ShouldInitiate bool              `json:"shouldInitiate"`
}

type PollResult struct {
	Success       bool                       `json:"success"`
	Offer         *webrtc.SessionDescription `json:"offer,omitempty"`
	Answer        *webrtc.SessionDescription `json:"answer,omitempty"`
	IceCandidates []webrtc.ICECandidateInit  `json:"iceCandidates,omitempty"`
}

type BackgroundSettingsRequest struct {
	RoomID          string
	PeerID          string
	ToPeerID        string
	Enabled         bool
	Mode            string
	BlurAmount      int
	BackgroundImage string
}

type SignalingInteractor interface {
	Join(ctx context.Context, req JoinRequest) (*JoinResult, error)
	Offer(ctx context.Context, roomID, peerID string, offer webrtc.SessionDescription, toPeerID string) error
	Answer(ctx context.Context, roomID, peerID string, answer webrtc.SessionDescription, toPeerID string) error
	Ice(ctx context.Context, roomID, peerID string, candidate webrtc.ICECandidateInit) error
	Poll(ctx context.Context, roomID, peerID, targetPeerID string) (*PollResult, error)
	Leave(ctx context.Context, roomID, peerID string) error
	Refresh(ctx context.Context, roomID, peerID, reason, newPeerID string) error
	BackgroundSettings(ctx context.Context, req BackgroundSettingsRequest) error
	ListPeers(ctx context.Context, roomID, peerID string) ([]domain.PeerStatus, error)
}
