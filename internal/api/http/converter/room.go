package converter

import (
	"time"

	"github.com/nqh2610/lophoconline-sub002/internal/domain"
)

type RoomResponse struct {
	RoomID    string         `json:"roomId"`
	CreatedAt time.Time      `json:"createdAt"`
	Peers     []PeerResponse `json:"peers"`
}

type PeerResponse struct {
	PeerID       string    `json:"peerId"`
	UserID       int64     `json:"userId"`
	UserName     string    `json:"userName"`
	Role         string    `json:"role"`
	JoinedAt     time.Time `json:"joinedAt"`
	LastActivity time.Time `json:"lastActivity"`
	HasOffer     bool      `json:"hasOffer"`
	HasAnswer    bool      `json:"hasAnswer"`
	IceCount     int       `json:"iceCount"`
}

func RoomToApi(r *domain.Room) RoomResponse {
	r.Mutex.RLock()
	defer r.Mutex.RUnlock()

	peers := make([]PeerResponse, 0, len(r.Peers))
	for _, peer := range r.PeersInOrder() {
		peers = append(peers, PeerResponse{
			PeerID:       peer.ID,
			UserID:       peer.UserID,
			UserName:     peer.UserName,
			Role:         peer.Role,
			JoinedAt:     peer.JoinedAt,
			LastActivity: peer.LastActivity,
			HasOffer:     peer.Offer != nil,
			HasAnswer:    peer.Answer != nil,
			IceCount:     len(peer.Candidates),
		})
	}

	return RoomResponse{
		RoomID:    r.ID,
		CreatedAt: r.CreatedAt,
		Peers:     peers,
	}
}

func RoomsToApi(rooms []*domain.Room) []RoomResponse {
	result := make([]RoomResponse, 0, len(rooms))
	for _, room := range rooms {
		result = append(result, RoomToApi(room))
	}
	return result
}
