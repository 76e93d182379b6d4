package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nqh2610/lophoconline-sub002/internal/domain"
	"github.com/nqh2610/lophoconline-sub002/internal/repository"
	"github.com/nqh2610/lophoconline-sub002/internal/transport"
	"github.com/pion/webrtc/v3"
)

var ErrInvalidRequest = errors.New("room id and peer id are required")

// SignalingService is a stateless protocol layer over the room registry and
// the push transport. Expected absences (missing room, missing peer) are
// no-ops: in-flight messages routinely race with leave and eviction.
type SignalingService struct {
	registry       repository.RoomRegistry
	notifier       transport.Notifier
	log            *slog.Logger
	reconnectGrace time.Duration
}

func NewSignalingService(registry repository.RoomRegistry, notifier transport.Notifier, log *slog.Logger, reconnectGrace time.Duration) *SignalingService {
	if log == nil {
		log = slog.Default()
	}
	return &SignalingService{
		registry:       registry,
		notifier:       notifier,
		log:            log,
		reconnectGrace: reconnectGrace,
	}
}

// Join inserts a fresh peer record, evicting stale records left behind by
// the same human (page reloads produce a new peer id), and elects the SDP
// offer initiator. The peer with the lexicographically smaller id initiates;
// the comparison uses the raw id strings so both sides can compute the same
// answer independently.
func (s *SignalingService) Join(ctx context.Context, req JoinRequest) (*JoinResult, error) {
	const op = "service.signaling.join"
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.RoomID == "" || req.PeerID == "" {
		return nil, ErrInvalidRequest
	}
	log := s.log.With(
		slog.String("op", op),
		slog.String("room_id", req.RoomID),
		slog.String("peer_id", req.PeerID),
	)

	room := s.registry.GetOrCreate(req.RoomID)
	peer := domain.NewPeer(req.PeerID, req.UserID, req.UserName, req.Role)
	now := time.Now().UTC()

	// Scan, snapshot and insert under one lock so concurrent joins on the
	// same room cannot interleave.
	room.Mutex.Lock()
	var evicted []*domain.Peer
	for id, p := range room.Peers {
		if id == req.PeerID {
			continue
		}
		if p.SameIdentity(req.UserID, req.UserName) && p.StaleAfter(now, s.reconnectGrace) {
			delete(room.Peers, id)
			evicted = append(evicted, p)
		}
	}
	existing := room.PeersInOrder()
	room.Peers[peer.ID] = peer
	room.Mutex.Unlock()

	for _, p := range evicted {
		log.Info("evicted stale peer", slog.String("stale_peer_id", p.ID))
		s.notifier.Broadcast(req.RoomID, p.ID, domain.Event{
			Name:    domain.EventPeerLeft,
			Payload: domain.PeerLeftPayload{PeerID: p.ID},
		})
	}

	result := &JoinResult{Peers: make([]domain.PeerInfo, 0, len(existing))}
	for _, p := range existing {
		result.Peers = append(result.Peers, domain.PeerInfo{
			PeerID:   p.ID,
			UserName: p.UserName,
			Role:     p.Role,
		})
	}

	if len(existing) > 0 {
		result.ShouldInitiate = req.PeerID < existing[0].ID
		s.notifier.Broadcast(req.RoomID, req.PeerID, domain.Event{
			Name: domain.EventPeerJoined,
			Payload: domain.PeerJoinedPayload{
				PeerID:         peer.ID,
				UserName:       peer.UserName,
				Role:           peer.Role,
				ShouldInitiate: !result.ShouldInitiate,
			},
		})
	}

	log.Info("peer joined",
		slog.Int64("user_id", req.UserID),
		slog.Int("existing_peers", len(existing)),
		slog.Bool("should_initiate", result.ShouldInitiate),
	)
	return result, nil
}

func (s *SignalingService) Offer(ctx context.Context, roomID, peerID string, offer webrtc.SessionDescription, toPeerID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if roomID == "" || peerID == "" {
		return ErrInvalidRequest
	}

	if room, ok := s.registry.Get(roomID); ok {
		room.Mutex.Lock()
		if p, ok := room.Peers[peerID]; ok {
			p.Offer = &offer
			p.Touch()
		}
		room.Mutex.Unlock()
	}

	event := domain.Event{
		Name:    domain.EventOffer,
		Payload: domain.OfferPayload{FromPeerID: peerID, Offer: &offer},
	}
	s.relay(roomID, peerID, toPeerID, event)
	return nil
}

func (s *SignalingService) Answer(ctx context.Context, roomID, peerID string, answer webrtc.SessionDescription, toPeerID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if roomID == "" || peerID == "" {
		return ErrInvalidRequest
	}

	if room, ok := s.registry.Get(roomID); ok {
		room.Mutex.Lock()
		if p, ok := room.Peers[peerID]; ok {
			p.Answer = &answer
			p.Touch()
		}
		room.Mutex.Unlock()
	}

	event := domain.Event{
		Name:    domain.EventAnswer,
		Payload: domain.AnswerPayload{FromPeerID: peerID, Answer: &answer},
	}
	s.relay(roomID, peerID, toPeerID, event)
	return nil
}

// Ice accumulates the candidate on the caller's record and broadcasts it.
// Candidates are never targeted: several usually arrive before the remote
// side's identity is pinned down.
func (s *SignalingService) Ice(ctx context.Context, roomID, peerID string, candidate webrtc.ICECandidateInit) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if roomID == "" || peerID == "" {
		return ErrInvalidRequest
	}

	if room, ok := s.registry.Get(roomID); ok {
		room.Mutex.Lock()
		if p, ok := room.Peers[peerID]; ok {
			p.Candidates = append(p.Candidates, candidate)
			p.Touch()
		}
		room.Mutex.Unlock()
	}

	s.notifier.Broadcast(roomID, peerID, domain.Event{
		Name:    domain.EventICECandidate,
		Payload: domain.CandidatePayload{FromPeerID: peerID, Candidate: candidate},
	})
	return nil
}

// Poll re-reads the target peer's stored signaling state. Degraded-mode
// alternative for clients that cannot hold a push channel open; doubles as
// a liveness heartbeat for the caller.
func (s *SignalingService) Poll(ctx context.Context, roomID, peerID, targetPeerID string) (*PollResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if roomID == "" || peerID == "" || targetPeerID == "" {
		return nil, ErrInvalidRequest
	}

	room, ok := s.registry.Get(roomID)
	if !ok {
		return &PollResult{Success: false}, nil
	}

	room.Mutex.Lock()
	defer room.Mutex.Unlock()

	if p, ok := room.Peers[peerID]; ok {
		p.Touch()
	}

	target, ok := room.Peers[targetPeerID]
	if !ok {
		return &PollResult{Success: false}, nil
	}

	candidates := make([]webrtc.ICECandidateInit, len(target.Candidates))
	copy(candidates, target.Candidates)

	return &PollResult{
		Success:       true,
		Offer:         target.Offer,
		Answer:        target.Answer,
		IceCandidates: candidates,
	}, nil
}

// Leave removes the peer record and notifies the rest of the room. A leave
// for an already-absent peer is a no-op success.
func (s *SignalingService) Leave(ctx context.Context, roomID, peerID string) error {
	const op = "service.signaling.leave"
	if err := ctx.Err(); err != nil {
		return err
	}
	if roomID == "" || peerID == "" {
		return ErrInvalidRequest
	}

	room, ok := s.registry.Get(roomID)
	if !ok {
		return nil
	}

	room.Mutex.Lock()
	_, existed := room.Peers[peerID]
	delete(room.Peers, peerID)
	room.Mutex.Unlock()

	if existed {
		s.log.Info("peer left",
			slog.String("op", op),
			slog.String("room_id", roomID),
			slog.String("peer_id", peerID),
		)
		s.notifier.Broadcast(roomID, peerID, domain.Event{
			Name:    domain.EventPeerLeft,
			Payload: domain.PeerLeftPayload{PeerID: peerID},
		})
	}

	s.registry.RemoveIfEmpty(roomID)
	return nil
}

// Refresh mutates nothing; it tells the remote party to tear down and rejoin
// instead of waiting for ICE failure detection.
func (s *SignalingService) Refresh(ctx context.Context, roomID, peerID, reason, newPeerID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if roomID == "" || peerID == "" {
		return ErrInvalidRequest
	}

	s.notifier.Broadcast(roomID, peerID, domain.Event{
		Name: domain.EventRefresh,
		Payload: domain.RefreshPayload{
			FromPeerID: peerID,
			Reason:     reason,
			NewPeerID:  newPeerID,
		},
	})
	return nil
}

// BackgroundSettings relays virtual-background settings untouched.
func (s *SignalingService) BackgroundSettings(ctx context.Context, req BackgroundSettingsRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if req.RoomID == "" || req.PeerID == "" {
		return ErrInvalidRequest
	}

	if room, ok := s.registry.Get(req.RoomID); ok {
		room.Mutex.Lock()
		if p, ok := room.Peers[req.PeerID]; ok {
			p.Touch()
		}
		room.Mutex.Unlock()
	}

	event := domain.Event{
		Name: domain.EventVBGSettings,
		Payload: domain.VBGSettingsPayload{
			FromPeerID:      req.PeerID,
			Enabled:         req.Enabled,
			Mode:            req.Mode,
			BlurAmount:      req.BlurAmount,
			BackgroundImage: req.BackgroundImage,
		},
	}
	s.relay(req.RoomID, req.PeerID, req.ToPeerID, event)
	return nil
}

// ListPeers returns every other peer in the room with its signaling progress
// flags, refreshing the caller's activity as a polling-mode heartbeat.
func (s *SignalingService) ListPeers(ctx context.Context, roomID, peerID string) ([]domain.PeerStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if roomID == "" || peerID == "" {
		return nil, ErrInvalidRequest
	}

	room, ok := s.registry.Get(roomID)
	if !ok {
		return []domain.PeerStatus{}, nil
	}

	room.Mutex.Lock()
	defer room.Mutex.Unlock()

	if p, ok := room.Peers[peerID]; ok {
		p.Touch()
	}

	statuses := make([]domain.PeerStatus, 0, len(room.Peers))
	for _, p := range room.PeersInOrder() {
		if p.ID == peerID {
			continue
		}
		statuses = append(statuses, domain.PeerStatus{
			PeerID:    p.ID,
			UserName:  p.UserName,
			Role:      p.Role,
			HasOffer:  p.Offer != nil,
			HasAnswer: p.Answer != nil,
			IceCount:  len(p.Candidates),
		})
	}
	return statuses, nil
}

// relay unicasts when a target peer is named and falls back to a broadcast
// that excludes the sender otherwise.
func (s *SignalingService) relay(roomID, fromPeerID, toPeerID string, event domain.Event) {
	if toPeerID != "" {
		if !s.notifier.Unicast(roomID, toPeerID, event) {
			s.log.Debug("unicast target has no open channel",
				slog.String("room_id", roomID),
				slog.String("target_peer_id", toPeerID),
				slog.String("event", event.Name),
			)
		}
		return
	}
	s.notifier.Broadcast(roomID, fromPeerID, event)
}
