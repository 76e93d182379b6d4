package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/nqh2610/lophoconline-sub002/internal/domain"
	"github.com/nqh2610/lophoconline-sub002/internal/repository"
	"github.com/nqh2610/lophoconline-sub002/internal/transport"
)

// Sweeper reclaims peers whose client vanished without sending leave (crash,
// network loss, closed laptop lid) and garbage-collects emptied rooms. It is
// the only mechanism that does so independent of the transport's lifetime.
//
// Its inactivity timeout is deliberately a separate, longer constant than the
// join-time reconnect grace: a reloading client should be evicted quickly by
// the incoming join, while a merely quiet one gets more slack.
type Sweeper struct {
	registry repository.RoomRegistry
	notifier transport.Notifier
	log      *slog.Logger
	interval time.Duration
	timeout  time.Duration
}

func NewSweeper(registry repository.RoomRegistry, notifier transport.Notifier, log *slog.Logger, interval, timeout time.Duration) *Sweeper {
	if log == nil {
		log = slog.Default()
	}
	return &Sweeper{
		registry: registry,
		notifier: notifier,
		log:      log,
		interval: interval,
		timeout:  timeout,
	}
}

// Run sweeps on a fixed period until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep runs a single pass over every room.
func (s *Sweeper) Sweep() {
	const op = "service.sweeper.sweep"
	now := time.Now().UTC()

	for _, room := range s.registry.Rooms() {
		var expired []*domain.Peer

		room.Mutex.Lock()
		for id, p := range room.Peers {
			if p.StaleAfter(now, s.timeout) {
				delete(room.Peers, id)
				expired = append(expired, p)
			}
		}
		empty := len(room.Peers) == 0
		room.Mutex.Unlock()

		for _, p := range expired {
			s.log.Info("peer timed out",
				slog.String("op", op),
				slog.String("room_id", room.ID),
				slog.String("peer_id", p.ID),
			)
			s.notifier.Broadcast(room.ID, p.ID, domain.Event{
				Name:    domain.EventPeerLeft,
				Payload: domain.PeerLeftPayload{PeerID: p.ID},
			})
		}

		if empty {
			s.registry.RemoveIfEmpty(room.ID)
		}
	}
}
