package repository

import (
	"github.com/nqh2610/lophoconline-sub002/internal/domain"
)

// RoomRegistry owns the process-wide table of active rooms. All state is
// memory-resident: a restart drops every room and clients re-join.
//
// Operations on a nonexistent room behave as if the room were empty; the
// registry never errors on absence.
type RoomRegistry interface {
	GetOrCreate(roomID string) *domain.Room
	Get(roomID string) (*domain.Room, bool)
	RemoveIfEmpty(roomID string)
	Rooms() []*domain.Room
	Reset() int
}
