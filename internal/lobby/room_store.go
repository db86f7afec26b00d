package lobby

import (
	"sync"

	"github.com/google/uuid"
)

// RoomStore manages active rooms in memory.
type RoomStore struct {
	mu    sync.Mutex
	rooms map[uuid.UUID]*Room
}

// NewRoomStore returns an empty in-memory store.
func NewRoomStore() *RoomStore {
	return &RoomStore{rooms: make(map[uuid.UUID]*Room)}
}

// Add stores the room.
func (s *RoomStore) Add(room *Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ID] = room
}

// Delete removes the room. Idempotent.
func (s *RoomStore) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
}

// Get retrieves a room if it exists.
func (s *RoomStore) Get(id uuid.UUID) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	return r, ok
}

// List returns a copy of all active rooms.
func (s *RoomStore) List() []*Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, r)
	}
	return out
}

// FindByMember returns the room a player is seated in. Players occupy at
// most one room at a time.
func (s *RoomStore) FindByMember(playerID uuid.UUID) (*Room, bool) {
	s.mu.Lock()
	rooms := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		rooms = append(rooms, r)
	}
	s.mu.Unlock()

	for _, r := range rooms {
		if r.HasMember(playerID) {
			return r, true
		}
	}
	return nil, false
}
