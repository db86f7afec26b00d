package lobby

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/uno-online/server/internal/game"
	"github.com/uno-online/server/internal/protocol"
)

var (
	ErrRoomFull        = errors.New("room is full")
	ErrAlreadyInRoom   = errors.New("player is already in the room")
	ErrWrongPassword   = errors.New("invalid room password")
	ErrNotRoomCreator  = errors.New("only the room creator may do that")
	ErrGameInProgress  = errors.New("game is already in progress")
	ErrNotEnoughSeated = errors.New("need at least two players to start")
)

// Member is one seated player. The member identity doubles as the
// connection identity assigned by the listener.
type Member struct {
	ID   uuid.UUID
	Name string
}

// Room groups players waiting for, or playing, a single game. Join order
// defines the turn order when the game starts.
type Room struct {
	ID         uuid.UUID
	Name       string
	Password   string
	MaxPlayers int
	CreatorID  uuid.UUID
	Rules      game.Rules

	mu      sync.Mutex
	members []*Member
	inGame  bool
}

// NewRoom creates an empty room owned by creatorID.
func NewRoom(name, password string, maxPlayers int, creatorID uuid.UUID, rules game.Rules) *Room {
	return &Room{
		ID:         uuid.New(),
		Name:       name,
		Password:   password,
		MaxPlayers: maxPlayers,
		CreatorID:  creatorID,
		Rules:      rules,
	}
}

// AddMember seats the player, enforcing capacity and the password.
func (r *Room) AddMember(m *Member, password string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Password != "" && r.Password != password {
		return ErrWrongPassword
	}
	if len(r.members) >= r.MaxPlayers {
		return ErrRoomFull
	}
	for _, existing := range r.members {
		if existing.ID == m.ID {
			return ErrAlreadyInRoom
		}
	}
	r.members = append(r.members, m)
	return nil
}

// RemoveMember unseats the player. Idempotent; reports whether the room is
// now empty so the caller can discard it.
func (r *Room) RemoveMember(id uuid.UUID) (empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.members {
		if m.ID == id {
			r.members = append(r.members[:i], r.members[i+1:]...)
			break
		}
	}
	return len(r.members) == 0
}

// Members returns the seated players in join order.
func (r *Room) Members() []*Member {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Member, len(r.members))
	copy(out, r.members)
	return out
}

// MemberIDs returns the seated player identities in join order.
func (r *Room) MemberIDs() []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]uuid.UUID, len(r.members))
	for i, m := range r.members {
		ids[i] = m.ID
	}
	return ids
}

// HasMember reports whether id is seated.
func (r *Room) HasMember(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m.ID == id {
			return true
		}
	}
	return false
}

// MemberName returns the display name for id.
func (r *Room) MemberName(id uuid.UUID) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m.ID == id {
			return m.Name
		}
	}
	return ""
}

// Len counts the seated players.
func (r *Room) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// SetInGame flips the playing flag.
func (r *Room) SetInGame(inGame bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inGame = inGame
}

// InGame reports whether a session is running for this room.
func (r *Room) InGame() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inGame
}

// Status maps the playing flag to the wire-level room status.
func (r *Room) Status() protocol.RoomStatus {
	if r.InGame() {
		return protocol.RoomInProgress
	}
	return protocol.RoomWaiting
}
