package game

import "github.com/google/uuid"

// PlayerSummary is the public view of one seat. Hands stay private; only the
// card count travels.
type PlayerSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CardCount int       `json:"cardCount"`
	HasUno    bool      `json:"hasUno"`
}

// Snapshot is an immutable view of the session, safe to hand to the transport
// layer after the session lock is released.
type Snapshot struct {
	RoomID          uuid.UUID         `json:"roomId"`
	State           State             `json:"state"`
	Players         []PlayerSummary   `json:"players"`
	TopCard         Card              `json:"topCard"`
	ActiveColor     CardColor         `json:"activeColor"`
	CurrentPlayerID uuid.UUID         `json:"currentPlayerId"`
	Direction       Direction         `json:"direction"`
	WinnerID        uuid.UUID         `json:"winnerId"`
	Scores          map[string]int    `json:"scores,omitempty"`
}

// Snapshot builds the public view of the current session state.
func (s *Session) Snapshot() Snapshot { return s.snapshot() }

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		RoomID:          s.RoomID,
		State:           s.state,
		ActiveColor:     s.activeColor,
		CurrentPlayerID: s.players[s.turn].ID,
		Direction:       s.direction,
		WinnerID:        s.winnerID,
	}
	if top, err := s.piles.Top(); err == nil {
		snap.TopCard = top
	}
	for _, p := range s.players {
		snap.Players = append(snap.Players, PlayerSummary{
			ID:        p.ID,
			Name:      p.Name,
			CardCount: p.CardCount(),
			HasUno:    p.HasDeclaredUno(),
		})
	}
	if len(s.scores) > 0 {
		snap.Scores = make(map[string]int, len(s.scores))
		for id, score := range s.scores {
			snap.Scores[id.String()] = score
		}
	}
	return snap
}
