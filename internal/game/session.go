package game

import (
	"math/rand"

	"github.com/google/uuid"
)

// State is the session's lifecycle phase.
type State string

const (
	// StateInProgress is the normal waiting-for-a-turn phase.
	StateInProgress State = "IN_PROGRESS"
	// StateAwaitingColorChoice is active only while a just-played wild card is
	// being resolved to a color; the next turn is not legal until then.
	StateAwaitingColorChoice State = "AWAITING_COLOR_CHOICE"
	// StateFinished means a player emptied their hand and won.
	StateFinished State = "FINISHED"
	// StateAborted means the session died from resource exhaustion.
	StateAborted State = "ABORTED"
)

// Direction of turn rotation: +1 clockwise, -1 counter-clockwise.
type Direction int

const (
	Clockwise        Direction = 1
	CounterClockwise Direction = -1
)

// Session is the turn-based state machine for one room. It is not internally
// synchronized: all access after creation must go through Store.WithSession,
// which serializes concurrent actions on the same room.
type Session struct {
	RoomID uuid.UUID

	rules   Rules
	players []*PlayerState // turn order is slice order, fixed at creation
	piles   *Piles

	turn      int
	direction Direction
	// activeColor is the color in effect for legality checks. It diverges
	// from the discard top's printed color after a wild is resolved.
	activeColor CardColor
	state       State
	winnerID    uuid.UUID
	scores      map[uuid.UUID]int
}

// NewSession shuffles a standard deck, deals each player their starting hand,
// and reveals the first discard card. The players slice fixes the turn order
// for the whole game; there are no mid-game roster changes.
func NewSession(roomID uuid.UUID, players []*PlayerState, rules Rules, rng *rand.Rand) (*Session, error) {
	piles := NewPiles(NewStandardDeck(rng), rng)
	s := &Session{
		RoomID:    roomID,
		rules:     rules,
		players:   players,
		piles:     piles,
		direction: Clockwise,
		state:     StateInProgress,
		scores:    make(map[uuid.UUID]int),
	}
	for _, p := range players {
		for i := 0; i < rules.InitialHandSize; i++ {
			card, err := piles.Draw()
			if err != nil {
				return nil, err
			}
			p.AddCard(card)
		}
	}
	top, err := piles.Top()
	if err != nil {
		return nil, err
	}
	s.activeColor = top.Color
	return s, nil
}

// State returns the current lifecycle phase.
func (s *Session) State() State { return s.state }

// HandOf returns a copy of the given player's hand for private delivery.
func (s *Session) HandOf(playerID uuid.UUID) ([]Card, bool) {
	for _, p := range s.players {
		if p.ID == playerID {
			return p.Hand(), true
		}
	}
	return nil, false
}

// PlayCard moves the current player's card at cardIndex to the discard pile,
// applies its effect, and advances the turn. Wild cards must arrive with a
// chosenColor; without one the call fails and the session is untouched.
func (s *Session) PlayCard(playerID uuid.UUID, cardIndex int, chosenColor *CardColor) (Snapshot, error) {
	if s.state != StateInProgress || s.players[s.turn].ID != playerID {
		return Snapshot{}, ErrNotPlayersTurn
	}
	player := s.players[s.turn]

	card, err := player.CardAt(cardIndex)
	if err != nil {
		return Snapshot{}, err
	}
	if !s.canPlay(card, player) {
		return Snapshot{}, ErrIllegalPlay
	}
	if card.IsWild() && (chosenColor == nil || !IsPlayableColor(*chosenColor)) {
		return Snapshot{}, ErrMissingColorChoice
	}

	// House rule: playing down to one card without a standing declaration
	// costs penalty draws. The penalty appends to the hand, so cardIndex
	// stays valid.
	if s.rules.UnoPenaltyDraw > 0 && player.CardCount() == 2 && !player.HasDeclaredUno() {
		if err := s.forceDraw(player, s.rules.UnoPenaltyDraw); err != nil {
			return s.abort(err)
		}
	}

	played, err := player.RemoveCardAt(cardIndex)
	if err != nil {
		return Snapshot{}, err
	}
	s.piles.Play(played)

	if played.IsWild() {
		s.state = StateAwaitingColorChoice
		s.activeColor = *chosenColor
	} else {
		s.activeColor = played.Color
	}

	if err := s.applyEffect(played); err != nil {
		return s.abort(err)
	}

	if player.CardCount() == 0 {
		s.finish(player)
		return s.snapshot(), nil
	}
	s.state = StateInProgress
	return s.snapshot(), nil
}

// DrawCard draws one card into the current player's hand and ends their turn.
// There is no draw-then-play chaining: drawing completes the turn.
func (s *Session) DrawCard(playerID uuid.UUID) (Snapshot, error) {
	if s.state != StateInProgress || s.players[s.turn].ID != playerID {
		return Snapshot{}, ErrNotPlayersTurn
	}
	player := s.players[s.turn]
	card, err := s.piles.Draw()
	if err != nil {
		return s.abort(err)
	}
	player.AddCard(card)
	s.advance(1)
	return s.snapshot(), nil
}

// SayUno records the player's two-card declaration.
func (s *Session) SayUno(playerID uuid.UUID) (Snapshot, error) {
	if s.state == StateFinished || s.state == StateAborted {
		return Snapshot{}, ErrNotPlayersTurn
	}
	player := s.playerByID(playerID)
	if player == nil {
		return Snapshot{}, ErrNotPlayersTurn
	}
	if err := player.DeclareUno(); err != nil {
		return Snapshot{}, err
	}
	return s.snapshot(), nil
}

// canPlay checks card against the discard top under the color in effect.
func (s *Session) canPlay(card Card, player *PlayerState) bool {
	top, err := s.piles.Top()
	if err != nil {
		return false
	}
	switch card.Type {
	case TypeWild:
		return true
	case TypeWildDrawFour:
		if !s.rules.StrictWildDrawFour {
			return true
		}
		// Legal only while holding no card matching the color in play.
		for _, held := range player.Hand() {
			if held.Color == s.activeColor {
				return false
			}
		}
		return true
	}
	// An unresolved wild on top (first flip of the game) matches any color.
	if s.activeColor == ColorWild || card.Color == s.activeColor {
		return true
	}
	if card.Type == TypeNumber && top.Type == TypeNumber && card.Number == top.Number {
		return true
	}
	return card.Type != TypeNumber && card.Type == top.Type
}

func (s *Session) applyEffect(card Card) error {
	switch card.Type {
	case TypeSkip:
		s.advance(2)
	case TypeReverse:
		s.direction = -s.direction
		if len(s.players) == 2 {
			// With two players a reverse acts as a skip: the same player
			// moves again. Advancing two seats lands back on the actor.
			s.advance(2)
		} else {
			s.advance(1)
		}
	case TypeDrawTwo:
		if err := s.penalizeNext(2); err != nil {
			return err
		}
		s.advance(2)
	case TypeWildDrawFour:
		if err := s.penalizeNext(4); err != nil {
			return err
		}
		s.advance(2)
	default: // NUMBER, WILD
		s.advance(1)
	}
	return nil
}

// penalizeNext makes the next player in rotation draw n cards. Each draw goes
// through Piles.Draw so a reshuffle is checked per card, not per batch.
func (s *Session) penalizeNext(n int) error {
	target := s.players[s.offset(1)]
	return s.forceDraw(target, n)
}

func (s *Session) forceDraw(p *PlayerState, n int) error {
	for i := 0; i < n; i++ {
		card, err := s.piles.Draw()
		if err != nil {
			return err
		}
		p.AddCard(card)
	}
	return nil
}

// offset returns the seat index steps away from the current turn, wrapping
// modulo the player count in the current direction.
func (s *Session) offset(steps int) int {
	n := len(s.players)
	return ((s.turn+int(s.direction)*steps)%n + n) % n
}

func (s *Session) advance(steps int) { s.turn = s.offset(steps) }

func (s *Session) playerByID(id uuid.UUID) *PlayerState {
	for _, p := range s.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *Session) finish(winner *PlayerState) {
	s.state = StateFinished
	s.winnerID = winner.ID
	for _, p := range s.players {
		s.scores[p.ID] = p.HandScore()
	}
}

// abort transitions to the terminal aborted state and passes the fatal error
// back so the caller can notify every player.
func (s *Session) abort(err error) (Snapshot, error) {
	s.state = StateAborted
	return s.snapshot(), err
}
