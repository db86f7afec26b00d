package game

import "github.com/google/uuid"

// PlayerState tracks one seated player's hand and UNO declaration. Hand order
// is visible to the owning player but carries no game meaning.
type PlayerState struct {
	ID   uuid.UUID
	Name string

	hand        []Card
	declaredUno bool
}

// NewPlayerState returns a player with an empty hand.
func NewPlayerState(id uuid.UUID, name string) *PlayerState {
	return &PlayerState{ID: id, Name: name}
}

// AddCard appends card to the hand. Growing past two cards invalidates a
// prior UNO declaration.
func (p *PlayerState) AddCard(card Card) {
	p.hand = append(p.hand, card)
	if len(p.hand) > 2 {
		p.declaredUno = false
	}
}

// RemoveCardAt removes and returns the card at index. The over-two check is
// repeated here so the declaration invariant holds no matter how the hand
// was mutated.
func (p *PlayerState) RemoveCardAt(index int) (Card, error) {
	if index < 0 || index >= len(p.hand) {
		return Card{}, ErrInvalidIndex
	}
	card := p.hand[index]
	p.hand = append(p.hand[:index], p.hand[index+1:]...)
	if len(p.hand) > 2 {
		p.declaredUno = false
	}
	return card, nil
}

// CardAt returns the card at index without removing it.
func (p *PlayerState) CardAt(index int) (Card, error) {
	if index < 0 || index >= len(p.hand) {
		return Card{}, ErrInvalidIndex
	}
	return p.hand[index], nil
}

// DeclareUno succeeds only while holding exactly two cards.
func (p *PlayerState) DeclareUno() error {
	if len(p.hand) != 2 {
		return ErrInvalidDeclaration
	}
	p.declaredUno = true
	return nil
}

// HasDeclaredUno reports whether a declaration is currently in effect.
func (p *PlayerState) HasDeclaredUno() bool { return p.declaredUno }

// CardCount returns the hand size.
func (p *PlayerState) CardCount() int { return len(p.hand) }

// Hand returns a copy of the hand in order.
func (p *PlayerState) Hand() []Card {
	out := make([]Card, len(p.hand))
	copy(out, p.hand)
	return out
}

// HandScore sums the scoring value of every held card.
func (p *PlayerState) HandScore() int {
	total := 0
	for _, c := range p.hand {
		total += c.Score()
	}
	return total
}
