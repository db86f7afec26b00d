package game

import (
	"fmt"
	"math/rand"
)

// NewStandardDeck builds the full 108-card deck in a uniformly random order.
// Per color: one 0, two each of 1-9, two SKIP, two REVERSE, two DRAW_TWO;
// plus four WILD and four WILD_DRAW_FOUR. A nil rng falls back to the global
// source; tests pass a seeded one for determinism.
func NewStandardDeck(rng *rand.Rand) []Card {
	deck := make([]Card, 0, 108)
	for _, color := range PlayableColors {
		deck = append(deck, Card{ID: cardID(color, TypeNumber, 0, 0), Color: color, Type: TypeNumber, Number: 0})
		for n := 1; n <= 9; n++ {
			for dup := 0; dup < 2; dup++ {
				deck = append(deck, Card{ID: cardID(color, TypeNumber, n, dup), Color: color, Type: TypeNumber, Number: n})
			}
		}
		for _, t := range []CardType{TypeSkip, TypeReverse, TypeDrawTwo} {
			for dup := 0; dup < 2; dup++ {
				deck = append(deck, Card{ID: cardID(color, t, 0, dup), Color: color, Type: t})
			}
		}
	}
	for i := 0; i < 4; i++ {
		deck = append(deck, Card{ID: fmt.Sprintf("WILD_%d", i), Color: ColorWild, Type: TypeWild})
		deck = append(deck, Card{ID: fmt.Sprintf("WILD_DRAW_FOUR_%d", i), Color: ColorWild, Type: TypeWildDrawFour})
	}
	shuffle(deck, rng)
	return deck
}

func cardID(color CardColor, t CardType, number, dup int) string {
	id := string(color) + "_" + string(t)
	if t == TypeNumber {
		id = fmt.Sprintf("%s_%d", id, number)
	}
	if dup > 0 {
		id = fmt.Sprintf("%s_%d", id, dup+1)
	}
	return id
}

// shuffle performs a uniform Fisher-Yates permutation in place.
func shuffle(cards []Card, rng *rand.Rand) {
	swap := func(i, j int) { cards[i], cards[j] = cards[j], cards[i] }
	if rng != nil {
		rng.Shuffle(len(cards), swap)
	} else {
		rand.Shuffle(len(cards), swap)
	}
}

// Piles partitions the in-play deck, minus cards held in hands, into an
// ordered draw pile and discard pile. Piles is not safe for concurrent use;
// the session store serializes all access.
type Piles struct {
	draw    []Card
	discard []Card
	rng     *rand.Rand
}

// NewPiles splits a freshly shuffled deck: the first card seeds the discard
// pile, the remaining cards form the draw pile.
func NewPiles(deck []Card, rng *rand.Rand) *Piles {
	p := &Piles{rng: rng}
	if len(deck) > 0 {
		p.discard = append(p.discard, deck[0])
		p.draw = append(p.draw, deck[1:]...)
	}
	return p
}

// Draw pops the tail of the draw pile, recycling the discard pile first if
// the draw pile is empty. Returns ErrDeckExhausted when no card can be
// produced even after a reshuffle.
func (p *Piles) Draw() (Card, error) {
	if len(p.draw) == 0 {
		p.reshuffle()
	}
	if len(p.draw) == 0 {
		return Card{}, ErrDeckExhausted
	}
	card := p.draw[len(p.draw)-1]
	p.draw = p.draw[:len(p.draw)-1]
	return card, nil
}

// reshuffle moves every discard card except the top one back into the draw
// pile and shuffles it. A no-op when the discard pile holds at most one card.
// This is the only place card identity crosses pile boundaries outside of
// Draw and Play.
func (p *Piles) reshuffle() {
	if len(p.discard) <= 1 {
		return
	}
	top := p.discard[len(p.discard)-1]
	p.draw = append(p.draw, p.discard[:len(p.discard)-1]...)
	p.discard = p.discard[:0]
	p.discard = append(p.discard, top)
	shuffle(p.draw, p.rng)
}

// Play appends card to the top of the discard pile. Legality is the
// session's responsibility, not the piles'.
func (p *Piles) Play(card Card) {
	p.discard = append(p.discard, card)
}

// Top returns the top discard card. ErrEmptyDiscard should never surface
// after initialization.
func (p *Piles) Top() (Card, error) {
	if len(p.discard) == 0 {
		return Card{}, ErrEmptyDiscard
	}
	return p.discard[len(p.discard)-1], nil
}

// DrawCount returns the number of cards left in the draw pile.
func (p *Piles) DrawCount() int { return len(p.draw) }

// DiscardCount returns the number of cards in the discard pile.
func (p *Piles) DiscardCount() int { return len(p.discard) }
