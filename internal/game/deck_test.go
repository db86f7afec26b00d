package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countCards(cards []Card) map[string]int {
	counts := make(map[string]int)
	for _, c := range cards {
		counts[string(c.Color)+"/"+string(c.Type)+"/"+string(rune('0'+c.Number))]++
	}
	return counts
}

func TestNewStandardDeckComposition(t *testing.T) {
	deck := NewStandardDeck(rand.New(rand.NewSource(1)))
	require.Len(t, deck, 108)

	counts := countCards(deck)
	for _, color := range PlayableColors {
		assert.Equal(t, 1, counts[string(color)+"/NUMBER/0"], "one zero per color")
		for n := 1; n <= 9; n++ {
			assert.Equal(t, 2, counts[string(color)+"/NUMBER/"+string(rune('0'+n))], "two of each 1-9 per color")
		}
		assert.Equal(t, 2, counts[string(color)+"/SKIP/0"])
		assert.Equal(t, 2, counts[string(color)+"/REVERSE/0"])
		assert.Equal(t, 2, counts[string(color)+"/DRAW_TWO/0"])
	}
	assert.Equal(t, 4, counts["WILD/WILD/0"])
	assert.Equal(t, 4, counts["WILD/WILD_DRAW_FOUR/0"])

	ids := make(map[string]bool)
	for _, c := range deck {
		assert.False(t, ids[c.ID], "duplicate card id %s", c.ID)
		ids[c.ID] = true
	}
}

func TestNewPilesSplitsDeck(t *testing.T) {
	deck := NewStandardDeck(rand.New(rand.NewSource(2)))
	p := NewPiles(deck, nil)

	require.Equal(t, 1, p.DiscardCount())
	require.Equal(t, 107, p.DrawCount())

	top, err := p.Top()
	require.NoError(t, err)
	assert.Equal(t, deck[0], top)
}

func TestDrawExhaustsThenReshuffles(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	p := NewPiles(NewStandardDeck(rng), rng)

	// Drain the draw pile entirely, discarding as we go.
	for p.DrawCount() > 0 {
		c, err := p.Draw()
		require.NoError(t, err)
		p.Play(c)
	}
	require.Equal(t, 108, p.DiscardCount())

	topBefore, err := p.Top()
	require.NoError(t, err)

	// The next draw recycles everything except the top discard card.
	c, err := p.Draw()
	require.NoError(t, err)
	assert.NotEqual(t, topBefore.ID, c.ID, "top discard card stays put during a reshuffle")

	topAfter, err := p.Top()
	require.NoError(t, err)
	assert.Equal(t, topBefore, topAfter)
	assert.Equal(t, 108, p.DrawCount()+p.DiscardCount()+1, "card conservation: 1 in hand")
}

func TestDrawReturnsExhaustedWhenNothingLeft(t *testing.T) {
	p := NewPiles([]Card{{ID: "only", Color: ColorRed, Type: TypeNumber, Number: 5}}, nil)
	require.Equal(t, 0, p.DrawCount())

	// One discard card cannot be recycled: it stays as the top.
	_, err := p.Draw()
	assert.ErrorIs(t, err, ErrDeckExhausted)

	top, err := p.Top()
	require.NoError(t, err)
	assert.Equal(t, "only", top.ID)
}

func TestTopOnEmptyDiscard(t *testing.T) {
	p := NewPiles(nil, nil)
	_, err := p.Top()
	assert.ErrorIs(t, err, ErrEmptyDiscard)
}

func TestCardScore(t *testing.T) {
	assert.Equal(t, 7, Card{Type: TypeNumber, Number: 7}.Score())
	assert.Equal(t, 20, Card{Type: TypeSkip}.Score())
	assert.Equal(t, 20, Card{Type: TypeReverse}.Score())
	assert.Equal(t, 20, Card{Type: TypeDrawTwo}.Score())
	assert.Equal(t, 50, Card{Type: TypeWild}.Score())
	assert.Equal(t, 50, Card{Type: TypeWildDrawFour}.Score())
}
