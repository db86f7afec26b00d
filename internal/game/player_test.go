package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeclareUnoOnlyAtTwoCards(t *testing.T) {
	p := NewPlayerState(uuid.New(), "alice")
	p.AddCard(Card{ID: "a", Color: ColorRed, Type: TypeNumber, Number: 1})

	assert.ErrorIs(t, p.DeclareUno(), ErrInvalidDeclaration, "one card is too late")

	p.AddCard(Card{ID: "b", Color: ColorBlue, Type: TypeNumber, Number: 2})
	require.NoError(t, p.DeclareUno())
	assert.True(t, p.HasDeclaredUno())

	p.AddCard(Card{ID: "c", Color: ColorGreen, Type: TypeNumber, Number: 3})
	assert.ErrorIs(t, p.DeclareUno(), ErrInvalidDeclaration, "three cards is too early")
}

func TestGrowingHandClearsDeclaration(t *testing.T) {
	p := NewPlayerState(uuid.New(), "bob")
	p.AddCard(Card{ID: "a", Color: ColorRed, Type: TypeNumber, Number: 1})
	p.AddCard(Card{ID: "b", Color: ColorBlue, Type: TypeNumber, Number: 2})
	require.NoError(t, p.DeclareUno())

	p.AddCard(Card{ID: "c", Color: ColorGreen, Type: TypeNumber, Number: 3})
	assert.False(t, p.HasDeclaredUno(), "drawing past two cards voids the declaration")
}

func TestRemoveCardAt(t *testing.T) {
	p := NewPlayerState(uuid.New(), "carol")
	p.AddCard(Card{ID: "a", Color: ColorRed, Type: TypeNumber, Number: 1})
	p.AddCard(Card{ID: "b", Color: ColorBlue, Type: TypeNumber, Number: 2})

	_, err := p.RemoveCardAt(2)
	assert.ErrorIs(t, err, ErrInvalidIndex)
	_, err = p.RemoveCardAt(-1)
	assert.ErrorIs(t, err, ErrInvalidIndex)
	assert.Equal(t, 2, p.CardCount(), "failed removal leaves the hand intact")

	card, err := p.RemoveCardAt(0)
	require.NoError(t, err)
	assert.Equal(t, "a", card.ID)
	assert.Equal(t, 1, p.CardCount())
}

func TestHandReturnsCopy(t *testing.T) {
	p := NewPlayerState(uuid.New(), "dave")
	p.AddCard(Card{ID: "a", Color: ColorRed, Type: TypeNumber, Number: 1})

	hand := p.Hand()
	hand[0].ID = "mutated"

	again := p.Hand()
	assert.Equal(t, "a", again[0].ID)
}

func TestHandScore(t *testing.T) {
	p := NewPlayerState(uuid.New(), "eve")
	p.AddCard(Card{ID: "a", Color: ColorRed, Type: TypeNumber, Number: 7})
	p.AddCard(Card{ID: "b", Color: ColorBlue, Type: TypeSkip})
	p.AddCard(Card{ID: "c", Color: ColorWild, Type: TypeWild})

	assert.Equal(t, 77, p.HandScore())
}
