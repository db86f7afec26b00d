package game

import "fmt"

// CardColor is one of the four playable colors, or WILD for colorless cards.
type CardColor string

const (
	ColorRed    CardColor = "RED"
	ColorBlue   CardColor = "BLUE"
	ColorGreen  CardColor = "GREEN"
	ColorYellow CardColor = "YELLOW"
	ColorWild   CardColor = "WILD"
)

// PlayableColors are the colors a wild card may be resolved to.
var PlayableColors = []CardColor{ColorRed, ColorBlue, ColorGreen, ColorYellow}

// IsPlayableColor reports whether color is one of the four non-wild colors.
func IsPlayableColor(color CardColor) bool {
	for _, c := range PlayableColors {
		if c == color {
			return true
		}
	}
	return false
}

// CardType enumerates the card kinds of a standard deck.
type CardType string

const (
	TypeNumber       CardType = "NUMBER"
	TypeSkip         CardType = "SKIP"
	TypeReverse      CardType = "REVERSE"
	TypeDrawTwo      CardType = "DRAW_TWO"
	TypeWild         CardType = "WILD"
	TypeWildDrawFour CardType = "WILD_DRAW_FOUR"
)

// Card is immutable once constructed. Number is meaningful only for NUMBER cards.
type Card struct {
	ID     string    `json:"id"`
	Color  CardColor `json:"color"`
	Type   CardType  `json:"type"`
	Number int       `json:"number"`
}

// IsWild reports whether the card is a WILD or WILD_DRAW_FOUR.
func (c Card) IsWild() bool {
	return c.Type == TypeWild || c.Type == TypeWildDrawFour
}

// Score returns the card's value for end-of-round scoring: number cards score
// their face value, wilds score 50, other action cards score 20.
func (c Card) Score() int {
	switch c.Type {
	case TypeNumber:
		return c.Number
	case TypeWild, TypeWildDrawFour:
		return 50
	default:
		return 20
	}
}

func (c Card) String() string {
	if c.Type == TypeNumber {
		return fmt.Sprintf("%s %d", c.Color, c.Number)
	}
	return fmt.Sprintf("%s %s", c.Color, c.Type)
}
