package game

import "fmt"

// Rules holds the configurable house rules for a session.
type Rules struct {
	// StrictWildDrawFour makes a WILD_DRAW_FOUR legal only when the player
	// holds no card matching the color in play. Disabling it is the common
	// house-rule relaxation.
	StrictWildDrawFour bool `json:"strictWildDrawFour"`

	// UnoPenaltyDraw is how many cards a player draws for playing down to one
	// card without having declared UNO. Zero disables the penalty, leaving
	// challenge rules to the room.
	UnoPenaltyDraw int `json:"unoPenaltyDraw"`

	// InitialHandSize is the number of cards dealt to each player.
	InitialHandSize int `json:"initialHandSize"`
}

// DefaultRules returns the standard rule set.
func DefaultRules() Rules {
	return Rules{
		StrictWildDrawFour: true,
		UnoPenaltyDraw:     0,
		InitialHandSize:    7,
	}
}

// Update overlays the rules with values from a client-supplied map. Absent
// keys keep their current value; unknown keys are rejected so that a
// misspelled rule fails the room creation instead of silently defaulting.
func (r *Rules) Update(newRules map[string]interface{}) error {
	for key := range newRules {
		switch key {
		case "strictWildDrawFour", "unoPenaltyDraw", "initialHandSize":
		default:
			return fmt.Errorf("unknown rule %q", key)
		}
	}

	assignBool := func(field *bool, key string) error {
		if val, exists := newRules[key]; exists && val != nil {
			b, ok := val.(bool)
			if !ok {
				return fmt.Errorf("invalid type for %s", key)
			}
			*field = b
		}
		return nil
	}

	assignInt := func(field *int, key string, minVal int) error {
		val, exists := newRules[key]
		if !exists || val == nil {
			return nil
		}
		// JSON numbers decode as float64.
		switch v := val.(type) {
		case float64:
			*field = int(v)
		case int:
			*field = v
		default:
			return fmt.Errorf("invalid type for %s", key)
		}
		if *field < minVal {
			return fmt.Errorf("%s must be at least %d", key, minVal)
		}
		return nil
	}

	if err := assignBool(&r.StrictWildDrawFour, "strictWildDrawFour"); err != nil {
		return err
	}
	if err := assignInt(&r.UnoPenaltyDraw, "unoPenaltyDraw", 0); err != nil {
		return err
	}
	if err := assignInt(&r.InitialHandSize, "initialHandSize", 1); err != nil {
		return err
	}
	return nil
}
