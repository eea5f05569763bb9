package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Board geometry and economy constants. These are fixed for every game.
const (
	BoardSize       = 40
	StartCell       = 0
	JailCell        = 10
	RestCell        = 20
	JailTriggerCell = 30
	DividendCell    = 18
	TaxCell         = 24

	PassingBonus    = 200
	TaxAmount       = 200
	DividendAmount  = 200
	StartingBalance = 4000
	BankBalance     = 200000

	MinPlayers = 2
	MaxPlayers = 6

	MaxHouses       = 4
	HotelMultiplier = 5
	DieFaces        = 6
)

// chanceCells lists every cell that forces a card draw.
var chanceCells = map[int]bool{
	2:  true,
	12: true,
	16: true,
	22: true,
	27: true,
	37: true,
}

// Rules holds the house rules of a game. Board geometry is not configurable.
type Rules struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	HotelTier   bool   `json:"hotel_tier"`
	ShuffleDeck bool   `json:"shuffle_deck"`
}

// DefaultRules returns the canonical ruleset
func DefaultRules() Rules {
	return Rules{
		Name:        "classic",
		Description: "Standard rules with the hotel tier and a shuffled chance deck",
		HotelTier:   true,
		ShuffleDeck: true,
	}
}

// PlayerSetup is the output of the setup wizard for one player
type PlayerSetup struct {
	Name  string `json:"name"`
	Color int    `json:"color"`
}

// ErrInvalidRules is returned by ValidateRules
var ErrInvalidRules = errors.New("invalid rules")

// ValidateRules checks that a ruleset can be used to start a game
func ValidateRules(r *Rules) error {
	if r == nil {
		return fmt.Errorf("%w: rules cannot be nil", ErrInvalidRules)
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRules)
	}
	if strings.ContainsAny(r.Name, "|\n\r") {
		return fmt.Errorf("%w: name %q contains reserved characters", ErrInvalidRules, r.Name)
	}
	return nil
}
