package engine

import (
	"errors"
	"fmt"
)

// ErrInvalidSnapshot wraps every reason a snapshot cannot be loaded
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Snapshot is the serializable projection of a game. It holds no pointers
// into live state.
type Snapshot struct {
	BankBalance int                `json:"bank_balance"`
	TurnOrder   []int              `json:"turn_order"`
	TurnPointer int                `json:"turn_pointer"`
	Players     []PlayerSnapshot   `json:"players"`
	Properties  []PropertySnapshot `json:"properties"`
	Deck        []Card             `json:"deck"`
}

// PlayerSnapshot is one player record
type PlayerSnapshot struct {
	Name         string `json:"name"`
	Color        int    `json:"color"`
	Balance      int    `json:"balance"`
	Position     int    `json:"position"`
	InJail       bool   `json:"in_jail"`
	Bankrupt     bool   `json:"bankrupt"`
	ReleaseCards int    `json:"release_cards"`
}

// PropertySnapshot is one property record. Owner is -1 when unowned.
type PropertySnapshot struct {
	Position int  `json:"position"`
	Owner    int  `json:"owner"`
	Houses   int  `json:"houses"`
	Hotel    bool `json:"hotel"`
}

// Snapshot projects the game into a Snapshot without side effects
func (g *Game) Snapshot() *Snapshot {
	eng := g.engine
	s := &Snapshot{
		BankBalance: eng.bank.Balance(),
		TurnOrder:   g.TurnOrder(),
		TurnPointer: g.pointer,
		Players:     make([]PlayerSnapshot, len(eng.players)),
		Deck:        eng.board.deck.Cards(),
	}
	for i, p := range eng.players {
		s.Players[i] = PlayerSnapshot{
			Name:         p.name,
			Color:        p.color,
			Balance:      p.Balance(),
			Position:     p.position,
			InJail:       p.inJail,
			Bankrupt:     p.bankrupt,
			ReleaseCards: p.releaseCards,
		}
	}
	for _, prop := range eng.board.order {
		ps := PropertySnapshot{Position: prop.Position(), Owner: -1}
		if owner := prop.Owner(); owner != nil {
			ps.Owner = owner.index
		}
		if land, ok := prop.(*Land); ok {
			ps.Houses = land.houses
			ps.Hotel = land.hotel
		}
		s.Properties = append(s.Properties, ps)
	}
	return s
}

// FromSnapshot rebuilds a game from s. A missing or malformed turn order is
// replaced by the seating order; values outside the board's geometry fail
// the whole load.
func FromSnapshot(s *Snapshot, rules Rules, dice Dice) (*Game, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil snapshot", ErrInvalidSnapshot)
	}
	if len(s.Players) < MinPlayers || len(s.Players) > MaxPlayers {
		return nil, fmt.Errorf("%w: %w: %d players", ErrInvalidSnapshot, ErrInvalidPlayerCount, len(s.Players))
	}

	players := make([]*Player, len(s.Players))
	for i, ps := range s.Players {
		if ps.Position < 0 || ps.Position >= BoardSize {
			return nil, fmt.Errorf("%w: player %d position %d out of range", ErrInvalidSnapshot, i, ps.Position)
		}
		if ps.ReleaseCards < 0 {
			return nil, fmt.Errorf("%w: player %d has %d release cards", ErrInvalidSnapshot, i, ps.ReleaseCards)
		}
		players[i] = &Player{
			index:        i,
			name:         ps.Name,
			color:        ps.Color,
			account:      NewAccount(ps.Balance),
			position:     ps.Position,
			inJail:       ps.InJail,
			bankrupt:     ps.Bankrupt,
			releaseCards: ps.ReleaseCards,
		}
	}

	for i, c := range s.Deck {
		if !ValidCardKind(c.Kind) {
			return nil, fmt.Errorf("%w: card %d has unknown kind %q", ErrInvalidSnapshot, i, c.Kind)
		}
	}
	board := NewBoard(players, NewDeck(s.Deck))

	for _, ps := range s.Properties {
		prop := board.PropertyAt(ps.Position)
		if prop == nil {
			return nil, fmt.Errorf("%w: no property at cell %d", ErrInvalidSnapshot, ps.Position)
		}
		if ps.Owner < -1 || ps.Owner >= len(players) {
			return nil, fmt.Errorf("%w: cell %d owner %d out of range", ErrInvalidSnapshot, ps.Position, ps.Owner)
		}
		if ps.Owner >= 0 {
			prop.SetOwner(players[ps.Owner])
		}
		land, ok := prop.(*Land)
		if !ok {
			if ps.Houses != 0 || ps.Hotel {
				return nil, fmt.Errorf("%w: cell %d cannot hold buildings", ErrInvalidSnapshot, ps.Position)
			}
			continue
		}
		if ps.Houses < 0 || ps.Houses > MaxHouses {
			return nil, fmt.Errorf("%w: cell %d has %d houses", ErrInvalidSnapshot, ps.Position, ps.Houses)
		}
		land.houses = ps.Houses
		land.hotel = ps.Hotel
	}

	bank := NewBank(BankBalance)
	bank.account.balance = s.BankBalance

	eng := NewEngine(bank, board, players, dice, rules)
	return newGame(eng, s.TurnOrder, s.TurnPointer), nil
}
