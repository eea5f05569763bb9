package engine

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// ErrInvalidPlayerCount is returned when a game is created with too few or
// too many players
var ErrInvalidPlayerCount = errors.New("invalid player count")

// Game wraps an Engine with the turn rotation and reports every change as
// an ordered list of events
type Game struct {
	engine  *Engine
	order   []int
	pointer int
	rolled  bool
	over    bool
	winner  int
	views   []playerView
}

// playerView is the part of a player watched for change notifications
type playerView struct {
	balance  int
	inJail   bool
	bankrupt bool
}

// NewGame starts a game for the given players. order is the turn order drawn
// during setup; an empty or malformed order falls back to seating order.
func NewGame(setup []PlayerSetup, order []int, rules Rules, dice Dice) (*Game, error) {
	if len(setup) < MinPlayers || len(setup) > MaxPlayers {
		return nil, fmt.Errorf("%w: %d (want %d-%d)", ErrInvalidPlayerCount, len(setup), MinPlayers, MaxPlayers)
	}
	if dice == nil {
		dice = NewRandomDice(1)
	}

	players := make([]*Player, len(setup))
	for i, s := range setup {
		players[i] = NewPlayer(i, s.Name, s.Color)
	}

	deck := NewDeck(StandardDeck())
	if rules.ShuffleDeck {
		if src, ok := dice.(interface{ Rand() *rand.Rand }); ok {
			deck.Shuffle(src.Rand())
		}
	}

	eng := NewEngine(NewBank(BankBalance), NewBoard(players, deck), players, dice, rules)
	return newGame(eng, order, 0), nil
}

func newGame(eng *Engine, order []int, pointer int) *Game {
	g := &Game{
		engine: eng,
		order:  normalizeOrder(order, len(eng.players)),
		winner: -1,
	}
	if pointer >= 0 && pointer < len(g.order) {
		g.pointer = pointer
	}
	g.views = make([]playerView, len(eng.players))
	for i, p := range eng.players {
		g.views[i] = viewOf(p)
	}
	if active := eng.board.ActivePlayers(); len(active) <= 1 {
		g.over = true
		if len(active) == 1 {
			g.winner = active[0].index
		}
	} else {
		g.skipBankrupt()
	}
	return g
}

// skipBankrupt moves the pointer forward to the first solvent player at or
// after it. The pointer is left alone when nobody is solvent.
func (g *Game) skipBankrupt() {
	n := len(g.order)
	for step := 0; step < n; step++ {
		idx := (g.pointer + step) % n
		if !g.engine.players[g.order[idx]].bankrupt {
			g.pointer = idx
			return
		}
	}
}

// normalizeOrder returns order when it is a permutation of 0..n-1 and the
// identity order otherwise
func normalizeOrder(order []int, n int) []int {
	if len(order) == n {
		seen := make([]bool, n)
		valid := true
		for _, idx := range order {
			if idx < 0 || idx >= n || seen[idx] {
				valid = false
				break
			}
			seen[idx] = true
		}
		if valid {
			out := make([]int, n)
			copy(out, order)
			return out
		}
	}
	identity := make([]int, n)
	for i := range identity {
		identity[i] = i
	}
	return identity
}

func viewOf(p *Player) playerView {
	return playerView{balance: p.Balance(), inJail: p.inJail, bankrupt: p.bankrupt}
}

func (g *Game) Engine() *Engine    { return g.engine }
func (g *Game) Players() []*Player { return g.engine.players }
func (g *Game) Over() bool         { return g.over }
func (g *Game) Rolled() bool       { return g.rolled }
func (g *Game) Pointer() int       { return g.pointer }

// Winner returns the winning player index, or -1
func (g *Game) Winner() int {
	return g.winner
}

// TurnOrder returns a copy of the turn order
func (g *Game) TurnOrder() []int {
	out := make([]int, len(g.order))
	copy(out, g.order)
	return out
}

// CurrentIndex returns the index of the acting player
func (g *Game) CurrentIndex() int {
	return g.order[g.pointer]
}

// Current returns the acting player
func (g *Game) Current() *Player {
	return g.engine.players[g.CurrentIndex()]
}

// Roll rolls the injected dice for the acting player and resolves the turn
func (g *Game) Roll() ([]Event, error) {
	if g.over || g.rolled {
		return nil, nil
	}
	d1, d2 := g.engine.RollDice()
	return g.PlayTurn(d1, d2)
}

// PlayTurn resolves the acting player's turn with forced dice. Only one roll
// is accepted per turn.
func (g *Game) PlayTurn(d1, d2 int) ([]Event, error) {
	if g.over || g.rolled {
		return nil, nil
	}
	before := len(g.engine.events)
	err := g.engine.ResolveTurn(g.Current(), d1, d2)
	if len(g.engine.events) > before {
		g.rolled = true
	}
	return g.collect(nil), err
}

// Purchase buys the property under the acting player. It is a no-op until
// the turn's roll has settled.
func (g *Game) Purchase() []Event {
	if g.over || !g.rolled {
		return nil
	}
	p := g.Current()
	g.engine.PurchaseProperty(p, g.engine.board.PropertyAt(p.position))
	return g.collect(nil)
}

// Build adds a house to the property under the acting player after the roll
func (g *Game) Build() []Event {
	if g.over || !g.rolled {
		return nil
	}
	p := g.Current()
	g.engine.BuildOnProperty(p, g.engine.board.PropertyAt(p.position))
	return g.collect(nil)
}

// UseReleaseCard spends one of the acting player's release cards
func (g *Game) UseReleaseCard() []Event {
	if g.over {
		return nil
	}
	g.engine.UseReleaseCard(g.Current())
	return g.collect(nil)
}

// Advance ends the turn and moves the pointer to the next solvent player
func (g *Game) Advance() []Event {
	if g.over {
		return nil
	}
	g.rolled = false

	n := len(g.order)
	for step := 1; step <= n; step++ {
		idx := (g.pointer + step) % n
		if g.engine.players[g.order[idx]].bankrupt {
			continue
		}
		g.pointer = idx
		return g.collect([]Event{{Type: EventTurnChanged, Player: g.order[idx]}})
	}
	return g.collect(nil)
}

// collect drains engine events and appends change notifications, extra
// events and the end of game when it happens
func (g *Game) collect(extra []Event) []Event {
	events := g.engine.Events()
	events = append(events, g.diff()...)
	events = append(events, extra...)
	if ev, ended := g.checkGameOver(); ended {
		events = append(events, ev)
	}
	return events
}

// diff emits one event per changed field since the previous call
func (g *Game) diff() []Event {
	var events []Event
	for i, p := range g.engine.players {
		now, was := viewOf(p), g.views[i]
		if now.balance != was.balance {
			events = append(events, Event{
				Type:    EventBalanceChanged,
				Player:  i,
				Balance: now.balance,
				Amount:  now.balance - was.balance,
			})
		}
		if now.inJail != was.inJail {
			events = append(events, Event{Type: EventJailStatusChanged, Player: i, InJail: now.inJail})
		}
		if now.bankrupt && !was.bankrupt {
			events = append(events, Event{Type: EventBankruptcy, Player: i, Balance: now.balance})
		}
		g.views[i] = now
	}
	return events
}

func (g *Game) checkGameOver() (Event, bool) {
	if g.over {
		return Event{}, false
	}
	active := g.engine.board.ActivePlayers()
	if len(active) > 1 {
		return Event{}, false
	}
	g.over = true
	if len(active) == 1 {
		g.winner = active[0].index
	}
	balances := make([]int, len(g.engine.players))
	for i, p := range g.engine.players {
		balances[i] = p.Balance()
	}
	return Event{Type: EventGameEnded, Player: g.winner, Winner: g.winner, Balances: balances}, true
}
