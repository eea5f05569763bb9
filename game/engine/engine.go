package engine

import "errors"

// ErrPlayerInactive is returned when a bankrupt or removed player tries to act
var ErrPlayerInactive = errors.New("player is not active")

// Engine resolves turns against the bank, the board and the players. It is
// the only writer of game state and is not safe for concurrent use.
type Engine struct {
	bank    *Bank
	board   *Board
	players []*Player
	dice    Dice
	rules   Rules
	events  []Event
}

// NewEngine wires an engine around existing state
func NewEngine(bank *Bank, board *Board, players []*Player, dice Dice, rules Rules) *Engine {
	if dice == nil {
		dice = NewRandomDice(1)
	}
	return &Engine{
		bank:    bank,
		board:   board,
		players: players,
		dice:    dice,
		rules:   rules,
	}
}

func (e *Engine) Bank() *Bank        { return e.bank }
func (e *Engine) Board() *Board      { return e.board }
func (e *Engine) Rules() Rules       { return e.rules }
func (e *Engine) Players() []*Player { return e.players }

// Player returns the player at index i, or nil
func (e *Engine) Player(i int) *Player {
	if i < 0 || i >= len(e.players) {
		return nil
	}
	return e.players[i]
}

// Events drains the events emitted since the last call
func (e *Engine) Events() []Event {
	out := e.events
	e.events = nil
	return out
}

func (e *Engine) emit(ev Event) {
	e.events = append(e.events, ev)
}

// canAct rejects nil, bankrupt and removed players
func (e *Engine) canAct(p *Player) bool {
	return p != nil && !p.bankrupt && e.board.IsActive(p)
}

// RollDice rolls two dice from the injected source
func (e *Engine) RollDice() (int, int) {
	return e.dice.Roll()
}

// ResolveTurn runs one full turn for p with the given dice. Anything other
// than two faces in 1..6 makes the call a no-op. The only error is a draw
// from an empty chance deck.
func (e *Engine) ResolveTurn(p *Player, dice ...int) error {
	if !e.canAct(p) || len(dice) != 2 {
		return nil
	}
	d1, d2 := dice[0], dice[1]
	if d1 < 1 || d1 > DieFaces || d2 < 1 || d2 > DieFaces {
		return nil
	}
	e.emit(Event{Type: EventDiceRolled, Player: p.index, Dice: []int{d1, d2}})

	err := e.resolve(p, d1, d2)
	e.autoRelease(p)
	return err
}

func (e *Engine) resolve(p *Player, d1, d2 int) error {
	if p.inJail {
		if d1 != d2 {
			return nil
		}
		p.inJail = false
	}

	e.move(p, d1+d2)
	pos := p.position

	if e.board.IsJailTriggerCell(pos) {
		e.jail(p)
		return nil
	}

	if e.board.IsTaxCell(pos) {
		e.emit(Event{Type: EventSpecialCell, Player: p.index, Cell: pos, Amount: -TaxAmount, Description: "Income tax"})
		if !e.settle(p, nil, TaxAmount) {
			return nil
		}
	}
	if e.board.IsDividendCell(pos) {
		e.bank.PayTo(p.account, DividendAmount)
		e.emit(Event{Type: EventSpecialCell, Player: p.index, Cell: pos, Amount: DividendAmount, Description: "Dividends"})
	}

	if prop := e.board.PropertyAt(pos); prop != nil {
		if !e.collectRent(p, prop) {
			return nil
		}
	}

	if e.board.IsChanceCell(pos) {
		if _, err := e.DrawChanceCard(p); err != nil {
			return err
		}
	}
	return nil
}

// move advances p by steps, paying the passing bonus on wraparound
func (e *Engine) move(p *Player, steps int) {
	from := p.position
	target := from + steps
	if target >= BoardSize {
		e.bank.PayTo(p.account, PassingBonus)
		e.emit(Event{Type: EventSpecialCell, Player: p.index, Cell: StartCell, Amount: PassingBonus, Description: "Passed start"})
	}
	p.position = target % BoardSize
	e.emit(Event{Type: EventPlayerMoved, Player: p.index, From: from, To: p.position})
}

// jail sends p to the jail cell
func (e *Engine) jail(p *Player) {
	from := p.position
	p.sendToJail()
	e.emit(Event{Type: EventPlayerMoved, Player: p.index, From: from, To: JailCell, Description: "Sent to jail"})
}

// settle pays amount from p to the account, or to the bank when to is nil.
// A debt p cannot cover is forced onto p's balance and p goes bankrupt.
func (e *Engine) settle(p *Player, to *Account, amount int) bool {
	if amount <= 0 {
		return true
	}
	if to == nil {
		to = e.bank.account
	}
	if p.account.Transfer(to, amount) {
		return true
	}
	p.account.forceDebit(amount)
	p.bankrupt = true
	e.CheckBankruptcy(p)
	return false
}

// collectRent charges p for landing on prop. It returns false when p went
// bankrupt paying.
func (e *Engine) collectRent(p *Player, prop Property) bool {
	owner := prop.Owner()
	if owner == nil || owner == p || !prop.ChargesRent() {
		return true
	}
	amount := prop.Rent()
	if !e.settle(p, owner.account, amount) {
		return false
	}
	e.emit(Event{
		Type:        EventRentPaid,
		Player:      p.index,
		Owner:       owner.index,
		Cell:        prop.Position(),
		Amount:      amount,
		Description: prop.Name(),
	})
	return true
}

// DrawChanceCard draws a card for p and applies it
func (e *Engine) DrawChanceCard(p *Player) (Card, error) {
	if !e.canAct(p) {
		return Card{}, ErrPlayerInactive
	}
	card, err := e.board.DrawChanceCard()
	if err != nil {
		return Card{}, err
	}
	e.emit(Event{
		Type:     EventChanceCardDrawn,
		Player:   p.index,
		Cell:     p.position,
		CardID:   card.DisplayID,
		CardKind: card.Kind,
		Amount:   card.Value,
	})
	e.applyCard(p, card)
	return card, nil
}

func (e *Engine) applyCard(p *Player, card Card) {
	switch card.Kind {
	case CardGoToJail:
		e.jail(p)
	case CardRelease:
		p.releaseCards++
	case CardPay:
		e.settle(p, nil, card.Value)
	case CardReceive:
		e.bank.PayTo(p.account, card.Value)
	case CardReceiveFromEach:
		for _, other := range e.board.ActivePlayers() {
			if other == p {
				continue
			}
			e.settle(other, p.account, card.Value)
		}
	}
}

// autoRelease spends a held release card when p is in jail
func (e *Engine) autoRelease(p *Player) {
	if p.inJail && p.releaseCards > 0 {
		e.UseReleaseCard(p)
	}
}

// UseReleaseCard frees p from jail with a held card and returns the card
// to the deck
func (e *Engine) UseReleaseCard(p *Player) bool {
	if !e.canAct(p) || !p.inJail || p.releaseCards == 0 {
		return false
	}
	p.releaseCards--
	p.inJail = false
	e.board.ReturnReleaseCard()
	e.emit(Event{Type: EventReleaseCardUsed, Player: p.index, Cell: p.position})
	return true
}

// CheckBankruptcy removes p from the game when flagged bankrupt or when the
// balance is negative. Solvent players and already removed players are left
// untouched.
func (e *Engine) CheckBankruptcy(p *Player) bool {
	if p == nil {
		return false
	}
	if !p.bankrupt && p.Balance() >= 0 {
		return false
	}
	if p.bankrupt && !e.board.IsActive(p) {
		return true
	}
	p.bankrupt = true
	e.board.ClearOwnershipOf(p)
	e.board.RemoveFromActive(p)
	return true
}

// PurchaseProperty buys prop for p. The player must stand on the property's
// cell and the property must be available. A failed purchase changes nothing.
func (e *Engine) PurchaseProperty(p *Player, prop Property) bool {
	if !e.canAct(p) || prop == nil || !prop.Available() || p.position != prop.Position() {
		return false
	}
	if !p.account.Transfer(e.bank.account, prop.Price()) {
		e.CheckBankruptcy(p)
		return false
	}
	prop.SetOwner(p)
	e.emit(Event{
		Type:        EventPropertyBought,
		Player:      p.index,
		Cell:        prop.Position(),
		Amount:      prop.Price(),
		Description: prop.Name(),
	})
	return true
}

// BuildOnProperty adds one house (or the hotel) to a land p owns and stands on
func (e *Engine) BuildOnProperty(p *Player, prop Property) bool {
	land, ok := prop.(*Land)
	if !ok || !e.canAct(p) || land.Owner() != p || p.position != land.Position() {
		return false
	}
	if !land.CanBuild(e.rules.HotelTier) {
		return false
	}
	if !p.account.Transfer(e.bank.account, land.HouseCost()) {
		e.CheckBankruptcy(p)
		return false
	}
	land.build(e.rules.HotelTier)
	e.emit(Event{
		Type:        EventHouseBuilt,
		Player:      p.index,
		Cell:        land.Position(),
		Amount:      land.HouseCost(),
		Houses:      land.Houses(),
		Hotel:       land.HasHotel(),
		Description: land.Name(),
	})
	return true
}
