package engine

// Board owns the properties, the active roster and the chance deck
type Board struct {
	properties map[int]Property
	order      []Property
	active     []*Player
	deck       *Deck
}

// NewBoard creates a board with the standard property catalog
func NewBoard(players []*Player, deck *Deck) *Board {
	b := &Board{
		properties: make(map[int]Property),
		deck:       deck,
	}
	for _, p := range standardProperties() {
		b.properties[p.Position()] = p
		b.order = append(b.order, p)
	}
	for _, p := range players {
		if !p.Bankrupt() && !b.IsActive(p) {
			b.active = append(b.active, p)
		}
	}
	return b
}

// PropertyAt returns the property on a cell, or nil
func (b *Board) PropertyAt(position int) Property {
	return b.properties[position]
}

// Properties returns every property in board order
func (b *Board) Properties() []Property {
	out := make([]Property, len(b.order))
	copy(out, b.order)
	return out
}

// PropertiesOf returns the properties owned by player
func (b *Board) PropertiesOf(player *Player) []Property {
	var owned []Property
	for _, p := range b.order {
		if p.Owner() == player {
			owned = append(owned, p)
		}
	}
	return owned
}

// Deck returns the chance deck
func (b *Board) Deck() *Deck {
	return b.deck
}

func (b *Board) IsJailTriggerCell(pos int) bool { return pos == JailTriggerCell }
func (b *Board) IsJailCell(pos int) bool        { return pos == JailCell }
func (b *Board) IsChanceCell(pos int) bool      { return chanceCells[pos] }
func (b *Board) IsTaxCell(pos int) bool         { return pos == TaxCell }
func (b *Board) IsDividendCell(pos int) bool    { return pos == DividendCell }

// DrawChanceCard draws from the front of the deck
func (b *Board) DrawChanceCard() (Card, error) {
	return b.deck.Draw()
}

// ReturnReleaseCard puts a consumed release card back in the deck
func (b *Board) ReturnReleaseCard() {
	b.deck.ReturnReleaseCard()
}

// ClearOwnershipOf releases every property owned by player
func (b *Board) ClearOwnershipOf(player *Player) {
	for _, p := range b.order {
		if p.Owner() != player {
			continue
		}
		p.SetOwner(nil)
		if land, ok := p.(*Land); ok {
			land.clearBuildings()
		}
	}
}

// RemoveFromActive drops player from the active roster
func (b *Board) RemoveFromActive(player *Player) {
	for i, p := range b.active {
		if p == player {
			b.active = append(b.active[:i], b.active[i+1:]...)
			return
		}
	}
}

// IsActive reports whether player is still in the rotation
func (b *Board) IsActive(player *Player) bool {
	for _, p := range b.active {
		if p == player {
			return true
		}
	}
	return false
}

// ActivePlayers returns a copy of the active roster
func (b *Board) ActivePlayers() []*Player {
	out := make([]*Player, len(b.active))
	copy(out, b.active)
	return out
}

// CellName describes a cell for event messages
func (b *Board) CellName(pos int) string {
	if p := b.PropertyAt(pos); p != nil {
		return p.Name()
	}
	switch {
	case pos == StartCell:
		return "Start"
	case pos == JailCell:
		return "Jail"
	case pos == RestCell:
		return "Free Rest"
	case pos == JailTriggerCell:
		return "Go To Jail"
	case pos == TaxCell:
		return "Income Tax"
	case pos == DividendCell:
		return "Dividends"
	case b.IsChanceCell(pos):
		return "Chance"
	}
	return ""
}
