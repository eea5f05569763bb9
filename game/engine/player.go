package engine

// Player is one participant. Players are never destroyed; a bankrupt player
// stays in the game's list for history and snapshots.
type Player struct {
	index        int
	name         string
	color        int
	account      *Account
	position     int
	inJail       bool
	bankrupt     bool
	releaseCards int
}

// NewPlayer creates a player on the start cell with the starting balance
func NewPlayer(index int, name string, color int) *Player {
	return &Player{
		index:   index,
		name:    name,
		color:   color,
		account: NewAccount(StartingBalance),
	}
}

func (p *Player) Index() int           { return p.index }
func (p *Player) Name() string         { return p.name }
func (p *Player) Color() int           { return p.color }
func (p *Player) Account() *Account    { return p.account }
func (p *Player) Balance() int         { return p.account.Balance() }
func (p *Player) Position() int        { return p.position }
func (p *Player) InJail() bool         { return p.inJail }
func (p *Player) Bankrupt() bool       { return p.bankrupt }
func (p *Player) ReleaseCards() int    { return p.releaseCards }
func (p *Player) HasReleaseCard() bool { return p.releaseCards > 0 }

// sendToJail moves the player to the jail cell and flags them
func (p *Player) sendToJail() {
	p.position = JailCell
	p.inJail = true
}
