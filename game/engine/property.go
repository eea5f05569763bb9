package engine

// PropertyKind identifies the property variant
type PropertyKind string

const (
	KindLand    PropertyKind = "land"
	KindUtility PropertyKind = "utility"
	KindGeneric PropertyKind = "company"
)

// Property is a purchasable cell on the board
type Property interface {
	Name() string
	Kind() PropertyKind
	Price() int
	BaseRent() int
	Position() int
	Owner() *Player
	SetOwner(owner *Player)
	Available() bool

	// Rent returns the rent computed from the property's current state.
	Rent() int
	// ChargesRent reports whether landing on the property costs anything.
	ChargesRent() bool
}

type baseProperty struct {
	name     string
	price    int
	baseRent int
	position int
	owner    *Player
}

func (p *baseProperty) Name() string           { return p.name }
func (p *baseProperty) Price() int             { return p.price }
func (p *baseProperty) BaseRent() int          { return p.baseRent }
func (p *baseProperty) Position() int          { return p.position }
func (p *baseProperty) Owner() *Player         { return p.owner }
func (p *baseProperty) SetOwner(owner *Player) { p.owner = owner }
func (p *baseProperty) Available() bool        { return p.owner == nil }

// Land is a street that accepts houses and, under the hotel tier, a hotel
type Land struct {
	baseProperty
	houseCost int
	houses    int
	hotel     bool
}

// NewLand creates an unowned land with no buildings
func NewLand(name string, position, price, baseRent, houseCost int) *Land {
	return &Land{
		baseProperty: baseProperty{name: name, price: price, baseRent: baseRent, position: position},
		houseCost:    houseCost,
	}
}

func (l *Land) Kind() PropertyKind { return KindLand }

// HouseCost returns the price of one build
func (l *Land) HouseCost() int { return l.houseCost }

// Houses returns the number of houses standing on the land
func (l *Land) Houses() int { return l.houses }

// HasHotel reports whether the houses were converted into a hotel
func (l *Land) HasHotel() bool { return l.hotel }

// Rent is baseRent with no buildings, baseRent × houses with houses and
// baseRent × HotelMultiplier with a hotel.
func (l *Land) Rent() int {
	switch {
	case l.hotel:
		return l.baseRent * HotelMultiplier
	case l.houses > 0:
		return l.baseRent * l.houses
	default:
		return l.baseRent
	}
}

// ChargesRent is false for bare land
func (l *Land) ChargesRent() bool {
	return l.hotel || l.houses > 0
}

// CanBuild reports whether one more build is allowed
func (l *Land) CanBuild(hotelTier bool) bool {
	if l.hotel {
		return false
	}
	if l.houses < MaxHouses {
		return true
	}
	return hotelTier
}

// build adds a house, or converts four houses into a hotel
func (l *Land) build(hotelTier bool) bool {
	if !l.CanBuild(hotelTier) {
		return false
	}
	if l.houses == MaxHouses {
		l.houses = 0
		l.hotel = true
		return true
	}
	l.houses++
	return true
}

// clearBuildings removes every house and hotel
func (l *Land) clearBuildings() {
	l.houses = 0
	l.hotel = false
}

// Utility charges baseRent times a multiplier fixed at construction
type Utility struct {
	baseProperty
	multiplier int
}

// NewUtility creates an unowned utility
func NewUtility(name string, position, price, baseRent, multiplier int) *Utility {
	return &Utility{
		baseProperty: baseProperty{name: name, price: price, baseRent: baseRent, position: position},
		multiplier:   multiplier,
	}
}

func (u *Utility) Kind() PropertyKind { return KindUtility }
func (u *Utility) Multiplier() int    { return u.multiplier }
func (u *Utility) Rent() int          { return u.baseRent * u.multiplier }
func (u *Utility) ChargesRent() bool  { return true }

// GenericProperty charges a flat rent
type GenericProperty struct {
	baseProperty
}

// NewGenericProperty creates an unowned company with flat rent
func NewGenericProperty(name string, position, price, baseRent int) *GenericProperty {
	return &GenericProperty{
		baseProperty: baseProperty{name: name, price: price, baseRent: baseRent, position: position},
	}
}

func (g *GenericProperty) Kind() PropertyKind { return KindGeneric }
func (g *GenericProperty) Rent() int          { return g.baseRent }
func (g *GenericProperty) ChargesRent() bool  { return true }

// standardProperties returns the fixed property catalog in board order
func standardProperties() []Property {
	return []Property{
		NewLand("Leblon", 1, 100, 6, 50),
		NewLand("Avenida Presidente Vargas", 3, 60, 2, 50),
		NewLand("Avenida Nossa Senhora de Copacabana", 4, 60, 4, 50),
		NewGenericProperty("Companhia Ferroviária", 5, 200, 50),
		NewLand("Avenida Brigadeiro Faria Lima", 6, 240, 20, 150),
		NewGenericProperty("Companhia de Viação", 7, 200, 50),
		NewLand("Avenida Rebouças", 8, 220, 18, 150),
		NewLand("Avenida 9 de Julho", 9, 220, 18, 150),
		NewLand("Avenida Europa", 11, 200, 16, 100),
		NewLand("Rua Augusta", 13, 180, 14, 100),
		NewLand("Avenida Pacaembú", 14, 180, 14, 100),
		NewUtility("Companhia de Táxi", 15, 150, 40, 2),
		NewLand("Interlagos", 17, 350, 35, 200),
		NewLand("Morumbi", 19, 400, 50, 200),
		NewLand("Flamengo", 21, 120, 8, 50),
		NewLand("Botafogo", 23, 100, 6, 50),
		NewGenericProperty("Companhia de Navegação", 25, 150, 40),
		NewLand("Avenida Brasil", 26, 160, 12, 100),
		NewLand("Avenida Paulista", 28, 140, 10, 100),
		NewLand("Jardim Europa", 29, 140, 10, 100),
		NewLand("Copacabana", 31, 260, 22, 150),
		NewGenericProperty("Companhia de Aviação", 32, 200, 50),
		NewLand("Avenida Vieira Souto", 33, 320, 28, 200),
		NewLand("Avenida Atlântica", 34, 300, 26, 200),
		NewUtility("Companhia de Táxi Aéreo", 35, 200, 50, 2),
		NewLand("Ipanema", 36, 300, 26, 200),
		NewLand("Jardim Paulista", 38, 280, 24, 150),
		NewLand("Brooklin", 39, 260, 22, 150),
	}
}
