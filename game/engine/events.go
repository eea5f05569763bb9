package engine

// EventType names a state change reported to the presentation layer
type EventType string

const (
	EventDiceRolled        EventType = "dice_rolled"
	EventPlayerMoved       EventType = "player_moved"
	EventTurnChanged       EventType = "turn_changed"
	EventBalanceChanged    EventType = "balance_changed"
	EventPropertyBought    EventType = "property_bought"
	EventHouseBuilt        EventType = "house_built"
	EventJailStatusChanged EventType = "jail_status_changed"
	EventRentPaid          EventType = "rent_paid"
	EventSpecialCell       EventType = "special_cell_triggered"
	EventChanceCardDrawn   EventType = "chance_card_drawn"
	EventBankruptcy        EventType = "bankruptcy"
	EventReleaseCardUsed   EventType = "release_card_used"
	EventGameEnded         EventType = "game_ended"
)

// Event is one ordered record of something that happened. Only the fields
// relevant to Type are set.
type Event struct {
	Type        EventType `json:"type"`
	Player      int       `json:"player"`
	Dice        []int     `json:"dice,omitempty"`
	From        int       `json:"from"`
	To          int       `json:"to"`
	Cell        int       `json:"cell"`
	Owner       int       `json:"owner"`
	Amount      int       `json:"amount"`
	Balance     int       `json:"balance"`
	InJail      bool      `json:"in_jail"`
	Houses      int       `json:"houses"`
	Hotel       bool      `json:"hotel"`
	CardID      int       `json:"card_id"`
	CardKind    CardKind  `json:"card_kind,omitempty"`
	Description string    `json:"description,omitempty"`
	Winner      int       `json:"winner"`
	Balances    []int     `json:"balances,omitempty"`
}

// FilterEvents returns the events of the given type
func FilterEvents(events []Event, t EventType) []Event {
	var out []Event
	for _, e := range events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
