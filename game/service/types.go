package service

import (
	"time"

	"github.com/wricardo/property-game/game/engine"
)

// CreateSessionRequest describes a new game. Order is the turn order drawn
// at the table; Seed makes the dice and deck reproducible.
type CreateSessionRequest struct {
	Players []engine.PlayerSetup `json:"players"`
	Order   []int                `json:"order,omitempty"`
	RulesID string               `json:"rules_id,omitempty"`
	Seed    *uint64              `json:"seed,omitempty"`
}

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string       `json:"id"`
	RulesID        string       `json:"rules_id"`
	Rules          engine.Rules `json:"rules"`
	CreatedAt      time.Time    `json:"created_at"`
	LastAccessedAt time.Time    `json:"last_accessed_at"`
	GameState      *GameState   `json:"game_state"`
}

// GameState is the read model of a game
type GameState struct {
	BankBalance   int             `json:"bank_balance"`
	TurnOrder     []int           `json:"turn_order"`
	CurrentPlayer int             `json:"current_player"`
	Rolled        bool            `json:"rolled"`
	GameOver      bool            `json:"game_over"`
	Winner        int             `json:"winner"`
	DeckSize      int             `json:"deck_size"`
	Players       []PlayerState   `json:"players"`
	Properties    []PropertyState `json:"properties"`
}

// PlayerState describes one player
type PlayerState struct {
	Index        int    `json:"index"`
	Name         string `json:"name"`
	Color        int    `json:"color"`
	Balance      int    `json:"balance"`
	Position     int    `json:"position"`
	Cell         string `json:"cell"`
	InJail       bool   `json:"in_jail"`
	Bankrupt     bool   `json:"bankrupt"`
	ReleaseCards int    `json:"release_cards"`
	Properties   []int  `json:"properties"`
}

// PropertyState describes one purchasable cell
type PropertyState struct {
	Position  int                 `json:"position"`
	Name      string              `json:"name"`
	Kind      engine.PropertyKind `json:"kind"`
	Price     int                 `json:"price"`
	Rent      int                 `json:"rent"`
	HouseCost int                 `json:"house_cost,omitempty"`
	Owner     int                 `json:"owner"`
	Houses    int                 `json:"houses"`
	Hotel     bool                `json:"hotel"`
}

// ActionResult contains the outcome of one turn action
type ActionResult struct {
	Success   bool           `json:"success"`
	Message   string         `json:"message"`
	Events    []engine.Event `json:"events"`
	GameState *GameState     `json:"game_state"`
}

// HistoryEntry is one recorded event
type HistoryEntry struct {
	Seq   int          `json:"seq"`
	Time  time.Time    `json:"time"`
	Event engine.Event `json:"event"`
}

// HistoryOptions configures event history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
	Type  string `json:"type,omitempty"`
}

// HistoryResponse contains paginated event history
type HistoryResponse struct {
	Events      []HistoryEntry `json:"events"`
	TotalEvents int            `json:"total_events"`
	Page        int            `json:"page"`
	PageSize    int            `json:"page_size"`
	TotalPages  int            `json:"total_pages"`
	HasNext     bool           `json:"has_next"`
	HasPrevious bool           `json:"has_previous"`
}

// RulesInfo provides information about a ruleset
type RulesInfo struct {
	Filename    string `json:"filename"`
	RulesID     string `json:"rules_id"` // The identifier to use for session creation
	Name        string `json:"name"`
	Description string `json:"description"`
	HotelTier   bool   `json:"hotel_tier"`
	ShuffleDeck bool   `json:"shuffle_deck"`
}
