package service

import (
	"context"
	"sync"
	"time"

	"github.com/wricardo/property-game/game/engine"
	"github.com/wricardo/property-game/game/savefile"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Turn Actions
	Roll(ctx context.Context, sessionID string, dice []int) (*ActionResult, error)
	Purchase(ctx context.Context, sessionID string) (*ActionResult, error)
	Build(ctx context.Context, sessionID string) (*ActionResult, error)
	UseReleaseCard(ctx context.Context, sessionID string) (*ActionResult, error)
	EndTurn(ctx context.Context, sessionID string) (*ActionResult, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*GameState, error)
	GetEventHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)
	ExportSnapshot(ctx context.Context, sessionID string) (string, error)
	ImportSnapshot(ctx context.Context, sessionID, text string) (*SessionInfo, error)

	// Rulesets
	ListRules(ctx context.Context) ([]*RulesInfo, error)
	LoadRules(ctx context.Context, rulesID string) (*engine.Rules, error)
	SaveRules(ctx context.Context, rulesID string, rules *engine.Rules) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, rulesID string, game *engine.Game) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// RulesManager handles ruleset loading
type RulesManager interface {
	LoadRules(id string) (*engine.Rules, error)
	ListRules() ([]*RulesInfo, error)
	GetDefault() *engine.Rules
	SaveRules(id string, rules *engine.Rules) error
}

// maxHistory bounds the per-session event log
const maxHistory = 1000

// Session represents an active game session. Game must only be touched
// while the session is locked.
type Session struct {
	ID             string
	RulesID        string
	Game           *engine.Game
	CreatedAt      time.Time
	LastAccessedAt time.Time

	mu      sync.Mutex
	history []HistoryEntry
	seq     int
}

// Lock serializes actions on the session
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session
func (s *Session) Unlock() { s.mu.Unlock() }

// Touch marks the session as accessed now
func (s *Session) Touch() {
	s.mu.Lock()
	s.LastAccessedAt = time.Now()
	s.mu.Unlock()
}

// AccessedAt returns when the session was last touched
func (s *Session) AccessedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.LastAccessedAt
}

// File takes the session lock and returns the session as a save file
func (s *Session) File() *savefile.File {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &savefile.File{
		Meta: map[string]string{
			savefile.MetaSession:  s.ID,
			savefile.MetaRules:    s.RulesID,
			savefile.MetaCreated:  s.CreatedAt.UTC().Format(time.RFC3339),
			savefile.MetaAccessed: s.LastAccessedAt.UTC().Format(time.RFC3339),
		},
		Snapshot: s.Game.Snapshot(),
	}
}

// record appends events to the history; callers hold the lock
func (s *Session) record(events []engine.Event) {
	now := time.Now()
	for _, ev := range events {
		s.seq++
		s.history = append(s.history, HistoryEntry{Seq: s.seq, Time: now, Event: ev})
	}
	if over := len(s.history) - maxHistory; over > 0 {
		s.history = append([]HistoryEntry(nil), s.history[over:]...)
	}
}
