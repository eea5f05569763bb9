package session

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/wricardo/property-game/game/engine"
	"github.com/wricardo/property-game/game/savefile"
	"github.com/wricardo/property-game/game/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// Refresher is implemented by storage that expires idle sessions on its
// own. Refresh pushes the expiry back and returns ErrSessionNotFound when
// the stored copy is already gone.
type Refresher interface {
	Refresh(id string) error
}

// encodeSession renders a session in the save file format
func encodeSession(sess *service.Session) ([]byte, error) {
	if sess == nil {
		return nil, fmt.Errorf("session cannot be nil")
	}
	data, err := savefile.Marshal(sess.File())
	if err != nil {
		return nil, fmt.Errorf("failed to encode session %s: %w", sess.ID, err)
	}
	return data, nil
}

// decodeSession rebuilds a session stored under id. The ruleset named in the
// file is resolved through rules; a missing or unknown ruleset falls back to
// the default. Restored sessions get freshly seeded dice.
func decodeSession(id string, data []byte, rules service.RulesManager) (*service.Session, error) {
	file, err := savefile.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}

	rulesID := file.Meta[savefile.MetaRules]
	var set *engine.Rules
	if rules != nil && rulesID != "" {
		set, _ = rules.LoadRules(rulesID)
	}
	if set == nil && rules != nil {
		set = rules.GetDefault()
	}
	if set == nil {
		builtin := engine.DefaultRules()
		set = &builtin
	}
	if rulesID == "" {
		rulesID = set.Name
	}

	game, err := engine.FromSnapshot(file.Snapshot, *set, engine.NewRandomDice(rand.Uint64()))
	if err != nil {
		return nil, fmt.Errorf("failed to restore session %s: %w", id, err)
	}

	sessionID := file.Meta[savefile.MetaSession]
	if !strings.EqualFold(sessionID, id) {
		sessionID = id
	}
	now := time.Now()
	return &service.Session{
		ID:             sessionID,
		RulesID:        rulesID,
		Game:           game,
		CreatedAt:      parseTime(file.Meta[savefile.MetaCreated], now),
		LastAccessedAt: parseTime(file.Meta[savefile.MetaAccessed], now),
	}, nil
}

func parseTime(s string, def time.Time) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return def
	}
	return t
}
