package session

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/property-game/game/config"
	"github.com/wricardo/property-game/game/engine"
	"github.com/wricardo/property-game/game/service"
)

func newRulesManager(t *testing.T) *config.Manager {
	t.Helper()
	rules, err := config.NewManager("../../configs")
	if err != nil {
		t.Fatalf("Failed to create rules manager: %v", err)
	}
	return rules
}

// playedSession returns a session where the first player bought the
// property on cell 3
func playedSession(t *testing.T, id, rulesID string) *service.Session {
	t.Helper()
	rules := engine.DefaultRules()
	rules.ShuffleDeck = false
	g, err := engine.NewGame([]engine.PlayerSetup{{Name: "Ana"}, {Name: "Bia", Color: 1}}, []int{0, 1}, rules, engine.NewFixedDice([2]int{1, 2}))
	if err != nil {
		t.Fatal(err)
	}
	g.Roll()
	g.Purchase()
	g.Advance()

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &service.Session{
		ID:             id,
		RulesID:        rulesID,
		Game:           g,
		CreatedAt:      created,
		LastAccessedAt: created.Add(time.Hour),
	}
}

func TestFilePersistence(t *testing.T) {
	dir := t.TempDir()
	persistence, err := NewFilePersistence(dir, newRulesManager(t))
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}
	sess := playedSession(t, "test1", "no_hotels")

	t.Run("save and load", func(t *testing.T) {
		if err := persistence.Save(sess); err != nil {
			t.Fatalf("Failed to save session: %v", err)
		}
		data, err := os.ReadFile(filepath.Join(dir, "test1.sav"))
		if err != nil {
			t.Fatalf("Expected save file: %v", err)
		}
		if !strings.Contains(string(data), "RULES=no_hotels") {
			t.Errorf("Expected rules metadata in save file:\n%s", data)
		}

		loaded, err := persistence.Load("test1")
		if err != nil {
			t.Fatalf("Failed to load session: %v", err)
		}
		if loaded.ID != "test1" || loaded.RulesID != "no_hotels" {
			t.Errorf("Unexpected identity %q/%q", loaded.ID, loaded.RulesID)
		}
		if !loaded.CreatedAt.Equal(sess.CreatedAt) || !loaded.LastAccessedAt.Equal(sess.LastAccessedAt) {
			t.Errorf("Timestamps not restored: %v %v", loaded.CreatedAt, loaded.LastAccessedAt)
		}
		if loaded.Game.Engine().Rules().HotelTier {
			t.Error("Expected no_hotels ruleset to be applied")
		}
		if got, want := loaded.Game.Snapshot(), sess.Game.Snapshot(); !reflect.DeepEqual(got, want) {
			t.Errorf("Snapshot mismatch:\n got %+v\nwant %+v", got, want)
		}
	})

	t.Run("exists and list", func(t *testing.T) {
		if !persistence.Exists("test1") || !persistence.Exists("TEST1") {
			t.Error("Expected session to exist")
		}
		os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644)
		ids, err := persistence.ListAll()
		if err != nil {
			t.Fatal(err)
		}
		if len(ids) != 1 || ids[0] != "test1" {
			t.Errorf("Expected [test1], got %v", ids)
		}
	})

	t.Run("missing", func(t *testing.T) {
		if _, err := persistence.Load("nope"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
		if err := persistence.Delete("nope"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("corrupt file", func(t *testing.T) {
		os.WriteFile(filepath.Join(dir, "bad1.sav"), []byte("BANK=lots\n"), 0644)
		if _, err := persistence.Load("bad1"); err == nil {
			t.Error("Expected decode error")
		}
	})

	t.Run("unknown rules fall back to default", func(t *testing.T) {
		other := playedSession(t, "test2", "vanished")
		if err := persistence.Save(other); err != nil {
			t.Fatal(err)
		}
		loaded, err := persistence.Load("test2")
		if err != nil {
			t.Fatal(err)
		}
		if loaded.Game.Engine().Rules().Name != "classic" {
			t.Errorf("Expected classic fallback, got %q", loaded.Game.Engine().Rules().Name)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := persistence.Delete("test1"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if persistence.Exists("test1") {
			t.Error("Expected session file to be removed")
		}
	})
}

func TestManagerWithPersistence(t *testing.T) {
	dir := t.TempDir()
	rules := newRulesManager(t)
	persistence, err := NewFilePersistence(dir, rules)
	if err != nil {
		t.Fatal(err)
	}

	manager := NewManagerWithPersistence(persistence)
	sess, err := manager.Create("keep", "classic", newTestGame(t))
	if err != nil {
		t.Fatal(err)
	}
	if !persistence.Exists("keep") {
		t.Fatal("Expected session to be persisted on create")
	}

	sess.Lock()
	sess.Game.PlayTurn(1, 2)
	sess.Game.Purchase()
	sess.Unlock()
	if err := manager.Save("keep"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Run("reload after restart", func(t *testing.T) {
		restarted := NewManagerWithPersistence(persistence)
		if err := restarted.LoadPersistedSessions(); err != nil {
			t.Fatal(err)
		}
		if restarted.Count() != 1 {
			t.Fatalf("Expected 1 loaded session, got %d", restarted.Count())
		}
		got, err := restarted.Get("keep")
		if err != nil {
			t.Fatal(err)
		}
		if owned := got.Game.Engine().Board().PropertyAt(3).Owner(); owned == nil || owned.Index() != 0 {
			t.Error("Expected purchase to survive the restart")
		}
	})

	t.Run("lazy load on get", func(t *testing.T) {
		if err := manager.DeleteFromMemory("keep"); err != nil {
			t.Fatal(err)
		}
		if _, err := manager.Get("keep"); err != nil {
			t.Errorf("Expected session to reload from storage: %v", err)
		}
	})

	t.Run("save all", func(t *testing.T) {
		manager.Create("more", "classic", newTestGame(t))
		if err := manager.SaveAllSessions(); err != nil {
			t.Fatal(err)
		}
		ids, _ := persistence.ListAll()
		if len(ids) != 2 {
			t.Errorf("Expected 2 persisted sessions, got %v", ids)
		}
	})

	t.Run("delete removes storage", func(t *testing.T) {
		manager.DeleteFromMemory("more")
		if err := manager.Delete("more"); err != nil {
			t.Fatalf("Expected delete from storage to succeed: %v", err)
		}
		if persistence.Exists("more") {
			t.Error("Expected persisted copy to be removed")
		}
	})
}
