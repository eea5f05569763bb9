package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/wricardo/property-game/game/engine"
)

func writeRulesFile(t *testing.T, dir, id string, v any) {
	t.Helper()
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal rules: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, id+".json"), data, 0644); err != nil {
		t.Fatalf("Failed to write rules file: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("non-existent directory", func(t *testing.T) {
		_, err := NewManager("/non/existent/path")
		if err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})

	t.Run("empty directory falls back to builtin classic", func(t *testing.T) {
		manager, err := NewManager(t.TempDir())
		if err != nil {
			t.Fatalf("NewManager should succeed without rules files, got: %v", err)
		}
		def := manager.GetDefault()
		if def == nil || *def != engine.DefaultRules() {
			t.Errorf("Expected builtin default rules, got %+v", def)
		}
	})

	t.Run("classic file becomes the default", func(t *testing.T) {
		dir := t.TempDir()
		writeRulesFile(t, dir, "classic", engine.Rules{Name: "classic", Description: "from disk", HotelTier: true})

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if got := manager.GetDefault().Description; got != "from disk" {
			t.Errorf("Expected default loaded from disk, got description %q", got)
		}
	})
}

func TestManager_LoadRules(t *testing.T) {
	dir := t.TempDir()
	writeRulesFile(t, dir, "no_hotels", map[string]any{"name": "no_hotels", "hotel_tier": false})
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	writeRulesFile(t, dir, "piped", map[string]any{"name": "a|b"})

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("missing fields keep defaults", func(t *testing.T) {
		rules, err := manager.LoadRules("no_hotels")
		if err != nil {
			t.Fatalf("Failed to load rules: %v", err)
		}
		if rules.HotelTier {
			t.Error("Expected hotel tier disabled")
		}
		if !rules.ShuffleDeck {
			t.Error("Expected shuffle_deck to keep its default")
		}
	})

	t.Run("with .json extension", func(t *testing.T) {
		rules, err := manager.LoadRules("no_hotels.json")
		if err != nil {
			t.Fatalf("Failed to load rules with extension: %v", err)
		}
		if rules.Name != "no_hotels" {
			t.Errorf("Expected name 'no_hotels', got %q", rules.Name)
		}
	})

	t.Run("cached", func(t *testing.T) {
		first, _ := manager.LoadRules("no_hotels")
		second, err := manager.LoadRules("no_hotels")
		if err != nil {
			t.Fatal(err)
		}
		if first != second {
			t.Error("Expected rules to come from the cache")
		}
	})

	t.Run("builtin classic", func(t *testing.T) {
		rules, err := manager.LoadRules(DefaultID)
		if err != nil {
			t.Fatalf("Expected builtin classic, got %v", err)
		}
		if rules.Name != "classic" {
			t.Errorf("Expected classic, got %q", rules.Name)
		}
	})

	t.Run("errors", func(t *testing.T) {
		cases := map[string]error{
			"missing":   ErrRulesNotFound,
			"../secret": ErrRulesNotFound,
			"":          ErrRulesNotFound,
			"broken":    ErrInvalidRules,
			"piped":     ErrInvalidRules,
		}
		for id, want := range cases {
			if _, err := manager.LoadRules(id); !errors.Is(err, want) {
				t.Errorf("LoadRules(%q) = %v, want %v", id, err, want)
			}
		}
	})
}

func TestManager_ListRules(t *testing.T) {
	dir := t.TempDir()
	writeRulesFile(t, dir, "zeta", engine.Rules{Name: "Zeta", ShuffleDeck: true})
	writeRulesFile(t, dir, "alpha", engine.Rules{Name: "Alpha", HotelTier: true})
	writeRulesFile(t, dir, "bad", map[string]any{"name": ""})
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.json"), 0755); err != nil {
		t.Fatal(err)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	infos, err := manager.ListRules()
	if err != nil {
		t.Fatalf("Failed to list rules: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("Expected 2 rulesets, got %d", len(infos))
	}
	if infos[0].RulesID != "alpha" || infos[1].RulesID != "zeta" {
		t.Errorf("Expected sorted ids [alpha zeta], got [%s %s]", infos[0].RulesID, infos[1].RulesID)
	}
	if !infos[0].HotelTier || infos[0].Filename != "alpha.json" {
		t.Errorf("Unexpected info: %+v", infos[0])
	}
}

func TestManager_SaveRules(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	rules := &engine.Rules{Name: "house_rules", Description: "no shuffle", HotelTier: true}
	if err := manager.SaveRules("house_rules", rules); err != nil {
		t.Fatalf("Failed to save rules: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "house_rules.json")); err != nil {
		t.Errorf("Expected rules file on disk: %v", err)
	}

	loaded, err := manager.LoadRules("house_rules")
	if err != nil {
		t.Fatal(err)
	}
	if *loaded != *rules {
		t.Errorf("Expected %+v, got %+v", rules, loaded)
	}

	fresh, _ := NewManager(dir)
	fromDisk, err := fresh.LoadRules("house_rules")
	if err != nil || *fromDisk != *rules {
		t.Errorf("Expected rules to round-trip through disk, got %+v (%v)", fromDisk, err)
	}

	if err := manager.SaveRules("bad", &engine.Rules{}); !errors.Is(err, ErrInvalidRules) {
		t.Errorf("Expected ErrInvalidRules for empty name, got %v", err)
	}
	if err := manager.SaveRules("../escape", rules); !errors.Is(err, ErrInvalidRules) {
		t.Errorf("Expected ErrInvalidRules for path id, got %v", err)
	}
}

func TestManager_SetDefaultAndRefresh(t *testing.T) {
	dir := t.TempDir()
	writeRulesFile(t, dir, "no_hotels", engine.Rules{Name: "no_hotels"})
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	if err := manager.SetDefault("no_hotels"); err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}
	if manager.GetDefault().Name != "no_hotels" {
		t.Errorf("Expected no_hotels default, got %q", manager.GetDefault().Name)
	}
	if err := manager.SetDefault("missing"); !errors.Is(err, ErrRulesNotFound) {
		t.Errorf("Expected ErrRulesNotFound, got %v", err)
	}

	manager.RefreshCache()
	if manager.GetDefault().Name != "classic" {
		t.Errorf("Expected refresh to restore classic default, got %q", manager.GetDefault().Name)
	}
}

func TestManager_ConcurrentLoads(t *testing.T) {
	dir := t.TempDir()
	writeRulesFile(t, dir, "no_hotels", engine.Rules{Name: "no_hotels"})
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := manager.LoadRules("no_hotels"); err != nil {
				t.Errorf("concurrent load failed: %v", err)
			}
			manager.ListRules()
		}()
	}
	wg.Wait()
}
