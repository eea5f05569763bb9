package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/property-game/game/engine"
	"github.com/wricardo/property-game/game/service"
)

var (
	ErrRulesNotFound = errors.New("ruleset not found")
	ErrInvalidRules  = errors.New("invalid ruleset")
)

// DefaultID is the ruleset used when none is requested
const DefaultID = "classic"

// Manager loads rulesets from <dir>/<id>.json and caches them
type Manager struct {
	dir          string
	defaultRules *engine.Rules
	rules        map[string]*engine.Rules
	mu           sync.RWMutex
}

// NewManager creates a ruleset manager over dir
func NewManager(dir string) (*Manager, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, fmt.Errorf("rules directory does not exist: %s", dir)
	}

	m := &Manager{
		dir:   dir,
		rules: make(map[string]*engine.Rules),
	}
	m.loadDefaultRules()
	return m, nil
}

// LoadRules returns the ruleset stored under id
func (m *Manager) LoadRules(id string) (*engine.Rules, error) {
	id = strings.TrimSuffix(id, ".json")
	if id == "" || strings.ContainsAny(id, `/\`) {
		return nil, fmt.Errorf("%w: %q", ErrRulesNotFound, id)
	}

	m.mu.RLock()
	if rules, ok := m.rules[id]; ok {
		m.mu.RUnlock()
		return rules, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if rules, ok := m.rules[id]; ok {
		return rules, nil
	}

	data, err := os.ReadFile(m.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			if id == DefaultID {
				rules := engine.DefaultRules()
				return &rules, nil
			}
			return nil, fmt.Errorf("%w: %s", ErrRulesNotFound, id)
		}
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	rules, err := Parse(data)
	if err != nil {
		return nil, err
	}

	m.rules[id] = rules
	return rules, nil
}

// Parse decodes and validates one ruleset document. Fields left out of the
// document keep the classic defaults.
func Parse(data []byte) (*engine.Rules, error) {
	rules := engine.DefaultRules()
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}
	if err := engine.ValidateRules(&rules); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}
	return &rules, nil
}

// ListRules describes every loadable ruleset in the directory, sorted by id
func (m *Manager) ListRules() ([]*service.RulesInfo, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules directory: %w", err)
	}

	var out []*service.RulesInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		rules, err := m.LoadRules(id)
		if err != nil {
			continue
		}
		out = append(out, infoFor(id, entry.Name(), rules))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].RulesID < out[j].RulesID })
	return out, nil
}

func infoFor(id, filename string, rules *engine.Rules) *service.RulesInfo {
	return &service.RulesInfo{
		Filename:    filename,
		RulesID:     id,
		Name:        rules.Name,
		Description: rules.Description,
		HotelTier:   rules.HotelTier,
		ShuffleDeck: rules.ShuffleDeck,
	}
}

// GetDefault returns the default ruleset
func (m *Manager) GetDefault() *engine.Rules {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultRules
}

// SetDefault makes the ruleset stored under id the default
func (m *Manager) SetDefault(id string) error {
	rules, err := m.LoadRules(id)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultRules = rules
	return nil
}

// RefreshCache drops every cached ruleset and reloads the default
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.rules = make(map[string]*engine.Rules)
	m.mu.Unlock()

	m.loadDefaultRules()
}

// SaveRules validates rules and writes them to <dir>/<id>.json
func (m *Manager) SaveRules(id string, rules *engine.Rules) error {
	if err := engine.ValidateRules(rules); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}
	id = strings.TrimSuffix(id, ".json")
	if id == "" || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: bad id %q", ErrInvalidRules, id)
	}

	data, err := json.MarshalIndent(rules, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal rules: %w", err)
	}
	if err := os.WriteFile(m.path(id), data, 0644); err != nil {
		return fmt.Errorf("failed to write rules file: %w", err)
	}

	stored := *rules
	m.mu.Lock()
	m.rules[id] = &stored
	m.mu.Unlock()
	return nil
}

// loadDefaultRules prefers classic.json, then the built-in classic rules
func (m *Manager) loadDefaultRules() {
	rules, err := m.LoadRules(DefaultID)
	if err != nil {
		builtin := engine.DefaultRules()
		rules = &builtin
	}

	m.mu.Lock()
	m.defaultRules = rules
	m.mu.Unlock()
}

func (m *Manager) path(id string) string {
	return filepath.Join(m.dir, id+".json")
}
