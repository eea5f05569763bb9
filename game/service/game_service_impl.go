package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/property-game/game/engine"
	"github.com/wricardo/property-game/game/savefile"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidDice     = errors.New("dice must be two values between 1 and 6")
	ErrInvalidRequest  = errors.New("invalid request")
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	rules    RulesManager
	log      logrus.FieldLogger
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, rules RulesManager) GameService {
	return NewGameServiceWithLogger(sessions, rules, logrus.StandardLogger())
}

// NewGameServiceWithLogger creates a game service that logs to log
func NewGameServiceWithLogger(sessions SessionManager, rules RulesManager, log logrus.FieldLogger) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		rules:    rules,
		log:      log.WithField("component", "service"),
	}
}

// CreateSession starts a new game
func (s *gameServiceImpl) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error) {
	rulesID, rules, err := s.resolveRules(req.RulesID)
	if err != nil {
		return nil, err
	}

	seed := rand.Uint64()
	if req.Seed != nil {
		seed = *req.Seed
	}
	game, err := engine.NewGame(req.Players, req.Order, *rules, engine.NewRandomDice(seed))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	sess, err := s.sessions.Create("", rulesID, game)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"session": sess.ID,
		"rules":   rulesID,
		"players": len(req.Players),
	}).Info("session created")
	return s.info(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.info(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.info(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	s.log.WithField("session", sessionID).Info("session deleted")
	return nil
}

// Roll resolves the acting player's turn. With no dice the session's own
// dice are rolled; otherwise dice must hold exactly two faces.
func (s *gameServiceImpl) Roll(ctx context.Context, sessionID string, dice []int) (*ActionResult, error) {
	if len(dice) != 0 {
		if len(dice) != 2 || dice[0] < 1 || dice[0] > 6 || dice[1] < 1 || dice[1] > 6 {
			return nil, fmt.Errorf("%w: got %v", ErrInvalidDice, dice)
		}
	}

	return s.act(sessionID, "roll", func(g *engine.Game) ([]engine.Event, string, error) {
		switch {
		case g.Over():
			return nil, "the game is over", nil
		case g.Rolled():
			return nil, "already rolled this turn", nil
		}
		var (
			events []engine.Event
			err    error
		)
		if len(dice) == 2 {
			events, err = g.PlayTurn(dice[0], dice[1])
		} else {
			events, err = g.Roll()
		}
		if err != nil {
			return events, "", err
		}
		return events, describeRoll(events), nil
	})
}

// Purchase buys the property under the acting player
func (s *gameServiceImpl) Purchase(ctx context.Context, sessionID string) (*ActionResult, error) {
	return s.act(sessionID, "purchase", func(g *engine.Game) ([]engine.Event, string, error) {
		if !g.Over() && !g.Rolled() {
			return nil, "roll before buying", nil
		}
		events := g.Purchase()
		if bought := engine.FilterEvents(events, engine.EventPropertyBought); len(bought) > 0 {
			return events, fmt.Sprintf("Bought %s for %d", bought[0].Description, bought[0].Amount), nil
		}
		return events, "nothing to buy here", nil
	})
}

// Build adds a house or the hotel to the property under the acting player
func (s *gameServiceImpl) Build(ctx context.Context, sessionID string) (*ActionResult, error) {
	return s.act(sessionID, "build", func(g *engine.Game) ([]engine.Event, string, error) {
		if !g.Over() && !g.Rolled() {
			return nil, "roll before building", nil
		}
		events := g.Build()
		if built := engine.FilterEvents(events, engine.EventHouseBuilt); len(built) > 0 {
			ev := built[0]
			if ev.Hotel {
				return events, fmt.Sprintf("Built a hotel on %s", ev.Description), nil
			}
			return events, fmt.Sprintf("Built house %d on %s", ev.Houses, ev.Description), nil
		}
		return events, "cannot build here", nil
	})
}

// UseReleaseCard spends a release card held by the acting player
func (s *gameServiceImpl) UseReleaseCard(ctx context.Context, sessionID string) (*ActionResult, error) {
	return s.act(sessionID, "release", func(g *engine.Game) ([]engine.Event, string, error) {
		events := g.UseReleaseCard()
		if len(engine.FilterEvents(events, engine.EventReleaseCardUsed)) > 0 {
			return events, "Released from jail", nil
		}
		return events, "no release card to use", nil
	})
}

// EndTurn passes the turn to the next solvent player
func (s *gameServiceImpl) EndTurn(ctx context.Context, sessionID string) (*ActionResult, error) {
	return s.act(sessionID, "end_turn", func(g *engine.Game) ([]engine.Event, string, error) {
		if g.Over() {
			return nil, "the game is over", nil
		}
		events := g.Advance()
		return events, fmt.Sprintf("Player %d to act", g.CurrentIndex()), nil
	})
}

// act runs one action with the session locked, records its events and
// persists the session. An action is successful when it emitted events.
func (s *gameServiceImpl) act(sessionID, action string, fn func(g *engine.Game) ([]engine.Event, string, error)) (*ActionResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	events, message, err := fn(sess.Game)
	sess.record(events)
	state := stateOf(sess.Game)
	sess.Unlock()

	logger := s.log.WithFields(logrus.Fields{"session": sess.ID, "action": action, "events": len(events)})
	if err != nil {
		logger.WithError(err).Error("action failed")
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	logger.Debug(message)

	if saveErr := s.sessions.Save(sess.ID); saveErr != nil {
		logger.WithError(saveErr).Warn("failed to persist session")
	}

	if events == nil {
		events = []engine.Event{}
	}
	return &ActionResult{
		Success:   len(events) > 0,
		Message:   message,
		Events:    events,
		GameState: state,
	}, nil
}

// GetGameState returns the current read model
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*GameState, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()
	return stateOf(sess.Game), nil
}

// GetEventHistory pages through the events recorded for a session
func (s *gameServiceImpl) GetEventHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	var entries []HistoryEntry
	for _, h := range sess.history {
		if opts.Type == "" || string(h.Event.Type) == opts.Type {
			entries = append(entries, h)
		}
	}
	sess.Unlock()

	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	if opts.Limit > 200 {
		opts.Limit = 200
	}
	if opts.Page <= 0 {
		opts.Page = 1
	}
	if opts.Order == "desc" {
		for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
			entries[i], entries[j] = entries[j], entries[i]
		}
	}

	total := len(entries)
	totalPages := (total + opts.Limit - 1) / opts.Limit
	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	page := make([]HistoryEntry, end-start)
	copy(page, entries[start:end])
	return &HistoryResponse{
		Events:      page,
		TotalEvents: total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ExportSnapshot renders the session in the save file format
func (s *gameServiceImpl) ExportSnapshot(ctx context.Context, sessionID string) (string, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return "", err
	}

	data, err := savefile.Marshal(sess.File())
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return string(data), nil
}

// ImportSnapshot creates a session from save file text. The ruleset named in
// the file is used when it can be loaded, otherwise the default.
func (s *gameServiceImpl) ImportSnapshot(ctx context.Context, sessionID, text string) (*SessionInfo, error) {
	file, err := savefile.Decode(bytes.NewReader([]byte(text)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	rulesID, rules, err := s.resolveRules(file.Meta[savefile.MetaRules])
	if err != nil {
		s.log.WithError(err).Warn("unknown ruleset in snapshot, using default")
		rulesID, rules, _ = s.resolveRules("")
	}

	game, err := engine.FromSnapshot(file.Snapshot, *rules, engine.NewRandomDice(rand.Uint64()))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	sess, err := s.sessions.Create(sessionID, rulesID, game)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.log.WithFields(logrus.Fields{"session": sess.ID, "rules": rulesID}).Info("session imported")
	return s.info(sess), nil
}

// ListRules lists the available rulesets
func (s *gameServiceImpl) ListRules(ctx context.Context) ([]*RulesInfo, error) {
	return s.rules.ListRules()
}

// LoadRules loads one ruleset by id
func (s *gameServiceImpl) LoadRules(ctx context.Context, rulesID string) (*engine.Rules, error) {
	return s.rules.LoadRules(rulesID)
}

// SaveRules stores a ruleset under rulesID
func (s *gameServiceImpl) SaveRules(ctx context.Context, rulesID string, rules *engine.Rules) error {
	return s.rules.SaveRules(rulesID, rules)
}

func (s *gameServiceImpl) resolveRules(id string) (string, *engine.Rules, error) {
	if id == "" {
		def := s.rules.GetDefault()
		if def == nil {
			builtin := engine.DefaultRules()
			def = &builtin
		}
		return def.Name, def, nil
	}
	rules, err := s.rules.LoadRules(id)
	if err != nil {
		available, listErr := s.rules.ListRules()
		if listErr == nil && len(available) > 0 {
			ids := make([]string, len(available))
			for i, r := range available {
				ids[i] = r.RulesID
			}
			return "", nil, fmt.Errorf("%w: rules %q not found, available: %v", ErrInvalidRequest, id, ids)
		}
		return "", nil, fmt.Errorf("%w: rules %q: %w", ErrInvalidRequest, id, err)
	}
	return id, rules, nil
}

func (s *gameServiceImpl) session(id string) (*Session, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.sessions.UpdateLastAccessed(id)
	return sess, nil
}

func (s *gameServiceImpl) info(sess *Session) *SessionInfo {
	sess.Lock()
	defer sess.Unlock()
	return &SessionInfo{
		ID:             sess.ID,
		RulesID:        sess.RulesID,
		Rules:          sess.Game.Engine().Rules(),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      stateOf(sess.Game),
	}
}

// stateOf builds the read model; callers hold the session lock
func stateOf(g *engine.Game) *GameState {
	eng := g.Engine()
	board := eng.Board()

	state := &GameState{
		BankBalance:   eng.Bank().Balance(),
		TurnOrder:     g.TurnOrder(),
		CurrentPlayer: g.CurrentIndex(),
		Rolled:        g.Rolled(),
		GameOver:      g.Over(),
		Winner:        g.Winner(),
		DeckSize:      board.Deck().Len(),
	}

	for _, p := range g.Players() {
		ps := PlayerState{
			Index:        p.Index(),
			Name:         p.Name(),
			Color:        p.Color(),
			Balance:      p.Balance(),
			Position:     p.Position(),
			Cell:         board.CellName(p.Position()),
			InJail:       p.InJail(),
			Bankrupt:     p.Bankrupt(),
			ReleaseCards: p.ReleaseCards(),
			Properties:   []int{},
		}
		for _, prop := range board.PropertiesOf(p) {
			ps.Properties = append(ps.Properties, prop.Position())
		}
		state.Players = append(state.Players, ps)
	}

	for _, prop := range board.Properties() {
		ps := PropertyState{
			Position: prop.Position(),
			Name:     prop.Name(),
			Kind:     prop.Kind(),
			Price:    prop.Price(),
			Rent:     prop.Rent(),
			Owner:    -1,
		}
		if owner := prop.Owner(); owner != nil {
			ps.Owner = owner.Index()
		}
		if land, ok := prop.(*engine.Land); ok {
			ps.HouseCost = land.HouseCost()
			ps.Houses = land.Houses()
			ps.Hotel = land.HasHotel()
		}
		state.Properties = append(state.Properties, ps)
	}
	return state
}

func describeRoll(events []engine.Event) string {
	rolled := engine.FilterEvents(events, engine.EventDiceRolled)
	if len(rolled) == 0 {
		return "player cannot act"
	}
	msg := fmt.Sprintf("Rolled %d and %d", rolled[0].Dice[0], rolled[0].Dice[1])
	if moved := engine.FilterEvents(events, engine.EventPlayerMoved); len(moved) > 0 {
		last := moved[len(moved)-1]
		msg += fmt.Sprintf(", now on cell %d", last.To)
	}
	return msg
}
