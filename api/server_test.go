package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/property-game/game/config"
	"github.com/wricardo/property-game/game/engine"
	"github.com/wricardo/property-game/game/service"
	"github.com/wricardo/property-game/game/session"
	"github.com/wricardo/property-game/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	CreateSessionFunc   func(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error)
	GetSessionFunc      func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc    func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc   func(ctx context.Context, sessionID string) error
	RollFunc            func(ctx context.Context, sessionID string, dice []int) (*service.ActionResult, error)
	ActionFunc          func(ctx context.Context, action, sessionID string) (*service.ActionResult, error)
	GetGameStateFunc    func(ctx context.Context, sessionID string) (*service.GameState, error)
	GetEventHistoryFunc func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error)
	ExportSnapshotFunc  func(ctx context.Context, sessionID string) (string, error)
	ImportSnapshotFunc  func(ctx context.Context, sessionID, text string) (*service.SessionInfo, error)
	ListRulesFunc       func(ctx context.Context) ([]*service.RulesInfo, error)
	LoadRulesFunc       func(ctx context.Context, rulesID string) (*engine.Rules, error)
	SaveRulesFunc       func(ctx context.Context, rulesID string, rules *engine.Rules) error
}

func (m *MockGameService) CreateSession(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, req)
	}
	return &service.SessionInfo{ID: "test-session", RulesID: "classic", CreatedAt: time.Now()}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{ID: sessionID, RulesID: "classic", CreatedAt: time.Now()}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockGameService) Roll(ctx context.Context, sessionID string, dice []int) (*service.ActionResult, error) {
	if m.RollFunc != nil {
		return m.RollFunc(ctx, sessionID, dice)
	}
	return &service.ActionResult{Success: true, GameState: &service.GameState{}}, nil
}

func (m *MockGameService) action(ctx context.Context, action, sessionID string) (*service.ActionResult, error) {
	if m.ActionFunc != nil {
		return m.ActionFunc(ctx, action, sessionID)
	}
	return &service.ActionResult{Success: true, Message: action, GameState: &service.GameState{}}, nil
}

func (m *MockGameService) Purchase(ctx context.Context, sessionID string) (*service.ActionResult, error) {
	return m.action(ctx, "purchase", sessionID)
}

func (m *MockGameService) Build(ctx context.Context, sessionID string) (*service.ActionResult, error) {
	return m.action(ctx, "build", sessionID)
}

func (m *MockGameService) UseReleaseCard(ctx context.Context, sessionID string) (*service.ActionResult, error) {
	return m.action(ctx, "release", sessionID)
}

func (m *MockGameService) EndTurn(ctx context.Context, sessionID string) (*service.ActionResult, error) {
	return m.action(ctx, "end_turn", sessionID)
}

func (m *MockGameService) GetGameState(ctx context.Context, sessionID string) (*service.GameState, error) {
	if m.GetGameStateFunc != nil {
		return m.GetGameStateFunc(ctx, sessionID)
	}
	return &service.GameState{}, nil
}

func (m *MockGameService) GetEventHistory(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	if m.GetEventHistoryFunc != nil {
		return m.GetEventHistoryFunc(ctx, sessionID, opts)
	}
	return &service.HistoryResponse{}, nil
}

func (m *MockGameService) ExportSnapshot(ctx context.Context, sessionID string) (string, error) {
	if m.ExportSnapshotFunc != nil {
		return m.ExportSnapshotFunc(ctx, sessionID)
	}
	return "", nil
}

func (m *MockGameService) ImportSnapshot(ctx context.Context, sessionID, text string) (*service.SessionInfo, error) {
	if m.ImportSnapshotFunc != nil {
		return m.ImportSnapshotFunc(ctx, sessionID, text)
	}
	return &service.SessionInfo{ID: sessionID}, nil
}

func (m *MockGameService) ListRules(ctx context.Context) ([]*service.RulesInfo, error) {
	if m.ListRulesFunc != nil {
		return m.ListRulesFunc(ctx)
	}
	return []*service.RulesInfo{}, nil
}

func (m *MockGameService) LoadRules(ctx context.Context, rulesID string) (*engine.Rules, error) {
	if m.LoadRulesFunc != nil {
		return m.LoadRulesFunc(ctx, rulesID)
	}
	rules := engine.DefaultRules()
	return &rules, nil
}

func (m *MockGameService) SaveRules(ctx context.Context, rulesID string, rules *engine.Rules) error {
	if m.SaveRulesFunc != nil {
		return m.SaveRulesFunc(ctx, rulesID, rules)
	}
	return nil
}

// Helper functions
func setupTestServer(mockService *MockGameService) *Server {
	return NewServer(mockService, nil)
}

func makeRequest(method, url string, body interface{}) *http.Request {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to parse response: %v (body %q)", err, w.Body.String())
	}
}

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name: "players and rules are passed through",
			requestBody: map[string]interface{}{
				"players":  []map[string]interface{}{{"name": "Ana"}, {"name": "Bia", "color": 1}},
				"rules_id": "no_hotels",
				"order":    []int{1, 0},
				"seed":     42,
			},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error) {
					if len(req.Players) != 2 || req.Players[1].Name != "Bia" || req.Players[1].Color != 1 {
						t.Errorf("Unexpected players %+v", req.Players)
					}
					if req.RulesID != "no_hotels" || req.Seed == nil || *req.Seed != 42 {
						t.Errorf("Unexpected request %+v", req)
					}
					return &service.SessionInfo{ID: "sess-123", RulesID: req.RulesID}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ID != "sess-123" || resp.RulesID != "no_hotels" {
					t.Errorf("Unexpected response %+v", resp)
				}
			},
		},
		{
			name:           "invalid body",
			requestBody:    "not an object",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "bad request from service",
			requestBody: map[string]interface{}{"players": []map[string]string{{"name": "Solo"}}},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("%w: %w", service.ErrInvalidRequest, engine.ErrInvalidPlayerCount)
				}
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "service error",
			requestBody: map[string]interface{}{},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error) {
					return nil, errors.New("service error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "service error" {
					t.Errorf("Expected error message 'service error', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/sessions", tt.requestBody))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestListSessions(t *testing.T) {
	now := time.Now()
	mockService := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "old", RulesID: "classic", CreatedAt: now.Add(-3 * time.Hour), LastAccessedAt: now.Add(-time.Hour)},
				{ID: "new", RulesID: "no_hotels", CreatedAt: now.Add(-time.Hour), LastAccessedAt: now},
				{ID: "mid", RulesID: "classic", CreatedAt: now.Add(-2 * time.Hour), LastAccessedAt: now.Add(-30 * time.Minute)},
			}, nil
		},
	}
	server := setupTestServer(mockService)

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"new", "mid", "old"}},
		{"?sort=created&order=asc", []string{"old", "mid", "new"}},
		{"?limit=1", []string{"new"}},
		{"?rules=classic", []string{"mid", "old"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", "/api/sessions"+tt.query, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d", w.Code)
			}

			var resp struct {
				Count    int                    `json:"count"`
				Total    int                    `json:"total"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			parseResponse(t, w, &resp)
			if resp.Total != 3 {
				t.Errorf("Expected total 3, got %d", resp.Total)
			}
			var got []string
			for _, s := range resp.Sessions {
				got = append(got, s.ID)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestGetAndDeleteSession(t *testing.T) {
	mockService := &MockGameService{
		GetSessionFunc: func(ctx context.Context, id string) (*service.SessionInfo, error) {
			if id != "ab12" {
				return nil, fmt.Errorf("%w: %s", service.ErrSessionNotFound, id)
			}
			return &service.SessionInfo{ID: id}, nil
		},
		DeleteSessionFunc: func(ctx context.Context, id string) error {
			if id != "ab12" {
				return fmt.Errorf("%w: %s", service.ErrSessionNotFound, id)
			}
			return nil
		},
	}
	server := setupTestServer(mockService)

	cases := []struct {
		method, path string
		status       int
	}{
		{"GET", "/api/sessions/ab12", http.StatusOK},
		{"GET", "/api/sessions/zz99", http.StatusNotFound},
		{"DELETE", "/api/sessions/ab12", http.StatusOK},
		{"DELETE", "/api/sessions/zz99", http.StatusNotFound},
	}
	for _, c := range cases {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest(c.method, c.path, nil))
		if w.Code != c.status {
			t.Errorf("%s %s: expected %d, got %d", c.method, c.path, c.status, w.Code)
		}
	}
}

func TestRoll(t *testing.T) {
	var gotDice []int
	mockService := &MockGameService{
		RollFunc: func(ctx context.Context, id string, dice []int) (*service.ActionResult, error) {
			gotDice = dice
			if len(dice) == 1 {
				return nil, fmt.Errorf("%w: got %v", service.ErrInvalidDice, dice)
			}
			return &service.ActionResult{
				Success:   true,
				Events:    []engine.Event{{Type: engine.EventDiceRolled, Dice: []int{2, 5}}},
				GameState: &service.GameState{Rolled: true},
			}, nil
		},
	}
	server := setupTestServer(mockService)

	t.Run("random dice without body", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("POST", "/api/sessions/ab12/roll", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		if gotDice != nil {
			t.Errorf("Expected no forced dice, got %v", gotDice)
		}
		var resp service.ActionResult
		parseResponse(t, w, &resp)
		if !resp.Success || len(resp.Events) != 1 || resp.Events[0].Type != engine.EventDiceRolled {
			t.Errorf("Unexpected result %+v", resp)
		}
	})

	t.Run("forced dice", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("POST", "/api/sessions/ab12/roll", map[string][]int{"dice": {3, 3}}))
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		if len(gotDice) != 2 || gotDice[0] != 3 || gotDice[1] != 3 {
			t.Errorf("Expected dice [3 3], got %v", gotDice)
		}
	})

	t.Run("invalid dice", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("POST", "/api/sessions/ab12/roll", map[string][]int{"dice": {9}}))
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/sessions/ab12/roll", strings.NewReader("{"))
		server.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})
}

func TestTurnActions(t *testing.T) {
	var calls []string
	mockService := &MockGameService{
		ActionFunc: func(ctx context.Context, action, id string) (*service.ActionResult, error) {
			calls = append(calls, action+":"+id)
			if id == "gone" {
				return nil, service.ErrSessionNotFound
			}
			return &service.ActionResult{Success: true, Message: action, GameState: &service.GameState{}}, nil
		},
	}
	server := setupTestServer(mockService)

	for _, path := range []string{"purchase", "build", "release", "end-turn"} {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("POST", "/api/sessions/ab12/"+path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, w.Code)
		}
	}
	want := "purchase:ab12,build:ab12,release:ab12,end_turn:ab12"
	if got := strings.Join(calls, ","); got != want {
		t.Errorf("Expected calls %s, got %s", want, got)
	}

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sessions/gone/build", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/ab12/build", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for GET on an action, got %d", w.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	server := setupTestServer(&MockGameService{})

	tests := []struct {
		method string
		path   string
	}{
		{"GET", "/api/sessions/ab12/roll"},
		{"GET", "/api/sessions/ab12/purchase"},
		{"DELETE", "/api/sessions/ab12/end-turn"},
		{"POST", "/api/sessions/ab12/state"},
		{"PUT", "/api/sessions"},
		{"DELETE", "/api/rules"},
		{"POST", "/health"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest(tt.method, tt.path, nil))
			if w.Code != http.StatusMethodNotAllowed {
				t.Fatalf("Expected 405, got %d", w.Code)
			}
			var body map[string]interface{}
			parseResponse(t, w, &body)
			if body["error"] == nil {
				t.Errorf("Expected an error message, got %v", body)
			}
		})
	}

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/nothing/here", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for an unknown path, got %d", w.Code)
	}
}

func TestGetHistory(t *testing.T) {
	var got service.HistoryOptions
	mockService := &MockGameService{
		GetEventHistoryFunc: func(ctx context.Context, id string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
			got = opts
			return &service.HistoryResponse{Page: opts.Page}, nil
		},
	}
	server := setupTestServer(mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/ab12/history?page=2&limit=10&order=desc&type=rent_paid", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	want := service.HistoryOptions{Page: 2, Limit: 10, Order: "desc", Type: "rent_paid"}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}

	server.ServeHTTP(httptest.NewRecorder(), makeRequest("GET", "/api/sessions/ab12/history?page=-1&order=sideways", nil))
	if got.Page != 1 || got.Order != "asc" || got.Limit != 50 {
		t.Errorf("Expected defaults, got %+v", got)
	}
}

func TestSnapshotEndpoints(t *testing.T) {
	var imported string
	mockService := &MockGameService{
		ExportSnapshotFunc: func(ctx context.Context, id string) (string, error) {
			return "BANK=1\nPLAYER|A\nPLAYER|B\n", nil
		},
		ImportSnapshotFunc: func(ctx context.Context, id, text string) (*service.SessionInfo, error) {
			imported = text
			if strings.Contains(text, "BANK=x") {
				return nil, service.ErrInvalidRequest
			}
			return &service.SessionInfo{ID: id}, nil
		},
	}
	server := setupTestServer(mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/ab12/snapshot", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Expected text/plain, got %s", ct)
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "ab12.sav") {
		t.Errorf("Expected attachment name, got %s", w.Header().Get("Content-Disposition"))
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest("POST", "/api/sessions/import?id=copy", strings.NewReader("PLAYER|A\nPLAYER|B\n")))
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", w.Code)
	}
	if imported != "PLAYER|A\nPLAYER|B\n" {
		t.Errorf("Unexpected import body %q", imported)
	}
	var info service.SessionInfo
	parseResponse(t, w, &info)
	if info.ID != "copy" {
		t.Errorf("Expected id copy, got %q", info.ID)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest("POST", "/api/sessions/import", strings.NewReader("BANK=x")))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestRulesEndpoints(t *testing.T) {
	var saved *engine.Rules
	mockService := &MockGameService{
		ListRulesFunc: func(ctx context.Context) ([]*service.RulesInfo, error) {
			return []*service.RulesInfo{{RulesID: "classic", Name: "classic", HotelTier: true}}, nil
		},
		LoadRulesFunc: func(ctx context.Context, id string) (*engine.Rules, error) {
			if id != "classic" {
				return nil, errors.New("ruleset not found")
			}
			rules := engine.DefaultRules()
			return &rules, nil
		},
		SaveRulesFunc: func(ctx context.Context, id string, rules *engine.Rules) error {
			saved = rules
			return nil
		},
	}
	server := setupTestServer(mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/rules", nil))
	var infos []*service.RulesInfo
	parseResponse(t, w, &infos)
	if len(infos) != 1 || infos[0].RulesID != "classic" {
		t.Errorf("Unexpected rules list %+v", infos)
	}

	for path, status := range map[string]int{"/api/rules/classic": 200, "/api/rules/classic.json": 200, "/api/rules/other": 404} {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", path, nil))
		if w.Code != status {
			t.Errorf("GET %s: expected %d, got %d", path, status, w.Code)
		}
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/rules", engine.Rules{Name: "house", HotelTier: true}))
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", w.Code)
	}
	if saved == nil || saved.Name != "house" || !saved.HotelTier {
		t.Errorf("Unexpected saved rules %+v", saved)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/rules", engine.Rules{Name: "a|b"}))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid rules, got %d", w.Code)
	}
}

func TestHealthAndRequestID(t *testing.T) {
	server := setupTestServer(&MockGameService{})

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("Expected a generated request id")
	}

	w = httptest.NewRecorder()
	req := makeRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", "given-id")
	server.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "given-id" {
		t.Errorf("Expected request id to be echoed, got %q", got)
	}
}

func TestWebSocketRequiresSession(t *testing.T) {
	hub := websocket.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	server := NewServer(&MockGameService{
		GetSessionFunc: func(ctx context.Context, id string) (*service.SessionInfo, error) {
			return nil, service.ErrSessionNotFound
		},
	}, hub)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/ws", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without session, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/ws?session=nope", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown session, got %d", w.Code)
	}
}

// TestServer_FullGame drives the real service stack over HTTP
func TestServer_FullGame(t *testing.T) {
	rules, err := config.NewManager("../configs")
	if err != nil {
		t.Fatal(err)
	}
	svc := service.NewGameService(session.NewManager(), rules)
	ts := httptest.NewServer(NewServer(svc, nil))
	defer ts.Close()

	post := func(path string, body interface{}) *http.Response {
		t.Helper()
		data, _ := json.Marshal(body)
		resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(data))
		if err != nil {
			t.Fatal(err)
		}
		return resp
	}

	resp := post("/api/sessions", map[string]interface{}{
		"players":  []map[string]interface{}{{"name": "Ana"}, {"name": "Bia", "color": 1}},
		"rules_id": "fixed_deck",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", resp.StatusCode)
	}
	var info service.SessionInfo
	json.NewDecoder(resp.Body).Decode(&info)
	resp.Body.Close()

	resp = post("/api/sessions/"+info.ID+"/roll", map[string][]int{"dice": {1, 2}})
	var result service.ActionResult
	json.NewDecoder(resp.Body).Decode(&result)
	resp.Body.Close()
	if !result.Success || result.GameState.Players[0].Position != 3 {
		t.Fatalf("Unexpected roll result %+v", result)
	}

	resp = post("/api/sessions/"+info.ID+"/purchase", nil)
	json.NewDecoder(resp.Body).Decode(&result)
	resp.Body.Close()
	if result.GameState.Players[0].Balance != engine.StartingBalance-60 {
		t.Errorf("Expected balance %d, got %d", engine.StartingBalance-60, result.GameState.Players[0].Balance)
	}

	snap, err := http.Get(ts.URL + "/api/sessions/" + info.ID + "/snapshot")
	if err != nil {
		t.Fatal(err)
	}
	text, _ := io.ReadAll(snap.Body)
	snap.Body.Close()
	if !strings.Contains(string(text), "PROP|3|0|0|0") {
		t.Errorf("Expected purchase in snapshot:\n%s", text)
	}
}
