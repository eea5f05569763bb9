package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/property-game/game/engine"
	"github.com/wricardo/property-game/game/service"
	"github.com/wricardo/property-game/transport/mcp"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName != "Property Game Server" {
		t.Errorf("Unexpected app name %s", AppName)
	}
}

// parseOptions runs the command tree with a capturing action
func parseOptions(t *testing.T, args ...string) options {
	t.Helper()
	var got options
	app := newApp()
	capture := func(ctx context.Context, cmd *cli.Command) error {
		got = optionsFrom(cmd)
		return nil
	}
	app.Action = capture
	for _, sub := range app.Commands {
		sub.Action = capture
	}
	if err := app.Run(context.Background(), append([]string{"property-game"}, args...)); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return got
}

func TestFlagDefaults(t *testing.T) {
	opts := parseOptions(t)

	if opts.port != 8080 {
		t.Errorf("Expected default port 8080, got %d", opts.port)
	}
	if opts.host != "localhost" {
		t.Errorf("Expected default host localhost, got %s", opts.host)
	}
	if opts.configDir != "configs" || opts.sessionsDir != "sessions" {
		t.Errorf("Unexpected directories %q %q", opts.configDir, opts.sessionsDir)
	}
	if opts.redisAddr != "" {
		t.Errorf("Redis should be off by default, got %q", opts.redisAddr)
	}
	if opts.sessionMaxAge != 24*time.Hour {
		t.Errorf("Expected 24h max age, got %v", opts.sessionMaxAge)
	}
	if opts.addr() != "localhost:8080" {
		t.Errorf("Unexpected addr %s", opts.addr())
	}
}

func TestFlagOverrides(t *testing.T) {
	t.Setenv("SESSIONS_DIR", "/tmp/saves")

	opts := parseOptions(t, "--port", "9090", "--redis-addr", "localhost:6379", "server")
	if opts.port != 9090 {
		t.Errorf("Expected port 9090, got %d", opts.port)
	}
	if opts.redisAddr != "localhost:6379" {
		t.Errorf("Expected redis addr, got %q", opts.redisAddr)
	}
	if opts.sessionsDir != "/tmp/saves" {
		t.Errorf("Expected sessions dir from env, got %q", opts.sessionsDir)
	}

	opts = parseOptions(t, "mcp", "--external-api", "http://example:1")
	if opts.externalAPI != "http://example:1" {
		t.Errorf("Expected external api, got %q", opts.externalAPI)
	}
}

func TestSetupLogging_InvalidFormat(t *testing.T) {
	app := newApp()
	app.Action = func(ctx context.Context, cmd *cli.Command) error { return nil }
	err := app.Run(context.Background(), []string{"property-game", "--log-format", "xml"})
	if err == nil || !strings.Contains(err.Error(), "unknown log format") {
		t.Errorf("Expected log format error, got %v", err)
	}
}

func testOptions(t *testing.T) options {
	return options{
		configDir:     "configs",
		sessionsDir:   filepath.Join(t.TempDir(), "sessions"),
		sessionMaxAge: time.Hour,
	}
}

func TestInitializeServices(t *testing.T) {
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	svcs, err := initializeServices(context.Background(), testOptions(t))
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	if svcs.game == nil || svcs.sessions == nil || svcs.persistence == nil {
		t.Fatal("Expected services to be wired")
	}

	info, err := svcs.game.CreateSession(context.Background(), service.CreateSessionRequest{
		Players: []engine.PlayerSetup{{Name: "Ana"}, {Name: "Bia", Color: 1}},
	})
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if !svcs.persistence.Exists(info.ID) {
		t.Error("Expected the new session to be persisted")
	}
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	opts := testOptions(t)
	opts.configDir = "/non/existent/path"

	if _, err := initializeServices(context.Background(), opts); err == nil {
		t.Error("Expected error for non-existent config directory")
	}
}

func TestPruneOrphans(t *testing.T) {
	svcs, err := initializeServices(context.Background(), testOptions(t))
	if err != nil {
		t.Fatal(err)
	}

	keep, _ := svcs.game.CreateSession(context.Background(), service.CreateSessionRequest{
		Players: []engine.PlayerSetup{{Name: "Ana"}, {Name: "Bia"}},
	})
	gone, _ := svcs.game.CreateSession(context.Background(), service.CreateSessionRequest{
		Players: []engine.PlayerSetup{{Name: "Caio"}, {Name: "Duda"}},
	})
	if err := svcs.persistence.Delete(gone.ID); err != nil {
		t.Fatal(err)
	}

	if pruned := pruneOrphans(svcs.sessions, svcs.persistence); pruned != 1 {
		t.Errorf("Expected 1 pruned session, got %d", pruned)
	}
	if svcs.sessions.Count() != 1 {
		t.Errorf("Expected 1 session left, got %d", svcs.sessions.Count())
	}
	if _, err := svcs.sessions.Get(keep.ID); err != nil {
		t.Errorf("Kept session should remain: %v", err)
	}
}

func TestSessionCleanupRoutine_StopsOnCancel(t *testing.T) {
	svcs, err := initializeServices(context.Background(), testOptions(t))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sessionCleanupRoutine(ctx, svcs.sessions, time.Millisecond, time.Hour)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup routine did not stop")
	}
}

func TestMCPHandler(t *testing.T) {
	handler := mcpHandler(mcp.NewClient("http://localhost:0").GetMCPServer())

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest("GET", "/mcp", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	handler(w, httptest.NewRequest("POST", "/mcp", strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`)))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `"jsonrpc":"2.0"`) || !strings.Contains(body, `"id":1`) {
		t.Errorf("Unexpected MCP response %s", body)
	}
}

func TestApiReachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	if !apiReachable(ts.URL) {
		t.Error("Expected API to be reachable")
	}
	ts.Close()
	if apiReachable(ts.URL) {
		t.Error("Expected closed API to be unreachable")
	}
}
