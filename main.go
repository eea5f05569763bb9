// Command property-game starts the property trading game server.
//
// It supports two modes:
//  1. "server" (default) runs the HTTP server exposing the REST API, WebSocket updates and an /mcp HTTP endpoint
//  2. "mcp" runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Sessions are persisted as save files in a directory, or in Redis when
// --redis-addr is set. Flags can also be supplied through the environment
// or a .env file.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/property-game/api"
	"github.com/wricardo/property-game/game/config"
	"github.com/wricardo/property-game/game/service"
	"github.com/wricardo/property-game/game/session"
	"github.com/wricardo/property-game/transport/mcp"
	"github.com/wricardo/property-game/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Property Game Server"
)

// options holds the resolved command line configuration
type options struct {
	host          string
	port          int
	configDir     string
	sessionsDir   string
	redisAddr     string
	redisPassword string
	redisDB       int
	redisTTL      time.Duration
	sessionMaxAge time.Duration
	externalAPI   string
	ngrokEnabled  bool
	ngrokAuth     string
	ngrokDomain   string
}

func (o options) addr() string {
	return fmt.Sprintf("%s:%d", o.host, o.port)
}

func optionsFrom(cmd *cli.Command) options {
	return options{
		host:          cmd.String("host"),
		port:          int(cmd.Int("port")),
		configDir:     cmd.String("config-dir"),
		sessionsDir:   cmd.String("sessions-dir"),
		redisAddr:     cmd.String("redis-addr"),
		redisPassword: cmd.String("redis-password"),
		redisDB:       int(cmd.Int("redis-db")),
		redisTTL:      cmd.Duration("redis-ttl"),
		sessionMaxAge: cmd.Duration("session-max-age"),
		externalAPI:   cmd.String("external-api"),
		ngrokEnabled:  cmd.Bool("ngrok"),
		ngrokAuth:     cmd.String("ngrok-auth"),
		ngrokDomain:   cmd.String("ngrok-domain"),
	}
}

// newApp builds the command tree
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "property-game",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
			&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host", Sources: cli.EnvVars("HOST")},
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "Directory containing rulesets", Sources: cli.EnvVars("CONFIG_DIR")},
			&cli.StringFlag{Name: "sessions-dir", Value: "sessions", Usage: "Directory for session save files", Sources: cli.EnvVars("SESSIONS_DIR")},
			&cli.StringFlag{Name: "redis-addr", Usage: "Store sessions in Redis at this address instead of files", Sources: cli.EnvVars("REDIS_ADDR")},
			&cli.StringFlag{Name: "redis-password", Usage: "Redis password", Sources: cli.EnvVars("REDIS_PASSWORD")},
			&cli.IntFlag{Name: "redis-db", Usage: "Redis database number", Sources: cli.EnvVars("REDIS_DB")},
			&cli.DurationFlag{Name: "redis-ttl", Value: 7 * 24 * time.Hour, Usage: "Idle expiry of stored sessions in Redis, refreshed on every access (0 keeps them forever)"},
			&cli.DurationFlag{Name: "session-max-age", Value: 24 * time.Hour, Usage: "Drop sessions idle for longer than this"},
			&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging", Sources: cli.EnvVars("DEBUG")},
			&cli.StringFlag{Name: "log-format", Value: "text", Usage: "Log format: text or json", Sources: cli.EnvVars("LOG_FORMAT")},
			&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "Ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain (optional)", Sources: cli.EnvVars("NGROK_DOMAIN")},
		},
		Before: setupLogging,
		Action: runServer,
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint (default)",
				Action:  runServer,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "external-api", Value: "http://localhost:8080", Usage: "Use this API when it is reachable"},
				},
				Action: runMCP,
			},
		},
	}
}

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			logrus.WithError(err).Warn("error loading .env file")
		}
	} else {
		logrus.Debug("loaded environment variables from .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		logrus.WithError(err).Fatal("exiting")
	}
}

// setupLogging configures the global logrus logger
func setupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("debug") {
		logrus.SetLevel(logrus.DebugLevel)
	}
	switch cmd.String("log-format") {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return ctx, fmt.Errorf("unknown log format %q", cmd.String("log-format"))
	}
	// the stdio MCP transport owns stdout
	logrus.SetOutput(os.Stderr)
	return ctx, nil
}

// services bundles the wired managers
type services struct {
	game        service.GameService
	sessions    *session.Manager
	persistence session.SessionPersistence
	rules       *config.Manager
}

// initializeServices wires the rules and session managers and the game service
func initializeServices(ctx context.Context, opts options) (*services, error) {
	rules, err := config.NewManager(opts.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create rules manager: %w", err)
	}

	var persistence session.SessionPersistence
	if opts.redisAddr != "" {
		client, err := session.ConnectRedis(ctx, opts.redisAddr, opts.redisPassword, opts.redisDB)
		if err != nil {
			return nil, err
		}
		persistence = session.NewRedisPersistence(client, session.DefaultRedisPrefix, opts.redisTTL, rules)
		logrus.WithField("addr", opts.redisAddr).Info("storing sessions in redis")
	} else {
		fp, err := session.NewFilePersistence(opts.sessionsDir, rules)
		if err != nil {
			return nil, fmt.Errorf("failed to create session persistence: %w", err)
		}
		persistence = fp
		logrus.WithField("dir", opts.sessionsDir).Info("storing sessions on disk")
	}

	sessions := session.NewManagerWithPersistence(persistence)
	if err := sessions.LoadPersistedSessions(); err != nil {
		logrus.WithError(err).Warn("failed to load persisted sessions")
	}

	return &services{
		game:        service.NewGameService(sessions, rules),
		sessions:    sessions,
		persistence: persistence,
		rules:       rules,
	}, nil
}

// startBackground runs the maintenance loops until ctx is done
func (s *services) startBackground(ctx context.Context, wg *sync.WaitGroup, maxAge time.Duration) {
	wg.Add(2)
	go func() {
		defer wg.Done()
		sessionCleanupRoutine(ctx, s.sessions, time.Hour, maxAge)
	}()
	go func() {
		defer wg.Done()
		persistenceSyncRoutine(ctx, s.sessions, s.persistence, 5*time.Second)
	}()
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within maxAge.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(maxAge); removed > 0 {
				logrus.WithField("removed", removed).Info("cleaned up expired sessions")
			}
		}
	}
}

// persistenceSyncRoutine drops sessions from memory once their stored copy
// is gone, for example after a save file was deleted by hand or a Redis key
// expired.
func persistenceSyncRoutine(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if pruned := pruneOrphans(manager, persistence); pruned > 0 {
				logrus.WithField("pruned", pruned).Info("pruned orphaned sessions from memory")
			}
		}
	}
}

func pruneOrphans(manager *session.Manager, persistence session.SessionPersistence) int {
	pruned := 0
	for _, sess := range manager.List() {
		if persistence.Exists(sess.ID) {
			continue
		}
		if err := manager.DeleteFromMemory(sess.ID); err == nil {
			pruned++
			logrus.WithField("session", sess.ID).Debug("session pruned, stored copy deleted")
		}
	}
	return pruned
}

// mcpHandler serves MCP JSON-RPC messages over plain HTTP POST
func mcpHandler(mcpServer *server.MCPServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpServer.HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// newRouter combines the REST API with the /mcp endpoint
func newRouter(apiServer http.Handler, mcpClient *mcp.Client) *http.ServeMux {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", mcpHandler(mcpClient.GetMCPServer()))
	return mainRouter
}

// runServer starts the HTTP server with REST API, WebSocket hub, and an /mcp
// proxy endpoint. If ngrok is enabled it also provisions a public tunnel.
func runServer(ctx context.Context, cmd *cli.Command) error {
	opts := optionsFrom(cmd)
	log := logrus.WithField("component", "main")
	log.WithFields(logrus.Fields{"version": Version, "mode": "server"}).Infof("starting %s", AppName)

	svcs, err := initializeServices(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var wg sync.WaitGroup

	hub := websocket.NewHub()
	wg.Add(1)
	go func() {
		defer wg.Done()
		hub.Run(ctx)
	}()
	svcs.startBackground(ctx, &wg, opts.sessionMaxAge)

	addr := opts.addr()
	mainRouter := newRouter(api.NewServer(svcs.game, hub), mcp.NewClient("http://"+addr))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"rest":      fmt.Sprintf("http://%s/api", addr),
			"websocket": fmt.Sprintf("ws://%s/ws?session=<session_id>", addr),
			"mcp":       fmt.Sprintf("http://%s/mcp", addr),
		}).Infof("HTTP server listening on %s", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	if opts.ngrokEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := serveNgrok(ctx, opts, mainRouter); err != nil {
				log.WithError(err).Error("ngrok tunnel failed")
			}
		}()
	}

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			cancel()
			wg.Wait()
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown error")
	}

	cancel()
	wg.Wait()

	if err := svcs.sessions.SaveAllSessions(); err != nil {
		log.WithError(err).Error("failed to save sessions")
	}
	log.Info("server stopped")
	return nil
}

// serveNgrok exposes handler through an ngrok tunnel until ctx is done
func serveNgrok(ctx context.Context, opts options, handler http.Handler) error {
	log := logrus.WithField("component", "ngrok")
	if opts.ngrokAuth == "" {
		log.Warn("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN)")
		return nil
	}

	var tunnel ngrokConfig.Tunnel
	if opts.ngrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(opts.ngrokDomain))
		log.WithField("domain", opts.ngrokDomain).Info("using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(opts.ngrokAuth))
	if err != nil {
		return fmt.Errorf("failed to start ngrok tunnel: %w", err)
	}

	ngrokURL := tun.URL()
	log.WithFields(logrus.Fields{
		"rest":      ngrokURL + "/api",
		"websocket": ngrokURL + "/ws?session=<session_id>",
		"mcp":       ngrokURL + "/mcp",
	}).Infof("ngrok tunnel established: %s", ngrokURL)

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.WithError(err).Warn("failed to close ngrok tunnel")
		}
	}()

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		return err
	}
	log.Info("ngrok tunnel closed")
	return nil
}

// apiReachable reports whether a property game API answers at baseURL
func apiReachable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runMCP runs an MCP stdio server. It reuses an external API when one is
// reachable and otherwise serves an internal API on a random loopback port.
func runMCP(ctx context.Context, cmd *cli.Command) error {
	opts := optionsFrom(cmd)
	log := logrus.WithField("component", "main")
	log.WithFields(logrus.Fields{"version": Version, "mode": "mcp"}).Infof("starting %s", AppName)

	baseURL := opts.externalAPI
	if baseURL != "" && apiReachable(baseURL) {
		log.WithField("url", baseURL).Info("external API server found, using it for MCP")
	} else {
		log.Info("no external API server found, starting internal HTTP server")

		svcs, err := initializeServices(ctx, opts)
		if err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		baseURL = "http://" + listener.Addr().String()

		bgCtx, cancel := context.WithCancel(ctx)
		var wg sync.WaitGroup

		hub := websocket.NewHub()
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub.Run(bgCtx)
		}()
		svcs.startBackground(bgCtx, &wg, opts.sessionMaxAge)

		httpServer := &http.Server{Handler: api.NewServer(svcs.game, hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("internal HTTP server error")
			}
		}()
		defer func() {
			httpServer.Close()
			cancel()
			wg.Wait()
			if err := svcs.sessions.SaveAllSessions(); err != nil {
				log.WithError(err).Error("failed to save sessions")
			}
		}()
		log.WithField("url", baseURL).Info("internal HTTP server started for MCP stdio")
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info("MCP stdio server ready")

	stdio := server.NewStdioServer(mcpClient.GetMCPServer())
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
