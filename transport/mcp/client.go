package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/property-game/game/engine"
	"github.com/wricardo/property-game/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Property Game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Property Game - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Be the last player who is not bankrupt. Buy properties, build on them and collect rent.

AVAILABLE TOOLS:
- create_session: Start a game for 2 to 6 players
- list_sessions / get_session: Inspect running games
- game_state: Board, balances and whose turn it is
- roll: Roll the dice for the acting player (optionally forcing the dice)
- purchase: Buy the property the acting player stands on
- build: Build a house or hotel on the acting player's land
- use_release_card: Leave jail with a release card
- end_turn: Pass the turn
- event_history: Past events with paging
- export_snapshot / import_snapshot: Save files
- list_rules: Available rulesets
- describe_cell: Details about one board cell
- game_instructions: Full rules`),
	)

	c.registerTools()
}

func sessionSchema(extra map[string]interface{}, required ...string) mcp.ToolInputSchema {
	props := map[string]interface{}{
		"session_id": map[string]interface{}{
			"type":        "string",
			"description": "Session ID",
		},
	}
	for k, v := range extra {
		props[k] = v
	}
	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: props,
		Required:   append([]string{"session_id"}, required...),
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"players": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Player names, 2 to 6",
				},
				"order": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "integer"},
					"description": "Turn order as player indexes (optional)",
				},
				"rules_id": map[string]interface{}{
					"type":        "string",
					"description": "Ruleset to use (optional)",
				},
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "Seed for reproducible dice and deck (optional)",
				},
			},
			Required: []string{"players"},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: sessionSchema(nil),
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state",
		InputSchema: sessionSchema(nil),
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "roll",
		Description: "Roll the dice for the acting player and resolve the landing cell",
		InputSchema: sessionSchema(map[string]interface{}{
			"dice": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "integer", "minimum": 1, "maximum": 6},
				"description": "Two die values to force (optional)",
			},
		}),
	}, c.handleRoll)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "purchase",
		Description: "Buy the property the acting player stands on",
		InputSchema: sessionSchema(nil),
	}, c.postAction("purchase"))

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "build",
		Description: "Build a house, or a hotel over four houses, on the acting player's land",
		InputSchema: sessionSchema(nil),
	}, c.postAction("build"))

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "use_release_card",
		Description: "Spend a release card to leave jail",
		InputSchema: sessionSchema(nil),
	}, c.postAction("release"))

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "end_turn",
		Description: "Pass the turn to the next active player",
		InputSchema: sessionSchema(nil),
	}, c.postAction("end-turn"))

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "event_history",
		Description: "Get the event history for a session",
		InputSchema: sessionSchema(map[string]interface{}{
			"page": map[string]interface{}{
				"type":        "integer",
				"description": "Page number",
			},
			"limit": map[string]interface{}{
				"type":        "integer",
				"description": "Items per page",
			},
			"type": map[string]interface{}{
				"type":        "string",
				"description": "Only events of this type, e.g. rent_paid",
			},
		}),
	}, c.handleEventHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "export_snapshot",
		Description: "Export the session as save file text",
		InputSchema: sessionSchema(nil),
	}, c.handleExportSnapshot)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "import_snapshot",
		Description: "Create a session from save file text",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"snapshot": map[string]interface{}{
					"type":        "string",
					"description": "Save file contents",
				},
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "ID for the new session (optional)",
				},
			},
			Required: []string{"snapshot"},
		},
	}, c.handleImportSnapshot)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_rules",
		Description: "List available rulesets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListRules)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Describe one board cell: its name, price, rent, owner and buildings",
		InputSchema: sessionSchema(map[string]interface{}{
			"position": map[string]interface{}{
				"type":        "integer",
				"description": "Cell index, 0 to 39",
			},
		}, "position"),
	}, c.handleDescribeCell)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return nil, fmt.Errorf("%s", msg)
		}
		return nil, fmt.Errorf("API error: %d", resp.StatusCode)
	}
	return resp, nil
}

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	contentType := ""
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
		contentType = "application/json"
	}

	resp, err := c.do(ctx, method, path, reqBody, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

// arguments tolerates a missing argument object
func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func intArg(args map[string]interface{}, key string) (int, bool) {
	v, ok := args[key].(float64)
	return int(v), ok
}

func intSliceArg(args map[string]interface{}, key string) []int {
	raw, _ := args[key].([]interface{})
	out := make([]int, 0, len(raw))
	for _, v := range raw {
		if n, ok := v.(float64); ok {
			out = append(out, int(n))
		}
	}
	return out
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	names, _ := args["players"].([]interface{})
	req := service.CreateSessionRequest{Order: intSliceArg(args, "order")}
	for i, n := range names {
		name, _ := n.(string)
		req.Players = append(req.Players, engine.PlayerSetup{Name: name, Color: i})
	}
	if len(req.Order) == 0 {
		req.Order = nil
	}
	req.RulesID, _ = args["rules_id"].(string)
	if seed, ok := intArg(args, "seed"); ok && seed >= 0 {
		s := uint64(seed)
		req.Seed = &s
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", req, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nRules: %s\n\n%s", session.ID, session.RulesID, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := "in progress"
		if s.GameState != nil && s.GameState.GameOver {
			status = "over"
		}
		fmt.Fprintf(&b, "- %s (Rules: %s, Created: %s, %s)\n",
			s.ID, s.RulesID, s.CreatedAt.Format("15:04:05"), status)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var state service.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleRoll(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	var body interface{}
	if dice := intSliceArg(args, "dice"); len(dice) > 0 {
		body = map[string][]int{"dice": dice}
	}

	var result service.ActionResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/roll"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

// postAction builds the handler for a body-less turn action
func (c *Client) postAction(path string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID, _ := arguments(request)["session_id"].(string)

		var result service.ActionResult
		if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/"+path), nil, &result); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(formatActionResult(&result)), nil
	}
}

func (c *Client) handleEventHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	params := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		params.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", fmt.Sprint(limit))
	}
	if typ, _ := args["type"].(string); typ != "" {
		params.Set("type", typ)
	}
	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleExportSnapshot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	resp, err := c.do(ctx, "GET", sessionPath(sessionID, "/snapshot"), nil, "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(text)), nil
}

func (c *Client) handleImportSnapshot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	snapshot, _ := args["snapshot"].(string)
	sessionID, _ := args["session_id"].(string)

	path := "/api/sessions/import"
	if sessionID != "" {
		path += "?id=" + url.QueryEscape(sessionID)
	}

	resp, err := c.do(ctx, "POST", path, strings.NewReader(snapshot), "text/plain")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defer resp.Body.Close()

	var session service.SessionInfo
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Imported session: " + session.ID + "\n\n" + formatGameState(session.GameState)), nil
}

func (c *Client) handleListRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var rules []service.RulesInfo
	if err := c.apiCall(ctx, "GET", "/api/rules", nil, &rules); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Rulesets:\n\n")
	for _, r := range rules {
		fmt.Fprintf(&b, "• %s\n  %s\n  Hotels: %s, Shuffled deck: %s\n\n",
			r.RulesID, r.Description, yesNo(r.HotelTier), yesNo(r.ShuffleDeck))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := fmt.Sprintf(`Property Game - Complete Instructions

GAME OBJECTIVE:
Be the last player standing. A player who cannot pay a debt goes bankrupt and leaves the game.

TURN STRUCTURE:
1. roll - the acting player rolls two dice and moves. Landing effects resolve immediately.
2. purchase / build - optional, on the cell the player landed on. Both need the roll first.
3. end_turn - the next active player in turn order acts.

BOARD (%d cells):
• Start (0): passing it pays %d
• Jail (%d): a jailed player only moves after rolling doubles or using a release card
• Go To Jail (%d): sends the player straight to jail
• Income Tax (%d): pay %d to the bank
• Dividends (%d): receive %d from the bank
• Chance cells: draw a card; it may pay, charge, move or jail you
• Properties: land, companies and utilities you can buy

PROPERTIES:
• Land: charges no rent until built on. Rent grows with each house, up to 4 houses,
  then a hotel when the ruleset allows it.
• Companies: fixed rent.
• Utilities: rent is a multiple of the base rent.

STARTING BALANCE: %d

TIPS:
• Use game_state before acting to see whose turn it is.
• Use describe_cell to inspect a property before buying.
• Forced dice (roll with "dice": [a, b]) make scenarios reproducible.`,
		engine.BoardSize, engine.PassingBonus, engine.JailCell, engine.JailTriggerCell,
		engine.TaxCell, engine.TaxAmount, engine.DividendCell, engine.DividendAmount,
		engine.StartingBalance)

	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	position, ok := intArg(args, "position")
	if !ok || position < 0 || position >= engine.BoardSize {
		return mcp.NewToolResultError(fmt.Sprintf("position must be between 0 and %d", engine.BoardSize-1)), nil
	}

	var state service.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(describeCell(&state, position)), nil
}

func describeCell(state *service.GameState, position int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cell %d: ", position)

	var prop *service.PropertyState
	for i := range state.Properties {
		if state.Properties[i].Position == position {
			prop = &state.Properties[i]
			break
		}
	}
	if prop == nil {
		b.WriteString(engine.NewBoard(nil, nil).CellName(position))
		b.WriteString(" (not purchasable)\n")
	} else {
		fmt.Fprintf(&b, "%s (%s)\n", prop.Name, prop.Kind)
		fmt.Fprintf(&b, "Price: %d, Rent: %d\n", prop.Price, prop.Rent)
		if prop.HouseCost > 0 {
			fmt.Fprintf(&b, "House cost: %d\n", prop.HouseCost)
		}
		if prop.Owner < 0 {
			b.WriteString("Owner: none\n")
		} else {
			fmt.Fprintf(&b, "Owner: %s\n", playerName(state, prop.Owner))
		}
		if prop.Hotel {
			b.WriteString("Buildings: hotel\n")
		} else if prop.Houses > 0 {
			fmt.Fprintf(&b, "Buildings: %d house(s)\n", prop.Houses)
		}
	}

	var here []string
	for _, p := range state.Players {
		if p.Position == position && !p.Bankrupt {
			here = append(here, p.Name)
		}
	}
	if len(here) > 0 {
		fmt.Fprintf(&b, "Players here: %s\n", strings.Join(here, ", "))
	}
	return b.String()
}

// Formatting helpers

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func playerName(state *service.GameState, index int) string {
	if state != nil && index >= 0 && index < len(state.Players) {
		return state.Players[index].Name
	}
	return fmt.Sprintf("player %d", index)
}

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nRules: %s\nCreated: %s\nLast Accessed: %s\n\n%s",
		session.ID, session.RulesID,
		session.CreatedAt.Format(time.RFC3339), session.LastAccessedAt.Format(time.RFC3339),
		formatGameState(session.GameState))
}

func formatGameState(state *service.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder
	if state.GameOver {
		if state.Winner >= 0 {
			fmt.Fprintf(&b, "GAME OVER - winner: %s\n\n", playerName(state, state.Winner))
		} else {
			b.WriteString("GAME OVER - no winner\n\n")
		}
	} else {
		fmt.Fprintf(&b, "Turn: %s", playerName(state, state.CurrentPlayer))
		if state.Rolled {
			b.WriteString(" (already rolled)")
		}
		b.WriteString("\n\n")
	}

	b.WriteString("Players:\n")
	for _, p := range state.Players {
		marker := "  "
		if !state.GameOver && p.Index == state.CurrentPlayer {
			marker = "▶ "
		}
		fmt.Fprintf(&b, "%s%s: balance %d, at %d", marker, p.Name, p.Balance, p.Position)
		if p.Cell != "" {
			fmt.Fprintf(&b, " (%s)", p.Cell)
		}
		if p.InJail {
			b.WriteString(", in jail")
		}
		if p.ReleaseCards > 0 {
			fmt.Fprintf(&b, ", %d release card(s)", p.ReleaseCards)
		}
		if p.Bankrupt {
			b.WriteString(", BANKRUPT")
		}
		if len(p.Properties) > 0 {
			fmt.Fprintf(&b, ", owns %d", len(p.Properties))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nBank: %d, Chance deck: %d cards\n", state.BankBalance, state.DeckSize)
	return b.String()
}

func formatActionResult(result *service.ActionResult) string {
	var b strings.Builder
	if result.Success {
		b.WriteString("✓ ")
	} else {
		b.WriteString("✗ ")
	}
	b.WriteString(result.Message)
	b.WriteString("\n")

	if len(result.Events) > 0 {
		b.WriteString("\nEvents:\n")
		for _, ev := range result.Events {
			fmt.Fprintf(&b, "  - %s\n", formatEvent(ev, result.GameState))
		}
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatEvent(ev engine.Event, state *service.GameState) string {
	who := playerName(state, ev.Player)
	switch ev.Type {
	case engine.EventDiceRolled:
		return fmt.Sprintf("%s rolled %v", who, ev.Dice)
	case engine.EventPlayerMoved:
		if ev.Description != "" {
			return fmt.Sprintf("%s moved %d → %d (%s)", who, ev.From, ev.To, ev.Description)
		}
		return fmt.Sprintf("%s moved %d → %d", who, ev.From, ev.To)
	case engine.EventTurnChanged:
		return fmt.Sprintf("%s to act", who)
	case engine.EventBalanceChanged:
		return fmt.Sprintf("%s balance %+d → %d", who, ev.Amount, ev.Balance)
	case engine.EventRentPaid:
		return fmt.Sprintf("%s paid %d rent to %s", who, ev.Amount, playerName(state, ev.Owner))
	case engine.EventJailStatusChanged:
		if ev.InJail {
			return who + " is in jail"
		}
		return who + " left jail"
	case engine.EventBankruptcy:
		return who + " went bankrupt"
	case engine.EventGameEnded:
		if ev.Winner < 0 {
			return "game ended with no winner"
		}
		return fmt.Sprintf("game ended, %s wins", playerName(state, ev.Winner))
	}
	if ev.Description != "" {
		return fmt.Sprintf("%s: %s", who, ev.Description)
	}
	return fmt.Sprintf("%s: %s", who, ev.Type)
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Event History (Page %d/%d, Total: %d):\n\n",
		history.Page, history.TotalPages, history.TotalEvents)

	for _, entry := range history.Events {
		fmt.Fprintf(&b, "#%d [%s] %s\n", entry.Seq, entry.Event.Type, formatEvent(entry.Event, nil))
	}

	if history.HasNext {
		b.WriteString("\n(more events on the next page)\n")
	}
	return b.String()
}
