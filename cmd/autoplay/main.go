// Command autoplay plays a game through a running server's REST API, taking
// every seat with a greedy buy-and-build strategy. It exercises the same
// endpoints a real client uses and prints a line per action.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/property-game/game/engine"
	"github.com/wricardo/property-game/game/service"
)

// Client drives one session over HTTP
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) call(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s failed: %s - %s", method, path, resp.Status, strings.TrimSpace(string(data)))
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("parse %s response: %w", path, err)
		}
	}
	return nil
}

// CreateSession starts a game and remembers its id
func (c *Client) CreateSession(ctx context.Context, req service.CreateSessionRequest) (*service.GameState, error) {
	var info service.SessionInfo
	if err := c.call(ctx, "POST", "/api/sessions", req, &info); err != nil {
		return nil, err
	}
	c.sessionID = info.ID
	return info.GameState, nil
}

// Resume attaches to an existing session
func (c *Client) Resume(ctx context.Context, sessionID string) (*service.GameState, error) {
	c.sessionID = sessionID
	return c.State(ctx)
}

func (c *Client) State(ctx context.Context) (*service.GameState, error) {
	var state service.GameState
	if err := c.call(ctx, "GET", "/api/sessions/"+c.sessionID+"/state", nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Do posts a turn action such as "roll" or "end-turn"
func (c *Client) Do(ctx context.Context, action string) (*service.ActionResult, error) {
	var result service.ActionResult
	if err := c.call(ctx, "POST", "/api/sessions/"+c.sessionID+"/"+action, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// decide picks the post-roll action for the acting player: "purchase",
// "build" or "" to just end the turn.
func decide(state *service.GameState, reserve int) string {
	if state == nil || state.GameOver || state.CurrentPlayer < 0 || state.CurrentPlayer >= len(state.Players) {
		return ""
	}
	p := state.Players[state.CurrentPlayer]
	if p.Bankrupt {
		return ""
	}
	for _, prop := range state.Properties {
		if prop.Position != p.Position {
			continue
		}
		switch {
		case prop.Owner < 0 && p.Balance-prop.Price >= reserve:
			return "purchase"
		case prop.Owner == p.Index && prop.Kind == engine.KindLand && !prop.Hotel && p.Balance-prop.HouseCost >= reserve:
			return "build"
		}
	}
	return ""
}

// Player runs the turn loop
type Player struct {
	client  *Client
	reserve int
	delay   time.Duration
	log     logrus.FieldLogger
}

// Play takes turns until the game ends or maxTurns were played. It returns
// the final state.
func (p *Player) Play(ctx context.Context, maxTurns int) (*service.GameState, error) {
	state, err := p.client.State(ctx)
	if err != nil {
		return nil, err
	}

	for turn := 0; turn < maxTurns && !state.GameOver; turn++ {
		acting := state.Players[state.CurrentPlayer]
		steps := []string{}
		if acting.InJail && acting.ReleaseCards > 0 {
			steps = append(steps, "release")
		}
		steps = append(steps, "roll")

		for _, action := range steps {
			result, err := p.client.Do(ctx, action)
			if err != nil {
				return state, err
			}
			state = result.GameState
			p.log.WithFields(logrus.Fields{"turn": turn, "player": acting.Name, "action": action}).Info(result.Message)
		}

		if next := decide(state, p.reserve); next != "" {
			result, err := p.client.Do(ctx, next)
			if err != nil {
				return state, err
			}
			state = result.GameState
			p.log.WithFields(logrus.Fields{"turn": turn, "player": acting.Name, "action": next}).Info(result.Message)
		}

		if state.GameOver {
			break
		}
		result, err := p.client.Do(ctx, "end-turn")
		if err != nil {
			return state, err
		}
		state = result.GameState

		if p.delay > 0 {
			select {
			case <-ctx.Done():
				return state, ctx.Err()
			case <-time.After(p.delay):
			}
		}
	}
	return state, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if !cmd.Bool("verbose") {
		log.SetLevel(logrus.WarnLevel)
	}

	client := NewClient(cmd.String("url"))
	if id := cmd.String("continue"); id != "" {
		if _, err := client.Resume(ctx, id); err != nil {
			return err
		}
	} else {
		req := service.CreateSessionRequest{RulesID: cmd.String("rules")}
		for i, name := range cmd.StringSlice("player") {
			req.Players = append(req.Players, engine.PlayerSetup{Name: name, Color: i})
		}
		if _, err := client.CreateSession(ctx, req); err != nil {
			return err
		}
	}
	fmt.Printf("Playing session %s\n", client.sessionID)

	player := &Player{
		client:  client,
		reserve: int(cmd.Int("reserve")),
		delay:   cmd.Duration("delay"),
		log:     log,
	}
	state, err := player.Play(ctx, int(cmd.Int("max-turns")))
	if err != nil {
		return err
	}

	switch {
	case !state.GameOver:
		fmt.Println("Turn limit reached, game still running")
	case state.Winner >= 0:
		fmt.Printf("Winner: %s\n", state.Players[state.Winner].Name)
	default:
		fmt.Println("Game over, no winner")
	}
	for _, p := range state.Players {
		fmt.Printf("  %-10s balance %6d  properties %2d\n", p.Name, p.Balance, len(p.Properties))
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "autoplay",
		Usage: "Play a game through the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Game server URL"},
			&cli.StringSliceFlag{Name: "player", Value: []string{"Ana", "Bia", "Caio"}, Usage: "Player names (repeat the flag)"},
			&cli.StringFlag{Name: "rules", Usage: "Ruleset id"},
			&cli.StringFlag{Name: "continue", Usage: "Resume playing an existing session by ID"},
			&cli.IntFlag{Name: "max-turns", Value: 1000, Usage: "Maximum turns to play"},
			&cli.IntFlag{Name: "reserve", Value: 300, Usage: "Cash kept after buying or building"},
			&cli.DurationFlag{Name: "delay", Usage: "Delay between turns"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Log every action"},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
