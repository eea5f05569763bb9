// Command simulate plays headless games with a simple greedy strategy and
// prints how often each seat wins and how long games last. It is useful for
// checking that a ruleset produces games that actually finish.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/property-game/game/config"
	"github.com/wricardo/property-game/game/engine"
)

// Strategy tunes the greedy players
type Strategy struct {
	// Reserve is the cash a player keeps after buying or building
	Reserve int `json:"reserve"`
	// Build enables house and hotel building
	Build bool `json:"build"`
}

// GameResult is the outcome of one simulated game
type GameResult struct {
	Seed     uint64 `json:"seed"`
	Turns    int    `json:"turns"`
	Winner   int    `json:"winner"` // -1 when the turn cap was hit or nobody survived
	Finished bool   `json:"finished"`
	Balances []int  `json:"balances"`
}

// Summary aggregates many games
type Summary struct {
	Rules        string  `json:"rules"`
	Games        int     `json:"games"`
	Players      int     `json:"players"`
	Finished     int     `json:"finished"`
	Wins         []int   `json:"wins"`
	AverageTurns float64 `json:"average_turns"`
	MedianTurns  int     `json:"median_turns"`
	LongestGame  int     `json:"longest_game"`
}

// playGame runs one game until it ends or maxTurns turns were played
func playGame(rules engine.Rules, players int, seed uint64, maxTurns int, strategy Strategy) (GameResult, error) {
	setup := make([]engine.PlayerSetup, players)
	for i := range setup {
		setup[i] = engine.PlayerSetup{Name: fmt.Sprintf("P%d", i+1), Color: i}
	}
	g, err := engine.NewGame(setup, nil, rules, engine.NewRandomDice(seed))
	if err != nil {
		return GameResult{}, err
	}

	result := GameResult{Seed: seed, Winner: -1}
	for result.Turns < maxTurns && !g.Over() {
		p := g.Current()
		if p.InJail() && p.HasReleaseCard() {
			g.UseReleaseCard()
		}
		if _, err := g.Roll(); err != nil {
			return result, err
		}
		if !g.Over() {
			act(g, strategy)
			g.Advance()
		}
		result.Turns++
	}

	result.Finished = g.Over()
	if g.Over() {
		result.Winner = g.Winner()
	}
	for _, p := range g.Players() {
		result.Balances = append(result.Balances, p.Balance())
	}
	return result, nil
}

// act buys or builds on the acting player's cell when cash allows
func act(g *engine.Game, strategy Strategy) {
	p := g.Current()
	if p.Bankrupt() {
		return
	}
	prop := g.Engine().Board().PropertyAt(p.Position())
	if prop == nil {
		return
	}

	switch owner := prop.Owner(); {
	case owner == nil:
		if p.Balance()-prop.Price() >= strategy.Reserve {
			g.Purchase()
		}
	case owner == p && strategy.Build:
		land, ok := prop.(*engine.Land)
		if ok && p.Balance()-land.HouseCost() >= strategy.Reserve {
			g.Build()
		}
	}
}

// summarize folds results into a Summary
func summarize(rulesName string, players int, results []GameResult) Summary {
	s := Summary{Rules: rulesName, Games: len(results), Players: players, Wins: make([]int, players)}
	if len(results) == 0 {
		return s
	}

	turns := make([]int, 0, len(results))
	total := 0
	for _, r := range results {
		if r.Finished {
			s.Finished++
		}
		if r.Winner >= 0 {
			s.Wins[r.Winner]++
		}
		turns = append(turns, r.Turns)
		total += r.Turns
	}
	sort.Ints(turns)
	s.AverageTurns = float64(total) / float64(len(results))
	s.MedianTurns = turns[len(turns)/2]
	s.LongestGame = turns[len(turns)-1]
	return s
}

func printSummary(w io.Writer, s Summary) {
	fmt.Fprintf(w, "Rules: %s\n", s.Rules)
	fmt.Fprintf(w, "Games: %d with %d players, %d finished (%.1f%%)\n",
		s.Games, s.Players, s.Finished, percent(s.Finished, s.Games))
	fmt.Fprintf(w, "Turns: average %.1f, median %d, longest %d\n", s.AverageTurns, s.MedianTurns, s.LongestGame)
	fmt.Fprintln(w, "Wins by seat:")
	for i, wins := range s.Wins {
		fmt.Fprintf(w, "  P%d %s %d (%.1f%%)\n", i+1, strings.Repeat("█", int(percent(wins, s.Games)/2)), wins, percent(wins, s.Games))
	}
}

func percent(n, of int) float64 {
	if of == 0 {
		return 0
	}
	return 100 * float64(n) / float64(of)
}

func run(ctx context.Context, cmd *cli.Command) error {
	rules := engine.DefaultRules()
	if id := cmd.String("rules"); id != "" {
		m, err := config.NewManager(cmd.String("configs"))
		if err != nil {
			return err
		}
		loaded, err := m.LoadRules(id)
		if err != nil {
			return err
		}
		rules = *loaded
	}

	players := int(cmd.Int("players"))
	games := int(cmd.Int("games"))
	seed := uint64(cmd.Int("seed"))
	strategy := Strategy{Reserve: int(cmd.Int("reserve")), Build: !cmd.Bool("no-build")}

	results := make([]GameResult, 0, games)
	for i := 0; i < games; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		r, err := playGame(rules, players, seed+uint64(i), int(cmd.Int("max-turns")), strategy)
		if err != nil {
			return fmt.Errorf("game %d: %w", i, err)
		}
		results = append(results, r)
	}

	summary := summarize(rules.Name, players, results)
	if cmd.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}
	printSummary(os.Stdout, summary)
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "simulate",
		Usage: "Play headless games and report win rates and game length",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "games", Value: 100, Usage: "Number of games"},
			&cli.IntFlag{Name: "players", Value: 4, Usage: "Players per game (2-6)"},
			&cli.IntFlag{Name: "seed", Value: 1, Usage: "Seed of the first game; game i uses seed+i"},
			&cli.IntFlag{Name: "max-turns", Value: 2000, Usage: "Stop a game after this many turns"},
			&cli.IntFlag{Name: "reserve", Value: 300, Usage: "Cash players keep after buying or building"},
			&cli.BoolFlag{Name: "no-build", Usage: "Never build houses"},
			&cli.StringFlag{Name: "rules", Usage: "Ruleset id to load from --configs"},
			&cli.StringFlag{Name: "configs", Value: "configs", Usage: "Ruleset directory"},
			&cli.BoolFlag{Name: "json", Usage: "Print the summary as JSON"},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
