// Command validate checks rulesets and save files before they are served.
// For every *.json ruleset it checks:
//   - JSON structure and the ruleset name
//   - that the file name matches the ruleset name
//
// For every *.sav save file it checks:
//   - line syntax and field types
//   - that the snapshot restores into a playable game (player count,
//     positions, ownership, buildings, deck cards)
//   - that the referenced ruleset exists and allows the buildings present
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/property-game/game/config"
	"github.com/wricardo/property-game/game/engine"
	"github.com/wricardo/property-game/game/savefile"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...interface{}) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

func newResult(filePath string) ValidationResult {
	return ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}
}

// validateRules loads and validates a single ruleset JSON file
func validateRules(filePath string) ValidationResult {
	result := newResult(filePath)

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	rules, err := config.Parse(data)
	if err != nil {
		result.fail("%v", err)
		return result
	}

	id := strings.TrimSuffix(filepath.Base(filePath), ".json")
	if rules.Name != id {
		result.fail("Ruleset name %q does not match file name %q", rules.Name, id)
	}
	result.info("Hotel tier: %t, shuffled deck: %t", rules.HotelTier, rules.ShuffleDeck)
	return result
}

// validateSave loads a save file and checks it restores into a game. rules
// resolves the ruleset named in the file; it may be nil.
func validateSave(filePath string, rules *config.Manager) ValidationResult {
	result := newResult(filePath)

	f, err := os.Open(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}
	defer f.Close()

	file, err := savefile.Decode(f)
	if err != nil {
		result.fail("%v", err)
		return result
	}

	ruleset := engine.DefaultRules()
	if id := file.Meta[savefile.MetaRules]; id != "" && rules != nil {
		loaded, err := rules.LoadRules(id)
		if err != nil {
			result.fail("Unknown ruleset %q", id)
		} else {
			ruleset = *loaded
		}
	}

	game, err := engine.FromSnapshot(file.Snapshot, ruleset, engine.NewFixedDice())
	if err != nil {
		result.fail("%v", err)
		return result
	}

	if !ruleset.HotelTier {
		for _, p := range file.Snapshot.Properties {
			if p.Hotel {
				result.fail("Hotel on cell %d but ruleset %q has no hotel tier", p.Position, ruleset.Name)
			}
		}
	}

	if !result.Valid {
		return result
	}

	owned := 0
	for _, p := range file.Snapshot.Properties {
		if p.Owner >= 0 {
			owned++
		}
	}
	result.info("%d players, %d owned properties, %d cards in deck",
		len(file.Snapshot.Players), owned, len(file.Snapshot.Deck))
	if game.Over() {
		if w := game.Winner(); w >= 0 {
			result.info("Game over, winner: %s", file.Snapshot.Players[w].Name)
		} else {
			result.info("Game over, no winner")
		}
	} else {
		result.info("%s to act", game.Current().Name())
	}
	return result
}

// validateDir runs check on every file in dir with the given extension
func validateDir(dir, ext string, check func(string) ValidationResult) ([]ValidationResult, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*"+ext))
	if err != nil {
		return nil, err
	}
	results := make([]ValidationResult, 0, len(files))
	for _, file := range files {
		results = append(results, check(file))
	}
	return results, nil
}

// printResults writes a concise report and reports whether all were valid
func printResults(results []ValidationResult) bool {
	allValid := true
	for _, result := range results {
		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}
	return allValid
}

func run(ctx context.Context, cmd *cli.Command) error {
	configDir := cmd.String("configs")
	rulesResults, err := validateDir(configDir, ".json", validateRules)
	if err != nil {
		return fmt.Errorf("error finding rulesets: %w", err)
	}

	var rules *config.Manager
	if m, err := config.NewManager(configDir); err == nil {
		rules = m
	}
	saveResults, err := validateDir(cmd.String("sessions"), ".sav", func(path string) ValidationResult {
		return validateSave(path, rules)
	})
	if err != nil {
		return fmt.Errorf("error finding save files: %w", err)
	}

	allValid := printResults(append(rulesResults, saveResults...))

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if !allValid {
		return cli.Exit("❌ Some files have errors", 1)
	}
	fmt.Printf("✅ All %d rulesets and %d save files are valid!\n", len(rulesResults), len(saveResults))
	return nil
}

// main validates the rulesets and save files, exiting with non-zero status
// if any are invalid.
func main() {
	cmd := &cli.Command{
		Name:  "validate",
		Usage: "Validate rulesets and session save files",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "configs", Value: "../configs", Usage: "Ruleset directory"},
			&cli.StringFlag{Name: "sessions", Value: "../sessions", Usage: "Save file directory"},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
