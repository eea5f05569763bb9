// Package engine provides the core rules for the property trading board game.
//
// The engine package implements the game mechanics including:
//   - Accounts, the bank and atomic money transfers
//   - Properties (land, utilities and companies) with ownership and rent
//   - The chance deck and its rotation policy
//   - Turn resolution: jail, movement, rent, taxes, chance cards and bankruptcy
//   - Turn order and change notifications through the Game facade
//   - Snapshots for saving and loading a game
//
// Core Types:
//
// Engine resolves a single turn against the Bank, the Board and one Player.
// Game wraps an Engine with a rotating turn pointer and turns every
// mutation into an ordered list of Event records. Snapshot is the immutable
// projection of a Game used for persistence.
//
// Usage:
//
//	game, err := engine.NewGame([]engine.PlayerSetup{
//		{Name: "Ana", Color: 0},
//		{Name: "Bruno", Color: 1},
//	}, nil, engine.DefaultRules(), engine.NewRandomDice(42))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	events, err := game.Roll()
//	if err != nil {
//		log.Fatal(err)
//	}
//	events = append(events, game.Purchase()...)
//	events = append(events, game.Advance()...)
//
// Game Rules:
//
// Players move around a 40 cell board collecting a bonus each time they pass
// the start. Landing on an owned property charges rent, landing on the jail
// trigger sends the player to jail and chance cells draw a card. A player who
// cannot pay is bankrupt: their properties return to the bank and they leave
// the rotation. The last solvent player wins.
package engine
