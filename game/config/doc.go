// Package config manages the rulesets a game can be created with.
//
// A ruleset is a small JSON document stored as <dir>/<id>.json:
//
//	{
//	  "name": "classic",
//	  "description": "Standard board with hotels and a shuffled deck",
//	  "hotel_tier": true,
//	  "shuffle_deck": true
//	}
//
// Fields left out keep the classic defaults. The id "classic" always
// resolves, falling back to the built-in rules when no file exists.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	rules, err := manager.LoadRules("no_hotels")
//	all, err := manager.ListRules()
package config
