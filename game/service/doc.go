// Package service provides the business logic layer for the property game.
//
// The service layer sits between the transports (HTTP, WebSocket, MCP) and
// the engine. It owns session isolation, ruleset lookup and the read model
// returned to clients. Every action on a session runs with that session
// locked, so concurrent requests against one game are applied one at a time
// while different games proceed in parallel.
//
// Core Interfaces:
//
// GameService is the high-level API used by the transports.
// SessionManager stores sessions and persists them.
// RulesManager loads rulesets.
//
// Usage:
//
//	rulesMgr, _ := config.NewManager("configs")
//	svc := service.NewGameService(session.NewManager(), rulesMgr)
//
//	info, err := svc.CreateSession(ctx, service.CreateSessionRequest{
//		Players: []engine.PlayerSetup{{Name: "Ana"}, {Name: "Bia", Color: 1}},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := svc.Roll(ctx, info.ID, nil)
//	result, err = svc.Purchase(ctx, info.ID)
//	result, err = svc.EndTurn(ctx, info.ID)
package service
