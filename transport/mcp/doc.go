// Package mcp exposes the property game to AI agents over the Model Context
// Protocol.
//
// The Client is a thin proxy: every tool call becomes a request against the
// REST API, and the JSON reply is rendered as plain text for the agent.
//
// Tools:
//   - create_session, list_sessions, get_session
//   - game_state, describe_cell
//   - roll, purchase, build, use_release_card, end_turn
//   - event_history
//   - export_snapshot, import_snapshot
//   - list_rules, game_instructions
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
