// Package api provides the HTTP REST API for the property game.
//
// Endpoints:
//
// Sessions:
//   - POST   /api/sessions              - Create a game ({"players":[...],"rules_id":"classic","order":[...],"seed":1})
//   - GET    /api/sessions              - List sessions (sort=created|accessed, order=asc|desc, rules=, limit=)
//   - POST   /api/sessions/import?id=   - Create a session from a save file body
//   - GET    /api/sessions/{id}         - Session info with game state
//   - DELETE /api/sessions/{id}         - Remove a session
//
// Turn actions (all POST, all return an ActionResult):
//   - /api/sessions/{id}/roll      - Roll; optional body {"dice":[a,b]} forces the dice
//   - /api/sessions/{id}/purchase  - Buy the cell the acting player stands on
//   - /api/sessions/{id}/build     - Build a house or hotel there
//   - /api/sessions/{id}/release   - Spend a release card to leave jail
//   - /api/sessions/{id}/end-turn  - Pass to the next active player
//
// Reads:
//   - GET /api/sessions/{id}/state     - Current game state
//   - GET /api/sessions/{id}/history   - Event history (page, limit, order, type)
//   - GET /api/sessions/{id}/snapshot  - Save file download (text/plain)
//
// Rulesets:
//   - GET  /api/rules       - List rulesets
//   - GET  /api/rules/{id}  - One ruleset
//   - POST /api/rules       - Store a ruleset under its name
//
// Errors are JSON objects of the form {"error": "message"}. Unknown sessions
// map to 404, invalid dice or requests to 400.
//
// Every response carries an X-Request-ID header. A client supplied id is
// echoed back.
package api
