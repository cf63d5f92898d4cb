// Package api provides the HTTP REST API for the memory match game.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session (optional {"config_id": "small"})
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session and stop its timers
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current board snapshot
//   - POST /api/sessions/{id}/new-game - Start over ({"config_id": "..."} or {"pair_count": 8})
//   - POST /api/sessions/{id}/flip - Click a card ({"card_id": 3})
//   - GET /api/sessions/{id}/history - Flip history (?page=1&limit=20&order=desc)
//
// Configuration:
//   - GET /api/configs - List board presets
//   - GET /api/configs/{name} - Get one preset
//   - POST /api/configs - Save a preset to the config directory
//
// Live updates:
//   - GET /ws?session={id} - WebSocket stream of state snapshots. Clients may
//     send {"action":"flip","card_id":3} or {"action":"new_game","pair_count":8}.
//
// Errors are returned as JSON with a matching status code:
//
//	{"error": "session not found: abcd"}
//
// Unknown sessions and presets map to 404, malformed input to 400.
package api
