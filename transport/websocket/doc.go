// Package websocket provides WebSocket transport for the Memory Match Game.
//
// The websocket package implements:
//   - Session-aware WebSocket connections
//   - Push of every game snapshot, including timer-driven ones
//   - Optional client actions (flip, new game)
//   - Connection lifecycle management
//
// Architecture:
//
// A central Hub owns the subscriber registry inside its Run goroutine.
// Broadcasts are queued on a buffered channel and never block the caller, so
// engine timers can publish from any goroutine. Each connection has its own
// read and write pumps.
//
// Message Protocol:
//
// Server to client, one JSON object per frame:
//
//	{"session_id": "a1b2", "event": "state_update", "game_state": {...}}
//	{"session_id": "a1b2", "event": "error", "data": "..."}
//
// Client to server, when an ActionHandler is installed:
//
//	{"action": "flip", "card_id": 3}
//	{"action": "new_game", "pair_count": 8}
//
// Usage:
//
//	hub := websocket.NewHub()
//	hub.SetActionHandler(handle)
//	go hub.Run()
//	defer hub.Close()
//
//	hub.ServeWS(w, r, sessionID, func() *engine.GameState { return eng.GetState() })
//	hub.BroadcastToSession(sessionID, state)
package websocket
