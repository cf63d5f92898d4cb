// Package mcp exposes the memory match game to AI agents over the Model Context Protocol.
//
// The Client is a thin proxy: every tool call becomes a REST request against a
// running game server, and the JSON response is rendered as plain text. Boards are
// drawn as a grid where face-down cards appear as "??" and matched cards carry "=".
//
// Tools:
//   - create_session, list_sessions, get_session
//   - game_state, flip_card, new_game, flip_history, describe_card
//   - list_configs, game_instructions
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer()) for local MCP clients
//   - HTTP: POST /mcp on the game server, handled with HandleMessage
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
