// Package service provides the business logic layer for the Memory Match Game.
//
// The service package implements:
//   - Multi-session game management
//   - Board preset lookup
//   - Card flips with per-flip event reporting
//   - Snapshot notifications after every change
//   - Flip history pagination
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages board presets. Notifier receives game snapshots.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Each session owns its own engine. The service registers a
// change listener on every engine it creates, so snapshots produced by game
// timers (countdown ticks, mismatch flip-back, end-of-game latches) reach the
// Notifier the same way as snapshots produced by player clicks.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr, service.WithNotifier(hub))
//
//	info, err := gameService.CreateSession(ctx, "small")
//	if err != nil {
//		return err
//	}
//
//	result, err := gameService.FlipCard(ctx, info.ID, 3)
//
// Errors:
//
// Lookups fail with errors wrapping ErrSessionNotFound or ErrConfigNotFound;
// bad input wraps ErrInvalidRequest or ErrInvalidConfig. A rejected flip is not
// an error: FlipResult.Accepted is false and the result explains why.
package service
