// Package session keeps the in-memory registry of running memory match games.
//
// Each session pairs a 4-character hex ID (crypto/rand, retried on collision,
// looked up case-insensitively) with its own GameEngine. Nothing is written to
// disk; a restart starts from an empty registry.
//
// The Manager guards its map with a RWMutex, so handlers for different
// sessions never wait on each other. Per-session fields such as the last
// access time live behind the session's own lock.
//
// Engines own timers, so every path that drops a session (Delete,
// CleanupExpiredSessions, Close) calls Engine.Close to cancel the countdown
// and any pending flip-back or end-of-game callback.
//
//	manager := session.NewManager(session.WithEngineOptions(engine.WithScheduler(sched)))
//	defer manager.Close()
//
//	sess, err := manager.Create("", engine.DefaultConfig())
//	...
//	removed := manager.CleanupExpiredSessions(24 * time.Hour)
package session
