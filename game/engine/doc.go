// Package engine provides the core game logic for the Memory Match Game.
//
// The engine package implements the game mechanics including:
//   - Deck generation with an unbiased shuffle
//   - Pair resolution, scoring and move accounting
//   - The countdown and the three end conditions (win, timeout, moves exhausted)
//   - Board presets and their validation
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState is the read-only snapshot handed to
// renderers, while GameConfig describes a board preset from the pair-count menu.
//
// Usage:
//
//	gameEngine, err := engine.NewEngine(engine.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine.SetOnChange(func(state *engine.GameState) {
//		render(state)
//	})
//
//	// Flip a card
//	accepted := gameEngine.SelectCard(3)
//	state := gameEngine.GetState()
//
// Timing:
//
// Delayed effects (mismatch flip-back, the win latch, the move-limit check and
// the per-second countdown) run through a Scheduler. TimeScheduler uses real
// timers; ManualScheduler lets tests advance virtual time. Every delayed
// callback remembers the game it was scheduled for and does nothing once a new
// game has been dealt.
//
// Game Rules:
//
// Two cards are revealed per turn. A matching pair stays face up and scores a
// point; a mismatch flips back after one second. The game is won when every
// pair is found, and lost when the 30 second countdown runs out or the move
// limit (2 x pairs + 2) is spent with cards still face down.
package engine
