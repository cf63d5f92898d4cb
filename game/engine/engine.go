package engine

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game lifecycle
	NewGame(pairCount int) (*GameState, error)
	Reset() *GameState
	Close()

	// Player input
	SelectCard(cardID int) bool
	Tick()

	// Game state
	GetState() *GameState
	IsFinished() bool
	GetOutcome() Outcome
	GetScore() int
	GetMoves() int

	// Configuration
	GetConfig() *GameConfig
	SetConfig(config *GameConfig) error

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry

	// Notifications
	SetOnChange(fn func(*GameState))
}

// Option customises a GameEngine
type Option func(*GameEngine)

// WithScheduler replaces the wall-clock scheduler
func WithScheduler(s Scheduler) Option {
	return func(e *GameEngine) {
		e.scheduler = s
	}
}

// WithRand sets the random source used to shuffle decks
func WithRand(rng *rand.Rand) Option {
	return func(e *GameEngine) {
		e.rng = rng
	}
}

// WithManualTick disables the built-in countdown. The caller must invoke Tick once per second.
func WithManualTick() Option {
	return func(e *GameEngine) {
		e.autoTick = false
	}
}

// GameEngine implements the Engine interface.
// All mutations happen under mu; delayed callbacks carry the generation they were
// scheduled in and do nothing once a new game has started.
type GameEngine struct {
	mu        sync.Mutex
	config    *GameConfig
	scheduler Scheduler
	rng       *rand.Rand
	autoTick  bool
	onChange  func(*GameState)

	gameID           string
	generation       int
	pairCount        int
	cards            []Card
	selection        []int
	moves            int
	moveLimit        int
	score            int
	secondsRemaining int
	locked           bool
	started          bool
	finished         bool
	outcome          Outcome
	message          string
	history          []MoveHistoryEntry

	ticker Timer
	timers []Timer
}

// NewEngine creates a new game engine and deals the first game from config
func NewEngine(config *GameConfig, opts ...Option) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	e := newGameEngine(config, opts)
	if err := e.newGameLocked(config.PairCount); err != nil {
		return nil, err
	}
	return e, nil
}

// NewEngineWithDefaults creates a new game engine with the default preset
func NewEngineWithDefaults(opts ...Option) *GameEngine {
	config := DefaultConfig()
	e := newGameEngine(config, opts)
	// The default preset is always dealable
	_ = e.newGameLocked(config.PairCount)
	return e
}

func newGameEngine(config *GameConfig, opts []Option) *GameEngine {
	e := &GameEngine{
		config:    config,
		scheduler: TimeScheduler{},
		autoTick:  true,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return e
}

// NewGame abandons the current game and deals a fresh board of pairCount pairs
func (e *GameEngine) NewGame(pairCount int) (*GameState, error) {
	var err error
	e.mutate(func() bool {
		if err = e.newGameLocked(pairCount); err != nil {
			return false
		}
		if pairCount != e.config.PairCount {
			e.config = CustomConfig(pairCount)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return e.GetState(), nil
}

// Reset deals a new game with the current configuration
func (e *GameEngine) Reset() *GameState {
	e.mutate(func() bool {
		// config was validated when it was set
		_ = e.newGameLocked(e.config.PairCount)
		return true
	})
	return e.GetState()
}

// Close cancels every pending callback. The engine must not be used afterwards.
func (e *GameEngine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.generation++
	e.stopTimersLocked()
	e.onChange = nil
}

// SelectCard flips the card with the given ID. It reports whether the click was accepted;
// clicks on a locked or finished board, matched or already selected cards are ignored.
func (e *GameEngine) SelectCard(cardID int) bool {
	return e.mutate(func() bool {
		return e.selectLocked(cardID)
	})
}

// Tick advances the countdown by one second
func (e *GameEngine) Tick() {
	e.mutate(e.tickLocked)
}

// GetState returns a snapshot of the current game
func (e *GameEngine) GetState() *GameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// IsFinished returns whether the game has ended
func (e *GameEngine) IsFinished() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.finished
}

// GetOutcome returns how the game ended, or OutcomeNone while it is running
func (e *GameEngine) GetOutcome() Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.outcome
}

// GetScore returns the number of matched pairs
func (e *GameEngine) GetScore() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.score
}

// GetMoves returns the number of accepted clicks
func (e *GameEngine) GetMoves() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.moves
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.config
}

// SetConfig sets a new game configuration and deals a new game
func (e *GameEngine) SetConfig(config *GameConfig) error {
	if err := ValidateGameConfig(config); err != nil {
		return err
	}

	var err error
	e.mutate(func() bool {
		e.config = config
		err = e.newGameLocked(config.PairCount)
		return err == nil
	})
	return err
}

// GetMoveHistory returns the flips of the current game
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	e.mu.Lock()
	defer e.mu.Unlock()

	history := make([]MoveHistoryEntry, len(e.history))
	copy(history, e.history)
	return history
}

// GetLastMove returns the last flip made, or nil if no flips
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.history) == 0 {
		return nil
	}
	last := e.history[len(e.history)-1]
	return &last
}

// SetOnChange registers fn to receive a snapshot after every state change,
// including changes made by timers. fn is called without the engine lock held.
func (e *GameEngine) SetOnChange(fn func(*GameState)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onChange = fn
}

// mutate runs f under the lock and notifies the listener if f reports a change
func (e *GameEngine) mutate(f func() bool) bool {
	e.mu.Lock()
	changed := f()
	listener := e.onChange
	var state *GameState
	if changed && listener != nil {
		state = e.snapshotLocked()
	}
	e.mu.Unlock()

	if state != nil {
		listener(state)
	}
	return changed
}

func (e *GameEngine) newGameLocked(pairCount int) error {
	cards, err := BuildDeck(pairCount, e.rng)
	if err != nil {
		return err
	}

	e.generation++
	e.stopTimersLocked()

	e.gameID = uuid.NewString()
	e.pairCount = pairCount
	e.cards = cards
	e.selection = nil
	e.moves = 0
	e.moveLimit = MoveLimit(pairCount)
	e.score = 0
	e.secondsRemaining = StartingSeconds
	e.locked = false
	e.started = false
	e.finished = false
	e.outcome = OutcomeNone
	e.history = []MoveHistoryEntry{}
	e.message = fmt.Sprintf("Find all %d pairs within %d moves and %d seconds!", pairCount, e.moveLimit, StartingSeconds)
	return nil
}

func (e *GameEngine) selectLocked(cardID int) bool {
	idx := e.indexOf(cardID)
	if idx < 0 {
		return false
	}
	if e.locked || e.finished || e.cards[idx].Matched || e.isSelected(idx) {
		return false
	}
	// One click past the limit may still land while the exhaustion check is pending
	if e.moves > e.moveLimit {
		return false
	}

	if !e.started {
		e.started = true
		e.armTickLocked()
	}

	e.moves++
	if e.moves >= e.moveLimit {
		gen := e.generation
		e.scheduleLocked(MoveCheckDelay, func() {
			e.mutate(func() bool { return e.checkMovesExhaustedLocked(gen) })
		})
	}

	e.selection = append(e.selection, idx)
	e.history = append(e.history, MoveHistoryEntry{
		CardID:     e.cards[idx].ID,
		Value:      e.cards[idx].Value,
		Result:     FlipOpened,
		MoveNumber: e.moves,
		Timestamp:  e.scheduler.Now().Unix(),
	})

	if len(e.selection) == 2 {
		e.resolvePairLocked()
	}
	return true
}

// resolvePairLocked settles a full selection
func (e *GameEngine) resolvePairLocked() {
	e.locked = true
	first, second := e.cards[e.selection[0]], e.cards[e.selection[1]]
	last := &e.history[len(e.history)-1]

	if first.Value == second.Value {
		for i := range e.cards {
			if e.cards[i].Value == first.Value {
				e.cards[i].Matched = true
			}
		}
		e.score++
		e.selection = nil
		e.locked = false
		last.Result = FlipMatch
		e.message = fmt.Sprintf("It's a match! %d of %d pairs found", e.score, e.pairCount)
		e.checkWinLocked()
		return
	}

	last.Result = FlipMismatch
	e.message = "Not a match"
	gen := e.generation
	e.scheduleLocked(MismatchDelay, func() {
		e.mutate(func() bool {
			if gen != e.generation || e.finished {
				return false
			}
			e.selection = nil
			e.locked = false
			return true
		})
	})
}

// checkWinLocked schedules the win latch once every card is matched
func (e *GameEngine) checkWinLocked() {
	if !AllMatched(e.cards) {
		return
	}

	e.stopTickerLocked()
	gen := e.generation
	e.scheduleLocked(WinDelay, func() {
		e.mutate(func() bool {
			if gen != e.generation || e.finished {
				return false
			}
			e.finishLocked(OutcomeWin)
			return true
		})
	})
}

func (e *GameEngine) checkMovesExhaustedLocked(gen int) bool {
	if gen != e.generation || e.finished {
		return false
	}
	// A fully matched board is a win even if the latch has not fired yet
	if AllMatched(e.cards) {
		return false
	}
	e.finishLocked(OutcomeMovesExhausted)
	return true
}

func (e *GameEngine) tickLocked() bool {
	if !e.started || e.finished || AllMatched(e.cards) {
		return false
	}

	if e.secondsRemaining > 0 {
		e.secondsRemaining--
	}
	if e.secondsRemaining == 0 {
		e.finishLocked(OutcomeTimeout)
	}
	return true
}

func (e *GameEngine) armTickLocked() {
	if !e.autoTick {
		return
	}

	gen := e.generation
	e.ticker = e.scheduler.AfterFunc(TickInterval, func() {
		e.mutate(func() bool {
			if gen != e.generation {
				return false
			}
			changed := e.tickLocked()
			if e.started && !e.finished && !AllMatched(e.cards) {
				e.armTickLocked()
			}
			return changed
		})
	})
}

func (e *GameEngine) finishLocked(outcome Outcome) {
	e.finished = true
	e.locked = true
	e.outcome = outcome
	e.stopTickerLocked()

	switch outcome {
	case OutcomeWin:
		e.message = fmt.Sprintf("Congratulations! You finished in %d moves, %d seconds, with %d matches!",
			e.moves, StartingSeconds-e.secondsRemaining, e.score)
	case OutcomeTimeout:
		e.message = "Time's up! Better luck next time!"
	case OutcomeMovesExhausted:
		e.message = "Out of moves! Better luck next time!"
	}
}

func (e *GameEngine) scheduleLocked(d time.Duration, f func()) {
	e.timers = append(e.timers, e.scheduler.AfterFunc(d, f))
}

func (e *GameEngine) stopTickerLocked() {
	if e.ticker != nil {
		e.ticker.Stop()
		e.ticker = nil
	}
}

func (e *GameEngine) stopTimersLocked() {
	e.stopTickerLocked()
	for _, t := range e.timers {
		t.Stop()
	}
	e.timers = nil
}

func (e *GameEngine) indexOf(cardID int) int {
	for i, card := range e.cards {
		if card.ID == cardID {
			return i
		}
	}
	return -1
}

func (e *GameEngine) isSelected(idx int) bool {
	for _, s := range e.selection {
		if s == idx {
			return true
		}
	}
	return false
}

func (e *GameEngine) snapshotLocked() *GameState {
	cards := make([]CardView, len(e.cards))
	for i, card := range e.cards {
		selected := e.isSelected(i)
		view := CardView{
			ID:       card.ID,
			Matched:  card.Matched,
			Selected: selected,
			FaceUp:   card.Matched || selected,
		}
		if view.FaceUp {
			view.Value = card.Value
		}
		cards[i] = view
	}

	configName := ""
	if e.config != nil {
		configName = e.config.Name
	}

	return &GameState{
		GameID:           e.gameID,
		ConfigName:       configName,
		PairCount:        e.pairCount,
		Cards:            cards,
		Score:            e.score,
		Moves:            e.moves,
		MoveLimit:        e.moveLimit,
		SecondsRemaining: e.secondsRemaining,
		ElapsedSeconds:   StartingSeconds - e.secondsRemaining,
		Locked:           e.locked,
		Started:          e.started,
		Finished:         e.finished,
		Outcome:          e.outcome,
		Message:          e.message,
	}
}
