package engine

import "time"

// Outcome classifies how a finished game ended
type Outcome string

const (
	OutcomeNone           Outcome = ""
	OutcomeWin            Outcome = "win"
	OutcomeTimeout        Outcome = "timeout"
	OutcomeMovesExhausted Outcome = "moves_exhausted"
)

const (
	// Game rule constants
	StartingSeconds = 30
	DefaultPairs    = 6

	// Delays before the board reacts to a resolved turn
	MismatchDelay  = 1 * time.Second
	MoveCheckDelay = 1 * time.Second
	WinDelay       = 500 * time.Millisecond
	TickInterval   = 1 * time.Second

	WebSocketBufferSize = 256
)

// AllowedPairCounts is the pair-count menu offered to players
var AllowedPairCounts = []int{4, 6, 8, 10, 12}

// Card is a single card on the board
type Card struct {
	ID      int    `json:"id"`
	Value   string `json:"value"`
	Matched bool   `json:"matched"`
}

// CardView is a card as shown to a renderer. Value is empty while the card is face down.
type CardView struct {
	ID       int    `json:"id"`
	Value    string `json:"value,omitempty"`
	Matched  bool   `json:"matched"`
	Selected bool   `json:"selected"`
	FaceUp   bool   `json:"face_up"`
}

// GameConfig is a board preset from the pair-count menu
type GameConfig struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Label       string `json:"label"`
	PairCount   int    `json:"pair_count"`
}

// GameState is a read-only snapshot of a game, taken after every mutation
type GameState struct {
	GameID           string     `json:"game_id"`
	ConfigName       string     `json:"config_name"`
	PairCount        int        `json:"pair_count"`
	Cards            []CardView `json:"cards"`
	Score            int        `json:"score"`
	Moves            int        `json:"moves"`
	MoveLimit        int        `json:"move_limit"`
	SecondsRemaining int        `json:"seconds_remaining"`
	ElapsedSeconds   int        `json:"elapsed_seconds"`
	Locked           bool       `json:"locked"`
	Started          bool       `json:"started"`
	Finished         bool       `json:"finished"`
	Outcome          Outcome    `json:"outcome"`
	Message          string     `json:"message"`
}

// MoveHistoryEntry records one accepted card flip
type MoveHistoryEntry struct {
	CardID     int    `json:"card_id"`
	Value      string `json:"value"`
	Result     string `json:"result"` // "flip", "match" or "mismatch"
	MoveNumber int    `json:"move_number"`
	Timestamp  int64  `json:"timestamp"`
}

// Flip results recorded in the history
const (
	FlipOpened   = "flip"
	FlipMatch    = "match"
	FlipMismatch = "mismatch"
)
