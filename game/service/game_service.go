package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wricardo/memory-match-game/game/engine"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrConfigNotFound       = errors.New("configuration not found")
	ErrInvalidConfig        = errors.New("invalid configuration")
	ErrInvalidRequest       = errors.New("invalid request")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configID string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	NewGame(ctx context.Context, sessionID, configID string, pairCount int) (*engine.GameState, error)
	FlipCard(ctx context.Context, sessionID string, cardID int) (*FlipResult, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configID string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configID string, config *engine.GameConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.GameConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles board preset loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// Notifier receives a snapshot after every change to a session's game
type Notifier interface {
	BroadcastToSession(sessionID string, state *engine.GameState)
}

// Session represents an active game session. ID, Engine and CreatedAt never
// change; the remaining fields are guarded by the session's own lock.
type Session struct {
	ID        string
	Engine    *engine.GameEngine
	CreatedAt time.Time

	mu             sync.Mutex
	configID       string
	lastAccessedAt time.Time
}

// NewSession wraps an engine in a session created at now
func NewSession(id, configID string, eng *engine.GameEngine, now time.Time) *Session {
	return &Session{
		ID:             id,
		Engine:         eng,
		CreatedAt:      now,
		configID:       configID,
		lastAccessedAt: now,
	}
}

// ConfigID returns the preset the current game was dealt from
func (s *Session) ConfigID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.configID
}

// SetConfigID records the preset of a newly dealt game
func (s *Session) SetConfigID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configID = id
}

// LastAccessedAt returns when the session was last used
func (s *Session) LastAccessedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccessedAt
}

// Touch marks the session as used at t
func (s *Session) Touch(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccessedAt = t
}
