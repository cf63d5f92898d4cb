package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wricardo/memory-match-game/game/engine"
)

// Option customises the game service
type Option func(*gameServiceImpl)

// WithNotifier sends every snapshot change to n, including changes made by game timers
func WithNotifier(n Notifier) Option {
	return func(s *gameServiceImpl) {
		s.notifier = n
	}
}

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	notifier Notifier
	mu       sync.Mutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	return configName
}

// loadConfig resolves a preset, listing the alternatives when it does not exist
func (s *gameServiceImpl) loadConfig(configID string) (*engine.GameConfig, error) {
	config, err := s.configs.LoadConfig(configID)
	if err == nil {
		return config, nil
	}

	if errors.Is(err, ErrConfigNotFound) {
		availableConfigs, listErr := s.configs.ListConfigs()
		if listErr == nil && len(availableConfigs) > 0 {
			configIDs := make([]string, 0, len(availableConfigs))
			for _, cfg := range availableConfigs {
				configIDs = append(configIDs, cfg.ConfigID)
			}
			return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configID, configIDs)
		}
		return nil, fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, configID)
	}
	return nil, fmt.Errorf("failed to load config %s: %w", configID, err)
}

// watch forwards engine snapshots of sess to the notifier
func (s *gameServiceImpl) watch(sess *Session) {
	sessionID := sess.ID
	sess.Engine.SetOnChange(func(state *engine.GameState) {
		if state.Finished {
			log.Info().
				Str("session_id", sessionID).
				Str("game_id", state.GameID).
				Str("outcome", string(state.Outcome)).
				Int("score", state.Score).
				Int("moves", state.Moves).
				Int("elapsed", state.ElapsedSeconds).
				Msg("game finished")
		}
		if s.notifier != nil {
			s.notifier.BroadcastToSession(sessionID, state)
		}
	})
}

// getSession looks a session up and marks it as used
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrSessionNotFound)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

func sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigID:       sess.ConfigID(),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt(),
		GameState:      sess.Engine.GetState(),
		GameConfig:     sess.Engine.GetConfig(),
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configID string) (*SessionInfo, error) {
	var config *engine.GameConfig
	var err error
	if configID != "" {
		config, err = s.loadConfig(configID)
		if err != nil {
			return nil, err
		}
	} else {
		config = s.configs.GetDefault()
		configID = s.getConfigID(config.Name)
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	sess.SetConfigID(configID)
	s.watch(sess)

	log.Info().Str("session_id", sess.ID).Str("config_id", configID).Int("pairs", config.PairCount).Msg("session created")
	return sessionInfo(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("session %s: %w", sessionID, ErrSessionNotFound)
	}
	log.Info().Str("session_id", sessionID).Msg("session deleted")
	return nil
}

// NewGame deals a fresh board. configID takes precedence over pairCount; with
// neither the current preset is dealt again.
func (s *gameServiceImpl) NewGame(ctx context.Context, sessionID, configID string, pairCount int) (*engine.GameState, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case configID != "":
		config, err := s.loadConfig(configID)
		if err != nil {
			return nil, err
		}
		if err := sess.Engine.SetConfig(config); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		sess.SetConfigID(configID)
	case pairCount != 0:
		if !engine.IsAllowedPairCount(pairCount) {
			return nil, fmt.Errorf("%w: pair_count must be one of %v, got %d", ErrInvalidRequest, engine.AllowedPairCounts, pairCount)
		}
		if _, err := sess.Engine.NewGame(pairCount); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		sess.SetConfigID(s.getConfigID(sess.Engine.GetConfig().Name))
	default:
		sess.Engine.Reset()
	}

	state := sess.Engine.GetState()
	log.Info().
		Str("session_id", sessionID).
		Str("game_id", state.GameID).
		Str("config_id", sess.ConfigID()).
		Int("pairs", state.PairCount).
		Msg("new game")
	return state, nil
}

// FlipCard turns over a card. A rejected click is not an error; the result reports why.
func (s *gameServiceImpl) FlipCard(ctx context.Context, sessionID string, cardID int) (*FlipResult, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	before := sess.Engine.GetState()
	accepted := sess.Engine.SelectCard(cardID)
	state := sess.Engine.GetState()

	result := &FlipResult{
		Accepted:  accepted,
		CardID:    cardID,
		GameState: state,
		Message:   state.Message,
	}

	now := time.Now()
	id := cardID
	if !accepted {
		result.Message = rejectReason(before, cardID)
		result.Events = []GameEvent{{Type: EventRejected, Message: result.Message, Timestamp: now, CardID: &id}}
		log.Debug().Str("session_id", sessionID).Int("card_id", cardID).Str("reason", result.Message).Msg("flip rejected")
		return result, nil
	}

	if last := sess.Engine.GetLastMove(); last != nil && last.CardID == cardID {
		result.Events = append(result.Events, GameEvent{
			Type:      last.Result,
			Message:   flipEventMessage(last),
			Timestamp: now,
			CardID:    &id,
		})
	}
	if state.Score == state.PairCount {
		result.Events = append(result.Events, GameEvent{
			Type:      EventBoardComplete,
			Message:   fmt.Sprintf("All %d pairs found", state.PairCount),
			Timestamp: now,
		})
	}
	if state.Finished {
		result.Events = append(result.Events, GameEvent{
			Type:      EventGameOver,
			Message:   state.Message,
			Timestamp: now,
		})
	}

	log.Debug().
		Str("session_id", sessionID).
		Int("card_id", cardID).
		Int("moves", state.Moves).
		Int("score", state.Score).
		Msg("flip")
	return result, nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.GetState(), nil
}

// GetMoveHistory returns paginated flip history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order != "asc" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	moves := []engine.MoveHistoryEntry{}
	if start < total {
		if opts.Order == "desc" {
			// Most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				moves = append(moves, history[i])
			}
		} else {
			moves = history[start:end]
		}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available board presets
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific board preset
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configID string) (*engine.GameConfig, error) {
	return s.loadConfig(configID)
}

// SaveConfig saves a board preset to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configID string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configID, config)
}

// rejectReason explains why a click on state was ignored
func rejectReason(state *engine.GameState, cardID int) string {
	if state.Finished {
		return "Game is over. Start a new game to keep playing."
	}
	if state.Locked {
		return "Board is locked while the last pair resolves"
	}
	for _, card := range state.Cards {
		if card.ID != cardID {
			continue
		}
		if card.Matched {
			return fmt.Sprintf("Card %d is already matched", cardID)
		}
		if card.Selected {
			return fmt.Sprintf("Card %d is already face up", cardID)
		}
		if state.Moves > state.MoveLimit {
			return "No moves left"
		}
		return fmt.Sprintf("Card %d cannot be flipped right now", cardID)
	}
	return fmt.Sprintf("Unknown card %d (valid IDs are 0-%d)", cardID, len(state.Cards)-1)
}

func flipEventMessage(entry *engine.MoveHistoryEntry) string {
	switch entry.Result {
	case engine.FlipMatch:
		return fmt.Sprintf("Card %d (%s) completed a pair", entry.CardID, entry.Value)
	case engine.FlipMismatch:
		return fmt.Sprintf("Card %d (%s) does not match", entry.CardID, entry.Value)
	default:
		return fmt.Sprintf("Card %d shows %s", entry.CardID, entry.Value)
	}
}
