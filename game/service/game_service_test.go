package service_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/memory-match-game/game/engine"
	"github.com/wricardo/memory-match-game/game/service"
)

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	sessions map[string]*service.Session
	sched    *engine.ManualScheduler
}

func NewMockSessionManager(sched *engine.ManualScheduler) *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
		sched:    sched,
	}
}

func (m *MockSessionManager) Create(id string, config *engine.GameConfig) (*service.Session, error) {
	// Generate ID if empty (mimics real session manager behavior)
	if id == "" {
		id = fmt.Sprintf("t%03d", len(m.sessions)+1)
	}

	if _, exists := m.sessions[id]; exists {
		return nil, service.ErrSessionAlreadyExists
	}

	eng, err := engine.NewEngine(config,
		engine.WithScheduler(m.sched),
		engine.WithRand(rand.New(rand.NewSource(int64(len(m.sessions)+1)))))
	if err != nil {
		return nil, err
	}

	session := service.NewSession(id, config.Name, eng, m.sched.Now())
	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	session, exists := m.sessions[id]
	if !exists {
		return nil, service.ErrSessionNotFound
	}
	return session, nil
}

func (m *MockSessionManager) GetOrCreate(id string, config *engine.GameConfig) (*service.Session, error) {
	if session, exists := m.sessions[id]; exists {
		return session, nil
	}
	return m.Create(id, config)
}

func (m *MockSessionManager) List() []*service.Session {
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	session, exists := m.sessions[id]
	if !exists {
		return service.ErrSessionNotFound
	}
	session.Engine.Close()
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	if session, exists := m.sessions[id]; exists {
		session.Touch(time.Now())
		return nil
	}
	return service.ErrSessionNotFound
}

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.GameConfig
	saved   map[string]*engine.GameConfig
}

func NewMockConfigManager() *MockConfigManager {
	return &MockConfigManager{
		configs: engine.BuiltinConfigs(),
		saved:   make(map[string]*engine.GameConfig),
	}
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.GameConfig, error) {
	config, exists := m.configs[name]
	if !exists {
		return nil, service.ErrConfigNotFound
	}
	return config, nil
}

func (m *MockConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	result := make([]*service.ConfigInfo, 0, len(m.configs))
	for id, config := range m.configs {
		result = append(result, &service.ConfigInfo{
			ConfigID:  id,
			Name:      config.Name,
			PairCount: config.PairCount,
		})
	}
	return result, nil
}

func (m *MockConfigManager) GetDefault() *engine.GameConfig {
	return m.configs["small"]
}

func (m *MockConfigManager) SaveConfig(name string, config *engine.GameConfig) error {
	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %v", service.ErrInvalidConfig, err)
	}
	m.saved[name] = config
	m.configs[name] = config
	return nil
}

// recordingNotifier captures broadcasts per session
type recordingNotifier struct {
	mu     sync.Mutex
	states map[string][]*engine.GameState
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{states: make(map[string][]*engine.GameState)}
}

func (n *recordingNotifier) BroadcastToSession(sessionID string, state *engine.GameState) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.states[sessionID] = append(n.states[sessionID], state)
}

func (n *recordingNotifier) last(sessionID string) *engine.GameState {
	n.mu.Lock()
	defer n.mu.Unlock()
	states := n.states[sessionID]
	if len(states) == 0 {
		return nil
	}
	return states[len(states)-1]
}

func (n *recordingNotifier) count(sessionID string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.states[sessionID])
}

type fixture struct {
	svc      service.GameService
	sched    *engine.ManualScheduler
	notifier *recordingNotifier
	configs  *MockConfigManager
}

func newFixture() *fixture {
	sched := engine.NewManualScheduler(time.Unix(0, 0))
	notifier := newRecordingNotifier()
	configs := NewMockConfigManager()
	svc := service.NewGameService(NewMockSessionManager(sched), configs, service.WithNotifier(notifier))
	return &fixture{svc: svc, sched: sched, notifier: notifier, configs: configs}
}

// pairFor returns the card sharing a value with id on a board of pairs pairs
func pairFor(id, pairs int) int {
	return (id + pairs) % (2 * pairs)
}

func TestGameService_CreateSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	t.Run("default config", func(t *testing.T) {
		info, err := f.svc.CreateSession(ctx, "")
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if info.ConfigID != "small" {
			t.Errorf("Expected config_id 'small', got %q", info.ConfigID)
		}
		if info.GameState == nil || info.GameState.PairCount != 6 {
			t.Errorf("Expected a 6-pair game, got %+v", info.GameState)
		}
	})

	t.Run("named config", func(t *testing.T) {
		info, err := f.svc.CreateSession(ctx, "huge")
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if info.ConfigID != "huge" || len(info.GameState.Cards) != 24 {
			t.Errorf("Expected 24-card huge game, got config=%q cards=%d", info.ConfigID, len(info.GameState.Cards))
		}
	})

	t.Run("unknown config", func(t *testing.T) {
		_, err := f.svc.CreateSession(ctx, "nope")
		if !errors.Is(err, service.ErrConfigNotFound) {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
	})
}

func TestGameService_GetAndDeleteSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	info, _ := f.svc.CreateSession(ctx, "tiny")

	got, err := f.svc.GetSession(ctx, info.ID)
	if err != nil {
		t.Fatalf("Failed to get session: %v", err)
	}
	if got.GameState.GameID != info.GameState.GameID {
		t.Error("Expected the same game")
	}

	if err := f.svc.DeleteSession(ctx, info.ID); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}
	if _, err := f.svc.GetSession(ctx, info.ID); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
	if err := f.svc.DeleteSession(ctx, info.ID); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound on second delete, got %v", err)
	}
}

func TestGameService_FlipCard(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	info, _ := f.svc.CreateSession(ctx, "tiny")

	t.Run("first flip", func(t *testing.T) {
		result, err := f.svc.FlipCard(ctx, info.ID, 0)
		if err != nil {
			t.Fatalf("Flip failed: %v", err)
		}
		if !result.Accepted {
			t.Fatal("Expected flip to be accepted")
		}
		if len(result.Events) != 1 || result.Events[0].Type != service.EventFlip {
			t.Errorf("Expected a flip event, got %+v", result.Events)
		}
	})

	t.Run("same card again", func(t *testing.T) {
		result, err := f.svc.FlipCard(ctx, info.ID, 0)
		if err != nil {
			t.Fatalf("Flip failed: %v", err)
		}
		if result.Accepted {
			t.Error("Expected repeated flip to be rejected")
		}
		if len(result.Events) != 1 || result.Events[0].Type != service.EventRejected {
			t.Errorf("Expected a rejected event, got %+v", result.Events)
		}
	})

	t.Run("matching card", func(t *testing.T) {
		result, err := f.svc.FlipCard(ctx, info.ID, pairFor(0, 4))
		if err != nil {
			t.Fatalf("Flip failed: %v", err)
		}
		if result.Events[0].Type != service.EventMatch {
			t.Errorf("Expected a match event, got %+v", result.Events)
		}
		if result.GameState.Score != 1 {
			t.Errorf("Expected score 1, got %d", result.GameState.Score)
		}
	})

	t.Run("unknown card", func(t *testing.T) {
		result, err := f.svc.FlipCard(ctx, info.ID, 42)
		if err != nil {
			t.Fatalf("Flip failed: %v", err)
		}
		if result.Accepted {
			t.Error("Expected unknown card to be rejected")
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		_, err := f.svc.FlipCard(ctx, "zzzz", 0)
		if !errors.Is(err, service.ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})
}

func TestGameService_TimerChangesAreBroadcast(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	info, _ := f.svc.CreateSession(ctx, "tiny")

	f.svc.FlipCard(ctx, info.ID, 0)
	f.svc.FlipCard(ctx, info.ID, 1)
	if last := f.notifier.last(info.ID); last == nil || !last.Locked {
		t.Fatal("Expected broadcast of the locked board")
	}

	before := f.notifier.count(info.ID)
	f.sched.Advance(engine.MismatchDelay)

	if f.notifier.count(info.ID) <= before {
		t.Fatal("Expected timer-driven broadcasts")
	}
	if last := f.notifier.last(info.ID); last.Locked {
		t.Error("Expected the flip-back to be broadcast")
	}
}

func TestGameService_WinBroadcast(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	info, _ := f.svc.CreateSession(ctx, "tiny")

	var result *service.FlipResult
	for id := 0; id < 4; id++ {
		f.svc.FlipCard(ctx, info.ID, id)
		result, _ = f.svc.FlipCard(ctx, info.ID, pairFor(id, 4))
	}

	var complete bool
	for _, ev := range result.Events {
		if ev.Type == service.EventBoardComplete {
			complete = true
		}
	}
	if !complete {
		t.Errorf("Expected board_complete event, got %+v", result.Events)
	}

	f.sched.Advance(engine.WinDelay)
	last := f.notifier.last(info.ID)
	if last == nil || last.Outcome != engine.OutcomeWin {
		t.Errorf("Expected win broadcast, got %+v", last)
	}
}

func TestGameService_NewGame(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	info, _ := f.svc.CreateSession(ctx, "tiny")

	t.Run("by config", func(t *testing.T) {
		state, err := f.svc.NewGame(ctx, info.ID, "large", 0)
		if err != nil {
			t.Fatalf("NewGame failed: %v", err)
		}
		if state.PairCount != 10 {
			t.Errorf("Expected 10 pairs, got %d", state.PairCount)
		}
		got, _ := f.svc.GetSession(ctx, info.ID)
		if got.ConfigID != "large" {
			t.Errorf("Expected config 'large', got %q", got.ConfigID)
		}
	})

	t.Run("by pair count", func(t *testing.T) {
		state, err := f.svc.NewGame(ctx, info.ID, "", 8)
		if err != nil {
			t.Fatalf("NewGame failed: %v", err)
		}
		if state.PairCount != 8 || state.MoveLimit != 18 {
			t.Errorf("Expected 8 pairs and 18 moves, got %d and %d", state.PairCount, state.MoveLimit)
		}
		got, _ := f.svc.GetSession(ctx, info.ID)
		if got.ConfigID != "medium" {
			t.Errorf("Expected config 'medium', got %q", got.ConfigID)
		}
	})

	t.Run("redeal current", func(t *testing.T) {
		f.svc.FlipCard(ctx, info.ID, 0)
		before, _ := f.svc.GetGameState(ctx, info.ID)

		state, err := f.svc.NewGame(ctx, info.ID, "", 0)
		if err != nil {
			t.Fatalf("NewGame failed: %v", err)
		}
		if state.GameID == before.GameID || state.Moves != 0 || state.PairCount != 8 {
			t.Errorf("Expected a fresh 8-pair game, got %+v", state)
		}
	})

	t.Run("invalid pair count", func(t *testing.T) {
		_, err := f.svc.NewGame(ctx, info.ID, "", 5)
		if !errors.Is(err, service.ErrInvalidRequest) {
			t.Errorf("Expected ErrInvalidRequest, got %v", err)
		}
	})

	t.Run("unknown config", func(t *testing.T) {
		_, err := f.svc.NewGame(ctx, info.ID, "missing", 0)
		if !errors.Is(err, service.ErrConfigNotFound) {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
	})
}

func TestGameService_GetMoveHistory(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	info, _ := f.svc.CreateSession(ctx, "tiny")

	for id := 0; id < 3; id++ {
		f.svc.FlipCard(ctx, info.ID, id)
		f.svc.FlipCard(ctx, info.ID, pairFor(id, 4))
	}

	tests := []struct {
		name      string
		opts      service.HistoryOptions
		wantLen   int
		wantFirst int
		wantNext  bool
	}{
		{"defaults newest first", service.HistoryOptions{}, 6, 6, false},
		{"ascending page 1", service.HistoryOptions{Page: 1, Limit: 4, Order: "asc"}, 4, 1, true},
		{"ascending page 2", service.HistoryOptions{Page: 2, Limit: 4, Order: "asc"}, 2, 5, false},
		{"descending page 2", service.HistoryOptions{Page: 2, Limit: 4, Order: "desc"}, 2, 2, false},
		{"past the end", service.HistoryOptions{Page: 5, Limit: 4}, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := f.svc.GetMoveHistory(ctx, info.ID, tt.opts)
			if err != nil {
				t.Fatalf("GetMoveHistory failed: %v", err)
			}
			if resp.TotalMoves != 6 {
				t.Errorf("Expected 6 total moves, got %d", resp.TotalMoves)
			}
			if len(resp.Moves) != tt.wantLen {
				t.Fatalf("Expected %d moves, got %d", tt.wantLen, len(resp.Moves))
			}
			if tt.wantLen > 0 && resp.Moves[0].MoveNumber != tt.wantFirst {
				t.Errorf("Expected first move number %d, got %d", tt.wantFirst, resp.Moves[0].MoveNumber)
			}
			if resp.HasNext != tt.wantNext {
				t.Errorf("Expected has_next %v, got %v", tt.wantNext, resp.HasNext)
			}
		})
	}
}

func TestGameService_ListSessions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := f.svc.CreateSession(ctx, "tiny"); err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
	}

	sessions, err := f.svc.ListSessions(ctx)
	if err != nil {
		t.Fatalf("Failed to list sessions: %v", err)
	}
	if len(sessions) != 3 {
		t.Errorf("Expected 3 sessions, got %d", len(sessions))
	}
}

func TestGameService_Configs(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	configs, err := f.svc.ListConfigs(ctx)
	if err != nil {
		t.Fatalf("ListConfigs failed: %v", err)
	}
	if len(configs) != len(engine.AllowedPairCounts) {
		t.Errorf("Expected %d configs, got %d", len(engine.AllowedPairCounts), len(configs))
	}

	if err := f.svc.SaveConfig(ctx, "party", &engine.GameConfig{Name: "party", PairCount: 10}); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	config, err := f.svc.LoadConfig(ctx, "party")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.PairCount != 10 {
		t.Errorf("Expected 10 pairs, got %d", config.PairCount)
	}

	if err := f.svc.SaveConfig(ctx, "bad", &engine.GameConfig{Name: "bad", PairCount: 9}); !errors.Is(err, service.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}
