package main

import (
	"context"
	"math/rand"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/memory-match-game/api"
	"github.com/wricardo/memory-match-game/game/config"
	"github.com/wricardo/memory-match-game/game/engine"
	"github.com/wricardo/memory-match-game/game/service"
	"github.com/wricardo/memory-match-game/game/session"
)

func TestWebsocketURL(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"http://localhost:8080", "ws://localhost:8080/ws?session=ab12"},
		{"https://example.ngrok.app/", "wss://example.ngrok.app/ws?session=ab12"},
		{"http://host/prefix", "ws://host/prefix/ws?session=ab12"},
	}
	for _, tt := range tests {
		got, err := websocketURL(tt.base, "ab12")
		if err != nil {
			t.Fatalf("websocketURL(%q) failed: %v", tt.base, err)
		}
		if got != tt.want {
			t.Errorf("websocketURL(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}
}

func TestFormatSummary(t *testing.T) {
	if got := formatSummary(Summary{}); got != "No games played" {
		t.Errorf("Unexpected empty summary %q", got)
	}

	s := Summary{
		Games:    4,
		Moves:    40,
		Outcomes: map[engine.Outcome]int{engine.OutcomeWin: 3, engine.OutcomeMovesExhausted: 1},
	}
	got := formatSummary(s)
	for _, want := range []string{"Games: 4", "Wins: 3", "Out of moves: 1", "Avg moves: 10.0"} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected %q in %q", want, got)
		}
	}
}

func TestPlayGameOverREST(t *testing.T) {
	sched := engine.NewManualScheduler(time.Unix(0, 0))
	configs, err := config.NewManager("")
	if err != nil {
		t.Fatal(err)
	}
	sessions := session.NewManager(session.WithEngineOptions(
		engine.WithScheduler(sched),
		engine.WithRand(rand.New(rand.NewSource(11))),
	))
	defer sessions.Close()

	ts := httptest.NewServer(api.NewServer(service.NewGameService(sessions, configs), nil))
	defer ts.Close()

	// Virtual time moves while the bot polls a locked board
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		ticker := time.NewTicker(time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sched.Advance(100 * time.Millisecond)
			}
		}
	}()

	client := NewClient(ts.URL)
	if _, err := client.CreateSession("tiny"); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	final, err := playGame(ctx, client, NewPlayer(), time.Millisecond)
	if err != nil {
		t.Fatalf("playGame failed: %v", err)
	}
	if !final.Finished {
		t.Fatal("Expected finished game")
	}
	if final.Outcome == engine.OutcomeNone {
		t.Error("Expected an outcome")
	}
	if final.Moves > final.MoveLimit+1 {
		t.Errorf("Expected at most %d moves, got %d", final.MoveLimit+1, final.Moves)
	}
}

func TestClientErrors(t *testing.T) {
	ts := httptest.NewServer(api.NewServer(service.NewGameService(session.NewManager(), mustConfigs(t)), nil))
	defer ts.Close()

	client := NewClient(ts.URL)
	if _, err := client.CreateSession("nope"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected not found error, got %v", err)
	}
	if _, err := client.GetState(); err == nil {
		t.Error("Expected error without a session")
	}
}

func mustConfigs(t *testing.T) *config.Manager {
	t.Helper()
	m, err := config.NewManager("")
	if err != nil {
		t.Fatal(err)
	}
	return m
}
