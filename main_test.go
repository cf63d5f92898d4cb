package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/wricardo/memory-match-game/game/session"
	"github.com/wricardo/memory-match-game/transport/mcp"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName != "Memory Match Game Server" {
		t.Errorf("Unexpected app name %s", AppName)
	}
}

func TestNewCommand(t *testing.T) {
	cmd := newCommand()

	for _, name := range []string{"server", "stdio-mcp"} {
		found := false
		for _, sub := range cmd.Commands {
			if sub.Name == name {
				found = true
			}
		}
		if !found {
			t.Errorf("Expected %s subcommand", name)
		}
	}

	flags := map[string]bool{}
	for _, f := range cmd.Flags {
		for _, n := range f.Names() {
			flags[n] = true
		}
	}
	for _, name := range []string{"host", "port", "config-dir", "log-level", "debug", "session-ttl", "ngrok", "ngrok-auth", "ngrok-domain"} {
		if !flags[name] {
			t.Errorf("Expected --%s flag", name)
		}
	}
}

func TestInitializeServices(t *testing.T) {
	tests := []struct {
		name      string
		configDir func(t *testing.T) string
		wantErr   bool
	}{
		{"empty dir", func(t *testing.T) string { return t.TempDir() }, false},
		{"missing dir falls back to built-ins", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope") }, false},
		{"no dir", func(t *testing.T) string { return "" }, false},
		{"file instead of dir", func(t *testing.T) string {
			path := filepath.Join(t.TempDir(), "file.json")
			if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
				t.Fatal(err)
			}
			return path
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svcs, err := initializeServices(tt.configDir(t))
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Failed to initialize services: %v", err)
			}
			defer svcs.close()

			configs, err := svcs.game.ListConfigs(context.Background())
			if err != nil {
				t.Fatalf("ListConfigs failed: %v", err)
			}
			if len(configs) < 5 {
				t.Errorf("Expected at least the 5 built-in presets, got %d", len(configs))
			}
		})
	}
}

func TestRouterServesMCP(t *testing.T) {
	router := newRouter(http.NotFoundHandler(), "http://127.0.0.1:0")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/mcp", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for GET /mcp, got %d", w.Code)
	}

	body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}}}`
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/mcp", strings.NewReader(body)))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 for POST /mcp, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Memory Match Game") {
		t.Errorf("Expected server name in initialize response, got %s", w.Body.String())
	}
}

func TestMCPHandlerDirect(t *testing.T) {
	handler := newMCPHandler(mcp.NewClient("http://127.0.0.1:0").GetMCPServer())

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest("PUT", "/mcp", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", w.Code)
	}
}

func TestAPIAvailable(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer healthy.Close()

	if !apiAvailable(healthy.URL) {
		t.Error("Expected healthy server to be available")
	}

	broken := httptest.NewServer(http.NotFoundHandler())
	defer broken.Close()
	if apiAvailable(broken.URL) {
		t.Error("Expected server without health endpoint to be unavailable")
	}

	if apiAvailable("http://127.0.0.1:1") {
		t.Error("Expected unreachable server to be unavailable")
	}
}

func TestSetupLogging(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	tests := []struct {
		level string
		debug bool
		want  zerolog.Level
	}{
		{"warn", false, zerolog.WarnLevel},
		{"ERROR", false, zerolog.ErrorLevel},
		{"bogus", false, zerolog.InfoLevel},
		{"", false, zerolog.InfoLevel},
		{"error", true, zerolog.DebugLevel},
	}
	for _, tt := range tests {
		setupLogging(tt.level, tt.debug)
		if got := zerolog.GlobalLevel(); got != tt.want {
			t.Errorf("setupLogging(%q, %v): level %v, want %v", tt.level, tt.debug, got, tt.want)
		}
	}
}

func TestSessionCleanupRoutineStops(t *testing.T) {
	manager := session.NewManager()
	defer manager.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sessionCleanupRoutine(ctx, manager, time.Millisecond, time.Hour)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cleanup routine did not stop after cancel")
	}
}
