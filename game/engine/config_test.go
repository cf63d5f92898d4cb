package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateGameConfig(t *testing.T) {
	tests := []struct {
		name      string
		config    *GameConfig
		wantError string
	}{
		{"valid", &GameConfig{Name: "ok", PairCount: 8}, ""},
		{"nil config", nil, "config is required"},
		{"missing name", &GameConfig{PairCount: 8}, "name is required"},
		{"pair count off menu", &GameConfig{Name: "odd", PairCount: 7}, "pair_count must be one of"},
		{"zero pairs", &GameConfig{Name: "zero"}, "pair_count must be one of"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGameConfig(tt.config)
			if tt.wantError == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Expected error containing %q, got nil", tt.wantError)
			}
			if !strings.Contains(err.Error(), tt.wantError) {
				t.Errorf("Expected error containing %q, got %q", tt.wantError, err.Error())
			}
		})
	}
}

func TestBuiltinConfigs(t *testing.T) {
	configs := BuiltinConfigs()
	if len(configs) != len(AllowedPairCounts) {
		t.Fatalf("Expected %d presets, got %d", len(AllowedPairCounts), len(configs))
	}

	want := map[string]int{"tiny": 4, "small": 6, "medium": 8, "large": 10, "huge": 12}
	for name, pairs := range want {
		config, ok := configs[name]
		if !ok {
			t.Errorf("Missing preset %q", name)
			continue
		}
		if config.PairCount != pairs {
			t.Errorf("Preset %q: expected %d pairs, got %d", name, pairs, config.PairCount)
		}
		if err := ValidateGameConfig(config); err != nil {
			t.Errorf("Preset %q is invalid: %v", name, err)
		}
	}
}

func TestMoveLimitAndLabel(t *testing.T) {
	tests := []struct {
		pairs int
		limit int
		label string
	}{
		{4, 10, "8 cards (4 pairs)"},
		{6, 14, "12 cards (6 pairs)"},
		{12, 26, "24 cards (12 pairs)"},
	}

	for _, tt := range tests {
		if got := MoveLimit(tt.pairs); got != tt.limit {
			t.Errorf("MoveLimit(%d) = %d, want %d", tt.pairs, got, tt.limit)
		}
		if got := PairLabel(tt.pairs); got != tt.label {
			t.Errorf("PairLabel(%d) = %q, want %q", tt.pairs, got, tt.label)
		}
	}
}

func TestCustomConfig(t *testing.T) {
	if config := CustomConfig(10); config.Name != "large" {
		t.Errorf("Expected preset 'large' for 10 pairs, got %q", config.Name)
	}

	config := CustomConfig(3)
	if config.Name != "custom-3" || config.PairCount != 3 {
		t.Errorf("Expected custom-3 config, got %+v", config)
	}
}

func TestLoadGameConfig(t *testing.T) {
	dir := t.TempDir()

	validPath := filepath.Join(dir, "party.json")
	if err := os.WriteFile(validPath, []byte(`{"description": "Party board", "pair_count": 10}`), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	config, err := LoadGameConfig(validPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if config.Name != "party" {
		t.Errorf("Expected name from filename, got %q", config.Name)
	}
	if config.Label != "20 cards (10 pairs)" {
		t.Errorf("Expected default label, got %q", config.Label)
	}

	invalidPath := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(invalidPath, []byte(`{"pair_count": 5}`), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	if _, err := LoadGameConfig(invalidPath); err == nil {
		t.Error("Expected validation error for 5 pairs")
	}

	garbagePath := filepath.Join(dir, "garbage.json")
	if err := os.WriteFile(garbagePath, []byte(`{not json`), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	if _, err := LoadGameConfig(garbagePath); err == nil {
		t.Error("Expected parse error")
	}

	if _, err := LoadGameConfig(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}
