package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MoveLimit returns the number of clicks allowed for a board of pairCount pairs
func MoveLimit(pairCount int) int {
	return 2*pairCount + 2
}

// PairLabel returns the menu label for a pair count, e.g. "12 cards (6 pairs)"
func PairLabel(pairCount int) string {
	return fmt.Sprintf("%d cards (%d pairs)", 2*pairCount, pairCount)
}

// IsAllowedPairCount reports whether n is on the pair-count menu
func IsAllowedPairCount(n int) bool {
	for _, allowed := range AllowedPairCounts {
		if n == allowed {
			return true
		}
	}
	return false
}

// ValidateGameConfig validates a board preset
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is required")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if !IsAllowedPairCount(config.PairCount) {
		return fmt.Errorf("config validation: pair_count must be one of %v, got %d", AllowedPairCounts, config.PairCount)
	}
	if config.PairCount > len(Palette) {
		return fmt.Errorf("config validation: pair_count %d exceeds palette size %d", config.PairCount, len(Palette))
	}
	return nil
}

// BuiltinConfigs returns the standard presets, one per allowed pair count
func BuiltinConfigs() map[string]*GameConfig {
	names := []string{"tiny", "small", "medium", "large", "huge"}
	configs := make(map[string]*GameConfig, len(names))
	for i, pairs := range AllowedPairCounts {
		configs[names[i]] = &GameConfig{
			Name:        names[i],
			Description: fmt.Sprintf("%d pairs, %d moves, %d seconds", pairs, MoveLimit(pairs), StartingSeconds),
			Label:       PairLabel(pairs),
			PairCount:   pairs,
		}
	}
	return configs
}

// DefaultConfig returns the preset used when none is requested
func DefaultConfig() *GameConfig {
	return CustomConfig(DefaultPairs)
}

// CustomConfig describes an ad-hoc board chosen by pair count alone
func CustomConfig(pairCount int) *GameConfig {
	for _, config := range BuiltinConfigs() {
		if config.PairCount == pairCount {
			return config
		}
	}
	return &GameConfig{
		Name:        fmt.Sprintf("custom-%d", pairCount),
		Description: "Custom board",
		Label:       PairLabel(pairCount),
		PairCount:   pairCount,
	}
}

// LoadGameConfig loads a board preset from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", filepath.Base(filename), err)
	}

	if config.Name == "" {
		config.Name = strings.TrimSuffix(filepath.Base(filename), ".json")
	}
	if config.Label == "" {
		config.Label = PairLabel(config.PairCount)
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config '%s': %w", filepath.Base(filename), err)
	}

	return &config, nil
}
