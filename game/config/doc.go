// Package config provides board preset management for the Memory Match Game.
//
// The config package handles:
//   - Loading presets from JSON files in a config directory
//   - Falling back to the built-in pair-count menu
//   - Default preset management
//   - Preset discovery and listing
//
// Configuration Format:
//
// Each preset is a JSON file named after its config ID:
//
//	{
//	  "name": "medium",
//	  "description": "8 pairs, 18 moves, 30 seconds",
//	  "label": "16 cards (8 pairs)",
//	  "pair_count": 8
//	}
//
// pair_count must be one of 4, 6, 8, 10 or 12. A missing name defaults to the
// file name and a missing label is derived from pair_count.
//
// Built-in Presets:
//
//   - tiny: 4 pairs
//   - small: 6 pairs (default)
//   - medium: 8 pairs
//   - large: 10 pairs
//   - huge: 12 pairs
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal().Err(err).Msg("config")
//	}
//
//	gameConfig, err := manager.LoadConfig("large")
//	defaultConfig := manager.GetDefault()
//	configs, err := manager.ListConfigs()
package config
