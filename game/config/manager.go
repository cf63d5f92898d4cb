package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/wricardo/memory-match-game/game/engine"
	"github.com/wricardo/memory-match-game/game/service"
)

var (
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = service.ErrInvalidConfig
	ErrReadOnly       = errors.New("no config directory configured")
)

// DefaultConfigID is the preset used when a session is created without one
const DefaultConfigID = "small"

// Manager handles board preset loading and caching. Presets come from JSON
// files in configDir; the built-in pair-count menu fills in anything missing.
type Manager struct {
	configDir     string
	defaultConfig *engine.GameConfig
	configs       map[string]*engine.GameConfig
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager. An empty configDir serves
// only the built-in presets.
func NewManager(configDir string) (*Manager, error) {
	if configDir != "" {
		info, err := os.Stat(configDir)
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config directory does not exist: %s", configDir)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to stat config directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("config path is not a directory: %s", configDir)
		}
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.GameConfig),
	}

	if err := m.loadDefaultConfig(); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	return m, nil
}

// LoadConfig loads a preset by ID, checking the directory before the built-ins
func (m *Manager) LoadConfig(name string) (*engine.GameConfig, error) {
	name = strings.TrimSuffix(name, ".json")
	if err := checkConfigID(name); err != nil {
		return nil, err
	}

	m.mu.RLock()
	if config, exists := m.configs[name]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[name]; exists {
		return config, nil
	}

	config, err := m.readConfigFile(name)
	if errors.Is(err, ErrConfigNotFound) {
		builtin, ok := engine.BuiltinConfigs()[name]
		if !ok {
			return nil, ErrConfigNotFound
		}
		config, err = builtin, nil
	}
	if err != nil {
		return nil, err
	}

	m.configs[name] = config
	return config, nil
}

// ListConfigs returns every available preset ordered by pair count
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	ids := make(map[string]string) // config id -> filename
	for id := range engine.BuiltinConfigs() {
		ids[id] = ""
	}

	if m.configDir != "" {
		entries, err := os.ReadDir(m.configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to read config directory: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			ids[strings.TrimSuffix(entry.Name(), ".json")] = entry.Name()
		}
	}

	configs := make([]*service.ConfigInfo, 0, len(ids))
	for id, filename := range ids {
		config, err := m.LoadConfig(id)
		if err != nil {
			log.Warn().Err(err).Str("config_id", id).Msg("skipping invalid config")
			continue
		}

		configs = append(configs, &service.ConfigInfo{
			Filename:    filename,
			ConfigID:    id,
			Name:        config.Name,
			Description: config.Description,
			Label:       config.Label,
			PairCount:   config.PairCount,
			MoveLimit:   engine.MoveLimit(config.PairCount),
			Builtin:     filename == "",
		})
	}

	sort.Slice(configs, func(i, j int) bool {
		if configs[i].PairCount != configs[j].PairCount {
			return configs[i].PairCount < configs[j].PairCount
		}
		return configs[i].ConfigID < configs[j].ConfigID
	})

	return configs, nil
}

// GetDefault returns the default configuration
func (m *Manager) GetDefault() *engine.GameConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default configuration by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// RefreshCache drops every cached preset so files are re-read on next use
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.configs = make(map[string]*engine.GameConfig)
	m.mu.Unlock()

	return m.loadDefaultConfig()
}

// SaveConfig validates a preset and writes it to the config directory
func (m *Manager) SaveConfig(name string, config *engine.GameConfig) error {
	if m.configDir == "" {
		return ErrReadOnly
	}

	name = strings.TrimSuffix(name, ".json")
	if err := checkConfigID(name); err != nil {
		return err
	}

	if config != nil && config.Label == "" {
		config.Label = engine.PairLabel(config.PairCount)
	}
	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	configPath := filepath.Join(m.configDir, name+".json")
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[name] = config
	m.mu.Unlock()

	log.Info().Str("config_id", name).Int("pair_count", config.PairCount).Msg("config saved")
	return nil
}

// checkConfigID rejects ids that could resolve outside the config directory
func checkConfigID(name string) error {
	if name == "" || name == "." || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: invalid config id %q", ErrInvalidConfig, name)
	}
	return nil
}

// readConfigFile loads one preset from disk. Caller holds m.mu.
func (m *Manager) readConfigFile(name string) (*engine.GameConfig, error) {
	if m.configDir == "" {
		return nil, ErrConfigNotFound
	}

	configPath := filepath.Join(m.configDir, name+".json")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, ErrConfigNotFound
	}

	config, err := engine.LoadGameConfig(configPath)
	if err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return config, nil
}

// loadDefaultConfig picks the default preset, falling back to the built-in one
func (m *Manager) loadDefaultConfig() error {
	config, err := m.LoadConfig(DefaultConfigID)
	if err != nil {
		log.Warn().Err(err).Msg("default preset unavailable, using built-in")
		config = engine.DefaultConfig()
	}

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
	return nil
}
