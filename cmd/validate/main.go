// Command validate checks board preset JSON files in a config directory. It checks:
//   - JSON structure, unknown fields and the required name
//   - pair_count is on the menu and fits the symbol palette
//   - label, when present, matches the pair count
//
// It exits non-zero if any file is invalid.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/memory-match-game/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Messages holds informational notes; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File     string
	Valid    bool
	Messages []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Messages = append(r.Messages, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) note(format string, args ...interface{}) {
	r.Messages = append(r.Messages, "✓ "+fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single preset file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Cannot read file: %v", err)
		return result
	}

	var config engine.GameConfig
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if config.Name == "" {
		result.fail("Missing name")
	} else if stem := strings.TrimSuffix(result.File, ".json"); config.Name != stem {
		result.note("Name %q differs from file name; the file name is the config ID", config.Name)
	}

	if !engine.IsAllowedPairCount(config.PairCount) {
		result.fail("pair_count must be one of %v, got %d", engine.AllowedPairCounts, config.PairCount)
	} else if config.PairCount > len(engine.Palette) {
		result.fail("pair_count %d exceeds palette size %d", config.PairCount, len(engine.Palette))
	} else {
		result.note("%s, %d moves allowed", engine.PairLabel(config.PairCount), engine.MoveLimit(config.PairCount))
	}

	if config.Label != "" && engine.IsAllowedPairCount(config.PairCount) && config.Label != engine.PairLabel(config.PairCount) {
		result.fail("label %q does not match pair count (expected %q)", config.Label, engine.PairLabel(config.PairCount))
	}

	if config.Description == "" {
		result.note("No description")
	}

	return result
}

// validateDir validates every *.json file in dir and writes a report to w.
// It returns false if any file is invalid.
func validateDir(w io.Writer, dir string) (bool, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return false, fmt.Errorf("finding config files: %w", err)
	}
	if len(files) == 0 {
		return false, fmt.Errorf("no config files found in %s", dir)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Messages {
				fmt.Fprintln(w, "  "+info)
			}
		} else {
			fmt.Fprintln(w, "❌ INVALID")
			allValid = false
			for _, msg := range result.Messages {
				if !strings.HasPrefix(msg, "✓") {
					fmt.Fprintln(w, "  ❌ "+msg)
				}
			}
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All configurations are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some configurations have errors")
	}
	return allValid, nil
}

func main() {
	cmd := &cli.Command{
		Name:  "validate",
		Usage: "Validate board preset JSON files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "Directory containing board presets",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ok, err := validateDir(os.Stdout, cmd.String("config-dir"))
			if err != nil {
				return err
			}
			if !ok {
				return cli.Exit("", 1)
			}
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("validation failed")
	}
}
