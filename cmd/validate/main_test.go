package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		valid   bool
		message string
	}{
		{
			name:    "valid",
			file:    "small.json",
			content: `{"name":"small","description":"Six pairs","pair_count":6}`,
			valid:   true,
			message: "12 cards (6 pairs), 14 moves allowed",
		},
		{
			name:    "matching label",
			file:    "tiny.json",
			content: `{"name":"tiny","description":"d","label":"8 cards (4 pairs)","pair_count":4}`,
			valid:   true,
		},
		{
			name:    "name differs from file",
			file:    "party.json",
			content: `{"name":"Party","description":"d","pair_count":8}`,
			valid:   true,
			message: "file name is the config ID",
		},
		{
			name:    "bad json",
			file:    "broken.json",
			content: `{"name":`,
			valid:   false,
			message: "Invalid JSON",
		},
		{
			name:    "unknown field",
			file:    "typo.json",
			content: `{"name":"typo","pairs":6}`,
			valid:   false,
			message: "Invalid JSON",
		},
		{
			name:    "missing name",
			file:    "anon.json",
			content: `{"pair_count":6}`,
			valid:   false,
			message: "Missing name",
		},
		{
			name:    "pair count off menu",
			file:    "odd.json",
			content: `{"name":"odd","pair_count":7}`,
			valid:   false,
			message: "pair_count must be one of",
		},
		{
			name:    "wrong label",
			file:    "liar.json",
			content: `{"name":"liar","label":"100 cards","pair_count":4}`,
			valid:   false,
			message: "does not match pair count",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), tt.file, tt.content)
			result := validateConfig(path)

			if result.Valid != tt.valid {
				t.Errorf("Expected valid=%v, got %v (%v)", tt.valid, result.Valid, result.Messages)
			}
			if tt.message != "" && !strings.Contains(strings.Join(result.Messages, "\n"), tt.message) {
				t.Errorf("Expected message containing %q, got %v", tt.message, result.Messages)
			}
		})
	}
}

func TestValidateConfigMissingFile(t *testing.T) {
	result := validateConfig(filepath.Join(t.TempDir(), "nope.json"))
	if result.Valid {
		t.Error("Expected missing file to be invalid")
	}
}

func TestValidateDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "small.json", `{"name":"small","description":"d","pair_count":6}`)

	var buf bytes.Buffer
	ok, err := validateDir(&buf, dir)
	if err != nil {
		t.Fatalf("validateDir failed: %v", err)
	}
	if !ok {
		t.Errorf("Expected all valid:\n%s", buf.String())
	}

	writeFile(t, dir, "odd.json", `{"name":"odd","pair_count":5}`)
	buf.Reset()
	ok, _ = validateDir(&buf, dir)
	if ok {
		t.Error("Expected invalid file to fail the directory")
	}
	if !strings.Contains(buf.String(), "❌ INVALID") {
		t.Errorf("Expected INVALID marker in report:\n%s", buf.String())
	}
}

func TestValidateDirEmpty(t *testing.T) {
	var buf bytes.Buffer
	if _, err := validateDir(&buf, t.TempDir()); err == nil {
		t.Error("Expected error for a directory without presets")
	}
}
