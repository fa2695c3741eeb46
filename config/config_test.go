package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfigHasUsableDefaults(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Window.Width <= 0 || cfg.Window.Height <= 0 {
		t.Errorf("default window geometry = %dx%d, want positive", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.Font.Size <= 0 {
		t.Errorf("default font size = %v, want positive", cfg.Font.Size)
	}
	if cfg.Palette == "" {
		t.Error("default palette name should not be empty")
	}
	if cfg.Shell.AdditionalEnv == nil {
		t.Error("AdditionalEnv should be a non-nil map so callers can range over it unconditionally")
	}
}

func TestGetAvailableShellsDedupsByBasename(t *testing.T) {
	shells := GetAvailableShells()
	seen := make(map[string]bool)
	for _, s := range shells {
		base := filepath.Base(s)
		if seen[base] {
			t.Errorf("duplicate shell basename %q in %v", base, shells)
		}
		seen[base] = true
	}
}
