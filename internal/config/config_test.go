package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	def := DefaultConfig()
	if !reflect.DeepEqual(cfg, def) {
		t.Errorf("cfg = %+v, want defaults %+v", cfg, def)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	content := `{"max_capsule_bytes": 2048, "disabled_tools": ["session_cleanup"]}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.MaxCapsuleBytes != 2048 {
		t.Errorf("MaxCapsuleBytes = %d, want 2048", cfg.MaxCapsuleBytes)
	}
	// Untouched values keep defaults.
	if cfg.MaxTabletBytes != 8<<20 {
		t.Errorf("MaxTabletBytes = %d, want default", cfg.MaxTabletBytes)
	}
	if !reflect.DeepEqual(cfg.DisabledTools, []string{"session_cleanup"}) {
		t.Errorf("DisabledTools = %v", cfg.DisabledTools)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{nope"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(dir); err == nil {
		t.Error("Load should fail on invalid JSON")
	}
}

func TestMergeDeduplicatesTools(t *testing.T) {
	base := &Config{DisabledTools: []string{"a", "b"}}
	overlay := &Config{DisabledTools: []string{" b ", "c", ""}}

	got := Merge(base, overlay)
	if !reflect.DeepEqual(got.DisabledTools, []string{"a", "b", "c"}) {
		t.Errorf("DisabledTools = %v", got.DisabledTools)
	}
}

func TestResolveSessionsDir(t *testing.T) {
	cfg := DefaultConfig()
	got := cfg.ResolveSessionsDir("/home/u/.aura")
	if got != filepath.Join("/home/u/.aura", "sessions") {
		t.Errorf("ResolveSessionsDir = %q", got)
	}

	cfg.SessionsDir = "/var/aura/sessions"
	if cfg.ResolveSessionsDir("/home/u/.aura") != "/var/aura/sessions" {
		t.Error("absolute sessions dir should be returned as-is")
	}
}
