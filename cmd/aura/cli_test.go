package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hpungsan/aura/internal/config"
	"github.com/hpungsan/aura/internal/db"
	"github.com/hpungsan/aura/internal/ops"
)

// setupTestDB creates a temporary database and config for testing.
func setupTestDB(t *testing.T) (*sql.DB, *config.Config) {
	t.Helper()
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("failed to init test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	cfg.SessionsDir = filepath.Join(tmpDir, "sessions")
	return database, cfg
}

// runApp runs the CLI with captured stdout.
func runApp(t *testing.T, database *sql.DB, cfg *config.Config, args ...string) (string, error) {
	t.Helper()

	app := newCLIApp(database, cfg)

	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := app.Run(append([]string{"aura"}, args...))

	w.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	os.Stdout = oldStdout

	return buf.String(), err
}

// TestParseTags tests the parseTags helper function.
func TestParseTags(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty string", input: "", expected: nil},
		{name: "single tag", input: "foo", expected: []string{"foo"}},
		{name: "multiple tags", input: "foo,bar,baz", expected: []string{"foo", "bar", "baz"}},
		{name: "tags with spaces", input: " foo , bar , baz ", expected: []string{"foo", "bar", "baz"}},
		{name: "empty segments dropped", input: "foo,,bar,", expected: []string{"foo", "bar"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTags(tt.input)
			if len(got) != len(tt.expected) {
				t.Fatalf("parseTags(%q) = %v, want %v", tt.input, got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("parseTags(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.expected[i])
				}
			}
		})
	}
}

// TestCLITabletCreate tests the tablet create command.
func TestCLITabletCreate(t *testing.T) {
	database, cfg := setupTestDB(t)

	out, err := runApp(t, database, cfg,
		"tablet", "create", "--title=Test session", "--name=test-tablet", "--tags=foo,bar")
	if err != nil {
		t.Fatalf("tablet create failed: %v", err)
	}

	var output ops.CreateOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}
	if output.ID == "" {
		t.Error("expected non-empty ID")
	}
	if output.Kind != "tablet" {
		t.Errorf("kind = %q, want tablet", output.Kind)
	}
}

// TestCLITabletAddEntry tests the tablet add-entry command.
func TestCLITabletAddEntry(t *testing.T) {
	database, cfg := setupTestDB(t)

	created, err := ops.CreateTablet(database, cfg, ops.CreateTabletInput{
		Dir: cfg.SessionsDir, Title: "Session",
	})
	if err != nil {
		t.Fatalf("setup create failed: %v", err)
	}

	out, err := runApp(t, database, cfg,
		"tablet", "add-entry", created.ID, "--path=main.go", "--diff=+x", "--notes=note")
	if err != nil {
		t.Fatalf("add-entry failed: %v", err)
	}

	var output ops.AddEntryOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}
	if output.EntryCount != 1 {
		t.Errorf("entry_count = %d, want 1", output.EntryCount)
	}
}

// TestCLICapsuleRoundTrip tests capsule create, set-section, and export.
func TestCLICapsuleRoundTrip(t *testing.T) {
	database, cfg := setupTestDB(t)

	out, err := runApp(t, database, cfg,
		"capsule", "create", "--project=aura", "--name=active", "--objective=ship it")
	if err != nil {
		t.Fatalf("capsule create failed: %v", err)
	}
	var created ops.CreateOutput
	if err := json.Unmarshal([]byte(out), &created); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	if _, err := runApp(t, database, cfg,
		"capsule", "set-section", created.ID, "--name=working_plan", "--content=do things"); err != nil {
		t.Fatalf("set-section failed: %v", err)
	}

	out, err = runApp(t, database, cfg,
		"capsule", "export", created.ID, "--name=archived", "--delete")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	var exported ops.ExportCapsuleOutput
	if err := json.Unmarshal([]byte(out), &exported); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if exported.Entries != 2 {
		t.Errorf("entries = %d, want 2", exported.Entries)
	}
	if !exported.Deleted {
		t.Error("capsule not deleted")
	}
}

// TestCLISessions tests the sessions listing command.
func TestCLISessions(t *testing.T) {
	database, cfg := setupTestDB(t)

	if _, err := ops.CreateTablet(database, cfg, ops.CreateTabletInput{
		Dir: cfg.SessionsDir, Title: "Listed",
	}); err != nil {
		t.Fatalf("setup create failed: %v", err)
	}

	out, err := runApp(t, database, cfg, "sessions", "--kind=tablet")
	if err != nil {
		t.Fatalf("sessions failed: %v", err)
	}
	var output ops.ListOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if output.Count != 1 {
		t.Errorf("count = %d, want 1", output.Count)
	}
}

// TestCLIInspect tests the inspect command.
func TestCLIInspect(t *testing.T) {
	database, cfg := setupTestDB(t)

	created, err := ops.CreateTablet(database, cfg, ops.CreateTabletInput{
		Dir: cfg.SessionsDir, Title: "Inspected",
	})
	if err != nil {
		t.Fatalf("setup create failed: %v", err)
	}

	out, err := runApp(t, database, cfg, "inspect", created.Path)
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	var view ops.InspectOutput
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if view.Kind != "tablet" {
		t.Errorf("kind = %q, want tablet", view.Kind)
	}
}

// TestCLIErrorHandling tests error formatting for a missing target.
func TestCLIErrorHandling(t *testing.T) {
	database, cfg := setupTestDB(t)

	_, err := runApp(t, database, cfg, "health", "missing-id")
	if err == nil {
		t.Fatal("expected error for missing target")
	}
	if !strings.Contains(err.Error(), "NOT_FOUND") {
		t.Errorf("error = %q, want NOT_FOUND code", err.Error())
	}
}

// TestIsCLIMode tests the CLI/MCP dispatch decision.
func TestIsCLIMode(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected bool
	}{
		{name: "no args", args: []string{"aura"}, expected: false},
		{name: "tablet command", args: []string{"aura", "tablet"}, expected: true},
		{name: "sessions command", args: []string{"aura", "sessions"}, expected: true},
		{name: "serve command", args: []string{"aura", "serve"}, expected: true},
		{name: "help flag", args: []string{"aura", "--help"}, expected: true},
		{name: "version flag", args: []string{"aura", "--version"}, expected: true},
		{name: "unknown arg defaults to MCP", args: []string{"aura", "--unknown"}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			defer func() { os.Args = oldArgs }()

			os.Args = tt.args
			if got := isCLIMode(); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

// TestIsHelpOrVersion tests help/version detection.
func TestIsHelpOrVersion(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected bool
	}{
		{name: "no args", args: []string{"aura"}, expected: false},
		{name: "help", args: []string{"aura", "help"}, expected: true},
		{name: "help flag", args: []string{"aura", "--help"}, expected: true},
		{name: "version flag", args: []string{"aura", "-v"}, expected: true},
		{name: "subcommand", args: []string{"aura", "tablet"}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			defer func() { os.Args = oldArgs }()

			os.Args = tt.args
			if got := isHelpOrVersion(); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}
