package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Config holds application configuration. Limits follow the storage
// architecture: capsules are per-session working state capped at 1 MiB,
// tablets are long-term memory capped at 8 MiB.
type Config struct {
	// SessionsDir is where .auratab/.auractx files live. Relative paths
	// are resolved against the base directory.
	SessionsDir string `json:"sessions_dir,omitempty"`

	// MaxCapsuleBytes caps a single capsule file.
	MaxCapsuleBytes int64 `json:"max_capsule_bytes,omitempty"`

	// MaxTabletBytes caps a single tablet file.
	MaxTabletBytes int64 `json:"max_tablet_bytes,omitempty"`

	// MaxEntries is the recommended ceiling on items in one session file;
	// health checks warn at 75% and flag CRITICAL above it.
	MaxEntries int `json:"max_entries,omitempty"`

	// MaxSessionAgeHours is how long a capsule session should run before
	// health checks suggest a refresh.
	MaxSessionAgeHours int `json:"max_session_age_hours,omitempty"`

	// CleanupIntervalDays is how often the cleanup scheduler fires.
	CleanupIntervalDays int `json:"cleanup_interval_days,omitempty"`

	// AutoDeleteDays is the age past which temporary tablets are removed.
	AutoDeleteDays int `json:"auto_delete_days,omitempty"`

	// ContextBudgetKB caps the deduplicated memory digest handed to an
	// assistant.
	ContextBudgetKB int `json:"context_budget_kb,omitempty"`

	// DBMaxOpenConns limits open catalog connections. 0 means the sql.DB
	// default.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits idle catalog connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools lists MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		SessionsDir:         "sessions",
		MaxCapsuleBytes:     1 << 20, // 1 MiB
		MaxTabletBytes:      8 << 20, // 8 MiB
		MaxEntries:          100,
		MaxSessionAgeHours:  4,
		CleanupIntervalDays: 7,
		AutoDeleteDays:      30,
		ContextBudgetKB:     75,
	}
}

// Load loads configuration from baseDir/config.json, falling back to
// defaults when the file does not exist. The baseDir parameter lets tests
// use t.TempDir() instead of ~/.aura.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// ResolveSessionsDir returns the absolute sessions directory for baseDir.
func (c *Config) ResolveSessionsDir(baseDir string) string {
	if filepath.IsAbs(c.SessionsDir) {
		return c.SessionsDir
	}
	return filepath.Join(baseDir, c.SessionsDir)
}

// loadFileRaw loads configuration from a specific file path. Returns a
// zero-valued config (not defaults) if the file doesn't exist.
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge combines base and overlay configs. Overlay values win for scalars;
// the tool list is merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.SessionsDir = overlay.SessionsDir
	if result.SessionsDir == "" {
		result.SessionsDir = base.SessionsDir
	}

	result.MaxCapsuleBytes = overlay.MaxCapsuleBytes
	if result.MaxCapsuleBytes == 0 {
		result.MaxCapsuleBytes = base.MaxCapsuleBytes
	}
	result.MaxTabletBytes = overlay.MaxTabletBytes
	if result.MaxTabletBytes == 0 {
		result.MaxTabletBytes = base.MaxTabletBytes
	}
	result.MaxEntries = overlay.MaxEntries
	if result.MaxEntries == 0 {
		result.MaxEntries = base.MaxEntries
	}
	result.MaxSessionAgeHours = overlay.MaxSessionAgeHours
	if result.MaxSessionAgeHours == 0 {
		result.MaxSessionAgeHours = base.MaxSessionAgeHours
	}
	result.CleanupIntervalDays = overlay.CleanupIntervalDays
	if result.CleanupIntervalDays == 0 {
		result.CleanupIntervalDays = base.CleanupIntervalDays
	}
	result.AutoDeleteDays = overlay.AutoDeleteDays
	if result.AutoDeleteDays == 0 {
		result.AutoDeleteDays = base.AutoDeleteDays
	}
	result.ContextBudgetKB = overlay.ContextBudgetKB
	if result.ContextBudgetKB == 0 {
		result.ContextBudgetKB = base.ContextBudgetKB
	}
	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}
	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// mergeStringSlice combines two slices, trims whitespace, and removes
// duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
