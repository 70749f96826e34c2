package ops

import (
	"crypto/md5"
	"database/sql"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/hpungsan/aura/internal/config"
	"github.com/hpungsan/aura/internal/db"
	"github.com/hpungsan/aura/internal/tablet"
)

// Memory patterns detected from entry content.
const (
	PatternCode           = "CODE"
	PatternError          = "ERROR"
	PatternImplementation = "IMPLEMENTATION"
	PatternDecision       = "DECISION"
	PatternFix            = "FIX"
	PatternOther          = "OTHER"
)

// DefaultDigestTablets caps how many recent tablets a digest reads.
const DefaultDigestTablets = 10

// summaryCap is the hard per-memory character budget in a digest.
const summaryCap = 120

var fileRefPattern = regexp.MustCompile(`\b[\w\-/]+\.(?:py|go|js|ts|jsx|tsx|json|md|html|css|yaml|yml)\b`)

// Memory is one deduplicated digest line.
type Memory struct {
	Content string   `json:"content"`
	Files   []string `json:"files,omitempty"`
	Pattern string   `json:"pattern"`
}

// DigestStats summarizes a digest run.
type DigestStats struct {
	TotalEntries     int `json:"total_entries"`
	UniqueEntries    int `json:"unique_entries"`
	DuplicateSkipped int `json:"duplicate_skipped"`
	SizeBytes        int `json:"size_bytes"`
}

// DigestOutput is the deduplicated context built from recent tablets.
type DigestOutput struct {
	Memories []Memory       `json:"memories"`
	Files    map[string]int `json:"files"`
	Patterns map[string]int `json:"patterns"`
	Stats    DigestStats    `json:"stats"`
}

// Digest builds a compact context summary from the most recent tablets,
// deduplicating by content hash and only naming each file once, so the
// result fits the configured context budget instead of replaying every
// entry verbatim.
func Digest(database *sql.DB, cfg *config.Config, maxTablets int) (*DigestOutput, error) {
	if maxTablets <= 0 {
		maxTablets = DefaultDigestTablets
	}
	records, err := db.List(database, db.ListFilter{Kind: db.KindTablet, Limit: maxTablets})
	if err != nil {
		return nil, err
	}

	out := &DigestOutput{
		Files:    make(map[string]int),
		Patterns: make(map[string]int),
	}
	seenHashes := make(map[[md5.Size]byte]bool)
	seenFiles := make(map[string]bool)
	budget := cfg.ContextBudgetKB * 1024
	size := 0

	for _, rec := range records {
		t, err := tablet.Load(rec.Path)
		if err != nil {
			continue
		}
		for _, entry := range t.Entries {
			out.Stats.TotalEntries++
			if size >= budget {
				continue
			}

			hash := md5.Sum([]byte(entry.Diff))
			if seenHashes[hash] {
				out.Stats.DuplicateSkipped++
				continue
			}
			seenHashes[hash] = true

			var newFiles []string
			for _, f := range extractFileRefs(entry.Diff) {
				if !seenFiles[f] {
					newFiles = append(newFiles, f)
				}
			}

			pattern := detectPattern(entry.Diff)
			out.Patterns[pattern]++

			summary := smartSummary(entry.Diff, newFiles)
			out.Memories = append(out.Memories, Memory{
				Content: summary,
				Files:   newFiles,
				Pattern: pattern,
			})
			out.Stats.UniqueEntries++
			size += len(summary)

			for _, f := range newFiles {
				seenFiles[f] = true
				out.Files[f]++
			}
		}
	}

	out.Stats.SizeBytes = size
	return out, nil
}

// extractFileRefs pulls file-looking paths out of free text, sorted for
// stable output.
func extractFileRefs(text string) []string {
	matches := fileRefPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}
	set := make(map[string]bool, len(matches))
	for _, m := range matches {
		set[m] = true
	}
	files := make([]string, 0, len(set))
	for f := range set {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// detectPattern classifies what kind of memory an entry records.
func detectPattern(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(text, "```"):
		return PatternCode
	case containsAny(lower, "error", "exception", "failed", "bug"):
		return PatternError
	case containsAny(lower, "implemented", "created", "added", "refactored"):
		return PatternImplementation
	case containsAny(lower, "decided", "chose", "strategy", "approach"):
		return PatternDecision
	case containsAny(lower, "fixed", "resolved", "solved"):
		return PatternFix
	default:
		return PatternOther
	}
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// smartSummary compresses an entry to the digest line budget, leading
// with files not yet seen in this digest.
func smartSummary(text string, newFiles []string) string {
	var summary string
	if len(newFiles) > 0 {
		shown := newFiles
		extra := ""
		if len(shown) > 3 {
			extra = fmt.Sprintf(" +%d more", len(shown)-3)
			shown = shown[:3]
		}
		summary = "[" + strings.Join(shown, ", ") + extra + "] " + truncate(text, 80)
	} else {
		summary = truncate(text, 110)
	}
	return truncate(summary, summaryCap)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
