package ops

import (
	"crypto/md5"
	"database/sql"
	"fmt"
	"time"

	"github.com/hpungsan/aura/internal/config"
	"github.com/hpungsan/aura/internal/db"
	"github.com/hpungsan/aura/internal/tablet"
)

// Health severities, worst wins.
const (
	SeverityHealthy  = "HEALTHY"
	SeverityWarning  = "WARNING"
	SeverityCritical = "CRITICAL"
)

// Issue types reported by Health.
const (
	IssueSizeExceeded   = "SIZE_EXCEEDED"
	IssueSizeWarning    = "SIZE_WARNING"
	IssueTooManyEntries = "TOO_MANY_ENTRIES"
	IssueEntryWarning   = "ENTRY_WARNING"
	IssueSessionStale   = "SESSION_STALE"
	IssueHighRedundancy = "HIGH_REDUNDANCY"
)

// redundancyThreshold is the fraction of duplicated context above which
// a session is flagged for consolidation.
const redundancyThreshold = 0.5

// HealthIssue is one problem found during a health check.
type HealthIssue struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Action   string `json:"action"`
}

// HealthOutput is the result of checking one session file.
type HealthOutput struct {
	ID            string        `json:"id"`
	Path          string        `json:"path"`
	Status        string        `json:"status"`
	Healthy       bool          `json:"healthy"`
	SizeBytes     int64         `json:"size_bytes"`
	SizePercent   float64       `json:"size_percent"`
	Items         int           `json:"items"`
	AgeHours      float64       `json:"age_hours"`
	RedundancyPct float64       `json:"redundancy_pct"`
	Issues        []HealthIssue `json:"issues"`
}

// Health checks whether a session is getting too big, too old, or too
// repetitive to keep working in. The thresholds catch a single session
// running long, not long-term storage growth.
func Health(database *sql.DB, cfg *config.Config, idOrPath string) (*HealthOutput, error) {
	rec, err := resolveRecord(database, idOrPath)
	if err != nil {
		return nil, err
	}

	limit := cfg.MaxCapsuleBytes
	if rec.Kind == db.KindTablet {
		limit = cfg.MaxTabletBytes
	}

	size, err := fileSize(rec.Path)
	if err != nil {
		return nil, err
	}

	out := &HealthOutput{
		ID:          rec.ID,
		Path:        rec.Path,
		Status:      SeverityHealthy,
		SizeBytes:   size,
		SizePercent: float64(size) / float64(limit) * 100,
		Items:       rec.ItemCount,
		AgeHours:    time.Since(time.Unix(rec.CreatedAt, 0)).Hours(),
	}

	// Size: hard limit is CRITICAL, 75% is WARNING.
	switch {
	case size > limit:
		out.addIssue(HealthIssue{
			Type:     IssueSizeExceeded,
			Severity: SeverityCritical,
			Message:  fmt.Sprintf("session is %d bytes (limit %d)", size, limit),
			Action:   "export to a tablet and start a fresh session",
		})
	case size > limit*3/4:
		out.addIssue(HealthIssue{
			Type:     IssueSizeWarning,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("session at %.0f%% of the size limit", out.SizePercent),
			Action:   "consider exporting soon",
		})
	}

	// Item count: same two-tier thresholds.
	switch {
	case rec.ItemCount > cfg.MaxEntries:
		out.addIssue(HealthIssue{
			Type:     IssueTooManyEntries,
			Severity: SeverityCritical,
			Message:  fmt.Sprintf("session holds %d items (recommended <%d)", rec.ItemCount, cfg.MaxEntries),
			Action:   "export to a tablet and start a fresh session",
		})
	case rec.ItemCount > cfg.MaxEntries*3/4:
		out.addIssue(HealthIssue{
			Type:     IssueEntryWarning,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("session holds %d items, approaching the limit", rec.ItemCount),
			Action:   "consider exporting soon",
		})
	}

	// Age: flagged at twice the recommended session length.
	if out.AgeHours > float64(cfg.MaxSessionAgeHours)*2 {
		out.addIssue(HealthIssue{
			Type:     IssueSessionStale,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("session is %.1f hours old", out.AgeHours),
			Action:   "wrap up and start fresh",
		})
	}

	// Redundancy only applies to tablets; capsules hold one section per
	// name so repetition does not accumulate there.
	if rec.Kind == db.KindTablet {
		t, err := tablet.Load(rec.Path)
		if err != nil {
			return nil, err
		}
		out.RedundancyPct = redundancy(t) * 100
		if out.RedundancyPct > redundancyThreshold*100 {
			out.addIssue(HealthIssue{
				Type:     IssueHighRedundancy,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("context is %.0f%% redundant", out.RedundancyPct),
				Action:   "same information repeated too much, consolidate",
			})
		}
	}

	out.Healthy = out.Status == SeverityHealthy
	return out, nil
}

func (h *HealthOutput) addIssue(issue HealthIssue) {
	h.Issues = append(h.Issues, issue)
	if issue.Severity == SeverityCritical {
		h.Status = SeverityCritical
	} else if h.Status == SeverityHealthy {
		h.Status = SeverityWarning
	}
}

// redundancy scores how much of a tablet's content is repeated:
// duplicate diff hashes weighted 70%, file over-mention weighted 30%.
// Mentioning each file six times on average counts as fully redundant.
func redundancy(t *tablet.Tablet) float64 {
	if len(t.Entries) == 0 {
		return 0
	}

	hashes := make(map[[md5.Size]byte]bool)
	diffs := 0
	mentions := make(map[string]int)
	for _, e := range t.Entries {
		if e.Diff != "" {
			hashes[md5.Sum([]byte(e.Diff))] = true
			diffs++
		}
		if e.Path != "" {
			mentions[e.Path]++
		}
	}
	if diffs == 0 {
		return 0
	}

	contentRedundancy := 1 - float64(len(hashes))/float64(diffs)

	total := 0
	for _, n := range mentions {
		total += n
	}
	avgMentions := 1.0
	if len(mentions) > 0 {
		avgMentions = float64(total) / float64(len(mentions))
	}
	fileRedundancy := (avgMentions - 1) / 5
	if fileRedundancy > 1 {
		fileRedundancy = 1
	}
	if fileRedundancy < 0 {
		fileRedundancy = 0
	}

	return contentRedundancy*0.7 + fileRedundancy*0.3
}
