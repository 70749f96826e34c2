package ops

import (
	"database/sql"
	"os"
	"slices"
	"time"

	"github.com/hpungsan/aura/internal/config"
	"github.com/hpungsan/aura/internal/db"
	"github.com/hpungsan/aura/internal/errors"
)

// metaLastCleanup is the catalog meta key recording the last cleanup run.
const metaLastCleanup = "last_cleanup"

// Tags controlling automatic deletion. Sessions tagged temporary or
// auto-captured age out; tagging one "saved" pins it.
const (
	TagTemporary    = "temporary"
	TagAutoCaptured = "auto-captured"
	TagSaved        = "saved"
)

// CleanupCandidate is one session eligible for deletion.
type CleanupCandidate struct {
	ID      string `json:"id"`
	Path    string `json:"path"`
	Title   string `json:"title"`
	AgeDays int    `json:"age_days"`
	Items   int    `json:"items"`
}

// CleanupOutput reports the result of a cleanup run.
type CleanupOutput struct {
	Ran        bool               `json:"ran"`
	Candidates []CleanupCandidate `json:"candidates"`
	Deleted    int                `json:"deleted"`
}

// CleanupDue reports whether the periodic cleanup interval has elapsed
// since the last recorded run. A missing or unparseable timestamp counts
// as due.
func CleanupDue(database *sql.DB, cfg *config.Config) (bool, error) {
	raw, err := db.GetMeta(database, metaLastCleanup)
	if err != nil {
		return false, err
	}
	if raw == "" {
		return true, nil
	}
	last, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return true, nil
	}
	interval := time.Duration(cfg.CleanupIntervalDays) * 24 * time.Hour
	return time.Since(last) >= interval, nil
}

// Cleanup deletes temporary sessions older than the auto-delete window.
// A session is temporary when tagged "temporary" or "auto-captured" and
// not pinned with "saved". With dryRun set, candidates are reported but
// nothing is deleted and the last-run timestamp is left alone.
func Cleanup(database *sql.DB, cfg *config.Config, dryRun bool) (*CleanupOutput, error) {
	out := &CleanupOutput{Ran: !dryRun}

	records, err := db.List(database, db.ListFilter{Kind: db.KindTablet, Limit: MaxListLimit})
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().AddDate(0, 0, -cfg.AutoDeleteDays)
	for _, rec := range records {
		if !temporarySession(rec.Tags) {
			continue
		}
		created := time.Unix(rec.CreatedAt, 0)
		if !created.Before(cutoff) {
			continue
		}
		out.Candidates = append(out.Candidates, CleanupCandidate{
			ID:      rec.ID,
			Path:    rec.Path,
			Title:   rec.Title,
			AgeDays: int(time.Since(created).Hours() / 24),
			Items:   rec.ItemCount,
		})
	}

	if dryRun {
		return out, nil
	}

	for _, cand := range out.Candidates {
		if err := os.Remove(cand.Path); err != nil && !os.IsNotExist(err) {
			return nil, errors.NewInternal(err)
		}
		if err := db.Delete(database, cand.ID); err != nil {
			return nil, err
		}
		out.Deleted++
	}

	if err := db.SetMeta(database, metaLastCleanup, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return nil, err
	}
	return out, nil
}

func temporarySession(tags []string) bool {
	if slices.Contains(tags, TagSaved) {
		return false
	}
	return slices.Contains(tags, TagTemporary) || slices.Contains(tags, TagAutoCaptured)
}
