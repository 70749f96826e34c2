package ops

import (
	"database/sql"

	"github.com/hpungsan/aura/internal/config"
	"github.com/hpungsan/aura/internal/db"
	"github.com/hpungsan/aura/internal/errors"
	"github.com/hpungsan/aura/internal/tablet"
)

// AddEntryInput contains parameters for AddEntry.
type AddEntryInput struct {
	Target string // catalog ID or file path
	Path   string // repository-relative file path
	Diff   string
	Notes  string
}

// AddEntryOutput contains the result of AddEntry.
type AddEntryOutput struct {
	ID         string `json:"id"`
	Path       string `json:"path"`
	EntryCount int    `json:"entry_count"`
	SizeBytes  int64  `json:"size_bytes"`
}

// AddEntry appends a file-change entry to a tablet and rewrites the file
// wholesale. The format layer has no in-place append; persistence is
// always a full re-encode.
func AddEntry(database *sql.DB, cfg *config.Config, input AddEntryInput) (*AddEntryOutput, error) {
	if input.Path == "" {
		return nil, errors.NewInvalidRequest("entry path is required")
	}

	rec, err := resolveRecord(database, input.Target)
	if err != nil {
		return nil, err
	}
	if rec.Kind != db.KindTablet {
		return nil, errors.NewInvalidRequest("entries can only be added to tablets")
	}

	t, err := tablet.Load(rec.Path)
	if err != nil {
		return nil, err
	}

	if len(t.Entries) >= cfg.MaxEntries {
		return nil, errors.Newf(errors.ErrInvalidRequest,
			"tablet already holds %d entries (limit %d); start a new session or export",
			len(t.Entries), cfg.MaxEntries)
	}

	t.AddEntry(input.Path, input.Diff, input.Notes)

	data, err := t.Encode()
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > cfg.MaxTabletBytes {
		return nil, errors.NewFileTooLarge(rec.Path, int64(len(data)), cfg.MaxTabletBytes)
	}
	if err := t.Save(rec.Path); err != nil {
		return nil, errors.NewInternal(err)
	}

	row := catalogTablet(rec.ID, rec.Path, t, int64(len(data)))
	row.CreatedAt = rec.CreatedAt
	if err := db.Upsert(database, row); err != nil {
		return nil, err
	}

	return &AddEntryOutput{
		ID:         rec.ID,
		Path:       rec.Path,
		EntryCount: len(t.Entries),
		SizeBytes:  int64(len(data)),
	}, nil
}
