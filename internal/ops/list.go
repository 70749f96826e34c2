package ops

import (
	"database/sql"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hpungsan/aura/internal/capsule"
	"github.com/hpungsan/aura/internal/db"
	"github.com/hpungsan/aura/internal/errors"
	"github.com/hpungsan/aura/internal/tablet"
)

// ListInput contains filters for List.
type ListInput struct {
	Kind   string // "tablet", "capsule", or "" for both
	Tag    string
	Limit  int
	Offset int
}

// ListOutput contains the catalog records matching the filter.
type ListOutput struct {
	Records []db.Record `json:"records"`
	Count   int         `json:"count"`
}

// List returns catalog records ordered newest-first.
func List(database *sql.DB, input ListInput) (*ListOutput, error) {
	if input.Kind != "" && input.Kind != db.KindTablet && input.Kind != db.KindCapsule {
		return nil, errors.NewInvalidRequest("kind must be tablet or capsule")
	}
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	records, err := db.List(database, db.ListFilter{
		Kind:   input.Kind,
		Tag:    input.Tag,
		Limit:  limit,
		Offset: input.Offset,
	})
	if err != nil {
		return nil, err
	}
	return &ListOutput{Records: records, Count: len(records)}, nil
}

// RescanOutput reports what a catalog rescan changed.
type RescanOutput struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Removed int `json:"removed"`
}

// Rescan walks the sessions directory and reconciles the catalog with
// what is actually on disk: files missing from the catalog are added,
// stale rows whose files are gone are removed, and rows whose file size
// changed are refreshed. Files that fail to decode are skipped.
func Rescan(database *sql.DB, dir string) (*RescanOutput, error) {
	out := &RescanOutput{}

	known, err := db.AllPaths(database)
	if err != nil {
		return nil, err
	}
	knownSet := make(map[string]bool, len(known))
	for _, p := range known {
		knownSet[p] = true
	}

	seen := make(map[string]bool)
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != tablet.Ext && ext != capsule.Ext {
			return nil
		}
		seen[path] = true

		rec, err := db.GetByPath(database, path)
		switch {
		case err == nil:
			size, serr := fileSize(path)
			if serr != nil {
				return nil
			}
			if size == rec.SizeBytes {
				return nil
			}
			if rerr := refreshRecord(database, rec); rerr == nil {
				out.Updated++
			}
			return nil
		case errors.Is(err, errors.ErrNotFound):
			if aerr := adoptFile(database, path); aerr == nil {
				out.Added++
			}
			return nil
		default:
			return err
		}
	})
	if walkErr != nil {
		if os.IsNotExist(walkErr) {
			return out, nil
		}
		return nil, errors.NewInternal(walkErr)
	}

	for _, p := range known {
		if !seen[p] {
			if err := db.DeleteByPath(database, p); err == nil {
				out.Removed++
			}
		}
	}
	return out, nil
}

// adoptFile registers an on-disk session file that has no catalog row.
func adoptFile(database *sql.DB, path string) error {
	kind, err := PeekKind(path)
	if err != nil {
		return err
	}
	size, err := fileSize(path)
	if err != nil {
		return err
	}
	id, err := generateULID()
	if err != nil {
		return errors.NewInternal(err)
	}

	switch kind {
	case db.KindTablet:
		t, err := tablet.Load(path)
		if err != nil {
			return err
		}
		return db.Upsert(database, catalogTablet(id, path, t, size))
	default:
		c, err := capsule.Load(path)
		if err != nil {
			return err
		}
		return db.Upsert(database, catalogCapsule(id, path, c, size))
	}
}

// refreshRecord re-reads the file behind an existing row and rewrites
// the row, keeping the ID and created_at stable.
func refreshRecord(database *sql.DB, rec *db.Record) error {
	size, err := fileSize(rec.Path)
	if err != nil {
		return err
	}
	var row *db.Record
	switch rec.Kind {
	case db.KindTablet:
		t, err := tablet.Load(rec.Path)
		if err != nil {
			return err
		}
		row = catalogTablet(rec.ID, rec.Path, t, size)
	default:
		c, err := capsule.Load(rec.Path)
		if err != nil {
			return err
		}
		row = catalogCapsule(rec.ID, rec.Path, c, size)
	}
	row.CreatedAt = rec.CreatedAt
	return db.Upsert(database, row)
}

// Delete removes a session file and its catalog row.
func Delete(database *sql.DB, idOrPath string) error {
	rec, err := resolveRecord(database, idOrPath)
	if err != nil {
		return err
	}
	if err := os.Remove(rec.Path); err != nil && !os.IsNotExist(err) {
		return errors.NewInternal(err)
	}
	return db.Delete(database, rec.ID)
}
