// Package ops implements the operations the CLI, MCP server, and web
// viewer share: creating and mutating session files, cataloging them,
// health checks, cleanup, and the deduplicated memory digest.
//
// The format layer stays pure; all file and catalog I/O lives here.
package ops

import (
	"crypto/rand"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/aura/internal/capsule"
	"github.com/hpungsan/aura/internal/db"
	"github.com/hpungsan/aura/internal/errors"
	"github.com/hpungsan/aura/internal/tablet"
)

// Default pagination limits.
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// generateULID generates a new ULID for a catalog record.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// PeekKind reports whether the file at path is a tablet or a capsule by
// reading its first 8 bytes. The magic is the dispatch key when the file
// type is not known up front.
func PeekKind(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.NewInternal(err)
	}
	defer f.Close()

	magic := make([]byte, 8)
	n, err := f.Read(magic)
	if err != nil || n < 8 {
		return "", errors.NewTruncatedInput("file magic")
	}

	switch string(magic) {
	case tablet.Magic:
		return db.KindTablet, nil
	case capsule.Magic:
		return db.KindCapsule, nil
	default:
		return "", errors.NewBadMagic("aura")
	}
}

// catalogTablet builds the catalog row for a tablet file.
func catalogTablet(id, path string, t *tablet.Tablet, size int64) *db.Record {
	now := time.Now().Unix()
	return &db.Record{
		ID:        id,
		Path:      path,
		Kind:      db.KindTablet,
		Title:     t.Metadata.Title,
		Summary:   t.Metadata.Summary,
		Tags:      t.Metadata.Tags,
		ItemCount: len(t.Entries),
		SizeBytes: size,
		CreatedAt: t.Metadata.CreatedAt.Unix(),
		UpdatedAt: now,
	}
}

// catalogCapsule builds the catalog row for a capsule file.
func catalogCapsule(id, path string, c *capsule.Capsule, size int64) *db.Record {
	now := time.Now().Unix()
	return &db.Record{
		ID:        id,
		Path:      path,
		Kind:      db.KindCapsule,
		Title:     c.Metadata.Project,
		Summary:   c.Metadata.Summary,
		ItemCount: len(c.Sections),
		SizeBytes: size,
		CreatedAt: c.Metadata.CreatedAt.Unix(),
		UpdatedAt: now,
	}
}

// resolveRecord finds a catalog record by ID or path.
func resolveRecord(database *sql.DB, idOrPath string) (*db.Record, error) {
	if idOrPath == "" {
		return nil, errors.NewInvalidRequest("must specify an id or path")
	}
	if r, err := db.GetByID(database, idOrPath); err == nil {
		return r, nil
	}
	abs, err := filepath.Abs(idOrPath)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return db.GetByPath(database, abs)
}

// fileSize returns the size of path in bytes.
func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return info.Size(), nil
}
