package db

import (
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/hpungsan/aura/internal/errors"
)

// Record kinds stored in the catalog.
const (
	KindTablet  = "tablet"
	KindCapsule = "capsule"
)

// Record is one catalog row describing a session file on disk.
type Record struct {
	ID        string   `json:"id"`
	Path      string   `json:"path"`
	Kind      string   `json:"kind"`
	Title     string   `json:"title"`
	Summary   string   `json:"summary"`
	Tags      []string `json:"tags,omitempty"`
	ItemCount int      `json:"item_count"`
	SizeBytes int64    `json:"size_bytes"`
	CreatedAt int64    `json:"created_at"`
	UpdatedAt int64    `json:"updated_at"`
}

// ListFilter narrows List results. Zero values mean no filtering.
type ListFilter struct {
	Kind   string
	Tag    string
	Limit  int
	Offset int
}

// Upsert inserts the record, or replaces the existing row for the same
// path. Files are keyed by path on disk; IDs stay stable across updates.
func Upsert(db *sql.DB, r *Record) error {
	tagsJSON, err := marshalTags(r.Tags)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO records (
			id, path, kind, title, summary, tags_json,
			item_count, size_bytes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			kind = excluded.kind,
			title = excluded.title,
			summary = excluded.summary,
			tags_json = excluded.tags_json,
			item_count = excluded.item_count,
			size_bytes = excluded.size_bytes,
			updated_at = excluded.updated_at
	`

	_, err = db.Exec(query,
		r.ID, r.Path, r.Kind, r.Title, r.Summary, tagsJSON,
		r.ItemCount, r.SizeBytes, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetByID retrieves a record by its ULID.
func GetByID(db *sql.DB, id string) (*Record, error) {
	row := db.QueryRow(selectColumns+" FROM records WHERE id = ?", id)
	r, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return r, nil
}

// GetByPath retrieves a record by its file path.
func GetByPath(db *sql.DB, path string) (*Record, error) {
	row := db.QueryRow(selectColumns+" FROM records WHERE path = ?", path)
	r, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(path)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return r, nil
}

// List returns catalog records, most recently updated first.
func List(db *sql.DB, filter ListFilter) ([]Record, error) {
	query := selectColumns + " FROM records"
	var conds []string
	var args []any

	if filter.Kind != "" {
		conds = append(conds, "kind = ?")
		args = append(args, filter.Kind)
	}
	if filter.Tag != "" {
		// tags_json is a JSON array of strings; match the quoted element.
		conds = append(conds, "tags_json LIKE ?")
		args = append(args, `%"`+filter.Tag+`"%`)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY updated_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		records = append(records, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return records, nil
}

// Delete removes a record by ID. Deleting a missing record is not an error.
func Delete(db *sql.DB, id string) error {
	if _, err := db.Exec("DELETE FROM records WHERE id = ?", id); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// DeleteByPath removes a record by path.
func DeleteByPath(db *sql.DB, path string) error {
	if _, err := db.Exec("DELETE FROM records WHERE path = ?", path); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// AllPaths returns every indexed file path. Used by rescan to detect
// catalog entries whose files disappeared.
func AllPaths(db *sql.DB) ([]string, error) {
	rows, err := db.Query("SELECT path FROM records")
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, errors.NewInternal(err)
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return paths, nil
}

// GetMeta reads a scheduler state value; returns "" when unset.
func GetMeta(db *sql.DB, key string) (string, error) {
	var value string
	err := db.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return value, nil
}

// SetMeta writes a scheduler state value.
func SetMeta(db *sql.DB, key, value string) error {
	query := `
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`
	if _, err := db.Exec(query, key, value); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

const selectColumns = `
	SELECT id, path, kind, title, summary, tags_json,
		item_count, size_bytes, created_at, updated_at`

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*Record, error) {
	var r Record
	var tagsJSON sql.NullString

	err := s.Scan(
		&r.ID, &r.Path, &r.Kind, &r.Title, &r.Summary, &tagsJSON,
		&r.ItemCount, &r.SizeBytes, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if tagsJSON.Valid && tagsJSON.String != "" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &r.Tags); err != nil {
			return nil, err
		}
	}
	return &r, nil
}

func marshalTags(tags []string) (sql.NullString, error) {
	if len(tags) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return sql.NullString{}, errors.NewInternal(err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
