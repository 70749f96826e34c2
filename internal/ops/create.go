package ops

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hpungsan/aura/internal/capsule"
	"github.com/hpungsan/aura/internal/config"
	"github.com/hpungsan/aura/internal/db"
	"github.com/hpungsan/aura/internal/errors"
	"github.com/hpungsan/aura/internal/tablet"
)

// CreateTabletInput contains parameters for CreateTablet.
type CreateTabletInput struct {
	Dir     string // sessions directory
	Name    string // file stem; defaults to a date-based name
	Title   string
	Summary string
	Author  string
	Tags    []string
}

// CreateCapsuleInput contains parameters for CreateCapsule.
type CreateCapsuleInput struct {
	Dir       string
	Name      string
	Project   string
	Summary   string
	Author    string
	Branch    string
	Objective string // optional initial task objective
}

// CreateOutput is returned by both create operations.
type CreateOutput struct {
	ID   string `json:"id"`
	Path string `json:"path"`
	Kind string `json:"kind"`
}

// CreateTablet writes a new empty tablet file and registers it in the
// catalog.
func CreateTablet(database *sql.DB, cfg *config.Config, input CreateTabletInput) (*CreateOutput, error) {
	if input.Title == "" {
		return nil, errors.NewInvalidRequest("title is required")
	}

	meta := tablet.Metadata{
		Title:   input.Title,
		Summary: input.Summary,
		Tags:    input.Tags,
	}
	if input.Author != "" {
		meta.Author = &input.Author
	}

	t := tablet.New(meta)

	path, err := sessionPath(input.Dir, input.Name, tablet.Ext)
	if err != nil {
		return nil, err
	}
	if err := t.Save(path); err != nil {
		return nil, errors.NewInternal(err)
	}

	return registerTablet(database, path, t)
}

// CreateCapsule writes a new capsule file and registers it in the catalog.
func CreateCapsule(database *sql.DB, cfg *config.Config, input CreateCapsuleInput) (*CreateOutput, error) {
	if input.Project == "" {
		return nil, errors.NewInvalidRequest("project is required")
	}

	meta := capsule.Metadata{
		Project: input.Project,
		Summary: input.Summary,
	}
	if input.Author != "" {
		meta.Author = &input.Author
	}
	if input.Branch != "" {
		meta.Branch = &input.Branch
	}

	c := capsule.New(meta)
	if input.Objective != "" {
		c.SetTaskObjective(input.Objective)
	}

	path, err := sessionPath(input.Dir, input.Name, capsule.Ext)
	if err != nil {
		return nil, err
	}
	if err := c.Save(path); err != nil {
		return nil, errors.NewInternal(err)
	}

	return registerCapsule(database, path, c)
}

// sessionPath builds the destination path for a new session file and
// ensures the directory exists. An empty name gets a date-based stem.
func sessionPath(dir, name, ext string) (string, error) {
	if dir == "" {
		return "", errors.NewInvalidRequest("sessions directory is required")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", errors.NewInternal(err)
	}

	if name == "" {
		name = "session_" + time.Now().Format("20060102_150405")
	}
	name = strings.TrimSuffix(name, ext)
	if strings.ContainsAny(name, `/\`) {
		return "", errors.NewInvalidRequest("name must not contain path separators")
	}

	path := filepath.Join(dir, name+ext)
	if _, err := os.Stat(path); err == nil {
		return "", errors.NewInvalidRequest("session file already exists: " + path)
	}
	return path, nil
}

func registerTablet(database *sql.DB, path string, t *tablet.Tablet) (*CreateOutput, error) {
	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	size, err := fileSize(path)
	if err != nil {
		return nil, err
	}
	if err := db.Upsert(database, catalogTablet(id, path, t, size)); err != nil {
		return nil, err
	}
	return &CreateOutput{ID: id, Path: path, Kind: db.KindTablet}, nil
}

func registerCapsule(database *sql.DB, path string, c *capsule.Capsule) (*CreateOutput, error) {
	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	size, err := fileSize(path)
	if err != nil {
		return nil, err
	}
	if err := db.Upsert(database, catalogCapsule(id, path, c, size)); err != nil {
		return nil, err
	}
	return &CreateOutput{ID: id, Path: path, Kind: db.KindCapsule}, nil
}
