package ops

import (
	"database/sql"
	"encoding/json"
	"os"

	"github.com/hpungsan/aura/internal/capsule"
	"github.com/hpungsan/aura/internal/config"
	"github.com/hpungsan/aura/internal/db"
	"github.com/hpungsan/aura/internal/errors"
	"github.com/hpungsan/aura/internal/tablet"
)

// ExportJSONOutput is the result of a JSON dump.
type ExportJSONOutput struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
}

// ExportJSON dumps a session file's decoded contents as indented JSON,
// either to outPath or, when outPath is empty, to the session path with
// a .json suffix.
func ExportJSON(database *sql.DB, idOrPath, outPath string) (*ExportJSONOutput, error) {
	view, err := InspectTarget(database, idOrPath)
	if err != nil {
		return nil, err
	}
	if outPath == "" {
		outPath = view.Path + ".json"
	}

	data, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(outPath, data, 0600); err != nil {
		return nil, errors.NewInternal(err)
	}
	return &ExportJSONOutput{Path: outPath, SizeBytes: int64(len(data))}, nil
}

// InspectTarget resolves a catalog ID or path and inspects the file
// behind it. Bare paths that never made it into the catalog still work.
func InspectTarget(database *sql.DB, idOrPath string) (*InspectOutput, error) {
	rec, err := resolveRecord(database, idOrPath)
	if err == nil {
		return Inspect(rec.Path)
	}
	if _, statErr := os.Stat(idOrPath); statErr == nil {
		return Inspect(idOrPath)
	}
	return nil, err
}

// ExportCapsuleInput contains parameters for ExportCapsule.
type ExportCapsuleInput struct {
	Target string // capsule catalog ID or file path
	Dir    string // sessions directory for the new tablet
	Name   string // tablet file stem; defaults like CreateTablet
	Delete bool   // remove the capsule after a successful export
}

// ExportCapsuleOutput contains the result of ExportCapsule.
type ExportCapsuleOutput struct {
	TabletID   string `json:"tablet_id"`
	TabletPath string `json:"tablet_path"`
	Entries    int    `json:"entries"`
	Deleted    bool   `json:"deleted"`
}

// ExportCapsule archives an active capsule into a new tablet: each
// section becomes one entry, with binary payloads noted rather than
// inlined. The tablet carries the capsule's project and summary and is
// tagged so cleanup treats it as long-term memory.
func ExportCapsule(database *sql.DB, cfg *config.Config, input ExportCapsuleInput) (*ExportCapsuleOutput, error) {
	rec, err := resolveRecord(database, input.Target)
	if err != nil {
		return nil, err
	}
	if rec.Kind != db.KindCapsule {
		return nil, errors.NewInvalidRequest("only capsules can be exported to tablets")
	}

	c, err := capsule.Load(rec.Path)
	if err != nil {
		return nil, err
	}

	meta := tablet.Metadata{
		Title:   c.Metadata.Project,
		Summary: c.Metadata.Summary,
		Author:  c.Metadata.Author,
		Tags:    []string{TagSaved, "exported"},
	}
	t := tablet.New(meta)

	for _, s := range c.Sections {
		switch s.Kind {
		case capsule.KindBinary:
			t.AddEntry(s.Name, "", "binary payload, "+FormatSize(int64(len(s.Payload))))
		default:
			t.AddEntry(s.Name, string(s.Payload), "exported from capsule section ("+s.Kind.String()+")")
		}
	}

	path, err := sessionPath(input.Dir, input.Name, tablet.Ext)
	if err != nil {
		return nil, err
	}
	data, err := t.Encode()
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > cfg.MaxTabletBytes {
		return nil, errors.NewFileTooLarge(path, int64(len(data)), cfg.MaxTabletBytes)
	}
	if err := t.Save(path); err != nil {
		return nil, errors.NewInternal(err)
	}

	created, err := registerTablet(database, path, t)
	if err != nil {
		return nil, err
	}

	out := &ExportCapsuleOutput{
		TabletID:   created.ID,
		TabletPath: created.Path,
		Entries:    len(t.Entries),
	}
	if input.Delete {
		if err := os.Remove(rec.Path); err != nil && !os.IsNotExist(err) {
			return nil, errors.NewInternal(err)
		}
		if err := db.Delete(database, rec.ID); err != nil {
			return nil, err
		}
		out.Deleted = true
	}
	return out, nil
}
