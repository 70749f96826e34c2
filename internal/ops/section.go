package ops

import (
	"database/sql"
	"encoding/json"

	"github.com/hpungsan/aura/internal/capsule"
	"github.com/hpungsan/aura/internal/config"
	"github.com/hpungsan/aura/internal/db"
	"github.com/hpungsan/aura/internal/errors"
)

// SetSectionInput contains parameters for SetSection.
type SetSectionInput struct {
	Target  string // catalog ID or file path
	Name    string
	Kind    string // "text" | "json" | "binary"
	Content string // text content, JSON document, or hex-free raw bytes
	Append  bool   // keep existing sections with the same name
}

// SetSectionOutput contains the result of SetSection.
type SetSectionOutput struct {
	ID           string `json:"id"`
	Path         string `json:"path"`
	SectionCount int    `json:"section_count"`
	SizeBytes    int64  `json:"size_bytes"`
}

// SetSection writes a typed section into a capsule and rewrites the file.
// Unless Append is set, existing sections with the same name are replaced,
// keeping "last write wins" at the in-memory layer.
func SetSection(database *sql.DB, cfg *config.Config, input SetSectionInput) (*SetSectionOutput, error) {
	if input.Name == "" {
		return nil, errors.NewInvalidRequest("section name is required")
	}

	rec, err := resolveRecord(database, input.Target)
	if err != nil {
		return nil, err
	}
	if rec.Kind != db.KindCapsule {
		return nil, errors.NewInvalidRequest("sections can only be set on capsules")
	}

	c, err := capsule.Load(rec.Path)
	if err != nil {
		return nil, err
	}

	section, err := buildSection(input)
	if err != nil {
		return nil, err
	}
	c.SetSection(section, !input.Append)

	data, err := c.Encode()
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > cfg.MaxCapsuleBytes {
		return nil, errors.NewFileTooLarge(rec.Path, int64(len(data)), cfg.MaxCapsuleBytes)
	}
	if err := c.Save(rec.Path); err != nil {
		return nil, errors.NewInternal(err)
	}

	row := catalogCapsule(rec.ID, rec.Path, c, int64(len(data)))
	row.CreatedAt = rec.CreatedAt
	if err := db.Upsert(database, row); err != nil {
		return nil, err
	}

	return &SetSectionOutput{
		ID:           rec.ID,
		Path:         rec.Path,
		SectionCount: len(c.Sections),
		SizeBytes:    int64(len(data)),
	}, nil
}

// buildSection validates the kind and constructs the section.
func buildSection(input SetSectionInput) (capsule.Section, error) {
	switch input.Kind {
	case "", "text":
		return capsule.Text(input.Name, input.Content), nil
	case "json":
		var v any
		if err := json.Unmarshal([]byte(input.Content), &v); err != nil {
			return capsule.Section{}, errors.NewInvalidRequest("content is not valid JSON: " + err.Error())
		}
		return capsule.Section{Name: input.Name, Kind: capsule.KindJSON, Payload: []byte(input.Content)}, nil
	case "binary":
		return capsule.Binary(input.Name, []byte(input.Content)), nil
	default:
		return capsule.Section{}, errors.NewInvalidRequest("kind must be one of: text, json, binary")
	}
}
