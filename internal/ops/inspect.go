package ops

import (
	"encoding/hex"
	"os"
	"time"
	"unicode/utf8"

	"github.com/hpungsan/aura/internal/capsule"
	"github.com/hpungsan/aura/internal/db"
	"github.com/hpungsan/aura/internal/errors"
	"github.com/hpungsan/aura/internal/tablet"
)

// InspectOutput is a human-oriented view of a session file.
type InspectOutput struct {
	Path      string         `json:"path"`
	Kind      string         `json:"kind"`
	CreatedAt time.Time      `json:"created_at"`
	Metadata  map[string]any `json:"metadata"`
	Entries   []EntryView    `json:"entries,omitempty"`
	Sections  []SectionView  `json:"sections,omitempty"`
	SizeBytes int64          `json:"size_bytes"`
}

// EntryView is one tablet entry in an inspect report.
type EntryView struct {
	Path  string `json:"path"`
	Diff  string `json:"diff"`
	Notes string `json:"notes"`
}

// SectionView is one capsule section in an inspect report. Binary payloads
// are hex-encoded for display; text and JSON payloads are shown verbatim.
type SectionView struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Payload string `json:"payload"`
}

// Inspect decodes the file at path, dispatching on the leading magic bytes
// so callers need not know the file type up front.
func Inspect(path string) (*InspectOutput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	size := int64(len(data))

	if len(data) >= 8 && string(data[:8]) == tablet.Magic {
		t, err := tablet.Decode(data)
		if err != nil {
			return nil, err
		}
		return inspectTablet(path, t, size), nil
	}

	c, err := capsule.Decode(data)
	if err != nil {
		return nil, err
	}
	return inspectCapsule(path, c, size), nil
}

func inspectTablet(path string, t *tablet.Tablet, size int64) *InspectOutput {
	out := &InspectOutput{
		Path:      path,
		Kind:      db.KindTablet,
		CreatedAt: t.Metadata.CreatedAt,
		SizeBytes: size,
		Metadata: map[string]any{
			"title":   t.Metadata.Title,
			"summary": t.Metadata.Summary,
			"tags":    t.Metadata.Tags,
		},
	}
	if t.Metadata.Author != nil {
		out.Metadata["author"] = *t.Metadata.Author
	}
	if t.Metadata.Revision != nil {
		out.Metadata["revision"] = *t.Metadata.Revision
	}

	out.Entries = make([]EntryView, len(t.Entries))
	for i, e := range t.Entries {
		out.Entries[i] = EntryView(e)
	}
	return out
}

func inspectCapsule(path string, c *capsule.Capsule, size int64) *InspectOutput {
	out := &InspectOutput{
		Path:      path,
		Kind:      db.KindCapsule,
		CreatedAt: c.Metadata.CreatedAt,
		SizeBytes: size,
		Metadata: map[string]any{
			"project": c.Metadata.Project,
			"summary": c.Metadata.Summary,
		},
	}
	if c.Metadata.Author != nil {
		out.Metadata["author"] = *c.Metadata.Author
	}
	if c.Metadata.Branch != nil {
		out.Metadata["branch"] = *c.Metadata.Branch
	}
	if c.Metadata.Revision != nil {
		out.Metadata["revision"] = *c.Metadata.Revision
	}

	out.Sections = make([]SectionView, len(c.Sections))
	for i, s := range c.Sections {
		view := SectionView{Name: s.Name, Kind: s.Kind.String()}
		if s.Kind == capsule.KindBinary || !utf8.Valid(s.Payload) {
			view.Payload = hex.EncodeToString(s.Payload)
		} else {
			view.Payload = string(s.Payload)
		}
		out.Sections[i] = view
	}
	return out
}
