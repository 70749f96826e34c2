package capsule

import (
	"encoding/json"
	"time"

	"github.com/hpungsan/aura/internal/errors"
)

// Metadata holds the descriptive fields stored alongside capsule sections.
// As with tablets, the JSON blob's created_at is informational; the binary
// header timestamp wins after decode.
type Metadata struct {
	// Project names the project this capsule snapshots.
	Project string

	// Summary describes the working state captured.
	Summary string

	// Author is the optional author name.
	Author *string

	// CreatedAt is the creation time, truncated to millisecond precision
	// on encode.
	CreatedAt time.Time

	// Branch is the optional VCS branch the snapshot was taken on.
	Branch *string

	// Revision is the optional VCS revision.
	Revision *string

	// Extra preserves unrecognized metadata keys verbatim.
	Extra map[string]any
}

var metadataKeys = map[string]bool{
	"project":    true,
	"summary":    true,
	"author":     true,
	"created_at": true,
	"branch":     true,
	"revision":   true,
	"extra":      true,
}

// encodeMetadata serializes m with deterministic key order so identical
// metadata always produces identical bytes.
func encodeMetadata(m Metadata) (string, error) {
	extra := m.Extra
	if extra == nil {
		extra = map[string]any{}
	}

	obj := map[string]any{
		"project":    m.Project,
		"summary":    m.Summary,
		"author":     m.Author,
		"created_at": m.CreatedAt.UTC().Format(time.RFC3339Nano),
		"branch":     m.Branch,
		"revision":   m.Revision,
		"extra":      extra,
	}

	blob, err := json.Marshal(obj)
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return string(blob), nil
}

// decodeMetadata parses the JSON blob. Missing optionals default rather
// than error; unrecognized keys land in Extra.
func decodeMetadata(blob string) (Metadata, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(blob), &raw); err != nil {
		return Metadata{}, errors.NewMalformedMetadata(err)
	}

	m := Metadata{
		Project: stringField(raw, "project"),
		Summary: stringField(raw, "summary"),
	}
	m.Author = optionalStringField(raw, "author")
	m.Branch = optionalStringField(raw, "branch")
	m.Revision = optionalStringField(raw, "revision")

	if ts, ok := raw["created_at"].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			m.CreatedAt = t.UTC()
		}
	}

	extra := map[string]any{}
	if e, ok := raw["extra"].(map[string]any); ok {
		for k, v := range e {
			extra[k] = v
		}
	}
	for k, v := range raw {
		if !metadataKeys[k] {
			extra[k] = v
		}
	}
	if len(extra) > 0 {
		m.Extra = extra
	}

	return m, nil
}

func stringField(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return s
}

func optionalStringField(raw map[string]any, key string) *string {
	if s, ok := raw[key].(string); ok {
		return &s
	}
	return nil
}
