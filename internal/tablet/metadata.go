package tablet

import (
	"encoding/json"
	"time"

	"github.com/hpungsan/aura/internal/errors"
)

// Metadata holds the descriptive fields stored alongside tablet entries.
// It is serialized as a single JSON blob inside the binary file; the blob's
// created_at is informational only, the header's binary timestamp is
// authoritative.
type Metadata struct {
	// Title is a human-readable name for the tablet.
	Title string

	// Summary describes what the tablet captures.
	Summary string

	// Author is the optional author name.
	Author *string

	// CreatedAt is the creation time, truncated to millisecond precision
	// on encode.
	CreatedAt time.Time

	// Tags is an ordered list of labels used by cleanup and listing.
	Tags []string

	// Revision is an optional VCS revision the tablet was captured at.
	Revision *string

	// Extra preserves unrecognized metadata keys verbatim so newer writers
	// can add fields without older readers dropping them.
	Extra map[string]any
}

// metadataKeys are the recognized top-level keys of the JSON blob.
var metadataKeys = map[string]bool{
	"title":      true,
	"summary":    true,
	"author":     true,
	"created_at": true,
	"tags":       true,
	"revision":   true,
	"extra":      true,
}

// encodeMetadata serializes m to a JSON object with deterministic key
// order: identical metadata always produces identical bytes.
func encodeMetadata(m Metadata) (string, error) {
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	extra := m.Extra
	if extra == nil {
		extra = map[string]any{}
	}

	obj := map[string]any{
		"title":      m.Title,
		"summary":    m.Summary,
		"author":     m.Author,
		"created_at": m.CreatedAt.UTC().Format(time.RFC3339Nano),
		"tags":       tags,
		"revision":   m.Revision,
		"extra":      extra,
	}

	blob, err := json.Marshal(obj)
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return string(blob), nil
}

// decodeMetadata parses the JSON blob into a Metadata value. Missing
// optional keys default rather than error; unrecognized keys land in Extra.
func decodeMetadata(blob string) (Metadata, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(blob), &raw); err != nil {
		return Metadata{}, errors.NewMalformedMetadata(err)
	}

	m := Metadata{
		Title:   stringField(raw, "title"),
		Summary: stringField(raw, "summary"),
		Tags:    stringListField(raw, "tags"),
	}
	m.Author = optionalStringField(raw, "author")
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

func stringListField(raw map[string]any, key string) []string {
	list, ok := raw[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
