// Package capsule implements the AURA context capsule (.auractx) binary
// format: a snapshot of named, typed sections representing a point-in-time
// working state. Capsules stay local and complement the portable tablets
// that hold long-term memories.
//
// Binary layout (all integers big-endian):
//
//	magic          8 bytes  ASCII "AURACTX1"
//	version        uint16   must equal 1
//	created_at     uint64   epoch milliseconds UTC
//	metadata       uint32 length + UTF-8 JSON blob
//	section_count  uint32
//	sections       section_count × (name: uint32 length + UTF-8 bytes,
//	               kind: uint8, payload: uint32 length + raw bytes)
package capsule

import (
	"encoding/json"
	"os"
	"time"
	"unicode/utf8"

	"github.com/hpungsan/aura/internal/errors"
	"github.com/hpungsan/aura/internal/wire"
)

const (
	// Magic identifies a capsule file.
	Magic = "AURACTX1"

	// Version is the only format generation this implementation knows.
	Version uint16 = 1

	// Ext is the conventional file extension.
	Ext = ".auractx"
)

// SectionKind tags how a section payload is meant to be interpreted. The
// payload is always raw bytes on the wire regardless of kind.
type SectionKind uint8

const (
	KindText   SectionKind = 1
	KindJSON   SectionKind = 2
	KindBinary SectionKind = 3
)

// String returns the kind's display name.
func (k SectionKind) String() string {
	switch k {
	case KindText:
		return "TEXT"
	case KindJSON:
		return "JSON"
	case KindBinary:
		return "BINARY"
	default:
		return "UNKNOWN"
	}
}

// valid reports whether k is a known kind byte.
func (k SectionKind) valid() bool {
	return k >= KindText && k <= KindBinary
}

// Section is one named, typed block of a capsule. Names are not required
// unique on the wire; uniqueness is a convenience enforced by SetSection.
type Section struct {
	Name    string
	Kind    SectionKind
	Payload []byte
}

// Text builds a TEXT section from a string.
func Text(name, content string) Section {
	return Section{Name: name, Kind: KindText, Payload: []byte(content)}
}

// JSON builds a JSON section by marshaling v.
func JSON(name string, v any) (Section, error) {
	blob, err := json.Marshal(v)
	if err != nil {
		return Section{}, errors.NewInternal(err)
	}
	return Section{Name: name, Kind: KindJSON, Payload: blob}, nil
}

// Binary builds a BINARY section from raw bytes. The payload is copied.
func Binary(name string, data []byte) Section {
	payload := make([]byte, len(data))
	copy(payload, data)
	return Section{Name: name, Kind: KindBinary, Payload: payload}
}

// AsText interprets the payload as UTF-8 text.
func (s Section) AsText() (string, error) {
	if !utf8.Valid(s.Payload) {
		return "", errors.NewInvalidUTF8("section " + s.Name)
	}
	return string(s.Payload), nil
}

// AsJSON unmarshals the payload into v.
func (s Section) AsJSON(v any) error {
	if err := json.Unmarshal(s.Payload, v); err != nil {
		return errors.Wrap(errors.ErrInvalidRequest, "section "+s.Name+" is not valid JSON", err)
	}
	return nil
}

// Capsule is the in-memory representation of an AURA context capsule.
type Capsule struct {
	Metadata Metadata
	Sections []Section
}

// New creates an empty capsule with the given metadata. A zero CreatedAt
// is set to the current time.
func New(meta Metadata) *Capsule {
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now().UTC()
	}
	return &Capsule{Metadata: meta}
}

// AddSection appends a section without touching existing ones, even if a
// section with the same name already exists.
func (c *Capsule) AddSection(s Section) {
	c.Sections = append(c.Sections, s)
}

// GetSection returns the last section with the given name, or nil. Last
// wins: duplicates are legal on the wire and the most recent write is the
// current value.
func (c *Capsule) GetSection(name string) *Section {
	for i := len(c.Sections) - 1; i >= 0; i-- {
		if c.Sections[i].Name == name {
			return &c.Sections[i]
		}
	}
	return nil
}

// SetSection appends s. With overwrite, all prior sections sharing the name
// are removed first, so name uniqueness is enforced here rather than by the
// wire format.
func (c *Capsule) SetSection(s Section, overwrite bool) {
	if overwrite {
		kept := c.Sections[:0]
		for _, existing := range c.Sections {
			if existing.Name != s.Name {
				kept = append(kept, existing)
			}
		}
		c.Sections = kept
	}
	c.Sections = append(c.Sections, s)
}

// Encode serializes the capsule to its binary form.
func (c *Capsule) Encode() ([]byte, error) {
	createdAt := c.Metadata.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	metaBlob, err := encodeMetadata(c.Metadata)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 0, 64+len(metaBlob))
	buf = append(buf, Magic...)
	buf = wire.AppendUint16(buf, Version)
	buf = wire.AppendUint64(buf, uint64(createdAt.UnixMilli()))
	buf, err = wire.AppendString(buf, metaBlob)
	if err != nil {
		return nil, err
	}

	if uint64(len(c.Sections)) > wire.MaxPayload {
		return nil, errors.Newf(errors.ErrStringTooLarge, "section count %d exceeds the 32-bit limit", len(c.Sections))
	}
	buf = wire.AppendUint32(buf, uint32(len(c.Sections)))

	for _, s := range c.Sections {
		if buf, err = wire.AppendString(buf, s.Name); err != nil {
			return nil, err
		}
		buf = append(buf, byte(s.Kind))
		if buf, err = wire.AppendBytes(buf, s.Payload); err != nil {
			return nil, err
		}
	}

	return buf, nil
}

// Decode parses a complete capsule from buf. All-or-nothing like the
// tablet decoder: BAD_MAGIC and UNSUPPORTED_VERSION gate the header, a
// kind byte outside {1,2,3} is UNKNOWN_SECTION_KIND, and any other body
// failure is CORRUPT_CAPSULE wrapping the primitive cause.
func Decode(buf []byte) (*Capsule, error) {
	if len(buf) < len(Magic) {
		return nil, errors.NewTruncatedInput("capsule magic")
	}
	if string(buf[:len(Magic)]) != Magic {
		return nil, errors.NewBadMagic("capsule")
	}
	cursor := len(Magic)

	version, cursor, err := wire.ReadUint16(buf, cursor, "capsule version")
	if err != nil {
		return nil, corrupt(err)
	}
	if version != Version {
		return nil, errors.NewUnsupportedVersion("capsule", version, Version)
	}

	createdMS, cursor, err := wire.ReadUint64(buf, cursor, "capsule timestamp")
	if err != nil {
		return nil, corrupt(err)
	}

	metaBlob, cursor, err := wire.ReadString(buf, cursor, "capsule metadata")
	if err != nil {
		return nil, corrupt(err)
	}
	meta, err := decodeMetadata(metaBlob)
	if err != nil {
		return nil, err
	}
	meta.CreatedAt = time.UnixMilli(int64(createdMS)).UTC()

	count, cursor, err := wire.ReadUint32(buf, cursor, "capsule section count")
	if err != nil {
		return nil, corrupt(err)
	}

	sections := make([]Section, 0, min(int(count), 4096))
	for i := uint32(0); i < count; i++ {
		var s Section
		if s.Name, cursor, err = wire.ReadString(buf, cursor, "section name"); err != nil {
			return nil, corrupt(err)
		}

		var kind byte
		if kind, cursor, err = wire.ReadByte(buf, cursor, "section kind"); err != nil {
			return nil, corrupt(err)
		}
		s.Kind = SectionKind(kind)
		if !s.Kind.valid() {
			// Always a hard failure: payload interpretation depends on
			// kind, so there is no forward-compatible passthrough.
			return nil, errors.NewUnknownSectionKind(kind)
		}

		if s.Payload, cursor, err = wire.ReadBytes(buf, cursor, "section payload"); err != nil {
			return nil, corrupt(err)
		}
		sections = append(sections, s)
	}

	return &Capsule{Metadata: meta, Sections: sections}, nil
}

func corrupt(err error) error {
	return errors.Wrap(errors.ErrCorruptCapsule, "capsule body failed to decode", err)
}

// Load reads and decodes a capsule file.
func Load(path string) (*Capsule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Save encodes the capsule and overwrites path wholesale.
func (c *Capsule) Save(path string) error {
	data, err := c.Encode()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
