// Package tablet implements the AURA tablet (.auratab) binary format: an
// append-only record of file-change entries used as portable long-term
// session memory.
//
// Binary layout (all integers big-endian):
//
//	magic        8 bytes  ASCII "AURATAB1"
//	version      uint16   must equal 1
//	created_at   uint64   epoch milliseconds UTC
//	metadata     uint32 length + UTF-8 JSON blob
//	entry_count  uint32
//	entries      entry_count × (path, diff, notes), each a
//	             uint32 length + UTF-8 bytes
//
// Encode and Decode are pure in-memory transformations; reading and writing
// file bytes is the caller's job (see Load and Save for the thin wrappers).
package tablet

import (
	"os"
	"time"

	"github.com/hpungsan/aura/internal/errors"
	"github.com/hpungsan/aura/internal/wire"
)

const (
	// Magic identifies a tablet file.
	Magic = "AURATAB1"

	// Version is the only format generation this implementation knows.
	Version uint16 = 1

	// Ext is the conventional file extension.
	Ext = ".auratab"
)

// Entry is a single file contribution captured by the tablet.
type Entry struct {
	Path  string `json:"path"`
	Diff  string `json:"diff"`
	Notes string `json:"notes"`
}

// Tablet is the in-memory representation of an AURA tablet. Entries are
// append-only; persisting a change means re-encoding and rewriting the
// whole file.
type Tablet struct {
	Metadata Metadata
	Entries  []Entry
}

// New creates an empty tablet with the given metadata. A zero CreatedAt is
// set to the current time.
func New(meta Metadata) *Tablet {
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now().UTC()
	}
	return &Tablet{Metadata: meta}
}

// AddEntry appends an entry in O(1). Order is append order.
func (t *Tablet) AddEntry(path, diff, notes string) {
	t.Entries = append(t.Entries, Entry{Path: path, Diff: diff, Notes: notes})
}

// Encode serializes the tablet to its binary form. The only failure modes
// are the 32-bit length-prefix guards on oversized strings.
func (t *Tablet) Encode() ([]byte, error) {
	createdAt := t.Metadata.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	metaBlob, err := encodeMetadata(t.Metadata)
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

	if uint64(len(t.Entries)) > wire.MaxPayload {
		return nil, errors.Newf(errors.ErrStringTooLarge, "entry count %d exceeds the 32-bit limit", len(t.Entries))
	}
	buf = wire.AppendUint32(buf, uint32(len(t.Entries)))

	for _, e := range t.Entries {
		if buf, err = wire.AppendString(buf, e.Path); err != nil {
			return nil, err
		}
		if buf, err = wire.AppendString(buf, e.Diff); err != nil {
			return nil, err
		}
		if buf, err = wire.AppendString(buf, e.Notes); err != nil {
			return nil, err
		}
	}

	return buf, nil
}

// Decode parses a complete tablet from buf. Decode is all-or-nothing: any
// truncation or malformed field fails the whole call and no partial tablet
// is ever returned. A magic mismatch is BAD_MAGIC; a matched magic with an
// unknown version is UNSUPPORTED_VERSION, so callers can tell "not a
// tablet" from "tablet format evolved". Body failures are CORRUPT_TABLET
// wrapping the primitive cause.
func Decode(buf []byte) (*Tablet, error) {
	if len(buf) < len(Magic) {
		return nil, errors.NewTruncatedInput("tablet magic")
	}
	if string(buf[:len(Magic)]) != Magic {
		return nil, errors.NewBadMagic("tablet")
	}
	cursor := len(Magic)

	version, cursor, err := wire.ReadUint16(buf, cursor, "tablet version")
	if err != nil {
		return nil, corrupt(err)
	}
	if version != Version {
		return nil, errors.NewUnsupportedVersion("tablet", version, Version)
	}

	createdMS, cursor, err := wire.ReadUint64(buf, cursor, "tablet timestamp")
	if err != nil {
		return nil, corrupt(err)
	}

	metaBlob, cursor, err := wire.ReadString(buf, cursor, "tablet metadata")
	if err != nil {
		return nil, corrupt(err)
	}
	meta, err := decodeMetadata(metaBlob)
	if err != nil {
		return nil, err
	}
	// The header timestamp is authoritative; whatever the JSON blob claims
	// is overridden here.
	meta.CreatedAt = time.UnixMilli(int64(createdMS)).UTC()

	count, cursor, err := wire.ReadUint32(buf, cursor, "tablet entry count")
	if err != nil {
		return nil, corrupt(err)
	}

	// Cap the preallocation: a corrupt count must not drive a huge alloc
	// before the truncation check catches it.
	entries := make([]Entry, 0, min(int(count), 4096))
	for i := uint32(0); i < count; i++ {
		var e Entry
		if e.Path, cursor, err = wire.ReadString(buf, cursor, "entry path"); err != nil {
			return nil, corrupt(err)
		}
		if e.Diff, cursor, err = wire.ReadString(buf, cursor, "entry diff"); err != nil {
			return nil, corrupt(err)
		}
		if e.Notes, cursor, err = wire.ReadString(buf, cursor, "entry notes"); err != nil {
			return nil, corrupt(err)
		}
		entries = append(entries, e)
	}

	return &Tablet{Metadata: meta, Entries: entries}, nil
}

// corrupt wraps a primitive-codec failure so callers see CORRUPT_TABLET
// while errors.Is still matches the underlying cause.
func corrupt(err error) error {
	return errors.Wrap(errors.ErrCorruptTablet, "tablet body failed to decode", err)
}

// Load reads and decodes a tablet file.
func Load(path string) (*Tablet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Save encodes the tablet and overwrites path wholesale.
func (t *Tablet) Save(path string) error {
	data, err := t.Encode()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
