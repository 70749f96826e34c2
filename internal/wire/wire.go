// Package wire implements the primitive binary codec shared by the tablet
// and capsule formats: fixed-width big-endian integers and length-prefixed
// strings and byte sequences.
//
// All functions are pure transformations over byte buffers. Readers take a
// cursor and return the advanced cursor, so callers thread position through
// a sequence of reads without slicing the buffer.
package wire

import (
	"encoding/binary"
	"math"
	"unicode/utf8"

	"github.com/hpungsan/aura/internal/errors"
)

// MaxPayload is the largest payload a 4-byte length prefix can describe.
const MaxPayload = math.MaxUint32

// AppendUint16 appends v in big-endian order.
func AppendUint16(buf []byte, v uint16) []byte {
	return binary.BigEndian.AppendUint16(buf, v)
}

// AppendUint32 appends v in big-endian order.
func AppendUint32(buf []byte, v uint32) []byte {
	return binary.BigEndian.AppendUint32(buf, v)
}

// AppendUint64 appends v in big-endian order.
func AppendUint64(buf []byte, v uint64) []byte {
	return binary.BigEndian.AppendUint64(buf, v)
}

// ReadUint16 reads a big-endian uint16 at cursor.
func ReadUint16(buf []byte, cursor int, what string) (uint16, int, error) {
	if cursor+2 > len(buf) {
		return 0, cursor, errors.NewTruncatedInput(what)
	}
	return binary.BigEndian.Uint16(buf[cursor:]), cursor + 2, nil
}

// ReadUint32 reads a big-endian uint32 at cursor.
func ReadUint32(buf []byte, cursor int, what string) (uint32, int, error) {
	if cursor+4 > len(buf) {
		return 0, cursor, errors.NewTruncatedInput(what)
	}
	return binary.BigEndian.Uint32(buf[cursor:]), cursor + 4, nil
}

// ReadUint64 reads a big-endian uint64 at cursor.
func ReadUint64(buf []byte, cursor int, what string) (uint64, int, error) {
	if cursor+8 > len(buf) {
		return 0, cursor, errors.NewTruncatedInput(what)
	}
	return binary.BigEndian.Uint64(buf[cursor:]), cursor + 8, nil
}

// ReadByte reads a single byte at cursor.
func ReadByte(buf []byte, cursor int, what string) (byte, int, error) {
	if cursor >= len(buf) {
		return 0, cursor, errors.NewTruncatedInput(what)
	}
	return buf[cursor], cursor + 1, nil
}

// AppendString appends s as a 4-byte big-endian length prefix followed by
// its UTF-8 bytes. Zero-length strings are allowed.
func AppendString(buf []byte, s string) ([]byte, error) {
	if uint64(len(s)) > MaxPayload {
		return nil, errors.NewStringTooLarge(len(s))
	}
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(s)))
	return append(buf, s...), nil
}

// ReadString reads a length-prefixed UTF-8 string at cursor. The payload
// must be valid UTF-8; the bytes are preserved exactly, with no
// normalization or transcoding.
func ReadString(buf []byte, cursor int, what string) (string, int, error) {
	data, cursor, err := ReadBytes(buf, cursor, what)
	if err != nil {
		return "", cursor, err
	}
	if !utf8.Valid(data) {
		return "", cursor, errors.NewInvalidUTF8(what)
	}
	return string(data), cursor, nil
}

// AppendBytes appends data as a 4-byte big-endian length prefix followed by
// the raw bytes.
func AppendBytes(buf []byte, data []byte) ([]byte, error) {
	if uint64(len(data)) > MaxPayload {
		return nil, errors.NewStringTooLarge(len(data))
	}
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(data)))
	return append(buf, data...), nil
}

// ReadBytes reads a length-prefixed byte sequence at cursor. The returned
// slice is a copy, independent of buf.
func ReadBytes(buf []byte, cursor int, what string) ([]byte, int, error) {
	length, cursor, err := ReadUint32(buf, cursor, what+" length")
	if err != nil {
		return nil, cursor, err
	}
	end := cursor + int(length)
	if end < cursor || end > len(buf) {
		return nil, cursor, errors.NewTruncatedInput(what)
	}
	out := make([]byte, length)
	copy(out, buf[cursor:end])
	return out, end, nil
}
