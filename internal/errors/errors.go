package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents an Aura error code.
type ErrorCode string

// Codec error codes. These cover every failure the binary format layer can
// surface; collaborator codes follow below.
const (
	ErrBadMagic           ErrorCode = "BAD_MAGIC"            // wrong file type
	ErrUnsupportedVersion ErrorCode = "UNSUPPORTED_VERSION"  // right format, unknown generation
	ErrTruncatedInput     ErrorCode = "TRUNCATED_INPUT"      // field claims more bytes than remain
	ErrInvalidUTF8        ErrorCode = "INVALID_UTF8"         // string payload is not valid UTF-8
	ErrMalformedMetadata  ErrorCode = "MALFORMED_METADATA"   // metadata blob is not valid JSON
	ErrUnknownSectionKind ErrorCode = "UNKNOWN_SECTION_KIND" // capsule section kind byte out of range
	ErrStringTooLarge     ErrorCode = "STRING_TOO_LARGE"     // payload exceeds the 32-bit length prefix
	ErrCorruptTablet      ErrorCode = "CORRUPT_TABLET"       // tablet body failed to decode
	ErrCorruptCapsule     ErrorCode = "CORRUPT_CAPSULE"      // capsule body failed to decode
)

// Collaborator error codes used by ops, CLI, MCP, and web layers.
const (
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrFileTooLarge   ErrorCode = "FILE_TOO_LARGE"
	ErrInternal       ErrorCode = "INTERNAL"
)

// AuraError represents a structured error with a code, message, optional
// details, and an optional wrapped cause.
type AuraError struct {
	Code    ErrorCode
	Message string
	Details map[string]any
	Err     error
}

// Error implements the error interface.
func (e *AuraError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *AuraError) Unwrap() error {
	return e.Err
}

// New creates an AuraError with the given code and message.
func New(code ErrorCode, msg string) *AuraError {
	return &AuraError{Code: code, Message: msg}
}

// Newf creates an AuraError with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *AuraError {
	return &AuraError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an AuraError that carries err as its cause.
func Wrap(code ErrorCode, msg string, err error) *AuraError {
	return &AuraError{Code: code, Message: msg, Err: err}
}

// NewBadMagic reports a magic mismatch for the named format.
func NewBadMagic(format string) *AuraError {
	return &AuraError{
		Code:    ErrBadMagic,
		Message: fmt.Sprintf("not a %s file: magic bytes do not match", format),
		Details: map[string]any{"format": format},
	}
}

// NewUnsupportedVersion reports an unknown format version.
func NewUnsupportedVersion(format string, got, want uint16) *AuraError {
	return &AuraError{
		Code:    ErrUnsupportedVersion,
		Message: fmt.Sprintf("unsupported %s version %d (supported: %d)", format, got, want),
		Details: map[string]any{"format": format, "version": got, "supported": want},
	}
}

// NewTruncatedInput reports a read that would run past the end of the buffer.
func NewTruncatedInput(what string) *AuraError {
	return &AuraError{
		Code:    ErrTruncatedInput,
		Message: fmt.Sprintf("unexpected end of input while reading %s", what),
	}
}

// NewInvalidUTF8 reports a string payload that is not valid UTF-8.
func NewInvalidUTF8(what string) *AuraError {
	return &AuraError{
		Code:    ErrInvalidUTF8,
		Message: fmt.Sprintf("%s is not valid UTF-8", what),
	}
}

// NewMalformedMetadata reports an unparseable metadata blob.
func NewMalformedMetadata(err error) *AuraError {
	return &AuraError{
		Code:    ErrMalformedMetadata,
		Message: "metadata blob is not valid JSON",
		Err:     err,
	}
}

// NewUnknownSectionKind reports a capsule section kind byte outside the
// known enumeration.
func NewUnknownSectionKind(kind byte) *AuraError {
	return &AuraError{
		Code:    ErrUnknownSectionKind,
		Message: fmt.Sprintf("unknown section kind %d", kind),
		Details: map[string]any{"kind": kind},
	}
}

// NewStringTooLarge reports a payload exceeding the 32-bit length prefix.
func NewStringTooLarge(size int) *AuraError {
	return &AuraError{
		Code:    ErrStringTooLarge,
		Message: fmt.Sprintf("payload of %d bytes exceeds the 4 GiB length-prefix limit", size),
		Details: map[string]any{"size": size},
	}
}

// NewNotFound creates a not-found error for a session record.
func NewNotFound(identifier string) *AuraError {
	return &AuraError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("session not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewInvalidRequest creates an error for invalid request parameters.
func NewInvalidRequest(msg string) *AuraError {
	return &AuraError{
		Code:    ErrInvalidRequest,
		Message: msg,
	}
}

// NewFileTooLarge reports a session file exceeding its configured limit.
func NewFileTooLarge(path string, size, limit int64) *AuraError {
	return &AuraError{
		Code:    ErrFileTooLarge,
		Message: fmt.Sprintf("%s is %d bytes (limit %d)", path, size, limit),
		Details: map[string]any{"path": path, "size": size, "limit": limit},
	}
}

// NewInternal creates an error for unexpected internal failures.
func NewInternal(err error) *AuraError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &AuraError{
		Code:    ErrInternal,
		Message: msg,
		Err:     err,
	}
}

// Is reports whether any error in err's chain is an AuraError with the
// given code. Decode errors wrap their cause, so a CORRUPT_TABLET error
// produced by a short read also matches TRUNCATED_INPUT.
func Is(err error, code ErrorCode) bool {
	for err != nil {
		if aErr, ok := err.(*AuraError); ok && aErr.Code == code {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// Code returns the outermost AuraError code in err's chain, or ErrInternal
// if none is present.
func Code(err error) ErrorCode {
	for err != nil {
		if aErr, ok := err.(*AuraError); ok {
			return aErr.Code
		}
		err = stderrors.Unwrap(err)
	}
	return ErrInternal
}
