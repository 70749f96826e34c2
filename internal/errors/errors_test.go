package errors

import (
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	err := NewInvalidRequest("missing path")
	want := "INVALID_REQUEST: missing path"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestErrorStringWithCause(t *testing.T) {
	cause := NewTruncatedInput("entry path")
	err := Wrap(ErrCorruptTablet, "tablet body failed to decode", cause)

	got := err.Error()
	if got != "CORRUPT_TABLET: tablet body failed to decode: TRUNCATED_INPUT: unexpected end of input while reading entry path" {
		t.Errorf("unexpected Error(): %q", got)
	}
}

func TestIsMatchesOuterCode(t *testing.T) {
	err := NewBadMagic("tablet")
	if !Is(err, ErrBadMagic) {
		t.Error("Is should match the outer code")
	}
	if Is(err, ErrUnsupportedVersion) {
		t.Error("Is should not match a different code")
	}
}

func TestIsWalksWrapChain(t *testing.T) {
	cause := NewTruncatedInput("section payload")
	err := Wrap(ErrCorruptCapsule, "capsule body failed to decode", cause)

	if !Is(err, ErrCorruptCapsule) {
		t.Error("Is should match the wrapping code")
	}
	if !Is(err, ErrTruncatedInput) {
		t.Error("Is should match the wrapped cause's code")
	}
	if Is(err, ErrInvalidUTF8) {
		t.Error("Is should not match an absent code")
	}
}

func TestIsNonAuraError(t *testing.T) {
	if Is(fmt.Errorf("plain"), ErrInternal) {
		t.Error("plain errors should not match any code")
	}
	if Is(nil, ErrInternal) {
		t.Error("nil should not match any code")
	}
}

func TestCode(t *testing.T) {
	if got := Code(NewNotFound("x")); got != ErrNotFound {
		t.Errorf("Code = %q, want %q", got, ErrNotFound)
	}
	if got := Code(fmt.Errorf("wrapped: %w", NewInvalidUTF8("name"))); got != ErrInvalidUTF8 {
		t.Errorf("Code = %q, want %q", got, ErrInvalidUTF8)
	}
	if got := Code(fmt.Errorf("plain")); got != ErrInternal {
		t.Errorf("Code = %q, want %q", got, ErrInternal)
	}
}

func TestUnsupportedVersionDetails(t *testing.T) {
	err := NewUnsupportedVersion("capsule", 7, 1)
	if err.Details["version"] != uint16(7) {
		t.Errorf("Details[version] = %v, want 7", err.Details["version"])
	}
	if err.Details["supported"] != uint16(1) {
		t.Errorf("Details[supported] = %v, want 1", err.Details["supported"])
	}
}
