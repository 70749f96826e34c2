package ops

import (
	"testing"

	"github.com/hpungsan/aura/internal/errors"
)

func TestSetSection(t *testing.T) {
	database, cfg, dir := testEnv(t)

	created, err := CreateCapsule(database, cfg, CreateCapsuleInput{
		Dir: dir, Project: "aura",
	})
	if err != nil {
		t.Fatalf("CreateCapsule failed: %v", err)
	}

	out, err := SetSection(database, cfg, SetSectionInput{
		Target:  created.ID,
		Name:    "working_plan",
		Content: "1. decode header\n2. decode body",
	})
	if err != nil {
		t.Fatalf("SetSection failed: %v", err)
	}
	if out.SectionCount != 1 {
		t.Errorf("SectionCount = %d, want 1", out.SectionCount)
	}

	// Same name replaces by default.
	out, err = SetSection(database, cfg, SetSectionInput{
		Target:  created.ID,
		Name:    "working_plan",
		Content: "revised plan",
	})
	if err != nil {
		t.Fatalf("SetSection replace failed: %v", err)
	}
	if out.SectionCount != 1 {
		t.Errorf("SectionCount after replace = %d, want 1", out.SectionCount)
	}

	view, err := Inspect(created.Path)
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if view.Sections[0].Payload != "revised plan" {
		t.Errorf("Payload = %q", view.Sections[0].Payload)
	}
}

func TestSetSection_JSONKind(t *testing.T) {
	database, cfg, dir := testEnv(t)

	created, err := CreateCapsule(database, cfg, CreateCapsuleInput{
		Dir: dir, Project: "aura",
	})
	if err != nil {
		t.Fatalf("CreateCapsule failed: %v", err)
	}

	_, err = SetSection(database, cfg, SetSectionInput{
		Target:  created.ID,
		Name:    "relevant_files",
		Kind:    "json",
		Content: `["a.go","b.go"]`,
	})
	if err != nil {
		t.Fatalf("SetSection json failed: %v", err)
	}

	_, err = SetSection(database, cfg, SetSectionInput{
		Target:  created.ID,
		Name:    "relevant_files",
		Kind:    "json",
		Content: "not json",
	})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Fatalf("error = %v, want INVALID_REQUEST", err)
	}
}

func TestSetSection_InvalidKind(t *testing.T) {
	database, cfg, dir := testEnv(t)

	created, err := CreateCapsule(database, cfg, CreateCapsuleInput{
		Dir: dir, Project: "aura",
	})
	if err != nil {
		t.Fatalf("CreateCapsule failed: %v", err)
	}

	_, err = SetSection(database, cfg, SetSectionInput{
		Target: created.ID, Name: "x", Kind: "xml", Content: "<x/>",
	})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Fatalf("error = %v, want INVALID_REQUEST", err)
	}
}

func TestSetSection_RejectsTabletTarget(t *testing.T) {
	database, cfg, dir := testEnv(t)

	created, err := CreateTablet(database, cfg, CreateTabletInput{
		Dir: dir, Title: "Session",
	})
	if err != nil {
		t.Fatalf("CreateTablet failed: %v", err)
	}
	_, err = SetSection(database, cfg, SetSectionInput{
		Target: created.ID, Name: "x", Content: "y",
	})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Fatalf("error = %v, want INVALID_REQUEST", err)
	}
}

func TestSetSection_EnforcesSizeLimit(t *testing.T) {
	database, cfg, dir := testEnv(t)
	cfg.MaxCapsuleBytes = 256

	created, err := CreateCapsule(database, cfg, CreateCapsuleInput{
		Dir: dir, Project: "aura",
	})
	if err != nil {
		t.Fatalf("CreateCapsule failed: %v", err)
	}
	big := make([]byte, 1024)
	for i := range big {
		big[i] = 'x'
	}
	_, err = SetSection(database, cfg, SetSectionInput{
		Target: created.ID, Name: "big", Content: string(big),
	})
	if !errors.Is(err, errors.ErrFileTooLarge) {
		t.Fatalf("error = %v, want FILE_TOO_LARGE", err)
	}
}
