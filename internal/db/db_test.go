package db

import (
	"testing"

	"github.com/hpungsan/aura/internal/errors"
)

func TestInitCreatesSchema(t *testing.T) {
	database, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer database.Close()

	version, err := GetUserVersion(database)
	if err != nil {
		t.Fatalf("GetUserVersion failed: %v", err)
	}
	if version != CurrentSchemaVersion {
		t.Errorf("user_version = %d, want %d", version, CurrentSchemaVersion)
	}
}

func TestInitIdempotent(t *testing.T) {
	dir := t.TempDir()

	first, err := Init(dir)
	if err != nil {
		t.Fatalf("first Init failed: %v", err)
	}
	first.Close()

	second, err := Init(dir)
	if err != nil {
		t.Fatalf("second Init failed: %v", err)
	}
	second.Close()
}

func TestUpsertAndGet(t *testing.T) {
	database, err := Init(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()

	r := &Record{
		ID:        "01J0000000000000000000TEST",
		Path:      "/sessions/a.auratab",
		Kind:      KindTablet,
		Title:     "Session A",
		Summary:   "first session",
		Tags:      []string{"temporary", "auto-captured"},
		ItemCount: 3,
		SizeBytes: 120,
		CreatedAt: 1000,
		UpdatedAt: 1000,
	}
	if err := Upsert(database, r); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := GetByID(database, r.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Title != "Session A" || got.ItemCount != 3 {
		t.Errorf("got %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "temporary" {
		t.Errorf("tags = %v", got.Tags)
	}

	byPath, err := GetByPath(database, r.Path)
	if err != nil {
		t.Fatalf("GetByPath failed: %v", err)
	}
	if byPath.ID != r.ID {
		t.Errorf("ID = %q, want %q", byPath.ID, r.ID)
	}
}

func TestUpsertReplacesByPath(t *testing.T) {
	database, err := Init(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()

	r := &Record{
		ID: "ID1", Path: "/s/a.auractx", Kind: KindCapsule,
		Title: "v1", Summary: "s", ItemCount: 1, SizeBytes: 10,
		CreatedAt: 1, UpdatedAt: 1,
	}
	if err := Upsert(database, r); err != nil {
		t.Fatal(err)
	}

	r2 := *r
	r2.ID = "ID2" // new ID is ignored for an existing path
	r2.Title = "v2"
	r2.ItemCount = 5
	r2.UpdatedAt = 2
	if err := Upsert(database, &r2); err != nil {
		t.Fatal(err)
	}

	got, err := GetByPath(database, r.Path)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "ID1" {
		t.Errorf("ID changed on upsert: %q", got.ID)
	}
	if got.Title != "v2" || got.ItemCount != 5 {
		t.Errorf("row not updated: %+v", got)
	}
}

func TestGetMissing(t *testing.T) {
	database, err := Init(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()

	if _, err := GetByID(database, "nope"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("GetByID missing: %v", err)
	}
	if _, err := GetByPath(database, "/nope"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("GetByPath missing: %v", err)
	}
}

func TestListFilters(t *testing.T) {
	database, err := Init(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()

	seed := []Record{
		{ID: "A", Path: "/s/a.auratab", Kind: KindTablet, Title: "a", Summary: "", Tags: []string{"saved"}, ItemCount: 1, SizeBytes: 1, CreatedAt: 1, UpdatedAt: 1},
		{ID: "B", Path: "/s/b.auratab", Kind: KindTablet, Title: "b", Summary: "", Tags: []string{"temporary"}, ItemCount: 1, SizeBytes: 1, CreatedAt: 2, UpdatedAt: 2},
		{ID: "C", Path: "/s/c.auractx", Kind: KindCapsule, Title: "c", Summary: "", ItemCount: 1, SizeBytes: 1, CreatedAt: 3, UpdatedAt: 3},
	}
	for i := range seed {
		if err := Upsert(database, &seed[i]); err != nil {
			t.Fatal(err)
		}
	}

	all, err := List(database, ListFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("all = %d rows", len(all))
	}
	// Most recently updated first.
	if all[0].ID != "C" || all[2].ID != "A" {
		t.Errorf("order = %s,%s,%s", all[0].ID, all[1].ID, all[2].ID)
	}

	tablets, err := List(database, ListFilter{Kind: KindTablet})
	if err != nil {
		t.Fatal(err)
	}
	if len(tablets) != 2 {
		t.Errorf("tablets = %d rows", len(tablets))
	}

	tagged, err := List(database, ListFilter{Tag: "temporary"})
	if err != nil {
		t.Fatal(err)
	}
	if len(tagged) != 1 || tagged[0].ID != "B" {
		t.Errorf("tagged = %+v", tagged)
	}

	limited, err := List(database, ListFilter{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 || limited[0].ID != "B" {
		t.Errorf("limited = %+v", limited)
	}
}

func TestDelete(t *testing.T) {
	database, err := Init(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()

	r := &Record{ID: "X", Path: "/s/x.auratab", Kind: KindTablet, Title: "x", Summary: "", ItemCount: 0, SizeBytes: 0, CreatedAt: 1, UpdatedAt: 1}
	if err := Upsert(database, r); err != nil {
		t.Fatal(err)
	}
	if err := Delete(database, "X"); err != nil {
		t.Fatal(err)
	}
	if _, err := GetByID(database, "X"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("record still present: %v", err)
	}

	// Deleting again is a no-op.
	if err := Delete(database, "X"); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestMetaRoundTrip(t *testing.T) {
	database, err := Init(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()

	got, err := GetMeta(database, "last_cleanup")
	if err != nil || got != "" {
		t.Fatalf("unset meta = (%q, %v)", got, err)
	}

	if err := SetMeta(database, "last_cleanup", "2026-08-25T00:00:00Z"); err != nil {
		t.Fatal(err)
	}
	if err := SetMeta(database, "last_cleanup", "2026-08-26T00:00:00Z"); err != nil {
		t.Fatal(err)
	}

	got, err = GetMeta(database, "last_cleanup")
	if err != nil {
		t.Fatal(err)
	}
	if got != "2026-08-26T00:00:00Z" {
		t.Errorf("meta = %q", got)
	}
}
