package ops

import (
	"testing"
)

func TestSizes(t *testing.T) {
	database, cfg, dir := testEnv(t)

	tab, err := CreateTablet(database, cfg, CreateTabletInput{Dir: dir, Title: "One"})
	if err != nil {
		t.Fatalf("CreateTablet failed: %v", err)
	}
	// Grow the tablet so ordering by size is observable.
	for i := 0; i < 5; i++ {
		if _, err := AddEntry(database, cfg, AddEntryInput{
			Target: tab.ID, Path: "a.go", Diff: "a reasonably long diff body to pad the file out",
		}); err != nil {
			t.Fatalf("AddEntry failed: %v", err)
		}
	}
	if _, err := CreateCapsule(database, cfg, CreateCapsuleInput{Dir: dir, Project: "aura"}); err != nil {
		t.Fatalf("CreateCapsule failed: %v", err)
	}

	out, err := Sizes(database)
	if err != nil {
		t.Fatalf("Sizes failed: %v", err)
	}
	if out.Tablets != 1 || out.Capsules != 1 {
		t.Errorf("Tablets = %d, Capsules = %d", out.Tablets, out.Capsules)
	}
	if len(out.Files) != 2 {
		t.Fatalf("Files = %d, want 2", len(out.Files))
	}
	if out.Files[0].SizeBytes < out.Files[1].SizeBytes {
		t.Error("files not sorted largest first")
	}
	if out.TotalBytes != out.Files[0].SizeBytes+out.Files[1].SizeBytes {
		t.Errorf("TotalBytes = %d", out.TotalBytes)
	}
	if out.Rating != StorageGood {
		t.Errorf("Rating = %q, want GOOD", out.Rating)
	}
}

func TestFormatSize(t *testing.T) {
	cases := []struct {
		n    int64
		want string
	}{
		{512, "512.00 B"},
		{2048, "2.00 KB"},
		{5 << 20, "5.00 MB"},
		{3 << 30, "3.00 GB"},
	}
	for _, tc := range cases {
		if got := FormatSize(tc.n); got != tc.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tc.n, got, tc.want)
		}
	}
}
