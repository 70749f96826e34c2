package ops

import (
	"testing"
)

func TestDigest_DeduplicatesByContent(t *testing.T) {
	database, cfg, dir := testEnv(t)

	created, err := CreateTablet(database, cfg, CreateTabletInput{Dir: dir, Title: "Work"})
	if err != nil {
		t.Fatalf("CreateTablet failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := AddEntry(database, cfg, AddEntryInput{
			Target: created.ID, Path: "main.go", Diff: "implemented the parser in parser.go",
		}); err != nil {
			t.Fatalf("AddEntry failed: %v", err)
		}
	}
	if _, err := AddEntry(database, cfg, AddEntryInput{
		Target: created.ID, Path: "main.go", Diff: "fixed the off-by-one in lexer.go",
	}); err != nil {
		t.Fatalf("AddEntry failed: %v", err)
	}

	out, err := Digest(database, cfg, 0)
	if err != nil {
		t.Fatalf("Digest failed: %v", err)
	}
	if out.Stats.TotalEntries != 4 {
		t.Errorf("TotalEntries = %d, want 4", out.Stats.TotalEntries)
	}
	if out.Stats.UniqueEntries != 2 {
		t.Errorf("UniqueEntries = %d, want 2", out.Stats.UniqueEntries)
	}
	if out.Stats.DuplicateSkipped != 2 {
		t.Errorf("DuplicateSkipped = %d, want 2", out.Stats.DuplicateSkipped)
	}
	if out.Patterns[PatternImplementation] != 1 || out.Patterns[PatternFix] != 1 {
		t.Errorf("Patterns = %+v", out.Patterns)
	}
	if _, ok := out.Files["parser.go"]; !ok {
		t.Errorf("Files = %+v, want parser.go tracked", out.Files)
	}
}

func TestDigest_RespectsBudget(t *testing.T) {
	database, cfg, dir := testEnv(t)
	cfg.ContextBudgetKB = 0 // budget of zero bytes admits nothing

	created, err := CreateTablet(database, cfg, CreateTabletInput{Dir: dir, Title: "Work"})
	if err != nil {
		t.Fatalf("CreateTablet failed: %v", err)
	}
	if _, err := AddEntry(database, cfg, AddEntryInput{
		Target: created.ID, Path: "a.go", Diff: "some change",
	}); err != nil {
		t.Fatalf("AddEntry failed: %v", err)
	}

	out, err := Digest(database, cfg, 0)
	if err != nil {
		t.Fatalf("Digest failed: %v", err)
	}
	if out.Stats.UniqueEntries != 0 || len(out.Memories) != 0 {
		t.Errorf("budget ignored: %+v", out.Stats)
	}
	if out.Stats.TotalEntries != 1 {
		t.Errorf("TotalEntries = %d, want 1", out.Stats.TotalEntries)
	}
}

func TestDetectPattern(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"```go\nfunc main() {}\n```", PatternCode},
		{"hit an exception in the loader", PatternError},
		{"implemented retry logic", PatternImplementation},
		{"decided to use a ring buffer", PatternDecision},
		{"fixed the flaky test", PatternFix},
		{"random note", PatternOther},
	}
	for _, tc := range cases {
		if got := detectPattern(tc.text); got != tc.want {
			t.Errorf("detectPattern(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestExtractFileRefs(t *testing.T) {
	refs := extractFileRefs("touched internal/wire/wire.go and cmd/main.go, plus notes.md again notes.md")
	want := []string{"cmd/main.go", "internal/wire/wire.go", "notes.md"}
	if len(refs) != len(want) {
		t.Fatalf("refs = %v, want %v", refs, want)
	}
	for i := range want {
		if refs[i] != want[i] {
			t.Errorf("refs[%d] = %q, want %q", i, refs[i], want[i])
		}
	}
}

func TestSmartSummary_CapsLength(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'a'
	}
	got := smartSummary(string(long), []string{"a.go", "b.go", "c.go", "d.go", "e.go"})
	if len(got) > summaryCap {
		t.Errorf("len = %d, want <= %d", len(got), summaryCap)
	}
	if got[0] != '[' {
		t.Errorf("summary does not lead with files: %q", got[:20])
	}
}
