package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// createTestStore creates a new in-memory journal for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesFileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
	if err := s.verifyPragma("journal_mode", "wal"); err != nil {
		t.Error(err)
	}
	if err := s.verifyPragma("user_version", "1"); err != nil {
		t.Error(err)
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	for _, table := range []string{"invocations", "law_checks", "lineages"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}
}

func TestOpen_ResumesSeq(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	s1, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := s1.RecordInvocation(ctx, Invocation{Span: "s", Path: "world.house.manifest", Outcome: OutcomeOK}); err != nil {
			t.Fatalf("RecordInvocation() failed: %v", err)
		}
	}
	s1.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s2.Close()

	if got := s2.Seq(); got != 3 {
		t.Errorf("Seq() = %d, want 3", got)
	}
	inv, err := s2.RecordInvocation(ctx, Invocation{Span: "s", Path: "world.house.witness", Outcome: OutcomeOK})
	if err != nil {
		t.Fatalf("RecordInvocation() failed: %v", err)
	}
	if inv.Seq != 4 {
		t.Errorf("seq = %d, want 4", inv.Seq)
	}
}

func TestRecordInvocation_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	written, err := s.RecordInvocation(ctx, Invocation{
		Span:      "dev_001",
		Path:      "world.house.manifest[phase=DEVELOP]@span=dev_001",
		Handle:    "world.house",
		Aspect:    "manifest",
		Observer:  "ada",
		Archetype: "architect",
		Outcome:   OutcomeOK,
		Result:    Marshal(map[string]any{"kind": "placeholder"}),
	})
	if err != nil {
		t.Fatalf("RecordInvocation() failed: %v", err)
	}
	if written.Seq != 1 {
		t.Errorf("seq = %d, want 1", written.Seq)
	}
	if len(written.ID) != 64 {
		t.Errorf("id %q is not a sha256 hex digest", written.ID)
	}

	got, err := s.Invocations(ctx, "dev_001")
	if err != nil {
		t.Fatalf("Invocations() failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d invocations, want 1", len(got))
	}
	if got[0].ID != written.ID || got[0].Archetype != "architect" || got[0].Aspect != "manifest" {
		t.Errorf("read back %+v, want %+v", got[0], written)
	}

	var result map[string]any
	if err := json.Unmarshal(got[0].Result, &result); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if result["kind"] != "placeholder" {
		t.Errorf("result = %v", result)
	}
}

func TestInvocations_FilterAndOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, span := range []string{"a", "b", "a"} {
		if _, err := s.RecordInvocation(ctx, Invocation{Span: span, Path: "world.house.manifest", Outcome: OutcomeOK}); err != nil {
			t.Fatalf("RecordInvocation() failed: %v", err)
		}
	}

	a, err := s.Invocations(ctx, "a")
	if err != nil {
		t.Fatalf("Invocations() failed: %v", err)
	}
	if len(a) != 2 || a[0].Seq != 1 || a[1].Seq != 3 {
		t.Errorf("span a = %+v", a)
	}

	all, err := s.Invocations(ctx, "")
	if err != nil {
		t.Fatalf("Invocations() failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("got %d invocations, want 3", len(all))
	}

	none, err := s.Invocations(ctx, "missing")
	if err != nil {
		t.Fatalf("Invocations() failed: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("want empty non-nil slice, got %#v", none)
	}
}

func TestRecordLawCheck(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if _, err := s.RecordLawCheck(ctx, LawCheck{
		Span: "laws", Law: "associativity", Locus: "laws.associativity.inc.dbl.sqr",
		Passed: true, Left: Marshal(144), Right: Marshal(144),
	}); err != nil {
		t.Fatalf("RecordLawCheck() failed: %v", err)
	}
	if _, err := s.RecordLawCheck(ctx, LawCheck{
		Span: "laws", Law: "left_identity", Locus: "laws.left_identity.tick",
		Passed: false, Left: Marshal(1), Right: Marshal(2), Error: "diverged",
	}); err != nil {
		t.Fatalf("RecordLawCheck() failed: %v", err)
	}

	checks, err := s.LawChecks(ctx)
	if err != nil {
		t.Fatalf("LawChecks() failed: %v", err)
	}
	if len(checks) != 2 {
		t.Fatalf("got %d checks, want 2", len(checks))
	}
	if !checks[0].Passed || string(checks[0].Left) != "144" {
		t.Errorf("first check = %+v", checks[0])
	}
	if checks[1].Passed || checks[1].Error != "diverged" {
		t.Errorf("second check = %+v", checks[1])
	}
}

func TestRecordLineage_OncePerHandle(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	lin := Lineage{Handle: "concept.justice", Extends: []string{"concept.value"}, Depth: 2, CreatedBy: "soc"}
	if _, err := s.RecordLineage(ctx, lin); err != nil {
		t.Fatalf("RecordLineage() failed: %v", err)
	}
	if _, err := s.RecordLineage(ctx, lin); err != nil {
		t.Fatalf("second RecordLineage() failed: %v", err)
	}

	lineages, err := s.Lineages(ctx)
	if err != nil {
		t.Fatalf("Lineages() failed: %v", err)
	}
	if len(lineages) != 1 {
		t.Fatalf("got %d lineages, want 1", len(lineages))
	}
	if lineages[0].Extends[0] != "concept.value" || lineages[0].Depth != 2 {
		t.Errorf("lineage = %+v", lineages[0])
	}
}

func TestTrace_MergesInSeqOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if _, err := s.RecordInvocation(ctx, Invocation{Span: "x", Path: "world.house.manifest", Outcome: OutcomeOK}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.RecordLineage(ctx, Lineage{Handle: "concept.a", Extends: []string{"concept.entity"}, Depth: 2}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.RecordInvocation(ctx, Invocation{Span: "x", Path: "world.house.blueprint", Outcome: OutcomeError, ErrorKind: "AffordanceError"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.RecordLawCheck(ctx, LawCheck{Span: "x", Law: "left_identity", Locus: "laws.left_identity.inc", Passed: true}); err != nil {
		t.Fatal(err)
	}

	entries, err := s.Trace(ctx)
	if err != nil {
		t.Fatalf("Trace() failed: %v", err)
	}

	wantKinds := []string{EntryInvocation, EntryLineage, EntryInvocation, EntryLawCheck}
	if len(entries) != len(wantKinds) {
		t.Fatalf("got %d entries, want %d", len(entries), len(wantKinds))
	}
	for i, e := range entries {
		if e.Kind != wantKinds[i] {
			t.Errorf("entry %d kind = %s, want %s", i, e.Kind, wantKinds[i])
		}
		if e.Seq != int64(i+1) {
			t.Errorf("entry %d seq = %d, want %d", i, e.Seq, i+1)
		}
	}
	if entries[2].Outcome != "error:AffordanceError" {
		t.Errorf("outcome = %q", entries[2].Outcome)
	}
	if entries[1].Outcome != "depth=2" {
		t.Errorf("lineage outcome = %q", entries[1].Outcome)
	}
}

func TestMarshal_Unencodable(t *testing.T) {
	got := Marshal(make(chan int))
	var s string
	if err := json.Unmarshal(got, &s); err != nil {
		t.Fatalf("fallback is not a JSON string: %v", err)
	}
}

func TestUUIDv7Generator(t *testing.T) {
	g := UUIDv7Generator{}
	a, b := g.Generate(), g.Generate()
	if len(a) != 36 || a == b {
		t.Errorf("unexpected span ids %q %q", a, b)
	}
}

func TestClock(t *testing.T) {
	c := NewClockAt(10)
	if c.Next() != 11 || c.Next() != 12 || c.Current() != 12 {
		t.Error("clock did not advance monotonically")
	}
	if NewClock().Next() != 1 {
		t.Error("fresh clock should start at 1")
	}
}
