package reactive_test

import (
	"strings"
	"testing"

	"github.com/paiml/ruchy-sub014/internal/interp"
	"github.com/paiml/ruchy-sub014/internal/reactive"
	"github.com/paiml/ruchy-sub014/internal/value"
)

func newSession() *reactive.Session {
	return reactive.NewSession(interp.New())
}

func TestExecuteDefinesAndReturns(t *testing.T) {
	s := newSession()
	resp := s.Execute("a", "let x = 41; x + 1")
	if !resp.Success {
		t.Fatalf("error: %s", resp.Error)
	}
	if resp.Value != "42" {
		t.Fatalf("value = %q", resp.Value)
	}
	entry, ok := s.Registry().Get("x")
	if !ok {
		t.Fatal("x should be registered")
	}
	if !value.Equal(entry.Val, value.Integer{Value: 41}) {
		t.Fatalf("x = %s", entry.Val.Inspect())
	}
	if entry.Cell != "a" {
		t.Fatalf("defining cell = %q", entry.Cell)
	}
}

func TestParseErrorIsUnsuccessfulResponse(t *testing.T) {
	s := newSession()
	resp := s.Execute("a", "let = ;;;")
	if resp.Success || resp.Error == "" {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestRuntimeErrorIsUnsuccessfulResponse(t *testing.T) {
	s := newSession()
	resp := s.Execute("a", "1 / 0")
	if resp.Success || !strings.Contains(resp.Error, "division") {
		t.Fatalf("resp = %+v", resp)
	}
}

// The S5 scenario: A=`x=1`, B=`y=x+1`, C=`z=y*2`; editing A cascades
// through B to C.
func TestReactiveCascade(t *testing.T) {
	s := newSession()
	for _, cell := range []struct{ id, src string }{
		{"A", "let x = 1"},
		{"B", "let y = x + 1"},
		{"C", "let z = y * 2"},
	} {
		if resp := s.Execute(cell.id, cell.src); !resp.Success {
			t.Fatalf("%s: %s", cell.id, resp.Error)
		}
	}
	z, _ := s.Registry().Get("z")
	if !value.Equal(z.Val, value.Integer{Value: 4}) {
		t.Fatalf("z = %s, want 4", z.Val.Inspect())
	}

	responses := s.ExecuteReactive("A", "let x = 10")
	if len(responses) != 3 {
		t.Fatalf("cascade returned %d responses, want 3 (A, B, C)", len(responses))
	}
	z, _ = s.Registry().Get("z")
	if !value.Equal(z.Val, value.Integer{Value: 22}) {
		t.Fatalf("z after cascade = %s, want 22", z.Val.Inspect())
	}
}

func TestNoCascadeWhenValueUnchanged(t *testing.T) {
	s := newSession()
	s.Execute("A", "let x = 1")
	s.Execute("B", "let y = x + 1")
	responses := s.ExecuteReactive("A", "let x = 1")
	if len(responses) != 1 {
		t.Fatalf("unchanged value should not cascade, got %d responses", len(responses))
	}
}

func TestManualModeDoesNotCascade(t *testing.T) {
	s := newSession()
	s.Mode = reactive.Manual
	s.Execute("A", "let x = 1")
	s.Execute("B", "let y = x + 1")
	responses := s.ExecuteReactive("A", "let x = 99")
	if len(responses) != 1 {
		t.Fatalf("manual mode cascaded: %d responses", len(responses))
	}
}

// P6: every DefId in a successful cell's provenance resolves in the
// registry to a structurally equal value.
func TestProvenanceMonotonicity(t *testing.T) {
	s := newSession()
	s.Execute("A", "let a = [1, 2, 3]")
	state, _ := s.Cell("A")
	if !state.Success || len(state.Defines) == 0 {
		t.Fatalf("state = %+v", state)
	}
	for _, id := range state.Defines {
		found := false
		for _, name := range s.Registry().Names() {
			if e, _ := s.Registry().Get(name); e.ID == id {
				found = true
			}
		}
		if !found {
			t.Errorf("DefId %d missing from registry", id)
		}
	}
}

func TestUsesTracked(t *testing.T) {
	s := newSession()
	s.Execute("A", "let base = 10")
	s.Execute("B", "let doubled = base * 2")
	state, _ := s.Cell("B")
	if len(state.Uses) != 1 {
		t.Fatalf("uses = %v, want the DefId of base", state.Uses)
	}
	edges := s.Graph().Edges()
	if len(edges) != 1 || edges[0] != [2]string{"A", "B"} {
		t.Fatalf("edges = %v", edges)
	}
}

// P7: restoring the same checkpoint twice equals restoring it once.
func TestCheckpointRestoreIdempotent(t *testing.T) {
	s := newSession()
	s.Execute("A", "let x = 1")
	h := s.Checkpoint()
	s.Execute("B", "let x = 100; let extra = 5")

	if err := s.Restore(h); err != nil {
		t.Fatal(err)
	}
	first := s.Registry().Entries()
	if err := s.Restore(h); err != nil {
		t.Fatal(err)
	}
	second := s.Registry().Entries()

	if len(first) != len(second) {
		t.Fatalf("restore not idempotent: %d vs %d entries", len(first), len(second))
	}
	x, ok := s.Registry().Get("x")
	if !ok || !value.Equal(x.Val, value.Integer{Value: 1}) {
		t.Fatalf("x after restore = %v", x)
	}
	if _, ok := s.Registry().Get("extra"); ok {
		t.Fatal("extra should be gone after restore")
	}
	// The interpreter's global scope follows the registry.
	resp := s.Execute("C", "x + 1")
	if !resp.Success || resp.Value != "2" {
		t.Fatalf("post-restore execute = %+v", resp)
	}
}

func TestTransactions(t *testing.T) {
	s := newSession()
	s.Execute("A", "let x = 1")

	tx, err := s.BeginTransaction()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.BeginTransaction(); err == nil {
		t.Fatal("nested transactions must be rejected")
	}
	s.Execute("B", "let x = 999")
	if err := s.RollbackTransaction(tx); err != nil {
		t.Fatal(err)
	}
	x, _ := s.Registry().Get("x")
	if !value.Equal(x.Val, value.Integer{Value: 1}) {
		t.Fatalf("x after rollback = %s", x.Val.Inspect())
	}

	tx2, _ := s.BeginTransaction()
	s.Execute("C", "let y = 2")
	if err := s.CommitTransaction(tx2); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Registry().Get("y"); !ok {
		t.Fatal("committed definition should survive")
	}
}

func TestExplainReactive(t *testing.T) {
	s := newSession()
	s.Execute("A", "let x = 1")
	s.Execute("B", "let y = x + 1")
	s.Execute("C", "let z = y * 2")
	plan, err := s.ExplainReactive("A")
	if err != nil {
		t.Fatal(err)
	}
	if len(plan) != 3 || plan[0].CellID != "A" || plan[1].CellID != "B" || plan[2].CellID != "C" {
		t.Fatalf("plan = %+v", plan)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	s := newSession()
	s.Execute("A", `let x = 7`)
	s.Execute("B", `let msg = "hello"`)
	s.Execute("C", "let y = x * 2")
	data, err := s.MarshalState()
	if err != nil {
		t.Fatal(err)
	}

	fresh := newSession()
	if err := fresh.UnmarshalState(data); err != nil {
		t.Fatal(err)
	}
	x, ok := fresh.Registry().Get("x")
	if !ok || !value.Equal(x.Val, value.Integer{Value: 7}) {
		t.Fatalf("x = %v", x)
	}
	msg, _ := fresh.Registry().Get("msg")
	if !value.Equal(msg.Val, value.Str{Value: "hello"}) {
		t.Fatalf("msg = %v", msg)
	}
	if len(fresh.Graph().Edges()) != len(s.Graph().Edges()) {
		t.Fatal("graph edges should survive the round trip")
	}
	// Imported definitions are usable by new cells.
	resp := fresh.Execute("D", "x + y")
	if !resp.Success || resp.Value != "21" {
		t.Fatalf("post-import execute = %+v", resp)
	}
}

func TestImportRejectsWrongMajorVersion(t *testing.T) {
	s := newSession()
	state := s.ExportSessionState()
	state.Version.Major = 99
	if err := newSession().ImportSessionState(state); err == nil {
		t.Fatal("major version mismatch must be rejected")
	}
}

func TestGarbageCollectionIsRepeatable(t *testing.T) {
	s := newSession()
	s.Execute("A", "let x = 1")
	h := s.Checkpoint()
	s.Execute("B", "let y = 2")
	s.Restore(h)
	s.TriggerGarbageCollection()
	s.TriggerGarbageCollection()
	resp := s.Execute("C", "x + 1")
	if !resp.Success {
		t.Fatalf("session unusable after GC: %s", resp.Error)
	}
}

func TestMemoryCounterGrows(t *testing.T) {
	s := newSession()
	before := s.Registry().Memory()
	s.Execute("A", `let blob = "aaaaaaaaaaaaaaaaaaaaaaaa"`)
	if s.Registry().Memory() <= before {
		t.Fatal("memory counter should grow on definition")
	}
}

func TestDependencyCycleReported(t *testing.T) {
	s := newSession()
	s.Execute("A", "let p = 1")
	s.Execute("B", "let q = p + 1")
	// Redefine A in terms of q: now A depends on B and B on A.
	resp := s.Execute("A", "let p = q + 1")
	if !resp.Success {
		t.Fatalf("execute failed: %s", resp.Error)
	}
	if !strings.Contains(resp.Error, "cycle") {
		t.Fatalf("cycle not reported: %+v", resp)
	}
	responses := s.ExecuteReactive("A", "let p = q + 10")
	last := responses[len(responses)-1]
	if !strings.Contains(last.Error, "cycle") {
		t.Fatalf("cascade should report the cycle: %+v", responses)
	}
}
