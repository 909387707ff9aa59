package store_test

import (
	"path/filepath"
	"testing"

	"github.com/paiml/ruchy-sub014/internal/interp"
	"github.com/paiml/ruchy-sub014/internal/reactive"
	"github.com/paiml/ruchy-sub014/internal/reactive/store"
)

// A checkpoint taken by a persistent session must be restorable by a
// fresh session on the same file, as after a process restart.
func TestPersistentSessionCheckpointSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	first, err := reactive.NewPersistentSession(interp.New(), path)
	if err != nil {
		t.Fatal(err)
	}
	if resp := first.Execute("A", "let x = 42"); !resp.Success {
		t.Fatalf("execute: %s", resp.Error)
	}
	handle := first.Checkpoint()

	second, err := reactive.NewPersistentSession(interp.New(), path)
	if err != nil {
		t.Fatal(err)
	}
	// The handle is unknown to the new process's memory; it must come
	// back from the store.
	if err := second.Restore(handle); err != nil {
		t.Fatal(err)
	}
	resp := second.Execute("B", "x")
	if !resp.Success || resp.Value != "42" {
		t.Fatalf("restored session: %+v", resp)
	}
}

func TestCommittedTransactionDropsDurableCheckpoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	s, err := reactive.NewPersistentSession(interp.New(), path)
	if err != nil {
		t.Fatal(err)
	}
	s.Execute("A", "let x = 1")
	tx, err := s.BeginTransaction()
	if err != nil {
		t.Fatal(err)
	}
	if err := s.CommitTransaction(tx); err != nil {
		t.Fatal(err)
	}
	recs, err := s.Store().ListCheckpoints()
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 0 {
		t.Fatalf("committed transaction left %d durable checkpoints", len(recs))
	}
}

func TestStoreCRUD(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	st, err := store.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := st.SaveCheckpoint("h1", "before-refactor", []byte(`{"version":{"major":1}}`)); err != nil {
		t.Fatal(err)
	}

	// Reopen the database as a new process would.
	st2, err := store.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	data, err := st2.LoadCheckpoint("h1")
	if err != nil || len(data) == 0 {
		t.Fatalf("load = %q, %v", data, err)
	}
	recs, err := st2.ListCheckpoints()
	if err != nil || len(recs) != 1 || recs[0].Label != "before-refactor" {
		t.Fatalf("list = %v, %v", recs, err)
	}
	if err := st2.DeleteCheckpoint("h1"); err != nil {
		t.Fatal(err)
	}
	if _, err := st2.LoadCheckpoint("h1"); err == nil {
		t.Fatal("deleted checkpoint should not load")
	}
}
