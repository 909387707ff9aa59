package reactive

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/paiml/ruchy-sub014/internal/ast"
	"github.com/paiml/ruchy-sub014/internal/interp"
	"github.com/paiml/ruchy-sub014/internal/lexer"
	"github.com/paiml/ruchy-sub014/internal/parser"
	"github.com/paiml/ruchy-sub014/internal/reactive/store"
	"github.com/paiml/ruchy-sub014/internal/value"
)

// Mode selects whether edits cascade to dependent cells.
type Mode int

const (
	Manual Mode = iota
	Reactive
)

// ExecuteResponse is the outcome of running one cell.
type ExecuteResponse struct {
	CellID  string `json:"cell_id"`
	Success bool   `json:"success"`
	Value   string `json:"value,omitempty"`
	Error   string `json:"error,omitempty"`
}

// CellState is the cached record for one cell: source hash, last
// output, provenance, and timing.
type CellState struct {
	Source     string
	SourceHash string
	Output     string
	Defines    []DefId
	Uses       []DefId
	ExecutedAt time.Time
	Duration   time.Duration
	Success    bool
}

// PlanStep is one entry of an explain_reactive execution plan.
type PlanStep struct {
	CellID    string
	Estimated time.Duration
}

// Session is a single-writer reactive notebook session sharing one
// interpreter across cells. Concurrent Execute calls are not
// supported.
type Session struct {
	Mode     Mode
	registry *Registry
	graph    *DepGraph
	cells    map[string]*CellState
	in       *interp.Interp

	// baseline is the set of global names present before any cell ran
	// (builtins), excluded from provenance diffing.
	baseline map[string]bool

	checkpoints map[string]snapshot
	activeTx    string
	txCheckpt   string

	// store, when set, keeps a durable copy of every checkpoint so a
	// restarted process can restore by handle.
	store *store.Store
}

// NewSession creates a session around a wired interpreter. Passing nil
// uses a bare evaluator (no actors, no module loading).
func NewSession(in *interp.Interp) *Session {
	if in == nil {
		in = interp.New()
	}
	baseline := map[string]bool{}
	for name := range in.GlobalEnv.Store() {
		baseline[name] = true
	}
	return &Session{
		Mode:        Reactive,
		registry:    NewRegistry(),
		graph:       NewDepGraph(),
		cells:       map[string]*CellState{},
		in:          in,
		baseline:    baseline,
		checkpoints: map[string]snapshot{},
	}
}

// NewPersistentSession creates a session whose checkpoints are also
// written to the SQLite file at path, so they survive process
// restarts; the in-memory copy-on-write registry stays the primary
// mechanism.
func NewPersistentSession(in *interp.Interp, path string) (*Session, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	s := NewSession(in)
	s.store = st
	return s, nil
}

// Store exposes the durable checkpoint store, nil for purely
// in-memory sessions.
func (s *Session) Store() *store.Store { return s.store }

// SetOut redirects the interpreter's print output (REPL/notebook UI).
func (s *Session) SetOut(w io.Writer) { s.in.Out = w }

// Registry exposes the definition registry (read-mostly callers:
// tests, export, the session store).
func (s *Session) Registry() *Registry { return s.registry }

// Graph exposes the dependency graph.
func (s *Session) Graph() *DepGraph { return s.graph }

// Cell returns the cached state for a cell id.
func (s *Session) Cell(id string) (*CellState, bool) {
	c, ok := s.cells[id]
	return c, ok
}

func hashSource(src string) string {
	sum := sha256.Sum256([]byte(src))
	return hex.EncodeToString(sum[:])
}

// Execute parses and runs one cell, records provenance, and updates
// the dependency graph. Interpreter errors become unsuccessful
// responses; the session itself does not fail.
func (s *Session) Execute(cellID, source string) ExecuteResponse {
	p := parser.New(lexer.New(source))
	prog := p.ParseProgram()
	if p.Errors().HasErrors() {
		resp := ExecuteResponse{CellID: cellID, Success: false, Error: p.Errors().Items()[0].Error()}
		s.cells[cellID] = &CellState{Source: source, SourceHash: hashSource(source), ExecutedAt: time.Now()}
		return resp
	}

	// Reads: free identifiers that resolve in the registry before the
	// cell runs.
	usedIDs, usedCells := s.observeReads(prog)

	before := s.globalNames()
	started := time.Now()
	var result value.Value = value.NilValue
	var runErr error
	for _, stmt := range prog.Statements {
		v, err := s.in.RunStatement(stmt)
		if err != nil {
			runErr = err
			break
		}
		result = v
	}
	elapsed := time.Since(started)

	// Writes: global bindings created or rebound by this cell.
	var definedIDs []DefId
	for _, name := range s.changedNames(before) {
		v, _ := s.in.GlobalEnv.Get(name)
		id, _ := s.registry.Define(name, v, cellID)
		definedIDs = append(definedIDs, id)
	}

	state := &CellState{
		Source:     source,
		SourceHash: hashSource(source),
		Defines:    definedIDs,
		Uses:       usedIDs,
		ExecutedAt: started,
		Duration:   elapsed,
		Success:    runErr == nil,
	}
	if runErr == nil && result != nil {
		state.Output = result.Inspect()
	}
	s.cells[cellID] = state

	s.graph.SetDependencies(cellID, usedCells)

	if runErr != nil {
		return ExecuteResponse{CellID: cellID, Success: false, Error: runErr.Error()}
	}
	resp := ExecuteResponse{CellID: cellID, Success: true, Value: state.Output}
	if _, cyclic := s.graph.CycleFrom(cellID); cyclic {
		resp.Error = fmt.Sprintf("dependency cycle involving cell %s", cellID)
	}
	return resp
}

// ExecuteReactive runs a cell and, when any definition it owns changed
// value, re-executes its transitive dependents in topological order.
func (s *Session) ExecuteReactive(cellID, source string) []ExecuteResponse {
	beforeVals := s.registry.Entries()
	primary := s.Execute(cellID, source)
	responses := []ExecuteResponse{primary}
	if !primary.Success || s.Mode != Reactive {
		return responses
	}

	changed := false
	state := s.cells[cellID]
	for _, id := range state.Defines {
		name, entry, ok := s.entryByID(id)
		if !ok {
			continue
		}
		old, had := beforeVals[name]
		if !had || !value.Equal(old.Val, entry.Val) {
			changed = true
			break
		}
	}
	if !changed {
		return responses
	}

	order, err := s.graph.Descendants(cellID)
	if err != nil {
		responses = append(responses, ExecuteResponse{CellID: cellID, Success: false, Error: err.Error()})
		return responses
	}
	for _, dep := range order {
		cached, ok := s.cells[dep]
		if !ok {
			continue
		}
		responses = append(responses, s.Execute(dep, cached.Source))
	}
	return responses
}

// ExplainReactive returns the execution plan for editing a cell —
// the primary cell plus the ordered cascade with estimated times —
// without running anything.
func (s *Session) ExplainReactive(cellID string) ([]PlanStep, error) {
	order, err := s.graph.Descendants(cellID)
	if err != nil {
		return nil, err
	}
	plan := []PlanStep{{CellID: cellID, Estimated: s.estimate(cellID)}}
	for _, dep := range order {
		plan = append(plan, PlanStep{CellID: dep, Estimated: s.estimate(dep)})
	}
	return plan, nil
}

func (s *Session) estimate(cellID string) time.Duration {
	if c, ok := s.cells[cellID]; ok && c.Duration > 0 {
		return c.Duration
	}
	return time.Millisecond
}

func (s *Session) entryByID(id DefId) (string, Entry, bool) {
	for name, e := range s.registry.Entries() {
		if e.ID == id {
			return name, e, true
		}
	}
	return "", Entry{}, false
}

// observeReads collects the registry definitions a cell's AST refers
// to, returning their ids and the cells that own them.
func (s *Session) observeReads(prog *ast.Program) ([]DefId, []string) {
	seen := map[string]bool{}
	var ids []DefId
	cells := map[string]bool{}
	for _, stmt := range prog.Statements {
		node, ok := stmt.(ast.Node)
		if !ok {
			continue
		}
		ast.Walk(node, func(n ast.Node) bool {
			ident, ok := n.(*ast.Identifier)
			if !ok {
				return true
			}
			if seen[ident.Name] {
				return true
			}
			seen[ident.Name] = true
			if entry, ok := s.registry.Get(ident.Name); ok {
				ids = append(ids, entry.ID)
				cells[entry.Cell] = true
			}
			return true
		})
	}
	owners := make([]string, 0, len(cells))
	for c := range cells {
		owners = append(owners, c)
	}
	sort.Strings(owners)
	return ids, owners
}

func (s *Session) globalNames() map[string]value.Value {
	store := s.in.GlobalEnv.Store()
	out := make(map[string]value.Value, len(store))
	for name, v := range store {
		if s.baseline[name] {
			continue
		}
		out[name] = v
	}
	return out
}

// changedNames diffs the global frame against a pre-execution capture,
// returning names created or rebound, sorted for determinism.
func (s *Session) changedNames(before map[string]value.Value) []string {
	var out []string
	for name, v := range s.globalNames() {
		old, had := before[name]
		if !had || !value.Equal(old, v) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Checkpoint captures the registry copy-on-write style and returns an
// opaque handle. Persistent sessions also write the full session
// state under the handle; a store failure does not invalidate the
// in-memory checkpoint.
func (s *Session) Checkpoint() string {
	h := uuid.NewString()
	s.checkpoints[h] = s.registry.snapshot()
	if s.store != nil {
		if data, err := s.MarshalState(); err == nil {
			_ = s.store.SaveCheckpoint(h, "", data)
		}
	}
	return h
}

// Restore reverts the registry to a checkpoint and re-aligns the
// interpreter's global scope with it. A handle unknown in memory is
// looked up in the durable store, so persistent sessions can restore
// checkpoints taken by an earlier process. The dependency graph is
// not rolled back for in-memory restores; callers re-execute affected
// cells or reset explicitly.
func (s *Session) Restore(handle string) error {
	snap, ok := s.checkpoints[handle]
	if !ok {
		if s.store != nil {
			data, err := s.store.LoadCheckpoint(handle)
			if err != nil {
				return fmt.Errorf("unknown checkpoint %s", handle)
			}
			return s.UnmarshalState(data)
		}
		return fmt.Errorf("unknown checkpoint %s", handle)
	}
	s.registry.restore(snap)
	s.syncEnv()
	return nil
}

// syncEnv makes the interpreter's global frame mirror the registry:
// registry entries win, stale cell-defined names disappear.
func (s *Session) syncEnv() {
	live := map[string]bool{}
	for name, e := range s.registry.Entries() {
		live[name] = true
		s.in.GlobalEnv.Define(name, e.Val)
	}
	for name := range s.globalNames() {
		if !live[name] {
			s.in.GlobalEnv.Remove(name)
		}
	}
}

// BeginTransaction opens a transaction backed by an implicit
// checkpoint. Nested transactions are not supported.
func (s *Session) BeginTransaction() (string, error) {
	if s.activeTx != "" {
		return "", fmt.Errorf("transaction %s already active; nested transactions are not supported", s.activeTx)
	}
	s.activeTx = uuid.NewString()
	s.txCheckpt = s.Checkpoint()
	return s.activeTx, nil
}

// CommitTransaction discards the transaction's checkpoint.
func (s *Session) CommitTransaction(id string) error {
	if s.activeTx == "" || s.activeTx != id {
		return fmt.Errorf("no active transaction %s", id)
	}
	s.dropCheckpoint(s.txCheckpt)
	s.activeTx, s.txCheckpt = "", ""
	return nil
}

func (s *Session) dropCheckpoint(handle string) {
	delete(s.checkpoints, handle)
	if s.store != nil {
		_ = s.store.DeleteCheckpoint(handle)
	}
}

// RollbackTransaction restores the transaction's checkpoint.
func (s *Session) RollbackTransaction(id string) error {
	if s.activeTx == "" || s.activeTx != id {
		return fmt.Errorf("no active transaction %s", id)
	}
	err := s.Restore(s.txCheckpt)
	s.dropCheckpoint(s.txCheckpt)
	s.activeTx, s.txCheckpt = "", ""
	return err
}

// TriggerGarbageCollection compacts the registry free list and clears
// any cached output still held by an unsuccessful cell (such as one
// imported from an exported state), returning how many items it
// pruned. Re-executing a cell id replaces its cached state, so no
// output of an earlier execution of that id remains to prune.
// Safe to call repeatedly whenever the interpreter is idle.
func (s *Session) TriggerGarbageCollection() int {
	pruned := s.registry.CompactFreeList()
	for _, c := range s.cells {
		if !c.Success && c.Output != "" {
			c.Output = ""
			pruned++
		}
	}
	return pruned
}
