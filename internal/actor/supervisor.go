package actor

import (
	"github.com/google/uuid"

	"github.com/paiml/ruchy-sub014/internal/ast"
	"github.com/paiml/ruchy-sub014/internal/interp"
	"github.com/paiml/ruchy-sub014/internal/value"
)

// supervisorInst tracks one live supervisor: its declaration and the
// ids of the children it spawned, in declaration order (rest_for_one
// depends on that order).
type supervisorInst struct {
	id       string
	decl     *ast.SupervisorDecl
	children []string
}

// SpawnSupervisor constructs every declared child actor with its
// default state and links them to a new supervisor record. The handle
// returned refers to the supervisor itself; it accepts no messages.
func (r *Runtime) SpawnSupervisor(in *interp.Interp, decl *ast.SupervisorDecl) (value.Value, error) {
	sup := &supervisorInst{id: uuid.NewString(), decl: decl}
	for _, typeName := range decl.Children {
		childDecl, ok := in.LookupActorDecl(typeName)
		if !ok {
			return nil, interp.RuntimeErrorf("supervisor %s: unknown child actor %q", decl.Name, typeName)
		}
		handle, err := r.Spawn(in, childDecl, childDecl.IsAsync, nil)
		if err != nil {
			return nil, err
		}
		id := handle.(value.ActorHandle).ID
		sup.children = append(sup.children, id)
		r.mu.Lock()
		r.instances[id].supervisorID = sup.id
		r.mu.Unlock()
	}
	r.mu.Lock()
	r.supervisors[sup.id] = sup
	r.mu.Unlock()
	return value.ActorHandle{ID: sup.id}, nil
}

// Children returns the ids of a supervisor's children, in declaration
// order. The bool reports whether the handle names a supervisor.
func (r *Runtime) Children(handle value.ActorHandle) ([]string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sup, ok := r.supervisors[handle.ID]
	if !ok {
		return nil, false
	}
	return append([]string{}, sup.children...), true
}

// HandleFor builds an ActorHandle for a child id, so tests and the
// session layer can message supervised children directly.
func (r *Runtime) HandleFor(id string) (value.ActorHandle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.instances[id]
	if !ok {
		return value.ActorHandle{}, false
	}
	return value.ActorHandle{ID: inst.id, Async: inst.async}, true
}

// applyStrategy restarts children per the supervisor's strategy after
// the child with failedID raised from a handler.
func (r *Runtime) applyStrategy(in *interp.Interp, sup *supervisorInst, failedID string) {
	var targets []string
	switch sup.decl.Strategy {
	case "one_for_all":
		targets = sup.children
	case "rest_for_one":
		for i, id := range sup.children {
			if id == failedID {
				targets = sup.children[i:]
				break
			}
		}
	default: // one_for_one
		targets = []string{failedID}
	}
	for _, id := range targets {
		r.restart(in, id)
	}
}

// restart resets an actor to the initial field values of its
// definition (spawn arguments included), keeping the same ObjectMut so
// outstanding handles observe the reset, then runs on_restart.
func (r *Runtime) restart(in *interp.Interp, id string) {
	r.mu.Lock()
	inst, ok := r.instances[id]
	r.mu.Unlock()
	if !ok {
		return
	}
	fields, err := initialFields(in, inst.decl, inst.initArgs)
	if err != nil {
		return
	}
	inst.self.Replace(fields)
	inst.stopped = false
	_, _ = in.EvalHandler(inst.decl.Hooks.OnRestart, map[string]value.Value{"self": inst.self})
}
