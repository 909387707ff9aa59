// Package actor implements Ruchy's actor runtime: synchronous in-thread
// dispatch, mailbox-driven async dispatch on a background worker, typed
// handler parameter validation, lifecycle hooks, and supervision.
//
// The runtime owns a table of instances keyed by opaque ids; values
// hold only an ActorHandle into the table, never a strong reference to
// another actor, so supervisor trees cannot form reference cycles.
package actor

import (
	"sync"

	"github.com/google/uuid"

	"github.com/paiml/ruchy-sub014/internal/ast"
	"github.com/paiml/ruchy-sub014/internal/interp"
	"github.com/paiml/ruchy-sub014/internal/value"
)

// Runtime is the process-global actor table plus the async dispatcher.
// It satisfies interp.ActorRuntime.
type Runtime struct {
	mu          sync.Mutex
	instances   map[string]*instance
	supervisors map[string]*supervisorInst
	dispatcher  *dispatcher
}

// instance is one live actor: its declaration, shared mutable state
// record, and the evaluator that spawned it (async handlers run against
// that evaluator on the dispatcher goroutine, one handler at a time).
type instance struct {
	id           string
	decl         *ast.ActorDecl
	self         *value.ObjectMut
	initArgs     []value.Value
	async        bool
	stopped      bool
	supervisorID string
	in           *interp.Interp
}

// NewRuntime creates an empty actor runtime.
func NewRuntime() *Runtime {
	return &Runtime{
		instances:   map[string]*instance{},
		supervisors: map[string]*supervisorInst{},
	}
}

var _ interp.ActorRuntime = (*Runtime)(nil)

// Spawn constructs an actor instance: state fields get their declared
// defaults, then positional spawn arguments override them in field
// order. The on_start hook runs before the handle is returned.
func (r *Runtime) Spawn(in *interp.Interp, decl *ast.ActorDecl, async bool, args []value.Value) (value.Value, error) {
	fields, err := initialFields(in, decl, args)
	if err != nil {
		return nil, err
	}
	inst := &instance{
		id:       uuid.NewString(),
		decl:     decl,
		self:     value.NewObjectMut(fields),
		initArgs: args,
		async:    async,
		in:       in,
	}
	r.mu.Lock()
	r.instances[inst.id] = inst
	if async {
		r.ensureDispatcherLocked()
	}
	r.mu.Unlock()

	if _, err := in.EvalHandler(decl.Hooks.OnStart, map[string]value.Value{"self": inst.self}); err != nil {
		return nil, err
	}
	return value.ActorHandle{ID: inst.id, Async: async}, nil
}

func initialFields(in *interp.Interp, decl *ast.ActorDecl, args []value.Value) (map[string]value.Value, error) {
	fields := make(map[string]value.Value, len(decl.State))
	for i, f := range decl.State {
		if i < len(args) {
			fields[f.Name] = args[i]
			continue
		}
		v, err := in.EvalStateDefault(f.Default)
		if err != nil {
			return nil, err
		}
		fields[f.Name] = v
	}
	return fields, nil
}

func (r *Runtime) lookup(id string) (*instance, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.instances[id]
	return inst, ok
}

// Send delivers a fire-and-forget message. Synchronous actors run the
// handler to completion before Send returns; async actors enqueue the
// message and return immediately.
func (r *Runtime) Send(in *interp.Interp, handle value.ActorHandle, message string, args []value.Value) error {
	inst, ok := r.lookup(handle.ID)
	if !ok {
		return interp.RuntimeErrorf("actor %s is not running", handle.ID)
	}
	if inst.async {
		if err := r.validateParams(inst, message, args); err != nil {
			return err
		}
		r.dispatcher.enqueue(envelope{actorID: inst.id, message: message, args: encodeArgs(args)})
		return nil
	}
	_, err := r.invoke(in, inst, message, args)
	return err
}

// Ask delivers a message and returns the handler's value. Not supported
// on async actors.
func (r *Runtime) Ask(in *interp.Interp, handle value.ActorHandle, message string, args []value.Value) (value.Value, error) {
	inst, ok := r.lookup(handle.ID)
	if !ok {
		return nil, interp.RuntimeErrorf("actor %s is not running", handle.ID)
	}
	if inst.async {
		return nil, interp.RuntimeErrorf("ask is not supported on async actors")
	}
	return r.invoke(in, inst, message, args)
}

// Stop runs the on_stop hook and removes the actor from the table.
// For async actors the stop takes effect after the handler currently
// in flight (if any) returns; queued messages are discarded.
func (r *Runtime) Stop(in *interp.Interp, handle value.ActorHandle) error {
	r.mu.Lock()
	inst, ok := r.instances[handle.ID]
	if ok {
		inst.stopped = true
		delete(r.instances, handle.ID)
	}
	r.mu.Unlock()
	if !ok {
		return nil
	}
	_, err := in.EvalHandler(inst.decl.Hooks.OnStop, map[string]value.Value{"self": inst.self})
	return err
}

// invoke runs the matching receive arm synchronously: validate the
// typed parameters, bind them plus self, evaluate the body. A handler
// error triggers the on_error hook and, if the actor is supervised,
// the supervisor's restart strategy; the error still propagates to the
// caller afterwards.
func (r *Runtime) invoke(in *interp.Interp, inst *instance, message string, args []value.Value) (value.Value, error) {
	arm, err := r.findArm(in, inst, message, args)
	if err != nil {
		return nil, err
	}
	bindings := handlerBindings(inst, arm, args)
	v, err := in.EvalHandler(arm.Body, bindings)
	if err != nil {
		r.handleFailure(in, inst, err)
		return nil, err
	}
	return v, nil
}

// findArm locates the receive arm for message, checking its guard with
// the would-be bindings in scope. Guards that fail fall through to the
// next arm of the same message name.
func (r *Runtime) findArm(in *interp.Interp, inst *instance, message string, args []value.Value) (*ast.ReceiveArm, error) {
	var candidate *ast.ReceiveArm
	for i := range inst.decl.Arms {
		arm := &inst.decl.Arms[i]
		if arm.MessageName != message {
			continue
		}
		candidate = arm
		if err := validateArmParams(inst.decl.Name, arm, args); err != nil {
			return nil, err
		}
		fire, err := in.EvalGuard(arm.Guard, handlerBindings(inst, arm, args))
		if err != nil {
			return nil, err
		}
		if fire {
			return arm, nil
		}
	}
	if candidate != nil {
		return nil, interp.RuntimeErrorf("no guard matched message %s on actor %s", message, inst.decl.Name)
	}
	return nil, interp.RuntimeErrorf("actor %s has no handler for message %s", inst.decl.Name, message)
}

func handlerBindings(inst *instance, arm *ast.ReceiveArm, args []value.Value) map[string]value.Value {
	bindings := map[string]value.Value{"self": inst.self}
	for i, p := range arm.Params {
		if i < len(args) {
			bindings[p.Name] = args[i]
		} else {
			bindings[p.Name] = value.NilValue
		}
	}
	return bindings
}

func (r *Runtime) validateParams(inst *instance, message string, args []value.Value) error {
	for i := range inst.decl.Arms {
		arm := &inst.decl.Arms[i]
		if arm.MessageName == message {
			return validateArmParams(inst.decl.Name, arm, args)
		}
	}
	return interp.RuntimeErrorf("actor %s has no handler for message %s", inst.decl.Name, message)
}

// handleFailure runs the on_error hook, then asks the supervisor (if
// any) to apply its restart strategy.
func (r *Runtime) handleFailure(in *interp.Interp, inst *instance, cause error) {
	bindings := map[string]value.Value{"self": inst.self}
	if payload, ok := interp.ThrowPayload(cause); ok {
		bindings["error"] = payload
	}
	// on_error is best-effort; a failing hook must not mask the
	// original handler error.
	_, _ = in.EvalHandler(inst.decl.Hooks.OnError, bindings)

	r.mu.Lock()
	sup := r.supervisors[inst.supervisorID]
	r.mu.Unlock()
	if sup != nil {
		r.applyStrategy(in, sup, inst.id)
	}
}
