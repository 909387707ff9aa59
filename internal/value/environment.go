package value

import "sync"

// Environment is a single lexical scope frame, chained to its defining
// (outer) scope: Get walks outward on a miss, Define always writes the
// current frame, Update walks outward looking for an existing binding
// to mutate.
type Environment struct {
	mu    sync.RWMutex
	store map[string]Value
	outer *Environment
}

// NewEnvironment creates a top-level (global) environment.
func NewEnvironment() *Environment {
	return &Environment{store: make(map[string]Value)}
}

// NewEnclosedEnvironment creates a child scope of outer.
func NewEnclosedEnvironment(outer *Environment) *Environment {
	return &Environment{store: make(map[string]Value), outer: outer}
}

// Get looks up name in this frame, then each enclosing frame in turn.
func (e *Environment) Get(name string) (Value, bool) {
	e.mu.RLock()
	v, ok := e.store[name]
	outer := e.outer
	e.mu.RUnlock()
	if ok {
		return v, true
	}
	if outer != nil {
		return outer.Get(name)
	}
	return nil, false
}

// Define binds name in the current frame unconditionally, shadowing any
// binding of the same name in an enclosing frame (`let`).
func (e *Environment) Define(name string, v Value) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store[name] = v
}

// Update mutates the nearest enclosing frame that already binds name,
// returning false if no frame in the chain has it. Used for `set`-style
// assignment.
func (e *Environment) Update(name string, v Value) bool {
	e.mu.Lock()
	if _, ok := e.store[name]; ok {
		e.store[name] = v
		e.mu.Unlock()
		return true
	}
	outer := e.outer
	e.mu.Unlock()
	if outer != nil {
		return outer.Update(name, v)
	}
	return false
}

// SetVariable updates the nearest enclosing definition if one exists,
// otherwise inserts the binding into the current frame.
func (e *Environment) SetVariable(name string, v Value) {
	if e.Update(name, v) {
		return
	}
	e.Define(name, v)
}

// Store returns a defensive copy of this frame's own bindings, not
// including outer frames — used by reactive-session checkpointing.
func (e *Environment) Store() map[string]Value {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[string]Value, len(e.store))
	for k, v := range e.store {
		out[k] = v
	}
	return out
}

// Outer returns the enclosing frame, or nil at the global frame.
func (e *Environment) Outer() *Environment { return e.outer }

// Remove deletes name from the nearest frame that binds it, reporting
// whether a binding was found. Used by the reactive session to align
// the global scope with a restored registry snapshot.
func (e *Environment) Remove(name string) bool {
	e.mu.Lock()
	if _, ok := e.store[name]; ok {
		delete(e.store, name)
		e.mu.Unlock()
		return true
	}
	outer := e.outer
	e.mu.Unlock()
	if outer != nil {
		return outer.Remove(name)
	}
	return false
}
