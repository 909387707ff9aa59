package actor

import (
	"strconv"
	"strings"
	"sync"

	"github.com/paiml/ruchy-sub014/internal/value"
)

// envelope is one queued async message. Arguments cross the thread
// boundary stringified; interior-mutable values never leave the
// interpreter thread that produced them.
type envelope struct {
	actorID string
	message string
	args    []string
}

// dispatcher drains all async mailboxes on one worker goroutine in
// global arrival order, which trivially serializes handlers per actor.
// The queue is a growable slice guarded by a mutex and condition
// variable rather than a Go channel, so it is unbounded: a send never
// blocks on a full buffer.
type dispatcher struct {
	mu    sync.Mutex
	cond  *sync.Cond
	queue []envelope
	// busy is true while a handler runs; cond is broadcast whenever the
	// queue empties, so Drain can wait for quiescence.
	busy bool
	rt   *Runtime
}

func (r *Runtime) ensureDispatcherLocked() {
	if r.dispatcher != nil {
		return
	}
	d := &dispatcher{rt: r}
	d.cond = sync.NewCond(&d.mu)
	r.dispatcher = d
	go d.run()
}

func (d *dispatcher) enqueue(env envelope) {
	d.mu.Lock()
	d.queue = append(d.queue, env)
	d.mu.Unlock()
	d.cond.Broadcast()
}

func (d *dispatcher) run() {
	for {
		d.mu.Lock()
		for len(d.queue) == 0 {
			d.busy = false
			d.cond.Broadcast()
			d.cond.Wait()
		}
		env := d.queue[0]
		d.queue = d.queue[1:]
		d.busy = true
		d.mu.Unlock()

		d.deliver(env)
	}
}

func (d *dispatcher) deliver(env envelope) {
	inst, ok := d.rt.lookup(env.actorID)
	if !ok || inst.stopped {
		return
	}
	args := make([]value.Value, len(env.args))
	for i, s := range env.args {
		args[i] = decodeArg(s)
	}
	if _, err := d.rt.invoke(inst.in, inst, env.message, args); err != nil {
		// invoke already ran on_error and supervision; a failed async
		// handler has no caller to report to.
		_ = err
	}
}

// Drain blocks until every queued message has been handled, used by
// tests and by interpreter shutdown to observe async effects.
func (r *Runtime) Drain() {
	r.mu.Lock()
	d := r.dispatcher
	r.mu.Unlock()
	if d == nil {
		return
	}
	d.mu.Lock()
	for len(d.queue) > 0 || d.busy {
		d.cond.Wait()
	}
	d.mu.Unlock()
}

// encodeArgs stringifies handler arguments for transport onto the
// dispatcher goroutine.
func encodeArgs(args []value.Value) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = encodeArg(a)
	}
	return out
}

func encodeArg(v value.Value) string {
	switch x := v.(type) {
	case value.Integer:
		return "i:" + strconv.FormatInt(x.Value, 10)
	case value.Float:
		return "f:" + strconv.FormatFloat(x.Value, 'g', -1, 64)
	case value.Bool:
		return "b:" + strconv.FormatBool(x.Value)
	case value.Nil:
		return "n:"
	default:
		return "s:" + v.Inspect()
	}
}

// decodeArg rebuilds a primitive from its transport form; anything
// that was not a primitive arrives as its String rendering.
func decodeArg(s string) value.Value {
	tag, rest, ok := strings.Cut(s, ":")
	if !ok {
		return value.Str{Value: s}
	}
	switch tag {
	case "i":
		n, err := strconv.ParseInt(rest, 10, 64)
		if err == nil {
			return value.Integer{Value: n}
		}
	case "f":
		f, err := strconv.ParseFloat(rest, 64)
		if err == nil {
			return value.Float{Value: f}
		}
	case "b":
		return value.Bool{Value: rest == "true"}
	case "n":
		return value.NilValue
	}
	return value.Str{Value: rest}
}
