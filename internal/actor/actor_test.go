package actor_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/paiml/ruchy-sub014/internal/actor"
	"github.com/paiml/ruchy-sub014/internal/interp"
	"github.com/paiml/ruchy-sub014/internal/lexer"
	"github.com/paiml/ruchy-sub014/internal/parser"
	"github.com/paiml/ruchy-sub014/internal/value"
)

func newInterp() (*interp.Interp, *actor.Runtime, *bytes.Buffer) {
	in := interp.New()
	rt := actor.NewRuntime()
	in.Actors = rt
	var out bytes.Buffer
	in.Out = &out
	return in, rt, &out
}

func run(t *testing.T, in *interp.Interp, src string) (value.Value, error) {
	t.Helper()
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	if p.Errors().HasErrors() {
		t.Fatalf("parse errors: %v", p.Errors().Items()[0])
	}
	return in.Run(prog)
}

const counterSrc = `
actor Counter {
    count: i32 = 0
    receive {
        Inc => { self.count = self.count + 1; self.count }
        Add(n: i32) => { self.count = self.count + n; self.count }
        Get => { self.count }
    }
}
`

func TestCounterRoundTrip(t *testing.T) {
	in, _, _ := newInterp()
	v, err := run(t, in, counterSrc+`
let c = spawn Counter
c ! Inc
c ! Inc
c <? Inc
`)
	if err != nil {
		t.Fatal(err)
	}
	n, ok := v.(value.Integer)
	if !ok || n.Value != 3 {
		t.Fatalf("final ask = %s, want Integer(3)", v.Inspect())
	}
}

func TestSendReturnsNilAskReturnsValue(t *testing.T) {
	in, _, _ := newInterp()
	v, err := run(t, in, counterSrc+`
let c = spawn Counter
let sent = c ! Add(5)
let got = c <? Get;
(sent, got)
`)
	if err != nil {
		t.Fatal(err)
	}
	tup := v.(*value.Tuple)
	if _, isNil := tup.Elements[0].(value.Nil); !isNil {
		t.Fatalf("send returned %s, want nil", tup.Elements[0].Inspect())
	}
	if got := tup.Elements[1].(value.Integer).Value; got != 5 {
		t.Fatalf("ask Get = %d, want 5", got)
	}
}

func TestTypedParamValidation(t *testing.T) {
	in, _, _ := newInterp()
	_, err := run(t, in, counterSrc+`
let c = spawn Counter
c ! Add("oops")
`)
	if err == nil {
		t.Fatal("expected a type error for a String where i32 is declared")
	}
	msg := err.Error()
	for _, want := range []string{"Counter", "Add", "Integer", "String"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q should identify %q", msg, want)
		}
	}
}

func TestUnknownParamTypeAcceptsAnything(t *testing.T) {
	in, _, _ := newInterp()
	_, err := run(t, in, `
actor Sink {
    receive { Put(x: Whatever) => { x } }
}
let s = spawn Sink
s <? Put([1, 2, 3])
`)
	if err != nil {
		t.Fatalf("unknown type names must accept any value: %v", err)
	}
}

func TestSpawnArgumentsOverrideDefaults(t *testing.T) {
	in, _, _ := newInterp()
	v, err := run(t, in, counterSrc+`
let c = spawn Counter(40)
c <? Add(2)
`)
	if err != nil {
		t.Fatal(err)
	}
	if v.(value.Integer).Value != 42 {
		t.Fatalf("got %s, want 42", v.Inspect())
	}
}

func TestHooks(t *testing.T) {
	in, _, out := newInterp()
	_, err := run(t, in, `
actor Greeter {
    receive { Hi => { println("hi") } }
    hook on_start { println("started") }
    hook on_stop { println("stopped") }
}
let g = spawn Greeter
g ! Hi
g.stop()
`)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "started\nhi\nstopped\n" {
		t.Fatalf("output = %q", got)
	}
}

func TestStopRemovesActor(t *testing.T) {
	in, _, _ := newInterp()
	_, err := run(t, in, counterSrc+`
let c = spawn Counter
c.stop()
c ! Inc
`)
	if err == nil || !strings.Contains(err.Error(), "not running") {
		t.Fatalf("err = %v, want not-running error", err)
	}
}

func TestMissingHandler(t *testing.T) {
	in, _, _ := newInterp()
	_, err := run(t, in, counterSrc+`
let c = spawn Counter
c ! Nope
`)
	if err == nil || !strings.Contains(err.Error(), "no handler") {
		t.Fatalf("err = %v", err)
	}
}

func TestGuardedArms(t *testing.T) {
	in, _, _ := newInterp()
	v, err := run(t, in, `
actor Clamp {
    value: i32 = 0
    receive {
        Set(n: i32) if n > 100 => { self.value = 100; self.value }
        Set(n: i32) => { self.value = n; self.value }
    }
}
let c = spawn Clamp
c <? Set(500)
`)
	if err != nil {
		t.Fatal(err)
	}
	if v.(value.Integer).Value != 100 {
		t.Fatalf("guarded arm should clamp, got %s", v.Inspect())
	}
}

func TestAsyncActorDrain(t *testing.T) {
	in, rt, _ := newInterp()
	v, err := run(t, in, `
async actor Acc {
    total: i32 = 0
    receive { Add(n: i32) => { self.total = self.total + n } }
}
let a = spawn Acc
a ! Add(1)
a ! Add(2)
a ! Add(3)
a
`)
	if err != nil {
		t.Fatal(err)
	}
	rt.Drain()
	handle := v.(value.ActorHandle)
	if !handle.Async {
		t.Fatal("actor should be async")
	}
	// Ask is a runtime error on async actors.
	if _, err := rt.Ask(in, handle, "Add", nil); err == nil {
		t.Fatal("ask on an async actor must fail")
	}
}

func TestAsyncSpawnUnderAsyncBlock(t *testing.T) {
	in, rt, _ := newInterp()
	v, err := run(t, in, counterSrc+`
async { spawn Counter }
`)
	if err != nil {
		t.Fatal(err)
	}
	rt.Drain()
	if h, ok := v.(value.ActorHandle); !ok || !h.Async {
		t.Fatalf("spawn under async block should be async, got %s", v.Inspect())
	}
}

func TestSupervisorOneForOneRestart(t *testing.T) {
	in, rt, _ := newInterp()
	v, err := run(t, in, `
actor Fragile {
    count: i32 = 0
    receive {
        Inc => { self.count = self.count + 1; self.count }
        Boom => { throw "crash" }
        Get => { self.count }
    }
    hook on_restart { println("restarted") }
}
supervisor Guard {
    strategy one_for_one
    children [Fragile]
}
spawn Guard
`)
	if err != nil {
		t.Fatal(err)
	}
	sup := v.(value.ActorHandle)
	children, ok := rt.Children(sup)
	if !ok || len(children) != 1 {
		t.Fatalf("children = %v", children)
	}
	child, _ := rt.HandleFor(children[0])

	if err := rt.Send(in, child, "Inc", nil); err != nil {
		t.Fatal(err)
	}
	if err := rt.Send(in, child, "Boom", nil); err == nil {
		t.Fatal("Boom should propagate its error to the sender")
	}
	// After the restart the counter is back at its initial value.
	got, err := rt.Ask(in, child, "Get", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.(value.Integer).Value != 0 {
		t.Fatalf("state after restart = %s, want 0", got.Inspect())
	}
}

func TestUnknownStrategyRejected(t *testing.T) {
	in, _, _ := newInterp()
	_, err := run(t, in, `
supervisor Bad { strategy whenever children [] }
`)
	if err == nil {
		t.Fatal("unknown strategy should be rejected")
	}
}
