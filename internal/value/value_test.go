package value

import "testing"

func TestTruthiness(t *testing.T) {
	cases := []struct {
		v    Value
		want bool
	}{
		{Bool{Value: false}, false},
		{Nil{}, false},
		{Bool{Value: true}, true},
		{Integer{Value: 0}, true},
		{Float{Value: 0}, true},
		{Str{Value: ""}, true},
		{&Array{}, true},
	}
	for _, c := range cases {
		if Truthy(c.v) != c.want {
			t.Errorf("Truthy(%s) != %v", c.v.Inspect(), c.want)
		}
	}
}

func TestEqualityRules(t *testing.T) {
	if Equal(Integer{Value: 1}, Float{Value: 1}) {
		t.Error("Integer and Float must never be equal")
	}
	if Equal(Str{Value: "1"}, Integer{Value: 1}) {
		t.Error("String and Integer must never be equal")
	}
	if !Equal(&Array{Elements: []Value{Integer{Value: 1}}}, &Array{Elements: []Value{Integer{Value: 1}}}) {
		t.Error("arrays compare structurally")
	}
	if !Equal(
		&StructVal{TypeName: "P", Fields: map[string]Value{"x": Integer{Value: 1}}},
		&StructVal{TypeName: "P", Fields: map[string]Value{"x": Integer{Value: 1}}},
	) {
		t.Error("structs compare structurally")
	}
	if Equal(
		&EnumVal{TypeName: "Option", Variant: "Some", Payload: []Value{Integer{Value: 1}}},
		&EnumVal{TypeName: "Option", Variant: "None"},
	) {
		t.Error("different variants are unequal")
	}
}

func TestEnvironmentScoping(t *testing.T) {
	global := NewEnvironment()
	global.Define("x", Integer{Value: 1})
	child := NewEnclosedEnvironment(global)

	if v, ok := child.Get("x"); !ok || v.(Integer).Value != 1 {
		t.Fatal("lookup should walk to outer frame")
	}

	child.Define("x", Integer{Value: 2})
	if v, _ := child.Get("x"); v.(Integer).Value != 2 {
		t.Fatal("define shadows")
	}
	if v, _ := global.Get("x"); v.(Integer).Value != 1 {
		t.Fatal("shadowing must not touch the outer binding")
	}
}

func TestSetVariableUpdatesNearestEnclosing(t *testing.T) {
	global := NewEnvironment()
	global.Define("x", Integer{Value: 1})
	child := NewEnclosedEnvironment(global)

	child.SetVariable("x", Integer{Value: 9})
	if v, _ := global.Get("x"); v.(Integer).Value != 9 {
		t.Fatal("set_variable should update the enclosing definition")
	}

	child.SetVariable("fresh", Integer{Value: 5})
	if _, ok := global.store["fresh"]; ok {
		t.Fatal("missing names insert into the current frame, not the outer one")
	}
	if v, ok := child.Get("fresh"); !ok || v.(Integer).Value != 5 {
		t.Fatal("fresh binding should live in the child frame")
	}
}

func TestObjectMutInteriorMutability(t *testing.T) {
	o := NewObjectMut(map[string]Value{"n": Integer{Value: 1}})
	o.Set("n", Integer{Value: 2})
	if v, _ := o.Get("n"); v.(Integer).Value != 2 {
		t.Fatal("Set should be visible through Get")
	}
	snap := o.Snapshot()
	o.Set("n", Integer{Value: 3})
	if snap["n"].(Integer).Value != 2 {
		t.Fatal("snapshot must not alias live fields")
	}
	o.Replace(map[string]Value{"n": Integer{Value: 0}})
	if v, _ := o.Get("n"); v.(Integer).Value != 0 {
		t.Fatal("Replace swaps the field map")
	}
}
