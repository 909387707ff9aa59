package reactive

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/paiml/ruchy-sub014/internal/config"
	"github.com/paiml/ruchy-sub014/internal/value"
)

// Version is the session export format version triple. Imports with a
// different major version are rejected.
type Version struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
	Patch int `json:"patch"`
}

// CurrentVersion is the format this build writes.
var CurrentVersion = Version{Major: 1, Minor: 0, Patch: 0}

// TaggedValue is the serializable rendering of a runtime value: a type
// tag plus a payload, kept human-readable on purpose so a future major
// version can inspect stored state before rejecting it.
type TaggedValue struct {
	Type     string                 `json:"type"`
	Value    string                 `json:"value,omitempty"`
	Items    []TaggedValue          `json:"items,omitempty"`
	Fields   map[string]TaggedValue `json:"fields,omitempty"`
	TypeName string                 `json:"type_name,omitempty"`
	Variant  string                 `json:"variant,omitempty"`
}

// ExportedDef is one registry row in serializable form.
type ExportedDef struct {
	Name  string      `json:"name"`
	DefID uint64      `json:"def_id"`
	Cell  string      `json:"cell"`
	Value TaggedValue `json:"value"`
}

// ExportedCell is one cell-cache row in serializable form.
type ExportedCell struct {
	CellID     string `json:"cell_id"`
	Source     string `json:"source"`
	SourceHash string `json:"source_hash"`
	Output     string `json:"output"`
	ExecutedAt string `json:"executed_at"`
	Success    bool   `json:"success"`
}

// SessionState is the full export record.
type SessionState struct {
	Version       Version        `json:"version"`
	CellCache     []ExportedCell `json:"cell_cache"`
	Definitions   []ExportedDef  `json:"definitions"`
	Graph         [][2]string    `json:"graph"`
	MemoryCounter uint64         `json:"memory_counter"`
}

// ExportSessionState captures registry, cell cache, and graph into a
// serializable record.
func (s *Session) ExportSessionState() *SessionState {
	state := &SessionState{Version: CurrentVersion, MemoryCounter: s.registry.Memory()}
	for name, e := range s.registry.Entries() {
		state.Definitions = append(state.Definitions, ExportedDef{
			Name:  name,
			DefID: uint64(e.ID),
			Cell:  e.Cell,
			Value: encodeValue(e.Val),
		})
	}
	for id, c := range s.cells {
		state.CellCache = append(state.CellCache, ExportedCell{
			CellID:     id,
			Source:     c.Source,
			SourceHash: c.SourceHash,
			Output:     c.Output,
			ExecutedAt: c.ExecutedAt.Format(time.RFC3339Nano),
			Success:    c.Success,
		})
	}
	state.Graph = s.graph.Edges()
	return state
}

// ImportSessionState validates the record's version and repopulates
// registry, cell cache, and graph. It fails when the major version
// differs or when definitions, cell_cache and graph are all absent; a
// record missing only some of them is accepted, and the missing parts
// import as empty.
func (s *Session) ImportSessionState(state *SessionState) error {
	if state == nil {
		return fmt.Errorf("nil session state")
	}
	if state.Version.Major != CurrentVersion.Major {
		return fmt.Errorf("incompatible session version %d.%d.%d (this is %s, format %d.x)",
			state.Version.Major, state.Version.Minor, state.Version.Patch,
			config.Version, CurrentVersion.Major)
	}
	if state.Definitions == nil && state.CellCache == nil && state.Graph == nil {
		return fmt.Errorf("session state missing required fields")
	}
	s.registry = NewRegistry()
	for _, def := range state.Definitions {
		s.registry.Define(def.Name, decodeValue(def.Value), def.Cell)
	}
	s.registry.setMemory(state.MemoryCounter)
	s.cells = map[string]*CellState{}
	for _, c := range state.CellCache {
		at, _ := time.Parse(time.RFC3339Nano, c.ExecutedAt)
		s.cells[c.CellID] = &CellState{
			Source:     c.Source,
			SourceHash: c.SourceHash,
			Output:     c.Output,
			ExecutedAt: at,
			Success:    c.Success,
		}
	}
	s.graph.SetEdges(state.Graph)
	s.syncEnv()
	return nil
}

// MarshalState renders the export record as JSON.
func (s *Session) MarshalState() ([]byte, error) {
	return json.MarshalIndent(s.ExportSessionState(), "", "  ")
}

// UnmarshalState parses and imports a JSON export record.
func (s *Session) UnmarshalState(data []byte) error {
	var state SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return err
	}
	return s.ImportSessionState(&state)
}

func encodeValue(v value.Value) TaggedValue {
	switch x := v.(type) {
	case value.Integer, value.Float, value.Bool, value.Byte, value.Char:
		return TaggedValue{Type: string(x.Kind()), Value: x.Inspect()}
	case value.Str:
		return TaggedValue{Type: "String", Value: x.Value}
	case value.Nil:
		return TaggedValue{Type: "Nil"}
	case *value.Array:
		items := make([]TaggedValue, len(x.Elements))
		for i, e := range x.Elements {
			items[i] = encodeValue(e)
		}
		return TaggedValue{Type: "Array", Items: items}
	case *value.Tuple:
		items := make([]TaggedValue, len(x.Elements))
		for i, e := range x.Elements {
			items[i] = encodeValue(e)
		}
		return TaggedValue{Type: "Tuple", Items: items}
	case *value.Object:
		fields := make(map[string]TaggedValue, len(x.Fields))
		for k, fv := range x.Fields {
			fields[k] = encodeValue(fv)
		}
		return TaggedValue{Type: "Object", Fields: fields}
	case *value.StructVal:
		fields := make(map[string]TaggedValue, len(x.Fields))
		for k, fv := range x.Fields {
			fields[k] = encodeValue(fv)
		}
		return TaggedValue{Type: "Struct", TypeName: x.TypeName, Fields: fields}
	case *value.EnumVal:
		items := make([]TaggedValue, len(x.Payload))
		for i, e := range x.Payload {
			items[i] = encodeValue(e)
		}
		return TaggedValue{Type: "Enum", TypeName: x.TypeName, Variant: x.Variant, Items: items}
	case value.RangeVal:
		items := []TaggedValue{encodeValue(x.Start), encodeValue(x.End)}
		variant := "exclusive"
		if x.Inclusive {
			variant = "inclusive"
		}
		return TaggedValue{Type: "Range", Variant: variant, Items: items}
	default:
		// Closures, actors, builtins: not serializable; keep a
		// human-readable placeholder so imports surface the loss.
		return TaggedValue{Type: "Opaque", Value: v.Inspect()}
	}
}

func decodeValue(t TaggedValue) value.Value {
	switch t.Type {
	case "Integer":
		var n int64
		fmt.Sscanf(t.Value, "%d", &n)
		return value.Integer{Value: n}
	case "Float":
		var f float64
		fmt.Sscanf(t.Value, "%g", &f)
		return value.Float{Value: f}
	case "Bool":
		return value.Bool{Value: t.Value == "true"}
	case "String":
		return value.Str{Value: t.Value}
	case "Nil":
		return value.NilValue
	case "Byte":
		var b int
		fmt.Sscanf(t.Value, "%db", &b)
		return value.Byte{Value: byte(b)}
	case "Char":
		for _, r := range t.Value {
			return value.Char{Value: r}
		}
		return value.Char{}
	case "Array":
		elems := make([]value.Value, len(t.Items))
		for i, it := range t.Items {
			elems[i] = decodeValue(it)
		}
		return &value.Array{Elements: elems}
	case "Tuple":
		elems := make([]value.Value, len(t.Items))
		for i, it := range t.Items {
			elems[i] = decodeValue(it)
		}
		return &value.Tuple{Elements: elems}
	case "Object":
		fields := make(map[string]value.Value, len(t.Fields))
		for k, fv := range t.Fields {
			fields[k] = decodeValue(fv)
		}
		return &value.Object{Fields: fields}
	case "Struct":
		fields := make(map[string]value.Value, len(t.Fields))
		for k, fv := range t.Fields {
			fields[k] = decodeValue(fv)
		}
		return &value.StructVal{TypeName: t.TypeName, Fields: fields}
	case "Enum":
		payload := make([]value.Value, len(t.Items))
		for i, it := range t.Items {
			payload[i] = decodeValue(it)
		}
		return &value.EnumVal{TypeName: t.TypeName, Variant: t.Variant, Payload: payload}
	case "Range":
		r := value.RangeVal{Inclusive: t.Variant == "inclusive"}
		if len(t.Items) == 2 {
			r.Start = decodeValue(t.Items[0])
			r.End = decodeValue(t.Items[1])
		}
		return r
	default:
		return value.Str{Value: t.Value}
	}
}
