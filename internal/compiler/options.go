// Package compiler drives the native build: it lowers a parsed (and
// import-inlined) program to Go source via internal/codegen, invokes
// the platform Go toolchain with flags derived from the selected
// optimization preset, and reports the result.
package compiler

import (
	"fmt"
)

// Options are the user-facing compile settings, mirroring the CLI's
// compile flags.
type Options struct {
	Output      string
	OptLevel    string // one of 0,1,2,3,s,z
	Strip       bool
	Static      bool
	Target      string
	Verbose     bool
	JSONPath    string
	PGO         bool
	EmbedModels []string
	Preset      string
}

// FlagSet is the resolved optimization configuration a preset expands
// to. LTO/codegen-units/target-cpu/bitcode are recorded faithfully in
// the build report even where the platform compiler has no direct
// equivalent; the driver maps what it can (see buildFlags and buildEnv).
type FlagSet struct {
	OptLevel     string `json:"opt_level"`
	Strip        bool   `json:"strip"`
	StaticLink   bool   `json:"static_link"`
	LTO          string `json:"lto,omitempty"`
	CodegenUnits int    `json:"-"`
	TargetCPU    string `json:"target_cpu,omitempty"`
	EmbedBitcode bool   `json:"-"`
}

// ResolvePreset expands a named optimization preset. An unknown preset
// is a fatal configuration error.
func ResolvePreset(name string) (FlagSet, error) {
	switch name {
	case "", "none":
		return FlagSet{OptLevel: "0"}, nil
	case "balanced":
		return FlagSet{OptLevel: "2", LTO: "thin"}, nil
	case "aggressive":
		return FlagSet{OptLevel: "3", LTO: "fat", CodegenUnits: 1, Strip: true}, nil
	case "nasa":
		return FlagSet{OptLevel: "3", LTO: "fat", CodegenUnits: 1, Strip: true, TargetCPU: "native", EmbedBitcode: true}, nil
	default:
		return FlagSet{}, fmt.Errorf("unknown optimization preset %q (want none, balanced, aggressive, or nasa)", name)
	}
}

// Resolve merges explicit options over the preset's flag set.
func (o Options) Resolve() (FlagSet, error) {
	fs, err := ResolvePreset(o.Preset)
	if err != nil {
		return FlagSet{}, err
	}
	if o.OptLevel != "" {
		switch o.OptLevel {
		case "0", "1", "2", "3", "s", "z":
			fs.OptLevel = o.OptLevel
		default:
			return FlagSet{}, fmt.Errorf("invalid optimization level %q (want 0,1,2,3,s,z)", o.OptLevel)
		}
	}
	if o.Strip {
		fs.Strip = true
	}
	if o.Static {
		fs.StaticLink = true
	}
	return fs, nil
}
