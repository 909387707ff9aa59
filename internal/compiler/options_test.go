package compiler

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestPresetExpansion(t *testing.T) {
	cases := map[string]FlagSet{
		"none":     {OptLevel: "0"},
		"balanced": {OptLevel: "2", LTO: "thin"},
		"aggressive": {
			OptLevel: "3", LTO: "fat", CodegenUnits: 1, Strip: true,
		},
		"nasa": {
			OptLevel: "3", LTO: "fat", CodegenUnits: 1, Strip: true,
			TargetCPU: "native", EmbedBitcode: true,
		},
	}
	for name, want := range cases {
		got, err := ResolvePreset(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got != want {
			t.Errorf("%s = %+v, want %+v", name, got, want)
		}
	}
}

func TestUnknownPresetIsFatal(t *testing.T) {
	if _, err := ResolvePreset("ludicrous"); err == nil {
		t.Fatal("unknown preset must be rejected")
	}
}

func TestOptionOverrides(t *testing.T) {
	fs, err := Options{Preset: "balanced", OptLevel: "z", Strip: true}.Resolve()
	if err != nil {
		t.Fatal(err)
	}
	if fs.OptLevel != "z" || !fs.Strip || fs.LTO != "thin" {
		t.Fatalf("resolved = %+v", fs)
	}
	if _, err := (Options{OptLevel: "9"}).Resolve(); err == nil {
		t.Fatal("invalid opt level must be rejected")
	}
}

func TestBuildReportJSONShape(t *testing.T) {
	report := &BuildReport{
		SourceFile:        "x.ruchy",
		BinaryPath:        "x",
		OptimizationLevel: "3",
		BinarySize:        1024,
		CompileTimeMs:     321,
		OptimizationFlags: FlagSet{OptLevel: "3", Strip: true, LTO: "fat", TargetCPU: "native"},
	}
	data, err := report.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	for _, key := range []string{"source_file", "binary_path", "optimization_level", "binary_size", "compile_time_ms", "optimization_flags"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("report missing key %q", key)
		}
	}
	flags := decoded["optimization_flags"].(map[string]any)
	for _, key := range []string{"opt_level", "strip", "static_link", "lto", "target_cpu"} {
		if _, ok := flags[key]; !ok {
			t.Errorf("optimization_flags missing key %q", key)
		}
	}
}

func TestParseTarget(t *testing.T) {
	cases := map[string][2]string{
		"linux/arm64":              {"linux", "arm64"},
		"x86_64-unknown-linux-gnu": {"linux", "amd64"},
		"aarch64-apple-darwin":     {"darwin", "arm64"},
		"x86_64-pc-windows-msvc":   {"windows", "amd64"},
	}
	for in, want := range cases {
		goos, goarch, ok := parseTarget(in)
		if !ok || goos != want[0] || goarch != want[1] {
			t.Errorf("parseTarget(%q) = %s/%s/%v, want %s/%s", in, goos, goarch, ok, want[0], want[1])
		}
	}
	if _, _, ok := parseTarget("mystery"); ok {
		t.Error("unparseable target should report !ok")
	}
}

func TestBuildFlagMapping(t *testing.T) {
	args := buildFlags(FlagSet{OptLevel: "0"}, "")
	if len(args) < 2 || args[0] != "-gcflags" {
		t.Fatalf("opt 0 should disable optimizations: %v", args)
	}
	args = buildFlags(FlagSet{OptLevel: "z"}, "")
	if len(args) < 2 || args[0] != "-ldflags" {
		t.Fatalf("size opt should strip: %v", args)
	}
	args = buildFlags(FlagSet{OptLevel: "2", Strip: true}, "profile.pgo")
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "-ldflags") || !strings.Contains(joined, "-pgo") {
		t.Fatalf("strip+pgo mapping: %v", args)
	}
}
