package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSourceExtHelpers(t *testing.T) {
	if !HasSourceExt("main.ruchy") || HasSourceExt("main.go") {
		t.Fatal("extension detection broken")
	}
	if TrimSourceExt("dir/app.ruchy") != "dir/app" {
		t.Fatal("TrimSourceExt broken")
	}
	if TrimSourceExt("plain") != "plain" {
		t.Fatal("TrimSourceExt should pass through non-source names")
	}
}

func TestLoadProjectMissingFileIsZeroValue(t *testing.T) {
	p, err := LoadProject(filepath.Join(t.TempDir(), ".ruchy.yml"))
	if err != nil || p == nil {
		t.Fatalf("missing project file: %v", err)
	}
	if p.Name != "" {
		t.Fatal("zero value expected")
	}
}

func TestLoadProjectParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".ruchy.yml")
	src := "name: demo\nentry_point: src/main.ruchy\noptimize: balanced\nvm_mode: bytecode\nenv:\n  DEBUG: \"1\"\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := LoadProject(path)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "demo" || p.Optimize != "balanced" || p.VMMode != "bytecode" || p.Env["DEBUG"] != "1" {
		t.Fatalf("project = %+v", p)
	}
}
