package tests

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/paiml/ruchy-sub014/internal/config"
)

// buildCLI compiles the real ruchy binary once per test binary.
func buildCLI(t *testing.T, name string) string {
	t.Helper()
	projectRoot, err := filepath.Abs("..")
	if err != nil {
		t.Fatalf("failed to get project root: %v", err)
	}
	binaryPath := filepath.Join(projectRoot, name)
	build := exec.Command("go", "build", "-o", binaryPath, "./cmd/ruchy")
	build.Dir = projectRoot
	if output, err := build.CombinedOutput(); err != nil {
		t.Fatalf("failed to build binary: %v\n%s", err, output)
	}
	t.Cleanup(func() { os.Remove(binaryPath) })
	return binaryPath
}

// fixtureFiles lists every .ruchy source here with a matching .want.
func fixtureFiles(t *testing.T) []string {
	t.Helper()
	var files []string
	err := filepath.Walk(".", func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || !config.HasSourceExt(path) {
			return err
		}
		if _, err := os.Stat(config.TrimSourceExt(path) + ".want"); err == nil {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no fixture files found")
	}
	return files
}

// TestFunctional runs each fixture through the built CLI and compares
// stdout exactly — this tests what users see, end to end.
func TestFunctional(t *testing.T) {
	binary := buildCLI(t, "ruchy-test-binary")
	for _, file := range fixtureFiles(t) {
		file := file
		t.Run(file, func(t *testing.T) {
			want, err := os.ReadFile(config.TrimSourceExt(file) + ".want")
			if err != nil {
				t.Fatal(err)
			}
			var stdout, stderr bytes.Buffer
			cmd := exec.Command(binary, "run", file)
			cmd.Stdout = &stdout
			cmd.Stderr = &stderr
			if err := cmd.Run(); err != nil {
				t.Fatalf("run failed: %v\nstderr:\n%s", err, stderr.String())
			}
			if stdout.String() != string(want) {
				t.Errorf("output mismatch:\n--- got ---\n%s\n--- want ---\n%s", stdout.String(), want)
			}
		})
	}
}

// TestFunctionalBytecodeBackend re-runs the fixtures with the
// direct-threaded engine selected; outputs must be identical to the
// tree-walk's.
func TestFunctionalBytecodeBackend(t *testing.T) {
	binary := buildCLI(t, "ruchy-test-binary-vm")
	for _, file := range fixtureFiles(t) {
		file := file
		t.Run(file, func(t *testing.T) {
			want, err := os.ReadFile(config.TrimSourceExt(file) + ".want")
			if err != nil {
				t.Fatal(err)
			}
			var stdout bytes.Buffer
			cmd := exec.Command(binary, "run", file)
			cmd.Stdout = &stdout
			cmd.Env = append(os.Environ(), "RUCHY_VM_MODE=bytecode")
			if err := cmd.Run(); err != nil {
				t.Fatalf("run failed: %v", err)
			}
			if stdout.String() != string(want) {
				t.Errorf("bytecode output mismatch:\n--- got ---\n%s\n--- want ---\n%s", stdout.String(), want)
			}
		})
	}
}
