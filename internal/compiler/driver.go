package compiler

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/tools/imports"

	"github.com/paiml/ruchy-sub014/internal/codegen"
	"github.com/paiml/ruchy-sub014/internal/config"
	"github.com/paiml/ruchy-sub014/internal/modules"
)

// CompilerError carries the platform compiler's exit code and stderr
// verbatim.
type CompilerError struct {
	ExitCode int
	Stderr   string
}

func (e *CompilerError) Error() string {
	return fmt.Sprintf("platform compiler failed (exit %d):\n%s", e.ExitCode, e.Stderr)
}

// VerifyCompiler checks the platform Go toolchain is installed before
// any work starts.
func VerifyCompiler() error {
	if _, err := exec.LookPath("go"); err != nil {
		return fmt.Errorf("platform compiler not found: install a Go toolchain and ensure `go` is on PATH")
	}
	return nil
}

// DefaultOutput derives the binary path from the input file.
func DefaultOutput(sourcePath string) string {
	return config.TrimSourceExt(sourcePath)
}

// CompileToBinary builds sourcePath into a native executable per opts
// and returns the build report. The generated Go working tree lives in
// a temporary directory removed on every exit path.
func CompileToBinary(sourcePath string, opts Options, log io.Writer) (*BuildReport, error) {
	if err := VerifyCompiler(); err != nil {
		return nil, err
	}
	flags, err := opts.Resolve()
	if err != nil {
		return nil, err
	}
	output := opts.Output
	if output == "" {
		output = DefaultOutput(sourcePath)
	}

	goSrc, err := generate(sourcePath)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	if err := buildGo(goSrc, output, flags, opts, "", log); err != nil {
		return nil, err
	}
	elapsed := time.Since(started)

	if len(opts.EmbedModels) > 0 {
		if err := appendBlobs(output, opts.EmbedModels); err != nil {
			return nil, err
		}
	}

	info, err := os.Stat(output)
	if err != nil {
		return nil, err
	}
	report := &BuildReport{
		SourceFile:        sourcePath,
		BinaryPath:        output,
		OptimizationLevel: flags.OptLevel,
		BinarySize:        info.Size(),
		CompileTimeMs:     elapsed.Milliseconds(),
		OptimizationFlags: flags,
	}
	if opts.JSONPath != "" {
		if err := report.WriteFile(opts.JSONPath); err != nil {
			return nil, err
		}
	}
	return report, nil
}

// generate parses the source, inlines its imports, and lowers the
// result to formatted Go text.
func generate(sourcePath string) (string, error) {
	loader := modules.NewLoader()
	abs, err := filepath.Abs(sourcePath)
	if err != nil {
		return "", err
	}
	prog, err := loader.ParseFile(abs)
	if err != nil {
		return "", err
	}
	inlined, err := loader.InlineImports(abs, prog)
	if err != nil {
		return "", err
	}
	src, err := codegen.Generate(inlined)
	if err != nil {
		return "", err
	}
	formatted, err := imports.Process("main.go", []byte(src), nil)
	if err != nil {
		// The generated text should always format; surface it raw so a
		// codegen bug is debuggable.
		return "", fmt.Errorf("formatting generated code: %w", err)
	}
	return string(formatted), nil
}

// buildGo writes the generated module into a scoped temp dir and runs
// the platform compiler. pgoProfile, when non-empty, is passed through
// to -pgo.
func buildGo(goSrc, output string, flags FlagSet, opts Options, pgoProfile string, log io.Writer) error {
	workDir, err := os.MkdirTemp("", "ruchy-build-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(workDir)

	if err := os.WriteFile(filepath.Join(workDir, "go.mod"), []byte("module ruchy-app\n\ngo 1.23\n"), 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(workDir, "main.go"), []byte(goSrc), 0o644); err != nil {
		return err
	}

	absOut, err := filepath.Abs(output)
	if err != nil {
		return err
	}
	args := []string{"build", "-trimpath", "-o", absOut}
	args = append(args, buildFlags(flags, pgoProfile)...)
	args = append(args, ".")

	cmd := exec.Command("go", args...)
	cmd.Dir = workDir
	cmd.Env = buildEnv(flags, opts)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if opts.Verbose && log != nil {
		fmt.Fprintf(log, "go %s\n", strings.Join(args, " "))
	}
	if err := cmd.Run(); err != nil {
		code := 1
		if exitErr, ok := err.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
		}
		return &CompilerError{ExitCode: code, Stderr: stderr.String()}
	}
	if runtime.GOOS != "windows" {
		if err := os.Chmod(absOut, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// buildFlags maps the resolved flag set onto go build arguments:
// opt 0 disables inlining and register optimization, s/z and strip
// drop symbol tables and DWARF, PGO threads through -pgo. LTO and
// codegen-unit choices have no direct Go toolchain equivalent; they
// are recorded in the report only.
func buildFlags(flags FlagSet, pgoProfile string) []string {
	var args []string
	switch flags.OptLevel {
	case "0":
		args = append(args, "-gcflags", "all=-N -l")
	case "s", "z":
		args = append(args, "-ldflags", "-s -w")
	}
	if flags.Strip && flags.OptLevel != "s" && flags.OptLevel != "z" {
		args = append(args, "-ldflags", "-s -w")
	}
	if pgoProfile != "" {
		args = append(args, "-pgo", pgoProfile)
	}
	return args
}

func buildEnv(flags FlagSet, opts Options) []string {
	env := os.Environ()
	if flags.StaticLink {
		env = append(env, "CGO_ENABLED=0")
	}
	if flags.TargetCPU == "native" && runtime.GOARCH == "amd64" {
		env = append(env, "GOAMD64=v3")
	}
	if opts.Target != "" {
		if goos, goarch, ok := parseTarget(opts.Target); ok {
			env = append(env, "GOOS="+goos, "GOARCH="+goarch)
		}
	}
	return env
}

// parseTarget accepts `goos/goarch` and the common `arch-vendor-os`
// triple spellings.
func parseTarget(target string) (string, string, bool) {
	if goos, goarch, ok := strings.Cut(target, "/"); ok {
		return goos, goarch, true
	}
	parts := strings.Split(target, "-")
	if len(parts) < 2 {
		return "", "", false
	}
	arch := map[string]string{
		"x86_64":  "amd64",
		"aarch64": "arm64",
		"arm64":   "arm64",
		"riscv64": "riscv64",
	}[parts[0]]
	if arch == "" {
		return "", "", false
	}
	goos := "linux"
	for _, p := range parts[1:] {
		switch {
		case strings.Contains(p, "linux"):
			goos = "linux"
		case strings.Contains(p, "darwin"), strings.Contains(p, "apple"):
			goos = "darwin"
		case strings.Contains(p, "windows"):
			goos = "windows"
		}
	}
	return goos, arch, true
}

// appendBlobs appends opaque model blobs to the built binary.
func appendBlobs(output string, paths []string) error {
	f, err := os.OpenFile(output, os.O_APPEND|os.O_WRONLY, 0o755)
	if err != nil {
		return err
	}
	defer f.Close()
	for _, p := range paths {
		blob, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("embedding %s: %w", p, err)
		}
		if _, err := f.Write(blob); err != nil {
			return err
		}
	}
	return nil
}
