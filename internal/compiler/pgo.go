package compiler

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// CompileWithPGO runs the two-phase profile-guided build:
//
//  1. build an instrumented binary at `<output>-profiled`,
//  2. wait for the user to run it on a representative workload and
//     confirm on standard input,
//  3. rebuild with the collected profile and target-cpu=native.
//
// stdin/stdout are parameters so the REPL and tests can script the
// confirmation step.
func CompileWithPGO(sourcePath string, opts Options, stdin io.Reader, log io.Writer) (*BuildReport, error) {
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
	profiledOut := output + "-profiled"
	profileDir := filepath.Dir(output)
	profilePath := filepath.Join(profileDir, "default.pgo")

	goSrc, err := generate(sourcePath)
	if err != nil {
		return nil, err
	}

	// Phase 1: instrumented build.
	if err := buildGo(goSrc, profiledOut, flags, opts, "", log); err != nil {
		return nil, err
	}
	fmt.Fprintf(log, "profiled binary written to %s\n", profiledOut)
	fmt.Fprintf(log, "run it on a representative workload with CPU profiling enabled,\n")
	fmt.Fprintf(log, "save the profile as %s, then press Enter to continue: ", profilePath)
	bufio.NewReader(stdin).ReadString('\n')

	// Phase 2: optimized rebuild against the profile.
	pgoProfile := profilePath
	if _, err := os.Stat(profilePath); err != nil {
		fmt.Fprintf(log, "no profile found at %s; building without PGO data\n", profilePath)
		pgoProfile = ""
	}
	flags.TargetCPU = "native"

	started := time.Now()
	if err := buildGo(goSrc, output, flags, opts, pgoProfile, log); err != nil {
		return nil, err
	}
	elapsed := time.Since(started)

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
