// Command ruchy is the toolchain front end: run, format, compile,
// repl, and test over .ruchy sources. It stays a thin dispatcher; the
// engineering lives in the internal packages.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/paiml/ruchy-sub014/internal/backend"
	"github.com/paiml/ruchy-sub014/internal/compiler"
	"github.com/paiml/ruchy-sub014/internal/config"
	"github.com/paiml/ruchy-sub014/internal/lexer"
	"github.com/paiml/ruchy-sub014/internal/parser"
	"github.com/paiml/ruchy-sub014/internal/pipeline"
	"github.com/paiml/ruchy-sub014/internal/printer"
	"github.com/paiml/ruchy-sub014/internal/reactive"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "format":
		os.Exit(cmdFormat(os.Args[2:]))
	case "compile":
		os.Exit(cmdCompile(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl())
	case "test":
		os.Exit(cmdTest(os.Args[2:]))
	case "version", "--version":
		fmt.Println("ruchy", config.Version)
	case "help", "--help", "-h":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: ruchy <command> [args]

commands:
  run <file>                 parse and interpret a file
  format <file> [--check]    format a file in place, or verify formatting
  compile <file> [flags]     build a native binary
  repl                       interactive loop
  test [dir]                 run every source file under dir (default tests/)
  version                    print the toolchain version`)
}

func fail(summary string, err error) int {
	fmt.Fprintln(os.Stderr, summary)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
	}
	return 1
}

func runFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	ctx := pipeline.NewPipelineContext(path, string(src))
	p := pipeline.New(
		pipeline.ParseStage,
		backend.NewExecutionProcessor(backend.Select(os.Stdout)),
	)
	ctx = p.Run(ctx)
	if ctx.HasErrors() {
		items := ctx.Diagnostics.Items()
		for _, d := range items[1:] {
			fmt.Fprintln(os.Stderr, d.Error())
		}
		return items[0]
	}
	return nil
}

func cmdRun(args []string) int {
	if len(args) < 1 {
		return fail("run: missing source file", nil)
	}
	if err := runFile(args[0]); err != nil {
		return fail(fmt.Sprintf("error running %s", args[0]), err)
	}
	return 0
}

func cmdFormat(args []string) int {
	fs := flag.NewFlagSet("format", flag.ExitOnError)
	check := fs.Bool("check", false, "verify formatting without rewriting")
	fs.Parse(args)
	if fs.NArg() < 1 {
		return fail("format: missing source file", nil)
	}
	path := fs.Arg(0)
	src, err := os.ReadFile(path)
	if err != nil {
		return fail("format: cannot read file", err)
	}
	p := parser.New(lexer.New(string(src)))
	prog := p.ParseProgram()
	if p.Errors().HasErrors() {
		return fail(fmt.Sprintf("format: %s has syntax errors", path), p.Errors().Items()[0])
	}
	formatted := printer.Format(prog)
	if *check {
		if formatted != string(src) {
			fmt.Fprintf(os.Stderr, "%s is not formatted\n", path)
			return 1
		}
		return 0
	}
	if formatted == string(src) {
		return 0
	}
	if err := os.WriteFile(path, []byte(formatted), 0o644); err != nil {
		return fail("format: cannot write file", err)
	}
	return 0
}

func cmdCompile(args []string) int {
	fs := flag.NewFlagSet("compile", flag.ExitOnError)
	var opts compiler.Options
	var embed string
	fs.StringVar(&opts.Output, "output", "", "output binary path")
	fs.StringVar(&opts.OptLevel, "opt", "", "optimization level (0,1,2,3,s,z)")
	fs.BoolVar(&opts.Strip, "strip", false, "strip debug symbols")
	fs.BoolVar(&opts.Static, "static", false, "static linking")
	fs.StringVar(&opts.Target, "target", "", "target triple")
	fs.BoolVar(&opts.Verbose, "verbose", false, "verbose compiler output")
	fs.StringVar(&opts.JSONPath, "json", "", "write a JSON build report")
	fs.BoolVar(&opts.PGO, "pgo", false, "two-phase profile-guided optimization")
	fs.StringVar(&embed, "embed-models", "", "comma-separated blobs to append")
	fs.StringVar(&opts.Preset, "optimize", "", "optimization preset (none, balanced, aggressive, nasa)")
	fs.Parse(args)
	if fs.NArg() < 1 {
		return fail("compile: missing source file", nil)
	}
	if embed != "" {
		opts.EmbedModels = strings.Split(embed, ",")
	}

	var report *compiler.BuildReport
	var err error
	if opts.PGO {
		report, err = compiler.CompileWithPGO(fs.Arg(0), opts, os.Stdin, os.Stderr)
	} else {
		report, err = compiler.CompileToBinary(fs.Arg(0), opts, os.Stderr)
	}
	if err != nil {
		return fail(fmt.Sprintf("compile: building %s failed", fs.Arg(0)), err)
	}
	fmt.Println(report.BinaryPath)
	return 0
}

// cmdRepl runs a reactive session line-by-line so definitions persist
// and later lines can cascade over earlier ones. A `session_file` in
// the project config makes checkpoints durable across runs.
func cmdRepl() int {
	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	in := backend.NewInterp(os.Stdout, "<stdin>")
	var session *reactive.Session
	if project, err := config.LoadProject(".ruchy.yml"); err == nil && project.SessionFile != "" {
		session, err = reactive.NewPersistentSession(in, project.SessionFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "cannot open session store:", err)
			return 1
		}
	} else {
		session = reactive.NewSession(in)
	}
	scanner := bufio.NewScanner(os.Stdin)
	n := 0
	for {
		if interactive {
			fmt.Print("ruchy> ")
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == ":quit" || line == ":q" {
			break
		}
		if line == ":checkpoint" {
			fmt.Println(session.Checkpoint())
			continue
		}
		if rest, ok := strings.CutPrefix(line, ":restore "); ok {
			if err := session.Restore(strings.TrimSpace(rest)); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
			continue
		}
		n++
		resp := session.Execute(fmt.Sprintf("repl-%d", n), line)
		if !resp.Success {
			fmt.Fprintln(os.Stderr, resp.Error)
			continue
		}
		if interactive && resp.Value != "" && resp.Value != "nil" {
			fmt.Println(resp.Value)
		}
	}
	return 0
}

func cmdTest(args []string) int {
	dir := "tests"
	if len(args) > 0 {
		dir = args[0]
	}
	config.IsTestMode = true
	failures := 0
	total := 0
	filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || !config.HasSourceExt(path) {
			return nil
		}
		total++
		if runErr := runFile(path); runErr != nil {
			failures++
			fmt.Fprintf(os.Stderr, "FAIL %s: %s\n", path, runErr)
		} else {
			fmt.Printf("ok   %s\n", path)
		}
		return nil
	})
	fmt.Printf("%d passed, %d failed\n", total-failures, failures)
	if failures > 0 {
		return 1
	}
	return 0
}
