// Package modules resolves `import` paths to source files, parses and
// evaluates them once, and exposes their exported bindings. Resolution
// is rooted at the importing file's directory; cyclic imports are
// detected during loading and reported as errors.
package modules

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/paiml/ruchy-sub014/internal/ast"
	"github.com/paiml/ruchy-sub014/internal/config"
	"github.com/paiml/ruchy-sub014/internal/interp"
	"github.com/paiml/ruchy-sub014/internal/lexer"
	"github.com/paiml/ruchy-sub014/internal/parser"
	"github.com/paiml/ruchy-sub014/internal/utils"
	"github.com/paiml/ruchy-sub014/internal/value"
)

// Loader caches loaded modules by absolute path and tracks in-flight
// loads for cycle detection.
type Loader struct {
	mu sync.Mutex
	// LoadedModules maps absolute source path to the module's exports.
	LoadedModules map[string]map[string]value.Value
	// Programs maps absolute source path to the parsed AST, kept so
	// the native-compilation path can inline modules without reparsing.
	Programs map[string]*ast.Program
	// Processing marks paths currently being loaded (cycle detection).
	Processing map[string]bool
	// SearchPaths are extra roots tried after the importing file's
	// directory when resolving a bare module name.
	SearchPaths []string

	// NewInterp builds the evaluator a module's top level runs in;
	// overridable so the CLI can wire the actor runtime into module
	// evaluation too. Nil means a plain interp.New().
	NewInterp func() *interp.Interp
}

// NewLoader creates an empty loader.
func NewLoader() *Loader {
	return &Loader{
		LoadedModules: map[string]map[string]value.Value{},
		Programs:      map[string]*ast.Program{},
		Processing:    map[string]bool{},
	}
}

var _ interp.ModuleLoader = (*Loader)(nil)

// ResolvePath turns an import path into the absolute source file it
// names: a relative path ending in the source extension is taken
// as-is relative to the importing file; a bare name is searched as
// `name.ruchy` and `name/name.ruchy` under the importing file's
// directory, then under each configured search path.
func (l *Loader) ResolvePath(fromFile, importPath string) (string, error) {
	baseDir := filepath.Dir(fromFile)
	if fromFile == "" || fromFile == "<stdin>" {
		baseDir = "."
	}
	if config.HasSourceExt(importPath) {
		p := importPath
		if !filepath.IsAbs(p) {
			p = filepath.Join(baseDir, p)
		}
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("module %q not found at %s", importPath, p)
		}
		return filepath.Abs(p)
	}
	roots := append([]string{baseDir}, l.SearchPaths...)
	name := utils.ExtractModuleName(importPath)
	for _, root := range roots {
		candidates := []string{
			filepath.Join(root, importPath+config.SourceFileExt),
			filepath.Join(root, importPath, name+config.SourceFileExt),
		}
		for _, cand := range candidates {
			if _, err := os.Stat(cand); err == nil {
				return filepath.Abs(cand)
			}
		}
	}
	return "", fmt.Errorf("module %q not found (searched from %s)", importPath, baseDir)
}

// Load resolves, parses, and evaluates a module, returning its
// exported bindings. Satisfies interp.ModuleLoader.
func (l *Loader) Load(fromFile, importPath string) (map[string]value.Value, error) {
	path, err := l.ResolvePath(fromFile, importPath)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	if exports, ok := l.LoadedModules[path]; ok {
		l.mu.Unlock()
		return exports, nil
	}
	if l.Processing[path] {
		l.mu.Unlock()
		return nil, fmt.Errorf("cyclic import of %s", path)
	}
	l.Processing[path] = true
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		delete(l.Processing, path)
		l.mu.Unlock()
	}()

	prog, err := l.ParseFile(path)
	if err != nil {
		return nil, err
	}

	modIn := l.newInterp()
	modIn.CurrentFile = path
	modIn.Loader = l
	if _, err := modIn.Run(prog); err != nil {
		return nil, fmt.Errorf("evaluating module %s: %w", path, err)
	}

	exports := collectExports(prog, modIn.GlobalEnv)
	l.mu.Lock()
	l.LoadedModules[path] = exports
	l.mu.Unlock()
	return exports, nil
}

func (l *Loader) newInterp() *interp.Interp {
	if l.NewInterp != nil {
		return l.NewInterp()
	}
	return interp.New()
}

// ParseFile reads and parses one source file, caching the AST.
func (l *Loader) ParseFile(path string) (*ast.Program, error) {
	l.mu.Lock()
	if prog, ok := l.Programs[path]; ok {
		l.mu.Unlock()
		return prog, nil
	}
	l.mu.Unlock()

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p := parser.New(lexer.New(string(src)))
	prog := p.ParseProgram()
	if p.Errors().HasErrors() {
		return nil, fmt.Errorf("parse errors in %s: %s", path, p.Errors().Items()[0].Error())
	}
	l.mu.Lock()
	l.Programs[path] = prog
	l.mu.Unlock()
	return prog, nil
}

// collectExports gathers the module's public bindings: the names its
// export declarations list, or — with no export declaration (or
// `export *`) — every top-level definition.
func collectExports(prog *ast.Program, env *value.Environment) map[string]value.Value {
	var declared []string
	exportAll := true
	for _, stmt := range prog.Statements {
		if ex, ok := stmt.(*ast.ExportDecl); ok {
			if ex.All {
				exportAll = true
				break
			}
			exportAll = false
			declared = append(declared, ex.Names...)
		}
	}
	names := declared
	if exportAll {
		names = topLevelNames(prog)
	}
	exports := make(map[string]value.Value, len(names))
	for _, name := range names {
		if v, ok := env.Get(name); ok {
			exports[name] = v
		}
	}
	return exports
}

// topLevelNames lists the names a program's top level defines.
func topLevelNames(prog *ast.Program) []string {
	var names []string
	add := func(n string) {
		if n != "" && n != "_" {
			names = append(names, n)
		}
	}
	for _, stmt := range prog.Statements {
		var expr any = stmt
		if es, ok := stmt.(*ast.ExpressionStatement); ok {
			expr = es.Expr
		}
		switch n := expr.(type) {
		case *ast.FunctionDecl:
			add(n.Name)
		case *ast.StructDecl:
			add(n.Name)
		case *ast.ActorDecl:
			add(n.Name)
		case *ast.SupervisorDecl:
			add(n.Name)
		case *ast.ModuleDecl:
			add(n.Name)
		case *ast.LetExpr:
			for _, bound := range patternNames(n.Pattern) {
				add(bound)
			}
		case *ast.EnumDecl:
			// Variants are qualified (Type::Variant); export the
			// qualified constructors alongside nothing for the bare name.
			for _, v := range n.Variants {
				add(n.Name + "::" + v.Name)
			}
		}
	}
	return names
}

func patternNames(p ast.Pattern) []string {
	var out []string
	switch pat := p.(type) {
	case ast.IdentifierPattern:
		out = append(out, pat.Name)
	case ast.TuplePattern:
		for _, sub := range pat.Elements {
			out = append(out, patternNames(sub)...)
		}
	case ast.ListPattern:
		for _, sub := range pat.Elements {
			out = append(out, patternNames(sub)...)
		}
	case ast.StructPattern:
		for _, f := range pat.Fields {
			if f.SubPat == nil {
				out = append(out, f.Name)
			} else {
				out = append(out, patternNames(f.SubPat)...)
			}
		}
	case ast.RestNamedPattern:
		out = append(out, pat.Name)
	}
	return out
}
