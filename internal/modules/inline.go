package modules

import (
	"fmt"

	"github.com/paiml/ruchy-sub014/internal/ast"
)

// InlineImports returns a program equivalent to prog with every import
// replaced by the imported module's top-level items, recursively. The
// native-compilation pipeline runs over the inlined form so the code
// generator sees a single AST. Cycles abort with an error.
func (l *Loader) InlineImports(fromFile string, prog *ast.Program) (*ast.Program, error) {
	return l.inline(fromFile, prog, map[string]bool{})
}

func (l *Loader) inline(fromFile string, prog *ast.Program, seen map[string]bool) (*ast.Program, error) {
	out := &ast.Program{}
	for _, stmt := range prog.Statements {
		imp, ok := stmt.(*ast.ImportDecl)
		if !ok {
			out.Statements = append(out.Statements, stmt)
			continue
		}
		path, err := l.ResolvePath(fromFile, imp.Path)
		if err != nil {
			return nil, err
		}
		if seen[path] {
			return nil, fmt.Errorf("cyclic import of %s", path)
		}
		seen[path] = true
		sub, err := l.ParseFile(path)
		if err != nil {
			return nil, err
		}
		inlined, err := l.inline(path, sub, seen)
		if err != nil {
			return nil, err
		}
		delete(seen, path)
		out.Statements = append(out.Statements, inlined.Statements...)
	}
	return out, nil
}
