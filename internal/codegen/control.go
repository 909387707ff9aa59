package codegen

import (
	"fmt"
	"strings"

	"github.com/paiml/ruchy-sub014/internal/ast"
)

// loopShell wraps one loop iteration in the recover scaffold that
// catches break/continue sentinels for this loop's label.
func loopShell(label, body string) string {
	return fmt.Sprintf(`func() any {
	var out any
	done := false
	for !done {
		func() {
			defer func() {
				if r := recover(); r != nil {
					if b, ok := r.(rBreak); ok && (b.label == "" || b.label == %q) { out = b.v; done = true; return }
					if c, ok := r.(rContinue); ok && (c.label == "" || c.label == %q) { return }
					panic(r)
				}
			}()
%s
		}()
	}
	return out
}()`, label, label, body)
}

func (g *Generator) genWhile(n *ast.WhileExpr) string {
	body := fmt.Sprintf("\t\t\tif !rTruthy(%s) { done = true; return }\n\t\t\t_ = %s",
		g.genExpr(n.Condition), g.genBlockExpr(n.Body))
	return loopShell(n.Label, body)
}

func (g *Generator) genLoop(n *ast.LoopExpr) string {
	body := fmt.Sprintf("\t\t\t_ = %s", g.genBlockExpr(n.Body))
	return loopShell(n.Label, body)
}

// genFor materializes the iterable first, then steps an index through
// it inside the same recover scaffold the other loops use.
func (g *Generator) genFor(n *ast.ForExpr) string {
	binds := g.patternBindings(n.Pattern)
	var bindDecl strings.Builder
	for _, b := range binds {
		fmt.Fprintf(&bindDecl, "\tvar %s any\n\t_ = %s\n", b, b)
	}
	var bindStmts strings.Builder
	bindStmts.WriteString("\t\t\tmatched := true\n\t\t\t_ = matched\n")
	g.genPatternStmts(&bindStmts, "\t\t\t", "items[i]", n.Pattern)

	return fmt.Sprintf(`func() any {
	items := rIter(%s)
	var out any
	done := false
%s	i := 0
	for !done && i < len(items) {
		func() {
			defer func() {
				if r := recover(); r != nil {
					if b, ok := r.(rBreak); ok && (b.label == "" || b.label == %q) { out = b.v; done = true; return }
					if c, ok := r.(rContinue); ok && (c.label == "" || c.label == %q) { return }
					panic(r)
				}
			}()
%s			_ = %s
		}()
		i++
	}
	return out
}()`, g.genExpr(n.Iter), bindDecl.String(), n.Label, n.Label, bindStmts.String(), g.genBlockExpr(n.Body))
}

// genMatch lowers a match to a first-match-wins chain: every arm gets
// its bindings declared, its pattern tested, then its guard; the first
// arm whose test and guard both pass yields the result.
func (g *Generator) genMatch(n *ast.MatchExpr) string {
	var sb strings.Builder
	sb.WriteString("func() any {\n")
	fmt.Fprintf(&sb, "\tscrut := any(%s)\n\t_ = scrut\n", g.genExpr(n.Scrutinee))
	for _, arm := range n.Arms {
		sb.WriteString("\t{\n")
		sb.WriteString("\t\tmatched := true\n")
		for _, b := range g.patternBindings(arm.Pattern) {
			fmt.Fprintf(&sb, "\t\tvar %s any\n\t\t_ = %s\n", b, b)
		}
		g.genPatternStmts(&sb, "\t\t", "scrut", arm.Pattern)
		guard := "true"
		if arm.Guard != nil {
			guard = "rTruthy(" + g.genExpr(arm.Guard) + ")"
		}
		fmt.Fprintf(&sb, "\t\tif matched && %s { return %s }\n", guard, g.genExpr(arm.Body))
		sb.WriteString("\t}\n")
	}
	sb.WriteString("\treturn rFail(\"no match arm matched value\")\n}()")
	return sb.String()
}

// patternBindings lists the mangled variable names a pattern binds, so
// callers can declare them in the scope the arm body runs in.
func (g *Generator) patternBindings(p ast.Pattern) []string {
	var out []string
	var walk func(p ast.Pattern)
	walk = func(p ast.Pattern) {
		switch pat := p.(type) {
		case ast.IdentifierPattern:
			if pat.Name != "_" {
				out = append(out, g.ident(pat.Name))
			}
		case ast.TuplePattern:
			for _, s := range pat.Elements {
				walk(s)
			}
		case ast.ListPattern:
			for _, s := range pat.Elements {
				walk(s)
			}
		case ast.StructPattern:
			for _, f := range pat.Fields {
				if f.SubPat == nil {
					out = append(out, g.ident(f.Name))
				} else {
					walk(f.SubPat)
				}
			}
		case ast.RestNamedPattern:
			out = append(out, g.ident(pat.Name))
		case ast.OrPattern:
			for _, s := range pat.Alternatives {
				walk(s)
			}
		case ast.TypedPattern:
			if pat.Name != "" && pat.Name != "_" {
				out = append(out, g.ident(pat.Name))
			}
		}
	}
	walk(p)
	return out
}

// genPatternStmts emits statements testing scrut against p, clearing
// `matched` on failure and assigning (pre-declared) binding variables
// on the way.
func (g *Generator) genPatternStmts(sb *strings.Builder, indent, scrut string, p ast.Pattern) {
	switch pat := p.(type) {
	case ast.WildcardPattern, ast.RestPattern:
		// Always matches.
	case ast.IdentifierPattern:
		if pat.Name != "_" {
			fmt.Fprintf(sb, "%s%s = %s\n", indent, g.ident(pat.Name), scrut)
		}
	case ast.LiteralPattern:
		fmt.Fprintf(sb, "%smatched = matched && rEq(%s, %s)\n", indent, scrut, g.genExpr(pat.Value))
	case ast.RangePattern:
		fmt.Fprintf(sb, "%smatched = matched && rInRange(%s, %s, %s, %t)\n",
			indent, scrut, g.genExpr(pat.Start), g.genExpr(pat.End), pat.Inclusive)
	case ast.QualifiedNamePattern:
		variant := pat.Parts[len(pat.Parts)-1]
		fmt.Fprintf(sb, "%smatched = matched && rEnumIs(%s, %q)\n", indent, scrut, variant)
	case ast.TypedPattern:
		fmt.Fprintf(sb, "%smatched = matched && rTypeName(%s) == %q\n", indent, scrut, pat.TypeName)
		if pat.Name != "" && pat.Name != "_" {
			fmt.Fprintf(sb, "%sif matched { %s = %s }\n", indent, g.ident(pat.Name), scrut)
		}
	case ast.TuplePattern:
		g.genSeqPattern(sb, indent, scrut, pat.Elements)
	case ast.ListPattern:
		g.genSeqPattern(sb, indent, scrut, pat.Elements)
	case ast.OrPattern:
		// First alternative that matches wins; reset the flag between
		// tries.
		saved := g.fresh("or")
		fmt.Fprintf(sb, "%s%s := matched\n%s_ = %s\n%smatched = false\n", indent, saved, indent, saved, indent)
		for _, alt := range pat.Alternatives {
			fmt.Fprintf(sb, "%sif !matched && %s {\n%s\tmatched = true\n", indent, saved, indent)
			g.genPatternStmts(sb, indent+"\t", scrut, alt)
			fmt.Fprintf(sb, "%s}\n", indent)
		}
	case ast.StructPattern:
		if pat.Name != "" {
			fmt.Fprintf(sb, "%smatched = matched && (rTypeName(%s) == %q || rEnumIs(%s, %q))\n",
				indent, scrut, pat.Name, scrut, pat.Name)
		}
		for _, f := range pat.Fields {
			fmt.Fprintf(sb, "%smatched = matched && rHasField(%s, %q)\n", indent, scrut, f.Name)
			access := fmt.Sprintf("rFieldOrPayload(%s, %q)", scrut, f.Name)
			if f.SubPat == nil {
				fmt.Fprintf(sb, "%sif matched { %s = %s }\n", indent, g.ident(f.Name), access)
			} else {
				fmt.Fprintf(sb, "%sif matched {\n", indent)
				g.genPatternStmts(sb, indent+"\t", access, f.SubPat)
				fmt.Fprintf(sb, "%s}\n", indent)
			}
		}
	case ast.RestNamedPattern:
		fmt.Fprintf(sb, "%s%s = %s\n", indent, g.ident(pat.Name), scrut)
	default:
		g.errf("unsupported pattern %T in codegen", p)
	}
}

// genSeqPattern matches tuple/list patterns against a []any value,
// with at most one rest segment absorbing the middle.
func (g *Generator) genSeqPattern(sb *strings.Builder, indent, scrut string, pats []ast.Pattern) {
	restIdx := -1
	for i, p := range pats {
		switch p.(type) {
		case ast.RestPattern, ast.RestNamedPattern:
			restIdx = i
		}
	}
	seq := g.fresh("seq")
	fmt.Fprintf(sb, "%s%s, ok%s := %s.([]any)\n%s_ = %s\n%smatched = matched && ok%s\n",
		indent, seq, seq, scrut, indent, seq, indent, seq)
	if restIdx == -1 {
		fmt.Fprintf(sb, "%smatched = matched && len(%s) == %d\n", indent, seq, len(pats))
		for i, p := range pats {
			fmt.Fprintf(sb, "%sif matched {\n", indent)
			g.genPatternStmts(sb, indent+"\t", fmt.Sprintf("%s[%d]", seq, i), p)
			fmt.Fprintf(sb, "%s}\n", indent)
		}
		return
	}
	before := pats[:restIdx]
	after := pats[restIdx+1:]
	fmt.Fprintf(sb, "%smatched = matched && len(%s) >= %d\n", indent, seq, len(before)+len(after))
	for i, p := range before {
		fmt.Fprintf(sb, "%sif matched {\n", indent)
		g.genPatternStmts(sb, indent+"\t", fmt.Sprintf("%s[%d]", seq, i), p)
		fmt.Fprintf(sb, "%s}\n", indent)
	}
	if named, ok := pats[restIdx].(ast.RestNamedPattern); ok {
		fmt.Fprintf(sb, "%sif matched { %s = append([]any{}, %s[%d:len(%s)-%d]...) }\n",
			indent, g.ident(named.Name), seq, len(before), seq, len(after))
	}
	for i, p := range after {
		fmt.Fprintf(sb, "%sif matched {\n", indent)
		g.genPatternStmts(sb, indent+"\t", fmt.Sprintf("%s[len(%s)-%d]", seq, seq, len(after)-i), p)
		fmt.Fprintf(sb, "%s}\n", indent)
	}
}
