// Package diagnostics carries span-anchored error and warning records
// produced by the lexer, parser, and interpreter.
package diagnostics

import (
	"fmt"

	"github.com/paiml/ruchy-sub014/internal/token"
)

// Kind classifies a diagnostic by the stage that raised it.
type Kind string

const (
	ErrLex     Kind = "LEX"
	ErrParse   Kind = "PARSE"
	ErrRuntime Kind = "RUNTIME"
	ErrModule  Kind = "MODULE"
	ErrCompile Kind = "COMPILE"
)

// Diagnostic is a single reported problem, anchored to a token's position.
type Diagnostic struct {
	Kind    Kind
	Message string
	Tok     token.Token
}

func New(kind Kind, tok token.Token, format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: kind, Tok: tok, Message: fmt.Sprintf(format, args...)}
}

func (d *Diagnostic) Error() string {
	if d.Tok.Line == 0 && d.Tok.Column == 0 {
		return fmt.Sprintf("%s: %s", d.Kind, d.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s", d.Kind, d.Tok.Line, d.Tok.Column, d.Message)
}

// Bag accumulates diagnostics across a pipeline stage without aborting
// on the first error, so later stages can still report what they find.
type Bag struct {
	items []*Diagnostic
}

func (b *Bag) Add(d *Diagnostic) {
	b.items = append(b.items, d)
}

func (b *Bag) Addf(kind Kind, tok token.Token, format string, args ...any) {
	b.Add(New(kind, tok, format, args...))
}

func (b *Bag) HasErrors() bool {
	return len(b.items) > 0
}

func (b *Bag) Items() []*Diagnostic {
	return b.items
}

func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	b.items = append(b.items, other.items...)
}
