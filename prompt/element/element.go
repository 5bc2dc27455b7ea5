/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package element defines the compiled, immutable form of a prompt template.
//
// Elements are produced by the compiler and consumed by the renderer. Every
// accessor returns a copy of its slice, so an Element can be shared across
// goroutines and rendered any number of times without changing.
package element

import (
	"fmt"
	"slices"
	"strings"
)

// Position is a 1-based line and column within the template source.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Kind identifies the type of a Node.
type Kind int

const (
	KindLiteral Kind = iota
	KindSection
	KindExpression
)

func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindSection:
		return "section"
	case KindExpression:
		return "expression"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Node is one entry of the element tree.
type Node interface {
	Kind() Kind
	Pos() Position
}

// Literal is a run of verbatim text.
type Literal struct {
	text string
	pos  Position
}

// NewLiteral creates a literal node.
func NewLiteral(text string, pos Position) *Literal {
	return &Literal{text: text, pos: pos}
}

func (l *Literal) Kind() Kind    { return KindLiteral }
func (l *Literal) Pos() Position { return l.pos }

// Text returns the literal text.
func (l *Literal) Text() string { return l.text }

func (l *Literal) String() string { return fmt.Sprintf("%q", l.text) }

// Section is a named structural region such as <role> or <contexts>.
type Section struct {
	name     string
	pos      Position
	children []Node
}

// NewSection creates a section holding a copy of children.
func NewSection(name string, pos Position, children []Node) *Section {
	return &Section{name: name, pos: pos, children: slices.Clone(children)}
}

func (s *Section) Kind() Kind    { return KindSection }
func (s *Section) Pos() Position { return s.pos }

// Name returns the tag name exactly as the author wrote it.
func (s *Section) Name() string { return s.name }

// Children returns the section's nodes in source order.
func (s *Section) Children() []Node { return slices.Clone(s.children) }

// OpenTag returns the opening marker, e.g. "<role>".
func (s *Section) OpenTag() string { return "<" + s.name + ">" }

// CloseTag returns the closing marker, e.g. "</role>".
func (s *Section) CloseTag() string { return "</" + s.name + ">" }

// Expression is a reference to a named input or a module helper, optionally
// piped through filters.
type Expression struct {
	path    []string
	filters []string
	pos     Position
}

// NewExpression creates an expression node. path must be non-empty.
func NewExpression(path, filters []string, pos Position) *Expression {
	return &Expression{path: slices.Clone(path), filters: slices.Clone(filters), pos: pos}
}

func (e *Expression) Kind() Kind    { return KindExpression }
func (e *Expression) Pos() Position { return e.pos }

// Path returns the dotted reference split into its identifiers.
func (e *Expression) Path() []string { return slices.Clone(e.path) }

// Root returns the first identifier of the path.
func (e *Expression) Root() string { return e.path[0] }

// Name returns the dotted reference, e.g. "user.name".
func (e *Expression) Name() string { return strings.Join(e.path, ".") }

// Filters returns the filter names in application order.
func (e *Expression) Filters() []string { return slices.Clone(e.filters) }

func (e *Expression) String() string {
	if len(e.filters) == 0 {
		return "{{" + e.Name() + "}}"
	}
	return "{{" + e.Name() + " | " + strings.Join(e.filters, " | ") + "}}"
}

// Import is a module brought into scope by an import directive.
type Import struct {
	Module string
	Alias  string
	Pos    Position
}

// Name returns the identifier the template uses to qualify the module.
func (i Import) Name() string {
	if i.Alias != "" {
		return i.Alias
	}
	return i.Module
}

// Element is a compiled template.
type Element struct {
	identity string
	imports  []Import
	children []Node
}

// New creates an element. It copies imports and children.
func New(identity string, imports []Import, children []Node) *Element {
	return &Element{
		identity: identity,
		imports:  slices.Clone(imports),
		children: slices.Clone(children),
	}
}

// Identity returns the logical filename the element was compiled from.
func (e *Element) Identity() string { return e.identity }

// Imports returns the import directives in source order.
func (e *Element) Imports() []Import { return slices.Clone(e.imports) }

// Children returns the top-level nodes in source order.
func (e *Element) Children() []Node { return slices.Clone(e.children) }

// Sections returns every section, depth-first in source order.
func (e *Element) Sections() []*Section {
	var out []*Section
	Walk(e.children, func(n Node) bool {
		if s, ok := n.(*Section); ok {
			out = append(out, s)
		}
		return true
	})
	return out
}

// Expressions returns every expression, depth-first in source order.
func (e *Element) Expressions() []*Expression {
	var out []*Expression
	Walk(e.children, func(n Node) bool {
		if x, ok := n.(*Expression); ok {
			out = append(out, x)
		}
		return true
	})
	return out
}

// References returns the unique dotted names the element references, in
// order of first occurrence.
func (e *Element) References() []string {
	var out []string
	seen := make(map[string]struct{})
	for _, x := range e.Expressions() {
		name := x.Name()
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// Walk visits nodes depth-first in source order. Returning false from fn
// skips the children of a section.
func Walk(nodes []Node, fn func(Node) bool) {
	for _, n := range nodes {
		if !fn(n) {
			continue
		}
		if s, ok := n.(*Section); ok {
			Walk(s.children, fn)
		}
	}
}
