/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package compiler

import (
	"fmt"
	"strings"

	"chainguard.dev/promptkit/prompt/builtins"
	"chainguard.dev/promptkit/prompt/element"
)

// Compile parses preprocessed template source into an element tree.
//
// Validation is structural only: section tags must balance, expressions must
// name valid identifiers and known filters, and imports must name builtin
// modules. Whether referenced inputs exist is decided at render time. On any
// defect Compile returns a *CompileError and no element.
func Compile(source, identity string, opts ...Option) (*element.Element, error) {
	o := options{maxDepth: DefaultMaxDepth, firstLine: 1}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, fmt.Errorf("configuring compiler: %w", err)
		}
	}

	p := &parser{
		identity: identity,
		opts:     o,
		src:      strings.TrimPrefix(source, byteOrderMark),
		line:     o.firstLine,
		col:      1,
		stack:    []*frame{{}},
		aliases:  make(map[string]element.Position),
	}
	return p.parse()
}

// byteOrderMark is dropped from the start of source; it is never rendered and
// does not shift columns.
const byteOrderMark = "\ufeff"

// frame is a section that has been opened but not yet closed.
// The bottom frame of the stack is the document itself.
type frame struct {
	name     string
	pos      element.Position
	children []element.Node
}

type parser struct {
	identity string
	opts     options

	src       string
	off       int
	line, col int

	text    strings.Builder
	textPos element.Position

	stack   []*frame
	imports []element.Import
	aliases map[string]element.Position
}

func (p *parser) parse() (*element.Element, error) {
	for p.off < len(p.src) {
		if p.atLineStart() {
			handled, err := p.importDirective()
			if err != nil {
				return nil, err
			}
			if handled {
				continue
			}
		}

		rest := p.src[p.off:]
		switch {
		case strings.HasPrefix(rest, `\{{`):
			p.escape(2)
		case strings.HasPrefix(rest, `\<`):
			p.escape(1)
		case strings.HasPrefix(rest, "{{"):
			if err := p.expression(); err != nil {
				return nil, err
			}
		case rest[0] == '<':
			name, closing, width, ok := scanTag(rest)
			if !ok {
				p.emit(1)
				continue
			}
			if err := p.tag(name, closing, width); err != nil {
				return nil, err
			}
		case rest[0] == '\n':
			p.emit(1)
		default:
			// Consume plain text up to the next byte that may start a token.
			n := strings.IndexAny(rest[1:], "\\{<\n")
			if n == -1 {
				p.emit(len(rest))
			} else {
				p.emit(n + 1)
			}
		}
	}
	p.flush()

	if len(p.stack) > 1 {
		open := p.stack[len(p.stack)-1]
		return nil, p.errorf(open.pos, fmt.Sprintf("add </%s>", open.name), "unterminated section <%s>", open.name)
	}

	el := element.New(p.identity, p.imports, p.stack[0].children)
	if err := p.checkRequired(el); err != nil {
		return nil, err
	}
	return el, nil
}

func (p *parser) atLineStart() bool {
	return p.off == 0 || p.src[p.off-1] == '\n'
}

// importDirective consumes the current line when it is an import directive.
func (p *parser) importDirective() (bool, error) {
	rest := p.src[p.off:]
	line, _, hasNewline := strings.Cut(rest, "\n")
	if !isImportLine(line, hasNewline) {
		return false, nil
	}

	pos := p.pos()
	module, alias, err := parseImport(line)
	if err != nil {
		return false, p.errorf(pos, "expected: import <module> [as <alias>]", "%v", err)
	}
	if _, ok := builtins.LookupModule(module); !ok {
		return false, p.errorf(pos, "available modules: "+strings.Join(builtins.Modules(), ", "), "unknown module %q", module)
	}

	imp := element.Import{Module: module, Alias: alias, Pos: pos}
	if prev, ok := p.aliases[imp.Name()]; ok {
		return false, p.errorf(pos, "", "duplicate import %q, first imported at %s", imp.Name(), prev)
	}
	p.aliases[imp.Name()] = pos
	p.imports = append(p.imports, imp)

	width := len(line)
	if hasNewline {
		width++
	}
	p.skip(width)
	return true, nil
}

func (p *parser) expression() error {
	pos := p.pos()
	rest := p.src[p.off:]

	end := strings.Index(rest[2:], "}}")
	newline := strings.IndexByte(rest, '\n')
	if end == -1 || (newline != -1 && newline < end+2) {
		return p.errorf(pos, "close it with }} on the same line", "unterminated expression")
	}

	path, filters, err := parseExpression(rest[2 : end+2])
	if err != nil {
		return p.errorf(pos, "", "%v", err)
	}

	p.flush()
	p.append(element.NewExpression(path, filters, pos))
	p.skip(end + 4)
	return nil
}

func (p *parser) tag(name string, closing bool, width int) error {
	pos := p.pos()

	if !closing {
		if depth := len(p.stack) - 1; depth >= p.opts.maxDepth {
			return p.errorf(pos, "", "sections nested deeper than %d", p.opts.maxDepth)
		}
		p.flush()
		p.stack = append(p.stack, &frame{name: name, pos: pos})
		p.skip(width)
		return nil
	}

	if len(p.stack) == 1 {
		return p.errorf(pos, "no section is open", "unexpected closing tag </%s>", name)
	}
	open := p.stack[len(p.stack)-1]
	if open.name != name {
		return p.errorf(pos, fmt.Sprintf("close <%s> first", open.name),
			"closing tag </%s> does not match <%s> opened at %s", name, open.name, open.pos)
	}

	p.flush()
	p.stack = p.stack[:len(p.stack)-1]
	p.append(element.NewSection(open.name, open.pos, open.children))
	p.skip(width)
	return nil
}

func (p *parser) checkRequired(el *element.Element) error {
	if len(p.opts.required) == 0 {
		return nil
	}
	declared := make(map[string]struct{})
	for _, s := range el.Sections() {
		declared[s.Name()] = struct{}{}
	}
	for _, alts := range p.opts.required {
		found := false
		for _, alt := range alts {
			if _, ok := declared[alt]; ok {
				found = true
				break
			}
		}
		if !found {
			tags := make([]string, len(alts))
			for i, alt := range alts {
				tags[i] = "<" + alt + ">"
			}
			return p.errorf(element.Position{Line: 1, Column: 1}, "", "missing required section %s", strings.Join(tags, " or "))
		}
	}
	return nil
}

// emit copies the next n bytes of source into the pending literal.
func (p *parser) emit(n int) {
	if p.text.Len() == 0 {
		p.textPos = p.pos()
	}
	p.text.WriteString(p.src[p.off : p.off+n])
	p.skip(n)
}

// escape drops the backslash at the cursor and emits the n bytes after it.
func (p *parser) escape(n int) {
	if p.text.Len() == 0 {
		p.textPos = p.pos()
	}
	p.skip(1)
	p.text.WriteString(p.src[p.off : p.off+n])
	p.skip(n)
}

func (p *parser) flush() {
	if p.text.Len() == 0 {
		return
	}
	p.append(element.NewLiteral(p.text.String(), p.textPos))
	p.text.Reset()
}

func (p *parser) append(n element.Node) {
	top := p.stack[len(p.stack)-1]
	top.children = append(top.children, n)
}

func (p *parser) skip(n int) {
	for _, r := range p.src[p.off : p.off+n] {
		if r == '\n' {
			p.line++
			p.col = 1
		} else {
			p.col++
		}
	}
	p.off += n
}

func (p *parser) pos() element.Position {
	return element.Position{Line: p.line, Column: p.col}
}

func (p *parser) errorf(pos element.Position, hint, format string, args ...any) *CompileError {
	return &CompileError{
		Identity: p.identity,
		Pos:      pos,
		Msg:      fmt.Sprintf(format, args...),
		Hint:     hint,
	}
}
