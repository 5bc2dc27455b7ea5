/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package render evaluates compiled prompt elements into text.
//
// Rendering is a pure function of the element and the Context: the clock is
// read exactly once per call and every helper sees that instant, so two
// renders with the same inputs and a fixed clock are byte-identical.
package render

import (
	"fmt"
	"strings"
	"time"

	"chainguard.dev/promptkit/prompt/builtins"
	"chainguard.dev/promptkit/prompt/clock"
	"chainguard.dev/promptkit/prompt/element"
)

// Context carries the per-call inputs of a render.
type Context struct {
	// Inputs maps input names to values. Values are converted with
	// builtins.Text after filters run.
	Inputs map[string]any
	// Clock supplies the current time to std helpers. A nil Clock reads the
	// system clock.
	Clock clock.Clock
}

// Render walks el depth-first and returns its text.
//
// Literals are copied verbatim and sections are re-emitted with their
// original tags. An expression resolves, in order, to the input named by its
// root (descending through the rest of its path), to a helper of an imported
// module, or else is reported missing. Render never panics: every problem is
// collected into the returned Result's Diagnostic.
func Render(el *element.Element, rc Context) (res Result) {
	if el == nil {
		return Result{Err: &Diagnostic{Failures: []Failure{{Err: ErrNilElement}}}}
	}

	clk := rc.Clock
	if clk == nil {
		clk = clock.System()
	}

	r := &renderer{
		inputs:  rc.Inputs,
		now:     clk.Now(),
		scopes:  make(map[string]*builtins.Module),
		missing: make(map[string]struct{}),
		diag:    &Diagnostic{Identity: el.Identity()},
	}
	for _, imp := range el.Imports() {
		m, ok := builtins.LookupModule(imp.Module)
		if !ok {
			r.diag.Failures = append(r.diag.Failures, Failure{
				Expression: imp.Name(),
				Pos:        imp.Pos,
				Err:        fmt.Errorf("unknown module %q", imp.Module),
			})
			continue
		}
		r.modules = append(r.modules, m)
		r.scopes[imp.Name()] = m
	}

	defer func() {
		if p := recover(); p != nil {
			r.diag.Failures = append(r.diag.Failures, Failure{Err: fmt.Errorf("panic while rendering: %v", p)})
			res = Result{Err: r.diag}
		}
	}()

	r.walk(el.Children())

	if len(r.diag.Missing) > 0 || len(r.diag.Failures) > 0 {
		return Result{Err: r.diag}
	}
	return Result{OK: true, Text: r.out.String()}
}

type renderer struct {
	inputs  map[string]any
	now     time.Time
	modules []*builtins.Module
	scopes  map[string]*builtins.Module

	out     strings.Builder
	missing map[string]struct{}
	diag    *Diagnostic
}

func (r *renderer) walk(nodes []element.Node) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *element.Literal:
			r.out.WriteString(n.Text())
		case *element.Section:
			r.out.WriteString(n.OpenTag())
			r.walk(n.Children())
			r.out.WriteString(n.CloseTag())
		case *element.Expression:
			r.expression(n)
		}
	}
}

func (r *renderer) expression(x *element.Expression) {
	v, found, err := r.resolve(x.Path())
	if err != nil {
		r.fail(x, err)
		return
	}
	if !found {
		name := x.Name()
		if _, dup := r.missing[name]; !dup {
			r.missing[name] = struct{}{}
			r.diag.Missing = append(r.diag.Missing, name)
		}
		return
	}

	for _, name := range x.Filters() {
		filter, ok := builtins.LookupFilter(name)
		if !ok {
			r.fail(x, fmt.Errorf("unknown filter %q", name))
			return
		}
		if v, err = filter(v); err != nil {
			r.fail(x, fmt.Errorf("filter %s: %w", name, err))
			return
		}
	}

	text, err := builtins.Text(v)
	if err != nil {
		r.fail(x, err)
		return
	}
	r.out.WriteString(text)
}

func (r *renderer) resolve(path []string) (any, bool, error) {
	if v, ok := r.inputs[path[0]]; ok {
		return lookup(v, path[1:])
	}

	switch len(path) {
	case 1:
		for _, m := range r.modules {
			if h, ok := m.Helper(path[0]); ok {
				return h(r.now), true, nil
			}
		}
	case 2:
		if m, ok := r.scopes[path[0]]; ok {
			if h, ok := m.Helper(path[1]); ok {
				return h(r.now), true, nil
			}
		}
	}
	return nil, false, nil
}

func (r *renderer) fail(x *element.Expression, err error) {
	r.diag.Failures = append(r.diag.Failures, Failure{
		Expression: x.Name(),
		Pos:        x.Pos(),
		Err:        err,
	})
}
