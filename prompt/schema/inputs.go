/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package schema describes the inputs a compiled template expects as JSON
// Schema, and checks typed input structs against a template.
package schema

import (
	"fmt"

	"chainguard.dev/promptkit/prompt/builtins"
	"chainguard.dev/promptkit/prompt/element"
	"github.com/invopop/jsonschema"
)

// ForElement builds an object schema with one property per input the
// template references. Dotted references become nested objects. A bare
// reference that an imported helper can satisfy (such as {{date}}) is an
// optional property; all other inputs are required. Qualified helper
// references such as {{std.date}} are not inputs and are omitted.
func ForElement(el *element.Element) *jsonschema.Schema {
	root := &tree{}
	for _, x := range el.Expressions() {
		path := x.Path()
		if helperName(el, path) && len(path) == 2 {
			continue
		}
		root.add(path, x.Pos(), helperName(el, path))
	}

	s := root.schema()
	s.Version = jsonschema.Version
	s.Title = el.Identity()
	return s
}

// Uncovered returns the dotted references of el that s does not provide, in
// order of first occurrence. A property without declared sub-properties, such
// as a free-form map, covers every path beneath it. References a helper can
// satisfy are never reported.
func Uncovered(el *element.Element, s *jsonschema.Schema) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, x := range el.Expressions() {
		path := x.Path()
		if helperName(el, path) {
			continue
		}
		if _, dup := seen[x.Name()]; dup {
			continue
		}
		seen[x.Name()] = struct{}{}
		if !covers(s, path) {
			out = append(out, x.Name())
		}
	}
	return out
}

func covers(s *jsonschema.Schema, path []string) bool {
	cur := s
	for _, segment := range path {
		if cur == nil || cur.Properties == nil || cur.Properties.Len() == 0 {
			return true
		}
		next, ok := cur.Properties.Get(segment)
		if !ok {
			return false
		}
		cur = next
	}
	return true
}

// helperName reports whether path names a helper of a module el imports,
// either bare or qualified by the import's name.
func helperName(el *element.Element, path []string) bool {
	for _, imp := range el.Imports() {
		m, ok := builtins.LookupModule(imp.Module)
		if !ok {
			continue
		}
		switch len(path) {
		case 1:
			if _, ok := m.Helper(path[0]); ok {
				return true
			}
		case 2:
			if path[0] == imp.Name() {
				if _, ok := m.Helper(path[1]); ok {
					return true
				}
			}
		}
	}
	return false
}

// tree accumulates references into nested properties.
type tree struct {
	children []*tree
	index    map[string]*tree
	name     string
	pos      element.Position
	optional bool
}

func (t *tree) add(path []string, pos element.Position, optional bool) {
	cur := t
	for _, segment := range path {
		if cur.index == nil {
			cur.index = make(map[string]*tree)
		}
		next, ok := cur.index[segment]
		if !ok {
			next = &tree{name: segment, pos: pos, optional: optional}
			cur.index[segment] = next
			cur.children = append(cur.children, next)
		} else if !optional {
			next.optional = false
		}
		cur = next
	}
}

func (t *tree) schema() *jsonschema.Schema {
	if len(t.children) == 0 && t.name != "" {
		desc := fmt.Sprintf("Referenced at %s", t.pos)
		if t.optional {
			desc += "; defaults to the imported helper"
		}
		return &jsonschema.Schema{Description: desc}
	}

	s := &jsonschema.Schema{
		Type:       "object",
		Properties: jsonschema.NewProperties(),
	}
	for _, c := range t.children {
		s.Properties.Set(c.name, c.schema())
		if !c.optional {
			s.Required = append(s.Required, c.name)
		}
	}
	return s
}
