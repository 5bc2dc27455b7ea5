/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package builtins

import (
	"slices"
	"strconv"
	"time"
)

// Helper produces a value from the render's current time.
type Helper func(now time.Time) any

// Module is a named set of helpers a template can import.
type Module struct {
	Name    string
	Helpers map[string]Helper
}

// Helper returns the named helper, if the module provides it.
func (m *Module) Helper(name string) (Helper, bool) {
	h, ok := m.Helpers[name]
	return h, ok
}

// StdModule is the name of the module injected into templates without imports.
const StdModule = "std"

var modules = map[string]*Module{
	StdModule: {
		Name: StdModule,
		Helpers: map[string]Helper{
			"now":       func(now time.Time) any { return now.Format(time.RFC3339) },
			"date":      func(now time.Time) any { return now.Format(time.DateOnly) },
			"time":      func(now time.Time) any { return now.Format(time.TimeOnly) },
			"year":      func(now time.Time) any { return strconv.Itoa(now.Year()) },
			"weekday":   func(now time.Time) any { return now.Weekday().String() },
			"timestamp": func(now time.Time) any { return strconv.FormatInt(now.Unix(), 10) },
		},
	},
}

// LookupModule returns the builtin module with the given name.
func LookupModule(name string) (*Module, bool) {
	m, ok := modules[name]
	return m, ok
}

// Modules returns the names of all builtin modules, sorted.
func Modules() []string {
	names := make([]string, 0, len(modules))
	for name := range modules {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
