/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package builtins

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Filter transforms a resolved expression value.
type Filter func(v any) (any, error)

var filters = map[string]Filter{
	"json":  jsonFilter,
	"xml":   xmlFilter,
	"yaml":  yamlFilter,
	"trim":  textFilter(strings.TrimSpace),
	"upper": textFilter(strings.ToUpper),
	"lower": textFilter(strings.ToLower),

	"diffstat": diffstatFilter,
}

// LookupFilter returns the named filter.
func LookupFilter(name string) (Filter, bool) {
	f, ok := filters[name]
	return f, ok
}

// Filters returns the names of all filters, sorted.
func Filters() []string {
	names := make([]string, 0, len(filters))
	for name := range filters {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func jsonFilter(v any) (any, error) {
	bytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(bytes), nil
}

func xmlFilter(v any) (any, error) {
	bytes, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal XML: %w", err)
	}
	return string(bytes), nil
}

// yaml.Marshal always ends its document with a newline, which would break
// inline interpolation, so it is trimmed.
func yamlFilter(v any) (any, error) {
	bytes, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return strings.TrimSuffix(string(bytes), "\n"), nil
}

func textFilter(fn func(string) string) Filter {
	return func(v any) (any, error) {
		s, err := Text(v)
		if err != nil {
			return nil, err
		}
		return fn(s), nil
	}
}
