/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package builtins

import (
	"fmt"
	"strings"

	"github.com/waigani/diffparser"
)

// diffstatFilter summarizes a unified diff as one line per file:
//
//	M main.go (+2 -1)
//	A README.md (+1 -0)
func diffstatFilter(v any) (any, error) {
	s, err := Text(v)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(s) == "" {
		return "", nil
	}

	diff, err := diffparser.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("failed to parse diff: %w", err)
	}

	lines := make([]string, 0, len(diff.Files))
	for _, f := range diff.Files {
		var added, removed int
		for _, h := range f.Hunks {
			for _, l := range h.WholeRange.Lines {
				switch l.Mode {
				case diffparser.ADDED:
					added++
				case diffparser.REMOVED:
					removed++
				}
			}
		}
		lines = append(lines, fmt.Sprintf("%s %s (+%d -%d)", fileModeLetter(f.Mode), diffFileName(f), added, removed))
	}
	return strings.Join(lines, "\n"), nil
}

func diffFileName(f *diffparser.DiffFile) string {
	if f.Mode == diffparser.DELETED || f.NewName == "" {
		return f.OrigName
	}
	return f.NewName
}

func fileModeLetter(m diffparser.FileMode) string {
	switch m {
	case diffparser.NEW:
		return "A"
	case diffparser.DELETED:
		return "D"
	default:
		return "M"
	}
}
