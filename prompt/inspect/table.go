/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package inspect

import (
	"fmt"
	"io"
	"strings"

	"chainguard.dev/promptkit/prompt/element"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

// Headers are the column titles written by Table.
var Headers = []string{"Template", "Imports", "Sections", "Inputs"}

// Table writes a markdown table with one row per element describing its
// imports, sections and referenced inputs.
func Table(w io.Writer, els ...*element.Element) error {
	table := newMarkdownTable(w)
	for _, el := range els {
		if el == nil {
			continue
		}
		if err := table.Append(Row(el)); err != nil {
			return fmt.Errorf("appending %s: %w", el.Identity(), err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("rendering table: %w", err)
	}
	return nil
}

// Row returns the table cells for a single element.
func Row(el *element.Element) []string {
	var imports []string
	for _, imp := range el.Imports() {
		if imp.Alias != "" {
			imports = append(imports, imp.Module+" as "+imp.Alias)
		} else {
			imports = append(imports, imp.Module)
		}
	}

	var sections []string
	for _, s := range el.Sections() {
		sections = append(sections, s.Name())
	}

	return []string{
		el.Identity(),
		cell(imports),
		cell(sections),
		cell(el.References()),
	}
}

func cell(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}

// newMarkdownTable writes pipe-delimited rows with a header separator and no
// top or bottom rule. Cells are left aligned and never wrapped, so template
// names and section lists stay on one line.
func newMarkdownTable(w io.Writer) *tablewriter.Table {
	left := tw.CellAlignment{Global: tw.AlignLeft}
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment:  left,
				Formatting: tw.CellFormatting{AutoFormat: tw.Off},
			},
			Row:      tw.CellConfig{Alignment: left},
			Behavior: tw.Behavior{TrimSpace: tw.Off},
		}),
		tablewriter.WithHeader(Headers),
		tablewriter.WithRenderer(renderer.NewBlueprint()),
		tablewriter.WithRendition(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleMarkdown),
			Borders: tw.Border{Left: tw.On, Right: tw.On, Top: tw.Off, Bottom: tw.Off},
		}),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)
}
