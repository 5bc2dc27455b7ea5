/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package preprocess normalizes prompt source before compilation.
//
// Templates may reference the shared helpers of the std module without
// declaring an import. When a document has no import directive at all, the
// preprocessor injects DefaultImport as its first line.
//
// Detection is textual and line-anchored: any line whose first non-space text
// is the keyword import followed by whitespace counts, including lines inside
// prose or code samples. A template that mentions such a line therefore opts
// out of the injected import.
//
// A leading byte order mark is removed before detection, and Preprocess
// returns the source without it. Beyond that, whitespace and line breaks
// follow Go's regexp: \s is ASCII space, tab, newline, form feed and carriage
// return, and only \n ends a line. Vertical tab, no-break space, U+2028 and a
// bare \r are not treated as whitespace or line breaks, so an import line
// that relies on them is text and the default import is still injected.
package preprocess

import (
	"regexp"
	"strings"
)

// byteOrderMark is stripped from the start of every source.
const byteOrderMark = "\ufeff"

// DefaultImport is the directive injected into documents that declare none.
const DefaultImport = "import std"

var importDirective = regexp.MustCompile(`(?m)^\s*import\s+`)

// NeedsImportInjection reports whether source lacks an import directive.
func NeedsImportInjection(source string) bool {
	return !importDirective.MatchString(strings.TrimPrefix(source, byteOrderMark))
}

// Preprocess returns source, without a leading byte order mark, with
// DefaultImport prepended when NeedsImportInjection holds.
// Preprocess(Preprocess(s)) == Preprocess(s).
func Preprocess(source string) string {
	source = strings.TrimPrefix(source, byteOrderMark)
	if !NeedsImportInjection(source) {
		return source
	}
	return DefaultImport + "\n" + source
}
