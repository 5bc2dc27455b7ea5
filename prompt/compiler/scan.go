/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package compiler

import (
	"fmt"
	"strings"
	"unicode"

	"chainguard.dev/promptkit/prompt/builtins"
)

// isValidIdentifier reports whether s can name an input, a path segment, a
// module or an alias: a letter, then letters, digits or underscores.
func isValidIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case unicode.IsLetter(r):
		case i > 0 && (unicode.IsDigit(r) || r == '_'):
		default:
			return false
		}
	}
	return s != ""
}

// isValidTagName checks [A-Za-z][A-Za-z0-9_-]*.
func isValidTagName(s string) bool {
	if len(s) == 0 || !isASCIILetter(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		if !isASCIILetter(c) && !('0' <= c && c <= '9') && c != '_' && c != '-' {
			return false
		}
	}
	return true
}

func isASCIILetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// scanTag recognizes "<name>" or "</name>" at the start of s. Anything else,
// including attributes or self-closing forms, is not a tag.
func scanTag(s string) (name string, closing bool, width int, ok bool) {
	if !strings.HasPrefix(s, "<") {
		return "", false, 0, false
	}
	i := 1
	if strings.HasPrefix(s[i:], "/") {
		closing = true
		i++
	}
	end := strings.IndexByte(s[i:], '>')
	if end == -1 {
		return "", false, 0, false
	}
	name = s[i : i+end]
	if !isValidTagName(name) {
		return "", false, 0, false
	}
	return name, closing, i + end + 1, true
}

// parseExpression splits the text between "{{" and "}}" into a dotted path
// and filter names.
func parseExpression(body string) (path, filters []string, err error) {
	parts := strings.Split(body, "|")
	ref := strings.TrimSpace(parts[0])
	if ref == "" {
		return nil, nil, fmt.Errorf("empty expression")
	}
	for segment := range strings.SplitSeq(ref, ".") {
		if !isValidIdentifier(segment) {
			return nil, nil, fmt.Errorf("invalid expression identifier %q", ref)
		}
		path = append(path, segment)
	}
	for _, part := range parts[1:] {
		name := strings.TrimSpace(part)
		if !isValidIdentifier(name) {
			return nil, nil, fmt.Errorf("invalid filter name %q", name)
		}
		if _, ok := builtins.LookupFilter(name); !ok {
			return nil, nil, fmt.Errorf("unknown filter %q", name)
		}
		filters = append(filters, name)
	}
	return path, filters, nil
}

// parseImport parses the fields of an import directive line:
// "import <module>" or "import <module> as <alias>".
func parseImport(line string) (module, alias string, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != "import" {
		return "", "", fmt.Errorf("malformed import directive %q", strings.TrimSpace(line))
	}
	switch len(fields) {
	case 2:
		module = fields[1]
	case 4:
		if fields[2] != "as" {
			return "", "", fmt.Errorf("malformed import directive %q", strings.TrimSpace(line))
		}
		module, alias = fields[1], fields[3]
		if !isValidIdentifier(alias) {
			return "", "", fmt.Errorf("invalid import alias %q", alias)
		}
	default:
		return "", "", fmt.Errorf("malformed import directive %q", strings.TrimSpace(line))
	}
	if !isValidIdentifier(module) {
		return "", "", fmt.Errorf("invalid module name %q", module)
	}
	return module, alias, nil
}

// isImportLine reports whether line, ignoring leading whitespace, starts with
// the import keyword followed by whitespace. terminated reports whether a
// newline ends the line; that newline counts as the whitespace, so a bare
// "import" is a directive unless it is the last text of the source.
func isImportLine(line string, terminated bool) bool {
	rest := strings.TrimLeft(line, spaceChars)
	after, ok := strings.CutPrefix(rest, "import")
	if !ok {
		return false
	}
	if after == "" {
		return terminated
	}
	return strings.ContainsRune(spaceChars, rune(after[0]))
}

// spaceChars matches the \s class of the preprocessor's regular expression.
const spaceChars = " \t\n\f\r"
