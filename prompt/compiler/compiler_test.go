/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package compiler_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"chainguard.dev/promptkit/prompt/compiler"
	"chainguard.dev/promptkit/prompt/element"
	"github.com/google/go-cmp/cmp"
)

// dump flattens a tree into one line per node, indenting section contents.
func dump(nodes []element.Node) []string {
	var out []string
	for _, n := range nodes {
		switch n := n.(type) {
		case *element.Literal:
			out = append(out, fmt.Sprintf("text %q", n.Text()))
		case *element.Expression:
			out = append(out, "expr "+n.String())
		case *element.Section:
			out = append(out, n.OpenTag())
			for _, line := range dump(n.Children()) {
				out = append(out, "  "+line)
			}
			out = append(out, n.CloseTag())
		}
	}
	return out
}

func TestCompile(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		want    []string
		imports []element.Import
	}{{
		name:   "role and objective",
		source: "<role>Reviewer</role><objective>Review {{codeToReview}}</objective>",
		want: []string{
			"<role>",
			`  text "Reviewer"`,
			"</role>",
			"<objective>",
			`  text "Review "`,
			"  expr {{codeToReview}}",
			"</objective>",
		},
	}, {
		name:   "default import is consumed",
		source: "import std\n<task>Today is {{date}}.</task>\n",
		want: []string{
			"<task>",
			`  text "Today is "`,
			"  expr {{date}}",
			`  text "."`,
			"</task>",
			`text "\n"`,
		},
		imports: []element.Import{{Module: "std", Pos: element.Position{Line: 1, Column: 1}}},
	}, {
		name:   "letters outside ASCII name inputs",
		source: "{{größe.wert_2}}",
		want:   []string{"expr {{größe.wert_2}}"},
	}, {
		name:   "bare keyword on the last line is text",
		source: "<task>Things we\nimport</task>\nimport",
		want: []string{
			"<task>",
			`  text "Things we\nimport"`,
			"</task>",
			`text "\nimport"`,
		},
	}, {
		name:   "byte order mark before import",
		source: "\ufeffimport std as s\n<role>{{s.year}}</role>",
		want: []string{
			"<role>",
			"  expr {{s.year}}",
			"</role>",
		},
		imports: []element.Import{{Module: "std", Alias: "s", Pos: element.Position{Line: 1, Column: 1}}},
	}, {
		name:   "aliased import in the middle of the document",
		source: "first\n  import std as s\nsecond {{s.year}}",
		want: []string{
			`text "first\nsecond "`,
			"expr {{s.year}}",
		},
		imports: []element.Import{{Module: "std", Alias: "s", Pos: element.Position{Line: 2, Column: 1}}},
	}, {
		name:   "escapes",
		source: `Write \{{name}} or \<role> literally.`,
		want:   []string{`text "Write {{name}} or <role> literally."`},
	}, {
		name:   "text that is not a tag",
		source: `if a < b && c > d { <a href="x"> <br/> </ role> <1st> }`,
		want:   []string{`text "if a < b && c > d { <a href=\"x\"> <br/> </ role> <1st> }"`},
	}, {
		name:   "nested sections with plural and singular names",
		source: "<contexts>\n<context>A</context>\n<context>B</context>\n</contexts>",
		want: []string{
			"<contexts>",
			`  text "\n"`,
			"  <context>",
			`    text "A"`,
			"  </context>",
			`  text "\n"`,
			"  <context>",
			`    text "B"`,
			"  </context>",
			`  text "\n"`,
			"</contexts>",
		},
	}, {
		name:   "duplicate sections are kept in order",
		source: "<task>one</task><task>two</task>",
		want: []string{
			"<task>", `  text "one"`, "</task>",
			"<task>", `  text "two"`, "</task>",
		},
	}, {
		name:   "filters and dotted paths",
		source: "{{ report.findings | json | trim }} {{user.name|upper}}",
		want: []string{
			"expr {{report.findings | json | trim}}",
			`text " "`,
			"expr {{user.name | upper}}",
		},
	}, {
		name:   "crlf line endings",
		source: "<role>\r\nReviewer\r\n</role>\r\n",
		want: []string{
			"<role>",
			`  text "\r\nReviewer\r\n"`,
			"</role>",
			`text "\r\n"`,
		},
	}, {
		name:   "mid-line import is text",
		source: "Please import the data first.",
		want:   []string{`text "Please import the data first."`},
	}, {
		name:   "lone braces",
		source: "map{} and } and {x}",
		want:   []string{`text "map{} and } and {x}"`},
	}, {
		name:   "empty source",
		source: "",
		want:   nil,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el, err := compiler.Compile(tt.source, "test.prompt")
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, dump(el.Children())); diff != "" {
				t.Errorf("tree mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.imports, el.Imports()); diff != "" {
				t.Errorf("imports mismatch (-want +got):\n%s", diff)
			}
			if got := el.Identity(); got != "test.prompt" {
				t.Errorf("Identity() = %q, want %q", got, "test.prompt")
			}
		})
	}
}

func TestCompilePositions(t *testing.T) {
	el, err := compiler.Compile("<role>héllo {{name}}</role>\n<task>\n  {{ item }}\n</task>", "pos.prompt")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	var got []string
	element.Walk(el.Children(), func(n element.Node) bool {
		got = append(got, fmt.Sprintf("%s@%s", n.Kind(), n.Pos()))
		return true
	})
	want := []string{
		"section@1:1",
		"literal@1:7",
		"expression@1:13",
		"literal@1:28",
		"section@2:1",
		"literal@2:7",
		"expression@3:3",
		"literal@3:13",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("positions mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileFirstLine(t *testing.T) {
	el, err := compiler.Compile("import std\n<task>{{ item }}</task>", "offset.prompt", compiler.WithFirstLine(0))
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if got := el.Expressions()[0].Pos().String(); got != "1:7" {
		t.Errorf("expression position = %s, want 1:7", got)
	}

	_, err = compiler.Compile("import std\n<task>\n{{ item", "offset.prompt", compiler.WithFirstLine(0))
	var cerr *compiler.CompileError
	if !errors.As(err, &cerr) {
		t.Fatalf("Compile() error = %v, want *CompileError", err)
	}
	if got := cerr.Pos.String(); got != "2:1" {
		t.Errorf("error position = %s, want 2:1", got)
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		opts    []compiler.Option
		wantMsg string
		wantPos element.Position
	}{{
		name:    "unterminated section",
		source:  "<role>Reviewer",
		wantMsg: "unterminated section <role>",
		wantPos: element.Position{Line: 1, Column: 1},
	}, {
		name:    "innermost unterminated section is reported",
		source:  "<task>\n  <context>data\n</task>",
		wantMsg: "closing tag </task> does not match <context> opened at 2:3",
		wantPos: element.Position{Line: 3, Column: 1},
	}, {
		name:    "unexpected closing tag",
		source:  "text</role>",
		wantMsg: "unexpected closing tag </role>",
		wantPos: element.Position{Line: 1, Column: 5},
	}, {
		name:    "mismatched closing tag",
		source:  "<role>\n<task></role>",
		wantMsg: "closing tag </role> does not match <task> opened at 2:1",
		wantPos: element.Position{Line: 2, Column: 7},
	}, {
		name:    "unterminated expression",
		source:  "Review {{ code",
		wantMsg: "unterminated expression",
		wantPos: element.Position{Line: 1, Column: 8},
	}, {
		name:    "expression spanning lines",
		source:  "{{ code\n}}",
		wantMsg: "unterminated expression",
		wantPos: element.Position{Line: 1, Column: 1},
	}, {
		name:    "empty expression",
		source:  "<task>{{ }}</task>",
		wantMsg: "empty expression",
		wantPos: element.Position{Line: 1, Column: 7},
	}, {
		name:    "hyphenated identifier",
		source:  "{{test-case}}",
		wantMsg: `invalid expression identifier "test-case"`,
		wantPos: element.Position{Line: 1, Column: 1},
	}, {
		name:    "leading digit",
		source:  "{{1st}}",
		wantMsg: `invalid expression identifier "1st"`,
		wantPos: element.Position{Line: 1, Column: 1},
	}, {
		name:    "leading underscore",
		source:  "{{_id}}",
		wantMsg: `invalid expression identifier "_id"`,
		wantPos: element.Position{Line: 1, Column: 1},
	}, {
		name:    "trailing dot",
		source:  "{{user.}}",
		wantMsg: `invalid expression identifier "user."`,
		wantPos: element.Position{Line: 1, Column: 1},
	}, {
		name:    "unknown filter",
		source:  "{{data | base64}}",
		wantMsg: `unknown filter "base64"`,
		wantPos: element.Position{Line: 1, Column: 1},
	}, {
		name:    "empty filter",
		source:  "{{data |}}",
		wantMsg: `invalid filter name ""`,
		wantPos: element.Position{Line: 1, Column: 1},
	}, {
		name:    "unknown module",
		source:  "import os\nbody",
		wantMsg: `unknown module "os"`,
		wantPos: element.Position{Line: 1, Column: 1},
	}, {
		name:    "malformed import",
		source:  "text\n  import std as\n",
		wantMsg: `malformed import directive "import std as"`,
		wantPos: element.Position{Line: 2, Column: 1},
	}, {
		name:    "bare keyword followed by newline",
		source:  "text\nimport\nmore",
		wantMsg: `malformed import directive "import"`,
		wantPos: element.Position{Line: 2, Column: 1},
	}, {
		name:    "invalid alias",
		source:  "import std as 9lives\n",
		wantMsg: `invalid import alias "9lives"`,
		wantPos: element.Position{Line: 1, Column: 1},
	}, {
		name:    "duplicate import",
		source:  "import std\nimport std\n",
		wantMsg: `duplicate import "std", first imported at 1:1`,
		wantPos: element.Position{Line: 2, Column: 1},
	}, {
		name:    "nesting too deep",
		source:  "<a><b><c></c></b></a>",
		opts:    []compiler.Option{compiler.WithMaxDepth(2)},
		wantMsg: "sections nested deeper than 2",
		wantPos: element.Position{Line: 1, Column: 7},
	}, {
		name:    "missing required section",
		source:  "<role>Reviewer</role><task>Review</task>",
		opts:    []compiler.Option{compiler.WithRequiredSections("role", "task", "context|contexts")},
		wantMsg: "missing required section <context> or <contexts>",
		wantPos: element.Position{Line: 1, Column: 1},
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el, err := compiler.Compile(tt.source, "broken.prompt", tt.opts...)
			if err == nil {
				t.Fatal("Compile() succeeded, want error")
			}
			if el != nil {
				t.Error("Compile() returned a partial element alongside the error")
			}

			var cerr *compiler.CompileError
			if !errors.As(err, &cerr) {
				t.Fatalf("Compile() error = %T, want *CompileError", err)
			}
			if cerr.Msg != tt.wantMsg {
				t.Errorf("Msg = %q, want %q", cerr.Msg, tt.wantMsg)
			}
			if cerr.Pos != tt.wantPos {
				t.Errorf("Pos = %v, want %v", cerr.Pos, tt.wantPos)
			}
			if cerr.Identity != "broken.prompt" {
				t.Errorf("Identity = %q, want %q", cerr.Identity, "broken.prompt")
			}
		})
	}
}

func TestCompileErrorString(t *testing.T) {
	_, err := compiler.Compile("<role>Reviewer", "review.prompt")
	if err == nil {
		t.Fatal("Compile() succeeded, want error")
	}
	if got, want := err.Error(), "review.prompt:1:1: unterminated section <role> (add </role>)"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	anonymous := &compiler.CompileError{Pos: element.Position{Line: 3, Column: 2}, Msg: "boom"}
	if got, want := anonymous.Error(), "<prompt>:3:2: boom"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestRequiredSectionsSatisfied(t *testing.T) {
	source := strings.Join([]string{
		"<role>Reviewer</role>",
		"<objective>Find bugs</objective>",
		"<task>Review {{code}}</task>",
		"<contexts><context>repo</context></contexts>",
	}, "\n")

	_, err := compiler.Compile(source, "full.prompt",
		compiler.WithRequiredSections("role", "objective", "task", "context|contexts"))
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
}

func TestInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  compiler.Option
	}{
		{"zero depth", compiler.WithMaxDepth(0)},
		{"bad section name", compiler.WithRequiredSections("role", "not a tag")},
		{"empty alternative", compiler.WithRequiredSections("context|")},
		{"negative first line", compiler.WithFirstLine(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compiler.Compile("<role>x</role>", "opts.prompt", tt.opt)
			if err == nil {
				t.Fatal("Compile() succeeded, want configuration error")
			}
			var cerr *compiler.CompileError
			if errors.As(err, &cerr) {
				t.Errorf("configuration error reported as CompileError: %v", err)
			}
		})
	}
}

func TestMustCompile(t *testing.T) {
	el := compiler.MustCompile("<role>ok</role>", "ok.prompt")
	if got := len(el.Sections()); got != 1 {
		t.Errorf("Sections() = %d, want 1", got)
	}

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("MustCompile() did not panic on invalid source")
		}
		if _, ok := r.(*compiler.CompileError); !ok {
			t.Errorf("panic value = %T, want *CompileError", r)
		}
	}()
	compiler.MustCompile("<role>", "bad.prompt")
}

func TestCompileDeterministic(t *testing.T) {
	source := "import std\n<role>A</role>\n<task>{{x | json}} at {{now}}</task>"
	first := dump(compiler.MustCompile(source, "d.prompt").Children())
	for range 5 {
		if diff := cmp.Diff(first, dump(compiler.MustCompile(source, "d.prompt").Children())); diff != "" {
			t.Fatalf("Compile() is not deterministic (-first +again):\n%s", diff)
		}
	}
}

func FuzzCompile(f *testing.F) {
	seeds := []string{
		"<role>Reviewer</role><objective>Review {{codeToReview}}</objective>",
		"import std\n{{now}}",
		`\{{x}} \<y>`,
		"<a><b></a></b>",
		"{{ a.b | json | upper }}",
		"{{",
		"<",
		"import",
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, source string) {
		el, err := compiler.Compile(source, "fuzz.prompt")
		if err != nil {
			var cerr *compiler.CompileError
			if !errors.As(err, &cerr) {
				t.Fatalf("Compile() error = %T, want *CompileError", err)
			}
			if el != nil {
				t.Fatal("Compile() returned element alongside error")
			}
			return
		}
		for _, x := range el.Expressions() {
			if x.Root() == "" {
				t.Fatalf("expression with empty root at %s", x.Pos())
			}
		}
	})
}

func TestFingerprint(t *testing.T) {
	base := compiler.Fingerprint()
	if got := compiler.Fingerprint(compiler.WithMaxDepth(compiler.DefaultMaxDepth)); got != base {
		t.Errorf("explicit default depth fingerprint = %q, want %q", got, base)
	}

	distinct := map[string]string{"defaults": base}
	for name, opts := range map[string][]compiler.Option{
		"depth":        {compiler.WithMaxDepth(3)},
		"first line":   {compiler.WithFirstLine(0)},
		"required":     {compiler.WithRequiredSections("role")},
		"alternatives": {compiler.WithRequiredSections("role|task")},
		"two required": {compiler.WithRequiredSections("role", "task")},
	} {
		fp := compiler.Fingerprint(opts...)
		for other, seen := range distinct {
			if fp == seen {
				t.Errorf("%s fingerprint %q collides with %s", name, fp, other)
			}
		}
		distinct[name] = fp
	}
}
