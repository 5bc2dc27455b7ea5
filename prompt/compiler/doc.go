/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package compiler turns preprocessed prompt source into an element tree.

# Template Syntax

Sections are delimited by tags whose names authors choose freely:

	<role>You are a careful reviewer.</role>
	<contexts>
	  <context>{{ repository }}</context>
	</contexts>

A tag is exactly <name> or </name> where name matches [A-Za-z][A-Za-z0-9_-]*.
Anything else, such as "a < b" or <a href="x">, is literal text. Write \< to
emit a "<" that must never start a tag.

Expressions reference runtime inputs or module helpers:

	{{ codeToReview }}
	{{ user.name }}
	{{ findings | json }}
	{{ std.date }}

Each path segment must start with a letter and contain only letters, digits
and underscores. Write \{{ to emit literal braces.

Import directives occupy a whole line and are never rendered:

	import std
	import std as s

# Validation

Compile rejects unbalanced or mismatched tags, malformed expressions, unknown
filters or modules, and nesting deeper than the configured limit. Required
sections can be enforced with WithRequiredSections. Errors are returned as
*CompileError values carrying the template identity and a line:column
position; no partial element is ever returned.
*/
package compiler
