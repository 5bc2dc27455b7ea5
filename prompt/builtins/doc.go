/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package builtins holds the modules, filters and value conversion shared by the
compiler and the renderer.

# Modules

A template imports a module with a directive line:

	import std
	import std as s

Module helpers are then referenced bare ({{date}}) or qualified by the module
name or alias ({{s.date}}). The std module derives every helper from the
render's clock:

  - now: RFC 3339 timestamp
  - date: 2006-01-02
  - time: 15:04:05
  - year: four digit year
  - weekday: English weekday name
  - timestamp: Unix seconds

# Filters

Expressions pipe their value through filters left to right:

	{{ findings | json }}
	{{ title | trim | upper }}

The json, xml and yaml filters encode structured values with the standard
encoders. The text filters (trim, upper, lower) first convert their input
with Text. The diffstat filter reads a unified diff and lists each changed
file with its added and removed line counts:

	{{ gitDiff | diffstat }}
*/
package builtins
