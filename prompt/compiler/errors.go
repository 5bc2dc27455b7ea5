/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package compiler

import (
	"fmt"

	"chainguard.dev/promptkit/prompt/element"
)

// CompileError reports a structural defect in template source.
// Compile returns no element alongside it.
type CompileError struct {
	// Identity is the logical filename of the template.
	Identity string
	// Pos locates the defect in the preprocessed source.
	Pos element.Position
	// Msg describes the defect.
	Msg string
	// Hint optionally suggests a fix.
	Hint string
}

func (e *CompileError) Error() string {
	identity := e.Identity
	if identity == "" {
		identity = "<prompt>"
	}
	msg := fmt.Sprintf("%s:%s: %s", identity, e.Pos, e.Msg)
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}
