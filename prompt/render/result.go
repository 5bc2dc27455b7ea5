/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package render

import (
	"errors"
	"fmt"
	"strings"

	"chainguard.dev/promptkit/prompt/element"
)

// ErrMissingInput matches a Diagnostic that names at least one unresolved
// reference.
var ErrMissingInput = errors.New("missing input")

// ErrNilElement is the failure reported when Render is given no element.
var ErrNilElement = errors.New("cannot render a nil element")

// Result is the outcome of a single render.
type Result struct {
	// OK reports whether every expression resolved.
	OK bool
	// Text is the rendered output. It is empty when OK is false.
	Text string
	// Err describes why the render failed. It is nil when OK is true.
	Err *Diagnostic
}

// AsError returns Err as an error, or nil for a successful result.
func (r Result) AsError() error {
	if r.Err == nil {
		return nil
	}
	return r.Err
}

// Failure is an expression that resolved but could not be turned into text.
// Failures that belong to the render as a whole carry no Expression.
type Failure struct {
	Expression string
	Pos        element.Position
	Err        error
}

// Diagnostic enumerates every problem found while rendering a template.
type Diagnostic struct {
	// Identity is the logical filename of the template.
	Identity string
	// Missing lists unresolved references in order of first occurrence.
	Missing []string
	// Failures lists value conversion and filter errors.
	Failures []Failure
}

func (d *Diagnostic) Error() string {
	var parts []string
	switch len(d.Missing) {
	case 0:
	case 1:
		parts = append(parts, "missing input: "+d.Missing[0])
	default:
		parts = append(parts, "missing inputs: "+strings.Join(d.Missing, ", "))
	}
	for _, f := range d.Failures {
		if f.Expression == "" {
			parts = append(parts, f.Err.Error())
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: {{%s}}: %v", f.Pos, f.Expression, f.Err))
	}

	identity := d.Identity
	if identity == "" {
		identity = "<prompt>"
	}
	return identity + ": " + strings.Join(parts, "; ")
}

// Is reports whether target is ErrMissingInput and inputs are missing.
func (d *Diagnostic) Is(target error) bool {
	return target == ErrMissingInput && len(d.Missing) > 0
}

// Unwrap exposes the individual failure errors.
func (d *Diagnostic) Unwrap() []error {
	errs := make([]error, 0, len(d.Failures))
	for _, f := range d.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}
