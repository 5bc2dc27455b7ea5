/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package schema

import (
	"fmt"
	"strings"

	"chainguard.dev/promptkit/prompt/element"
	"chainguard.dev/promptkit/prompt/render"
	"github.com/invopop/jsonschema"
)

// newReflector returns a reflector whose property names follow json tags, so
// they line up with the dotted references a template makes.
func newReflector() *jsonschema.Reflector {
	return &jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  true,
		DoNotReference:             true,
	}
}

// Reflect derives the schema of a typed input value.
func Reflect(v any) *jsonschema.Schema {
	return newReflector().Reflect(v)
}

// ReflectType reflects the zero value of T.
func ReflectType[T any]() *jsonschema.Schema {
	var zero T
	return Reflect(&zero)
}

// CheckInputs reports an error wrapping render.ErrMissingInput when values of
// type T cannot satisfy every reference of el. Run it once where a template
// and its input type are paired, rather than discovering gaps at render time.
func CheckInputs[T any](el *element.Element) error {
	missing := Uncovered(el, ReflectType[T]())
	if len(missing) == 0 {
		return nil
	}
	var zero T
	return fmt.Errorf("%s: %T does not provide %s: %w", el.Identity(), zero, strings.Join(missing, ", "), render.ErrMissingInput)
}
