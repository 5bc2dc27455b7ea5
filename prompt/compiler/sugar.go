/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package compiler

import "chainguard.dev/promptkit/prompt/element"

// MustCompile is like Compile but panics on error. It is intended for
// package-level templates known to be valid:
//
//	var reviewer = compiler.MustCompile(preprocess.Preprocess(src), "review.prompt")
func MustCompile(source, identity string, opts ...Option) *element.Element {
	el, err := Compile(source, identity, opts...)
	if err != nil {
		panic(err)
	}
	return el
}
