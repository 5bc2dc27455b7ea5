/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package compiler

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultMaxDepth bounds section nesting.
const DefaultMaxDepth = 64

type options struct {
	maxDepth  int
	firstLine int
	required  [][]string
}

// Option configures Compile.
type Option func(*options) error

// WithMaxDepth bounds how deeply sections may nest.
func WithMaxDepth(depth int) Option {
	return func(o *options) error {
		if depth < 1 {
			return errors.New("max depth must be at least 1")
		}
		o.maxDepth = depth
		return nil
	}
}

// WithFirstLine sets the line number reported for the first line of source.
// Callers that prepend generated lines pass a smaller value so that
// positions keep pointing into the text the author wrote.
func WithFirstLine(line int) Option {
	return func(o *options) error {
		if line < 0 {
			return errors.New("first line must not be negative")
		}
		o.firstLine = line
		return nil
	}
}

// WithRequiredSections makes each named section mandatory. An entry may list
// alternatives separated by "|", e.g. "context|contexts", in which case any
// one of them satisfies the requirement.
func WithRequiredSections(names ...string) Option {
	return func(o *options) error {
		for _, name := range names {
			var alts []string
			for alt := range strings.SplitSeq(name, "|") {
				alt = strings.TrimSpace(alt)
				if !isValidTagName(alt) {
					return errors.New("invalid required section name: " + name)
				}
				alts = append(alts, alt)
			}
			o.required = append(o.required, alts)
		}
		return nil
	}
}

// ValidateOptions reports the first configuration error among opts without
// compiling anything.
func ValidateOptions(opts ...Option) error {
	var o options
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return err
		}
	}
	return nil
}

// Fingerprint describes the effective settings of opts as a stable string.
// Two option lists with equal fingerprints compile any source identically,
// so caches use it to keep elements from differently configured compilers
// apart. Invalid options yield a fingerprint naming the error.
func Fingerprint(opts ...Option) string {
	o := options{maxDepth: DefaultMaxDepth, firstLine: 1}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return "invalid:" + err.Error()
		}
	}
	required := make([]string, len(o.required))
	for i, alts := range o.required {
		required[i] = strings.Join(alts, "|")
	}
	return fmt.Sprintf("max-depth=%d;first-line=%d;required=%s", o.maxDepth, o.firstLine, strings.Join(required, ","))
}
