/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package clock provides the time source consulted by the renderer.
package clock

import (
	"fmt"
	"time"
)

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// Func adapts an ordinary function to the Clock interface.
type Func func() time.Time

// Now implements Clock.
func (f Func) Now() time.Time {
	return f()
}

type system struct{}

func (system) Now() time.Time {
	return time.Now()
}

// System returns a Clock backed by the wall clock.
func System() Clock {
	return system{}
}

type fixed struct {
	t time.Time
}

func (f fixed) Now() time.Time {
	return f.t
}

// Fixed returns a Clock that always reports t.
// Two renders against the same fixed clock produce identical output.
func Fixed(t time.Time) Clock {
	return fixed{t: t}
}

// Parse builds a fixed Clock from an RFC 3339 timestamp.
func Parse(s string) (Clock, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("parsing fixed time %q: %w", s, err)
	}
	return Fixed(t), nil
}
