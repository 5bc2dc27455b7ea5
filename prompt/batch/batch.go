/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package batch renders many templates concurrently.
package batch

import (
	"context"

	"chainguard.dev/promptkit/prompt/render"
	"golang.org/x/sync/errgroup"
)

// Renderer compiles and renders a single source. *engine.Engine satisfies it.
type Renderer interface {
	RenderSource(ctx context.Context, source, identity string, inputs map[string]any) (render.Result, error)
}

// Job is one template to render.
type Job struct {
	Identity string
	Source   string
	Inputs   map[string]any
}

// Outcome is the result of a Job. Err holds a compile failure; render
// failures are reported through Result.
type Outcome struct {
	Identity string
	Result   render.Result
	Err      error
}

// OK reports whether the job compiled and rendered.
func (o Outcome) OK() bool {
	return o.Err == nil && o.Result.OK
}

// Run renders jobs with at most limit in flight (no limit when limit <= 0).
// Outcomes are returned in job order. A failing job does not stop the others;
// Run only returns an error when ctx is done before every job has started.
func Run(ctx context.Context, r Renderer, jobs []Job, limit int) ([]Outcome, error) {
	outcomes := make([]Outcome, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := r.RenderSource(ctx, job.Source, job.Identity, job.Inputs)
			outcomes[i] = Outcome{Identity: job.Identity, Result: res, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

// Failed returns the outcomes that did not render.
func Failed(outcomes []Outcome) []Outcome {
	var out []Outcome
	for _, o := range outcomes {
		if !o.OK() {
			out = append(out, o)
		}
	}
	return out
}
