/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package engine ties the preprocessor, compiler, cache and renderer together.

An Engine is configured from the environment:

	cfg, err := engine.LoadConfig(ctx)
	if err != nil {
		return err
	}
	eng, err := engine.New(cfg)
	if err != nil {
		return err
	}

	res, err := eng.RenderSource(ctx, source, "code-review", map[string]any{
		"codeToReview": diff,
	})
	if err != nil {
		// The template itself is malformed; see *compiler.CompileError.
		return err
	}
	if !res.OK {
		// res.Err names every missing input.
		return res.AsError()
	}

# Configuration

	PROMPT_FIXED_TIME         RFC 3339 instant for std helpers (default: system clock)
	PROMPT_REQUIRED_SECTIONS  comma separated sections, "|" for alternatives
	PROMPT_MAX_DEPTH          section nesting limit (default: 64)
	PROMPT_CACHE_SIZE         compiled templates kept, 0 for unbounded (default: 256)
	PROMPT_DISABLE_CACHE      compile on every call (default: false)
	PROMPT_METER_NAME         OpenTelemetry meter name (default: chainguard.prompts)

# Observability

Compile and Render start "prompt.compile" and "prompt.render" spans, record
the counters and histogram of package metrics, and log through the clog
logger carried by the context. Failures log at Warn, successes at Debug.
*/
package engine
