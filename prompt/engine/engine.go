/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package engine

import (
	"context"
	"fmt"
	"slices"
	"time"

	"chainguard.dev/promptkit/prompt/cache"
	"chainguard.dev/promptkit/prompt/clock"
	"chainguard.dev/promptkit/prompt/compiler"
	"chainguard.dev/promptkit/prompt/element"
	"chainguard.dev/promptkit/prompt/metrics"
	"chainguard.dev/promptkit/prompt/preprocess"
	"chainguard.dev/promptkit/prompt/render"
	"github.com/chainguard-dev/clog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const instrumentationName = "chainguard.prompts.engine"

// Engine compiles and renders templates. It is safe for concurrent use.
type Engine struct {
	clock   clock.Clock
	options []compiler.Option
	cache   *cache.Cache
	metrics *metrics.Prompt
	tracer  oteltrace.Tracer
}

// Option customizes an Engine beyond what Config expresses.
type Option func(*Engine)

// WithClock overrides the clock derived from Config.FixedTime.
func WithClock(c clock.Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithCache shares an existing cache. A nil cache disables caching.
func WithCache(c *cache.Cache) Option {
	return func(e *Engine) {
		e.cache = c
	}
}

// WithMetrics records measurements on m instead of the global meter.
func WithMetrics(m *metrics.Prompt) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithTracerProvider starts spans on tp instead of the global provider.
func WithTracerProvider(tp oteltrace.TracerProvider) Option {
	return func(e *Engine) {
		e.tracer = tp.Tracer(instrumentationName, oteltrace.WithInstrumentationVersion("1.0.0"))
	}
}

// New creates an engine from cfg.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	clk, err := cfg.clock()
	if err != nil {
		return nil, err
	}

	e := &Engine{
		clock:   clk,
		options: cfg.compilerOptions(),
	}
	if !cfg.DisableCache {
		e.cache = cache.New(cache.WithMaxEntries(cfg.CacheSize), cache.WithName(cfg.MeterName))
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.clock == nil {
		e.clock = clock.System()
	}
	if e.metrics == nil {
		e.metrics = metrics.New(cfg.MeterName)
	}
	if e.tracer == nil {
		e.tracer = otel.Tracer(instrumentationName, oteltrace.WithInstrumentationVersion("1.0.0"))
	}
	return e, nil
}

// Clock returns the clock renders read.
func (e *Engine) Clock() clock.Clock {
	return e.clock
}

// Compile preprocesses source and compiles it as identity. When the default
// import is injected, positions in the element and in any *CompileError still
// refer to the lines of source as written.
func (e *Engine) Compile(ctx context.Context, source, identity string) (*element.Element, error) {
	normalized := preprocess.Preprocess(source)
	injected := preprocess.NeedsImportInjection(source)

	ctx, span := e.tracer.Start(ctx, "prompt.compile", oteltrace.WithAttributes(
		attribute.String("prompt.template", identity),
		attribute.Bool("prompt.import_injected", injected),
	))
	defer span.End()

	opts := e.options
	if injected {
		opts = append(slices.Clone(opts), compiler.WithFirstLine(0))
	}
	compile := func() (*element.Element, error) {
		el, err := compiler.Compile(normalized, identity, opts...)
		e.metrics.RecordCompile(ctx, identity, err)
		return el, err
	}

	var el *element.Element
	var err error
	if e.cache != nil {
		key := cache.KeyFor(source, identity).WithOptions(compiler.Fingerprint(opts...))
		el, err = e.cache.GetOrCompile(key, compile)
	} else {
		el, err = compile()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		clog.FromContext(ctx).With("template", identity).
			With("error", err.Error()).
			Warn("Failed to compile template")
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	clog.FromContext(ctx).With("template", identity).
		With("sections", len(el.Sections())).
		Debug("Compiled template")
	return el, nil
}

// Render renders el with inputs against the engine's clock. Callers branch on
// the result's OK field.
func (e *Engine) Render(ctx context.Context, el *element.Element, inputs map[string]any) render.Result {
	var identity string
	if el != nil {
		identity = el.Identity()
	}

	ctx, span := e.tracer.Start(ctx, "prompt.render", oteltrace.WithAttributes(
		attribute.String("prompt.template", identity),
		attribute.Int("prompt.inputs", len(inputs)),
	))
	defer span.End()

	start := time.Now()
	res := render.Render(el, render.Context{Inputs: inputs, Clock: e.clock})

	var missing []string
	if res.Err != nil {
		missing = res.Err.Missing
	}
	e.metrics.RecordRender(ctx, identity, res.OK, len(missing), time.Since(start))

	if !res.OK {
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, res.Err.Error())
		clog.FromContext(ctx).With("template", identity).
			With("missing", missing).
			With("error", res.Err.Error()).
			Warn("Failed to render template")
		return res
	}

	span.SetAttributes(attribute.Int("prompt.text_length", len(res.Text)))
	span.SetStatus(codes.Ok, "")
	clog.FromContext(ctx).With("template", identity).
		With("bytes", len(res.Text)).
		Debug("Rendered template")
	return res
}

// RenderSource compiles source and renders it. A compile failure is returned
// as the error; render failures are reported through the result.
func (e *Engine) RenderSource(ctx context.Context, source, identity string, inputs map[string]any) (render.Result, error) {
	el, err := e.Compile(ctx, source, identity)
	if err != nil {
		return render.Result{}, err
	}
	return e.Render(ctx, el, inputs), nil
}
