/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package metrics records OpenTelemetry metrics for prompt compilation and
// rendering.
package metrics

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// AttributeEnricher adds application attributes to the base attributes
// (template identity, outcome) recorded with every measurement.
type AttributeEnricher func(ctx context.Context, baseAttrs []attribute.KeyValue) []attribute.KeyValue

// Prompt provides counters for compilations, renders and missing inputs, and
// a render duration histogram. Instruments that fail to initialize degrade to
// no-ops instead of failing the caller.
type Prompt struct {
	compiles      metric.Int64Counter
	renders       metric.Int64Counter
	missingInputs metric.Int64Counter
	renderTime    metric.Float64Histogram
	attrEnricher  AttributeEnricher
}

// New creates metrics on the meter with the given name.
func New(meterName string) *Prompt {
	return NewWithMeter(otel.Meter(meterName, metric.WithInstrumentationVersion("1.0.0")))
}

// NewWithMeter creates metrics on an explicit meter.
func NewWithMeter(meter metric.Meter) *Prompt {
	compiles, err := meter.Int64Counter("prompt.compile.count",
		metric.WithDescription("The number of template compilations"),
		metric.WithUnit("{compilations}"))
	if err != nil {
		slog.Warn("Failed to create compile counter, metrics will be disabled", "error", err)
		compiles = noop.Int64Counter{}
	}

	renders, err := meter.Int64Counter("prompt.render.count",
		metric.WithDescription("The number of template renders"),
		metric.WithUnit("{renders}"))
	if err != nil {
		slog.Warn("Failed to create render counter, metrics will be disabled", "error", err)
		renders = noop.Int64Counter{}
	}

	missingInputs, err := meter.Int64Counter("prompt.render.missing_inputs",
		metric.WithDescription("The number of unresolved references reported by renders"),
		metric.WithUnit("{references}"))
	if err != nil {
		slog.Warn("Failed to create missing input counter, metrics will be disabled", "error", err)
		missingInputs = noop.Int64Counter{}
	}

	renderTime, err := meter.Float64Histogram("prompt.render.duration",
		metric.WithDescription("Time spent rendering a compiled template"),
		metric.WithUnit("ms"))
	if err != nil {
		slog.Warn("Failed to create render duration histogram, metrics will be disabled", "error", err)
		renderTime = noop.Float64Histogram{}
	}

	return &Prompt{
		compiles:      compiles,
		renders:       renders,
		missingInputs: missingInputs,
		renderTime:    renderTime,
	}
}

// SetAttributeEnricher sets the enricher consulted before each recording.
func (m *Prompt) SetAttributeEnricher(enricher AttributeEnricher) {
	m.attrEnricher = enricher
}

// RecordCompile records one compilation of identity.
func (m *Prompt) RecordCompile(ctx context.Context, identity string, err error) {
	attrs := m.attributes(ctx, identity, err == nil)
	m.compiles.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRender records one render of identity, the number of references it
// could not resolve, and how long it took.
func (m *Prompt) RecordRender(ctx context.Context, identity string, ok bool, missing int, elapsed time.Duration) {
	attrs := m.attributes(ctx, identity, ok)
	m.renders.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.renderTime.Record(ctx, float64(elapsed)/float64(time.Millisecond), metric.WithAttributes(attrs...))
	if missing > 0 {
		m.missingInputs.Add(ctx, int64(missing), metric.WithAttributes(attrs...))
	}
}

func (m *Prompt) attributes(ctx context.Context, identity string, ok bool) []attribute.KeyValue {
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	attrs := []attribute.KeyValue{
		attribute.String("template", identity),
		attribute.String("outcome", outcome),
	}
	if m.attrEnricher != nil {
		attrs = m.attrEnricher(ctx, attrs)
	}
	return attrs
}
