/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	hitCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prompt_cache_hits_total",
			Help: "Total number of compiled element cache hits",
		},
		[]string{"cache"},
	)

	missCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prompt_cache_misses_total",
			Help: "Total number of compiled element cache misses",
		},
		[]string{"cache"},
	)

	evictionCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prompt_cache_evictions_total",
			Help: "Total number of compiled elements evicted from the cache",
		},
		[]string{"cache"},
	)
)
