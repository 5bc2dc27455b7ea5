/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package cache memoizes compiled elements by source, identity and compiler
// options.
//
// Readers never block each other. Concurrent misses on the same key share a
// single compilation, and only complete elements are ever stored: a failed
// compilation leaves the key absent.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"chainguard.dev/promptkit/prompt/element"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"
)

// Key identifies a compiled element.
type Key struct {
	// Digest is the hex SHA-256 of the source.
	Digest string
	// Identity is the logical filename the source was compiled under.
	Identity string
	// Options fingerprints the compiler options. Elements compiled under
	// different options never share an entry.
	Options string
}

// KeyFor builds the key for source compiled as identity.
func KeyFor(source, identity string) Key {
	sum := sha256.Sum256([]byte(source))
	return Key{Digest: hex.EncodeToString(sum[:]), Identity: identity}
}

// WithOptions returns k scoped to the compiler options fingerprint.
func (k Key) WithOptions(fingerprint string) Key {
	k.Options = fingerprint
	return k
}

func (k Key) String() string {
	if k.Options == "" {
		return k.Identity + "@" + k.Digest
	}
	return k.Identity + "@" + k.Digest + "[" + k.Options + "]"
}

// Option configures a Cache.
type Option func(*Cache)

// WithMaxEntries bounds the cache. When full, the oldest entry is evicted.
// Zero or less means unbounded.
func WithMaxEntries(n int) Option {
	return func(c *Cache) {
		c.max = n
	}
}

// WithName sets the cache label used on metrics.
func WithName(name string) Option {
	return func(c *Cache) {
		c.name = name
	}
}

// Cache holds compiled elements.
type Cache struct {
	name string
	max  int

	mu      sync.RWMutex
	entries map[Key]*element.Element
	order   []Key

	group singleflight.Group

	hits, misses, evictions prometheus.Counter
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		name:    "default",
		entries: make(map[Key]*element.Element),
	}
	for _, opt := range opts {
		opt(c)
	}
	labels := prometheus.Labels{"cache": c.name}
	c.hits = hitCounter.With(labels)
	c.misses = missCounter.With(labels)
	c.evictions = evictionCounter.With(labels)
	return c
}

// Get returns the element stored under key.
func (c *Cache) Get(key Key) (*element.Element, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	el, ok := c.entries[key]
	return el, ok
}

// GetOrCompile returns the element stored under key, calling compile to
// produce and store it on a miss. Concurrent callers for the same key share
// one call to compile. Errors are returned to every waiting caller and are not
// cached.
func (c *Cache) GetOrCompile(key Key, compile func() (*element.Element, error)) (*element.Element, error) {
	if el, ok := c.Get(key); ok {
		c.hits.Inc()
		return el, nil
	}
	c.misses.Inc()

	v, err, _ := c.group.Do(key.String(), func() (any, error) {
		// Another flight may have stored it between our Get and Do.
		if el, ok := c.Get(key); ok {
			return el, nil
		}
		el, err := compile()
		if err != nil {
			return nil, err
		}
		c.put(key, el)
		return el, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*element.Element), nil
}

func (c *Cache) put(key Key, el *element.Element) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		return
	}
	c.entries[key] = el
	c.order = append(c.order, key)

	for c.max > 0 && len(c.order) > c.max {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
		c.evictions.Inc()
	}
}

// Len returns the number of stored elements.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Purge removes every stored element.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[Key]*element.Element)
	c.order = nil
}
