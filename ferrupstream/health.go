/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package ferrupstream

import (
	"sync"
	"time"
)

// HealthCache maps UpstreamKey to a consecutive-failure count, each entry
// expiring after a fixed TTL from its last failure. Unlike the Caddy
// reference (a sticky int32 that only a manual reset clears), failures here
// decay on their own: the entry is dropped, not merely discounted, once its
// TTL has elapsed.
type HealthCache struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[UpstreamKey]*healthEntry
}

type healthEntry struct {
	failures int
	expires  time.Time
}

// NewHealthCache builds a HealthCache whose entries expire ttl after their
// most recent failure.
func NewHealthCache(ttl time.Duration) *HealthCache {
	return &HealthCache{ttl: ttl, entries: make(map[UpstreamKey]*healthEntry)}
}

// RecordFailure increments key's failure count and resets its expiry to now
// + ttl. Successes never call this — the health model only decays by TTL
// expiry, never by an observed success.
func (h *HealthCache) RecordFailure(key UpstreamKey) {
	h.recordFailureAt(key, time.Now())
}

func (h *HealthCache) recordFailureAt(key UpstreamKey, now time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()

	e, ok := h.entries[key]
	if !ok || now.After(e.expires) {
		e = &healthEntry{}
		h.entries[key] = e
	}
	e.failures++
	e.expires = now.Add(h.ttl)
}

// Failures reports key's current consecutive-failure count, or 0 if no
// unexpired entry exists.
func (h *HealthCache) Failures(key UpstreamKey) int {
	return h.failuresAt(key, time.Now())
}

func (h *HealthCache) failuresAt(key UpstreamKey, now time.Time) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	e, ok := h.entries[key]
	if !ok {
		return 0
	}
	if now.After(e.expires) {
		delete(h.entries, key)
		return 0
	}
	return e.failures
}

// Healthy reports whether key's failure count is at or below maxFailures.
func (h *HealthCache) Healthy(key UpstreamKey, maxFailures int) bool {
	return h.Failures(key) <= maxFailures
}
