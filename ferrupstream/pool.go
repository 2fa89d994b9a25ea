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
	"sync/atomic"
	"time"
)

// Config describes one Pool's fixed set of backends and balancing policy.
type Config struct {
	Upstreams          []UpstreamKey
	Algorithm          Algorithm
	HealthCheckEnabled bool
	MaxFailures        int
	FailureTTL         time.Duration
	IdleTimeout        time.Duration
}

// Pool is a fixed set of Upstreams reachable through one balancing policy,
// plus the connection-reuse table keyed by UpstreamKey for senders opened to
// them. One Pool backs one proxy module instance.
type Pool struct {
	upstreams   []*Upstream
	algo        Algorithm
	maxFailures int
	healthCheck bool
	health      *HealthCache
	idleTimeout time.Duration

	counter atomic.Uint64

	connsMu sync.Mutex
	conns   map[UpstreamKey][]*PooledConnection

	closed atomic.Bool
}

// NewPool builds a Pool from cfg. At least one upstream is required.
func NewPool(cfg Config) (*Pool, error) {
	if len(cfg.Upstreams) == 0 {
		return nil, ErrorNoUpstreams.Error()
	}

	upstreams := make([]*Upstream, len(cfg.Upstreams))
	for i, k := range cfg.Upstreams {
		upstreams[i] = &Upstream{Key: k}
	}

	ttl := cfg.FailureTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &Pool{
		upstreams:   upstreams,
		algo:        cfg.Algorithm,
		maxFailures: cfg.MaxFailures,
		healthCheck: cfg.HealthCheckEnabled,
		health:      NewHealthCache(ttl),
		idleTimeout: cfg.IdleTimeout,
		conns:       make(map[UpstreamKey][]*PooledConnection),
	}, nil
}

// Select picks one Upstream per the pool's Algorithm and health model,
// returning a connGuard the caller must Release once the request using it
// completes. With health checking enabled, a candidate whose failure count
// exceeds MaxFailures is discarded and another picked, until candidates run
// out — the last one discarded is then used anyway (fail-open).
func (p *Pool) Select() (*Upstream, *connGuard, error) {
	if p.closed.Load() {
		return nil, nil, ErrorPoolClosed.Error()
	}
	if len(p.upstreams) == 0 {
		return nil, nil, ErrorNoUpstreams.Error()
	}

	if !p.healthCheck {
		u := p.pick(p.upstreams)
		return u, acquireConn(u), nil
	}

	candidates := append([]*Upstream(nil), p.upstreams...)
	var picked *Upstream
	for len(candidates) > 0 {
		picked = p.pick(candidates)
		if p.health.Healthy(picked.Key, p.maxFailures) {
			return picked, acquireConn(picked), nil
		}
		candidates = removeUpstream(candidates, picked)
	}
	return picked, acquireConn(picked), nil
}

func removeUpstream(list []*Upstream, u *Upstream) []*Upstream {
	out := make([]*Upstream, 0, len(list)-1)
	for _, c := range list {
		if c != u {
			out = append(out, c)
		}
	}
	return out
}

// RecordFailure increments u's failure count following an observed
// connection error. Successes are never recorded; the counter only decays
// through TTL expiry.
func (p *Pool) RecordFailure(u *Upstream) {
	p.health.RecordFailure(u.Key)
}

// Acquire returns a pooled connection for key if one is idle and has not
// exceeded the configured idle timeout, evicting any expired entries found
// along the way. It returns nil if no usable connection is pooled.
func (p *Pool) Acquire(key UpstreamKey) *PooledConnection {
	p.connsMu.Lock()
	defer p.connsMu.Unlock()

	list := p.conns[key]
	now := time.Now()
	for len(list) > 0 {
		last := len(list) - 1
		conn := list[last]
		list = list[:last]

		if !conn.Ready() {
			continue
		}
		if p.idleTimeout > 0 && conn.idleFor(now) > p.idleTimeout {
			_ = conn.Close()
			continue
		}

		p.conns[key] = list
		return conn
	}

	p.conns[key] = list
	return nil
}

// Put returns conn to the pool for reuse, unless it has been marked closed.
func (p *Pool) Put(conn *PooledConnection) {
	if conn == nil || !conn.Ready() {
		return
	}
	conn.lastUsed = time.Now()

	p.connsMu.Lock()
	defer p.connsMu.Unlock()
	p.conns[conn.Key] = append(p.conns[conn.Key], conn)
}

// Close evicts and closes every pooled connection. Upstreams already
// selected via Select keep running; Close only affects idle reuse.
func (p *Pool) Close() error {
	p.closed.Store(true)

	p.connsMu.Lock()
	defer p.connsMu.Unlock()
	for key, list := range p.conns {
		for _, conn := range list {
			_ = conn.Close()
		}
		delete(p.conns, key)
	}
	return nil
}
