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

// Package ferrupstream selects a backend for a reverse-proxied request,
// tracks its health, and pools the connections opened to it for reuse. A
// Pool owns a fixed set of Upstreams for one proxy module instance; backends
// are never added or removed after the pool is built.
package ferrupstream

import (
	"fmt"
	"net"
	"sync/atomic"
	"time"
)

// UpstreamKey identifies one backend for pooling and health tracking.
// TLSIdentity distinguishes otherwise-identical (scheme, host, port) triples
// presented under different client certificates or SNI names.
type UpstreamKey struct {
	Scheme      string
	Host        string
	Port        int
	TLSIdentity string
}

func (k UpstreamKey) String() string {
	if k.TLSIdentity == "" {
		return fmt.Sprintf("%s://%s:%d", k.Scheme, k.Host, k.Port)
	}
	return fmt.Sprintf("%s://%s:%d#%s", k.Scheme, k.Host, k.Port, k.TLSIdentity)
}

// Upstream is one backend in a Pool: its identity plus the live state the
// balancer algorithms and health model read and mutate.
type Upstream struct {
	Key UpstreamKey

	liveConns atomic.Int64
}

// LiveConnections is the current count of in-flight connections this
// Upstream is lending out, read by two-random-choices and least-connections.
func (u *Upstream) LiveConnections() int64 {
	return u.liveConns.Load()
}

// PooledConnection is a live, idle, protocol-versioned sender plus its last
// use time. Created on demand by a Pool, lent by exclusive reservation to one
// request at a time, and returned on completion unless marked closed.
type PooledConnection struct {
	Key      UpstreamKey
	Conn     net.Conn
	Proto    string
	lastUsed time.Time
	closed   bool
}

// Ready reports whether the underlying connection is usable: not explicitly
// closed, and not observed to have been closed by the peer (a zero-byte
// non-blocking read would be needed to detect the latter precisely; callers
// that can check this — e.g. an HTTP/1 keep-alive reader — should combine
// this with their own liveness probe before reuse).
func (p *PooledConnection) Ready() bool {
	return p != nil && !p.closed
}

// Close marks the connection closed and releases the underlying net.Conn.
func (p *PooledConnection) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	return p.Conn.Close()
}

// idleFor reports how long this connection has sat unused.
func (p *PooledConnection) idleFor(now time.Time) time.Duration {
	return now.Sub(p.lastUsed)
}
