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

import "sync"

// connGuard tracks one Upstream's live connection count for the balancer
// algorithms that need it (two-random-choices, least-connections). Acquire
// increments on construction; Release decrements exactly once even if called
// more than once or deferred on an error path, eliminating double-decrement
// bugs around cancellation.
type connGuard struct {
	upstream *Upstream
	once     sync.Once
}

// acquireConn increments u's live count and returns a guard whose Release
// gives it back. Callers should defer Release immediately after acquiring.
func acquireConn(u *Upstream) *connGuard {
	u.liveConns.Add(1)
	return &connGuard{upstream: u}
}

// Release decrements the tracked upstream's live count. Safe to call more
// than once; only the first call has any effect.
func (g *connGuard) Release() {
	g.once.Do(func() {
		g.upstream.liveConns.Add(-1)
	})
}
