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

package ferrcfg

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// ResolverCache wraps a Set with a thread-safe memo of Resolve results keyed
// by request context, so repeated requests to the same host/path/status
// between reloads skip the block walk. Swap lets a reload install a new Set
// and drop every memoized entry atomically, mirroring how a live registry
// is replaced wholesale rather than patched entry by entry.
type ResolverCache struct {
	set atomic.Pointer[Set]
	mem sync.Map // string -> Effective
}

// NewResolverCache builds a cache over set, ready to serve Resolve calls.
func NewResolverCache(set Set) *ResolverCache {
	c := &ResolverCache{}
	c.set.Store(&set)
	return c
}

// Resolve returns the Effective configuration for ctx, computing and
// memoizing it on first use.
func (c *ResolverCache) Resolve(ctx RequestContext) (Effective, error) {
	key := cacheKey(ctx)

	if v, ok := c.mem.Load(key); ok {
		return v.(Effective), nil
	}

	set := *c.set.Load()

	eff, err := set.Resolve(ctx)
	if err != nil {
		return Effective{}, err
	}

	c.mem.Store(key, eff)

	return eff, nil
}

// Swap installs set as the active configuration and discards every
// memoized entry, so subsequent Resolve calls are computed against set.
func (c *ResolverCache) Swap(set Set) {
	c.set.Store(&set)

	c.mem.Range(func(key, _ any) bool {
		c.mem.Delete(key)
		return true
	})
}

func cacheKey(ctx RequestContext) string {
	return fmt.Sprintf("%s|%s|%d|%s|%t|%d", ctx.Hostname, ctx.IP, ctx.Port, ctx.Path, ctx.Encrypted, ctx.ErrorStatus)
}
