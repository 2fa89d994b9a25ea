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
	"net/netip"
	"strings"

	"github.com/ferronweb/ferron/ferrcfg/condition"
)

// hostnameMatches implements literal case-insensitive equality with
// trailing-dot tolerance, plus "*." wildcard matching any strictly deeper
// label sequence and the bare root.
func hostnameMatches(pattern, host string) bool {
	if pattern == "" {
		return true
	}

	pattern = strings.ToLower(strings.TrimSuffix(pattern, "."))
	host = strings.ToLower(strings.TrimSuffix(host, "."))

	if !strings.HasPrefix(pattern, "*.") {
		return pattern == host
	}

	suffix := pattern[2:]
	if host == suffix {
		return true
	}

	return strings.HasSuffix(host, "."+suffix)
}

func ipMatches(pattern, ip string) bool {
	if pattern == "" {
		return true
	}

	if strings.Contains(pattern, "/") {
		prefix, err := netip.ParsePrefix(pattern)
		if err != nil {
			return false
		}
		addr, err := netip.ParseAddr(ip)
		if err != nil {
			return false
		}
		return prefix.Contains(addr)
	}

	return pattern == ip
}

func portMatches(pattern, port int) bool {
	return pattern == 0 || pattern == port
}

func pathMatches(pattern, path string) bool {
	if pattern == "" {
		return true
	}
	return strings.HasPrefix(path, pattern)
}

func conditionMatches(expr string, ctx RequestContext) (bool, error) {
	if expr == "" {
		return true, nil
	}
	return condition.Eval(expr, condition.Env{
		Hostname:  ctx.Hostname,
		IP:        ctx.IP,
		Port:      ctx.Port,
		Path:      ctx.Path,
		Encrypted: ctx.Encrypted,
	})
}

// filtersMatch checks every filter on f against ctx, not counting tier/path
// shape (callers pick which blocks to consider per tier first).
func filtersMatch(f Filters, ctx RequestContext) (bool, error) {
	if !hostnameMatches(f.Hostname, ctx.Hostname) {
		return false, nil
	}
	if !ipMatches(f.IP, ctx.IP) {
		return false, nil
	}
	if !portMatches(f.Port, ctx.Port) {
		return false, nil
	}
	if !pathMatches(f.Path, ctx.Path) {
		return false, nil
	}

	return conditionMatches(f.Condition, ctx)
}

// hostSpecificity ranks an exact hostname match above a wildcard match,
// used to pick the single most-specific host block.
func hostSpecificity(pattern string) int {
	if strings.HasPrefix(pattern, "*.") {
		return 1
	}
	return 2
}
