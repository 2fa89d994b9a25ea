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

package ferrtls

import (
	"crypto/tls"
	"strings"

	libatm "github.com/ferronweb/ferron/atomic"
)

// radixNode is one label of the reversed-hostname radix tree: children are
// keyed by the next label walking from TLD toward the leaf, so "a.b.c" is
// stored along the path c -> b -> a. A wildcard pattern "*.b.c" is recorded
// on the node reached by c -> b, which is what lets it match both "x.b.c"
// (one more label consumed, falls off the tree, so the walk stops at b.c's
// accumulated wildcard) and "b.c" itself (the walk fully consumes its own
// path and finds no exact entry, so it falls back to the same wildcard).
type radixNode struct {
	children map[string]*radixNode
	exact    TLSConfig
	wildcard TLSConfig
}

// CertificateResolver selects a TLSConfig for a ClientHello's SNI name via
// longest-suffix wildcard match over a radix tree, falling back to a
// configured default when no entry — exact or wildcard — matches.
type CertificateResolver struct {
	tree     libatm.Value[*radixNode]
	fallback libatm.Value[TLSConfig]
	onMiss   func(hostname string)
}

// NewCertificateResolver builds an empty resolver. fallback serves any
// hostname with no registered entry; onMiss, if non-nil, is invoked (from
// the TLS handshake goroutine) every time the fallback had to be used, so
// a caller can enqueue an ACME issuance request for that hostname.
func NewCertificateResolver(fallback TLSConfig, onMiss func(hostname string)) *CertificateResolver {
	r := &CertificateResolver{
		tree:     libatm.NewValue[*radixNode](),
		fallback: libatm.NewValue[TLSConfig](),
		onMiss:   onMiss,
	}
	r.tree.Store(&radixNode{children: map[string]*radixNode{}})
	r.fallback.Store(fallback)
	return r
}

// SetFallback hot-swaps the fallback TLSConfig, e.g. once ACME issuance
// completes and installs a freshly-issued certificate.
func (r *CertificateResolver) SetFallback(cfg TLSConfig) { r.fallback.Store(cfg) }

// Register installs cfg for hostname, which may be a literal name
// ("a.b.c") or a single-level wildcard pattern ("*.b.c"). Register rebuilds
// the tree from a clone of the current one and swaps it in atomically, so
// concurrent handshakes never observe a partially-updated tree.
func (r *CertificateResolver) Register(hostname string, cfg TLSConfig) {
	cur := r.tree.Load()
	next := cloneRadixNode(cur)

	if strings.HasPrefix(hostname, "*.") {
		insertWildcard(next, hostname[len("*."):], cfg)
	} else {
		insertExact(next, hostname, cfg)
	}

	r.tree.Store(next)
}

// Lookup returns the TLSConfig for hostname by longest-suffix wildcard
// match, the fallback if nothing matches, and whether an exact-or-wildcard
// entry was actually found (false means the fallback was used, the signal
// a caller uses to decide whether to trigger issuance).
func (r *CertificateResolver) Lookup(hostname string) (TLSConfig, bool) {
	labels := reversedLabels(hostname)

	cur := r.tree.Load()
	var longestWildcard TLSConfig

	node := cur
	consumed := 0
	for _, label := range labels {
		child, ok := node.children[label]
		if !ok {
			break
		}
		node = child
		consumed++
		if node.wildcard != nil {
			longestWildcard = node.wildcard
		}
	}

	if consumed == len(labels) && node.exact != nil {
		return node.exact, true
	}
	if longestWildcard != nil {
		return longestWildcard, true
	}

	if r.onMiss != nil {
		r.onMiss(hostname)
	}
	return r.fallback.Load(), false
}

// GetCertificate adapts Lookup onto crypto/tls.Config.GetCertificate: it
// resolves the TLSConfig for the ClientHello's SNI name and returns the
// first certificate pair it offers, matching the "unrecognized_name"
// disposition when even the fallback has nothing (an empty certificate
// list makes the standard library's handshake fail with that alert).
func (r *CertificateResolver) GetCertificate(hello *tls.ClientHelloInfo) (*tls.Certificate, error) {
	cfg, _ := r.Lookup(hello.ServerName)
	if cfg == nil {
		return nil, ErrorNoCertificateForName.Error()
	}

	pairs := cfg.GetCertificatePair()
	if len(pairs) == 0 {
		return nil, ErrorNoCertificateForName.Error()
	}

	for i := range pairs {
		if err := hello.SupportsCertificate(&pairs[i]); err == nil {
			return &pairs[i], nil
		}
	}

	return &pairs[0], nil
}

func reversedLabels(hostname string) []string {
	labels := strings.Split(hostname, ".")
	out := make([]string, len(labels))
	for i, l := range labels {
		out[len(labels)-1-i] = l
	}
	return out
}

func insertExact(root *radixNode, hostname string, cfg TLSConfig) {
	node := root
	for _, label := range reversedLabels(hostname) {
		node = descend(node, label)
	}
	node.exact = cfg
}

func insertWildcard(root *radixNode, suffix string, cfg TLSConfig) {
	node := root
	for _, label := range reversedLabels(suffix) {
		node = descend(node, label)
	}
	node.wildcard = cfg
}

func descend(node *radixNode, label string) *radixNode {
	child, ok := node.children[label]
	if !ok {
		child = &radixNode{children: map[string]*radixNode{}}
		node.children[label] = child
	}
	return child
}

func cloneRadixNode(n *radixNode) *radixNode {
	if n == nil {
		return &radixNode{children: map[string]*radixNode{}}
	}
	clone := &radixNode{
		children: make(map[string]*radixNode, len(n.children)),
		exact:    n.exact,
		wildcard: n.wildcard,
	}
	for k, v := range n.children {
		clone.children[k] = cloneRadixNode(v)
	}
	return clone
}
