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

package ferrpipe

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"

	"github.com/ferronweb/ferron/ferrcfg"
)

// IPBlockList holds a set of bare addresses and CIDR prefixes, matched
// equivalently: a bare IP behaves as a /32 or /128, and an IPv4-mapped IPv6
// address is canonicalised to its IPv4 form before comparison.
type IPBlockList struct {
	addrs    map[netip.Addr]struct{}
	prefixes []netip.Prefix
}

// NewIPBlockList builds an IPBlockList from CIDR or bare-address strings.
// Malformed entries are rejected at configuration-validation time
// (BlocklistLoader.Validate), so this constructor skips anything it can't
// parse rather than failing.
func NewIPBlockList(entries []string) *IPBlockList {
	l := &IPBlockList{addrs: map[netip.Addr]struct{}{}}
	for _, e := range entries {
		if prefix, err := netip.ParsePrefix(e); err == nil {
			l.prefixes = append(l.prefixes, prefix)
			continue
		}
		if addr, err := netip.ParseAddr(e); err == nil {
			l.addrs[canonicalize(addr)] = struct{}{}
		}
	}
	return l
}

func canonicalize(addr netip.Addr) netip.Addr {
	if addr.Is4In6() {
		return addr.Unmap()
	}
	return addr
}

// IsBlocked reports whether ip matches any blocked address or CIDR range.
func (l *IPBlockList) IsBlocked(ip net.IP) bool {
	addr, ok := netip.AddrFromSlice(ip)
	if !ok {
		return false
	}
	addr = canonicalize(addr)

	if _, ok := l.addrs[addr]; ok {
		return true
	}
	for _, p := range l.prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// BlocklistLoader loads the "block" global entries into a shared
// blocklistModule instance.
type BlocklistLoader struct{}

func (BlocklistLoader) Requirements() []string { return []string{"block"} }

func (BlocklistLoader) Validate(cfg ferrcfg.Effective, claimed map[string]struct{}) error {
	entries, ok := cfg.Entries["block"]
	if !ok {
		return nil
	}
	claimed["block"] = struct{}{}

	for _, e := range entries {
		for _, arg := range e.Args {
			if _, err := netip.ParsePrefix(arg); err == nil {
				continue
			}
			if _, err := netip.ParseAddr(arg); err != nil {
				return fmt.Errorf("invalid blocked address %q", arg)
			}
		}
	}
	return nil
}

func (BlocklistLoader) Load(_, global ferrcfg.Effective) (Module, error) {
	var addrs []string
	for _, e := range global.Entries["block"] {
		addrs = append(addrs, e.Args...)
	}
	return &blocklistModule{list: NewIPBlockList(addrs)}, nil
}

type blocklistModule struct {
	list *IPBlockList
}

func (*blocklistModule) Name() string { return "blocklist" }

func (m *blocklistModule) NewHandlers() Handlers {
	return &blocklistHandlers{list: m.list}
}

type blocklistHandlers struct {
	list *IPBlockList
}

func (h *blocklistHandlers) RequestHandler(req RequestData, _ ferrcfg.Effective, sock *SocketData) (ResponseData, error) {
	if sock != nil {
		if tcpAddr, ok := sock.RemoteAddr.(*net.TCPAddr); ok && h.list.IsBlocked(tcpAddr.IP) {
			return ResponseData{Request: req.Request, Status: http.StatusForbidden}, nil
		}
	}
	return ResponseData{Request: req.Request}, nil
}

func (h *blocklistHandlers) ResponseModifyingHandler(resp *http.Response) (*http.Response, error) {
	return resp, nil
}

func (h *blocklistHandlers) BeforeHandler(RequestData, *SocketData, MetricsSink) {}
func (h *blocklistHandlers) AfterHandler(MetricsSink)                           {}
