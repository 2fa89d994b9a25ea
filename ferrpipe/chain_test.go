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

package ferrpipe_test

import (
	"net"
	"net/http"
	"net/url"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ferronweb/ferron/ferrcfg"
	"github.com/ferronweb/ferron/ferrpipe"
)

var _ = Describe("Chain", func() {
	var sock *ferrpipe.SocketData

	BeforeEach(func() {
		sock = &ferrpipe.SocketData{
			RemoteAddr: &net.TCPAddr{IP: net.ParseIP("198.51.100.2"), Port: 51000},
			LocalAddr:  &net.TCPAddr{IP: net.ParseIP("198.51.100.1"), Port: 80},
		}
	})

	It("answers OPTIONS with 204 and an Allow header, running no configured module", func() {
		chain, err := ferrpipe.Build(ferrpipe.Registry{}, ferrcfg.Effective{}, ferrcfg.Effective{})
		Expect(err).ToNot(HaveOccurred())

		req := ferrpipe.RequestData{Request: &http.Request{Method: http.MethodOptions, URL: &url.URL{Path: "/"}, Header: http.Header{}}}
		resp, status, err := chain.Run(req, ferrcfg.Effective{}, sock, ferrpipe.ChanMetricsSink(make(chan string, 8)))
		Expect(err).ToNot(HaveOccurred())
		Expect(status).To(Equal(0))
		Expect(resp).ToNot(BeNil())
		Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
		Expect(resp.Header.Get("Allow")).To(Equal("GET, POST, HEAD, OPTIONS"))
	})

	It("rejects a disallowed method with a bare status for error-page rendering", func() {
		chain, err := ferrpipe.Build(ferrpipe.Registry{}, ferrcfg.Effective{}, ferrcfg.Effective{})
		Expect(err).ToNot(HaveOccurred())

		req := ferrpipe.RequestData{Request: &http.Request{Method: http.MethodDelete, URL: &url.URL{Path: "/"}, Header: http.Header{}}}
		resp, status, err := chain.Run(req, ferrcfg.Effective{}, sock, ferrpipe.ChanMetricsSink(make(chan string, 8)))
		Expect(err).ToNot(HaveOccurred())
		Expect(resp).To(BeNil())
		Expect(status).To(Equal(http.StatusMethodNotAllowed))
	})

	It("blocks a request from a blocklisted address before any later module runs", func() {
		eff := ferrcfg.Effective{
			Entries: map[string]ferrcfg.EntryList{"block": {{Args: []string{"198.51.100.0/24"}}}},
			Modules: []ferrcfg.ModuleRef{{Name: "blocklist"}},
		}
		chain, err := ferrpipe.Build(ferrpipe.Registry{"blocklist": ferrpipe.BlocklistLoader{}}, eff, eff)
		Expect(err).ToNot(HaveOccurred())

		req := ferrpipe.RequestData{Request: &http.Request{Method: http.MethodGet, URL: &url.URL{Path: "/"}, Header: http.Header{}}}
		resp, status, err := chain.Run(req, eff, sock, ferrpipe.ChanMetricsSink(make(chan string, 8)))
		Expect(err).ToNot(HaveOccurred())
		Expect(resp).To(BeNil())
		Expect(status).To(Equal(http.StatusForbidden))
	})

	It("returns an error for a module name with no registered loader", func() {
		eff := ferrcfg.Effective{Modules: []ferrcfg.ModuleRef{{Name: "nonexistent"}}}
		_, err := ferrpipe.Build(ferrpipe.Registry{}, eff, eff)
		Expect(err).To(HaveOccurred())
	})
})
