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
	"net"
	"net/http"
	"strings"

	"github.com/ferronweb/ferron/ferrcfg"
)

// XForwardedForLoader loads the "enable_ip_spoofing" boolean entry into a
// shared xForwardedForModule instance.
type XForwardedForLoader struct{}

func (XForwardedForLoader) Requirements() []string { return []string{"enable_ip_spoofing"} }

func (XForwardedForLoader) Validate(cfg ferrcfg.Effective, claimed map[string]struct{}) error {
	if _, ok := cfg.Entries["enable_ip_spoofing"]; ok {
		claimed["enable_ip_spoofing"] = struct{}{}
	}
	return nil
}

func (XForwardedForLoader) Load(cfg, _ ferrcfg.Effective) (Module, error) {
	enabled := false
	if entries, ok := cfg.Entries["enable_ip_spoofing"]; ok && len(entries) > 0 {
		enabled = len(entries[0].Args) > 0 && entries[0].Args[0] == "true"
	}
	return &xForwardedForModule{enabled: enabled}, nil
}

type xForwardedForModule struct {
	enabled bool
}

func (*xForwardedForModule) Name() string { return "x_forwarded_for" }

func (m *xForwardedForModule) NewHandlers() Handlers {
	return &xForwardedForHandlers{enabled: m.enabled}
}

type xForwardedForHandlers struct {
	enabled bool
}

// RequestHandler rewrites the request's apparent remote address to the
// first (client-closest) address in an X-Forwarded-For header, preserving
// the original TCP peer's port since the header never carries one.
func (h *xForwardedForHandlers) RequestHandler(req RequestData, _ ferrcfg.Effective, sock *SocketData) (ResponseData, error) {
	if !h.enabled || sock == nil {
		return ResponseData{Request: req.Request}, nil
	}

	header := req.Request.Header.Get("X-Forwarded-For")
	if header == "" {
		return ResponseData{Request: req.Request}, nil
	}

	first := strings.ReplaceAll(strings.Split(header, ",")[0], " ", "")
	ip := net.ParseIP(first)
	if ip == nil {
		return ResponseData{Request: req.Request, Status: http.StatusBadRequest}, nil
	}

	tcpAddr, ok := sock.RemoteAddr.(*net.TCPAddr)
	if !ok {
		return ResponseData{Request: req.Request}, nil
	}

	return ResponseData{
		Request:    req.Request,
		RemoteAddr: &net.TCPAddr{IP: ip, Port: tcpAddr.Port},
	}, nil
}

func (h *xForwardedForHandlers) ResponseModifyingHandler(resp *http.Response) (*http.Response, error) {
	return resp, nil
}

func (h *xForwardedForHandlers) BeforeHandler(RequestData, *SocketData, MetricsSink) {}
func (h *xForwardedForHandlers) AfterHandler(MetricsSink)                           {}
