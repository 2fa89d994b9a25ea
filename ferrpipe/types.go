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

// Package ferrpipe builds and drives the per-request handler chain: default
// checks, configured modules in declaration order, and a terminal responder,
// run as a request pass followed by a response pass in reverse order.
package ferrpipe

import (
	"net"
	"net/http"

	"github.com/ferronweb/ferron/ferrcfg"
)

// SocketData describes the physical connection a request arrived on. It is
// nil for internally re-dispatched requests (e.g. error-page rendering),
// which is what makes header-placeholder expansion leave socket-derived
// tokens literal in that case.
type SocketData struct {
	RemoteAddr net.Addr
	LocalAddr  net.Addr
	Encrypted  bool
}

// RequestData is the mutable per-request state threaded through the request
// pass.
type RequestData struct {
	Request *http.Request
}

// ResponseData is what a handler's request-pass method returns: at most one
// of Response/Status takes effect; Request and Headers overlay onto the
// continuing pipeline; RemoteAddr overrides SocketData.RemoteAddr for every
// handler downstream of the one that set it, within the same request.
type ResponseData struct {
	Request    *http.Request
	Response   *http.Response
	Status     int
	Headers    http.Header
	RemoteAddr net.Addr
}

// Handled reports whether this ResponseData short-circuits the rest of the
// request pass: a response body or a bare status code both do, since both
// mean "render now, don't ask the remaining handlers."
func (r ResponseData) Handled() bool {
	return r.Response != nil || r.Status != 0
}

// Handlers is the short-lived, per-request object a Module produces. It may
// hold worker-local state and is never required to be movable across
// workers.
type Handlers interface {
	RequestHandler(req RequestData, cfg ferrcfg.Effective, sock *SocketData) (ResponseData, error)
	ResponseModifyingHandler(resp *http.Response) (*http.Response, error)
	BeforeHandler(req RequestData, sock *SocketData, sink MetricsSink)
	AfterHandler(sink MetricsSink)
}

// Module produces a fresh Handlers instance for each request. Instances are
// shared, read-mostly, across workers; Handlers themselves are not.
type Module interface {
	Name() string
	NewHandlers() Handlers
}

// Loader builds a shared Module instance from configuration, claiming the
// entry keys it consumes so validation can reject entries no loader claims.
type Loader interface {
	// Requirements lists the configuration entry names this loader consumes.
	Requirements() []string
	// Validate checks this loader's entries in cfg, marking the keys it
	// checked in claimed so the caller can detect entries no loader wants.
	Validate(cfg ferrcfg.Effective, claimed map[string]struct{}) error
	// Load returns the shared Module instance for cfg, given the enclosing
	// global configuration for defaults that fall outside cfg itself.
	Load(cfg, global ferrcfg.Effective) (Module, error)
}

// MetricsSink receives before/after handler notifications. The default
// implementation is a channel send; there is no metrics backend wired in
// (observability-backend wiring is explicitly out of scope).
type MetricsSink interface {
	Notify(event string)
}

// ChanMetricsSink is a MetricsSink that fires non-blocking sends onto a
// channel, dropping the event if the channel is full rather than stalling
// the request pass.
type ChanMetricsSink chan string

func (s ChanMetricsSink) Notify(event string) {
	select {
	case s <- event:
	default:
	}
}
