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
	"net/http"

	"github.com/ferronweb/ferron/ferrcfg"
)

const allowedMethods = "GET, POST, HEAD, OPTIONS"

// defaultChecksModule is always the first entry in every built chain: it
// rejects disallowed methods before any configured module sees the request.
type defaultChecksModule struct{}

// NewDefaultChecksModule returns the built-in module every Chain is built
// with in front of configured modules.
func NewDefaultChecksModule() Module { return defaultChecksModule{} }

func (defaultChecksModule) Name() string          { return "default_checks" }
func (defaultChecksModule) NewHandlers() Handlers { return defaultChecksHandlers{} }

type defaultChecksHandlers struct{}

func (defaultChecksHandlers) RequestHandler(req RequestData, _ ferrcfg.Effective, _ *SocketData) (ResponseData, error) {
	switch req.Request.Method {
	case http.MethodOptions:
		resp := &http.Response{
			StatusCode: http.StatusNoContent,
			Proto:      req.Request.Proto,
			ProtoMajor: req.Request.ProtoMajor,
			ProtoMinor: req.Request.ProtoMinor,
			Header:     http.Header{"Allow": []string{allowedMethods}},
			Body:       http.NoBody,
		}
		return ResponseData{Request: req.Request, Response: resp}, nil
	case http.MethodGet, http.MethodPost, http.MethodHead:
		return ResponseData{Request: req.Request}, nil
	default:
		return ResponseData{
			Request: req.Request,
			Status:  http.StatusMethodNotAllowed,
			Headers: http.Header{"Allow": []string{allowedMethods}},
		}, nil
	}
}

func (defaultChecksHandlers) ResponseModifyingHandler(resp *http.Response) (*http.Response, error) {
	return resp, nil
}

func (defaultChecksHandlers) BeforeHandler(RequestData, *SocketData, MetricsSink) {}
func (defaultChecksHandlers) AfterHandler(MetricsSink)                           {}
