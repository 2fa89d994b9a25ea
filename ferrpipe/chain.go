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

// Registry resolves a configured module name to its Loader, the static list
// installed at startup (no dynamic loading is supported).
type Registry map[string]Loader

// Chain is the built, ordered handler list for one EffectiveConfiguration:
// built-in default checks first, then configured modules in declaration
// order with duplicates removed, terminated by whatever responder the last
// module in the list represents (static file server, proxy, or error page
// module — modeled as an ordinary Module like any other).
type Chain struct {
	modules []Module
}

// Build resolves eff.Modules against reg, prefixing the built-in default
// checks module. A module name with no matching Loader is a configuration
// error.
func Build(reg Registry, global, eff ferrcfg.Effective) (Chain, error) {
	modules := make([]Module, 0, len(eff.Modules)+1)
	modules = append(modules, NewDefaultChecksModule())

	for _, ref := range eff.Modules {
		loader, ok := reg[ref.Name]
		if !ok {
			return Chain{}, ErrorUnknownModule.Error(errUnknownModuleName(ref.Name))
		}

		m, err := loader.Load(eff, global)
		if err != nil {
			return Chain{}, ErrorModuleLoad.Error(err)
		}

		modules = append(modules, m)
	}

	return Chain{modules: dedupeModules(modules)}, nil
}

func dedupeModules(modules []Module) []Module {
	seen := make(map[string]struct{}, len(modules))
	out := modules[:0]
	for _, m := range modules {
		if _, ok := seen[m.Name()]; ok {
			continue
		}
		seen[m.Name()] = struct{}{}
		out = append(out, m)
	}
	return out
}

// Run drives req through the chain: the request pass stops at the first
// handler that returns a Response or Status, and only handlers that ran
// during the request pass participate in the response pass, in reverse
// order. sink receives BeforeHandler before the request pass and
// AfterHandler after the response pass, for every handler built.
func (c Chain) Run(req RequestData, cfg ferrcfg.Effective, sock *SocketData, sink MetricsSink) (*http.Response, int, error) {
	handlers := make([]Handlers, len(c.modules))
	for i, m := range c.modules {
		handlers[i] = m.NewHandlers()
	}

	for _, h := range handlers {
		h.BeforeHandler(req, sock, sink)
	}

	var (
		ran      []Handlers
		response *http.Response
		status   int
	)

	for _, h := range handlers {
		ran = append(ran, h)

		out, err := h.RequestHandler(req, cfg, sock)
		if err != nil {
			for _, done := range handlers {
				done.AfterHandler(sink)
			}
			return nil, 0, err
		}

		if out.Request != nil {
			req.Request = out.Request
		}
		if out.RemoteAddr != nil && sock != nil {
			sock.RemoteAddr = out.RemoteAddr
		}

		if out.Handled() {
			status = out.Status
			if out.Response != nil {
				response = out.Response
				if out.Headers != nil {
					for k, vs := range out.Headers {
						for _, v := range vs {
							response.Header.Add(k, v)
						}
					}
				}
			}
			break
		}
	}

	for i := len(ran) - 1; i >= 0; i-- {
		if response == nil {
			continue
		}
		var err error
		response, err = ran[i].ResponseModifyingHandler(response)
		if err != nil {
			for _, done := range handlers {
				done.AfterHandler(sink)
			}
			return nil, 0, err
		}
	}

	for _, h := range handlers {
		h.AfterHandler(sink)
	}

	return response, status, nil
}

func errUnknownModuleName(name string) error {
	return &unknownModuleError{name: name}
}

type unknownModuleError struct{ name string }

func (e *unknownModuleError) Error() string {
	return "unknown module: " + e.name
}
