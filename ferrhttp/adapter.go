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

package ferrhttp

import (
	"io"
	"net"
	"net/http"
	"sync"

	"github.com/ferronweb/ferron/ferrcfg"
	"github.com/ferronweb/ferron/ferrpipe"
	liblog "github.com/ferronweb/ferron/logger"
)

// AdminEmail is substituted into the built-in error page's contact line.
// Left as a package variable rather than threaded through every call so
// Handler construction doesn't need to grow a new parameter every time a
// site detail is added; Gateway.SetAdminEmail is the supported setter.
var defaultAdminEmail = ""

// Gateway is the HP-layer net/http.Handler that fronts one Listener's
// worker pool: it resolves the effective configuration for the inbound
// request through a ferrcfg.ResolverCache, builds (and caches) the
// matching ferrpipe.Chain, drives it, and renders whatever the chain
// produced — a real *http.Response, a bare status code, or — when the
// chain itself errors — the built-in error page, re-resolved through any
// matching error-handler block first.
type Gateway struct {
	resolver *ferrcfg.ResolverCache
	registry ferrpipe.Registry
	global   ferrcfg.Effective
	sink     ferrpipe.MetricsSink
	port     int

	mu     sync.RWMutex
	chains map[string]ferrpipe.Chain

	adminEmail string
}

// NewGateway builds a Gateway bound to the given listener port. global is
// the fully-merged global-block configuration (used as the Loader's
// "enclosing" configuration for directives that fall outside a specific
// block), reg is the static module registry installed at startup, and
// resolver is the live, swappable configuration set.
func NewGateway(port int, resolver *ferrcfg.ResolverCache, reg ferrpipe.Registry, global ferrcfg.Effective, sink ferrpipe.MetricsSink) *Gateway {
	return &Gateway{
		resolver:   resolver,
		registry:   reg,
		global:     global,
		sink:       sink,
		port:       port,
		chains:     make(map[string]ferrpipe.Chain),
		adminEmail: defaultAdminEmail,
	}
}

// SetAdminEmail overrides the contact address rendered on built-in error
// pages served by this Gateway.
func (g *Gateway) SetAdminEmail(email string) { g.adminEmail = email }

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sock := socketFromRequest(r, g.port)
	reqCtx := requestContext(r, sock, g.port, 0)

	eff, err := g.resolver.Resolve(reqCtx)
	if err != nil {
		liblog.ErrorLevel.LogErrorCtxf(liblog.NilLevel, "ferrhttp: resolve failed for host=%s path=%s", err, reqCtx.Hostname, reqCtx.Path)
		g.renderError(w, r, sock, reqCtx, http.StatusInternalServerError)
		return
	}

	chain, err := g.chainFor(eff)
	if err != nil {
		liblog.ErrorLevel.LogErrorCtxf(liblog.NilLevel, "ferrhttp: chain build failed for host=%s path=%s", err, reqCtx.Hostname, reqCtx.Path)
		g.renderError(w, r, sock, reqCtx, http.StatusInternalServerError)
		return
	}

	resp, status, err := chain.Run(ferrpipe.RequestData{Request: r}, eff, sock, g.sink)
	if err != nil {
		liblog.ErrorLevel.LogErrorCtxf(liblog.NilLevel, "ferrhttp: chain run failed for host=%s path=%s", err, reqCtx.Hostname, reqCtx.Path)
		g.renderError(w, r, sock, reqCtx, http.StatusInternalServerError)
		return
	}

	if resp != nil {
		writeResponse(w, resp)
		return
	}

	if status != 0 {
		g.renderError(w, r, sock, reqCtx, status)
		return
	}

	// No module handled the request and none errored: treat as a
	// configuration gap rather than silently hanging the connection.
	g.renderError(w, r, sock, reqCtx, http.StatusNotFound)
}

// renderError re-resolves the configuration with the error status set, so
// a matching error-handler block's modules (a custom error page module,
// for instance) get a chance to run before falling back to the built-in
// page.
func (g *Gateway) renderError(w http.ResponseWriter, r *http.Request, sock *ferrpipe.SocketData, base ferrcfg.RequestContext, status int) {
	errCtx := base
	errCtx.ErrorStatus = status

	eff, err := g.resolver.Resolve(errCtx)
	if err == nil {
		if chain, cerr := g.chainFor(eff); cerr == nil {
			resp, chStatus, rerr := chain.Run(ferrpipe.RequestData{Request: r}, eff, sock, g.sink)
			if rerr == nil && resp != nil {
				writeResponse(w, resp)
				return
			}
			if rerr == nil && chStatus != 0 && chStatus != status {
				status = chStatus
			}
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, ferrpipe.DefaultErrorPage(status, g.adminEmail))
}

// chainFor returns the cached Chain for eff, building it on first use. The
// cache key is the module list plus the entry set's identity, approximated
// here by the resolver's own memoization: eff is already a stable value
// for a given RequestContext, so a pointer-free structural key built from
// the module references is sufficient to dedupe repeated Resolve results.
func (g *Gateway) chainFor(eff ferrcfg.Effective) (ferrpipe.Chain, error) {
	key := chainKey(eff)

	g.mu.RLock()
	c, ok := g.chains[key]
	g.mu.RUnlock()
	if ok {
		return c, nil
	}

	c, err := ferrpipe.Build(g.registry, g.global, eff)
	if err != nil {
		return ferrpipe.Chain{}, ErrorChainBuildFailed.Error(err)
	}

	g.mu.Lock()
	g.chains[key] = c
	g.mu.Unlock()

	return c, nil
}

func chainKey(eff ferrcfg.Effective) string {
	key := make([]byte, 0, 64)
	for _, m := range eff.Modules {
		key = append(key, m.Name...)
		key = append(key, '|')
		for _, a := range m.Args {
			key = append(key, a...)
			key = append(key, ',')
		}
		key = append(key, ';')
	}
	return string(key)
}

func socketFromRequest(r *http.Request, port int) *ferrpipe.SocketData {
	remote, _ := net.ResolveTCPAddr("tcp", r.RemoteAddr)

	local, _ := r.Context().Value(http.LocalAddrContextKey).(net.Addr)
	if local == nil {
		local = &net.TCPAddr{Port: port}
	}

	return &ferrpipe.SocketData{
		RemoteAddr: remote,
		LocalAddr:  local,
		Encrypted:  r.TLS != nil,
	}
}

func requestContext(r *http.Request, sock *ferrpipe.SocketData, port, errStatus int) ferrcfg.RequestContext {
	ip := ""
	if sock != nil && sock.LocalAddr != nil {
		if tcp, ok := sock.LocalAddr.(*net.TCPAddr); ok {
			ip = tcp.IP.String()
		}
	}
	return ferrcfg.RequestContext{
		Hostname:    r.Host,
		IP:          ip,
		Port:        port,
		Path:        r.URL.Path,
		Encrypted:   r.TLS != nil,
		ErrorStatus: errStatus,
	}
}

func writeResponse(w http.ResponseWriter, resp *http.Response) {
	for k, vs := range resp.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if resp.Body != nil {
		_, _ = io.Copy(w, resp.Body)
		_ = resp.Body.Close()
	}
}
