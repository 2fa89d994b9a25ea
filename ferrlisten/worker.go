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

package ferrlisten

import (
	"context"
	"crypto/tls"
	"errors"
	"log"
	"net"
	"net/http"

	"golang.org/x/net/http2"

	libatm "github.com/ferronweb/ferron/atomic"
	liberr "github.com/ferronweb/ferron/errors"
	liblog "github.com/ferronweb/ferron/logger"
)

// worker is one cooperative dispatch target: a chanListener fed by the
// acceptor's round-robin counter, served by its own *http.Server. Workers
// are lightweight — they share the listener's Config and Handler — and
// exist so that one slow connection's TLS handshake or header read does
// not stall the accept loop itself, generalizing the teacher's
// single-component start/stop/restart lifecycle to N cooperative peers.
type worker struct {
	idx     int
	running libatm.Value[bool]
	cl      *chanListener
	srv     *http.Server
}

func newWorker(idx int, cfg *Config, addr net.Addr) (*worker, liberr.Error) {
	cl := newChanListener(addr, 16)

	srv := &http.Server{
		Handler:  cfg.Handler,
		ErrorLog: liblog.GetDefault().GetStdLogger(liblog.ErrorLevel, log.LstdFlags|log.Lmicroseconds),
	}

	if d := cfg.ReadTimeout.Time(); d > 0 {
		srv.ReadTimeout = d
	}
	if d := cfg.ReadHeaderTimeout.Time(); d > 0 {
		srv.ReadHeaderTimeout = d
	}
	if d := cfg.WriteTimeout.Time(); d > 0 {
		srv.WriteTimeout = d
	}
	if d := cfg.IdleTimeout.Time(); d > 0 {
		srv.IdleTimeout = d
	}
	if cfg.MaxHeaderBytes > 0 {
		srv.MaxHeaderBytes = cfg.MaxHeaderBytes.Int()
	}

	switch {
	case cfg.Resolver != nil:
		srv.TLSConfig = &tls.Config{GetCertificate: cfg.Resolver.GetCertificate}
	case cfg.TLS != nil:
		srv.TLSConfig = cfg.TLS.TlsConfig("")
	}

	h2cfg := &http2.Server{}
	if cfg.MaxHandlers > 0 {
		h2cfg.MaxHandlers = cfg.MaxHandlers
	}
	if cfg.MaxConcurrentStreams > 0 {
		h2cfg.MaxConcurrentStreams = cfg.MaxConcurrentStreams
	}
	if cfg.PermitProhibitedCipherSuites {
		h2cfg.PermitProhibitedCipherSuites = true
	}
	if d := cfg.IdleTimeout.Time(); d > 0 {
		h2cfg.IdleTimeout = d
	}

	if err := http2.ConfigureServer(srv, h2cfg); err != nil {
		return nil, ErrorHTTP2Configure.Error(err)
	}

	w := &worker{idx: idx, cl: cl, srv: srv, running: libatm.NewValue[bool]()}
	w.running.SetDefaultLoad(false)
	return w, nil
}

// start runs the worker's serve loop until the worker is stopped; it is
// meant to be invoked with `go`.
func (w *worker) start(tlsEnabled bool) {
	w.running.Store(true)
	defer w.running.Store(false)

	var err error
	if tlsEnabled {
		err = w.srv.ServeTLS(w.cl, "", "")
	} else {
		err = w.srv.Serve(w.cl)
	}

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		liblog.ErrorLevel.LogErrorCtxf(liblog.NilLevel, "listener worker %d exited", err, w.idx)
	}
}

func (w *worker) isRunning() bool { return w.running.Load() }

func (w *worker) dispatch(conn net.Conn) error { return w.cl.dispatch(conn) }

func (w *worker) shutdown(ctx context.Context) {
	_ = w.srv.Shutdown(ctx)
	_ = w.cl.Close()
}
