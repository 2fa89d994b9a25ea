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
	stdctx "context"
	"net"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	libatm "github.com/ferronweb/ferron/atomic"
	libctx "github.com/ferronweb/ferron/context"
	liberr "github.com/ferronweb/ferron/errors"
	liblog "github.com/ferronweb/ferron/logger"
)

// State is the listener's position in its bind → listen → drain → close
// state machine.
type State uint8

const (
	StateBinding State = iota
	StateListening
	StateDraining
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateBinding:
		return "binding"
	case StateListening:
		return "listening"
	case StateDraining:
		return "draining"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// cancelKey namespaces the values stored on a Listener's cancellation
// token, modeled on the teacher's typed context.Config rather than bare
// context.Context key composition.
type cancelKey string

// Listener is the LA-layer acceptor for one bound address: it owns the
// raw net.Listener, unwraps PROXY protocol headers when configured to,
// and round-robins accepted connections across a small worker pool.
type Listener struct {
	cfg     *Config
	state   libatm.Value[State]
	ln      net.Listener
	workers []*worker
	next    uint64
	token   libctx.Config[cancelKey]
}

// NewListener constructs a Listener in the StateBinding state. Listen
// must be called to bind the address and start accepting.
func NewListener(cfg *Config) *Listener {
	l := &Listener{
		cfg:   cfg,
		state: libatm.NewValue[State](),
		token: libctx.New[cancelKey](stdctx.Background()),
	}
	l.state.SetDefaultLoad(StateBinding)
	l.state.Store(StateBinding)
	return l
}

func (l *Listener) GetConfig() *Config { return l.cfg }

func (l *Listener) State() State { return l.state.Load() }

func (l *Listener) IsTLS() bool { return l.cfg.TLS != nil || l.cfg.Resolver != nil }

// Listen binds the configured address, retrying on failure per the
// 10x1s budget, then spins up the worker pool and the accept loop.
func (l *Listener) Listen() liberr.Error {
	if l.State() == StateListening {
		return ErrorAlreadyListening.Error()
	}

	n := l.cfg.workerCount()
	if n <= 0 {
		return ErrorNoWorkers.Error()
	}

	var (
		ln  net.Listener
		err error
	)
	for attempt := 0; attempt < bindRetries; attempt++ {
		ln, err = net.Listen("tcp", l.cfg.Listen)
		if err == nil {
			break
		}
		liblog.WarnLevel.LogErrorCtxf(liblog.NilLevel, "listener %q bind attempt %d/%d failed", err, l.cfg.name(), attempt+1, bindRetries)
		time.Sleep(bindRetryWait)
	}
	if err != nil {
		return ErrorBindFailed.Error(err)
	}

	l.ln = ln
	l.workers = make([]*worker, n)
	for i := 0; i < n; i++ {
		w, werr := newWorker(i, l.cfg, ln.Addr())
		if werr != nil {
			return werr
		}
		l.workers[i] = w
		go w.start(l.IsTLS())
	}

	l.state.Store(StateListening)
	liblog.InfoLevel.Logf("listener %q accepting on %s (workers=%d, proxy-protocol=%v, tls=%v)",
		l.cfg.name(), ln.Addr(), n, l.cfg.ProxyProtocol, l.IsTLS())

	go l.acceptLoop()

	return nil
}

func (l *Listener) acceptLoop() {
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			if l.State() != StateListening {
				return
			}
			liblog.ErrorLevel.LogErrorCtxf(liblog.NilLevel, "listener %q accept failed", err, l.cfg.name())
			continue
		}

		go l.handleAccepted(conn)
	}
}

func (l *Listener) handleAccepted(conn net.Conn) {
	if l.cfg.ProxyProtocol {
		wrapped, err := unwrapProxyProtocol(conn)
		if err != nil {
			liblog.WarnLevel.LogErrorCtxf(liblog.NilLevel, "listener %q dropping connection from %s", err, l.cfg.name(), conn.RemoteAddr())
			_ = conn.Close()
			return
		}
		conn = wrapped
	}

	idx := atomic.AddUint64(&l.next, 1) % uint64(len(l.workers))
	if err := l.workers[idx].dispatch(conn); err != nil {
		_ = conn.Close()
	}
}

// WaitNotify blocks until SIGINT/SIGTERM/SIGQUIT or the listener's own
// cancellation token fires, then shuts down.
func (l *Listener) WaitNotify() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case <-quit:
		l.Shutdown()
	case <-l.token.Done():
		l.Shutdown()
	}
}

// Shutdown drains in-flight requests (StateDraining) before closing the
// listening socket and every worker (StateClosed).
func (l *Listener) Shutdown() {
	if l.State() == StateClosed {
		return
	}
	l.state.Store(StateDraining)
	liblog.InfoLevel.Logf("listener %q draining...", l.cfg.name())

	if l.ln != nil {
		_ = l.ln.Close()
	}

	ctx, cancel := stdctx.WithTimeout(stdctx.Background(), timeoutShutdown)
	defer cancel()

	for _, w := range l.workers {
		w.shutdown(ctx)
	}

	l.state.Store(StateClosed)
	liblog.InfoLevel.Logf("listener %q closed", l.cfg.name())
}

const timeoutShutdown = 10 * time.Second
