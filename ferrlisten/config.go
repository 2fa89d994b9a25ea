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
	"net/http"
	"time"

	"github.com/ferronweb/ferron/duration"
	"github.com/ferronweb/ferron/ferrtls"
	"github.com/ferronweb/ferron/size"
)

// defaultWorkers is used when Config.Workers is zero.
const defaultWorkers = 4

// bindRetries and bindRetryDelay implement the spec's 10x1s bind retry
// budget: a listener racing a process that is still releasing the port
// during a restart gets ten one-second attempts before it gives up.
const (
	bindRetries   = 10
	bindRetryWait = 1 * time.Second
)

// Config describes one bound address fronted by the listener/acceptor.
type Config struct {
	// Name identifies the listener in logs; defaults to Listen if empty.
	Name string
	// Listen is the host:port the listener binds.
	Listen string
	// Workers is the number of cooperative dispatch workers; defaults to
	// defaultWorkers when zero.
	Workers int
	// ProxyProtocol enables PROXY protocol v1/v2 unwrapping of the real
	// client address before the connection reaches the HTTP server.
	ProxyProtocol bool
	// TLS, when non-nil and Resolver is nil, serves this listener over TLS
	// using this single, static configuration for every SNI name.
	TLS ferrtls.TLSConfig
	// Resolver, when non-nil, serves this listener over TLS with
	// per-SNI-name certificate selection (radix-tree lookup, fallback,
	// ACME issuance on miss), taking precedence over TLS.
	Resolver *ferrtls.CertificateResolver

	ReadTimeout       duration.Duration
	ReadHeaderTimeout duration.Duration
	WriteTimeout      duration.Duration
	IdleTimeout       duration.Duration
	MaxHeaderBytes    size.Size

	MaxHandlers                  int
	MaxConcurrentStreams         uint32
	PermitProhibitedCipherSuites bool

	// Handler serves every accepted connection's requests; normally the
	// chain built by ferrpipe.Build for the matching configuration set.
	Handler http.Handler
}

func (c *Config) workerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return defaultWorkers
}

func (c *Config) name() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Listen
}
