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

// Command ferron is the primary server binary: it loads a configuration
// file, resolves it into a ConfigurationSet, and drives one ferrlisten
// Listener per listen address, each fronted by a ferrhttp.Gateway that
// builds and runs the ferrpipe handler chain.
package main

import (
	"fmt"
	"os"

	libcbr "github.com/ferronweb/ferron/cobra"
	"github.com/ferronweb/ferron/ferrcfg"
	"github.com/ferronweb/ferron/ferrhttp"
	"github.com/ferronweb/ferron/ferrlisten"
	"github.com/ferronweb/ferron/ferrpipe"
	"github.com/ferronweb/ferron/ferrtls"
	liblog "github.com/ferronweb/ferron/logger"
	libver "github.com/ferronweb/ferron/version"
	spfcbr "github.com/spf13/cobra"
)

// exitSuccess, exitConfigError and exitRuntimeFatal are the process exit
// codes this binary promises callers.
const (
	exitSuccess      = 0
	exitConfigError  = 1
	exitRuntimeFatal = 2
)

func buildVersion() libver.Version {
	type rootMarker struct{}
	return libver.NewVersion(
		libver.License_MIT,
		"ferron",
		"General-purpose HTTP(S) server and reverse proxy",
		"2024-01-01T00:00:00Z",
		"dev",
		"v0.1.0",
		"Ferron contributors",
		"FERRON",
		rootMarker{},
		0,
	)
}

func newRegistry() ferrpipe.Registry {
	return ferrpipe.Registry{
		"blocklist":       ferrpipe.BlocklistLoader{},
		"x_forwarded_for": ferrpipe.XForwardedForLoader{},
	}
}

func main() {
	vers := buildVersion()

	app := libcbr.New()
	app.SetVersion(vers)
	app.Init()

	var cfgPath string
	if err := app.SetFlagConfig(true, &cfgPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitRuntimeFatal)
	}

	var showVersion bool
	app.Cobra().Flags().BoolVarP(&showVersion, "print-version", "V", false, "print version information and exit")

	app.Cobra().RunE = func(_ *spfcbr.Command, _ []string) error {
		if showVersion {
			fmt.Println(vers.GetInfo())
			return nil
		}

		if cfgPath == "" {
			fmt.Fprintln(os.Stderr, "ferron: -c <path> is required")
			os.Exit(exitConfigError)
		}

		run(cfgPath)
		return nil
	}

	if err := app.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitRuntimeFatal)
	}
}

func run(cfgPath string) {
	doc, err := ferrcfg.LoadDocument(cfgPath)
	if err != nil {
		liblog.ErrorLevel.LogErrorCtxf(liblog.NilLevel, "ferron: loading %q", err, cfgPath)
		os.Exit(exitConfigError)
	}

	global, err := doc.Blocks.Resolve(ferrcfg.RequestContext{})
	if err != nil {
		liblog.ErrorLevel.LogErrorCtxf(liblog.NilLevel, "ferron: resolving global configuration", err)
		os.Exit(exitConfigError)
	}

	resolver := ferrcfg.NewResolverCache(doc.Blocks)
	registry := newRegistry()
	sink := make(ferrpipe.ChanMetricsSink, 256)
	go drainMetrics(sink)

	listeners := make([]*ferrlisten.Listener, 0, len(doc.Listen))

	for _, spec := range doc.Listen {
		gw := ferrhttp.NewGateway(portOf(spec.Address), resolver, registry, global, sink)

		lcfg := &ferrlisten.Config{
			Name:          spec.Address,
			Listen:        spec.Address,
			Workers:       spec.Workers,
			ProxyProtocol: spec.ProxyProtocol,
			Handler:       gw,
		}

		if spec.TLS {
			tlsCfg := ferrtls.New()
			if spec.CertFile != "" && spec.KeyFile != "" {
				if err := tlsCfg.AddCertificatePairFile(spec.KeyFile, spec.CertFile); err != nil {
					liblog.ErrorLevel.LogErrorCtxf(liblog.NilLevel, "ferron: listener %q: failed to load certificate pair", err, spec.Address)
					os.Exit(exitConfigError)
				}
			}
			lcfg.TLS = tlsCfg
		}

		l := ferrlisten.NewListener(lcfg)
		if err := l.Listen(); err != nil {
			liblog.ErrorLevel.LogErrorCtxf(liblog.NilLevel, "ferron: listener %q", err, spec.Address)
			os.Exit(exitRuntimeFatal)
		}

		listeners = append(listeners, l)
	}

	if len(listeners) == 0 {
		liblog.ErrorLevel.Logf("ferron: configuration declares no listen addresses")
		os.Exit(exitConfigError)
	}

	liblog.InfoLevel.Logf("ferron: %d listener(s) running", len(listeners))

	// WaitNotify blocks on the first listener's signal handling; every
	// listener shuts down independently once that one returns.
	listeners[0].WaitNotify()
	for _, l := range listeners[1:] {
		l.Shutdown()
	}

	os.Exit(exitSuccess)
}

func drainMetrics(sink ferrpipe.ChanMetricsSink) {
	for range sink {
	}
}

func portOf(addr string) int {
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			port := 0
			for _, c := range addr[i+1:] {
				if c < '0' || c > '9' {
					return 0
				}
				port = port*10 + int(c-'0')
			}
			return port
		}
	}
	return 0
}
