/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
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

package ferrtls

import (
	"crypto/tls"
	"io"
	"sync"

	tlsaut "github.com/ferronweb/ferron/ferrtls/auth"
	tlscas "github.com/ferronweb/ferron/ferrtls/ca"
	tlscpr "github.com/ferronweb/ferron/ferrtls/cipher"
	tlscrt "github.com/ferronweb/ferron/ferrtls/certs"
	tlscrv "github.com/ferronweb/ferron/ferrtls/curves"
	tlsvrs "github.com/ferronweb/ferron/ferrtls/tlsversion"
)

// config is the concrete, mutex-guarded implementation of TLSConfig.
// A single instance backs one SNI entry; the TF layer hot-swaps entries
// by atomic pointer rather than mutating one in place across goroutines.
type config struct {
	mut sync.RWMutex

	rand io.Reader

	cert []tlscrt.Cert

	cipherList []tlscpr.Cipher
	curveList  []tlscrv.Curves

	caRoot []tlscas.Cert

	clientAuth tlsaut.ClientAuth
	clientCA   []tlscas.Cert

	tlsMinVersion tlsvrs.Version
	tlsMaxVersion tlsvrs.Version

	dynSizingDisabled     bool
	ticketSessionDisabled bool
}

func (o *config) RegisterRand(rand io.Reader) {
	o.mut.Lock()
	defer o.mut.Unlock()
	o.rand = rand
}

func (o *config) SetVersionMin(v tlsvrs.Version) {
	o.mut.Lock()
	defer o.mut.Unlock()
	o.tlsMinVersion = v
}

func (o *config) GetVersionMin() tlsvrs.Version {
	o.mut.RLock()
	defer o.mut.RUnlock()
	return o.tlsMinVersion
}

func (o *config) SetVersionMax(v tlsvrs.Version) {
	o.mut.Lock()
	defer o.mut.Unlock()
	o.tlsMaxVersion = v
}

func (o *config) GetVersionMax() tlsvrs.Version {
	o.mut.RLock()
	defer o.mut.RUnlock()
	return o.tlsMaxVersion
}

func (o *config) SetCipherList(c []tlscpr.Cipher) {
	o.mut.Lock()
	defer o.mut.Unlock()
	o.cipherList = append(make([]tlscpr.Cipher, 0, len(c)), c...)
}

func (o *config) AddCiphers(c ...tlscpr.Cipher) {
	o.mut.Lock()
	defer o.mut.Unlock()
	o.cipherList = append(o.cipherList, c...)
}

func (o *config) GetCiphers() []tlscpr.Cipher {
	o.mut.RLock()
	defer o.mut.RUnlock()
	return append(make([]tlscpr.Cipher, 0, len(o.cipherList)), o.cipherList...)
}

func (o *config) SetCurveList(c []tlscrv.Curves) {
	o.mut.Lock()
	defer o.mut.Unlock()
	o.curveList = append(make([]tlscrv.Curves, 0, len(c)), c...)
}

func (o *config) AddCurves(c ...tlscrv.Curves) {
	o.mut.Lock()
	defer o.mut.Unlock()
	o.curveList = append(o.curveList, c...)
}

func (o *config) GetCurves() []tlscrv.Curves {
	o.mut.RLock()
	defer o.mut.RUnlock()
	return append(make([]tlscrv.Curves, 0, len(o.curveList)), o.curveList...)
}

func (o *config) SetDynamicSizingDisabled(flag bool) {
	o.mut.Lock()
	defer o.mut.Unlock()
	o.dynSizingDisabled = flag
}

func (o *config) SetSessionTicketDisabled(flag bool) {
	o.mut.Lock()
	defer o.mut.Unlock()
	o.ticketSessionDisabled = flag
}

func (o *config) Clone() TLSConfig {
	o.mut.RLock()
	defer o.mut.RUnlock()

	return &config{
		rand:                  o.rand,
		cert:                  append(make([]tlscrt.Cert, 0, len(o.cert)), o.cert...),
		cipherList:            append(make([]tlscpr.Cipher, 0, len(o.cipherList)), o.cipherList...),
		curveList:             append(make([]tlscrv.Curves, 0, len(o.curveList)), o.curveList...),
		caRoot:                append(make([]tlscas.Cert, 0, len(o.caRoot)), o.caRoot...),
		clientAuth:            o.clientAuth,
		clientCA:              append(make([]tlscas.Cert, 0, len(o.clientCA)), o.clientCA...),
		tlsMinVersion:         o.tlsMinVersion,
		tlsMaxVersion:         o.tlsMaxVersion,
		dynSizingDisabled:     o.dynSizingDisabled,
		ticketSessionDisabled: o.ticketSessionDisabled,
	}
}

// TLS is an alias of TlsConfig kept for call sites that prefer the shorter name.
func (o *config) TLS(serverName string) *tls.Config {
	return o.TlsConfig(serverName)
}

func (o *config) TlsConfig(serverName string) *tls.Config {
	o.mut.RLock()
	defer o.mut.RUnlock()

	/* #nosec */
	cnf := &tls.Config{
		InsecureSkipVerify: false,
		Rand:               o.rand,
	}

	if serverName != "" {
		cnf.ServerName = serverName
	}

	if o.ticketSessionDisabled {
		cnf.SessionTicketsDisabled = true
	}

	if o.dynSizingDisabled {
		cnf.DynamicRecordSizingDisabled = true
	}

	if o.tlsMinVersion.Uint16() != 0 {
		cnf.MinVersion = o.tlsMinVersion.Uint16()
	}

	if o.tlsMaxVersion.Uint16() != 0 {
		cnf.MaxVersion = o.tlsMaxVersion.Uint16()
	}

	if len(o.cipherList) > 0 {
		cnf.PreferServerCipherSuites = true
		for _, c := range o.cipherList {
			cnf.CipherSuites = append(cnf.CipherSuites, c.Uint16())
		}
	}

	if len(o.curveList) > 0 {
		for _, c := range o.curveList {
			cnf.CurvePreferences = append(cnf.CurvePreferences, c.TLS())
		}
	}

	if len(o.caRoot) > 0 {
		cnf.RootCAs = o.GetRootCAPool()
	}

	if len(o.cert) > 0 {
		for _, c := range o.cert {
			cnf.Certificates = append(cnf.Certificates, c.TLS())
		}
	}

	if o.clientAuth != tlsaut.NoClientCert {
		cnf.ClientAuth = o.clientAuth.TLS()
		if len(o.clientCA) > 0 {
			cnf.ClientCAs = o.GetClientCAPool()
		}
	}

	return cnf
}

func certifFromCert(certs []tlscrt.Cert) []tlscrt.Certif {
	res := make([]tlscrt.Certif, 0, len(certs))

	for _, c := range certs {
		if m, ok := c.(*tlscrt.Certif); ok && m != nil {
			res = append(res, m.Model())
		}
	}

	return res
}

func (o *config) Config() *Config {
	o.mut.RLock()
	defer o.mut.RUnlock()

	return &Config{
		CurveList:            append(make([]tlscrv.Curves, 0, len(o.curveList)), o.curveList...),
		CipherList:           append(make([]tlscpr.Cipher, 0, len(o.cipherList)), o.cipherList...),
		RootCA:               append(make([]tlscas.Cert, 0, len(o.caRoot)), o.caRoot...),
		ClientCA:             append(make([]tlscas.Cert, 0, len(o.clientCA)), o.clientCA...),
		Certs:                append(make([]tlscrt.Certif, 0), certifFromCert(o.cert)...),
		VersionMin:           o.tlsMinVersion,
		VersionMax:           o.tlsMaxVersion,
		AuthClient:           o.clientAuth,
		DynamicSizingDisable: o.dynSizingDisabled,
		SessionTicketDisable: o.ticketSessionDisabled,
	}
}
