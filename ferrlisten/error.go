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

import "github.com/ferronweb/ferron/errors"

const (
	ErrorBindFailed errors.CodeError = iota + errors.MinPkgListener
	ErrorAlreadyListening
	ErrorNotListening
	ErrorHTTP2Configure
	ErrorPortInUse
	ErrorProxyProtocolMalformed
	ErrorProxyProtocolUnsupported
	ErrorNoWorkers
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = errors.ExistInMapMessage(ErrorBindFailed)
	errors.RegisterIdFctMessage(ErrorBindFailed, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case errors.UNK_ERROR:
		return ""
	case ErrorBindFailed:
		return "listener failed to bind its address after exhausting the retry budget"
	case ErrorAlreadyListening:
		return "listener is already accepting connections"
	case ErrorNotListening:
		return "listener is not currently accepting connections"
	case ErrorHTTP2Configure:
		return "failed to configure h2 support on the underlying HTTP server"
	case ErrorPortInUse:
		return "listener address is already bound by another process"
	case ErrorProxyProtocolMalformed:
		return "PROXY protocol header is malformed"
	case ErrorProxyProtocolUnsupported:
		return "PROXY protocol header declares an unsupported address family"
	case ErrorNoWorkers:
		return "listener configured with zero workers"
	}

	return ""
}
