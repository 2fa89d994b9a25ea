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

package acme

import "github.com/ferronweb/ferron/errors"

const (
	ErrorZoneApexNotFound errors.CodeError = iota + errors.MinPkgTLSResolver
	ErrorDNSQueryFailed
	ErrorIssuanceFailed
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = errors.ExistInMapMessage(ErrorZoneApexNotFound)
	errors.RegisterIdFctMessage(ErrorZoneApexNotFound, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case errors.UNK_ERROR:
		return ""
	case ErrorZoneApexNotFound:
		return "no SOA record found walking up the hostname's label suffixes"
	case ErrorDNSQueryFailed:
		return "DNS query to resolve the zone apex failed"
	case ErrorIssuanceFailed:
		return "certificate issuance failed"
	}
	return ""
}

// Failure classifies why an issuance attempt failed, so the renewal
// scheduler knows whether to back off and retry (Transient — rate limit,
// network blip, DNS propagation delay) or give up until the configuration
// changes (Permanent — domain not owned, policy rejection).
type Failure uint8

const (
	Transient Failure = iota
	Permanent
)

func (f Failure) String() string {
	if f == Permanent {
		return "permanent"
	}
	return "transient"
}
