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

import (
	"context"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// Provider is the DNS-01 pluggable capability: given the challenge FQDN
// (`_acme-challenge.<zone-apex>`) and the expected TXT value, install or
// remove that record with whatever DNS hosting API backs the zone.
type Provider interface {
	SetTXT(ctx context.Context, fqdn, value string) error
	RemoveTXT(ctx context.Context, fqdn string) error
}

// ChallengeMap is the HTTP-01 pluggable capability: a listener answering
// `/.well-known/acme-challenge/<token>` consults this map for the key
// authorization to return, keyed by token.
type ChallengeMap interface {
	Put(token, keyAuthorization string)
	Get(token string) (string, bool)
	Delete(token string)
}

// memChallengeMap is the default in-process ChallengeMap: sufficient for a
// single-instance deployment, which is the only topology this module
// targets (no distributed challenge-state Non-goal).
type memChallengeMap struct {
	m map[string]string
}

// NewChallengeMap returns the default in-process ChallengeMap.
func NewChallengeMap() ChallengeMap {
	return &memChallengeMap{m: make(map[string]string)}
}

func (c *memChallengeMap) Put(token, keyAuthorization string) { c.m[token] = keyAuthorization }
func (c *memChallengeMap) Get(token string) (string, bool)    { v, ok := c.m[token]; return v, ok }
func (c *memChallengeMap) Delete(token string)                { delete(c.m, token) }

// ZoneApex walks up hostname's label suffixes querying SOA records until
// one resolves, returning the owning zone (e.g. "b.example.com" for
// "a.b.example.com" when "example.com" has no SOA of its own but
// "b.example.com" does). resolver is the DNS server address to query
// ("8.8.8.8:53" or a local resolver); a DNS-01 TXT record must be placed
// under `_acme-challenge.<zone apex>`, not necessarily under the full
// hostname, when the name being issued is itself a delegated subdomain.
func ZoneApex(ctx context.Context, hostname, resolver string) (string, error) {
	labels := strings.Split(strings.TrimSuffix(hostname, "."), ".")

	client := &dns.Client{Timeout: 5 * time.Second}

	for i := 0; i < len(labels)-1; i++ {
		candidate := strings.Join(labels[i:], ".")

		msg := new(dns.Msg)
		msg.SetQuestion(dns.Fqdn(candidate), dns.TypeSOA)

		resp, _, err := client.ExchangeContext(ctx, msg, resolver)
		if err != nil {
			continue
		}

		for _, rr := range resp.Answer {
			if _, ok := rr.(*dns.SOA); ok {
				return candidate, nil
			}
		}
	}

	return "", ErrorZoneApexNotFound.Error()
}
