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
	"sync"

	liblog "github.com/ferronweb/ferron/logger"
)

// issuanceRequest is one (hostname, port) pair enqueued by a TLS handshake
// that found no certificate for an SNI name.
type issuanceRequest struct {
	Hostname string
	Port     int
}

// Issuer performs the actual ACME order/authorization/finalize exchange
// for hostname and returns the issued certificate material (left opaque to
// this package — a PEM-encoded cert+key pair is the expected shape, but
// that's the caller's concern via the Install callback below). The ACME
// wire protocol itself is intentionally not implemented in this package;
// Issuer is where a real ACME client call plugs in.
type Issuer func(ctx context.Context, req issuanceRequest) (Failure, error)

// Queue is the deduplicated issuance-request channel from spec.md's
// "ACME channel dedup" design note: a burst of ClientHellos for the same
// unrecognized name enqueues only once, the in-flight set guarded by a
// mutex rather than the channel itself (a channel alone can't answer
// "is X already queued").
type Queue struct {
	ch       chan issuanceRequest
	mu       sync.Mutex
	inFlight map[string]struct{}
	issue    Issuer
}

// NewQueue builds a Queue with the given backlog depth, draining into
// issue on Run.
func NewQueue(depth int, issue Issuer) *Queue {
	return &Queue{
		ch:       make(chan issuanceRequest, depth),
		inFlight: make(map[string]struct{}),
		issue:    issue,
	}
}

// Enqueue adds (hostname, port) to the queue unless an issuance for that
// hostname is already in flight. Returns false when deduplicated or when
// the queue is full (a full queue under a name already in flight is
// impossible by construction, since Enqueue is itself how entries appear;
// a full queue of distinct names just means the worker is falling behind,
// and the caller still fails the handshake with unrecognized_name either
// way).
func (q *Queue) Enqueue(hostname string, port int) bool {
	q.mu.Lock()
	if _, ok := q.inFlight[hostname]; ok {
		q.mu.Unlock()
		return false
	}
	q.inFlight[hostname] = struct{}{}
	q.mu.Unlock()

	select {
	case q.ch <- issuanceRequest{Hostname: hostname, Port: port}:
		return true
	default:
		q.mu.Lock()
		delete(q.inFlight, hostname)
		q.mu.Unlock()
		return false
	}
}

// Run drains the queue until ctx is canceled, calling issue for each
// request and releasing its in-flight marker once issue returns —
// regardless of outcome, since a Permanent failure still shouldn't wedge
// the name out of future retries forever (the renewal scheduler, not this
// package, is what paces retries).
func (q *Queue) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-q.ch:
			q.process(ctx, req)
		}
	}
}

func (q *Queue) process(ctx context.Context, req issuanceRequest) {
	defer func() {
		q.mu.Lock()
		delete(q.inFlight, req.Hostname)
		q.mu.Unlock()
	}()

	failure, err := q.issue(ctx, req)
	if err != nil {
		liblog.WarnLevel.LogErrorCtxf(liblog.NilLevel, "acme: issuance for %q failed (%s)", err, req.Hostname, failure)
	}
}
