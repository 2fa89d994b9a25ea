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

package ferrupstream_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ferronweb/ferron/ferrupstream"
)

var _ = Describe("HealthCache", func() {
	key := ferrupstream.UpstreamKey{Scheme: "http", Host: "a", Port: 8080}

	It("reports zero failures for an untouched key", func() {
		h := ferrupstream.NewHealthCache(time.Minute)
		Expect(h.Failures(key)).To(Equal(0))
		Expect(h.Healthy(key, 0)).To(BeTrue())
	})

	It("accumulates consecutive failures", func() {
		h := ferrupstream.NewHealthCache(time.Minute)
		h.RecordFailure(key)
		h.RecordFailure(key)
		h.RecordFailure(key)
		Expect(h.Failures(key)).To(Equal(3))
		Expect(h.Healthy(key, 2)).To(BeFalse())
		Expect(h.Healthy(key, 3)).To(BeTrue())
	})

	It("expires the failure count after the TTL with no success needed", func() {
		h := ferrupstream.NewHealthCache(30 * time.Millisecond)
		h.RecordFailure(key)
		Expect(h.Failures(key)).To(Equal(1))
		time.Sleep(40 * time.Millisecond)
		Expect(h.Failures(key)).To(Equal(0))
	})

	It("tracks distinct keys independently", func() {
		h := ferrupstream.NewHealthCache(time.Minute)
		other := ferrupstream.UpstreamKey{Scheme: "http", Host: "b", Port: 8080}
		h.RecordFailure(key)
		Expect(h.Failures(key)).To(Equal(1))
		Expect(h.Failures(other)).To(Equal(0))
	})
})

var _ = Describe("connGuard (via Pool.Select)", func() {
	It("decrements live connections on Release and is safe to call more than once", func() {
		pool, err := ferrupstream.NewPool(ferrupstream.Config{
			Upstreams: []ferrupstream.UpstreamKey{{Scheme: "http", Host: "a", Port: 8080}},
			Algorithm: ferrupstream.RoundRobin,
		})
		Expect(err).ToNot(HaveOccurred())

		u, guard, err := pool.Select()
		Expect(err).ToNot(HaveOccurred())
		Expect(u.LiveConnections()).To(Equal(int64(1)))

		guard.Release()
		Expect(u.LiveConnections()).To(Equal(int64(0)))

		guard.Release()
		Expect(u.LiveConnections()).To(Equal(int64(0)))
	})
})
