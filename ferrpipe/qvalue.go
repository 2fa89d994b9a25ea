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

package ferrpipe

import (
	"sort"
	"strconv"
	"strings"
)

type qualityValue struct {
	value string
	q     float64
	qSet  bool
}

// ParseQValueHeader splits a comma-separated, optionally `;q=`-weighted
// header value (Accept, Accept-Language, ...) into values ordered by
// descending quality. A segment with no q inherits the nearest
// more-specific (i.e. later) segment's q, defaulting to 1.0 if none follow;
// the sort is stable so equal-q segments keep their original relative order.
func ParseQValueHeader(header string) []string {
	var values []qualityValue

	for _, segment := range strings.Split(header, ",") {
		if v, ok := parseQualitySegment(segment); ok {
			values = append(values, v)
		}
	}

	lastQ := 1.0
	for i := len(values) - 1; i >= 0; i-- {
		if values[i].qSet {
			lastQ = values[i].q
		} else {
			values[i].q = lastQ
		}
	}

	sort.SliceStable(values, func(i, j int) bool {
		return values[i].q > values[j].q
	})

	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.value
	}
	return out
}

func parseQualitySegment(segment string) (qualityValue, bool) {
	parts := strings.SplitN(strings.TrimSpace(segment), ";", 2)
	value := strings.TrimSpace(parts[0])
	if value == "" {
		return qualityValue{}, false
	}

	if len(parts) < 2 {
		return qualityValue{value: value}, true
	}

	qPart := strings.TrimSpace(parts[1])
	qStr, hasPrefix := strings.CutPrefix(qPart, "q=")
	if !hasPrefix {
		qStr = "0"
	}

	q, err := strconv.ParseFloat(qStr, 64)
	if err != nil {
		q = 0
	}

	return qualityValue{value: value, q: q, qSet: true}, true
}
