/*
 * MIT License
 *
 * Copyright (c) 2019 Nicolas JUHEL
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

// Package password generates random printable-ASCII strings, used by
// cmd/ferron-passwd to produce a fresh secret before it gets hashed.
package password

import (
	"crypto/rand"
	"math/big"
)

// LetterBytes is the alphabet random passwords are drawn from.
const LetterBytes = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789,;:!?./*%^$&\"'(-_)=+~#{[|`\\^@]}"

// Generate returns a random string of length n drawn from LetterBytes.
func Generate(n int) string {
	if n <= 0 {
		return ""
	}

	b := make([]byte, n)
	max := big.NewInt(int64(len(LetterBytes)))

	for i := range b {
		b[i] = LetterBytes[randIdx(max)]
	}

	return string(b)
}

func randIdx(max *big.Int) int64 {
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return 0
	}

	return n.Int64()
}
