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

// Package size models byte quantities parsed from and formatted back to
// human-readable strings (e.g. "5MB", "1.5GB"), used for every config knob
// that accepts a size (buffer limits, body caps, cache budgets).
package size

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Size is a quantity of bytes. Units are binary (1024-based): K == KB == 1024.
type Size uint64

const (
	SizeNul  Size = 0
	SizeUnit Size = 1
	SizeKilo Size = SizeUnit << 10
	SizeMega Size = SizeKilo << 10
	SizeGiga Size = SizeMega << 10
	SizeTera Size = SizeGiga << 10
	SizePeta Size = SizeTera << 10
	SizeExa  Size = SizePeta << 10
)

const (
	FormatRound0 = "%.0f"
	FormatRound1 = "%.1f"
	FormatRound2 = "%.2f"
	FormatRound3 = "%.3f"
)

var units = []struct {
	suffix string
	size   Size
}{
	{"EB", SizeExa},
	{"PB", SizePeta},
	{"TB", SizeTera},
	{"GB", SizeGiga},
	{"MB", SizeMega},
	{"KB", SizeKilo},
}

// String formats the size with two decimals and the largest unit it fits in.
func (s Size) String() string {
	return s.Format(FormatRound2)
}

// Format renders the size using verb (one of FormatRoundN) followed by its unit suffix.
func (s Size) Format(verb string) string {
	for _, u := range units {
		if s >= u.size {
			return fmt.Sprintf(verb, float64(s)/float64(u.size)) + u.suffix
		}
	}

	return fmt.Sprintf(verb, float64(s)) + "B"
}

func (s Size) Uint64() uint64 { return uint64(s) }

func (s Size) Uint32() uint32 {
	if uint64(s) > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(s)
}

func (s Size) Uint() uint {
	if uint64(s) > uint64(^uint(0)) {
		return ^uint(0)
	}
	return uint(s)
}

func (s Size) Int64() int64 {
	if uint64(s) > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(s)
}

func (s Size) Int32() int32 {
	if uint64(s) > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(s)
}

func (s Size) Int() int {
	if uint64(s) > uint64(math.MaxInt) {
		return math.MaxInt
	}
	return int(s)
}

func (s Size) Float64() float64 { return float64(s) }

// ParseInt64 converts the absolute value of i into a Size.
func ParseInt64(i int64) Size {
	if i < 0 {
		return Size(uint64(-i))
	}
	return Size(uint64(i))
}

// SizeFromInt64 is an alias of ParseInt64.
func SizeFromInt64(i int64) Size { return ParseInt64(i) }

// ParseUint64 converts u into a Size.
func ParseUint64(u uint64) Size { return Size(u) }

// ParseFloat64 converts the absolute value of f into a Size, flooring fractions
// and capping at math.MaxUint64 on overflow.
func ParseFloat64(f float64) Size {
	if f < 0 {
		f = -f
	}

	f = math.Floor(f)

	if f >= float64(math.MaxUint64) {
		return Size(uint64(math.MaxUint64))
	}

	return Size(uint64(f))
}

// SizeFromFloat64 is an alias of ParseFloat64.
func SizeFromFloat64(f float64) Size { return ParseFloat64(f) }

// Parse reads a human size expression such as "5MB", "1.5GB" or the compound
// form "1GB500MB" and returns the resulting Size.
func Parse(in string) (Size, error) {
	return ParseByte([]byte(in))
}

// ParseSize is a deprecated alias of Parse.
func ParseSize(in string) (Size, error) { return Parse(in) }

// ParseByteAsSize is a deprecated alias of ParseByte.
func ParseByteAsSize(in []byte) (Size, error) { return ParseByte(in) }

// ParseByte is the []byte-input form of Parse.
func ParseByte(in []byte) (Size, error) {
	s := strings.TrimSpace(string(in))

	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			s = strings.TrimSpace(s[1 : len(s)-1])
		}
	}

	if s == "" {
		return SizeNul, fmt.Errorf("size: empty value")
	}

	if s[0] == '-' {
		return SizeNul, fmt.Errorf("size: negative value not allowed: %q", s)
	}

	if s[0] == '+' {
		s = s[1:]
	}

	var total float64
	rest := s
	found := false

	for len(rest) > 0 {
		numEnd := 0
		dotSeen := false

		for numEnd < len(rest) && (isDigit(rest[numEnd]) || (rest[numEnd] == '.' && !dotSeen)) {
			if rest[numEnd] == '.' {
				dotSeen = true
			}
			numEnd++
		}

		if numEnd == 0 {
			return SizeNul, fmt.Errorf("size: invalid value: %q", s)
		}

		numPart := rest[:numEnd]
		if numPart == "." || strings.Count(numPart, ".") > 1 {
			return SizeNul, fmt.Errorf("size: invalid number: %q", numPart)
		}
		if strings.HasSuffix(numPart, ".") {
			return SizeNul, fmt.Errorf("size: invalid number: %q", numPart)
		}

		val, err := strconv.ParseFloat(numPart, 64)
		if err != nil {
			return SizeNul, fmt.Errorf("size: invalid number %q: %w", numPart, err)
		}

		rest = rest[numEnd:]

		unitEnd := 0
		for unitEnd < len(rest) && isAlpha(rest[unitEnd]) {
			unitEnd++
		}

		unit := strings.ToUpper(rest[:unitEnd])
		mult, err := unitMultiplier(unit)
		if err != nil {
			return SizeNul, err
		}

		total += val * float64(mult)
		found = true
		rest = rest[unitEnd:]
	}

	if !found {
		return SizeNul, fmt.Errorf("size: no value found in %q", s)
	}

	return ParseFloat64(total), nil
}

func unitMultiplier(unit string) (Size, error) {
	switch unit {
	case "B", "":
		return SizeUnit, nil
	case "K", "KB":
		return SizeKilo, nil
	case "M", "MB":
		return SizeMega, nil
	case "G", "GB":
		return SizeGiga, nil
	case "T", "TB":
		return SizeTera, nil
	case "P", "PB":
		return SizePeta, nil
	case "E", "EB":
		return SizeExa, nil
	default:
		return SizeNul, fmt.Errorf("size: unknown unit %q", unit)
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }
