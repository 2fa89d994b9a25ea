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

package ferrcfg

// isListShaped holds for a directive written more than once in the same
// block: repeated occurrences are accumulation, not replacement.
func isListShaped(l EntryList) bool { return len(l) > 1 }

// isMappingShaped holds for a single keyword-style occurrence (one
// EntryValue carrying properties): merging overrides by property key rather
// than replacing the whole value.
func isMappingShaped(l EntryList) bool { return len(l) == 1 && len(l[0].Props) > 0 }

// mergeEntryList merges a more-specific src onto a less-specific dst for the
// same key, per the rule in Block's doc: list-shaped concatenates (more
// specific appended), mapping-shaped overrides key-wise, otherwise the more
// specific value replaces outright.
func mergeEntryList(dst, src EntryList) EntryList {
	switch {
	case isListShaped(dst) && isListShaped(src):
		out := make(EntryList, 0, len(dst)+len(src))
		out = append(out, dst...)
		out = append(out, src...)
		return out

	case isMappingShaped(dst) && isMappingShaped(src):
		props := make(map[string]string, len(dst[0].Props)+len(src[0].Props))
		for k, v := range dst[0].Props {
			props[k] = v
		}
		for k, v := range src[0].Props {
			props[k] = v
		}
		return EntryList{{Args: src[0].Args, Props: props}}

	default:
		return append(EntryList(nil), src...)
	}
}

// mergeEntries merges src onto dst in place and returns dst.
func mergeEntries(dst map[string]EntryList, src map[string]EntryList) map[string]EntryList {
	if dst == nil {
		dst = make(map[string]EntryList, len(src))
	}

	for key, list := range src {
		if existing, ok := dst[key]; ok {
			dst[key] = mergeEntryList(existing, list)
		} else {
			dst[key] = append(EntryList(nil), list...)
		}
	}

	return dst
}

// mergeModules appends src's module references after dst's, then dedupes by
// name keeping the first (least-specific, i.e. outermost) occurrence so a
// module's construction arguments are the ones declared closest to global
// scope unless a more specific block doesn't mention it at all.
func mergeModules(dst []ModuleRef, src []ModuleRef) []ModuleRef {
	out := make([]ModuleRef, 0, len(dst)+len(src))
	out = append(out, dst...)
	out = append(out, src...)

	seen := make(map[string]struct{}, len(out))
	deduped := out[:0]
	for _, m := range out {
		if _, ok := seen[m.Name]; ok {
			continue
		}
		seen[m.Name] = struct{}{}
		deduped = append(deduped, m)
	}

	return deduped
}
