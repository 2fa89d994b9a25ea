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

import (
	"os"
	"strings"
)

// ExpandEnv replaces every `{env:NAME}` token in in with the value of the
// NAME environment variable. A referenced variable that isn't set is a
// configuration error, not a silent empty-string substitution.
func ExpandEnv(in string) (string, error) {
	var b strings.Builder
	b.Grow(len(in))

	rest := in
	for {
		start := strings.Index(rest, "{env:")
		if start < 0 {
			b.WriteString(rest)
			break
		}

		end := strings.IndexByte(rest[start:], '}')
		if end < 0 {
			b.WriteString(rest)
			break
		}
		end += start

		name := rest[start+len("{env:") : end]
		val, ok := os.LookupEnv(name)
		if !ok {
			return "", ErrorEnvVarMissing.Error(errEnvVarName(name))
		}

		b.WriteString(rest[:start])
		b.WriteString(val)
		rest = rest[end+1:]
	}

	return b.String(), nil
}

// ExpandEntries applies ExpandEnv to every argument and property value of
// every EntryValue in the map, in place conceptually but returning a fresh
// map since EntryList/EntryValue are treated as immutable once built.
func ExpandEntries(entries map[string]EntryList) (map[string]EntryList, error) {
	out := make(map[string]EntryList, len(entries))

	for key, list := range entries {
		expanded := make(EntryList, len(list))
		for i, ev := range list {
			args := make([]string, len(ev.Args))
			for j, a := range ev.Args {
				exp, err := ExpandEnv(a)
				if err != nil {
					return nil, err
				}
				args[j] = exp
			}

			var props map[string]string
			if ev.Props != nil {
				props = make(map[string]string, len(ev.Props))
				for k, v := range ev.Props {
					exp, err := ExpandEnv(v)
					if err != nil {
						return nil, err
					}
					props[k] = exp
				}
			}

			expanded[i] = EntryValue{Args: args, Props: props}
		}
		out[key] = expanded
	}

	return out, nil
}

type errEnvVarName string

func (e errEnvVarName) Error() string { return "undefined environment variable: " + string(e) }
