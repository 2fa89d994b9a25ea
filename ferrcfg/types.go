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

// Package ferrcfg resolves, per request, the effective configuration by
// composing a global block with the most specific matching host and
// location, following the declared specificity order global < host <
// location < error-handler.
package ferrcfg

// EntryValue is one occurrence of a directive: positional arguments plus a
// keyword-property mapping, e.g. `header X-Foo bar cache=true`.
type EntryValue struct {
	Args  []string
	Props map[string]string
}

// EntryList is the set of occurrences of a directive key within one Block.
type EntryList []EntryValue

// ModuleRef is a reference to a pipeline module, by name and its construction
// arguments, as declared in a block.
type ModuleRef struct {
	Name string
	Args []string
}

// Filters selects which requests a Block applies to. A Block with every
// filter at its zero value is the global block.
type Filters struct {
	// Host marks this as a virtual-host block (as opposed to global).
	Host bool
	// Hostname is a literal or "*."-wildcard pattern; empty means "any host"
	// for the global block, or "inherit from enclosing host" for a location.
	Hostname string
	// IP is a literal address or CIDR; empty means "any".
	IP string
	// Port is the listener port this block applies to; 0 means "any".
	Port int
	// Path is the location-match prefix; empty means this is not a location
	// block (global or host tier).
	Path string
	// Condition is an optional expression evaluated against the request
	// context (see the condition subpackage); empty means "always true".
	Condition string
	// ErrorStatus, when non-zero, marks this as an error-handler block that
	// only matches while resolving an error response of that status code.
	ErrorStatus int
}

// Block is one ServerConfiguration entry: a set of filters plus the entries
// and module references that apply when those filters match. Immutable once
// part of a Set.
type Block struct {
	Filters Filters
	Entries map[string]EntryList
	Modules []ModuleRef
}

func (f Filters) tier() specificityTier {
	switch {
	case f.ErrorStatus != 0:
		return tierError
	case f.Path != "":
		return tierLocation
	case f.Host:
		return tierHost
	default:
		return tierGlobal
	}
}

type specificityTier int

const (
	tierGlobal specificityTier = iota
	tierHost
	tierLocation
	tierError
)

// Set is an ordered ConfigurationSet: exactly one global block first, host
// blocks and their nested location/error blocks following in declaration
// order.
type Set []Block

// Effective is the EffectiveConfiguration produced by Resolve for a request:
// the merged entries plus the deduplicated, ordered module list.
type Effective struct {
	Entries map[string]EntryList
	Modules []ModuleRef
}

// RequestContext is the per-request input to Resolve.
type RequestContext struct {
	// Hostname is the request's Host header or TLS SNI name.
	Hostname string
	// IP is the listener's bound address.
	IP string
	// Port is the listener's bound port.
	Port int
	// Path is the request's path.
	Path string
	// Encrypted is true for requests arriving over TLS.
	Encrypted bool
	// ErrorStatus, when non-zero, asks Resolve to additionally merge the
	// error-handler block matching that status.
	ErrorStatus int
}
