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

// Command ferron-yaml2kdl reads a YAML configuration document and re-emits
// it as KDL. The KDL grammar itself is out of scope here — this binary
// demonstrates the external contract (stdin/stdout, exit codes) a future
// KDL emitter would honor, using an indented `key value` rendering as a
// stand-in for real KDL nodes.
package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

const (
	exitSuccess = 0
	exitIOError = 1
)

func main() {
	raw, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ferron-yaml2kdl: reading stdin:", err)
		os.Exit(exitIOError)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		fmt.Fprintln(os.Stderr, "ferron-yaml2kdl: parsing YAML:", err)
		os.Exit(exitIOError)
	}

	w := os.Stdout
	if len(doc.Content) > 0 {
		emitNode(w, doc.Content[0], 0)
	}
	os.Exit(exitSuccess)
}

// emitNode renders a YAML node as indented `key value` lines, sorting
// mapping keys for deterministic output.
func emitNode(w io.Writer, n *yaml.Node, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "    "
	}

	switch n.Kind {
	case yaml.MappingNode:
		type kv struct {
			key *yaml.Node
			val *yaml.Node
		}
		pairs := make([]kv, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			pairs = append(pairs, kv{n.Content[i], n.Content[i+1]})
		}
		sort.Slice(pairs, func(i, j int) bool { return pairs[i].key.Value < pairs[j].key.Value })

		for _, p := range pairs {
			if p.val.Kind == yaml.MappingNode || p.val.Kind == yaml.SequenceNode {
				fmt.Fprintf(w, "%s%s {\n", indent, p.key.Value)
				emitNode(w, p.val, depth+1)
				fmt.Fprintf(w, "%s}\n", indent)
			} else {
				fmt.Fprintf(w, "%s%s %q\n", indent, p.key.Value, p.val.Value)
			}
		}
	case yaml.SequenceNode:
		for _, item := range n.Content {
			fmt.Fprintf(w, "%sitem {\n", indent)
			emitNode(w, item, depth+1)
			fmt.Fprintf(w, "%s}\n", indent)
		}
	default:
		fmt.Fprintf(w, "%s%q\n", indent, n.Value)
	}
}
