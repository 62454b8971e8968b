// Copyright 2019 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package nodetree

import (
	"fmt"
	"strconv"
	"strings"
)

// IndentOptions controls the human-readable outline form.
type IndentOptions struct {
	// Unit is the per-level indent string; two spaces if empty.
	Unit string
	// ShowPos annotates each line with the node's position, when assigned.
	ShowPos bool
}

// SerializeIndent renders n as a human-readable, indented outline: one
// line per node, children indented one level deeper than their parent,
// grounded on the teacher's toString indent-level recursion (parser/node.go).
func SerializeIndent(n *Node, opts IndentOptions) string {
	unit := opts.Unit
	if unit == "" {
		unit = "  "
	}
	var b strings.Builder
	writeIndent(&b, n, "", unit, opts)
	return b.String()
}

func writeIndent(b *strings.Builder, n *Node, depth, unit string, opts IndentOptions) {
	b.WriteString(depth)
	b.WriteString(n.Name())
	if opts.ShowPos && n.HasPos() {
		fmt.Fprintf(b, " @%d", n.Pos())
	}
	for _, k := range n.AttrNames() {
		v, _ := n.Attr(k)
		fmt.Fprintf(b, " %s=%s", k, strconv.Quote(v))
	}
	if n.IsLeaf() {
		fmt.Fprintf(b, " %s\n", strconv.Quote(n.Content()))
		return
	}
	b.WriteByte('\n')
	childDepth := depth + unit
	for _, c := range n.Children() {
		writeIndent(b, c, childDepth, unit, opts)
	}
}
