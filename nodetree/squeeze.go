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

import "strings"

// IsAnonymous reports whether name marks an auxiliary, parser-generated
// node (leading ':', or empty).
func IsAnonymous(name string) bool {
	return name == "" || strings.HasPrefix(name, ":")
}

// SqueezeAnonymous merges any branch node whose children are all anonymous
// leaves into a single leaf holding their concatenated content, keeping the
// branch's own name and attributes. It recurses bottom-up, so a chain of
// nested anonymous-only wrappers collapses in one pass: a grandchild
// squeezed into an anonymous leaf makes its parent eligible too.
//
// Squeezing is skipped for any node with at least one child that already
// carries an assigned position — once positions exist there is a
// monotonicity contract to preserve (invariant 3 in §3), and merging leaves
// out from under assigned positions would make the remaining position
// sequence inconsistent with the now-missing intermediate leaves.
func SqueezeAnonymous(n *Node) *Node {
	if n.IsLeaf() {
		return n
	}
	children := n.Children()
	squeezed := make([]*Node, len(children))
	for i, c := range children {
		squeezed[i] = SqueezeAnonymous(c)
	}
	if !n.IsFrozen() {
		must(n.SetResult(squeezed))
	}
	if !allAnonymousLeaves(squeezed) {
		return n
	}
	var content strings.Builder
	for _, c := range squeezed {
		content.WriteString(c.Content())
	}
	merged := Leaf(n.Name(), content.String())
	for _, k := range n.AttrNames() {
		v, _ := n.Attr(k)
		must(merged.SetAttr(k, v))
	}
	return merged
}

func allAnonymousLeaves(children []*Node) bool {
	if len(children) == 0 {
		return false
	}
	for _, c := range children {
		if !c.IsLeaf() || !IsAnonymous(c.Name()) || c.HasPos() {
			return false
		}
	}
	return true
}
