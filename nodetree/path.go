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

import "fmt"

// Path is an ordered sequence of nodes from a root to a descendant
// (inclusive, root first, descendant last). §4.6.
type Path []*Node

// Node returns the last (deepest) node in the path, or nil if empty.
func (p Path) Node() *Node {
	if len(p) == 0 {
		return nil
	}
	return p[len(p)-1]
}

// Parent returns the path with its last element dropped — i.e. the path to
// the parent of p.Node().
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1]
}

// Clone returns a copy of the path slice (not of the nodes).
func (p Path) Clone() Path {
	c := make(Path, len(p))
	copy(c, p)
	return c
}

// ReconstructPath returns the path from n to descendant, inclusive. It
// fails if descendant is not reachable from n.
func ReconstructPath(n *Node, descendant *Node) (Path, error) {
	path, ok := reconstructPath(n, descendant, Path{n})
	if !ok {
		return nil, fmt.Errorf("%w: node is not a descendant of the given root", ErrNotFound)
	}
	return path, nil
}

func reconstructPath(n, target *Node, soFar Path) (Path, bool) {
	if n == target {
		return soFar, true
	}
	for _, c := range n.children {
		if p, ok := reconstructPath(c, target, append(soFar, c)); ok {
			return p, true
		}
	}
	return nil, false
}

// PredSiblings returns the end node's left siblings within its parent (the
// path's second-to-last element), nearest first.
func PredSiblings(p Path) []*Node {
	if len(p) < 2 {
		return nil
	}
	parent := p[len(p)-2]
	end := p[len(p)-1]
	for i, c := range parent.children {
		if c == end {
			out := make([]*Node, i)
			for j := 0; j < i; j++ {
				out[j] = parent.children[i-1-j]
			}
			return out
		}
	}
	return nil
}

// SuccSiblings returns the end node's right siblings within its parent,
// nearest first.
func SuccSiblings(p Path) []*Node {
	if len(p) < 2 {
		return nil
	}
	parent := p[len(p)-2]
	end := p[len(p)-1]
	for i, c := range parent.children {
		if c == end {
			return append([]*Node(nil), parent.children[i+1:]...)
		}
	}
	return nil
}

// walkPreOrder calls visit(path) for every node in pre-order, depth first.
// If visit returns false the traversal stops early.
func walkPreOrder(path Path, visit func(Path) bool) bool {
	if !visit(path) {
		return false
	}
	n := path.Node()
	for _, c := range n.children {
		if !walkPreOrder(append(path.Clone(), c), visit) {
			return false
		}
	}
	return true
}

// allPathsPreOrder returns the path to every node in n's subtree, pre-order.
func allPathsPreOrder(n *Node) []Path {
	var out []Path
	walkPreOrder(Path{n}, func(p Path) bool {
		out = append(out, p.Clone())
		return true
	})
	return out
}

// NextPath steps the end of p to the following node in a whole-tree
// pre-order traversal rooted at treeRoot, or returns nil at the tree's end.
func NextPath(treeRoot *Node, p Path) Path {
	all := allPathsPreOrder(treeRoot)
	for i, cand := range all {
		if pathsEqualEnd(cand, p) {
			if i+1 < len(all) {
				return all[i+1]
			}
			return nil
		}
	}
	return nil
}

// PrevPath steps the end of p to the preceding node in a whole-tree
// pre-order traversal rooted at treeRoot, or returns nil at the tree's start.
func PrevPath(treeRoot *Node, p Path) Path {
	all := allPathsPreOrder(treeRoot)
	for i, cand := range all {
		if pathsEqualEnd(cand, p) {
			if i > 0 {
				return all[i-1]
			}
			return nil
		}
	}
	return nil
}

func pathsEqualEnd(a, b Path) bool {
	return a.Node() == b.Node()
}

// LeafPath returns the path extended down to the first leaf reachable from
// p's end node, always descending into the first child.
func LeafPath(p Path) Path {
	n := p.Node()
	for !n.isLeaf && len(n.children) > 0 {
		n = n.children[0]
		p = append(p.Clone(), n)
	}
	return p
}

// NextLeafPath returns the path to the next leaf after p in document order.
func NextLeafPath(treeRoot *Node, p Path) Path {
	for {
		p = NextPath(treeRoot, p)
		if p == nil {
			return nil
		}
		if p.Node().isLeaf {
			return p
		}
	}
}

// PrevLeafPath returns the path to the previous leaf before p in document
// order.
func PrevLeafPath(treeRoot *Node, p Path) Path {
	for {
		p = PrevPath(treeRoot, p)
		if p == nil {
			return nil
		}
		if p.Node().isLeaf {
			return p
		}
	}
}

// FindCommonAncestor returns the deepest node appearing at the same
// position in both a and b, or nil if the paths don't even share a root.
func FindCommonAncestor(a, b Path) *Node {
	var common *Node
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			break
		}
		common = a[i]
	}
	return common
}

// CommonAncestorDepth returns the index (0-based, root is 0) of the deepest
// shared node in a and b, or -1 if they share no root.
func CommonAncestorDepth(a, b Path) int {
	depth := -1
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			break
		}
		depth = i
	}
	return depth
}

// PathHeadIf truncates p at the first node (from the root) satisfying pred,
// inclusive. Returns nil if no node matches.
func PathHeadIf(p Path, pred Predicate) Path {
	for i, n := range p {
		if pred(n) {
			return p[:i+1]
		}
	}
	return nil
}

// PathTailIf truncates p at the last node (from the end) satisfying pred,
// inclusive, counted from the root (i.e. keeps everything up to and
// including the deepest match).
func PathTailIf(p Path, pred Predicate) Path {
	last := -1
	for i, n := range p {
		if pred(n) {
			last = i
		}
	}
	if last < 0 {
		return nil
	}
	return p[:last+1]
}

// PickFromPath returns the first node along p (searched from the root)
// matching criteria, or nil.
func PickFromPath(p Path, criteria interface{}) *Node {
	pred := mustMatchFunc(criteria)
	for _, n := range p {
		if pred(n) {
			return n
		}
	}
	return nil
}

// SelectFromPath returns every node along p matching criteria, root first.
func SelectFromPath(p Path, criteria interface{}) []*Node {
	pred := mustMatchFunc(criteria)
	var out []*Node
	for _, n := range p {
		if pred(n) {
			out = append(out, n)
		}
	}
	return out
}

// DropLeaf removes the leaf at the end of p and recursively collapses any
// ancestor that becomes childless as a result, up to (but not including)
// the path's root.
func DropLeaf(p Path) error {
	if len(p) < 2 {
		return fmt.Errorf("%w: cannot drop the root", ErrNotFound)
	}
	leaf := p[len(p)-1]
	for i := len(p) - 2; i >= 0; i-- {
		parent := p[i]
		removed := parent.RemoveIf(func(n *Node) bool { return n == leaf })
		if removed == 0 {
			return fmt.Errorf("%w: leaf not found under its recorded parent", ErrNotFound)
		}
		if len(parent.children) > 0 || i == 0 {
			break
		}
		// Parent became childless; collapse it too, unless it is the root.
		leaf = parent
	}
	return nil
}
