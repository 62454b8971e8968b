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

// NodeIter is a pull iterator over nodes matching a predicate, visited in
// pre-order (reversed sibling order at each level if reverse is set). It is
// "lazy" in the sense required by §9: it keeps an explicit stack rather
// than materializing the whole result up front, and can be abandoned with
// Stop without walking the rest of the tree.
type NodeIter struct {
	stack []*Node
	pred  Predicate
	skip  Predicate
	rev   bool
	cur   *Node
	done  bool
}

// SelectIf returns a lazy pre-order iterator over descendants of n matching
// pred. If includeRoot is true, n itself is tested too. If skipSubtree is
// non-nil, any node it matches has its children excluded from traversal
// (but the node itself is still tested against pred).
func (n *Node) SelectIf(pred Predicate, includeRoot, reverse bool, skipSubtree Predicate) *NodeIter {
	it := &NodeIter{pred: pred, skip: skipSubtree, rev: reverse}
	if includeRoot {
		it.stack = []*Node{n}
	} else {
		it.pushChildren(n)
	}
	return it
}

func (it *NodeIter) pushChildren(n *Node) {
	if it.skip != nil && it.skip(n) {
		return
	}
	ch := n.children
	if it.rev {
		for i := 0; i < len(ch); i++ {
			it.stack = append(it.stack, ch[i])
		}
	} else {
		for i := len(ch) - 1; i >= 0; i-- {
			it.stack = append(it.stack, ch[i])
		}
	}
}

// Next advances the iterator and reports whether a matching node was
// found. Call Node to retrieve it.
func (it *NodeIter) Next() bool {
	for len(it.stack) > 0 {
		last := len(it.stack) - 1
		n := it.stack[last]
		it.stack = it.stack[:last]
		it.pushChildren(n)
		if it.pred(n) {
			it.cur = n
			return true
		}
	}
	it.done = true
	return false
}

// Node returns the node found by the most recent successful Next call.
func (it *NodeIter) Node() *Node { return it.cur }

// Stop abandons the iterator early; subsequent Next calls return false.
func (it *NodeIter) Stop() { it.stack = nil; it.done = true }

// ToSlice drains the iterator into a slice. Only use on bounded trees.
func (it *NodeIter) ToSlice() []*Node {
	var out []*Node
	for it.Next() {
		out = append(out, it.Node())
	}
	return out
}

// PathIter is the path-valued counterpart of NodeIter (select_path_if).
type PathIter struct {
	stack []Path
	pred  Predicate
	skip  Predicate
	rev   bool
	cur   Path
}

// SelectPathIf is like SelectIf but yields the full root-first ancestor
// path to each match.
func (n *Node) SelectPathIf(pred Predicate, includeRoot, reverse bool, skipSubtree Predicate) *PathIter {
	it := &PathIter{pred: pred, skip: skipSubtree, rev: reverse}
	if includeRoot {
		it.stack = []Path{{n}}
	} else {
		it.pushChildren(Path{n})
	}
	return it
}

func (it *PathIter) pushChildren(p Path) {
	n := p.Node()
	if it.skip != nil && it.skip(n) {
		return
	}
	ch := n.children
	if it.rev {
		for i := 0; i < len(ch); i++ {
			it.stack = append(it.stack, append(p.Clone(), ch[i]))
		}
	} else {
		for i := len(ch) - 1; i >= 0; i-- {
			it.stack = append(it.stack, append(p.Clone(), ch[i]))
		}
	}
}

// Next advances the iterator.
func (it *PathIter) Next() bool {
	for len(it.stack) > 0 {
		last := len(it.stack) - 1
		p := it.stack[last]
		it.stack = it.stack[:last]
		it.pushChildren(p)
		if it.pred(p.Node()) {
			it.cur = p
			return true
		}
	}
	return false
}

// Path returns the path found by the most recent successful Next call.
func (it *PathIter) Path() Path { return it.cur }

// Pick returns the first descendant of n matching pred (or n itself, if
// includeRoot), or nil.
func (n *Node) Pick(pred Predicate, includeRoot bool) *Node {
	it := n.SelectIf(pred, includeRoot, false, nil)
	if it.Next() {
		return it.Node()
	}
	return nil
}

// PickPath is the path-valued counterpart of Pick.
func (n *Node) PickPath(pred Predicate, includeRoot bool) Path {
	it := n.SelectPathIf(pred, includeRoot, false, nil)
	if it.Next() {
		return it.Path()
	}
	return nil
}

// WalkTree returns every node in n's subtree, pre-order, unfiltered.
func (n *Node) WalkTree() []*Node {
	return n.SelectIf(func(*Node) bool { return true }, true, false, nil).ToSlice()
}

// WalkTreePaths returns every path in n's subtree, pre-order, unfiltered.
func (n *Node) WalkTreePaths() []Path {
	var out []Path
	it := n.SelectPathIf(func(*Node) bool { return true }, true, false, nil)
	for it.Next() {
		out = append(out, it.Path().Clone())
	}
	return out
}

// MilestoneSegment returns the minimal subtree of n covering both begin and
// end (which must both be descendants of n, in document order), cloning
// nodes at the boundary so the original tree is not modified. This is
// marked experimental in the spec: callers should not depend on exact
// clone identity, only on the returned tree's content and shape.
func (n *Node) MilestoneSegment(begin, end *Node) (*Node, error) {
	pb, err := ReconstructPath(n, begin)
	if err != nil {
		return nil, fmt.Errorf("milestone begin: %w", err)
	}
	pe, err := ReconstructPath(n, end)
	if err != nil {
		return nil, fmt.Errorf("milestone end: %w", err)
	}
	depth := CommonAncestorDepth(pb, pe)
	if depth < 0 {
		return nil, fmt.Errorf("%w: begin and end share no common ancestor", ErrNotFound)
	}
	ancestor := pb[depth]
	clone := ancestor.Clone()
	if ancestor.isLeaf {
		return clone, nil
	}
	// Keep only the children spanning from pb's branch to pe's branch,
	// inclusive, cloning the boundary children themselves so in-progress
	// trimming never mutates the original tree.
	startChild, endChild := ancestor, ancestor
	if depth+1 < len(pb) {
		startChild = pb[depth+1]
	}
	if depth+1 < len(pe) {
		endChild = pe[depth+1]
	}
	si, ei := -1, -1
	for i, c := range ancestor.children {
		if c == startChild {
			si = i
		}
		if c == endChild {
			ei = i
		}
	}
	if si < 0 || ei < 0 || si > ei {
		return nil, fmt.Errorf("%w: malformed milestone span", ErrNotFound)
	}
	span := append([]*Node(nil), ancestor.children[si:ei+1]...)
	if si != 0 {
		span[0] = span[0].Clone()
	}
	if ei != len(ancestor.children)-1 {
		span[len(span)-1] = span[len(span)-1].Clone()
	}
	clone.children = span
	return clone, nil
}

// Action is a bottom-up evaluator callback: given the path to the node
// being evaluated and the already-evaluated results of its children (in
// order, empty for a leaf), it returns the node's value.
type Action func(path Path, children []interface{}) (interface{}, error)

// Evaluate runs a simple bottom-up evaluator: actions[node.Name()] is
// called with the evaluated results of node's children (pre-order descent,
// post-order application). If no action is registered for a node's name,
// actions["*"] is used if present; otherwise Evaluate fails. A zombie node
// anywhere in the subtree always fails, even if not the node actions was
// first called on (§"SUPPLEMENTED FEATURES" item 3).
func Evaluate(n *Node, actions map[string]Action, path Path) (interface{}, error) {
	if path == nil {
		path = Path{n}
	}
	if n.IsZombie() {
		return nil, fmt.Errorf("%w: %s", ErrZombie, n.name)
	}
	var childResults []interface{}
	for _, c := range n.children {
		cp := append(path.Clone(), c)
		r, err := Evaluate(c, actions, cp)
		if err != nil {
			return nil, err
		}
		childResults = append(childResults, r)
	}
	action, ok := actions[n.name]
	if !ok {
		action, ok = actions["*"]
	}
	if !ok {
		return nil, fmt.Errorf("nodetree: no action registered for node %q", n.name)
	}
	return action(path, childResults)
}
