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
)

// DivisibilitySet names the node-names a markup operation is permitted to
// split.
type DivisibilitySet map[string]bool

// Divisibility maps a markup name to the DivisibilitySet that applies to
// it; key "*" is the default used for any name without its own entry.
type Divisibility map[string]DivisibilitySet

// For returns the DivisibilitySet applicable to name, falling back to the
// "*" entry.
func (d Divisibility) For(name string) DivisibilitySet {
	if s, ok := d[name]; ok {
		return s
	}
	return d["*"]
}

// ContentMapping relates the flat textual content of a subtree to its
// hierarchical structure (§4.7): a selected projection of leaf content,
// indexed by offset, that structure-changing operations like Markup use to
// translate a content-space interval back into tree edits.
type ContentMapping struct {
	Origin        *Node
	Select        Predicate
	Ignore        Predicate
	Divisibility  Divisibility
	Greedy        bool
	ChainAttrName string
	AutoCleanup   bool

	content      string
	posList      []int
	pathList     []Path
	chainCounter int
}

// NewContentMapping builds a ContentMapping over origin. select, if
// non-nil, is tested against every leaf and must never match a branch node
// (ErrSelectNotLeaf); ignore, if non-nil, is tested against every node and
// excludes its whole subtree from the projection when it matches.
func NewContentMapping(origin *Node, selectPred, ignorePred Predicate, divisibility Divisibility, greedy bool, chainAttrName string, autoCleanup bool) (*ContentMapping, error) {
	cm := &ContentMapping{
		Origin:        origin,
		Select:        selectPred,
		Ignore:        ignorePred,
		Divisibility:  divisibility,
		Greedy:        greedy,
		ChainAttrName: chainAttrName,
		AutoCleanup:   autoCleanup,
	}
	if err := cm.rebuildAll(); err != nil {
		return nil, err
	}
	return cm, nil
}

func (cm *ContentMapping) rebuildAll() error {
	cm.content = ""
	cm.posList = nil
	cm.pathList = nil
	return cm.walk(cm.Origin, Path{cm.Origin})
}

func (cm *ContentMapping) walk(node *Node, path Path) error {
	if cm.Ignore != nil && cm.Ignore(node) {
		return nil
	}
	if node.IsLeaf() {
		if cm.Select != nil && !cm.Select(node) {
			return nil
		}
		cm.posList = append(cm.posList, len(cm.content))
		cm.pathList = append(cm.pathList, path.Clone())
		cm.content += node.Content()
		return nil
	}
	if cm.Select != nil && cm.Select(node) {
		return fmt.Errorf("%w: %q", ErrSelectNotLeaf, node.Name())
	}
	for _, c := range node.Children() {
		if err := cm.walk(c, append(path.Clone(), c)); err != nil {
			return err
		}
	}
	return nil
}

// Content returns the current projected string.
func (cm *ContentMapping) Content() string { return cm.content }

// NumPaths returns the number of leaf paths currently in the mapping.
func (cm *ContentMapping) NumPaths() int { return len(cm.pathList) }

func childIndex(parent, child *Node) int {
	for i, c := range parent.Children() {
		if c == child {
			return i
		}
	}
	return -1
}

// GetPathIndex binary-searches pos_list for the leaf path covering pos. If
// leftBiased is true and pos sits exactly on a boundary between two
// leaves, the preceding leaf is chosen; otherwise the following one is.
func (cm *ContentMapping) GetPathIndex(pos int, leftBiased bool) (int, error) {
	if len(cm.posList) == 0 {
		return 0, fmt.Errorf("%w: empty content mapping", ErrNotFound)
	}
	if pos < 0 || pos > len(cm.content) {
		return 0, fmt.Errorf("%w: offset %d out of range [0,%d]", ErrInvalidPosition, pos, len(cm.content))
	}
	lo, hi := 0, len(cm.posList)-1
	idx := 0
	for lo <= hi {
		mid := (lo + hi) / 2
		if cm.posList[mid] <= pos {
			idx = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	if leftBiased && idx > 0 && cm.posList[idx] == pos {
		idx--
	}
	return idx, nil
}

// GetPathAndOffset returns the leaf path covering pos together with the
// offset into that leaf's own content.
func (cm *ContentMapping) GetPathAndOffset(pos int, leftBiased bool) (Path, int, error) {
	idx, err := cm.GetPathIndex(pos, leftBiased)
	if err != nil {
		return nil, 0, err
	}
	return cm.pathList[idx], pos - cm.posList[idx], nil
}

// IteratePaths returns every leaf path whose content falls in [a, b].
func (cm *ContentMapping) IteratePaths(a, b int, leftBiased bool) ([]Path, error) {
	ia, err := cm.GetPathIndex(a, false)
	if err != nil {
		return nil, err
	}
	ib, err := cm.GetPathIndex(b, leftBiased)
	if err != nil {
		return nil, err
	}
	if ib < ia {
		ib = ia
	}
	return cm.pathList[ia : ib+1], nil
}

// GetNodePosition returns the content offset of the first (or, if reverse,
// one past the last) leaf under node.
func (cm *ContentMapping) GetNodePosition(node *Node, reverse bool) (int, error) {
	contains := func(p Path) bool {
		for _, n := range p {
			if n == node {
				return true
			}
		}
		return false
	}
	if !reverse {
		for i, p := range cm.pathList {
			if contains(p) {
				return cm.posList[i], nil
			}
		}
	} else {
		for i := len(cm.pathList) - 1; i >= 0; i-- {
			if contains(cm.pathList[i]) {
				return cm.posList[i] + cm.pathList[i].Node().Strlen(), nil
			}
		}
	}
	return 0, fmt.Errorf("%w: node not covered by this content mapping", ErrNotFound)
}

// PathNodeMatch is one result of SelectNodes: a node matching the given
// criteria together with the index of the first path in which it appears.
type PathNodeMatch struct {
	Node  *Node
	Index int
}

// SelectNodes returns one entry per unique node matching criteria among
// every node of every path at or after fromIndex.
func (cm *ContentMapping) SelectNodes(criteria interface{}, fromIndex int) ([]PathNodeMatch, error) {
	pred, err := MatchFunc(criteria)
	if err != nil {
		return nil, err
	}
	seen := make(map[*Node]bool)
	var out []PathNodeMatch
	for i := fromIndex; i < len(cm.pathList); i++ {
		for _, n := range cm.pathList[i] {
			if pred(n) && !seen[n] {
				seen[n] = true
				out = append(out, PathNodeMatch{Node: n, Index: i})
			}
		}
	}
	return out, nil
}

// InsertNode inserts node at content offset pos. If pos falls strictly
// inside a leaf, that leaf is split; splitting requires the leaf to be
// anonymous or its name to be in node.Name()'s divisibility set.
func (cm *ContentMapping) InsertNode(pos int, node *Node, leftBiased bool) (*Node, int, error) {
	path, offset, err := cm.GetPathAndOffset(pos, leftBiased)
	if err != nil {
		return nil, 0, err
	}
	leaf := path.Node()
	parentPath := path.Parent()
	parent := parentPath.Node()
	if parent == nil {
		return nil, 0, fmt.Errorf("nodetree: cannot insert at the root leaf's own boundary")
	}
	idx := childIndex(parent, leaf)
	var insertAt int
	switch {
	case offset == 0:
		insertAt = idx
	case offset == leaf.Strlen():
		insertAt = idx + 1
	default:
		divSet := cm.Divisibility.For(node.Name())
		if !divSet[leaf.Name()] && !leaf.IsAnonymous() {
			return nil, 0, fmt.Errorf("%w: leaf %q is not divisible for markup %q", ErrNotDivisible, leaf.Name(), node.Name())
		}
		pre := Leaf(leaf.Name(), leaf.Content()[:offset])
		post := Leaf(leaf.Name(), leaf.Content()[offset:])
		pre.attrs = leaf.attrs.clone()
		post.attrs = leaf.attrs.clone()
		spliceChildren(parent, idx, idx+1, pre, post)
		insertAt = idx + 1
	}
	spliceChildren(parent, insertAt, insertAt, node)
	if cm.AutoCleanup {
		if err := cm.rebuildAll(); err != nil {
			return nil, 0, err
		}
	}
	return parent, insertAt, nil
}

// spliceChildren replaces parent.children[from:to) with repl.
func spliceChildren(parent *Node, from, to int, repl ...*Node) {
	pc := parent.Children()
	out := make([]*Node, 0, len(pc)-(to-from)+len(repl))
	out = append(out, pc[:from]...)
	out = append(out, repl...)
	out = append(out, pc[to:]...)
	parent.children = out
}

func (cm *ContentMapping) nextChainID() string {
	cm.chainCounter++
	return fmt.Sprintf("chain-%d", cm.chainCounter)
}

// nodeLen returns the "length" i of node against which a split offset is
// measured: its character count if it is a leaf, its child count otherwise.
func nodeLen(node *Node) int {
	if node.IsLeaf() {
		return node.Strlen()
	}
	return len(node.Children())
}

// strlenOf sums Strlen() over a run of siblings; used by the greedy
// absorption check, which treats a run of entirely empty content as no
// obstacle to widening a split boundary to the run's far edge.
func strlenOf(nodes []*Node) int {
	total := 0
	for _, n := range nodes {
		total += n.Strlen()
	}
	return total
}

// splitNodeIndex computes, without mutating anything, the index that
// splitNodeMutate(node, parent, i, leftBiased, ...) would return: node's own
// index in parent plus one, unless i already sits on node's own boundary (0
// or node's full length), in which case no split is needed and the
// preceding or following index is returned directly.
func splitNodeIndex(node, parent *Node, i int, leftBiased bool) int {
	k := childIndex(parent, node) + 1
	length := nodeLen(node)
	if leftBiased {
		if i == 0 {
			return k - 1
		}
		if i == length {
			return k
		}
	} else {
		if i == length {
			return k
		}
		if i == 0 {
			return k - 1
		}
	}
	return k
}

// canSplit previews, without mutating the tree, how far path can be split
// starting from its leaf: it walks backward from path's last element toward
// path[0], simulating splitNodeMutate's index propagation and applying
// greedy absorption the same way deepSplit's real ascent would. It stops at
// the first ancestor whose candidate cut is interior to its own content and
// which is neither anonymous nor in divSet, returning the negated number of
// levels confirmed so far. A return value of -( len(path) - 1 ) means the
// whole path, up to path[0], is splittable.
func (cm *ContentMapping) canSplit(path Path, offset int, leftBiased bool, divSet DivisibilitySet) int {
	l := len(path)
	if l <= 1 {
		return 0
	}
	i := offset
	k := 0
	for ; k < l-1; k++ {
		node := path[l-1-k]
		length := nodeLen(node)
		if i != 0 && i != length && !(node.IsAnonymous() || divSet[node.Name()]) {
			return -k
		}
		parent := path[l-2-k]
		i = splitNodeIndex(node, parent, i, leftBiased)
		if cm.Greedy {
			if leftBiased {
				if i > 0 && strlenOf(parent.Children()[:i]) == 0 {
					i = 0
				}
			} else if lp := len(parent.Children()); i < lp && strlenOf(parent.Children()[i:]) == 0 {
				i = lp
			}
		}
	}
	return -k
}

// CanSplit previews whether path can be split all the way up to (not
// including) the node at stopDepth without mutating the tree.
func (cm *ContentMapping) CanSplit(path Path, leafOffset int, name string, stopDepth int) bool {
	divSet := cm.Divisibility.For(name)
	sub := path[stopDepth:]
	return -cm.canSplit(sub, leafOffset, false, divSet) == len(sub)-1
}

// SplitNode splits node at index i, which is either a character offset (if
// node is a leaf) or a child index (if node is a branch): node keeps the
// portion before i, and a new sibling holding the portion at and after i is
// inserted immediately after node in parent's own children. If chainAttrName
// is non-empty and node is not anonymous, both halves receive
// chainAttrName=chainID.
func SplitNode(node, parent *Node, i int, chainAttrName, chainID string) (*Node, error) {
	idx := childIndex(parent, node)
	if idx < 0 {
		return nil, fmt.Errorf("nodetree: split_node: node is not a child of parent")
	}
	var right *Node
	if node.IsLeaf() {
		content := node.Content()
		if i < 0 || i > len(content) {
			return nil, fmt.Errorf("nodetree: split_node: offset %d out of range (leaf has %d bytes)", i, len(content))
		}
		right = Leaf(node.Name(), content[i:])
		right.attrs = node.attrs.clone()
		node.leaf = content[:i]
	} else {
		children := node.Children()
		if i < 0 || i > len(children) {
			return nil, fmt.Errorf("nodetree: split_node: index %d out of range (have %d children)", i, len(children))
		}
		right = Branch(node.Name(), append([]*Node(nil), children[i:]...)...)
		right.attrs = node.attrs.clone()
		node.children = append([]*Node(nil), children[:i]...)
	}
	if chainAttrName != "" && !node.IsAnonymous() {
		node.MustSetAttr(chainAttrName, chainID)
		right.MustSetAttr(chainAttrName, chainID)
	}
	spliceChildren(parent, idx+1, idx+1, right)
	return right, nil
}

// splitNodeMutate is SplitNode generalized to skip the split entirely when i
// already sits on node's own boundary, returning the plain sibling index in
// that case instead of inserting a degenerate empty sibling. It returns the
// index (within parent's children) of whichever node now starts at i: the
// newly created right half, or node itself/its existing right neighbour when
// no split was necessary.
func splitNodeMutate(node, parent *Node, i int, leftBiased bool, chainAttrName, chainID string) (int, error) {
	k := childIndex(parent, node) + 1
	if k == 0 {
		return 0, fmt.Errorf("nodetree: split_node: node is not a child of parent")
	}
	length := nodeLen(node)
	if leftBiased {
		if i == 0 {
			return k - 1, nil
		}
		if i == length {
			return k, nil
		}
	} else {
		if i == length {
			return k, nil
		}
		if i == 0 {
			return k - 1, nil
		}
	}
	if _, err := SplitNode(node, parent, i, chainAttrName, chainID); err != nil {
		return 0, err
	}
	return k, nil
}

// deepSplit performs the actual ascent from path's leaf up through path[0],
// mutating the tree at every level, and returns the resulting split index
// within path[0]'s own children. If len(path) == 1, path[0] is itself the
// node being split and offset is returned unchanged. Callers must have
// already verified via canSplit that the split is possible; deepSplit does
// not re-check divisibility. Greedy absorption, when enabled, is applied at
// every level except the last (mirroring the reference ascent, which lets
// the final, outermost cut stand exactly where the caller placed it).
func (cm *ContentMapping) deepSplit(path Path, offset int, leftBiased bool, chainAttrName string) (int, error) {
	i := offset
	for idx := len(path) - 1; idx >= 1; idx-- {
		node := path[idx]
		parent := path[idx-1]
		var chainID string
		if chainAttrName != "" {
			chainID = cm.nextChainID()
		}
		next, err := splitNodeMutate(node, parent, i, leftBiased, chainAttrName, chainID)
		if err != nil {
			return 0, err
		}
		i = next
		if cm.Greedy && idx > 1 {
			if leftBiased {
				if i > 0 && strlenOf(parent.Children()[:i]) == 0 {
					i = 0
				}
			} else if lp := len(parent.Children()); i < lp && strlenOf(parent.Children()[i:]) == 0 {
				i = lp
			}
		}
	}
	return i, nil
}

// markupRight wraps the tail of path's deepest splittable node with (name,
// attrs), then climbs path wrapping each further ancestor's own trailing
// children (the portion after the child already processed) in a separate
// node of the same name. It mutates each wrapped ancestor in place rather
// than hoisting it out of its own parent, so an ancestor that remains a
// single logical node throughout the climb is never duplicated into
// siblings. Used when the right endpoint of a markup range can be split all
// the way to the common ancestor but the left endpoint cannot.
func (cm *ContentMapping) markupRight(path Path, offset int, name string, attrs map[string]string, divSet DivisibilitySet) error {
	if len(path) == 0 {
		return fmt.Errorf("nodetree: markup_right: empty path")
	}
	k := cm.canSplit(path, offset, true, divSet) - 1
	if k < -len(path) {
		k = -len(path)
	}
	k += len(path)
	i, err := cm.deepSplit(path[k:], offset, true, cm.ChainAttrName)
	if err != nil {
		return err
	}
	target := path[k]
	if target.IsLeaf() {
		content := target.Content()
		if i < len(content) {
			pre, tail := content[:i], content[i:]
			wrapped := New(name, tail)
			wrapped.WithAttr(attrs)
			if pre != "" {
				target.children = []*Node{Leaf(target.Name(), pre), wrapped}
			} else {
				target.children = []*Node{wrapped}
			}
			target.isLeaf = false
			target.leaf = ""
		}
	} else if children := target.Children(); i < len(children) {
		wrapped := Branch(name, append([]*Node(nil), children[i:]...)...)
		wrapped.WithAttr(attrs)
		target.children = append(append([]*Node(nil), children[:i]...), wrapped)
	}
	for k--; k >= 0; k-- {
		i := childIndex(path[k], path[k+1]) + 1
		if children := path[k].Children(); i < len(children) {
			tail := Branch(name, append([]*Node(nil), children[i:]...)...)
			tail.WithAttr(attrs)
			path[k].children = append(append([]*Node(nil), children[:i]...), tail)
		}
	}
	return nil
}

// markupLeft is markupRight's mirror image: it wraps the prefix of each
// ancestor's children instead of the tail. Used when the left endpoint of a
// markup range can be split all the way to the common ancestor but the right
// endpoint cannot.
func (cm *ContentMapping) markupLeft(path Path, offset int, name string, attrs map[string]string, divSet DivisibilitySet) error {
	if len(path) == 0 {
		return fmt.Errorf("nodetree: markup_left: empty path")
	}
	k := cm.canSplit(path, offset, false, divSet) - 1
	if k < -len(path) {
		k = -len(path)
	}
	k += len(path)
	i, err := cm.deepSplit(path[k:], offset, false, cm.ChainAttrName)
	if err != nil {
		return err
	}
	target := path[k]
	if target.IsLeaf() {
		if i > 0 {
			content := target.Content()
			head, post := content[:i], content[i:]
			wrapped := New(name, head)
			wrapped.WithAttr(attrs)
			if post != "" {
				target.children = []*Node{wrapped, Leaf(target.Name(), post)}
			} else {
				target.children = []*Node{wrapped}
			}
			target.isLeaf = false
			target.leaf = ""
		}
	} else if i > 0 {
		children := target.Children()
		wrapped := Branch(name, append([]*Node(nil), children[:i]...)...)
		wrapped.WithAttr(attrs)
		target.children = append([]*Node{wrapped}, children[i:]...)
	}
	for k--; k >= 0; k-- {
		i := childIndex(path[k], path[k+1])
		if i > 0 {
			children := path[k].Children()
			head := Branch(name, append([]*Node(nil), children[:i]...)...)
			head.WithAttr(attrs)
			path[k].children = append([]*Node{head}, children[i:]...)
		}
	}
	return nil
}

// Markup wraps the content of [startPos, endPos) with a new (name, attrs)
// node, preserving every existing node and cutting only nodes whose name is
// in name's divisibility set (or which are anonymous). Degenerates to
// InsertNode when startPos == endPos.
//
// Below the common ancestor of the two endpoints, four cases arise
// depending on whether each endpoint's ascent reaches the ancestor cleanly
// ("full") or is blocked partway up by a non-divisible node: if both sides
// are full, the ancestor's own children between the two cuts are wrapped
// directly; if only one side is full, the blocked side is wrapped in place
// inside whichever of the ancestor's children it is stuck in (see
// markupRight/markupLeft) while the full side cuts normally; if neither
// side is full, both blocked children are wrapped in place and only the
// ancestor's children strictly between them, if any, get an additional
// outer wrap. A blocked descendant is always mutated where it already sits
// rather than hoisted into a new top-level sibling (see DESIGN.md).
func (cm *ContentMapping) Markup(startPos, endPos int, name string, attrs map[string]string) (*Node, int, error) {
	if startPos == endPos {
		node := Leaf(name, "")
		node.WithAttr(attrs)
		return cm.InsertNode(startPos, node, false)
	}
	if startPos > endPos {
		return nil, 0, fmt.Errorf("%w: markup start %d is after end %d", ErrInvalidPosition, startPos, endPos)
	}

	pathA, offA, err := cm.GetPathAndOffset(startPos, false)
	if err != nil {
		return nil, 0, err
	}
	pathB, offB, err := cm.GetPathAndOffset(endPos, true)
	if err != nil {
		return nil, 0, err
	}

	ancestorDepth := CommonAncestorDepth(pathA, pathB)
	if ancestorDepth < 0 {
		return nil, 0, fmt.Errorf("%w: markup endpoints share no common ancestor", ErrNotFound)
	}
	ancestor := pathA[ancestorDepth]

	if attrs == nil {
		attrs = map[string]string{}
	}
	if cm.ChainAttrName != "" {
		if _, ok := attrs[cm.ChainAttrName]; !ok {
			attrs[cm.ChainAttrName] = cm.nextChainID()
		}
	}

	if ancestor.IsLeaf() {
		leaf := ancestor
		content := leaf.Content()
		pre, middle, post := content[:offA], content[offA:offB], content[offB:]
		parentPath := pathA.Parent()
		parent := parentPath.Node()
		if parent == nil {
			return nil, 0, fmt.Errorf("nodetree: cannot markup the whole root leaf")
		}
		idx := childIndex(parent, leaf)
		wrapped := New(name, middle)
		wrapped.WithAttr(attrs)
		var replacement []*Node
		if pre != "" {
			replacement = append(replacement, Leaf(leaf.Name(), pre))
		}
		replacement = append(replacement, wrapped)
		if post != "" {
			replacement = append(replacement, Leaf(leaf.Name(), post))
		}
		spliceChildren(parent, idx, idx+1, replacement...)
		if cm.AutoCleanup {
			if err := cm.rebuildAll(); err != nil {
				return nil, 0, err
			}
		}
		return parent, idx, nil
	}

	divSet := cm.Divisibility.For(name)
	stumpA := pathA[ancestorDepth:]
	stumpB := pathB[ancestorDepth:]
	q := cm.canSplit(stumpA, offA, false, divSet)
	r := cm.canSplit(stumpB, offB, true, divSet)
	fullA := -q == len(stumpA)-1
	fullB := -r == len(stumpB)-1

	resultIdx := 0
	switch {
	case fullA && fullB:
		leftCut, err := cm.deepSplit(stumpA, offA, false, cm.ChainAttrName)
		if err != nil {
			return nil, 0, err
		}
		rightCut, err := cm.deepSplit(stumpB, offB, true, cm.ChainAttrName)
		if err != nil {
			return nil, 0, err
		}
		if rightCut < leftCut {
			rightCut = leftCut
		}
		wrapped := Branch(name, append([]*Node(nil), ancestor.Children()[leftCut:rightCut]...)...)
		wrapped.WithAttr(attrs)
		spliceChildren(ancestor, leftCut, rightCut, wrapped)
		resultIdx = leftCut

	case fullA:
		// Left endpoint reaches the common ancestor cleanly; the right
		// endpoint is blocked inside one of the ancestor's children, which
		// is wrapped in place (never hoisted into a sibling) by mutating
		// its own leading content up to this markup's own right boundary.
		t := childIndex(ancestor, stumpB[1])
		leftCut, err := cm.deepSplit(stumpA, offA, false, cm.ChainAttrName)
		if err != nil {
			return nil, 0, err
		}
		wrapped := Branch(name, append([]*Node(nil), ancestor.Children()[leftCut:t]...)...)
		wrapped.WithAttr(attrs)
		if err := cm.markupLeft(stumpB[1:], offB, name, attrs, divSet); err != nil {
			return nil, 0, err
		}
		spliceChildren(ancestor, leftCut, t, wrapped)
		resultIdx = leftCut

	case fullB:
		// Mirror image: the right endpoint reaches the common ancestor
		// cleanly, the left endpoint is blocked and wrapped in place.
		t := childIndex(ancestor, stumpA[1])
		rightCut, err := cm.deepSplit(stumpB, offB, true, cm.ChainAttrName)
		if err != nil {
			return nil, 0, err
		}
		wrapped := Branch(name, append([]*Node(nil), ancestor.Children()[t+1:rightCut]...)...)
		wrapped.WithAttr(attrs)
		if err := cm.markupRight(stumpA[1:], offA, name, attrs, divSet); err != nil {
			return nil, 0, err
		}
		spliceChildren(ancestor, t+1, rightCut, wrapped)
		resultIdx = t + 1

	default:
		// Neither endpoint reaches the common ancestor: both blocking
		// children are wrapped in place, and only the ancestor's own
		// children strictly between them (if any) get the outer wrap.
		t := childIndex(ancestor, stumpA[1])
		u := childIndex(ancestor, stumpB[1])
		if err := cm.markupRight(stumpA[1:], offA, name, attrs, divSet); err != nil {
			return nil, 0, err
		}
		if err := cm.markupLeft(stumpB[1:], offB, name, attrs, divSet); err != nil {
			return nil, 0, err
		}
		resultIdx = t + 1
		if u-t > 1 {
			wrapped := Branch(name, append([]*Node(nil), ancestor.Children()[t+1:u]...)...)
			wrapped.WithAttr(attrs)
			spliceChildren(ancestor, t+1, u, wrapped)
		}
	}

	if cm.AutoCleanup {
		if err := cm.rebuildAll(); err != nil {
			return nil, 0, err
		}
	}
	return ancestor, resultIdx, nil
}

// RebuildMappingSlice regenerates the mapping. The spec describes
// rebuilding only the segment spanning [firstIndex, lastIndex]; this
// implementation conservatively rebuilds the whole mapping instead, which
// is always correct (if more work than strictly necessary) since Markup
// and InsertNode never touch content outside the subtree they are handed.
func (cm *ContentMapping) RebuildMappingSlice(firstIndex, lastIndex int) error {
	return cm.rebuildAll()
}
