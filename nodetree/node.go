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
	"strings"
)

// Unassigned is the sentinel position value meaning "no position has been
// assigned to this node yet".
const Unassigned = -1

// ZombieTag is the distinguished name that marks an error-recovery
// placeholder node. A zombie node must never appear in a finalized tree's
// evaluation (§3, §4.1 evaluate()).
const ZombieTag = "ZOMBIE__"

// Node is the sole branching type of the tree. It holds either a leaf
// string or an ordered sequence of children, never both (§3).
type Node struct {
	name     string
	isLeaf   bool
	leaf     string
	children []*Node
	attrs    *attrMap
	pos      int
	frozen   bool
}

// New creates a node named name with result either a string (leaf) or a
// []*Node (branch, possibly empty).
func New(name string, result interface{}) *Node {
	n, err := NewChecked(name, result)
	must(err)
	return n
}

// NewChecked is the non-panicking form of New.
func NewChecked(name string, result interface{}) (*Node, error) {
	n := &Node{name: name, pos: Unassigned}
	switch v := result.(type) {
	case string:
		n.isLeaf = true
		n.leaf = v
	case []*Node:
		n.isLeaf = false
		n.children = v
	case nil:
		n.isLeaf = false
		n.children = nil
	default:
		return nil, fmt.Errorf("%w: result must be string or []*Node, got %T", ErrMixedContent, result)
	}
	return n, nil
}

// Leaf creates a new leaf node with the given string content.
func Leaf(name, content string) *Node {
	return &Node{name: name, isLeaf: true, leaf: content, pos: Unassigned}
}

// Branch creates a new branch node with the given children.
func Branch(name string, children ...*Node) *Node {
	return &Node{name: name, children: children, pos: Unassigned}
}

// Name returns the node's name. Names beginning with ':' are "anonymous",
// i.e. generated by a parser combinator rather than named by the grammar
// author.
func (n *Node) Name() string { return n.name }

// SetName renames the node in place.
func (n *Node) SetName(name string) { n.name = name }

// IsAnonymous reports whether the node's name marks it as anonymous.
func (n *Node) IsAnonymous() bool {
	return n.name == "" || n.name[0] == ':'
}

// IsZombie reports whether the node is an error-recovery placeholder.
func (n *Node) IsZombie() bool { return n.name == ZombieTag }

// IsLeaf reports whether the node holds a string rather than children.
func (n *Node) IsLeaf() bool { return n.isLeaf }

// IsFrozen reports whether the node originated from a FrozenNode and must
// not appear in a finalized tree.
func (n *Node) IsFrozen() bool { return n.frozen }

// Result returns the node's leaf string if it is a leaf, or its children
// otherwise, as the two are mutually exclusive by construction.
func (n *Node) Result() interface{} {
	if n.isLeaf {
		return n.leaf
	}
	return n.children
}

// Content concatenates all leaf strings in depth-first order. It is pure:
// it never mutates the tree.
func (n *Node) Content() string {
	if n.isLeaf {
		return n.leaf
	}
	if len(n.children) == 0 {
		return ""
	}
	var b strings.Builder
	n.writeContent(&b)
	return b.String()
}

func (n *Node) writeContent(b *strings.Builder) {
	if n.isLeaf {
		b.WriteString(n.leaf)
		return
	}
	for _, c := range n.children {
		c.writeContent(b)
	}
}

// Strlen returns the total length of Content() without materializing it.
func (n *Node) Strlen() int {
	if n.isLeaf {
		return len(n.leaf)
	}
	total := 0
	for _, c := range n.children {
		total += c.Strlen()
	}
	return total
}

// Children returns the child tuple, or nil for a leaf.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns len(Children()).
func (n *Node) NumChildren() int { return len(n.children) }

// SetResult replaces the node's leaf string or children wholesale.
func (n *Node) SetResult(result interface{}) error {
	if n.frozen {
		return ErrFrozen
	}
	switch v := result.(type) {
	case string:
		n.isLeaf = true
		n.leaf = v
		n.children = nil
	case []*Node:
		n.isLeaf = false
		n.children = v
		n.leaf = ""
	default:
		return fmt.Errorf("%w: result must be string or []*Node, got %T", ErrMixedContent, result)
	}
	return nil
}

// Pos returns the node's assigned position, or Unassigned.
func (n *Node) Pos() int { return n.pos }

// HasPos reports whether a position has been assigned.
func (n *Node) HasPos() bool { return n.pos != Unassigned }

// WithPos assigns pos to the node and propagates it to descendants whose
// positions are still unassigned, using leaf string-lengths to compute
// child offsets. WithPos is write-once: calling it again with the same pos
// is a no-op; calling it with a different pos once a position is already
// assigned fails.
func (n *Node) WithPos(pos int) error {
	if n.frozen {
		return fmt.Errorf("%w: cannot assign a position to a frozen node", ErrFrozen)
	}
	if n.pos != Unassigned {
		if pos != n.pos {
			return fmt.Errorf("%w: position already %d, cannot reassign to %d", ErrAlreadySet, n.pos, pos)
		}
		return nil
	}
	if pos < 0 {
		return fmt.Errorf("%w: cannot assign negative position %d to an unassigned node", ErrInvalidPosition, pos)
	}
	n.pos = pos
	if !n.isLeaf {
		offset := pos
		for _, c := range n.children {
			if !c.HasPos() {
				if err := c.WithPos(offset); err != nil {
					return err
				}
			}
			offset += c.Strlen()
		}
	}
	return nil
}

// MustWithPos panics instead of returning an error; for call sites that
// treat a WithPos failure as a programming-contract violation.
func (n *Node) MustWithPos(pos int) {
	must(n.WithPos(pos))
}

// Equals reports structural equality: same name, same attributes (order
// matters unless ignoreAttrOrder is true), and the same children (recursively)
// or the same leaf string.
func (n *Node) Equals(other *Node, ignoreAttrOrder bool) bool {
	if n == other {
		return true
	}
	if n == nil || other == nil {
		return false
	}
	if n.name != other.name || n.isLeaf != other.isLeaf {
		return false
	}
	if !n.attrs.equals(other.attrs, ignoreAttrOrder) {
		return false
	}
	if n.isLeaf {
		return n.leaf == other.leaf
	}
	if len(n.children) != len(other.children) {
		return false
	}
	for i, c := range n.children {
		if !c.Equals(other.children[i], ignoreAttrOrder) {
			return false
		}
	}
	return true
}

// --- Attributes ---

// HasAttr probes for an attribute without materializing the attribute map.
func (n *Node) HasAttr(name string) bool { return n.attrs.has(name) }

// GetAttr returns the value of name, or def if not present.
func (n *Node) GetAttr(name, def string) string {
	if v, ok := n.attrs.get(name); ok {
		return v
	}
	return def
}

// Attr returns the value of name and whether it was present.
func (n *Node) Attr(name string) (string, bool) {
	return n.attrs.get(name)
}

// SetAttr sets a single attribute, creating the attribute map on first
// write. value is converted to its string form with fmt.Sprint if it is
// not already a string. On a frozen node each attribute can be set once;
// writing a different value to an attribute it already holds fails with
// ErrAlreadySet.
func (n *Node) SetAttr(name string, value interface{}) error {
	if !isValidAttrName(name) {
		return fmt.Errorf("nodetree: %q is not a valid attribute name", name)
	}
	s, ok := value.(string)
	if !ok {
		s = fmt.Sprint(value)
	}
	if n.frozen {
		if old, set := n.attrs.get(name); set && old != s {
			return fmt.Errorf("%w: attribute %q of a frozen node", ErrAlreadySet, name)
		}
	}
	if n.attrs == nil {
		n.attrs = newAttrMap()
	}
	n.attrs.set(name, s)
	return nil
}

// MustSetAttr panics on error; convenience for call sites building trees
// with attribute names known to be valid.
func (n *Node) MustSetAttr(name string, value interface{}) *Node {
	must(n.SetAttr(name, value))
	return n
}

// WithAttr merges attrs into the node's attribute map and returns the node,
// for chaining during tree construction.
func (n *Node) WithAttr(attrs map[string]string) *Node {
	if len(attrs) == 0 {
		return n
	}
	if n.attrs == nil {
		n.attrs = newAttrMap()
	}
	// Deterministic order for reproducible serialization in tests.
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sortStrings(keys)
	for _, k := range keys {
		n.attrs.set(k, attrs[k])
	}
	return n
}

// DeleteAttr removes an attribute, if present.
func (n *Node) DeleteAttr(name string) {
	n.attrs.delete(name)
}

// AttrNames returns the attribute names in insertion order.
func (n *Node) AttrNames() []string { return n.attrs.orderedKeys() }

// AttrLen returns the number of attributes without materializing the map.
func (n *Node) AttrLen() int { return n.attrs.len() }

func sortStrings(s []string) {
	// small helper kept local to avoid importing sort in hot paths elsewhere
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// Clone makes a shallow copy of the node: same attributes and child slice
// (children themselves are shared, not copied), but a fresh, unassigned
// position. Used by DeepClone and by MilestoneSegment, which must never
// mutate a node still reachable from elsewhere in the tree.
func (n *Node) Clone() *Node {
	c := &Node{
		name:   n.name,
		isLeaf: n.isLeaf,
		leaf:   n.leaf,
		attrs:  n.attrs.clone(),
		pos:    Unassigned,
	}
	if !n.isLeaf {
		c.children = append([]*Node(nil), n.children...)
	}
	return c
}

// DeepClone recursively copies the whole subtree rooted at n (invariant 1:
// no node may appear twice in a tree, so callers that want to reuse a
// subtree elsewhere must clone it first).
func (n *Node) DeepClone() *Node {
	c := n.Clone()
	for i, ch := range c.children {
		c.children[i] = ch.DeepClone()
	}
	return c
}
