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
	"regexp"
)

// Predicate is a capability set {node -> bool} used throughout the package
// to select nodes: as a matcher for child/descendant selection, as a
// skip-subtree guard during traversal, or as a divisibility test.
type Predicate func(n *Node) bool

// MatchFunc compiles criteria into a Predicate. criteria may be:
//   - *Node: identity match (same underlying node)
//   - string: exact name match
//   - []string: name is a member of the set
//   - *regexp.Regexp: matches against n.Content()
//   - Predicate / func(*Node) bool: used directly
//   - int: a handle previously obtained from Handle(n); see node_handle.go
//
// This is the Go analog of create_match_function (§4.6); the original's
// "an integer means compare against id(node)" case is replaced by the
// explicit handle registry, per the §9 design note.
func MatchFunc(criteria interface{}) (Predicate, error) {
	switch c := criteria.(type) {
	case nil:
		return func(*Node) bool { return true }, nil
	case *Node:
		return func(n *Node) bool { return n == c }, nil
	case string:
		return func(n *Node) bool { return n.name == c }, nil
	case []string:
		set := make(map[string]bool, len(c))
		for _, s := range c {
			set[s] = true
		}
		return func(n *Node) bool { return set[n.name] }, nil
	case *regexp.Regexp:
		return func(n *Node) bool { return c.MatchString(n.Content()) }, nil
	case Predicate:
		return c, nil
	case func(*Node) bool:
		return Predicate(c), nil
	case int:
		return func(n *Node) bool { return HandleOf(n) == c }, nil
	default:
		return nil, fmt.Errorf("nodetree: unsupported match criteria of type %T", criteria)
	}
}

// mustMatchFunc panics if criteria cannot be compiled; used internally by
// call sites that already validated the selector shape.
func mustMatchFunc(criteria interface{}) Predicate {
	p, err := MatchFunc(criteria)
	must(err)
	return p
}

// ChildAt returns the i-th child (0-based). Negative indices count from the
// end, Python-slice style.
func (n *Node) ChildAt(i int) (*Node, error) {
	if i < 0 {
		i += len(n.children)
	}
	if i < 0 || i >= len(n.children) {
		return nil, fmt.Errorf("%w: child index %d out of range (have %d children)", ErrNotFound, i, len(n.children))
	}
	return n.children[i], nil
}

// ChildSlice returns children[start:stop), normalizing negative indices.
func (n *Node) ChildSlice(start, stop int) ([]*Node, error) {
	ln := len(n.children)
	if start < 0 {
		start += ln
	}
	if stop < 0 {
		stop += ln
	}
	if start < 0 || stop > ln || start > stop {
		return nil, fmt.Errorf("%w: slice [%d:%d) out of range (have %d children)", ErrNotFound, start, stop, ln)
	}
	return n.children[start:stop], nil
}

// ChildByName returns the unique child named name. It fails with
// ErrNotFound if there is none, and ErrAmbiguous if there is more than one
// (callers that want all matches should use ChildrenByName).
func (n *Node) ChildByName(name string) (*Node, error) {
	matches := n.ChildrenByName(name)
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: no child named %q", ErrNotFound, name)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %d children named %q", ErrAmbiguous, len(matches), name)
	}
}

// ChildrenByName returns all children named name, in document order.
func (n *Node) ChildrenByName(name string) []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.name == name {
			out = append(out, c)
		}
	}
	return out
}

// ChildrenIf returns all children matching pred, in document order.
func (n *Node) ChildrenIf(pred Predicate) []*Node {
	var out []*Node
	for _, c := range n.children {
		if pred(c) {
			out = append(out, c)
		}
	}
	return out
}

// SetChildAt replaces the i-th child in place.
func (n *Node) SetChildAt(i int, replacement *Node) error {
	if i < 0 {
		i += len(n.children)
	}
	if i < 0 || i >= len(n.children) {
		return fmt.Errorf("%w: child index %d out of range", ErrNotFound, i)
	}
	n.children[i] = replacement
	return nil
}

// SetChildrenByName replaces every child named name with the corresponding
// element of replacements, which must have the same length as the current
// number of matches.
func (n *Node) SetChildrenByName(name string, replacements ...*Node) error {
	idx := n.indicesByName(name)
	if len(idx) != len(replacements) {
		return fmt.Errorf("%w: %d children named %q, %d replacements given", ErrArityMismatch, len(idx), name, len(replacements))
	}
	for k, i := range idx {
		n.children[i] = replacements[k]
	}
	return nil
}

func (n *Node) indicesByName(name string) []int {
	var idx []int
	for i, c := range n.children {
		if c.name == name {
			idx = append(idx, i)
		}
	}
	return idx
}

// RemoveAt deletes the i-th child.
func (n *Node) RemoveAt(i int) error {
	if i < 0 {
		i += len(n.children)
	}
	if i < 0 || i >= len(n.children) {
		return fmt.Errorf("%w: child index %d out of range", ErrNotFound, i)
	}
	n.children = append(n.children[:i], n.children[i+1:]...)
	return nil
}

// RemoveSlice deletes children[start:stop).
func (n *Node) RemoveSlice(start, stop int) error {
	ln := len(n.children)
	if start < 0 {
		start += ln
	}
	if stop < 0 {
		stop += ln
	}
	if start < 0 || stop > ln || start > stop {
		return fmt.Errorf("%w: slice [%d:%d) out of range", ErrNotFound, start, stop)
	}
	n.children = append(n.children[:start], n.children[stop:]...)
	return nil
}

// RemoveByName deletes every child named name and reports how many were
// removed.
func (n *Node) RemoveByName(name string) int {
	return n.RemoveIf(func(c *Node) bool { return c.name == name })
}

// RemoveIf deletes every child matching pred and reports how many were
// removed.
func (n *Node) RemoveIf(pred Predicate) int {
	kept := n.children[:0]
	removed := 0
	for _, c := range n.children {
		if pred(c) {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	n.children = kept
	return removed
}

// IndexOf returns the index of the first child in [start, stop) matching
// criteria (see MatchFunc), or ErrNotFound. Unlike most selectors, IndexOf
// raises rather than returning a sentinel, so that index 0 cannot be
// confused with "not present" (§7).
func (n *Node) IndexOf(criteria interface{}, start, stop int) (int, error) {
	pred, err := MatchFunc(criteria)
	if err != nil {
		return -1, err
	}
	if stop < 0 || stop > len(n.children) {
		stop = len(n.children)
	}
	for i := start; i < stop; i++ {
		if pred(n.children[i]) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: no child in [%d,%d) matches", ErrNotFound, start, stop)
}

// Locate returns the leaf descendant covering the given offset within
// Content(), or nil if offset is out of range.
func (n *Node) Locate(offset int) *Node {
	if offset < 0 || offset > n.Strlen() {
		return nil
	}
	if n.isLeaf {
		if offset <= len(n.leaf) {
			return n
		}
		return nil
	}
	pos := 0
	for _, c := range n.children {
		l := c.Strlen()
		if offset < pos+l || (offset == pos+l && offset == n.Strlen()) {
			return c.Locate(offset - pos)
		}
		pos += l
	}
	if offset == n.Strlen() {
		// Degenerate: offset sits exactly at the end of an empty-children
		// tail; fall back to the last non-empty leaf if any.
		for i := len(n.children) - 1; i >= 0; i-- {
			if got := n.children[i].Locate(n.children[i].Strlen()); got != nil {
				return got
			}
		}
	}
	return nil
}
