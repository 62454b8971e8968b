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

// FrozenNode is an immutable leaf placeholder (§3). It is used where code
// needs to hand back "a node" without committing to real tree membership —
// e.g. a sentinel returned by a failed lookup that the caller may still
// want to call node methods on. A FrozenNode must never be linked into a
// finalized tree; ValidateInvariants rejects any tree containing one.
type FrozenNode struct {
	node *Node
}

// NewFrozenNode creates a frozen placeholder named name with the given
// content. Its position is always Unassigned and cannot be changed.
func NewFrozenNode(name, content string) *FrozenNode {
	return &FrozenNode{node: &Node{name: name, isLeaf: true, leaf: content, pos: Unassigned, frozen: true}}
}

// Node exposes the underlying Node so read-only operations (Content,
// Strlen, Name, Equals...) can be used uniformly. WithPos and SetResult
// through it fail with ErrFrozen; SetAttr sets each attribute at most once
// and fails with ErrAlreadySet on a second write of a different value.
func (f *FrozenNode) Node() *Node { return f.node }

// Name returns the placeholder's name.
func (f *FrozenNode) Name() string { return f.node.name }

// Content returns the placeholder's fixed content.
func (f *FrozenNode) Content() string { return f.node.leaf }
