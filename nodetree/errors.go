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

import "errors"

// Sentinel errors for programming-contract violations (§7: "these are bugs,
// not user-facing diagnostics"). Callers that prefer a hard failure over a
// returned error can use the MustXxx wrappers, which panic.
var (
	// ErrAlreadySet is returned when a write-once field (position, a frozen
	// node's attribute, a RootNode's swallowed payload) is reassigned to a
	// different value than it already holds.
	ErrAlreadySet = errors.New("nodetree: already set")
	// ErrInvalidPosition is returned by WithPos when a negative position is
	// supplied for a node whose position is still unassigned.
	ErrInvalidPosition = errors.New("nodetree: invalid position")
	// ErrNotFound is returned by selectors that the spec documents as
	// "fails with not present/not found" (ChildByName, IndexOf) rather than
	// returning a zero value, so that callers can distinguish absence from
	// a legitimate zero-valued result.
	ErrNotFound = errors.New("nodetree: not found")
	// ErrAmbiguous is returned when a selector that must resolve to exactly
	// one node instead matches more than one.
	ErrAmbiguous = errors.New("nodetree: ambiguous selector")
	// ErrFrozen is returned by an attempt to change a FrozenNode's position
	// or result.
	ErrFrozen = errors.New("nodetree: node is frozen")
	// ErrNotDivisible is returned by the content-mapping markup algorithm
	// when a cut would have to split a node whose name is not in the
	// applicable divisibility set.
	ErrNotDivisible = errors.New("nodetree: node is not divisible at this point")
	// ErrMixedContent is returned by New and SetResult when the result is
	// neither a string nor a []*Node.
	ErrMixedContent = errors.New("nodetree: a node is either a leaf or a branch, not both")
	// ErrArityMismatch is returned when a selector-based setter is assigned
	// a replacement sequence whose length does not match the number of
	// nodes it is replacing.
	ErrArityMismatch = errors.New("nodetree: replacement arity does not match selection")
	// ErrZombie is returned by Evaluate when it encounters a zombie
	// error-recovery placeholder node.
	ErrZombie = errors.New("nodetree: cannot evaluate a zombie node")
	// ErrCircularInclude is returned by GenerateIncludeMap when an include
	// chain refers back to a file already being expanded.
	ErrCircularInclude = errors.New("nodetree: circular inclusion")
	// ErrSelectNotLeaf is returned when a ContentMapping's select predicate
	// matches a non-leaf path.
	ErrSelectNotLeaf = errors.New("nodetree: select predicate matched a non-leaf path")
)

// AssertionError marks a panic value raised by a MustXxx wrapper so that
// recover() call sites can distinguish contract violations from other
// panics.
type AssertionError struct {
	Err error
}

func (e *AssertionError) Error() string { return e.Err.Error() }
func (e *AssertionError) Unwrap() error  { return e.Err }

func must(err error) {
	if err != nil {
		panic(&AssertionError{Err: err})
	}
}
