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

	"go.uber.org/multierr"
)

// ValidateInvariants checks the six tree-shape invariants §3 requires to
// hold "at all observation points outside in-flight mutations". It is meant
// to be called at stage boundaries (after a deserializer or a batch of
// transformation rules runs), not during a mutation in progress. All
// violations found are combined into a single error via multierr; a nil
// return means the tree and its RootNode are consistent.
func ValidateInvariants(root *Node, rn *RootNode) error {
	var err error
	seen := map[*Node]bool{}
	err = multierr.Append(err, checkNoDuplicateOrFrozen(root, seen))
	err = multierr.Append(err, checkPositionMonotonicity(root))
	err = multierr.Append(err, checkAttrNames(root))
	err = multierr.Append(err, checkStrlenConsistency(root))
	if rn != nil {
		err = multierr.Append(err, checkErrorPositions(rn, root))
	}
	return err
}

func checkNoDuplicateOrFrozen(n *Node, seen map[*Node]bool) error {
	if seen[n] {
		return fmt.Errorf("nodetree: node %q appears more than once in the tree", n.Name())
	}
	seen[n] = true
	var err error
	if n.IsFrozen() {
		err = multierr.Append(err, fmt.Errorf("nodetree: frozen node %q present in a finalized tree", n.Name()))
	}
	if !n.IsLeaf() {
		for _, c := range n.Children() {
			err = multierr.Append(err, checkNoDuplicateOrFrozen(c, seen))
		}
	}
	return err
}

func checkPositionMonotonicity(n *Node) error {
	var err error
	if !n.IsLeaf() {
		prevAssigned := false
		prevEnd := -1
		anyAssigned, anyUnassigned := false, false
		for _, c := range n.Children() {
			if c.HasPos() {
				anyAssigned = true
				if prevAssigned && c.Pos() < prevEnd {
					err = multierr.Append(err, fmt.Errorf(
						"nodetree: node %q has a child at position %d preceded by a sibling ending at %d",
						n.Name(), c.Pos(), prevEnd))
				}
				prevAssigned = true
				prevEnd = c.Pos() + c.Strlen()
			} else {
				anyUnassigned = true
			}
			err = multierr.Append(err, checkPositionMonotonicity(c))
		}
		if anyAssigned && anyUnassigned {
			err = multierr.Append(err, fmt.Errorf(
				"nodetree: node %q mixes positioned and unpositioned children", n.Name()))
		}
	}
	return err
}

func checkAttrNames(n *Node) error {
	var err error
	for _, k := range n.AttrNames() {
		if !isValidAttrName(k) {
			err = multierr.Append(err, fmt.Errorf("nodetree: node %q has an invalid attribute name %q", n.Name(), k))
		}
	}
	if !n.IsLeaf() {
		for _, c := range n.Children() {
			err = multierr.Append(err, checkAttrNames(c))
		}
	}
	return err
}

func checkStrlenConsistency(n *Node) error {
	if n.IsLeaf() {
		if n.Strlen() != len(n.Content()) {
			return fmt.Errorf("nodetree: leaf %q Strlen()=%d does not match Content() length %d", n.Name(), n.Strlen(), len(n.Content()))
		}
		return nil
	}
	sum := 0
	var err error
	for _, c := range n.Children() {
		sum += c.Strlen()
		err = multierr.Append(err, checkStrlenConsistency(c))
	}
	if n.Strlen() != sum {
		err = multierr.Append(err, fmt.Errorf("nodetree: branch %q Strlen()=%d does not match sum of children %d", n.Name(), n.Strlen(), sum))
	}
	return err
}

func checkErrorPositions(rn *RootNode, root *Node) error {
	limit := root.Strlen()
	var err error
	for _, e := range rn.Errors() {
		if e.Pos < 0 || e.Pos > limit {
			err = multierr.Append(err, fmt.Errorf("nodetree: error %q at position %d is outside [0,%d]", e.Message, e.Pos, limit))
		}
	}
	return err
}
