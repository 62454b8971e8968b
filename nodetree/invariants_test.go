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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateInvariantsCleanTree(t *testing.T) {
	a := Leaf("a", "hi")
	must(a.WithPos(0))
	doc := Branch("doc", a)
	must(doc.WithPos(0))
	rn := NewRootNode(doc, "doc.txt", "hi")
	require.NoError(t, ValidateInvariants(doc, rn))
}

func TestValidateInvariantsCatchesDuplicateNode(t *testing.T) {
	shared := Leaf("x", "1")
	doc := Branch("doc", shared, shared)
	require.Error(t, ValidateInvariants(doc, nil))
}

func TestValidateInvariantsCatchesFrozenNode(t *testing.T) {
	frozen := NewFrozenNode("z", "const")
	doc := Branch("doc", frozen.Node())
	require.Error(t, ValidateInvariants(doc, nil))
}

func TestValidateInvariantsCatchesMixedPositions(t *testing.T) {
	a := Leaf("a", "hi")
	must(a.WithPos(0))
	b := Leaf("b", "there")
	doc := Branch("doc", a, b)
	require.Error(t, ValidateInvariants(doc, nil))
}

func TestValidateInvariantsCatchesOutOfOrderPositions(t *testing.T) {
	a := Leaf("a", "hi")
	must(a.WithPos(5))
	b := Leaf("b", "there")
	must(b.WithPos(0))
	doc := Branch("doc", a, b)
	require.Error(t, ValidateInvariants(doc, nil))
}

func TestValidateInvariantsCatchesInvalidAttrName(t *testing.T) {
	a := Leaf("a", "hi")
	a.attrs = newAttrMap()
	a.attrs.set("not valid!", "x")
	doc := Branch("doc", a)
	require.Error(t, ValidateInvariants(doc, nil))
}

func TestValidateInvariantsCatchesErrorPositionOutOfRange(t *testing.T) {
	a := Leaf("a", "hi")
	must(a.WithPos(0))
	doc := Branch("doc", a)
	must(doc.WithPos(0))
	rn := NewRootNode(doc, "doc.txt", "hi")
	rn.AddError(a, "out of range", CodeSemanticConstraint, 9999)
	require.Error(t, ValidateInvariants(doc, rn))
}
