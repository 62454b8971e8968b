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

import "testing"

func TestSqueezeAnonymousMergesLeafOnlyTreetop(t *testing.T) {
	wrap := Branch(":wrap", Leaf(":a", "foo"), Leaf(":b", "bar"))
	squeezed := SqueezeAnonymous(wrap)
	if !squeezed.IsLeaf() {
		t.Fatalf("squeezed node is a branch, want a leaf")
	}
	if squeezed.Content() != "foobar" {
		t.Errorf("squeezed content = %q, want \"foobar\"", squeezed.Content())
	}
	if squeezed.Name() != ":wrap" {
		t.Errorf("squeezed name = %q, want \":wrap\"", squeezed.Name())
	}
}

func TestSqueezeAnonymousRecursesBottomUp(t *testing.T) {
	inner := Branch(":inner", Leaf(":a", "x"), Leaf(":b", "y"))
	outer := Branch(":outer", inner)
	squeezed := SqueezeAnonymous(outer)
	if !squeezed.IsLeaf() || squeezed.Content() != "xy" {
		t.Errorf("squeezed = (leaf=%v, %q), want (true, \"xy\")", squeezed.IsLeaf(), squeezed.Content())
	}
}

func TestSqueezeAnonymousSkipsNamedChild(t *testing.T) {
	doc := Branch(":wrap", Leaf(":a", "foo"), Leaf("named", "bar"))
	squeezed := SqueezeAnonymous(doc)
	if squeezed.IsLeaf() {
		t.Errorf("squeezed node should remain a branch when a child is named")
	}
}

func TestSqueezeAnonymousSkipsPositionedChild(t *testing.T) {
	a := Leaf(":a", "foo")
	must(a.WithPos(0))
	b := Leaf(":b", "bar")
	must(b.WithPos(3))
	wrap := Branch(":wrap", a, b)
	squeezed := SqueezeAnonymous(wrap)
	if squeezed.IsLeaf() {
		t.Errorf("squeezed node should remain a branch once children have assigned positions")
	}
}
