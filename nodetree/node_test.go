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

func TestNodeContentAndStrlen(t *testing.T) {
	tests := []struct {
		node *Node
		want string
	}{
		{Leaf("word", "abc"), "abc"},
		{Branch("phrase", Leaf("word", "ab"), Leaf("word", "cd")), "abcd"},
		{Branch("empty"), ""},
	}
	for _, tt := range tests {
		if got := tt.node.Content(); got != tt.want {
			t.Errorf("Content() = %q, want %q", got, tt.want)
		}
		if got := tt.node.Strlen(); got != len(tt.want) {
			t.Errorf("Strlen() = %d, want %d", got, len(tt.want))
		}
	}
}

func TestNewCheckedRejectsMixedContent(t *testing.T) {
	if _, err := NewChecked("n", 42); err == nil {
		t.Errorf("NewChecked with int result: want error, got nil")
	}
}

func TestWithPosWriteOnce(t *testing.T) {
	n := Leaf("word", "abc")
	if err := n.WithPos(5); err != nil {
		t.Fatalf("WithPos(5): %v", err)
	}
	if err := n.WithPos(5); err != nil {
		t.Errorf("re-assigning the same position: %v", err)
	}
	if err := n.WithPos(6); err == nil {
		t.Errorf("reassigning to a different position: want error, got nil")
	}
}

func TestWithPosPropagatesToChildren(t *testing.T) {
	root := Branch("phrase", Leaf("word", "ab"), Leaf("word", "cd"))
	if err := root.WithPos(10); err != nil {
		t.Fatalf("WithPos: %v", err)
	}
	want := []int{10, 12}
	for i, c := range root.Children() {
		if c.Pos() != want[i] {
			t.Errorf("child %d Pos() = %d, want %d", i, c.Pos(), want[i])
		}
	}
}

func TestWithPosSkipsAlreadyAssignedChildren(t *testing.T) {
	second := Leaf("word", "cd")
	must(second.WithPos(100))
	root := Branch("phrase", Leaf("word", "ab"), second)
	if err := root.WithPos(10); err != nil {
		t.Fatalf("WithPos: %v", err)
	}
	if second.Pos() != 100 {
		t.Errorf("pre-assigned child position overwritten: got %d, want 100", second.Pos())
	}
}

func TestFrozenNodeRejectsMutation(t *testing.T) {
	f := NewFrozenNode("placeholder", "x")
	n := f.Node()
	if err := n.SetAttr("a", "1"); err != nil {
		t.Errorf("first SetAttr on frozen node: want nil, got %v", err)
	}
	if err := n.SetAttr("a", "2"); err == nil {
		t.Errorf("second SetAttr on frozen node: want error, got nil")
	}
	if err := n.WithPos(0); err == nil {
		t.Errorf("WithPos on frozen node: want error, got nil")
	}
	if err := n.SetResult("y"); err == nil {
		t.Errorf("SetResult on frozen node: want error, got nil")
	}
}

func TestEquals(t *testing.T) {
	a := Branch("phrase", Leaf("word", "ab"))
	a.MustSetAttr("id", "1")
	b := Branch("phrase", Leaf("word", "ab"))
	b.MustSetAttr("id", "1")
	if !a.Equals(b, false) {
		t.Errorf("structurally identical trees: Equals() = false, want true")
	}
	b.MustSetAttr("id", "2")
	if a.Equals(b, false) {
		t.Errorf("trees differing in an attribute: Equals() = true, want false")
	}
}

func TestCloneResetsPosition(t *testing.T) {
	n := Leaf("word", "ab")
	must(n.WithPos(3))
	c := n.Clone()
	if c.HasPos() {
		t.Errorf("Clone().HasPos() = true, want false")
	}
	if c.Content() != n.Content() {
		t.Errorf("Clone().Content() = %q, want %q", c.Content(), n.Content())
	}
}

func TestDeepCloneDoesNotShareChildren(t *testing.T) {
	orig := Branch("phrase", Leaf("word", "ab"))
	clone := orig.DeepClone()
	if clone.Children()[0] == orig.Children()[0] {
		t.Errorf("DeepClone shares a child pointer with the original")
	}
	if !clone.Equals(orig, false) {
		t.Errorf("DeepClone is not structurally equal to the original")
	}
}

func TestIsAnonymous(t *testing.T) {
	if !Leaf(":anon", "x").IsAnonymous() {
		t.Errorf(":anon: IsAnonymous() = false, want true")
	}
	if Leaf("named", "x").IsAnonymous() {
		t.Errorf("named: IsAnonymous() = true, want false")
	}
}
