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

func TestTraverseChildrenBeforeParent(t *testing.T) {
	var order []string
	table := NewTransformationTable()
	record := func(name string) Rule {
		return func(rn *RootNode, path Path) error {
			order = append(order, name)
			return nil
		}
	}
	table.Set("a", record("a")).Set("b", record("b")).Set("doc", record("doc"))
	doc := Branch("doc", Leaf("a", "1"), Leaf("b", "2"))
	rn, _ := newTestRoot("12")
	if err := Traverse(rn, doc, table); err != nil {
		t.Fatalf("Traverse: %v", err)
	}
	want := []string{"a", "b", "doc"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order = %v, want %v", order, want)
		}
	}
}

func TestTraverseBeforeAfterWildcard(t *testing.T) {
	var seen []string
	table := NewTransformationTable()
	table.Set(KeyBefore, func(rn *RootNode, path Path) error {
		seen = append(seen, "<"+path.Node().Name())
		return nil
	})
	table.Set(KeyWildcard, func(rn *RootNode, path Path) error {
		seen = append(seen, "*"+path.Node().Name())
		return nil
	})
	table.Set(KeyAfter, func(rn *RootNode, path Path) error {
		seen = append(seen, ">"+path.Node().Name())
		return nil
	})
	doc := Branch("doc", Leaf("x", "1"))
	rn, _ := newTestRoot("1")
	if err := Traverse(rn, doc, table); err != nil {
		t.Fatalf("Traverse: %v", err)
	}
	want := []string{"<x", "*x", ">x", "<doc", "*doc", ">doc"}
	if len(seen) != len(want) {
		t.Fatalf("seen = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("seen = %v, want %v", seen, want)
		}
	}
}

func TestTraverseOnceBeforeAndAfter(t *testing.T) {
	count := 0
	table := NewTransformationTable()
	table.Set(KeyBeforeAll, func(rn *RootNode, path Path) error { count++; return nil })
	table.Set(KeyAfterAll, func(rn *RootNode, path Path) error { count++; return nil })
	doc := Branch("doc", Leaf("a", "1"), Leaf("b", "2"))
	rn, _ := newTestRoot("12")
	if err := Traverse(rn, doc, table); err != nil {
		t.Fatalf("Traverse: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2 (once before, once after, regardless of tree size)", count)
	}
}

func TestRemoveWhitespaceOnlySiblings(t *testing.T) {
	doc := Branch("doc", Leaf("w", "hi"), Leaf("w", "   "), Leaf("w", "there"))
	rn, _ := newTestRoot("hi   there")
	if err := RemoveWhitespaceOnlySiblings(rn, Path{doc}); err != nil {
		t.Fatalf("RemoveWhitespaceOnlySiblings: %v", err)
	}
	if doc.NumChildren() != 2 {
		t.Fatalf("got %d children, want 2", doc.NumChildren())
	}
	if doc.Content() != "hithere" {
		t.Errorf("doc.Content() = %q, want \"hithere\"", doc.Content())
	}
}

func TestMergeAdjacentChildren(t *testing.T) {
	doc := Branch("doc", Leaf("w", "a"), Leaf("w", "b"), Leaf("p", "."))
	isW := func(n *Node) bool { return n.Name() == "w" }
	combine := func(run []*Node) *Node {
		var s string
		for _, n := range run {
			s += n.Content()
		}
		return Leaf("w", s)
	}
	rule := MergeAdjacentChildren(isW, combine)
	rn, _ := newTestRoot("ab.")
	if err := rule(rn, Path{doc}); err != nil {
		t.Fatalf("MergeAdjacentChildren: %v", err)
	}
	if doc.NumChildren() != 2 {
		t.Fatalf("got %d children, want 2", doc.NumChildren())
	}
	if doc.Children()[0].Content() != "ab" {
		t.Errorf("merged child content = %q, want \"ab\"", doc.Children()[0].Content())
	}
}

func TestFlattenAnonymousWrappers(t *testing.T) {
	wrapper := Branch(":group", Leaf("a", "1"), Leaf("b", "2"))
	doc := Branch("doc", wrapper, Leaf("c", "3"))
	rn, _ := newTestRoot("123")
	if err := FlattenAnonymousWrappers(rn, Path{doc}); err != nil {
		t.Fatalf("FlattenAnonymousWrappers: %v", err)
	}
	if doc.NumChildren() != 3 {
		t.Fatalf("got %d children, want 3 (a, b, c)", doc.NumChildren())
	}
	names := []string{doc.Children()[0].Name(), doc.Children()[1].Name(), doc.Children()[2].Name()}
	if names[0] != "a" || names[1] != "b" || names[2] != "c" {
		t.Errorf("children = %v, want [a b c]", names)
	}
}

func TestCollapseToString(t *testing.T) {
	doc := Branch("doc", Leaf("a", "hello "), Leaf("b", "world"))
	rn, _ := newTestRoot("hello world")
	if err := CollapseToString(rn, Path{doc}); err != nil {
		t.Fatalf("CollapseToString: %v", err)
	}
	if !doc.IsLeaf() || doc.Content() != "hello world" {
		t.Errorf("doc = (leaf=%v, %q), want (true, \"hello world\")", doc.IsLeaf(), doc.Content())
	}
}

func TestReplaceBySingleChild(t *testing.T) {
	inner := Branch("wrap", Leaf("word", "hi"))
	doc := Branch("doc", inner, Leaf("punct", "."))
	rn, _ := newTestRoot("hi.")
	if err := ReplaceBySingleChild(rn, Path{doc, inner}); err != nil {
		t.Fatalf("ReplaceBySingleChild: %v", err)
	}
	if doc.Children()[0].Name() != "word" {
		t.Errorf("doc.Children()[0] = %q, want \"word\"", doc.Children()[0].Name())
	}
}

func TestReduceSingleChild(t *testing.T) {
	inner := Branch("wrap", Leaf("word", "hi"))
	rn, _ := newTestRoot("hi")
	if err := ReduceSingleChild(rn, Path{inner}); err != nil {
		t.Fatalf("ReduceSingleChild: %v", err)
	}
	if inner.Name() != "wrap" || !inner.IsLeaf() || inner.Content() != "hi" {
		t.Errorf("inner = (%q, leaf=%v, %q), want (\"wrap\", true, \"hi\")", inner.Name(), inner.IsLeaf(), inner.Content())
	}
}

func TestAssertAttachesErrorOnFailure(t *testing.T) {
	n := Leaf("word", "hi")
	must(n.WithPos(0))
	rn, _ := newTestRoot("hi")
	rule := Assert(func(n *Node) bool { return n.Content() != "hi" }, "unexpected content", CodeSemanticConstraint)
	if err := rule(rn, Path{n}); err != nil {
		t.Fatalf("Assert: %v", err)
	}
	if len(rn.NodeErrors(n)) != 1 {
		t.Errorf("NodeErrors(n) = %v, want 1 entry", rn.NodeErrors(n))
	}
}
