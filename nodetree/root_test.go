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

func newTestRoot(source string) (*RootNode, *Node) {
	root := Leaf("document", source)
	must(root.WithPos(0))
	return NewRootNode(root, "doc.txt", source), root
}

func TestRootNodeLineCol(t *testing.T) {
	rn, _ := newTestRoot("abc\ndef\nghi")
	tests := []struct {
		pos        int
		line, col  int
	}{
		{0, 1, 0},
		{4, 2, 0},
		{8, 3, 0},
	}
	for _, tt := range tests {
		line, col := rn.LineCol(tt.pos)
		if line != tt.line || col != tt.col {
			t.Errorf("LineCol(%d) = (%d,%d), want (%d,%d)", tt.pos, line, col, tt.line, tt.col)
		}
	}
}

func TestRootNodeAddErrorAttributesToLocatedNode(t *testing.T) {
	rn, root := newTestRoot("abc def")
	e := rn.AddError(nil, "bad token", CodeUnknownSymbol, 5)
	located := root.Locate(5)
	if len(rn.NodeErrors(located)) != 1 || rn.NodeErrors(located)[0] != e {
		t.Errorf("AddError(nil, ...) did not attach the error to Locate(5)'s node")
	}
	if got := rn.PositionErrors(5); len(got) != 1 || got[0] != e {
		t.Errorf("PositionErrors(5) = %v, want [%v]", got, e)
	}
}

func TestRootNodeErrorSafe(t *testing.T) {
	rn, _ := newTestRoot("abc")
	if !rn.ErrorSafe() {
		t.Errorf("fresh RootNode: ErrorSafe() = false, want true")
	}
	rn.AddError(nil, "warning only", CodeSemanticConstraint, 0)
	if !rn.ErrorSafe() {
		t.Errorf("error-band (non-fatal) diagnostic: ErrorSafe() = false, want true")
	}
	rn.AddError(nil, "crashed", CodeTreeProcessingCrash, 0)
	if rn.ErrorSafe() {
		t.Errorf("fatal diagnostic present: ErrorSafe() = true, want false")
	}
}

func TestRootNodeContinueWithDataStopsOnFatal(t *testing.T) {
	rn, _ := newTestRoot("abc")
	must(rn.StashData(42))
	if data, err := rn.ContinueWithData(); err != nil || data != 42 {
		t.Fatalf("ContinueWithData() = (%v, %v), want (42, nil)", data, err)
	}
	rn.AddError(nil, "crashed", CodeTreeProcessingCrash, 0)
	if _, err := rn.ContinueWithData(); err == nil {
		t.Errorf("ContinueWithData() after a fatal error: want error, got nil")
	}
}

func TestRootNodeStashDataIsWriteOnce(t *testing.T) {
	rn, _ := newTestRoot("abc")
	if err := rn.StashData(1); err != nil {
		t.Fatalf("StashData(1): %v", err)
	}
	if err := rn.StashData(1); err != nil {
		t.Errorf("re-stashing the same value: %v", err)
	}
	if err := rn.StashData(2); err == nil {
		t.Errorf("stashing a different value: want error, got nil")
	}
}

func TestRootNodeSwallowAdoptsResultInPlace(t *testing.T) {
	rn, root := newTestRoot("abc")
	parsed := Branch("sentence", Leaf("word", "abc")).MustSetAttr("lang", "en")
	if err := rn.Swallow(parsed, "abc", nil); err != nil {
		t.Fatalf("Swallow: %v", err)
	}
	if rn.Root() != root {
		t.Fatalf("Swallow replaced the root's identity, want in-place adoption")
	}
	if root.Name() != "sentence" || root.Content() != "abc" {
		t.Errorf("root = (%q, %q), want (\"sentence\", \"abc\")", root.Name(), root.Content())
	}
	if v, _ := root.Attr("lang"); v != "en" {
		t.Errorf("root attr lang = %q, want \"en\"", v)
	}
	if !rn.DidMatch() {
		t.Errorf("DidMatch() after a successful Swallow = false, want true")
	}
}

func TestRootNodeSwallowNilMarksZombieAndFailsMatch(t *testing.T) {
	rn, root := newTestRoot("abc")
	if err := rn.Swallow(nil, "abc", nil); err != nil {
		t.Fatalf("Swallow(nil, ...): %v", err)
	}
	if !root.IsZombie() {
		t.Errorf("root.IsZombie() = false after Swallow(nil, ...), want true")
	}
	if rn.DidMatch() {
		t.Errorf("DidMatch() after Swallow(nil, ...) = true, want false")
	}
	if !HasErrors(rn.Errors(), CodeParserStoppedBeforeEnd) {
		t.Errorf("Swallow(nil, ...) did not record a CodeParserStoppedBeforeEnd error")
	}
}

func TestRootNodeSwallowTwiceFails(t *testing.T) {
	rn, _ := newTestRoot("abc")
	if err := rn.Swallow(Leaf("word", "abc"), "abc", nil); err != nil {
		t.Fatalf("first Swallow: %v", err)
	}
	if err := rn.Swallow(Leaf("word", "abc"), "abc", nil); err == nil {
		t.Errorf("second Swallow: want error, got nil")
	}
}

func TestRootNodeDidMatchFalseBeforeSwallow(t *testing.T) {
	rn, _ := newTestRoot("abc")
	if rn.DidMatch() {
		t.Errorf("DidMatch() before Swallow = true, want false")
	}
}

func TestRootNodeErrorsSorted(t *testing.T) {
	rn, _ := newTestRoot("0123456789")
	rn.AddError(nil, "b", CodeSemanticConstraint, 5)
	rn.AddError(nil, "a", CodeSemanticConstraint, 1)
	sorted := rn.ErrorsSorted()
	if len(sorted) != 2 || sorted[0].Pos != 1 || sorted[1].Pos != 5 {
		t.Errorf("ErrorsSorted() = %+v, want positions [1 5]", sorted)
	}
}

func TestRootNodeTransferErrors(t *testing.T) {
	rn, root := newTestRoot("abc")
	rn.AddError(root, "msg", CodeSemanticConstraint, 0)
	replacement := Leaf("word", "abc")
	rn.TransferErrors(root, replacement)
	if len(rn.NodeErrors(root)) != 0 {
		t.Errorf("NodeErrors(root) after transfer = %v, want empty", rn.NodeErrors(root))
	}
	if len(rn.NodeErrors(replacement)) != 1 {
		t.Errorf("NodeErrors(replacement) after transfer = %v, want 1 entry", rn.NodeErrors(replacement))
	}
}
