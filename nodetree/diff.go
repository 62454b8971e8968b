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

import "fmt"

// Diff returns a slice of human-readable descriptions of every difference
// between got and want, recursing into children. An empty (nil) result
// means the two trees are structurally equivalent for testing purposes —
// attribute order is ignored, but names, content, positions and attribute
// values are not.
func Diff(got, want *Node) (diff []string) {
	if got == nil && want == nil {
		return nil
	}
	if got == nil {
		diff = append(diff, fmt.Sprintf("expected (%s), got nil", want.Name()))
		return
	}
	if want == nil {
		diff = append(diff, fmt.Sprintf("expected nil, got (%s)", got.Name()))
		return
	}
	if got.Name() != want.Name() {
		diff = append(diff, fmt.Sprintf("expected name %q, got %q", want.Name(), got.Name()))
	}
	if got.IsLeaf() != want.IsLeaf() {
		diff = append(diff, fmt.Sprintf("expected %s to be leaf=%v, got leaf=%v", want.Name(), want.IsLeaf(), got.IsLeaf()))
	}
	if want.HasPos() && got.HasPos() && got.Pos() != want.Pos() {
		diff = append(diff, fmt.Sprintf("expected %s at pos %d, got pos %d", want.Name(), want.Pos(), got.Pos()))
	}
	checked := make(map[string]bool)
	for _, k := range want.AttrNames() {
		v, _ := want.Attr(k)
		gv, ok := got.Attr(k)
		if !ok {
			diff = append(diff, fmt.Sprintf("expected attribute %s=%q on %s, not found", k, v, want.Name()))
			continue
		}
		if gv != v {
			diff = append(diff, fmt.Sprintf("expected attribute %s=%q on %s, got %q", k, v, want.Name(), gv))
		}
		checked[k] = true
	}
	for _, k := range got.AttrNames() {
		if checked[k] {
			continue
		}
		v, _ := got.Attr(k)
		diff = append(diff, fmt.Sprintf("extra attribute %s=%q on %s, not expected", k, v, got.Name()))
	}
	if got.IsLeaf() && want.IsLeaf() && got.Content() != want.Content() {
		diff = append(diff, fmt.Sprintf("expected %s content %q, got %q", want.Name(), want.Content(), got.Content()))
	}
	if !got.IsLeaf() && !want.IsLeaf() {
		gc, wc := got.Children(), want.Children()
		if len(gc) != len(wc) {
			diff = append(diff, fmt.Sprintf("expected %s to have %d children, got %d", want.Name(), len(wc), len(gc)))
		}
		n := len(gc)
		if len(wc) < n {
			n = len(wc)
		}
		for i := 0; i < n; i++ {
			diff = append(diff, Diff(gc[i], wc[i])...)
		}
	}
	return
}
