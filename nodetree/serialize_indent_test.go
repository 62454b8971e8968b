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
	"strings"
	"testing"
)

func TestSerializeIndent(t *testing.T) {
	doc := Branch("doc", Leaf("a", "1"), Leaf("b", "2"))
	got := SerializeIndent(doc, IndentOptions{})
	want := "doc\n  a \"1\"\n  b \"2\"\n"
	if got != want {
		t.Errorf("SerializeIndent = %q, want %q", got, want)
	}
}

func TestSerializeIndentShowsAttrsAndPos(t *testing.T) {
	n := Leaf("word", "hi").MustSetAttr("id", "w1")
	must(n.WithPos(3))
	got := SerializeIndent(n, IndentOptions{ShowPos: true})
	if !strings.Contains(got, "@3") || !strings.Contains(got, `id="w1"`) {
		t.Errorf("SerializeIndent = %q, want it to contain @3 and id=\"w1\"", got)
	}
}
