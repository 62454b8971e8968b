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
	"errors"
	"strings"
	"testing"
)

func TestNeutralSourceMapFuncIsIdentity(t *testing.T) {
	f := NeutralSourceMapFunc("doc", "abc def")
	for pos := 0; pos < 7; pos++ {
		file, text, mapped := f(pos)
		if file != "doc" || text != "abc def" || mapped != pos {
			t.Errorf("f(%d) = (%q, %q, %d), want (\"doc\", \"abc def\", %d)", pos, file, text, mapped, pos)
		}
	}
}

func TestBuildTokenInjectionMap(t *testing.T) {
	original := "abc def"
	tokens := []TokenSpec{{Start: 4, End: 7, Name: "T"}}
	tokenized, m := BuildTokenInjectionMap("doc", original, tokens)

	escPos := strings.IndexByte(tokenized, TokenEsc)
	if escPos < 0 {
		t.Fatalf("tokenized text %q has no ESC byte", tokenized)
	}
	_, _, mapped := m.Lookup(escPos)
	if mapped != 4 {
		t.Errorf("Lookup(ESC position) mapped = %d, want 4 (start of %q)", mapped, original[4:7])
	}

	argPos := strings.IndexByte(tokenized, TokenSep) + 1
	_, origText, mapped := m.Lookup(argPos)
	if mapped != 4 || origText != original {
		t.Errorf("Lookup(arg start) = (%q, %d), want (%q, 4)", origText, mapped, original)
	}

	endBytePos := strings.IndexByte(tokenized, TokenEnd)
	after := endBytePos + 1
	_, _, mapped = m.Lookup(after)
	if mapped != 7 {
		t.Errorf("Lookup(position right after the token) mapped = %d, want 7", mapped)
	}
}

func TestBuildTokenInjectionMapPrecedingTextIsIdentity(t *testing.T) {
	original := "abc def"
	tokens := []TokenSpec{{Start: 4, End: 7, Name: "T"}}
	_, m := BuildTokenInjectionMap("doc", original, tokens)
	for pos := 0; pos < 4; pos++ {
		_, _, mapped := m.Lookup(pos)
		if mapped != pos {
			t.Errorf("Lookup(%d) (before any token) mapped = %d, want %d", pos, mapped, pos)
		}
	}
}

func TestGenerateIncludeMap(t *testing.T) {
	mainText := `line one
@include(child.txt)
line three`
	childText := "inserted content"

	findNext := func(text string) (begin, length int, name string, found bool) {
		const marker = "@include("
		i := strings.Index(text, marker)
		if i < 0 {
			return 0, 0, "", false
		}
		rest := text[i+len(marker):]
		j := strings.IndexByte(rest, ')')
		if j < 0 {
			return 0, 0, "", false
		}
		name = rest[:j]
		length = len(marker) + j + 1
		return i, length, name, true
	}
	readFile := func(name string) (string, error) {
		if name == "child.txt" {
			return childText, nil
		}
		return "", errors.New("no such file")
	}

	expanded, m, err := GenerateIncludeMap("main.txt", mainText, findNext, readFile)
	if err != nil {
		t.Fatalf("GenerateIncludeMap: %v", err)
	}
	if !strings.Contains(expanded, childText) {
		t.Fatalf("expanded text %q does not contain child content", expanded)
	}
	if strings.Contains(expanded, "@include(") {
		t.Errorf("expanded text %q still contains an include directive", expanded)
	}

	childPos := strings.Index(expanded, childText)
	file, text, mapped := m.Lookup(childPos)
	if file != "child.txt" || text != childText || mapped != 0 {
		t.Errorf("Lookup(childPos) = (%q, %q, %d), want (\"child.txt\", %q, 0)", file, text, mapped, childText)
	}

	tailPos := strings.Index(expanded, "line three")
	file, _, mapped = m.Lookup(tailPos)
	if file != "main.txt" {
		t.Errorf("Lookup(tailPos) file = %q, want main.txt", file)
	}
	if mapped != strings.Index(mainText, "line three") {
		t.Errorf("Lookup(tailPos) mapped = %d, want %d", mapped, strings.Index(mainText, "line three"))
	}
}

func TestGenerateIncludeMapDetectsCircularInclusion(t *testing.T) {
	findNext := func(text string) (begin, length int, name string, found bool) {
		if text == "@include(self.txt)" {
			return 0, len(text), "self.txt", true
		}
		return 0, 0, "", false
	}
	readFile := func(name string) (string, error) {
		return "@include(self.txt)", nil
	}
	_, _, err := GenerateIncludeMap("self.txt", "@include(self.txt)", findNext, readFile)
	if !errors.Is(err, ErrCircularInclude) {
		t.Errorf("GenerateIncludeMap on a self-include: err = %v, want ErrCircularInclude", err)
	}
}

func TestChainSourceMaps(t *testing.T) {
	stage2 := NeutralSourceMapFunc("stage2", "xxabc")
	stage1 := func(pos int) (string, string, int) { return "stage1", "ab", pos - 2 }
	file, text, mapped := ChainSourceMaps(4, []MapFunc{stage2, stage1})
	_ = text
	if file != "stage1" || mapped != 2 {
		t.Errorf("ChainSourceMaps = (%q, _, %d), want (\"stage1\", 2)", file, mapped)
	}
}

func TestLineCol(t *testing.T) {
	text := "abc\ndef\nghi"
	tests := []struct {
		pos        int
		line, col  int
	}{
		{0, 1, 0},
		{3, 1, 3},
		{4, 2, 0},
		{7, 2, 3},
		{8, 3, 0},
	}
	for _, tt := range tests {
		line, col := LineCol(text, tt.pos)
		if line != tt.line || col != tt.col {
			t.Errorf("LineCol(%d) = (%d,%d), want (%d,%d)", tt.pos, line, col, tt.line, tt.col)
		}
	}
}
