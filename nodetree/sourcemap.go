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
	"sort"
	"strings"
)

// Reserved control characters used by the preprocessor token syntax
// \x1B<name>\x1C<arg>\x1D (§6 "Wire-level details"). These bytes must
// never appear in ordinary source content.
const (
	TokenEsc = '\x1B'
	TokenSep = '\x1C'
	TokenEnd = '\x1D'
)

// MapFunc maps a position in some transformed text back to the original
// (file, text, position) that produced it.
type MapFunc func(pos int) (fileName, originalText string, mappedPos int)

// SourceMap is a sorted parallel-array representation of where a
// transformed text's mapping to its source changes (§4.4).
//
// Positions[k] is the transformed-text offset at which Offsets[k] and
// FileNames[k] start applying; the region before Positions[0] is the
// implicit identity segment (offset 0). This module stores "where a new
// offset starts", which makes the binary search in Lookup a direct
// transcription of the spec's formula:
//
//	mapped_pos = min(pos + offsets[i-1], positions[i] + offsets[i])
//
// where i is the index of the first position strictly greater than pos
// (offsets[-1] is implicitly 0).
type SourceMap struct {
	Positions     []int
	Offsets       []int
	FileNames     []string
	OriginalsDict map[string]string
}

// Lookup performs the binary-search mapping described above.
func (m *SourceMap) Lookup(pos int) (fileName, originalText string, mappedPos int) {
	if m == nil || len(m.Positions) == 0 {
		return "", "", pos
	}
	i := sort.Search(len(m.Positions), func(i int) bool { return m.Positions[i] > pos })
	offsetPrev := 0
	fileName = m.FileNames[0]
	if i > 0 {
		offsetPrev = m.Offsets[i-1]
		fileName = m.FileNames[i-1]
	}
	mapped := pos + offsetPrev
	if i < len(m.Positions) {
		clamp := m.Positions[i] + m.Offsets[i]
		if clamp < mapped {
			mapped = clamp
		}
	}
	return fileName, m.OriginalsDict[fileName], mapped
}

// Func adapts m to a MapFunc.
func (m *SourceMap) Func() MapFunc {
	if m == nil {
		return func(pos int) (string, string, int) { return "", "", pos }
	}
	return m.Lookup
}

// NeutralSourceMapFunc returns the identity mapping: every position maps to
// itself in docname/text (gen_neutral_srcmap_func).
func NeutralSourceMapFunc(docname, text string) MapFunc {
	return func(pos int) (string, string, int) { return docname, text, pos }
}

// ChainSourceMaps composes a sequence of mapping functions: pos is passed
// through maps[0], whose result is passed through maps[1], and so on, so
// that maps[0] is the most recent transformation stage and maps[len-1]
// ultimately resolves the position in the earliest (original) text.
func ChainSourceMaps(pos int, maps []MapFunc) (fileName, text string, mappedPos int) {
	mappedPos = pos
	for _, f := range maps {
		fileName, text, mappedPos = f(mappedPos)
	}
	return
}

// TokenSpec describes one preprocessor token injection: the half-open
// range [Start, End) of original text that is replaced by a token wrapping
// that same text as Name's argument.
type TokenSpec struct {
	Start, End int
	Name       string
}

// BuildTokenInjectionMap injects a \x1B<name>\x1C<arg>\x1D token for each
// spec in tokens (which must be sorted by Start and non-overlapping) into
// original, and returns the tokenized text together with the SourceMap
// that maps positions in it back to original. Positions within a token's
// <name> segment collapse to the token's original start (the segment has
// no original counterpart); positions within <arg> map 1:1 to the
// corresponding original bytes, since arg is exactly the replaced span.
func BuildTokenInjectionMap(docname, original string, tokens []TokenSpec) (tokenized string, m *SourceMap) {
	var b strings.Builder
	var positions, offsets []int
	var fileNames []string

	prevEnd := 0
	for _, t := range tokens {
		b.WriteString(original[prevEnd:t.Start])

		prefixStart := b.Len()
		b.WriteByte(TokenEsc)
		b.WriteString(t.Name)
		b.WriteByte(TokenSep)
		argStart := b.Len()
		arg := original[t.Start:t.End]
		b.WriteString(arg)
		argEnd := b.Len()
		b.WriteByte(TokenEnd)
		tokenEnd := b.Len()

		// <name> prefix: collapses to the token's original start.
		positions = append(positions, prefixStart)
		offsets = append(offsets, t.Start-prefixStart)
		fileNames = append(fileNames, docname)

		// <arg>: maps 1:1 onto original[t.Start:t.End).
		positions = append(positions, argStart)
		offsets = append(offsets, t.Start-argStart)
		fileNames = append(fileNames, docname)

		// trailing END control byte: collapses forward to the token's
		// original end, where normal text resumes.
		positions = append(positions, argEnd)
		offsets = append(offsets, t.End-argEnd)
		fileNames = append(fileNames, docname)

		// resume normal 1:1 mapping after the token.
		positions = append(positions, tokenEnd)
		offsets = append(offsets, t.End-tokenEnd)
		fileNames = append(fileNames, docname)

		prevEnd = t.End
	}
	b.WriteString(original[prevEnd:])

	m = &SourceMap{
		Positions:     positions,
		Offsets:       offsets,
		FileNames:     fileNames,
		OriginalsDict: map[string]string{docname: original},
	}
	return b.String(), m
}

// FindIncludeFunc locates the next include directive in text and returns
// its half-open byte range [begin, begin+length) together with the name of
// the file it references, or found=false if there are no more includes.
type FindIncludeFunc func(text string) (begin, length int, includedName string, found bool)

// ReadIncludeFunc reads the full text of an included file by name.
type ReadIncludeFunc func(name string) (string, error)

// GenerateIncludeMap recursively expands include directives in mainText
// (named mainName), using findNext to locate each directive and readFile
// to fetch the included text. It fails with ErrCircularInclude if an
// inclusion chain refers back to a file already being expanded.
func GenerateIncludeMap(mainName, mainText string, findNext FindIncludeFunc, readFile ReadIncludeFunc) (expanded string, m *SourceMap, err error) {
	var b strings.Builder
	var positions, offsets []int
	var fileNames []string
	originals := map[string]string{mainName: mainText}

	startSeg := func(localPos, atExpandedPos int, name string) {
		off := localPos - atExpandedPos
		if n := len(positions); n > 0 && positions[n-1] == atExpandedPos {
			offsets[n-1] = off
			fileNames[n-1] = name
			return
		}
		positions = append(positions, atExpandedPos)
		offsets = append(offsets, off)
		fileNames = append(fileNames, name)
	}

	var expand func(name, text string, stack map[string]bool) error
	expand = func(name, text string, stack map[string]bool) error {
		pos := 0
		startSeg(pos, b.Len(), name)
		for {
			begin, length, inc, found := findNext(text[pos:])
			if !found {
				break
			}
			begin += pos
			b.WriteString(text[pos:begin])
			pos = begin
			if stack[inc] {
				return fmt.Errorf("%w: %s", ErrCircularInclude, inc)
			}
			incText, rerr := readFile(inc)
			if rerr != nil {
				return rerr
			}
			originals[inc] = incText
			childStack := make(map[string]bool, len(stack)+1)
			for k := range stack {
				childStack[k] = true
			}
			childStack[inc] = true
			if err := expand(inc, incText, childStack); err != nil {
				return err
			}
			pos += length
			startSeg(pos, b.Len(), name)
		}
		b.WriteString(text[pos:])
		return nil
	}

	if err := expand(mainName, mainText, map[string]bool{mainName: true}); err != nil {
		return "", nil, err
	}
	m = &SourceMap{Positions: positions, Offsets: offsets, FileNames: fileNames, OriginalsDict: originals}
	return b.String(), m, nil
}

// LineCol returns the 1-based line and 0-based column of byte offset pos
// within text (countRowCol-style, counted in bytes not runes, matching the
// teacher's parser.countRowCol).
func LineCol(text string, pos int) (line, col int) {
	line, col = 1, 0
	if pos > len(text) {
		pos = len(text)
	}
	for i := 0; i < pos; i++ {
		if text[i] == '\n' {
			line++
			col = 0
		} else {
			col++
		}
	}
	return line, col
}

// AddSourceLocations fills in OrigPos, OrigDoc, Line, Column, EndLine and
// EndColumn on every error in errs from its Pos via m.
func AddSourceLocations(errs []*Error, m MapFunc) {
	for _, e := range errs {
		file, text, origPos := m(e.Pos)
		e.OrigDoc = file
		e.OrigPos = origPos
		e.Line, e.Column = LineCol(text, origPos)
		end := origPos + e.Length
		if e.Length <= 0 {
			end = origPos
		}
		e.EndLine, e.EndColumn = LineCol(text, end)
	}
}
