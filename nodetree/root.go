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

	"github.com/golang/glog"
)

// Stage identifies how far a RootNode's tree has progressed through the
// processing pipeline (§4.2, §7). Errors raised at an earlier stage survive
// into later stages; a fatal error at any stage means later stages must be
// skipped (IsFatal, ErrorSafe).
type Stage string

const (
	StageCST Stage = "CST"
	StageAST Stage = "AST"
	StageCompiled Stage = "compiled"
)

// RootNode is the permanent, tree-wide bookkeeping a Node gains once it is
// the root of a finished (or in-progress) document tree: accumulated
// errors indexed both by node and by position, the original source and its
// mapping back to pre-processing stages, line-break offsets for O(log n)
// line/column resolution, the XML tag-category sets used by serialization,
// and one arbitrary payload a compiler stage can stash on it.
//
// It generalizes the teacher's packrat-memoization Result (one per parse
// attempt, discarded once parsing finishes) into bookkeeping that outlives
// parsing and is carried along for the whole life of the tree.
type RootNode struct {
	root *Node

	Docname         string
	Stage           Stage
	SerializationType string // "sxpr", "xml", "json", "json-dict", "indented"

	source        string
	sourceMapping MapFunc
	lbreaks       []int // byte offsets of '\n' in source, ascending

	InlineTags map[string]bool
	StringTags map[string]bool
	EmptyTags  map[string]bool

	errors       []*Error
	errorsByNode map[*Node][]*Error
	errorsByPos  map[int][]*Error

	data      interface{}
	dataIsSet bool

	swallowed bool
}

// NewRootNode wraps root (which must not already belong to another
// RootNode) and records source as its associated (pre-processed) text.
func NewRootNode(root *Node, docname, source string) *RootNode {
	rn := &RootNode{
		root:         root,
		Docname:      docname,
		Stage:        StageCST,
		source:       source,
		sourceMapping: NeutralSourceMapFunc(docname, source),
		errorsByNode: make(map[*Node][]*Error),
		errorsByPos:  make(map[int][]*Error),
	}
	rn.lbreaks = computeLbreaks(source)
	return rn
}

func computeLbreaks(s string) []int {
	var breaks []int
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			breaks = append(breaks, i)
		}
	}
	return breaks
}

// Root returns the node this RootNode is attached to.
func (rn *RootNode) Root() *Node { return rn.root }

// Source returns the (pre-processed) source text this tree was built from.
func (rn *RootNode) Source() string { return rn.source }

// SetSourceMapping installs the function used to map Source() positions
// back to an earlier pipeline stage (or the true original file), e.g. the
// result of BuildTokenInjectionMap or GenerateIncludeMap.
func (rn *RootNode) SetSourceMapping(m MapFunc) { rn.sourceMapping = m }

// LineCol resolves a position in Source() to a 1-based line and 0-based
// column using the precomputed line-break table, via binary search rather
// than rescanning the source on every call.
func (rn *RootNode) LineCol(pos int) (line, col int) {
	i := sort.SearchInts(rn.lbreaks, pos)
	line = i + 1
	if i == 0 {
		col = pos
	} else {
		col = pos - rn.lbreaks[i-1] - 1
	}
	return line, col
}

// StashData stores an arbitrary payload on the RootNode exactly once (e.g.
// a compiler stage's output); a second call with a different value fails,
// matching the write-once discipline used elsewhere in the tree (Pos,
// attributes of a frozen node).
func (rn *RootNode) StashData(data interface{}) error {
	if rn.dataIsSet {
		if rn.data == data {
			return nil
		}
		return fmt.Errorf("%w: RootNode already carries stashed data", ErrAlreadySet)
	}
	rn.data = data
	rn.dataIsSet = true
	return nil
}

// Data returns the payload previously passed to StashData, or nil.
func (rn *RootNode) Data() interface{} { return rn.data }

// Swallow adopts node's result, children, name and attributes into rn's
// own root in place (the root keeps its identity, so earlier AddError/
// Locate references to it remain valid), and installs source and
// sourceMapping as the tree's associated text and position-mapping
// function. It must be called exactly once, before the tree is handed out
// as a finalized result; a second call fails. If node is nil (the parser
// produced no result at all), the root is instead marked a zombie and a
// CodeParserStoppedBeforeEnd error is recorded at position 0.
func (rn *RootNode) Swallow(node *Node, source string, sourceMapping MapFunc) error {
	if rn.swallowed {
		return fmt.Errorf("%w: RootNode already swallowed a result", ErrAlreadySet)
	}
	rn.swallowed = true
	rn.source = source
	rn.lbreaks = computeLbreaks(source)
	if sourceMapping != nil {
		rn.sourceMapping = sourceMapping
	}
	if node == nil {
		rn.root.SetName(ZombieTag)
		must(rn.root.SetResult(""))
		rn.root.attrs = nil
		rn.AddError(rn.root, "parser did not match", CodeParserStoppedBeforeEnd, 0)
		return nil
	}
	rn.root.SetName(node.Name())
	if err := rn.root.SetResult(node.Result()); err != nil {
		return err
	}
	rn.root.attrs = nil
	for _, k := range node.AttrNames() {
		v, _ := node.Attr(k)
		if err := rn.root.SetAttr(k, v); err != nil {
			return err
		}
	}
	return nil
}

// AddError records a new diagnostic. If node is nil, the error is attached
// to whichever leaf Locate finds at pos (the teacher's handler constructors
// similarly attribute a parse failure to the node under the cursor at the
// point of failure). Fatal errors are also surfaced through glog, the way
// the teacher logs unrecoverable grammar-construction failures. An error
// with the same code and position as one already recorded is not added
// again; the recorded one is returned instead.
func (rn *RootNode) AddError(node *Node, message string, code ErrorCode, pos int) *Error {
	e := NewError(message, code, pos)
	for _, old := range rn.errorsByPos[pos] {
		if old.Equal(e) {
			return old
		}
	}
	e.Line, e.Column = rn.LineCol(pos)
	if node == nil {
		node = rn.root.Locate(pos)
	}
	rn.errors = append(rn.errors, e)
	if node != nil {
		rn.errorsByNode[node] = append(rn.errorsByNode[node], e)
	}
	rn.errorsByPos[pos] = append(rn.errorsByPos[pos], e)
	if code.IsFatal() {
		glog.Errorf("%s:%d:%d: fatal: %s", rn.Docname, e.Line, e.Column, message)
	}
	return e
}

// NodeErrors returns the errors attached to node, in the order recorded.
func (rn *RootNode) NodeErrors(node *Node) []*Error {
	return rn.errorsByNode[node]
}

// PositionErrors returns the errors recorded at exactly pos.
func (rn *RootNode) PositionErrors(pos int) []*Error {
	return rn.errorsByPos[pos]
}

// TransferErrors moves every error attached to from onto to, e.g. when an
// AST transformation rule replaces from with to and the diagnostic still
// applies to the replacement.
func (rn *RootNode) TransferErrors(from, to *Node) {
	errs, ok := rn.errorsByNode[from]
	if !ok {
		return
	}
	delete(rn.errorsByNode, from)
	rn.errorsByNode[to] = append(rn.errorsByNode[to], errs...)
}

// Errors returns every error recorded on the tree, in recording order.
func (rn *RootNode) Errors() []*Error { return rn.errors }

// ErrorsSorted returns every error recorded on the tree, sorted by
// position (ties broken by recording order).
func (rn *RootNode) ErrorsSorted() []*Error {
	out := append([]*Error(nil), rn.errors...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Pos < out[j].Pos })
	return out
}

// ErrorSafe reports whether the tree is free of fatal-band errors, i.e.
// whether it is safe to continue to the next processing stage (§7).
func (rn *RootNode) ErrorSafe() bool {
	return !HasErrors(rn.errors, CodeTreeProcessingCrash)
}

// DidMatch reports whether the tree represents a successful parse: Swallow
// must have been called (a tree nobody ever swallowed a result into was
// never finalized) and there must be no CodeParserStoppedBeforeEnd
// diagnostic, mirroring the teacher's treatment of "the grammar ran to
// completion, possibly with recoverable warnings" as success.
func (rn *RootNode) DidMatch() bool {
	if !rn.swallowed {
		return false
	}
	for _, e := range rn.errors {
		if e.Code == CodeParserStoppedBeforeEnd {
			return false
		}
	}
	return true
}

// ContinueWithData returns rn's stashed data if the tree is ErrorSafe,
// or an error describing why the pipeline must stop here.
func (rn *RootNode) ContinueWithData() (interface{}, error) {
	if !rn.ErrorSafe() {
		return nil, fmt.Errorf("nodetree: cannot continue past %s: tree carries a fatal error", rn.Docname)
	}
	return rn.data, nil
}

// OriginalLocation maps pos (in Source()) through the installed source
// mapping back to a (file, text, position) triple in an earlier stage or
// the true original document.
func (rn *RootNode) OriginalLocation(pos int) (fileName, text string, mappedPos int) {
	if rn.sourceMapping == nil {
		return rn.Docname, rn.source, pos
	}
	return rn.sourceMapping(pos)
}

// AddSourceLocations back-fills OrigPos/OrigDoc/Line/Column on every error
// recorded on rn using its installed source mapping.
func (rn *RootNode) AddSourceLocations() {
	AddSourceLocations(rn.errors, rn.sourceMapping)
}
