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
	"path/filepath"

	"go.uber.org/multierr"
)

// ErrorCode is a diagnostic severity/identity code. Severity is determined
// by the band the code falls into (§4.3, §7):
//
//	0          no error
//	1..99      notice
//	100..999   warning
//	1000..9999 error
//	10000+     fatal
type ErrorCode int

// Severity bands.
const (
	CodeNoError ErrorCode = 0

	CodeParserStoppedBeforeEnd ErrorCode = 1000
	CodeUnknownSymbol          ErrorCode = 1001
	CodeMalformedInput         ErrorCode = 1002
	CodeMandatoryContinuation  ErrorCode = 1003
	CodeLookaheadFailureAtEOF  ErrorCode = 1004
	CodeSemanticConstraint     ErrorCode = 1005

	CodeTreeProcessingCrash    ErrorCode = 10000
	CodeCompilerCrash          ErrorCode = 10001
	CodeASTTransformationCrash ErrorCode = 10002
	CodeRecursionDepthLimit    ErrorCode = 10003
	CodeASTStructuralError     ErrorCode = 10004
)

// Severity returns the human-readable band name for code.
func (c ErrorCode) Severity() string {
	switch {
	case c <= 0:
		return "None"
	case c < 100:
		return "Notice"
	case c < 1000:
		return "Warning"
	case c < 10000:
		return "Error"
	default:
		return "Fatal"
	}
}

// IsFatal reports whether code is in the fatal band (>= 10000). When a
// fatal error is present, downstream processing stages must be skipped
// (§7).
func (c ErrorCode) IsFatal() bool { return c >= 10000 }

// Error is a diagnostic record with severity, position (in both the
// (pre)processed and original source), line/column, and optional related
// sub-diagnostics (§4.3).
type Error struct {
	Message string
	Code    ErrorCode

	// Pos is the position in the (pre)processed source this module's
	// RootNode holds as Source().
	Pos int
	// OrigPos/OrigDoc are filled in by AddSourceLocations from a SourceMap;
	// OrigPos is -1 until then.
	OrigPos int
	OrigDoc string

	Line       int
	Column     int
	Length     int
	EndLine    int
	EndColumn  int

	Related []*Error
}

// NewError constructs an Error at pos with OrigPos defaulted to "not yet
// mapped".
func NewError(message string, code ErrorCode, pos int) *Error {
	return &Error{Message: message, Code: code, Pos: pos, OrigPos: -1}
}

// SetPos reassigns the error's position and invalidates derived fields
// (line/column), matching the original's defensive handling of pos
// reassignment even though callers should treat Pos as write-once in
// practice (SUPPLEMENTED FEATURES item 4).
func (e *Error) SetPos(pos int) {
	if e.Pos == pos {
		return
	}
	e.Pos = pos
	e.Line, e.Column, e.EndLine, e.EndColumn = 0, 0, 0, 0
	e.OrigPos, e.OrigDoc = -1, ""
}

// key is the (code, pos) pair used for equality, hashing and
// de-duplication (§4.3).
type errorKey struct {
	code ErrorCode
	pos  int
}

func (e *Error) key() errorKey { return errorKey{e.Code, e.Pos} }

// Equal reports whether e and other share the same (code, pos) identity.
func (e *Error) Equal(other *Error) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.key() == other.key()
}

// Combined folds e's Related sub-errors into e itself and returns a single
// Go error suitable for presentation, using multierr the way
// uber-research-last-diff-analyzer combines independent analyzer failures
// into one reportable error.
func (e *Error) Combined() error {
	if e == nil {
		return nil
	}
	var combined error = fmt.Errorf("%s", e.Message)
	for _, r := range e.Related {
		combined = multierr.Append(combined, r.Combined())
	}
	return combined
}

// CanonicalString renders e in the form:
//
//	<relative_path>:<line>:<column>: <Severity> (<code>): <message>
//
// path is given relative to cwd where possible (§4.3).
func (e *Error) CanonicalString(docPath, cwd string) string {
	p := docPath
	if cwd != "" {
		if rel, err := filepath.Rel(cwd, docPath); err == nil {
			p = rel
		}
	}
	return fmt.Sprintf("%s:%d:%d: %s (%d): %s", p, e.Line, e.Column, e.Code.Severity(), int(e.Code), e.Message)
}

// CanonicalErrorStrings renders every error in errs via CanonicalString.
func CanonicalErrorStrings(errs []*Error, docPath, cwd string) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.CanonicalString(docPath, cwd)
	}
	return out
}

// HasErrors reports whether any error in errs has severity >= level.
func HasErrors(errs []*Error, level ErrorCode) bool {
	for _, e := range errs {
		if e.Code >= level {
			return true
		}
	}
	return false
}
