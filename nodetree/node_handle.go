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

import "sync"

// The Python original lets callers pass id(node) as a match criterion
// (§4.6, create_match_function). Go pointers aren't comparable to an
// integer selector type directly in a portable way, so this module offers
// an explicit handle registry instead (§9 design note: "a handle").
var (
	handleMu   sync.Mutex
	handleByPt = map[*Node]int{}
	nextHandle = 1
)

// Handle returns a stable integer handle for n, allocating one on first
// use. The handle remains valid for the process lifetime of n.
func Handle(n *Node) int {
	handleMu.Lock()
	defer handleMu.Unlock()
	if h, ok := handleByPt[n]; ok {
		return h
	}
	h := nextHandle
	nextHandle++
	handleByPt[n] = h
	return h
}

// HandleOf returns n's handle if one was ever allocated via Handle, or 0.
// It never allocates, so it is safe to call from a hot matching path.
func HandleOf(n *Node) int {
	handleMu.Lock()
	defer handleMu.Unlock()
	return handleByPt[n]
}
