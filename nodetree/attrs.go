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

import "sort"

// attrMap is an ordered string-to-string map. It is created lazily on first
// write so that HasAttr never allocates (§9 design note).
type attrMap struct {
	keys []string
	vals map[string]string
}

func newAttrMap() *attrMap {
	return &attrMap{vals: make(map[string]string)}
}

func (m *attrMap) has(key string) bool {
	if m == nil {
		return false
	}
	_, ok := m.vals[key]
	return ok
}

func (m *attrMap) get(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.vals[key]
	return v, ok
}

func (m *attrMap) set(key, value string) {
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = value
}

func (m *attrMap) delete(key string) {
	if m == nil {
		return
	}
	if _, ok := m.vals[key]; !ok {
		return
	}
	delete(m.vals, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

func (m *attrMap) len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// orderedKeys returns the attribute names in insertion order.
func (m *attrMap) orderedKeys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// sortedKeys returns the attribute names in lexical order, used when
// comparing or serializing with ignoreAttrOrder semantics.
func (m *attrMap) sortedKeys() []string {
	out := m.orderedKeys()
	sort.Strings(out)
	return out
}

func (m *attrMap) clone() *attrMap {
	if m == nil || len(m.keys) == 0 {
		return nil
	}
	c := newAttrMap()
	for _, k := range m.keys {
		c.set(k, m.vals[k])
	}
	return c
}

// equals compares two attribute maps, optionally ignoring key order.
func (m *attrMap) equals(other *attrMap, ignoreOrder bool) bool {
	if m.len() != other.len() {
		return false
	}
	if m.len() == 0 {
		return true
	}
	if !ignoreOrder {
		ak, bk := m.orderedKeys(), other.orderedKeys()
		for i := range ak {
			if ak[i] != bk[i] || m.vals[ak[i]] != other.vals[bk[i]] {
				return false
			}
		}
		return true
	}
	for k, v := range m.vals {
		if other.vals[k] != v {
			return false
		}
	}
	return true
}

// isValidAttrName reports whether name is usable as an attribute key
// (invariant 4 in §3): non-empty, and not containing characters that would
// make it ambiguous in the S-expression/XML wire forms.
func isValidAttrName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch r {
		case ' ', '\t', '\n', '"', '(', ')', '<', '>', '=':
			return false
		}
	}
	return true
}
