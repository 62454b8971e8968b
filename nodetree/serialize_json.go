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
	"encoding/json"
	"fmt"
)

// JSONOptions controls JSON serialization.
type JSONOptions struct {
	// IncludePos adds the node's position as the list flavor's third
	// element, or as "pos" in the dict flavor, when the node has one.
	IncludePos bool
}

// jsonListAttrs renders a node's attributes as [[key, value], ...] pairs,
// the form `[name, result, pos?, attrs?]` expects (§6 wire-level details).
func jsonListAttrs(n *Node) []interface{} {
	if n.AttrLen() == 0 {
		return nil
	}
	pairs := make([]interface{}, 0, n.AttrLen())
	for _, k := range n.AttrNames() {
		v, _ := n.Attr(k)
		pairs = append(pairs, []interface{}{k, v})
	}
	return pairs
}

func nodeToJSONList(n *Node, opts JSONOptions) interface{} {
	var result interface{}
	if n.IsLeaf() {
		result = n.Content()
	} else {
		children := make([]interface{}, len(n.Children()))
		for i, c := range n.Children() {
			children[i] = nodeToJSONList(c, opts)
		}
		result = children
	}
	entry := []interface{}{n.Name(), result}
	if opts.IncludePos && n.HasPos() {
		entry = append(entry, n.Pos())
	}
	if attrs := jsonListAttrs(n); attrs != nil {
		for len(entry) < 3 {
			entry = append(entry, nil)
		}
		entry = append(entry, attrs)
	}
	return entry
}

// SerializeJSONList renders n in the list flavor:
// [name, content_or_children, pos?, attrs?].
func SerializeJSONList(n *Node, opts JSONOptions) (string, error) {
	b, err := json.Marshal(nodeToJSONList(n, opts))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// jsonDictNode is the wire shape for the dict flavor.
type jsonDictNode struct {
	Name     string            `json:"name"`
	Content  *string           `json:"content,omitempty"`
	Children []*jsonDictNode   `json:"children,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Pos      *int              `json:"pos,omitempty"`
}

func nodeToJSONDict(n *Node, opts JSONOptions) *jsonDictNode {
	d := &jsonDictNode{Name: n.Name()}
	if n.IsLeaf() {
		s := n.Content()
		d.Content = &s
	} else {
		for _, c := range n.Children() {
			d.Children = append(d.Children, nodeToJSONDict(c, opts))
		}
	}
	if n.AttrLen() > 0 {
		d.Attrs = map[string]string{}
		for _, k := range n.AttrNames() {
			v, _ := n.Attr(k)
			d.Attrs[k] = v
		}
	}
	if opts.IncludePos && n.HasPos() {
		p := n.Pos()
		d.Pos = &p
	}
	return d
}

func (d *jsonDictNode) toNode() *Node {
	var n *Node
	if d.Content != nil && len(d.Children) == 0 {
		n = Leaf(d.Name, *d.Content)
	} else {
		children := make([]*Node, len(d.Children))
		for i, c := range d.Children {
			children[i] = c.toNode()
		}
		n = Branch(d.Name, children...)
	}
	if len(d.Attrs) > 0 {
		n.WithAttr(d.Attrs)
	}
	if d.Pos != nil {
		must(n.WithPos(*d.Pos))
	}
	return n
}

// SerializeJSONDict renders n in the dict flavor, keyed by field name
// rather than position.
func SerializeJSONDict(n *Node, opts JSONOptions) (string, error) {
	b, err := json.Marshal(nodeToJSONDict(n, opts))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ParseJSONDict is the inverse of SerializeJSONDict.
func ParseJSONDict(text string) (*Node, error) {
	var d jsonDictNode
	if err := json.Unmarshal([]byte(text), &d); err != nil {
		return nil, err
	}
	return d.toNode(), nil
}

// ParseJSONList is the inverse of SerializeJSONList.
func ParseJSONList(text string) (*Node, error) {
	var raw interface{}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, err
	}
	return jsonListToNode(raw)
}

func jsonListToNode(raw interface{}) (*Node, error) {
	entry, ok := raw.([]interface{})
	if !ok || len(entry) < 2 {
		return nil, fmt.Errorf("nodetree: malformed json-list node entry %v", raw)
	}
	name, ok := entry[0].(string)
	if !ok {
		return nil, fmt.Errorf("nodetree: json-list entry name is not a string: %v", entry[0])
	}
	var n *Node
	switch result := entry[1].(type) {
	case string:
		n = Leaf(name, result)
	case []interface{}:
		children := make([]*Node, len(result))
		for i, c := range result {
			child, err := jsonListToNode(c)
			if err != nil {
				return nil, err
			}
			children[i] = child
		}
		n = Branch(name, children...)
	default:
		return nil, fmt.Errorf("nodetree: json-list entry result is neither string nor array: %v", entry[1])
	}
	if len(entry) > 2 {
		if pos, ok := entry[2].(float64); ok {
			must(n.WithPos(int(pos)))
		}
	}
	if len(entry) > 3 {
		if pairs, ok := entry[3].([]interface{}); ok {
			attrs := map[string]string{}
			for _, p := range pairs {
				pair, ok := p.([]interface{})
				if !ok || len(pair) != 2 {
					continue
				}
				k, _ := pair[0].(string)
				v, _ := pair[1].(string)
				attrs[k] = v
			}
			n.WithAttr(attrs)
		}
	}
	return n, nil
}
