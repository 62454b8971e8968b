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
	"strings"
)

// TextTagName is the sentinel name used for anonymous children synthesized
// to hold the bare-text runs of XML mixed content (§6 "Text nodes in XML
// mixed content").
const TextTagName = ":Text"

// AttrSanitizePolicy controls how an XML attribute value containing
// characters illegal in that position is handled on output.
type AttrSanitizePolicy int

const (
	// AttrFail refuses to serialize an attribute value that contains '&',
	// '<' or '"', i.e. any value that would need entity escaping.
	AttrFail AttrSanitizePolicy = iota
	// AttrFix replaces '<', '&' and the quote character with their entity
	// forms and always succeeds. It is the value stored under the
	// "xml_attribute_error_policy" configuration key; the zero value of
	// XMLOptions.AttrPolicy is AttrFail.
	AttrFix
	// AttrLXML replaces any byte illegal in an XML attribute value with '?',
	// mirroring lxml's lossy-but-never-failing serialization mode.
	AttrLXML
	// AttrIgnore writes the value verbatim, even if that produces
	// technically invalid XML.
	AttrIgnore
)

// XMLOptions controls XML serialization and parsing.
type XMLOptions struct {
	// InlineTags names nodes whose whole subtree is rendered on one line.
	InlineTags map[string]bool
	// StringTags names nodes rendered as bare content with no open/close
	// tag at all (used for the synthesized TextTagName wrapper and for any
	// other node the caller wants unwrapped).
	StringTags map[string]bool
	// EmptyTags names nodes always rendered as a self-closing `<tag/>`,
	// regardless of content.
	EmptyTags map[string]bool
	// StrictMode, if true, fails on an unmatched close tag or on a name
	// appearing in both EmptyTags and with non-empty content; if false,
	// repairs these by closing implicitly at EOF and ignoring stray close
	// tags, matching the pack's lenient hand-rolled XML readers.
	StrictMode bool
	// AttrPolicy selects the attribute-value sanitization policy.
	AttrPolicy AttrSanitizePolicy
	// Mapping, if non-nil, receives one entry per node in emission order.
	Mapping *[]XMLSpan
}

// XMLSpan is one entry of the XML round-trip mapping output.
type XMLSpan struct {
	Node                                *Node
	HeadLength, TotalLength, TailLength int
}

// SerializeXML renders n as XML using opts.
func SerializeXML(n *Node, opts XMLOptions) (string, error) {
	var b strings.Builder
	if err := writeXML(&b, n, "", opts); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeXML(b *strings.Builder, n *Node, indent string, opts XMLOptions) error {
	start := b.Len()
	tag := sanitizeTagName(n.Name())

	if opts.StringTags[n.Name()] {
		headLen := 0
		if n.IsLeaf() {
			b.WriteString(escapeXMLText(n.Content()))
		} else {
			for _, c := range n.Children() {
				if err := writeXML(b, c, indent, opts); err != nil {
					return err
				}
			}
		}
		recordXMLSpan(opts.Mapping, n, headLen, b.Len()-start, 0)
		return nil
	}

	hasNoContent := n.IsLeaf() && n.Content() == "" || !n.IsLeaf() && len(n.Children()) == 0
	isEmpty := false
	if opts.EmptyTags[n.Name()] {
		if opts.StrictMode && !hasNoContent {
			return fmt.Errorf("nodetree: %q is declared empty but has content", n.Name())
		}
		isEmpty = true
	}

	attrHead, err := xmlAttrs(n, opts.AttrPolicy)
	if err != nil {
		return err
	}
	if isEmpty {
		fmt.Fprintf(b, "<%s%s/>", tag, attrHead)
		recordXMLSpan(opts.Mapping, n, b.Len()-start, b.Len()-start, 0)
		return nil
	}

	openTag := fmt.Sprintf("<%s%s>", tag, attrHead)
	b.WriteString(openTag)
	headLen := len(openTag)

	if n.IsLeaf() {
		b.WriteString(escapeXMLText(n.Content()))
	} else {
		childIndent := indent
		inline := opts.InlineTags[n.Name()]
		if !inline {
			childIndent = indent + "  "
		}
		for _, c := range n.Children() {
			if !inline {
				b.WriteByte('\n')
				b.WriteString(childIndent)
			}
			if err := writeXML(b, c, childIndent, opts); err != nil {
				return err
			}
		}
		if !inline {
			b.WriteByte('\n')
			b.WriteString(indent)
		}
	}
	closeTag := fmt.Sprintf("</%s>", tag)
	b.WriteString(closeTag)
	recordXMLSpan(opts.Mapping, n, headLen, b.Len()-start, len(closeTag))
	return nil
}

func recordXMLSpan(mapping *[]XMLSpan, n *Node, head, total, tail int) {
	if mapping == nil {
		return
	}
	*mapping = append(*mapping, XMLSpan{Node: n, HeadLength: head, TotalLength: total, TailLength: tail})
}

func xmlAttrs(n *Node, policy AttrSanitizePolicy) (string, error) {
	if n.AttrLen() == 0 {
		return "", nil
	}
	var b strings.Builder
	for _, k := range n.AttrNames() {
		v, _ := n.Attr(k)
		sanitized, err := sanitizeXMLAttrValue(v, policy)
		if err != nil {
			return "", fmt.Errorf("nodetree: attribute %q: %w", k, err)
		}
		fmt.Fprintf(&b, " %s=%q", k, sanitized)
	}
	return b.String(), nil
}

// sanitizeTagName converts an internal node name into an XML-legal tag
// name: an anonymous name (leading ':') is stripped of its colon, given an
// "ANONYMOUS_" prefix, and given a trailing "__" suffix so the mapping is
// unambiguously reversible (§6).
func sanitizeTagName(name string) string {
	if strings.HasPrefix(name, ":") {
		return "ANONYMOUS_" + name[1:] + "__"
	}
	return name
}

// desanitizeTagName is the inverse of sanitizeTagName.
func desanitizeTagName(tag string) string {
	if strings.HasPrefix(tag, "ANONYMOUS_") && strings.HasSuffix(tag, "__") {
		return ":" + strings.TrimSuffix(strings.TrimPrefix(tag, "ANONYMOUS_"), "__")
	}
	return tag
}

// escapeXMLText escapes '&', '<', '>' in text content, skipping sequences
// that are already well-formed entity references.
func escapeXMLText(s string) string {
	var b strings.Builder
	i := 0
	for i < len(s) {
		c := s[i]
		switch c {
		case '&':
			if j := wellFormedEntityEnd(s[i:]); j > 0 {
				b.WriteString(s[i : i+j])
				i += j
				continue
			}
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		default:
			b.WriteByte(c)
		}
		i++
	}
	return b.String()
}

// wellFormedEntityEnd returns the length of a well-formed entity reference
// at the start of s (which must start with '&'), or 0 if none is present.
func wellFormedEntityEnd(s string) int {
	semi := strings.IndexByte(s, ';')
	if semi < 0 || semi > 10 {
		return 0
	}
	name := s[1:semi]
	switch name {
	case "amp", "lt", "gt", "quot", "apos":
		return semi + 1
	}
	if strings.HasPrefix(name, "#") {
		return semi + 1
	}
	return 0
}

func sanitizeXMLAttrValue(s string, policy AttrSanitizePolicy) (string, error) {
	needsEscape := strings.ContainsAny(s, "&<\"")
	switch policy {
	case AttrIgnore:
		return s, nil
	case AttrFail:
		if needsEscape {
			return "", fmt.Errorf("value %q requires escaping and AttrFail policy is set", s)
		}
		return s, nil
	case AttrLXML:
		var b strings.Builder
		for _, r := range s {
			if r < 0x20 && r != '\t' && r != '\n' {
				b.WriteByte('?')
				continue
			}
			b.WriteRune(r)
		}
		return escapeXMLAttrEntities(b.String()), nil
	default: // AttrFix
		return escapeXMLAttrEntities(s), nil
	}
}

func escapeXMLAttrEntities(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	return s
}

// xmlReader is a lenient, hand-rolled XML reader, grounded on the pack's
// flexml/arturoeanton XML readers: it never refuses input outright except
// where opts.StrictMode says to.
type xmlReader struct {
	s    string
	pos  int
	opts XMLOptions
}

// ParseXML parses XML text into a Node tree. Mixed text content becomes
// anonymous children named TextTagName.
func ParseXML(text string, opts XMLOptions) (*Node, error) {
	r := &xmlReader{s: text, opts: opts}
	r.skipProlog()
	n, _, err := r.readElement()
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (r *xmlReader) skipProlog() {
	for {
		r.skipSpace()
		switch {
		case strings.HasPrefix(r.s[r.pos:], "<?"):
			if end := strings.Index(r.s[r.pos:], "?>"); end >= 0 {
				r.pos += end + 2
				continue
			}
			return
		case strings.HasPrefix(r.s[r.pos:], "<!--"):
			r.skipComment()
			continue
		case strings.HasPrefix(r.s[r.pos:], "<!DOCTYPE"):
			if end := strings.IndexByte(r.s[r.pos:], '>'); end >= 0 {
				r.pos += end + 1
				continue
			}
			return
		case strings.HasPrefix(r.s[r.pos:], "<!"):
			if end := strings.IndexByte(r.s[r.pos:], '>'); end >= 0 {
				r.pos += end + 1
				continue
			}
			return
		}
		return
	}
}

func (r *xmlReader) skipSpace() {
	for r.pos < len(r.s) {
		switch r.s[r.pos] {
		case ' ', '\t', '\n', '\r':
			r.pos++
		default:
			return
		}
	}
}

func (r *xmlReader) skipComment() {
	end := strings.Index(r.s[r.pos:], "-->")
	if end < 0 {
		r.pos = len(r.s)
		return
	}
	r.pos += end + 3
}

// readElement reads one element starting at '<', returning the node and
// the tag name it was opened with (for close-tag matching by the caller).
func (r *xmlReader) readElement() (*Node, string, error) {
	if r.pos >= len(r.s) || r.s[r.pos] != '<' {
		return nil, "", fmt.Errorf("nodetree: expected '<' at byte %d", r.pos)
	}
	r.pos++
	tag, err := r.readName()
	if err != nil {
		return nil, "", err
	}
	attrs, err := r.readAttrs()
	if err != nil {
		return nil, "", err
	}
	r.skipSpace()
	if strings.HasPrefix(r.s[r.pos:], "/>") {
		r.pos += 2
		n := Leaf(desanitizeTagName(tag), "")
		if len(attrs) > 0 {
			n.WithAttr(attrs)
		}
		return n, tag, nil
	}
	if r.pos >= len(r.s) || r.s[r.pos] != '>' {
		return nil, "", fmt.Errorf("nodetree: expected '>' closing <%s at byte %d", tag, r.pos)
	}
	r.pos++

	var children []*Node
	var textRun strings.Builder
	flushText := func() {
		if textRun.Len() == 0 {
			return
		}
		children = append(children, Leaf(TextTagName, textRun.String()))
		textRun.Reset()
	}
	for r.pos < len(r.s) {
		if strings.HasPrefix(r.s[r.pos:], "<!--") {
			r.skipComment()
			continue
		}
		if strings.HasPrefix(r.s[r.pos:], "<![CDATA[") {
			end := strings.Index(r.s[r.pos:], "]]>")
			if end < 0 {
				textRun.WriteString(r.s[r.pos+9:])
				r.pos = len(r.s)
				continue
			}
			textRun.WriteString(r.s[r.pos+9 : r.pos+end])
			r.pos += end + 3
			continue
		}
		if strings.HasPrefix(r.s[r.pos:], "</") {
			r.pos += 2
			name, err := r.readName()
			if err != nil {
				return nil, "", err
			}
			r.skipSpace()
			if r.pos < len(r.s) && r.s[r.pos] == '>' {
				r.pos++
			}
			flushText()
			if name == tag {
				n := Branch(desanitizeTagName(tag), children...)
				if len(attrs) > 0 {
					n.WithAttr(attrs)
				}
				return n, tag, nil
			}
			if r.opts.StrictMode {
				return nil, "", fmt.Errorf("nodetree: mismatched close tag </%s>, expected </%s>", name, tag)
			}
			// Lenient: ignore an unmatched close tag and keep reading.
			continue
		}
		if r.pos < len(r.s) && r.s[r.pos] == '<' {
			flushText()
			child, _, err := r.readElement()
			if err != nil {
				return nil, "", err
			}
			children = append(children, child)
			continue
		}
		textRun.WriteString(unescapeXMLText(r.readTextByte()))
	}
	flushText()
	if r.opts.StrictMode {
		return nil, "", fmt.Errorf("nodetree: unterminated element <%s>", tag)
	}
	n := Branch(desanitizeTagName(tag), children...)
	if len(attrs) > 0 {
		n.WithAttr(attrs)
	}
	return n, tag, nil
}

func (r *xmlReader) readTextByte() string {
	if r.pos < len(r.s) && r.s[r.pos] == '&' {
		if end := wellFormedEntityEnd(r.s[r.pos:]); end > 0 {
			s := r.s[r.pos : r.pos+end]
			r.pos += end
			return s
		}
	}
	c := r.s[r.pos]
	r.pos++
	return string(c)
}

func (r *xmlReader) readName() (string, error) {
	start := r.pos
	for r.pos < len(r.s) {
		c := r.s[r.pos]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '>' || c == '/' {
			break
		}
		r.pos++
	}
	if r.pos == start {
		return "", fmt.Errorf("nodetree: expected an element name at byte %d", r.pos)
	}
	return r.s[start:r.pos], nil
}

func (r *xmlReader) readAttrs() (map[string]string, error) {
	var attrs map[string]string
	for {
		r.skipSpace()
		if r.pos >= len(r.s) || r.s[r.pos] == '>' || strings.HasPrefix(r.s[r.pos:], "/>") {
			return attrs, nil
		}
		start := r.pos
		for r.pos < len(r.s) && r.s[r.pos] != '=' && r.s[r.pos] != ' ' && r.s[r.pos] != '>' && r.s[r.pos] != '/' {
			r.pos++
		}
		name := r.s[start:r.pos]
		if name == "" {
			return nil, fmt.Errorf("nodetree: expected an attribute name at byte %d", r.pos)
		}
		r.skipSpace()
		if r.pos >= len(r.s) || r.s[r.pos] != '=' {
			return nil, fmt.Errorf("nodetree: expected '=' after attribute %q", name)
		}
		r.pos++
		r.skipSpace()
		if r.pos >= len(r.s) || (r.s[r.pos] != '"' && r.s[r.pos] != '\'') {
			return nil, fmt.Errorf("nodetree: expected a quoted value for attribute %q", name)
		}
		quote := r.s[r.pos]
		r.pos++
		vstart := r.pos
		for r.pos < len(r.s) && r.s[r.pos] != quote {
			r.pos++
		}
		if r.pos >= len(r.s) {
			return nil, fmt.Errorf("nodetree: unterminated attribute value for %q", name)
		}
		value := unescapeXMLAttr(r.s[vstart:r.pos])
		r.pos++
		if attrs == nil {
			attrs = map[string]string{}
		}
		attrs[name] = value
	}
}

func unescapeXMLText(s string) string {
	return unescapeXMLEntities(s)
}

func unescapeXMLAttr(s string) string {
	return unescapeXMLEntities(s)
}

func unescapeXMLEntities(s string) string {
	if !strings.ContainsRune(s, '&') {
		return s
	}
	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
	)
	return replacer.Replace(s)
}
