// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// node is an XML element with its text and child elements kept in
// document order, so inner text of mixed content (e.g. titles with <i>
// markup) reads the way it does in the source.
type node struct {
	name  string
	attrs []xml.Attr
	parts []part
}

// part is either a run of character data or a child element.
type part struct {
	text  string
	child *node
}

// buildNode reads tokens up to the end element matching start and returns
// the element tree.
func buildNode(dec *xml.Decoder, start xml.StartElement) (*node, error) {
	n := &node{name: start.Name.Local, attrs: start.Attr}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("reading <%s>: %w", n.name, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := buildNode(dec, t)
			if err != nil {
				return nil, err
			}
			n.parts = append(n.parts, part{child: child})
		case xml.CharData:
			n.parts = append(n.parts, part{text: string(t)})
		case xml.EndElement:
			return n, nil
		}
	}
}

// attr returns the value of the named attribute.
func (n *node) attr(name string) string {
	for _, a := range n.attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// children returns the direct child elements with the given name.
func (n *node) children(name string) []*node {
	var out []*node
	for _, p := range n.parts {
		if p.child != nil && p.child.name == name {
			out = append(out, p.child)
		}
	}
	return out
}

// child returns the first direct child element with the given name.
func (n *node) child(name string) *node {
	for _, p := range n.parts {
		if p.child != nil && p.child.name == name {
			return p.child
		}
	}
	return nil
}

// find returns the first descendant (document order) for which match
// returns true, or nil.
func (n *node) find(match func(*node) bool) *node {
	for _, p := range n.parts {
		if p.child == nil {
			continue
		}
		if match(p.child) {
			return p.child
		}
		if found := p.child.find(match); found != nil {
			return found
		}
	}
	return nil
}

// findNamed returns the first descendant with the given name.
func (n *node) findNamed(name string) *node {
	return n.find(func(c *node) bool { return c.name == name })
}

// findPath returns, in document order, every child named childName of every
// descendant named parentName.
func (n *node) findPath(parentName, childName string) []*node {
	var out []*node
	var walk func(*node)
	walk = func(cur *node) {
		for _, p := range cur.parts {
			if p.child == nil {
				continue
			}
			if p.child.name == parentName {
				out = append(out, p.child.children(childName)...)
			}
			walk(p.child)
		}
	}
	walk(n)
	return out
}

// text returns the concatenated character data of the element and all of
// its descendants.
func (n *node) text() string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	n.writeText(&b)
	return b.String()
}

func (n *node) writeText(b *strings.Builder) {
	for _, p := range n.parts {
		if p.child != nil {
			p.child.writeText(b)
			continue
		}
		b.WriteString(p.text)
	}
}

// normalizedText returns text with runs of whitespace collapsed to one space.
func (n *node) normalizedText() string {
	return strings.Join(strings.Fields(n.text()), " ")
}
