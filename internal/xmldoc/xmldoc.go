// Package xmldoc parses XML into a generic document tree. The feed emits
// the same element as a bare node or a repeated sequence depending on
// cardinality, so every accessor coerces to an ordered sequence and every
// lookup is total: a miss anywhere yields an absent value, never a panic.
package xmldoc

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// Node is one element in a parsed document. The node returned by Parse is a
// synthetic document node whose only child is the root element.
type Node struct {
	Name     string
	attrs    map[string]string
	children map[string][]*Node
	text     string
}

// Parse reads one XML document into a tree.
func Parse(r io.Reader) (*Node, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, eris.Wrapf(err, "xmldoc: unsupported charset %q", charset)
		}
		return enc.NewDecoder().Reader(input), nil
	}

	doc := &Node{}
	stack := []*Node{doc}

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "xmldoc: read token")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: t.Name.Local}
			for _, a := range t.Attr {
				if n.attrs == nil {
					n.attrs = make(map[string]string, len(t.Attr))
				}
				n.attrs[a.Name.Local] = a.Value
			}
			parent := stack[len(stack)-1]
			if parent.children == nil {
				parent.children = make(map[string][]*Node)
			}
			parent.children[n.Name] = append(parent.children[n.Name], n)
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			cur := stack[len(stack)-1]
			cur.text += string(t)
		}
	}

	if len(stack) != 1 {
		return nil, eris.New("xmldoc: unbalanced document")
	}
	if len(doc.children) == 0 {
		return nil, eris.New("xmldoc: empty document")
	}
	return doc, nil
}

// All returns the ordered child elements with the given name. It returns an
// empty sequence for a missing name or a nil node.
func (n *Node) All(name string) []*Node {
	if n == nil {
		return nil
	}
	return n.children[name]
}

// First returns the first child element with the given name, or nil.
func (n *Node) First(name string) *Node {
	if n == nil {
		return nil
	}
	if kids := n.children[name]; len(kids) > 0 {
		return kids[0]
	}
	return nil
}

// Attr returns the named attribute, or nil when absent.
func (n *Node) Attr(name string) *string {
	if n == nil || n.attrs == nil {
		return nil
	}
	if v, ok := n.attrs[name]; ok {
		return &v
	}
	return nil
}

// Text returns the node's own character data, trimmed.
func (n *Node) Text() string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.text)
}

// ChildText returns the trimmed text of the first child element with the
// given name, or nil when no such child exists.
func (n *Node) ChildText(name string) *string {
	c := n.First(name)
	if c == nil {
		return nil
	}
	t := c.Text()
	return &t
}
