// Package xmltree holds the generic element tree the transport hands to the
// record materializer, and the parser capability that produces it.
package xmltree

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/antchfx/xmlquery"
)

// Static errors for err113 compliance.
var (
	ErrNoRootElement = errors.New("document has no root element")
)

// Node is a parsed XML element.
type Node struct {
	// Tag is the element name.
	Tag string
	// Attrs maps attribute names to raw values.
	Attrs map[string]string
	// Children are the child elements in document order.
	Children []*Node
	// Text is the character data before the first child element.
	Text string
}

// HasText reports whether the node's own text is non-empty and not only whitespace.
func (n *Node) HasText() bool {
	return strings.TrimSpace(n.Text) != ""
}

// Child returns the first child with the given tag, or nil.
func (n *Node) Child(tag string) *Node {
	for _, child := range n.Children {
		if child.Tag == tag {
			return child
		}
	}

	return nil
}

// Parser turns a response body into its root element.
type Parser interface {
	Parse(r io.Reader) (*Node, error)
}

// ParserFunc adapts a function to the Parser interface.
type ParserFunc func(r io.Reader) (*Node, error)

// Parse implements Parser.
func (f ParserFunc) Parse(r io.Reader) (*Node, error) {
	return f(r)
}

// NewParser returns the default parser backed by xmlquery.
func NewParser() Parser {
	return ParserFunc(Parse)
}

// Parse reads an XML document and returns its root element.
func Parse(r io.Reader) (*Node, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing XML: %w", err)
	}

	for child := doc.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			return convert(child), nil
		}
	}

	return nil, ErrNoRootElement
}

// ParseString parses an XML document held in a string.
func ParseString(document string) (*Node, error) {
	return Parse(strings.NewReader(document))
}

func convert(element *xmlquery.Node) *Node {
	node := &Node{
		Tag:   element.Data,
		Attrs: make(map[string]string, len(element.Attr)),
	}

	for _, attr := range element.Attr {
		node.Attrs[attr.Name.Local] = attr.Value
	}

	var text strings.Builder

	seenElement := false

	for child := element.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case xmlquery.ElementNode:
			seenElement = true

			node.Children = append(node.Children, convert(child))
		case xmlquery.TextNode, xmlquery.CharDataNode:
			if !seenElement {
				text.WriteString(child.Data)
			}
		default:
		}
	}

	node.Text = text.String()

	return node
}
