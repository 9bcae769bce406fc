package markup

import (
	"iter"
	"strings"
)

// Node is a generic tag: a lower-cased name, attributes in document order,
// and child tags in document order.
type Node struct {
	Name        string
	Attrs       []Attr
	Children    []*Node
	Pos         Position
	SelfClosing bool
}

// Attr is a single key/value attribute of a [Node].
type Attr struct {
	Key   string
	Value string
	Pos   Position
}

// Attr returns the value of the attribute with the given key.
func (n *Node) Attr(key string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}

	return "", false
}

// HasAttr reports whether the node declares an attribute with the given key.
func (n *Node) HasAttr(key string) bool {
	_, ok := n.Attr(key)

	return ok
}

// All returns an iterator over n and all of its descendants in pre-order.
func (n *Node) All() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		n.walk(yield)
	}
}

func (n *Node) walk(yield func(*Node) bool) bool {
	if !yield(n) {
		return false
	}

	for _, c := range n.Children {
		if !c.walk(yield) {
			return false
		}
	}

	return true
}

// String renders the node and its descendants as compact markup.
// Attribute values are always double-quoted unless they contain a double
// quote, in which case single quotes are used.
func (n *Node) String() string {
	var b strings.Builder

	n.write(&b)

	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	b.WriteByte('<')
	b.WriteString(n.Name)

	for _, a := range n.Attrs {
		b.WriteByte(' ')
		b.WriteString(a.Key)
		b.WriteByte('=')
		b.WriteString(quote(a.Value))
	}

	if len(n.Children) == 0 {
		b.WriteString("/>")

		return
	}

	b.WriteByte('>')

	for _, c := range n.Children {
		c.write(b)
	}

	b.WriteString("</")
	b.WriteString(n.Name)
	b.WriteByte('>')
}

func quote(s string) string {
	if strings.ContainsRune(s, '"') {
		return "'" + s + "'"
	}

	return `"` + s + `"`
}
