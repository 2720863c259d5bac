package tree

import (
	"strings"
	"sync/atomic"
)

// ID identifies a node within one source file. It is assigned when the node
// is created and survives every With* copy. Zero is never a valid ID.
type ID uint32

// IDGen hands out node IDs for one source file. Safe for concurrent use.
type IDGen struct {
	last atomic.Uint32
}

// Next returns a fresh ID.
func (g *IDGen) Next() ID {
	return ID(g.last.Add(1))
}

// Node is an immutable syntax node. Leaves carry source text and the verbatim
// whitespace and comments preceding it; branches carry ordered children.
// Every "modification" returns a new node with the same ID; the receiver is
// never changed, so subtrees may be shared freely between trees.
type Node struct {
	id       ID
	kind     Kind
	syntax   string
	field    string
	prefix   string
	text     string
	children []*Node
	typ      *TypeRef
	method   *MethodRef
	markers  Markers
}

// NewLeaf creates a leaf node.
func NewLeaf(id ID, kind Kind, syntax, text string) *Node {
	return &Node{id: id, kind: kind, syntax: syntax, text: text}
}

// NewBranch creates a branch node owning children.
func NewBranch(id ID, kind Kind, syntax string, children ...*Node) *Node {
	return &Node{id: id, kind: kind, syntax: syntax, children: children}
}

func (n *Node) ID() ID               { return n.id }
func (n *Node) Kind() Kind           { return n.kind }
func (n *Node) Syntax() string       { return n.syntax }
func (n *Node) Field() string        { return n.field }
func (n *Node) Type() *TypeRef       { return n.typ }
func (n *Node) Method() *MethodRef   { return n.method }
func (n *Node) Markers() Markers     { return n.markers }
func (n *Node) IsLeaf() bool         { return len(n.children) == 0 }
func (n *Node) NumChildren() int     { return len(n.children) }
func (n *Node) Child(i int) *Node    { return n.children[i] }
func (n *Node) LeafText() string     { return n.text }
func (n *Node) LeafPrefix() string   { return n.prefix }
func (n *Node) Is(syntax string) bool { return n != nil && n.syntax == syntax }

// Children returns the child slice. Callers must not modify it.
func (n *Node) Children() []*Node { return n.children }

// ChildByField returns the first child stored under a grammar field name.
func (n *Node) ChildByField(field string) *Node {
	for _, c := range n.children {
		if c.field == field {
			return c
		}
	}
	return nil
}

// NamedChildren returns the children that are not tokens.
func (n *Node) NamedChildren() []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.kind != KindToken {
			out = append(out, c)
		}
	}
	return out
}

// IndexOf returns the position of c among n's children, or -1.
func (n *Node) IndexOf(c *Node) int {
	for i, x := range n.children {
		if x == c {
			return i
		}
	}
	return -1
}

func (n *Node) clone() *Node {
	c := *n
	return &c
}

// WithChildren returns n with children replaced. If every child is the same
// reference as before, n itself is returned.
func (n *Node) WithChildren(children []*Node) *Node {
	if sameRefs(n.children, children) {
		return n
	}
	c := n.clone()
	c.children = children
	return c
}

// WithChild returns n with the i-th child replaced.
func (n *Node) WithChild(i int, child *Node) *Node {
	if n.children[i] == child {
		return n
	}
	children := make([]*Node, len(n.children))
	copy(children, n.children)
	children[i] = child
	return n.WithChildren(children)
}

// WithField returns n stored under a different grammar field.
func (n *Node) WithField(field string) *Node {
	if n.field == field {
		return n
	}
	c := n.clone()
	c.field = field
	return c
}

// WithText returns a leaf with different text.
func (n *Node) WithText(text string) *Node {
	if n.text == text {
		return n
	}
	c := n.clone()
	c.text = text
	return c
}

// WithPrefix returns a leaf with different leading whitespace and comments.
func (n *Node) WithPrefix(prefix string) *Node {
	if n.prefix == prefix {
		return n
	}
	c := n.clone()
	c.prefix = prefix
	return c
}

// WithType returns n with a resolved type. Setting an equal type is a no-op.
func (n *Node) WithType(t *TypeRef) *Node {
	if n.typ == t || (n.typ != nil && n.typ.Equal(t)) {
		return n
	}
	c := n.clone()
	c.typ = t
	return c
}

// WithMethod returns n with a resolved method signature. Setting an equal signature is a no-op.
func (n *Node) WithMethod(m *MethodRef) *Node {
	if n.method == m || (n.method != nil && n.method.Equal(m)) {
		return n
	}
	c := n.clone()
	c.method = m
	return c
}

// WithMarker attaches m. Attaching a marker equal to one already present
// returns n itself.
func (n *Node) WithMarker(m Marker) *Node {
	ms, changed := n.markers.With(m)
	if !changed {
		return n
	}
	c := n.clone()
	c.markers = ms
	return c
}

// WithoutMarker removes the marker stored under key.
func (n *Node) WithoutMarker(key string) *Node {
	ms, changed := n.markers.Without(key)
	if !changed {
		return n
	}
	c := n.clone()
	c.markers = ms
	return c
}

// HasMarker reports whether a marker is stored under key.
func (n *Node) HasMarker(key string) bool {
	_, ok := n.markers.Get(key)
	return ok
}

// String prints the subtree including its leading whitespace.
func (n *Node) String() string {
	var b strings.Builder
	n.print(&b)
	return b.String()
}

// Source prints the subtree without its leading whitespace.
func (n *Node) Source() string {
	s := n.String()
	return s[len(LeadingSpace(n)):]
}

func (n *Node) print(b *strings.Builder) {
	if n.IsLeaf() {
		b.WriteString(n.prefix)
		b.WriteString(n.text)
		return
	}
	for _, c := range n.children {
		c.print(b)
	}
}

// FirstLeaf returns the leftmost leaf of n.
func FirstLeaf(n *Node) *Node {
	for !n.IsLeaf() {
		n = n.children[0]
	}
	return n
}

// LeadingSpace returns the whitespace and comments preceding n.
func LeadingSpace(n *Node) string {
	return FirstLeaf(n).prefix
}

// WithLeadingSpace returns n with the prefix of its leftmost leaf replaced,
// rebuilding only the path down to that leaf.
func WithLeadingSpace(n *Node, prefix string) *Node {
	if n.IsLeaf() {
		return n.WithPrefix(prefix)
	}
	return n.WithChild(0, WithLeadingSpace(n.children[0], prefix))
}

func sameRefs(a, b []*Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
