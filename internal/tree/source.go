package tree

import "strings"

// SourceTree is one parsed source file.
type SourceTree struct {
	Path     string
	Language string
	Root     *Node
	// EOF holds the whitespace and comments after the last leaf.
	EOF string
	// Markers are file-level markers such as validation failures.
	Markers Markers
	IDs     *IDGen
}

// WithRoot returns a copy of st with a different root. If root is the current
// root, st itself is returned.
func (st *SourceTree) WithRoot(root *Node) *SourceTree {
	if st.Root == root {
		return st
	}
	c := *st
	c.Root = root
	return &c
}

// WithMarker attaches a file-level marker.
func (st *SourceTree) WithMarker(m Marker) *SourceTree {
	ms, changed := st.Markers.With(m)
	if !changed {
		return st
	}
	c := *st
	c.Markers = ms
	return &c
}

// Print renders the file. Regions no recipe touched come out byte-for-byte
// as they were read.
func (st *SourceTree) Print() string {
	var b strings.Builder
	if st.Root != nil {
		st.Root.print(&b)
	}
	b.WriteString(st.EOF)
	return b.String()
}

// Walk calls fn for every node of the subtree in pre-order. stack[0] is the
// current node, stack[1] its parent, and so on. Returning false skips the
// node's children.
func Walk(n *Node, fn func(stack []*Node) bool) {
	var stack []*Node
	var walk func(*Node)
	walk = func(n *Node) {
		stack = append([]*Node{n}, stack...)
		if fn(stack) {
			for _, c := range n.children {
				walk(c)
			}
		}
		stack = stack[1:]
	}
	walk(n)
}

// Find returns the first node in pre-order for which pred holds.
func Find(n *Node, pred func(*Node) bool) *Node {
	var found *Node
	Walk(n, func(stack []*Node) bool {
		if found != nil {
			return false
		}
		if pred(stack[0]) {
			found = stack[0]
			return false
		}
		return true
	})
	return found
}

// FindAll returns every node in pre-order for which pred holds.
func FindAll(n *Node, pred func(*Node) bool) []*Node {
	var out []*Node
	Walk(n, func(stack []*Node) bool {
		if pred(stack[0]) {
			out = append(out, stack[0])
		}
		return true
	})
	return out
}

// BySyntax is a Find predicate matching a grammar node type.
func BySyntax(syntax string) func(*Node) bool {
	return func(n *Node) bool { return n.syntax == syntax }
}

// Span locates a node in the printed file by byte offsets, excluding its
// leading whitespace.
type Span struct {
	Start, End int
}

// Spans computes the byte span of every node in the file.
func (st *SourceTree) Spans() map[ID]Span {
	spans := make(map[ID]Span)
	off := 0
	var walk func(*Node) (int, int)
	walk = func(n *Node) (int, int) {
		if n.IsLeaf() {
			off += len(n.prefix)
			start := off
			off += len(n.text)
			spans[n.id] = Span{start, off}
			return start, off
		}
		start, end := -1, off
		for _, c := range n.children {
			s, e := walk(c)
			if start < 0 {
				start = s
			}
			end = e
		}
		if start < 0 {
			start = off
		}
		spans[n.id] = Span{start, end}
		return start, end
	}
	if st.Root != nil {
		walk(st.Root)
	}
	return spans
}
