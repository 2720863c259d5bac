// Package visit implements the rewrite protocol over immutable trees.
//
// A Visitor maps a node to its replacement. Overrides are registered per
// grammar type or per Kind; every other node gets the default recursion,
// which visits each child and rebuilds the parent only when some child came
// back as a different reference. A visitor that changes nothing therefore
// returns the very same root it was given.
package visit

import (
	"github.com/agentic-research/recast/internal/tree"
	"github.com/agentic-research/recast/internal/typeres"
)

// Func transforms n. Returning n unchanged means "no change"; returning nil
// deletes n from its parent.
type Func func(c *Cursor, n *tree.Node) *tree.Node

// Context is the per-file environment a visitor runs in.
type Context struct {
	// Recipe names the recipe being applied, for markers.
	Recipe string
	File   *tree.SourceTree
	// Types is the shared read-only type service. May be nil.
	Types typeres.Resolver
}

// IDs returns the generator new nodes in this file draw IDs from.
func (c *Context) IDs() *tree.IDGen { return c.File.IDs }

// Visitor is a set of overrides plus the default recursion.
type Visitor struct {
	Name     string
	bySyntax map[string]Func
	byKind   map[tree.Kind]Func
}

// New returns a visitor with no overrides.
func New(name string) *Visitor {
	return &Visitor{
		Name:     name,
		bySyntax: make(map[string]Func),
		byKind:   make(map[tree.Kind]Func),
	}
}

// On registers fn for nodes of a grammar type, e.g. "method_invocation".
// Syntax overrides win over kind overrides.
func (v *Visitor) On(syntax string, fn Func) *Visitor {
	v.bySyntax[syntax] = fn
	return v
}

// OnKind registers fn for every node of kind k.
func (v *Visitor) OnKind(k tree.Kind, fn Func) *Visitor {
	v.byKind[k] = fn
	return v
}

// Apply visits the whole file and returns the resulting file. If nothing
// changed the input file itself is returned.
func (v *Visitor) Apply(ctx *Context) *tree.SourceTree {
	root := v.Run(ctx, ctx.File.Root)
	return ctx.File.WithRoot(root)
}

// Run visits the subtree n within ctx.
func (v *Visitor) Run(ctx *Context, n *tree.Node) *tree.Node {
	c := &Cursor{Context: ctx, v: v}
	return c.Visit(n)
}

// Cursor tracks the position of the node being visited.
type Cursor struct {
	*Context
	v     *Visitor
	stack []*tree.Node
}

// Visit dispatches n to its override, or to Descend.
func (c *Cursor) Visit(n *tree.Node) *tree.Node {
	if n == nil {
		return nil
	}
	c.stack = append(c.stack, n)
	defer func() { c.stack = c.stack[:len(c.stack)-1] }()

	if fn, ok := c.v.bySyntax[n.Syntax()]; ok {
		return fn(c, n)
	}
	switch k := n.Kind(); k {
	case tree.KindFile, tree.KindDeclaration, tree.KindStatement, tree.KindExpression,
		tree.KindType, tree.KindName, tree.KindLiteral, tree.KindToken, tree.KindOther:
		if fn, ok := c.v.byKind[k]; ok {
			return fn(c, n)
		}
		return c.Descend(n)
	default:
		panic("visit: node of invalid kind " + k.String())
	}
}

// Descend visits the children of n and returns n rebuilt with the results.
// If no child changed, n itself is returned.
func (c *Cursor) Descend(n *tree.Node) *tree.Node {
	if n.IsLeaf() {
		return n
	}
	children := n.Children()
	var out []*tree.Node
	for i, child := range children {
		got := c.Visit(child)
		if got == child && out == nil {
			continue
		}
		if out == nil {
			out = make([]*tree.Node, i, len(children))
			copy(out, children[:i])
		}
		if got != nil {
			out = append(out, got.WithField(child.Field()))
		}
	}
	if out == nil {
		return n
	}
	return n.WithChildren(out)
}

// Parent returns the parent of the node being visited, or nil at the root.
func (c *Cursor) Parent() *tree.Node {
	if len(c.stack) < 2 {
		return nil
	}
	return c.stack[len(c.stack)-2]
}

// Ancestors returns the enclosing nodes, innermost first, excluding the
// node being visited.
func (c *Cursor) Ancestors() []*tree.Node {
	out := make([]*tree.Node, 0, len(c.stack))
	for i := len(c.stack) - 2; i >= 0; i-- {
		out = append(out, c.stack[i])
	}
	return out
}

// Enclosing returns the nearest ancestor of the given grammar type.
func (c *Cursor) Enclosing(syntax string) *tree.Node {
	for i := len(c.stack) - 2; i >= 0; i-- {
		if c.stack[i].Syntax() == syntax {
			return c.stack[i]
		}
	}
	return nil
}

// Marked reports whether the recipe's search marker is on n or, for
// file-scoped preconditions, on the file root.
func (c *Cursor) Marked(n *tree.Node) bool {
	key := tree.SearchResult{Recipe: c.Recipe}.Key()
	if n.HasMarker(key) {
		return true
	}
	return c.File.Root != nil && c.File.Root.HasMarker(key)
}

// Diagnose attaches an unsafe-rewrite diagnostic to n instead of rewriting it.
func (c *Cursor) Diagnose(n *tree.Node, msg string) *tree.Node {
	return n.WithMarker(tree.Diagnostic{Recipe: c.Recipe, Kind: tree.UnsafeRewrite, Message: msg})
}

// Unresolved marks n as skipped because something it depends on could not
// be resolved.
func (c *Cursor) Unresolved(n *tree.Node, msg string) *tree.Node {
	return n.WithMarker(tree.Diagnostic{Recipe: c.Recipe, Kind: tree.UnresolvedReference, Message: msg})
}
