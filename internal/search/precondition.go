// Package search implements recipe preconditions. A precondition scans a
// file and reports the IDs of the nodes where it holds; combinators merge
// those sets, and Mark attaches search markers to the surviving nodes.
package search

import (
	"github.com/RoaringBitmap/roaring"
	"github.com/agentic-research/recast/internal/tree"
	"github.com/agentic-research/recast/internal/visit"
)

// Scope says what a precondition's hits refer to.
type Scope uint8

const (
	// NodeScope hits are the matching nodes themselves.
	NodeScope Scope = iota
	// FileScope hits mean "this file qualifies"; they are reported as the root.
	FileScope
)

func (s Scope) String() string {
	if s == FileScope {
		return "file"
	}
	return "node"
}

// Precondition decides where a recipe applies.
type Precondition interface {
	// Scan returns the IDs of the nodes where the condition holds. An empty
	// bitmap means the recipe does not apply to the file.
	Scan(ctx *visit.Context) *roaring.Bitmap
	Scope() Scope
}

func rootOnly(ctx *visit.Context, hit bool) *roaring.Bitmap {
	bm := roaring.New()
	if hit && ctx.File.Root != nil {
		bm.Add(uint32(ctx.File.Root.ID()))
	}
	return bm
}

type and struct{ ps []Precondition }

// And holds where every operand holds. Node-scoped operands intersect;
// once any operand is file-scoped the result is file-scoped and holds when
// every operand found at least one hit.
func And(ps ...Precondition) Precondition { return and{ps} }

func (a and) Scope() Scope { return combinedScope(a.ps) }

func (a and) Scan(ctx *visit.Context) *roaring.Bitmap {
	if len(a.ps) == 0 {
		return rootOnly(ctx, true)
	}
	if a.Scope() == FileScope {
		for _, p := range a.ps {
			if p.Scan(ctx).IsEmpty() {
				return roaring.New()
			}
		}
		return rootOnly(ctx, true)
	}
	acc := a.ps[0].Scan(ctx).Clone()
	for _, p := range a.ps[1:] {
		if acc.IsEmpty() {
			break
		}
		acc.And(p.Scan(ctx))
	}
	return acc
}

type or struct{ ps []Precondition }

// Or holds where any operand holds. Hits are unioned; with a file-scoped
// operand the result collapses to the root.
func Or(ps ...Precondition) Precondition { return or{ps} }

func (o or) Scope() Scope { return combinedScope(o.ps) }

func (o or) Scan(ctx *visit.Context) *roaring.Bitmap {
	acc := roaring.New()
	for _, p := range o.ps {
		acc.Or(p.Scan(ctx))
	}
	if o.Scope() == FileScope {
		return rootOnly(ctx, !acc.IsEmpty())
	}
	return acc
}

type not struct{ p Precondition }

// Not holds for a file exactly when p finds no hit in it. It is always file-scoped.
func Not(p Precondition) Precondition { return not{p} }

func (n not) Scope() Scope { return FileScope }

func (n not) Scan(ctx *visit.Context) *roaring.Bitmap {
	return rootOnly(ctx, n.p.Scan(ctx).IsEmpty())
}

func combinedScope(ps []Precondition) Scope {
	for _, p := range ps {
		if p.Scope() == FileScope {
			return FileScope
		}
	}
	return NodeScope
}

// Mark attaches a search marker for ctx.Recipe to every node whose ID is in
// hits. Nodes already carrying the marker are left as they are.
func Mark(ctx *visit.Context, hits *roaring.Bitmap, description string) *tree.SourceTree {
	if hits.IsEmpty() {
		return ctx.File
	}
	m := tree.SearchResult{Recipe: ctx.Recipe, Description: description}
	v := visit.New("mark")
	for _, k := range tree.Kinds() {
		v.OnKind(k, markFunc(hits, m))
	}
	return v.Apply(ctx)
}

func markFunc(hits *roaring.Bitmap, m tree.Marker) visit.Func {
	return func(c *visit.Cursor, n *tree.Node) *tree.Node {
		n = c.Descend(n)
		if hits.Contains(uint32(n.ID())) {
			n = n.WithMarker(m)
		}
		return n
	}
}

// Found reports whether n carries the search marker of recipe.
func Found(n *tree.Node, recipe string) bool {
	return n.HasMarker(tree.SearchResult{Recipe: recipe}.Key())
}

// collect walks the file and gathers the IDs of nodes satisfying pred.
func collect(ctx *visit.Context, pred func(n *tree.Node) bool) *roaring.Bitmap {
	bm := roaring.New()
	if ctx.File.Root == nil {
		return bm
	}
	tree.Walk(ctx.File.Root, func(stack []*tree.Node) bool {
		if pred(stack[0]) {
			bm.Add(uint32(stack[0].ID()))
		}
		return true
	})
	return bm
}

// Unmark removes ctx.Recipe's search markers from the file.
func Unmark(ctx *visit.Context) *tree.SourceTree {
	key := tree.SearchResult{Recipe: ctx.Recipe}.Key()
	v := visit.New("unmark")
	for _, k := range tree.Kinds() {
		v.OnKind(k, func(c *visit.Cursor, n *tree.Node) *tree.Node {
			return c.Descend(n).WithoutMarker(key)
		})
	}
	return v.Apply(ctx)
}
