// Package recipe defines a rewrite rule: an optional precondition that
// selects where the rule may act, and a visitor that performs the rewrite.
package recipe

import (
	"github.com/RoaringBitmap/roaring"
	"github.com/agentic-research/recast/internal/search"
	"github.com/agentic-research/recast/internal/tree"
	"github.com/agentic-research/recast/internal/typeres"
	"github.com/agentic-research/recast/internal/visit"
)

// Recipe is a named rewrite rule.
type Recipe struct {
	Name        string
	Description string
	// Precondition selects the nodes or files the visitor may rewrite. A nil
	// precondition selects every file.
	Precondition search.Precondition
	Visitor      *visit.Visitor
}

// Run applies the recipe to one file and reports whether it changed.
//
// The precondition is evaluated first and its hits are marked; the visitor
// then runs over the marked tree and can ask Cursor.Marked where it may act.
// Search markers are removed again before returning. A file the
// precondition rejects, or that the visitor leaves alone, is returned as
// the very same *tree.SourceTree.
func (r *Recipe) Run(types typeres.Resolver, st *tree.SourceTree) (*tree.SourceTree, bool) {
	if st.Root == nil {
		return st, false
	}
	ctx := &visit.Context{Recipe: r.Name, File: st, Types: types}

	pre := r.Precondition
	if pre == nil {
		pre = everywhere{}
	}
	hits := pre.Scan(ctx)
	if hits.IsEmpty() {
		return st, false
	}
	marked := search.Mark(ctx, hits, r.Description)

	out := r.Visitor.Apply(&visit.Context{Recipe: r.Name, File: marked, Types: types})
	if out.Root == marked.Root {
		return st, false
	}
	return search.Unmark(&visit.Context{Recipe: r.Name, File: out, Types: types}), true
}

// everywhere selects every file.
type everywhere struct{}

func (everywhere) Scope() search.Scope { return search.FileScope }

func (everywhere) Scan(ctx *visit.Context) *roaring.Bitmap {
	bm := roaring.New()
	bm.Add(uint32(ctx.File.Root.ID()))
	return bm
}
