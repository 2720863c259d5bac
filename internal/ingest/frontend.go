package ingest

import (
	"context"

	"github.com/agentic-research/recast/internal/tree"
	"github.com/agentic-research/recast/internal/typeres"
)

// Frontend bundles parsing and attribution behind one type service. The
// types a run's own sources declare are layered over the base classpath.
type Frontend struct {
	base  typeres.Resolver
	types typeres.Resolver
}

// NewFrontend returns a frontend resolving against base, which may be nil.
func NewFrontend(base typeres.Resolver) *Frontend {
	return &Frontend{base: base, types: base}
}

// Parse parses one file.
func (f *Frontend) Parse(ctx context.Context, path string, text []byte) (*tree.SourceTree, error) {
	return Parse(ctx, path, text)
}

// Declare registers the types declared by trees. It must be called before
// the trees are shared between workers.
func (f *Frontend) Declare(trees []*tree.SourceTree) {
	var decls []*typeres.TypeInfo
	for _, st := range trees {
		if st == nil {
			continue
		}
		decls = append(decls, Declarations(Attribute(st, f.base))...)
	}
	if len(decls) == 0 {
		f.types = f.base
		return
	}
	f.types = typeres.Chain(typeres.NewIndexOf(decls), f.base)
}

// Attribute attributes st against the current type service.
func (f *Frontend) Attribute(st *tree.SourceTree) *tree.SourceTree {
	return Attribute(st, f.types)
}

// Types returns the current type service.
func (f *Frontend) Types() typeres.Resolver { return f.types }
