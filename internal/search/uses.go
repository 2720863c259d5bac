package search

import (
	"path"
	"strings"

	"github.com/RoaringBitmap/roaring"
	"github.com/agentic-research/recast/internal/match"
	"github.com/agentic-research/recast/internal/tree"
	"github.com/agentic-research/recast/internal/visit"
)

type usesType struct{ m match.TypeMatcher }

// UsesType holds for files in which some node's resolved type, or some
// invocation's receiver type, matches.
func UsesType(name string, subtypes bool) Precondition {
	return usesType{match.NewTypeMatcher(name, subtypes)}
}

func (u usesType) Scope() Scope { return FileScope }

func (u usesType) Scan(ctx *visit.Context) *roaring.Bitmap {
	if ctx.File.Root == nil {
		return roaring.New()
	}
	return rootOnly(ctx, u.m.Uses(ctx.Types, ctx.File.Root))
}

type findTypes struct{ m match.TypeMatcher }

// FindTypes holds on every type reference resolving to a matching type.
func FindTypes(name string, subtypes bool) Precondition {
	return findTypes{match.NewTypeMatcher(name, subtypes)}
}

func (f findTypes) Scope() Scope { return NodeScope }

func (f findTypes) Scan(ctx *visit.Context) *roaring.Bitmap {
	return collect(ctx, func(n *tree.Node) bool {
		return n.Kind() == tree.KindType && f.m.MatchesNode(ctx.Types, n)
	})
}

type findMethods struct{ m match.MethodMatcher }

// FindMethods holds on every invocation or constructor call whose resolved
// signature matches m.
func FindMethods(m match.MethodMatcher) Precondition {
	return findMethods{m}
}

func (f findMethods) Scope() Scope { return NodeScope }

func (f findMethods) Scan(ctx *visit.Context) *roaring.Bitmap {
	return collect(ctx, func(n *tree.Node) bool {
		return f.m.MatchesNode(ctx.Types, n)
	})
}

type usesMethod struct{ findMethods }

// UsesMethod holds for files containing at least one invocation matching m.
func UsesMethod(m match.MethodMatcher) Precondition {
	return usesMethod{findMethods{m}}
}

func (u usesMethod) Scope() Scope { return FileScope }

func (u usesMethod) Scan(ctx *visit.Context) *roaring.Bitmap {
	return rootOnly(ctx, !u.findMethods.Scan(ctx).IsEmpty())
}

type sourcePath struct{ pattern string }

// HasSourcePath holds for files whose path matches a path.Match pattern.
// A pattern without a slash is matched against the base name.
func HasSourcePath(pattern string) Precondition {
	return sourcePath{pattern}
}

func (s sourcePath) Scope() Scope { return FileScope }

func (s sourcePath) Scan(ctx *visit.Context) *roaring.Bitmap {
	p := ctx.File.Path
	if !strings.Contains(s.pattern, "/") {
		p = path.Base(p)
	}
	ok, err := path.Match(s.pattern, p)
	return rootOnly(ctx, err == nil && ok)
}

type nodePred struct {
	pred func(ctx *visit.Context, n *tree.Node) bool
}

// Where is a node-scoped precondition over an arbitrary predicate.
func Where(pred func(ctx *visit.Context, n *tree.Node) bool) Precondition {
	return nodePred{pred}
}

func (p nodePred) Scope() Scope { return NodeScope }

func (p nodePred) Scan(ctx *visit.Context) *roaring.Bitmap {
	return collect(ctx, func(n *tree.Node) bool { return p.pred(ctx, n) })
}
