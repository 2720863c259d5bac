// Package match decides whether resolved types and method signatures match a
// pattern. Matchers only see resolved information: a node whose type or
// method could not be resolved never matches.
package match

import (
	"github.com/agentic-research/recast/internal/tree"
	"github.com/agentic-research/recast/internal/typeres"
)

// Any matches every resolved type.
const Any = "*"

// TypeMatcher matches a fully-qualified type, optionally with its subtypes.
type TypeMatcher struct {
	Name     string
	Subtypes bool
}

// NewTypeMatcher returns a matcher for name. With subtypes set, types that
// the resolver proves to extend or implement name match too.
func NewTypeMatcher(name string, subtypes bool) TypeMatcher {
	return TypeMatcher{Name: name, Subtypes: subtypes}
}

// Matches reports whether t matches. An unresolved t never matches.
func (m TypeMatcher) Matches(r typeres.Resolver, t *tree.TypeRef) bool {
	if t == nil || t.Name == "" {
		return false
	}
	if m.Name == Any || t.Name == m.Name {
		return true
	}
	return m.Subtypes && typeres.IsSubtype(r, t.Name, m.Name)
}

// MatchesNode reports whether the resolved type of n matches.
func (m TypeMatcher) MatchesNode(r typeres.Resolver, n *tree.Node) bool {
	return n != nil && m.Matches(r, n.Type())
}

// Uses reports whether any node under n has a type or method owner matching m.
func (m TypeMatcher) Uses(r typeres.Resolver, n *tree.Node) bool {
	return tree.Find(n, func(x *tree.Node) bool {
		if m.Matches(r, x.Type()) {
			return true
		}
		if mr := x.Method(); mr != nil {
			return m.Matches(r, &mr.Owner)
		}
		return false
	}) != nil
}

func (m TypeMatcher) String() string {
	if m.Subtypes {
		return m.Name + "+"
	}
	return m.Name
}
