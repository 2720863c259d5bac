// Package typeres answers type questions for rewrite recipes: what a
// fully-qualified type declares, whether one type is a subtype of another,
// and which overload an invocation selects. Every Resolver is read-only
// once built and safe for concurrent use by many workers.
package typeres

import (
	"errors"

	"github.com/agentic-research/recast/api"
	"github.com/agentic-research/recast/internal/tree"
)

// ErrNotFound reports a type absent from an index.
var ErrNotFound = errors.New("type not found")

// TypeInfo is the resolved declaration of one type.
type TypeInfo struct {
	Name       string
	Kind       string
	Supertypes []string
	Methods    []MethodInfo
	Fields     []FieldInfo
}

// MethodInfo is a method or constructor declaration.
type MethodInfo struct {
	Name   string
	Params []tree.TypeRef
	Return *tree.TypeRef
	Static bool
}

// FieldInfo is a field declaration.
type FieldInfo struct {
	Name   string
	Type   tree.TypeRef
	Static bool
}

// IsInterface reports whether the type is an interface.
func (t *TypeInfo) IsInterface() bool { return t.Kind == "interface" }

// Resolver looks up type declarations by fully-qualified name.
type Resolver interface {
	Type(name string) (*TypeInfo, bool)
}

// FromDecl converts a classpath declaration.
func FromDecl(d api.TypeDecl) *TypeInfo {
	info := &TypeInfo{
		Name:       d.Name,
		Kind:       d.Kind,
		Supertypes: append([]string(nil), d.Supertypes...),
	}
	if info.Kind == "" {
		info.Kind = "class"
	}
	for _, m := range d.Methods {
		mi := MethodInfo{Name: m.Name, Static: m.Static}
		for _, p := range m.Params {
			mi.Params = append(mi.Params, tree.ParseTypeRef(p))
		}
		if m.Returns != "" && m.Returns != "void" {
			ret := tree.ParseTypeRef(m.Returns)
			mi.Return = &ret
		}
		info.Methods = append(info.Methods, mi)
	}
	for _, f := range d.Fields {
		info.Fields = append(info.Fields, FieldInfo{Name: f.Name, Type: tree.ParseTypeRef(f.Type), Static: f.Static})
	}
	return info
}

// Index is an in-memory Resolver. It is immutable after construction.
type Index struct {
	types map[string]*TypeInfo
}

// NewIndex builds an index over a classpath description.
func NewIndex(cp *api.Classpath) *Index {
	ix := &Index{types: make(map[string]*TypeInfo)}
	if cp == nil {
		return ix
	}
	for _, d := range cp.Types {
		ix.types[d.Name] = FromDecl(d)
	}
	return ix
}

// NewIndexOf builds an index over already-converted declarations.
func NewIndexOf(infos []*TypeInfo) *Index {
	ix := &Index{types: make(map[string]*TypeInfo, len(infos))}
	for _, t := range infos {
		ix.types[t.Name] = t
	}
	return ix
}

func (ix *Index) Type(name string) (*TypeInfo, bool) {
	t, ok := ix.types[name]
	return t, ok
}

// Len returns the number of indexed types.
func (ix *Index) Len() int { return len(ix.types) }

type chain []Resolver

// Chain consults resolvers in order; the first one that knows a type wins.
// Nil resolvers are skipped.
func Chain(rs ...Resolver) Resolver {
	var c chain
	for _, r := range rs {
		if r != nil {
			c = append(c, r)
		}
	}
	return c
}

func (c chain) Type(name string) (*TypeInfo, bool) {
	for _, r := range c {
		if t, ok := r.Type(name); ok {
			return t, true
		}
	}
	return nil, false
}

// Lookup is Type with a nil-safe resolver.
func Lookup(r Resolver, name string) (*TypeInfo, bool) {
	if r == nil || name == "" {
		return nil, false
	}
	return r.Type(erasure(name))
}
