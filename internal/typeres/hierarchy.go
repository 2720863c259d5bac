package typeres

import (
	"strings"

	"github.com/agentic-research/recast/internal/tree"
)

const objectType = "java.lang.Object"

var primitiveWidening = map[string][]string{
	"byte":    {"byte", "short", "int", "long", "float", "double"},
	"short":   {"short", "int", "long", "float", "double"},
	"char":    {"char", "int", "long", "float", "double"},
	"int":     {"int", "long", "float", "double"},
	"long":    {"long", "float", "double"},
	"float":   {"float", "double"},
	"double":  {"double"},
	"boolean": {"boolean"},
}

// IsPrimitive reports whether name is a Java primitive type.
func IsPrimitive(name string) bool {
	_, ok := primitiveWidening[name]
	return ok
}

func erasure(name string) string {
	if i := strings.IndexByte(name, '<'); i >= 0 {
		return name[:i]
	}
	return name
}

// Supertypes returns every proper supertype of name, nearest first.
// Unknown types have no supertypes.
func Supertypes(r Resolver, name string) []string {
	var out []string
	seen := map[string]bool{erasure(name): true}
	queue := []string{erasure(name)}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		info, ok := Lookup(r, cur)
		if !ok {
			continue
		}
		for _, s := range info.Supertypes {
			s = erasure(s)
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
				queue = append(queue, s)
			}
		}
	}
	return out
}

// IsSubtype reports whether sub is super or inherits from it. A type the
// resolver does not know is only a subtype of itself.
func IsSubtype(r Resolver, sub, super string) bool {
	sub, super = erasure(sub), erasure(super)
	if sub == "" || super == "" {
		return false
	}
	if sub == super {
		return true
	}
	if super == objectType {
		_, ok := Lookup(r, sub)
		return ok
	}
	for _, s := range Supertypes(r, sub) {
		if s == super {
			return true
		}
	}
	return false
}

// Assignable reports whether a value of type arg may be passed where param is
// declared. An unresolved argument is never assignable.
func Assignable(r Resolver, arg *tree.TypeRef, param tree.TypeRef) bool {
	if arg == nil {
		return false
	}
	if arg.Name == "null" {
		return !IsPrimitive(param.Name)
	}
	if widen, ok := primitiveWidening[arg.Name]; ok {
		for _, w := range widen {
			if w == param.Name {
				return true
			}
		}
		return false
	}
	if IsTypeVariable(param.Name) {
		return true
	}
	return IsSubtype(r, arg.Name, param.Name)
}

// IsTypeVariable treats unqualified, non-primitive names as type parameters.
func IsTypeVariable(name string) bool {
	return !strings.Contains(name, ".") && !IsPrimitive(name) && !strings.HasSuffix(name, "[]")
}

// LookupMethod selects the method name(args...) visible on owner, searching
// supertypes nearest first. It returns the method and its declaring type.
// Ambiguous or unknown calls resolve to nothing.
func LookupMethod(r Resolver, owner, name string, args []*tree.TypeRef) (*MethodInfo, string, bool) {
	type candidate struct {
		m         *MethodInfo
		declaring string
	}
	var cands []candidate
	seen := map[string]bool{}
	types := []string{erasure(owner)}
	if name != tree.Constructor {
		types = append(types, Supertypes(r, owner)...)
		if owner != objectType {
			types = append(types, objectType)
		}
	}
	for _, tn := range types {
		info, ok := Lookup(r, tn)
		if !ok {
			continue
		}
		for i := range info.Methods {
			m := &info.Methods[i]
			if m.Name != name || len(m.Params) != len(args) {
				continue
			}
			sig := signature(m)
			if seen[sig] {
				continue
			}
			seen[sig] = true
			cands = append(cands, candidate{m, info.Name})
		}
	}
	if len(cands) == 1 {
		return cands[0].m, cands[0].declaring, true
	}
	var fit []candidate
	for _, c := range cands {
		ok := true
		for i, p := range c.m.Params {
			if !Assignable(r, args[i], p) {
				ok = false
				break
			}
		}
		if ok {
			fit = append(fit, c)
		}
	}
	if len(fit) == 1 {
		return fit[0].m, fit[0].declaring, true
	}
	for _, c := range fit {
		exact := true
		for i, p := range c.m.Params {
			if args[i].Name != p.Name {
				exact = false
				break
			}
		}
		if exact {
			return c.m, c.declaring, true
		}
	}
	return nil, "", false
}

func signature(m *MethodInfo) string {
	var b strings.Builder
	b.WriteString(m.Name)
	for _, p := range m.Params {
		b.WriteByte(',')
		b.WriteString(p.Name)
	}
	return b.String()
}

// LookupField finds a field visible on owner, nearest declaration first.
func LookupField(r Resolver, owner, name string) (*FieldInfo, string, bool) {
	for _, tn := range append([]string{erasure(owner)}, Supertypes(r, owner)...) {
		info, ok := Lookup(r, tn)
		if !ok {
			continue
		}
		for i := range info.Fields {
			if info.Fields[i].Name == name {
				return &info.Fields[i], info.Name, true
			}
		}
	}
	return nil, "", false
}
