package tree

import "strings"

// TypeRef is a resolved type: a fully-qualified name plus generic arguments.
// A nil *TypeRef means the type could not be resolved.
type TypeRef struct {
	Name string
	Args []TypeRef
}

// Constructor is the method name used for constructor MethodRefs.
const Constructor = "<constructor>"

// MethodRef is the resolved signature of an invocation or constructor call.
// Owner is the static receiver type; Declaring is where the method was found.
type MethodRef struct {
	Owner     TypeRef
	Declaring string
	Name      string
	Params    []TypeRef
	Return    *TypeRef
	Static    bool
}

// ParseTypeRef parses a type name such as "java.util.Map<java.lang.String, java.lang.Integer>".
// Array suffixes are kept in the name.
func ParseTypeRef(s string) TypeRef {
	t, _ := parseTypeRef(strings.TrimSpace(s))
	return t
}

func parseTypeRef(s string) (TypeRef, string) {
	i := strings.IndexAny(s, "<,>")
	if i < 0 {
		return TypeRef{Name: strings.TrimSpace(s)}, ""
	}
	t := TypeRef{Name: strings.TrimSpace(s[:i])}
	if s[i] != '<' {
		return t, s[i:]
	}
	rest := s[i+1:]
	for {
		var arg TypeRef
		arg, rest = parseTypeRef(strings.TrimSpace(rest))
		t.Args = append(t.Args, arg)
		rest = strings.TrimSpace(rest)
		if rest == "" {
			return t, ""
		}
		if rest[0] == ',' {
			rest = rest[1:]
			continue
		}
		// '>'
		rest = rest[1:]
		if strings.HasPrefix(strings.TrimSpace(rest), "[]") {
			t.Name += "[]"
			rest = strings.TrimPrefix(strings.TrimSpace(rest), "[]")
		}
		return t, rest
	}
}

func (t *TypeRef) String() string {
	if t == nil {
		return "<unresolved>"
	}
	if len(t.Args) == 0 {
		return t.Name
	}
	var b strings.Builder
	b.WriteString(t.Name)
	b.WriteByte('<')
	for i := range t.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(t.Args[i].String())
	}
	b.WriteByte('>')
	return b.String()
}

// Equal reports whether t and o denote the same type. Two unresolved types are never equal.
func (t *TypeRef) Equal(o *TypeRef) bool {
	if t == nil || o == nil {
		return false
	}
	if t.Name != o.Name || len(t.Args) != len(o.Args) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equal(&o.Args[i]) {
			return false
		}
	}
	return true
}

// Simple returns the unqualified name, e.g. "Map" for "java.util.Map".
func (t *TypeRef) Simple() string {
	return SimpleName(t.Name)
}

// Package returns the package part of the name, e.g. "java.util" for "java.util.Map".
func (t *TypeRef) Package() string {
	if i := strings.LastIndexByte(t.Name, '.'); i >= 0 {
		return t.Name[:i]
	}
	return ""
}

// SimpleName strips the package qualifier from a dotted name.
func SimpleName(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

func (m *MethodRef) String() string {
	if m == nil {
		return "<unresolved>"
	}
	var b strings.Builder
	b.WriteString(m.Owner.String())
	b.WriteByte(' ')
	b.WriteString(m.Name)
	b.WriteByte('(')
	for i := range m.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(m.Params[i].String())
	}
	b.WriteByte(')')
	return b.String()
}

// Equal reports whether m and o are the same resolved signature.
func (m *MethodRef) Equal(o *MethodRef) bool {
	if m == nil || o == nil {
		return false
	}
	if m.Name != o.Name || m.Declaring != o.Declaring || m.Static != o.Static ||
		!m.Owner.Equal(&o.Owner) || len(m.Params) != len(o.Params) {
		return false
	}
	for i := range m.Params {
		if !m.Params[i].Equal(&o.Params[i]) {
			return false
		}
	}
	if (m.Return == nil) != (o.Return == nil) {
		return false
	}
	return m.Return == nil || m.Return.Equal(o.Return)
}
