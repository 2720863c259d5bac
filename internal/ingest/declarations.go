package ingest

import (
	"github.com/agentic-research/recast/internal/tree"
	"github.com/agentic-research/recast/internal/typeres"
)

// Declarations lists the types an attributed Java file declares, so that
// code elsewhere in the same run can resolve against them.
func Declarations(st *tree.SourceTree) []*typeres.TypeInfo {
	if st.Language != "java" || st.Root == nil {
		return nil
	}
	pkg := ""
	if p := childBySyntax(st.Root, "package_declaration"); p != nil {
		if name := nameChild(p); name != nil {
			pkg = compact(name.Source())
		}
	}
	var out []*typeres.TypeInfo
	collectDecls(st.Root, pkg, "", &out)
	return out
}

func collectDecls(n *tree.Node, pkg, outer string, out *[]*typeres.TypeInfo) {
	for _, c := range n.Children() {
		if !isTypeDecl(c.Syntax()) {
			collectDecls(c, pkg, outer, out)
			continue
		}
		name := c.ChildByField("name")
		if name == nil {
			continue
		}
		fqn := name.LeafText()
		switch {
		case outer != "":
			fqn = outer + "." + fqn
		case pkg != "":
			fqn = pkg + "." + fqn
		}
		*out = append(*out, declaration(c, fqn))
		if body := c.ChildByField("body"); body != nil {
			collectDecls(body, pkg, fqn, out)
		}
	}
}

func declaration(decl *tree.Node, fqn string) *typeres.TypeInfo {
	info := &typeres.TypeInfo{Name: fqn, Kind: "class"}
	switch decl.Syntax() {
	case "interface_declaration", "annotation_type_declaration":
		info.Kind = "interface"
	case "enum_declaration":
		info.Kind = "enum"
	case "record_declaration":
		info.Kind = "record"
	}
	if sc := decl.ChildByField("superclass"); sc != nil {
		info.Supertypes = append(info.Supertypes, typeNames(sc)...)
	}
	for _, c := range decl.Children() {
		if c.Is("super_interfaces") || c.Is("extends_interfaces") {
			info.Supertypes = append(info.Supertypes, typeNames(c)...)
		}
	}
	body := decl.ChildByField("body")
	if body == nil {
		return info
	}
	members := body.Children()
	if body.Is("enum_body") {
		members = nil
		for _, c := range body.Children() {
			switch c.Syntax() {
			case "enum_constant":
				if name := c.ChildByField("name"); name != nil {
					info.Fields = append(info.Fields, typeres.FieldInfo{
						Name: name.LeafText(), Type: tree.TypeRef{Name: fqn}, Static: true,
					})
				}
			case "enum_body_declarations":
				members = append(members, c.Children()...)
			}
		}
	}
	for _, m := range members {
		switch m.Syntax() {
		case "method_declaration":
			name := m.ChildByField("name")
			if name == nil {
				continue
			}
			mi := typeres.MethodInfo{
				Name:   name.LeafText(),
				Params: paramTypes(m.ChildByField("parameters")),
				Static: hasModifier(m, "static"),
			}
			if rt := m.ChildByField("type"); rt != nil && rt.LeafText() != "void" {
				mi.Return = rt.Type()
			}
			info.Methods = append(info.Methods, mi)
		case "constructor_declaration":
			info.Methods = append(info.Methods, typeres.MethodInfo{
				Name:   tree.Constructor,
				Params: paramTypes(m.ChildByField("parameters")),
			})
		case "field_declaration", "constant_declaration":
			t := typeOf(m.ChildByField("type"))
			if t == nil {
				continue
			}
			static := m.Is("constant_declaration") || hasModifier(m, "static")
			for _, d := range m.Children() {
				if d.Is("variable_declarator") {
					if name := d.ChildByField("name"); name != nil {
						info.Fields = append(info.Fields, typeres.FieldInfo{Name: name.LeafText(), Type: *t, Static: static})
					}
				}
			}
		}
	}
	return info
}

// typeNames collects the resolved names of the types listed in an
// extends or implements clause.
func typeNames(n *tree.Node) []string {
	var out []string
	tree.Walk(n, func(stack []*tree.Node) bool {
		c := stack[0]
		if c != n && c.Kind() == tree.KindType {
			if t := c.Type(); t != nil {
				out = append(out, t.Name)
			}
			return false
		}
		return true
	})
	return out
}

// paramTypes returns the declared parameter types. Unresolved parameters
// are recorded as java.lang.Object so that arity still lines up.
func paramTypes(params *tree.Node) []tree.TypeRef {
	if params == nil {
		return nil
	}
	var out []tree.TypeRef
	for _, p := range params.Children() {
		var t *tree.TypeRef
		switch p.Syntax() {
		case "formal_parameter":
			t = typeOf(p.ChildByField("type"))
		case "spread_parameter":
			for _, c := range p.NamedChildren() {
				if c.Kind() == tree.KindType {
					if el := c.Type(); el != nil {
						t = &tree.TypeRef{Name: el.Name + "[]"}
					}
					break
				}
			}
		default:
			continue
		}
		if t == nil {
			t = &tree.TypeRef{Name: "java.lang.Object"}
		}
		out = append(out, *t)
	}
	return out
}

func hasModifier(decl *tree.Node, mod string) bool {
	mods := childBySyntax(decl, "modifiers")
	if mods == nil {
		return false
	}
	for _, c := range mods.Children() {
		if c.LeafText() == mod {
			return true
		}
	}
	return false
}

func typeOf(n *tree.Node) *tree.TypeRef {
	if n == nil {
		return nil
	}
	return n.Type()
}
