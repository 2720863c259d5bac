package ingest

import (
	"strings"

	"github.com/agentic-research/recast/internal/tree"
	"github.com/agentic-research/recast/internal/typeres"
	"github.com/agentic-research/recast/internal/visit"
)

// javaLang lists java.lang types resolvable without a classpath entry.
var javaLang = map[string]bool{
	"Object": true, "String": true, "CharSequence": true, "StringBuilder": true,
	"Integer": true, "Long": true, "Short": true, "Byte": true, "Character": true,
	"Boolean": true, "Double": true, "Float": true, "Number": true, "Void": true,
	"Math": true, "System": true, "Thread": true, "Runnable": true, "Class": true,
	"Iterable": true, "Comparable": true, "AutoCloseable": true, "Enum": true, "Record": true,
	"Throwable": true, "Exception": true, "RuntimeException": true, "Error": true,
	"IllegalArgumentException": true, "IllegalStateException": true,
	"NullPointerException": true, "UnsupportedOperationException": true,
	"Override": true, "Deprecated": true, "SuppressWarnings": true, "FunctionalInterface": true,
}

// Attribute resolves the types of a Java file's type references and
// expressions, and the signatures of its invocations and constructor calls,
// against r. Anything that cannot be resolved is left without a type.
// Attributing an already attributed, unchanged file returns it as is.
// Files in other languages are returned unchanged.
func Attribute(st *tree.SourceTree, r typeres.Resolver) *tree.SourceTree {
	if st.Language != "java" || st.Root == nil {
		return st
	}
	a := newAttributor(st.Root, r)
	return a.visitor().Apply(&visit.Context{File: st, Types: r})
}

type classScope struct {
	name  string
	super *tree.TypeRef
}

type attributor struct {
	types           typeres.Resolver
	pkg             string
	imports         map[string]string // simple name -> fully-qualified name
	wildcards       []string
	staticMembers   map[string]string // member name -> owner type
	staticWildcards []string
	local           map[string]string // types declared in this file
	scopes          []map[string]*tree.TypeRef
	classes         []*classScope
}

func newAttributor(root *tree.Node, r typeres.Resolver) *attributor {
	a := &attributor{
		types:         r,
		imports:       make(map[string]string),
		staticMembers: make(map[string]string),
		local:         make(map[string]string),
	}
	for _, c := range root.Children() {
		switch c.Syntax() {
		case "package_declaration":
			if name := nameChild(c); name != nil {
				a.pkg = compact(name.Source())
			}
		case "import_declaration":
			a.addImport(c)
		}
	}
	a.scanTypes(root, "")
	return a
}

func (a *attributor) addImport(n *tree.Node) {
	name := nameChild(n)
	if name == nil {
		return
	}
	fqn := compact(name.Source())
	static := childBySyntax(n, "static") != nil
	wildcard := childBySyntax(n, "asterisk") != nil
	switch {
	case static && wildcard:
		a.staticWildcards = append(a.staticWildcards, fqn)
	case static:
		if i := strings.LastIndexByte(fqn, '.'); i > 0 {
			a.staticMembers[fqn[i+1:]] = fqn[:i]
		}
	case wildcard:
		a.wildcards = append(a.wildcards, fqn)
	default:
		a.imports[tree.SimpleName(fqn)] = fqn
	}
}

func (a *attributor) scanTypes(n *tree.Node, outer string) {
	for _, c := range n.Children() {
		if !isTypeDecl(c.Syntax()) {
			a.scanTypes(c, outer)
			continue
		}
		name := c.ChildByField("name")
		if name == nil {
			a.scanTypes(c, outer)
			continue
		}
		fqn := a.qualify(outer, name.LeafText())
		if _, dup := a.local[name.LeafText()]; !dup {
			a.local[name.LeafText()] = fqn
		}
		a.scanTypes(c, fqn)
	}
}

func (a *attributor) qualify(outer, simple string) string {
	switch {
	case outer != "":
		return outer + "." + simple
	case a.pkg != "":
		return a.pkg + "." + simple
	}
	return simple
}

func (a *attributor) known(fqn string) bool {
	for _, l := range a.local {
		if l == fqn {
			return true
		}
	}
	_, ok := typeres.Lookup(a.types, fqn)
	return ok
}

// resolveSimple resolves an unqualified type name the way Java scoping does:
// types declared in the file, single-type imports, the package, on-demand
// imports, then java.lang.
func (a *attributor) resolveSimple(name string) *tree.TypeRef {
	if name == "" || name == "var" {
		return nil
	}
	if typeres.IsPrimitive(name) {
		return &tree.TypeRef{Name: name}
	}
	if fqn, ok := a.local[name]; ok {
		return &tree.TypeRef{Name: fqn}
	}
	if fqn, ok := a.imports[name]; ok {
		return &tree.TypeRef{Name: fqn}
	}
	if a.pkg != "" && a.known(a.pkg+"."+name) {
		return &tree.TypeRef{Name: a.pkg + "." + name}
	}
	for _, w := range a.wildcards {
		if a.known(w + "." + name) {
			return &tree.TypeRef{Name: w + "." + name}
		}
	}
	if javaLang[name] || a.known("java.lang."+name) {
		return &tree.TypeRef{Name: "java.lang." + name}
	}
	return nil
}

// resolveQualified resolves a dotted type name. With lenient set, a name
// that is syntactically fully qualified is accepted as is.
func (a *attributor) resolveQualified(name string, lenient bool) *tree.TypeRef {
	first, rest, dotted := strings.Cut(name, ".")
	if !dotted {
		return a.resolveSimple(name)
	}
	if t := a.resolveSimple(first); t != nil && !typeres.IsPrimitive(t.Name) {
		nested := t.Name + "." + rest
		if lenient || a.known(nested) {
			return &tree.TypeRef{Name: nested}
		}
	}
	if a.known(name) {
		return &tree.TypeRef{Name: name}
	}
	if lenient && first != "" && first[0] >= 'a' && first[0] <= 'z' {
		return &tree.TypeRef{Name: name}
	}
	return nil
}

// resolveTypeNode computes the type a type node denotes.
func (a *attributor) resolveTypeNode(n *tree.Node) *tree.TypeRef {
	if n == nil {
		return nil
	}
	switch n.Syntax() {
	case "type_identifier":
		return a.resolveSimple(n.LeafText())
	case "scoped_type_identifier":
		return a.resolveQualified(compact(n.Source()), true)
	case "generic_type":
		base := a.resolveTypeNode(n.Child(0))
		if base == nil {
			return nil
		}
		t := &tree.TypeRef{Name: base.Name}
		if ta := childBySyntax(n, "type_arguments"); ta != nil {
			for _, arg := range ta.NamedChildren() {
				at := a.resolveTypeNode(arg)
				if at == nil {
					at = &tree.TypeRef{Name: "?"}
				}
				t.Args = append(t.Args, *at)
			}
		}
		return t
	case "array_type":
		el := a.resolveTypeNode(n.ChildByField("element"))
		if el == nil {
			return nil
		}
		dims := "[]"
		if d := n.ChildByField("dimensions"); d != nil {
			dims = compact(d.Source())
		}
		return &tree.TypeRef{Name: el.Name + dims, Args: el.Args}
	case "integral_type", "floating_point_type", "boolean_type":
		return &tree.TypeRef{Name: compact(n.Source())}
	case "annotated_type":
		named := n.NamedChildren()
		if len(named) > 0 {
			return a.resolveTypeNode(named[len(named)-1])
		}
	}
	return nil
}

func (a *attributor) push() { a.scopes = append(a.scopes, make(map[string]*tree.TypeRef)) }
func (a *attributor) pop()  { a.scopes = a.scopes[:len(a.scopes)-1] }

func (a *attributor) declare(name string, t *tree.TypeRef) {
	if len(a.scopes) == 0 || name == "" {
		return
	}
	a.scopes[len(a.scopes)-1][name] = t
}

// lookupVar finds a variable in scope. A variable whose type is unknown
// still shadows outer declarations.
func (a *attributor) lookupVar(name string) (*tree.TypeRef, bool) {
	for i := len(a.scopes) - 1; i >= 0; i-- {
		if t, ok := a.scopes[i][name]; ok {
			return t, true
		}
	}
	return nil, false
}

func (a *attributor) class() *classScope {
	if len(a.classes) == 0 {
		return nil
	}
	return a.classes[len(a.classes)-1]
}

func (a *attributor) nameType(name string) *tree.TypeRef {
	if t, ok := a.lookupVar(name); ok {
		return t
	}
	for i := len(a.classes) - 1; i >= 0; i-- {
		for _, owner := range a.classes[i].owners() {
			if f, _, ok := typeres.LookupField(a.types, owner, name); ok {
				ft := f.Type
				return &ft
			}
		}
	}
	if owner, ok := a.staticMembers[name]; ok {
		if f, _, ok := typeres.LookupField(a.types, owner, name); ok {
			ft := f.Type
			return &ft
		}
	}
	return a.resolveSimple(name)
}

func (cs *classScope) owners() []string {
	out := []string{cs.name}
	if cs.super != nil {
		out = append(out, cs.super.Name)
	}
	return out
}

func (a *attributor) visitor() *visit.Visitor {
	v := visit.New("attribute")
	for _, s := range []string{"class_declaration", "interface_declaration", "enum_declaration", "record_declaration"} {
		v.On(s, a.classDecl)
	}
	for _, s := range []string{"method_declaration", "constructor_declaration", "compact_constructor_declaration"} {
		v.On(s, a.method)
	}
	for _, s := range []string{"block", "constructor_body", "switch_block", "for_statement", "try_with_resources_statement"} {
		v.On(s, a.scoped)
	}
	v.On("lambda_expression", a.lambda)
	v.On("enhanced_for_statement", a.enhancedFor)
	v.On("catch_clause", a.catchClause)
	v.On("local_variable_declaration", a.localVars)
	v.On("resource", a.resource)

	typeFn := func(c *visit.Cursor, n *tree.Node) *tree.Node {
		if c.Parent().Is("scoped_type_identifier") {
			return n
		}
		n = c.Descend(n)
		return n.WithType(a.resolveTypeNode(n))
	}
	for _, s := range []string{"type_identifier", "generic_type", "array_type", "integral_type", "floating_point_type", "boolean_type"} {
		v.On(s, typeFn)
	}
	v.On("scoped_type_identifier", func(c *visit.Cursor, n *tree.Node) *tree.Node {
		return n.WithType(a.resolveTypeNode(n))
	})

	v.On("identifier", a.identifier)
	v.On("this", func(c *visit.Cursor, n *tree.Node) *tree.Node {
		if cls := a.class(); cls != nil {
			return n.WithType(&tree.TypeRef{Name: cls.name})
		}
		return n
	})
	v.On("super", func(c *visit.Cursor, n *tree.Node) *tree.Node {
		if cls := a.class(); cls != nil && cls.super != nil && c.Parent().Is("method_invocation") && n.Field() == "object" {
			return n.WithType(cls.super)
		}
		return n
	})
	v.On("method_invocation", a.invocation)
	v.On("object_creation_expression", a.creation)
	v.On("field_access", a.fieldAccess)

	literal := func(name string) visit.Func {
		return func(c *visit.Cursor, n *tree.Node) *tree.Node {
			return n.WithType(&tree.TypeRef{Name: name})
		}
	}
	v.On("string_literal", literal("java.lang.String"))
	v.On("text_block", literal("java.lang.String"))
	v.On("character_literal", literal("char"))
	v.On("true", literal("boolean"))
	v.On("false", literal("boolean"))
	v.On("null_literal", literal("null"))
	v.On("class_literal", func(c *visit.Cursor, n *tree.Node) *tree.Node {
		return c.Descend(n).WithType(&tree.TypeRef{Name: "java.lang.Class"})
	})
	v.On("instanceof_expression", func(c *visit.Cursor, n *tree.Node) *tree.Node {
		return c.Descend(n).WithType(&tree.TypeRef{Name: "boolean"})
	})
	intLit := func(c *visit.Cursor, n *tree.Node) *tree.Node {
		if strings.HasSuffix(strings.ToLower(n.LeafText()), "l") {
			return n.WithType(&tree.TypeRef{Name: "long"})
		}
		return n.WithType(&tree.TypeRef{Name: "int"})
	}
	for _, s := range []string{"decimal_integer_literal", "hex_integer_literal", "octal_integer_literal", "binary_integer_literal"} {
		v.On(s, intLit)
	}
	floatLit := func(c *visit.Cursor, n *tree.Node) *tree.Node {
		if strings.HasSuffix(strings.ToLower(n.LeafText()), "f") {
			return n.WithType(&tree.TypeRef{Name: "float"})
		}
		return n.WithType(&tree.TypeRef{Name: "double"})
	}
	v.On("decimal_floating_point_literal", floatLit)
	v.On("hex_floating_point_literal", floatLit)

	v.On("parenthesized_expression", func(c *visit.Cursor, n *tree.Node) *tree.Node {
		n = c.Descend(n)
		if inner := n.NamedChildren(); len(inner) == 1 {
			return n.WithType(inner[0].Type())
		}
		return n
	})
	v.On("cast_expression", func(c *visit.Cursor, n *tree.Node) *tree.Node {
		n = c.Descend(n)
		if t := n.ChildByField("type"); t != nil {
			return n.WithType(t.Type())
		}
		return n
	})
	v.On("assignment_expression", func(c *visit.Cursor, n *tree.Node) *tree.Node {
		n = c.Descend(n)
		if l := n.ChildByField("left"); l != nil {
			return n.WithType(l.Type())
		}
		return n
	})
	v.On("ternary_expression", func(c *visit.Cursor, n *tree.Node) *tree.Node {
		n = c.Descend(n)
		yes, no := n.ChildByField("consequence"), n.ChildByField("alternative")
		if yes != nil && no != nil && yes.Type().Equal(no.Type()) {
			return n.WithType(yes.Type())
		}
		return n.WithType(nil)
	})
	v.On("binary_expression", a.binary)
	v.On("unary_expression", func(c *visit.Cursor, n *tree.Node) *tree.Node {
		n = c.Descend(n)
		op, operand := n.ChildByField("operator"), n.ChildByField("operand")
		if op != nil && op.LeafText() == "!" {
			return n.WithType(&tree.TypeRef{Name: "boolean"})
		}
		if operand != nil {
			return n.WithType(operand.Type())
		}
		return n
	})
	v.On("array_access", func(c *visit.Cursor, n *tree.Node) *tree.Node {
		n = c.Descend(n)
		if arr := n.ChildByField("array"); arr != nil && arr.Type() != nil && strings.HasSuffix(arr.Type().Name, "[]") {
			return n.WithType(&tree.TypeRef{Name: strings.TrimSuffix(arr.Type().Name, "[]")})
		}
		return n.WithType(nil)
	})
	return v
}

func (a *attributor) classDecl(c *visit.Cursor, n *tree.Node) *tree.Node {
	name := n.ChildByField("name")
	if name == nil {
		return c.Descend(n)
	}
	outer := ""
	if cls := a.class(); cls != nil {
		outer = cls.name
	}
	cs := &classScope{name: a.qualify(outer, name.LeafText())}
	if sc := n.ChildByField("superclass"); sc != nil {
		if named := sc.NamedChildren(); len(named) > 0 {
			cs.super = a.resolveTypeNode(named[len(named)-1])
		}
	}
	a.classes = append(a.classes, cs)
	a.push()
	a.declareMembers(n, cs)
	n = c.Descend(n)
	a.pop()
	a.classes = a.classes[:len(a.classes)-1]
	return n
}

func (a *attributor) declareMembers(decl *tree.Node, cs *classScope) {
	if params := decl.ChildByField("parameters"); params != nil && decl.Is("record_declaration") {
		a.declareParams(params)
	}
	body := decl.ChildByField("body")
	if body == nil {
		return
	}
	members := body.Children()
	if body.Is("enum_body") {
		members = nil
		for _, c := range body.Children() {
			switch c.Syntax() {
			case "enum_constant":
				if name := c.ChildByField("name"); name != nil {
					a.declare(name.LeafText(), &tree.TypeRef{Name: cs.name})
				}
			case "enum_body_declarations":
				members = append(members, c.Children()...)
			}
		}
	}
	for _, m := range members {
		if !m.Is("field_declaration") && !m.Is("constant_declaration") {
			continue
		}
		t := a.resolveTypeNode(m.ChildByField("type"))
		for _, d := range m.Children() {
			if d.Is("variable_declarator") {
				if name := d.ChildByField("name"); name != nil {
					a.declare(name.LeafText(), t)
				}
			}
		}
	}
}

func (a *attributor) declareParams(params *tree.Node) {
	for _, p := range params.Children() {
		switch p.Syntax() {
		case "formal_parameter":
			if name := p.ChildByField("name"); name != nil {
				a.declare(name.LeafText(), a.resolveTypeNode(p.ChildByField("type")))
			}
		case "spread_parameter":
			var t *tree.TypeRef
			for _, c := range p.NamedChildren() {
				if c.Kind() == tree.KindType && t == nil {
					if el := a.resolveTypeNode(c); el != nil {
						t = &tree.TypeRef{Name: el.Name + "[]"}
					}
				}
				if c.Is("variable_declarator") {
					if name := c.ChildByField("name"); name != nil {
						a.declare(name.LeafText(), t)
					}
				}
			}
		}
	}
}

func (a *attributor) method(c *visit.Cursor, n *tree.Node) *tree.Node {
	a.push()
	defer a.pop()
	if params := n.ChildByField("parameters"); params != nil {
		a.declareParams(params)
	}
	return c.Descend(n)
}

func (a *attributor) scoped(c *visit.Cursor, n *tree.Node) *tree.Node {
	a.push()
	defer a.pop()
	return c.Descend(n)
}

func (a *attributor) lambda(c *visit.Cursor, n *tree.Node) *tree.Node {
	a.push()
	defer a.pop()
	switch p := n.ChildByField("parameters"); {
	case p == nil:
	case p.Is("identifier"):
		a.declare(p.LeafText(), nil)
	case p.Is("inferred_parameters"):
		for _, id := range p.NamedChildren() {
			a.declare(id.LeafText(), nil)
		}
	case p.Is("formal_parameters"):
		a.declareParams(p)
	}
	return c.Descend(n)
}

func (a *attributor) enhancedFor(c *visit.Cursor, n *tree.Node) *tree.Node {
	a.push()
	defer a.pop()
	if name := n.ChildByField("name"); name != nil {
		a.declare(name.LeafText(), a.resolveTypeNode(n.ChildByField("type")))
	}
	return c.Descend(n)
}

func (a *attributor) catchClause(c *visit.Cursor, n *tree.Node) *tree.Node {
	a.push()
	defer a.pop()
	if param := childBySyntax(n, "catch_formal_parameter"); param != nil {
		var t *tree.TypeRef
		if ct := childBySyntax(param, "catch_type"); ct != nil {
			if named := ct.NamedChildren(); len(named) == 1 {
				t = a.resolveTypeNode(named[0])
			}
		}
		if name := param.ChildByField("name"); name != nil {
			a.declare(name.LeafText(), t)
		}
	}
	return c.Descend(n)
}

func (a *attributor) localVars(c *visit.Cursor, n *tree.Node) *tree.Node {
	n = c.Descend(n)
	declared := n.ChildByField("type")
	for _, d := range n.Children() {
		if !d.Is("variable_declarator") {
			continue
		}
		name := d.ChildByField("name")
		if name == nil {
			continue
		}
		var t *tree.TypeRef
		if declared != nil {
			t = declared.Type()
			if declared.Is("type_identifier") && declared.LeafText() == "var" {
				if v := d.ChildByField("value"); v != nil {
					t = v.Type()
				}
			}
		}
		a.declare(name.LeafText(), t)
	}
	return n
}

func (a *attributor) resource(c *visit.Cursor, n *tree.Node) *tree.Node {
	n = c.Descend(n)
	if name := n.ChildByField("name"); name != nil {
		var t *tree.TypeRef
		if declared := n.ChildByField("type"); declared != nil {
			t = declared.Type()
			if declared.LeafText() == "var" {
				if v := n.ChildByField("value"); v != nil {
					t = v.Type()
				}
			}
		}
		a.declare(name.LeafText(), t)
	}
	return n
}

func (a *attributor) identifier(c *visit.Cursor, n *tree.Node) *tree.Node {
	parent := c.Parent()
	if (parent.Is("marker_annotation") || parent.Is("annotation")) && n.Field() == "name" {
		return n.WithType(a.resolveSimple(n.LeafText()))
	}
	switch n.Field() {
	case "name", "field", "parameters", "label":
		return n
	}
	if parent != nil {
		switch parent.Syntax() {
		case "scoped_identifier", "package_declaration", "import_declaration", "marker_annotation",
			"annotation", "inferred_parameters", "labeled_statement", "break_statement",
			"continue_statement", "element_value_pair", "enum_constant", "module_declaration":
			return n
		}
	}
	return n.WithType(a.nameType(n.LeafText()))
}

func (a *attributor) argTypes(args *tree.Node) []*tree.TypeRef {
	if args == nil {
		return nil
	}
	var out []*tree.TypeRef
	for _, arg := range args.NamedChildren() {
		out = append(out, arg.Type())
	}
	return out
}

func (a *attributor) invocation(c *visit.Cursor, n *tree.Node) *tree.Node {
	n = c.Descend(n)
	name := n.ChildByField("name")
	if name == nil {
		return n
	}
	args := a.argTypes(n.ChildByField("arguments"))

	var owners []tree.TypeRef
	if obj := n.ChildByField("object"); obj != nil {
		if t := obj.Type(); t != nil {
			owners = append(owners, *t)
		}
	} else {
		for i := len(a.classes) - 1; i >= 0; i-- {
			for _, o := range a.classes[i].owners() {
				owners = append(owners, tree.TypeRef{Name: o})
			}
		}
		if owner, ok := a.staticMembers[name.LeafText()]; ok {
			owners = append(owners, tree.TypeRef{Name: owner})
		}
		for _, w := range a.staticWildcards {
			owners = append(owners, tree.TypeRef{Name: w})
		}
	}
	for _, owner := range owners {
		m, declaring, ok := typeres.LookupMethod(a.types, owner.Name, name.LeafText(), args)
		if !ok {
			continue
		}
		ref := &tree.MethodRef{
			Owner:     owner,
			Declaring: declaring,
			Name:      name.LeafText(),
			Params:    m.Params,
			Return:    concrete(m.Return),
			Static:    m.Static,
		}
		return n.WithMethod(ref).WithType(ref.Return)
	}
	return n.WithMethod(nil).WithType(nil)
}

func (a *attributor) creation(c *visit.Cursor, n *tree.Node) *tree.Node {
	n = c.Descend(n)
	typeNode := n.ChildByField("type")
	if typeNode == nil || typeNode.Type() == nil {
		return n.WithMethod(nil).WithType(nil)
	}
	t := typeNode.Type()
	args := a.argTypes(n.ChildByField("arguments"))
	var ref *tree.MethodRef
	if m, _, ok := typeres.LookupMethod(a.types, t.Name, tree.Constructor, args); ok {
		ref = &tree.MethodRef{Owner: *t, Declaring: t.Name, Name: tree.Constructor, Params: m.Params}
	} else if len(args) == 0 && implicitConstructor(a.types, t.Name) {
		ref = &tree.MethodRef{Owner: *t, Declaring: t.Name, Name: tree.Constructor}
	}
	return n.WithType(t).WithMethod(ref)
}

// implicitConstructor reports whether name is a known type that lists no
// constructor, and so has the implicit no-argument one.
func implicitConstructor(r typeres.Resolver, name string) bool {
	info, ok := typeres.Lookup(r, name)
	if !ok {
		return false
	}
	for _, m := range info.Methods {
		if m.Name == tree.Constructor {
			return false
		}
	}
	return true
}

func (a *attributor) fieldAccess(c *visit.Cursor, n *tree.Node) *tree.Node {
	n = c.Descend(n)
	obj, field := n.ChildByField("object"), n.ChildByField("field")
	if obj == nil || field == nil || !field.Is("identifier") {
		return n
	}
	if t := obj.Type(); t != nil {
		if f, _, ok := typeres.LookupField(a.types, t.Name, field.LeafText()); ok {
			ft := f.Type
			return n.WithType(&ft)
		}
		if nested := t.Name + "." + field.LeafText(); a.known(nested) {
			return n.WithType(&tree.TypeRef{Name: nested})
		}
		return n.WithType(nil)
	}
	if isDottedName(n) {
		return n.WithType(a.resolveQualified(compact(n.Source()), false))
	}
	return n.WithType(nil)
}

func (a *attributor) binary(c *visit.Cursor, n *tree.Node) *tree.Node {
	n = c.Descend(n)
	op := n.ChildByField("operator")
	l, r := n.ChildByField("left"), n.ChildByField("right")
	if op == nil || l == nil || r == nil {
		return n
	}
	switch op.LeafText() {
	case "==", "!=", "<", ">", "<=", ">=", "&&", "||":
		return n.WithType(&tree.TypeRef{Name: "boolean"})
	case "+":
		if isString(l.Type()) || isString(r.Type()) {
			return n.WithType(&tree.TypeRef{Name: "java.lang.String"})
		}
	}
	if l.Type().Equal(r.Type()) && typeres.IsPrimitive(l.Type().Name) {
		return n.WithType(l.Type())
	}
	return n.WithType(nil)
}

func isString(t *tree.TypeRef) bool { return t != nil && t.Name == "java.lang.String" }

// concrete drops return types that are bare type variables.
func concrete(t *tree.TypeRef) *tree.TypeRef {
	if t == nil || typeres.IsTypeVariable(t.Name) {
		return nil
	}
	return t
}

func isTypeDecl(syntax string) bool {
	switch syntax {
	case "class_declaration", "interface_declaration", "enum_declaration",
		"record_declaration", "annotation_type_declaration":
		return true
	}
	return false
}

func isDottedName(n *tree.Node) bool {
	switch n.Syntax() {
	case "identifier":
		return true
	case "field_access":
		obj, field := n.ChildByField("object"), n.ChildByField("field")
		return obj != nil && field != nil && field.Is("identifier") && isDottedName(obj)
	}
	return false
}

func nameChild(n *tree.Node) *tree.Node {
	for _, c := range n.Children() {
		if c.Is("identifier") || c.Is("scoped_identifier") {
			return c
		}
	}
	return nil
}

func childBySyntax(n *tree.Node, syntax string) *tree.Node {
	for _, c := range n.Children() {
		if c.Is(syntax) {
			return c
		}
	}
	return nil
}

// compact drops whitespace from printed source, e.g. "java . util" -> "java.util".
func compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}
