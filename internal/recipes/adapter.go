package recipes

import (
	"fmt"

	"github.com/agentic-research/recast/internal/ingest"
	"github.com/agentic-research/recast/internal/recipe"
	"github.com/agentic-research/recast/internal/search"
	"github.com/agentic-research/recast/internal/tree"
	"github.com/agentic-research/recast/internal/typeres"
	"github.com/agentic-research/recast/internal/visit"
)

// adapterToInterface turns classes extending an adapter class into classes
// implementing the interface the adapter stubs out. Calls of the form
// super.m(...) become Iface.super.m(...). A class whose super calls the
// interface cannot serve is left alone.
type adapterToInterface struct {
	adapter, iface string
}

func newAdapterToInterface(name string, opts options) (*recipe.Recipe, error) {
	adapter, err := opts.required("adapter")
	if err != nil {
		return nil, err
	}
	iface, err := opts.required("interface")
	if err != nil {
		return nil, err
	}
	a := &adapterToInterface{adapter: adapter, iface: iface}
	return &recipe.Recipe{
		Name:         name,
		Description:  fmt.Sprintf("implement %s instead of extending %s", iface, adapter),
		Precondition: search.FindTypes(adapter, false),
		Visitor:      a.visitor(),
	}, nil
}

func (a *adapterToInterface) visitor() *visit.Visitor {
	v := visit.New("adapter-to-interface")
	v.On("program", a.program)
	v.On("class_declaration", a.class)
	return v
}

func (a *adapterToInterface) program(c *visit.Cursor, n *tree.Node) *tree.Node {
	out := c.Descend(n)
	if out == n {
		return n
	}
	out = removeImportIfUnused(out, a.adapter)
	if usesSimpleName(out, tree.SimpleName(a.iface)) {
		withImport, err := addImport(c.IDs(), out, a.iface)
		if err != nil {
			return c.Diagnose(n, err.Error())
		}
		out = withImport
	}
	return out
}

// superType returns the type node of an extends clause.
func superType(superclass *tree.Node) *tree.Node {
	for _, c := range superclass.NamedChildren() {
		if c.Kind() == tree.KindType {
			return c
		}
	}
	return nil
}

func (a *adapterToInterface) class(c *visit.Cursor, n *tree.Node) *tree.Node {
	n = c.Descend(n)
	sc := n.ChildByField("superclass")
	if sc == nil {
		return n
	}
	st := superType(sc)
	if st == nil || !c.Marked(st) || st.Type() == nil || st.Type().Name != a.adapter {
		return n
	}
	body := n.ChildByField("body")
	if body == nil {
		return n
	}
	ifaceRef, _ := referenceName(c.File.Root, a.iface)

	rewritten, msg := a.superCalls(c, body, ifaceRef)
	if msg != "" {
		return c.Diagnose(n, msg)
	}

	children := make([]*tree.Node, 0, n.NumChildren())
	var clause *tree.Node
	for _, child := range n.Children() {
		switch {
		case child == sc:
			continue
		case child.Field() == "interfaces":
			grown, err := a.extendInterfaces(c, child, ifaceRef)
			if err != nil {
				return c.Diagnose(n, err.Error())
			}
			clause = grown
			child = grown
		case child.Field() == "body":
			child = rewritten
			if clause == nil {
				iface, err := ingest.JavaSuperInterfaces(c.IDs(), ifaceRef)
				if err != nil {
					return c.Diagnose(n, err.Error())
				}
				clause = tree.WithLeadingSpace(iface, tree.LeadingSpace(sc)).WithField("interfaces")
				children = append(children, clause)
			}
		}
		children = append(children, child)
	}
	return n.WithChildren(children)
}

// extendInterfaces appends the interface to an existing implements clause.
func (a *adapterToInterface) extendInterfaces(c *visit.Cursor, clause *tree.Node, ifaceRef string) (*tree.Node, error) {
	list := childOf(clause, "type_list")
	if list == nil {
		return clause, fmt.Errorf("malformed implements clause %q", clause.Source())
	}
	for _, t := range list.NamedChildren() {
		if t.Type() != nil && t.Type().Name == a.iface {
			return clause, nil
		}
	}
	tmpl, err := ingest.JavaSuperInterfaces(c.IDs(), "A", ifaceRef)
	if err != nil {
		return clause, err
	}
	extra := childOf(tmpl, "type_list").Children()
	tail := extra[len(extra)-2:] // ", Iface"
	grown := append(append([]*tree.Node{}, list.Children()...), tail...)
	return clause.WithChild(clause.IndexOf(list), list.WithChildren(grown)), nil
}

// superCalls rewrites super.m(...) calls in a class body, not descending
// into nested classes. It reports why the class cannot be converted when a
// super reference has no counterpart on the interface.
func (a *adapterToInterface) superCalls(c *visit.Cursor, body *tree.Node, ifaceRef string) (*tree.Node, string) {
	var msg string
	v := visit.New("super-calls")
	stop := func(_ *visit.Cursor, n *tree.Node) *tree.Node { return n }
	v.On("class_body", func(cc *visit.Cursor, n *tree.Node) *tree.Node {
		if n != body {
			return n
		}
		return cc.Descend(n)
	})
	v.On("object_creation_expression", func(cc *visit.Cursor, n *tree.Node) *tree.Node {
		if childOf(n, "class_body") != nil {
			return n
		}
		return cc.Descend(n)
	})
	v.On("explicit_constructor_invocation", func(cc *visit.Cursor, n *tree.Node) *tree.Node {
		if childOf(n, "super") != nil {
			msg = "constructor calls super(...)"
		}
		return n
	})
	v.On("field_access", func(cc *visit.Cursor, n *tree.Node) *tree.Node {
		if obj := n.ChildByField("object"); obj.Is("super") {
			msg = fmt.Sprintf("accesses %s", n.Source())
			return n
		}
		return cc.Descend(n)
	})
	v.On("method_reference", func(cc *visit.Cursor, n *tree.Node) *tree.Node {
		if childOf(n, "super") != nil {
			msg = fmt.Sprintf("references %s", n.Source())
		}
		return n
	})
	v.On("method_invocation", func(cc *visit.Cursor, n *tree.Node) *tree.Node {
		n = cc.Descend(n)
		obj := n.ChildByField("object")
		if !obj.Is("super") {
			return n
		}
		name := n.ChildByField("name").LeafText()
		arity := len(n.ChildByField("arguments").NamedChildren())
		if !declaresMethod(c.Types, a.iface, name, arity) {
			msg = fmt.Sprintf("super.%s has no counterpart on %s", name, a.iface)
			return n
		}
		return superQualified(cc, n, obj, ifaceRef)
	})
	for _, s := range []string{"class_declaration", "interface_declaration", "enum_declaration", "record_declaration"} {
		v.On(s, stop)
	}
	out := v.Run(c.Context, body)
	return out, msg
}

// superQualified turns super.m(...) into Iface.super.m(...). The super
// keyword keeps its identity; the qualifier and dot are new.
func superQualified(c *visit.Cursor, call, super *tree.Node, ifaceRef string) *tree.Node {
	qual, err := ingest.JavaExpression(c.IDs(), ifaceRef)
	if err != nil {
		return c.Diagnose(call, err.Error())
	}
	dot := tree.NewLeaf(c.IDs().Next(), tree.KindToken, ".", ".")
	children := make([]*tree.Node, 0, call.NumChildren()+2)
	for _, child := range call.Children() {
		if child == super {
			children = append(children,
				replace(super, qual),
				dot,
				super.WithPrefix("").WithField("").WithType(nil),
			)
			continue
		}
		children = append(children, child)
	}
	return call.WithChildren(children)
}

// declaresMethod reports whether iface or one of its supertypes declares a
// method with the given name and arity.
func declaresMethod(r typeres.Resolver, iface, name string, arity int) bool {
	for _, tn := range append([]string{iface}, typeres.Supertypes(r, iface)...) {
		info, ok := typeres.Lookup(r, tn)
		if !ok {
			continue
		}
		for _, m := range info.Methods {
			if m.Name == name && len(m.Params) == arity {
				return true
			}
		}
	}
	return false
}
