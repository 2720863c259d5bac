package recipes

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agentic-research/recast/internal/ingest"
	"github.com/agentic-research/recast/internal/recipe"
	"github.com/agentic-research/recast/internal/search"
	"github.com/agentic-research/recast/internal/tree"
	"github.com/agentic-research/recast/internal/visit"
)

// changeType rewrites every reference to one fully-qualified type into a
// reference to another: imports, type usages, class literals, annotations,
// static and method-reference receivers and fully qualified expressions. Only references that resolve to exactly the old
// type are touched.
type changeType struct {
	old, new string
}

func newChangeType(name string, opts options) (*recipe.Recipe, error) {
	old, err := opts.required("old")
	if err != nil {
		return nil, err
	}
	nw, err := opts.required("new")
	if err != nil {
		return nil, err
	}
	if old == nw {
		return nil, errors.New("old and new type are the same")
	}
	ct := &changeType{old: old, new: nw}
	return &recipe.Recipe{
		Name:        name,
		Description: fmt.Sprintf("change type %s to %s", old, nw),
		Precondition: search.Or(
			search.UsesType(old, false),
			search.Where(func(_ *visit.Context, n *tree.Node) bool {
				return n.Is("import_declaration") && ct.importTarget(importInfo(n)) != ""
			}),
		),
		Visitor: ct.visitor(),
	}, nil
}

func (ct *changeType) visitor() *visit.Visitor {
	v := visit.New("change-type")
	v.On("program", ct.program)
	v.On("import_declaration", ct.importDecl)
	v.On("type_identifier", ct.typeIdentifier)
	v.On("scoped_type_identifier", ct.scopedType)
	v.On("identifier", ct.typeName)
	v.On("field_access", ct.qualifiedExpr)
	return v
}

// importTarget returns the name an import must be rewritten to, or "".
func (ct *changeType) importTarget(imp javaImport) string {
	switch {
	case imp.wildcard:
		return ""
	case imp.name == ct.old:
		return ct.new
	case imp.static && strings.HasPrefix(imp.name, ct.old+"."):
		return ct.new + imp.name[len(ct.old):]
	}
	return ""
}

// spelling is how the new type is written in this file once its imports
// have been rewritten.
func (ct *changeType) spelling(c *visit.Cursor) string {
	name, _ := referenceName(c.File.Root, ct.new, ct.old)
	return name
}

func (ct *changeType) program(c *visit.Cursor, n *tree.Node) *tree.Node {
	out := c.Descend(n)
	if out == n {
		return n
	}
	if _, need := referenceName(out, ct.new); need && usesSimpleName(out, tree.SimpleName(ct.new)) {
		withImport, err := addImport(c.IDs(), out, ct.new)
		if err != nil {
			return c.Diagnose(n, err.Error())
		}
		out = withImport
	}
	return out
}

func (ct *changeType) importDecl(c *visit.Cursor, n *tree.Node) *tree.Node {
	target := ct.importTarget(importInfo(n))
	if target == "" {
		return n
	}
	for i, child := range n.Children() {
		if !child.Is("identifier") && !child.Is("scoped_identifier") {
			continue
		}
		name, err := ingest.JavaName(c.IDs(), target)
		if err != nil {
			return c.Diagnose(n, err.Error())
		}
		return n.WithChild(i, replace(child, name))
	}
	return n
}

func (ct *changeType) matches(n *tree.Node) bool {
	t := n.Type()
	return t != nil && t.Name == ct.old
}

func (ct *changeType) typeIdentifier(c *visit.Cursor, n *tree.Node) *tree.Node {
	if !ct.matches(n) || c.Parent().Is("scoped_type_identifier") || n.LeafText() != tree.SimpleName(ct.old) {
		return n
	}
	spell := ct.spelling(c)
	if !strings.Contains(spell, ".") {
		return n.WithText(spell).WithType(nil)
	}
	t, err := ingest.JavaType(c.IDs(), spell)
	if err != nil {
		return c.Diagnose(n, err.Error())
	}
	return replace(n, t)
}

func (ct *changeType) scopedType(c *visit.Cursor, n *tree.Node) *tree.Node {
	if !ct.matches(n) {
		return n
	}
	t, err := ingest.JavaType(c.IDs(), ct.new)
	if err != nil {
		return c.Diagnose(n, err.Error())
	}
	return replace(n, t)
}

// typeName handles a simple type name spelled as an identifier: the
// receiver of a static call or field (Strings.join(...)), the receiver of a
// method reference (Widget::make) and an annotation name (@Widget).
func (ct *changeType) typeName(c *visit.Cursor, n *tree.Node) *tree.Node {
	if !ct.matches(n) || n.LeafText() != tree.SimpleName(ct.old) {
		return n
	}
	p := c.Parent()
	annotation := n.Field() == "name" && (p.Is("marker_annotation") || p.Is("annotation"))
	switch {
	case annotation:
	case n.Field() == "object" && (p.Is("method_invocation") || p.Is("field_access")):
	case p.Is("method_reference") && p.NumChildren() > 0 && p.Child(0).ID() == n.ID():
	default:
		return n
	}
	spell := ct.spelling(c)
	if !strings.Contains(spell, ".") {
		return n.WithText(spell).WithType(nil)
	}
	var (
		repl *tree.Node
		err  error
	)
	if annotation {
		repl, err = ingest.JavaName(c.IDs(), spell)
	} else {
		repl, err = ingest.JavaExpression(c.IDs(), spell)
	}
	if err != nil {
		return c.Diagnose(n, err.Error())
	}
	return replace(n, repl)
}

// qualifiedExpr handles a fully-qualified type name in expression
// position, as in org.acme.Strings.join(...).
func (ct *changeType) qualifiedExpr(c *visit.Cursor, n *tree.Node) *tree.Node {
	if !ct.matches(n) || dotted(n) != ct.old {
		return c.Descend(n)
	}
	e, err := ingest.JavaExpression(c.IDs(), ct.new)
	if err != nil {
		return c.Diagnose(n, err.Error())
	}
	return replace(n, e)
}
