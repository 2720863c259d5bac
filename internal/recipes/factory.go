package recipes

import (
	"fmt"
	"strings"

	"github.com/agentic-research/recast/internal/ingest"
	"github.com/agentic-research/recast/internal/match"
	"github.com/agentic-research/recast/internal/recipe"
	"github.com/agentic-research/recast/internal/search"
	"github.com/agentic-research/recast/internal/tree"
	"github.com/agentic-research/recast/internal/typeres"
	"github.com/agentic-research/recast/internal/visit"
)

// factory replaces calls to a constructor with calls to a static factory
// method taking the same arguments. Variables declared with exactly the
// constructed type are retyped to the factory's return type, provided every
// use of the variable the recipe can see still type-checks against it.
type factory struct {
	ctor    match.MethodMatcher
	owner   string // constructed type
	class   string // factory's declaring type
	method  string
	returns string
}

func newFactory(name string, opts options) (*recipe.Recipe, error) {
	pattern, err := opts.required("constructor")
	if err != nil {
		return nil, err
	}
	ctor, err := match.ParseMethodPattern(pattern, false)
	if err != nil {
		return nil, err
	}
	if ctor.Name != tree.Constructor || ctor.Owner.Subtypes || ctor.Owner.Name == match.Any {
		return nil, fmt.Errorf("option \"constructor\": %q does not name one constructor", pattern)
	}
	target, err := opts.required("factory")
	if err != nil {
		return nil, err
	}
	i := strings.LastIndexByte(target, '.')
	if i <= 0 || i == len(target)-1 {
		return nil, fmt.Errorf("option \"factory\": want Type.method, got %q", target)
	}
	f := &factory{
		ctor:    ctor,
		owner:   ctor.Owner.Name,
		class:   target[:i],
		method:  target[i+1:],
		returns: opts.get("returns"),
	}
	if f.returns == "" {
		f.returns = f.owner
	}
	return &recipe.Recipe{
		Name:         name,
		Description:  fmt.Sprintf("replace %s with %s", ctor, target),
		Precondition: search.FindMethods(ctor),
		Visitor:      f.visitor(),
	}, nil
}

func (f *factory) visitor() *visit.Visitor {
	v := visit.New("replace-constructor-with-factory")
	v.On("program", f.program)
	v.On("local_variable_declaration", f.declaration)
	v.On("field_declaration", f.declaration)
	v.On("object_creation_expression", f.creation)
	return v
}

// replaceable reports whether n is a marked call of the constructor.
func (f *factory) replaceable(c *visit.Cursor, n *tree.Node) bool {
	return n.Is("object_creation_expression") && c.Marked(n) && f.ctor.MatchesNode(c.Types, n)
}

func (f *factory) returnType() *tree.TypeRef { return &tree.TypeRef{Name: f.returns} }

func (f *factory) program(c *visit.Cursor, n *tree.Node) *tree.Node {
	out := c.Descend(n)
	if out == n {
		return n
	}
	out = removeImportIfUnused(out, f.owner)
	for _, fqn := range []string{f.class, f.returns} {
		if !usesSimpleName(out, tree.SimpleName(fqn)) {
			continue
		}
		withImport, err := addImport(c.IDs(), out, fqn)
		if err != nil {
			return c.Diagnose(n, err.Error())
		}
		out = withImport
	}
	return out
}

func (f *factory) declaration(c *visit.Cursor, n *tree.Node) *tree.Node {
	typeNode := n.ChildByField("type")
	var declarators []*tree.Node
	found := false
	for _, d := range n.Children() {
		if d.Is("variable_declarator") {
			declarators = append(declarators, d)
			if v := d.ChildByField("value"); v != nil && f.replaceable(c, v) {
				found = true
			}
		}
	}
	if !found || typeNode == nil {
		return c.Descend(n)
	}

	if typeNode.LeafText() == "var" {
		if msg, unresolved := f.unsafeUse(c, c.Parent(), declaredNames(declarators)); msg != "" {
			return skip(c, n, msg, unresolved)
		}
		return c.Descend(n)
	}
	declared := typeNode.Type()
	if declared == nil || declared.Name != f.owner {
		if !typeres.Assignable(c.Types, f.returnType(), *orUnknown(declared)) {
			return c.Diagnose(n, fmt.Sprintf("%s is not assignable to %s", f.returns, typeNode.Source()))
		}
		return c.Descend(n)
	}

	if f.returns == f.owner {
		return c.Descend(n)
	}
	for _, d := range declarators {
		if v := d.ChildByField("value"); v == nil || !f.replaceable(c, v) {
			return c.Diagnose(n, "not every variable is initialised by the constructor")
		}
	}
	if msg, unresolved := f.unsafeUse(c, c.Parent(), declaredNames(declarators)); msg != "" {
		return skip(c, n, msg, unresolved)
	}

	ref, _ := referenceName(c.File.Root, f.returns)
	retyped, err := ingest.JavaType(c.IDs(), ref)
	if err != nil {
		return c.Diagnose(n, err.Error())
	}
	n = c.Descend(n)
	typeNode = n.ChildByField("type")
	return n.WithChild(n.IndexOf(typeNode), replace(typeNode, retyped))
}

func skip(c *visit.Cursor, n *tree.Node, msg string, unresolved bool) *tree.Node {
	if unresolved {
		return c.Unresolved(n, msg)
	}
	return c.Diagnose(n, msg)
}

func declaredNames(declarators []*tree.Node) []string {
	var names []string
	for _, d := range declarators {
		if name := d.ChildByField("name"); name != nil {
			names = append(names, name.LeafText())
		}
	}
	return names
}

func orUnknown(t *tree.TypeRef) *tree.TypeRef {
	if t == nil {
		return &tree.TypeRef{}
	}
	return t
}

// unsafeUse looks through scope for uses of the named variables that would
// no longer type-check once they hold the factory's return type. Uses that
// cannot be resolved count as unsafe.
func (f *factory) unsafeUse(c *visit.Cursor, scope *tree.Node, names []string) (msg string, unresolved bool) {
	if scope == nil {
		return "", false
	}
	tree.Walk(scope, func(stack []*tree.Node) bool {
		n := stack[0]
		if msg != "" {
			return false
		}
		if !n.Is("identifier") || !contains(names, n.LeafText()) || len(stack) < 2 {
			return true
		}
		parent := stack[1]
		switch {
		case parent.Is("method_invocation") && n.Field() == "object":
			m := parent.Method()
			if m == nil {
				msg, unresolved = fmt.Sprintf("cannot resolve %s", parent.Source()), true
			} else if !typeres.IsSubtype(c.Types, f.returns, m.Declaring) {
				msg = fmt.Sprintf("%s is declared on %s, not on %s", m.Name, m.Declaring, f.returns)
			}
		case parent.Is("argument_list") && len(stack) > 2:
			call := stack[2]
			m := call.Method()
			idx := indexOfArg(parent, n)
			if m == nil || idx >= len(m.Params) {
				msg, unresolved = fmt.Sprintf("cannot resolve %s", call.Source()), true
			} else if !typeres.Assignable(c.Types, f.returnType(), m.Params[idx]) {
				msg = fmt.Sprintf("%s passed where %s is expected", n.LeafText(), m.Params[idx].String())
			}
		case parent.Is("field_access") && n.Field() == "object":
			msg = fmt.Sprintf("field access on %s", n.LeafText())
		}
		return true
	})
	return msg, unresolved
}

func indexOfArg(args, arg *tree.Node) int {
	for i, a := range args.NamedChildren() {
		if a == arg {
			return i
		}
	}
	return -1
}

// fits reports whether the factory's return type can stand in for the
// constructed type where n occurs.
func (f *factory) fits(c *visit.Cursor, n *tree.Node) bool {
	if f.returns == f.owner {
		return true
	}
	parent := c.Parent()
	switch {
	case parent.Is("variable_declarator"), parent.Is("expression_statement"):
		return true
	case parent.Is("method_invocation") && n.Field() == "object":
		m := parent.Method()
		return m != nil && typeres.IsSubtype(c.Types, f.returns, m.Declaring)
	case parent.Is("argument_list"):
		anc := c.Ancestors()
		if len(anc) < 2 {
			return false
		}
		m := anc[1].Method()
		idx := indexOfArg(parent, n)
		return m != nil && idx >= 0 && idx < len(m.Params) && typeres.Assignable(c.Types, f.returnType(), m.Params[idx])
	case parent.Is("return_statement"):
		decl := c.Enclosing("method_declaration")
		if decl == nil {
			return false
		}
		rt := decl.ChildByField("type")
		return rt != nil && rt.Type() != nil && typeres.Assignable(c.Types, f.returnType(), *rt.Type())
	}
	return false
}

func (f *factory) creation(c *visit.Cursor, n *tree.Node) *tree.Node {
	orig := n
	n = c.Descend(n)
	if !f.replaceable(c, n) {
		return n
	}
	if n.ChildByField("type") == nil || childOf(n, "class_body") != nil {
		return c.Diagnose(n, "anonymous subclass cannot be created by a factory")
	}
	if !f.fits(c, orig) {
		return c.Diagnose(n, fmt.Sprintf("cannot prove %s fits where %s was created", f.returns, tree.SimpleName(f.owner)))
	}

	ref, _ := referenceName(c.File.Root, f.class)
	call, err := ingest.JavaExpression(c.IDs(), ref+"."+f.method+"()")
	if err != nil {
		return c.Diagnose(n, err.Error())
	}
	if args := n.ChildByField("arguments"); args != nil && len(args.NamedChildren()) > 0 {
		empty := call.ChildByField("arguments")
		call = call.WithChild(call.IndexOf(empty), args.WithField("arguments"))
	}
	return replace(n, call)
}

func childOf(n *tree.Node, syntax string) *tree.Node {
	for _, c := range n.Children() {
		if c.Is(syntax) {
			return c
		}
	}
	return nil
}
