package recipes

import (
	"fmt"
	"strconv"

	"github.com/agentic-research/recast/internal/ingest"
	"github.com/agentic-research/recast/internal/match"
	"github.com/agentic-research/recast/internal/recipe"
	"github.com/agentic-research/recast/internal/search"
	"github.com/agentic-research/recast/internal/tree"
	"github.com/agentic-research/recast/internal/typeres"
	"github.com/agentic-research/recast/internal/visit"
)

var andCall = match.MustParseMethodPattern("* and()")

// unchainAnd rewrites fluent configuration chains that return to the
// builder through and() into nested callback calls:
//
//	http.csrf().disable().and().formLogin().loginPage("/login");
//
// becomes
//
//	http.csrf(csrf -> csrf.disable()).formLogin(formLogin -> formLogin.loginPage("/login"));
//
// Every section ended by and() must start with a no-argument call that the
// builder overloads with a single-parameter variant.
type unchainAnd struct {
	builder  string
	defaults string // type declaring withDefaults(), optional
}

func newUnchainAnd(name string, opts options) (*recipe.Recipe, error) {
	builder, err := opts.required("builder")
	if err != nil {
		return nil, err
	}
	u := &unchainAnd{builder: builder, defaults: opts.get("defaults")}
	return &recipe.Recipe{
		Name:         name,
		Description:  fmt.Sprintf("nest %s configuration instead of chaining and()", tree.SimpleName(builder)),
		Precondition: search.FindMethods(andCall),
		Visitor:      u.visitor(),
	}, nil
}

func (u *unchainAnd) visitor() *visit.Visitor {
	v := visit.New("unchain-and")
	v.On("program", u.program)
	v.On("method_invocation", u.invocation)
	return v
}

func (u *unchainAnd) program(c *visit.Cursor, n *tree.Node) *tree.Node {
	out := c.Descend(n)
	if out == n || u.defaults == "" || !usesSimpleName(out, tree.SimpleName(u.defaults)) {
		return out
	}
	withImport, err := addImport(c.IDs(), out, u.defaults)
	if err != nil {
		return c.Diagnose(n, err.Error())
	}
	return withImport
}

// isAnd reports whether call is a marked and() leading back to the builder.
func (u *unchainAnd) isAnd(c *visit.Cursor, call *tree.Node) bool {
	m := call.Method()
	return c.Marked(call) && andCall.Matches(c.Types, m) && m.Return != nil && m.Return.Name == u.builder
}

// nestable reports whether a section starting with call can move into a
// callback argument.
func (u *unchainAnd) nestable(c *visit.Cursor, call *tree.Node) bool {
	args := call.ChildByField("arguments")
	if args == nil || len(args.NamedChildren()) != 0 {
		return false
	}
	return declaresMethod(c.Types, u.builder, call.ChildByField("name").LeafText(), 1)
}

func (u *unchainAnd) invocation(c *visit.Cursor, n *tree.Node) *tree.Node {
	n = c.Descend(n)
	if c.Parent().Is("method_invocation") && n.Field() == "object" {
		return n
	}

	var calls []*tree.Node
	recv := n
	for recv.Is("method_invocation") {
		calls = append([]*tree.Node{recv}, calls...)
		recv = recv.ChildByField("object")
	}
	var ands []int
	for i, call := range calls {
		if u.isAnd(c, call) {
			ands = append(ands, i)
		}
	}
	if len(ands) == 0 {
		return n
	}
	if recv == nil || recv.Type() == nil {
		return c.Unresolved(n, "cannot resolve the start of the chain")
	}
	if !typeres.IsSubtype(c.Types, recv.Type().Name, u.builder) {
		return c.Diagnose(n, fmt.Sprintf("chain does not start on %s", tree.SimpleName(u.builder)))
	}

	out := recv
	start := 0
	for _, end := range ands {
		section := calls[start:end]
		if len(section) == 0 || !u.nestable(c, section[0]) {
			return c.Diagnose(n, "section before and() cannot be nested")
		}
		nested, err := u.nest(c, section)
		if err != nil {
			return c.Diagnose(n, err.Error())
		}
		out = withObject(nested, out)
		start = end + 1
	}
	if rest := calls[start:]; len(rest) > 0 {
		if u.nestable(c, rest[0]) {
			nested, err := u.nest(c, rest)
			if err != nil {
				return c.Diagnose(n, err.Error())
			}
			out = withObject(nested, out)
		} else {
			for _, call := range rest {
				out = withObject(call, out)
			}
		}
	}
	return out.WithField(n.Field())
}

// nest turns section s0().c1().c2() into s0(p -> p.c1().c2()). The returned
// call still has the object of s0; the caller rebinds it.
func (u *unchainAnd) nest(c *visit.Cursor, section []*tree.Node) (*tree.Node, error) {
	head, tail := section[0], section[1:]
	method := head.ChildByField("name").LeafText()
	param := u.paramName(c, method, tail)

	var tmpl string
	switch {
	case len(tail) > 0:
		tmpl = "x(" + param + " -> " + param + ")"
	case u.defaults != "":
		ref, _ := referenceName(c.File.Root, u.defaults)
		tmpl = "x(" + ref + ".withDefaults())"
	default:
		tmpl = "x(" + param + " -> {})"
	}
	call, err := ingest.JavaExpression(c.IDs(), tmpl)
	if err != nil {
		return nil, err
	}
	args := call.ChildByField("arguments")
	if len(tail) > 0 {
		lambda := args.NamedChildren()[0]
		body := lambda.ChildByField("body")
		inner := body
		for _, t := range tail {
			inner = withObject(t, inner)
		}
		args = args.WithChild(args.IndexOf(lambda), lambda.WithChild(lambda.IndexOf(body), inner.WithField("body")))
	}
	old := head.ChildByField("arguments")
	return head.WithChild(head.IndexOf(old), replace(old, args)), nil
}

// paramName picks a lambda parameter name for a section: the configurer
// method's name, suffixed when that would shadow a local or a name the
// section itself refers to.
func (u *unchainAnd) paramName(c *visit.Cursor, method string, tail []*tree.Node) string {
	scope := c.Enclosing("method_declaration")
	if scope == nil {
		scope = c.File.Root
	}
	taken := func(name string) bool {
		if declaresLocal(scope, name) {
			return true
		}
		for _, t := range tail {
			if usesSimpleName(t.ChildByField("arguments"), name) {
				return true
			}
		}
		return false
	}
	name := method
	for i := 2; taken(name); i++ {
		name = method + strconv.Itoa(i)
	}
	return name
}

// declaresLocal reports whether a variable, parameter or lambda parameter
// named name is declared anywhere under scope.
func declaresLocal(scope *tree.Node, name string) bool {
	return tree.Find(scope, func(n *tree.Node) bool {
		switch n.Syntax() {
		case "variable_declarator", "formal_parameter", "catch_formal_parameter", "enhanced_for_statement", "resource":
			id := n.ChildByField("name")
			return id != nil && id.LeafText() == name
		case "lambda_expression":
			params := n.ChildByField("parameters")
			if params.Is("identifier") {
				return params.LeafText() == name
			}
			if params.Is("inferred_parameters") {
				for _, p := range params.NamedChildren() {
					if p.LeafText() == name {
						return true
					}
				}
			}
		}
		return false
	}) != nil
}

// withObject rebinds the receiver of a method invocation.
func withObject(call, obj *tree.Node) *tree.Node {
	old := call.ChildByField("object")
	if old == nil {
		return call
	}
	return call.WithChild(call.IndexOf(old), obj.WithField("object"))
}
