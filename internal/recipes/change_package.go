package recipes

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/agentic-research/recast/internal/ingest"
	"github.com/agentic-research/recast/internal/recipe"
	"github.com/agentic-research/recast/internal/search"
	"github.com/agentic-research/recast/internal/tree"
	"github.com/agentic-research/recast/internal/visit"
)

// changePackage moves the types of one package to another. In Java it
// rewrites the package declaration, imports and fully-qualified references;
// in Go it rewrites import paths. With recursive set, subpackages move too.
// A package that merely shares a textual prefix is never touched.
type changePackage struct {
	old, new  string
	recursive bool
}

func newChangePackage(name string, opts options) (*recipe.Recipe, error) {
	old, err := opts.required("old")
	if err != nil {
		return nil, err
	}
	nw, err := opts.required("new")
	if err != nil {
		return nil, err
	}
	if old == nw {
		return nil, errors.New("old and new package are the same")
	}
	recursive, err := opts.flag("recursive")
	if err != nil {
		return nil, err
	}
	cp := &changePackage{old: old, new: nw, recursive: recursive}
	return &recipe.Recipe{
		Name:         name,
		Description:  fmt.Sprintf("change package %s to %s", old, nw),
		Precondition: search.Where(cp.affected),
		Visitor:      cp.visitor(),
	}, nil
}

func (cp *changePackage) visitor() *visit.Visitor {
	v := visit.New("change-package")
	v.On("package_declaration", cp.packageDecl)
	v.On("import_declaration", cp.importDecl)
	v.On("scoped_type_identifier", cp.scopedType)
	v.On("field_access", cp.qualifiedExpr)
	v.On("import_spec", cp.goImport)
	return v
}

// movePackage maps a package name to its new name.
func (cp *changePackage) movePackage(pkg, sep string) (string, bool) {
	switch {
	case pkg == cp.old:
		return cp.new, true
	case cp.recursive && strings.HasPrefix(pkg, cp.old+sep):
		return cp.new + pkg[len(cp.old):], true
	}
	return "", false
}

// moveType maps a fully-qualified Java type (or static member) name. The
// package part ends at the first segment that starts with an upper-case
// letter, so nested types and members move with their outer type.
func (cp *changePackage) moveType(fqn string) (string, bool) {
	segs := strings.Split(fqn, ".")
	for i, s := range segs {
		if s != "" && s[0] >= 'A' && s[0] <= 'Z' {
			if i == 0 {
				return "", false
			}
			pkg, ok := cp.movePackage(strings.Join(segs[:i], "."), ".")
			if !ok {
				return "", false
			}
			return pkg + "." + strings.Join(segs[i:], "."), true
		}
	}
	return "", false
}

func (cp *changePackage) moveImport(imp javaImport) (string, bool) {
	if imp.wildcard {
		if moved, ok := cp.movePackage(imp.name, "."); ok {
			return moved, true
		}
	}
	return cp.moveType(imp.name)
}

func (cp *changePackage) affected(_ *visit.Context, n *tree.Node) bool {
	switch n.Syntax() {
	case "package_declaration":
		_, ok := cp.movePackage(packageName(n), ".")
		return ok
	case "import_declaration":
		_, ok := cp.moveImport(importInfo(n))
		return ok
	case "scoped_type_identifier", "field_access":
		if t := n.Type(); t != nil && dotted(n) == t.Name {
			_, ok := cp.moveType(t.Name)
			return ok
		}
	case "import_spec":
		if path := n.ChildByField("path"); path != nil {
			if p, err := strconv.Unquote(path.Source()); err == nil {
				_, ok := cp.movePackage(p, "/")
				return ok
			}
		}
	}
	return false
}

func packageName(n *tree.Node) string {
	for _, c := range n.NamedChildren() {
		if c.Is("identifier") || c.Is("scoped_identifier") {
			return dotted(c)
		}
	}
	return ""
}

// renameChild replaces the dotted-name child of a package or import
// declaration.
func renameChild(c *visit.Cursor, n *tree.Node, target string) *tree.Node {
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

func (cp *changePackage) packageDecl(c *visit.Cursor, n *tree.Node) *tree.Node {
	if !c.Marked(n) {
		return n
	}
	target, ok := cp.movePackage(packageName(n), ".")
	if !ok {
		return n
	}
	return renameChild(c, n, target)
}

func (cp *changePackage) importDecl(c *visit.Cursor, n *tree.Node) *tree.Node {
	if c.File.Language != "java" {
		// Go import declarations hold import specs.
		return c.Descend(n)
	}
	if !c.Marked(n) {
		return n
	}
	target, ok := cp.moveImport(importInfo(n))
	if !ok {
		return n
	}
	return renameChild(c, n, target)
}

func (cp *changePackage) scopedType(c *visit.Cursor, n *tree.Node) *tree.Node {
	if !c.Marked(n) {
		return n
	}
	target, ok := cp.moveType(n.Type().Name)
	if !ok {
		return n
	}
	t, err := ingest.JavaType(c.IDs(), target)
	if err != nil {
		return c.Diagnose(n, err.Error())
	}
	return replace(n, t)
}

func (cp *changePackage) qualifiedExpr(c *visit.Cursor, n *tree.Node) *tree.Node {
	if !c.Marked(n) {
		return c.Descend(n)
	}
	target, ok := cp.moveType(n.Type().Name)
	if !ok {
		return n
	}
	e, err := ingest.JavaExpression(c.IDs(), target)
	if err != nil {
		return c.Diagnose(n, err.Error())
	}
	return replace(n, e)
}

func (cp *changePackage) goImport(c *visit.Cursor, n *tree.Node) *tree.Node {
	if !c.Marked(n) {
		return n
	}
	path := n.ChildByField("path")
	p, err := strconv.Unquote(path.Source())
	if err != nil {
		return n
	}
	target, ok := cp.movePackage(p, "/")
	if !ok {
		return n
	}
	lit := tree.NewLeaf(c.IDs().Next(), tree.KindLiteral, path.Syntax(), strconv.Quote(target))
	return n.WithChild(n.IndexOf(path), replace(path, lit))
}
