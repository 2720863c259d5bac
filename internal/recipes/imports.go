package recipes

import (
	"strings"

	"github.com/agentic-research/recast/internal/ingest"
	"github.com/agentic-research/recast/internal/tree"
)

type javaImport struct {
	node     *tree.Node
	name     string
	static   bool
	wildcard bool
}

func importInfo(n *tree.Node) javaImport {
	imp := javaImport{node: n}
	for _, c := range n.Children() {
		switch c.Syntax() {
		case "identifier", "scoped_identifier":
			imp.name = dotted(c)
		case "static":
			imp.static = true
		case "asterisk":
			imp.wildcard = true
		}
	}
	return imp
}

func importsOf(root *tree.Node) []javaImport {
	var out []javaImport
	for _, c := range root.Children() {
		if c.Is("import_declaration") {
			out = append(out, importInfo(c))
		}
	}
	return out
}

func packageOf(root *tree.Node) string {
	for _, c := range root.Children() {
		if !c.Is("package_declaration") {
			continue
		}
		for _, n := range c.NamedChildren() {
			if n.Is("identifier") || n.Is("scoped_identifier") {
				return dotted(n)
			}
		}
	}
	return ""
}

// dotted prints a name without the whitespace or comments inside it.
func dotted(n *tree.Node) string {
	return strings.Join(strings.Fields(n.Source()), "")
}

func qualifier(fqn string) string {
	if i := strings.LastIndexByte(fqn, '.'); i >= 0 {
		return fqn[:i]
	}
	return ""
}

// referenceName returns how the type fqn can be written in the file, and
// whether an import has to be added for that spelling to resolve. Imports
// of the names in ignore are disregarded.
func referenceName(root *tree.Node, fqn string, ignore ...string) (string, bool) {
	simple := tree.SimpleName(fqn)
	pkg := qualifier(fqn)
	if pkg == "" || pkg == "java.lang" || pkg == packageOf(root) {
		return simple, false
	}
	for _, imp := range importsOf(root) {
		switch {
		case imp.static, contains(ignore, imp.name):
		case imp.wildcard:
			if imp.name == pkg {
				return simple, false
			}
		case imp.name == fqn:
			return simple, false
		case tree.SimpleName(imp.name) == simple:
			return fqn, false
		}
	}
	if declaresType(root, simple) {
		return fqn, false
	}
	return simple, true
}

func declaresType(root *tree.Node, simple string) bool {
	return tree.Find(root, func(n *tree.Node) bool {
		switch n.Syntax() {
		case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration":
			name := n.ChildByField("name")
			return name != nil && name.LeafText() == simple
		}
		return false
	}) != nil
}

// addImport inserts a single-type import for fqn in sorted position. It is
// a no-op when fqn is already visible under its simple name or cannot be
// imported without a clash.
func addImport(ids *tree.IDGen, root *tree.Node, fqn string) (*tree.Node, error) {
	if _, need := referenceName(root, fqn); !need {
		return root, nil
	}
	imp, err := ingest.JavaImport(ids, fqn, false)
	if err != nil {
		return root, err
	}

	children := root.Children()
	insertAt, lastImport, pkgAt := -1, -1, -1
	for i, c := range children {
		switch {
		case c.Is("package_declaration"):
			pkgAt = i
		case c.Is("import_declaration"):
			lastImport = i
			if info := importInfo(c); insertAt < 0 && !info.static && info.name > fqn {
				insertAt = i
			}
		}
	}

	out := make([]*tree.Node, 0, len(children)+1)
	switch {
	case insertAt >= 0:
		next := children[insertAt]
		out = append(out, children[:insertAt]...)
		out = append(out, tree.WithLeadingSpace(imp, tree.LeadingSpace(next)), tree.WithLeadingSpace(next, "\n"))
		out = append(out, children[insertAt+1:]...)
	case lastImport >= 0:
		out = append(out, children[:lastImport+1]...)
		out = append(out, tree.WithLeadingSpace(imp, "\n"))
		out = append(out, children[lastImport+1:]...)
	case pkgAt >= 0:
		out = append(out, children[:pkgAt+1]...)
		out = append(out, tree.WithLeadingSpace(imp, "\n\n"))
		out = append(out, children[pkgAt+1:]...)
	default:
		out = append(out, imp)
		for i, c := range children {
			if i == 0 {
				c = tree.WithLeadingSpace(c, "\n\n"+tree.LeadingSpace(c))
			}
			out = append(out, c)
		}
	}
	return root.WithChildren(out), nil
}

// removeImports drops the imports matching pred. An import that moves up
// to take a removed import's place inherits its leading whitespace.
func removeImports(root *tree.Node, pred func(javaImport) bool) *tree.Node {
	children := root.Children()
	out := make([]*tree.Node, 0, len(children))
	removed := false
	var carry *string
	for _, c := range children {
		if c.Is("import_declaration") && pred(importInfo(c)) {
			if carry == nil {
				lead := tree.LeadingSpace(c)
				carry = &lead
			}
			removed = true
			continue
		}
		if carry != nil {
			if c.Is("import_declaration") || len(out) == 0 {
				c = tree.WithLeadingSpace(c, *carry)
			}
			carry = nil
		}
		out = append(out, c)
	}
	if !removed {
		return root
	}
	return root.WithChildren(out)
}

// removeImportIfUnused drops the single-type import of fqn when nothing
// outside the import block mentions its simple name any more.
func removeImportIfUnused(root *tree.Node, fqn string) *tree.Node {
	if usesSimpleName(root, tree.SimpleName(fqn)) {
		return root
	}
	return removeImports(root, func(imp javaImport) bool {
		return !imp.static && !imp.wildcard && imp.name == fqn
	})
}

func usesSimpleName(root *tree.Node, simple string) bool {
	found := false
	tree.Walk(root, func(stack []*tree.Node) bool {
		n := stack[0]
		if found || n.Is("import_declaration") || n.Is("package_declaration") {
			return false
		}
		if (n.Is("identifier") || n.Is("type_identifier")) && n.LeafText() == simple {
			found = true
			return false
		}
		return true
	})
	return found
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

// replace puts repl where n was, keeping n's leading whitespace and field.
func replace(n, repl *tree.Node) *tree.Node {
	return tree.WithLeadingSpace(repl, tree.LeadingSpace(n)).WithField(n.Field())
}
