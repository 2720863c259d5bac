package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/agentic-research/recast/internal/tree"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
)

// Recipes build new constructs by parsing small Java templates. The
// resulting subtree draws its IDs from the target file's generator and has
// no leading whitespace.

// JavaExpression parses an expression such as "HttpClients.createDefault()".
func JavaExpression(ids *tree.IDGen, src string) (*tree.Node, error) {
	return javaSnippet(ids, "class S { Object v = "+src+"; }", func(root *sitter.Node) *sitter.Node {
		if d := findSitter(root, "variable_declarator"); d != nil {
			return d.ChildByFieldName("value")
		}
		return nil
	})
}

// JavaType parses a type such as "CloseableHttpClient" or "java.util.List<String>".
func JavaType(ids *tree.IDGen, src string) (*tree.Node, error) {
	return javaSnippet(ids, "class S { "+src+" v; }", func(root *sitter.Node) *sitter.Node {
		if d := findSitter(root, "field_declaration"); d != nil {
			return d.ChildByFieldName("type")
		}
		return nil
	})
}

// JavaImport builds an import declaration for a fully-qualified name.
func JavaImport(ids *tree.IDGen, name string, static bool) (*tree.Node, error) {
	src := "import " + name + ";"
	if static {
		src = "import static " + name + ";"
	}
	return javaSnippet(ids, src, func(root *sitter.Node) *sitter.Node {
		return findSitter(root, "import_declaration")
	})
}

// JavaName parses a dotted name such as "com.acme.util" as a scoped identifier.
func JavaName(ids *tree.IDGen, name string) (*tree.Node, error) {
	return javaSnippet(ids, "package "+name+";", func(root *sitter.Node) *sitter.Node {
		if p := findSitter(root, "package_declaration"); p != nil {
			for i := 0; i < int(p.ChildCount()); i++ {
				if c := p.Child(i); c.IsNamed() {
					return c
				}
			}
		}
		return nil
	})
}

// JavaSuperInterfaces builds an "implements A, B" clause.
func JavaSuperInterfaces(ids *tree.IDGen, names ...string) (*tree.Node, error) {
	src := "class S implements " + strings.Join(names, ", ") + " {}"
	return javaSnippet(ids, src, func(root *sitter.Node) *sitter.Node {
		if d := findSitter(root, "class_declaration"); d != nil {
			return d.ChildByFieldName("interfaces")
		}
		return nil
	})
}

// JavaStatement parses a single statement.
func JavaStatement(ids *tree.IDGen, src string) (*tree.Node, error) {
	return javaSnippet(ids, "class S { void m() { "+src+" } }", func(root *sitter.Node) *sitter.Node {
		if b := findSitter(root, "block"); b != nil {
			for i := 0; i < int(b.ChildCount()); i++ {
				if c := b.Child(i); c.IsNamed() && !isComment(c.Type()) {
					return c
				}
			}
		}
		return nil
	})
}

func javaSnippet(ids *tree.IDGen, src string, pick func(*sitter.Node) *sitter.Node) (*tree.Node, error) {
	text := []byte(src)
	parser := sitter.NewParser()
	parser.SetLanguage(java.GetLanguage())
	t, err := parser.ParseCtx(context.Background(), nil, text)
	if err != nil {
		return nil, fmt.Errorf("parse snippet %q: %w", src, err)
	}
	root := t.RootNode()
	if root == nil || root.HasError() {
		return nil, fmt.Errorf("invalid snippet %q", src)
	}
	target := pick(root)
	if target == nil {
		return nil, fmt.Errorf("snippet %q: construct not found", src)
	}
	b := &builder{src: text, ids: ids, pos: int(target.StartByte())}
	n := b.convert(target, "")
	if n == nil {
		return nil, fmt.Errorf("snippet %q: empty construct", src)
	}
	return n, nil
}

func findSitter(n *sitter.Node, typ string) *sitter.Node {
	if n.Type() == typ {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if found := findSitter(n.Child(i), typ); found != nil {
			return found
		}
	}
	return nil
}
