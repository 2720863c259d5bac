package visit

import (
	"testing"

	"github.com/agentic-research/recast/internal/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// file builds `a + b; c;` as a tiny tree.
func file() *tree.SourceTree {
	ids := &tree.IDGen{}
	leaf := func(kind tree.Kind, syntax, prefix, text string) *tree.Node {
		return tree.NewLeaf(ids.Next(), kind, syntax, text).WithPrefix(prefix)
	}
	sum := tree.NewBranch(ids.Next(), tree.KindExpression, "binary_expression",
		leaf(tree.KindName, "identifier", "", "a").WithField("left"),
		leaf(tree.KindToken, "+", " ", "+"),
		leaf(tree.KindName, "identifier", " ", "b").WithField("right"),
	)
	s1 := tree.NewBranch(ids.Next(), tree.KindStatement, "expression_statement", sum, leaf(tree.KindToken, ";", "", ";"))
	s2 := tree.NewBranch(ids.Next(), tree.KindStatement, "expression_statement",
		leaf(tree.KindName, "identifier", " ", "c"), leaf(tree.KindToken, ";", "", ";"))
	root := tree.NewBranch(ids.Next(), tree.KindFile, "program", s1, s2)
	return &tree.SourceTree{Path: "x.java", Root: root, EOF: "\n", IDs: ids}
}

func TestVisitor_NoopReturnsSameRoot(t *testing.T) {
	st := file()
	v := New("noop").OnKind(tree.KindName, func(c *Cursor, n *tree.Node) *tree.Node { return n })
	out := v.Apply(&Context{File: st})
	assert.Same(t, st, out)
	assert.Same(t, st.Root, out.Root)
}

func TestVisitor_RebuildsOnlyChangedPath(t *testing.T) {
	st := file()
	v := New("rename").On("identifier", func(c *Cursor, n *tree.Node) *tree.Node {
		if n.LeafText() == "b" {
			return n.WithText("bb")
		}
		return n
	})
	out := v.Apply(&Context{File: st})
	require.NotSame(t, st.Root, out.Root)
	assert.Equal(t, "a + bb; c;\n", out.Print())
	assert.Equal(t, "a + b; c;\n", st.Print())
	// The untouched statement is shared by reference.
	assert.Same(t, st.Root.Child(1), out.Root.Child(1))
	assert.Equal(t, st.Root.ID(), out.Root.ID())
	// The replaced leaf keeps its field name.
	assert.Equal(t, "right", out.Root.Child(0).Child(0).ChildByField("right").Field())
}

func TestVisitor_DeleteChild(t *testing.T) {
	st := file()
	v := New("drop").On("expression_statement", func(c *Cursor, n *tree.Node) *tree.Node {
		if n.Child(0).Is("binary_expression") {
			return nil
		}
		return n
	})
	out := v.Apply(&Context{File: st})
	assert.Equal(t, " c;\n", out.Print())
}

func TestVisitor_SyntaxOverrideWinsOverKind(t *testing.T) {
	st := file()
	var hits []string
	v := New("order").
		OnKind(tree.KindName, func(c *Cursor, n *tree.Node) *tree.Node {
			hits = append(hits, "kind:"+n.LeafText())
			return n
		}).
		On("identifier", func(c *Cursor, n *tree.Node) *tree.Node {
			hits = append(hits, "syntax:"+n.LeafText())
			return n
		})
	v.Apply(&Context{File: st})
	assert.Equal(t, []string{"syntax:a", "syntax:b", "syntax:c"}, hits)
}

func TestCursor_ParentAndEnclosing(t *testing.T) {
	st := file()
	var parent, stmt string
	v := New("ctx").On("identifier", func(c *Cursor, n *tree.Node) *tree.Node {
		if n.LeafText() == "b" {
			parent = c.Parent().Syntax()
			stmt = c.Enclosing("expression_statement").Syntax()
			assert.Len(t, c.Ancestors(), 3)
		}
		return n
	})
	v.Apply(&Context{File: st})
	assert.Equal(t, "binary_expression", parent)
	assert.Equal(t, "expression_statement", stmt)
}

func TestCursor_DescendPostOrder(t *testing.T) {
	st := file()
	v := New("post")
	v.On("binary_expression", func(c *Cursor, n *tree.Node) *tree.Node {
		n = c.Descend(n)
		return n.WithType(&tree.TypeRef{Name: "int"})
	})
	v.On("identifier", func(c *Cursor, n *tree.Node) *tree.Node {
		return n.WithType(&tree.TypeRef{Name: "int"})
	})
	out := v.Apply(&Context{File: st})
	sum := out.Root.Child(0).Child(0)
	assert.Equal(t, "int", sum.Type().Name)
	assert.Equal(t, "int", sum.Child(0).Type().Name)

	// A second run sets equal types and changes nothing.
	again := v.Apply(&Context{File: out})
	assert.Same(t, out, again)
}

func TestCursor_MarkedAndDiagnose(t *testing.T) {
	st := file()
	st = st.WithRoot(st.Root.WithMarker(tree.SearchResult{Recipe: "r"}))
	v := New("diag").On("expression_statement", func(c *Cursor, n *tree.Node) *tree.Node {
		require.True(t, c.Marked(n))
		return c.Diagnose(n, "cannot rewrite")
	})
	out := v.Apply(&Context{Recipe: "r", File: st})
	key := tree.Diagnostic{Recipe: "r", Kind: tree.UnsafeRewrite}.Key()
	assert.True(t, out.Root.Child(0).HasMarker(key))
	assert.Equal(t, st.Print(), out.Print(), "markers never affect printing")

	again := v.Apply(&Context{Recipe: "r", File: out})
	assert.Same(t, out, again)
}
