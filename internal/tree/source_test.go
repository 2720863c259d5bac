package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceTree_PrintIncludesEOF(t *testing.T) {
	ids := &IDGen{}
	st := &SourceTree{Path: "A.java", Root: sample(ids), EOF: "\n// end\n", IDs: ids}
	assert.Equal(t, "// call\nfoo(a, b)\n// end\n", st.Print())
}

func TestSourceTree_WithRootSameIsNoop(t *testing.T) {
	ids := &IDGen{}
	st := &SourceTree{Root: sample(ids), IDs: ids}
	assert.Same(t, st, st.WithRoot(st.Root))
	assert.NotSame(t, st, st.WithRoot(st.Root.WithMarker(SearchResult{Recipe: "x"})))
}

func TestSourceTree_WithMarker(t *testing.T) {
	st := &SourceTree{}
	m := Diagnostic{Kind: ValidationFailed, Message: "bad"}
	marked := st.WithMarker(m)
	assert.Equal(t, 0, st.Markers.Len())
	assert.Equal(t, 1, marked.Markers.Len())
	assert.Same(t, marked, marked.WithMarker(m))
}

func TestWalk_Stack(t *testing.T) {
	n := sample(&IDGen{})
	var parents []string
	Walk(n, func(stack []*Node) bool {
		if stack[0].LeafText() == "b" {
			for _, p := range stack[1:] {
				parents = append(parents, p.Syntax())
			}
		}
		return true
	})
	assert.Equal(t, []string{"argument_list", "method_invocation"}, parents)
}

func TestFind(t *testing.T) {
	n := sample(&IDGen{})
	args := Find(n, BySyntax("argument_list"))
	require.NotNil(t, args)
	assert.Len(t, FindAll(n, BySyntax("identifier")), 3)
	assert.Nil(t, Find(n, BySyntax("lambda_expression")))
}

func TestSourceTree_Spans(t *testing.T) {
	ids := &IDGen{}
	n := sample(ids)
	st := &SourceTree{Root: n, IDs: ids}
	spans := st.Spans()
	text := st.Print()
	args := n.ChildByField("arguments")
	sp := spans[args.ID()]
	assert.Equal(t, "(a, b)", text[sp.Start:sp.End])
	sp = spans[n.ID()]
	assert.Equal(t, "foo(a, b)", text[sp.Start:sp.End])
}
