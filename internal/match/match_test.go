package match

import (
	"testing"

	"github.com/agentic-research/recast/api"
	"github.com/agentic-research/recast/internal/tree"
	"github.com/agentic-research/recast/internal/typeres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolver() typeres.Resolver {
	return typeres.NewIndex(&api.Classpath{Types: []api.TypeDecl{
		{Name: "org.apache.http.client.HttpClient", Kind: "interface"},
		{Name: "org.apache.http.impl.client.CloseableHttpClient", Supertypes: []string{"org.apache.http.client.HttpClient"}},
		{Name: "org.apache.http.impl.client.DefaultHttpClient", Supertypes: []string{"org.apache.http.impl.client.CloseableHttpClient"}},
	}})
}

func TestTypeMatcher(t *testing.T) {
	r := resolver()
	def := &tree.TypeRef{Name: "org.apache.http.impl.client.DefaultHttpClient"}

	exact := NewTypeMatcher("org.apache.http.client.HttpClient", false)
	assert.False(t, exact.Matches(r, def))
	assert.True(t, exact.Matches(r, &tree.TypeRef{Name: "org.apache.http.client.HttpClient"}))

	sub := NewTypeMatcher("org.apache.http.client.HttpClient", true)
	assert.True(t, sub.Matches(r, def))
	assert.False(t, sub.Matches(r, nil), "unresolved types never match")
	assert.False(t, sub.Matches(r, &tree.TypeRef{Name: "com.other.Client"}))
	assert.False(t, NewTypeMatcher(Any, false).Matches(r, nil))
}

func TestTypeMatcher_Uses(t *testing.T) {
	r := resolver()
	ids := &tree.IDGen{}
	n := tree.NewBranch(ids.Next(), tree.KindExpression, "method_invocation",
		tree.NewLeaf(ids.Next(), tree.KindName, "identifier", "client"),
	).WithMethod(&tree.MethodRef{Owner: tree.TypeRef{Name: "org.apache.http.impl.client.DefaultHttpClient"}, Name: "close"})
	assert.True(t, NewTypeMatcher("org.apache.http.impl.client.DefaultHttpClient", false).Uses(r, n))
	assert.False(t, NewTypeMatcher("java.lang.String", false).Uses(r, n))
}

func TestParseMethodPattern(t *testing.T) {
	m, err := ParseMethodPattern("org.apache.http.client.HttpClient+ execute(..)", false)
	require.NoError(t, err)
	assert.True(t, m.Owner.Subtypes)
	assert.Equal(t, "execute", m.Name)
	assert.Equal(t, []string{".."}, m.Params)

	m, err = ParseMethodPattern("a.B <init>()", false)
	require.NoError(t, err)
	assert.Equal(t, tree.Constructor, m.Name)
	assert.Empty(t, m.Params)

	for _, bad := range []string{"", "execute()", "a.B execute", "a.B execute(x,,y)"} {
		_, err := ParseMethodPattern(bad, false)
		assert.Error(t, err, bad)
	}
}

func TestMethodMatcher_Matches(t *testing.T) {
	r := resolver()
	execute := &tree.MethodRef{
		Owner:  tree.TypeRef{Name: "org.apache.http.impl.client.DefaultHttpClient"},
		Name:   "execute",
		Params: []tree.TypeRef{{Name: "org.apache.http.HttpHost"}, {Name: "org.apache.http.HttpRequest"}},
	}
	tests := []struct {
		pattern  string
		subtypes bool
		want     bool
	}{
		{"org.apache.http.impl.client.DefaultHttpClient execute(..)", false, true},
		{"org.apache.http.client.HttpClient execute(..)", false, false},
		{"org.apache.http.client.HttpClient execute(..)", true, true},
		{"org.apache.http.impl.client.DefaultHttpClient execute(org.apache.http.HttpHost, *)", false, true},
		{"org.apache.http.impl.client.DefaultHttpClient execute(*)", false, false},
		{"org.apache.http.impl.client.DefaultHttpClient execute(.., org.apache.http.HttpRequest)", false, true},
		{"org.apache.http.impl.client.DefaultHttpClient execute(org.apache.http.HttpHost, .., org.apache.http.HttpRequest)", false, true},
		{"org.apache.http.impl.client.DefaultHttpClient execute()", false, false},
		{"org.apache.http.impl.client.DefaultHttpClient * (..)", false, true},
		{"* execute(..)", false, true},
		{"org.apache.http.impl.client.DefaultHttpClient close(..)", false, false},
	}
	for _, tt := range tests {
		m, err := ParseMethodPattern(tt.pattern, tt.subtypes)
		require.NoError(t, err, tt.pattern)
		assert.Equal(t, tt.want, m.Matches(r, execute), tt.pattern)
	}
}

func TestMethodMatcher_UnresolvedNeverMatches(t *testing.T) {
	m := MustParseMethodPattern("* *(..)")
	assert.False(t, m.Matches(resolver(), nil))
	ids := &tree.IDGen{}
	n := tree.NewLeaf(ids.Next(), tree.KindExpression, "method_invocation", "")
	assert.False(t, m.MatchesNode(resolver(), n))
}
