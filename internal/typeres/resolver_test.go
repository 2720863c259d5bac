package typeres

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/agentic-research/recast/api"
	"github.com/agentic-research/recast/internal/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClasspath() *api.Classpath {
	return &api.Classpath{Types: []api.TypeDecl{
		{Name: "java.lang.Object", Methods: []api.MethodDecl{{Name: "toString", Returns: "java.lang.String"}}},
		{Name: "java.lang.String", Supertypes: []string{"java.lang.Object", "java.lang.CharSequence"}},
		{Name: "java.lang.CharSequence", Kind: "interface"},
		{Name: "org.apache.http.client.HttpClient", Kind: "interface", Methods: []api.MethodDecl{
			{Name: "execute", Params: []string{"org.apache.http.client.methods.HttpUriRequest"}, Returns: "org.apache.http.HttpResponse"},
		}},
		{Name: "org.apache.http.impl.client.CloseableHttpClient", Supertypes: []string{"java.lang.Object", "org.apache.http.client.HttpClient"}},
		{Name: "org.apache.http.impl.client.DefaultHttpClient", Supertypes: []string{"org.apache.http.impl.client.CloseableHttpClient"},
			Methods: []api.MethodDecl{{Name: "<constructor>"}}},
		{Name: "com.acme.Printer", Methods: []api.MethodDecl{
			{Name: "print", Params: []string{"java.lang.String"}},
			{Name: "print", Params: []string{"int"}},
			{Name: "print", Params: []string{"java.lang.Object"}},
		}},
	}}
}

func TestIsSubtype(t *testing.T) {
	ix := NewIndex(testClasspath())
	assert.True(t, IsSubtype(ix, "org.apache.http.impl.client.DefaultHttpClient", "org.apache.http.client.HttpClient"))
	assert.True(t, IsSubtype(ix, "org.apache.http.impl.client.DefaultHttpClient", "org.apache.http.impl.client.DefaultHttpClient"))
	assert.False(t, IsSubtype(ix, "org.apache.http.client.HttpClient", "org.apache.http.impl.client.DefaultHttpClient"))
	assert.True(t, IsSubtype(ix, "java.lang.String", "java.lang.CharSequence"))
	assert.False(t, IsSubtype(ix, "com.unknown.Thing", "java.lang.Object"), "unknown types fail closed")
	assert.False(t, IsSubtype(nil, "a.B", "a.C"))
}

func TestLookupMethod_InheritedAndOverloads(t *testing.T) {
	ix := NewIndex(testClasspath())
	req := &tree.TypeRef{Name: "org.apache.http.client.methods.HttpUriRequest"}

	m, declaring, ok := LookupMethod(ix, "org.apache.http.impl.client.DefaultHttpClient", "execute", []*tree.TypeRef{req})
	require.True(t, ok)
	assert.Equal(t, "org.apache.http.client.HttpClient", declaring)
	assert.Equal(t, "org.apache.http.HttpResponse", m.Return.Name)

	m, _, ok = LookupMethod(ix, "com.acme.Printer", "print", []*tree.TypeRef{{Name: "int"}})
	require.True(t, ok)
	assert.Equal(t, "int", m.Params[0].Name)

	m, _, ok = LookupMethod(ix, "com.acme.Printer", "print", []*tree.TypeRef{{Name: "java.lang.String"}})
	require.True(t, ok)
	assert.Equal(t, "java.lang.String", m.Params[0].Name)

	_, _, ok = LookupMethod(ix, "com.acme.Printer", "print", []*tree.TypeRef{nil})
	assert.False(t, ok, "unresolved argument with several overloads is ambiguous")

	_, _, ok = LookupMethod(ix, "com.acme.Missing", "print", nil)
	assert.False(t, ok)
}

func TestLookupMethod_ObjectMethodsInherited(t *testing.T) {
	ix := NewIndex(testClasspath())
	m, declaring, ok := LookupMethod(ix, "com.acme.Printer", "toString", nil)
	require.True(t, ok)
	assert.Equal(t, "java.lang.Object", declaring)
	assert.Equal(t, "java.lang.String", m.Return.Name)
}

func TestChain(t *testing.T) {
	local := NewIndexOf([]*TypeInfo{{Name: "com.acme.Local", Kind: "class", Supertypes: []string{"org.apache.http.impl.client.DefaultHttpClient"}}})
	r := Chain(local, nil, NewIndex(testClasspath()))
	assert.True(t, IsSubtype(r, "com.acme.Local", "org.apache.http.client.HttpClient"))
	_, ok := r.Type("com.acme.Nope")
	assert.False(t, ok)
}

func TestSQLiteIndex_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "types.db")
	require.NoError(t, BuildSQLiteIndex(path, testClasspath()))

	r, closeFn, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = closeFn() }()

	info, ok := r.Type("org.apache.http.client.HttpClient")
	require.True(t, ok)
	assert.True(t, info.IsInterface())
	require.Len(t, info.Methods, 1)
	assert.Equal(t, "execute", info.Methods[0].Name)

	_, ok = r.Type("com.acme.Nope")
	assert.False(t, ok)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, IsSubtype(r, "org.apache.http.impl.client.DefaultHttpClient", "org.apache.http.client.HttpClient"))
		}()
	}
	wg.Wait()

	subs, err := r.(*SQLiteIndex).Subtypes("org.apache.http.impl.client.CloseableHttpClient")
	require.NoError(t, err)
	assert.Equal(t, []string{"org.apache.http.impl.client.DefaultHttpClient"}, subs)
}

func TestOpen_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cp.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"types": [{"name": "a.B"}]}`), 0o644))
	r, closeFn, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, closeFn())
	info, ok := r.Type("a.B")
	require.True(t, ok)
	assert.Equal(t, "class", info.Kind)
}
