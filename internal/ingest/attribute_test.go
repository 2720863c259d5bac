package ingest

import (
	"context"
	"testing"

	"github.com/agentic-research/recast/api"
	"github.com/agentic-research/recast/internal/tree"
	"github.com/agentic-research/recast/internal/typeres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func httpTypes() typeres.Resolver {
	return typeres.NewIndex(&api.Classpath{Types: []api.TypeDecl{
		{Name: "java.lang.Object"},
		{Name: "java.lang.String", Methods: []api.MethodDecl{{Name: "length", Returns: "int"}}},
		{Name: "org.apache.http.impl.client.CloseableHttpClient", Methods: []api.MethodDecl{{Name: "close"}}},
		{Name: "org.apache.http.impl.client.DefaultHttpClient",
			Supertypes: []string{"org.apache.http.impl.client.CloseableHttpClient"},
			Methods:    []api.MethodDecl{{Name: "<constructor>"}}},
		{Name: "org.apache.http.impl.client.HttpClients", Methods: []api.MethodDecl{
			{Name: "createDefault", Returns: "org.apache.http.impl.client.CloseableHttpClient", Static: true},
		}},
	}})
}

const clientSrc = `package com.acme;

import org.apache.http.impl.client.DefaultHttpClient;
import org.apache.http.impl.client.HttpClients;

class Client {
    private String name = "x";

    void run() {
        DefaultHttpClient c = new DefaultHttpClient();
        c.close();
        HttpClients.createDefault().close();
        int n = name.length();
        unknown.call();
    }
}
`

func attributed(t *testing.T, path, src string, r typeres.Resolver) *tree.SourceTree {
	t.Helper()
	st, err := Parse(context.Background(), path, []byte(src))
	require.NoError(t, err)
	return Attribute(st, r)
}

func invocations(st *tree.SourceTree) map[string]*tree.Node {
	out := map[string]*tree.Node{}
	for _, n := range tree.FindAll(st.Root, tree.BySyntax("method_invocation")) {
		out[n.Source()] = n
	}
	return out
}

func TestAttribute_Types(t *testing.T) {
	st := attributed(t, "Client.java", clientSrc, httpTypes())

	decl := tree.Find(st.Root, tree.BySyntax("local_variable_declaration"))
	require.NotNil(t, decl)
	assert.Equal(t, "org.apache.http.impl.client.DefaultHttpClient", decl.ChildByField("type").Type().Name)

	fieldType := tree.Find(st.Root, tree.BySyntax("field_declaration")).ChildByField("type")
	assert.Equal(t, "java.lang.String", fieldType.Type().Name, "java.lang is implicit")

	lit := tree.Find(st.Root, tree.BySyntax("string_literal"))
	assert.Equal(t, "java.lang.String", lit.Type().Name)
}

func TestAttribute_ConstructorCall(t *testing.T) {
	st := attributed(t, "Client.java", clientSrc, httpTypes())

	nc := tree.Find(st.Root, tree.BySyntax("object_creation_expression"))
	require.NotNil(t, nc)
	require.NotNil(t, nc.Method())
	assert.Equal(t, tree.Constructor, nc.Method().Name)
	assert.Equal(t, "org.apache.http.impl.client.DefaultHttpClient", nc.Method().Owner.Name)
	assert.Empty(t, nc.Method().Params)
	assert.Equal(t, "org.apache.http.impl.client.DefaultHttpClient", nc.Type().Name)
}

func TestAttribute_Invocations(t *testing.T) {
	st := attributed(t, "Client.java", clientSrc, httpTypes())
	calls := invocations(st)

	inherited := calls["c.close()"].Method()
	require.NotNil(t, inherited)
	assert.Equal(t, "org.apache.http.impl.client.DefaultHttpClient", inherited.Owner.Name, "owner is the receiver type")
	assert.Equal(t, "org.apache.http.impl.client.CloseableHttpClient", inherited.Declaring)

	static := calls["HttpClients.createDefault()"].Method()
	require.NotNil(t, static)
	assert.True(t, static.Static)
	assert.Equal(t, "org.apache.http.impl.client.CloseableHttpClient", static.Return.Name)

	chained := calls["HttpClients.createDefault().close()"].Method()
	require.NotNil(t, chained)
	assert.Equal(t, "org.apache.http.impl.client.CloseableHttpClient", chained.Owner.Name)

	length := calls["name.length()"]
	require.NotNil(t, length.Method())
	assert.Equal(t, "int", length.Type().Name)

	assert.Nil(t, calls["unknown.call()"].Method(), "unresolvable receivers stay unresolved")
}

func TestAttribute_Idempotent(t *testing.T) {
	st := attributed(t, "Client.java", clientSrc, httpTypes())
	again := Attribute(st, httpTypes())
	assert.Same(t, st, again)
}

func TestAttribute_WithoutClasspath(t *testing.T) {
	st := attributed(t, "Client.java", clientSrc, nil)

	decl := tree.Find(st.Root, tree.BySyntax("local_variable_declaration"))
	assert.Equal(t, "org.apache.http.impl.client.DefaultHttpClient", decl.ChildByField("type").Type().Name,
		"explicit single-type imports resolve without a classpath")
	for src, call := range invocations(st) {
		assert.Nil(t, call.Method(), src)
	}
}

func TestAttribute_ShadowingAndScopes(t *testing.T) {
	src := `package com.acme;

class Scopes {
    String s;

    void m(int s) {
        s.length();
    }

    void n() {
        s.length();
        java.util.function.Function<String, Integer> f = s -> s.length();
    }
}
`
	st := attributed(t, "Scopes.java", src, httpTypes())
	var resolved, unresolved int
	for _, call := range tree.FindAll(st.Root, tree.BySyntax("method_invocation")) {
		if call.Method() != nil {
			resolved++
		} else {
			unresolved++
		}
	}
	assert.Equal(t, 1, resolved, "only the field receiver resolves")
	assert.Equal(t, 2, unresolved, "parameter and lambda shadow the field")
}

func TestAttribute_NonJavaUnchanged(t *testing.T) {
	st, err := Parse(context.Background(), "main.go", []byte("package main\n"))
	require.NoError(t, err)
	assert.Same(t, st, Attribute(st, httpTypes()))
}

func TestDeclarations(t *testing.T) {
	src := `package com.acme;

import org.apache.http.impl.client.CloseableHttpClient;

public class Holder extends Base implements Runnable {
    public static final int MAX = 3;
    private CloseableHttpClient client;

    public Holder(CloseableHttpClient client) { this.client = client; }

    public static Holder create() { return null; }

    public void run() {}

    enum Mode { ON, OFF }
}
`
	st := attributed(t, "Holder.java", src, httpTypes())
	decls := Declarations(st)
	require.Len(t, decls, 2)

	holder := decls[0]
	assert.Equal(t, "com.acme.Holder", holder.Name)
	assert.Equal(t, []string{"java.lang.Runnable"}, holder.Supertypes, "unresolved supertypes are dropped")

	byName := map[string]typeres.MethodInfo{}
	for _, m := range holder.Methods {
		byName[m.Name] = m
	}
	require.Contains(t, byName, tree.Constructor)
	assert.Equal(t, "org.apache.http.impl.client.CloseableHttpClient", byName[tree.Constructor].Params[0].Name)
	assert.True(t, byName["create"].Static)
	assert.Equal(t, "com.acme.Holder", byName["create"].Return.Name)
	assert.Nil(t, byName["run"].Return)

	require.Len(t, holder.Fields, 2)
	assert.True(t, holder.Fields[0].Static)
	assert.Equal(t, "int", holder.Fields[0].Type.Name)

	mode := decls[1]
	assert.Equal(t, "com.acme.Holder.Mode", mode.Name)
	assert.Equal(t, "enum", mode.Kind)
	assert.Len(t, mode.Fields, 2)
}

func TestFrontend_DeclareOverlay(t *testing.T) {
	util := `package com.acme;

public class Util {
    public static String shout(String s) { return s; }
}
`
	user := `package com.acme;

class User {
    void m() { Util.shout("x"); }
}
`
	fe := NewFrontend(httpTypes())
	a, err := fe.Parse(context.Background(), "Util.java", []byte(util))
	require.NoError(t, err)
	b, err := fe.Parse(context.Background(), "User.java", []byte(user))
	require.NoError(t, err)

	assert.Nil(t, invocations(fe.Attribute(b))[`Util.shout("x")`].Method(), "not yet declared")

	fe.Declare([]*tree.SourceTree{a, b})
	call := invocations(fe.Attribute(b))[`Util.shout("x")`]
	require.NotNil(t, call.Method())
	assert.Equal(t, "com.acme.Util", call.Method().Owner.Name)
	assert.Equal(t, "java.lang.String", call.Type().Name)
}

func TestAttribute_ClassLiteralAndAnnotation(t *testing.T) {
	src := `package com.acme;

import org.apache.http.impl.client.HttpClients;

@HttpClients
class Holder {
    Class<?> k = HttpClients.class;
}
`
	st := attributed(t, "Holder.java", src, httpTypes())

	lit := tree.Find(st.Root, tree.BySyntax("class_literal"))
	require.NotNil(t, lit)
	assert.Equal(t, "java.lang.Class", lit.Type().Name)
	inner := tree.Find(lit, tree.BySyntax("type_identifier"))
	require.NotNil(t, inner)
	require.NotNil(t, inner.Type())
	assert.Equal(t, "org.apache.http.impl.client.HttpClients", inner.Type().Name)

	ann := tree.Find(st.Root, tree.BySyntax("marker_annotation"))
	require.NotNil(t, ann)
	name := ann.ChildByField("name")
	require.NotNil(t, name)
	require.NotNil(t, name.Type())
	assert.Equal(t, "org.apache.http.impl.client.HttpClients", name.Type().Name)
}
