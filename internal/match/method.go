package match

import (
	"fmt"
	"strings"

	"github.com/agentic-research/recast/internal/tree"
	"github.com/agentic-research/recast/internal/typeres"
)

// AnyArgs in a parameter list matches zero or more parameters.
const AnyArgs = ".."

// MethodMatcher matches invocations by receiver type, method name and
// declared parameter types. Patterns look like
//
//	org.apache.http.client.HttpClient execute(..)
//	java.lang.String format(java.lang.String, *)
//	org.apache.http.impl.client.DefaultHttpClient <constructor>()
//
// "*" matches any single type or any method name, ".." any run of parameters.
type MethodMatcher struct {
	Owner  TypeMatcher
	Name   string
	Params []string
}

// ParseMethodPattern compiles a method pattern. A "+" suffix on the owner
// turns on subtype matching, as does subtypes.
func ParseMethodPattern(pattern string, subtypes bool) (MethodMatcher, error) {
	pattern = strings.TrimSpace(pattern)
	sp := strings.IndexAny(pattern, " \t")
	open := strings.IndexByte(pattern, '(')
	if sp < 0 || open < sp || !strings.HasSuffix(pattern, ")") {
		return MethodMatcher{}, fmt.Errorf("invalid method pattern %q: want \"owner name(params)\"", pattern)
	}
	owner := strings.TrimSpace(pattern[:sp])
	if strings.HasSuffix(owner, "+") {
		owner = strings.TrimSuffix(owner, "+")
		subtypes = true
	}
	name := strings.TrimSpace(pattern[sp:open])
	if name == "" || owner == "" {
		return MethodMatcher{}, fmt.Errorf("invalid method pattern %q", pattern)
	}
	if name == "<init>" {
		name = tree.Constructor
	}
	m := MethodMatcher{Owner: NewTypeMatcher(owner, subtypes), Name: name}
	if args := strings.TrimSpace(pattern[open+1 : len(pattern)-1]); args != "" {
		for _, p := range strings.Split(args, ",") {
			p = strings.TrimSpace(p)
			if p == "" {
				return MethodMatcher{}, fmt.Errorf("invalid method pattern %q: empty parameter", pattern)
			}
			m.Params = append(m.Params, p)
		}
	}
	return m, nil
}

// MustParseMethodPattern is ParseMethodPattern for patterns known to be valid.
func MustParseMethodPattern(pattern string) MethodMatcher {
	m, err := ParseMethodPattern(pattern, false)
	if err != nil {
		panic(err)
	}
	return m
}

// Matches reports whether the resolved signature mr matches. An unresolved
// signature never matches.
func (m MethodMatcher) Matches(r typeres.Resolver, mr *tree.MethodRef) bool {
	if mr == nil {
		return false
	}
	if m.Name != Any && m.Name != mr.Name {
		return false
	}
	if !m.Owner.Matches(r, &mr.Owner) {
		return false
	}
	return matchParams(m.Params, mr.Params)
}

// MatchesNode reports whether n is an invocation or constructor call whose
// resolved signature matches.
func (m MethodMatcher) MatchesNode(r typeres.Resolver, n *tree.Node) bool {
	return n != nil && m.Matches(r, n.Method())
}

func matchParams(pats []string, params []tree.TypeRef) bool {
	if len(pats) == 0 {
		return len(params) == 0
	}
	if pats[0] == AnyArgs {
		for i := 0; i <= len(params); i++ {
			if matchParams(pats[1:], params[i:]) {
				return true
			}
		}
		return false
	}
	if len(params) == 0 {
		return false
	}
	p := params[0].Name
	if p == "" {
		return false
	}
	if pats[0] != Any && pats[0] != p {
		return false
	}
	return matchParams(pats[1:], params[1:])
}

func (m MethodMatcher) String() string {
	return m.Owner.String() + " " + m.Name + "(" + strings.Join(m.Params, ", ") + ")"
}
