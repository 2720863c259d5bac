package tree

import (
	"reflect"
	"sort"
)

// Marker is metadata attached to a node or a source file. Markers never
// affect printed output. Two markers with the same Key occupy the same slot.
type Marker interface {
	Key() string
}

// SearchResult records that a recipe's precondition matched the node.
type SearchResult struct {
	Recipe      string
	Description string
}

func (m SearchResult) Key() string { return "search/" + m.Recipe }

// DiagnosticKind classifies a Diagnostic marker.
type DiagnosticKind uint8

const (
	// UnsafeRewrite: a recipe declined to rewrite a matching construct.
	UnsafeRewrite DiagnosticKind = iota + 1
	// ValidationFailed: the rewritten file did not re-parse cleanly.
	ValidationFailed
	// UnresolvedReference: a recipe skipped a construct it could not resolve.
	UnresolvedReference
)

func (k DiagnosticKind) String() string {
	switch k {
	case UnsafeRewrite:
		return "unsafe-rewrite"
	case ValidationFailed:
		return "validation-failure"
	case UnresolvedReference:
		return "unresolved-reference"
	}
	return "unknown"
}

// Diagnostic is a marker a recipe attaches instead of performing an unsafe
// rewrite, or the pipeline attaches to a file that failed validation.
type Diagnostic struct {
	Recipe  string
	Kind    DiagnosticKind
	Message string
}

func (m Diagnostic) Key() string { return "diagnostic/" + m.Kind.String() + "/" + m.Recipe }

// Markers is an immutable set of markers keyed by Marker.Key.
// The zero value is an empty set.
type Markers struct {
	m map[string]Marker
}

// Len returns the number of markers.
func (ms Markers) Len() int { return len(ms.m) }

// Get returns the marker stored under key.
func (ms Markers) Get(key string) (Marker, bool) {
	m, ok := ms.m[key]
	return m, ok
}

// Has reports whether a marker equal to m is present.
func (ms Markers) Has(m Marker) bool {
	cur, ok := ms.m[m.Key()]
	return ok && reflect.DeepEqual(cur, m)
}

// With returns a set containing m. If an equal marker is already present the
// receiver is returned unchanged, and ok is false.
func (ms Markers) With(m Marker) (Markers, bool) {
	if ms.Has(m) {
		return ms, false
	}
	next := make(map[string]Marker, len(ms.m)+1)
	for k, v := range ms.m {
		next[k] = v
	}
	next[m.Key()] = m
	return Markers{m: next}, true
}

// Without returns a set with the marker under key removed.
func (ms Markers) Without(key string) (Markers, bool) {
	if _, ok := ms.m[key]; !ok {
		return ms, false
	}
	next := make(map[string]Marker, len(ms.m))
	for k, v := range ms.m {
		if k != key {
			next[k] = v
		}
	}
	return Markers{m: next}, true
}

// All returns the markers ordered by key.
func (ms Markers) All() []Marker {
	keys := make([]string, 0, len(ms.m))
	for k := range ms.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Marker, len(keys))
	for i, k := range keys {
		out[i] = ms.m[k]
	}
	return out
}
