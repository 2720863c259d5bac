package pipeline

import (
	"fmt"
	"sort"

	"github.com/agentic-research/recast/internal/tree"
)

// DiagKind classifies a Diagnostic.
type DiagKind uint8

const (
	// ParseError: the file could not be parsed and took no part in the run.
	ParseError DiagKind = iota + 1
	// UnresolvedReferenceSkip: a recipe skipped a match it could not resolve.
	UnresolvedReferenceSkip
	// UnsafeRewriteSkip: a recipe declined a rewrite it could not prove safe.
	UnsafeRewriteSkip
	// ValidationFailure: a rewritten file no longer parses.
	ValidationFailure
	// NonConvergence: the pass limit was reached while files still changed.
	NonConvergence
)

func (k DiagKind) String() string {
	switch k {
	case ParseError:
		return "parse-error"
	case UnresolvedReferenceSkip:
		return "unresolved-reference"
	case UnsafeRewriteSkip:
		return "unsafe-rewrite"
	case ValidationFailure:
		return "validation-failure"
	case NonConvergence:
		return "non-convergence"
	}
	return fmt.Sprintf("diag(%d)", uint8(k))
}

// Diagnostic is one finding of a run. Path is empty for run-level findings.
// Line is 1-based, or 0 when the finding concerns the whole file.
type Diagnostic struct {
	Path    string
	Line    int
	Kind    DiagKind
	Recipe  string
	Message string
}

func (d Diagnostic) String() string {
	loc := d.Path
	if loc == "" {
		loc = "<run>"
	} else if d.Line > 0 {
		loc = fmt.Sprintf("%s:%d", d.Path, d.Line)
	}
	if d.Recipe != "" {
		return fmt.Sprintf("%s: %s [%s]: %s", loc, d.Kind, d.Recipe, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", loc, d.Kind, d.Message)
}

// Result is the outcome of a run.
type Result struct {
	// Changed maps each rewritten file to its new text.
	Changed map[string]string
	// Unchanged lists the parsed files no recipe altered, sorted.
	Unchanged []string
	// Diagnostics are sorted by path, line and kind.
	Diagnostics []Diagnostic
	// Unsafe holds changed files that failed validation.
	Unsafe map[string]bool
	// Trees holds the final tree of every parsed file.
	Trees map[string]*tree.SourceTree
	// Passes counts the passes run, including the final one that changed nothing.
	Passes    int
	Converged bool
}

// Count returns the number of diagnostics of kind k.
func (r *Result) Count(k DiagKind) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Kind == k {
			n++
		}
	}
	return n
}

func sortDiagnostics(ds []Diagnostic) []Diagnostic {
	seen := make(map[Diagnostic]bool, len(ds))
	out := ds[:0]
	for _, d := range ds {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Recipe != b.Recipe {
			return a.Recipe < b.Recipe
		}
		return a.Message < b.Message
	})
	return out
}
