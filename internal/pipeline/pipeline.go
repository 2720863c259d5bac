// Package pipeline runs an ordered list of recipes over a set of source
// files, pass after pass, until a pass leaves every file alone.
//
// Files are independent: within a pass each file runs on its own worker and
// sees only its own tree and the shared read-only type service. Within a file
// recipes run strictly in order, each one seeing the tree the previous one
// produced, re-attributed so later recipes can match rewritten code.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"sort"
	"strings"

	"github.com/agentic-research/recast/internal/ingest"
	"github.com/agentic-research/recast/internal/recipe"
	"github.com/agentic-research/recast/internal/tree"
	"github.com/agentic-research/recast/internal/typeres"
	"golang.org/x/sync/errgroup"
)

// Frontend parses and attributes source files. *ingest.Frontend is the
// production implementation.
type Frontend interface {
	Parse(ctx context.Context, path string, text []byte) (*tree.SourceTree, error)
	// Declare registers the types the parsed files declare.
	Declare(trees []*tree.SourceTree)
	Attribute(st *tree.SourceTree) *tree.SourceTree
	Types() typeres.Resolver
}

// Input is one file to rewrite.
type Input struct {
	Path string
	Text []byte
}

// Engine holds the configuration of a run.
type Engine struct {
	Recipes  []*recipe.Recipe
	Frontend Frontend
	// Validate checks a rewritten file. A failure flags the file unsafe.
	// Nil skips validation.
	Validate func(path string, text []byte) error
	// MaxPasses bounds the convergence loop. Zero means DefaultMaxPasses.
	MaxPasses int
	// Jobs bounds the files processed at once. Zero means GOMAXPROCS.
	Jobs int
}

// DefaultMaxPasses is used when Engine.MaxPasses is zero.
const DefaultMaxPasses = 3

type file struct {
	input  Input
	st     *tree.SourceTree
	faults []Diagnostic
}

// Run parses the inputs, applies the recipes until convergence or the pass
// limit, and reports the outcome. Per-file failures become diagnostics. The
// only error Run returns is the context's: on cancellation it stops between
// files and returns the results completed so far along with ctx.Err().
func (e *Engine) Run(ctx context.Context, inputs []Input) (*Result, error) {
	fe := e.Frontend
	if fe == nil {
		fe = ingest.NewFrontend(nil)
	}
	maxPasses := e.MaxPasses
	if maxPasses <= 0 {
		maxPasses = DefaultMaxPasses
	}
	jobs := e.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	files, diags, err := e.parse(ctx, fe, inputs, jobs)
	if err != nil {
		return e.collect(files, diags, 0, false), err
	}

	trees := make([]*tree.SourceTree, len(files))
	for i, f := range files {
		trees[i] = f.st
	}
	fe.Declare(trees)
	if err := each(ctx, files, jobs, func(_ int, f *file) { f.st = fe.Attribute(f.st) }); err != nil {
		return e.collect(files, diags, 0, false), err
	}

	passes, converged := 0, false
	var changing []string
	for passes < maxPasses {
		if err := ctx.Err(); err != nil {
			return e.collect(files, diags, passes, false), err
		}
		passes++
		changed := make([]bool, len(files))
		err := each(ctx, files, jobs, func(i int, f *file) {
			changed[i] = e.pass(fe, f)
		})
		if err != nil {
			return e.collect(files, diags, passes, false), err
		}
		changing = changing[:0]
		for i, c := range changed {
			if c {
				changing = append(changing, files[i].input.Path)
			}
		}
		if len(changing) == 0 {
			converged = true
			break
		}
	}
	if !converged {
		sort.Strings(changing)
		log.Printf("pipeline: no fixed point after %d passes", passes)
		diags = append(diags, Diagnostic{
			Kind:    NonConvergence,
			Message: fmt.Sprintf("still changing after %d passes: %s", passes, strings.Join(changing, ", ")),
		})
	}
	return e.collect(files, diags, passes, converged), nil
}

// parse parses every input. Files that fail to parse are left out of the
// run and reported.
func (e *Engine) parse(ctx context.Context, fe Frontend, inputs []Input, jobs int) ([]*file, []Diagnostic, error) {
	trees := make([]*tree.SourceTree, len(inputs))
	errs := make([]error, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, in := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			trees[i], errs[i] = fe.Parse(gctx, in.Path, in.Text)
			return nil
		})
	}
	waitErr := g.Wait()

	var files []*file
	var diags []Diagnostic
	for i, in := range inputs {
		switch {
		case errs[i] != nil:
			d := Diagnostic{Path: in.Path, Kind: ParseError, Message: errs[i].Error()}
			var pe *ingest.ParseError
			if errors.As(errs[i], &pe) {
				d.Line = pe.Line
				d.Message = fmt.Sprintf("%d:%d: %s", pe.Line, pe.Column, pe.Message)
			}
			diags = append(diags, d)
		case trees[i] != nil:
			files = append(files, &file{input: in, st: trees[i]})
		}
	}
	if waitErr != nil {
		return files, diags, waitErr
	}
	return files, diags, ctx.Err()
}

// each runs fn over files on at most jobs workers. It stops handing out
// files once ctx is done.
func each(ctx context.Context, files []*file, jobs int, fn func(int, *file)) error {
	g := new(errgroup.Group)
	g.SetLimit(jobs)
	for i, f := range files {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			fn(i, f)
			return nil
		})
	}
	_ = g.Wait()
	return ctx.Err()
}

// pass applies every recipe to one file in order and reports whether the
// tree changed.
func (e *Engine) pass(fe Frontend, f *file) bool {
	changed := false
	for _, r := range e.Recipes {
		next, ok, err := apply(r, fe.Types(), f.st)
		if err != nil {
			log.Printf("pipeline: %s: recipe %s: %v", f.input.Path, r.Name, err)
			f.faults = append(f.faults, Diagnostic{
				Path:    f.input.Path,
				Kind:    UnsafeRewriteSkip,
				Recipe:  r.Name,
				Message: err.Error(),
			})
			continue
		}
		if ok {
			f.st = fe.Attribute(next)
			changed = true
		}
	}
	return changed
}

// apply runs one recipe, turning a panic into an error so one bad file
// cannot take down the run.
func apply(r *recipe.Recipe, types typeres.Resolver, st *tree.SourceTree) (out *tree.SourceTree, changed bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			out, changed, err = st, false, fmt.Errorf("recipe failed: %v", p)
		}
	}()
	out, changed = r.Run(types, st)
	return out, changed, nil
}

// collect prints every file, validates the changed ones and gathers the
// diagnostics left on the trees.
func (e *Engine) collect(files []*file, diags []Diagnostic, passes int, converged bool) *Result {
	res := &Result{
		Changed:   make(map[string]string),
		Unsafe:    make(map[string]bool),
		Trees:     make(map[string]*tree.SourceTree, len(files)),
		Passes:    passes,
		Converged: converged,
	}
	for _, f := range files {
		path := f.input.Path
		text := f.st.Print()
		diags = append(diags, f.faults...)
		if text == string(f.input.Text) {
			res.Unchanged = append(res.Unchanged, path)
		} else {
			res.Changed[path] = text
			if e.Validate != nil {
				if err := e.Validate(path, []byte(text)); err != nil {
					res.Unsafe[path] = true
					f.st = f.st.WithMarker(tree.Diagnostic{Kind: tree.ValidationFailed, Message: err.Error()})
					diags = append(diags, Diagnostic{Path: path, Kind: ValidationFailure, Message: err.Error()})
				}
			}
		}
		diags = append(diags, markerDiagnostics(f.st, text)...)
		res.Trees[path] = f.st
	}
	sort.Strings(res.Unchanged)
	res.Diagnostics = sortDiagnostics(diags)
	return res
}

// markerDiagnostics turns the diagnostic markers recipes left on nodes into
// diagnostics located by line.
func markerDiagnostics(st *tree.SourceTree, text string) []Diagnostic {
	if st.Root == nil {
		return nil
	}
	var out []Diagnostic
	var spans map[tree.ID]tree.Span
	tree.Walk(st.Root, func(stack []*tree.Node) bool {
		n := stack[0]
		for _, m := range n.Markers().All() {
			d, ok := m.(tree.Diagnostic)
			if !ok {
				continue
			}
			kind := UnsafeRewriteSkip
			if d.Kind == tree.UnresolvedReference {
				kind = UnresolvedReferenceSkip
			}
			if spans == nil {
				spans = st.Spans()
			}
			out = append(out, Diagnostic{
				Path:    st.Path,
				Line:    lineAt(text, spans[n.ID()].Start),
				Kind:    kind,
				Recipe:  d.Recipe,
				Message: d.Message,
			})
		}
		return true
	})
	return out
}

func lineAt(text string, off int) int {
	if off > len(text) {
		off = len(text)
	}
	return strings.Count(text[:off], "\n") + 1
}
