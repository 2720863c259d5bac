package search

import (
	"context"
	"fmt"
	"log"

	"github.com/RoaringBitmap/roaring"
	"github.com/agentic-research/recast/internal/ingest"
	"github.com/agentic-research/recast/internal/tree"
	"github.com/agentic-research/recast/internal/visit"
	sitter "github.com/smacker/go-tree-sitter"
)

type query struct {
	src     string
	capture string
}

// Query holds on the nodes captured by a tree-sitter query, e.g.
// `(method_invocation name: (identifier) @m (#eq? @m "and"))`. With capture
// set, only that capture counts. Queries are purely syntactic and work for
// every supported language.
func Query(src, capture string) Precondition {
	return query{src: src, capture: capture}
}

// CompileQuery checks that src is a valid query for a language.
func CompileQuery(language, src string) error {
	lang := ingest.LanguageByName(language)
	if lang == nil {
		return fmt.Errorf("%s: %w", language, ingest.ErrUnsupportedLanguage)
	}
	q, err := sitter.NewQuery([]byte(src), lang)
	if err != nil {
		return fmt.Errorf("invalid query '%s': %w", src, err)
	}
	q.Close()
	return nil
}

func (q query) Scope() Scope { return NodeScope }

func (q query) Scan(ctx *visit.Context) *roaring.Bitmap {
	bm := roaring.New()
	lang := ingest.LanguageByName(ctx.File.Language)
	if lang == nil || ctx.File.Root == nil {
		return bm
	}

	text := []byte(ctx.File.Print())
	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	st, err := parser.ParseCtx(context.Background(), nil, text)
	if err != nil {
		log.Printf("search: reparse %s: %v", ctx.File.Path, err)
		return bm
	}

	sq, err := sitter.NewQuery([]byte(q.src), lang)
	if err != nil {
		log.Printf("search: invalid query '%s': %v", q.src, err)
		return bm
	}
	defer sq.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(sq, st.RootNode())

	index := spanIndex(ctx.File)
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		m = qc.FilterPredicates(m, text)
		for _, c := range m.Captures {
			if q.capture != "" && sq.CaptureNameForId(c.Index) != q.capture {
				continue
			}
			key := spanKey{int(c.Node.StartByte()), int(c.Node.EndByte()), c.Node.Type()}
			if id, ok := index[key]; ok {
				bm.Add(uint32(id))
			}
		}
	}
	return bm
}

type spanKey struct {
	start, end int
	syntax     string
}

// spanIndex maps each node's printed extent and grammar type back to its ID.
// Where a chain of nodes shares both, the outermost wins.
func spanIndex(st *tree.SourceTree) map[spanKey]tree.ID {
	spans := st.Spans()
	index := make(map[spanKey]tree.ID, len(spans))
	tree.Walk(st.Root, func(stack []*tree.Node) bool {
		n := stack[0]
		sp := spans[n.ID()]
		key := spanKey{sp.Start, sp.End, n.Syntax()}
		if _, dup := index[key]; !dup {
			index[key] = n.ID()
		}
		return true
	})
	return index
}
