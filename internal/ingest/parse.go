package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/agentic-research/recast/internal/tree"
	sitter "github.com/smacker/go-tree-sitter"
)

// ErrUnsupportedLanguage is returned by Parse for a file extension with no grammar.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// ParseError reports source that does not parse cleanly. Line and Column
// are 1-based.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line, e.Column, e.Message)
}

// Parse parses text into a SourceTree. Files whose syntax tree contains
// ERROR or MISSING nodes are rejected with a *ParseError.
func Parse(ctx context.Context, path string, text []byte) (*tree.SourceTree, error) {
	name, lang, ok := LanguageForPath(path)
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedLanguage)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	st, err := parser.ParseCtx(ctx, nil, text)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed for %s: %w", path, err)
	}

	root := st.RootNode()
	if root == nil {
		return nil, fmt.Errorf("tree-sitter returned nil root for %s", path)
	}
	if root.HasError() {
		return nil, parseErrorAt(path, root)
	}

	ids := &tree.IDGen{}
	b := &builder{src: text, ids: ids}
	n := b.convert(root, "")
	if n == nil {
		n = tree.NewBranch(ids.Next(), tree.KindFile, root.Type())
	}
	return &tree.SourceTree{
		Path:     path,
		Language: name,
		Root:     n,
		EOF:      string(text[b.pos:]),
		IDs:      ids,
	}, nil
}

func parseErrorAt(path string, root *sitter.Node) *ParseError {
	pe := &ParseError{Path: path, Line: 1, Column: 1, Message: "AST contains errors"}
	if bad := firstError(root); bad != nil {
		pe.Line = int(bad.StartPoint().Row) + 1
		pe.Column = int(bad.StartPoint().Column) + 1
		if bad.IsMissing() {
			pe.Message = fmt.Sprintf("missing %q", bad.Type())
		} else {
			pe.Message = "syntax error"
		}
	}
	return pe
}

// firstError does a depth-first search for the first ERROR or MISSING node.
func firstError(n *sitter.Node) *sitter.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.HasError() || child.IsError() || child.IsMissing() {
			if found := firstError(child); found != nil {
				return found
			}
		}
	}
	return nil
}

// builder converts a tree-sitter tree into tree.Nodes. Every byte between
// two leaves, comments included, becomes the prefix of the second leaf.
type builder struct {
	src []byte
	ids *tree.IDGen
	pos int
}

func (b *builder) convert(n *sitter.Node, field string) *tree.Node {
	if isComment(n.Type()) {
		return nil
	}
	kind := tree.KindOf(n.Type(), n.IsNamed())
	count := int(n.ChildCount())
	if count == 0 {
		start, end := int(n.StartByte()), int(n.EndByte())
		if start < b.pos {
			start = b.pos
		}
		prefix := string(b.src[b.pos:start])
		b.pos = end
		return tree.NewLeaf(b.ids.Next(), kind, n.Type(), string(b.src[start:end])).
			WithPrefix(prefix).
			WithField(field)
	}
	children := make([]*tree.Node, 0, count)
	for i := 0; i < count; i++ {
		if c := b.convert(n.Child(i), n.FieldNameForChild(i)); c != nil {
			children = append(children, c)
		}
	}
	if len(children) == 0 {
		return nil
	}
	return tree.NewBranch(b.ids.Next(), kind, n.Type(), children...).WithField(field)
}
