// Package writeback validates, formats, diffs and writes rewritten files.
package writeback

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/agentic-research/recast/internal/ingest"
)

// ValidationError locates a syntax error in rewritten output. Line and
// Column are 1-based.
type ValidationError struct {
	FilePath string
	Line     int
	Column   int
	Message  string
	// More counts further syntax errors in the same file.
	More int
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s:%d:%d: %s", e.FilePath, e.Line, e.Column, e.Message)
	if e.More > 0 {
		msg += fmt.Sprintf(" (and %d more)", e.More)
	}
	return msg
}

// Validate re-parses rewritten content and reports the first syntax error
// as a *ValidationError. Content in a language recast does not parse is
// accepted as is.
func Validate(content []byte, filePath string) error {
	errs := ASTErrors(content, filePath)
	if len(errs) == 0 {
		return nil
	}
	first := errs[0]
	first.More = len(errs) - 1
	return &first
}

// ASTErrors returns every ERROR and MISSING node of the re-parsed content,
// in source order. It returns nil for clean content and for unsupported
// languages.
func ASTErrors(content []byte, filePath string) []ValidationError {
	_, lang, ok := ingest.LanguageForPath(filePath)
	if !ok {
		return nil
	}
	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	t, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return []ValidationError{{FilePath: filePath, Line: 1, Column: 1, Message: err.Error()}}
	}
	root := t.RootNode()
	if root == nil {
		return []ValidationError{{FilePath: filePath, Line: 1, Column: 1, Message: "no syntax tree"}}
	}
	if !root.HasError() {
		return nil
	}

	var errs []ValidationError
	collectErrors(root, filePath, &errs)
	if len(errs) == 0 {
		errs = append(errs, ValidationError{FilePath: filePath, Line: 1, Column: 1, Message: "AST contains errors"})
	}
	return errs
}

func collectErrors(n *sitter.Node, filePath string, errs *[]ValidationError) {
	if n.IsError() || n.IsMissing() {
		msg := "syntax error"
		if n.IsMissing() {
			msg = fmt.Sprintf("missing %q", n.Type())
		}
		*errs = append(*errs, ValidationError{
			FilePath: filePath,
			Line:     int(n.StartPoint().Row) + 1,
			Column:   int(n.StartPoint().Column) + 1,
			Message:  msg,
		})
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.HasError() || child.IsError() || child.IsMissing() {
			collectErrors(child, filePath, errs)
		}
	}
}
