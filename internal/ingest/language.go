package ingest

import (
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// DetectLanguageFromExt returns the language name and tree-sitter Language
// for a given file extension. Returns ok=false for unsupported extensions.
func DetectLanguageFromExt(ext string) (langName string, lang *sitter.Language, ok bool) {
	switch strings.ToLower(ext) {
	case ".java":
		return "java", java.GetLanguage(), true
	case ".go":
		return "go", golang.GetLanguage(), true
	case ".py":
		return "python", python.GetLanguage(), true
	case ".js":
		return "javascript", javascript.GetLanguage(), true
	case ".ts", ".tsx":
		return "typescript", typescript.GetLanguage(), true
	default:
		return "", nil, false
	}
}

// LanguageForPath maps a file path to its tree-sitter language.
func LanguageForPath(path string) (string, *sitter.Language, bool) {
	return DetectLanguageFromExt(filepath.Ext(path))
}

// LanguageByName returns the grammar for a language name reported by DetectLanguageFromExt.
func LanguageByName(name string) *sitter.Language {
	switch name {
	case "java":
		return java.GetLanguage()
	case "go":
		return golang.GetLanguage()
	case "python":
		return python.GetLanguage()
	case "javascript":
		return javascript.GetLanguage()
	case "typescript":
		return typescript.GetLanguage()
	}
	return nil
}

func isComment(syntax string) bool {
	switch syntax {
	case "comment", "line_comment", "block_comment":
		return true
	}
	return false
}
