package tree

import (
	"strconv"
	"strings"
)

// Kind is the closed set of node categories every language frontend maps onto.
// Visitors dispatch on Kind when they do not care about the exact grammar type.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindFile
	KindDeclaration
	KindStatement
	KindExpression
	KindType
	KindName
	KindLiteral
	KindToken
	KindOther
)

var kindNames = [...]string{
	KindInvalid:     "invalid",
	KindFile:        "file",
	KindDeclaration: "declaration",
	KindStatement:   "statement",
	KindExpression:  "expression",
	KindType:        "type",
	KindName:        "name",
	KindLiteral:     "literal",
	KindToken:       "token",
	KindOther:       "other",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Kinds lists every valid kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindFile, KindDeclaration, KindStatement, KindExpression,
		KindType, KindName, KindLiteral, KindToken, KindOther}
}

// KindOf classifies a grammar node type. Anonymous grammar nodes (keywords,
// punctuation) are always tokens.
func KindOf(syntax string, named bool) Kind {
	if !named {
		return KindToken
	}
	switch syntax {
	case "program", "source_file":
		return KindFile
	case "identifier", "field_identifier", "package_identifier", "label_name":
		return KindName
	case "type_identifier", "scoped_type_identifier", "generic_type", "array_type",
		"integral_type", "floating_point_type", "boolean_type", "void_type",
		"qualified_type", "pointer_type", "slice_type", "map_type":
		return KindType
	case "block", "expression_statement", "local_variable_declaration",
		"return_statement", "if_statement", "for_statement", "enhanced_for_statement",
		"while_statement", "try_statement", "throw_statement", "switch_expression":
		return KindStatement
	case "this", "super", "method_invocation", "field_access", "array_access",
		"object_creation_expression", "call_expression", "selector_expression",
		"method_reference":
		return KindExpression
	case "true", "false", "null_literal", "string_fragment", "escape_sequence":
		return KindLiteral
	}
	switch {
	case strings.HasSuffix(syntax, "_statement"):
		return KindStatement
	case strings.HasSuffix(syntax, "_declaration"), strings.HasSuffix(syntax, "_declarator"),
		strings.HasSuffix(syntax, "_spec"):
		return KindDeclaration
	case strings.HasSuffix(syntax, "_expression"):
		return KindExpression
	case strings.HasSuffix(syntax, "_literal"):
		return KindLiteral
	case strings.HasSuffix(syntax, "_type"):
		return KindType
	}
	return KindOther
}
