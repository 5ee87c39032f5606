// Package frontend parses C source into a small, resolved syntax tree.
// It exposes only what lifetime inference needs: node kinds, spellings,
// 1-based source lines and declaration back-references for identifiers.
package frontend

import "errors"

// ErrParseFailure is returned when the source cannot be parsed into a tree.
var ErrParseFailure = errors.New("parse failure")

// Kind identifies the syntactic category of a Node.
type Kind int

const (
	KindUnexposed Kind = iota
	KindTranslationUnit
	KindFunctionDecl
	KindParmDecl
	KindVarDecl
	KindDeclRefExpr
	KindCompoundStmt
	KindForStmt
	KindWhileStmt
	KindDoStmt
	KindReturnStmt
)

func (k Kind) String() string {
	switch k {
	case KindTranslationUnit:
		return "TranslationUnit"
	case KindFunctionDecl:
		return "FunctionDecl"
	case KindParmDecl:
		return "ParmDecl"
	case KindVarDecl:
		return "VarDecl"
	case KindDeclRefExpr:
		return "DeclRefExpr"
	case KindCompoundStmt:
		return "CompoundStmt"
	case KindForStmt:
		return "ForStmt"
	case KindWhileStmt:
		return "WhileStmt"
	case KindDoStmt:
		return "DoStmt"
	case KindReturnStmt:
		return "ReturnStmt"
	default:
		return "Unexposed"
	}
}

// Node is a syntax tree node.
type Node struct {
	Kind     Kind
	Spelling string // declared or referenced name; grammar type for unexposed nodes
	Line     int    // 1-based line of the node's start
	EndLine  int    // 1-based line of the node's lexical end

	// Referenced is the declaration a DeclRefExpr resolves to, nil when
	// the identifier does not name a visible variable or parameter.
	Referenced *Node

	// FileScope is set on VarDecl nodes declared outside any function.
	FileScope bool

	Children []*Node
}

// IsLoop reports whether the node is a for or while statement.
func (n *Node) IsLoop() bool {
	return n.Kind == KindForStmt || n.Kind == KindWhileStmt
}

// IsLocalVarRef reports whether the node is a reference resolving to a
// variable declared inside a function.
func (n *Node) IsLocalVarRef() bool {
	if n.Kind != KindDeclRefExpr || n.Referenced == nil {
		return false
	}
	return n.Referenced.Kind == KindVarDecl && !n.Referenced.FileScope
}

// Functions returns the top-level function declarations of a translation unit.
func (n *Node) Functions() []*Node {
	var funcs []*Node
	for _, child := range n.Children {
		if child.Kind == KindFunctionDecl {
			funcs = append(funcs, child)
		}
	}
	return funcs
}
