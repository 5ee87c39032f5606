package frontend

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
)

// cBuilder lowers a tree-sitter C tree into Nodes, resolving identifiers
// against the block scopes visible at the point of use.
type cBuilder struct {
	content []byte
	scopes  []map[string]*Node
}

// Parse parses C source and returns its translation unit.
// Source that tree-sitter cannot parse cleanly yields ErrParseFailure.
func Parse(ctx context.Context, content []byte) (*Node, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(c.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, fmt.Errorf("%w: syntax error at line %d", ErrParseFailure, firstErrorLine(root))
	}

	b := &cBuilder{content: content}
	return b.translationUnit(root), nil
}

func (b *cBuilder) translationUnit(root *sitter.Node) *Node {
	unit := &Node{
		Kind:    KindTranslationUnit,
		Line:    1,
		EndLine: endLineOf(root),
	}

	b.push()
	defer b.pop()
	unit.Children = b.topLevel(namedChildren(root))
	return unit
}

func (b *cBuilder) topLevel(nodes []*sitter.Node) []*Node {
	var out []*Node
	for _, child := range nodes {
		switch child.Type() {
		case "function_definition":
			if fn := b.function(child); fn != nil {
				out = append(out, fn)
			}
		case "declaration":
			out = append(out, b.declaration(child, true)...)
		case "preproc_if", "preproc_ifdef", "preproc_else", "preproc_elif", "preproc_elifdef":
			out = append(out, b.topLevel(conditionalBody(child))...)
		}
	}
	return out
}

func (b *cBuilder) function(n *sitter.Node) *Node {
	declarator := n.ChildByFieldName("declarator")
	ident, isFunc := declaratorIdent(declarator)
	if ident == nil || !isFunc {
		return nil
	}

	fn := &Node{
		Kind:     KindFunctionDecl,
		Spelling: ident.Content(b.content),
		Line:     lineOf(ident),
		EndLine:  endLineOf(n),
	}

	b.push()
	defer b.pop()

	if params := parameterList(declarator); params != nil {
		for _, p := range namedChildren(params) {
			if p.Type() != "parameter_declaration" {
				continue
			}
			pident, _ := declaratorIdent(p.ChildByFieldName("declarator"))
			if pident == nil {
				continue
			}
			parm := &Node{
				Kind:     KindParmDecl,
				Spelling: pident.Content(b.content),
				Line:     lineOf(pident),
				EndLine:  endLineOf(p),
			}
			b.declare(parm)
			fn.Children = append(fn.Children, parm)
		}
	}

	if body := n.ChildByFieldName("body"); body != nil {
		fn.Children = append(fn.Children, b.build(body)...)
	}
	return fn
}

// declaration lowers every declarator of a declaration into a VarDecl.
// Function prototypes are dropped. A variable is in scope inside its own
// initializer, as in C.
func (b *cBuilder) declaration(n *sitter.Node, fileScope bool) []*Node {
	var out []*Node
	for _, child := range namedChildren(n) {
		var declarator, value *sitter.Node
		switch child.Type() {
		case "init_declarator":
			declarator = child.ChildByFieldName("declarator")
			value = child.ChildByFieldName("value")
		case "identifier", "pointer_declarator", "array_declarator",
			"parenthesized_declarator", "function_declarator", "attributed_declarator":
			declarator = child
		default:
			continue
		}

		ident, isFunc := declaratorIdent(declarator)
		if ident == nil || isFunc {
			continue
		}

		v := &Node{
			Kind:      KindVarDecl,
			Spelling:  ident.Content(b.content),
			Line:      lineOf(ident),
			EndLine:   endLineOf(child),
			FileScope: fileScope,
		}
		b.declare(v)

		for _, size := range arraySizes(declarator) {
			v.Children = append(v.Children, b.build(size)...)
		}
		if value != nil {
			v.Children = append(v.Children, b.build(value)...)
		}
		out = append(out, v)
	}
	return out
}

// build lowers a statement or expression. It returns zero nodes for
// constructs that carry no variable references and several nodes when a
// construct is spliced into its parent.
func (b *cBuilder) build(n *sitter.Node) []*Node {
	switch n.Type() {
	case "identifier":
		name := n.Content(b.content)
		return []*Node{{
			Kind:       KindDeclRefExpr,
			Spelling:   name,
			Line:       lineOf(n),
			EndLine:    endLineOf(n),
			Referenced: b.lookup(name),
		}}
	case "declaration":
		return b.declaration(n, false)
	case "compound_statement":
		return []*Node{b.scoped(n, KindCompoundStmt)}
	case "for_statement":
		return []*Node{b.scoped(n, KindForStmt)}
	case "while_statement":
		return []*Node{b.node(n, KindWhileStmt)}
	case "do_statement":
		return []*Node{b.node(n, KindDoStmt)}
	case "return_statement":
		return []*Node{b.node(n, KindReturnStmt)}
	case "preproc_if", "preproc_ifdef", "preproc_else", "preproc_elif", "preproc_elifdef":
		var out []*Node
		for _, child := range conditionalBody(n) {
			out = append(out, b.build(child)...)
		}
		return out
	case "comment", "function_definition", "type_definition", "type_descriptor",
		"primitive_type", "type_identifier", "sized_type_specifier", "macro_type_specifier",
		"struct_specifier", "union_specifier", "enum_specifier",
		"storage_class_specifier", "type_qualifier", "attribute_specifier",
		"field_identifier", "statement_identifier",
		"string_literal", "concatenated_string", "char_literal", "number_literal",
		"preproc_include", "preproc_def", "preproc_function_def", "preproc_call":
		return nil
	}
	return []*Node{b.node(n, KindUnexposed)}
}

func (b *cBuilder) node(n *sitter.Node, kind Kind) *Node {
	out := &Node{
		Kind:    kind,
		Line:    lineOf(n),
		EndLine: endLineOf(n),
	}
	if kind == KindUnexposed {
		out.Spelling = n.Type()
	}
	for _, child := range namedChildren(n) {
		out.Children = append(out.Children, b.build(child)...)
	}
	return out
}

func (b *cBuilder) scoped(n *sitter.Node, kind Kind) *Node {
	b.push()
	defer b.pop()
	return b.node(n, kind)
}

func (b *cBuilder) push() {
	b.scopes = append(b.scopes, make(map[string]*Node))
}

func (b *cBuilder) pop() {
	b.scopes = b.scopes[:len(b.scopes)-1]
}

func (b *cBuilder) declare(decl *Node) {
	b.scopes[len(b.scopes)-1][decl.Spelling] = decl
}

func (b *cBuilder) lookup(name string) *Node {
	for i := len(b.scopes) - 1; i >= 0; i-- {
		if decl, ok := b.scopes[i][name]; ok {
			return decl
		}
	}
	return nil
}

// declaratorIdent follows a declarator chain down to the declared identifier.
// isFunc reports whether the identifier is directly wrapped by a function
// declarator, which distinguishes `int *f(void)` from `int (*f)(void)`.
func declaratorIdent(n *sitter.Node) (ident *sitter.Node, isFunc bool) {
	last := ""
	for n != nil {
		switch n.Type() {
		case "identifier":
			return n, last == "function_declarator"
		case "parenthesized_declarator":
			n = firstNamedChild(n)
			continue
		case "pointer_declarator", "array_declarator", "function_declarator", "attributed_declarator":
			last = n.Type()
		default:
			return nil, false
		}
		n = n.ChildByFieldName("declarator")
	}
	return nil, false
}

// parameterList returns the parameter list of the function declarator
// closest to the declared name.
func parameterList(n *sitter.Node) *sitter.Node {
	var params *sitter.Node
	for n != nil && n.Type() != "identifier" {
		if n.Type() == "parenthesized_declarator" {
			n = firstNamedChild(n)
			continue
		}
		if n.Type() == "function_declarator" {
			params = n.ChildByFieldName("parameters")
		}
		n = n.ChildByFieldName("declarator")
	}
	return params
}

func arraySizes(n *sitter.Node) []*sitter.Node {
	var sizes []*sitter.Node
	for n != nil && n.Type() != "identifier" {
		if n.Type() == "parenthesized_declarator" {
			n = firstNamedChild(n)
			continue
		}
		if n.Type() == "array_declarator" {
			if size := n.ChildByFieldName("size"); size != nil {
				sizes = append(sizes, size)
			}
		}
		n = n.ChildByFieldName("declarator")
	}
	return sizes
}

// conditionalBody returns the guarded children of a preprocessor
// conditional, leaving out its name or condition.
func conditionalBody(n *sitter.Node) []*sitter.Node {
	name := n.ChildByFieldName("name")
	cond := n.ChildByFieldName("condition")

	var body []*sitter.Node
	for _, child := range namedChildren(n) {
		if sameNode(child, name) || sameNode(child, cond) {
			continue
		}
		body = append(body, child)
	}
	return body
}

func firstErrorLine(n *sitter.Node) int {
	if n.Type() == "ERROR" || n.IsMissing() {
		return lineOf(n)
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || !child.HasError() {
			continue
		}
		return firstErrorLine(child)
	}
	return lineOf(n)
}

func namedChildren(n *sitter.Node) []*sitter.Node {
	count := int(n.NamedChildCount())
	children := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		if child := n.NamedChild(i); child != nil {
			children = append(children, child)
		}
	}
	return children
}

func firstNamedChild(n *sitter.Node) *sitter.Node {
	if n.NamedChildCount() == 0 {
		return nil
	}
	return n.NamedChild(0)
}

func sameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return false
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

func lineOf(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}

func endLineOf(n *sitter.Node) int {
	return int(n.EndPoint().Row) + 1
}
