package liveness

import "github.com/l3aro/autofree/pkg/frontend"

// frame is one pending step of the depth-first walk. A frame either visits
// a node or, when exit is set, closes the loop region it carries.
type frame struct {
	node     *frontend.Node
	function string
	loop     *LoopRegion
	escaped  *frontend.Node
	exit     bool
}

// Traverse walks the subtree rooted at n in pre-order and feeds every
// reference to a local variable into t. The value left for a key is the
// reference visited last, which is not always the lexically last one.
//
// A return whose operand is a bare variable, possibly parenthesized or
// cast, hands the pointer to the caller; that one reference is not
// recorded. Every reference inside any other return expression is a use.
//
// The walk uses an explicit stack so deep trees cannot exhaust the call
// stack. Loop regions are closed after all of their children have been
// visited, so an inner loop widens before its enclosing loop does.
func Traverse(n *frontend.Node, t *Tracker) {
	if n == nil {
		return
	}

	stack := []frame{{node: n}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if top.exit {
			t.WidenLoop(*top.loop)
			continue
		}

		node := top.node
		cur := top
		switch {
		case node.Kind == frontend.KindFunctionDecl:
			cur.function = node.Spelling
		case node.IsLoop():
			cur.loop = &LoopRegion{
				Start:    node.Line,
				End:      node.EndLine,
				Function: cur.function,
			}
			stack = append(stack, frame{loop: cur.loop, exit: true})
		case node.Kind == frontend.KindReturnStmt:
			cur.escaped = returnedVariable(node)
		case node.IsLocalVarRef():
			if cur.function != "" && node != cur.escaped {
				t.Record(cur.function, node.Spelling, node.Line)
			}
		}

		// reversed so the first child is popped first
		for i := len(node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{
				node:     node.Children[i],
				function: cur.function,
				loop:     cur.loop,
				escaped:  cur.escaped,
			})
		}
	}
}

// returnedVariable returns the reference a return statement yields as
// its whole value, or nil when the operand is any other expression.
func returnedVariable(ret *frontend.Node) *frontend.Node {
	if len(ret.Children) != 1 {
		return nil
	}
	operand := ret.Children[0]
	for operand.Kind == frontend.KindUnexposed &&
		(operand.Spelling == "parenthesized_expression" || operand.Spelling == "cast_expression") &&
		len(operand.Children) == 1 {
		operand = operand.Children[0]
	}
	if operand.Kind != frontend.KindDeclRefExpr {
		return nil
	}
	return operand
}

// Analyze runs Traverse over every top-level function of a translation
// unit using a fresh Tracker.
func Analyze(unit *frontend.Node) *Tracker {
	t := NewTracker()
	for _, fn := range unit.Functions() {
		Traverse(fn, t)
	}
	return t
}
