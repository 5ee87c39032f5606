package frontend

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, code string) *Node {
	t.Helper()
	unit, err := Parse(context.Background(), []byte(code))
	require.NoError(t, err)
	require.Equal(t, KindTranslationUnit, unit.Kind)
	return unit
}

// collect gathers every node of the given kind in pre-order.
func collect(n *Node, kind Kind) []*Node {
	var out []*Node
	if n.Kind == kind {
		out = append(out, n)
	}
	for _, child := range n.Children {
		out = append(out, collect(child, kind)...)
	}
	return out
}

func TestParseFunctions(t *testing.T) {
	unit := parse(t, `#include <stdlib.h>

int global;

int *make(void) {
	return 0;
}

static void helper(int a, char **argv) {
}

int proto(int);
`)

	funcs := unit.Functions()
	require.Len(t, funcs, 2)
	assert.Equal(t, "make", funcs[0].Spelling)
	assert.Equal(t, 5, funcs[0].Line)
	assert.Equal(t, 7, funcs[0].EndLine)
	assert.Equal(t, "helper", funcs[1].Spelling)

	params := collect(funcs[1], KindParmDecl)
	require.Len(t, params, 2)
	assert.Equal(t, "a", params[0].Spelling)
	assert.Equal(t, "argv", params[1].Spelling)

	globals := collect(unit, KindVarDecl)
	require.Len(t, globals, 1)
	assert.Equal(t, "global", globals[0].Spelling)
	assert.True(t, globals[0].FileScope)
}

func TestParseReferenceResolution(t *testing.T) {
	unit := parse(t, `int g;
void f(int n) {
	int *p = malloc(sizeof *p);
	*p = n + g;
	{
		int p = 3;
		p++;
	}
	free(p);
}
`)

	refs := collect(unit.Functions()[0], KindDeclRefExpr)
	byLine := map[int][]*Node{}
	for _, ref := range refs {
		byLine[ref.Line] = append(byLine[ref.Line], ref)
	}

	// line 3: malloc is unresolved, p in its own initializer resolves to p
	require.Len(t, byLine[3], 2)
	assert.Nil(t, byLine[3][0].Referenced)
	assert.Equal(t, "malloc", byLine[3][0].Spelling)
	assert.True(t, byLine[3][1].IsLocalVarRef())
	outer := byLine[3][1].Referenced

	// line 4: p is local, n is a parameter, g is file scope
	require.Len(t, byLine[4], 3)
	assert.Same(t, outer, byLine[4][0].Referenced)
	assert.Equal(t, KindParmDecl, byLine[4][1].Referenced.Kind)
	assert.False(t, byLine[4][1].IsLocalVarRef())
	assert.True(t, byLine[4][2].Referenced.FileScope)
	assert.False(t, byLine[4][2].IsLocalVarRef())

	// line 7: inner p shadows the outer one
	require.Len(t, byLine[7], 1)
	assert.NotSame(t, outer, byLine[7][0].Referenced)
	assert.Equal(t, 6, byLine[7][0].Referenced.Line)

	// line 9: back to the outer p after the block closes
	require.Len(t, byLine[9], 2)
	assert.Same(t, outer, byLine[9][1].Referenced)
}

func TestParseLoops(t *testing.T) {
	unit := parse(t, `void f(void) {
	int *buf = malloc(4 * sizeof(int));
	for (int i = 0; i < 4; i++) {
		buf[i] = i;
	}
	while (buf[0] > 0)
		buf[0]--;
	do {
		buf[1]++;
	} while (buf[1] < 10);
}
`)

	fn := unit.Functions()[0]
	fors := collect(fn, KindForStmt)
	require.Len(t, fors, 1)
	assert.Equal(t, 3, fors[0].Line)
	assert.Equal(t, 5, fors[0].EndLine)
	assert.True(t, fors[0].IsLoop())

	whiles := collect(fn, KindWhileStmt)
	require.Len(t, whiles, 1)
	assert.Equal(t, 6, whiles[0].Line)
	assert.Equal(t, 7, whiles[0].EndLine)

	dos := collect(fn, KindDoStmt)
	require.Len(t, dos, 1)
	assert.False(t, dos[0].IsLoop())

	// the for-init variable is scoped to the loop
	for _, ref := range collect(fors[0], KindDeclRefExpr) {
		if ref.Spelling == "i" {
			require.NotNil(t, ref.Referenced)
			assert.Equal(t, 3, ref.Referenced.Line)
		}
	}
}

func TestParseReturnStatement(t *testing.T) {
	unit := parse(t, `int *f(void) {
	int *p = malloc(sizeof(int));
	return p;
}
`)

	returns := collect(unit, KindReturnStmt)
	require.Len(t, returns, 1)
	refs := collect(returns[0], KindDeclRefExpr)
	require.Len(t, refs, 1)
	assert.Equal(t, "p", refs[0].Spelling)
	assert.True(t, refs[0].IsLocalVarRef())
}

func TestParseReturnCompoundExpression(t *testing.T) {
	unit := parse(t, `int f(void) {
	int *p = malloc(sizeof(int));
	int q = 2;
	return *p + q;
}
`)

	returns := collect(unit, KindReturnStmt)
	require.Len(t, returns, 1)
	require.Len(t, returns[0].Children, 1)
	assert.Equal(t, KindUnexposed, returns[0].Children[0].Kind)
	assert.Equal(t, "binary_expression", returns[0].Children[0].Spelling)

	refs := collect(returns[0], KindDeclRefExpr)
	require.Len(t, refs, 2)
	assert.Equal(t, "p", refs[0].Spelling)
	assert.Equal(t, "q", refs[1].Spelling)
	for _, ref := range refs {
		assert.Equal(t, 4, ref.Line)
		assert.True(t, ref.IsLocalVarRef())
	}
}

func TestParsePreprocessorConditional(t *testing.T) {
	unit := parse(t, `#ifdef DEBUG
void trace(void) {
	int *p = malloc(1);
	*p = 1;
}
#endif
`)

	funcs := unit.Functions()
	require.Len(t, funcs, 1)
	assert.Equal(t, "trace", funcs[0].Spelling)
}

func TestParseFailure(t *testing.T) {
	_, err := Parse(context.Background(), []byte("int f( {\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParseFailure))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "FunctionDecl", KindFunctionDecl.String())
	assert.Equal(t, "DeclRefExpr", KindDeclRefExpr.String())
	assert.Equal(t, "Unexposed", KindUnexposed.String())
}
