package decorators_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/pywasmc/internal/decorators"
	"github.com/sunholo/pywasmc/internal/ir"
)

func ret(v ir.Expr) *ir.ReturnStmt { return &ir.ReturnStmt{Value: v} }

func intConst(v int32) *ir.ConstExpr {
	return &ir.ConstExpr{Value: ir.Constant{Kind: ir.CInt, Int: v}}
}

func TestExpandMemoizePrependsAlwaysFalseCacheGuard(t *testing.T) {
	fn := &ir.Function{
		Name:       "fib",
		Returns:    ir.Int,
		Decorators: []string{"memoize"},
		Body:       []ir.Stmt{ret(intConst(1))},
	}
	decorators.Expand(fn)
	require.Empty(t, fn.Decorators)
	require.Len(t, fn.Body, 3)

	guard, ok := fn.Body[0].(*ir.IfStmt)
	require.True(t, ok)
	boolOp, ok := guard.Cond.(*ir.BoolOpExpr)
	require.True(t, ok)
	assert.Equal(t, ir.Or, boolOp.Op)

	assign, ok := fn.Body[1].(*ir.AssignStmt)
	require.True(t, ok)
	assert.Equal(t, "_cached_result", assign.Target)

	final, ok := fn.Body[2].(*ir.ReturnStmt)
	require.True(t, ok)
	v, ok := final.Value.(*ir.VarExpr)
	require.True(t, ok)
	assert.Equal(t, "_cached_result", v.Name)
}

func TestExpandDebugWrapsEntryAndExit(t *testing.T) {
	fn := &ir.Function{Name: "f", Returns: ir.Int, Decorators: []string{"debug"}, Body: []ir.Stmt{ret(intConst(0))}}
	decorators.Expand(fn)
	require.Len(t, fn.Body, 4)
	entry, ok := fn.Body[0].(*ir.ExprStmt)
	require.True(t, ok)
	call, ok := entry.Value.(*ir.FunctionCallExpr)
	require.True(t, ok)
	assert.Equal(t, "print", call.Name)
}

func TestExpandDefaultValueOnlyForSimpleTypes(t *testing.T) {
	fn := &ir.Function{
		Name: "f",
		Params: []*ir.Param{
			{Name: "a", Type: ir.Int},
			{Name: "b", Type: ir.List(ir.Int)},
		},
		Decorators: []string{"default_value"},
		Body:       []ir.Stmt{ret(&ir.VarExpr{Name: "a"})},
	}
	decorators.Expand(fn)
	// only "a" (Int) gets a prologue check; "b" (List) is skipped
	require.Len(t, fn.Body, 2)
	check, ok := fn.Body[0].(*ir.IfStmt)
	require.True(t, ok)
	cmp, ok := check.Cond.(*ir.CompareExpr)
	require.True(t, ok)
	assert.Equal(t, ir.Eq, cmp.Op)
}

func TestExpandPurePrependsMarker(t *testing.T) {
	fn := &ir.Function{Name: "f", Decorators: []string{"pure"}, Body: []ir.Stmt{ret(intConst(1))}}
	decorators.Expand(fn)
	call := fn.Body[0].(*ir.ExprStmt).Value.(*ir.FunctionCallExpr)
	assert.Equal(t, "_mark_pure", call.Name)
}

func TestExpandCustomDecoratorIsNoop(t *testing.T) {
	fn := &ir.Function{Name: "f", Decorators: []string{"staticmethod"}, Body: []ir.Stmt{ret(intConst(1))}}
	decorators.Expand(fn)
	require.Len(t, fn.Body, 1)
	assert.Empty(t, fn.Decorators)
}

func TestExpandAppliesInReverseOrder(t *testing.T) {
	// decorators applied bottom-up: pure runs first (innermost), then debug
	// wraps the already-pure-marked body.
	fn := &ir.Function{Name: "f", Returns: ir.Int, Decorators: []string{"debug", "pure"}, Body: []ir.Stmt{ret(intConst(1))}}
	decorators.Expand(fn)
	entry, ok := fn.Body[0].(*ir.ExprStmt)
	require.True(t, ok)
	call := entry.Value.(*ir.FunctionCallExpr)
	assert.Equal(t, "print", call.Name, "debug's entry print should be outermost")
}
