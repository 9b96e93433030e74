package lower_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/pywasmc/internal/ir"
	"github.com/sunholo/pywasmc/internal/lower"
	"github.com/sunholo/pywasmc/internal/memlayout"
	"github.com/sunholo/pywasmc/internal/parser"
)

func parseAndLower(t *testing.T, src string) (*ir.Module, []error) {
	t.Helper()
	p := parser.New("t.py", []byte(src))
	file := p.ParseFile()
	require.Empty(t, p.Errors())
	mod, warnings, err := lower.Lower(file, memlayout.New())
	if err != nil {
		return mod, []error{err}
	}
	_ = warnings
	return mod, nil
}

func TestLowerSimpleFunction(t *testing.T) {
	mod, errs := parseAndLower(t, "def add(a: int, b: int) -> int:\n    return a + b\n")
	require.Empty(t, errs)
	require.Len(t, mod.Functions, 1)
	fn := mod.Functions[0]
	assert.Equal(t, "add", fn.Name)
	assert.Equal(t, ir.Int, fn.Returns)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, ir.Int, fn.Params[0].Type)
	require.Len(t, fn.Body, 1)
	ret, ok := fn.Body[0].(*ir.ReturnStmt)
	require.True(t, ok)
	bin, ok := ret.Value.(*ir.BinOpExpr)
	require.True(t, ok)
	assert.Equal(t, ir.Add, bin.Op)
}

func TestLowerAnnotatedModuleVarDefaults(t *testing.T) {
	mod, errs := parseAndLower(t, "count: int\nname: str\nitems: List[int]\n")
	require.Empty(t, errs)
	require.Len(t, mod.Vars, 3)
	assert.Equal(t, ir.Int, mod.Vars[0].Type)
	c, ok := mod.Vars[0].Value.(*ir.ConstExpr)
	require.True(t, ok)
	assert.Equal(t, int32(0), c.Value.Int)

	_, ok = mod.Vars[2].Value.(*ir.ListLiteralExpr)
	assert.True(t, ok, "List default should be an empty list literal, not a Const")
}

func TestLowerDictAnnotation(t *testing.T) {
	mod, errs := parseAndLower(t, "table: Dict[str, int]\n")
	require.Empty(t, errs)
	require.Len(t, mod.Vars, 1)
	typ := mod.Vars[0].Type
	assert.Equal(t, ir.String, *typ.Key)
	assert.Equal(t, ir.Int, *typ.Elem)
}

func TestLowerDictAnnotationWrongArityErrors(t *testing.T) {
	_, errs := parseAndLower(t, "table: Dict[str]\n")
	require.Len(t, errs, 1)
}

func TestLowerChainedComparisonRejected(t *testing.T) {
	_, errs := parseAndLower(t, "def f(a, b, c):\n    return a < b < c\n")
	require.Len(t, errs, 1)
}

func TestLowerBoolOpTwoOperandsOK(t *testing.T) {
	mod, errs := parseAndLower(t, "def f(a, b):\n    return a and b\n")
	require.Empty(t, errs)
	ret := mod.Functions[0].Body[0].(*ir.ReturnStmt)
	b, ok := ret.Value.(*ir.BoolOpExpr)
	require.True(t, ok)
	assert.Equal(t, ir.And, b.Op)
}

func TestLowerBoolOpThreeOperandsRejected(t *testing.T) {
	_, errs := parseAndLower(t, "def f(a, b, c):\n    return a and b and c\n")
	require.Len(t, errs, 1)
}

func TestLowerIntConversionElided(t *testing.T) {
	mod, errs := parseAndLower(t, "def f(x):\n    return int(x)\n")
	require.Empty(t, errs)
	ret := mod.Functions[0].Body[0].(*ir.ReturnStmt)
	_, ok := ret.Value.(*ir.VarExpr)
	assert.True(t, ok, "int(x) should lower to x unchanged")
}

func TestLowerFunctionCallAndMethodCall(t *testing.T) {
	mod, errs := parseAndLower(t, "def f(x):\n    helper(x)\n    x.append(1)\n")
	require.Empty(t, errs)
	body := mod.Functions[0].Body
	require.Len(t, body, 2)
	s1 := body[0].(*ir.ExprStmt)
	_, ok := s1.Value.(*ir.FunctionCallExpr)
	assert.True(t, ok)
	s2 := body[1].(*ir.ExprStmt)
	_, ok = s2.Value.(*ir.MethodCallExpr)
	assert.True(t, ok)
}

func TestLowerIntegerOverflowIsFatal(t *testing.T) {
	_, errs := parseAndLower(t, "x = 99999999999999\n")
	require.Len(t, errs, 1)
}

func TestLowerStringInterning(t *testing.T) {
	p := parser.New("t.py", []byte(`name = "hello"`+"\n"))
	file := p.ParseFile()
	require.Empty(t, p.Errors())
	mem := memlayout.New()
	_, _, err := lower.Lower(file, mem)
	require.NoError(t, err)
	_, ok := mem.Offset("hello")
	assert.True(t, ok)
}

func TestLowerClassWithMethodsAndFields(t *testing.T) {
	src := "class Point:\n    x: int\n    def move(self, dx):\n        self.x = self.x + dx\n"
	mod, errs := parseAndLower(t, src)
	require.Empty(t, errs)
	require.Len(t, mod.Classes, 1)
	cls := mod.Classes[0]
	assert.Equal(t, "Point", cls.Name)
	require.Len(t, cls.Fields, 1)
	require.Len(t, cls.Methods, 1)
	assign, ok := cls.Methods[0].Body[0].(*ir.AttributeAssignStmt)
	require.True(t, ok)
	assert.Equal(t, "x", assign.Attr)
}

func TestLowerForLoopRequiresNameTarget(t *testing.T) {
	mod, errs := parseAndLower(t, "def f(items):\n    for it in items:\n        print(it)\n")
	require.Empty(t, errs)
	forStmt, ok := mod.Functions[0].Body[0].(*ir.ForStmt)
	require.True(t, ok)
	assert.Equal(t, "it", forStmt.Var)
}

func TestLowerDynamicImportAssignment(t *testing.T) {
	src := "def f():\n    mod = __import__(\"json\")\n    return mod\n"
	mod, errs := parseAndLower(t, src)
	require.Empty(t, errs)
	dyn, ok := mod.Functions[0].Body[0].(*ir.DynamicImportStmt)
	require.True(t, ok)
	assert.Equal(t, "mod", dyn.Target)
}
