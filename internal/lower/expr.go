package lower

import (
	"math"

	"github.com/sunholo/pywasmc/internal/ast"
	"github.com/sunholo/pywasmc/internal/errors"
	"github.com/sunholo/pywasmc/internal/ir"
)

var binOps = map[string]ir.BinOp{
	"+":  ir.Add,
	"-":  ir.Sub,
	"*":  ir.Mul,
	"/":  ir.Div,
	"//": ir.FloorDiv,
	"%":  ir.Mod,
	"**": ir.Pow,
	"|":  ir.BitOr,
	"^":  ir.BitXor,
	"&":  ir.BitAnd,
	"<<": ir.LShift,
	">>": ir.RShift,
	"@":  ir.MatMul,
}

var unaryOps = map[string]ir.UnaryOp{
	"-":   ir.Neg,
	"+":   ir.UAdd,
	"~":   ir.Invert,
	"not": ir.Not,
}

var compareOps = map[string]ir.CompareOp{
	"==":     ir.Eq,
	"!=":     ir.NotEq,
	"<":      ir.Lt,
	"<=":     ir.LtE,
	">":      ir.Gt,
	">=":     ir.GtE,
	"in":     ir.In,
	"not in": ir.NotIn,
	"is":     ir.Is,
	"is not": ir.IsNot,
}

var boolOps = map[string]ir.BoolOp{
	"and": ir.And,
	"or":  ir.Or,
}

// conversionBuiltins are elided at IR level: the sole argument is returned
// unchanged and the code generator's type-driven emission absorbs the
// conversion (spec §4.3.3).
var conversionBuiltins = map[string]bool{
	"int": true, "float": true, "str": true, "bool": true,
}

func (l *Lowerer) lowerExpr(e ast.Expr) ir.Expr {
	if l.err != nil || e == nil {
		return nil
	}
	switch n := e.(type) {
	case *ast.Constant:
		return l.lowerConstant(n)

	case *ast.Name:
		return &ir.VarExpr{Name: n.Id}

	case *ast.BinOp:
		op, ok := binOps[n.Op]
		if !ok {
			l.fail(errors.LOW001, n.Pos, "unsupported binary operator "+n.Op)
			return nil
		}
		return &ir.BinOpExpr{Left: l.lowerExpr(n.Left), Op: op, Right: l.lowerExpr(n.Right)}

	case *ast.UnaryOp:
		op, ok := unaryOps[n.Op]
		if !ok {
			l.fail(errors.LOW001, n.Pos, "unsupported unary operator "+n.Op)
			return nil
		}
		return &ir.UnaryOpExpr{Operand: l.lowerExpr(n.Operand), Op: op}

	case *ast.Compare:
		if len(n.Ops) != 1 || len(n.Comparators) != 1 {
			l.fail(errors.LOW003, n.Pos, "chained comparisons are not supported")
			return nil
		}
		op, ok := compareOps[n.Ops[0]]
		if !ok {
			l.fail(errors.LOW001, n.Pos, "unsupported comparison operator "+n.Ops[0])
			return nil
		}
		return &ir.CompareExpr{Left: l.lowerExpr(n.Left), Op: op, Right: l.lowerExpr(n.Comparators[0])}

	case *ast.BoolOp:
		if len(n.Values) != 2 {
			l.fail(errors.LOW004, n.Pos, "boolean operators with more than two operands are not supported")
			return nil
		}
		op, ok := boolOps[n.Op]
		if !ok {
			l.fail(errors.LOW001, n.Pos, "unsupported boolean operator "+n.Op)
			return nil
		}
		return &ir.BoolOpExpr{Left: l.lowerExpr(n.Values[0]), Op: op, Right: l.lowerExpr(n.Values[1])}

	case *ast.Call:
		return l.lowerCall(n)

	case *ast.ListExpr:
		elts := make([]ir.Expr, len(n.Elts))
		for i, el := range n.Elts {
			elts[i] = l.lowerExpr(el)
		}
		return &ir.ListLiteralExpr{Elts: elts}

	case *ast.DictExpr:
		keys := make([]ir.Expr, len(n.Keys))
		vals := make([]ir.Expr, len(n.Values))
		for i := range n.Keys {
			keys[i] = l.lowerExpr(n.Keys[i])
			vals[i] = l.lowerExpr(n.Values[i])
		}
		return &ir.DictLiteralExpr{Keys: keys, Values: vals}

	case *ast.Subscript:
		return &ir.IndexingExpr{Container: l.lowerExpr(n.Value), Index: l.lowerExpr(n.Index)}

	case *ast.Attribute:
		return &ir.AttributeExpr{Object: l.lowerExpr(n.Value), Attr: n.Attr}

	case *ast.ListComp:
		target, ok := n.Target.(*ast.Name)
		if !ok {
			l.fail(errors.LOW008, n.Pos, "list comprehension loop variable must be a bare name")
			return nil
		}
		return &ir.ListCompExpr{Out: l.lowerExpr(n.Elt), Var: target.Id, Iter: l.lowerExpr(n.Iter)}

	case *ast.Tuple:
		// The IR has no runtime tuple-value expression (Tuple survives only
		// as a literal Constant or a type-annotation shape); a tuple display
		// reached in value position lowers to the closest composite literal.
		elts := make([]ir.Expr, len(n.Elts))
		for i, el := range n.Elts {
			elts[i] = l.lowerExpr(el)
		}
		return &ir.ListLiteralExpr{Elts: elts}

	default:
		l.fail(errors.LOW001, e.Position(), "unsupported expression form")
		return nil
	}
}

func (l *Lowerer) lowerConstant(n *ast.Constant) ir.Expr {
	switch n.Kind {
	case ast.ConstInt:
		if n.Int > math.MaxInt32 || n.Int < math.MinInt32 {
			l.fail(errors.LOW005, n.Pos, "integer literal exceeds 32-bit signed range")
			return nil
		}
		return &ir.ConstExpr{Value: ir.Constant{Kind: ir.CInt, Int: int32(n.Int)}}
	case ast.ConstFloat:
		return &ir.ConstExpr{Value: ir.Constant{Kind: ir.CFloat, Float: n.Float}}
	case ast.ConstBool:
		return &ir.ConstExpr{Value: ir.Constant{Kind: ir.CBool, Bool: n.Bool}}
	case ast.ConstString:
		l.mem.Add(n.Str)
		return &ir.ConstExpr{Value: ir.Constant{Kind: ir.CString, Str: n.Str}}
	default: // ast.ConstNone
		return &ir.ConstExpr{Value: ir.Constant{Kind: ir.CNone}}
	}
}

func (l *Lowerer) lowerCall(n *ast.Call) ir.Expr {
	switch fn := n.Func.(type) {
	case *ast.Name:
		if conversionBuiltins[fn.Id] && len(n.Args) == 1 {
			return l.lowerExpr(n.Args[0])
		}
		args := l.lowerArgs(n.Args)
		return &ir.FunctionCallExpr{Name: fn.Id, Args: args}
	case *ast.Attribute:
		args := l.lowerArgs(n.Args)
		return &ir.MethodCallExpr{Receiver: l.lowerExpr(fn.Value), Method: fn.Attr, Args: args}
	default:
		l.fail(errors.LOW001, n.Pos, "unsupported call target")
		return nil
	}
}

func (l *Lowerer) lowerArgs(in []ast.Expr) []ir.Expr {
	out := make([]ir.Expr, len(in))
	for i, a := range in {
		out[i] = l.lowerExpr(a)
	}
	return out
}
