package lower

import (
	"github.com/sunholo/pywasmc/internal/ast"
	"github.com/sunholo/pywasmc/internal/errors"
	"github.com/sunholo/pywasmc/internal/ir"
)

func (l *Lowerer) lowerBody(body []ast.Stmt) []ir.Stmt {
	out := make([]ir.Stmt, 0, len(body))
	for _, s := range body {
		if l.err != nil {
			return out
		}
		if lowered := l.lowerStmt(s); lowered != nil {
			out = append(out, lowered)
		}
	}
	return out
}

func (l *Lowerer) lowerStmt(stmt ast.Stmt) ir.Stmt {
	switch n := stmt.(type) {
	case *ast.Return:
		if n.Value == nil {
			return &ir.ReturnStmt{Value: &ir.ConstExpr{Value: ir.Constant{Kind: ir.CNone}}}
		}
		return &ir.ReturnStmt{Value: l.lowerExpr(n.Value)}

	case *ast.Assign:
		return l.lowerAssign(n)

	case *ast.AnnAssign:
		return l.lowerAnnAssign(n)

	case *ast.AugAssign:
		return l.lowerAugAssign(n)

	case *ast.If:
		return &ir.IfStmt{Cond: l.lowerExpr(n.Test), Then: l.lowerBody(n.Body), Else: l.lowerOrelse(n.Orelse)}

	case *ast.While:
		return &ir.WhileStmt{Cond: l.lowerExpr(n.Test), Body: l.lowerBody(n.Body)}

	case *ast.For:
		name, ok := n.Target.(*ast.Name)
		if !ok {
			l.fail(errors.LOW002, n.Pos, "for-loop target must be a bare name")
			return nil
		}
		return &ir.ForStmt{Var: name.Id, Iter: l.lowerExpr(n.Iter), Body: l.lowerBody(n.Body), Else: l.lowerOrelse(n.Orelse)}

	case *ast.Try:
		t := &ir.TryStmt{Try: l.lowerBody(n.Body), Finally: l.lowerBody(n.Finally)}
		for _, h := range n.Handlers {
			handler := ir.ExceptHandler{Name: h.Name, Body: l.lowerBody(h.Body)}
			if h.Type != nil {
				if name, ok := h.Type.(*ast.Name); ok {
					handler.Type = name.Id
				}
			}
			t.Handlers = append(t.Handlers, handler)
		}
		return t

	case *ast.With:
		return &ir.WithStmt{Ctx: l.lowerExpr(n.Ctx), Name: n.Name, Body: l.lowerBody(n.Body)}

	case *ast.ExprStmt:
		return &ir.ExprStmt{Value: l.lowerExpr(n.Value)}

	case *ast.Pass:
		return nil

	default:
		return nil
	}
}

// lowerOrelse treats an empty-but-non-nil Orelse the same as nil, since the
// IR distinguishes "no else clause" from "else clause with an empty body"
// only by a nil slice.
func (l *Lowerer) lowerOrelse(orelse []ast.Stmt) []ir.Stmt {
	if len(orelse) == 0 {
		return nil
	}
	return l.lowerBody(orelse)
}

func (l *Lowerer) lowerAssign(n *ast.Assign) ir.Stmt {
	if len(n.Targets) != 1 {
		l.fail(errors.LOW001, n.Pos, "only single-target assignment is supported")
		return nil
	}
	switch target := n.Targets[0].(type) {
	case *ast.Name:
		if dyn := l.dynamicImportAssign(target.Id, n.Value); dyn != nil {
			return dyn
		}
		return &ir.AssignStmt{Target: target.Id, Value: l.lowerExpr(n.Value)}
	case *ast.Attribute:
		return &ir.AttributeAssignStmt{Object: l.lowerExpr(target.Value), Attr: target.Attr, Value: l.lowerExpr(n.Value)}
	default:
		l.fail(errors.LOW001, n.Pos, "unsupported assignment target")
		return nil
	}
}

func (l *Lowerer) lowerAnnAssign(n *ast.AnnAssign) ir.Stmt {
	name, ok := n.Target.(*ast.Name)
	if !ok {
		l.fail(errors.LOW001, n.Pos, "only name targets are supported in annotated assignment")
		return nil
	}
	t := l.resolveType(n.Annotation)
	var value ir.Expr
	if n.Value != nil {
		value = l.lowerExpr(n.Value)
	} else {
		value = t.DefaultExpr()
	}
	return &ir.AssignStmt{Target: name.Id, Value: value, Type: &t}
}

var augOps = map[string]ir.BinOp{
	"+": ir.Add,
	"-": ir.Sub,
	"*": ir.Mul,
	"/": ir.Div,
	"%": ir.Mod,
}

func (l *Lowerer) lowerAugAssign(n *ast.AugAssign) ir.Stmt {
	op, ok := augOps[n.Op]
	if !ok {
		l.fail(errors.LOW001, n.Pos, "unsupported augmented-assignment operator "+n.Op)
		return nil
	}
	switch target := n.Target.(type) {
	case *ast.Name:
		return &ir.AugAssignStmt{Target: target.Id, Op: op, Value: l.lowerExpr(n.Value)}
	case *ast.Attribute:
		return &ir.AttributeAugAssignStmt{Object: l.lowerExpr(target.Value), Attr: target.Attr, Op: op, Value: l.lowerExpr(n.Value)}
	default:
		l.fail(errors.LOW001, n.Pos, "unsupported augmented-assignment target")
		return nil
	}
}

// dynamicImportAssign recognizes `x = __import__("mod")` and
// `x = importlib.import_module("mod")` as a DynamicImportStmt rather than a
// plain assignment (spec §3 "IR Import" dynamic form, grounded in
// original_source/src/analysis/imports.rs's dynamic-import detection). Any
// other call shape falls through to ordinary assignment lowering.
func (l *Lowerer) dynamicImportAssign(target string, value ast.Expr) ir.Stmt {
	call, ok := value.(*ast.Call)
	if !ok || len(call.Args) == 0 {
		return nil
	}
	isDynamic := false
	switch fn := call.Func.(type) {
	case *ast.Name:
		isDynamic = fn.Id == "__import__"
	case *ast.Attribute:
		if recv, ok := fn.Value.(*ast.Name); ok {
			isDynamic = recv.Id == "importlib" && fn.Attr == "import_module"
		}
	}
	if !isDynamic {
		return nil
	}
	return &ir.DynamicImportStmt{Target: target, ModuleExpr: l.lowerExpr(call.Args[0])}
}
