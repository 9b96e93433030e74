// Package decorators implements C4: it expands the closed set of built-in
// decorator names into concrete body transformations on an IR function
// (spec §4.4), ported statement-for-statement from
// original_source/src/ir/decorators.rs's DecoratorRegistry. Every
// transformation here is deliberately the original's own simplification
// (a structurally-real but always-false memoize cache-check, placeholder
// zero timer readings, a sentinel-based default-value check) rather than a
// "fixed" reimplementation - changing that behavior would be inventing
// semantics the specification never asked for.
package decorators

import "github.com/sunholo/pywasmc/internal/ir"

// builtins is the closed set of decorator names with a concrete expansion;
// anything else is DecoratorType::Custom and left untouched.
var builtins = map[string]func(*ir.Function){
	"memoize":       applyMemoize,
	"debug":         applyDebug,
	"timer":         applyTimer,
	"default_value": applyDefaultValue,
	"type_check":    applyTypeCheck,
	"pure":          applyPure,
}

// Expand applies fn's decorators in reverse list order (the innermost, last
// listed decorator is applied first, matching the registry's `.iter().rev()`
// walk) and then clears the
// decorator list, consuming it exactly once per spec §4.4.
func Expand(fn *ir.Function) {
	for i := len(fn.Decorators) - 1; i >= 0; i-- {
		if apply, ok := builtins[fn.Decorators[i]]; ok {
			apply(fn)
		}
		// custom decorators leave the function body untouched (spec §4.4)
	}
	fn.Decorators = nil
}

// rewriteReturns walks fn's top-level body (not nested blocks, matching the
// original's own shallow statement walk) replacing every `Return(v)` with
// the statements onReturn produces in its place.
func rewriteReturns(body []ir.Stmt, onReturn func(value ir.Expr) []ir.Stmt) []ir.Stmt {
	out := make([]ir.Stmt, 0, len(body))
	for _, stmt := range body {
		if ret, ok := stmt.(*ir.ReturnStmt); ok && ret.Value != nil {
			out = append(out, onReturn(ret.Value)...)
			continue
		}
		out = append(out, stmt)
	}
	return out
}

func applyMemoize(fn *ir.Function) {
	cacheCheck := &ir.IfStmt{
		Cond: &ir.BoolOpExpr{
			Left:  &ir.ConstExpr{Value: ir.Constant{Kind: ir.CBool, Bool: false}},
			Op:    ir.Or,
			Right: &ir.ConstExpr{Value: ir.Constant{Kind: ir.CBool, Bool: false}},
		},
		Then: []ir.Stmt{&ir.ReturnStmt{Value: &ir.VarExpr{Name: "_cached_result"}}},
	}
	rewritten := rewriteReturns(fn.Body, func(v ir.Expr) []ir.Stmt {
		return []ir.Stmt{
			&ir.AssignStmt{Target: "_cached_result", Value: v, Type: &fn.Returns},
			&ir.ReturnStmt{Value: &ir.VarExpr{Name: "_cached_result"}},
		}
	})
	fn.Body = append([]ir.Stmt{cacheCheck}, rewritten...)
}

func applyDebug(fn *ir.Function) {
	entry := &ir.ExprStmt{Value: &ir.FunctionCallExpr{
		Name: "print",
		Args: []ir.Expr{strConst("Entering function: " + fn.Name)},
	}}
	rewritten := rewriteReturns(fn.Body, func(v ir.Expr) []ir.Stmt {
		return []ir.Stmt{
			&ir.AssignStmt{Target: "_return_value", Value: v, Type: &fn.Returns},
			&ir.ExprStmt{Value: &ir.FunctionCallExpr{
				Name: "print",
				Args: []ir.Expr{
					strConst("Exiting function: " + fn.Name + " with result: "),
					&ir.VarExpr{Name: "_return_value"},
				},
			}},
			&ir.ReturnStmt{Value: &ir.VarExpr{Name: "_return_value"}},
		}
	})
	fn.Body = append([]ir.Stmt{entry}, rewritten...)
}

func applyTimer(fn *ir.Function) {
	start := &ir.AssignStmt{Target: "_start_time", Value: intConst(0), Type: &ir.Int}
	rewritten := rewriteReturns(fn.Body, func(v ir.Expr) []ir.Stmt {
		return []ir.Stmt{
			&ir.AssignStmt{Target: "_return_value", Value: v, Type: &fn.Returns},
			&ir.AssignStmt{Target: "_end_time", Value: intConst(0), Type: &ir.Int},
			&ir.ExprStmt{Value: &ir.FunctionCallExpr{
				Name: "print",
				Args: []ir.Expr{
					strConst("Function " + fn.Name + " execution time: "),
					&ir.BinOpExpr{Left: &ir.VarExpr{Name: "_end_time"}, Op: ir.Sub, Right: &ir.VarExpr{Name: "_start_time"}},
					strConst(" ms"),
				},
			}},
			&ir.ReturnStmt{Value: &ir.VarExpr{Name: "_return_value"}},
		}
	})
	fn.Body = append([]ir.Stmt{start}, rewritten...)
}

func applyDefaultValue(fn *ir.Function) {
	var prologue []ir.Stmt
	for _, p := range fn.Params {
		if p.Default != nil {
			continue
		}
		def, ok := defaultExprFor(p.Type)
		if !ok {
			continue
		}
		check := &ir.IfStmt{
			Cond: &ir.CompareExpr{Left: &ir.VarExpr{Name: p.Name}, Op: ir.Eq, Right: intConst(-9999)},
			Then: []ir.Stmt{&ir.AssignStmt{Target: p.Name, Value: def, Type: &p.Type}},
		}
		prologue = append(prologue, check)
	}
	fn.Body = append(prologue, fn.Body...)
}

// defaultExprFor mirrors the Rust match arms for Int/Float/Bool/String only;
// every other IR kind returns ok=false and is skipped (`continue` in the
// original).
func defaultExprFor(t ir.Type) (ir.Expr, bool) {
	switch t.String() {
	case "int":
		return intConst(0), true
	case "float":
		return &ir.ConstExpr{Value: ir.Constant{Kind: ir.CFloat, Float: 0}}, true
	case "bool":
		return &ir.ConstExpr{Value: ir.Constant{Kind: ir.CBool, Bool: false}}, true
	case "str":
		return strConst(""), true
	default:
		return nil, false
	}
}

// typeCheckExprFor mirrors get_type_check_expr: Int/Float/Bool/String have a
// runtime `_is_T` probe, everything else has no check.
func typeCheckExprFor(varName string, t ir.Type) (ir.Expr, bool) {
	var probe string
	switch t.String() {
	case "int":
		probe = "_is_int"
	case "float":
		probe = "_is_float"
	case "bool":
		probe = "_is_bool"
	case "str":
		probe = "_is_string"
	default:
		return nil, false
	}
	return &ir.FunctionCallExpr{Name: probe, Args: []ir.Expr{&ir.VarExpr{Name: varName}}}, true
}

func typeCheckErrorMessage(paramName string, t ir.Type) string {
	return "Type error: Parameter " + paramName + " should be " + t.String()
}

func applyTypeCheck(fn *ir.Function) {
	var prologue []ir.Stmt
	for _, p := range fn.Params {
		cond, ok := typeCheckExprFor(p.Name, p.Type)
		if !ok {
			continue
		}
		prologue = append(prologue, &ir.IfStmt{
			Cond: cond,
			Then: nil,
			Else: []ir.Stmt{
				&ir.ExprStmt{Value: &ir.FunctionCallExpr{Name: "print", Args: []ir.Expr{strConst(typeCheckErrorMessage(p.Name, p.Type))}}},
				&ir.ReturnStmt{Value: intConst(-1)},
			},
		})
	}

	body := append(prologue, fn.Body...)

	// Rewrite the first top-level Return(v) into a staged _return_value
	// assignment, then append the re-check at the very end - a faithful
	// port of the original's position-based splice, shallow over nested
	// blocks exactly as it is there.
	idx := -1
	for i, s := range body {
		if ret, ok := s.(*ir.ReturnStmt); ok && ret.Value != nil {
			idx = i
			break
		}
	}
	if idx == -1 {
		fn.Body = body
		return
	}
	returnExpr := body[idx].(*ir.ReturnStmt).Value
	body[idx] = &ir.AssignStmt{Target: "_return_value", Value: returnExpr, Type: &fn.Returns}

	if cond, ok := typeCheckExprFor("_return_value", fn.Returns); ok {
		body = append(body, &ir.IfStmt{
			Cond: cond,
			Then: []ir.Stmt{&ir.ReturnStmt{Value: &ir.VarExpr{Name: "_return_value"}}},
			Else: []ir.Stmt{
				&ir.ExprStmt{Value: &ir.FunctionCallExpr{Name: "print", Args: []ir.Expr{strConst("Type error: Return value should be " + fn.Returns.String())}}},
				&ir.ReturnStmt{Value: &ir.VarExpr{Name: "_return_value"}},
			},
		})
	} else {
		body = append(body, &ir.ReturnStmt{Value: &ir.VarExpr{Name: "_return_value"}})
	}
	fn.Body = body
}

func applyPure(fn *ir.Function) {
	marker := &ir.ExprStmt{Value: &ir.FunctionCallExpr{Name: "_mark_pure"}}
	fn.Body = append([]ir.Stmt{marker}, fn.Body...)
}

func strConst(s string) ir.Expr {
	return &ir.ConstExpr{Value: ir.Constant{Kind: ir.CString, Str: s}}
}

func intConst(v int32) ir.Expr {
	return &ir.ConstExpr{Value: ir.Constant{Kind: ir.CInt, Int: v}}
}
