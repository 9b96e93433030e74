package codegen

import (
	"github.com/sunholo/pywasmc/internal/errors"
	"github.com/sunholo/pywasmc/internal/ir"
)

// emitter carries the state shared across every function body emitted for
// one module: the resolved call table, the function signatures needed for
// numeric coercion at call sites, and the warnings accumulated along the
// way (spec §7's non-fatal diagnostic stream).
type emitter struct {
	funcs    funcIndex
	sigs     map[string]funcSig
	warnings []errors.Warning
}

func (em *emitter) warn(kind errors.WarningKind, msg string) {
	em.warnings = append(em.warnings, errors.NewWarning(kind, msg, nil))
}

// exprIsFloat reports whether e, once emitted, leaves an f64 value on the
// stack. Float constants truncate to i32 at emission (spec §4.7.2/§9) and
// every arithmetic/comparison/bool operator is a direct i32 instruction
// (spec §4.7.2), so the only sources of a live f64 value are a reference to
// an f64-typed local/parameter slot and a call to a function whose declared
// return type is Float.
func (em *emitter) exprIsFloat(ctx *funcContext, e ir.Expr) bool {
	switch n := e.(type) {
	case *ir.VarExpr:
		if slot, ok := ctx.slot(n.Name); ok {
			return ctx.slotTypes[slot] == ValF64
		}
		return false
	case *ir.FunctionCallExpr:
		if sig, ok := em.sigs[n.Name]; ok {
			return sig.ret == ValF64
		}
		return false
	case *ir.UnaryOpExpr:
		// Invert/UAdd pass their operand through unchanged (spec §4.7.2);
		// every other unary op (Neg, Not) always yields i32.
		return (n.Op == ir.Invert || n.Op == ir.UAdd) && em.exprIsFloat(ctx, n.Operand)
	default:
		return false
	}
}

// convert emits a numeric conversion when have and want disagree (spec
// §4.7.2 "with the target type propagated for numeric coercion").
func (em *emitter) convert(e *encoder, have, want ValType) {
	if have == want {
		return
	}
	if want == ValF64 {
		e.writeByte(opF64ConvertI32S)
	} else {
		e.writeByte(opI32TruncF64S)
	}
}

// emitExprToI32 emits expr then truncates it to i32 if it naturally
// produces f64 - the coercion every i32-only operator (arithmetic,
// comparison, Pow, unary Neg) applies to its operands (spec §4.7.2 "direct
// signed i32 instructions").
func (em *emitter) emitExprToI32(e *encoder, ctx *funcContext, expr ir.Expr) error {
	if err := em.emitExpr(e, ctx, expr); err != nil {
		return err
	}
	if em.exprIsFloat(ctx, expr) {
		e.writeByte(opI32TruncF64S)
	}
	return nil
}

var binOpCodes = map[ir.BinOp]byte{
	ir.Add:      OpI32Add,
	ir.Sub:      OpI32Sub,
	ir.Mul:      OpI32Mul,
	ir.Div:      OpI32DivS,
	ir.FloorDiv: OpI32DivS,
	ir.Mod:      OpI32RemS,
	ir.BitOr:    OpI32Or,
	ir.BitXor:   OpI32Xor,
	ir.BitAnd:   OpI32And,
}

var compareOpCodes = map[ir.CompareOp]byte{
	ir.Eq:   OpI32Eq,
	ir.NotEq: OpI32Ne,
	ir.Lt:   OpI32LtS,
	ir.LtE:  OpI32LeS,
	ir.Gt:   OpI32GtS,
	ir.GtE:  OpI32GeS,
}

// emitExpr emits e's value-producing instructions. Every case leaves
// exactly one value on the operand stack, the invariant statement emission
// relies on.
func (em *emitter) emitExpr(e *encoder, ctx *funcContext, expr ir.Expr) error {
	switch n := expr.(type) {
	case *ir.ConstExpr:
		return em.emitConstant(e, n.Value)

	case *ir.VarExpr:
		slot, ok := ctx.slot(n.Name)
		if !ok {
			return errors.New(errors.GEN001, "codegen", errors.Name, "reference to undeclared local "+n.Name, nil)
		}
		e.writeByte(OpLocalGet)
		e.writeULEB(uint32(slot))
		return nil

	case *ir.BinOpExpr:
		return em.emitBinOp(e, ctx, n)

	case *ir.UnaryOpExpr:
		return em.emitUnaryOp(e, ctx, n)

	case *ir.CompareExpr:
		op, ok := compareOpCodes[n.Op]
		if !ok {
			// In/NotIn/Is/IsNot are not emitted (spec §4.7.2); evaluate both
			// operands for side effects, drop them, and leave a placeholder.
			if err := em.emitExpr(e, ctx, n.Left); err != nil {
				return err
			}
			e.writeByte(OpDrop)
			if err := em.emitExpr(e, ctx, n.Right); err != nil {
				return err
			}
			e.writeByte(OpDrop)
			e.writeByte(OpI32Const)
			e.writeSLEB(0)
			return nil
		}
		if err := em.emitExprToI32(e, ctx, n.Left); err != nil {
			return err
		}
		if err := em.emitExprToI32(e, ctx, n.Right); err != nil {
			return err
		}
		e.writeByte(op)
		return nil

	case *ir.BoolOpExpr:
		return em.emitBoolOp(e, ctx, n)

	case *ir.FunctionCallExpr:
		sig, hasSig := em.sigs[n.Name]
		for i, a := range n.Args {
			if err := em.emitExpr(e, ctx, a); err != nil {
				return err
			}
			if hasSig && i < len(sig.params) {
				have := ValI32
				if em.exprIsFloat(ctx, a) {
					have = ValF64
				}
				em.convert(e, have, sig.params[i])
			}
		}
		idx, ok := em.funcs[n.Name]
		if !ok {
			em.warn(errors.Compatibility, "GEN003: call to unknown function "+n.Name+" emits a placeholder 0")
			for range n.Args {
				e.writeByte(OpDrop)
			}
			e.writeByte(OpI32Const)
			e.writeSLEB(0)
			return nil
		}
		e.writeByte(OpCall)
		e.writeULEB(idx)
		return nil

	case *ir.MethodCallExpr, *ir.ListLiteralExpr, *ir.DictLiteralExpr,
		*ir.IndexingExpr, *ir.AttributeExpr, *ir.ListCompExpr:
		// not yet generated (spec §4.7.2): treated as push 0.
		e.writeByte(OpI32Const)
		e.writeSLEB(0)
		return nil

	default:
		return errors.New(errors.GEN002, "codegen", errors.Codegen, "unsupported expression in code generation", nil)
	}
}

func (em *emitter) emitConstant(e *encoder, c ir.Constant) error {
	switch c.Kind {
	case ir.CInt:
		e.writeByte(OpI32Const)
		e.writeSLEB(int64(c.Int))
	case ir.CFloat:
		// truncated to i32 at emission (spec §4.7.2, §9 "Float semantics"):
		// the core compilation target is integer arithmetic, and a bare
		// float constant carries no declared slot type to convert toward.
		e.writeByte(OpI32Const)
		e.writeSLEB(int64(c.Float))
	case ir.CBool:
		e.writeByte(OpI32Const)
		if c.Bool {
			e.writeSLEB(1)
		} else {
			e.writeSLEB(0)
		}
	case ir.CString:
		// interned strings are addressed by offset; placeholder index 0
		// until the code generator threads memlayout offsets into call
		// sites (spec §4.7.2 "returning its offset would be the natural
		// extension").
		e.writeByte(OpI32Const)
		e.writeSLEB(0)
	default: // CNone, CTuple
		e.writeByte(OpI32Const)
		e.writeSLEB(0)
	}
	return nil
}

func (em *emitter) emitBinOp(e *encoder, ctx *funcContext, n *ir.BinOpExpr) error {
	if n.Op == ir.Pow {
		return em.emitPow(e, ctx, n)
	}
	op, ok := binOpCodes[n.Op]
	if !ok {
		return errors.New(errors.GEN002, "codegen", errors.Codegen, "unsupported binary operator in code generation", nil)
	}
	if err := em.emitExprToI32(e, ctx, n.Left); err != nil {
		return err
	}
	if err := em.emitExprToI32(e, ctx, n.Right); err != nil {
		return err
	}
	e.writeByte(op)
	return nil
}

// emitPow emits self-contained loop-based exponentiation (spec §4.7.2):
// base and exponent are staged into scratch slots, the accumulator starts
// at 1, a negative exponent forces the accumulator to 0 and skips the
// loop, and otherwise the loop multiplies by the base and decrements the
// exponent until it reaches zero.
func (em *emitter) emitPow(e *encoder, ctx *funcContext, n *ir.BinOpExpr) error {
	baseSlot, _ := ctx.slot(scratchPowBase)
	expSlot, _ := ctx.slot(scratchPowExp)
	accSlot, _ := ctx.slot(scratchPowAcc)

	if err := em.emitExprToI32(e, ctx, n.Left); err != nil {
		return err
	}
	e.writeByte(OpLocalSet)
	e.writeULEB(uint32(baseSlot))

	if err := em.emitExprToI32(e, ctx, n.Right); err != nil {
		return err
	}
	e.writeByte(OpLocalSet)
	e.writeULEB(uint32(expSlot))

	e.writeByte(OpI32Const)
	e.writeSLEB(1)
	e.writeByte(OpLocalSet)
	e.writeULEB(uint32(accSlot))

	// negative exponent: acc = 0, exp = 0 (short-circuits the loop below)
	e.writeByte(OpLocalGet)
	e.writeULEB(uint32(expSlot))
	e.writeByte(OpI32Const)
	e.writeSLEB(0)
	e.writeByte(OpI32LtS)
	e.writeByte(OpIf)
	e.writeByte(blockTypeVoid)
	e.writeByte(OpI32Const)
	e.writeSLEB(0)
	e.writeByte(OpLocalSet)
	e.writeULEB(uint32(accSlot))
	e.writeByte(OpI32Const)
	e.writeSLEB(0)
	e.writeByte(OpLocalSet)
	e.writeULEB(uint32(expSlot))
	e.writeByte(OpEnd)

	e.writeByte(OpBlock)
	e.writeByte(blockTypeVoid)
	e.writeByte(OpLoop)
	e.writeByte(blockTypeVoid)

	e.writeByte(OpLocalGet)
	e.writeULEB(uint32(expSlot))
	e.writeByte(OpI32Const)
	e.writeSLEB(0)
	e.writeByte(OpI32LeS)
	e.writeByte(OpBrIf)
	e.writeULEB(1)

	e.writeByte(OpLocalGet)
	e.writeULEB(uint32(accSlot))
	e.writeByte(OpLocalGet)
	e.writeULEB(uint32(baseSlot))
	e.writeByte(OpI32Mul)
	e.writeByte(OpLocalSet)
	e.writeULEB(uint32(accSlot))

	e.writeByte(OpLocalGet)
	e.writeULEB(uint32(expSlot))
	e.writeByte(OpI32Const)
	e.writeSLEB(1)
	e.writeByte(OpI32Sub)
	e.writeByte(OpLocalSet)
	e.writeULEB(uint32(expSlot))

	e.writeByte(OpBr)
	e.writeULEB(0)
	e.writeByte(OpEnd) // loop
	e.writeByte(OpEnd) // block

	e.writeByte(OpLocalGet)
	e.writeULEB(uint32(accSlot))
	return nil
}

func (em *emitter) emitUnaryOp(e *encoder, ctx *funcContext, n *ir.UnaryOpExpr) error {
	switch n.Op {
	case ir.Neg:
		e.writeByte(OpI32Const)
		e.writeSLEB(0)
		if err := em.emitExprToI32(e, ctx, n.Operand); err != nil {
			return err
		}
		e.writeByte(OpI32Sub)
		return nil
	case ir.Not:
		if err := em.emitExprToI32(e, ctx, n.Operand); err != nil {
			return err
		}
		e.writeByte(OpI32Const)
		e.writeSLEB(0)
		e.writeByte(OpI32Ne)
		e.writeByte(OpI32Const)
		e.writeSLEB(1)
		e.writeByte(OpI32Xor)
		return nil
	default: // Invert, UAdd: not emitted (spec §4.7.2) - operand passes through
		return em.emitExpr(e, ctx, n.Operand)
	}
}

// emitBoolOp short-circuits via an if/else on the left operand, staged
// through the function's dedicated bool scratch slot (spec §4.7.2). And
// returns 0 on a falsy left, else the right operand; Or returns 1 on a
// truthy left, else the right operand.
func (em *emitter) emitBoolOp(e *encoder, ctx *funcContext, n *ir.BoolOpExpr) error {
	scratch, _ := ctx.slot(scratchBool)
	if err := em.emitExprToI32(e, ctx, n.Left); err != nil {
		return err
	}
	e.writeByte(OpLocalSet)
	e.writeULEB(uint32(scratch))
	e.writeByte(OpLocalGet)
	e.writeULEB(uint32(scratch))
	e.writeByte(OpIf)
	e.writeByte(blockTypeI32)
	if n.Op == ir.And {
		if err := em.emitExprToI32(e, ctx, n.Right); err != nil {
			return err
		}
	} else {
		e.writeByte(OpI32Const)
		e.writeSLEB(1)
	}
	e.writeByte(OpElse)
	if n.Op == ir.And {
		e.writeByte(OpI32Const)
		e.writeSLEB(0)
	} else {
		if err := em.emitExprToI32(e, ctx, n.Right); err != nil {
			return err
		}
	}
	e.writeByte(OpEnd)
	return nil
}
