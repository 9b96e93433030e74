package codegen

import (
	"github.com/sunholo/pywasmc/internal/errors"
	"github.com/sunholo/pywasmc/internal/ir"
)

var augBinOpCodes = map[ir.BinOp]byte{
	ir.Add: OpI32Add,
	ir.Sub: OpI32Sub,
	ir.Mul: OpI32Mul,
	ir.Div: OpI32DivS,
	ir.Mod: OpI32RemS,
}

// emitBody emits every statement in order, the textual-order scheduling
// spec §5 mandates.
func (em *emitter) emitBody(e *encoder, ctx *funcContext, body []ir.Stmt) error {
	for _, s := range body {
		if err := em.emitStmt(e, ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (em *emitter) emitStmt(e *encoder, ctx *funcContext, stmt ir.Stmt) error {
	switch n := stmt.(type) {
	case *ir.ReturnStmt:
		if n.Value != nil {
			if err := em.emitExpr(e, ctx, n.Value); err != nil {
				return err
			}
			em.coerce(e, ctx.returnType, n.Value, ctx)
		} else {
			e.writeByte(OpI32Const)
			e.writeSLEB(0)
			em.convert(e, ValI32, ctx.returnType)
		}
		e.writeByte(OpReturn)
		return nil

	case *ir.AssignStmt:
		slot, ok := ctx.slot(n.Target)
		if !ok {
			return errors.New(errors.GEN001, "codegen", errors.Name, "assignment to undeclared local "+n.Target, nil)
		}
		if err := em.emitExpr(e, ctx, n.Value); err != nil {
			return err
		}
		em.coerce(e, ctx.slotTypes[slot], n.Value, ctx)
		e.writeByte(OpLocalSet)
		e.writeULEB(uint32(slot))
		return nil

	case *ir.AttributeAssignStmt:
		if err := em.emitExpr(e, ctx, n.Object); err != nil {
			return err
		}
		e.writeByte(OpDrop)
		if err := em.emitExpr(e, ctx, n.Value); err != nil {
			return err
		}
		e.writeByte(OpDrop)
		return nil

	case *ir.AugAssignStmt:
		slot, ok := ctx.slot(n.Target)
		if !ok {
			return errors.New(errors.GEN001, "codegen", errors.Name, "augmented assignment to undeclared local "+n.Target, nil)
		}
		op, ok := augBinOpCodes[n.Op]
		if !ok {
			return errors.New(errors.GEN002, "codegen", errors.Codegen, "unsupported augmented-assignment operator", nil)
		}
		slotType := ctx.slotTypes[slot]
		e.writeByte(OpLocalGet)
		e.writeULEB(uint32(slot))
		em.convert(e, slotType, ValI32) // augBinOpCodes are all i32 instructions
		if err := em.emitExprToI32(e, ctx, n.Value); err != nil {
			return err
		}
		e.writeByte(op)
		em.convert(e, ValI32, slotType)
		e.writeByte(OpLocalSet)
		e.writeULEB(uint32(slot))
		return nil

	case *ir.AttributeAugAssignStmt:
		if err := em.emitExpr(e, ctx, n.Object); err != nil {
			return err
		}
		e.writeByte(OpDrop)
		if err := em.emitExpr(e, ctx, n.Value); err != nil {
			return err
		}
		e.writeByte(OpDrop)
		return nil

	case *ir.IfStmt:
		if err := em.emitExprToI32(e, ctx, n.Cond); err != nil {
			return err
		}
		e.writeByte(OpIf)
		e.writeByte(blockTypeVoid)
		if err := em.emitBody(e, ctx, n.Then); err != nil {
			return err
		}
		if n.Else != nil {
			e.writeByte(OpElse)
			if err := em.emitBody(e, ctx, n.Else); err != nil {
				return err
			}
		}
		e.writeByte(OpEnd)
		return nil

	case *ir.WhileStmt:
		e.writeByte(OpBlock)
		e.writeByte(blockTypeVoid)
		e.writeByte(OpLoop)
		e.writeByte(blockTypeVoid)
		if err := em.emitExprToI32(e, ctx, n.Cond); err != nil {
			return err
		}
		e.writeByte(OpI32Eqz)
		e.writeByte(OpBrIf)
		e.writeULEB(1)
		if err := em.emitBody(e, ctx, n.Body); err != nil {
			return err
		}
		e.writeByte(OpBr)
		e.writeULEB(0)
		e.writeByte(OpEnd) // loop
		e.writeByte(OpEnd) // block
		return nil

	case *ir.ForStmt:
		slot, ok := ctx.slot(n.Var)
		if !ok {
			return errors.New(errors.GEN001, "codegen", errors.Name, "for-loop variable undeclared "+n.Var, nil)
		}
		if err := em.emitExprToI32(e, ctx, n.Iter); err != nil {
			return err
		}
		e.writeByte(OpLocalSet)
		e.writeULEB(uint32(slot))

		e.writeByte(OpBlock)
		e.writeByte(blockTypeVoid)
		e.writeByte(OpLoop)
		e.writeByte(blockTypeVoid)

		e.writeByte(OpLocalGet)
		e.writeULEB(uint32(slot))
		e.writeByte(OpI32Const)
		e.writeSLEB(0)
		e.writeByte(OpI32LeS)
		e.writeByte(OpBrIf)
		e.writeULEB(1)

		if err := em.emitBody(e, ctx, n.Body); err != nil {
			return err
		}

		e.writeByte(OpLocalGet)
		e.writeULEB(uint32(slot))
		e.writeByte(OpI32Const)
		e.writeSLEB(1)
		e.writeByte(OpI32Sub)
		e.writeByte(OpLocalSet)
		e.writeULEB(uint32(slot))

		e.writeByte(OpBr)
		e.writeULEB(0)
		e.writeByte(OpEnd) // loop
		e.writeByte(OpEnd) // block
		return nil

	case *ir.TryStmt:
		if err := em.emitBody(e, ctx, n.Try); err != nil {
			return err
		}
		// except-handlers are not emitted: no target-language exception
		// mechanism exists to attach them to (spec §4.7.2).
		return em.emitBody(e, ctx, n.Finally)

	case *ir.WithStmt:
		if err := em.emitExpr(e, ctx, n.Ctx); err != nil {
			return err
		}
		e.writeByte(OpDrop)
		return em.emitBody(e, ctx, n.Body)

	case *ir.ExprStmt:
		if err := em.emitExpr(e, ctx, n.Value); err != nil {
			return err
		}
		e.writeByte(OpDrop)
		return nil

	case *ir.DynamicImportStmt:
		slot, ok := ctx.slot(n.Target)
		if !ok {
			return errors.New(errors.GEN001, "codegen", errors.Name, "dynamic import target undeclared "+n.Target, nil)
		}
		if err := em.emitExpr(e, ctx, n.ModuleExpr); err != nil {
			return err
		}
		e.writeByte(OpDrop)
		e.writeByte(OpI32Const)
		e.writeSLEB(0)
		e.writeByte(OpLocalSet)
		e.writeULEB(uint32(slot))
		return nil

	default:
		return errors.New(errors.GEN002, "codegen", errors.Codegen, "unsupported statement in code generation", nil)
	}
}

const opF64ConvertI32S = 0xb7
const opI32TruncF64S = 0xaa

// coerce inserts a numeric conversion when the value just emitted doesn't
// match the target slot's value type (spec §4.7.2 "with the target type
// propagated for numeric coercion").
func (em *emitter) coerce(e *encoder, target ValType, value ir.Expr, ctx *funcContext) {
	have := ValI32
	if em.exprIsFloat(ctx, value) {
		have = ValF64
	}
	em.convert(e, have, target)
}
