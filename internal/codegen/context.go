package codegen

import "github.com/sunholo/pywasmc/internal/ir"

// funcEntry is one function destined for the module's type/function/export/
// code sections: either a module-level ir.Function or a flattened class
// method, exported as "ClassName::methodName" (spec §4.7.1).
type funcEntry struct {
	exportName string
	fn         *ir.Function
}

// flattenFunctions assigns every module-level function and every class
// method a consecutive index starting at 0, module functions first in
// declaration order, then each class's methods in declaration order - a
// single deterministic pre-scan pass (spec §4.7.1).
func flattenFunctions(mod *ir.Module) []funcEntry {
	var entries []funcEntry
	for _, fn := range mod.Functions {
		entries = append(entries, funcEntry{exportName: fn.Name, fn: fn})
	}
	for _, cls := range mod.Classes {
		for _, m := range cls.Methods {
			entries = append(entries, funcEntry{exportName: cls.Name + "::" + m.Name, fn: m})
		}
	}
	return entries
}

// funcIndex maps a callable IR name to its function-table index. Calls are
// resolved by the plain (unqualified) function/method name they were
// declared with; class methods are only reachable via MethodCall, which
// §4.7.2 says is not yet generated, so only module-level names need to
// resolve for `call`.
type funcIndex map[string]uint32

func buildFuncIndex(entries []funcEntry) funcIndex {
	idx := funcIndex{}
	for i, e := range entries {
		idx[e.exportName] = uint32(i)
	}
	for i, e := range entries {
		if e.fn != nil {
			if _, exists := idx[e.fn.Name]; !exists {
				idx[e.fn.Name] = uint32(i)
			}
		}
	}
	return idx
}

// funcSig is the slice of a function's type signature the emitter needs to
// coerce values at call sites: its parameter value types and its return
// value type.
type funcSig struct {
	params []ValType
	ret    ValType
}

// buildSigIndex mirrors buildFuncIndex's name resolution (qualified export
// name, falling back to the plain function/method name) so call-site
// lookups by plain name agree with the funcIndex used to resolve `call`.
func buildSigIndex(entries []funcEntry) map[string]funcSig {
	sigFor := func(fn *ir.Function) funcSig {
		return funcSig{params: paramValTypes(fn), ret: valTypeFor(fn.Returns.String())}
	}
	idx := map[string]funcSig{}
	for _, e := range entries {
		idx[e.exportName] = sigFor(e.fn)
	}
	for _, e := range entries {
		if e.fn != nil {
			if _, exists := idx[e.fn.Name]; !exists {
				idx[e.fn.Name] = sigFor(e.fn)
			}
		}
	}
	return idx
}

// scratch slot names reserved in every function for BoolOp short-circuiting
// and Pow's loop-based exponentiation (spec §4.7.2). Reserving them
// unconditionally keeps slot numbering simple and deterministic; the cost
// is a few unused locals in functions that use neither construct.
const (
	scratchBool    = "$bool"
	scratchPowBase = "$pow_base"
	scratchPowExp  = "$pow_exp"
	scratchPowAcc  = "$pow_acc"
)

// funcContext is the per-function local-slot allocation the emitter
// consults while walking a function body.
type funcContext struct {
	slotOf     map[string]int
	slotTypes  []ValType
	params     int
	funcs      funcIndex
	returnType ValType

	// localOrder/localType hold body locals in first-appearance order
	// before finalizeLocals regroups them by type; they are unused once
	// construction completes.
	localOrder []string
	localType  map[string]ValType
}

// newFuncContext runs the local-variable pre-pass: parameter slots first in
// declaration order, then every assignment target, loop variable, exception
// binding, and with-bound name discovered by a recursive walk of the body.
// Locals are *discovered* in first-appearance order but finally *slotted*
// grouped by value type (all i32 locals, then all f64 locals), because the
// function prelude declares its local groups that way and local indices
// follow the declared group order, not discovery order (spec §4.7.2).
func newFuncContext(fn *ir.Function, funcs funcIndex) *funcContext {
	c := &funcContext{slotOf: map[string]int{}, funcs: funcs, localType: map[string]ValType{},
		returnType: valTypeFor(fn.Returns.String())}
	for _, p := range fn.Params {
		c.slotOf[p.Name] = len(c.slotTypes)
		c.slotTypes = append(c.slotTypes, valTypeFor(p.Type.String()))
	}
	c.params = len(c.slotOf)
	for _, s := range fn.Body {
		c.collectLocals(s)
	}
	c.declare(scratchBool, ValI32)
	c.declare(scratchPowBase, ValI32)
	c.declare(scratchPowExp, ValI32)
	c.declare(scratchPowAcc, ValI32)
	c.finalizeLocals()
	return c
}

// declare records name as a body local if it isn't already a parameter or
// an already-recorded local. Re-declaration (e.g. a variable assigned
// twice) is a no-op: the type recorded is the one from its first
// introducing statement, matching spec §4.7.2. Slot indices are NOT
// assigned here - see finalizeLocals.
func (c *funcContext) declare(name string, t ValType) {
	if _, ok := c.slotOf[name]; ok {
		return
	}
	if _, ok := c.localType[name]; ok {
		return
	}
	c.localType[name] = t
	c.localOrder = append(c.localOrder, name)
}

// finalizeLocals assigns slot indices to every discovered body local,
// grouping i32 locals before f64 locals (preserving each group's discovery
// order) so slot order matches the grouped local declarations the function
// prelude emits.
func (c *funcContext) finalizeLocals() {
	var i32Names, f64Names []string
	for _, name := range c.localOrder {
		if c.localType[name] == ValF64 {
			f64Names = append(f64Names, name)
		} else {
			i32Names = append(i32Names, name)
		}
	}
	for _, name := range append(i32Names, f64Names...) {
		c.slotOf[name] = len(c.slotTypes)
		c.slotTypes = append(c.slotTypes, c.localType[name])
	}
}

func (c *funcContext) collectLocals(stmt ir.Stmt) {
	switch n := stmt.(type) {
	case *ir.AssignStmt:
		t := ValI32
		if n.Type != nil {
			t = valTypeFor(n.Type.String())
		}
		c.declare(n.Target, t)
	case *ir.AugAssignStmt:
		c.declare(n.Target, ValI32)
	case *ir.IfStmt:
		for _, s := range n.Then {
			c.collectLocals(s)
		}
		for _, s := range n.Else {
			c.collectLocals(s)
		}
	case *ir.WhileStmt:
		for _, s := range n.Body {
			c.collectLocals(s)
		}
	case *ir.ForStmt:
		c.declare(n.Var, ValI32)
		for _, s := range n.Body {
			c.collectLocals(s)
		}
		for _, s := range n.Else {
			c.collectLocals(s)
		}
	case *ir.TryStmt:
		for _, s := range n.Try {
			c.collectLocals(s)
		}
		for _, h := range n.Handlers {
			if h.Name != "" {
				c.declare(h.Name, ValI32)
			}
			for _, s := range h.Body {
				c.collectLocals(s)
			}
		}
		for _, s := range n.Finally {
			c.collectLocals(s)
		}
	case *ir.WithStmt:
		if n.Name != "" {
			c.declare(n.Name, ValI32)
		}
		for _, s := range n.Body {
			c.collectLocals(s)
		}
	case *ir.DynamicImportStmt:
		c.declare(n.Target, ValI32)
	}
}

// slot returns name's local index and whether it was declared. A lookup
// miss is always a codegen bug (GEN001): the pre-pass above is exhaustive
// over every construct that can introduce a local.
func (c *funcContext) slot(name string) (int, bool) {
	s, ok := c.slotOf[name]
	return s, ok
}

// localsByType groups the non-parameter locals by value type in slot order,
// the shape the function prelude declares them in (i32 count, f64 count).
func (c *funcContext) localsByType() (i32Count, f64Count uint32) {
	for i := c.params; i < len(c.slotTypes); i++ {
		if c.slotTypes[i] == ValF64 {
			f64Count++
		} else {
			i32Count++
		}
	}
	return
}
