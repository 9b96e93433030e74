package codegen

import (
	"github.com/sunholo/pywasmc/internal/errors"
	"github.com/sunholo/pywasmc/internal/ir"
	"github.com/sunholo/pywasmc/internal/memlayout"
)

// Options configures section emission (spec §4.7.1, §6 Options record).
type Options struct {
	// MaxMemoryPages is the memory declaration's upper bound, §6's
	// `max_memory` option (default 2).
	MaxMemoryPages uint32
}

// funcTypeTag marks the start of a function type entry in the types
// section, the same role 0x60 plays in comparable stack-machine formats -
// an arbitrary but fixed tag this encoding defines for itself.
const funcTypeTag byte = 0x60

const (
	exportKindFunc   byte = 0x00
	exportKindMemory byte = 0x02
)

// Generate assembles the full binary module for mod: types, functions,
// memory, exports, data, code, in that fixed order (spec §4.7.1). It never
// returns a partial buffer alongside an error: a malformed IR is rejected
// before any section is finalized.
func Generate(mod *ir.Module, mem *memlayout.Layout, opts Options) ([]byte, []errors.Warning, error) {
	if opts.MaxMemoryPages == 0 {
		opts.MaxMemoryPages = 2
	}
	entries := flattenFunctions(mod)
	funcs := buildFuncIndex(entries)
	em := &emitter{funcs: funcs, sigs: buildSigIndex(entries)}

	out := newEncoder()
	writeSection(out, SecTypes, buildTypesSection(entries))
	writeSection(out, SecFunctions, buildFunctionsSection(entries))
	writeSection(out, SecMemory, buildMemorySection(opts.MaxMemoryPages))
	writeSection(out, SecExports, buildExportsSection(entries))
	writeSection(out, SecData, buildDataSection(mem))

	codeBody, err := buildCodeSection(em, entries)
	if err != nil {
		return nil, nil, err
	}
	writeSection(out, SecCode, codeBody)

	return out.Bytes(), em.warnings, nil
}

func paramValTypes(fn *ir.Function) []ValType {
	vts := make([]ValType, len(fn.Params))
	for i, p := range fn.Params {
		vts[i] = valTypeFor(p.Type.String())
	}
	return vts
}

func buildTypesSection(entries []funcEntry) []byte {
	e := newEncoder()
	e.writeULEB(uint32(len(entries)))
	for _, entry := range entries {
		e.writeByte(funcTypeTag)
		params := paramValTypes(entry.fn)
		e.writeULEB(uint32(len(params)))
		for _, p := range params {
			e.writeByte(byte(p))
		}
		// every function returns exactly one value (spec §4.7.1 has no
		// provision for a void function; synthetic `main` and user
		// functions alike always declare a return type).
		e.writeULEB(1)
		e.writeByte(byte(valTypeFor(entry.fn.Returns.String())))
	}
	return e.Bytes()
}

func buildFunctionsSection(entries []funcEntry) []byte {
	e := newEncoder()
	e.writeULEB(uint32(len(entries)))
	for i := range entries {
		e.writeULEB(uint32(i)) // type index == function index (one type per function)
	}
	return e.Bytes()
}

func buildMemorySection(maxPages uint32) []byte {
	e := newEncoder()
	e.writeULEB(1) // exactly one linear memory
	e.writeByte(0x01) // limits flag: has-maximum
	e.writeULEB(1) // initial size: 1 page
	e.writeULEB(maxPages)
	return e.Bytes()
}

func buildExportsSection(entries []funcEntry) []byte {
	e := newEncoder()
	e.writeULEB(uint32(len(entries)) + 1) // +1 for the memory export
	for i, entry := range entries {
		e.writeString(entry.exportName)
		e.writeByte(exportKindFunc)
		e.writeULEB(uint32(i))
	}
	e.writeString("memory")
	e.writeByte(exportKindMemory)
	e.writeULEB(0)
	return e.Bytes()
}

func buildDataSection(mem *memlayout.Layout) []byte {
	e := newEncoder()
	if mem == nil || mem.Len() == 0 {
		e.writeULEB(0)
		return e.Bytes()
	}
	e.writeULEB(1)
	e.writeULEB(0) // memory index 0
	// active-segment offset expression: a constant 0
	e.writeByte(OpI32Const)
	e.writeSLEB(0)
	e.writeByte(OpEnd)
	seg := mem.Segment()
	e.writeULEB(uint32(len(seg)))
	e.writeBytes(seg)
	return e.Bytes()
}

func buildCodeSection(em *emitter, entries []funcEntry) ([]byte, error) {
	out := newEncoder()
	out.writeULEB(uint32(len(entries)))
	for _, entry := range entries {
		body, err := buildFunctionBody(em, entry.fn)
		if err != nil {
			return nil, err
		}
		out.writeULEB(uint32(len(body)))
		out.writeBytes(body)
	}
	return out.Bytes(), nil
}

func buildFunctionBody(em *emitter, fn *ir.Function) ([]byte, error) {
	ctx := newFuncContext(fn, em.funcs)
	body := newEncoder()

	i32Count, f64Count := ctx.localsByType()
	groups := 0
	if i32Count > 0 {
		groups++
	}
	if f64Count > 0 {
		groups++
	}
	body.writeULEB(uint32(groups))
	if i32Count > 0 {
		body.writeULEB(i32Count)
		body.writeByte(byte(ValI32))
	}
	if f64Count > 0 {
		body.writeULEB(f64Count)
		body.writeByte(byte(ValF64))
	}

	if err := em.emitBody(body, ctx, fn.Body); err != nil {
		return nil, err
	}
	body.writeByte(OpEnd)
	return body.Bytes(), nil
}
