// Package lower implements C3: it walks a parsed source file's top-level
// sequence once and produces an IR module (spec §4.3), grounded in the
// teacher's own walk-and-dispatch lowering shape while following the
// Python-subset semantics original_source/src/ir describes for the
// constructs that have no teacher analogue.
package lower

import (
	"github.com/sunholo/pywasmc/internal/ast"
	"github.com/sunholo/pywasmc/internal/errors"
	"github.com/sunholo/pywasmc/internal/ir"
	"github.com/sunholo/pywasmc/internal/memlayout"
)

const phase = "lowering"

// Lowerer carries the shared memory layout and accumulates warnings across
// one file's worth of lowering. The first fatal error short-circuits the
// rest of the current function/statement; already-lowered siblings are
// still returned to the caller via err, which is non-nil once set.
type Lowerer struct {
	mem      *memlayout.Layout
	warnings []errors.Warning
	err      *errors.Report
}

// New creates a Lowerer sharing the given memory layout, the single
// accumulator all files in a project intern strings into (spec §4.5).
func New(mem *memlayout.Layout) *Lowerer {
	return &Lowerer{mem: mem}
}

func (l *Lowerer) fail(code string, pos ast.Pos, msg string) {
	if l.err != nil {
		return
	}
	l.err = errors.New(code, phase, taxonomyFor(code), msg, errors.LocationFromPos(pos, ""))
}

func taxonomyFor(code string) errors.Taxonomy {
	switch code {
	case errors.LOW005, errors.LOW006:
		return errors.Type
	default:
		return errors.Unsupported
	}
}

func (l *Lowerer) warn(kind errors.WarningKind, pos ast.Pos, msg string) {
	l.warnings = append(l.warnings, errors.NewWarning(kind, msg, errors.LocationFromPos(pos, "")))
}

// Lower walks file.Body per spec §4.3's top-level dispatch and returns the
// resulting IR module, any accumulated non-fatal warnings, and the first
// fatal error encountered (if any).
func Lower(file *ast.File, mem *memlayout.Layout) (*ir.Module, []errors.Warning, error) {
	l := New(mem)
	mod := ir.NewModule()

	for _, stmt := range file.Body {
		if l.err != nil {
			return mod, l.warnings, l.errOrNil()
		}
		switch n := stmt.(type) {
		case *ast.FunctionDef:
			fn := l.lowerFunction(n)
			if fn != nil {
				mod.Functions = append(mod.Functions, fn)
			}
		case *ast.ClassDef:
			cls := l.lowerClass(n)
			if cls != nil {
				mod.Classes = append(mod.Classes, cls)
			}
		case *ast.Assign:
			if v := l.lowerModuleAssign(n); v != nil {
				mod.Vars = append(mod.Vars, v)
			}
		case *ast.AnnAssign:
			if v := l.lowerModuleAnnAssign(n); v != nil {
				mod.Vars = append(mod.Vars, v)
			}
		case *ast.Import:
			mod.Imports = append(mod.Imports, l.lowerImport(n)...)
		case *ast.ImportFrom:
			mod.Imports = append(mod.Imports, l.lowerImportFrom(n)...)
		case *ast.ExprStmt:
			// docstrings and other top-level expression statements are ignored
		default:
			// anything else is silently skipped (spec §4.3)
		}
	}
	return mod, l.warnings, l.errOrNil()
}

// errOrNil converts the sticky *errors.Report into a plain nil error when
// unset. Returning l.err directly would hand callers a non-nil error
// interface wrapping a nil *Report once l.err's concrete type is fixed.
func (l *Lowerer) errOrNil() error {
	if l.err == nil {
		return nil
	}
	return l.err
}

func (l *Lowerer) lowerFunction(n *ast.FunctionDef) *ir.Function {
	fn := &ir.Function{Name: n.Name, Returns: l.resolveType(n.Returns)}
	for _, p := range n.Params {
		param := &ir.Param{Name: p.Name, Type: l.resolveType(p.Annotation)}
		if p.Default != nil {
			param.Default = l.lowerExpr(p.Default)
		}
		fn.Params = append(fn.Params, param)
	}
	for _, d := range n.Decorators {
		if name, ok := d.(*ast.Name); ok {
			fn.Decorators = append(fn.Decorators, name.Id)
		}
	}
	fn.Body = l.lowerBody(n.Body)
	return fn
}

func (l *Lowerer) lowerClass(n *ast.ClassDef) *ir.Class {
	cls := &ir.Class{Name: n.Name}
	for _, b := range n.Bases {
		if name, ok := b.(*ast.Name); ok {
			cls.Bases = append(cls.Bases, name.Id)
		}
	}
	for _, stmt := range n.Body {
		if l.err != nil {
			return cls
		}
		switch s := stmt.(type) {
		case *ast.FunctionDef:
			if m := l.lowerFunction(s); m != nil {
				cls.Methods = append(cls.Methods, m)
			}
		case *ast.Assign:
			if v := l.lowerModuleAssign(s); v != nil {
				cls.Fields = append(cls.Fields, v)
			}
		case *ast.AnnAssign:
			if v := l.lowerModuleAnnAssign(s); v != nil {
				cls.Fields = append(cls.Fields, v)
			}
		default:
			// nested class bodies otherwise only contribute methods/fields
		}
	}
	return cls
}

func (l *Lowerer) lowerModuleAssign(n *ast.Assign) *ir.ModuleVar {
	if len(n.Targets) != 1 {
		return nil
	}
	name, ok := n.Targets[0].(*ast.Name)
	if !ok {
		return nil
	}
	return &ir.ModuleVar{Name: name.Id, Value: l.lowerExpr(n.Value)}
}

func (l *Lowerer) lowerModuleAnnAssign(n *ast.AnnAssign) *ir.ModuleVar {
	name, ok := n.Target.(*ast.Name)
	if !ok {
		return nil
	}
	t := l.resolveType(n.Annotation)
	v := &ir.ModuleVar{Name: name.Id, Type: t, HasType: true}
	if n.Value != nil {
		v.Value = l.lowerExpr(n.Value)
	} else {
		v.Value = t.DefaultExpr()
	}
	return v
}

func (l *Lowerer) lowerImport(n *ast.Import) []*ir.Import {
	var out []*ir.Import
	for _, alias := range n.Names {
		out = append(out, &ir.Import{Module: alias.Name, Alias: alias.AsName})
	}
	return out
}

func (l *Lowerer) lowerImportFrom(n *ast.ImportFrom) []*ir.Import {
	if n.Star {
		return []*ir.Import{{Module: n.Module, FromClause: true, IsStar: true}}
	}
	var out []*ir.Import
	for _, alias := range n.Names {
		out = append(out, &ir.Import{
			Module:     n.Module,
			Member:     alias.Name,
			Alias:      alias.AsName,
			FromClause: true,
		})
	}
	return out
}
