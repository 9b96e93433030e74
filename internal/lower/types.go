package lower

import (
	"github.com/sunholo/pywasmc/internal/ast"
	"github.com/sunholo/pywasmc/internal/errors"
	"github.com/sunholo/pywasmc/internal/ir"
)

var atomicTypes = map[string]ir.Type{
	"int":   ir.Int,
	"float": ir.Float,
	"bool":  ir.Bool,
	"str":   ir.String,
	"bytes": ir.Bytes,
	"None":  ir.None,
	"Any":   ir.Any,
}

var genericNames = map[string]bool{
	"List": true, "list": true,
	"Dict": true, "dict": true,
	"Tuple": true, "tuple": true,
	"Optional": true,
	"Union":    true,
}

// resolveType maps a type-annotation expression to the closed IR type
// lattice (spec §4.3.1). It never fails outright except for a malformed
// Dict subscript arity, which is reported as LOW006 and degrades to Any so
// the rest of the function can still lower.
func (l *Lowerer) resolveType(e ast.Expr) ir.Type {
	if e == nil {
		return ir.Unknown
	}
	switch n := e.(type) {
	case *ast.Name:
		if t, ok := atomicTypes[n.Id]; ok {
			return t
		}
		return ir.ClassType(n.Id)
	case *ast.Subscript:
		outer, ok := n.Value.(*ast.Name)
		if !ok || !genericNames[outer.Id] {
			return ir.Any
		}
		return l.resolveGeneric(outer.Id, n.Index, n.Pos)
	default:
		return ir.Any
	}
}

func (l *Lowerer) resolveGeneric(outer string, index ast.Expr, pos ast.Pos) ir.Type {
	switch outer {
	case "List", "list":
		return ir.List(l.resolveType(index))
	case "Dict", "dict":
		tup, ok := index.(*ast.Tuple)
		if !ok || len(tup.Elts) != 2 {
			l.fail(errors.LOW006, pos, "Dict[...] annotation requires exactly two type arguments")
			return ir.Any
		}
		return ir.Dict(l.resolveType(tup.Elts[0]), l.resolveType(tup.Elts[1]))
	case "Tuple", "tuple":
		if tup, ok := index.(*ast.Tuple); ok {
			elems := make([]ir.Type, len(tup.Elts))
			for i, e := range tup.Elts {
				elems[i] = l.resolveType(e)
			}
			return ir.Tuple(elems...)
		}
		return ir.Tuple(l.resolveType(index))
	case "Optional":
		return ir.Optional(l.resolveType(index))
	case "Union":
		if tup, ok := index.(*ast.Tuple); ok {
			elems := make([]ir.Type, len(tup.Elts))
			for i, e := range tup.Elts {
				elems[i] = l.resolveType(e)
			}
			return ir.Union(elems...)
		}
		return ir.Union(l.resolveType(index))
	}
	return ir.Any
}
