// Package ir defines the intermediate representation (spec §3): a typed,
// desugared tree with explicit operators, statements, classes, and
// module-level variables. It is isomorphic to what the code generator
// (internal/codegen) can emit - nothing in Type is a user-extensible open
// set, so codegen can switch exhaustively over every Kind without a
// default case hiding an unsupported construct.
package ir

import "fmt"

// Kind is the closed IR type lattice (spec §3 "IR Type lattice").
type Kind int

const (
	KInt Kind = iota
	KFloat
	KBool
	KString
	KBytes
	KNone
	KAny
	KUnknown
	KList
	KDict
	KTuple
	KOptional
	KUnion
	KClass
	KModule
)

// Type is a single member of the IR type lattice. Elem is used by List and
// Optional; Key/Elem together by Dict; Elems by Tuple and Union; Name by
// Class and Module.
type Type struct {
	Kind  Kind
	Elem  *Type
	Key   *Type
	Elems []Type
	Name  string
}

func Atomic(k Kind) Type { return Type{Kind: k} }

var (
	Int     = Atomic(KInt)
	Float   = Atomic(KFloat)
	Bool    = Atomic(KBool)
	String  = Atomic(KString)
	Bytes   = Atomic(KBytes)
	None    = Atomic(KNone)
	Any     = Atomic(KAny)
	Unknown = Atomic(KUnknown)
)

func List(elem Type) Type              { return Type{Kind: KList, Elem: &elem} }
func Dict(key, val Type) Type          { return Type{Kind: KDict, Key: &key, Elem: &val} }
func Tuple(elems ...Type) Type         { return Type{Kind: KTuple, Elems: elems} }
func Optional(elem Type) Type          { return Type{Kind: KOptional, Elem: &elem} }
func Union(elems ...Type) Type         { return Type{Kind: KUnion, Elems: elems} }
func ClassType(name string) Type       { return Type{Kind: KClass, Name: name} }
func ModuleType(name string) Type      { return Type{Kind: KModule, Name: name} }

func (t Type) String() string {
	switch t.Kind {
	case KInt:
		return "int"
	case KFloat:
		return "float"
	case KBool:
		return "bool"
	case KString:
		return "str"
	case KBytes:
		return "bytes"
	case KNone:
		return "None"
	case KAny:
		return "Any"
	case KUnknown:
		return "Unknown"
	case KList:
		return fmt.Sprintf("List[%s]", t.Elem)
	case KDict:
		return fmt.Sprintf("Dict[%s, %s]", t.Key, t.Elem)
	case KTuple:
		return fmt.Sprintf("Tuple%v", t.Elems)
	case KOptional:
		return fmt.Sprintf("Optional[%s]", t.Elem)
	case KUnion:
		return fmt.Sprintf("Union%v", t.Elems)
	case KClass:
		return t.Name
	case KModule:
		return "module:" + t.Name
	default:
		return "?"
	}
}

