// Package errors provides centralized, structured error and warning
// reporting for the compiler. Every phase of the pipeline returns errors
// through this package rather than bare fmt.Errorf, so a host embedding the
// compiler can always recover a code, a phase, and an optional source
// location from a failure.
package errors

// Error codes are grouped by the pipeline phase that raises them, mirroring
// the component letters of the compilation pipeline (C1-C8).
const (
	// Parser errors (PAR###) - C0 lexer/parser (non-core, spec's external
	// black box in principle, but a real end-to-end module still needs one)
	PAR001 = "PAR001" // source text failed to parse

	// Scanner errors (SCN###) - C1 import scanner
	SCN001 = "SCN001" // malformed dynamic-import call argument

	// Resolver errors (RES###) - C2 project resolver
	RES001 = "RES001" // project root could not be read
	RES002 = "RES002" // module path collision (two files map to the same dotted path)
	RES003 = "RES003" // dependency-ordering invariant violated (resolver bug, not user error)

	// Lowering errors (LOW###) - C3 syntax-tree -> IR lowering
	LOW001 = "LOW001" // unsupported assignment target (non-name, non-attribute)
	LOW002 = "LOW002" // unsupported for-loop target (non-name)
	LOW003 = "LOW003" // chained comparison (more than two operands) rejected
	LOW004 = "LOW004" // n-ary boolean operator (more than two operands) rejected
	LOW005 = "LOW005" // integer literal exceeds 32-bit signed range
	LOW006 = "LOW006" // dict type annotation with wrong subscript arity
	LOW007 = "LOW007" // unsupported with-statement form (multiple context managers)
	LOW008 = "LOW008" // list comprehension outside the supported single-generator form

	// Decorator expansion errors (DEC###) - C4
	DEC001 = "DEC001" // decorator expansion invariant violated (bug, not user error)

	// Entry-point synthesis errors (ENT###) - C5
	ENT001 = "ENT001" // entry-point detection found conflicting patterns

	// Memory layout errors (MEM###) - C6
	MEM001 = "MEM001" // string offset invariant violated (bug, not user error)

	// Code generation errors (GEN###) - C7
	GEN001 = "GEN001" // reference to an undeclared local (fatal, pre-pass bug)
	GEN002 = "GEN002" // unsupported construct in code generation
	GEN003 = "GEN003" // unknown callee in a function call (emits placeholder, also warns)

	// Driver errors (DRV###) - C8 project compile driver
	DRV001 = "DRV001" // no source files discovered in project root
	DRV002 = "DRV002" // external optimizer rejected the binary
)

// ErrorInfo documents one registered code for tooling (CLI --explain,
// documentation generation) the way the teacher's registry-of-ErrorInfo
// supports introspection over its own codes.
type ErrorInfo struct {
	Code        string
	Phase       string
	Category    string
	Description string
}

// Registry maps every code above to its documentation.
var Registry = map[string]ErrorInfo{
	PAR001: {PAR001, "parser", "syntax", "source text failed to parse"},

	SCN001: {SCN001, "scanner", "syntax", "malformed dynamic import argument"},

	RES001: {RES001, "resolver", "io", "project root could not be read"},
	RES002: {RES002, "resolver", "namespace", "module path collision"},
	RES003: {RES003, "resolver", "invariant", "dependency ordering invariant violated"},

	LOW001: {LOW001, "lowering", "unsupported", "unsupported assignment target"},
	LOW002: {LOW002, "lowering", "unsupported", "unsupported for-loop target"},
	LOW003: {LOW003, "lowering", "unsupported", "chained comparison rejected"},
	LOW004: {LOW004, "lowering", "unsupported", "n-ary boolean operator rejected"},
	LOW005: {LOW005, "lowering", "type", "integer literal out of 32-bit range"},
	LOW006: {LOW006, "lowering", "type", "Dict annotation has wrong arity"},
	LOW007: {LOW007, "lowering", "unsupported", "unsupported with-statement form"},
	LOW008: {LOW008, "lowering", "unsupported", "unsupported list comprehension form"},

	DEC001: {DEC001, "decorators", "invariant", "decorator expansion invariant violated"},

	ENT001: {ENT001, "entrypoint", "ambiguous", "conflicting entry-point patterns"},

	MEM001: {MEM001, "memlayout", "invariant", "string offset invariant violated"},

	GEN001: {GEN001, "codegen", "name", "reference to undeclared local"},
	GEN002: {GEN002, "codegen", "type", "unsupported construct in code generation"},
	GEN003: {GEN003, "codegen", "name", "unknown callee"},

	DRV001: {DRV001, "driver", "io", "no source files discovered"},
	DRV002: {DRV002, "driver", "optimization", "external optimizer rejected binary"},
}

// Lookup returns the registered ErrorInfo for a code, if any.
func Lookup(code string) (ErrorInfo, bool) {
	info, ok := Registry[code]
	return info, ok
}
