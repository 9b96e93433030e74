// Package ast defines the validated syntax tree produced by the front-end
// scanner/parser for the compilable Python subset. Nothing downstream of
// lowering ever sees raw source text again: every later component
// (decorator expansion, entry-point synthesis, code generation) consumes
// only these node types.
package ast

import "fmt"

// Pos identifies a location in a single source file.
type Pos struct {
	File   string
	Line   int
	Column int
}

func (p Pos) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Node is implemented by every syntax-tree node.
type Node interface {
	Position() Pos
}

// Stmt is implemented by statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is implemented by expression nodes.
type Expr interface {
	Node
	exprNode()
}

// File is the root of a single parsed source file.
type File struct {
	Path string
	Body []Stmt
	Pos  Pos
}

func (f *File) Position() Pos { return f.Pos }

// --- Statements ---------------------------------------------------------

// Param is a single function parameter.
type Param struct {
	Name       string
	Annotation Expr // nil if unannotated
	Default    Expr // nil if required
	Pos        Pos
}

// FunctionDef declares a module-level function or a method body.
type FunctionDef struct {
	Name       string
	Params     []*Param
	Returns    Expr // annotation expression, nil if unannotated
	Decorators []Expr
	Body       []Stmt
	Pos        Pos
}

func (n *FunctionDef) stmtNode()      {}
func (n *FunctionDef) Position() Pos  { return n.Pos }

// ClassDef declares a class with a flat list of base-class names and a body
// of nested function/assignment statements.
type ClassDef struct {
	Name       string
	Bases      []Expr
	Decorators []Expr
	Body       []Stmt
	Pos        Pos
}

func (n *ClassDef) stmtNode()     {}
func (n *ClassDef) Position() Pos { return n.Pos }

// Assign is a plain `target = value` statement. Python allows chained and
// tuple targets; the compilable subset only accepts a single Name target,
// enforced during lowering rather than parsing so the parser stays a
// faithful (if partial) grammar.
type Assign struct {
	Targets []Expr
	Value   Expr
	Pos     Pos
}

func (n *Assign) stmtNode()     {}
func (n *Assign) Position() Pos { return n.Pos }

// AnnAssign is `target: annotation = value` (value may be nil).
type AnnAssign struct {
	Target     Expr
	Annotation Expr
	Value      Expr
	Pos        Pos
}

func (n *AnnAssign) stmtNode()     {}
func (n *AnnAssign) Position() Pos { return n.Pos }

// AugAssign is `target OP= value`.
type AugAssign struct {
	Target Expr
	Op     string
	Value  Expr
	Pos    Pos
}

func (n *AugAssign) stmtNode()     {}
func (n *AugAssign) Position() Pos { return n.Pos }

// Return is `return value` or a bare `return`.
type Return struct {
	Value Expr
	Pos   Pos
}

func (n *Return) stmtNode()     {}
func (n *Return) Position() Pos { return n.Pos }

// If is `if test: body [elif ...] [else: orelse]`. elif chains are modeled
// as a single nested If in Orelse, the same way Python's own grammar does.
type If struct {
	Test   Expr
	Body   []Stmt
	Orelse []Stmt
	Pos    Pos
}

func (n *If) stmtNode()     {}
func (n *If) Position() Pos { return n.Pos }

// While is `while test: body [else: orelse]`.
type While struct {
	Test   Expr
	Body   []Stmt
	Orelse []Stmt
	Pos    Pos
}

func (n *While) stmtNode()     {}
func (n *While) Position() Pos { return n.Pos }

// For is `for target in iter: body [else: orelse]`.
type For struct {
	Target Expr
	Iter   Expr
	Body   []Stmt
	Orelse []Stmt
	Pos    Pos
}

func (n *For) stmtNode()     {}
func (n *For) Position() Pos { return n.Pos }

// ExceptHandler is one `except [Type [as Name]]: body` clause.
type ExceptHandler struct {
	Type Expr // nil for bare except
	Name string
	Body []Stmt
	Pos  Pos
}

// Try is `try: body [except ...]* [finally: finally]`.
type Try struct {
	Body     []Stmt
	Handlers []*ExceptHandler
	Finally  []Stmt
	Pos      Pos
}

func (n *Try) stmtNode()     {}
func (n *Try) Position() Pos { return n.Pos }

// With is `with ctx [as name]: body`. Only a single context manager is
// supported, matching the compilable subset's resource model.
type With struct {
	Ctx  Expr
	Name string
	Body []Stmt
	Pos  Pos
}

func (n *With) stmtNode()     {}
func (n *With) Position() Pos { return n.Pos }

// ExprStmt is an expression evaluated for effect, most commonly a call.
type ExprStmt struct {
	Value Expr
	Pos   Pos
}

func (n *ExprStmt) stmtNode()     {}
func (n *ExprStmt) Position() Pos { return n.Pos }

// Pass is a no-op placeholder statement.
type Pass struct {
	Pos Pos
}

func (n *Pass) stmtNode()     {}
func (n *Pass) Position() Pos { return n.Pos }

// ImportAlias is one `name [as asname]` clause of an import statement.
type ImportAlias struct {
	Name   string
	AsName string
}

// Import is `import a.b [as c], d [as e]`.
type Import struct {
	Names []*ImportAlias
	Pos   Pos
}

func (n *Import) stmtNode()     {}
func (n *Import) Position() Pos { return n.Pos }

// ImportFrom is `from [.]*module import a [as b], ...` or `from . import *`.
// Level counts leading dots for relative imports (0 means absolute).
type ImportFrom struct {
	Module string
	Level  int
	Names  []*ImportAlias
	Star   bool
	Pos    Pos
}

func (n *ImportFrom) stmtNode()     {}
func (n *ImportFrom) Position() Pos { return n.Pos }

// --- Expressions ---------------------------------------------------------

// ConstKind tags the kind of literal a Constant holds.
type ConstKind int

const (
	ConstInt ConstKind = iota
	ConstFloat
	ConstBool
	ConstString
	ConstNone
)

// Constant is a literal: int, float, bool, string, or None.
type Constant struct {
	Kind  ConstKind
	Int   int64
	Float float64
	Bool  bool
	Str   string
	Pos   Pos
}

func (n *Constant) exprNode()     {}
func (n *Constant) Position() Pos { return n.Pos }

// Name is a bare identifier reference.
type Name struct {
	Id  string
	Pos Pos
}

func (n *Name) exprNode()     {}
func (n *Name) Position() Pos { return n.Pos }

// BinOp is a binary arithmetic/bitwise expression.
type BinOp struct {
	Left  Expr
	Op    string
	Right Expr
	Pos   Pos
}

func (n *BinOp) exprNode()     {}
func (n *BinOp) Position() Pos { return n.Pos }

// UnaryOp is a prefix unary expression: -x, +x, ~x, not x.
type UnaryOp struct {
	Op      string
	Operand Expr
	Pos     Pos
}

func (n *UnaryOp) exprNode()     {}
func (n *UnaryOp) Position() Pos { return n.Pos }

// Compare models a (possibly chained) comparison: a < b <= c. The
// compilable subset only lowers two-operand comparisons; longer chains are
// rejected during lowering with an Unsupported diagnostic, but the parser
// itself accepts Python's general chained-comparison grammar.
type Compare struct {
	Left        Expr
	Ops         []string
	Comparators []Expr
	Pos         Pos
}

func (n *Compare) exprNode()     {}
func (n *Compare) Position() Pos { return n.Pos }

// BoolOp is `a and b and c` or `a or b or c`. Like Compare, only the
// two-operand form survives lowering.
type BoolOp struct {
	Op     string
	Values []Expr
	Pos    Pos
}

func (n *BoolOp) exprNode()     {}
func (n *BoolOp) Position() Pos { return n.Pos }

// Call is a function or method invocation.
type Call struct {
	Func Expr
	Args []Expr
	Pos  Pos
}

func (n *Call) exprNode()     {}
func (n *Call) Position() Pos { return n.Pos }

// ListExpr is a list display: [a, b, c].
type ListExpr struct {
	Elts []Expr
	Pos  Pos
}

func (n *ListExpr) exprNode()     {}
func (n *ListExpr) Position() Pos { return n.Pos }

// DictExpr is a dict display: {k: v, ...}.
type DictExpr struct {
	Keys   []Expr
	Values []Expr
	Pos    Pos
}

func (n *DictExpr) exprNode()     {}
func (n *DictExpr) Position() Pos { return n.Pos }

// Subscript is `value[index]`.
type Subscript struct {
	Value Expr
	Index Expr
	Pos   Pos
}

func (n *Subscript) exprNode()     {}
func (n *Subscript) Position() Pos { return n.Pos }

// Attribute is `value.attr`.
type Attribute struct {
	Value Expr
	Attr  string
	Pos   Pos
}

func (n *Attribute) exprNode()     {}
func (n *Attribute) Position() Pos { return n.Pos }

// ListComp is `[elt for target in iter]`. The compilable subset does not
// support comprehension filters (`if` clauses) or nested `for` clauses.
type ListComp struct {
	Elt    Expr
	Target Expr
	Iter   Expr
	Pos    Pos
}

func (n *ListComp) exprNode()     {}
func (n *ListComp) Position() Pos { return n.Pos }

// Tuple is an expression-position tuple, used for subscript type arguments
// such as Dict[str, int] and for multi-value annotations.
type Tuple struct {
	Elts []Expr
	Pos  Pos
}

func (n *Tuple) exprNode()     {}
func (n *Tuple) Position() Pos { return n.Pos }
