package parser

import (
	"testing"

	"github.com/sunholo/pywasmc/internal/ast"
)

func mustParse(t *testing.T, src string) *ast.File {
	t.Helper()
	p := New("t.py", []byte(src))
	f := p.ParseFile()
	if len(p.Errors()) > 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}
	return f
}

func TestParsesFunctionWithAnnotations(t *testing.T) {
	f := mustParse(t, "def add(a: int, b: int) -> int:\n    return a + b\n")
	if len(f.Body) != 1 {
		t.Fatalf("expected 1 top-level statement, got %d", len(f.Body))
	}
	fn, ok := f.Body[0].(*ast.FunctionDef)
	if !ok {
		t.Fatalf("expected FunctionDef, got %T", f.Body[0])
	}
	if fn.Name != "add" || len(fn.Params) != 2 {
		t.Fatalf("unexpected function shape: %+v", fn)
	}
	ret, ok := fn.Body[0].(*ast.Return)
	if !ok {
		t.Fatalf("expected Return, got %T", fn.Body[0])
	}
	bin, ok := ret.Value.(*ast.BinOp)
	if !ok || bin.Op != "+" {
		t.Fatalf("expected a + b, got %+v", ret.Value)
	}
}

func TestParsesClassWithDecorator(t *testing.T) {
	src := "class Counter:\n    def __init__(self):\n        self.n = 0\n\n    @memoize\n    def get(self):\n        return self.n\n"
	f := mustParse(t, src)
	cls, ok := f.Body[0].(*ast.ClassDef)
	if !ok {
		t.Fatalf("expected ClassDef, got %T", f.Body[0])
	}
	if len(cls.Body) != 2 {
		t.Fatalf("expected 2 methods, got %d", len(cls.Body))
	}
	get, ok := cls.Body[1].(*ast.FunctionDef)
	if !ok || len(get.Decorators) != 1 {
		t.Fatalf("expected decorated method, got %+v", cls.Body[1])
	}
}

func TestParsesIfElifElse(t *testing.T) {
	src := "if a:\n    x = 1\nelif b:\n    x = 2\nelse:\n    x = 3\n"
	f := mustParse(t, src)
	top, ok := f.Body[0].(*ast.If)
	if !ok {
		t.Fatalf("expected If, got %T", f.Body[0])
	}
	nested, ok := top.Orelse[0].(*ast.If)
	if !ok {
		t.Fatalf("expected elif desugared to nested If, got %+v", top.Orelse)
	}
	if len(nested.Orelse) != 1 {
		t.Fatalf("expected else clause on nested if, got %+v", nested.Orelse)
	}
}

func TestParsesListAndListComp(t *testing.T) {
	f := mustParse(t, "xs = [1, 2, 3]\nys = [x for x in xs]\n")
	assign := f.Body[0].(*ast.Assign)
	if _, ok := assign.Value.(*ast.ListExpr); !ok {
		t.Fatalf("expected ListExpr, got %T", assign.Value)
	}
	assign2 := f.Body[1].(*ast.Assign)
	if _, ok := assign2.Value.(*ast.ListComp); !ok {
		t.Fatalf("expected ListComp, got %T", assign2.Value)
	}
}

func TestParsesTryExceptFinally(t *testing.T) {
	src := "try:\n    risky()\nexcept ValueError as e:\n    handle(e)\nfinally:\n    cleanup()\n"
	f := mustParse(t, src)
	tr, ok := f.Body[0].(*ast.Try)
	if !ok {
		t.Fatalf("expected Try, got %T", f.Body[0])
	}
	if len(tr.Handlers) != 1 || tr.Handlers[0].Name != "e" {
		t.Fatalf("unexpected handler shape: %+v", tr.Handlers)
	}
	if len(tr.Finally) != 1 {
		t.Fatalf("expected finally clause, got %+v", tr.Finally)
	}
}

func TestParsesImportForms(t *testing.T) {
	f := mustParse(t, "import os.path as p\nfrom . import helper\nfrom pkg.sub import a, b as c\n")
	imp := f.Body[0].(*ast.Import)
	if imp.Names[0].Name != "os.path" || imp.Names[0].AsName != "p" {
		t.Fatalf("unexpected import: %+v", imp.Names[0])
	}
	rel := f.Body[1].(*ast.ImportFrom)
	if rel.Level != 1 || rel.Names[0].Name != "helper" {
		t.Fatalf("unexpected relative import: %+v", rel)
	}
	from := f.Body[2].(*ast.ImportFrom)
	if from.Module != "pkg.sub" || len(from.Names) != 2 || from.Names[1].AsName != "c" {
		t.Fatalf("unexpected from-import: %+v", from)
	}
}

func TestOperatorPrecedence(t *testing.T) {
	f := mustParse(t, "x = 1 + 2 * 3\n")
	assign := f.Body[0].(*ast.Assign)
	top := assign.Value.(*ast.BinOp)
	if top.Op != "+" {
		t.Fatalf("expected top-level +, got %s", top.Op)
	}
	if _, ok := top.Right.(*ast.BinOp); !ok {
		t.Fatalf("expected 2 * 3 grouped on the right, got %+v", top.Right)
	}
}
