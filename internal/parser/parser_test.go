package parser

import (
	"testing"

	"github.com/hulk-lang/hulkc/internal/ast"
)

func TestParseFunctionDef(t *testing.T) {
	prog, err := Parse(`function square(x: Number): Number => x * x;`)
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
	}
	fd, ok := prog.Statements[0].(*ast.FunctionDef)
	if !ok {
		t.Fatalf("expected *ast.FunctionDef, got %T", prog.Statements[0])
	}
	if fd.Name != "square" || fd.ReturnName != "Number" || len(fd.Params) != 1 {
		t.Errorf("unexpected function shape: %+v", fd)
	}
	if _, ok := fd.Body.(*ast.BinaryOp); !ok {
		t.Errorf("expected body to be a BinaryOp, got %T", fd.Body)
	}
}

func TestParseTypeDefWithInheritance(t *testing.T) {
	prog, err := Parse(`
type Animal(name: String) {
	name = name;
	speak(): String => "...";
}
type Dog(name: String) inherits Animal(name) {
	speak(): String => "woof";
}`)
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	if len(prog.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Statements))
	}
	dog, ok := prog.Statements[1].(*ast.TypeDef)
	if !ok {
		t.Fatalf("expected *ast.TypeDef, got %T", prog.Statements[1])
	}
	if dog.Parent != "Animal" || len(dog.ParentArgs) != 1 {
		t.Errorf("expected Dog to inherit Animal with 1 ctor arg, got parent=%q args=%d", dog.Parent, len(dog.ParentArgs))
	}
	if len(dog.Members) != 1 {
		t.Fatalf("expected 1 member (speak override), got %d", len(dog.Members))
	}
	if _, ok := dog.Members[0].(ast.Method); !ok {
		t.Errorf("expected member to be a Method, got %T", dog.Members[0])
	}
}

func TestParsePrecedence(t *testing.T) {
	prog, err := Parse(`1 + 2 * 3;`)
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	stmt := prog.Statements[0].(*ast.ExprStmt)
	top, ok := stmt.X.(*ast.BinaryOp)
	if !ok || top.Op != "+" {
		t.Fatalf("expected top-level '+' node, got %#v", stmt.X)
	}
	if _, ok := top.Right.(*ast.BinaryOp); !ok {
		t.Errorf("expected '*' to bind tighter, nesting under '+', got %T", top.Right)
	}
}

func TestParsePowerIsRightAssociative(t *testing.T) {
	prog, err := Parse(`2 ^ 3 ^ 2;`)
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	stmt := prog.Statements[0].(*ast.ExprStmt)
	top := stmt.X.(*ast.BinaryOp)
	if _, ok := top.Right.(*ast.BinaryOp); !ok {
		t.Errorf("expected right-associative nesting (2^(3^2)), got right operand %T", top.Right)
	}
	if _, ok := top.Left.(*ast.NumberLit); !ok {
		t.Errorf("expected left operand to be a flat NumberLit, got %T", top.Left)
	}
}

func TestParseMethodCallAndFieldAccess(t *testing.T) {
	prog, err := Parse(`a.b.c();`)
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	stmt := prog.Statements[0].(*ast.ExprStmt)
	call, ok := stmt.X.(*ast.MethodCall)
	if !ok {
		t.Fatalf("expected *ast.MethodCall, got %T", stmt.X)
	}
	if call.Method != "c" {
		t.Errorf("expected method name 'c', got %q", call.Method)
	}
	if _, ok := call.Object.(*ast.FieldAccess); !ok {
		t.Errorf("expected receiver to be a FieldAccess (a.b), got %T", call.Object)
	}
}

func TestParseForRequiresRangeKeyword(t *testing.T) {
	_, err := Parse(`for (i in count(0, 10)) print(i);`)
	if err == nil {
		t.Fatal("expected an error for a non-'range' iterator, got none")
	}
}

func TestParseForRejectsWrongArgCount(t *testing.T) {
	_, err := Parse(`for (i in range(0, 10, 20)) print(i);`)
	if err == nil {
		t.Fatal("expected an error for range() with 3 arguments, got none")
	}
}

func TestParseBaseCallRequiresArgList(t *testing.T) {
	prog, err := Parse(`
type Animal {
	speak(): String => "...";
}
type Dog inherits Animal {
	speak(): String => base();
}`)
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	dog := prog.Statements[1].(*ast.TypeDef)
	speak := dog.Members[0].(ast.Method).Def
	if _, ok := speak.Body.(*ast.BaseCall); !ok {
		t.Fatalf("expected base() to parse as *ast.BaseCall, got %T", speak.Body)
	}
}

func TestParseBareBaseIsAnError(t *testing.T) {
	_, err := Parse(`
type Dog inherits Animal {
	speak(): String => base;
}`)
	if err == nil {
		t.Fatal("expected an error for bare 'base' without a call, got none")
	}
}

func TestParseLetMultipleBindings(t *testing.T) {
	prog, err := Parse(`let a = 1, b = 2 in a + b;`)
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	stmt := prog.Statements[0].(*ast.ExprStmt)
	let, ok := stmt.X.(*ast.LetIn)
	if !ok {
		t.Fatalf("expected *ast.LetIn, got %T", stmt.X)
	}
	if len(let.Bindings) != 2 {
		t.Fatalf("expected 2 bindings, got %d", len(let.Bindings))
	}
}
