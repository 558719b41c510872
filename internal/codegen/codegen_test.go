package codegen

import (
	"strings"
	"testing"

	"github.com/hulk-lang/hulkc/internal/analyzer"
	"github.com/hulk-lang/hulkc/internal/parser"
)

func compile(t *testing.T, src string) string {
	t.Helper()
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	reg, bag := analyzer.Analyze(prog)
	if !bag.Empty() {
		t.Fatalf("unexpected semantic diagnostics: %v", bag.All())
	}
	return Generate(prog, reg)
}

func TestGenerateEmitsMain(t *testing.T) {
	ir := compile(t, `print(1 + 2);`)
	if !strings.Contains(ir, "define i32 @main()") {
		t.Errorf("expected a main function in the emitted IR, got:\n%s", ir)
	}
	if !strings.Contains(ir, "declare i32 @printf") {
		t.Errorf("expected printf to be declared, got:\n%s", ir)
	}
}

func TestGenerateFunctionDef(t *testing.T) {
	ir := compile(t, `function square(x: Number): Number => x * x;
print(square(3));`)
	if !strings.Contains(ir, "define double @square(") {
		t.Errorf("expected a square function returning double, got:\n%s", ir)
	}
}

func TestGenerateTypeLayoutAndVtable(t *testing.T) {
	ir := compile(t, `
type Animal {
	speak(): String => "...";
}
type Dog inherits Animal {
	speak(): String => "woof";
}
print(new Dog().speak());`)

	for _, want := range []string{
		"%Animal = type",
		"%Dog = type",
		"@Animal_vtable",
		"@Dog_vtable",
		"@super_vtable",
		"define i8* @get_vtable_method(",
		"define %Dog* @Dog_new(",
		"define i8* @Animal_speak(",
		"define i8* @Dog_speak(",
	} {
		if !strings.Contains(ir, want) {
			t.Errorf("expected emitted IR to contain %q, got:\n%s", want, ir)
		}
	}
}

func TestGenerateBaseCallUsesDirectCall(t *testing.T) {
	ir := compile(t, `
type Animal {
	speak(): String => "...";
}
type Dog inherits Animal {
	speak(): String => base() @ "!";
}
print(new Dog().speak());`)
	if !strings.Contains(ir, "call i8* @Animal_speak(") {
		t.Errorf("expected base() to lower to a direct call to @Animal_speak, got:\n%s", ir)
	}
}

func TestGenerateConcatHelper(t *testing.T) {
	ir := compile(t, `print("a" @ "b");`)
	if !strings.Contains(ir, "define i8* @concat(") {
		t.Errorf("expected the concat helper to be emitted, got:\n%s", ir)
	}
}
