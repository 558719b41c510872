package analyzer

import (
	"testing"

	"github.com/hulk-lang/hulkc/internal/diag"
	"github.com/hulk-lang/hulkc/internal/parser"
)

func mustAnalyze(t *testing.T, src string) *diag.Bag {
	t.Helper()
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	_, bag := Analyze(prog)
	return bag
}

func TestAnalyzeArithmeticOK(t *testing.T) {
	bag := mustAnalyze(t, `print(1 + 2 * 3);`)
	if !bag.Empty() {
		t.Fatalf("expected no diagnostics, got: %v", bag.All())
	}
}

func TestAnalyzeUndefinedIdentifier(t *testing.T) {
	bag := mustAnalyze(t, `print(x);`)
	if bag.Empty() {
		t.Fatal("expected an UndefinedIdentifier diagnostic, got none")
	}
	if bag.All()[0].Code != diag.UndefinedIdentifier {
		t.Errorf("expected UndefinedIdentifier, got %s", bag.All()[0].Code)
	}
}

func TestAnalyzeWrongArity(t *testing.T) {
	bag := mustAnalyze(t, `
function add(a: Number, b: Number): Number => a + b;
print(add(1));`)
	if bag.Empty() {
		t.Fatal("expected an InvalidArgumentsCount diagnostic, got none")
	}
	found := false
	for _, d := range bag.All() {
		if d.Code == diag.InvalidArgumentsCount {
			found = true
		}
	}
	if !found {
		t.Errorf("expected InvalidArgumentsCount among diagnostics, got: %v", bag.All())
	}
}

func TestAnalyzeInheritanceCycle(t *testing.T) {
	bag := mustAnalyze(t, `
type A inherits B { }
type B inherits A { }`)
	if bag.Empty() {
		t.Fatal("expected a CycleDetected diagnostic, got none")
	}
	found := false
	for _, d := range bag.All() {
		if d.Code == diag.CycleDetected {
			found = true
		}
	}
	if !found {
		t.Errorf("expected CycleDetected among diagnostics, got: %v", bag.All())
	}
}

func TestAnalyzeMethodOverrideDispatch(t *testing.T) {
	bag := mustAnalyze(t, `
type Animal {
	speak(): String => "...";
}
type Dog inherits Animal {
	speak(): String => "woof";
}
let d = new Dog() in print(d.speak());`)
	if !bag.Empty() {
		t.Fatalf("expected no diagnostics, got: %v", bag.All())
	}
}

func TestAnalyzeBaseCallRequiresParent(t *testing.T) {
	bag := mustAnalyze(t, `
type Animal {
	speak(): String => base();
}`)
	if bag.Empty() {
		t.Fatal("expected a diagnostic for base used without a parent, got none")
	}
}

func TestAnalyzeIfElseLCA(t *testing.T) {
	bag := mustAnalyze(t, `
type Animal { }
type Dog inherits Animal { }
type Cat inherits Animal { }
let x = if (true) new Dog() else new Cat() in x;`)
	if !bag.Empty() {
		t.Fatalf("expected no diagnostics (Dog/Cat unify at Animal), got: %v", bag.All())
	}
}

func TestAnalyzeUndefinedTypeInNew(t *testing.T) {
	bag := mustAnalyze(t, `print(new Ghost());`)
	found := false
	for _, d := range bag.All() {
		if d.Code == diag.UndefinedType {
			found = true
		}
	}
	if !found {
		t.Errorf("expected UndefinedType among diagnostics, got: %v", bag.All())
	}
}

func TestAnalyzeFieldAccessOutsideMethod(t *testing.T) {
	bag := mustAnalyze(t, `print(x.y);`)
	if bag.Empty() {
		t.Fatal("expected a diagnostic, got none")
	}
}
