// Package codegen lowers an analyzed ast.Program into textual LLVM IR
// using tinygo.org/x/go-llvm, the same CGo LLVM binding vslc's
// ir/llvm/transform.go builds on. Unlike that package's
// thread-per-chunk parallel lowering, everything here runs on the
// single goroutine that called Generate: the object model this
// compiler targets is small enough that the concurrency vslc needs for
// large VSL programs would only add bookkeeping, not speed.
//
// Every user-declared type becomes a named LLVM struct: an i32 type-id
// header, an i8* parent pointer, then its flattened field list (parent
// fields first, by construction of types.Registry's layout). Method
// dispatch goes through one program-wide super-vtable, indexed by
// type-id, of pointers to each type's own vtable array — the same
// shape as the original HULK-to-LLVM compiler's get_vtable_method
// helper describes in codegen/types_helper.rs.
package codegen

import (
	"fmt"

	"github.com/hulk-lang/hulkc/internal/types"
	"github.com/hulk-lang/hulkc/internal/util"
	"tinygo.org/x/go-llvm"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Ctx carries every piece of emission state threaded through the
// lowering functions: the LLVM handles, the type layout tables and the
// lexical register scope chain. It plays the role of the original
// compiler's CodegenCtx (codegen/context.rs).
type Ctx struct {
	llctx   llvm.Context
	Module  llvm.Module
	builder llvm.Builder
	reg     *types.Registry

	tmpCount int
	strings  map[string]llvm.Value // Literal text -> interned global constant.

	scopes     *util.Stack // Stack of map[string]llvm.Value; top is innermost.
	scopeDepth int

	funcs   map[string]llvm.Value // User function name -> defined llvm.Value.
	ctors   map[string]llvm.Value // Type name -> "<Type>_new" constructor.
	methods map[string]llvm.Value // "Type.method" -> defined llvm.Value.

	instTypes   map[string]llvm.Type  // Type name -> named instance struct type.
	vtables     map[string]llvm.Value // Type name -> this type's own vtable array global.
	superVtable llvm.Value            // Program-wide type-id-indexed array of vtable pointers.

	printfFn, strlenFn, strcpyFn, strcatFn, strcmpFn, mallocFn, fmodFn, powFn llvm.Value
	trueStr, falseStr, numFmt, strFmt                                        llvm.Value

	curSelfType   *types.Type // Enclosing type body's type, or nil at top level.
	curMethodName string      // Enclosing method's name, for base(args); "" outside a method body.
}

// newCtx constructs an empty Ctx with a fresh LLVM context and module.
func newCtx(reg *types.Registry) *Ctx {
	llctx := llvm.NewContext()
	return &Ctx{
		llctx:     llctx,
		Module:    llctx.NewModule("hulk"),
		builder:   llctx.NewBuilder(),
		reg:       reg,
		strings:   make(map[string]llvm.Value),
		scopes:    &util.Stack{},
		funcs:     make(map[string]llvm.Value),
		ctors:     make(map[string]llvm.Value),
		methods:   make(map[string]llvm.Value),
		instTypes: make(map[string]llvm.Type),
		vtables:   make(map[string]llvm.Value),
	}
}

// dispose releases the LLVM context and its builder. The module itself
// is not disposed: its textual IR is read out via Module.String() before
// the Ctx goes out of scope.
func (c *Ctx) dispose() {
	c.builder.Dispose()
	c.llctx.Dispose()
}

// -----------------------------------
// ----- Name and register helpers ---
// -----------------------------------

// fresh returns a unique name built from prefix, for SSA temporaries
// that don't correspond to a named source-level binding.
func (c *Ctx) fresh(prefix string) string {
	c.tmpCount++
	return fmt.Sprintf("%s.%d", prefix, c.tmpCount)
}

// pushScope opens a new lexical register frame, incrementing the depth
// used to decorate variable allocas the way the original compiler's
// scope-suffixed register names did (%name.depth), so that nested
// shadowing is visually unambiguous in the emitted IR.
func (c *Ctx) pushScope() {
	c.scopeDepth++
	c.scopes.Push(make(map[string]llvm.Value))
}

func (c *Ctx) popScope() {
	c.scopeDepth--
	c.scopes.Pop()
}

// declareVar records v (expected to be an alloca) as name's storage in
// the current innermost scope.
func (c *Ctx) declareVar(name string, v llvm.Value) {
	frame, _ := c.scopes.Peek().(map[string]llvm.Value)
	frame[name] = v
}

// getVar walks the scope chain innermost-first looking for name,
// mirroring CodegenCtx::get_var's decrementing scope search.
func (c *Ctx) getVar(name string) (llvm.Value, bool) {
	for i := 1; i <= c.scopes.Size(); i++ {
		frame, ok := c.scopes.Get(i).(map[string]llvm.Value)
		if !ok {
			continue
		}
		if v, ok := frame[name]; ok {
			return v, true
		}
	}
	return llvm.Value{}, false
}

// allocaVar allocates stack storage for a new binding named name at
// scope-decorated register name "<name>.<depth>", stores init into it,
// and records it in the current scope.
func (c *Ctx) allocaVar(name string, init llvm.Value) llvm.Value {
	reg := fmt.Sprintf("%s.%d", name, c.scopeDepth)
	a := c.builder.CreateAlloca(init.Type(), reg)
	c.builder.CreateStore(init, a)
	c.declareVar(name, a)
	return a
}

// -----------------------------
// ----- Type lowering ---------
// -----------------------------

// llType maps a resolved types.Type to its LLVM representation: Number
// is a double, Boolean an i1, String and every object type a pointer
// (to i8 for String and Unknown, to the named instance struct for a
// user type).
func (c *Ctx) llType(t *types.Type) llvm.Type {
	if t == nil {
		return llvm.PointerType(llvm.Int8Type(), 0)
	}
	switch t.Name {
	case types.Number:
		return llvm.DoubleType()
	case types.Boolean:
		return llvm.Int1Type()
	case types.String, types.Unknown, types.Object:
		return llvm.PointerType(llvm.Int8Type(), 0)
	default:
		if st, ok := c.instTypes[t.Name]; ok {
			return llvm.PointerType(st, 0)
		}
		return llvm.PointerType(llvm.Int8Type(), 0)
	}
}

func (c *Ctx) llTypeName(name string) llvm.Type {
	return c.llType(c.reg.Lookup(name))
}
