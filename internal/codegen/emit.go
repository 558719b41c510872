package codegen

import (
	"github.com/hulk-lang/hulkc/internal/ast"
	"github.com/hulk-lang/hulkc/internal/types"
	"tinygo.org/x/go-llvm"
)

// Generate lowers prog (already analyzed against reg) to textual LLVM
// IR. Assembly order mirrors the original compiler's
// codegen/generator.rs::Generator.generate: header declarations, the
// runtime, type layouts and vtables, then every function and method
// definition, and finally a main wrapper over the program's top-level
// expression statements.
func Generate(prog *ast.Program, reg *types.Registry) string {
	c := newCtx(reg)
	defer c.dispose()

	c.declareRuntime()
	c.buildInstanceTypes()

	typeDefs := make(map[string]*ast.TypeDef)
	var funcDefs []*ast.FunctionDef
	var topLevel []*ast.ExprStmt
	for _, stmt := range prog.Statements {
		switch s := stmt.(type) {
		case *ast.TypeDef:
			typeDefs[s.Name] = s
		case *ast.FunctionDef:
			funcDefs = append(funcDefs, s)
		case *ast.ExprStmt:
			topLevel = append(topLevel, s)
		}
	}

	// Declare every function and method header before lowering any body,
	// so mutually recursive and forward-referenced calls resolve.
	for _, fd := range funcDefs {
		c.genFuncHeader(fd)
	}
	for _, t := range reg.Types() {
		if t.IsBuiltin() {
			continue
		}
		td := typeDefs[t.Name]
		c.genCtorHeader(t, td)
		for _, name := range t.MethodOrder {
			m, _ := t.Method(name)
			c.genMethodHeader(t, td, m)
		}
	}

	c.buildVtables()

	for _, fd := range funcDefs {
		c.genFuncBody(fd)
	}
	for _, t := range reg.Types() {
		if t.IsBuiltin() {
			continue
		}
		td := typeDefs[t.Name]
		for _, name := range t.MethodOrder {
			m, _ := t.Method(name)
			c.genMethodBody(t, td, m)
		}
		c.genCtorBody(t, td, typeDefs)
	}

	c.genMain(topLevel)

	return c.Module.String()
}

func (c *Ctx) genFuncHeader(fd *ast.FunctionDef) {
	params := make([]llvm.Type, len(fd.Params))
	for i, p := range fd.Params {
		params[i] = c.llTypeName(p.TypeName)
	}
	ret := c.llType(fd.Body.ResolvedType())
	fn := llvm.AddFunction(c.Module, fd.Name, llvm.FunctionType(ret, params, false))
	for i, p := range fd.Params {
		fn.Param(i).SetName(p.Name)
	}
	c.funcs[fd.Name] = fn
}

func (c *Ctx) genFuncBody(fd *ast.FunctionDef) {
	fn := c.funcs[fd.Name]
	entry := c.llctx.AddBasicBlock(fn, "entry")
	c.builder.SetInsertPointAtEnd(entry)

	c.pushScope()
	c.curSelfType = nil
	for i, p := range fd.Params {
		c.allocaVar(p.Name, fn.Param(i))
	}
	v := c.genExpr(fd.Body)
	c.builder.CreateRet(v)
	c.popScope()
}

func (c *Ctx) genMethodHeader(t *types.Type, td *ast.TypeDef, m *types.Method) {
	fd := methodDef(td, m.Name)
	if fd == nil {
		return
	}
	selfPtr := llvm.PointerType(c.instTypes[t.Name], 0)
	params := []llvm.Type{selfPtr}
	for _, p := range fd.Params {
		params = append(params, c.llTypeName(p.TypeName))
	}
	ret := c.llType(fd.Body.ResolvedType())
	fn := llvm.AddFunction(c.Module, t.Name+"_"+fd.Name, llvm.FunctionType(ret, params, false))
	fn.Param(0).SetName("self")
	for i, p := range fd.Params {
		fn.Param(i + 1).SetName(p.Name)
	}
	c.methods[t.Name+"."+fd.Name] = fn
}

func (c *Ctx) genMethodBody(t *types.Type, td *ast.TypeDef, m *types.Method) {
	fd := methodDef(td, m.Name)
	if fd == nil {
		return
	}
	fn := c.methods[t.Name+"."+fd.Name]
	entry := c.llctx.AddBasicBlock(fn, "entry")
	c.builder.SetInsertPointAtEnd(entry)

	c.pushScope()
	c.curSelfType = t
	c.curMethodName = fd.Name
	c.declareVar("self", fn.Param(0))
	for i, p := range fd.Params {
		c.allocaVar(p.Name, fn.Param(i+1))
	}
	v := c.genExpr(fd.Body)
	c.builder.CreateRet(v)
	c.popScope()
	c.curSelfType = nil
	c.curMethodName = ""
}

func (c *Ctx) genCtorHeader(t *types.Type, td *ast.TypeDef) {
	params := make([]llvm.Type, len(t.Params))
	for i, p := range t.Params {
		params[i] = c.llTypeName(p.TypeName)
	}
	ret := llvm.PointerType(c.instTypes[t.Name], 0)
	fn := llvm.AddFunction(c.Module, t.Name+"_new", llvm.FunctionType(ret, params, false))
	if td != nil {
		for i, p := range td.Params {
			fn.Param(i).SetName(p.Name)
		}
	}
	c.ctors[t.Name] = fn
}

func (c *Ctx) genCtorBody(t *types.Type, td *ast.TypeDef, typeDefs map[string]*ast.TypeDef) {
	if td == nil {
		return
	}
	fn := c.ctors[t.Name]
	entry := c.llctx.AddBasicBlock(fn, "entry")
	c.builder.SetInsertPointAtEnd(entry)

	instType := c.instTypes[t.Name]
	size := c.sizeOf(instType)
	raw := c.builder.CreateCall(c.mallocFn, []llvm.Value{size}, "raw")
	obj := c.builder.CreateBitCast(raw, llvm.PointerType(instType, 0), "obj")

	i32 := llvm.Int32Type()
	tidPtr := c.builder.CreateGEP(obj, []llvm.Value{llvm.ConstInt(i32, 0, false), llvm.ConstInt(i32, 0, false)}, "tid_ptr")
	c.builder.CreateStore(llvm.ConstInt(i32, uint64(t.TypeID), false), tidPtr)
	parentPtr := c.builder.CreateGEP(obj, []llvm.Value{llvm.ConstInt(i32, 0, false), llvm.ConstInt(i32, 1, false)}, "parent_ptr")
	c.builder.CreateStore(llvm.ConstNull(llvm.PointerType(llvm.Int8Type(), 0)), parentPtr)

	c.pushScope()
	c.curSelfType = t
	for i, p := range td.Params {
		c.allocaVar(p.Name, fn.Param(i))
	}
	c.emitFieldChain(obj, t, td, typeDefs)
	c.popScope()
	c.curSelfType = nil

	c.builder.CreateRet(obj)
}

// emitFieldChain evaluates t's own field initializers (using whatever
// constructor-parameter bindings are active in the current scope) and
// stores them at their flattened slot in obj, then recurses to the
// parent type with a fresh scope binding the parent's constructor
// parameters to td's ParentArgs, evaluated in the scope being left.
func (c *Ctx) emitFieldChain(obj llvm.Value, t *types.Type, td *ast.TypeDef, typeDefs map[string]*ast.TypeDef) {
	if td == nil {
		return
	}
	i32 := llvm.Int32Type()
	for _, m := range td.Members {
		prop, ok := m.(ast.Property)
		if !ok {
			continue
		}
		f, ok := t.Field(prop.Name)
		if !ok {
			continue
		}
		v := c.genExpr(prop.Init)
		ptr := c.builder.CreateGEP(obj, []llvm.Value{llvm.ConstInt(i32, 0, false), llvm.ConstInt(i32, uint64(f.Slot), false)}, "field_init_ptr")
		c.builder.CreateStore(v, ptr)
	}

	if t.Parent == nil || td.Parent == "" {
		return
	}
	parentTd := typeDefs[t.Parent.Name]
	if parentTd == nil {
		return
	}
	argVals := make([]llvm.Value, len(td.ParentArgs))
	for i, a := range td.ParentArgs {
		argVals[i] = c.genExpr(a)
	}
	c.pushScope()
	for i, p := range parentTd.Params {
		if i < len(argVals) {
			c.allocaVar(p.Name, argVals[i])
		}
	}
	c.emitFieldChain(obj, t.Parent, parentTd, typeDefs)
	c.popScope()
}

// sizeOf computes sizeof(t) as an i64 via the classic null-pointer GEP
// trick, avoiding a dependency on a target data layout.
func (c *Ctx) sizeOf(t llvm.Type) llvm.Value {
	ptrT := llvm.PointerType(t, 0)
	null := llvm.ConstNull(ptrT)
	gep := c.builder.CreateGEP(null, []llvm.Value{llvm.ConstInt(llvm.Int32Type(), 1, false)}, "size_ptr")
	return c.builder.CreatePtrToInt(gep, llvm.Int64Type(), "size")
}

// genMain emits `define i32 @main()`, running every top-level
// expression statement in source order and returning 0. Only
// StatementExpression-shaped top-level forms run here, matching the
// original compiler's Generator.generate, which folds declarations and
// functions into the module but only schedules bare expression
// statements inside main.
func (c *Ctx) genMain(topLevel []*ast.ExprStmt) {
	fn := llvm.AddFunction(c.Module, "main", llvm.FunctionType(llvm.Int32Type(), nil, false))
	entry := c.llctx.AddBasicBlock(fn, "entry")
	c.builder.SetInsertPointAtEnd(entry)

	c.pushScope()
	c.curSelfType = nil
	for _, stmt := range topLevel {
		c.genExpr(stmt.X)
	}
	c.popScope()

	c.builder.CreateRet(llvm.ConstInt(llvm.Int32Type(), 0, false))
}

func methodDef(td *ast.TypeDef, name string) *ast.FunctionDef {
	if td == nil {
		return nil
	}
	for _, m := range td.Members {
		if mm, ok := m.(ast.Method); ok && mm.Def.Name == name {
			return mm.Def
		}
	}
	return nil
}
