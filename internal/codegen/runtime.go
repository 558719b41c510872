package codegen

import "tinygo.org/x/go-llvm"

// declareRuntime declares the small set of C standard library functions
// the emitted IR calls directly, and the handful of global constants
// every program needs (true/false literal text, the %g and %s print
// formats). No PI or E constants are declared. Grounded on the original compiler's
// codegen/utils.rs::generate_runtime_declarations and declare_global,
// translated from raw IR text into go-llvm builder calls.
func (c *Ctx) declareRuntime() {
	i8ptr := llvm.PointerType(llvm.Int8Type(), 0)
	f64 := llvm.DoubleType()

	c.printfFn = llvm.AddFunction(c.Module, "printf", llvm.FunctionType(llvm.Int32Type(), []llvm.Type{i8ptr}, true))
	c.strlenFn = llvm.AddFunction(c.Module, "strlen", llvm.FunctionType(llvm.Int64Type(), []llvm.Type{i8ptr}, false))
	c.strcpyFn = llvm.AddFunction(c.Module, "strcpy", llvm.FunctionType(i8ptr, []llvm.Type{i8ptr, i8ptr}, false))
	c.strcatFn = llvm.AddFunction(c.Module, "strcat", llvm.FunctionType(i8ptr, []llvm.Type{i8ptr, i8ptr}, false))
	c.strcmpFn = llvm.AddFunction(c.Module, "strcmp", llvm.FunctionType(llvm.Int32Type(), []llvm.Type{i8ptr, i8ptr}, false))
	c.mallocFn = llvm.AddFunction(c.Module, "malloc", llvm.FunctionType(i8ptr, []llvm.Type{llvm.Int64Type()}, false))
	c.fmodFn = llvm.AddFunction(c.Module, "fmod", llvm.FunctionType(f64, []llvm.Type{f64, f64}, false))
	c.powFn = llvm.AddFunction(c.Module, "pow", llvm.FunctionType(f64, []llvm.Type{f64, f64}, false))

	c.trueStr = c.builder.CreateGlobalStringPtr("true", "@.true_str")
	c.falseStr = c.builder.CreateGlobalStringPtr("false", "@.false_str")
	c.numFmt = c.builder.CreateGlobalStringPtr("%g\n", "@.fmt_num")
	c.strFmt = c.builder.CreateGlobalStringPtr("%s\n", "@.fmt_str")
}

// internString returns the i8* global constant holding s's NUL-terminated
// bytes, interning it so repeated literals share one global.
func (c *Ctx) internString(s string) llvm.Value {
	if g, ok := c.strings[s]; ok {
		return g
	}
	g := c.builder.CreateGlobalStringPtr(s, c.fresh("@.str"))
	c.strings[s] = g
	return g
}

// buildConcatHelper builds the small `@concat(i8*, i8*) -> i8*` helper
// function used to lower the `@` operator on two already-stringified
// operands: malloc(strlen(a)+strlen(b)+1), strcpy, strcat.
func (c *Ctx) buildConcatHelper() llvm.Value {
	i8ptr := llvm.PointerType(llvm.Int8Type(), 0)
	ftyp := llvm.FunctionType(i8ptr, []llvm.Type{i8ptr, i8ptr}, false)
	fn := llvm.AddFunction(c.Module, "concat", ftyp)
	a, b := fn.Param(0), fn.Param(1)
	a.SetName("a")
	b.SetName("b")

	entry := c.llctx.AddBasicBlock(fn, "entry")
	c.builder.SetInsertPointAtEnd(entry)

	la := c.builder.CreateCall(c.strlenFn, []llvm.Value{a}, "len_a")
	lb := c.builder.CreateCall(c.strlenFn, []llvm.Value{b}, "len_b")
	total := c.builder.CreateAdd(la, lb, "len_total")
	one := llvm.ConstInt(llvm.Int64Type(), 1, false)
	sz := c.builder.CreateAdd(total, one, "alloc_size")
	buf := c.builder.CreateCall(c.mallocFn, []llvm.Value{sz}, "buf")

	c.builder.CreateCall(c.strcpyFn, []llvm.Value{buf, a}, "")
	c.builder.CreateCall(c.strcatFn, []llvm.Value{buf, b}, "")
	c.builder.CreateRet(buf)

	return fn
}
