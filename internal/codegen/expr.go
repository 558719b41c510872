package codegen

import (
	"github.com/hulk-lang/hulkc/internal/ast"
	"github.com/hulk-lang/hulkc/internal/types"
	"tinygo.org/x/go-llvm"
)

// genExpr lowers e to a value in the current basic block. Every case
// assumes e already carries a resolved type from the analyzer pass;
// codegen never re-derives typing decisions, only acts on them.
func (c *Ctx) genExpr(e ast.Expr) llvm.Value {
	switch n := e.(type) {

	case *ast.NumberLit:
		return llvm.ConstFloat(llvm.DoubleType(), n.Value)

	case *ast.BoolLit:
		v := uint64(0)
		if n.Value {
			v = 1
		}
		return llvm.ConstInt(llvm.Int1Type(), v, false)

	case *ast.StringLit:
		return c.internString(n.Value)

	case *ast.SelfExpr:
		v, _ := c.getVar("self")
		return v

	case *ast.Ident:
		v, _ := c.getVar(n.Name)
		return c.builder.CreateLoad(v, n.Name)

	case *ast.Call:
		return c.genCall(n)

	case *ast.BinaryOp:
		return c.genBinaryOp(n)

	case *ast.UnaryOp:
		return c.genUnaryOp(n)

	case *ast.While:
		return c.genWhile(n)

	case *ast.For:
		return c.genFor(n)

	case *ast.Block:
		var v llvm.Value
		for _, ex := range n.Exprs {
			v = c.genExpr(ex)
		}
		return v

	case *ast.If:
		return c.genIf(n)

	case *ast.LetIn:
		return c.genLetIn(n)

	case *ast.Assign:
		return c.genAssign(n)

	case *ast.NewInstance:
		return c.genNewInstance(n)

	case *ast.MethodCall:
		return c.genMethodCall(n)

	case *ast.BaseCall:
		return c.genBaseCall(n)

	case *ast.FieldAccess:
		return c.genFieldAccess(n)

	case *ast.Print:
		return c.genPrint(n)

	default:
		return llvm.ConstNull(llvm.PointerType(llvm.Int8Type(), 0))
	}
}

func (c *Ctx) genCall(n *ast.Call) llvm.Value {
	fn, ok := c.funcs[n.Name]
	if !ok {
		return llvm.ConstNull(llvm.PointerType(llvm.Int8Type(), 0))
	}
	args := make([]llvm.Value, len(n.Args))
	for i, a := range n.Args {
		args[i] = c.genExpr(a)
	}
	return c.builder.CreateCall(fn, args, c.fresh("call"))
}

func (c *Ctx) genBinaryOp(n *ast.BinaryOp) llvm.Value {
	// && and || short-circuit: evaluate right only when necessary.
	switch n.Op {
	case "&&":
		return c.genShortCircuit(n, false)
	case "||":
		return c.genShortCircuit(n, true)
	}

	l := c.genExpr(n.Left)
	r := c.genExpr(n.Right)

	switch n.Op {
	case "+":
		return c.builder.CreateFAdd(l, r, c.fresh("add"))
	case "-":
		return c.builder.CreateFSub(l, r, c.fresh("sub"))
	case "*":
		return c.builder.CreateFMul(l, r, c.fresh("mul"))
	case "/":
		return c.builder.CreateFDiv(l, r, c.fresh("div"))
	case "%":
		return c.builder.CreateCall(c.fmodFn, []llvm.Value{l, r}, c.fresh("mod"))
	case "^":
		return c.builder.CreateCall(c.powFn, []llvm.Value{l, r}, c.fresh("pow"))
	case "@":
		return c.genConcat(n, l, r)
	case "<":
		return c.builder.CreateFCmp(llvm.FloatOLT, l, r, c.fresh("lt"))
	case "<=":
		return c.builder.CreateFCmp(llvm.FloatOLE, l, r, c.fresh("le"))
	case ">":
		return c.builder.CreateFCmp(llvm.FloatOGT, l, r, c.fresh("gt"))
	case ">=":
		return c.builder.CreateFCmp(llvm.FloatOGE, l, r, c.fresh("ge"))
	case "==":
		return c.genEquals(n, l, r, false)
	case "!=":
		return c.genEquals(n, l, r, true)
	}
	return l
}

// genConcat calls the runtime concat helper on two String operands; the
// analyzer rejects @ on any other operand types.
func (c *Ctx) genConcat(n *ast.BinaryOp, l, r llvm.Value) llvm.Value {
	concatFn, ok := c.funcs["@@concat"]
	if !ok {
		concatFn = c.buildConcatHelper()
		c.funcs["@@concat"] = concatFn
	}
	return c.builder.CreateCall(concatFn, []llvm.Value{l, r}, c.fresh("concat"))
}

// stringify renders v (of static type t) as an i8* for use in print.
// Strings pass through unchanged.
func (c *Ctx) stringify(t *types.Type, v llvm.Value) llvm.Value {
	if t == nil {
		return v
	}
	switch t.Name {
	case types.String:
		return v
	case types.Boolean:
		sel := c.builder.CreateSelect(v, c.trueStr, c.falseStr, c.fresh("boolstr"))
		return sel
	default: // Number and anything else: best-effort %g formatting.
		buf := c.builder.CreateCall(c.mallocFn, []llvm.Value{llvm.ConstInt(llvm.Int64Type(), 32, false)}, c.fresh("numbuf"))
		c.builder.CreateCall(c.snprintfLike(), []llvm.Value{buf, c.numFmt, v}, "")
		return buf
	}
}

// snprintfLike lazily declares a variadic sprintf so stringify can
// render a Number into a heap buffer without a dedicated wrapper.
func (c *Ctx) snprintfLike() llvm.Value {
	if fn, ok := c.funcs["@@sprintf"]; ok {
		return fn
	}
	i8ptr := llvm.PointerType(llvm.Int8Type(), 0)
	ftyp := llvm.FunctionType(llvm.Int32Type(), []llvm.Type{i8ptr, i8ptr}, true)
	fn := llvm.AddFunction(c.Module, "sprintf", ftyp)
	c.funcs["@@sprintf"] = fn
	return fn
}

// genEquals lowers == and !=; the analyzer only accepts Number/Number,
// Boolean/Boolean or String/String operands, so those are the only
// shapes reachable here.
func (c *Ctx) genEquals(n *ast.BinaryOp, l, r llvm.Value, negate bool) llvm.Value {
	lt := n.Left.ResolvedType()
	if lt != nil && lt.Name == types.String {
		cmp := c.builder.CreateCall(c.strcmpFn, []llvm.Value{l, r}, c.fresh("strcmp"))
		ipred := llvm.IntEQ
		if negate {
			ipred = llvm.IntNE
		}
		return c.builder.CreateICmp(ipred, cmp, llvm.ConstInt(llvm.Int32Type(), 0, false), c.fresh("eq"))
	}
	if lt != nil && lt.Name == types.Boolean {
		ipred := llvm.IntEQ
		if negate {
			ipred = llvm.IntNE
		}
		return c.builder.CreateICmp(ipred, l, r, c.fresh("eq"))
	}
	pred := llvm.FloatOEQ
	if negate {
		pred = llvm.FloatONE
	}
	return c.builder.CreateFCmp(pred, l, r, c.fresh("eq"))
}

// genShortCircuit lowers && (isOr=false) and || (isOr=true) with a
// branch so the right operand is only evaluated when it matters.
func (c *Ctx) genShortCircuit(n *ast.BinaryOp, isOr bool) llvm.Value {
	l := c.genExpr(n.Left)
	startBB := c.builder.GetInsertBlock()
	fn := startBB.Parent()

	rhsBB := c.llctx.AddBasicBlock(fn, c.fresh("rhs"))
	endBB := c.llctx.AddBasicBlock(fn, c.fresh("end"))

	if isOr {
		c.builder.CreateCondBr(l, endBB, rhsBB)
	} else {
		c.builder.CreateCondBr(l, rhsBB, endBB)
	}

	c.builder.SetInsertPointAtEnd(rhsBB)
	r := c.genExpr(n.Right)
	rhsEndBB := c.builder.GetInsertBlock()
	c.builder.CreateBr(endBB)

	c.builder.SetInsertPointAtEnd(endBB)
	phi := c.builder.CreatePHI(llvm.Int1Type(), c.fresh("phi"))
	phi.AddIncoming([]llvm.Value{l, r}, []llvm.BasicBlock{startBB, rhsEndBB})
	return phi
}

func (c *Ctx) genUnaryOp(n *ast.UnaryOp) llvm.Value {
	x := c.genExpr(n.X)
	switch n.Op {
	case "-":
		return c.builder.CreateFNeg(x, c.fresh("neg"))
	case "!":
		return c.builder.CreateNot(x, c.fresh("not"))
	}
	return x
}

func (c *Ctx) genWhile(n *ast.While) llvm.Value {
	fn := c.builder.GetInsertBlock().Parent()
	head := c.llctx.AddBasicBlock(fn, c.fresh("while.head"))
	body := c.llctx.AddBasicBlock(fn, c.fresh("while.body"))
	end := c.llctx.AddBasicBlock(fn, c.fresh("while.end"))

	c.builder.CreateBr(head)
	c.builder.SetInsertPointAtEnd(head)
	cond := c.genExpr(n.Cond)
	c.builder.CreateCondBr(cond, body, end)

	c.builder.SetInsertPointAtEnd(body)
	c.genExpr(n.Body)
	c.builder.CreateBr(head)

	c.builder.SetInsertPointAtEnd(end)
	return llvm.ConstNull(c.llType(n.ResolvedType())) // The loop's value is a zero/null placeholder of its resolved (body) type.
}

func (c *Ctx) genFor(n *ast.For) llvm.Value {
	start := c.genExpr(n.Start)
	end := c.genExpr(n.End)

	c.pushScope()
	iv := c.allocaVar(n.Var, start)

	fn := c.builder.GetInsertBlock().Parent()
	head := c.llctx.AddBasicBlock(fn, c.fresh("for.head"))
	body := c.llctx.AddBasicBlock(fn, c.fresh("for.body"))
	endBB := c.llctx.AddBasicBlock(fn, c.fresh("for.end"))

	c.builder.CreateBr(head)
	c.builder.SetInsertPointAtEnd(head)
	cur := c.builder.CreateLoad(iv, n.Var)
	cond := c.builder.CreateFCmp(llvm.FloatOLT, cur, end, c.fresh("for.cond"))
	c.builder.CreateCondBr(cond, body, endBB)

	c.builder.SetInsertPointAtEnd(body)
	c.genExpr(n.Body)
	cur2 := c.builder.CreateLoad(iv, n.Var)
	next := c.builder.CreateFAdd(cur2, llvm.ConstReal(llvm.DoubleType(), 1), c.fresh("for.next"))
	c.builder.CreateStore(next, iv)
	c.builder.CreateBr(head)

	c.builder.SetInsertPointAtEnd(endBB)
	c.popScope()
	return llvm.ConstReal(llvm.DoubleType(), 0)
}

func (c *Ctx) genIf(n *ast.If) llvm.Value {
	fn := c.builder.GetInsertBlock().Parent()
	end := c.llctx.AddBasicBlock(fn, c.fresh("if.end"))
	resultType := c.llType(n.ResolvedType())

	var incomingVals []llvm.Value
	var incomingBBs []llvm.BasicBlock

	for i, br := range n.Branches {
		if br.Cond == nil {
			v := c.genExpr(br.Body)
			incomingVals = append(incomingVals, v)
			incomingBBs = append(incomingBBs, c.builder.GetInsertBlock())
			c.builder.CreateBr(end)
			continue
		}

		cond := c.genExpr(br.Cond)
		thenBB := c.llctx.AddBasicBlock(fn, c.fresh("if.then"))
		var elseBB llvm.BasicBlock
		last := i == len(n.Branches)-1
		if last {
			elseBB = end
		} else {
			elseBB = c.llctx.AddBasicBlock(fn, c.fresh("if.else"))
		}
		c.builder.CreateCondBr(cond, thenBB, elseBB)

		c.builder.SetInsertPointAtEnd(thenBB)
		v := c.genExpr(br.Body)
		incomingVals = append(incomingVals, v)
		incomingBBs = append(incomingBBs, c.builder.GetInsertBlock())
		c.builder.CreateBr(end)

		if !last {
			c.builder.SetInsertPointAtEnd(elseBB)
		}
	}

	c.builder.SetInsertPointAtEnd(end)
	if len(incomingVals) == 0 {
		return llvm.ConstNull(resultType)
	}
	phi := c.builder.CreatePHI(resultType, c.fresh("if.result"))
	phi.AddIncoming(incomingVals, incomingBBs)
	return phi
}

func (c *Ctx) genLetIn(n *ast.LetIn) llvm.Value {
	c.pushScope()
	for _, b := range n.Bindings {
		v := c.genExpr(b.Init)
		c.allocaVar(b.Name, v)
	}
	v := c.genExpr(n.Body)
	c.popScope()
	return v
}

func (c *Ctx) genAssign(n *ast.Assign) llvm.Value {
	v := c.genExpr(n.Value)
	switch target := n.Target.(type) {
	case *ast.Ident:
		ptr, ok := c.getVar(target.Name)
		if ok {
			c.builder.CreateStore(v, ptr)
		}
	case *ast.FieldAccess:
		ptr := c.fieldPtr(target)
		c.builder.CreateStore(v, ptr)
	}
	return v
}

func (c *Ctx) genNewInstance(n *ast.NewInstance) llvm.Value {
	ctor, ok := c.ctors[n.TypeName]
	if !ok {
		return llvm.ConstNull(llvm.PointerType(llvm.Int8Type(), 0))
	}
	args := make([]llvm.Value, len(n.Args))
	for i, a := range n.Args {
		args[i] = c.genExpr(a)
	}
	return c.builder.CreateCall(ctor, args, c.fresh("new"))
}

func (c *Ctx) genMethodCall(n *ast.MethodCall) llvm.Value {
	recvVal := c.genExpr(n.Object)
	recvType := n.Object.ResolvedType()
	method := c.reg.FindMethod(recvType, n.Method)
	if method == nil {
		return llvm.ConstNull(llvm.PointerType(llvm.Int8Type(), 0))
	}

	i8ptr := llvm.PointerType(llvm.Int8Type(), 0)
	headerPtrType := llvm.PointerType(llvm.StructType([]llvm.Type{llvm.Int32Type(), i8ptr}, false), 0)
	header := c.builder.CreateBitCast(recvVal, headerPtrType, c.fresh("hdr"))
	tidPtr := c.builder.CreateGEP(header, []llvm.Value{
		llvm.ConstInt(llvm.Int32Type(), 0, false), llvm.ConstInt(llvm.Int32Type(), 0, false),
	}, c.fresh("tid_ptr"))
	tid := c.builder.CreateLoad(tidPtr, c.fresh("tid"))

	fnPtr := c.builder.CreateCall(c.funcs["get_vtable_method"], []llvm.Value{
		tid, llvm.ConstInt(llvm.Int64Type(), uint64(method.Slot), false),
	}, c.fresh("slot"))

	argTypes := []llvm.Type{c.llType(recvType)}
	for _, p := range method.Params {
		argTypes = append(argTypes, c.llTypeName(p.TypeName))
	}
	retType := c.llTypeName(method.ReturnName)
	fnType := llvm.PointerType(llvm.FunctionType(retType, argTypes, false), 0)
	typed := c.builder.CreateBitCast(fnPtr, fnType, c.fresh("method"))

	args := []llvm.Value{recvVal}
	for _, a := range n.Args {
		args = append(args, c.genExpr(a))
	}
	return c.builder.CreateCall(typed, args, c.fresh("call"))
}

func (c *Ctx) genBaseCall(n *ast.BaseCall) llvm.Value {
	selfVal, _ := c.getVar("self")
	if c.curSelfType == nil || c.curSelfType.Parent == nil || c.curMethodName == "" {
		return llvm.ConstNull(llvm.PointerType(llvm.Int8Type(), 0))
	}
	method := c.reg.FindMethod(c.curSelfType.Parent, c.curMethodName)
	if method == nil {
		return llvm.ConstNull(llvm.PointerType(llvm.Int8Type(), 0))
	}
	fn, ok := c.methods[method.Owner+"."+method.Name]
	if !ok {
		return llvm.ConstNull(llvm.PointerType(llvm.Int8Type(), 0))
	}
	ownerSelfType := fn.Param(0).Type()
	castSelf := c.builder.CreateBitCast(selfVal, ownerSelfType, c.fresh("base_self"))

	args := []llvm.Value{castSelf}
	for _, a := range n.Args {
		args = append(args, c.genExpr(a))
	}
	return c.builder.CreateCall(fn, args, c.fresh("base_call"))
}

// fieldPtr returns a pointer to the storage for a FieldAccess node,
// for both reads and destructive-assignment writes.
func (c *Ctx) fieldPtr(n *ast.FieldAccess) llvm.Value {
	selfVal, _ := c.getVar("self")
	f, ok := c.curSelfType.Field(n.Field)
	for t := c.curSelfType.Parent; !ok && t != nil; t = t.Parent {
		f, ok = t.Field(n.Field)
	}
	if !ok {
		return llvm.ConstNull(llvm.PointerType(llvm.Int8Type(), 0))
	}
	return c.builder.CreateGEP(selfVal, []llvm.Value{
		llvm.ConstInt(llvm.Int32Type(), 0, false), llvm.ConstInt(llvm.Int32Type(), uint64(f.Slot), false),
	}, c.fresh("field_ptr"))
}

func (c *Ctx) genFieldAccess(n *ast.FieldAccess) llvm.Value {
	c.genExpr(n.Object) // Evaluated for side effects only; lookup is against self, per the analyzer's resolution.
	ptr := c.fieldPtr(n)
	return c.builder.CreateLoad(ptr, c.fresh("field"))
}

func (c *Ctx) genPrint(n *ast.Print) llvm.Value {
	v := c.genExpr(n.X)
	t := n.X.ResolvedType()
	if t != nil && t.Name == types.Number {
		c.builder.CreateCall(c.printfFn, []llvm.Value{c.numFmt, v}, "")
		return v
	}
	s := c.stringify(t, v)
	c.builder.CreateCall(c.printfFn, []llvm.Value{c.strFmt, s}, "")
	return v
}
