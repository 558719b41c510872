package codegen

import "tinygo.org/x/go-llvm"

// buildInstanceTypes creates the named LLVM struct type for every
// user-declared type in two phases: first every type gets an opaque
// named struct (so field types that point at a not-yet-laid-out type
// still resolve, since a pointer to an opaque struct is always valid
// LLVM IR), then every struct's body is filled in from its flattened
// types.Registry layout.
func (c *Ctx) buildInstanceTypes() {
	for _, t := range c.reg.Types() {
		if t.IsBuiltin() {
			continue
		}
		c.instTypes[t.Name] = c.llctx.StructCreateNamed(t.Name)
	}

	i8ptr := llvm.PointerType(llvm.Int8Type(), 0)
	for _, t := range c.reg.Types() {
		if t.IsBuiltin() {
			continue
		}
		elems := []llvm.Type{llvm.Int32Type(), i8ptr} // Slot 0: type-id. Slot 1: parent pointer.
		for _, f := range t.Layout {
			elems = append(elems, c.llTypeName(f.TypeName))
		}
		c.instTypes[t.Name].StructSetBody(elems, false)
	}
}

// buildVtables emits each user type's own vtable (an array of i8*
// function pointers, one per slot, inherited slots pointing at the
// ancestor's implementation) plus the program-wide super-vtable indexed
// by type-id, and the get_vtable_method dispatch helper. Grounded on
// the original compiler's codegen/types_helper.rs::generate_get_vtable_method,
// the one fully fleshed-out function in that file.
func (c *Ctx) buildVtables() {
	i8ptr := llvm.PointerType(llvm.Int8Type(), 0)

	for _, t := range c.reg.Types() {
		if t.IsBuiltin() {
			continue
		}
		entries := make([]llvm.Value, len(t.VTable))
		for i, m := range t.VTable {
			fn, ok := c.methods[m.Owner+"."+m.Name]
			if !ok {
				entries[i] = llvm.ConstPointerNull(i8ptr)
				continue
			}
			entries[i] = llvm.ConstBitCast(fn, i8ptr)
		}
		arrTyp := llvm.ArrayType(i8ptr, len(entries))
		g := llvm.AddGlobal(c.Module, arrTyp, t.Name+"_vtable")
		g.SetInitializer(llvm.ConstArray(i8ptr, entries))
		g.SetGlobalConstant(true)
		c.vtables[t.Name] = g
	}

	n := c.reg.Count()
	superEntries := make([]llvm.Value, n)
	for _, t := range c.reg.Types() {
		if t.IsBuiltin() {
			superEntries[t.TypeID] = llvm.ConstPointerNull(i8ptr)
			continue
		}
		superEntries[t.TypeID] = llvm.ConstBitCast(c.vtables[t.Name], i8ptr)
	}
	arrTyp := llvm.ArrayType(i8ptr, n)
	c.superVtable = llvm.AddGlobal(c.Module, arrTyp, "super_vtable")
	c.superVtable.SetInitializer(llvm.ConstArray(i8ptr, superEntries))
	c.superVtable.SetGlobalConstant(true)

	c.funcs["get_vtable_method"] = c.buildGetVtableMethod()
}

// buildGetVtableMethod emits:
//
//	define i8* @get_vtable_method(i32 %typeid, i64 %slot) {
//	  %vt_ptr = getelementptr [N x i8*], [N x i8*]* @super_vtable, i32 0, i32 %typeid
//	  %vt     = load i8*, i8** %vt_ptr
//	  %vt_arr = bitcast i8* %vt to i8**
//	  %m_ptr  = getelementptr i8*, i8** %vt_arr, i64 %slot
//	  %m      = load i8*, i8** %m_ptr
//	  ret i8* %m
//	}
func (c *Ctx) buildGetVtableMethod() llvm.Value {
	i32 := llvm.Int32Type()
	i64 := llvm.Int64Type()
	i8ptr := llvm.PointerType(llvm.Int8Type(), 0)
	ftyp := llvm.FunctionType(i8ptr, []llvm.Type{i32, i64}, false)
	fn := llvm.AddFunction(c.Module, "get_vtable_method", ftyp)
	typeid, slot := fn.Param(0), fn.Param(1)
	typeid.SetName("typeid")
	slot.SetName("slot")

	entry := c.llctx.AddBasicBlock(fn, "entry")
	c.builder.SetInsertPointAtEnd(entry)

	zero := llvm.ConstInt(i32, 0, false)
	vtPtr := c.builder.CreateGEP(c.superVtable, []llvm.Value{zero, typeid}, "vt_ptr")
	vt := c.builder.CreateLoad(vtPtr, "vt")
	vtArr := c.builder.CreateBitCast(vt, llvm.PointerType(i8ptr, 0), "vt_arr")
	mPtr := c.builder.CreateGEP(vtArr, []llvm.Value{slot}, "m_ptr")
	m := c.builder.CreateLoad(mPtr, "m")
	c.builder.CreateRet(m)

	return fn
}
