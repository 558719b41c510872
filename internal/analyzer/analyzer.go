// Package analyzer implements the semantic analysis pass: it walks an
// ast.Program built by the parser, populates a types.Registry from every
// type definition, resolves every expression's type, and accumulates
// every problem it finds into a diag.Bag instead of stopping at the
// first one — mirroring vslc's ValidateTree/validate/validateExpr shape
// (ir/validate.go), generalized from VSL's two-datatype lattice to
// HULK's nominal type hierarchy.
//
// Analysis proceeds in four passes over the program:
//
//  1. Register every type definition's shell (name, parent name, fields,
//     method signatures) with the registry.
//  2. Finalize the registry: resolve parent links, detect inheritance
//     cycles, assign type-ids and compute field/vtable layouts.
//  3. Register every top-level function's signature.
//  4. Walk every statement's body, resolving and recording each
//     expression's type on the node itself via ast.Expr.SetResolvedType.
package analyzer

import (
	"strings"

	"github.com/hulk-lang/hulkc/internal/ast"
	"github.com/hulk-lang/hulkc/internal/diag"
	"github.com/hulk-lang/hulkc/internal/types"
	"github.com/hulk-lang/hulkc/internal/util"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// FuncSig is a resolved top-level function signature.
type FuncSig struct {
	Name       string
	ParamTypes []*types.Type
	ReturnType *types.Type
	Def        *ast.FunctionDef
}

// Analyzer carries the state threaded through all four passes.
type Analyzer struct {
	prog      *ast.Program
	reg       *types.Registry
	funcs     map[string]*FuncSig
	diags     diag.Bag
	curMethod string // Enclosing method's name, for resolving base(args); "" outside a method body.
}

// scope is a single lexical frame: variable name to resolved type. It is
// pushed onto a util.Stack so enclosing frames stay visible beneath it
// (Stack.Get walks top-down, giving innermost-scope-wins shadowing).
type scope map[string]*types.Type

// Analyze runs all four passes over prog and returns the finalized type
// registry together with every diagnostic accumulated along the way.
func Analyze(prog *ast.Program) (*types.Registry, *diag.Bag) {
	a := &Analyzer{prog: prog, reg: types.NewRegistry(), funcs: make(map[string]*FuncSig)}
	a.passDeclareTypes()
	a.passFinalizeTypes()
	a.passDeclareFunctions()
	a.passAnalyzeBodies()
	return a.reg, &a.diags
}

// ----------------------------------
// ----- Pass 1: type shells --------
// ----------------------------------

func (a *Analyzer) passDeclareTypes() {
	for _, stmt := range a.prog.Statements {
		td, ok := stmt.(*ast.TypeDef)
		if !ok {
			continue
		}
		a.checkDupParams(td.Params)

		var fields []types.Field
		var methods []types.Method
		seenField := map[string]bool{}
		seenMethod := map[string]bool{}
		for _, m := range td.Members {
			switch mm := m.(type) {
			case ast.Property:
				if seenField[mm.Name] {
					a.diags.Add(diag.RedefinitionOfVariable, toDiagSpan(mm.At), "field %q already declared on type %q", mm.Name, td.Name)
					continue
				}
				seenField[mm.Name] = true
				fields = append(fields, types.Field{Name: mm.Name, TypeName: mm.DeclaredType})
			case ast.Method:
				if seenMethod[mm.Def.Name] {
					a.diags.Add(diag.RedefinitionOfFunction, toDiagSpan(mm.Def.BaseSpan), "method %q already declared on type %q", mm.Def.Name, td.Name)
					continue
				}
				seenMethod[mm.Def.Name] = true
				a.checkDupParams(mm.Def.Params)
				methods = append(methods, types.Method{
					Name:       mm.Def.Name,
					Params:     toTypeParams(mm.Def.Params),
					ReturnName: mm.Def.ReturnName,
				})
			}
		}

		ctorParams := toTypeParams(td.Params)
		if err := a.reg.Declare(td.Name, td.Parent, ctorParams, fields, methods); err != nil {
			a.diags.Add(diag.RedefinitionOfType, toDiagSpan(td.BaseSpan), "%s", err)
		}
	}
}

func (a *Analyzer) passFinalizeTypes() {
	for _, err := range a.reg.Finalize() {
		msg := err.Error()
		code := diag.UnknownError
		switch {
		case strings.Contains(msg, "cycle"):
			code = diag.CycleDetected
		case strings.Contains(msg, "undefined type"):
			code = diag.UndefinedType
		}
		a.diags.Add(code, diag.Span{}, "%s", msg)
	}
}

// ----------------------------------------
// ----- Pass 3: function signatures ------
// ----------------------------------------

func (a *Analyzer) passDeclareFunctions() {
	for _, stmt := range a.prog.Statements {
		fd, ok := stmt.(*ast.FunctionDef)
		if !ok {
			continue
		}
		if _, exists := a.funcs[fd.Name]; exists {
			a.diags.Add(diag.RedefinitionOfFunction, toDiagSpan(fd.BaseSpan), "function %q already declared", fd.Name)
			continue
		}
		a.checkDupParams(fd.Params)

		sig := &FuncSig{Name: fd.Name, Def: fd}
		for _, p := range fd.Params {
			sig.ParamTypes = append(sig.ParamTypes, a.resolveType(p.TypeName, p.At))
		}
		if fd.ReturnName != "" {
			sig.ReturnType = a.resolveType(fd.ReturnName, fd.BaseSpan)
		} else {
			sig.ReturnType = a.reg.Lookup(types.Unknown)
		}
		a.funcs[fd.Name] = sig
	}
}

// ----------------------------------
// ----- Pass 4: body analysis ------
// ----------------------------------

func (a *Analyzer) passAnalyzeBodies() {
	for _, stmt := range a.prog.Statements {
		switch s := stmt.(type) {
		case *ast.FunctionDef:
			a.analyzeFunctionBody(s)
		case *ast.TypeDef:
			a.analyzeTypeDef(s)
		case *ast.ExprStmt:
			st := &util.Stack{}
			st.Push(scope{})
			a.analyzeExpr(s.X, st, nil)
		}
	}
}

func (a *Analyzer) analyzeFunctionBody(fd *ast.FunctionDef) {
	sig, ok := a.funcs[fd.Name]
	if !ok || sig.Def != fd {
		return // Redefinition already reported in pass 3.
	}
	frame := scope{}
	for i, p := range fd.Params {
		frame[p.Name] = sig.ParamTypes[i]
	}
	st := &util.Stack{}
	st.Push(frame)

	bodyType := a.analyzeExpr(fd.Body, st, nil)
	if fd.ReturnName != "" {
		if !assignable(a.reg, sig.ReturnType, bodyType) {
			a.diags.Add(diag.InvalidFunctionReturn, toDiagSpan(fd.Body.Span()),
				"function %q declares return type %s but its body has type %s", fd.Name, sig.ReturnType, bodyType)
		}
	} else {
		sig.ReturnType = bodyType
	}
}

func (a *Analyzer) analyzeTypeDef(td *ast.TypeDef) {
	t := a.reg.Lookup(td.Name)
	if t == nil {
		return // Declare failed earlier; already reported.
	}

	ctorFrame := scope{}
	for _, p := range td.Params {
		ctorFrame[p.Name] = a.resolveType(p.TypeName, p.At)
	}
	ctorStack := &util.Stack{}
	ctorStack.Push(ctorFrame)

	if t.Parent != nil && td.Parent != "" {
		if len(td.ParentArgs) != len(t.Parent.Params) {
			a.diags.Add(diag.InvalidTypeArgumentCount, toDiagSpan(td.BaseSpan),
				"type %q passes %d arguments to parent %q's constructor, expected %d",
				td.Name, len(td.ParentArgs), t.Parent.Name, len(t.Parent.Params))
		}
		for i, argExpr := range td.ParentArgs {
			at := a.analyzeExpr(argExpr, ctorStack, t)
			if i < len(t.Parent.Params) {
				want := a.resolveType(t.Parent.Params[i].TypeName, td.BaseSpan)
				if !assignable(a.reg, want, at) {
					a.diags.Add(diag.InvalidTypeArgument, toDiagSpan(argExpr.Span()),
						"parent %q constructor argument %d expects %s, got %s", t.Parent.Name, i+1, want, at)
				}
			}
		}
	}

	for _, m := range td.Members {
		switch mm := m.(type) {
		case ast.Property:
			pt := a.analyzeExpr(mm.Init, ctorStack, t)
			f, _ := t.Field(mm.Name)
			if mm.DeclaredType != "" {
				want := a.resolveType(mm.DeclaredType, mm.At)
				if !assignable(a.reg, want, pt) {
					a.diags.Add(diag.InvalidTypeArgument, toDiagSpan(mm.At),
						"field %q declares type %s but initializer has type %s", mm.Name, want, pt)
				}
			} else if f != nil && f.TypeName == "" {
				f.TypeName = pt.Name
			}
		case ast.Method:
			a.analyzeMethodBody(t, mm.Def)
		}
	}
}

func (a *Analyzer) analyzeMethodBody(t *types.Type, fd *ast.FunctionDef) {
	m, _ := t.Method(fd.Name)
	frame := scope{}
	for _, p := range fd.Params {
		frame[p.Name] = a.resolveType(p.TypeName, p.At)
	}
	st := &util.Stack{}
	st.Push(frame)

	var declared *types.Type
	if fd.ReturnName != "" {
		declared = a.resolveType(fd.ReturnName, fd.BaseSpan)
	}
	prevMethod := a.curMethod
	a.curMethod = fd.Name
	bodyType := a.analyzeExpr(fd.Body, st, t)
	a.curMethod = prevMethod

	if declared != nil {
		if !assignable(a.reg, declared, bodyType) {
			a.diags.Add(diag.InvalidFunctionReturn, toDiagSpan(fd.Body.Span()),
				"method %s.%s declares return type %s but its body has type %s", t.Name, fd.Name, declared, bodyType)
		}
		if m != nil {
			m.ReturnName = declared.Name
		}
	} else if m != nil {
		m.ReturnName = bodyType.Name
	}
}

// -----------------------------
// ----- Small utilities ------
// -----------------------------

func (a *Analyzer) checkDupParams(params []ast.Param) {
	seen := map[string]bool{}
	for _, p := range params {
		if seen[p.Name] {
			a.diags.Add(diag.ParamNameAlreadyExist, toDiagSpan(p.At), "parameter %q already declared", p.Name)
			continue
		}
		seen[p.Name] = true
	}
}

func (a *Analyzer) resolveType(name string, sp ast.Span) *types.Type {
	if name == "" {
		return a.reg.Lookup(types.Unknown)
	}
	t := a.reg.Lookup(name)
	if t == nil {
		a.diags.Add(diag.UndefinedType, toDiagSpan(sp), "undefined type %q", name)
		return a.reg.Lookup(types.Unknown)
	}
	return t
}

func toTypeParams(params []ast.Param) []types.Param {
	out := make([]types.Param, len(params))
	for i, p := range params {
		out[i] = types.Param{Name: p.Name, TypeName: p.TypeName}
	}
	return out
}

func toDiagSpan(sp ast.Span) diag.Span { return diag.Span{Line: sp.Line, Col: sp.Col} }

// assignable reports whether a value of type actual may be used where
// declared is expected: exact match, Unknown on either side (already
// reported elsewhere), or actual descends from declared.
func assignable(reg *types.Registry, declared, actual *types.Type) bool {
	if declared == nil || actual == nil {
		return true
	}
	if declared.Name == types.Unknown || actual.Name == types.Unknown {
		return true
	}
	if declared.Name == actual.Name {
		return true
	}
	return reg.IsAncestor(declared, actual)
}

// lookupVar walks st from innermost to outermost frame looking for name.
func lookupVar(name string, st *util.Stack) (*types.Type, bool) {
	for i := 1; i <= st.Size(); i++ {
		frame, ok := st.Get(i).(scope)
		if !ok {
			continue
		}
		if t, ok := frame[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// updateVar rebinds name to t in the innermost frame that declares it,
// so a destructive assignment's new type is visible to later uses.
func updateVar(name string, t *types.Type, st *util.Stack) {
	for i := 1; i <= st.Size(); i++ {
		frame, ok := st.Get(i).(scope)
		if !ok {
			continue
		}
		if _, ok := frame[name]; ok {
			frame[name] = t
			return
		}
	}
}
