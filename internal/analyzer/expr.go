package analyzer

import (
	"github.com/hulk-lang/hulkc/internal/ast"
	"github.com/hulk-lang/hulkc/internal/diag"
	"github.com/hulk-lang/hulkc/internal/types"
	"github.com/hulk-lang/hulkc/internal/util"
)

// analyzeExpr resolves e's type, records it on the node via
// SetResolvedType and returns it. selfType is the enclosing type body's
// type, or nil outside of one; st is the current lexical scope chain.
func (a *Analyzer) analyzeExpr(e ast.Expr, st *util.Stack, selfType *types.Type) *types.Type {
	t := a.analyzeExprKind(e, st, selfType)
	e.SetResolvedType(t)
	return t
}

func (a *Analyzer) analyzeExprKind(e ast.Expr, st *util.Stack, selfType *types.Type) *types.Type {
	switch n := e.(type) {

	case *ast.NumberLit:
		return a.reg.Lookup(types.Number)
	case *ast.BoolLit:
		return a.reg.Lookup(types.Boolean)
	case *ast.StringLit:
		return a.reg.Lookup(types.String)

	case *ast.SelfExpr:
		if selfType == nil {
			a.diags.Add(diag.UndefinedIdentifier, toDiagSpan(n.Span()), "self used outside of a type's method")
			return a.reg.Lookup(types.Unknown)
		}
		return selfType

	case *ast.Ident:
		if vt, ok := lookupVar(n.Name, st); ok {
			return vt
		}
		a.diags.Add(diag.UndefinedIdentifier, toDiagSpan(n.Span()), "undefined identifier %q", n.Name)
		return a.reg.Lookup(types.Unknown)

	case *ast.Call:
		return a.analyzeCall(n, st, selfType)

	case *ast.BinaryOp:
		lt := a.analyzeExpr(n.Left, st, selfType)
		rt := a.analyzeExpr(n.Right, st, selfType)
		return a.binaryResultType(n.Op, lt, rt, n.Span())

	case *ast.UnaryOp:
		xt := a.analyzeExpr(n.X, st, selfType)
		return a.unaryResultType(n.Op, xt, n.Span())

	case *ast.While:
		ct := a.analyzeExpr(n.Cond, st, selfType)
		if ct.Name != types.Boolean {
			a.diags.Add(diag.InvalidConditionType, toDiagSpan(n.Cond.Span()), "while condition must be Boolean, got %s", ct)
		}
		return a.analyzeExpr(n.Body, st, selfType)

	case *ast.For:
		startT := a.analyzeExpr(n.Start, st, selfType)
		endT := a.analyzeExpr(n.End, st, selfType)
		if startT.Name != types.Number || endT.Name != types.Number {
			a.diags.Add(diag.InvalidIterable, toDiagSpan(n.Span()), "range bounds must be Number, got %s and %s", startT, endT)
		}
		st.Push(scope{n.Var: a.reg.Lookup(types.Number)})
		bt := a.analyzeExpr(n.Body, st, selfType)
		st.Pop()
		return bt

	case *ast.Block:
		t := a.reg.Lookup(types.Unknown)
		for _, ex := range n.Exprs {
			t = a.analyzeExpr(ex, st, selfType)
		}
		return t

	case *ast.If:
		var branchTypes []*types.Type
		for _, br := range n.Branches {
			if br.Cond != nil {
				ct := a.analyzeExpr(br.Cond, st, selfType)
				if ct.Name != types.Boolean {
					a.diags.Add(diag.InvalidConditionType, toDiagSpan(br.Cond.Span()), "if condition must be Boolean, got %s", ct)
				}
			}
			branchTypes = append(branchTypes, a.analyzeExpr(br.Body, st, selfType))
		}
		result := branchTypes[0]
		for _, bt := range branchTypes[1:] {
			result = a.reg.LCA(result, bt)
		}
		return result

	case *ast.LetIn:
		frame := scope{}
		st.Push(frame)
		for _, b := range n.Bindings {
			bt := a.analyzeExpr(b.Init, st, selfType)
			if _, dup := frame[b.Name]; dup {
				a.diags.Add(diag.RedefinitionOfVariable, toDiagSpan(n.Span()), "variable %q already bound in this let", b.Name)
			}
			frame[b.Name] = bt
		}
		bodyType := a.analyzeExpr(n.Body, st, selfType)
		st.Pop()
		return bodyType

	case *ast.Assign:
		return a.analyzeAssign(n, st, selfType)

	case *ast.NewInstance:
		return a.analyzeNewInstance(n, st, selfType)

	case *ast.MethodCall:
		return a.analyzeMethodCall(n, st, selfType)

	case *ast.BaseCall:
		return a.analyzeBaseCall(n, st, selfType)

	case *ast.FieldAccess:
		return a.analyzeFieldAccess(n, st, selfType)

	case *ast.Print:
		xt := a.analyzeExpr(n.X, st, selfType)
		if xt.Name != types.Number && xt.Name != types.String && xt.Name != types.Boolean {
			a.diags.Add(diag.InvalidPrint, toDiagSpan(n.X.Span()), "print requires a Number, String or Boolean argument, got %s", xt)
		}
		return xt

	default:
		a.diags.Add(diag.UnknownError, toDiagSpan(e.Span()), "internal: unhandled expression node %T", e)
		return a.reg.Lookup(types.Unknown)
	}
}

func (a *Analyzer) analyzeCall(n *ast.Call, st *util.Stack, selfType *types.Type) *types.Type {
	sig, ok := a.funcs[n.Name]
	if !ok {
		a.diags.Add(diag.UndeclaredFunction, toDiagSpan(n.Span()), "undeclared function %q", n.Name)
		for _, arg := range n.Args {
			a.analyzeExpr(arg, st, selfType)
		}
		return a.reg.Lookup(types.Unknown)
	}
	if len(n.Args) != len(sig.ParamTypes) {
		a.diags.Add(diag.InvalidArgumentsCount, toDiagSpan(n.Span()),
			"function %q expects %d arguments, got %d", n.Name, len(sig.ParamTypes), len(n.Args))
	}
	for i, arg := range n.Args {
		at := a.analyzeExpr(arg, st, selfType)
		if i < len(sig.ParamTypes) && !assignable(a.reg, sig.ParamTypes[i], at) {
			a.diags.Add(diag.InvalidTypeArgument, toDiagSpan(arg.Span()),
				"function %q argument %d expects %s, got %s", n.Name, i+1, sig.ParamTypes[i], at)
		}
	}
	return sig.ReturnType
}

func (a *Analyzer) analyzeAssign(n *ast.Assign, st *util.Stack, selfType *types.Type) *types.Type {
	ident, isIdent := n.Target.(*ast.Ident)
	if isIdent {
		if _, ok := lookupVar(ident.Name, st); !ok {
			a.diags.Add(diag.UndefinedIdentifier, toDiagSpan(ident.Span()), "undefined identifier %q", ident.Name)
		}
	} else {
		a.analyzeExpr(n.Target, st, selfType)
	}

	// Destructive assignment retypes the binding to the assigned value's
	// type rather than checking compatibility against its prior type.
	valType := a.analyzeExpr(n.Value, st, selfType)
	if isIdent {
		updateVar(ident.Name, valType, st)
		ident.SetResolvedType(valType)
	}
	return valType
}

func (a *Analyzer) analyzeNewInstance(n *ast.NewInstance, st *util.Stack, selfType *types.Type) *types.Type {
	t := a.reg.Lookup(n.TypeName)
	if t == nil || t.IsBuiltin() {
		a.diags.Add(diag.UndefinedType, toDiagSpan(n.Span()), "undefined type %q", n.TypeName)
		for _, arg := range n.Args {
			a.analyzeExpr(arg, st, selfType)
		}
		return a.reg.Lookup(types.Unknown)
	}
	if len(n.Args) != len(t.Params) {
		a.diags.Add(diag.InvalidTypeArgumentCount, toDiagSpan(n.Span()),
			"type %q constructor expects %d arguments, got %d", n.TypeName, len(t.Params), len(n.Args))
	}
	for i, arg := range n.Args {
		at := a.analyzeExpr(arg, st, selfType)
		if i < len(t.Params) {
			want := a.resolveType(t.Params[i].TypeName, n.Span())
			if !assignable(a.reg, want, at) {
				a.diags.Add(diag.InvalidTypeArgument, toDiagSpan(arg.Span()),
					"type %q constructor argument %d expects %s, got %s", n.TypeName, i+1, want, at)
			}
		}
	}
	return t
}

func (a *Analyzer) analyzeMethodCall(n *ast.MethodCall, st *util.Stack, selfType *types.Type) *types.Type {
	recv := a.analyzeExpr(n.Object, st, selfType)

	method := a.reg.FindMethod(recv, n.Method)
	if method == nil {
		a.diags.Add(diag.InvalidTypeFunctionAccess, toDiagSpan(n.Span()),
			"type %s has no method %q", recv, n.Method)
		for _, arg := range n.Args {
			a.analyzeExpr(arg, st, selfType)
		}
		return a.reg.Lookup(types.Unknown)
	}
	if len(n.Args) != len(method.Params) {
		a.diags.Add(diag.InvalidArgumentsCount, toDiagSpan(n.Span()),
			"method %s.%s expects %d arguments, got %d", recv, n.Method, len(method.Params), len(n.Args))
	}
	for i, arg := range n.Args {
		at := a.analyzeExpr(arg, st, selfType)
		if i < len(method.Params) {
			want := a.resolveType(method.Params[i].TypeName, n.Span())
			if !assignable(a.reg, want, at) {
				a.diags.Add(diag.InvalidTypeArgument, toDiagSpan(arg.Span()),
					"method %s.%s argument %d expects %s, got %s", recv, n.Method, i+1, want, at)
			}
		}
	}
	return a.resolveType(method.ReturnName, n.Span())
}

// analyzeBaseCall resolves base(args) to a static call to the parent
// type's implementation of the method currently being analyzed: its
// name comes from the enclosing method, not from source syntax.
func (a *Analyzer) analyzeBaseCall(n *ast.BaseCall, st *util.Stack, selfType *types.Type) *types.Type {
	if selfType == nil || selfType.Parent == nil || a.curMethod == "" {
		a.diags.Add(diag.UndefinedIdentifier, toDiagSpan(n.Span()), "base used outside of an inheriting type's method")
		for _, arg := range n.Args {
			a.analyzeExpr(arg, st, selfType)
		}
		return a.reg.Lookup(types.Unknown)
	}

	method := a.reg.FindMethod(selfType.Parent, a.curMethod)
	if method == nil {
		a.diags.Add(diag.InvalidTypeFunctionAccess, toDiagSpan(n.Span()),
			"type %s has no method %q", selfType.Parent, a.curMethod)
		for _, arg := range n.Args {
			a.analyzeExpr(arg, st, selfType)
		}
		return a.reg.Lookup(types.Unknown)
	}
	if len(n.Args) != len(method.Params) {
		a.diags.Add(diag.InvalidArgumentsCount, toDiagSpan(n.Span()),
			"method %s.%s expects %d arguments, got %d", selfType.Parent, a.curMethod, len(method.Params), len(n.Args))
	}
	for i, arg := range n.Args {
		at := a.analyzeExpr(arg, st, selfType)
		if i < len(method.Params) {
			want := a.resolveType(method.Params[i].TypeName, n.Span())
			if !assignable(a.reg, want, at) {
				a.diags.Add(diag.InvalidTypeArgument, toDiagSpan(arg.Span()),
					"method %s.%s argument %d expects %s, got %s", selfType.Parent, a.curMethod, i+1, want, at)
			}
		}
	}
	return a.resolveType(method.ReturnName, n.Span())
}

func (a *Analyzer) analyzeFieldAccess(n *ast.FieldAccess, st *util.Stack, selfType *types.Type) *types.Type {
	recv := a.analyzeExpr(n.Object, st, selfType) // Evaluated for side effects and named in the error below; the field is looked up against selfType.

	if selfType == nil {
		a.diags.Add(diag.InvalidTypeProperty, toDiagSpan(n.Span()), "field access %q used outside of a type's method", n.Field)
		return a.reg.Lookup(types.Unknown)
	}
	f, ok := selfType.Field(n.Field)
	for t := selfType.Parent; !ok && t != nil; t = t.Parent {
		f, ok = t.Field(n.Field)
	}
	if !ok {
		a.diags.Add(diag.InvalidTypeProperty, toDiagSpan(n.Span()), "type %s has no field %q (looked up on %s)", recv, n.Field, selfType)
		return a.reg.Lookup(types.Unknown)
	}
	return a.resolveType(f.TypeName, n.Span())
}

func (a *Analyzer) binaryResultType(op string, lt, rt *types.Type, sp ast.Span) *types.Type {
	isNum := func(t *types.Type) bool { return t.Name == types.Number }
	isBool := func(t *types.Type) bool { return t.Name == types.Boolean }
	isStr := func(t *types.Type) bool { return t.Name == types.String }

	switch op {
	case "+", "-", "*", "/", "%", "^":
		if isNum(lt) && isNum(rt) {
			return a.reg.Lookup(types.Number)
		}
		a.diags.Add(diag.InvalidBinaryOperation, toDiagSpan(sp), "operator %q requires Number operands, got %s and %s", op, lt, rt)
	case "@":
		if isStr(lt) && isStr(rt) {
			return a.reg.Lookup(types.String)
		}
		a.diags.Add(diag.InvalidBinaryOperation, toDiagSpan(sp), "operator @ requires String operands, got %s and %s", lt, rt)
	case "<", "<=", ">", ">=":
		if isNum(lt) && isNum(rt) {
			return a.reg.Lookup(types.Boolean)
		}
		a.diags.Add(diag.InvalidBinaryOperation, toDiagSpan(sp), "operator %q requires Number operands, got %s and %s", op, lt, rt)
	case "==", "!=":
		if (isNum(lt) && isNum(rt)) || (isBool(lt) && isBool(rt)) || (isStr(lt) && isStr(rt)) {
			return a.reg.Lookup(types.Boolean)
		}
		a.diags.Add(diag.InvalidBinaryOperation, toDiagSpan(sp), "operator %q requires both operands to be the same built-in type (Number, String or Boolean), got %s and %s", op, lt, rt)
	case "&&", "||":
		if isBool(lt) && isBool(rt) {
			return a.reg.Lookup(types.Boolean)
		}
		a.diags.Add(diag.InvalidBinaryOperation, toDiagSpan(sp), "operator %q requires Boolean operands, got %s and %s", op, lt, rt)
	}
	return a.reg.Lookup(types.Unknown)
}

func (a *Analyzer) unaryResultType(op string, xt *types.Type, sp ast.Span) *types.Type {
	switch op {
	case "-":
		if xt.Name == types.Number {
			return a.reg.Lookup(types.Number)
		}
		a.diags.Add(diag.InvalidUnaryOperation, toDiagSpan(sp), "unary - requires a Number operand, got %s", xt)
	case "!":
		if xt.Name == types.Boolean {
			return a.reg.Lookup(types.Boolean)
		}
		a.diags.Add(diag.InvalidUnaryOperation, toDiagSpan(sp), "unary ! requires a Boolean operand, got %s", xt)
	}
	return a.reg.Lookup(types.Unknown)
}
