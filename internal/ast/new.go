package ast

// -------------------------------
// ----- Node constructors -------
// -------------------------------
//
// base is unexported so callers outside this package cannot forge a
// node's span/resolved-type bookkeeping by hand; these constructors are
// the only way the parser builds nodes.

func NewNumberLit(sp Span, v float64) *NumberLit { return &NumberLit{base: NewBase(sp), Value: v} }
func NewBoolLit(sp Span, v bool) *BoolLit         { return &BoolLit{base: NewBase(sp), Value: v} }
func NewStringLit(sp Span, v string) *StringLit   { return &StringLit{base: NewBase(sp), Value: v} }
func NewIdent(sp Span, name string) *Ident        { return &Ident{base: NewBase(sp), Name: name} }
func NewSelfExpr(sp Span) *SelfExpr               { return &SelfExpr{base: NewBase(sp)} }

func NewCall(sp Span, name string, args []Expr) *Call {
	return &Call{base: NewBase(sp), Name: name, Args: args}
}

func NewBinaryOp(sp Span, op string, l, r Expr) *BinaryOp {
	return &BinaryOp{base: NewBase(sp), Op: op, Left: l, Right: r}
}

func NewUnaryOp(sp Span, op string, x Expr) *UnaryOp {
	return &UnaryOp{base: NewBase(sp), Op: op, X: x}
}

func NewWhile(sp Span, cond, body Expr) *While {
	return &While{base: NewBase(sp), Cond: cond, Body: body}
}

func NewFor(sp Span, v string, start, end, body Expr) *For {
	return &For{base: NewBase(sp), Var: v, Start: start, End: end, Body: body}
}

func NewBlock(sp Span, exprs []Expr) *Block { return &Block{base: NewBase(sp), Exprs: exprs} }

func NewIf(sp Span, branches []IfBranch) *If { return &If{base: NewBase(sp), Branches: branches} }

func NewLetIn(sp Span, bindings []LetBinding, body Expr) *LetIn {
	return &LetIn{base: NewBase(sp), Bindings: bindings, Body: body}
}

func NewAssign(sp Span, target, value Expr) *Assign {
	return &Assign{base: NewBase(sp), Target: target, Value: value}
}

func NewNewInstance(sp Span, typeName string, args []Expr) *NewInstance {
	return &NewInstance{base: NewBase(sp), TypeName: typeName, Args: args}
}

func NewMethodCall(sp Span, obj Expr, method string, args []Expr) *MethodCall {
	return &MethodCall{base: NewBase(sp), Object: obj, Method: method, Args: args}
}

func NewBaseCall(sp Span, args []Expr) *BaseCall { return &BaseCall{base: NewBase(sp), Args: args} }

func NewFieldAccess(sp Span, obj Expr, field string) *FieldAccess {
	return &FieldAccess{base: NewBase(sp), Object: obj, Field: field}
}

func NewPrint(sp Span, x Expr) *Print { return &Print{base: NewBase(sp), X: x} }
