package ast

// ----------------------------
// ----- Expression kinds -----
// ----------------------------

// NumberLit is a numeric literal.
type NumberLit struct {
	base
	Value float64
}

func (*NumberLit) exprNode() {}

// BoolLit is a boolean literal.
type BoolLit struct {
	base
	Value bool
}

func (*BoolLit) exprNode() {}

// StringLit is a string literal, with escapes already decoded by the
// lexer (\n, \t, \\, \").
type StringLit struct {
	base
	Value string
}

func (*StringLit) exprNode() {}

// Ident is a bare identifier reference, resolved against the lexical
// scope stack.
type Ident struct {
	base
	Name string
}

func (*Ident) exprNode() {}

// SelfExpr is the `self` pseudo-identifier, resolved against the
// enclosing type context rather than the symbol table.
type SelfExpr struct {
	base
}

func (*SelfExpr) exprNode() {}

// Call is a plain function call: `name(args...)`.
type Call struct {
	base
	Name string
	Args []Expr
}

func (*Call) exprNode() {}

// BinaryOp is a binary operator application. Op is one of:
// + - * / % ^ < <= > >= == != && || @ (concat uses "@").
type BinaryOp struct {
	base
	Op    string
	Left  Expr
	Right Expr
}

func (*BinaryOp) exprNode() {}

// UnaryOp is a unary operator application. Op is one of: - !
type UnaryOp struct {
	base
	Op string
	X  Expr
}

func (*UnaryOp) exprNode() {}

// While is a `while (cond) body` loop expression; its resolved type is
// its body's type.
type While struct {
	base
	Cond Expr
	Body Expr
}

func (*While) exprNode() {}

// For is a `for (name in range(start, end)) body` loop; the induction
// variable is always of type Number.
type For struct {
	base
	Var   string
	Start Expr
	End   Expr
	Body  Expr
}

func (*For) exprNode() {}

// Block is a sequence of expressions evaluated in order; its resolved
// type is its last expression's type. Introduces a lexical scope.
type Block struct {
	base
	Exprs []Expr
}

func (*Block) exprNode() {}

// IfBranch is one `elif (cond) expr` arm, or the final unconditional
// `else` arm when Cond is nil.
type IfBranch struct {
	Cond Expr // nil for the trailing else branch.
	Body Expr
}

// If is an if/elif*/else chain; its resolved type is the LCA across all
// branch types.
type If struct {
	base
	Branches []IfBranch // First entry is the `if`; Cond is never nil there.
}

func (*If) exprNode() {}

// LetBinding is a single `name = expr` binding inside a let-in.
type LetBinding struct {
	Name string
	Init Expr
}

// LetIn evaluates each binding in the current scope, then evaluates Body
// in a new scope extended with those bindings.
type LetIn struct {
	base
	Bindings []LetBinding
	Body     Expr
}

func (*LetIn) exprNode() {}

// Assign is a destructive assignment; Target is either an *Ident or a
// *FieldAccess.
type Assign struct {
	base
	Target Expr
	Value  Expr
}

func (*Assign) exprNode() {}

// NewInstance is a `new T(args...)` type instantiation.
type NewInstance struct {
	base
	TypeName string
	Args     []Expr
}

func (*NewInstance) exprNode() {}

// MethodCall is `object.method(args...)`.
type MethodCall struct {
	base
	Object Expr
	Method string
	Args   []Expr
}

func (*MethodCall) exprNode() {}

// BaseCall is `base(args...)`: a static call to the parent type's
// implementation of the enclosing method, bypassing vtable dispatch.
type BaseCall struct {
	base
	Args []Expr
}

func (*BaseCall) exprNode() {}

// FieldAccess is `object.field`. Per the specification's resolved open
// question, the field is looked up against the enclosing self type
// context, not Object's static resolved type; Object is still evaluated
// for its side effects and to report InvalidTypeProperty against.
type FieldAccess struct {
	base
	Object Expr
	Field  string
}

func (*FieldAccess) exprNode() {}

// Print is a `print(expr)` statement-expression.
type Print struct {
	base
	X Expr
}

func (*Print) exprNode() {}
