// Package ast defines the input contract the semantic analyzer and IR
// emitter consume: a Program value holding an ordered list of
// Statements, each expression node tagged with a source Span and, after
// analysis, a resolved type.
//
// Node kinds are modelled as Go interfaces implemented by one concrete
// struct per kind (a sum type via exhaustive type switch), per the
// specification's own design note against open class-hierarchy AST
// traversal.
package ast

import "github.com/hulk-lang/hulkc/internal/types"

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Span locates a node in the original source text.
type Span struct {
	Line int
	Col  int
}

// Expr is implemented by every expression AST node kind.
type Expr interface {
	Span() Span
	ResolvedType() *types.Type
	SetResolvedType(*types.Type)
	exprNode()
}

// Stmt is implemented by every top-level statement kind: expressions,
// function definitions and type definitions.
type Stmt interface {
	Span() Span
	stmtNode()
}

// base is embedded by every concrete Expr to provide the Span and
// resolved-type bookkeeping without repeating it in each struct.
type base struct {
	span Span
	typ  *types.Type
}

func (b *base) Span() Span                       { return b.span }
func (b *base) ResolvedType() *types.Type         { return b.typ }
func (b *base) SetResolvedType(t *types.Type)     { b.typ = t }

// NewBase constructs the embeddable base for a new Expr at span sp.
func NewBase(sp Span) base { return base{span: sp} }

// Program is the root of a compilation unit: an ordered list of
// top-level statements, exactly as produced by the parser.
type Program struct {
	Statements []Stmt
}

// ----------------------------
// ----- Statement kinds ------
// ----------------------------

// ExprStmt wraps a top-level expression evaluated for its value/effects.
type ExprStmt struct {
	X Expr
}

func (s *ExprStmt) Span() Span { return s.X.Span() }
func (s *ExprStmt) stmtNode()  {}

// FunctionDef is a top-level function definition.
type FunctionDef struct {
	BaseSpan   Span
	Name       string
	Params     []Param
	ReturnName string // Declared return type name; may be empty (the analyzer then takes the body's type).
	Body       Expr
}

func (s *FunctionDef) Span() Span { return s.BaseSpan }
func (s *FunctionDef) stmtNode()  {}

// Param is a single (name, declared type name) parameter, carrying its
// own span for precise ParamNameAlreadyExist / UndefinedType diagnostics.
type Param struct {
	Name     string
	TypeName string
	At       Span
}

// Member is implemented by Property and Method, the two kinds of type
// definition members.
type Member interface {
	memberNode()
}

// Property is a `name = expr` instance field initializer inside a type
// definition, with an optional declared type annotation.
type Property struct {
	Name         string
	Init         Expr
	DeclaredType string // May be empty; inferred from Init's resolved type.
	At           Span
}

func (Property) memberNode() {}

// Method is a method definition inside a type body; it reuses
// FunctionDef's shape since a method is a function with an implicit
// self parameter prepended by the analyzer and emitter, not by the
// parser.
type Method struct {
	Def *FunctionDef
}

func (Method) memberNode() {}

// TypeDef is a top-level nominal type definition.
type TypeDef struct {
	BaseSpan   Span
	Name       string
	Params     []Param
	Parent     string // Empty when the type has no explicit parent (implicitly Object).
	ParentArgs []Expr
	Members    []Member
}

func (s *TypeDef) Span() Span { return s.BaseSpan }
func (s *TypeDef) stmtNode()  {}
