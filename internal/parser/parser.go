// Package parser implements a hand-written recursive-descent parser
// that turns a lexer.Lexer's token stream into an ast.Program. It plays
// the role vslc's goyacc grammar (frontend/parser-typed.y, built via
// frontend/tree.go's nodeInit helper) plays for VSL, adapted to HULK's
// expression-oriented grammar and to hand-building ast values directly
// instead of through generated parser semantic actions.
//
// Parsing correctness is not one of this repository's tested
// invariants — those live on the semantic analyzer and the IR emitter —
// but the grammar below is complete enough to produce every AST shape
// those two components need to exercise.
package parser

import (
	"fmt"

	"github.com/hulk-lang/hulkc/internal/ast"
	"github.com/hulk-lang/hulkc/internal/lexer"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Parser consumes a pre-scanned token stream and builds an ast.Program.
type Parser struct {
	toks []lexer.Token
	pos  int
}

// Parse lexes and parses src in one call, returning the resulting
// Program or the first parse error encountered.
func Parse(src string) (*ast.Program, error) {
	l := lexer.New(src)
	var toks []lexer.Token
	for {
		t := l.Next()
		if t.Type == lexer.ERROR {
			return nil, fmt.Errorf("line %d:%d: %s", t.Line, t.Col, t.Val)
		}
		toks = append(toks, t)
		if t.Type == lexer.EOF {
			break
		}
	}
	p := &Parser{toks: toks}
	return p.parseProgram()
}

// ---------------------------
// ----- Token plumbing ------
// ---------------------------

func (p *Parser) peek() lexer.Token  { return p.toks[p.pos] }
func (p *Parser) at(t lexer.TokenType) bool { return p.peek().Type == t }

func (p *Parser) advance() lexer.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) expect(t lexer.TokenType) (lexer.Token, error) {
	if !p.at(t) {
		cur := p.peek()
		return cur, fmt.Errorf("line %d:%d: expected %s, got %s", cur.Line, cur.Col, t, cur.Type)
	}
	return p.advance(), nil
}

func (p *Parser) span(t lexer.Token) ast.Span { return ast.Span{Line: t.Line, Col: t.Col} }

// ----------------------
// ----- Program --------
// ----------------------

func (p *Parser) parseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	for !p.at(lexer.EOF) {
		stmt, err := p.parseTopLevel()
		if err != nil {
			return nil, err
		}
		prog.Statements = append(prog.Statements, stmt)
		for p.at(lexer.SEMI) {
			p.advance()
		}
	}
	return prog, nil
}

func (p *Parser) parseTopLevel() (ast.Stmt, error) {
	switch p.peek().Type {
	case lexer.FUNCTION:
		return p.parseFunctionDef()
	case lexer.TYPE:
		return p.parseTypeDef()
	default:
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.ExprStmt{X: x}, nil
	}
}

// ----------------------------------
// ----- Functions & type defs ------
// ----------------------------------

func (p *Parser) parseParams() ([]ast.Param, error) {
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	var params []ast.Param
	for !p.at(lexer.RPAREN) {
		name, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		typeName := ""
		if p.at(lexer.COLON) {
			p.advance()
			tn, err := p.expect(lexer.IDENT)
			if err != nil {
				return nil, err
			}
			typeName = tn.Val
		}
		params = append(params, ast.Param{Name: name.Val, TypeName: typeName, At: p.span(name)})
		if p.at(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Parser) parseArgs() ([]ast.Expr, error) {
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	var args []ast.Expr
	for !p.at(lexer.RPAREN) {
		a, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.at(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parseFunctionDef() (*ast.FunctionDef, error) {
	kw := p.advance() // 'function'
	name, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	ret := ""
	if p.at(lexer.COLON) {
		p.advance()
		rt, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		ret = rt.Val
	}
	if _, err := p.expect(lexer.ARROW); err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDef{BaseSpan: p.span(kw), Name: name.Val, Params: params, ReturnName: ret, Body: body}, nil
}

func (p *Parser) parseTypeDef() (*ast.TypeDef, error) {
	kw := p.advance() // 'type'
	name, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	td := &ast.TypeDef{BaseSpan: p.span(kw), Name: name.Val}
	if p.at(lexer.LPAREN) {
		params, err := p.parseParams()
		if err != nil {
			return nil, err
		}
		td.Params = params
	}
	if p.at(lexer.INHERITS) {
		p.advance()
		parent, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		td.Parent = parent.Val
		if p.at(lexer.LPAREN) {
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			td.ParentArgs = args
		}
	}
	if _, err := p.expect(lexer.LBRACE); err != nil {
		return nil, err
	}
	for !p.at(lexer.RBRACE) {
		member, err := p.parseMember()
		if err != nil {
			return nil, err
		}
		td.Members = append(td.Members, member)
		if p.at(lexer.SEMI) {
			p.advance()
		}
	}
	if _, err := p.expect(lexer.RBRACE); err != nil {
		return nil, err
	}
	return td, nil
}

func (p *Parser) parseMember() (ast.Member, error) {
	name, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	if p.at(lexer.LPAREN) {
		// Method: name(params)[:ReturnType] => body
		params, err := p.parseParams()
		if err != nil {
			return nil, err
		}
		ret := ""
		if p.at(lexer.COLON) {
			p.advance()
			rt, err := p.expect(lexer.IDENT)
			if err != nil {
				return nil, err
			}
			ret = rt.Val
		}
		if _, err := p.expect(lexer.ARROW); err != nil {
			return nil, err
		}
		body, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return ast.Method{Def: &ast.FunctionDef{
			BaseSpan: p.span(name), Name: name.Val, Params: params, ReturnName: ret, Body: body,
		}}, nil
	}

	// Property: name[:Type] = expr
	declared := ""
	if p.at(lexer.COLON) {
		p.advance()
		tn, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		declared = tn.Val
	}
	if _, err := p.expect(lexer.ASSIGN); err != nil {
		return nil, err
	}
	init, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return ast.Property{Name: name.Val, Init: init, DeclaredType: declared, At: p.span(name)}, nil
}
