package parser

import (
	"fmt"
	"strconv"

	"github.com/hulk-lang/hulkc/internal/ast"
	"github.com/hulk-lang/hulkc/internal/lexer"
)

// ---------------------------------------
// ----- Expression precedence chain -----
// ---------------------------------------
//
// Lowest to highest: assignment, ||, &&, equality, relational, concat,
// additive, multiplicative, unary, power, postfix, primary. Assignment
// and power are right-associative; everything else is left-associative.

func (p *Parser) parseExpr() (ast.Expr, error) {
	return p.parseAssign()
}

func (p *Parser) parseAssign() (ast.Expr, error) {
	left, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.at(lexer.DASSIGN) {
		tok := p.advance()
		right, err := p.parseAssign()
		if err != nil {
			return nil, err
		}
		return ast.NewAssign(p.span(tok), left, right), nil
	}
	return left, nil
}

func (p *Parser) parseOr() (ast.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.OR) {
		tok := p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryOp(p.span(tok), "||", left, right)
	}
	return left, nil
}

func (p *Parser) parseAnd() (ast.Expr, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.AND) {
		tok := p.advance()
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryOp(p.span(tok), "&&", left, right)
	}
	return left, nil
}

func (p *Parser) parseEquality() (ast.Expr, error) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.EQ) || p.at(lexer.NEQ) {
		tok := p.advance()
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryOp(p.span(tok), tok.Val, left, right)
	}
	return left, nil
}

func (p *Parser) parseRelational() (ast.Expr, error) {
	left, err := p.parseConcat()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.LT) || p.at(lexer.LTE) || p.at(lexer.GT) || p.at(lexer.GTE) {
		tok := p.advance()
		right, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryOp(p.span(tok), tok.Val, left, right)
	}
	return left, nil
}

func (p *Parser) parseConcat() (ast.Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.CONCAT) {
		tok := p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryOp(p.span(tok), "@", left, right)
	}
	return left, nil
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.PLUS) || p.at(lexer.MINUS) {
		tok := p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryOp(p.span(tok), tok.Val, left, right)
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.STAR) || p.at(lexer.SLASH) || p.at(lexer.PERCENT) {
		tok := p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryOp(p.span(tok), tok.Val, left, right)
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	if p.at(lexer.MINUS) || p.at(lexer.NOT) {
		tok := p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryOp(p.span(tok), tok.Val, x), nil
	}
	return p.parsePower()
}

func (p *Parser) parsePower() (ast.Expr, error) {
	left, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if p.at(lexer.CARET) {
		tok := p.advance()
		right, err := p.parseUnary() // Right-associative: 2^-2 parses as 2^(-2).
		if err != nil {
			return nil, err
		}
		return ast.NewBinaryOp(p.span(tok), "^", left, right), nil
	}
	return left, nil
}

func (p *Parser) parsePostfix() (ast.Expr, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.DOT) {
		dot := p.advance()
		name, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		if p.at(lexer.LPAREN) {
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			x = ast.NewMethodCall(p.span(dot), x, name.Val, args)
			continue
		}
		x = ast.NewFieldAccess(p.span(dot), x, name.Val)
	}
	return x, nil
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case lexer.NUMBER:
		p.advance()
		v, err := strconv.ParseFloat(tok.Val, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d:%d: malformed number literal %q", tok.Line, tok.Col, tok.Val)
		}
		return ast.NewNumberLit(p.span(tok), v), nil

	case lexer.TRUE:
		p.advance()
		return ast.NewBoolLit(p.span(tok), true), nil
	case lexer.FALSE:
		p.advance()
		return ast.NewBoolLit(p.span(tok), false), nil

	case lexer.STRING:
		p.advance()
		return ast.NewStringLit(p.span(tok), tok.Val), nil

	case lexer.SELF:
		p.advance()
		return ast.NewSelfExpr(p.span(tok)), nil

	case lexer.BASE:
		p.advance()
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		return ast.NewBaseCall(p.span(tok), args), nil

	case lexer.IDENT:
		p.advance()
		if p.at(lexer.LPAREN) {
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			return ast.NewCall(p.span(tok), tok.Val, args), nil
		}
		return ast.NewIdent(p.span(tok), tok.Val), nil

	case lexer.LPAREN:
		p.advance()
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		return x, nil

	case lexer.LBRACE:
		return p.parseBlock()
	case lexer.IF:
		return p.parseIf()
	case lexer.WHILE:
		return p.parseWhile()
	case lexer.FOR:
		return p.parseFor()
	case lexer.LET:
		return p.parseLet()
	case lexer.NEW:
		return p.parseNew()
	case lexer.PRINT:
		return p.parsePrint()

	default:
		return nil, fmt.Errorf("line %d:%d: unexpected token %s", tok.Line, tok.Col, tok.Type)
	}
}

func (p *Parser) parseBlock() (ast.Expr, error) {
	open := p.advance() // '{'
	var exprs []ast.Expr
	for !p.at(lexer.RBRACE) {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
		for p.at(lexer.SEMI) {
			p.advance()
		}
	}
	if _, err := p.expect(lexer.RBRACE); err != nil {
		return nil, err
	}
	return ast.NewBlock(p.span(open), exprs), nil
}

func (p *Parser) parseIf() (ast.Expr, error) {
	kw := p.advance() // 'if'
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	branches := []ast.IfBranch{{Cond: cond, Body: body}}

	for p.at(lexer.ELIF) {
		p.advance()
		if _, err := p.expect(lexer.LPAREN); err != nil {
			return nil, err
		}
		c, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		b, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		branches = append(branches, ast.IfBranch{Cond: c, Body: b})
	}

	if p.at(lexer.ELSE) {
		p.advance()
		b, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		branches = append(branches, ast.IfBranch{Cond: nil, Body: b})
	}

	return ast.NewIf(p.span(kw), branches), nil
}

func (p *Parser) parseWhile() (ast.Expr, error) {
	kw := p.advance() // 'while'
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return ast.NewWhile(p.span(kw), cond, body), nil
}

func (p *Parser) parseFor() (ast.Expr, error) {
	kw := p.advance() // 'for'
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	name, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.IN); err != nil {
		return nil, err
	}
	rangeTok, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	if rangeTok.Val != "range" {
		return nil, fmt.Errorf("line %d:%d: for-loops only iterate over range(start, end), got %q",
			rangeTok.Line, rangeTok.Col, rangeTok.Val)
	}
	args, err := p.parseArgs()
	if err != nil {
		return nil, err
	}
	if len(args) != 2 {
		return nil, fmt.Errorf("line %d:%d: range expects exactly 2 arguments, got %d",
			rangeTok.Line, rangeTok.Col, len(args))
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return ast.NewFor(p.span(kw), name.Val, args[0], args[1], body), nil
}

func (p *Parser) parseLet() (ast.Expr, error) {
	kw := p.advance() // 'let'
	var bindings []ast.LetBinding
	for {
		name, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		if p.at(lexer.COLON) { // Optional declared type, discarded: inferred from Init.
			p.advance()
			if _, err := p.expect(lexer.IDENT); err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(lexer.ASSIGN); err != nil {
			return nil, err
		}
		init, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, ast.LetBinding{Name: name.Val, Init: init})
		if p.at(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(lexer.IN); err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return ast.NewLetIn(p.span(kw), bindings, body), nil
}

func (p *Parser) parseNew() (ast.Expr, error) {
	kw := p.advance() // 'new'
	name, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	args, err := p.parseArgs()
	if err != nil {
		return nil, err
	}
	return ast.NewNewInstance(p.span(kw), name.Val, args), nil
}

func (p *Parser) parsePrint() (ast.Expr, error) {
	kw := p.advance() // 'print'
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	x, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	return ast.NewPrint(p.span(kw), x), nil
}
