package parser

import (
	"github.com/sunholo/pywasmc/internal/ast"
	"github.com/sunholo/pywasmc/internal/lexer"
)

// parseExpr is the grammar entry point: `test` in Python's own grammar.
func (p *Parser) parseExpr() ast.Expr {
	return p.parseOrTest()
}

func (p *Parser) parseOrTest() ast.Expr {
	left := p.parseAndTest()
	if !p.at(lexer.OR) {
		return left
	}
	values := []ast.Expr{left}
	pos := left.Position()
	for p.at(lexer.OR) {
		p.advance()
		values = append(values, p.parseAndTest())
	}
	return &ast.BoolOp{Op: "or", Values: values, Pos: pos}
}

func (p *Parser) parseAndTest() ast.Expr {
	left := p.parseNotTest()
	if !p.at(lexer.AND) {
		return left
	}
	values := []ast.Expr{left}
	pos := left.Position()
	for p.at(lexer.AND) {
		p.advance()
		values = append(values, p.parseNotTest())
	}
	return &ast.BoolOp{Op: "and", Values: values, Pos: pos}
}

func (p *Parser) parseNotTest() ast.Expr {
	if p.at(lexer.NOT) {
		tok := p.advance()
		operand := p.parseNotTest()
		return &ast.UnaryOp{Op: "not", Operand: operand, Pos: p.pos2(tok)}
	}
	return p.parseComparison()
}

var compareOps = map[lexer.TokenType]string{
	lexer.LT: "<", lexer.GT: ">", lexer.LTE: "<=", lexer.GTE: ">=",
	lexer.EQ: "==", lexer.NEQ: "!=", lexer.IN: "in",
}

func (p *Parser) parseComparison() ast.Expr {
	left := p.parseBitOr()
	var ops []string
	var comparators []ast.Expr
	for {
		if op, ok := compareOps[p.cur().Type]; ok {
			p.advance()
			ops = append(ops, op)
			comparators = append(comparators, p.parseBitOr())
			continue
		}
		break
	}
	if len(ops) == 0 {
		return left
	}
	return &ast.Compare{Left: left, Ops: ops, Comparators: comparators, Pos: left.Position()}
}

func (p *Parser) parseBitOr() ast.Expr {
	left := p.parseBitXor()
	for p.at(lexer.PIPE) {
		tok := p.advance()
		right := p.parseBitXor()
		left = &ast.BinOp{Left: left, Op: "|", Right: right, Pos: p.pos2(tok)}
	}
	return left
}

func (p *Parser) parseBitXor() ast.Expr {
	left := p.parseBitAnd()
	for p.at(lexer.CARET) {
		tok := p.advance()
		right := p.parseBitAnd()
		left = &ast.BinOp{Left: left, Op: "^", Right: right, Pos: p.pos2(tok)}
	}
	return left
}

func (p *Parser) parseBitAnd() ast.Expr {
	left := p.parseShift()
	for p.at(lexer.AMP) {
		tok := p.advance()
		right := p.parseShift()
		left = &ast.BinOp{Left: left, Op: "&", Right: right, Pos: p.pos2(tok)}
	}
	return left
}

func (p *Parser) parseShift() ast.Expr {
	left := p.parseArith()
	for p.at(lexer.LSHIFT) || p.at(lexer.RSHIFT) {
		tok := p.advance()
		op := "<<"
		if tok.Type == lexer.RSHIFT {
			op = ">>"
		}
		right := p.parseArith()
		left = &ast.BinOp{Left: left, Op: op, Right: right, Pos: p.pos2(tok)}
	}
	return left
}

func (p *Parser) parseArith() ast.Expr {
	left := p.parseTerm()
	for p.at(lexer.PLUS) || p.at(lexer.MINUS) {
		tok := p.advance()
		op := "+"
		if tok.Type == lexer.MINUS {
			op = "-"
		}
		right := p.parseTerm()
		left = &ast.BinOp{Left: left, Op: op, Right: right, Pos: p.pos2(tok)}
	}
	return left
}

func (p *Parser) parseTerm() ast.Expr {
	left := p.parseFactor()
	for p.at(lexer.STAR) || p.at(lexer.SLASH) || p.at(lexer.DSLASH) || p.at(lexer.PERCENT) {
		tok := p.advance()
		var op string
		switch tok.Type {
		case lexer.STAR:
			op = "*"
		case lexer.SLASH:
			op = "/"
		case lexer.DSLASH:
			op = "//"
		case lexer.PERCENT:
			op = "%"
		}
		right := p.parseFactor()
		left = &ast.BinOp{Left: left, Op: op, Right: right, Pos: p.pos2(tok)}
	}
	return left
}

func (p *Parser) parseFactor() ast.Expr {
	switch p.cur().Type {
	case lexer.PLUS, lexer.MINUS, lexer.TILDE:
		tok := p.advance()
		op := map[lexer.TokenType]string{lexer.PLUS: "+", lexer.MINUS: "-", lexer.TILDE: "~"}[tok.Type]
		operand := p.parseFactor()
		return &ast.UnaryOp{Op: op, Operand: operand, Pos: p.pos2(tok)}
	default:
		return p.parsePower()
	}
}

func (p *Parser) parsePower() ast.Expr {
	base := p.parseAtomTrailer()
	if p.at(lexer.DSTAR) {
		tok := p.advance()
		exp := p.parseFactor()
		return &ast.BinOp{Left: base, Op: "**", Right: exp, Pos: p.pos2(tok)}
	}
	return base
}

// parseAtomTrailer parses an atom followed by any number of call,
// attribute, or subscript trailers.
func (p *Parser) parseAtomTrailer() ast.Expr {
	expr := p.parseAtom()
	for {
		switch p.cur().Type {
		case lexer.DOT:
			tok := p.advance()
			name := p.expect(lexer.IDENT)
			expr = &ast.Attribute{Value: expr, Attr: name.Literal, Pos: p.pos2(tok)}
		case lexer.LPAREN:
			tok := p.advance()
			var args []ast.Expr
			for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
				args = append(args, p.parseExpr())
				if p.at(lexer.COMMA) {
					p.advance()
				}
			}
			p.expect(lexer.RPAREN)
			expr = &ast.Call{Func: expr, Args: args, Pos: p.pos2(tok)}
		case lexer.LBRACKET:
			tok := p.advance()
			index := p.parseSubscriptBody()
			p.expect(lexer.RBRACKET)
			expr = &ast.Subscript{Value: expr, Index: index, Pos: p.pos2(tok)}
		default:
			return expr
		}
	}
}

// parseSubscriptBody parses the comma-separated contents of `[...]`, used
// both for indexing (`xs[0]`) and for parameterized type annotations like
// `Dict[str, int]`, collapsing multiple elements into a Tuple.
func (p *Parser) parseSubscriptBody() ast.Expr {
	first := p.parseExpr()
	if !p.at(lexer.COMMA) {
		return first
	}
	elts := []ast.Expr{first}
	for p.at(lexer.COMMA) {
		p.advance()
		if p.at(lexer.RBRACKET) {
			break
		}
		elts = append(elts, p.parseExpr())
	}
	return &ast.Tuple{Elts: elts, Pos: first.Position()}
}

func (p *Parser) parseAtom() ast.Expr {
	tok := p.cur()
	switch tok.Type {
	case lexer.IDENT:
		p.advance()
		return &ast.Name{Id: tok.Literal, Pos: p.pos2(tok)}
	case lexer.INT:
		p.advance()
		return &ast.Constant{Kind: ast.ConstInt, Int: parseIntLiteral(tok.Literal), Pos: p.pos2(tok)}
	case lexer.FLOAT:
		p.advance()
		return &ast.Constant{Kind: ast.ConstFloat, Float: parseFloatLiteral(tok.Literal), Pos: p.pos2(tok)}
	case lexer.STRING:
		p.advance()
		return &ast.Constant{Kind: ast.ConstString, Str: tok.Literal, Pos: p.pos2(tok)}
	case lexer.TRUE:
		p.advance()
		return &ast.Constant{Kind: ast.ConstBool, Bool: true, Pos: p.pos2(tok)}
	case lexer.FALSE:
		p.advance()
		return &ast.Constant{Kind: ast.ConstBool, Bool: false, Pos: p.pos2(tok)}
	case lexer.NONE:
		p.advance()
		return &ast.Constant{Kind: ast.ConstNone, Pos: p.pos2(tok)}
	case lexer.LPAREN:
		p.advance()
		expr := p.parseExpr()
		if p.at(lexer.COMMA) {
			elts := []ast.Expr{expr}
			for p.at(lexer.COMMA) {
				p.advance()
				if p.at(lexer.RPAREN) {
					break
				}
				elts = append(elts, p.parseExpr())
			}
			p.expect(lexer.RPAREN)
			return &ast.Tuple{Elts: elts, Pos: p.pos2(tok)}
		}
		p.expect(lexer.RPAREN)
		return expr
	case lexer.LBRACKET:
		return p.parseListDisplay()
	case lexer.LBRACE:
		return p.parseDictDisplay()
	default:
		p.errorf("unexpected token %s %q in expression", tok.Type, tok.Literal)
		p.advance()
		return &ast.Constant{Kind: ast.ConstNone, Pos: p.pos2(tok)}
	}
}

func (p *Parser) parseListDisplay() ast.Expr {
	start := p.expect(lexer.LBRACKET)
	if p.at(lexer.RBRACKET) {
		p.advance()
		return &ast.ListExpr{Pos: p.pos2(start)}
	}
	first := p.parseExpr()
	if p.at(lexer.FOR) {
		p.advance()
		target := p.parseAtomTrailer()
		p.expect(lexer.IN)
		iter := p.parseExpr()
		p.expect(lexer.RBRACKET)
		return &ast.ListComp{Elt: first, Target: target, Iter: iter, Pos: p.pos2(start)}
	}
	elts := []ast.Expr{first}
	for p.at(lexer.COMMA) {
		p.advance()
		if p.at(lexer.RBRACKET) {
			break
		}
		elts = append(elts, p.parseExpr())
	}
	p.expect(lexer.RBRACKET)
	return &ast.ListExpr{Elts: elts, Pos: p.pos2(start)}
}

func (p *Parser) parseDictDisplay() ast.Expr {
	start := p.expect(lexer.LBRACE)
	node := &ast.DictExpr{Pos: p.pos2(start)}
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		key := p.parseExpr()
		p.expect(lexer.COLON)
		val := p.parseExpr()
		node.Keys = append(node.Keys, key)
		node.Values = append(node.Values, val)
		if p.at(lexer.COMMA) {
			p.advance()
		}
	}
	p.expect(lexer.RBRACE)
	return node
}

func parseIntLiteral(s string) int64 {
	var n int64
	for _, r := range s {
		n = n*10 + int64(r-'0')
	}
	return n
}

func parseFloatLiteral(s string) float64 {
	var intPart, fracPart float64
	var frac, fracDiv float64 = 0, 1
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		intPart = intPart*10 + float64(s[i]-'0')
		i++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			frac = frac*10 + float64(s[i]-'0')
			fracDiv *= 10
			i++
		}
		fracPart = frac / fracDiv
	}
	value := intPart + fracPart
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		sign := 1.0
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			if s[i] == '-' {
				sign = -1
			}
			i++
		}
		exp := 0.0
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			exp = exp*10 + float64(s[i]-'0')
			i++
		}
		mult := 1.0
		for n := 0; n < int(exp); n++ {
			mult *= 10
		}
		if sign < 0 {
			value = value / mult
		} else {
			value = value * mult
		}
	}
	return value
}
