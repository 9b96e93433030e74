// Package parser implements a recursive-descent parser for the compilable
// Python subset. It turns a token stream from internal/lexer into the
// validated syntax tree defined in internal/ast. The grammar it accepts is
// intentionally small: module-level functions and classes, the handful of
// statement forms the specification names, and a conventional
// precedence-climbing expression grammar. Anything outside that grammar is
// reported as a parse error rather than silently accepted.
package parser

import (
	"fmt"

	"github.com/sunholo/pywasmc/internal/ast"
	"github.com/sunholo/pywasmc/internal/lexer"
)

// ParseError is one parse failure with its source location.
type ParseError struct {
	Message string
	Line    int
	Column  int
	File    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
}

// Parser consumes a token stream and builds an ast.File.
type Parser struct {
	file   string
	toks   []lexer.Token
	pos    int
	errors []*ParseError
}

// New builds a Parser over src, normalizing it (BOM strip, NFC) before
// tokenizing so lexically equivalent source in different encodings
// produces identical token streams.
func New(file string, src []byte) *Parser {
	l := lexer.New(file, lexer.Normalize(src))
	toks := lexer.TokenizeAll(l)
	p := &Parser{file: file, toks: toks}
	for _, msg := range l.Errors() {
		p.errors = append(p.errors, &ParseError{Message: msg, File: file})
	}
	return p
}

// Errors returns every parse error collected during ParseFile.
func (p *Parser) Errors() []*ParseError { return p.errors }

func (p *Parser) cur() lexer.Token  { return p.toks[p.pos] }
func (p *Parser) peek() lexer.Token {
	if p.pos+1 < len(p.toks) {
		return p.toks[p.pos+1]
	}
	return p.toks[len(p.toks)-1]
}

func (p *Parser) advance() lexer.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) at(tt lexer.TokenType) bool { return p.cur().Type == tt }

func (p *Parser) errorf(format string, args ...interface{}) {
	t := p.cur()
	p.errors = append(p.errors, &ParseError{
		Message: fmt.Sprintf(format, args...),
		Line:    t.Line,
		Column:  t.Column,
		File:    p.file,
	})
}

func (p *Parser) expect(tt lexer.TokenType) lexer.Token {
	if p.cur().Type != tt {
		p.errorf("expected %s, got %s %q", tt, p.cur().Type, p.cur().Literal)
		return p.cur()
	}
	return p.advance()
}

func (p *Parser) pos2(t lexer.Token) ast.Pos {
	return ast.Pos{File: p.file, Line: t.Line, Column: t.Column}
}

// skipNewlines consumes any run of blank NEWLINE tokens, which appear
// between top-level statements and inside blocks.
func (p *Parser) skipNewlines() {
	for p.at(lexer.NEWLINE) {
		p.advance()
	}
}

// ParseFile parses an entire source file into an ast.File. Parse errors are
// recorded via Errors rather than returned, matching the scanner's own
// error-accumulation style so the driver can report everything found in one
// pass.
func (p *Parser) ParseFile() *ast.File {
	start := p.cur()
	f := &ast.File{Path: p.file, Pos: p.pos2(start)}
	p.skipNewlines()
	for !p.at(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			f.Body = append(f.Body, stmt)
		}
		p.skipNewlines()
	}
	return f
}

func (p *Parser) parseBlock() []ast.Stmt {
	p.expect(lexer.COLON)
	if !p.at(lexer.NEWLINE) {
		// Single-line suite: `def f(): return x`
		stmt := p.parseSimpleStmtLine()
		return stmt
	}
	p.advance() // NEWLINE
	p.expect(lexer.INDENT)
	var body []ast.Stmt
	for !p.at(lexer.DEDENT) && !p.at(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			body = append(body, stmt)
		}
		p.skipNewlines()
	}
	p.expect(lexer.DEDENT)
	return body
}

func (p *Parser) parseStatement() ast.Stmt {
	switch p.cur().Type {
	case lexer.AT:
		return p.parseDecorated()
	case lexer.DEF:
		return p.parseFunctionDef(nil)
	case lexer.CLASS:
		return p.parseClassDef(nil)
	case lexer.IF:
		return p.parseIf()
	case lexer.WHILE:
		return p.parseWhile()
	case lexer.FOR:
		return p.parseFor()
	case lexer.TRY:
		return p.parseTry()
	case lexer.WITH:
		return p.parseWith()
	default:
		stmt := p.parseSimpleStmt()
		if p.at(lexer.NEWLINE) {
			p.advance()
		}
		return stmt
	}
}

func (p *Parser) parseDecorated() ast.Stmt {
	var decorators []ast.Expr
	for p.at(lexer.AT) {
		p.advance()
		decorators = append(decorators, p.parseExpr())
		if p.at(lexer.NEWLINE) {
			p.advance()
		}
	}
	switch p.cur().Type {
	case lexer.DEF:
		return p.parseFunctionDef(decorators)
	case lexer.CLASS:
		return p.parseClassDef(decorators)
	default:
		p.errorf("expected function or class definition after decorator")
		return nil
	}
}

func (p *Parser) parseFunctionDef(decorators []ast.Expr) ast.Stmt {
	start := p.expect(lexer.DEF)
	name := p.expect(lexer.IDENT)
	p.expect(lexer.LPAREN)
	var params []*ast.Param
	for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
		pt := p.cur()
		pname := p.expect(lexer.IDENT)
		param := &ast.Param{Name: pname.Literal, Pos: p.pos2(pt)}
		if p.at(lexer.COLON) {
			p.advance()
			param.Annotation = p.parseExpr()
		}
		if p.at(lexer.ASSIGN) {
			p.advance()
			param.Default = p.parseExpr()
		}
		params = append(params, param)
		if p.at(lexer.COMMA) {
			p.advance()
		}
	}
	p.expect(lexer.RPAREN)
	var returns ast.Expr
	if p.at(lexer.ARROW) {
		p.advance()
		returns = p.parseExpr()
	}
	body := p.parseBlock()
	return &ast.FunctionDef{
		Name:       name.Literal,
		Params:     params,
		Returns:    returns,
		Decorators: decorators,
		Body:       body,
		Pos:        p.pos2(start),
	}
}

func (p *Parser) parseClassDef(decorators []ast.Expr) ast.Stmt {
	start := p.expect(lexer.CLASS)
	name := p.expect(lexer.IDENT)
	var bases []ast.Expr
	if p.at(lexer.LPAREN) {
		p.advance()
		for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
			bases = append(bases, p.parseExpr())
			if p.at(lexer.COMMA) {
				p.advance()
			}
		}
		p.expect(lexer.RPAREN)
	}
	body := p.parseBlock()
	return &ast.ClassDef{Name: name.Literal, Bases: bases, Decorators: decorators, Body: body, Pos: p.pos2(start)}
}

func (p *Parser) parseIf() ast.Stmt {
	start := p.expect(lexer.IF)
	test := p.parseExpr()
	body := p.parseBlock()
	node := &ast.If{Test: test, Body: body, Pos: p.pos2(start)}
	switch p.cur().Type {
	case lexer.ELIF:
		elifTok := p.cur()
		p.advance()
		test2 := p.parseExpr()
		body2 := p.parseBlock()
		nested := &ast.If{Test: test2, Body: body2, Pos: p.pos2(elifTok)}
		node.Orelse = p.continueElif(nested)
	case lexer.ELSE:
		p.advance()
		node.Orelse = p.parseBlock()
	}
	return node
}

// continueElif recursively parses any further elif/else clauses attached to
// an already-parsed elif and returns a single-element Orelse slice wrapping
// it, matching Python's elif-as-nested-if desugaring.
func (p *Parser) continueElif(nested *ast.If) []ast.Stmt {
	switch p.cur().Type {
	case lexer.ELIF:
		elifTok := p.cur()
		p.advance()
		test := p.parseExpr()
		body := p.parseBlock()
		inner := &ast.If{Test: test, Body: body, Pos: p.pos2(elifTok)}
		nested.Orelse = p.continueElif(inner)
	case lexer.ELSE:
		p.advance()
		nested.Orelse = p.parseBlock()
	}
	return []ast.Stmt{nested}
}

func (p *Parser) parseWhile() ast.Stmt {
	start := p.expect(lexer.WHILE)
	test := p.parseExpr()
	body := p.parseBlock()
	node := &ast.While{Test: test, Body: body, Pos: p.pos2(start)}
	if p.at(lexer.ELSE) {
		p.advance()
		node.Orelse = p.parseBlock()
	}
	return node
}

func (p *Parser) parseFor() ast.Stmt {
	start := p.expect(lexer.FOR)
	target := p.parseAtomTrailer()
	p.expect(lexer.IN)
	iter := p.parseExpr()
	body := p.parseBlock()
	node := &ast.For{Target: target, Iter: iter, Body: body, Pos: p.pos2(start)}
	if p.at(lexer.ELSE) {
		p.advance()
		node.Orelse = p.parseBlock()
	}
	return node
}

func (p *Parser) parseTry() ast.Stmt {
	start := p.expect(lexer.TRY)
	body := p.parseBlock()
	node := &ast.Try{Body: body, Pos: p.pos2(start)}
	for p.at(lexer.EXCEPT) {
		exTok := p.cur()
		p.advance()
		h := &ast.ExceptHandler{Pos: p.pos2(exTok)}
		if !p.at(lexer.COLON) {
			h.Type = p.parseExpr()
			if p.at(lexer.AS) {
				p.advance()
				h.Name = p.expect(lexer.IDENT).Literal
			}
		}
		h.Body = p.parseBlock()
		node.Handlers = append(node.Handlers, h)
	}
	if p.at(lexer.FINALLY) {
		p.advance()
		node.Finally = p.parseBlock()
	}
	return node
}

func (p *Parser) parseWith() ast.Stmt {
	start := p.expect(lexer.WITH)
	ctx := p.parseExpr()
	node := &ast.With{Ctx: ctx, Pos: p.pos2(start)}
	if p.at(lexer.AS) {
		p.advance()
		node.Name = p.expect(lexer.IDENT).Literal
	}
	node.Body = p.parseBlock()
	return node
}

// parseSimpleStmtLine parses a single simple statement and its trailing
// NEWLINE, used for one-line suites like `def f(): return x`.
func (p *Parser) parseSimpleStmtLine() []ast.Stmt {
	stmt := p.parseSimpleStmt()
	if p.at(lexer.NEWLINE) {
		p.advance()
	}
	return []ast.Stmt{stmt}
}

func (p *Parser) parseSimpleStmt() ast.Stmt {
	start := p.cur()
	switch p.cur().Type {
	case lexer.RETURN:
		p.advance()
		node := &ast.Return{Pos: p.pos2(start)}
		if !p.at(lexer.NEWLINE) && !p.at(lexer.EOF) {
			node.Value = p.parseExpr()
		}
		return node
	case lexer.PASS:
		p.advance()
		return &ast.Pass{Pos: p.pos2(start)}
	case lexer.IMPORT:
		return p.parseImport()
	case lexer.FROM:
		return p.parseImportFrom()
	default:
		return p.parseExprOrAssignStmt()
	}
}

func (p *Parser) parseImport() ast.Stmt {
	start := p.expect(lexer.IMPORT)
	node := &ast.Import{Pos: p.pos2(start)}
	for {
		name := p.parseDottedName()
		alias := &ast.ImportAlias{Name: name}
		if p.at(lexer.AS) {
			p.advance()
			alias.AsName = p.expect(lexer.IDENT).Literal
		}
		node.Names = append(node.Names, alias)
		if p.at(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	return node
}

func (p *Parser) parseImportFrom() ast.Stmt {
	start := p.expect(lexer.FROM)
	level := 0
	for p.at(lexer.DOT) {
		level++
		p.advance()
	}
	module := ""
	if p.at(lexer.IDENT) {
		module = p.parseDottedName()
	}
	p.expect(lexer.IMPORT)
	node := &ast.ImportFrom{Module: module, Level: level, Pos: p.pos2(start)}
	if p.at(lexer.STAR) {
		node.Star = true
		p.advance()
		return node
	}
	paren := false
	if p.at(lexer.LPAREN) {
		paren = true
		p.advance()
	}
	for {
		name := p.expect(lexer.IDENT)
		alias := &ast.ImportAlias{Name: name.Literal}
		if p.at(lexer.AS) {
			p.advance()
			alias.AsName = p.expect(lexer.IDENT).Literal
		}
		node.Names = append(node.Names, alias)
		if p.at(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if paren {
		p.expect(lexer.RPAREN)
	}
	return node
}

func (p *Parser) parseDottedName() string {
	name := p.expect(lexer.IDENT).Literal
	for p.at(lexer.DOT) {
		p.advance()
		name += "." + p.expect(lexer.IDENT).Literal
	}
	return name
}

// parseExprOrAssignStmt parses whichever of Assign/AnnAssign/AugAssign/
// ExprStmt the leading expression turns out to be the start of.
func (p *Parser) parseExprOrAssignStmt() ast.Stmt {
	start := p.cur()
	target := p.parseExpr()

	if p.at(lexer.COLON) {
		p.advance()
		annotation := p.parseExpr()
		node := &ast.AnnAssign{Target: target, Annotation: annotation, Pos: p.pos2(start)}
		if p.at(lexer.ASSIGN) {
			p.advance()
			node.Value = p.parseExpr()
		}
		return node
	}

	if op, ok := augAssignOp(p.cur().Type); ok {
		p.advance()
		value := p.parseExpr()
		return &ast.AugAssign{Target: target, Op: op, Value: value, Pos: p.pos2(start)}
	}

	if p.at(lexer.ASSIGN) {
		p.advance()
		value := p.parseExpr()
		return &ast.Assign{Targets: []ast.Expr{target}, Value: value, Pos: p.pos2(start)}
	}

	return &ast.ExprStmt{Value: target, Pos: p.pos2(start)}
}

func augAssignOp(tt lexer.TokenType) (string, bool) {
	switch tt {
	case lexer.PLUSEQ:
		return "+", true
	case lexer.MINUSEQ:
		return "-", true
	case lexer.STAREQ:
		return "*", true
	case lexer.SLASHEQ:
		return "/", true
	case lexer.PERCENTEQ:
		return "%", true
	default:
		return "", false
	}
}
