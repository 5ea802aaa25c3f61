// Package parser implements the recursive-descent, operator-precedence
// parser of spec.md §4.2, turning a token vector into an internal/ast
// tree. Grounded on db47h-ngaro/asm/parser.go's positioned-error
// accumulation and single-error-then-resync recovery style.
package parser

import (
	"strconv"
	"strings"

	"github.com/gmofishsauce/hplc/internal/ast"
	"github.com/gmofishsauce/hplc/internal/diag"
	"github.com/gmofishsauce/hplc/internal/name"
	"github.com/gmofishsauce/hplc/internal/token"
)

// Parser consumes a fixed token vector produced by internal/lexer and
// builds an internal/ast.File.
type Parser struct {
	toks  []token.Token
	pos   int
	diags *diag.Bag
	file  *token.File
}

// New returns a Parser over toks, reporting into diags.
func New(file *token.File, toks []token.Token, diags *diag.Bag) *Parser {
	return &Parser{toks: toks, diags: diags, file: file}
}

func (p *Parser) cur() token.Token { return p.toks[p.pos] }
func (p *Parser) atEOF() bool      { return p.cur().Kind == token.EOF }

func (p *Parser) advance() token.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) check(k token.Kind) bool { return p.cur().Kind == k }

func (p *Parser) accept(k token.Kind) (token.Token, bool) {
	if p.check(k) {
		return p.advance(), true
	}
	return token.Token{}, false
}

// expect consumes a token of kind k, or reports an unexpected-token
// diagnostic naming k as the expected set and resyncs by skipping
// exactly one token (spec.md §4.2 "Error recovery").
func (p *Parser) expect(k token.Kind) (token.Token, bool) {
	if t, ok := p.accept(k); ok {
		return t, true
	}
	p.unexpected(k)
	return token.Token{}, false
}

func (p *Parser) unexpected(expected ...token.Kind) {
	cur := p.cur()
	if cur.Kind == token.EOF {
		p.diags.Add(diag.UnexpectedEOF, cur.Loc, "unexpected end of file")
	} else if len(expected) == 1 {
		p.diags.Add(diag.UnexpectedToken, cur.Loc, "unexpected token %s, expected %s", cur.Kind, expected[0])
	} else {
		p.diags.Add(diag.UnexpectedToken, cur.Loc, "unexpected token %s", cur.Kind)
	}
	if !p.atEOF() {
		p.advance()
	}
}

// stopped reports whether parsing should halt: the error budget is
// exhausted or input is exhausted (spec.md §4.2).
func (p *Parser) stopped() bool { return p.diags.Full() || p.atEOF() }

// ParseFile parses every top-level declaration in the token stream,
// stopping early if the error budget is exhausted.
func (p *Parser) ParseFile(path string) *ast.File {
	f := &ast.File{Path: path}
	for !p.stopped() {
		d := p.parseTopLevelDecl()
		if d != nil {
			f.Decls = append(f.Decls, d)
		}
	}
	return f
}

// parseTopLevelDecl implements spec.md §4.2's top-level grammar:
// import, name :: import, name :: struct, name :: (params) : ret
// (function), name : type [= expr] / name := expr (variable), foreign.
func (p *Parser) parseTopLevelDecl() ast.Stmt {
	start := p.cur()
	switch {
	case p.check(token.KwImport):
		return p.parseImport(name.Empty, start)
	case p.check(token.KwForeign):
		return p.parseForeignBlock(start)
	case p.check(token.Ident):
		return p.parseNamedTopLevelDecl(start)
	default:
		p.unexpected()
		return nil
	}
}

func (p *Parser) parseImport(alias name.Name, start token.Token) ast.Stmt {
	p.advance() // 'import'
	strTok, ok := p.expect(token.StringLit)
	if !ok {
		return nil
	}
	p.expect(token.Semicolon)
	return &ast.ImportStmt{
		StmtBase: ast.NewStmtBase(start.Loc),
		Alias:    alias,
		Path:     strTok.Text,
	}
}

func (p *Parser) parseNamedTopLevelDecl(start token.Token) ast.Stmt {
	ident := p.advance()
	id := name.New(ident.Text)

	if _, ok := p.accept(token.ColonColon); ok {
		switch {
		case p.check(token.KwImport):
			return p.parseImport(id, start)
		case p.check(token.KwStruct):
			return p.parseStructDecl(id, start)
		case p.check(token.LParen):
			return p.parseFuncDecl(id, start)
		default:
			p.unexpected()
			return nil
		}
	}

	if _, ok := p.accept(token.ColonEq); ok {
		val := p.parseExpr()
		p.expect(token.Semicolon)
		return &ast.VarDecl{StmtBase: ast.NewStmtBase(start.Loc), Name: id, Value: val}
	}

	if _, ok := p.accept(token.Colon); ok {
		te := p.parseType()
		var val ast.Expr
		if _, ok := p.accept(token.Assign); ok {
			val = p.parseExpr()
		}
		p.expect(token.Semicolon)
		return &ast.VarDecl{StmtBase: ast.NewStmtBase(start.Loc), Name: id, TE: te, Value: val}
	}

	p.unexpected(token.ColonColon)
	return nil
}

func (p *Parser) parseStructDecl(id name.Name, start token.Token) ast.Stmt {
	p.advance() // 'struct'
	p.expect(token.LBrace)
	var members []ast.StructMember
	for !p.check(token.RBrace) && !p.stopped() {
		mTok, ok := p.expect(token.Ident)
		if !ok {
			continue
		}
		p.expect(token.Colon)
		te := p.parseType()
		p.expect(token.Semicolon)
		members = append(members, ast.StructMember{Name: name.New(mTok.Text), TE: te, Loc: mTok.Loc})
	}
	p.expect(token.RBrace)
	return &ast.StructDecl{StmtBase: ast.NewStmtBase(start.Loc), Name: id, Members: members}
}

func (p *Parser) parseParamList() []ast.Param {
	p.expect(token.LParen)
	var params []ast.Param
	for !p.check(token.RParen) && !p.stopped() {
		pTok, ok := p.expect(token.Ident)
		if !ok {
			continue
		}
		p.expect(token.Colon)
		te := p.parseType()
		params = append(params, ast.Param{Name: name.New(pTok.Text), TE: te, Loc: pTok.Loc})
		if _, ok := p.accept(token.Comma); !ok {
			break
		}
	}
	p.expect(token.RParen)
	return params
}

func (p *Parser) parseFuncDecl(id name.Name, start token.Token) ast.Stmt {
	params := p.parseParamList()
	var retTE *ast.TypeExpr
	if _, ok := p.accept(token.Colon); ok {
		retTE = p.parseType()
	}
	body := p.parseBlock()
	return &ast.FuncDecl{StmtBase: ast.NewStmtBase(start.Loc), Name: id, Params: params, RetTE: retTE, Body: body}
}

func (p *Parser) parseForeignBlock(start token.Token) ast.Stmt {
	p.advance() // 'foreign'
	p.expect(token.LBrace)
	var decls []*ast.ForeignDecl
	for !p.check(token.RBrace) && !p.stopped() {
		idTok, ok := p.expect(token.Ident)
		if !ok {
			continue
		}
		declStart := idTok
		p.expect(token.ColonColon)
		params := p.parseParamList()
		var retTE *ast.TypeExpr
		if _, ok := p.accept(token.Colon); ok {
			retTE = p.parseType()
		}
		p.expect(token.Semicolon)
		decls = append(decls, &ast.ForeignDecl{
			StmtBase: ast.NewStmtBase(declStart.Loc),
			Name:     name.New(idTok.Text),
			Params:   params,
			RetTE:    retTE,
		})
	}
	p.expect(token.RBrace)
	return &ast.ForeignBlock{StmtBase: ast.NewStmtBase(start.Loc), Decls: decls}
}

// parseType implements spec.md §4.2's type grammar: plain names, *T
// (repeatable), []T, and function types (Ts) : R.
func (p *Parser) parseType() *ast.TypeExpr {
	start := p.cur()
	switch {
	case p.check(token.Star):
		p.advance()
		inner := p.parseType()
		return &ast.TypeExpr{Base: ast.NewBase(start.Loc), PointerTo: inner}
	case p.check(token.LBracket):
		p.advance()
		p.expect(token.RBracket)
		inner := p.parseType()
		return &ast.TypeExpr{Base: ast.NewBase(start.Loc), SliceOf: inner}
	case p.check(token.LParen):
		params := p.parseTypeParamList()
		var ret *ast.TypeExpr
		if _, ok := p.accept(token.Colon); ok {
			ret = p.parseType()
		}
		return &ast.TypeExpr{Base: ast.NewBase(start.Loc), FuncParams: params, FuncReturn: ret}
	default:
		idTok, ok := p.accept(token.Ident)
		if !ok {
			// Primitive type keywords parse as identifiers too, so allow
			// any of the reserved type keywords here as a named type.
			idTok = p.primitiveAsIdent()
		}
		return &ast.TypeExpr{Base: ast.NewBase(idTok.Loc), NamedIdent: name.New(idTok.Text)}
	}
}

// primitiveAsIdent accepts a primitive-type keyword token where an
// Ident was expected for a type name, since the lexer classifies
// bool/char/sN/uN/fN/string/void as distinct keyword kinds rather than
// Ident (spec.md §4.1's keyword trie).
func (p *Parser) primitiveAsIdent() token.Token {
	switch p.cur().Kind {
	case token.KwBool, token.KwChar, token.KwString, token.KwVoid,
		token.KwS8, token.KwS16, token.KwS32, token.KwS64,
		token.KwU8, token.KwU16, token.KwU32, token.KwU64,
		token.KwF32, token.KwF64:
		return p.advance()
	}
	p.unexpected(token.Ident)
	return token.Token{Kind: token.Ident, Text: "<error>", Loc: p.cur().Loc}
}

func (p *Parser) parseTypeParamList() []*ast.TypeExpr {
	p.expect(token.LParen)
	var params []*ast.TypeExpr
	for !p.check(token.RParen) && !p.stopped() {
		params = append(params, p.parseType())
		if _, ok := p.accept(token.Comma); !ok {
			break
		}
	}
	p.expect(token.RParen)
	return params
}

// ===== Statements =====

func (p *Parser) parseBlock() *ast.BlockStmt {
	start := p.cur()
	p.expect(token.LBrace)
	var stmts []ast.Stmt
	for !p.check(token.RBrace) && !p.stopped() {
		s := p.parseStmt()
		if s != nil {
			stmts = append(stmts, s)
		}
	}
	p.expect(token.RBrace)
	return &ast.BlockStmt{StmtBase: ast.NewStmtBase(start.Loc), Stmts: stmts}
}

func (p *Parser) parseStmt() ast.Stmt {
	start := p.cur()
	switch {
	case p.check(token.LBrace):
		return p.parseBlock()
	case p.check(token.KwIf):
		return p.parseIf(start)
	case p.check(token.KwWhile):
		return p.parseWhile(start)
	case p.check(token.KwFor):
		return p.parseFor(start)
	case p.check(token.KwReturn):
		return p.parseReturn(start)
	case p.check(token.KwStruct):
		return p.parseStructDecl(name.Empty, start)
	default:
		return p.parseSimpleStmt(start)
	}
}

func (p *Parser) parseIf(start token.Token) ast.Stmt {
	p.advance() // 'if'
	p.expect(token.LParen)
	cond := p.parseExpr()
	p.expect(token.RParen)
	then := p.parseBlock()
	var els ast.Stmt
	if _, ok := p.accept(token.KwElse); ok {
		if p.check(token.KwIf) {
			els = p.parseIf(p.cur())
		} else {
			els = p.parseBlock()
		}
	}
	return &ast.IfStmt{StmtBase: ast.NewStmtBase(start.Loc), Cond: cond, Then: then, Else: els}
}

func (p *Parser) parseWhile(start token.Token) ast.Stmt {
	p.advance() // 'while'
	p.expect(token.LParen)
	cond := p.parseExpr()
	p.expect(token.RParen)
	body := p.parseBlock()
	return &ast.WhileStmt{StmtBase: ast.NewStmtBase(start.Loc), Cond: cond, Body: body}
}

func (p *Parser) parseFor(start token.Token) ast.Stmt {
	p.advance() // 'for'
	p.expect(token.LParen)
	var init *ast.VarDecl
	if !p.check(token.Semicolon) {
		idTok, ok := p.expect(token.Ident)
		if ok {
			id := name.New(idTok.Text)
			if _, ok := p.accept(token.ColonEq); ok {
				val := p.parseExpr()
				init = &ast.VarDecl{StmtBase: ast.NewStmtBase(idTok.Loc), Name: id, Value: val}
			} else if _, ok := p.accept(token.Colon); ok {
				te := p.parseType()
				var val ast.Expr
				if _, ok := p.accept(token.Assign); ok {
					val = p.parseExpr()
				}
				init = &ast.VarDecl{StmtBase: ast.NewStmtBase(idTok.Loc), Name: id, TE: te, Value: val}
			}
		}
	}
	p.expect(token.Semicolon)
	var cond ast.Expr
	if !p.check(token.Semicolon) {
		cond = p.parseExpr()
	}
	p.expect(token.Semicolon)
	var post ast.Expr
	if !p.check(token.RParen) {
		post = p.parseExpr()
	}
	p.expect(token.RParen)
	body := p.parseBlock()
	return &ast.ForStmt{StmtBase: ast.NewStmtBase(start.Loc), Init: init, Cond: cond, Post: post, Body: body}
}

func (p *Parser) parseReturn(start token.Token) ast.Stmt {
	p.advance() // 'return'
	var v ast.Expr
	if !p.check(token.Semicolon) {
		v = p.parseExpr()
	}
	p.expect(token.Semicolon)
	return &ast.ReturnStmt{StmtBase: ast.NewStmtBase(start.Loc), Value: v}
}

// parseSimpleStmt handles break/continue, variable declarations
// (name : type [= expr]; / name := expr;) and expression statements,
// disambiguated by a one-token lookahead after an identifier.
func (p *Parser) parseSimpleStmt(start token.Token) ast.Stmt {
	if _, ok := p.accept(token.KwBreak); ok {
		p.expect(token.Semicolon)
		return &ast.BreakStmt{StmtBase: ast.NewStmtBase(start.Loc)}
	}
	if _, ok := p.accept(token.KwContinue); ok {
		p.expect(token.Semicolon)
		return &ast.ContinueStmt{StmtBase: ast.NewStmtBase(start.Loc)}
	}

	if p.check(token.Ident) {
		save := p.pos
		idTok := p.advance()
		if _, ok := p.accept(token.ColonEq); ok {
			val := p.parseExpr()
			p.expect(token.Semicolon)
			return &ast.VarDecl{StmtBase: ast.NewStmtBase(start.Loc), Name: name.New(idTok.Text), Value: val}
		}
		if _, ok := p.accept(token.Colon); ok {
			te := p.parseType()
			var val ast.Expr
			if _, ok := p.accept(token.Assign); ok {
				val = p.parseExpr()
			}
			p.expect(token.Semicolon)
			return &ast.VarDecl{StmtBase: ast.NewStmtBase(start.Loc), Name: name.New(idTok.Text), TE: te, Value: val}
		}
		p.pos = save
	}

	x := p.parseExpr()
	p.expect(token.Semicolon)
	return &ast.ExprStmt{StmtBase: ast.NewStmtBase(start.Loc), X: x}
}

// ===== Expressions: operator-precedence / precedence climbing =====
//
// The eleven levels of spec.md §4.2's table are implemented as one
// function per level, each calling down to the next-tighter level,
// exactly the chain shape db47h-ngaro/asm's expression parser uses for
// its own (much smaller) operator set.

// parseExpr parses a full expression at the lowest precedence level
// (assignment operators), per spec.md §4.2's table.
func (p *Parser) parseExpr() ast.Expr {
	return p.parseAssign()
}

func (p *Parser) parseAssign() ast.Expr {
	left := p.parseLogOr()
	op, ok := assignOp(p.cur().Kind)
	if !ok {
		return left
	}
	start := p.cur()
	p.advance()
	right := p.parseAssign() // right-associative
	return &ast.BinaryExpr{ExprBase: ast.NewExprBase(start.Loc), Op: op, Left: left, Right: right}
}

func assignOp(k token.Kind) (ast.BinOp, bool) {
	switch k {
	case token.Assign:
		return ast.BinAssign, true
	case token.PlusEq:
		return ast.BinAddAssign, true
	case token.MinusEq:
		return ast.BinSubAssign, true
	case token.StarEq:
		return ast.BinMulAssign, true
	case token.SlashEq:
		return ast.BinDivAssign, true
	case token.PercentEq:
		return ast.BinModAssign, true
	case token.AmpEq:
		return ast.BinAndAssign, true
	case token.CaretEq:
		return ast.BinXorAssign, true
	case token.PipeEq:
		return ast.BinOrAssign, true
	}
	return 0, false
}

// parseLeftAssoc is the shared shape of precedence levels 2-9 except the
// non-associative level 4, which parseEquality handles itself: parse one
// operand at the next-tighter level, then fold in zero or more
// same-precedence operators left-associatively.
func (p *Parser) parseLeftAssoc(next func() ast.Expr, ops map[token.Kind]ast.BinOp) ast.Expr {
	left := next()
	for {
		op, ok := ops[p.cur().Kind]
		if !ok {
			return left
		}
		opTok := p.advance()
		right := next()
		left = &ast.BinaryExpr{ExprBase: ast.NewExprBase(opTok.Loc), Op: op, Left: left, Right: right}
	}
}

var logOrOps = map[token.Kind]ast.BinOp{token.OrOr: ast.BinLogOr}

func (p *Parser) parseLogOr() ast.Expr { return p.parseLeftAssoc(p.parseLogAnd, logOrOps) }

var logAndOps = map[token.Kind]ast.BinOp{token.AndAnd: ast.BinLogAnd}

func (p *Parser) parseLogAnd() ast.Expr { return p.parseLeftAssoc(p.parseEquality, logAndOps) }

var equalityOps = map[token.Kind]ast.BinOp{
	token.Eq: ast.BinEq, token.Neq: ast.BinNeq,
	token.Lt: ast.BinLt, token.Leq: ast.BinLeq,
	token.Gt: ast.BinGt, token.Geq: ast.BinGeq,
}

// parseEquality implements level 4, which spec.md's table marks
// non-associative: a single comparison is parsed and chaining into a
// second comparison operator is rejected rather than silently
// left-associated, since `a < b < c` has no sensible meaning here.
func (p *Parser) parseEquality() ast.Expr {
	left := p.parseBitOr()
	op, ok := equalityOps[p.cur().Kind]
	if !ok {
		return left
	}
	opTok := p.advance()
	right := p.parseBitOr()
	result := ast.Expr(&ast.BinaryExpr{ExprBase: ast.NewExprBase(opTok.Loc), Op: op, Left: left, Right: right})
	if _, ok := equalityOps[p.cur().Kind]; ok {
		p.unexpected()
	}
	return result
}

var bitOrOps = map[token.Kind]ast.BinOp{token.Pipe: ast.BinBitOr, token.Caret: ast.BinBitXor}

func (p *Parser) parseBitOr() ast.Expr { return p.parseLeftAssoc(p.parseBitAnd, bitOrOps) }

var bitAndOps = map[token.Kind]ast.BinOp{token.Amp: ast.BinBitAnd}

func (p *Parser) parseBitAnd() ast.Expr { return p.parseLeftAssoc(p.parseShift, bitAndOps) }

var shiftOps = map[token.Kind]ast.BinOp{token.Shl: ast.BinShl, token.Shr: ast.BinShr}

func (p *Parser) parseShift() ast.Expr { return p.parseLeftAssoc(p.parseAdd, shiftOps) }

var addOps = map[token.Kind]ast.BinOp{token.Plus: ast.BinAdd, token.Minus: ast.BinSub}

func (p *Parser) parseAdd() ast.Expr { return p.parseLeftAssoc(p.parseMul, addOps) }

var mulOps = map[token.Kind]ast.BinOp{token.Star: ast.BinMul, token.Slash: ast.BinDiv, token.Percent: ast.BinMod}

func (p *Parser) parseMul() ast.Expr { return p.parseLeftAssoc(p.parseUnary, mulOps) }

// parseUnary implements level 10: right-associative prefix operators
// `+ - ~ ! & @`.
func (p *Parser) parseUnary() ast.Expr {
	var op ast.UnaryOp
	switch p.cur().Kind {
	case token.Plus:
		op = ast.UnaryPlus
	case token.Minus:
		op = ast.UnaryNeg
	case token.Tilde:
		op = ast.UnaryCompl
	case token.Not:
		op = ast.UnaryNot
	case token.Amp:
		op = ast.UnaryAddr
	case token.At:
		op = ast.UnaryDeref
	default:
		return p.parsePostfix()
	}
	opTok := p.advance()
	operand := p.parseUnary()
	return &ast.UnaryExpr{ExprBase: ast.NewExprBase(opTok.Loc), Op: op, Operand: operand}
}

// parsePostfix implements level 11: call, subscript, member access and
// cast chained left-associatively onto a primary expression.
func (p *Parser) parsePostfix() ast.Expr {
	x := p.parsePrimary()
	for {
		switch {
		case p.check(token.LParen):
			start := p.cur()
			p.advance()
			var args []ast.Expr
			for !p.check(token.RParen) && !p.stopped() {
				args = append(args, p.parseExpr())
				if _, ok := p.accept(token.Comma); !ok {
					break
				}
			}
			p.expect(token.RParen)
			x = &ast.CallExpr{ExprBase: ast.NewExprBase(start.Loc), Callee: x, Args: args}
		case p.check(token.LBracket):
			start := p.cur()
			p.advance()
			idx := p.parseExpr()
			p.expect(token.RBracket)
			x = &ast.IndexExpr{ExprBase: ast.NewExprBase(start.Loc), X: x, Index: idx}
		case p.check(token.Dot):
			start := p.cur()
			p.advance()
			mTok, ok := p.expect(token.Ident)
			if !ok {
				return x
			}
			x = &ast.MemberExpr{ExprBase: ast.NewExprBase(start.Loc), X: x, Member: name.New(mTok.Text)}
		case p.check(token.Arrow):
			start := p.cur()
			p.advance()
			te := p.parseType()
			x = &ast.CastExpr{ExprBase: ast.NewExprBase(start.Loc), Operand: x, TargetTE: te}
		default:
			return x
		}
	}
}

// parsePrimary implements the leaves of the expression grammar:
// literals, parenthesized expressions, identifiers and the supplemented
// `module::member` qualified-access form.
func (p *Parser) parsePrimary() ast.Expr {
	start := p.cur()
	switch start.Kind {
	case token.IntLit:
		p.advance()
		value, explicitUnsigned, err := parseIntLiteral(start.Text)
		if err != nil {
			p.diags.Add(diag.UnexpectedToken, start.Loc, "invalid integer literal %q", start.Text)
		}
		return &ast.IntLit{ExprBase: ast.NewExprBase(start.Loc), Value: value, ExplicitUnsigned: explicitUnsigned}
	case token.FloatLit:
		p.advance()
		value, isSingle, err := parseFloatLiteral(start.Text)
		if err != nil {
			p.diags.Add(diag.UnexpectedToken, start.Loc, "invalid float literal %q", start.Text)
		}
		return &ast.FloatLit{ExprBase: ast.NewExprBase(start.Loc), Value: value, IsSingle: isSingle}
	case token.StringLit:
		p.advance()
		return &ast.StringLit{ExprBase: ast.NewExprBase(start.Loc), Value: start.Text}
	case token.CharLit:
		p.advance()
		var v byte
		if len(start.Text) > 0 {
			v = start.Text[0]
		}
		return &ast.CharLit{ExprBase: ast.NewExprBase(start.Loc), Value: v}
	case token.KwNull:
		p.advance()
		return &ast.NullLit{ExprBase: ast.NewExprBase(start.Loc)}
	case token.Ident:
		p.advance()
		id := name.New(start.Text)
		if _, ok := p.accept(token.ColonColon); ok {
			mTok, ok := p.expect(token.Ident)
			if !ok {
				return &ast.Ident{ExprBase: ast.NewExprBase(start.Loc), Name: id}
			}
			return &ast.ModuleMember{ExprBase: ast.NewExprBase(start.Loc), Module: id, Member: name.New(mTok.Text)}
		}
		return &ast.Ident{ExprBase: ast.NewExprBase(start.Loc), Name: id}
	case token.LParen:
		p.advance()
		x := p.parseExpr()
		p.expect(token.RParen)
		return x
	default:
		p.unexpected()
		return &ast.Ident{ExprBase: ast.NewExprBase(start.Loc), Name: name.Empty}
	}
}

// parseIntLiteral parses an integer literal's text, stripping an
// optional trailing 'u' suffix (spec.md §4.1/§4.3).
func parseIntLiteral(text string) (value uint64, explicitUnsigned bool, err error) {
	t := text
	if strings.HasSuffix(t, "u") {
		explicitUnsigned = true
		t = t[:len(t)-1]
	}
	value, err = strconv.ParseUint(t, 10, 64)
	return
}

// parseFloatLiteral parses a float literal's text, stripping an
// optional trailing 'f' (f32) or 'd' (f64, also the default) suffix.
func parseFloatLiteral(text string) (value float64, isSingle bool, err error) {
	t := text
	switch {
	case strings.HasSuffix(t, "f"):
		isSingle = true
		t = t[:len(t)-1]
	case strings.HasSuffix(t, "d"):
		t = t[:len(t)-1]
	}
	value, err = strconv.ParseFloat(t, 64)
	return
}
