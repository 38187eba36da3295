package parser

import (
	"fmt"

	"github.com/kolkov/ucc/internal/ast"
	"github.com/kolkov/ucc/internal/diag"
	"github.com/kolkov/ucc/internal/lexer"
	"github.com/kolkov/ucc/internal/token"
	"github.com/kolkov/ucc/internal/types"
)

// Parser holds the state of one compilation. It is created by Parse and
// discarded when parsing ends.
type Parser struct {
	toks []token.Token // Token sequence, always EOF-terminated
	pos  int           // Cursor into toks
	prog *ast.Program

	scope  []*ast.Var // Visible locals, innermost last
	locals []*ast.Var // Every local of the current function, in declaration order

	strSeq int // Sequence number for string literal labels
}

// Parse parses a token sequence into a typed Program. Parsing stops at
// the first error, which is returned as a *diag.Error.
func Parse(toks []token.Token) (prog *ast.Program, err error) {
	if len(toks) == 0 || toks[len(toks)-1].Kind != token.EOF {
		return nil, diag.Errorf(diag.Internal, token.NoPos, "token sequence is not terminated")
	}
	defer recoverError(&err)

	p := &Parser{toks: toks, prog: ast.NewProgram()}
	p.program()
	return p.prog, nil
}

// ParseString tokenizes and parses src. filename is attached to positions.
func ParseString(src, filename string) (*ast.Program, error) {
	toks, err := lexer.New(src, filename).Tokenize()
	if err != nil {
		return nil, err
	}
	return Parse(toks)
}

// -----------------------------------------------------------------------------
// Token handling
// -----------------------------------------------------------------------------

func (p *Parser) tok() *token.Token {
	return &p.toks[p.pos]
}

// next advances the cursor. It never moves past EOF.
func (p *Parser) next() {
	if p.toks[p.pos].Kind != token.EOF {
		p.pos++
	}
}

// peek reports whether the current token is s.
func (p *Parser) peek(s string) bool {
	return p.tok().Is(s)
}

// peekAt reports whether the token n positions ahead is s.
func (p *Parser) peekAt(n int, s string) bool {
	i := min(p.pos+n, len(p.toks)-1)
	return p.toks[i].Is(s)
}

// consume advances past s if it is the current token.
func (p *Parser) consume(s string) bool {
	if !p.peek(s) {
		return false
	}
	p.next()
	return true
}

// expect advances past s or aborts.
func (p *Parser) expect(s string) {
	if !p.consume(s) {
		abort(diag.Syntax, p.tok().Pos, "expected '%s'", s)
	}
}

// expectIdent consumes an identifier and returns its token.
func (p *Parser) expectIdent() *token.Token {
	tok := p.tok()
	if tok.Kind != token.IDENT {
		abort(diag.Syntax, tok.Pos, errExpectedIdent)
	}
	p.next()
	return tok
}

// expectNumber consumes an integer literal and returns its value.
func (p *Parser) expectNumber() int64 {
	tok := p.tok()
	if tok.Kind != token.NUM {
		abort(diag.Syntax, tok.Pos, errExpectedNumber)
	}
	p.next()
	return tok.Val
}

func (p *Parser) atEOF() bool {
	return p.tok().Kind == token.EOF
}

func (p *Parser) isTypename() bool {
	return p.peek("int") || p.peek("char")
}

// -----------------------------------------------------------------------------
// Node construction
// -----------------------------------------------------------------------------

func (p *Parser) node(id ast.NodeID) *ast.Node {
	return p.prog.Node(id)
}

func (p *Parser) newNode(kind ast.Kind, pos token.Position) ast.NodeID {
	return p.prog.Add(ast.Node{Kind: kind, Pos: pos})
}

func (p *Parser) newUnary(kind ast.Kind, lhs ast.NodeID, pos token.Position) ast.NodeID {
	return p.prog.Add(ast.Node{Kind: kind, Pos: pos, Lhs: lhs})
}

func (p *Parser) newBinary(kind ast.Kind, lhs, rhs ast.NodeID, pos token.Position) ast.NodeID {
	return p.prog.Add(ast.Node{Kind: kind, Pos: pos, Lhs: lhs, Rhs: rhs})
}

func (p *Parser) newNum(val int64, pos token.Position) ast.NodeID {
	return p.prog.Add(ast.Node{Kind: ast.Num, Pos: pos, Val: val})
}

func (p *Parser) newVarNode(v *ast.Var, pos token.Position) ast.NodeID {
	return p.prog.Add(ast.Node{Kind: ast.VarRef, Pos: pos, Var: v})
}

// -----------------------------------------------------------------------------
// Scopes and variables
// -----------------------------------------------------------------------------

// enterScope returns a marker that leaveScope restores.
func (p *Parser) enterScope() int {
	return len(p.scope)
}

func (p *Parser) leaveScope(mark int) {
	p.scope = p.scope[:mark]
}

// findVar looks name up innermost-first, then among globals.
func (p *Parser) findVar(name string) *ast.Var {
	for i := len(p.scope) - 1; i >= 0; i-- {
		if p.scope[i].Name == name {
			return p.scope[i]
		}
	}
	return p.prog.Global(name)
}

// newLocal registers a local both for lookup and for frame layout.
func (p *Parser) newLocal(tok *token.Token, ty *types.Type) *ast.Var {
	v := &ast.Var{Name: tok.Text, Type: ty, IsLocal: true, Pos: tok.Pos}
	p.scope = append(p.scope, v)
	p.locals = append(p.locals, v)
	return v
}

func (p *Parser) newGlobal(name string, ty *types.Type, pos token.Position) *ast.Var {
	v := &ast.Var{Name: name, Type: ty, Pos: pos}
	p.prog.Globals = append(p.prog.Globals, v)
	return v
}

// newStringLiteral allocates a fresh anonymous global for a literal.
// Identical literals are not shared.
func (p *Parser) newStringLiteral(tok *token.Token) *ast.Var {
	name := fmt.Sprintf(".L.data.%d", p.strSeq)
	p.strSeq++
	v := p.newGlobal(name, types.ArrayOf(types.CharType, len(tok.Str)), tok.Pos)
	v.Contents = tok.Str
	return v
}

// -----------------------------------------------------------------------------
// Top level
// -----------------------------------------------------------------------------

// program = (global-var | function)*
func (p *Parser) program() {
	for !p.atEOF() {
		if p.isFunction() {
			p.prog.Functions = append(p.prog.Functions, p.function())
			continue
		}
		p.globalVar()
	}
}

// isFunction looks ahead for `basetype ident "("` and rewinds the cursor
// regardless of the outcome.
func (p *Parser) isFunction() bool {
	save := p.pos
	defer func() { p.pos = save }()

	p.basetype()
	if p.tok().Kind != token.IDENT {
		return false
	}
	p.next()
	return p.peek("(")
}

// basetype = ("char" | "int") "*"*
func (p *Parser) basetype() *types.Type {
	var ty *types.Type
	switch {
	case p.consume("int"):
		ty = types.IntType
	case p.consume("char"):
		ty = types.CharType
	default:
		abort(diag.Syntax, p.tok().Pos, errExpectedType)
	}
	for p.consume("*") {
		ty = types.PointerTo(ty)
	}
	return ty
}

// typeSuffix = ("[" num "]" type-suffix)?
func (p *Parser) typeSuffix(base *types.Type) *types.Type {
	if !p.peek("[") {
		return base
	}
	p.next()
	pos := p.tok().Pos
	n := p.expectNumber()
	if n == 0 {
		abort(diag.Type, pos, errZeroArrayLen)
	}
	p.expect("]")
	elem := p.typeSuffix(base)
	if n > int64(types.MaxSize/elem.Size) {
		abort(diag.Type, pos, errArrayTooLarge)
	}
	return types.ArrayOf(elem, int(n))
}

// global-var = basetype ident type-suffix ";"
func (p *Parser) globalVar() {
	ty := p.basetype()
	tok := p.expectIdent()
	ty = p.typeSuffix(ty)
	p.expect(";")
	if p.prog.Global(tok.Text) != nil || p.prog.Function(tok.Text) != nil {
		abort(diag.Type, tok.Pos, errRedefinition, tok.Text)
	}
	p.newGlobal(tok.Text, ty, tok.Pos)
}

// function = basetype ident "(" params? ")" "{" stmt* "}"
// params   = param ("," param)*
// param    = basetype ident
func (p *Parser) function() *ast.Function {
	p.basetype()
	tok := p.expectIdent()
	if p.prog.Function(tok.Text) != nil || p.prog.Global(tok.Text) != nil {
		abort(diag.Type, tok.Pos, errRedefinition, tok.Text)
	}

	fn := &ast.Function{Name: tok.Text, Pos: tok.Pos}
	p.locals = nil
	p.scope = nil

	p.expect("(")
	if !p.consume(")") {
		for {
			pos := p.tok().Pos
			ty := p.basetype()
			param := p.newLocal(p.expectIdent(), ty)
			fn.Params = append(fn.Params, param)
			if len(fn.Params) > MaxArgs {
				abort(diag.Syntax, pos, errTooManyArgs)
			}
			if !p.consume(",") {
				break
			}
		}
		p.expect(")")
	}

	p.expect("{")
	for !p.consume("}") {
		fn.Body = append(fn.Body, p.stmt())
	}
	for _, id := range fn.Body {
		addType(p.prog, id)
	}

	frame := 0
	for _, v := range p.locals {
		frame += v.Type.Size
	}
	if frame > types.MaxSize {
		abort(diag.Type, tok.Pos, errFrameTooLarge, tok.Text)
	}

	fn.Locals = p.locals
	p.locals = nil
	p.scope = nil
	return fn
}

// -----------------------------------------------------------------------------
// Statements
// -----------------------------------------------------------------------------

// stmt = "return" expr ";"
//
//	| "if" "(" expr ")" stmt ("else" stmt)?
//	| "while" "(" expr ")" stmt
//	| "for" "(" expr? ";" expr? ";" expr? ")" stmt
//	| "{" stmt* "}"
//	| declaration
//	| expr ";"
func (p *Parser) stmt() ast.NodeID {
	id := p.stmtNoType()
	addType(p.prog, id)
	return id
}

func (p *Parser) stmtNoType() ast.NodeID {
	tok := p.tok()

	if p.consume("return") {
		val := p.expr()
		p.expect(";")
		return p.newUnary(ast.Return, val, tok.Pos)
	}

	if p.consume("if") {
		p.expect("(")
		cond := p.expr()
		p.expect(")")
		then := p.stmt()
		els := ast.NoNode
		if p.consume("else") {
			els = p.stmt()
		}
		return p.prog.Add(ast.Node{Kind: ast.If, Pos: tok.Pos, Cond: cond, Then: then, Else: els})
	}

	if p.consume("while") {
		p.expect("(")
		cond := p.expr()
		p.expect(")")
		then := p.stmt()
		return p.prog.Add(ast.Node{Kind: ast.While, Pos: tok.Pos, Cond: cond, Then: then})
	}

	if p.consume("for") {
		p.expect("(")
		init, cond, inc := ast.NoNode, ast.NoNode, ast.NoNode
		if !p.peek(";") {
			init = p.exprStmt()
		}
		p.expect(";")
		if !p.peek(";") {
			cond = p.expr()
		}
		p.expect(";")
		if !p.peek(")") {
			inc = p.exprStmt()
		}
		p.expect(")")
		then := p.stmt()
		return p.prog.Add(ast.Node{Kind: ast.For, Pos: tok.Pos, Init: init, Cond: cond, Inc: inc, Then: then})
	}

	if p.consume("{") {
		mark := p.enterScope()
		var body []ast.NodeID
		for !p.consume("}") {
			body = append(body, p.stmt())
		}
		p.leaveScope(mark)
		return p.prog.Add(ast.Node{Kind: ast.Block, Pos: tok.Pos, Body: body})
	}

	if p.isTypename() {
		return p.declaration()
	}

	node := p.exprStmt()
	p.expect(";")
	return node
}

// exprStmt wraps an expression whose value is discarded.
func (p *Parser) exprStmt() ast.NodeID {
	pos := p.tok().Pos
	return p.newUnary(ast.ExprStmt, p.expr(), pos)
}

// declaration = basetype ident type-suffix ("=" expr)? ";"
func (p *Parser) declaration() ast.NodeID {
	pos := p.tok().Pos
	ty := p.basetype()
	tok := p.expectIdent()
	ty = p.typeSuffix(ty)
	v := p.newLocal(tok, ty)

	if p.consume(";") {
		return p.newNode(ast.Null, pos)
	}

	eq := p.tok()
	p.expect("=")
	lhs := p.newVarNode(v, tok.Pos)
	rhs := p.expr()
	p.expect(";")
	assign := p.newBinary(ast.Assign, lhs, rhs, eq.Pos)
	return p.newUnary(ast.ExprStmt, assign, pos)
}

// -----------------------------------------------------------------------------
// Expressions
// -----------------------------------------------------------------------------

// expr = assign
func (p *Parser) expr() ast.NodeID {
	return p.assign()
}

// assign = equality ("=" assign)?
func (p *Parser) assign() ast.NodeID {
	node := p.equality()
	if tok := p.tok(); p.consume("=") {
		node = p.newBinary(ast.Assign, node, p.assign(), tok.Pos)
	}
	return node
}

// equality = relational ("==" relational | "!=" relational)*
func (p *Parser) equality() ast.NodeID {
	node := p.relational()
	for {
		tok := p.tok()
		switch {
		case p.consume("=="):
			node = p.newBinary(ast.Eq, node, p.relational(), tok.Pos)
		case p.consume("!="):
			node = p.newBinary(ast.Ne, node, p.relational(), tok.Pos)
		default:
			return node
		}
	}
}

// relational = add ("<" add | "<=" add | ">" add | ">=" add)*
//
// ">" and ">=" are built as "<" and "<=" with swapped operands.
func (p *Parser) relational() ast.NodeID {
	node := p.add()
	for {
		tok := p.tok()
		switch {
		case p.consume("<"):
			node = p.newBinary(ast.Lt, node, p.add(), tok.Pos)
		case p.consume("<="):
			node = p.newBinary(ast.Le, node, p.add(), tok.Pos)
		case p.consume(">"):
			node = p.newBinary(ast.Lt, p.add(), node, tok.Pos)
		case p.consume(">="):
			node = p.newBinary(ast.Le, p.add(), node, tok.Pos)
		default:
			return node
		}
	}
}

// add = mul ("+" mul | "-" mul)*
func (p *Parser) add() ast.NodeID {
	node := p.mul()
	for {
		tok := p.tok()
		switch {
		case p.consume("+"):
			node = p.newAdd(node, p.mul(), tok.Pos)
		case p.consume("-"):
			node = p.newSub(node, p.mul(), tok.Pos)
		default:
			return node
		}
	}
}

// mul = unary ("*" unary | "/" unary)*
func (p *Parser) mul() ast.NodeID {
	node := p.unary()
	for {
		tok := p.tok()
		switch {
		case p.consume("*"):
			node = p.newBinary(ast.Mul, node, p.unary(), tok.Pos)
		case p.consume("/"):
			node = p.newBinary(ast.Div, node, p.unary(), tok.Pos)
		default:
			return node
		}
	}
}

// unary = ("+" | "-" | "*" | "&")? unary
//
//	| postfix
func (p *Parser) unary() ast.NodeID {
	tok := p.tok()
	switch {
	case p.consume("+"):
		return p.unary()
	case p.consume("-"):
		zero := p.newNum(0, tok.Pos)
		return p.newSub(zero, p.unary(), tok.Pos)
	case p.consume("*"):
		return p.newUnary(ast.Deref, p.unary(), tok.Pos)
	case p.consume("&"):
		return p.newUnary(ast.Addr, p.unary(), tok.Pos)
	}
	return p.postfix()
}

// postfix = primary ("[" expr "]")*
//
// x[y] is built as *(x+y).
func (p *Parser) postfix() ast.NodeID {
	node := p.primary()
	for {
		tok := p.tok()
		if !p.consume("[") {
			return node
		}
		idx := p.expr()
		p.expect("]")
		node = p.newUnary(ast.Deref, p.newAdd(node, idx, tok.Pos), tok.Pos)
	}
}

// primary = "(" "{" stmt+ "}" ")"
//
//	| "(" expr ")"
//	| "sizeof" unary
//	| ident ("(" args? ")")?
//	| string-literal
//	| integer-literal
func (p *Parser) primary() ast.NodeID {
	tok := p.tok()

	if p.peek("(") && p.peekAt(1, "{") {
		p.next()
		p.next()
		node := p.stmtExpr(tok)
		p.expect(")")
		return node
	}

	if p.consume("(") {
		node := p.expr()
		p.expect(")")
		return node
	}

	if p.consume("sizeof") {
		operand := p.unary()
		addType(p.prog, operand)
		return p.newNum(int64(p.node(operand).Type.Size), tok.Pos)
	}

	switch tok.Kind {
	case token.IDENT:
		p.next()
		if p.peek("(") {
			return p.funcall(tok)
		}
		v := p.findVar(tok.Text)
		if v == nil {
			abort(diag.Type, tok.Pos, errUndefinedVar)
		}
		return p.newVarNode(v, tok.Pos)
	case token.STR:
		p.next()
		return p.newVarNode(p.newStringLiteral(tok), tok.Pos)
	case token.NUM:
		p.next()
		return p.newNum(tok.Val, tok.Pos)
	}

	abort(diag.Syntax, tok.Pos, errExpectedExpr)
	return ast.NoNode
}

// funcall = ident "(" (assign ("," assign)*)? ")"
func (p *Parser) funcall(name *token.Token) ast.NodeID {
	p.expect("(")
	var args []ast.NodeID
	if !p.consume(")") {
		for {
			pos := p.tok().Pos
			args = append(args, p.assign())
			if len(args) > MaxArgs {
				abort(diag.Syntax, pos, errTooManyArgs)
			}
			if !p.consume(",") {
				break
			}
		}
		p.expect(")")
	}
	return p.prog.Add(ast.Node{Kind: ast.Call, Pos: name.Pos, FuncName: name.Text, Args: args})
}

// stmtExpr parses the statements of "({ ... })" after the opening brace.
// The last statement must be an expression statement; its expression
// becomes the value of the construct.
func (p *Parser) stmtExpr(open *token.Token) ast.NodeID {
	mark := p.enterScope()
	var body []ast.NodeID
	for !p.consume("}") {
		body = append(body, p.stmt())
	}
	p.leaveScope(mark)

	if len(body) == 0 {
		abort(diag.Syntax, open.Pos, errEmptyStmtExpr)
	}
	last := p.node(body[len(body)-1])
	if last.Kind != ast.ExprStmt {
		abort(diag.Type, last.Pos, errVoidStmtExpr)
	}
	value := last.Lhs
	return p.prog.Add(ast.Node{
		Kind:  ast.StmtExpr,
		Pos:   open.Pos,
		Body:  body[:len(body)-1],
		Value: value,
	})
}
