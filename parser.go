package main

// Parser produces the AST consumed by the semantic analyzer. There is no
// error recovery: the first syntax error aborts the parse.
type Parser struct {
	lx  *Lexer
	err *SemanticError
}

// ParseProgram parses a whole null-terminated source buffer.
func ParseProgram(input []byte) (*ASTNode, error) {
	lx := NewLexer(input)
	lx.NextToken()
	p := &Parser{lx: lx}
	prog := &ASTNode{Kind: NodeProgram, Line: 1, Col: 1}
	for p.tok().Type != EOF && p.err == nil {
		prog.Children = append(prog.Children, p.parseStatement())
	}
	if p.err != nil {
		return nil, p.err
	}
	return prog, nil
}

// ParseExpressionString parses a single expression (REPL input).
func ParseExpressionString(input []byte) (*ASTNode, error) {
	lx := NewLexer(input)
	lx.NextToken()
	p := &Parser{lx: lx}
	expr := p.parseExpression()
	if p.err != nil {
		return nil, p.err
	}
	return expr, nil
}

func (p *Parser) tok() Token { return p.lx.Tok }

func (p *Parser) next() {
	p.lx.NextToken()
}

// peekType returns the type of the token after the current one without
// consuming anything.
func (p *Parser) peekType() TokenType {
	saved := *p.lx
	p.lx.NextToken()
	t := p.lx.Tok.Type
	*p.lx = saved
	return t
}

func (p *Parser) fail(format string, args ...interface{}) {
	if p.err == nil {
		p.err = semErrorf(p.tok().Line, p.tok().Col, format, args...)
	}
}

// expect consumes the current token, recording an error if it does not match.
func (p *Parser) expect(tt TokenType) Token {
	tok := p.tok()
	if tok.Type != tt {
		p.fail("expected %s, got %s", string(tt), string(tok.Type))
	}
	if tok.Type != EOF {
		p.next()
	}
	return tok
}

func (p *Parser) accept(tt TokenType) bool {
	if p.tok().Type == tt {
		p.next()
		return true
	}
	return false
}

func (p *Parser) at(kind NodeKind) *ASTNode {
	return &ASTNode{Kind: kind, Line: p.tok().Line, Col: p.tok().Col}
}

// ---------------------------------------------------------------------------
// statements
// ---------------------------------------------------------------------------

func (p *Parser) parseStatement() *ASTNode {
	switch p.tok().Type {
	case LET, CONST:
		return p.parseVarDecl()
	case FN:
		return p.parseFuncDecl(false)
	case ASYNC:
		p.next()
		if p.tok().Type != FN {
			p.fail("expected fn after async")
			return &ASTNode{}
		}
		return p.parseFuncDecl(true)
	case CLASS:
		return p.parseClassDecl()
	case INTERFACE:
		return p.parseInterfaceDecl()
	case ENUM:
		return p.parseEnumDecl()
	case TYPE:
		return p.parseTypeAlias()
	case EXPORT:
		return p.parseExport()
	case IF:
		return p.parseIf()
	case WHILE:
		return p.parseWhile()
	case DO:
		return p.parseDoWhile()
	case FOR:
		return p.parseFor()
	case SWITCH:
		return p.parseSwitch()
	case TRY:
		return p.parseTry()
	case BREAK:
		node := p.at(NodeBreak)
		p.next()
		p.accept(SEMICOLON)
		return node
	case CONTINUE:
		node := p.at(NodeContinue)
		p.next()
		p.accept(SEMICOLON)
		return node
	case RETURN:
		node := p.at(NodeReturn)
		p.next()
		if p.tok().Type != SEMICOLON && p.tok().Type != RBRACE && p.tok().Type != EOF {
			node.Children = append(node.Children, p.parseExpression())
		}
		p.accept(SEMICOLON)
		return node
	case LBRACE:
		return p.parseBlock()
	default:
		expr := p.parseExpression()
		p.accept(SEMICOLON)
		return expr
	}
}

func (p *Parser) parseBlock() *ASTNode {
	block := p.at(NodeBlock)
	p.expect(LBRACE)
	for p.tok().Type != RBRACE && p.tok().Type != EOF && p.err == nil {
		block.Children = append(block.Children, p.parseStatement())
	}
	p.expect(RBRACE)
	return block
}

func (p *Parser) parseVarDecl() *ASTNode {
	node := p.at(NodeLet)
	node.IsConst = p.tok().Type == CONST
	p.next()
	node.String = p.expect(IDENT).Literal
	if p.accept(COLON) {
		node.TypeExpr = p.parseType()
	}
	if p.accept(ASSIGN) {
		node.Children = append(node.Children, p.parseExpression())
	}
	p.accept(SEMICOLON)
	return node
}

func (p *Parser) parseFuncDecl(isAsync bool) *ASTNode {
	node := p.at(NodeFunc)
	node.IsAsync = isAsync
	p.expect(FN)
	node.String = p.expect(IDENT).Literal
	node.TypeParams = p.parseTypeParams()
	node.Params, node.Variadic = p.parseParams()
	if p.accept(COLON) {
		node.TypeExpr = p.parseType()
	}
	node.Children = append(node.Children, p.parseBlock())
	return node
}

func (p *Parser) parseTypeParams() []string {
	if p.tok().Type != LT {
		return nil
	}
	p.next()
	var params []string
	for p.tok().Type != GT && p.tok().Type != EOF && p.err == nil {
		params = append(params, p.expect(IDENT).Literal)
		if !p.accept(COMMA) {
			break
		}
	}
	p.expect(GT)
	return params
}

func (p *Parser) parseParams() ([]Param, bool) {
	p.expect(LPAREN)
	var params []Param
	variadic := false
	for p.tok().Type != RPAREN && p.tok().Type != EOF && p.err == nil {
		if p.accept(ELLIPSIS) {
			variadic = true
		}
		name := p.expect(IDENT).Literal
		var typ *TypeNode
		if p.accept(COLON) {
			typ = p.parseType()
		}
		params = append(params, Param{Name: name, Type: typ})
		if variadic {
			break
		}
		if !p.accept(COMMA) {
			break
		}
	}
	p.expect(RPAREN)
	return params, variadic
}

func (p *Parser) parseClassDecl() *ASTNode {
	node := p.at(NodeClass)
	p.expect(CLASS)
	node.String = p.expect(IDENT).Literal
	node.TypeParams = p.parseTypeParams()
	if p.accept(COLON) {
		// Superclass reference; resolved during hoisting.
		name := p.expect(IDENT).Literal
		node.TypeExpr = &TypeNode{Kind: TypeRef, String: name}
	}
	p.expect(LBRACE)
	for p.tok().Type != RBRACE && p.tok().Type != EOF && p.err == nil {
		node.Children = append(node.Children, p.parseClassMember())
	}
	p.expect(RBRACE)
	return node
}

func (p *Parser) parseClassMember() *ASTNode {
	switch p.tok().Type {
	case CONSTRUCTOR:
		node := p.at(NodeCtor)
		p.next()
		node.Params, node.Variadic = p.parseParams()
		node.Children = append(node.Children, p.parseBlock())
		return node
	case FN:
		return p.parseFuncDecl(false)
	case ASYNC:
		p.next()
		return p.parseFuncDecl(true)
	default:
		node := p.at(NodeProperty)
		node.String = p.expect(IDENT).Literal
		p.expect(COLON)
		node.TypeExpr = p.parseType()
		p.accept(SEMICOLON)
		return node
	}
}

func (p *Parser) parseInterfaceDecl() *ASTNode {
	node := p.at(NodeInterface)
	p.expect(INTERFACE)
	node.String = p.expect(IDENT).Literal
	node.TypeParams = p.parseTypeParams()
	p.expect(LBRACE)
	for p.tok().Type != RBRACE && p.tok().Type != EOF && p.err == nil {
		if p.tok().Type == FN {
			// Method signature without a body.
			sig := p.at(NodeFunc)
			p.next()
			sig.String = p.expect(IDENT).Literal
			sig.Params, sig.Variadic = p.parseParams()
			if p.accept(COLON) {
				sig.TypeExpr = p.parseType()
			}
			p.accept(SEMICOLON)
			node.Children = append(node.Children, sig)
			continue
		}
		member := p.at(NodeProperty)
		member.String = p.expect(IDENT).Literal
		p.expect(COLON)
		member.TypeExpr = p.parseType()
		p.accept(SEMICOLON)
		node.Children = append(node.Children, member)
	}
	p.expect(RBRACE)
	return node
}

func (p *Parser) parseEnumDecl() *ASTNode {
	node := p.at(NodeEnum)
	p.expect(ENUM)
	node.String = p.expect(IDENT).Literal
	p.expect(LBRACE)
	for p.tok().Type != RBRACE && p.tok().Type != EOF && p.err == nil {
		node.Names = append(node.Names, p.expect(IDENT).Literal)
		if !p.accept(COMMA) {
			break
		}
	}
	p.expect(RBRACE)
	return node
}

func (p *Parser) parseTypeAlias() *ASTNode {
	node := p.at(NodeTypeAlias)
	p.expect(TYPE)
	node.String = p.expect(IDENT).Literal
	p.expect(ASSIGN)
	node.TypeExpr = p.parseType()
	p.accept(SEMICOLON)
	return node
}

func (p *Parser) parseExport() *ASTNode {
	node := p.at(NodeExport)
	p.expect(EXPORT)
	if p.tok().Type == LBRACE {
		p.next()
		for p.tok().Type != RBRACE && p.tok().Type != EOF && p.err == nil {
			node.Names = append(node.Names, p.expect(IDENT).Literal)
			if !p.accept(COMMA) {
				break
			}
		}
		p.expect(RBRACE)
		p.accept(SEMICOLON)
		return node
	}
	node.Children = append(node.Children, p.parseStatement())
	return node
}

func (p *Parser) parseIf() *ASTNode {
	node := p.at(NodeIf)
	p.expect(IF)
	p.expect(LPAREN)
	node.Children = append(node.Children, p.parseExpression())
	p.expect(RPAREN)
	node.Children = append(node.Children, p.parseStatement())
	if p.accept(ELSE) {
		node.Children = append(node.Children, p.parseStatement())
	}
	return node
}

func (p *Parser) parseWhile() *ASTNode {
	node := p.at(NodeWhile)
	p.expect(WHILE)
	p.expect(LPAREN)
	node.Children = append(node.Children, p.parseExpression())
	p.expect(RPAREN)
	node.Children = append(node.Children, p.parseStatement())
	return node
}

func (p *Parser) parseDoWhile() *ASTNode {
	node := p.at(NodeDoWhile)
	p.expect(DO)
	body := p.parseStatement()
	p.expect(WHILE)
	p.expect(LPAREN)
	cond := p.parseExpression()
	p.expect(RPAREN)
	p.accept(SEMICOLON)
	node.Children = []*ASTNode{cond, body}
	return node
}

func (p *Parser) parseFor() *ASTNode {
	forTok := p.tok()
	p.expect(FOR)
	p.expect(LPAREN)

	// for (x in e) / for (x of e)
	if p.tok().Type == IDENT {
		if nt := p.peekType(); nt == IN || nt == OF {
			kind := NodeForIn
			if nt == OF {
				kind = NodeForOf
			}
			node := &ASTNode{Kind: kind, Line: forTok.Line, Col: forTok.Col}
			node.String = p.expect(IDENT).Literal
			p.next() // in / of
			node.Children = append(node.Children, p.parseExpression())
			p.expect(RPAREN)
			node.Children = append(node.Children, p.parseStatement())
			return node
		}
	}

	// C-style: for (init; cond; incr) body. Each clause may be empty.
	node := &ASTNode{Kind: NodeFor, Line: forTok.Line, Col: forTok.Col}
	var init, cond, incr *ASTNode
	if p.tok().Type != SEMICOLON {
		if p.tok().Type == LET || p.tok().Type == CONST {
			init = p.parseVarDecl() // consumes its own semicolon
		} else {
			init = p.parseExpression()
			p.expect(SEMICOLON)
		}
	} else {
		p.next()
	}
	if p.tok().Type != SEMICOLON {
		cond = p.parseExpression()
	}
	p.expect(SEMICOLON)
	if p.tok().Type != RPAREN {
		incr = p.parseExpression()
	}
	p.expect(RPAREN)
	body := p.parseStatement()
	node.Children = []*ASTNode{init, cond, incr, body}
	return node
}

func (p *Parser) parseSwitch() *ASTNode {
	node := p.at(NodeSwitch)
	p.expect(SWITCH)
	p.expect(LPAREN)
	node.Children = append(node.Children, p.parseExpression())
	p.expect(RPAREN)
	p.expect(LBRACE)
	for p.tok().Type != RBRACE && p.tok().Type != EOF && p.err == nil {
		caseNode := p.at(NodeCase)
		if p.accept(CASE) {
			caseNode.Children = append(caseNode.Children, p.parseExpression())
		} else {
			p.expect(DEFAULT)
			caseNode.Children = append(caseNode.Children, nil)
		}
		p.expect(COLON)
		for p.tok().Type != CASE && p.tok().Type != DEFAULT && p.tok().Type != RBRACE && p.tok().Type != EOF && p.err == nil {
			caseNode.Children = append(caseNode.Children, p.parseStatement())
		}
		node.Children = append(node.Children, caseNode)
	}
	p.expect(RBRACE)
	return node
}

func (p *Parser) parseTry() *ASTNode {
	node := p.at(NodeTry)
	p.expect(TRY)
	node.Children = append(node.Children, p.parseBlock())

	var catchNode, finallyBlock *ASTNode
	if p.tok().Type == CATCH {
		catchNode = p.at(NodeCatch)
		p.next()
		p.expect(LPAREN)
		catchNode.String = p.expect(IDENT).Literal
		if p.accept(COLON) {
			catchNode.TypeExpr = p.parseType()
		}
		p.expect(RPAREN)
		catchNode.Children = append(catchNode.Children, p.parseBlock())
	}
	if p.accept(FINALLY) {
		finallyBlock = p.parseBlock()
	}
	if catchNode == nil && finallyBlock == nil {
		p.fail("try statement requires catch or finally")
	}
	node.Children = append(node.Children, catchNode, finallyBlock)
	return node
}

// ---------------------------------------------------------------------------
// expressions
// ---------------------------------------------------------------------------

func precedenceOf(tt TokenType) int {
	switch tt {
	case ASSIGN:
		return 1 // assignment has very low precedence
	case OR:
		return 2
	case AND:
		return 3
	case EQ, NOT_EQ:
		return 4
	case LT, GT, LE, GE, INSTANCEOF:
		return 5
	case PLUS, MINUS:
		return 6
	case ASTERISK, SLASH, PERCENT:
		return 7
	default:
		return 0 // not an operator
	}
}

func (p *Parser) parseExpression() *ASTNode {
	return p.parseExpressionWithPrecedence(0)
}

// parseExpressionWithPrecedence implements precedence climbing
func (p *Parser) parseExpressionWithPrecedence(minPrec int) *ASTNode {
	left := p.parseUnary()

	for p.err == nil {
		tt := p.tok().Type
		prec := precedenceOf(tt)
		if prec == 0 || prec < minPrec {
			break
		}
		opTok := p.tok()
		op := opTok.Literal
		if tt == INSTANCEOF {
			op = "instanceof"
		}
		p.next()

		// Assignment is right-associative; everything else left-associative.
		var right *ASTNode
		if tt == ASSIGN {
			right = p.parseExpressionWithPrecedence(prec)
		} else {
			right = p.parseExpressionWithPrecedence(prec + 1)
		}

		left = &ASTNode{
			Kind:     NodeBinary,
			Op:       op,
			Children: []*ASTNode{left, right},
			Line:     opTok.Line,
			Col:      opTok.Col,
		}
	}

	return left
}

func (p *Parser) parseUnary() *ASTNode {
	switch p.tok().Type {
	case BANG, MINUS, TYPEOF, AWAIT:
		node := p.at(NodeUnary)
		switch p.tok().Type {
		case BANG:
			node.Op = "!"
		case MINUS:
			node.Op = "-"
		case TYPEOF:
			node.Op = "typeof"
		case AWAIT:
			node.Op = "await"
		}
		p.next()
		node.Children = append(node.Children, p.parseUnary())
		return node
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() *ASTNode {
	left := p.parsePrimary()
	for p.err == nil {
		switch p.tok().Type {
		case LPAREN:
			call := &ASTNode{Kind: NodeCall, Line: p.tok().Line, Col: p.tok().Col}
			p.next()
			call.Children = append(call.Children, left)
			for p.tok().Type != RPAREN && p.tok().Type != EOF && p.err == nil {
				call.Children = append(call.Children, p.parseExpression())
				if !p.accept(COMMA) {
					break
				}
			}
			p.expect(RPAREN)
			left = call
		case LBRACKET:
			idx := &ASTNode{Kind: NodeIndex, Line: p.tok().Line, Col: p.tok().Col}
			p.next()
			idx.Children = append(idx.Children, left, p.parseExpression())
			p.expect(RBRACKET)
			left = idx
		case DOT:
			member := &ASTNode{Kind: NodeMember, Line: p.tok().Line, Col: p.tok().Col}
			p.next()
			member.String = p.expect(IDENT).Literal
			member.Children = append(member.Children, left)
			left = member
		default:
			return left
		}
	}
	return left
}

func (p *Parser) parsePrimary() *ASTNode {
	tok := p.tok()
	switch tok.Type {
	case INT:
		node := p.at(NodeInteger)
		node.Integer = tok.Int
		p.next()
		return node
	case FLOAT:
		node := p.at(NodeFloat)
		node.Float = tok.Float
		p.next()
		return node
	case STRING:
		node := p.at(NodeString)
		node.String = tok.Literal
		p.next()
		return node
	case TRUE, FALSE:
		node := p.at(NodeBool)
		if tok.Type == TRUE {
			node.Integer = 1
		}
		p.next()
		return node
	case NULL:
		node := p.at(NodeNull)
		p.next()
		return node
	case IDENT:
		node := p.at(NodeIdent)
		node.String = tok.Literal
		p.next()
		return node
	case NEW:
		node := p.at(NodeNew)
		p.next()
		node.String = p.expect(IDENT).Literal
		if p.tok().Type == LT {
			p.next()
			for p.tok().Type != GT && p.tok().Type != EOF && p.err == nil {
				node.TypeArgs = append(node.TypeArgs, p.parseType())
				if !p.accept(COMMA) {
					break
				}
			}
			p.expect(GT)
		}
		p.expect(LPAREN)
		for p.tok().Type != RPAREN && p.tok().Type != EOF && p.err == nil {
			node.Children = append(node.Children, p.parseExpression())
			if !p.accept(COMMA) {
				break
			}
		}
		p.expect(RPAREN)
		return node
	case LPAREN:
		p.next()
		expr := p.parseExpressionWithPrecedence(0)
		p.expect(RPAREN)
		return expr
	case LBRACKET:
		node := p.at(NodeArrayLit)
		p.next()
		for p.tok().Type != RBRACKET && p.tok().Type != EOF && p.err == nil {
			node.Children = append(node.Children, p.parseExpression())
			if !p.accept(COMMA) {
				break
			}
		}
		p.expect(RBRACKET)
		return node
	case LBRACE:
		// Map literal: { key: value, ... } with ident or string keys.
		node := p.at(NodeMapLit)
		p.next()
		for p.tok().Type != RBRACE && p.tok().Type != EOF && p.err == nil {
			var key *ASTNode
			if p.tok().Type == STRING {
				key = p.at(NodeString)
				key.String = p.tok().Literal
				p.next()
			} else {
				key = p.at(NodeString)
				key.String = p.expect(IDENT).Literal
			}
			p.expect(COLON)
			node.Children = append(node.Children, key, p.parseExpression())
			if !p.accept(COMMA) {
				break
			}
		}
		p.expect(RBRACE)
		return node
	default:
		p.fail("unexpected token %s in expression", string(tok.Type))
		if tok.Type != EOF {
			p.next()
		}
		return &ASTNode{Line: tok.Line, Col: tok.Col}
	}
}

// ---------------------------------------------------------------------------
// type expressions
// ---------------------------------------------------------------------------

// parseType parses a type expression into the unresolved TypeNode shapes:
// names that are not built-in primitives become TypeRef placeholders.
func (p *Parser) parseType() *TypeNode {
	first := p.parsePostfixType()
	if p.tok().Type != PIPE {
		return first
	}
	members := []*TypeNode{first}
	for p.accept(PIPE) {
		members = append(members, p.parsePostfixType())
	}
	return &TypeNode{Kind: TypeUnion, Members: members}
}

func (p *Parser) parsePostfixType() *TypeNode {
	t := p.parsePrimaryType()
	for p.err == nil {
		switch p.tok().Type {
		case LBRACKET:
			p.next()
			p.expect(RBRACKET)
			t = &TypeNode{Kind: TypeArray, Child: t}
		case QUESTION:
			p.next()
			t = &TypeNode{Kind: TypeNullable, Child: t}
		default:
			return t
		}
	}
	return t
}

func (p *Parser) parsePrimaryType() *TypeNode {
	tok := p.tok()
	switch tok.Type {
	case LPAREN:
		// Function type: (T1, T2) => R, variadic with a trailing "...".
		p.next()
		fn := &TypeNode{Kind: TypeFunc}
		for p.tok().Type != RPAREN && p.tok().Type != EOF && p.err == nil {
			if p.accept(ELLIPSIS) {
				fn.Variadic = true
			}
			fn.Params = append(fn.Params, p.parseType())
			if fn.Variadic {
				break
			}
			if !p.accept(COMMA) {
				break
			}
		}
		p.expect(RPAREN)
		p.expect(ARROW)
		fn.Return = p.parseType()
		return fn
	case NULL:
		p.next()
		return TypeNull
	case IDENT:
		name := tok.Literal
		p.next()
		switch name {
		case "map":
			p.expect(LT)
			key := p.parseType()
			p.expect(COMMA)
			value := p.parseType()
			p.expect(GT)
			return &TypeNode{Kind: TypeMap, Key: key, Value: value}
		case "future":
			p.expect(LT)
			inner := p.parseType()
			p.expect(GT)
			return &TypeNode{Kind: TypeFuture, Child: inner}
		}
		if prim, ok := primitiveNames[name]; ok {
			return prim
		}
		if p.tok().Type == LT {
			p.next()
			generic := &TypeNode{Kind: TypeGeneric, Base: &TypeNode{Kind: TypeRef, String: name}}
			for p.tok().Type != GT && p.tok().Type != EOF && p.err == nil {
				generic.Args = append(generic.Args, p.parseType())
				if !p.accept(COMMA) {
					break
				}
			}
			p.expect(GT)
			return generic
		}
		return &TypeNode{Kind: TypeRef, String: name}
	default:
		p.fail("expected type, got %s", string(tok.Type))
		if tok.Type != EOF {
			p.next()
		}
		return TypeAny
	}
}
