package parser

import (
	"io"
	"unicode"
	"unicode/utf8"
)

type Option func(*Parser)

func WithFile(path string) Option {
	return func(p *Parser) {
		p.file = path
	}
}

func WithComments() Option {
	return func(p *Parser) {
		p.includeComments = true
	}
}

type parseFunc func(*Parser) *Node

// Parser is a recursive-descent parser for the Groovy subset gravel
// understands. Statements end at a semicolon or at a line break that is
// not inside parentheses or brackets.
type Parser struct {
	file            string
	includeComments bool
	reader          io.Reader
	input           []byte
	lexer           *Lexer
	tokens          []Token
	comments        []Token
	pos             int
	nesting         int
	entry           parseFunc
}

func (p *Parser) Comments() []Token {
	return p.comments
}

func ParseCompilationUnit(r io.Reader, opts ...Option) *Parser {
	p := &Parser{
		reader: r,
		entry:  (*Parser).parseCompilationUnit,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func ParseExpression(r io.Reader, opts ...Option) *Parser {
	p := &Parser{
		reader: r,
		entry:  (*Parser).parseExpression,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse is a shorthand for parsing a whole source file held in memory.
func Parse(src []byte, opts ...Option) *Node {
	p := &Parser{
		input: src,
		entry: (*Parser).parseCompilationUnit,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p.Finish()
}

func (p *Parser) readAll() error {
	if p.input != nil {
		return nil
	}
	if p.reader == nil {
		p.input = []byte{}
		return nil
	}
	data, err := io.ReadAll(p.reader)
	if err != nil {
		return err
	}
	p.input = data
	return nil
}

// Finish parses the whole input. Syntax errors are kept in the tree as
// KindError nodes, so a tree is returned for any readable input; nil means
// the reader failed.
func (p *Parser) Finish() *Node {
	if err := p.readAll(); err != nil {
		return nil
	}
	p.lexer = NewLexer(p.input, p.file)
	p.tokens = nil
	p.comments = nil
	p.pos = 0
	p.nesting = 0
	p.tokenize()
	return p.entry(p)
}

func (p *Parser) Reset(r io.Reader) {
	p.reader = r
	p.input = nil
	p.lexer = nil
	p.tokens = nil
	p.comments = nil
	p.pos = 0
	p.nesting = 0
}

func (p *Parser) tokenize() {
	for {
		tok := p.lexer.NextToken()
		if tok.Kind == TokenWhitespace {
			continue
		}
		if tok.Kind == TokenComment || tok.Kind == TokenLineComment {
			if p.includeComments {
				p.comments = append(p.comments, tok)
			}
			continue
		}
		p.tokens = append(p.tokens, tok)
		if tok.Kind == TokenEOF {
			break
		}
	}
}

func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return p.eof()
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekN(n int) Token {
	if p.pos+n >= len(p.tokens) {
		return p.eof()
	}
	return p.tokens[p.pos+n]
}

func (p *Parser) eof() Token {
	if len(p.tokens) > 0 {
		return p.tokens[len(p.tokens)-1]
	}
	return Token{Kind: TokenEOF}
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(kind TokenKind) *Token {
	tok := p.peek()
	if tok.Kind == kind {
		p.advance()
		return &tok
	}
	return nil
}

func (p *Parser) check(kind TokenKind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) match(kinds ...TokenKind) bool {
	for _, kind := range kinds {
		if p.check(kind) {
			return true
		}
	}
	return false
}

// newlineBefore reports whether a significant line break separates the
// current token from the previous one.
func (p *Parser) newlineBefore() bool {
	if p.nesting > 0 || p.pos == 0 || p.pos >= len(p.tokens) {
		return false
	}
	return p.tokens[p.pos].Span.Start.Line > p.tokens[p.pos-1].Span.End.Line
}

func (p *Parser) sameLine() bool {
	return !p.newlineBefore()
}

// mustProgress returns a function that checks if the parser has advanced.
// Call it at the start of a loop iteration, then call the returned function
// at the end; it skips the current token and reports false when stuck.
func (p *Parser) mustProgress() func() bool {
	saved := p.pos
	return func() bool {
		if p.pos == saved {
			if !p.check(TokenEOF) {
				p.advance()
			}
			return false
		}
		return true
	}
}

func (p *Parser) isIdentifierLike() bool {
	switch p.peek().Kind {
	case TokenIdent, TokenTrait:
		return true
	}
	return false
}

func (p *Parser) startNode(kind NodeKind) *Node {
	return &Node{
		Kind: kind,
		Span: Span{Start: p.peek().Span.Start},
	}
}

func (p *Parser) finishNode(n *Node) *Node {
	if p.pos > 0 && p.pos <= len(p.tokens) {
		n.Span.End = p.tokens[p.pos-1].Span.End
	} else if len(p.tokens) > 0 {
		n.Span.End = p.tokens[len(p.tokens)-1].Span.End
	}
	if n.Span.End.Before(n.Span.Start) {
		n.Span.End = n.Span.Start
	}
	return n
}

func leaf(kind NodeKind, tok Token) *Node {
	return &Node{Kind: kind, Token: &tok, Span: tok.Span}
}

func (p *Parser) errorNode(msg string, recoverTo []TokenKind, expected ...TokenKind) *Node {
	tok := p.peek()
	node := &Node{
		Kind: KindError,
		Span: Span{Start: tok.Span.Start, End: tok.Span.End},
		Error: &Error{
			Message:  msg,
			Expected: expected,
			Got:      &tok,
		},
	}
	p.recoverTo(recoverTo)
	return node
}

// recoverTo skips the offending token and then everything up to one of
// kinds. Closing delimiters are left for the enclosing construct.
func (p *Parser) recoverTo(kinds []TokenKind) {
	if p.match(TokenEOF, TokenRBrace, TokenRParen, TokenRBracket) {
		return
	}
	p.advance()
	if len(kinds) == 0 {
		return
	}
	for !p.check(TokenEOF) {
		for _, kind := range kinds {
			if p.check(kind) {
				return
			}
		}
		p.advance()
	}
}

func (p *Parser) endStatement() {
	for p.check(TokenSemicolon) {
		p.advance()
	}
}

// Compilation unit

func (p *Parser) parseCompilationUnit() *Node {
	node := p.startNode(KindCompilationUnit)

	if p.check(TokenPackage) || p.isAnnotatedPackage() {
		node.AddChild(p.parsePackageDecl())
	}

	for {
		p.endStatement()
		if !p.check(TokenImport) {
			break
		}
		node.AddChild(p.parseImportDecl())
	}

	for !p.check(TokenEOF) {
		if p.check(TokenSemicolon) {
			p.advance()
			continue
		}
		progress := p.mustProgress()
		switch {
		case p.check(TokenImport):
			node.AddChild(p.parseImportDecl())
		case p.isTypeDeclStart():
			node.AddChild(p.parseTypeDecl())
		case p.isScriptMethod():
			node.AddChild(p.parseMethodDecl(p.parseModifiers()))
		default:
			node.AddChild(p.parseStatement())
		}
		progress()
	}

	return p.finishNode(node)
}

func (p *Parser) isAnnotatedPackage() bool {
	if !p.check(TokenAt) {
		return false
	}
	save := p.pos
	for p.check(TokenAt) {
		p.parseAnnotation()
	}
	result := p.check(TokenPackage)
	p.pos = save
	return result
}

func (p *Parser) parsePackageDecl() *Node {
	node := p.startNode(KindPackageDecl)

	for p.check(TokenAt) {
		node.AddChild(p.parseAnnotation())
	}

	p.expect(TokenPackage)
	node.AddChild(p.parseQualifiedName())
	p.endStatement()

	return p.finishNode(node)
}

// parseImportDecl produces ImportDecl(static?, QualifiedName, "*"?, alias?).
// The alias identifier follows an "as" keyword.
func (p *Parser) parseImportDecl() *Node {
	node := p.startNode(KindImportDecl)
	p.expect(TokenImport)

	if p.check(TokenStatic) {
		node.AddChild(leaf(KindIdentifier, p.advance()))
	}

	node.AddChild(p.parseQualifiedName())

	if p.check(TokenDot) && p.peekN(1).Kind == TokenStar {
		p.advance()
		node.AddChild(leaf(KindIdentifier, p.advance()))
	} else if p.check(TokenAs) {
		p.advance()
		if tok := p.expect(TokenIdent); tok != nil {
			node.AddChild(leaf(KindIdentifier, *tok))
		}
	}

	p.endStatement()
	return p.finishNode(node)
}

func (p *Parser) parseQualifiedName() *Node {
	node := p.startNode(KindQualifiedName)

	if p.isIdentifierLike() {
		node.AddChild(leaf(KindIdentifier, p.advance()))
	} else {
		return p.errorNode("expected identifier", nil, TokenIdent)
	}

	for p.check(TokenDot) && p.peekN(1).Kind == TokenIdent {
		p.advance()
		node.AddChild(leaf(KindIdentifier, p.advance()))
	}

	return p.finishNode(node)
}

// Type declarations

func (p *Parser) isTypeDeclStart() bool {
	save := p.pos
	defer func() { p.pos = save }()
	p.skipModifiers()
	switch p.peek().Kind {
	case TokenClass, TokenInterface, TokenEnum, TokenTrait:
		return true
	case TokenAt:
		return p.peekN(1).Kind == TokenInterface
	}
	return false
}

func (p *Parser) parseTypeDecl() *Node {
	modifiers := p.parseModifiers()

	switch p.peek().Kind {
	case TokenClass:
		return p.parseClassLike(KindClassDecl, modifiers)
	case TokenInterface:
		return p.parseClassLike(KindInterfaceDecl, modifiers)
	case TokenTrait:
		return p.parseClassLike(KindTraitDecl, modifiers)
	case TokenEnum:
		return p.parseClassLike(KindEnumDecl, modifiers)
	case TokenAt:
		if p.peekN(1).Kind == TokenInterface {
			return p.parseClassLike(KindAnnotationDecl, modifiers)
		}
	}

	return p.errorNode("expected class, interface, enum, trait or @interface", []TokenKind{
		TokenAt, TokenPublic, TokenPrivate, TokenProtected,
		TokenAbstract, TokenStatic, TokenFinal,
		TokenClass, TokenInterface, TokenEnum, TokenTrait,
	})
}

// parseClassLike parses every type definition form. The resulting node has
// the children Modifiers, Identifier, TypeParameters?, ExtendsClause?,
// ImplementsClause? and ClassBody, in that order.
func (p *Parser) parseClassLike(kind NodeKind, modifiers *Node) *Node {
	node := p.startNode(kind)
	if modifiers != nil {
		if len(modifiers.Children) > 0 {
			node.Span.Start = modifiers.Span.Start
		}
		node.AddChild(modifiers)
	}

	if kind == KindAnnotationDecl {
		p.expect(TokenAt)
	}
	p.advance()

	name := ""
	if p.isIdentifierLike() {
		tok := p.advance()
		name = tok.Literal
		node.AddChild(leaf(KindIdentifier, tok))
	} else {
		node.AddChild(p.errorNode("expected type name", []TokenKind{TokenLBrace}, TokenIdent))
	}

	if p.check(TokenLT) {
		node.AddChild(p.parseTypeParameters())
	}

	if p.check(TokenExtends) {
		node.AddChild(p.parseTypeList(KindExtendsClause))
	}

	if p.check(TokenImplements) {
		node.AddChild(p.parseTypeList(KindImplementsClause))
	}

	node.AddChild(p.parseClassBody(name, kind == KindEnumDecl))
	return p.finishNode(node)
}

func (p *Parser) parseTypeList(kind NodeKind) *Node {
	node := p.startNode(kind)
	p.advance()
	for {
		progress := p.mustProgress()
		node.AddChild(p.parseType())
		if !p.check(TokenComma) {
			break
		}
		p.advance()
		if !progress() {
			break
		}
	}
	return p.finishNode(node)
}

func (p *Parser) parseTypeParameters() *Node {
	node := p.startNode(KindTypeParameters)
	p.expect(TokenLT)

	for !p.check(TokenGT) && !p.check(TokenEOF) {
		progress := p.mustProgress()
		node.AddChild(p.parseTypeParameter())
		if !p.check(TokenComma) {
			break
		}
		p.advance()
		if !progress() {
			break
		}
	}

	p.expect(TokenGT)
	return p.finishNode(node)
}

func (p *Parser) parseTypeParameter() *Node {
	node := p.startNode(KindTypeParameter)

	for p.check(TokenAt) {
		node.AddChild(p.parseAnnotation())
	}

	if tok := p.expect(TokenIdent); tok != nil {
		node.AddChild(leaf(KindIdentifier, *tok))
	} else {
		return p.errorNode("expected type parameter", []TokenKind{TokenComma, TokenGT}, TokenIdent)
	}

	if p.check(TokenExtends) {
		p.advance()
		for {
			node.AddChild(p.parseType())
			if !p.check(TokenBitAnd) {
				break
			}
			p.advance()
		}
	}

	return p.finishNode(node)
}

func (p *Parser) parseClassBody(className string, isEnum bool) *Node {
	node := p.startNode(KindClassBody)
	if p.expect(TokenLBrace) == nil {
		return p.errorNode("expected '{'", nil, TokenLBrace)
	}

	saved := p.nesting
	p.nesting = 0
	defer func() { p.nesting = saved }()

	if isEnum {
		p.parseEnumConstants(node)
	}

	for !p.check(TokenRBrace) && !p.check(TokenEOF) {
		progress := p.mustProgress()
		node.AddChild(p.parseClassMember(className))
		progress()
	}

	p.expect(TokenRBrace)
	return p.finishNode(node)
}

func (p *Parser) parseEnumConstants(body *Node) {
	for p.isIdentifierLike() && p.isEnumConstantStart() {
		progress := p.mustProgress()
		body.AddChild(p.parseEnumConstant())
		if p.check(TokenComma) {
			p.advance()
		}
		if !progress() {
			break
		}
	}
	p.endStatement()
}

// isEnumConstantStart distinguishes "A," or "A(1)" from a member such as
// "String label".
func (p *Parser) isEnumConstantStart() bool {
	switch p.peekN(1).Kind {
	case TokenComma, TokenSemicolon, TokenRBrace, TokenLBrace, TokenLParen:
		return true
	}
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1].Span.Start.Line > p.tokens[p.pos].Span.End.Line
	}
	return false
}

func (p *Parser) parseEnumConstant() *Node {
	node := p.startNode(KindEnumConstant)

	for p.check(TokenAt) {
		node.AddChild(p.parseAnnotation())
	}

	if p.isIdentifierLike() {
		node.AddChild(leaf(KindIdentifier, p.advance()))
	} else {
		return p.errorNode("expected enum constant", []TokenKind{TokenComma, TokenSemicolon, TokenRBrace})
	}

	if p.check(TokenLParen) {
		node.AddChild(p.parseArguments())
	}

	if p.check(TokenLBrace) {
		node.AddChild(p.parseClassBody("", false))
	}

	return p.finishNode(node)
}

func (p *Parser) parseClassMember(className string) *Node {
	if p.check(TokenLBrace) {
		return p.parseBlock()
	}

	if p.check(TokenStatic) && p.peekN(1).Kind == TokenLBrace {
		node := p.startNode(KindBlock)
		node.AddChild(leaf(KindIdentifier, p.advance()))
		node.AddChild(p.parseBlock())
		return p.finishNode(node)
	}

	if p.check(TokenSemicolon) {
		node := p.startNode(KindEmptyStmt)
		p.advance()
		return p.finishNode(node)
	}

	modifiers := p.parseModifiers()

	switch p.peek().Kind {
	case TokenClass:
		return p.parseClassLike(KindClassDecl, modifiers)
	case TokenInterface:
		return p.parseClassLike(KindInterfaceDecl, modifiers)
	case TokenTrait:
		if p.peekN(1).Kind == TokenIdent {
			return p.parseClassLike(KindTraitDecl, modifiers)
		}
	case TokenEnum:
		return p.parseClassLike(KindEnumDecl, modifiers)
	case TokenAt:
		if p.peekN(1).Kind == TokenInterface {
			return p.parseClassLike(KindAnnotationDecl, modifiers)
		}
	}

	var typeParams *Node
	if p.check(TokenLT) {
		typeParams = p.parseTypeParameters()
	}

	if p.isIdentifierLike() && p.peekN(1).Kind == TokenLParen {
		if className != "" && p.peek().Literal == className {
			return p.parseConstructor(modifiers, typeParams)
		}
		return p.parseMethod(modifiers, typeParams, nil)
	}

	// "def x = 1" or "static count": a field without a declared type.
	if hasModifiers(modifiers) && p.isIdentifierLike() && typeParams == nil && p.endsDeclarator(1) {
		return p.parseField(modifiers, nil)
	}

	if !p.isTypeStart() {
		return p.errorNode("expected member declaration", memberRecovery)
	}

	typ := p.parseType()

	if p.isIdentifierLike() {
		if p.peekN(1).Kind == TokenLParen {
			return p.parseMethod(modifiers, typeParams, typ)
		}
		return p.parseField(modifiers, typ)
	}

	return p.errorNode("expected member name", memberRecovery, TokenIdent)
}

var memberRecovery = []TokenKind{
	TokenAt, TokenPublic, TokenPrivate, TokenProtected,
	TokenAbstract, TokenStatic, TokenFinal, TokenDef,
	TokenClass, TokenInterface, TokenEnum, TokenTrait,
	TokenVoid, TokenBoolean, TokenByte, TokenChar, TokenShort,
	TokenInt, TokenLong, TokenFloat, TokenDouble, TokenRBrace,
}

func hasModifiers(modifiers *Node) bool {
	return modifiers != nil && len(modifiers.Children) > 0
}

// endsDeclarator reports whether the token at offset n ends a declarator
// name: an initializer, a separator or the end of the statement.
func (p *Parser) endsDeclarator(n int) bool {
	next := p.peekN(n)
	switch next.Kind {
	case TokenAssign, TokenComma, TokenSemicolon, TokenRBrace, TokenEOF:
		return true
	}
	prev := p.peekN(n - 1)
	return p.nesting == 0 && next.Span.Start.Line > prev.Span.End.Line
}

func (p *Parser) skipModifiers() {
	for {
		switch p.peek().Kind {
		case TokenAt:
			if p.peekN(1).Kind == TokenInterface {
				return
			}
			p.parseAnnotation()
		case TokenPublic, TokenProtected, TokenPrivate,
			TokenAbstract, TokenStatic, TokenFinal, TokenDef:
			p.advance()
		default:
			return
		}
	}
}

// parseModifiers collects annotations, access modifiers and "def".
func (p *Parser) parseModifiers() *Node {
	node := p.startNode(KindModifiers)

	for {
		switch p.peek().Kind {
		case TokenAt:
			if p.peekN(1).Kind == TokenInterface {
				return p.finishNode(node)
			}
			node.AddChild(p.parseAnnotation())
		case TokenPublic, TokenProtected, TokenPrivate,
			TokenAbstract, TokenStatic, TokenFinal, TokenDef:
			node.AddChild(leaf(KindIdentifier, p.advance()))
		default:
			if len(node.Children) == 0 {
				node.Span.End = node.Span.Start
				return node
			}
			return p.finishNode(node)
		}
	}
}

func (p *Parser) parseAnnotation() *Node {
	node := p.startNode(KindAnnotation)
	p.expect(TokenAt)
	node.AddChild(p.parseQualifiedName())

	if p.check(TokenLParen) && p.sameLine() {
		node.AddChild(p.parseArguments())
	}

	return p.finishNode(node)
}

// Members

func (p *Parser) parseConstructor(modifiers, typeParams *Node) *Node {
	node := p.startNode(KindConstructorDecl)
	p.addModifiers(node, modifiers)
	if typeParams != nil {
		node.AddChild(typeParams)
	}

	node.AddChild(leaf(KindIdentifier, p.advance()))
	node.AddChild(p.parseParameters())

	if p.isThrows() {
		node.AddChild(p.parseThrowsList())
	}

	node.AddChild(p.parseBlock())
	startAtChildren(node)
	return p.finishNode(node)
}

// parseMethod parses a method declaration whose return type, if any, has
// already been consumed into typ.
func (p *Parser) parseMethod(modifiers, typeParams, typ *Node) *Node {
	node := p.startNode(KindMethodDecl)
	p.addModifiers(node, modifiers)
	if typeParams != nil {
		node.AddChild(typeParams)
	}
	if typ != nil {
		node.AddChild(typ)
	}
	startAtChildren(node)

	if p.isIdentifierLike() {
		node.AddChild(leaf(KindIdentifier, p.advance()))
	} else {
		return p.errorNode("expected method name", memberRecovery, TokenIdent)
	}

	node.AddChild(p.parseParameters())

	if p.isThrows() {
		node.AddChild(p.parseThrowsList())
	}

	if p.check(TokenLBrace) {
		node.AddChild(p.parseBlock())
	} else {
		p.endStatement()
	}

	return p.finishNode(node)
}

// parseMethodDecl parses a script-level method: modifiers, optional type
// parameters, optional return type, name and parameters.
func (p *Parser) parseMethodDecl(modifiers *Node) *Node {
	var typeParams, typ *Node
	if p.check(TokenLT) {
		typeParams = p.parseTypeParameters()
	}
	if !(p.isIdentifierLike() && p.peekN(1).Kind == TokenLParen) {
		typ = p.parseType()
	}
	return p.parseMethod(modifiers, typeParams, typ)
}

func (p *Parser) addModifiers(node, modifiers *Node) {
	if modifiers != nil {
		node.AddChild(modifiers)
	}
}

// startAtChildren moves the start of a declaration back to its first
// non-empty child, which the parser consumed before creating the node.
func startAtChildren(node *Node) {
	for _, child := range node.Children {
		if child.Kind == KindModifiers && len(child.Children) == 0 {
			continue
		}
		if child.Span.Start.Before(node.Span.Start) {
			node.Span.Start = child.Span.Start
		}
		return
	}
}

// isThrows recognises the contextual "throws" keyword.
func (p *Parser) isThrows() bool {
	return p.check(TokenIdent) && p.peek().Literal == "throws"
}

func (p *Parser) parseThrowsList() *Node {
	node := p.startNode(KindThrowsList)
	p.advance()
	for {
		progress := p.mustProgress()
		node.AddChild(p.parseType())
		if !p.check(TokenComma) {
			break
		}
		p.advance()
		if !progress() {
			break
		}
	}
	return p.finishNode(node)
}

func (p *Parser) parseField(modifiers, typ *Node) *Node {
	node := p.startNode(KindFieldDecl)
	p.addModifiers(node, modifiers)
	if typ != nil {
		node.AddChild(typ)
	}
	startAtChildren(node)
	p.parseDeclarators(node)
	p.endStatement()
	return p.finishNode(node)
}

// parseDeclarators appends one Variable per "name (= init)?" separated by
// commas.
func (p *Parser) parseDeclarators(node *Node) {
	for {
		progress := p.mustProgress()
		node.AddChild(p.parseVariable())
		if !p.check(TokenComma) {
			break
		}
		p.advance()
		if !progress() {
			break
		}
	}
}

func (p *Parser) parseVariable() *Node {
	node := p.startNode(KindVariable)
	if p.isIdentifierLike() {
		node.AddChild(leaf(KindIdentifier, p.advance()))
	} else {
		return p.errorNode("expected variable name", nil, TokenIdent)
	}
	if p.check(TokenAssign) {
		p.advance()
		node.AddChild(p.parseExpression())
	}
	return p.finishNode(node)
}

func (p *Parser) parseParameters() *Node {
	node := p.startNode(KindParameters)
	p.expect(TokenLParen)
	p.nesting++

	for !p.check(TokenRParen) && !p.check(TokenEOF) {
		progress := p.mustProgress()
		node.AddChild(p.parseParameter())
		if !p.check(TokenComma) {
			break
		}
		p.advance()
		if !progress() {
			break
		}
	}

	p.nesting--
	p.expect(TokenRParen)
	return p.finishNode(node)
}

// parseParameter handles typed and untyped parameters, varargs, multi-catch
// types ("A | B e") and default values.
func (p *Parser) parseParameter() *Node {
	node := p.startNode(KindParameter)

	modifiers := p.parseModifiers()
	if hasModifiers(modifiers) {
		node.AddChild(modifiers)
	}

	if !(p.isIdentifierLike() && p.isParameterEnd(1)) {
		if !p.isTypeStart() {
			return p.errorNode("expected parameter", []TokenKind{TokenComma, TokenRParen, TokenArrow})
		}
		typ := p.parseType()
		if p.check(TokenRange) && p.peekN(1).Kind == TokenDot {
			p.advance()
			p.advance()
			wrapper := &Node{Kind: KindArrayType, Span: typ.Span}
			wrapper.AddChild(typ)
			typ = p.finishNode(wrapper)
		}
		node.AddChild(typ)
		for p.check(TokenBitOr) {
			p.advance()
			node.AddChild(p.parseType())
		}
	}

	if p.isIdentifierLike() {
		node.AddChild(leaf(KindIdentifier, p.advance()))
	} else {
		return p.errorNode("expected parameter name", []TokenKind{TokenComma, TokenRParen, TokenArrow}, TokenIdent)
	}

	if p.check(TokenAssign) {
		p.advance()
		node.AddChild(p.parseTernaryExpr())
	}

	return p.finishNode(node)
}

func (p *Parser) isParameterEnd(n int) bool {
	switch p.peekN(n).Kind {
	case TokenComma, TokenRParen, TokenAssign, TokenArrow, TokenIn, TokenColon:
		return true
	}
	return false
}

// Types

func (p *Parser) isTypeStart() bool {
	return p.peek().Kind.IsPrimitive() || p.check(TokenIdent)
}

func (p *Parser) parseType() *Node {
	node := p.startNode(KindType)

	for p.check(TokenAt) {
		node.AddChild(p.parseAnnotation())
	}

	switch {
	case p.peek().Kind.IsPrimitive():
		node.AddChild(leaf(KindIdentifier, p.advance()))
	case p.check(TokenIdent):
		node.AddChild(p.parseQualifiedName())
		if p.check(TokenLT) {
			node.AddChild(p.parseTypeArguments())
		}
	default:
		return p.errorNode("expected type", []TokenKind{TokenIdent, TokenSemicolon, TokenRParen, TokenComma, TokenRBrace})
	}

	node = p.finishNode(node)
	for p.check(TokenLBracket) && p.peekN(1).Kind == TokenRBracket {
		wrapper := &Node{Kind: KindArrayType, Span: Span{Start: node.Span.Start}}
		p.advance()
		p.advance()
		wrapper.AddChild(node)
		node = p.finishNode(wrapper)
	}

	return node
}

func (p *Parser) parseTypeArguments() *Node {
	node := p.startNode(KindTypeArguments)
	p.expect(TokenLT)

	for !p.check(TokenGT) && !p.check(TokenEOF) {
		progress := p.mustProgress()
		if p.check(TokenQuestion) {
			node.AddChild(p.parseWildcard())
		} else {
			node.AddChild(p.parseType())
		}
		if !p.check(TokenComma) {
			break
		}
		p.advance()
		if !progress() {
			break
		}
	}

	p.expect(TokenGT)
	return p.finishNode(node)
}

func (p *Parser) parseWildcard() *Node {
	node := p.startNode(KindWildcard)
	p.expect(TokenQuestion)

	if p.check(TokenExtends) || p.check(TokenSuper) {
		node.Token = &Token{}
		*node.Token = p.advance()
		node.AddChild(p.parseType())
	}

	return p.finishNode(node)
}

// skipType advances over a type without building nodes. It reports whether
// a type was there and how many tokens it spanned.
func (p *Parser) skipType() (int, bool) {
	start := p.pos
	switch {
	case p.peek().Kind.IsPrimitive():
		p.advance()
	case p.check(TokenIdent):
		p.advance()
		for p.check(TokenDot) && p.peekN(1).Kind == TokenIdent {
			p.advance()
			p.advance()
		}
		if p.check(TokenLT) && !p.skipTypeArguments() {
			return 0, false
		}
	default:
		return 0, false
	}
	for p.check(TokenLBracket) && p.peekN(1).Kind == TokenRBracket {
		p.advance()
		p.advance()
	}
	return p.pos - start, true
}

func (p *Parser) skipTypeArguments() bool {
	depth := 0
	for {
		if depth > 0 && p.pos < len(p.tokens) && p.tokens[p.pos].Span.Start.Line > p.tokens[p.pos-1].Span.End.Line {
			return false
		}
		switch p.peek().Kind {
		case TokenLT:
			depth++
		case TokenGT:
			depth--
			if depth == 0 {
				p.advance()
				return true
			}
		case TokenIdent, TokenDot, TokenComma, TokenQuestion,
			TokenExtends, TokenSuper, TokenLBracket, TokenRBracket, TokenBitAnd:
		default:
			if !p.peek().Kind.IsPrimitive() {
				return false
			}
		}
		p.advance()
	}
}

// Statements

func (p *Parser) parseBlock() *Node {
	node := p.startNode(KindBlock)
	if p.expect(TokenLBrace) == nil {
		return p.errorNode("expected '{'", nil, TokenLBrace)
	}

	saved := p.nesting
	p.nesting = 0
	p.parseStatements(node)
	p.nesting = saved

	p.expect(TokenRBrace)
	return p.finishNode(node)
}

func (p *Parser) parseStatements(node *Node) {
	for !p.check(TokenRBrace) && !p.check(TokenEOF) {
		if p.check(TokenSemicolon) {
			p.advance()
			continue
		}
		progress := p.mustProgress()
		node.AddChild(p.parseStatement())
		progress()
	}
}

func (p *Parser) parseStatement() *Node {
	switch p.peek().Kind {
	case TokenLBrace:
		return p.parseBlock()
	case TokenSemicolon:
		node := p.startNode(KindEmptyStmt)
		p.advance()
		return p.finishNode(node)
	case TokenIf:
		return p.parseIfStmt()
	case TokenWhile:
		return p.parseWhileStmt()
	case TokenFor:
		return p.parseForStmt()
	case TokenReturn:
		return p.parseReturnStmt()
	case TokenBreak:
		return p.parseJumpStmt(KindBreakStmt)
	case TokenContinue:
		return p.parseJumpStmt(KindContinueStmt)
	case TokenThrow:
		return p.parseThrowStmt()
	case TokenTry:
		return p.parseTryStmt()
	}

	if p.isTypeDeclStart() {
		return p.parseTypeDecl()
	}

	if p.isLocalVarDecl() {
		node := p.parseLocalVarDecl()
		p.endStatement()
		return node
	}

	return p.parseExprStmt()
}

// isLocalVarDecl decides between "Type name" declarations and expressions.
// A single lower-case identifier followed by a name is a command call
// ("println x"), not a declaration.
func (p *Parser) isLocalVarDecl() bool {
	save := p.pos
	defer func() { p.pos = save }()

	switch p.peek().Kind {
	case TokenDef, TokenFinal, TokenAt:
		return true
	}

	first := p.peek()
	n, ok := p.skipType()
	if !ok || !p.isIdentifierLike() {
		return false
	}
	if !p.endsDeclarator(1) {
		return false
	}
	if n > 1 || first.Kind.IsPrimitive() {
		return true
	}
	r, _ := utf8.DecodeRuneInString(first.Literal)
	return unicode.IsUpper(r)
}

// parseLocalVarDecl produces LocalVarDecl(Modifiers?, Type?, Variable+).
func (p *Parser) parseLocalVarDecl() *Node {
	node := p.startNode(KindLocalVarDecl)

	modifiers := p.parseModifiers()
	if hasModifiers(modifiers) {
		node.AddChild(modifiers)
	}

	if !(p.isIdentifierLike() && p.endsDeclarator(1)) {
		node.AddChild(p.parseType())
	}

	p.parseDeclarators(node)
	return p.finishNode(node)
}

func (p *Parser) parseExprStmt() *Node {
	node := p.startNode(KindExprStmt)
	if p.isCommandCall() {
		node.AddChild(p.parseCommandCall())
	} else {
		node.AddChild(p.parseExpression())
	}
	p.endStatement()
	return p.finishNode(node)
}

// isCommandCall recognises parenthesis-free calls such as `println "hi"`.
func (p *Parser) isCommandCall() bool {
	if !p.check(TokenIdent) || p.nesting > 0 {
		return false
	}
	next := p.peekN(1)
	if next.Span.Start.Line > p.peek().Span.End.Line {
		return false
	}
	switch next.Kind {
	case TokenIdent, TokenIntLiteral, TokenFloatLiteral, TokenStringLiteral,
		TokenGString, TokenTrue, TokenFalse, TokenNull, TokenNew, TokenThis:
		return true
	}
	return false
}

func (p *Parser) parseCommandCall() *Node {
	node := p.startNode(KindCallExpr)
	node.AddChild(leaf(KindIdentifier, p.advance()))

	args := p.startNode(KindArguments)
	for {
		progress := p.mustProgress()
		args.AddChild(p.parseArgument())
		if !p.check(TokenComma) {
			break
		}
		p.advance()
		if !progress() {
			break
		}
	}
	node.AddChild(p.finishNode(args))
	return p.finishNode(node)
}

func (p *Parser) parseIfStmt() *Node {
	node := p.startNode(KindIfStmt)
	p.expect(TokenIf)
	node.AddChild(p.parseCondition())
	node.AddChild(p.parseStatement())

	save := p.pos
	p.endStatement()
	if p.check(TokenElse) {
		p.advance()
		node.AddChild(p.parseStatement())
	} else {
		p.pos = save
	}

	return p.finishNode(node)
}

func (p *Parser) parseCondition() *Node {
	p.expect(TokenLParen)
	p.nesting++
	expr := p.parseExpression()
	p.nesting--
	p.expect(TokenRParen)
	return expr
}

func (p *Parser) parseWhileStmt() *Node {
	node := p.startNode(KindWhileStmt)
	p.expect(TokenWhile)
	node.AddChild(p.parseCondition())
	node.AddChild(p.parseStatement())
	return p.finishNode(node)
}

func (p *Parser) parseForStmt() *Node {
	start := p.peek().Span.Start
	p.expect(TokenFor)
	p.expect(TokenLParen)
	p.nesting++

	if p.isForIn() {
		node := &Node{Kind: KindForInStmt, Span: Span{Start: start}}
		node.AddChild(p.parseParameter())
		p.advance()
		node.AddChild(p.parseExpression())
		p.nesting--
		p.expect(TokenRParen)
		node.AddChild(p.parseStatement())
		return p.finishNode(node)
	}

	node := &Node{Kind: KindForStmt, Span: Span{Start: start}}

	init := p.startNode(KindForInit)
	if !p.check(TokenSemicolon) {
		if p.isLocalVarDecl() {
			init.AddChild(p.parseLocalVarDecl())
		} else {
			p.parseExpressionList(init)
		}
	}
	node.AddChild(p.finishNode(init))
	p.expect(TokenSemicolon)

	if !p.check(TokenSemicolon) {
		node.AddChild(p.parseExpression())
	}
	p.expect(TokenSemicolon)

	update := p.startNode(KindForUpdate)
	if !p.check(TokenRParen) {
		p.parseExpressionList(update)
	}
	node.AddChild(p.finishNode(update))

	p.nesting--
	p.expect(TokenRParen)
	node.AddChild(p.parseStatement())
	return p.finishNode(node)
}

func (p *Parser) parseExpressionList(node *Node) {
	for {
		progress := p.mustProgress()
		node.AddChild(p.parseExpression())
		if !p.check(TokenComma) {
			break
		}
		p.advance()
		if !progress() {
			break
		}
	}
}

// isForIn looks for "x in", "Type x in" and the "x : xs" form.
func (p *Parser) isForIn() bool {
	save := p.pos
	defer func() { p.pos = save }()

	p.skipModifiers()
	if p.isIdentifierLike() && (p.peekN(1).Kind == TokenIn || p.peekN(1).Kind == TokenColon) {
		return true
	}
	if _, ok := p.skipType(); !ok {
		return false
	}
	return p.isIdentifierLike() && (p.peekN(1).Kind == TokenIn || p.peekN(1).Kind == TokenColon)
}

func (p *Parser) parseReturnStmt() *Node {
	node := p.startNode(KindReturnStmt)
	p.expect(TokenReturn)
	if !p.match(TokenSemicolon, TokenRBrace, TokenEOF) && p.sameLine() {
		node.AddChild(p.parseExpression())
	}
	p.endStatement()
	return p.finishNode(node)
}

func (p *Parser) parseJumpStmt(kind NodeKind) *Node {
	node := p.startNode(kind)
	p.advance()
	if p.check(TokenIdent) && p.sameLine() {
		node.AddChild(leaf(KindIdentifier, p.advance()))
	}
	p.endStatement()
	return p.finishNode(node)
}

func (p *Parser) parseThrowStmt() *Node {
	node := p.startNode(KindThrowStmt)
	p.expect(TokenThrow)
	node.AddChild(p.parseExpression())
	p.endStatement()
	return p.finishNode(node)
}

func (p *Parser) parseTryStmt() *Node {
	node := p.startNode(KindTryStmt)
	p.expect(TokenTry)
	node.AddChild(p.parseBlock())

	for p.check(TokenCatch) {
		clause := p.startNode(KindCatchClause)
		p.advance()
		p.expect(TokenLParen)
		p.nesting++
		clause.AddChild(p.parseParameter())
		p.nesting--
		p.expect(TokenRParen)
		clause.AddChild(p.parseBlock())
		node.AddChild(p.finishNode(clause))
	}

	if p.check(TokenFinally) {
		clause := p.startNode(KindFinallyClause)
		p.advance()
		clause.AddChild(p.parseBlock())
		node.AddChild(p.finishNode(clause))
	}

	return p.finishNode(node)
}

// Script-level methods

// isScriptMethod recognises "def name(", "void name(" and "Type name(...) {"
// at the top level of a script.
func (p *Parser) isScriptMethod() bool {
	save := p.pos
	defer func() { p.pos = save }()

	modifierStart := p.pos
	p.skipModifiers()
	hasMods := p.pos > modifierStart

	if p.check(TokenLT) {
		if !p.skipTypeArguments() {
			return false
		}
		hasMods = true
	}

	if p.isIdentifierLike() && p.peekN(1).Kind == TokenLParen {
		return hasMods
	}

	if _, ok := p.skipType(); !ok {
		return false
	}
	if !(p.isIdentifierLike() && p.peekN(1).Kind == TokenLParen) {
		return false
	}
	if hasMods {
		return true
	}
	p.advance()
	if !p.skipBalanced(TokenLParen, TokenRParen) {
		return false
	}
	return p.check(TokenLBrace) || p.isThrows()
}

func (p *Parser) skipBalanced(open, close TokenKind) bool {
	depth := 0
	for !p.check(TokenEOF) {
		switch p.peek().Kind {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				p.advance()
				return true
			}
		}
		p.advance()
	}
	return false
}

// Expressions

func (p *Parser) parseExpression() *Node {
	return p.parseAssignmentExpr()
}

func (p *Parser) parseAssignmentExpr() *Node {
	left := p.parseTernaryExpr()

	if p.isAssignOp() {
		node := &Node{Kind: KindAssignExpr, Span: Span{Start: left.Span.Start}}
		tok := p.advance()
		node.Token = &tok
		node.AddChild(left)
		node.AddChild(p.parseAssignmentExpr())
		return p.finishNode(node)
	}

	return left
}

func (p *Parser) isAssignOp() bool {
	switch p.peek().Kind {
	case TokenAssign, TokenPlusAssign, TokenMinusAssign, TokenStarAssign, TokenSlashAssign:
		return true
	}
	return false
}

func (p *Parser) parseTernaryExpr() *Node {
	cond := p.parseOrExpr()

	if p.check(TokenElvis) && p.sameLine() {
		node := &Node{Kind: KindElvisExpr, Span: Span{Start: cond.Span.Start}}
		p.advance()
		node.AddChild(cond)
		node.AddChild(p.parseTernaryExpr())
		return p.finishNode(node)
	}

	if p.check(TokenQuestion) && p.sameLine() {
		node := &Node{Kind: KindTernaryExpr, Span: Span{Start: cond.Span.Start}}
		p.advance()
		node.AddChild(cond)
		node.AddChild(p.parseTernaryExpr())
		p.expect(TokenColon)
		node.AddChild(p.parseTernaryExpr())
		return p.finishNode(node)
	}

	return cond
}

// parseBinary parses a left-associative chain of operators from ops whose
// operands come from next. An operator on a new line ends the chain.
func (p *Parser) parseBinary(next func(*Parser) *Node, ops ...TokenKind) *Node {
	left := next(p)
	for p.match(ops...) && p.sameLine() {
		node := &Node{Kind: KindBinaryExpr, Span: Span{Start: left.Span.Start}}
		tok := p.advance()
		node.Token = &tok
		node.AddChild(left)
		node.AddChild(next(p))
		left = p.finishNode(node)
	}
	return left
}

func (p *Parser) parseOrExpr() *Node {
	return p.parseBinary((*Parser).parseAndExpr, TokenOr)
}

func (p *Parser) parseAndExpr() *Node {
	return p.parseBinary((*Parser).parseBitOrExpr, TokenAnd)
}

func (p *Parser) parseBitOrExpr() *Node {
	return p.parseBinary((*Parser).parseBitAndExpr, TokenBitOr)
}

func (p *Parser) parseBitAndExpr() *Node {
	return p.parseBinary((*Parser).parseEqualityExpr, TokenBitAnd)
}

func (p *Parser) parseEqualityExpr() *Node {
	return p.parseBinary((*Parser).parseRelationalExpr, TokenEQ, TokenNE)
}

// parseRelationalExpr also covers "instanceof", "as" and "in", whose right
// operand is a type for the first two.
func (p *Parser) parseRelationalExpr() *Node {
	left := p.parseRangeExpr()
	for p.match(TokenLT, TokenLE, TokenGT, TokenGE, TokenInstanceof, TokenAs, TokenIn) && p.sameLine() {
		node := &Node{Kind: KindBinaryExpr, Span: Span{Start: left.Span.Start}}
		tok := p.advance()
		node.Token = &tok
		node.AddChild(left)
		if tok.Kind == TokenInstanceof || tok.Kind == TokenAs {
			node.AddChild(p.parseType())
		} else {
			node.AddChild(p.parseRangeExpr())
		}
		left = p.finishNode(node)
	}
	return left
}

// parseRangeExpr handles "a..b" and the exclusive "a..<b".
func (p *Parser) parseRangeExpr() *Node {
	left := p.parseAdditiveExpr()
	if p.check(TokenRange) && p.sameLine() {
		node := &Node{Kind: KindBinaryExpr, Span: Span{Start: left.Span.Start}}
		tok := p.advance()
		if p.check(TokenLT) {
			lt := p.advance()
			tok.Literal += lt.Literal
			tok.Span.End = lt.Span.End
		}
		node.Token = &tok
		node.AddChild(left)
		node.AddChild(p.parseAdditiveExpr())
		return p.finishNode(node)
	}
	return left
}

func (p *Parser) parseAdditiveExpr() *Node {
	return p.parseBinary((*Parser).parseMultiplicativeExpr, TokenPlus, TokenMinus)
}

func (p *Parser) parseMultiplicativeExpr() *Node {
	return p.parseBinary((*Parser).parseUnaryExpr, TokenStar, TokenSlash, TokenPercent)
}

func (p *Parser) parseUnaryExpr() *Node {
	switch p.peek().Kind {
	case TokenNot, TokenMinus, TokenPlus, TokenIncrement, TokenDecrement:
		node := p.startNode(KindUnaryExpr)
		tok := p.advance()
		node.Token = &tok
		node.AddChild(p.parseUnaryExpr())
		return p.finishNode(node)
	case TokenLParen:
		if p.isCast() {
			return p.parseCastExpr()
		}
	}
	return p.parsePostfixExpr()
}

// isCast recognises "(int) x" and "(Type) x"; a parenthesised
// lower-case name is an ordinary expression.
func (p *Parser) isCast() bool {
	save := p.pos
	defer func() { p.pos = save }()

	p.advance()
	first := p.peek()
	if _, ok := p.skipType(); !ok || !p.check(TokenRParen) {
		return false
	}
	p.advance()
	if !first.Kind.IsPrimitive() {
		r, _ := utf8.DecodeRuneInString(first.Literal)
		if !unicode.IsUpper(r) {
			return false
		}
	}
	switch p.peek().Kind {
	case TokenIdent, TokenIntLiteral, TokenFloatLiteral, TokenStringLiteral,
		TokenGString, TokenLParen, TokenThis, TokenNew, TokenNot, TokenLBracket:
		return true
	}
	return false
}

func (p *Parser) parseCastExpr() *Node {
	node := p.startNode(KindCastExpr)
	p.expect(TokenLParen)
	node.AddChild(p.parseType())
	p.expect(TokenRParen)
	node.AddChild(p.parseUnaryExpr())
	return p.finishNode(node)
}

func (p *Parser) parsePostfixExpr() *Node {
	expr := p.parsePrimaryExpr()
	return p.parsePostfixSuffix(expr)
}

func (p *Parser) parsePostfixSuffix(expr *Node) *Node {
	for {
		switch {
		case p.match(TokenDot, TokenSafeDot):
			// A leading dot on the next line continues a call chain.
			node := &Node{Kind: KindFieldAccess, Span: Span{Start: expr.Span.Start}}
			tok := p.advance()
			node.Token = &tok
			node.AddChild(expr)
			if p.isIdentifierLike() || p.check(TokenClass) {
				node.AddChild(leaf(KindIdentifier, p.advance()))
			} else {
				node.AddChild(p.errorNode("expected member name", nil, TokenIdent))
			}
			expr = p.finishNode(node)

		case p.check(TokenLParen) && p.sameLine():
			node := &Node{Kind: KindCallExpr, Span: Span{Start: expr.Span.Start}}
			node.AddChild(expr)
			node.AddChild(p.parseArguments())
			if p.check(TokenLBrace) && p.sameLine() {
				node.AddChild(p.parseClosure())
			}
			expr = p.finishNode(node)

		case p.check(TokenLBrace) && p.sameLine() && p.acceptsTrailingClosure(expr):
			node := &Node{Kind: KindCallExpr, Span: Span{Start: expr.Span.Start}}
			node.AddChild(expr)
			brace := p.peek()
			node.AddChild(&Node{Kind: KindArguments, Span: Span{Start: brace.Span.Start, End: brace.Span.Start}})
			node.AddChild(p.parseClosure())
			expr = p.finishNode(node)

		case p.check(TokenLBracket) && p.sameLine():
			node := &Node{Kind: KindIndexExpr, Span: Span{Start: expr.Span.Start}}
			p.advance()
			p.nesting++
			node.AddChild(expr)
			node.AddChild(p.parseExpression())
			p.nesting--
			p.expect(TokenRBracket)
			expr = p.finishNode(node)

		case p.match(TokenIncrement, TokenDecrement) && p.sameLine():
			node := &Node{Kind: KindPostfixExpr, Span: Span{Start: expr.Span.Start}}
			tok := p.advance()
			node.Token = &tok
			node.AddChild(expr)
			expr = p.finishNode(node)

		default:
			return expr
		}
	}
}

// acceptsTrailingClosure reports whether "expr { ... }" is a call passing a
// closure, as in `list.each { println it }`.
func (p *Parser) acceptsTrailingClosure(expr *Node) bool {
	switch expr.Kind {
	case KindIdentifier, KindFieldAccess:
		return true
	}
	return false
}

func (p *Parser) parseArguments() *Node {
	node := p.startNode(KindArguments)
	p.expect(TokenLParen)
	p.nesting++

	for !p.check(TokenRParen) && !p.check(TokenEOF) {
		progress := p.mustProgress()
		node.AddChild(p.parseArgument())
		if !p.check(TokenComma) {
			break
		}
		p.advance()
		if !progress() {
			break
		}
	}

	p.nesting--
	p.expect(TokenRParen)
	return p.finishNode(node)
}

// parseArgument accepts named arguments ("name: value") besides plain
// expressions.
func (p *Parser) parseArgument() *Node {
	if (p.isIdentifierLike() || p.check(TokenStringLiteral)) && p.peekN(1).Kind == TokenColon {
		return p.parseMapEntry()
	}
	return p.parseExpression()
}

func (p *Parser) parseMapEntry() *Node {
	node := p.startNode(KindMapEntry)
	if p.isIdentifierLike() {
		node.AddChild(leaf(KindLiteral, p.advance()))
	} else {
		node.AddChild(p.parseTernaryExpr())
	}
	p.expect(TokenColon)
	node.AddChild(p.parseExpression())
	return p.finishNode(node)
}

func (p *Parser) parsePrimaryExpr() *Node {
	switch p.peek().Kind {
	case TokenIntLiteral, TokenFloatLiteral, TokenStringLiteral, TokenGString,
		TokenTrue, TokenFalse, TokenNull:
		return leaf(KindLiteral, p.advance())
	case TokenIdent, TokenTrait:
		return leaf(KindIdentifier, p.advance())
	case TokenThis:
		return leaf(KindThis, p.advance())
	case TokenSuper:
		return leaf(KindSuper, p.advance())
	case TokenNew:
		return p.parseNewExpr()
	case TokenLParen:
		return p.parseParenExpr()
	case TokenLBracket:
		return p.parseListOrMap()
	case TokenLBrace:
		return p.parseClosure()
	}
	if p.peek().Kind.IsPrimitive() {
		return p.parseType()
	}
	return p.errorNode("expected expression", nil)
}

func (p *Parser) parseParenExpr() *Node {
	node := p.startNode(KindParenExpr)
	p.expect(TokenLParen)
	p.nesting++
	node.AddChild(p.parseExpression())
	p.nesting--
	p.expect(TokenRParen)
	return p.finishNode(node)
}

// parseNewExpr covers constructor calls, anonymous classes and array
// creation with dimension expressions.
func (p *Parser) parseNewExpr() *Node {
	node := p.startNode(KindNewExpr)
	p.expect(TokenNew)

	if !p.isTypeStart() {
		return p.errorNode("expected type after 'new'", nil, TokenIdent)
	}

	typ := p.parseType()
	node.AddChild(typ)

	for p.check(TokenLBracket) {
		p.advance()
		p.nesting++
		if !p.check(TokenRBracket) {
			node.AddChild(p.parseExpression())
		}
		p.nesting--
		p.expect(TokenRBracket)
	}

	if p.check(TokenLParen) {
		node.AddChild(p.parseArguments())
		if p.check(TokenLBrace) && p.sameLine() {
			node.AddChild(p.parseClassBody("", false))
		}
	}

	return p.finishNode(node)
}

func (p *Parser) parseListOrMap() *Node {
	start := p.peek().Span.Start
	p.expect(TokenLBracket)
	p.nesting++
	defer func() { p.nesting-- }()

	if p.check(TokenColon) && p.peekN(1).Kind == TokenRBracket {
		p.advance()
		p.advance()
		return p.finishNode(&Node{Kind: KindMapExpr, Span: Span{Start: start}})
	}

	kind := KindListExpr
	if (p.isIdentifierLike() || p.check(TokenStringLiteral) || p.check(TokenIntLiteral)) && p.peekN(1).Kind == TokenColon {
		kind = KindMapExpr
	}
	node := &Node{Kind: kind, Span: Span{Start: start}}

	for !p.check(TokenRBracket) && !p.check(TokenEOF) {
		progress := p.mustProgress()
		if kind == KindMapExpr {
			node.AddChild(p.parseMapEntry())
		} else {
			node.AddChild(p.parseExpression())
		}
		if !p.check(TokenComma) {
			break
		}
		p.advance()
		if !progress() {
			break
		}
	}

	p.expect(TokenRBracket)
	return p.finishNode(node)
}

// parseClosure produces Closure(Parameters?, Block). Parameters is present
// only when the closure declares them explicitly with "->".
func (p *Parser) parseClosure() *Node {
	node := p.startNode(KindClosure)
	p.expect(TokenLBrace)

	saved := p.nesting
	p.nesting = 0
	defer func() { p.nesting = saved }()

	if p.isClosureParameters() {
		params := p.startNode(KindParameters)
		for !p.check(TokenArrow) && !p.check(TokenEOF) {
			progress := p.mustProgress()
			params.AddChild(p.parseParameter())
			if p.check(TokenComma) {
				p.advance()
			}
			if !progress() {
				break
			}
		}
		p.expect(TokenArrow)
		node.AddChild(p.finishNode(params))
	}

	body := p.startNode(KindBlock)
	p.parseStatements(body)
	node.AddChild(p.finishNode(body))

	p.expect(TokenRBrace)
	return p.finishNode(node)
}

func (p *Parser) isClosureParameters() bool {
	save := p.pos
	defer func() { p.pos = save }()

	for {
		switch p.peek().Kind {
		case TokenArrow:
			return true
		case TokenIdent, TokenDef, TokenFinal, TokenDot, TokenComma,
			TokenQuestion, TokenLBracket, TokenRBracket, TokenLT, TokenGT, TokenRange:
			p.advance()
		default:
			if !p.peek().Kind.IsPrimitive() {
				return false
			}
			p.advance()
		}
	}
}

// Errors returns every error node below root in document order.
func Errors(root *Node) []*Node {
	var errs []*Node
	if root == nil {
		return nil
	}
	root.Walk(func(n *Node) bool {
		if n.IsError() {
			errs = append(errs, n)
		}
		return true
	})
	return errs
}
