package parser

import (
	"unicode"
	"unicode/utf8"
)

type Lexer struct {
	input  []byte
	file   string
	pos    int
	line   int
	column int
}

func NewLexer(input []byte, file string) *Lexer {
	return &Lexer{
		input:  input,
		file:   file,
		pos:    0,
		line:   1,
		column: 1,
	}
}

func (l *Lexer) Position() Position {
	return Position{
		File:   l.file,
		Offset: l.pos,
		Line:   l.line,
		Column: l.column,
	}
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekN(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *Lexer) advance() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	ch := l.input[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return ch
}

func (l *Lexer) advanceN(n int) {
	for i := 0; i < n; i++ {
		l.advance()
	}
}

func (l *Lexer) NextToken() Token {
	startPos := l.Position()

	if l.pos >= len(l.input) {
		return Token{Kind: TokenEOF, Span: Span{Start: startPos, End: startPos}}
	}

	ch := l.peek()

	if ch == '/' && l.peekN(1) == '/' {
		return l.scanLineComment(startPos)
	}
	if ch == '/' && l.peekN(1) == '*' {
		return l.scanBlockComment(startPos)
	}
	// Shebang lines are only valid at the very start of a script.
	if ch == '#' && l.peekN(1) == '!' && l.pos == 0 {
		return l.scanLineComment(startPos)
	}

	if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' {
		return l.scanWhitespace(startPos)
	}

	if l.isLetterAt(l.pos) {
		return l.scanIdentOrKeyword(startPos)
	}

	if isDigit(ch) {
		return l.scanNumber(startPos)
	}

	if ch == '\'' {
		if l.peekN(1) == '\'' && l.peekN(2) == '\'' {
			return l.scanTripleQuoted(startPos, '\'')
		}
		return l.scanQuoted(startPos, '\'')
	}

	if ch == '"' {
		if l.peekN(1) == '"' && l.peekN(2) == '"' {
			return l.scanTripleQuoted(startPos, '"')
		}
		return l.scanQuoted(startPos, '"')
	}

	return l.scanOperator(startPos)
}

func (l *Lexer) scanWhitespace(start Position) Token {
	for {
		ch := l.peek()
		if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' {
			l.advance()
		} else {
			break
		}
	}
	return l.token(TokenWhitespace, start)
}

func (l *Lexer) scanLineComment(start Position) Token {
	l.advanceN(2)
	for l.peek() != 0 && l.peek() != '\n' {
		l.advance()
	}
	return l.token(TokenLineComment, start)
}

func (l *Lexer) scanBlockComment(start Position) Token {
	l.advanceN(2)
	for {
		if l.peek() == 0 {
			break
		}
		if l.peek() == '*' && l.peekN(1) == '/' {
			l.advanceN(2)
			break
		}
		l.advance()
	}
	return l.token(TokenComment, start)
}

func (l *Lexer) scanIdentOrKeyword(start Position) Token {
	for l.isLetterOrDigitAt(l.pos) {
		_, size := utf8.DecodeRune(l.input[l.pos:])
		l.advanceN(size)
	}
	end := l.Position()
	literal := string(l.input[start.Offset:end.Offset])
	return Token{
		Kind:    LookupKeyword(literal),
		Span:    Span{Start: start, End: end},
		Literal: literal,
	}
}

func (l *Lexer) scanNumber(start Position) Token {
	if l.peek() == '0' && (l.peekN(1) == 'x' || l.peekN(1) == 'X') {
		l.advanceN(2)
		for isHexDigit(l.peek()) || l.peek() == '_' {
			l.advance()
		}
		l.scanIntegerSuffix()
		return l.token(TokenIntLiteral, start)
	}

	isFloat := false
	for isDigit(l.peek()) || l.peek() == '_' {
		l.advance()
	}

	// "1..5" is a range, not a float.
	if l.peek() == '.' && isDigit(l.peekN(1)) {
		isFloat = true
		l.advance()
		for isDigit(l.peek()) || l.peek() == '_' {
			l.advance()
		}
	}

	if l.peek() == 'e' || l.peek() == 'E' {
		isFloat = true
		l.advance()
		if l.peek() == '+' || l.peek() == '-' {
			l.advance()
		}
		for isDigit(l.peek()) || l.peek() == '_' {
			l.advance()
		}
	}

	switch l.peek() {
	case 'f', 'F', 'd', 'D':
		isFloat = true
		l.advance()
	case 'g', 'G':
		l.advance()
	default:
		l.scanIntegerSuffix()
	}

	kind := TokenIntLiteral
	if isFloat {
		kind = TokenFloatLiteral
	}
	return l.token(kind, start)
}

func (l *Lexer) scanIntegerSuffix() {
	switch l.peek() {
	case 'l', 'L', 'i', 'I', 'g', 'G':
		l.advance()
	}
}

// scanQuoted scans a single-line string. Double quoted strings are GStrings
// when they contain a "$" placeholder.
func (l *Lexer) scanQuoted(start Position, quote byte) Token {
	l.advance()
	interpolated := false
	for l.peek() != 0 && l.peek() != quote && l.peek() != '\n' {
		switch l.peek() {
		case '\\':
			l.advance()
		case '$':
			if quote == '"' {
				interpolated = true
				if l.peekN(1) == '{' {
					l.advanceN(2)
					l.skipPlaceholder()
					continue
				}
			}
		}
		l.advance()
	}
	if l.peek() == quote {
		l.advance()
	}
	kind := TokenStringLiteral
	if interpolated {
		kind = TokenGString
	}
	return l.token(kind, start)
}

func (l *Lexer) scanTripleQuoted(start Position, quote byte) Token {
	l.advanceN(3)
	interpolated := false
	for l.peek() != 0 {
		if l.peek() == quote && l.peekN(1) == quote && l.peekN(2) == quote {
			l.advanceN(3)
			break
		}
		switch l.peek() {
		case '\\':
			l.advance()
		case '$':
			if quote == '"' {
				interpolated = true
				if l.peekN(1) == '{' {
					l.advanceN(2)
					l.skipPlaceholder()
					continue
				}
			}
		}
		l.advance()
	}
	kind := TokenStringLiteral
	if interpolated {
		kind = TokenGString
	}
	return l.token(kind, start)
}

// skipPlaceholder consumes the body of a "${...}" placeholder including the
// closing brace.
func (l *Lexer) skipPlaceholder() {
	depth := 1
	for l.peek() != 0 && depth > 0 {
		switch l.peek() {
		case '{':
			depth++
		case '}':
			depth--
		case '"', '\'':
			quote := l.advance()
			for l.peek() != 0 && l.peek() != quote && l.peek() != '\n' {
				if l.peek() == '\\' {
					l.advance()
				}
				l.advance()
			}
		}
		l.advance()
	}
}

// Two character operators, matched before single characters. ">>" is never
// produced so nested type arguments close one at a time.
var operators2 = map[string]TokenKind{
	"?.": TokenSafeDot,
	"?:": TokenElvis,
	"..": TokenRange,
	"==": TokenEQ,
	"!=": TokenNE,
	"<=": TokenLE,
	">=": TokenGE,
	"&&": TokenAnd,
	"||": TokenOr,
	"++": TokenIncrement,
	"+=": TokenPlusAssign,
	"--": TokenDecrement,
	"-=": TokenMinusAssign,
	"->": TokenArrow,
	"*=": TokenStarAssign,
	"/=": TokenSlashAssign,
}

var operators1 = map[byte]TokenKind{
	'(': TokenLParen,
	')': TokenRParen,
	'{': TokenLBrace,
	'}': TokenRBrace,
	'[': TokenLBracket,
	']': TokenRBracket,
	';': TokenSemicolon,
	',': TokenComma,
	'@': TokenAt,
	':': TokenColon,
	'?': TokenQuestion,
	'.': TokenDot,
	'=': TokenAssign,
	'!': TokenNot,
	'<': TokenLT,
	'>': TokenGT,
	'&': TokenBitAnd,
	'|': TokenBitOr,
	'+': TokenPlus,
	'-': TokenMinus,
	'*': TokenStar,
	'/': TokenSlash,
	'%': TokenPercent,
}

func (l *Lexer) scanOperator(start Position) Token {
	if l.pos+1 < len(l.input) {
		if kind, ok := operators2[string(l.input[l.pos:l.pos+2])]; ok {
			l.advanceN(2)
			return l.token(kind, start)
		}
	}
	if kind, ok := operators1[l.peek()]; ok {
		l.advance()
		return l.token(kind, start)
	}

	_, size := utf8.DecodeRune(l.input[l.pos:])
	l.advanceN(size)
	return l.token(TokenError, start)
}

func (l *Lexer) token(kind TokenKind, start Position) Token {
	end := l.Position()
	return Token{
		Kind:    kind,
		Span:    Span{Start: start, End: end},
		Literal: string(l.input[start.Offset:end.Offset]),
	}
}

func (l *Lexer) isLetterAt(pos int) bool {
	if pos >= len(l.input) {
		return false
	}
	ch := l.input[pos]
	if ch >= utf8.RuneSelf {
		r, _ := utf8.DecodeRune(l.input[pos:])
		return unicode.IsLetter(r)
	}
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_' || ch == '$'
}

func (l *Lexer) isLetterOrDigitAt(pos int) bool {
	if pos >= len(l.input) {
		return false
	}
	ch := l.input[pos]
	if ch >= utf8.RuneSelf {
		r, _ := utf8.DecodeRune(l.input[pos:])
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}
	return l.isLetterAt(pos) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}
