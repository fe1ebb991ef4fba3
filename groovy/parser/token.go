package parser

import "strconv"

type Position struct {
	File   string
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Before reports whether p comes strictly before other in the same file.
func (p Position) Before(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Column < other.Column
}

type Span struct {
	Start Position
	End   Position
}

// Contains reports whether pos lies within the span, both ends inclusive.
func (s Span) Contains(pos Position) bool {
	return !pos.Before(s.Start) && !s.End.Before(pos)
}

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenError
	TokenWhitespace
	TokenComment
	TokenLineComment

	// Literals
	TokenIdent
	TokenIntLiteral
	TokenFloatLiteral
	TokenStringLiteral
	TokenGString
	TokenTrue
	TokenFalse
	TokenNull

	// Keywords
	TokenAbstract
	TokenAs
	TokenBoolean
	TokenBreak
	TokenByte
	TokenCatch
	TokenChar
	TokenClass
	TokenContinue
	TokenDef
	TokenDouble
	TokenElse
	TokenEnum
	TokenExtends
	TokenFinal
	TokenFinally
	TokenFloat
	TokenFor
	TokenIf
	TokenImplements
	TokenImport
	TokenIn
	TokenInstanceof
	TokenInt
	TokenInterface
	TokenLong
	TokenNew
	TokenPackage
	TokenPrivate
	TokenProtected
	TokenPublic
	TokenReturn
	TokenShort
	TokenStatic
	TokenSuper
	TokenThis
	TokenThrow
	TokenTrait
	TokenTry
	TokenVoid
	TokenWhile

	// Operators and punctuation
	TokenLParen
	TokenRParen
	TokenLBrace
	TokenRBrace
	TokenLBracket
	TokenRBracket
	TokenSemicolon
	TokenComma
	TokenDot
	TokenSafeDot
	TokenRange
	TokenAt
	TokenQuestion
	TokenElvis
	TokenColon
	TokenArrow

	TokenAssign
	TokenEQ
	TokenNE
	TokenLT
	TokenLE
	TokenGT
	TokenGE
	TokenAnd
	TokenOr
	TokenNot
	TokenBitAnd
	TokenBitOr
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenPercent
	TokenIncrement
	TokenDecrement
	TokenPlusAssign
	TokenMinusAssign
	TokenStarAssign
	TokenSlashAssign
)

var tokenKindNames = map[TokenKind]string{
	TokenEOF:           "EOF",
	TokenError:         "Error",
	TokenWhitespace:    "Whitespace",
	TokenComment:       "Comment",
	TokenLineComment:   "LineComment",
	TokenIdent:         "Identifier",
	TokenIntLiteral:    "IntLiteral",
	TokenFloatLiteral:  "FloatLiteral",
	TokenStringLiteral: "StringLiteral",
	TokenGString:       "GString",
	TokenTrue:          "true",
	TokenFalse:         "false",
	TokenNull:          "null",
	TokenAbstract:      "abstract",
	TokenAs:            "as",
	TokenBoolean:       "boolean",
	TokenBreak:         "break",
	TokenByte:          "byte",
	TokenCatch:         "catch",
	TokenChar:          "char",
	TokenClass:         "class",
	TokenContinue:      "continue",
	TokenDef:           "def",
	TokenDouble:        "double",
	TokenElse:          "else",
	TokenEnum:          "enum",
	TokenExtends:       "extends",
	TokenFinal:         "final",
	TokenFinally:       "finally",
	TokenFloat:         "float",
	TokenFor:           "for",
	TokenIf:            "if",
	TokenImplements:    "implements",
	TokenImport:        "import",
	TokenIn:            "in",
	TokenInstanceof:    "instanceof",
	TokenInt:           "int",
	TokenInterface:     "interface",
	TokenLong:          "long",
	TokenNew:           "new",
	TokenPackage:       "package",
	TokenPrivate:       "private",
	TokenProtected:     "protected",
	TokenPublic:        "public",
	TokenReturn:        "return",
	TokenShort:         "short",
	TokenStatic:        "static",
	TokenSuper:         "super",
	TokenThis:          "this",
	TokenThrow:         "throw",
	TokenTrait:         "trait",
	TokenTry:           "try",
	TokenVoid:          "void",
	TokenWhile:         "while",
	TokenLParen:        "(",
	TokenRParen:        ")",
	TokenLBrace:        "{",
	TokenRBrace:        "}",
	TokenLBracket:      "[",
	TokenRBracket:      "]",
	TokenSemicolon:     ";",
	TokenComma:         ",",
	TokenDot:           ".",
	TokenSafeDot:       "?.",
	TokenRange:         "..",
	TokenAt:            "@",
	TokenQuestion:      "?",
	TokenElvis:         "?:",
	TokenColon:         ":",
	TokenArrow:         "->",
	TokenAssign:        "=",
	TokenEQ:            "==",
	TokenNE:            "!=",
	TokenLT:            "<",
	TokenLE:            "<=",
	TokenGT:            ">",
	TokenGE:            ">=",
	TokenAnd:           "&&",
	TokenOr:            "||",
	TokenNot:           "!",
	TokenBitAnd:        "&",
	TokenBitOr:         "|",
	TokenPlus:          "+",
	TokenMinus:         "-",
	TokenStar:          "*",
	TokenSlash:         "/",
	TokenPercent:       "%",
	TokenIncrement:     "++",
	TokenDecrement:     "--",
	TokenPlusAssign:    "+=",
	TokenMinusAssign:   "-=",
	TokenStarAssign:    "*=",
	TokenSlashAssign:   "/=",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

type Token struct {
	Kind    TokenKind
	Span    Span
	Literal string
}

var keywords = map[string]TokenKind{
	"abstract":   TokenAbstract,
	"as":         TokenAs,
	"boolean":    TokenBoolean,
	"break":      TokenBreak,
	"byte":       TokenByte,
	"catch":      TokenCatch,
	"char":       TokenChar,
	"class":      TokenClass,
	"continue":   TokenContinue,
	"def":        TokenDef,
	"double":     TokenDouble,
	"else":       TokenElse,
	"enum":       TokenEnum,
	"extends":    TokenExtends,
	"final":      TokenFinal,
	"finally":    TokenFinally,
	"float":      TokenFloat,
	"for":        TokenFor,
	"if":         TokenIf,
	"implements": TokenImplements,
	"import":     TokenImport,
	"in":         TokenIn,
	"instanceof": TokenInstanceof,
	"int":        TokenInt,
	"interface":  TokenInterface,
	"long":       TokenLong,
	"new":        TokenNew,
	"package":    TokenPackage,
	"private":    TokenPrivate,
	"protected":  TokenProtected,
	"public":     TokenPublic,
	"return":     TokenReturn,
	"short":      TokenShort,
	"static":     TokenStatic,
	"super":      TokenSuper,
	"this":       TokenThis,
	"throw":      TokenThrow,
	"trait":      TokenTrait,
	"try":        TokenTry,
	"void":       TokenVoid,
	"while":      TokenWhile,
	"true":       TokenTrue,
	"false":      TokenFalse,
	"null":       TokenNull,
}

func LookupKeyword(ident string) TokenKind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	return TokenIdent
}

// IsPrimitive reports whether kind names one of the primitive types or void.
func (k TokenKind) IsPrimitive() bool {
	switch k {
	case TokenBoolean, TokenByte, TokenChar, TokenShort,
		TokenInt, TokenLong, TokenFloat, TokenDouble, TokenVoid:
		return true
	}
	return false
}
