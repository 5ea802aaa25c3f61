// Package token defines the lexical token kinds and the Token and
// Location types shared by the lexer and parser (spec.md §3).
package token

import "fmt"

// File identifies a source file being compiled, by handle rather than by
// path, so that Location values stay cheap to copy.
type File struct {
	Name string
	Path string
	Src  []byte // NUL-terminated in memory; NUL is not part of len(Src) logically but is present at Src[len(Src)-1]
}

// Location pinpoints a span of source text: file, 1-based line/column and
// byte offsets. Column counts bytes, not codepoints (spec.md §3).
type Location struct {
	File       *File
	Line, Col  int
	StartByte  int
	EndByte    int
}

func (l Location) String() string {
	if l.File == nil {
		return fmt.Sprintf("%d:%d", l.Line, l.Col)
	}
	return fmt.Sprintf("%s:%d:%d", l.File.Name, l.Line, l.Col)
}

// Kind enumerates every lexical token category.
type Kind int

const (
	Invalid Kind = iota
	EOF

	// Literals
	IntLit
	FloatLit
	StringLit
	CharLit

	Ident

	// Keywords
	KwBool
	KwChar
	KwElse
	KwFor
	KwIf
	KwImport
	KwNull
	KwReturn
	KwString
	KwStruct
	KwWhile
	KwForeign
	KwBreak
	KwContinue

	// Primitive type keywords
	KwS8
	KwS16
	KwS32
	KwS64
	KwU8
	KwU16
	KwU32
	KwU64
	KwF32
	KwF64
	KwVoid

	// Punctuation
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Semicolon
	Colon
	ColonColon
	Comma
	Dot
	Arrow // ->
	ColonEq // :=

	// Operators
	Assign
	PlusEq
	MinusEq
	StarEq
	SlashEq
	PercentEq
	AmpEq
	CaretEq
	PipeEq

	OrOr
	AndAnd

	Eq
	Neq
	Lt
	Leq
	Gt
	Geq

	Pipe
	Caret
	Amp
	Shl
	Shr

	Plus
	Minus
	Star
	Slash
	Percent

	Not
	Tilde
	At
)

var kindNames = map[Kind]string{
	Invalid: "invalid", EOF: "eof",
	IntLit: "int-literal", FloatLit: "float-literal", StringLit: "string-literal", CharLit: "char-literal",
	Ident: "identifier",
	KwBool: "bool", KwChar: "char", KwElse: "else", KwFor: "for", KwIf: "if", KwImport: "import",
	KwNull: "null", KwReturn: "return", KwString: "string", KwStruct: "struct", KwWhile: "while",
	KwForeign: "foreign", KwBreak: "break", KwContinue: "continue",
	KwS8: "s8", KwS16: "s16", KwS32: "s32", KwS64: "s64",
	KwU8: "u8", KwU16: "u16", KwU32: "u32", KwU64: "u64",
	KwF32: "f32", KwF64: "f64", KwVoid: "void",
	LParen: "(", RParen: ")", LBrace: "{", RBrace: "}", LBracket: "[", RBracket: "]",
	Semicolon: ";", Colon: ":", ColonColon: "::", Comma: ",", Dot: ".", Arrow: "->", ColonEq: ":=",
	Assign: "=", PlusEq: "+=", MinusEq: "-=", StarEq: "*=", SlashEq: "/=", PercentEq: "%=",
	AmpEq: "&=", CaretEq: "^=", PipeEq: "|=",
	OrOr: "||", AndAnd: "&&",
	Eq: "==", Neq: "!=", Lt: "<", Leq: "<=", Gt: ">", Geq: ">=",
	Pipe: "|", Caret: "^", Amp: "&", Shl: "<<", Shr: ">>",
	Plus: "+", Minus: "-", Star: "*", Slash: "/", Percent: "%",
	Not: "!", Tilde: "~", At: "@",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Keywords maps every keyword/primitive-type lexeme to its Kind. The
// lexer's keyword trie falls back to Ident for anything not present here.
var Keywords = map[string]Kind{
	"bool": KwBool, "char": KwChar, "else": KwElse, "for": KwFor, "if": KwIf,
	"import": KwImport, "null": KwNull, "return": KwReturn, "string": KwString,
	"struct": KwStruct, "while": KwWhile, "foreign": KwForeign,
	"break": KwBreak, "continue": KwContinue,
	"s8": KwS8, "s16": KwS16, "s32": KwS32, "s64": KwS64,
	"u8": KwU8, "u16": KwU16, "u32": KwU32, "u64": KwU64,
	"f32": KwF32, "f64": KwF64, "void": KwVoid,
}

// Token is a single lexical token: its kind, the raw source slice it
// spans, and its location.
type Token struct {
	Kind Kind
	Text string
	Loc  Location
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%s", t.Kind, t.Text, t.Loc)
}
