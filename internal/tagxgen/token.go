package tagxgen

import "fmt"

// TokenType represents the type of a lexical token.
type TokenType int

const (
	// Special tokens
	TokenEOF     TokenType = iota // end of file
	TokenIllegal                  // unrecognized character or malformed token

	// Markup mode
	TokenText       // markup text
	TokenTransition // @
	TokenComment    // @* ... *@
	TokenTagOpen    // < followed by a tag name
	TokenTagEndOpen // </
	TokenLBrace     // {
	TokenRBrace     // }

	// Tag mode
	TokenIdent        // tag or attribute name
	TokenEquals       // =
	TokenQuote        // " or '
	TokenTagClose     // >
	TokenTagSelfClose // />

	// Code mode
	TokenKeyword   // if, else, for
	TokenDirective // package, import, inherits, model, addext, removeext
	TokenCode      // raw Go code captured verbatim
	TokenString    // Go string literal
)

var tokenNames = map[TokenType]string{
	TokenEOF:          "EOF",
	TokenIllegal:      "Illegal",
	TokenText:         "Text",
	TokenTransition:   "@",
	TokenComment:      "Comment",
	TokenTagOpen:      "<",
	TokenTagEndOpen:   "</",
	TokenLBrace:       "{",
	TokenRBrace:       "}",
	TokenIdent:        "Ident",
	TokenEquals:       "=",
	TokenQuote:        "Quote",
	TokenTagClose:     ">",
	TokenTagSelfClose: "/>",
	TokenKeyword:      "Keyword",
	TokenDirective:    "Directive",
	TokenCode:         "Code",
	TokenString:       "String",
}

// String returns the string representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", t)
}

// Token is a lexical unit with its source span.
type Token struct {
	Type    TokenType
	Literal string
	Span    Span
}

// String returns a debug representation of the token.
func (t Token) String() string {
	if t.Literal == "" {
		return fmt.Sprintf("%s@%s", t.Type, t.Span)
	}
	return fmt.Sprintf("%s(%q)@%s", t.Type, t.Literal, t.Span)
}

// Code-mode keywords recognized directly after a transition.
var keywords = map[string]TokenType{
	"if":   TokenKeyword,
	"for":  TokenKeyword,
	"else": TokenKeyword,

	"package":   TokenDirective,
	"import":    TokenDirective,
	"inherits":  TokenDirective,
	"model":     TokenDirective,
	"addext":    TokenDirective,
	"removeext": TokenDirective,
}

// LookupIdent classifies an identifier read in code mode.
func LookupIdent(ident string) TokenType {
	if typ, ok := keywords[ident]; ok {
		return typ
	}
	return TokenCode
}
