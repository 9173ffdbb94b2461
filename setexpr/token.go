// Package setexpr implements a small expression language for boolean set
// algebra. Formulas combine named sets with union (U), intersection (&),
// symmetric difference (^), difference (-), postfix complement (.) and
// parentheses, and evaluate to a membership vector over a fixed universe.
package setexpr

import "fmt"

// TokenType represents the type of a lexer token.
type TokenType int

const (
	TokenEOF    TokenType = iota
	TokenSetRef           // A, B, C, ...
	TokenNot              // . (postfix complement)
	TokenAnd              // &
	TokenOr               // U
	TokenXor              // ^
	TokenDiff             // -
	TokenLParen           // (
	TokenRParen           // )
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenSetRef:
		return "SetRef"
	case TokenNot:
		return "Not"
	case TokenAnd:
		return "And"
	case TokenOr:
		return "Or"
	case TokenXor:
		return "Xor"
	case TokenDiff:
		return "Diff"
	case TokenLParen:
		return "LParen"
	case TokenRParen:
		return "RParen"
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token represents a single token from the lexer.
type Token struct {
	Type    TokenType
	Literal string
	Pos     int
}

func (t Token) String() string {
	return fmt.Sprintf("Token{%v, %q, %d}", t.Type, t.Literal, t.Pos)
}

// Lexer tokenizes set-expression input. Every token is a single
// character; set names take priority over the U union operator, so an
// alphabet containing "U" would shadow union.
type Lexer struct {
	input    string
	pos      int
	alphabet map[byte]bool
}

// NewLexer creates a lexer recognizing the given set names. Names are
// expected to be single uppercase letters; Membership.Validate enforces
// that before evaluation.
func NewLexer(input string, names []string) *Lexer {
	alphabet := make(map[byte]bool, len(names))
	for _, name := range names {
		if len(name) == 1 {
			alphabet[name[0]] = true
		}
	}
	return &Lexer{input: input, alphabet: alphabet}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\n', '\r':
			l.pos++
		default:
			return
		}
	}
}

// NextToken returns the next token from the input. After the input is
// exhausted it returns TokenEOF.
func (l *Lexer) NextToken() (Token, error) {
	l.skipWhitespace()

	pos := l.pos
	if pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: pos}, nil
	}

	ch := l.input[pos]
	l.pos++

	if l.alphabet[ch] {
		return Token{Type: TokenSetRef, Literal: string(ch), Pos: pos}, nil
	}

	switch ch {
	case '.':
		return Token{Type: TokenNot, Literal: ".", Pos: pos}, nil
	case 'U':
		return Token{Type: TokenOr, Literal: "U", Pos: pos}, nil
	case '&':
		return Token{Type: TokenAnd, Literal: "&", Pos: pos}, nil
	case '^':
		return Token{Type: TokenXor, Literal: "^", Pos: pos}, nil
	case '-':
		return Token{Type: TokenDiff, Literal: "-", Pos: pos}, nil
	case '(':
		return Token{Type: TokenLParen, Literal: "(", Pos: pos}, nil
	case ')':
		return Token{Type: TokenRParen, Literal: ")", Pos: pos}, nil
	}

	return Token{}, &ParseError{Err: ErrUnknownCharacter, Detail: string(ch), Pos: pos}
}

// Tokenize returns all tokens from the input, excluding the trailing EOF.
func Tokenize(input string, names []string) ([]Token, error) {
	l := NewLexer(input, names)
	var tokens []Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Type == TokenEOF {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}
