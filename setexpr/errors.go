package setexpr

import (
	"errors"
	"fmt"
)

var (
	// Tokenizer errors
	ErrUnknownCharacter = errors.New("setexpr: unknown character")

	// Parser errors
	ErrUnknownSet           = errors.New("setexpr: unknown set")
	ErrUnexpectedToken      = errors.New("setexpr: unexpected token")
	ErrUnexpectedEndOfInput = errors.New("setexpr: unexpected end of input")
	ErrUnclosedParenthesis  = errors.New("setexpr: unclosed parenthesis")

	// Membership validation errors
	ErrInvalidSetName  = errors.New("setexpr: set name must be a single uppercase letter")
	ErrReservedSetName = errors.New("setexpr: set name collides with an operator")
	ErrSizeMismatch    = errors.New("setexpr: membership vector length does not match universe size")
)

// ParseError carries the failure category together with the offending
// input fragment and its byte offset in the formula.
type ParseError struct {
	Err    error  // one of the sentinel errors above
	Detail string // offending character, token literal, or set name
	Pos    int    // byte offset into the formula
}

func (e *ParseError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%v at position %d", e.Err, e.Pos)
	}
	return fmt.Sprintf("%v %q at position %d", e.Err, e.Detail, e.Pos)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
