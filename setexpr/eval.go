package setexpr

import (
	"sort"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// Membership maps set names to membership vectors over a shared universe.
// Every vector must have exactly Size bits, position-aligned to the same
// element ordering. The map is read-only for the duration of one
// Evaluate call; callers rebuild it whenever the underlying regions
// change.
type Membership struct {
	Size uint
	Sets map[string]*bitset.BitSet
}

// Names returns the set names in sorted order.
func (m Membership) Names() []string {
	names := make([]string, 0, len(m.Sets))
	for name := range m.Sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that every set name is a single uppercase letter that
// does not collide with the U operator, and that every vector matches
// the universe size.
func (m Membership) Validate() error {
	for name, mask := range m.Sets {
		if len(name) != 1 || name[0] < 'A' || name[0] > 'Z' {
			return &ParseError{Err: ErrInvalidSetName, Detail: name}
		}
		if name == "U" {
			return &ParseError{Err: ErrReservedSetName, Detail: name}
		}
		if mask == nil || mask.Len() != m.Size {
			return &ParseError{Err: ErrSizeMismatch, Detail: name}
		}
	}
	return nil
}

// Evaluate parses formula and computes its membership vector in a single
// recursive-descent pass, folding vector operations as operators are
// consumed. No syntax tree is built. The returned vector is owned by the
// caller and shares no storage with the membership map.
//
// Binding order, tightest first: postfix complement, &, ^, -, U. All
// binary operators are left-associative.
//
// An empty or whitespace-only formula evaluates to the empty set rather
// than an error. Any malformed formula yields a *ParseError and no
// partial result.
func Evaluate(formula string, m Membership) (*bitset.BitSet, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(formula) == "" {
		return bitset.New(m.Size), nil
	}

	tokens, err := Tokenize(formula, m.Names())
	if err != nil {
		return nil, err
	}
	return EvaluateTokens(tokens, m)
}

// EvaluateTokens evaluates an already-tokenized formula. Callers that
// tokenize once for their own purposes (operand inspection, highlighting)
// can reuse the token stream here. A set reference with no entry in the
// membership map fails with ErrUnknownSet.
func EvaluateTokens(tokens []Token, m Membership) (*bitset.BitSet, error) {
	if len(tokens) == 0 {
		return bitset.New(m.Size), nil
	}

	last := tokens[len(tokens)-1]
	e := &evaluator{tokens: tokens, sets: m.Sets, end: last.Pos + len(last.Literal)}
	result, err := e.parseExpression()
	if err != nil {
		return nil, err
	}
	if e.pos < len(e.tokens) {
		tok := e.tokens[e.pos]
		return nil, &ParseError{Err: ErrUnexpectedToken, Detail: tok.Literal, Pos: tok.Pos}
	}
	return result, nil
}

// UsedSets reports which of the given set names occur in formula,
// preserving the order of names.
func UsedSets(formula string, names []string) []string {
	used := make([]string, 0, len(names))
	for _, name := range names {
		if strings.Contains(formula, name) {
			used = append(used, name)
		}
	}
	return used
}

// evaluator walks the token stream once, one method per precedence tier.
// The cursor only moves forward; each tier parses its operators and
// immediately folds the corresponding vector operation.
type evaluator struct {
	tokens []Token
	pos    int
	sets   map[string]*bitset.BitSet
	end    int // byte length of the formula, for end-of-input errors
}

func (e *evaluator) match(t TokenType) bool {
	if e.pos < len(e.tokens) && e.tokens[e.pos].Type == t {
		e.pos++
		return true
	}
	return false
}

func (e *evaluator) parseExpression() (*bitset.BitSet, error) {
	return e.parseOr()
}

func (e *evaluator) parseOr() (*bitset.BitSet, error) {
	left, err := e.parseDiff()
	if err != nil {
		return nil, err
	}
	for e.match(TokenOr) {
		right, err := e.parseDiff()
		if err != nil {
			return nil, err
		}
		left = left.Union(right)
	}
	return left, nil
}

func (e *evaluator) parseDiff() (*bitset.BitSet, error) {
	left, err := e.parseXor()
	if err != nil {
		return nil, err
	}
	for e.match(TokenDiff) {
		right, err := e.parseXor()
		if err != nil {
			return nil, err
		}
		left = left.Difference(right)
	}
	return left, nil
}

func (e *evaluator) parseXor() (*bitset.BitSet, error) {
	left, err := e.parseAnd()
	if err != nil {
		return nil, err
	}
	for e.match(TokenXor) {
		right, err := e.parseAnd()
		if err != nil {
			return nil, err
		}
		left = left.SymmetricDifference(right)
	}
	return left, nil
}

func (e *evaluator) parseAnd() (*bitset.BitSet, error) {
	left, err := e.parseNot()
	if err != nil {
		return nil, err
	}
	for e.match(TokenAnd) {
		right, err := e.parseNot()
		if err != nil {
			return nil, err
		}
		left = left.Intersection(right)
	}
	return left, nil
}

// parseNot handles the postfix complement. It binds to the single
// preceding atom or parenthesized group, and applies at most once per
// atom; a second consecutive dot is left for the caller to reject.
func (e *evaluator) parseNot() (*bitset.BitSet, error) {
	operand, err := e.parseAtom()
	if err != nil {
		return nil, err
	}
	if e.match(TokenNot) {
		return operand.Complement(), nil
	}
	return operand, nil
}

func (e *evaluator) parseAtom() (*bitset.BitSet, error) {
	if e.pos >= len(e.tokens) {
		return nil, &ParseError{Err: ErrUnexpectedEndOfInput, Pos: e.end}
	}

	tok := e.tokens[e.pos]
	switch tok.Type {
	case TokenSetRef:
		mask, ok := e.sets[tok.Literal]
		if !ok {
			return nil, &ParseError{Err: ErrUnknownSet, Detail: tok.Literal, Pos: tok.Pos}
		}
		e.pos++
		// Clone so the caller-owned result never aliases the map.
		return mask.Clone(), nil

	case TokenLParen:
		e.pos++
		inner, err := e.parseExpression()
		if err != nil {
			return nil, err
		}
		if e.pos >= len(e.tokens) || e.tokens[e.pos].Type != TokenRParen {
			return nil, &ParseError{Err: ErrUnclosedParenthesis, Detail: "(", Pos: tok.Pos}
		}
		e.pos++
		return inner, nil
	}

	return nil, &ParseError{Err: ErrUnexpectedToken, Detail: tok.Literal, Pos: tok.Pos}
}
