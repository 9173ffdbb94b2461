package setexpr

import (
	"errors"
	"sync"
	"testing"

	"github.com/bits-and-blooms/bitset"
)

const testSize = 8

func newSet(bits ...uint) *bitset.BitSet {
	s := bitset.New(testSize)
	for _, b := range bits {
		s.Set(b)
	}
	return s
}

func testMembership() Membership {
	return Membership{
		Size: testSize,
		Sets: map[string]*bitset.BitSet{
			"A": newSet(0, 1, 2, 3),
			"B": newSet(2, 3, 4, 5),
			"C": newSet(3, 5, 6),
		},
	}
}

func mustEval(t *testing.T, formula string) *bitset.BitSet {
	t.Helper()
	result, err := Evaluate(formula, testMembership())
	if err != nil {
		t.Fatalf("Evaluate(%q) failed: %v", formula, err)
	}
	return result
}

func assertSet(t *testing.T, formula string, want *bitset.BitSet) {
	t.Helper()
	got := mustEval(t, formula)
	if !got.Equal(want) {
		t.Errorf("Evaluate(%q) = %v, want %v", formula, got, want)
	}
}

func TestEvaluate_SetRef(t *testing.T) {
	m := testMembership()
	for name, mask := range m.Sets {
		result, err := Evaluate(name, m)
		if err != nil {
			t.Fatalf("Evaluate(%q) failed: %v", name, err)
		}
		if !result.Equal(mask) {
			t.Errorf("Evaluate(%q) = %v, want %v", name, result, mask)
		}
	}
}

func TestEvaluate_ResultDoesNotAliasMembership(t *testing.T) {
	m := testMembership()
	result, err := Evaluate("A", m)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	result.Set(7)
	if m.Sets["A"].Test(7) {
		t.Error("mutating the result changed the membership map")
	}
}

func TestEvaluate_BinaryOperators(t *testing.T) {
	assertSet(t, "A U B", newSet(0, 1, 2, 3, 4, 5))
	assertSet(t, "A & B", newSet(2, 3))
	assertSet(t, "A ^ B", newSet(0, 1, 4, 5))
	assertSet(t, "A - B", newSet(0, 1))
}

func TestEvaluate_Complement(t *testing.T) {
	a := mustEval(t, "A")
	assertSet(t, "A.", a.Complement())
	assertSet(t, "(A U B).", newSet(6, 7))
}

func TestEvaluate_LeftAssociative(t *testing.T) {
	// (A - B) - C, not A - (B - C)
	assertSet(t, "A - B - C", newSet(0, 1))
	assertSet(t, "A - (B - C)", newSet(0, 1, 3))
}

// Binding order, tightest first: complement, &, ^, -, U. The - tier
// binds tighter than U, so A U B - C groups as A U (B - C).
func TestEvaluate_Precedence(t *testing.T) {
	assertSet(t, "A U B - C", newSet(0, 1, 2, 3, 4))
	assertSet(t, "(A U B) - C", newSet(0, 1, 2, 4))

	// & over ^: A ^ B & C groups as A ^ (B & C)
	assertSet(t, "A ^ B & C", newSet(0, 1, 2, 5))
	// ^ over -: A - B ^ C groups as A - (B ^ C)
	assertSet(t, "A - B ^ C", newSet(0, 1, 3))
	// complement over &: A & B. groups as A & (B.)
	assertSet(t, "A & B.", newSet(0, 1))
}

func TestEvaluate_Parenthesization(t *testing.T) {
	grouped := mustEval(t, "(A U B) & C")
	def := mustEval(t, "A U (B & C)")
	if grouped.Equal(def) {
		t.Fatal("expected grouping to change the result for these sets")
	}
	assertSet(t, "(A U B) & C", newSet(3, 5))
	assertSet(t, "A U (B & C)", newSet(0, 1, 2, 3, 5))
}

func TestEvaluate_EmptyFormula(t *testing.T) {
	for _, formula := range []string{"", "   ", "\t\n"} {
		result, err := Evaluate(formula, testMembership())
		if err != nil {
			t.Fatalf("Evaluate(%q) failed: %v", formula, err)
		}
		if result.Len() != testSize {
			t.Errorf("Evaluate(%q): expected length %d, got %d", formula, testSize, result.Len())
		}
		if result.Any() {
			t.Errorf("Evaluate(%q): expected the empty set, got %v", formula, result)
		}
	}
}

// The complement applies at most once per atom: a second trailing dot
// has no grammar position and is rejected rather than ignored.
func TestEvaluate_DoubleComplementRejected(t *testing.T) {
	_, err := Evaluate("A..", testMembership())
	if !errors.Is(err, ErrUnexpectedToken) {
		t.Fatalf("expected ErrUnexpectedToken, got %v", err)
	}
	// Parenthesizing restores double negation.
	a := mustEval(t, "A")
	assertSet(t, "(A.).", a)
}

func TestEvaluate_Errors(t *testing.T) {
	cases := []struct {
		formula string
		want    error
	}{
		{"A U B #", ErrUnknownCharacter},
		{"(A U B", ErrUnclosedParenthesis},
		{"((A)", ErrUnclosedParenthesis},
		{"A U", ErrUnexpectedEndOfInput},
		{"(", ErrUnexpectedEndOfInput},
		{"U A", ErrUnexpectedToken},
		{"A U & B", ErrUnexpectedToken},
		{"A B", ErrUnexpectedToken},
		{")", ErrUnexpectedToken},
		{"A )", ErrUnexpectedToken},
	}
	for _, tc := range cases {
		t.Run(tc.formula, func(t *testing.T) {
			result, err := Evaluate(tc.formula, testMembership())
			if !errors.Is(err, tc.want) {
				t.Fatalf("Evaluate(%q): expected %v, got %v", tc.formula, tc.want, err)
			}
			if result != nil {
				t.Errorf("Evaluate(%q): expected no partial result, got %v", tc.formula, result)
			}
		})
	}
}

func TestEvaluate_UnknownSet(t *testing.T) {
	// Evaluate derives the lexer alphabet from the map, so a letter
	// outside it never tokenizes.
	_, err := Evaluate("A U D", testMembership())
	if !errors.Is(err, ErrUnknownCharacter) {
		t.Fatalf("expected ErrUnknownCharacter, got %v", err)
	}

	// A token stream can still reference a set the map does not carry.
	tokens, err := Tokenize("A U D", []string{"A", "B", "C", "D"})
	if err != nil {
		t.Fatalf("tokenize failed: %v", err)
	}
	_, err = EvaluateTokens(tokens, testMembership())
	if !errors.Is(err, ErrUnknownSet) {
		t.Fatalf("expected ErrUnknownSet, got %v", err)
	}
	var perr *ParseError
	if !errors.As(err, &perr) || perr.Detail != "D" {
		t.Errorf("expected detail D, got %v", err)
	}
}

func TestMembership_Validate(t *testing.T) {
	cases := []struct {
		name string
		m    Membership
		want error
	}{
		{"lowercase", Membership{Size: testSize, Sets: map[string]*bitset.BitSet{"a": newSet()}}, ErrInvalidSetName},
		{"multichar", Membership{Size: testSize, Sets: map[string]*bitset.BitSet{"AB": newSet()}}, ErrInvalidSetName},
		{"reserved", Membership{Size: testSize, Sets: map[string]*bitset.BitSet{"U": newSet()}}, ErrReservedSetName},
		{"short", Membership{Size: 16, Sets: map[string]*bitset.BitSet{"A": newSet()}}, ErrSizeMismatch},
		{"nil", Membership{Size: testSize, Sets: map[string]*bitset.BitSet{"A": nil}}, ErrSizeMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.m.Validate(); !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestUsedSets(t *testing.T) {
	names := []string{"A", "B", "C"}
	used := UsedSets("(A U B).", names)
	if len(used) != 2 || used[0] != "A" || used[1] != "B" {
		t.Errorf("expected [A B], got %v", used)
	}
	if got := UsedSets("", names); len(got) != 0 {
		t.Errorf("expected no used sets, got %v", got)
	}
}

// Evaluations on distinct membership maps share no state and may run
// concurrently.
func TestEvaluate_Concurrent(t *testing.T) {
	const goroutines = 16

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(n uint) {
			defer wg.Done()
			m := Membership{
				Size: testSize,
				Sets: map[string]*bitset.BitSet{
					"A": newSet(n % testSize),
					"B": newSet((n + 1) % testSize),
				},
			}
			want := newSet(n%testSize, (n+1)%testSize)
			for j := 0; j < 100; j++ {
				result, err := Evaluate("A U B", m)
				if err != nil {
					t.Errorf("Evaluate failed: %v", err)
					return
				}
				if !result.Equal(want) {
					t.Errorf("goroutine %d: got %v, want %v", n, result, want)
					return
				}
			}
		}(uint(i))
	}
	wg.Wait()
}
