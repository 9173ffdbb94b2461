package geometry

import (
	"errors"
	"testing"
)

func TestNewGrid(t *testing.T) {
	g := NewGrid(3, -1, 1)
	if g.Size() != 9 {
		t.Fatalf("expected 9 points, got %d", g.Size())
	}

	first := g.Point(0)
	if first.X != -1 || first.Y != -1 {
		t.Errorf("expected first point (-1,-1), got %+v", first)
	}
	last := g.Point(8)
	if last.X != 1 || last.Y != 1 {
		t.Errorf("expected last point (1,1), got %+v", last)
	}
	center := g.Point(4)
	if center.X != 0 || center.Y != 0 {
		t.Errorf("expected center point (0,0), got %+v", center)
	}
}

func TestDefaultGrid(t *testing.T) {
	g := DefaultGrid()
	if g.Size() != DefaultGridDim*DefaultGridDim {
		t.Errorf("expected %d points, got %d", DefaultGridDim*DefaultGridDim, g.Size())
	}
}

func TestCircleContains(t *testing.T) {
	c := Circle{X: 1, Y: 1, R: 2}

	if !c.Contains(Point{X: 1, Y: 1}) {
		t.Error("expected center to be contained")
	}
	if !c.Contains(Point{X: 3, Y: 1}) {
		t.Error("expected boundary point to be contained")
	}
	if c.Contains(Point{X: 3.01, Y: 1}) {
		t.Error("expected point outside radius to be excluded")
	}
}

func TestCircleMask(t *testing.T) {
	g := NewGrid(3, -1, 1)
	// Small circle at the origin covers only the center point.
	mask := Circle{X: 0, Y: 0, R: 0.5}.Mask(g)

	if mask.Len() != g.Size() {
		t.Fatalf("expected mask length %d, got %d", g.Size(), mask.Len())
	}
	if mask.Count() != 1 || !mask.Test(4) {
		t.Errorf("expected only the center point set, got %v", mask)
	}
}

func TestBoardMembership(t *testing.T) {
	b := DefaultBoard()
	m := b.Membership()

	if m.Size != b.Grid().Size() {
		t.Errorf("expected universe size %d, got %d", b.Grid().Size(), m.Size)
	}
	for _, name := range []string{"A", "B", "C"} {
		mask, ok := m.Sets[name]
		if !ok {
			t.Fatalf("expected set %s in membership map", name)
		}
		if mask.None() {
			t.Errorf("expected set %s to cover some grid points", name)
		}
	}
	if err := m.Validate(); err != nil {
		t.Errorf("expected valid membership, got %v", err)
	}
}

func TestBoardMoveRebuildsMembership(t *testing.T) {
	b := DefaultBoard()
	before := b.Membership().Sets["A"]

	if err := b.MoveRegion("A", 3, 3); err != nil {
		t.Fatalf("move failed: %v", err)
	}
	after := b.Membership().Sets["A"]

	if before.Equal(after) {
		t.Error("expected mask to change after moving the region")
	}
	if err := b.MoveRegion("Z", 0, 0); !errors.Is(err, ErrUnknownRegion) {
		t.Errorf("expected ErrUnknownRegion, got %v", err)
	}
}

func TestBoardReset(t *testing.T) {
	b := DefaultBoard()
	original := b.Regions()

	b.MoveRegion("A", 3, 3)
	b.MoveRegion("B", -3, -3)
	b.Reset()

	restored := b.Regions()
	for i := range original {
		if restored[i] != original[i] {
			t.Errorf("region %s not restored: %+v != %+v", original[i].Name, restored[i], original[i])
		}
	}
}

func TestAddRegionValidation(t *testing.T) {
	b := NewBoard(NewGrid(4, -1, 1))

	cases := []struct {
		name string
		want error
	}{
		{"a", ErrInvalidRegionName},
		{"AB", ErrInvalidRegionName},
		{"U", ErrInvalidRegionName},
		{"", ErrInvalidRegionName},
	}
	for _, tc := range cases {
		if err := b.AddRegion(tc.name, Circle{R: 1}, ""); !errors.Is(err, tc.want) {
			t.Errorf("AddRegion(%q): expected %v, got %v", tc.name, tc.want, err)
		}
	}

	if err := b.AddRegion("A", Circle{R: 1}, ""); err != nil {
		t.Fatalf("AddRegion(A) failed: %v", err)
	}
	if err := b.AddRegion("A", Circle{R: 1}, ""); !errors.Is(err, ErrDuplicateRegionName) {
		t.Errorf("expected ErrDuplicateRegionName, got %v", err)
	}
}

func TestBoardEvaluate(t *testing.T) {
	b := DefaultBoard()

	union, err := b.Evaluate("A U B")
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	a, _ := b.Evaluate("A")
	if union.Count() < a.Count() {
		t.Error("expected A U B to cover at least as many points as A")
	}

	// Disjoint default circles: A & B is empty, A - B equals A.
	inter, err := b.Evaluate("A & B")
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if inter.Any() {
		t.Errorf("expected default A and B to be disjoint, got %d points", inter.Count())
	}
	diff, err := b.Evaluate("A - B")
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if !diff.Equal(a) {
		t.Error("expected A - B to equal A for disjoint circles")
	}
}
