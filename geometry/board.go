package geometry

import (
	"errors"

	"github.com/bits-and-blooms/bitset"

	"github.com/pflow-xyz/go-venn/setexpr"
)

var (
	ErrInvalidRegionName   = errors.New("geometry: region name must be a single uppercase letter other than U")
	ErrDuplicateRegionName = errors.New("geometry: duplicate region name")
	ErrUnknownRegion       = errors.New("geometry: unknown region")
)

// Region is a named circular region on a board.
type Region struct {
	Name   string `json:"name"`
	Color  string `json:"color"`
	Circle Circle `json:"circle"`
}

// Board holds named regions over one grid. It is the membership provider
// for set-expression evaluation: masks are rebuilt from current geometry
// on every Membership call and never cached across region moves.
//
// Board is not safe for concurrent mutation; the owning collaborator
// serializes moves against evaluations.
type Board struct {
	grid     *Grid
	regions  []Region
	defaults []Region
}

// NewBoard creates an empty board over the given grid. A nil grid gets
// the default 100x100 sampling.
func NewBoard(grid *Grid) *Board {
	if grid == nil {
		grid = DefaultGrid()
	}
	return &Board{grid: grid}
}

// DefaultBoard returns the standard three-region board: A, B and C,
// radius 1.5, arranged in a triangle.
func DefaultBoard() *Board {
	b := NewBoard(DefaultGrid())
	b.AddRegion("A", Circle{X: -2, Y: 0, R: 1.5}, "darkred")
	b.AddRegion("B", Circle{X: 2, Y: 0, R: 1.5}, "darkblue")
	b.AddRegion("C", Circle{X: 0, Y: 2, R: 1.5}, "darkgreen")
	return b
}

// AddRegion adds a named region. Names are single uppercase letters;
// U is reserved for the union operator.
func (b *Board) AddRegion(name string, c Circle, color string) error {
	if len(name) != 1 || name[0] < 'A' || name[0] > 'Z' || name == "U" {
		return ErrInvalidRegionName
	}
	for _, r := range b.regions {
		if r.Name == name {
			return ErrDuplicateRegionName
		}
	}
	region := Region{Name: name, Color: color, Circle: c}
	b.regions = append(b.regions, region)
	b.defaults = append(b.defaults, region)
	return nil
}

// Grid returns the board's grid.
func (b *Board) Grid() *Grid {
	return b.grid
}

// Regions returns a copy of the current regions in insertion order.
func (b *Board) Regions() []Region {
	out := make([]Region, len(b.regions))
	copy(out, b.regions)
	return out
}

// Names returns the region names in insertion order.
func (b *Board) Names() []string {
	names := make([]string, len(b.regions))
	for i, r := range b.regions {
		names[i] = r.Name
	}
	return names
}

// MoveRegion recenters the named region at (x, y).
func (b *Board) MoveRegion(name string, x, y float64) error {
	for i := range b.regions {
		if b.regions[i].Name == name {
			b.regions[i].Circle = b.regions[i].Circle.MoveTo(x, y)
			return nil
		}
	}
	return ErrUnknownRegion
}

// Reset restores every region to the position it was added at.
func (b *Board) Reset() {
	copy(b.regions, b.defaults)
}

// Membership builds a fresh membership map from current region geometry.
func (b *Board) Membership() setexpr.Membership {
	sets := make(map[string]*bitset.BitSet, len(b.regions))
	for _, r := range b.regions {
		sets[r.Name] = r.Circle.Mask(b.grid)
	}
	return setexpr.Membership{Size: b.grid.Size(), Sets: sets}
}

// Evaluate computes the membership vector of formula over the board's
// current geometry.
func (b *Board) Evaluate(formula string) (*bitset.BitSet, error) {
	return setexpr.Evaluate(formula, b.Membership())
}
