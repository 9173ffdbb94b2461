package geometry

import "github.com/bits-and-blooms/bitset"

// Circle is a circular region centered at (X, Y) with radius R.
type Circle struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	R float64 `json:"r"`
}

// Contains reports whether p lies inside or on the circle.
func (c Circle) Contains(p Point) bool {
	dx := p.X - c.X
	dy := p.Y - c.Y
	return dx*dx+dy*dy <= c.R*c.R
}

// Mask computes the membership vector of the circle over the grid.
func (c Circle) Mask(g *Grid) *bitset.BitSet {
	mask := bitset.New(g.Size())
	for i, p := range g.Points() {
		if c.Contains(p) {
			mask.Set(uint(i))
		}
	}
	return mask
}

// MoveTo returns a copy of the circle centered at (x, y).
func (c Circle) MoveTo(x, y float64) Circle {
	return Circle{X: x, Y: y, R: c.R}
}
