// Package geometry discretizes a square canvas into a point grid and
// computes membership vectors for circular regions over it. The grid is
// the universe every set-expression evaluation runs against.
package geometry

// Point is a single sample position on the canvas.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Grid is a square lattice of sample points, Dim per axis, evenly spaced
// over [Min, Max] on both axes. Point order is fixed at construction and
// shared by every membership vector built from the grid.
type Grid struct {
	Dim    int
	Min    float64
	Max    float64
	points []Point
}

// Default sampling, chosen to keep evaluation cheap while still reading
// as a filled region when rendered.
const (
	DefaultGridDim = 100
	DefaultGridMin = -4.8
	DefaultGridMax = 4.8
)

// NewGrid creates a dim x dim grid spanning [min, max] on both axes.
func NewGrid(dim int, min, max float64) *Grid {
	if dim < 2 {
		dim = 2
	}
	step := (max - min) / float64(dim-1)
	points := make([]Point, 0, dim*dim)
	for row := 0; row < dim; row++ {
		y := min + float64(row)*step
		for col := 0; col < dim; col++ {
			points = append(points, Point{X: min + float64(col)*step, Y: y})
		}
	}
	return &Grid{Dim: dim, Min: min, Max: max, points: points}
}

// DefaultGrid returns the standard 100x100 grid over [-4.8, 4.8].
func DefaultGrid() *Grid {
	return NewGrid(DefaultGridDim, DefaultGridMin, DefaultGridMax)
}

// Size returns the number of sample points (Dim squared).
func (g *Grid) Size() uint {
	return uint(len(g.points))
}

// Point returns the sample point at index i.
func (g *Grid) Point(i uint) Point {
	return g.points[i]
}

// Points returns the sample points in universe order. The slice is
// shared; callers must not modify it.
func (g *Grid) Points() []Point {
	return g.points
}
