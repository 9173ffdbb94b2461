// Package render draws a board and an evaluation result as SVG.
package render

import (
	"fmt"
	"os"
	"strings"

	"github.com/bits-and-blooms/bitset"

	"github.com/pflow-xyz/go-venn/geometry"
	"github.com/pflow-xyz/go-venn/setexpr"
)

// Renderer generates SVG images of a board. Regions not referenced by
// the formula are hidden, matching the universe view: an empty formula
// shows every region and no result points.
type Renderer struct {
	Width       float64
	Height      float64
	CanvasMin   float64
	CanvasMax   float64
	PointColor  string
	PointRadius float64
}

// NewRenderer creates a renderer with the given pixel dimensions over
// the standard [-5, 5] canvas.
func NewRenderer(width, height float64) *Renderer {
	return &Renderer{
		Width:       width,
		Height:      height,
		CanvasMin:   -5,
		CanvasMax:   5,
		PointColor:  "purple",
		PointRadius: 1.5,
	}
}

// SetCanvas sets the world-coordinate range shown on both axes.
func (r *Renderer) SetCanvas(min, max float64) *Renderer {
	r.CanvasMin = min
	r.CanvasMax = max
	return r
}

// SetPointStyle sets the color and pixel radius of result points.
func (r *Renderer) SetPointStyle(color string, radius float64) *Renderer {
	r.PointColor = color
	r.PointRadius = radius
	return r
}

// Render draws the board with the given formula and its result vector.
// The result may be nil (nothing evaluated yet, or the caller chose to
// render an error state as the empty set).
func (r *Renderer) Render(board *geometry.Board, formula string, result *bitset.BitSet) string {
	scale := (r.Width - 1) / (r.CanvasMax - r.CanvasMin)
	sx := func(x float64) float64 { return (x - r.CanvasMin) * scale }
	sy := func(y float64) float64 { return r.Height - (y-r.CanvasMin)*scale }

	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">`,
		int(r.Width), int(r.Height)))

	// Universe background
	sb.WriteString(fmt.Sprintf(`<rect width="%d" height="%d" fill="lightgray" fill-opacity="0.3" stroke="black"/>`,
		int(r.Width), int(r.Height)))

	// Region circles, only those the formula references
	visible := board.Names()
	if strings.TrimSpace(formula) != "" {
		visible = setexpr.UsedSets(formula, visible)
	}
	shown := make(map[string]bool, len(visible))
	for _, name := range visible {
		shown[name] = true
	}
	for _, region := range board.Regions() {
		if !shown[region.Name] {
			continue
		}
		c := region.Circle
		color := region.Color
		if color == "" {
			color = "black"
		}
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="white" fill-opacity="0.7" stroke="%s" stroke-width="2"/>`,
			sx(c.X), sy(c.Y), c.R*scale, color))
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" text-anchor="middle" font-family="Arial, sans-serif" font-size="16" font-weight="bold">%s</text>`,
			sx(c.X), sy(c.Y)+6, Escape(region.Name)))
	}

	// Result points
	points := uint(0)
	if result != nil {
		grid := board.Grid()
		for i, ok := result.NextSet(0); ok; i, ok = result.NextSet(i + 1) {
			p := grid.Point(i)
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" fill-opacity="0.7"/>`,
				sx(p.X), sy(p.Y), r.PointRadius, r.PointColor))
		}
		points = result.Count()
	}

	// Title
	title := "Set operations"
	if strings.TrimSpace(formula) != "" {
		title = fmt.Sprintf("Formula: %s | Points: %d", formula, points)
	}
	sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="20" text-anchor="middle" font-family="Arial, sans-serif" font-size="14" font-weight="bold">%s</text>`,
		r.Width/2, Escape(title)))

	sb.WriteString(`</svg>`)
	return sb.String()
}

// SaveSVG renders the board to SVG and writes it to a file.
func (r *Renderer) SaveSVG(filename string, board *geometry.Board, formula string, result *bitset.BitSet) error {
	return os.WriteFile(filename, []byte(r.Render(board, formula, result)), 0644)
}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// Escape makes a string safe for SVG text content.
func Escape(s string) string {
	return escaper.Replace(s)
}
