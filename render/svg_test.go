package render

import (
	"strings"
	"testing"

	"github.com/pflow-xyz/go-venn/geometry"
)

func TestRender_Basic(t *testing.T) {
	board := geometry.DefaultBoard()
	result, err := board.Evaluate("A U B")
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}

	svg := NewRenderer(800, 800).Render(board, "A U B", result)

	if !strings.HasPrefix(svg, "<svg") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatal("expected a complete SVG document")
	}
	if !strings.Contains(svg, "darkred") || !strings.Contains(svg, "darkblue") {
		t.Error("expected region circles for A and B")
	}
	if strings.Contains(svg, "darkgreen") {
		t.Error("expected C to be hidden for a formula that does not use it")
	}
	if !strings.Contains(svg, "Formula: A U B") {
		t.Error("expected formula in title")
	}
	if !strings.Contains(svg, "Points:") {
		t.Error("expected point count in title")
	}
	if !strings.Contains(svg, "purple") {
		t.Error("expected result points to be drawn")
	}
}

func TestRender_EmptyFormulaShowsAllRegions(t *testing.T) {
	board := geometry.DefaultBoard()
	svg := NewRenderer(800, 800).Render(board, "", nil)

	for _, color := range []string{"darkred", "darkblue", "darkgreen"} {
		if !strings.Contains(svg, color) {
			t.Errorf("expected all regions visible, missing %s", color)
		}
	}
	if strings.Contains(svg, "purple") {
		t.Error("expected no result points without a formula")
	}
}

func TestRender_EscapesFormula(t *testing.T) {
	board := geometry.DefaultBoard()
	result, err := board.Evaluate("A & B")
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}

	svg := NewRenderer(400, 400).Render(board, "A & B", result)
	if strings.Contains(svg, "Formula: A & B") {
		t.Error("expected the ampersand to be escaped in the title")
	}
	if !strings.Contains(svg, "Formula: A &amp; B") {
		t.Error("expected escaped formula in title")
	}
}

func TestEscape(t *testing.T) {
	if got := Escape(`<a&"b>`); got != "&lt;a&amp;&quot;b&gt;" {
		t.Errorf("unexpected escape result: %q", got)
	}
}
