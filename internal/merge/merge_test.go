package merge

import (
	"errors"
	"image"
	"testing"
	"time"

	"github.com/ironsheep/layout-tools-mcp/internal/detection"
	pageimg "github.com/ironsheep/layout-tools-mcp/internal/imaging"
	"github.com/ironsheep/layout-tools-mcp/internal/layout"
)

func rect(id string, typ layout.RegionType, x1, y1, x2, y2 float64) layout.Region {
	return layout.Region{
		ID:     id,
		Type:   typ,
		Points: []layout.Point{{X: x1, Y: y1}, {X: x2, Y: y1}, {X: x2, Y: y2}, {X: x1, Y: y2}},
	}
}

func maskWithBlocks(width, height int, blocks ...image.Rectangle) *image.Gray {
	grid := detection.NewGrid(width, height)
	for _, b := range blocks {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				grid[y][x] = true
			}
		}
	}
	return pageimg.MaskFromGrid(grid)
}

func near(a, b int) bool {
	d := a - b
	return d >= -1 && d <= 1
}

func TestMerge_Errors(t *testing.T) {
	mask := maskWithBlocks(100, 100)

	if _, err := Merge(nil, mask); !errors.Is(err, ErrNoRegions) {
		t.Errorf("empty input: got %v, want ErrNoRegions", err)
	}

	two := []layout.Region{rect("a", layout.TypeParagraph, 0, 0, 10, 10), rect("b", layout.TypeParagraph, 20, 0, 30, 10)}
	if _, err := Merge(two, nil); !errors.Is(err, ErrNoMask) {
		t.Errorf("nil mask: got %v, want ErrNoMask", err)
	}

	outside := []layout.Region{rect("a", layout.TypeParagraph, 200, 200, 210, 210), rect("b", layout.TypeParagraph, 300, 300, 310, 310)}
	if _, err := Merge(outside, mask); !errors.Is(err, ErrOutsidePage) {
		t.Errorf("outside page: got %v, want ErrOutsidePage", err)
	}
}

func TestMerge_SingleRegionUnchanged(t *testing.T) {
	in := rect("only", layout.TypeHeading, 1, 2, 30, 40)

	got, err := Merge([]layout.Region{in}, nil)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if got.ID != "only" || got.Type != layout.TypeHeading || len(got.Points) != 4 {
		t.Fatalf("got %+v, want input unchanged", got)
	}
	for i := range in.Points {
		if got.Points[i] != in.Points[i] {
			t.Errorf("point %d: got %v, want %v", i, got.Points[i], in.Points[i])
		}
	}
}

func TestMerge_FollowsInk(t *testing.T) {
	left := image.Rect(10, 10, 20, 20)
	right := image.Rect(40, 10, 50, 20)
	mask := maskWithBlocks(100, 100, left, right)

	regions := []layout.Region{
		rect("a", layout.TypeCaption, 5, 5, 25, 25),
		rect("b", layout.TypeParagraph, 35, 5, 55, 25),
	}

	got, err := Merge(regions, mask)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	if got.Type != layout.TypeCaption {
		t.Errorf("type: got %s, want type of the first region", got.Type)
	}
	if got.ID == "" || got.ID == "a" || got.ID == "b" {
		t.Errorf("merged region needs a fresh id, got %q", got.ID)
	}

	b := got.Bounds()
	if !left.In(b) || !right.In(b) {
		t.Errorf("outline %v should cover both ink blocks", b)
	}
	if len(got.Points) < 4 {
		t.Errorf("outline has %d points", len(got.Points))
	}
}

func TestMerge_NoInkUsesFilledUnion(t *testing.T) {
	mask := maskWithBlocks(100, 100)
	regions := []layout.Region{
		rect("a", layout.TypeParagraph, 5, 5, 20, 20),
		rect("b", layout.TypeParagraph, 15, 10, 30, 25),
	}

	got, err := Merge(regions, mask)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	b := got.Bounds()
	if !near(b.Min.X, 5) || !near(b.Min.Y, 5) || !near(b.Max.X, 31) || !near(b.Max.Y, 26) {
		t.Errorf("outline bounds %v, want about (5,5)-(31,26)", b)
	}
}

func TestMerge_StaysInsideInputs(t *testing.T) {
	mask := maskWithBlocks(300, 400, image.Rect(20, 50, 138, 175), image.Rect(162, 50, 280, 175))
	regions := []layout.Region{
		rect("a", layout.TypeParagraph, 10, 40, 145, 185),
		rect("b", layout.TypeParagraph, 155, 40, 290, 185),
	}

	got, err := Merge(regions, mask)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	limit := layout.PointsBounds(regions[0].Points).Union(layout.PointsBounds(regions[1].Points))
	b := got.Bounds()
	if !b.In(limit) {
		t.Errorf("outline %v spills outside the inputs %v", b, limit)
	}
	if !near(b.Min.X, 20) || !near(b.Max.X, 280) || !near(b.Min.Y, 50) || !near(b.Max.Y, 175) {
		t.Errorf("outline %v, want about the ink (20,50)-(280,175)", b)
	}
}

func TestMerge_WideGapOnLargePage(t *testing.T) {
	left := image.Rect(50, 100, 250, 300)
	right := image.Rect(290, 100, 550, 300)
	mask := maskWithBlocks(600, 800, left, right)
	regions := []layout.Region{
		rect("a", layout.TypeParagraph, 45, 95, 255, 305),
		rect("b", layout.TypeParagraph, 285, 95, 555, 305),
	}

	started := time.Now()
	got, err := Merge(regions, mask)
	elapsed := time.Since(started)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if elapsed > 5*time.Second {
		t.Errorf("Merge took %v", elapsed)
	}

	b := got.Bounds()
	if !left.In(b) || !right.In(b) {
		t.Errorf("outline %v should cover both ink blocks", b)
	}
}

func TestMerge_BridgesDistantParts(t *testing.T) {
	first := image.Rect(10, 10, 20, 20)
	second := image.Rect(170, 170, 180, 180)
	mask := maskWithBlocks(200, 200, first, second)
	regions := []layout.Region{
		rect("a", layout.TypeParagraph, 5, 5, 25, 25),
		rect("b", layout.TypeParagraph, 165, 165, 185, 185),
	}

	got, err := Merge(regions, mask)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	b := got.Bounds()
	if !first.In(b) || !second.In(b) {
		t.Errorf("outline %v should reach both ink blocks", b)
	}
}

func TestConnect_SinglePartUnchanged(t *testing.T) {
	grid := detection.NewGrid(10, 10)
	grid[3][3] = true
	grid[3][4] = true

	out := connect(grid, grid)
	if n := len(detection.ConnectedComponents(out, 1)); n != 1 || !out[3][3] || !out[3][4] || out[4][4] {
		t.Errorf("single part should pass through, got %d components", n)
	}
}

func TestConnect_ClosesGapWithinBounds(t *testing.T) {
	grid := detection.NewGrid(200, 100)
	grid[50][70] = true
	grid[50][130] = true
	clip := detection.NewGrid(200, 100)

	out := connect(grid, clip)
	comps := detection.ConnectedComponents(out, 1)
	if len(comps) != 1 {
		t.Fatalf("got %d components, want 1", len(comps))
	}
	if want := image.Rect(70, 50, 131, 51); comps[0].Bounds != want {
		t.Errorf("bounds %v, want %v", comps[0].Bounds, want)
	}
}
