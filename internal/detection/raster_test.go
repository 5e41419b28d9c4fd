package detection

import (
	"image"
	"testing"

	"github.com/ironsheep/layout-tools-mcp/internal/layout"
)

func countSet(grid [][]bool) int {
	n := 0
	for _, row := range grid {
		for _, v := range row {
			if v {
				n++
			}
		}
	}
	return n
}

func TestFillPolygon(t *testing.T) {
	grid := NewGrid(10, 10)
	square := []layout.Point{{X: 2, Y: 2}, {X: 6, Y: 2}, {X: 6, Y: 6}, {X: 2, Y: 6}}

	FillPolygon(grid, square, 1, true)

	if got := countSet(grid); got != 25 {
		t.Errorf("filled %d pixels, want 25", got)
	}
	if !grid[4][4] || !grid[6][6] {
		t.Error("interior and outline should be set")
	}
	if grid[7][7] || grid[1][1] {
		t.Error("pixels outside the square should stay clear")
	}

	FillPolygon(grid, square, 1, false)
	if got := countSet(grid); got != 0 {
		t.Errorf("erase left %d pixels", got)
	}
}

func TestFillPolygon_ScaledAndClipped(t *testing.T) {
	grid := NewGrid(5, 5)
	// Scaled by 2 the square covers (-2,-2)-(20,20), beyond the grid.
	square := []layout.Point{{X: -1, Y: -1}, {X: 10, Y: -1}, {X: 10, Y: 10}, {X: -1, Y: 10}}

	FillPolygon(grid, square, 2, true)

	if got := countSet(grid); got != 25 {
		t.Errorf("filled %d pixels, want all 25", got)
	}
}

func TestDrawPolyline(t *testing.T) {
	grid := NewGrid(10, 10)
	line := []layout.Point{{X: 0, Y: 5}, {X: 9, Y: 5}}

	DrawPolyline(grid, line, 1, false, true)

	if got := countSet(grid); got != 10 {
		t.Errorf("drew %d pixels, want 10", got)
	}
	for x := 0; x < 10; x++ {
		if !grid[5][x] {
			t.Errorf("pixel (%d,5) not set", x)
		}
	}
}

func TestDilate(t *testing.T) {
	grid := NewGrid(11, 11)
	grid[5][5] = true

	out := Dilate(grid, 2, 1)

	if got := countSet(out); got != 15 {
		t.Errorf("dilated to %d pixels, want 15", got)
	}
	if !out[4][3] || !out[6][7] {
		t.Error("corners of the structuring element should be set")
	}
	if out[3][5] || out[5][8] {
		t.Error("pixels beyond the element should stay clear")
	}
	if countSet(grid) != 1 {
		t.Error("input grid must not be modified")
	}
}

func TestErode(t *testing.T) {
	grid := NewGrid(12, 12)
	for y := 2; y < 9; y++ {
		for x := 2; x < 10; x++ {
			grid[y][x] = true
		}
	}

	out := Erode(grid, 2, 1)

	// 8x7 block shrinks by 2 on each side horizontally and 1 vertically.
	if got := countSet(out); got != 4*5 {
		t.Errorf("eroded to %d pixels, want 20", got)
	}
	if !out[3][4] || !out[7][7] {
		t.Error("inner corners should survive")
	}
	if out[2][4] || out[3][3] {
		t.Error("pixels within the element of the edge should be cleared")
	}
	if countSet(grid) != 56 {
		t.Error("input grid must not be modified")
	}
}

func TestErode_UndoesDilation(t *testing.T) {
	grid := NewGrid(20, 20)
	grid[10][10] = true
	grid[10][11] = true

	out := Erode(Dilate(grid, 3, 3), 3, 3)
	if countSet(out) != 2 || !out[10][10] || !out[10][11] {
		t.Errorf("closing of a segment should give back the segment, got %d pixels", countSet(out))
	}
}

func TestConvexHull(t *testing.T) {
	pts := []image.Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {5, 5}, {5, 0}}

	hull := ConvexHull(pts)
	if len(hull) != 4 {
		t.Fatalf("got %v, want 4 corners", hull)
	}
	for _, p := range hull {
		if p == image.Pt(5, 5) || p == image.Pt(5, 0) {
			t.Errorf("hull contains non-corner %v", p)
		}
	}
}

func TestMinAreaRect_AxisAligned(t *testing.T) {
	pts := []image.Point{{0, 0}, {10, 0}, {10, 5}, {0, 5}, {3, 2}}

	rect := MinAreaRect(pts)
	if len(rect) != 4 {
		t.Fatalf("got %v, want 4 corners", rect)
	}

	want := map[image.Point]bool{{0, 0}: true, {10, 0}: true, {10, 5}: true, {0, 5}: true}
	for _, p := range rect {
		if !want[p] {
			t.Errorf("unexpected corner %v", p)
		}
	}
}

func TestCombineImages(t *testing.T) {
	in := []imageCandidate{
		{bounds: image.Rect(0, 0, 10, 10), members: 1},
		{bounds: image.Rect(50, 50, 60, 60), members: 1},
		{bounds: image.Rect(8, 8, 20, 20), members: 1},
		{bounds: image.Rect(18, 0, 30, 9), members: 1},
	}

	out := combineImages(in)
	if len(out) != 2 {
		t.Fatalf("got %d candidates, want 2", len(out))
	}
	if out[0].bounds != image.Rect(0, 0, 30, 20) || out[0].members != 3 {
		t.Errorf("merged candidate: bounds %v members %d", out[0].bounds, out[0].members)
	}
}
