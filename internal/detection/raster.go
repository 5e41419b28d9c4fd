package detection

import (
	"image"
	"math"

	"github.com/ironsheep/layout-tools-mcp/internal/imaging"
	"github.com/ironsheep/layout-tools-mcp/internal/layout"
)

// NewGrid allocates an all-background grid.
func NewGrid(width, height int) [][]bool {
	grid := make([][]bool, height)
	for y := range grid {
		grid[y] = make([]bool, width)
	}
	return grid
}

// CloneGrid returns a deep copy of a grid.
func CloneGrid(grid [][]bool) [][]bool {
	c := make([][]bool, len(grid))
	for y, row := range grid {
		c[y] = append([]bool(nil), row...)
	}
	return c
}

// FillPolygon sets every pixel whose center lies inside the outline, plus
// the outline itself, to value. Points are scaled by scale first; pixels
// outside the grid are ignored.
func FillPolygon(grid [][]bool, points []layout.Point, scale float64, value bool) {
	if len(points) == 0 || len(grid) == 0 {
		return
	}
	height, width := len(grid), len(grid[0])

	scaled := make([]layout.Point, len(points))
	for i, p := range points {
		scaled[i] = layout.Point{X: p.X * scale, Y: p.Y * scale}
	}

	bounds := layout.PointsBounds(scaled).Intersect(image.Rect(0, 0, width, height))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if layout.Contains(scaled, float64(x)+0.5, float64(y)+0.5) {
				grid[y][x] = value
			}
		}
	}
	DrawPolyline(grid, points, scale, true, value)
}

// DrawPolyline sets the pixels along a polyline to value. When closed is
// true the last point connects back to the first.
func DrawPolyline(grid [][]bool, points []layout.Point, scale float64, closed bool, value bool) {
	if len(points) == 0 || len(grid) == 0 {
		return
	}
	height, width := len(grid), len(grid[0])
	plot := func(x, y int) {
		if x >= 0 && x < width && y >= 0 && y < height {
			grid[y][x] = value
		}
	}

	pt := func(p layout.Point) (int, int) {
		return int(math.Round(p.X * scale)), int(math.Round(p.Y * scale))
	}

	if len(points) == 1 {
		x, y := pt(points[0])
		plot(x, y)
		return
	}

	n := len(points) - 1
	if closed {
		n = len(points)
	}
	for i := 0; i < n; i++ {
		x0, y0 := pt(points[i])
		x1, y1 := pt(points[(i+1)%len(points)])
		imaging.TraceLine(x0, y0, x1, y1, plot)
	}
}

// Dilate grows the foreground by a rectangular structuring element of
// (2*rx+1) x (2*ry+1) pixels. The grid is not modified.
//
// The element is separable, so the work is one horizontal and one vertical
// running-window pass.
func Dilate(grid [][]bool, rx, ry int) [][]bool {
	height := len(grid)
	if height == 0 {
		return nil
	}
	width := len(grid[0])

	horizontal := NewGrid(width, height)
	for y := 0; y < height; y++ {
		dilateLine(width, rx, func(i int) bool { return grid[y][i] }, func(i int) { horizontal[y][i] = true })
	}

	out := NewGrid(width, height)
	for x := 0; x < width; x++ {
		dilateLine(height, ry, func(i int) bool { return horizontal[i][x] }, func(i int) { out[i][x] = true })
	}
	return out
}

// Erode shrinks the foreground by the same structuring element as Dilate.
// Pixels beyond the grid count as foreground. The grid is not modified.
func Erode(grid [][]bool, rx, ry int) [][]bool {
	grown := Dilate(invert(grid), rx, ry)
	return invert(grown)
}

func invert(grid [][]bool) [][]bool {
	out := make([][]bool, len(grid))
	for y, row := range grid {
		out[y] = make([]bool, len(row))
		for x, v := range row {
			out[y][x] = !v
		}
	}
	return out
}

// dilateLine marks every index within r of a set index.
func dilateLine(n, r int, get func(int) bool, set func(int)) {
	if r < 0 {
		r = 0
	}
	last := math.MinInt32
	for i := 0; i < n; i++ {
		if get(i) {
			last = i
		}
		if i-last <= r {
			set(i)
		}
	}
	next := math.MaxInt32
	for i := n - 1; i >= 0; i-- {
		if get(i) {
			next = i
		}
		if next-i <= r {
			set(i)
		}
	}
}
