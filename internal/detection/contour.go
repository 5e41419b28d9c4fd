package detection

import (
	"image"
	"math"
)

// Component is a set of 8-connected foreground pixels.
type Component struct {
	// Start is the top-most, then left-most pixel of the component.
	Start image.Point

	// Bounds encloses every pixel (exclusive Max).
	Bounds image.Rectangle

	// Size is the number of pixels.
	Size int
}

// ConnectedComponents finds the 8-connected components of a grid.
//
// Components are returned in row-major order of their Start pixel, so ties
// between equally sized components always resolve the same way. Components
// with fewer than minSize pixels are discarded as noise.
func ConnectedComponents(grid [][]bool, minSize int) []Component {
	height := len(grid)
	if height == 0 {
		return nil
	}
	width := len(grid[0])

	visited := make([][]bool, height)
	for y := 0; y < height; y++ {
		visited[y] = make([]bool, width)
	}

	components := make([]Component, 0)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if grid[y][x] && !visited[y][x] {
				c := floodFill(grid, visited, x, y, width, height)
				if c.Size >= minSize {
					components = append(components, c)
				}
			}
		}
	}
	return components
}

// floodFill performs iterative flood-fill from a starting point.
//
// Uses a stack-based approach (not recursive) to avoid stack overflow
// on large components. Uses 8-connectivity (includes diagonal neighbors).
func floodFill(grid, visited [][]bool, startX, startY, width, height int) Component {
	c := Component{
		Start:  image.Pt(startX, startY),
		Bounds: image.Rect(startX, startY, startX+1, startY+1),
	}
	stack := []image.Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		if visited[p.Y][p.X] || !grid[p.Y][p.X] {
			continue
		}

		visited[p.Y][p.X] = true
		c.Size++
		c.Bounds = c.Bounds.Union(image.Rect(p.X, p.Y, p.X+1, p.Y+1))

		// 8-connected neighbors
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, image.Point{X: p.X + dx, Y: p.Y + dy})
			}
		}
	}
	return c
}

// moore lists the 8 neighbor offsets clockwise (y grows downward), starting
// west.
var moore = [8]image.Point{
	{X: -1, Y: 0}, {X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
	{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: -1, Y: 1},
}

func mooreIndex(d image.Point) int {
	for i, m := range moore {
		if m == d {
			return i
		}
	}
	return 0
}

// TraceBoundary returns the outer boundary of the component containing
// start, walking clockwise.
//
// start must be the top-most, then left-most pixel of its component (as
// Component.Start is). A single-pixel component yields one point.
func TraceBoundary(grid [][]bool, start image.Point) []image.Point {
	height := len(grid)
	if height == 0 {
		return nil
	}
	width := len(grid[0])
	inside := func(p image.Point) bool {
		return p.X >= 0 && p.X < width && p.Y >= 0 && p.Y < height && grid[p.Y][p.X]
	}

	contour := []image.Point{start}
	cur, back := start, 0
	var second image.Point
	limit := 4*width*height + 8

	for step := 0; step < limit; step++ {
		next, nextBack, ok := mooreStep(inside, cur, back)
		if !ok {
			return contour
		}
		if step == 0 {
			second = next
		} else if cur == start && next == second {
			return contour[:len(contour)-1]
		}
		contour = append(contour, next)
		cur, back = next, nextBack
	}
	return contour
}

// mooreStep finds the next boundary pixel clockwise from the backtrack
// neighbor of cur. It returns the new pixel and the direction from it to the
// background pixel examined just before it.
func mooreStep(inside func(image.Point) bool, cur image.Point, back int) (image.Point, int, bool) {
	for i := 1; i <= 8; i++ {
		d := (back + i) % 8
		n := cur.Add(moore[d])
		if inside(n) {
			prev := cur.Add(moore[(d+7)%8])
			return n, mooreIndex(prev.Sub(n)), true
		}
	}
	return cur, back, false
}

// Simplify reduces a closed outline with the Douglas-Peucker algorithm.
//
// Points closer than epsilon to the simplified outline are removed. The
// first point is always kept. Outlines of three or fewer points are returned
// unchanged.
func Simplify(points []image.Point, epsilon float64) []image.Point {
	if len(points) <= 3 {
		return append([]image.Point(nil), points...)
	}

	// Split the closed outline at the point farthest from the first one.
	far, farDist := 0, -1.0
	for i, p := range points {
		if d := dist(points[0], p); d > farDist {
			far, farDist = i, d
		}
	}

	closed := append(append([]image.Point(nil), points...), points[0])
	first := douglasPeucker(closed[:far+1], epsilon)
	second := douglasPeucker(closed[far:], epsilon)

	out := append(first, second[1:len(second)-1]...)
	return out
}

func douglasPeucker(points []image.Point, epsilon float64) []image.Point {
	if len(points) < 3 {
		return append([]image.Point(nil), points...)
	}

	a, b := points[0], points[len(points)-1]
	idx, maxDist := 0, -1.0
	for i := 1; i < len(points)-1; i++ {
		if d := segmentDistance(points[i], a, b); d > maxDist {
			idx, maxDist = i, d
		}
	}

	if maxDist <= epsilon {
		return []image.Point{a, b}
	}
	left := douglasPeucker(points[:idx+1], epsilon)
	right := douglasPeucker(points[idx:], epsilon)
	return append(left[:len(left)-1], right...)
}

func segmentDistance(p, a, b image.Point) float64 {
	dx, dy := float64(b.X-a.X), float64(b.Y-a.Y)
	if dx == 0 && dy == 0 {
		return dist(p, a)
	}
	t := (float64(p.X-a.X)*dx + float64(p.Y-a.Y)*dy) / (dx*dx + dy*dy)
	t = math.Max(0, math.Min(1, t))
	px, py := float64(a.X)+t*dx, float64(a.Y)+t*dy
	return math.Hypot(float64(p.X)-px, float64(p.Y)-py)
}

func dist(a, b image.Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}
