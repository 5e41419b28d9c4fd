package detection

import (
	"image"
	"math"
	"sort"

	"github.com/ironsheep/layout-tools-mcp/internal/layout"
)

// imageCandidate is a dense component that may become an image region.
type imageCandidate struct {
	bounds  image.Rectangle
	outline []image.Point
	members int
}

// combineImages merges candidates whose bounds overlap until no two overlap.
// Merged candidates keep every outline point, so later outlining covers all
// members.
func combineImages(candidates []imageCandidate) []imageCandidate {
	if len(candidates) == 0 {
		return candidates
	}

	merged := append([]imageCandidate(nil), candidates...)
	for changed := true; changed; {
		changed = false
		next := make([]imageCandidate, 0, len(merged))
		for _, c := range merged {
			foundMerge := false
			for i := range next {
				if c.bounds.Overlaps(next[i].bounds) {
					next[i].bounds = next[i].bounds.Union(c.bounds)
					next[i].outline = append(next[i].outline, c.outline...)
					next[i].members += c.members
					foundMerge = true
					changed = true
					break
				}
			}
			if !foundMerge {
				next = append(next, c)
			}
		}
		merged = next
	}
	return merged
}

// outlineImage returns the region outline of an image candidate.
func outlineImage(c imageCandidate, segType layout.ImageSegType) []image.Point {
	switch segType {
	case layout.ImageSegContourOnly:
		if c.members == 1 {
			return Simplify(c.outline, 1)
		}
		return ConvexHull(c.outline)
	case layout.ImageSegRotatedRect:
		return MinAreaRect(c.outline)
	default:
		return rectOutline(c.bounds)
	}
}

// rectOutline returns the corners of r, clockwise from the top-left. The
// exclusive Max edge becomes the last pixel row and column.
func rectOutline(r image.Rectangle) []image.Point {
	return []image.Point{
		{X: r.Min.X, Y: r.Min.Y},
		{X: r.Max.X - 1, Y: r.Min.Y},
		{X: r.Max.X - 1, Y: r.Max.Y - 1},
		{X: r.Min.X, Y: r.Max.Y - 1},
	}
}

// ConvexHull returns the convex hull of points with Andrew's monotone chain.
// Collinear points are dropped.
func ConvexHull(points []image.Point) []image.Point {
	pts := append([]image.Point(nil), points...)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})
	if len(pts) < 3 {
		return pts
	}

	cross := func(o, a, b image.Point) int {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	hull := make([]image.Point, 0, 2*len(pts))
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

// MinAreaRect returns the corners of the smallest rotated rectangle that
// encloses points, rounded to pixels.
//
// One side of the optimal rectangle is collinear with a hull edge, so every
// hull edge direction is tried.
func MinAreaRect(points []image.Point) []image.Point {
	hull := ConvexHull(points)
	if len(hull) < 3 {
		return hull
	}

	bestArea := math.Inf(1)
	var best [4][2]float64
	for i := range hull {
		a, b := hull[i], hull[(i+1)%len(hull)]
		ex, ey := float64(b.X-a.X), float64(b.Y-a.Y)
		l := math.Hypot(ex, ey)
		if l == 0 {
			continue
		}
		ux, uy := ex/l, ey/l // edge direction
		vx, vy := -uy, ux    // normal

		minU, maxU := math.Inf(1), math.Inf(-1)
		minV, maxV := math.Inf(1), math.Inf(-1)
		for _, p := range hull {
			u := float64(p.X)*ux + float64(p.Y)*uy
			v := float64(p.X)*vx + float64(p.Y)*vy
			minU, maxU = math.Min(minU, u), math.Max(maxU, u)
			minV, maxV = math.Min(minV, v), math.Max(maxV, v)
		}

		if area := (maxU - minU) * (maxV - minV); area < bestArea {
			bestArea = area
			corner := func(u, v float64) [2]float64 {
				return [2]float64{u*ux + v*vx, u*uy + v*vy}
			}
			best = [4][2]float64{
				corner(minU, minV), corner(maxU, minV),
				corner(maxU, maxV), corner(minU, maxV),
			}
		}
	}

	out := make([]image.Point, 4)
	for i, c := range best {
		out[i] = image.Pt(int(math.Round(c[0])), int(math.Round(c[1])))
	}
	return out
}
