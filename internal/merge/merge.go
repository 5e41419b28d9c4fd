// Package merge combines several region outlines into one, guided by the
// ink of the page.
//
// Merging does not simply take the union of the outlines. The outlines are
// filled and intersected with the page's binarized mask, so the merged
// region hugs the actual content. The remaining ink is then closed with a
// growing rectangular element until it forms a single connected blob, whose
// outer boundary becomes the merged outline. Parts that are still apart at
// the largest closing radius are joined by straight bridges.
//
// All work happens in a window around the outlines, so the cost depends on
// the merged area and not on the page size.
package merge

import (
	"errors"
	"image"

	"github.com/google/uuid"

	"github.com/ironsheep/layout-tools-mcp/internal/detection"
	pageimg "github.com/ironsheep/layout-tools-mcp/internal/imaging"
	"github.com/ironsheep/layout-tools-mcp/internal/layout"
)

var (
	// ErrNoRegions is returned when there is nothing to merge.
	ErrNoRegions = errors.New("no regions to merge")

	// ErrNoMask is returned when merging several regions without a mask.
	ErrNoMask = errors.New("no binary mask to merge against")

	// ErrOutsidePage is returned when no outline covers a pixel of the page.
	ErrOutsidePage = errors.New("regions lie outside the page")
)

const (
	// simplifyEpsilon is the outline tolerance in pixels.
	simplifyEpsilon = 1.0

	// maxRadius bounds the closing radius in pixels.
	maxRadius = 64
)

// Merge combines regions into one region.
//
// A single region is returned unchanged. Otherwise the result has a fresh
// id and the type of the first region, and its outline covers the ink of
// every input outline on the mask without leaving the bounding box of the
// inputs. When the outlines contain no ink at all, their filled area is used
// instead.
//
// # Errors
//
//   - Returns ErrNoRegions for an empty input
//   - Returns ErrNoMask if several regions are given and binary is nil
//   - Returns ErrOutsidePage if no outline touches the mask area
func Merge(regions []layout.Region, binary *image.Gray) (layout.Region, error) {
	switch len(regions) {
	case 0:
		return layout.Region{}, ErrNoRegions
	case 1:
		return regions[0].Clone(), nil
	}
	if binary == nil {
		return layout.Region{}, ErrNoMask
	}

	page := binary.Bounds()
	var box image.Rectangle
	for _, r := range regions {
		box = box.Union(layout.PointsBounds(r.Points))
	}
	box = box.Intersect(page)
	if box.Empty() {
		return layout.Region{}, ErrOutsidePage
	}

	// The margin keeps the closing clear of the window edge.
	window := box.Inset(-(maxRadius + 1))
	origin := window.Min
	union := detection.NewGrid(window.Dx(), window.Dy())
	for _, r := range regions {
		detection.FillPolygon(union, shift(r.Points, origin), 1, true)
	}

	covered := detection.NewGrid(window.Dx(), window.Dy())
	anyUnion, anyInk := false, false
	for y := range union {
		for x := range union[y] {
			if !union[y][x] {
				continue
			}
			p := image.Pt(x+origin.X, y+origin.Y)
			if !p.In(page) {
				union[y][x] = false
				continue
			}
			anyUnion = true
			if pageimg.IsForeground(binary, p.X, p.Y) {
				covered[y][x] = true
				anyInk = true
			}
		}
	}
	if !anyUnion {
		return layout.Region{}, ErrOutsidePage
	}
	if !anyInk {
		covered = union
	}

	blob := connect(covered, union)
	start := detection.ConnectedComponents(blob, 1)[0].Start
	outline := detection.Simplify(detection.TraceBoundary(blob, start), simplifyEpsilon)

	points := make([]layout.Point, len(outline))
	for i, p := range outline {
		points[i] = layout.Point{X: float64(p.X + origin.X), Y: float64(p.Y + origin.Y)}
	}
	return layout.Region{ID: uuid.NewString(), Type: regions[0].Type, Points: points}, nil
}

// connect joins the parts of grid into one 8-connected blob that stays
// inside the bounding box of grid.
//
// The radius of a rectangular closing doubles until the dilated parts touch
// or maxRadius is reached. The closed grid is clipped to clip when that
// leaves one piece; otherwise any remaining parts are bridged.
func connect(grid, clip [][]bool) [][]bool {
	if len(detection.ConnectedComponents(grid, 1)) <= 1 {
		return grid
	}

	var closed [][]bool
	for radius := 1; closed == nil; radius *= 2 {
		if radius > maxRadius {
			radius = maxRadius
		}
		grown := detection.Dilate(grid, radius, radius)
		if radius == maxRadius || len(detection.ConnectedComponents(grown, 1)) == 1 {
			closed = detection.Erode(grown, radius, radius)
		}
	}
	for y := range closed {
		for x := range closed[y] {
			closed[y][x] = closed[y][x] || grid[y][x]
		}
	}

	clipped := detection.NewGrid(len(closed[0]), len(closed))
	for y := range closed {
		for x := range closed[y] {
			clipped[y][x] = closed[y][x] && clip[y][x]
		}
	}
	if len(detection.ConnectedComponents(clipped, 1)) == 1 {
		return clipped
	}
	bridge(closed)
	return closed
}

// bridge draws a straight line from the first component to every other one.
func bridge(grid [][]bool) {
	comps := detection.ConnectedComponents(grid, 1)
	for _, c := range comps[1:] {
		line := []layout.Point{
			{X: float64(comps[0].Start.X), Y: float64(comps[0].Start.Y)},
			{X: float64(c.Start.X), Y: float64(c.Start.Y)},
		}
		detection.DrawPolyline(grid, line, 1, false, true)
	}
}

func shift(points []layout.Point, origin image.Point) []layout.Point {
	out := make([]layout.Point, len(points))
	for i, p := range points {
		out[i] = layout.Point{X: p.X - float64(origin.X), Y: p.Y - float64(origin.Y)}
	}
	return out
}
