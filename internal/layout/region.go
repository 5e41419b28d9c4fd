package layout

import (
	"image"
	"math"
)

// RegionType is the role of a region on a page.
type RegionType string

// Known region types. Other values are carried through unchanged.
const (
	TypeImage      RegionType = "image"
	TypeParagraph  RegionType = "paragraph"
	TypeHeading    RegionType = "heading"
	TypeHeader     RegionType = "header"
	TypeFooter     RegionType = "footer"
	TypePageNumber RegionType = "page_number"
	TypeMarginalia RegionType = "marginalia"
	TypeFootnote   RegionType = "footnote"
	TypeCaption    RegionType = "caption"
	TypeOther      RegionType = "other"
	TypeIgnore     RegionType = "ignore"
)

// IsText reports whether regions of this type hold text.
func (t RegionType) IsText() bool {
	return t != TypeImage && t != TypeIgnore
}

// Point is a 2D point in image coordinates.
type Point struct {
	X float64
	Y float64
}

// Region is one area of a page layout.
type Region struct {
	ID     string
	Type   RegionType
	Points []Point
}

// Bounds returns the integer bounding rectangle of the outline.
// The rectangle is empty for an outline without points.
func (r Region) Bounds() image.Rectangle {
	return PointsBounds(r.Points)
}

// Clone returns a deep copy of the region.
func (r Region) Clone() Region {
	c := r
	c.Points = append([]Point(nil), r.Points...)
	return c
}

// PointsBounds returns the smallest integer rectangle containing all points.
func PointsBounds(points []Point) image.Rectangle {
	if len(points) == 0 {
		return image.Rectangle{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return image.Rect(int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX))+1, int(math.Ceil(maxY))+1)
}

// Result is the output of one page segmentation.
type Result struct {
	Regions []Region

	// ReadingOrder lists region IDs in reading sequence. It may be empty.
	ReadingOrder []string
}

// Region looks up a region by id.
func (r *Result) Region(id string) (Region, bool) {
	for _, reg := range r.Regions {
		if reg.ID == id {
			return reg, true
		}
	}
	return Region{}, false
}

// Clone returns a deep copy of the result.
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	c := &Result{
		Regions:      make([]Region, len(r.Regions)),
		ReadingOrder: append([]string(nil), r.ReadingOrder...),
	}
	for i, reg := range r.Regions {
		c.Regions[i] = reg.Clone()
	}
	return c
}

// Contains reports whether (x, y) lies inside the closed outline, using the
// even-odd rule. Points on an edge may report either way.
func Contains(points []Point, x, y float64) bool {
	inside := false
	n := len(points)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := points[i], points[j]
		if (pi.Y > y) != (pj.Y > y) {
			cross := (pj.X-pi.X)*(y-pi.Y)/(pj.Y-pi.Y) + pi.X
			if x < cross {
				inside = !inside
			}
		}
	}
	return inside
}
