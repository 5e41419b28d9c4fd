package detection

import (
	"context"
	"image"
	"log/slog"
	"sort"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	pageimg "github.com/ironsheep/layout-tools-mcp/internal/imaging"
	"github.com/ironsheep/layout-tools-mcp/internal/layout"
)

const (
	// minRegionArea drops specks left over after dilation, in working pixels.
	minRegionArea = 16

	// Image candidates must span this fraction of the page in both
	// directions and be at least this dense before dilation.
	minImageExtent  = 0.05
	minImageDensity = 0.35

	// simplifyEpsilon is the outline tolerance in working pixels.
	simplifyEpsilon = 1.0
)

// Segmenter is the reference layout.Engine.
type Segmenter struct {
	params *layout.Parameters
	logger *slog.Logger
}

// NewSegmenter creates a segmenter. Nil parameters select the defaults.
func NewSegmenter(p *layout.Parameters) *Segmenter {
	if p == nil {
		p = layout.NewParameters(nil, 0)
	}
	return &Segmenter{params: p, logger: slog.Default()}
}

// Factory adapts NewSegmenter to layout.EngineFactory.
func Factory(p *layout.Parameters) layout.Engine {
	return NewSegmenter(p)
}

// SetParameters replaces the parameters used by later Segment calls.
func (s *Segmenter) SetParameters(p *layout.Parameters) {
	s.params = p
}

// Parameters returns the parameters of the next Segment call.
func (s *Segmenter) Parameters() *layout.Parameters {
	return s.params
}

// candidate is a detected block on the working image.
type candidate struct {
	bounds  image.Rectangle
	outline []image.Point
	typ     layout.RegionType
}

func (c *candidate) center() (float64, float64) {
	return float64(c.bounds.Min.X+c.bounds.Max.X) / 2, float64(c.bounds.Min.Y+c.bounds.Max.Y) / 2
}

func (c *candidate) area() int {
	return c.bounds.Dx() * c.bounds.Dy()
}

// Segment detects the regions of img.
//
// # Errors
//
//   - Returns the context error if ctx is already done
func (s *Segmenter) Segment(ctx context.Context, img image.Image) (*layout.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := s.params
	origin := img.Bounds().Min
	orig := img.Bounds().Size()
	if orig.X == 0 || orig.Y == 0 {
		return &layout.Result{Regions: []layout.Region{}, ReadingOrder: []string{}}, nil
	}

	work := img
	if p.DesiredImageHeight > 0 && p.DesiredImageHeight != orig.Y {
		work = imaging.Resize(img, 0, p.DesiredImageHeight, imaging.Lanczos)
	}
	size := work.Bounds().Size()
	sx := float64(size.X) / float64(orig.X)
	sy := float64(size.Y) / float64(orig.Y)

	grid := pageimg.ForegroundGrid(pageimg.Binarize(work, p.BinaryThreshold))
	manual := p.Manual()
	rm := p.RegionManager

	// Fixed segments are kept verbatim; their pixels take no further part.
	for _, id := range sortedIDs(manual.Segments) {
		FillPolygon(grid, toWork(manual.Segments[id], orig, sx, sy), 1, false)
	}

	var blocks []*candidate
	images := s.detectImages(grid, size)
	for _, c := range images {
		FillPolygon(grid, pointsToLayout(c.outline), 1, false)
	}
	blocks = append(blocks, images...)

	text := Dilate(grid, p.TextDilationX, p.TextDilationY)
	if len(manual.Cuts) > 0 {
		cuts := NewGrid(size.X, size.Y)
		for _, id := range sortedIDs(manual.Cuts) {
			DrawPolyline(cuts, toWork(manual.Cuts[id], orig, sx, sy), 1, false, true)
		}
		cuts = Dilate(cuts, 1, 1)
		for y := range text {
			for x := range text[y] {
				if cuts[y][x] {
					text[y][x] = false
				}
			}
		}
	}

	var textBlocks []*candidate
	for _, comp := range ConnectedComponents(text, 1) {
		if comp.Bounds.Dx()*comp.Bounds.Dy() < minRegionArea {
			continue
		}
		textBlocks = append(textBlocks, &candidate{
			bounds:  comp.Bounds,
			outline: Simplify(TraceBoundary(text, comp.Start), simplifyEpsilon),
		})
	}
	assignTextTypes(textBlocks, rm, size)
	blocks = append(blocks, textBlocks...)

	result := &layout.Result{Regions: []layout.Region{}, ReadingOrder: []string{}}
	for _, b := range blocks {
		if b.typ == "" || b.typ == layout.TypeIgnore {
			continue
		}
		pts := make([]layout.Point, len(b.outline))
		for i, q := range b.outline {
			pts[i] = layout.Point{
				X: float64(q.X)/sx + float64(origin.X),
				Y: float64(q.Y)/sy + float64(origin.Y),
			}
		}
		result.Regions = append(result.Regions, layout.Region{ID: uuid.NewString(), Type: b.typ, Points: pts})
	}
	for _, id := range sortedIDs(manual.Segments) {
		seg := manual.Segments[id]
		result.Regions = append(result.Regions, layout.Region{
			ID:     seg.ID,
			Type:   seg.Type,
			Points: absolutePoints(seg, orig),
		})
	}

	result.ReadingOrder = readingOrder(result.Regions)
	s.logger.Debug("page segmented",
		"regions", len(result.Regions),
		"images", len(images),
		"working_height", size.Y)
	return result, nil
}

// detectImages finds large dense components and outlines them as images.
func (s *Segmenter) detectImages(grid [][]bool, size image.Point) []*candidate {
	p := s.params
	rule := p.RegionManager.Rule(layout.TypeImage)
	if rule == nil || p.ImageSegType == layout.ImageSegNone {
		return nil
	}

	dilated := Dilate(grid, p.ImageDilationX, p.ImageDilationY)
	var found []imageCandidate
	for _, comp := range ConnectedComponents(dilated, 1) {
		b := comp.Bounds
		if float64(b.Dx()) < minImageExtent*float64(size.X) || float64(b.Dy()) < minImageExtent*float64(size.Y) {
			continue
		}
		if b.Dx()*b.Dy() < rule.MinSize {
			continue
		}
		if inkDensity(grid, b) < minImageDensity {
			continue
		}
		found = append(found, imageCandidate{
			bounds:  b,
			outline: TraceBoundary(dilated, comp.Start),
			members: 1,
		})
	}
	if p.CombineImages {
		found = combineImages(found)
	}

	var matches []*candidate
	for _, ic := range found {
		c := &candidate{bounds: ic.bounds, outline: outlineImage(ic, p.ImageSegType)}
		if inPositions(c, rule, size) {
			matches = append(matches, c)
		}
	}
	matches = limit(matches, rule)
	for _, c := range matches {
		c.typ = layout.TypeImage
	}
	return matches
}

// assignTextTypes types text blocks by the region rules.
//
// Rules with a MaxOccurrences limit are served first, then the remaining
// positioned rules in type order. Rules without positions never claim
// blocks, except paragraph, which takes whatever is left.
func assignTextTypes(blocks []*candidate, rm *layout.RegionManager, size image.Point) {
	var limited, open []*layout.RegionRule
	var paragraph *layout.RegionRule
	for _, r := range rm.Rules() {
		switch {
		case r.Type == layout.TypeImage:
		case r.Type == layout.TypeParagraph:
			paragraph = r
		case r.MaxOccurrences != layout.Unlimited:
			limited = append(limited, r)
		default:
			open = append(open, r)
		}
	}

	claim := func(r *layout.RegionRule, needPositions bool) {
		if needPositions && len(r.Positions) == 0 {
			return
		}
		var matches []*candidate
		for _, b := range blocks {
			if b.typ == "" && b.area() >= r.MinSize && inPositions(b, r, size) {
				matches = append(matches, b)
			}
		}
		for _, b := range limit(matches, r) {
			b.typ = r.Type
		}
	}

	for _, r := range limited {
		claim(r, true)
	}
	for _, r := range open {
		claim(r, true)
	}
	if paragraph != nil {
		claim(paragraph, false)
	}
}

// inPositions reports whether the block center lies in one of the rule's
// relative positions. A rule without positions matches everywhere.
func inPositions(c *candidate, r *layout.RegionRule, size image.Point) bool {
	if len(r.Positions) == 0 {
		return true
	}
	cx, cy := c.center()
	for _, pl := range r.Positions {
		pts := pl.Points
		if pl.Relative {
			pts = scalePoints(pts, float64(size.X), float64(size.Y))
		}
		if layout.Contains(pts, cx, cy) {
			return true
		}
	}
	return false
}

// limit keeps the MaxOccurrences best matches, ordered by the rule's
// priority position (largest first when it has none).
func limit(matches []*candidate, r *layout.RegionRule) []*candidate {
	if r.MaxOccurrences == layout.Unlimited || len(matches) <= r.MaxOccurrences {
		return matches
	}
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i].bounds, matches[j].bounds
		switch r.Priority {
		case layout.PriorityTop:
			return a.Min.Y < b.Min.Y
		case layout.PriorityBottom:
			return a.Max.Y > b.Max.Y
		case layout.PriorityLeft:
			return a.Min.X < b.Min.X
		case layout.PriorityRight:
			return a.Max.X > b.Max.X
		default:
			return matches[i].area() > matches[j].area()
		}
	})
	if r.MaxOccurrences < 0 {
		return nil
	}
	return matches[:r.MaxOccurrences]
}

// readingOrder lists text regions top to bottom, then left to right.
func readingOrder(regions []layout.Region) []string {
	text := make([]layout.Region, 0, len(regions))
	for _, r := range regions {
		if r.Type.IsText() {
			text = append(text, r)
		}
	}
	sort.SliceStable(text, func(i, j int) bool {
		a, b := text[i].Bounds(), text[j].Bounds()
		if a.Min.Y != b.Min.Y {
			return a.Min.Y < b.Min.Y
		}
		return a.Min.X < b.Min.X
	})
	order := make([]string, len(text))
	for i, r := range text {
		order[i] = r.ID
	}
	return order
}

// toWork maps a manual point list into working image coordinates.
func toWork(pl layout.PointList, orig image.Point, sx, sy float64) []layout.Point {
	pts := absolutePoints(pl, orig)
	for i := range pts {
		pts[i].X *= sx
		pts[i].Y *= sy
	}
	return pts
}

// absolutePoints returns a copy of the points in page pixels.
func absolutePoints(pl layout.PointList, orig image.Point) []layout.Point {
	if pl.Relative {
		return scalePoints(pl.Points, float64(orig.X), float64(orig.Y))
	}
	return append([]layout.Point(nil), pl.Points...)
}

func scalePoints(points []layout.Point, sx, sy float64) []layout.Point {
	out := make([]layout.Point, len(points))
	for i, p := range points {
		out[i] = layout.Point{X: p.X * sx, Y: p.Y * sy}
	}
	return out
}

func pointsToLayout(points []image.Point) []layout.Point {
	out := make([]layout.Point, len(points))
	for i, p := range points {
		out[i] = layout.Point{X: float64(p.X), Y: float64(p.Y)}
	}
	return out
}

func inkDensity(grid [][]bool, r image.Rectangle) float64 {
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if grid[y][x] {
				n++
			}
		}
	}
	return float64(n) / float64(r.Dx()*r.Dy())
}

func sortedIDs(m map[string]layout.PointList) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
