package detection

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/layout-tools-mcp/internal/layout"
)

func whitePage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

func fillRect(img *image.RGBA, r image.Rectangle) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Set(x, y, color.RGBA{0, 0, 0, 255})
		}
	}
}

// drawTextLines draws sparse dots on the given rows, like a line of small
// print.
func drawTextLines(img *image.RGBA, x0, x1 int, rows ...int) {
	for _, y := range rows {
		for x := x0; x <= x1; x += 3 {
			img.Set(x, y, color.RGBA{0, 0, 0, 255})
		}
	}
}

func testParams(height int, segType layout.ImageSegType) *layout.Parameters {
	p := layout.NewParameters(layout.NewRegionManager(), height)
	p.DesiredImageHeight = height
	p.ImageSegType = segType
	p.SetGeometry(height, height)
	return p
}

func TestSegmenter_DetectsImageBlock(t *testing.T) {
	img := whitePage(200, 200)
	block := image.Rect(60, 70, 140, 130)
	fillRect(img, block)

	s := NewSegmenter(testParams(200, layout.ImageSegStraightRect))
	result, err := s.Segment(context.Background(), img)
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}

	if len(result.Regions) != 1 {
		t.Fatalf("got %d regions, want 1", len(result.Regions))
	}
	r := result.Regions[0]
	if r.Type != layout.TypeImage {
		t.Errorf("type: got %s, want image", r.Type)
	}
	if len(r.Points) != 4 {
		t.Errorf("straight rect outline has %d points", len(r.Points))
	}
	if !block.In(r.Bounds()) {
		t.Errorf("outline %v does not cover block %v", r.Bounds(), block)
	}
	if len(result.ReadingOrder) != 0 {
		t.Errorf("images should not enter the reading order: %v", result.ReadingOrder)
	}
}

func TestSegmenter_TextBecomesParagraph(t *testing.T) {
	img := whitePage(200, 200)
	drawTextLines(img, 40, 160, 50, 51, 56, 57)

	s := NewSegmenter(testParams(200, layout.ImageSegNone))
	result, err := s.Segment(context.Background(), img)
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}

	if len(result.Regions) != 1 {
		t.Fatalf("got %d regions, want 1", len(result.Regions))
	}
	r := result.Regions[0]
	if r.Type != layout.TypeParagraph {
		t.Errorf("type: got %s, want paragraph", r.Type)
	}
	if r.ID == "" {
		t.Error("region should have an id")
	}
	if len(result.ReadingOrder) != 1 || result.ReadingOrder[0] != r.ID {
		t.Errorf("reading order: got %v", result.ReadingOrder)
	}
}

func TestSegmenter_CutSplitsBlock(t *testing.T) {
	img := whitePage(200, 200)
	drawTextLines(img, 40, 160, 50, 51, 56, 57)

	p := testParams(200, layout.ImageSegNone)
	plm := layout.NewPointListManager()
	plm.Cuts["cut"] = layout.PointList{
		ID:     "cut",
		Points: []layout.Point{{X: 100, Y: 0}, {X: 100, Y: 199}},
	}
	p.RegionManager.SetPointLists(0, plm)

	result, err := NewSegmenter(p).Segment(context.Background(), img)
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}

	if len(result.Regions) != 2 {
		t.Fatalf("got %d regions, want 2", len(result.Regions))
	}
	if len(result.ReadingOrder) != 2 {
		t.Fatalf("reading order: got %v", result.ReadingOrder)
	}
	first, _ := result.Region(result.ReadingOrder[0])
	second, _ := result.Region(result.ReadingOrder[1])
	if first.Bounds().Min.X >= second.Bounds().Min.X {
		t.Errorf("reading order should go left to right: %v then %v", first.Bounds(), second.Bounds())
	}
}

func TestSegmenter_FixedSegmentKeptVerbatim(t *testing.T) {
	img := whitePage(100, 100)

	p := testParams(100, layout.ImageSegStraightRect)
	plm := layout.NewPointListManager()
	fixed := []layout.Point{{X: 10, Y: 10}, {X: 60, Y: 10}, {X: 60, Y: 30}, {X: 10, Y: 30}}
	plm.Segments["fixed"] = layout.PointList{ID: "fixed", Type: layout.TypeHeading, Points: fixed}
	p.RegionManager.SetPointLists(0, plm)

	result, err := NewSegmenter(p).Segment(context.Background(), img)
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}

	r, ok := result.Region("fixed")
	if !ok {
		t.Fatal("fixed segment missing from result")
	}
	if len(result.Regions) != 1 {
		t.Errorf("got %d regions, want only the fixed one", len(result.Regions))
	}
	if r.Type != layout.TypeHeading {
		t.Errorf("type: got %s, want heading", r.Type)
	}
	for i, pt := range fixed {
		if r.Points[i] != pt {
			t.Errorf("point %d: got %v, want %v", i, r.Points[i], pt)
		}
	}
}

func TestSegmenter_ScalesBackToPageCoordinates(t *testing.T) {
	img := whitePage(400, 400)
	block := image.Rect(120, 140, 280, 260)
	fillRect(img, block)

	p := testParams(200, layout.ImageSegStraightRect)
	result, err := NewSegmenter(p).Segment(context.Background(), img)
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}
	if len(result.Regions) != 1 {
		t.Fatalf("got %d regions, want 1", len(result.Regions))
	}
	b := result.Regions[0].Bounds()
	if b.Min.X > 120 || b.Max.X < 280 || b.Max.X > 320 {
		t.Errorf("outline %v not in page coordinates", b)
	}
}

func TestSegmenter_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewSegmenter(nil).Segment(ctx, whitePage(10, 10)); err == nil {
		t.Error("expected error for canceled context")
	}
}

func TestSegmenter_SetParameters(t *testing.T) {
	s := NewSegmenter(nil)
	p := testParams(100, layout.ImageSegNone)

	var engine layout.Engine = s
	engine.SetParameters(p)

	if s.Parameters() != p {
		t.Error("SetParameters should replace the parameters")
	}
}
