package translate

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/layout-tools-mcp/internal/layout"
	"github.com/ironsheep/layout-tools-mcp/internal/model"
)

func testBook() *model.Book {
	return &model.Book{
		ID:   3,
		Name: "herbal",
		Pages: []model.Page{
			{ID: 0, Image: "herbal/0001.png", BookID: 3},
			{ID: 1, Image: "herbal/0002.png", BookID: 3},
		},
	}
}

func square(id, typ string, x, y, size float64) model.Polygon {
	return model.Polygon{
		ID:   id,
		Type: typ,
		Points: []model.Point{
			{X: x, Y: y}, {X: x + size, Y: y}, {X: x + size, Y: y + size}, {X: x, Y: y + size},
		},
	}
}

func TestDefaultSettings_RoundTrip(t *testing.T) {
	book := testBook()
	s := DefaultSettings(book)

	p, err := Resolve(book.ID, s, nil, image.Point{})
	require.NoError(t, err)

	assert.Equal(t, s, ParametersToSettings(p, book))
}

func TestSettings_RoundTripWithEdits(t *testing.T) {
	book := testBook()
	s := DefaultSettings(book)
	s.Parameters[model.ParamBinaryThreshold] = 140
	s.Parameters[model.ParamTextDilationX] = 20
	s.ImageSegType = string(layout.ImageSegContourOnly)
	s.Combine = false
	s.Regions["heading"] = &model.RegionSettings{
		Type:             "heading",
		MinSize:          500,
		MaxOccurances:    2,
		PriorityPosition: "TOP",
		Polygons: map[string]model.Polygon{
			"heading-0": {
				ID: "heading-0", Type: "heading", IsRelative: true,
				Points: []model.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 0.3}, {X: 0, Y: 0.3}},
			},
		},
	}
	s.Pages[1].Segments["fixed1"] = square("fixed1", "caption", 10, 10, 50)
	s.Pages[1].Cuts["cut1"] = model.Polygon{
		ID: "cut1", Type: "other",
		Points: []model.Point{{X: 0, Y: 100}, {X: 300, Y: 100}},
	}

	p, err := Resolve(book.ID, s, nil, image.Pt(1000, 1600))
	require.NoError(t, err)

	assert.Equal(t, 140, p.BinaryThreshold)
	assert.Equal(t, 0.5, p.ScaleFactor)
	assert.Equal(t, s, ParametersToSettings(p, book))
}

func TestResolve_BookMismatch(t *testing.T) {
	s := DefaultSettings(testBook())

	_, err := Resolve(99, s, nil, image.Point{})
	assert.ErrorIs(t, err, ErrBookMismatch)

	_, err = Resolve(3, nil, nil, image.Point{})
	assert.ErrorIs(t, err, ErrNoSettings)
}

func TestResolve_PriorCarriesOverRulesAndPointLists(t *testing.T) {
	book := testBook()

	first := DefaultSettings(book)
	first.Pages[0].Segments["keep"] = square("keep", "heading", 5, 5, 20)
	prior, err := Resolve(book.ID, first, nil, image.Pt(800, 1600))
	require.NoError(t, err)

	// Second request omits the marginalia rule and page 0, changes a threshold.
	second := model.NewSettings(book.ID)
	second.Parameters[model.ParamTextDilationY] = 9
	second.Regions["paragraph"] = &model.RegionSettings{Type: "paragraph", MinSize: 10, MaxOccurances: -1}

	p, err := Resolve(book.ID, second, prior, image.Pt(400, 400))
	require.NoError(t, err)

	assert.Equal(t, 9, p.TextDilationY)
	assert.Equal(t, prior.TextDilationX, p.TextDilationX)
	assert.NotNil(t, p.RegionManager.Rule(layout.TypeMarginalia), "rule from prior should persist")
	assert.Equal(t, 10, p.RegionManager.Rule(layout.TypeParagraph).MinSize, "settings should win")
	require.NotNil(t, p.RegionManager.PointLists(0))
	assert.Contains(t, p.RegionManager.PointLists(0).Segments, "keep")

	// Geometry is recomputed, not reused.
	assert.Equal(t, 400, p.ImageHeight)
	assert.Equal(t, 2.0, p.ScaleFactor)

	// Prior is left untouched.
	assert.Equal(t, 1600, prior.ImageHeight)
	assert.Equal(t, 0, prior.RegionManager.Rule(layout.TypeParagraph).MinSize)
}

func TestSettingsToPointListManager(t *testing.T) {
	s := DefaultSettings(testBook())
	s.Pages[0].Segments["a"] = square("a", "heading", 0, 0, 10)

	plm := SettingsToPointListManager(s, 0)
	require.Contains(t, plm.Segments, "a")
	assert.Equal(t, layout.TypeHeading, plm.Segments["a"].Type)
	assert.Len(t, plm.Segments["a"].Points, 4)

	empty := SettingsToPointListManager(s, 42)
	assert.Empty(t, empty.Segments)
	assert.Empty(t, empty.Cuts)
}

func TestPolygonRegionRoundTrip(t *testing.T) {
	p := square("r1", "paragraph", 3, 4, 10)

	r := PolygonToRegion(p)
	assert.Equal(t, "r1", r.ID)
	assert.Equal(t, layout.TypeParagraph, r.Type)
	assert.Equal(t, p, RegionToPolygon(r))
}

func TestResultSegmentationRoundTrip(t *testing.T) {
	result := &layout.Result{
		Regions: []layout.Region{
			PolygonToRegion(square("r2", "paragraph", 0, 100, 50)),
			PolygonToRegion(square("r1", "heading", 0, 0, 50)),
			PolygonToRegion(square("r3", "image", 100, 100, 50)),
		},
		ReadingOrder: []string{"r2", "r1"},
	}

	seg := ResultToSegmentation(result, 7, model.StatusSuccess)
	assert.Equal(t, 7, seg.Page)
	assert.Equal(t, model.StatusSuccess, seg.Status)
	assert.Len(t, seg.Segments, 3)
	assert.Equal(t, []string{"r2", "r1"}, seg.ReadingOrder)

	back := SegmentationToResult(seg)
	assert.Equal(t, result, back)
}

func TestSegmentationToResult_IgnoresUnknownReadingOrderIDs(t *testing.T) {
	seg := model.NewPageSegmentation(0, model.StatusSuccess)
	seg.Segments["b"] = square("b", "paragraph", 0, 0, 5)
	seg.Segments["a"] = square("a", "paragraph", 10, 0, 5)
	seg.ReadingOrder = []string{"ghost", "b", "b"}

	result := SegmentationToResult(seg)
	require.Len(t, result.Regions, 2)
	assert.Equal(t, "b", result.Regions[0].ID)
	assert.Equal(t, "a", result.Regions[1].ID)
	assert.Equal(t, []string{"b"}, result.ReadingOrder)
}
