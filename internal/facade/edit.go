package facade

import (
	pageimg "github.com/ironsheep/layout-tools-mcp/internal/imaging"
	"github.com/ironsheep/layout-tools-mcp/internal/layout"
	"github.com/ironsheep/layout-tools-mcp/internal/merge"
	"github.com/ironsheep/layout-tools-mcp/internal/model"
	"github.com/ironsheep/layout-tools-mcp/internal/translate"
)

// Merge combines polygons of page pageNr into one polygon that follows the
// ink of the page. A single polygon is returned unchanged.
//
// # Errors
//
//   - Returns merge.ErrNoRegions for an empty input
//   - Returns ErrMissingImage if several polygons need the page mask and the
//     page image is absent
func (f *Facade) Merge(polygons []model.Polygon, pageNr int) (*model.Polygon, error) {
	if err := f.requireInit(); err != nil {
		return nil, err
	}
	if len(polygons) == 0 {
		return nil, merge.ErrNoRegions
	}

	regions := make([]layout.Region, len(polygons))
	for i, p := range polygons {
		regions[i] = translate.PolygonToRegion(p)
	}

	if len(regions) == 1 {
		merged, err := merge.Merge(regions, nil)
		if err != nil {
			return nil, err
		}
		out := translate.RegionToPolygon(merged)
		return &out, nil
	}

	page, err := f.page(pageNr)
	if err != nil {
		return nil, err
	}

	var merged layout.Region
	err = f.withPage(page, func(img *pageimg.Page) error {
		mask, err := img.Binary()
		if err != nil {
			return err
		}
		merged, err = merge.Merge(regions, mask)
		return err
	})
	if err != nil {
		return nil, err
	}

	f.logger.Debug("merged regions", "page", page.ID, "inputs", len(regions), "id", merged.ID)
	out := translate.RegionToPolygon(merged)
	return &out, nil
}

// RenderPreview draws the outlines of a segmentation over the image of page
// pageNr. Labels show each region's position in the reading order.
func (f *Facade) RenderPreview(pageNr int, seg *model.PageSegmentation, showLabels bool) (*pageimg.OverlayResult, error) {
	if err := f.requireInit(); err != nil {
		return nil, err
	}
	page, err := f.page(pageNr)
	if err != nil {
		return nil, err
	}

	result := &layout.Result{}
	if seg != nil {
		result = translate.SegmentationToResult(seg)
	}

	var overlay *pageimg.OverlayResult
	err = f.withPage(page, func(img *pageimg.Page) error {
		var err error
		overlay, err = pageimg.RenderRegions(img.Original(), result.Regions, result.ReadingOrder, showLabels)
		return err
	})
	return overlay, err
}
