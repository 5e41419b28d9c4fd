package facade

import (
	"context"
	"fmt"

	pageimg "github.com/ironsheep/layout-tools-mcp/internal/imaging"
	"github.com/ironsheep/layout-tools-mcp/internal/layout"
	"github.com/ironsheep/layout-tools-mcp/internal/model"
	"github.com/ironsheep/layout-tools-mcp/internal/translate"
)

// segment runs the engine on one page.
//
// The page image is decoded for the duration of the call only. Parameters
// are resolved against the decoded size on top of the previous page's
// parameters. When the settings carry the page, its manual point lists
// replace the previous ones before the engine runs.
func (f *Facade) segment(ctx context.Context, settings *model.Settings, page model.Page) (*layout.Result, error) {
	path, err := f.existingImage(page)
	if err != nil {
		return nil, err
	}

	img := pageimg.NewPage(path)
	if err := img.Init(); err != nil {
		return nil, err
	}
	defer img.Clean()

	params, err := translate.Resolve(f.book.ID, settings, f.params, img.Size())
	if err != nil {
		return nil, err
	}
	if f.desiredHeight > 0 && params.DesiredImageHeight != f.desiredHeight {
		params.DesiredImageHeight = f.desiredHeight
		params.SetGeometry(params.ImageWidth, params.ImageHeight)
	}
	if ps, ok := settings.Pages[page.ID]; ok && ps != nil {
		params.RegionManager.SetPointLists(page.ID, translate.SettingsToPointListManager(settings, page.ID))
	}
	params.Page = page.ID
	f.params = params

	if f.engine == nil {
		f.engine = f.factory(params)
	} else {
		f.engine.SetParameters(params)
	}

	result, err := f.engine.Segment(ctx, img.Original())
	if err != nil {
		return nil, fmt.Errorf("failed to segment page %d: %w", page.ID, err)
	}
	f.logger.Info("segmented page",
		"page", page.ID,
		"regions", len(result.Regions),
		"width", params.ImageWidth,
		"height", params.ImageHeight)
	return result, nil
}

// withPage decodes a page image for the duration of fn.
func (f *Facade) withPage(page model.Page, fn func(img *pageimg.Page) error) error {
	path, err := f.existingImage(page)
	if err != nil {
		return err
	}
	img := pageimg.NewPage(path)
	if err := img.Init(); err != nil {
		return err
	}
	defer img.Clean()
	return fn(img)
}
