package facade

import (
	"errors"
	"path/filepath"

	pageimg "github.com/ironsheep/layout-tools-mcp/internal/imaging"
	"github.com/ironsheep/layout-tools-mcp/internal/layout"
	"github.com/ironsheep/layout-tools-mcp/internal/model"
	"github.com/ironsheep/layout-tools-mcp/internal/pagexml"
	"github.com/ironsheep/layout-tools-mcp/internal/translate"
)

// Export is an encoded document ready for download.
type Export struct {
	// FileName is the suggested name without the .xml extension.
	FileName string

	// Data is the encoded document. It is nil when encoding failed; the
	// failure has been logged.
	Data []byte
}

// pendingExport is a page result waiting for PageXML.
type pendingExport struct {
	page   model.Page
	image  *pageimg.Page
	result *layout.Result
}

// PrepareExport stores a segmentation for a later PageXML or
// SavePageXMLLocal call, replacing any earlier one.
func (f *Facade) PrepareExport(seg *model.PageSegmentation) error {
	if err := f.requireInit(); err != nil {
		return err
	}
	if seg == nil {
		return errors.New("no segmentation to export")
	}
	page, err := f.page(seg.Page)
	if err != nil {
		return err
	}
	f.exportPage = &pendingExport{
		page:   page,
		image:  pageimg.NewPage(f.imagePath(page)),
		result: translate.SegmentationToResult(seg),
	}
	return nil
}

// pageDocument builds the PAGE document of the prepared export. Only the
// image header is read, for its dimensions.
func (f *Facade) pageDocument(version string) (*pagexml.Document, error) {
	if f.exportPage == nil {
		return nil, ErrExportNotPrepared
	}
	exp := f.exportPage

	meta := pagexml.PageMeta{ImageFilename: filepath.Base(exp.page.Image)}
	if info, err := pageimg.LoadImageInfo(exp.image.Path()); err == nil {
		meta.Width, meta.Height = info.Width, info.Height
	} else {
		f.logger.Warn("exporting without image dimensions", "path", exp.image.Path(), "error", err)
	}
	return pagexml.WriteResult(exp.result, meta, version)
}

// PageXML encodes the prepared export as a PAGE document of the given
// version (empty selects the default version).
//
// # Errors
//
//   - Returns ErrExportNotPrepared before PrepareExport
//   - Returns pagexml.ErrUnsupportedVersion for an unknown version
func (f *Facade) PageXML(version string) (Export, error) {
	if err := f.requireInit(); err != nil {
		return Export{}, err
	}
	doc, err := f.pageDocument(version)
	if err != nil {
		return Export{}, err
	}
	return f.encode(doc, f.exportPage.image.FileName()), nil
}

// SavePageXMLLocal writes the prepared export to dir and returns the file
// path.
func (f *Facade) SavePageXMLLocal(dir, version string) (string, error) {
	if err := f.requireInit(); err != nil {
		return "", err
	}
	doc, err := f.pageDocument(version)
	if err != nil {
		return "", err
	}
	path, err := pagexml.SaveDocument(doc, f.exportPage.image.FileName(), dir)
	if err != nil {
		return "", err
	}
	f.logger.Info("saved page document", "path", path)
	return path, nil
}

// PrepareSettings converts settings into a settings document for a later
// SettingsXML call, replacing any earlier one.
func (f *Facade) PrepareSettings(settings *model.Settings) error {
	if err := f.requireInit(); err != nil {
		return err
	}
	if settings == nil {
		return translate.ErrNoSettings
	}
	doc, err := pagexml.WriteSettings(translate.SettingsToParameters(settings))
	if err != nil {
		return err
	}
	f.exportSettings = doc
	return nil
}

// SettingsXML encodes the prepared settings document. The file name is
// "settings_" followed by the book name.
func (f *Facade) SettingsXML() (Export, error) {
	if err := f.requireInit(); err != nil {
		return Export{}, err
	}
	if f.exportSettings == nil {
		return Export{}, ErrExportNotPrepared
	}
	name := "settings"
	if f.book != nil {
		name += "_" + f.book.Name
	}
	return f.encode(f.exportSettings, name), nil
}

func (f *Facade) encode(doc *pagexml.Document, fileName string) Export {
	data, err := pagexml.Encode(doc)
	if err != nil {
		f.logger.Error("failed to encode document", "file", fileName, "error", err)
		return Export{FileName: fileName}
	}
	return Export{FileName: fileName, Data: data}
}

// ReadSettings imports a settings document for the session book.
//
// The first page of the book serves as the reference image. If it cannot
// be found the settings are read without geometry.
//
// # Errors
//
//   - Returns *pagexml.ParseError for a malformed document; the failure is
//     logged and no settings are returned
func (f *Facade) ReadSettings(data []byte) (*model.Settings, error) {
	if err := f.requireInit(); err != nil {
		return nil, err
	}
	page, err := f.page(0)
	if err != nil {
		return nil, err
	}

	var params *layout.Parameters
	err = f.withPage(page, func(img *pageimg.Page) error {
		mask, err := img.Binary()
		if err != nil {
			return err
		}
		params, err = pagexml.ReadSettings(data, mask)
		return err
	})
	if errors.Is(err, ErrMissingImage) {
		params, err = pagexml.ReadSettings(data, nil)
	}
	if err != nil {
		f.logger.Error("failed to read settings", "error", err)
		return nil, err
	}
	return translate.ParametersToSettings(params, f.book), nil
}

// ReadPageXML imports a PAGE document as the segmentation of page pageNr,
// including its reading order. The status is SUCCESS.
//
// # Errors
//
//   - Returns *pagexml.ParseError for a malformed document; the failure is
//     logged and no segmentation is returned
func (f *Facade) ReadPageXML(data []byte, pageNr int) (*model.PageSegmentation, error) {
	if err := f.requireInit(); err != nil {
		return nil, err
	}
	page, err := f.page(pageNr)
	if err != nil {
		return nil, err
	}
	result, err := pagexml.ReadResult(data)
	if err != nil {
		f.logger.Error("failed to read page document", "page", page.ID, "error", err)
		return nil, err
	}
	return translate.ResultToSegmentation(result, page.ID, model.StatusSuccess), nil
}
