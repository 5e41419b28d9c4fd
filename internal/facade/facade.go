package facade

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ironsheep/layout-tools-mcp/internal/cache"
	"github.com/ironsheep/layout-tools-mcp/internal/detection"
	"github.com/ironsheep/layout-tools-mcp/internal/layout"
	"github.com/ironsheep/layout-tools-mcp/internal/model"
	"github.com/ironsheep/layout-tools-mcp/internal/pagexml"
	"github.com/ironsheep/layout-tools-mcp/internal/translate"
)

// Facade is a layout session for one book.
type Facade struct {
	logger        *slog.Logger
	factory       layout.EngineFactory
	desiredHeight int

	book         *model.Book
	resourcePath string
	initialized  bool

	engine layout.Engine
	params *layout.Parameters

	exportPage     *pendingExport
	exportSettings *pagexml.Document
}

// Option configures a Facade.
type Option func(*Facade)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(f *Facade) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithEngineFactory sets how the segmentation engine is built. The default
// is the reference engine of package detection.
func WithEngineFactory(factory layout.EngineFactory) Option {
	return func(f *Facade) {
		if factory != nil {
			f.factory = factory
		}
	}
}

// WithDesiredImageHeight sets the engine working height. Zero or less
// keeps the height carried by the parameters.
func WithDesiredImageHeight(height int) Option {
	return func(f *Facade) {
		f.desiredHeight = height
	}
}

// New creates an uninitialized Facade.
func New(opts ...Option) *Facade {
	f := &Facade{
		logger:  slog.Default(),
		factory: detection.Factory,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Init binds the session to a book whose page images live under
// resourcePath.
func (f *Facade) Init(book *model.Book, resourcePath string) {
	f.book = book
	f.resourcePath = resourcePath
	f.initialized = true
}

// SetBook replaces the session book without touching the lifecycle state.
func (f *Facade) SetBook(book *model.Book) {
	f.book = book
}

// Book returns the session book, or nil.
func (f *Facade) Book() *model.Book {
	return f.book
}

// IsInit reports whether the session is initialized.
func (f *Facade) IsInit() bool {
	return f.initialized
}

// ResourcePath returns the directory page images are resolved against.
func (f *Facade) ResourcePath() string {
	return f.resourcePath
}

// Parameters returns the parameters of the last segmentation, or nil.
func (f *Facade) Parameters() *layout.Parameters {
	return f.params
}

// Clear resets the session to the uninitialized state.
func (f *Facade) Clear() {
	f.book = nil
	f.resourcePath = ""
	f.initialized = false
	f.engine = nil
	f.params = nil
	f.exportPage = nil
	f.exportSettings = nil
}

func (f *Facade) requireInit() error {
	if !f.initialized {
		return ErrNotInitialized
	}
	return nil
}

// page returns page nr of the session book.
func (f *Facade) page(nr int) (model.Page, error) {
	if f.book == nil {
		return model.Page{}, fmt.Errorf("%w: no book", ErrNotInitialized)
	}
	return f.book.Page(nr)
}

func (f *Facade) imagePath(page model.Page) string {
	return filepath.Join(f.resourcePath, page.Image)
}

// SegmentPage returns the segmentation of page pageNr.
//
// With allowLocalResults set, a cached document next to the page image is
// returned as-is without running the engine. Otherwise, or when the cached
// document cannot be read, the engine segments the page. Both yield status
// SUCCESS. A missing page image is not an error: the result is an
// empty segmentation with status MISSINGFILE.
//
// # Errors
//
//   - Returns ErrNotInitialized before Init
//   - Returns ErrBookMismatch if the settings belong to another book
//   - Returns model.ErrPageOutOfRange for an unknown page
//   - Returns engine and image decoding errors
func (f *Facade) SegmentPage(ctx context.Context, settings *model.Settings, pageNr int, allowLocalResults bool) (*model.PageSegmentation, error) {
	if err := f.requireInit(); err != nil {
		return nil, err
	}
	if settings == nil {
		return nil, translate.ErrNoSettings
	}
	if f.book == nil || settings.BookID != f.book.ID {
		return nil, fmt.Errorf("%w: settings reference book %d", ErrBookMismatch, settings.BookID)
	}

	page, err := f.page(pageNr)
	if err != nil {
		return nil, err
	}

	if allowLocalResults {
		if entry := cache.Lookup(page, f.resourcePath); entry.Hit {
			result, err := cache.Load(entry.Path)
			if err == nil {
				f.logger.Debug("using cached segmentation", "page", page.ID, "path", entry.Path)
				return translate.ResultToSegmentation(result, page.ID, model.StatusSuccess), nil
			}
			f.logger.Warn("ignoring unreadable cached segmentation", "path", entry.Path, "error", err)
		}
	}

	result, err := f.segment(ctx, settings, page)
	if errors.Is(err, ErrMissingImage) {
		return model.NewPageSegmentation(page.ID, model.StatusMissingFile), nil
	}
	if err != nil {
		return nil, err
	}
	return translate.ResultToSegmentation(result, page.ID, model.StatusSuccess), nil
}

// DefaultSettings returns fresh settings for a book. It does not need an
// initialized session.
func (f *Facade) DefaultSettings(book *model.Book) *model.Settings {
	return translate.DefaultSettings(book)
}

// existingImage returns the image path of a page, or ErrMissingImage.
func (f *Facade) existingImage(page model.Page) (string, error) {
	path := f.imagePath(page)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		f.logger.Warn("page image could not be found", "page", page.ID, "path", path)
		return path, fmt.Errorf("%w: %s", ErrMissingImage, path)
	}
	return path, nil
}
