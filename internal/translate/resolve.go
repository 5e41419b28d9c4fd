package translate

import (
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/layout-tools-mcp/internal/layout"
	"github.com/ironsheep/layout-tools-mcp/internal/model"
)

var (
	// ErrBookMismatch is returned when settings belong to another book.
	ErrBookMismatch = errors.New("settings do not fit the book")

	// ErrNoSettings is returned when settings are missing.
	ErrNoSettings = errors.New("no settings given")
)

// Resolve builds engine parameters from settings for an image of the given
// size.
//
// When prior is non-nil its region rules and manual point lists are carried
// over for every type and page the settings do not mention, so edits made on
// earlier pages of the book persist. Geometry is always recomputed from size;
// a zero size yields geometry-unaware parameters.
func Resolve(bookID int, s *model.Settings, prior *layout.Parameters, size image.Point) (*layout.Parameters, error) {
	if s == nil {
		return nil, ErrNoSettings
	}
	if s.BookID != bookID {
		return nil, fmt.Errorf("%w: settings reference book %d, session book is %d", ErrBookMismatch, s.BookID, bookID)
	}

	p := settingsToParameters(s, prior)
	p.SetGeometry(size.X, size.Y)
	return p, nil
}

// DefaultSettings returns the settings of fresh parameters for a book: the
// default region rules, no manual assignments and page index 0.
func DefaultSettings(book *model.Book) *model.Settings {
	return ParametersToSettings(layout.NewParameters(layout.NewRegionManager(), 0), book)
}
