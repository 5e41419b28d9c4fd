package facade

import (
	"errors"

	"github.com/ironsheep/layout-tools-mcp/internal/translate"
)

var (
	// ErrNotInitialized is returned by session operations before Init or
	// after Clear.
	ErrNotInitialized = errors.New("layout session not initialized")

	// ErrBookMismatch is returned when settings reference another book than
	// the session's.
	ErrBookMismatch = translate.ErrBookMismatch

	// ErrMissingImage is returned when a page image does not exist on disk.
	// SegmentPage degrades it to a MISSINGFILE segmentation.
	ErrMissingImage = errors.New("page image not found")

	// ErrExportNotPrepared is returned when an export is requested before
	// the matching Prepare call.
	ErrExportNotPrepared = errors.New("nothing has been prepared for export")
)
