// Package model holds the caller-facing representation of books, settings
// and page segmentations.
//
// These types are what a client (the MCP tools, the CLI, a web viewer) sends
// and receives. They mirror the engine-facing types in package layout but are
// shaped for transport: maps keyed by identifier instead of ordered slices,
// plain float points and string enums.
//
// # Coordinate System
//
// Points use image pixel coordinates with (0,0) at the top-left corner of the
// original (unscaled) page image. Polygons flagged IsRelative instead hold
// fractions of the page width and height in the range [0,1].
package model

import (
	"errors"
	"fmt"
)

// ErrPageOutOfRange is returned when a page number does not exist in a book.
var ErrPageOutOfRange = errors.New("page out of range")

// Book is an ordered collection of page images. The core only reads it.
type Book struct {
	ID    int    `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Pages []Page `json:"pages" yaml:"pages"`
}

// Page is one scanned image of a book.
type Page struct {
	// ID identifies the page within its book. Stores assign the page index.
	ID int `json:"id" yaml:"id"`

	// Image is the image file path relative to the session resource path.
	Image string `json:"image" yaml:"image"`

	// BookID is the owning book.
	BookID int `json:"book" yaml:"-"`
}

// Page returns the page at index nr.
func (b *Book) Page(nr int) (Page, error) {
	if b == nil || nr < 0 || nr >= len(b.Pages) {
		return Page{}, fmt.Errorf("%w: %d", ErrPageOutOfRange, nr)
	}
	return b.Pages[nr], nil
}

// Point is a 2D point in page coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Polygon is a caller-facing region outline.
type Polygon struct {
	ID         string  `json:"id"`
	Type       string  `json:"type"`
	Points     []Point `json:"points"`
	IsRelative bool    `json:"isRelative"`
}

// SegmentationStatus tags the outcome of a page segmentation request.
type SegmentationStatus string

const (
	// StatusSuccess means the page has a segmentation, either from the
	// engine or from a cached or imported document.
	StatusSuccess SegmentationStatus = "SUCCESS"

	// StatusMissingFile means the page image was absent; segments are empty.
	StatusMissingFile SegmentationStatus = "MISSINGFILE"
)

// PageSegmentation is the caller-facing result for one page.
type PageSegmentation struct {
	Page         int                `json:"page"`
	Segments     map[string]Polygon `json:"segments"`
	Status       SegmentationStatus `json:"status"`
	ReadingOrder []string           `json:"readingOrder"`
}

// NewPageSegmentation creates an empty segmentation for a page.
func NewPageSegmentation(pageID int, status SegmentationStatus) *PageSegmentation {
	return &PageSegmentation{
		Page:         pageID,
		Segments:     make(map[string]Polygon),
		Status:       status,
		ReadingOrder: []string{},
	}
}
