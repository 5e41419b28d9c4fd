// Package cache finds and loads previously exported segmentation results.
//
// A result for a page image is cached as a PAGE document next to the image,
// with the image extension replaced by ".xml": the result of
// "books/b1/0001.png" is "books/b1/0001.xml". Documents are never
// invalidated; callers opt in to using them per request.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ironsheep/layout-tools-mcp/internal/layout"
	"github.com/ironsheep/layout-tools-mcp/internal/model"
	"github.com/ironsheep/layout-tools-mcp/internal/pagexml"
)

// Entry is the outcome of a cache lookup.
type Entry struct {
	// Path is where the cached document of the page lives or would live.
	Path string

	// Hit reports whether a regular file exists at Path.
	Hit bool
}

// Path returns the cache document path for a page image.
func Path(page model.Page, resourcePath string) string {
	image := filepath.Join(resourcePath, page.Image)
	return strings.TrimSuffix(image, filepath.Ext(image)) + ".xml"
}

// Lookup checks for a cached result of the page.
func Lookup(page model.Page, resourcePath string) Entry {
	path := Path(page, resourcePath)
	info, err := os.Stat(path)
	return Entry{Path: path, Hit: err == nil && info.Mode().IsRegular()}
}

// Load reads a cached result document.
//
// # Errors
//
//   - Returns an error wrapping os.ErrNotExist if the document is missing
//   - Returns *pagexml.ParseError if the document is malformed
func Load(path string) (*layout.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cached result: %w", err)
	}
	return pagexml.ReadResult(data)
}
