package imaging

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
)

// ErrNotInitialized is returned when pixel data of a Page is requested
// before Init or after Clean.
var ErrNotInitialized = errors.New("page image not initialized")

// Page is a page image whose decoded buffers are held only between Init and
// Clean.
//
// The zero value is not usable; create pages with NewPage.
type Page struct {
	path     string
	original image.Image
	binary   *image.Gray
}

// NewPage creates a page for an image file without decoding it.
func NewPage(path string) *Page {
	return &Page{path: path}
}

// Path returns the image file path.
func (p *Page) Path() string {
	return p.path
}

// FileName returns the image file name without directory and extension.
//
// It names exported documents: "scans/0001.tif" becomes "0001".
func (p *Page) FileName() string {
	base := filepath.Base(p.path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Init decodes the page image.
//
// # Errors
//
//   - Returns an error wrapping os.ErrNotExist if the file does not exist
//   - Returns an error if the file is not a supported image format
func (p *Page) Init() error {
	img, err := imaging.Open(p.path)
	if err != nil {
		return fmt.Errorf("failed to open page image: %w", err)
	}
	p.original = img
	p.binary = nil
	return nil
}

// Initialized reports whether the decoded buffers are available.
func (p *Page) Initialized() bool {
	return p.original != nil
}

// Original returns the decoded image, or nil if the page is not initialized.
func (p *Page) Original() image.Image {
	return p.original
}

// Size returns the image width and height, or the zero point if the page is
// not initialized.
func (p *Page) Size() image.Point {
	if p.original == nil {
		return image.Point{}
	}
	return p.original.Bounds().Size()
}

// Binary returns the binarized mask of the page, computing it on first use
// with an automatic threshold.
func (p *Page) Binary() (*image.Gray, error) {
	if p.original == nil {
		return nil, ErrNotInitialized
	}
	if p.binary == nil {
		p.binary = Binarize(p.original, -1)
	}
	return p.binary, nil
}

// Clean releases the decoded buffers. The page can be initialized again.
func (p *Page) Clean() {
	p.original = nil
	p.binary = nil
}

// ImageInfo contains metadata about an image file.
//
// This struct provides essential information about an image without requiring
// the caller to decode the pixel data.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the format name reported by the decoder: "png", "jpeg",
	// "gif", "tiff" or "bmp".
	Format string `json:"format"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo reads the header of an image file and returns its metadata.
//
// Only the image header is decoded, so this is cheap enough to call where a
// full decode would break the scoped-buffer discipline (for example when an
// export needs the page dimensions).
//
// # Errors
//
//   - Returns error if the file does not exist or cannot be read
//   - Returns error if the header is not a supported image format
func LoadImageInfo(path string) (*ImageInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image header: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return &ImageInfo{
		Width:         cfg.Width,
		Height:        cfg.Height,
		Format:        format,
		FileSizeBytes: stat.Size(),
	}, nil
}
