// Package imaging provides page image loading, binarization and overlay
// rendering for layout analysis.
//
// This package implements the pixel-level plumbing the layout core needs:
// decoding a page image, deriving its binarized mask, and drawing region
// outlines for previews. All operations work with standard Go image.Image
// types and use a coordinate system where (0,0) is at the top-left corner,
// X increases rightward, and Y increases downward.
//
// # Scoped Page Buffers
//
// A decoded page is a scoped resource. Page.Init decodes the image, Binary
// derives the mask on first use, and Page.Clean releases both buffers. Every
// operation that needs pixel data acquires a Page at its start and releases
// it before returning:
//
//	page := imaging.NewPage(path)
//	if err := page.Init(); err != nil {
//	    return err
//	}
//	defer page.Clean()
//
// Results derived from the pixels (regions, documents) outlive the Page; the
// buffers themselves must not be retained by callers.
//
// # Binary Masks
//
// Binary masks are *image.Gray values produced by Binarize. Foreground (ink)
// pixels are black (0) and background pixels are white (255).
// ForegroundGrid turns a mask into a [][]bool indexed [y][x] for the
// connected-component and contour code in package detection.
//
// # Supported Formats
//
// PNG, JPEG, GIF, TIFF and BMP. TIFF is the common format for book scans.
//
// # Thread Safety
//
// Page is not safe for concurrent use. The stateless functions (Binarize,
// OtsuThreshold, RenderRegions, LoadImageInfo) can be called concurrently on
// different images.
package imaging
