package imaging

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/histogram"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
)

// Binarize converts an image into a binary mask.
//
// Parameters:
//   - img: Source image (color or grayscale).
//   - threshold: Gray level (0-255) separating ink from background. Pixels
//     darker than the threshold become foreground. Values outside 0-255
//     select the threshold automatically with OtsuThreshold.
//
// Returns a mask with the bounds (0,0)-(width,height) where foreground is
// black (0) and background is white (255).
func Binarize(img image.Image, threshold int) *image.Gray {
	gray := imaging.Grayscale(img)

	level := threshold
	if level < 0 || level > 255 {
		level = OtsuThreshold(gray)
	}
	return segment.Threshold(gray, uint8(level))
}

// OtsuThreshold computes the gray level that best separates an image into
// ink and background.
//
// The returned level is the first gray value of the background class, so it
// can be passed to Binarize directly. A uniform image yields 128.
//
// # Algorithm
//
// Otsu's method: for every candidate split of the luminance histogram the
// between-class variance wB*wF*(mB-mF)² is computed, and the split with the
// largest variance wins. Ties keep the lowest level.
func OtsuThreshold(img image.Image) int {
	hist := histogram.NewRGBAHistogram(img)
	bins := hist.R.Bins

	var total, sumAll float64
	for i, n := range bins {
		total += float64(n)
		sumAll += float64(i * n)
	}

	level := 128
	var best, wB, sumB float64
	for t, n := range bins {
		wB += float64(n)
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(t * n)
		mB := sumB / wB
		mF := (sumAll - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			level = t + 1
		}
	}
	return level
}

// IsForeground reports whether the mask pixel at (x, y) is ink.
func IsForeground(mask *image.Gray, x, y int) bool {
	return mask.GrayAt(x, y).Y == 0
}

// ForegroundGrid converts a mask into a grid indexed [y][x] relative to the
// mask bounds, true for foreground pixels.
func ForegroundGrid(mask *image.Gray) [][]bool {
	bounds := mask.Bounds()
	grid := make([][]bool, bounds.Dy())
	for y := 0; y < bounds.Dy(); y++ {
		grid[y] = make([]bool, bounds.Dx())
		for x := 0; x < bounds.Dx(); x++ {
			grid[y][x] = IsForeground(mask, x+bounds.Min.X, y+bounds.Min.Y)
		}
	}
	return grid
}

// MaskFromGrid is the inverse of ForegroundGrid.
func MaskFromGrid(grid [][]bool) *image.Gray {
	height := len(grid)
	width := 0
	if height > 0 {
		width = len(grid[0])
	}
	mask := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if grid[y][x] {
				mask.SetGray(x, y, color.Gray{Y: 0})
			} else {
				mask.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return mask
}

// TraceLine calls plot for every pixel on the segment from (x0,y0) to
// (x1,y1), endpoints included, using Bresenham's algorithm.
func TraceLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := absInt(x1 - x0)
	dy := -absInt(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
