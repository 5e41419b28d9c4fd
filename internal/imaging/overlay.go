package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"sort"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/layout-tools-mcp/internal/layout"
)

// OverlayResult contains a page image with region outlines drawn on it.
type OverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`

	// Colors maps each drawn region type to its outline color (#RRGGBB).
	Colors map[string]string `json:"colors"`
}

// RenderRegions draws the outlines of regions over an image.
//
// Each region type gets its own color from an evenly spaced hue palette,
// assigned in sorted type order so a type keeps its color between renders of
// the same set of types. When showLabels is set, the position of a region in
// the reading order (or in regions when readingOrder is empty) is written
// next to its first point.
func RenderRegions(img image.Image, regions []layout.Region, readingOrder []string, showLabels bool) (*OverlayResult, error) {
	bounds := img.Bounds()

	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, img, bounds.Min, draw.Src)

	palette := typePalette(regions)

	labels := make(map[string]int, len(regions))
	if len(readingOrder) > 0 {
		for i, id := range readingOrder {
			labels[id] = i + 1
		}
	} else {
		for i, r := range regions {
			labels[r.ID] = i + 1
		}
	}

	for _, r := range regions {
		if len(r.Points) == 0 {
			continue
		}
		c := palette[r.Type]
		for i := range r.Points {
			a := r.Points[i]
			b := r.Points[(i+1)%len(r.Points)]
			TraceLine(round(a.X), round(a.Y), round(b.X), round(b.Y), func(x, y int) {
				if (image.Point{X: x, Y: y}).In(bounds) {
					result.Set(x, y, c)
				}
			})
		}

		if n, ok := labels[r.ID]; ok && showLabels {
			first := r.Points[0]
			drawLabel(result, round(first.X)+2, round(first.Y)+2, strconv.Itoa(n),
				color.RGBA{255, 255, 255, 255}, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, result); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	colors := make(map[string]string, len(palette))
	for t, c := range palette {
		cf, _ := colorful.MakeColor(c)
		colors[string(t)] = cf.Hex()
	}

	return &OverlayResult{
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
		Colors:      colors,
	}, nil
}

// typePalette assigns one opaque color per region type.
func typePalette(regions []layout.Region) map[layout.RegionType]color.RGBA {
	seen := make(map[layout.RegionType]bool)
	types := make([]layout.RegionType, 0)
	for _, r := range regions {
		if !seen[r.Type] {
			seen[r.Type] = true
			types = append(types, r.Type)
		}
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	palette := make(map[layout.RegionType]color.RGBA, len(types))
	for i, t := range types {
		hue := 360 * float64(i) / float64(len(types))
		r, g, b := colorful.Hsv(hue, 0.85, 0.9).RGB255()
		palette[t] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return palette
}

func round(v float64) int {
	return int(math.Round(v))
}

// drawLabel draws a simple text label at the given position
// This is a basic implementation - for production, consider using a font library
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	// Simple 3x5 pixel font for digits
	glyphs := map[rune][]string{
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
		'4': {"101", "101", "111", "001", "001"},
		'5': {"111", "100", "111", "001", "111"},
		'6': {"111", "100", "111", "101", "111"},
		'7': {"111", "001", "001", "001", "001"},
		'8': {"111", "101", "111", "101", "111"},
		'9': {"111", "101", "111", "001", "111"},
	}

	bounds := img.Bounds()
	charWidth := 4
	labelWidth := len(text) * charWidth
	labelHeight := 7

	// Draw background
	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			px, py := x+dx, y+dy
			if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
				img.Set(px, py, bg)
			}
		}
	}

	// Draw text
	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel == '1' {
					px, py := cx+col, y+row
					if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
						img.Set(px, py, fg)
					}
				}
			}
		}
		cx += charWidth
	}
}
