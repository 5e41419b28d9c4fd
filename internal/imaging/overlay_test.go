package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/ironsheep/layout-tools-mcp/internal/layout"
)

func createInMemoryImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func rectRegion(id string, typ layout.RegionType, x1, y1, x2, y2 float64) layout.Region {
	return layout.Region{
		ID:     id,
		Type:   typ,
		Points: []layout.Point{{X: x1, Y: y1}, {X: x2, Y: y1}, {X: x2, Y: y2}, {X: x1, Y: y2}},
	}
}

func decodeOverlay(t *testing.T, result *OverlayResult) image.Image {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode png: %v", err)
	}
	return img
}

func TestRenderRegions(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 255, 255, 255})
	regions := []layout.Region{
		rectRegion("r1", layout.TypeParagraph, 10, 10, 50, 40),
		rectRegion("r2", layout.TypeImage, 60, 60, 90, 90),
	}

	result, err := RenderRegions(img, regions, nil, false)
	if err != nil {
		t.Fatalf("RenderRegions failed: %v", err)
	}

	if result.Width != 100 || result.Height != 100 {
		t.Errorf("dimensions: got %dx%d, want 100x100", result.Width, result.Height)
	}
	if result.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", result.MimeType)
	}
	if len(result.Colors) != 2 {
		t.Fatalf("Colors: got %d entries, want 2", len(result.Colors))
	}
	if result.Colors["image"] == result.Colors["paragraph"] {
		t.Error("different types should get different colors")
	}
	for typ, hex := range result.Colors {
		if !strings.HasPrefix(hex, "#") || len(hex) != 7 {
			t.Errorf("color for %s: got %q, want #RRGGBB", typ, hex)
		}
	}

	out := decodeOverlay(t, result)

	// Outline pixel is colored, interior stays white.
	if r, g, b, _ := out.At(10, 20).RGBA(); r>>8 == 255 && g>>8 == 255 && b>>8 == 255 {
		t.Error("outline pixel (10,20) should be colored")
	}
	if r, g, b, _ := out.At(30, 25).RGBA(); r>>8 != 255 || g>>8 != 255 || b>>8 != 255 {
		t.Error("interior pixel (30,25) should stay white")
	}
}

func TestRenderRegions_OutOfBoundsPoints(t *testing.T) {
	img := createInMemoryImage(20, 20, color.RGBA{0, 0, 0, 255})
	regions := []layout.Region{
		rectRegion("r1", layout.TypeParagraph, -10, -10, 50, 50),
		{ID: "empty", Type: layout.TypeOther},
	}

	// Should not panic when outlines leave the image.
	if _, err := RenderRegions(img, regions, []string{"r1"}, true); err != nil {
		t.Fatalf("RenderRegions failed: %v", err)
	}
}

func TestTypePalette_StableForSameTypes(t *testing.T) {
	a := typePalette([]layout.Region{
		{Type: layout.TypeImage}, {Type: layout.TypeParagraph}, {Type: layout.TypeHeading},
	})
	b := typePalette([]layout.Region{
		{Type: layout.TypeHeading}, {Type: layout.TypeParagraph}, {Type: layout.TypeImage}, {Type: layout.TypeImage},
	})

	if len(a) != 3 || len(b) != 3 {
		t.Fatalf("palette sizes: %d, %d", len(a), len(b))
	}
	for typ, c := range a {
		if b[typ] != c {
			t.Errorf("color for %s differs between calls", typ)
		}
	}
}

func TestDrawLabel(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))

	// Draw a label
	fg := color.RGBA{255, 255, 255, 255}
	bg := color.RGBA{0, 0, 0, 180}
	drawLabel(img, 10, 10, "50", fg, bg)

	// Verify something was drawn (not empty)
	hasWhite := false
	hasBlack := false
	for y := 9; y < 20; y++ {
		for x := 9; x < 20; x++ {
			r, _, _, a := img.At(x, y).RGBA()
			if r > 200<<8 {
				hasWhite = true
			}
			if r < 50<<8 && a > 0 {
				hasBlack = true
			}
		}
	}

	if !hasWhite {
		t.Error("label should have white pixels (text)")
	}
	if !hasBlack {
		t.Error("label should have dark pixels (background)")
	}
}

func TestDrawLabel_BoundsCheck(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))

	fg := color.RGBA{255, 255, 255, 255}
	bg := color.RGBA{0, 0, 0, 180}

	// These should not panic even if label extends past bounds
	drawLabel(img, 15, 15, "100", fg, bg)
	drawLabel(img, 0, 0, "0", fg, bg)
	drawLabel(img, -5, -5, "12", fg, bg)
	drawLabel(img, 10, 10, "", fg, bg)
	drawLabel(img, 10, 10, "a1", fg, bg)
}
