package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestBinarize_Automatic(t *testing.T) {
	mask := Binarize(createSplitImage(40, 10), -1)

	if mask.Bounds() != image.Rect(0, 0, 40, 10) {
		t.Fatalf("bounds: got %v", mask.Bounds())
	}
	for y := 0; y < 10; y++ {
		for x := 0; x < 40; x++ {
			want := x < 20
			if got := IsForeground(mask, x, y); got != want {
				t.Fatalf("pixel (%d,%d): foreground=%v, want %v", x, y, got, want)
			}
		}
	}
}

func TestBinarize_FixedThreshold(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 1))
	img.Set(0, 0, color.RGBA{50, 50, 50, 255})
	img.Set(1, 0, color.RGBA{150, 150, 150, 255})
	img.Set(2, 0, color.RGBA{250, 250, 250, 255})

	tests := []struct {
		threshold int
		want      []bool
	}{
		{100, []bool{true, false, false}},
		{200, []bool{true, true, false}},
		{0, []bool{false, false, false}},
	}

	for _, tt := range tests {
		mask := Binarize(img, tt.threshold)
		for x, want := range tt.want {
			if got := IsForeground(mask, x, 0); got != want {
				t.Errorf("threshold %d pixel %d: got %v, want %v", tt.threshold, x, got, want)
			}
		}
	}
}

func TestOtsuThreshold(t *testing.T) {
	tests := []struct {
		name string
		img  image.Image
		want int
	}{
		{"uniform white", createUniform(10, 10, 255), 128},
		{"uniform black", createUniform(10, 10, 0), 128},
		{"black and white", createSplitImage(10, 10), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OtsuThreshold(tt.img); got != tt.want {
				t.Errorf("OtsuThreshold = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBinarize_UniformWhiteHasNoForeground(t *testing.T) {
	mask := Binarize(createUniform(8, 8, 255), -1)
	for _, row := range ForegroundGrid(mask) {
		for _, fg := range row {
			if fg {
				t.Fatal("white page should have no foreground")
			}
		}
	}
}

func TestForegroundGridRoundTrip(t *testing.T) {
	grid := [][]bool{
		{true, false, false},
		{false, true, true},
	}

	mask := MaskFromGrid(grid)
	if mask.Bounds() != image.Rect(0, 0, 3, 2) {
		t.Fatalf("bounds: got %v", mask.Bounds())
	}

	back := ForegroundGrid(mask)
	for y := range grid {
		for x := range grid[y] {
			if back[y][x] != grid[y][x] {
				t.Errorf("(%d,%d): got %v, want %v", x, y, back[y][x], grid[y][x])
			}
		}
	}
}

func TestTraceLine(t *testing.T) {
	tests := []struct {
		name           string
		x0, y0, x1, y1 int
		wantCount      int
	}{
		{"horizontal", 0, 0, 9, 0, 10},
		{"vertical", 3, 5, 3, 1, 5},
		{"diagonal", 0, 0, 4, 4, 5},
		{"single point", 2, 2, 2, 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var pts []image.Point
			TraceLine(tt.x0, tt.y0, tt.x1, tt.y1, func(x, y int) {
				pts = append(pts, image.Pt(x, y))
			})
			if len(pts) != tt.wantCount {
				t.Errorf("got %d points, want %d", len(pts), tt.wantCount)
			}
			if pts[0] != image.Pt(tt.x0, tt.y0) || pts[len(pts)-1] != image.Pt(tt.x1, tt.y1) {
				t.Errorf("endpoints: got %v..%v", pts[0], pts[len(pts)-1])
			}
		})
	}
}

func createUniform(width, height int, level uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = level
	}
	return img
}
