package imaging

import (
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/ironsheep/stroke-tools-mcp/internal/workspace"
)

// createInMemoryImage creates an in-memory test image
func createInMemoryImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createPatternImage creates an image with different colors in each quadrant
func createPatternImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.Color
			if x < width/2 && y < height/2 {
				c = color.RGBA{255, 0, 0, 255} // Red top-left
			} else if x >= width/2 && y < height/2 {
				c = color.RGBA{0, 255, 0, 255} // Green top-right
			} else if x < width/2 && y >= height/2 {
				c = color.RGBA{0, 0, 255, 255} // Blue bottom-left
			} else {
				c = color.RGBA{255, 255, 255, 255} // White bottom-right
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func decodeResultPNG(t *testing.T, b64 string) image.Image {
	t.Helper()
	decoded, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := png.Decode(strings.NewReader(string(decoded)))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}
	return img
}

func hexAt(img image.Image, x, y int) string {
	r, g, b, _ := img.At(x, y).RGBA()
	return "#" + toHex(uint8(r>>8)) + toHex(uint8(g>>8)) + toHex(uint8(b>>8))
}

func toHex(b uint8) string {
	const hex = "0123456789ABCDEF"
	return string([]byte{hex[b>>4], hex[b&0xf]})
}

func TestCrop(t *testing.T) {
	img := createPatternImage(100, 100)

	result, err := Crop(img, image.Rect(0, 0, 50, 50), 1.0)
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}

	if result.Width != 50 || result.Height != 50 {
		t.Errorf("dimensions: got %dx%d, want 50x50", result.Width, result.Height)
	}
	if result.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", result.MimeType)
	}

	// Top-left quadrant is red.
	if got := hexAt(decodeResultPNG(t, result.ImageBase64), 25, 25); got != "#FF0000" {
		t.Errorf("cropped image color: got %s, want #FF0000", got)
	}
}

func TestCrop_Scale(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	tests := []struct {
		name         string
		r            image.Rectangle
		scale        float64
		wantW, wantH int
	}{
		{"double", image.Rect(0, 0, 50, 50), 2.0, 100, 100},
		{"half", image.Rect(0, 0, 100, 100), 0.5, 50, 50},
		{"zero keeps size", image.Rect(10, 10, 40, 30), 0, 30, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Crop(img, tt.r, tt.scale)
			if err != nil {
				t.Fatalf("Crop failed: %v", err)
			}
			if result.Width != tt.wantW || result.Height != tt.wantH {
				t.Errorf("scaled dimensions: got %dx%d, want %dx%d", result.Width, result.Height, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestCrop_OutOfBounds(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	tests := []struct {
		name           string
		x1, y1, x2, y2 int
	}{
		{"x1 negative", -1, 0, 50, 50},
		{"y1 negative", 0, -1, 50, 50},
		{"x2 too large", 0, 0, 101, 50},
		{"y2 too large", 0, 0, 50, 101},
		{"all out of bounds", -1, -1, 200, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Crop(img, image.Rect(tt.x1, tt.y1, tt.x2, tt.y2), 1.0)
			if err == nil {
				t.Error("Crop should fail for out-of-bounds coordinates")
			}
		})
	}
}

func TestCrop_InvalidRegion(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	tests := []struct {
		name           string
		x1, y1, x2, y2 int
	}{
		{"x1 >= x2", 50, 0, 50, 50},
		{"x1 > x2", 60, 0, 50, 50},
		{"y1 >= y2", 0, 50, 50, 50},
		{"y1 > y2", 0, 60, 50, 50},
		{"zero area", 50, 50, 50, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := image.Rectangle{Min: image.Pt(tt.x1, tt.y1), Max: image.Pt(tt.x2, tt.y2)}
			_, err := Crop(img, r, 1.0)
			if err == nil {
				t.Error("Crop should fail for invalid region")
			}
		})
	}
}

func TestCropRegion_Clips(t *testing.T) {
	img := createPatternImage(100, 100)

	got := CropRegion(img, image.Rect(80, 80, 150, 150), 1)
	if got.Bounds() != image.Rect(0, 0, 20, 20) {
		t.Errorf("bounds: got %v, want 20x20 at the origin", got.Bounds())
	}

	empty := CropRegion(img, image.Rect(200, 200, 300, 300), 2)
	if !empty.Bounds().Empty() {
		t.Errorf("disjoint region: got %v, want empty", empty.Bounds())
	}
}

func TestCornerRect(t *testing.T) {
	bounds := image.Rect(10, 20, 110, 80)

	tests := []struct {
		role workspace.Role
		want image.Rectangle
	}{
		{workspace.TopLeft, image.Rect(10, 20, 40, 50)},
		{workspace.TopRight, image.Rect(80, 20, 110, 50)},
		{workspace.BottomLeft, image.Rect(10, 50, 40, 80)},
		{workspace.BottomRight, image.Rect(80, 50, 110, 80)},
	}

	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			if got := CornerRect(bounds, tt.role, 30); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	// Oversized squares are clipped to the frame.
	if got := CornerRect(bounds, workspace.TopLeft, 500); got != bounds {
		t.Errorf("oversized: got %v, want %v", got, bounds)
	}
}

func TestCropCorner(t *testing.T) {
	img := createPatternImage(100, 100)

	tests := []struct {
		role    workspace.Role
		wantHex string
	}{
		{workspace.TopLeft, "#FF0000"},
		{workspace.TopRight, "#00FF00"},
		{workspace.BottomLeft, "#0000FF"},
		{workspace.BottomRight, "#FFFFFF"},
	}

	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			result, err := CropCorner(img, tt.role, 20, 1.0)
			if err != nil {
				t.Fatalf("CropCorner(%s) failed: %v", tt.role, err)
			}
			if result.Width != 20 || result.Height != 20 {
				t.Errorf("dimensions: got %dx%d, want 20x20", result.Width, result.Height)
			}
			if got := hexAt(decodeResultPNG(t, result.ImageBase64), 10, 10); got != tt.wantHex {
				t.Errorf("color in %s: got %s, want %s", tt.role, got, tt.wantHex)
			}
		})
	}

	if _, err := CropCorner(img, workspace.TopLeft, 0, 1.0); err == nil {
		t.Error("CropCorner should fail for a zero size")
	}
}
