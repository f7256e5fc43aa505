package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestEdgeDetect(t *testing.T) {
	// Black rectangle on white background
	img := createEdgeTestImage(100, 100)

	result, err := EdgeDetect(img, 5, 1.0, 40, 120)
	if err != nil {
		t.Fatalf("EdgeDetect failed: %v", err)
	}

	if result.Width != 100 || result.Height != 100 {
		t.Errorf("dimensions: got %dx%d, want 100x100", result.Width, result.Height)
	}
	if result.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", result.MimeType)
	}
	if result.EdgePixels == 0 {
		t.Error("rectangle outline was not detected")
	}

	edgeImg := decodeResultPNG(t, result.ImageBase64)
	if edgeImg.Bounds().Dx() != 100 || edgeImg.Bounds().Dy() != 100 {
		t.Errorf("decoded image dimensions: got %dx%d, want 100x100",
			edgeImg.Bounds().Dx(), edgeImg.Bounds().Dy())
	}
}

func TestEdgeDetect_HigherThresholdsFindFewerEdges(t *testing.T) {
	img := createEdgeTestImage(60, 60)

	low, err := EdgeDetect(img, 5, 1.0, 10, 50)
	if err != nil {
		t.Fatalf("EdgeDetect failed: %v", err)
	}
	high, err := EdgeDetect(img, 5, 1.0, 400, 900)
	if err != nil {
		t.Fatalf("EdgeDetect failed: %v", err)
	}
	// Hysteresis with higher thresholds keeps a subset of the edges.
	if high.EdgePixels > low.EdgePixels {
		t.Errorf("edge pixels: high thresholds %d > low thresholds %d", high.EdgePixels, low.EdgePixels)
	}
}

func TestEdgeDetect_UniformImage(t *testing.T) {
	img := createInMemoryImage(50, 50, color.RGBA{128, 128, 128, 255})

	result, err := EdgeDetect(img, 5, 1.0, 40, 120)
	if err != nil {
		t.Fatalf("EdgeDetect failed: %v", err)
	}
	if result.EdgePixels != 0 {
		t.Errorf("uniform image should have no edges, got %d", result.EdgePixels)
	}
}

func TestCanny_StrongEdge(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 50; x < 100; x++ {
			gray.Pix[y*gray.Stride+x] = 0xFF
		}
	}

	edges := Canny(gray, 40, 120)

	// The vertical edge is found near x=50 on every interior row.
	for y := 1; y < 99; y++ {
		found := false
		for x := 48; x <= 52; x++ {
			if edges.On(x, y) {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("row %d: vertical edge not detected", y)
		}
	}

	// Nothing far from the step.
	for y := 0; y < 100; y++ {
		if edges.On(10, y) || edges.On(90, y) {
			t.Fatalf("row %d: spurious edge", y)
		}
	}
}

func TestCanny_BorderRowsAreEmpty(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 20, 20))
	for i := range gray.Pix {
		if (i%20)%2 == 0 {
			gray.Pix[i] = 0xFF
		}
	}

	edges := Canny(gray, 10, 20)
	for i := 0; i < 20; i++ {
		if edges.On(i, 0) || edges.On(i, 19) || edges.On(0, i) || edges.On(19, i) {
			t.Fatalf("edge on the outermost row or column at %d", i)
		}
	}
}

func TestCanny_Empty(t *testing.T) {
	edges := Canny(image.NewGray(image.Rect(0, 0, 0, 0)), 40, 120)
	if edges.Width != 0 || edges.Count() != 0 {
		t.Errorf("empty input: got %dx%d with %d edges", edges.Width, edges.Height, edges.Count())
	}
}

func TestEdgeDetect_SmallImage(t *testing.T) {
	// Very small image (edge cases for convolution)
	img := createInMemoryImage(5, 5, color.RGBA{128, 128, 128, 255})

	result, err := EdgeDetect(img, 5, 1.0, 40, 120)
	if err != nil {
		t.Fatalf("EdgeDetect failed: %v", err)
	}
	if result.Width != 5 || result.Height != 5 {
		t.Errorf("dimensions: got %dx%d, want 5x5", result.Width, result.Height)
	}
}

func TestGradientMagnitude(t *testing.T) {
	tests := []struct {
		gx, gy, want float64
	}{
		{0, 0, 0},
		{300, 0, 300},
		{0, -120, 120},
		{300, 300, 600}, // a diagonal step scores the sum, not 424
		{-30, 40, 70},
	}

	for _, tt := range tests {
		if got := gradientMagnitude(tt.gx, tt.gy); got != tt.want {
			t.Errorf("gradientMagnitude(%g, %g): got %g, want %g", tt.gx, tt.gy, got, tt.want)
		}
	}
}

func TestCanny_DiagonalEdgeUsesL1Magnitude(t *testing.T) {
	// A sharp 0/100 step along x+y = 20 gives |Gx| = |Gy| = 300 on the two
	// pixels either side of it: 600 in L1, about 424 in L2.
	gray := image.NewGray(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			if x+y >= 20 {
				gray.Pix[y*gray.Stride+x] = 100
			}
		}
	}

	edges := Canny(gray, 100, 500)
	if edges.Count() == 0 {
		t.Fatal("diagonal edge should pass a high threshold of 500")
	}
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			if edges.On(x, y) && x+y != 19 && x+y != 20 {
				t.Errorf("edge pixel (%d,%d) is off the step", x, y)
			}
		}
	}

	if n := Canny(gray, 100, 650).Count(); n != 0 {
		t.Errorf("threshold above the L1 magnitude: got %d edge pixels", n)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, min, max, want int
	}{
		{5, 0, 10, 5},   // within range
		{-1, 0, 10, 0},  // below min
		{15, 0, 10, 10}, // above max
		{0, 0, 10, 0},   // at min
		{10, 0, 10, 10}, // at max
	}

	for _, tt := range tests {
		got := clamp(tt.val, tt.min, tt.max)
		if got != tt.want {
			t.Errorf("clamp(%d, %d, %d): got %d, want %d",
				tt.val, tt.min, tt.max, got, tt.want)
		}
	}
}

// createEdgeTestImage creates an image with a black rectangle on white background
// to create clear edges for testing
func createEdgeTestImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.White)
		}
	}

	for y := height / 4; y < 3*height/4; y++ {
		for x := width / 4; x < 3*width/4; x++ {
			img.Set(x, y, color.Black)
		}
	}

	return img
}
