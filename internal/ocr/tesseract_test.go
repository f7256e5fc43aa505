package ocr

import (
	"image"
	"image/color"
	"image/draw"
	"strings"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// drawText draws text on an image using basicfont
func drawText(img *image.RGBA, x, y int, text string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// captionImage renders text at 4x scale on a white frame, offset so that the
// caption does not start at the origin.
func captionImage(text string) *image.RGBA {
	const scale = 4
	small := image.NewRGBA(image.Rect(0, 0, len(text)*7+40, 40))
	draw.Draw(small, small.Bounds(), image.White, image.Point{}, draw.Src)
	drawText(small, 20, 25, text, color.Black)

	b := small.Bounds()
	img := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale+100, b.Dy()*scale+100))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := small.RGBAAt(x, y)
			draw.Draw(img, image.Rect(100+x*scale, 100+y*scale, 100+(x+1)*scale, 100+(y+1)*scale),
				image.NewUniform(c), image.Point{}, draw.Src)
		}
	}
	return img
}

func skipWithoutTesseract(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		return
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "tesseract") || strings.Contains(msg, "library") || strings.Contains(msg, "language") {
		t.Skipf("Tesseract not available: %v", err)
	}
}

func TestEngine_ReadRegion(t *testing.T) {
	img := captionImage("ID 2 (bottom_left)")
	region := image.Rect(100, 100, img.Bounds().Max.X, img.Bounds().Max.Y)

	result, err := Engine{}.ReadRegion(img, region)
	skipWithoutTesseract(t, err)
	if err != nil {
		t.Fatalf("ReadRegion failed: %v", err)
	}

	for _, r := range result.Regions {
		if r.Bounds.X1 < region.Min.X || r.Bounds.Y1 < region.Min.Y {
			t.Errorf("word %q at %+v not offset into the frame", r.Text, r.Bounds)
		}
	}

	label, ok := ParseLabel(result.FullText)
	if !ok {
		t.Logf("caption not recognized, got %q", result.FullText)
		return
	}
	if label.ID != 2 {
		t.Errorf("printed id = %d, want 2", label.ID)
	}
}

func TestEngine_ReadRegion_OutsideImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 50, 50))
	if _, err := (Engine{}).ReadRegion(img, image.Rect(60, 60, 80, 80)); err == nil {
		t.Error("ReadRegion should fail for a region outside the image")
	}
}

func TestEngine_InvalidLanguage(t *testing.T) {
	img := captionImage("ID 0 (top_left)")
	_, err := Engine{Language: "invalid_language_code_xyz"}.ReadRegion(img, img.Bounds())
	if err == nil {
		// Some Tesseract installations might be lenient with language codes
		t.Log("ReadRegion did not fail for invalid language - may be Tesseract config")
	}
}

func TestBoundsRect(t *testing.T) {
	b := Bounds{X1: 1, Y1: 2, X2: 30, Y2: 40}
	if got, want := b.Rect(), image.Rect(1, 2, 30, 40); got != want {
		t.Errorf("Rect() = %v, want %v", got, want)
	}
}
