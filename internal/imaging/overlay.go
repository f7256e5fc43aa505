package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/stroke-tools-mcp/internal/trace"
)

// OverlayResult contains a rectified frame with traced strokes painted on it.
type OverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	StrokeCount int    `json:"stroke_count"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// StrokePalette returns n visually distinct colors. The palette is fixed for a
// given n so repeated renders of the same strokes look identical.
func StrokePalette(n int) []color.RGBA {
	palette := make([]color.RGBA, n)
	for i := range palette {
		// Golden-angle hue steps keep neighbors apart for any n.
		h := float64(i) * 137.508
		for h >= 360 {
			h -= 360
		}
		c := colorful.Hcl(h, 0.75, 0.55).Clamped()
		r, g, b := c.RGB255()
		palette[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return palette
}

// RenderStrokes paints each stroke over a faded copy of img in its own color.
// When labels is true, the stroke index is written next to its first pixel.
func RenderStrokes(img image.Image, strokes []trace.Stroke, labels bool) (*OverlayResult, error) {
	bounds := img.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(canvas, canvas.Bounds(), img, bounds.Min, draw.Src)

	// Fade the background so thin strokes stand out.
	veil := image.NewUniform(color.NRGBA{255, 255, 255, 160})
	draw.Draw(canvas, canvas.Bounds(), veil, image.Point{}, draw.Over)

	palette := StrokePalette(len(strokes))
	for i, s := range strokes {
		for _, p := range s {
			canvas.SetRGBA(p.X, p.Y, palette[i])
		}
	}

	if labels {
		for i, s := range strokes {
			if len(s) == 0 {
				continue
			}
			drawText(canvas, s[0].X+3, s[0].Y-3, fmt.Sprintf("%d", i), palette[i])
		}
	}

	encoded, err := EncodePNGBase64(canvas)
	if err != nil {
		return nil, err
	}

	return &OverlayResult{
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		StrokeCount: len(strokes),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

// drawText writes text with its baseline at (x, y) using the 7x13 bitmap face.
func drawText(dst draw.Image, x, y int, text string, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
