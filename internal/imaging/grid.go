package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
)

// GridOverlayResult contains the image with grid overlay
type GridOverlayResult struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	ImageBase64 string  `json:"image_base64"`
	MimeType    string  `json:"mime_type"`
	SpacingMM   float64 `json:"spacing_mm"`
	LinesX      int     `json:"lines_x"`
	LinesY      int     `json:"lines_y"`
}

// GridOverlay draws a millimeter grid over a rectified frame whose full extent
// represents widthMM x heightMM. Lines are placed every spacingMM; labels give
// the millimeter offset from the top-left corner.
func GridOverlay(img image.Image, spacingMM, widthMM, heightMM float64, showCoordinates bool, gridColorHex string) (*GridOverlayResult, error) {
	if spacingMM <= 0 {
		return nil, fmt.Errorf("grid spacing must be positive, got %g", spacingMM)
	}
	if widthMM <= 0 || heightMM <= 0 {
		return nil, fmt.Errorf("physical size must be positive, got %gx%g mm", widthMM, heightMM)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	gridColor, err := parseHexColor(gridColorHex)
	if err != nil {
		gridColor = color.NRGBA{255, 0, 0, 128} // Default: semi-transparent red
	}

	result := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(result, result.Bounds(), img, bounds.Min, draw.Src)

	pxPerMMX := float64(width) / widthMM
	pxPerMMY := float64(height) / heightMM
	line := image.NewUniform(gridColor)

	var xs, ys []int
	for mm := spacingMM; mm < widthMM; mm += spacingMM {
		x := int(math.Round(mm * pxPerMMX))
		draw.Draw(result, image.Rect(x, 0, x+1, height), line, image.Point{}, draw.Over)
		xs = append(xs, x)
	}
	for mm := spacingMM; mm < heightMM; mm += spacingMM {
		y := int(math.Round(mm * pxPerMMY))
		draw.Draw(result, image.Rect(0, y, width, y+1), line, image.Point{}, draw.Over)
		ys = append(ys, y)
	}

	if showCoordinates {
		labelColor := color.RGBA{255, 255, 255, 255}
		bgColor := image.NewUniform(color.NRGBA{0, 0, 0, 180})
		for i, y := range ys {
			for j, x := range xs {
				label := fmt.Sprintf("%g,%g", float64(j+1)*spacingMM, float64(i+1)*spacingMM)
				box := image.Rect(x+1, y+1, x+3+7*len(label), y+16)
				draw.Draw(result, box, bgColor, image.Point{}, draw.Over)
				drawText(result, x+2, y+12, label, labelColor)
			}
		}
	}

	encoded, err := EncodePNGBase64(result)
	if err != nil {
		return nil, err
	}

	return &GridOverlayResult{
		Width:       width,
		Height:      height,
		ImageBase64: encoded,
		MimeType:    "image/png",
		SpacingMM:   spacingMM,
		LinesX:      len(xs),
		LinesY:      len(ys),
	}, nil
}

// parseHexColor parses a hex color string like "#FF0000" or "#FF000080"
func parseHexColor(hex string) (color.NRGBA, error) {
	if len(hex) == 0 {
		return color.NRGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] != '#' {
		hex = "#" + hex
	}

	alpha := uint8(255)
	switch len(hex) {
	case 7:
	case 9:
		a, err := strconv.ParseUint(hex[7:], 16, 8)
		if err != nil {
			return color.NRGBA{}, err
		}
		alpha = uint8(a)
		hex = hex[:7]
	default:
		return color.NRGBA{}, fmt.Errorf("invalid hex color length")
	}

	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, err
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}
