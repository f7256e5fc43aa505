package geometry

import (
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/clone"

	"github.com/ironsheep/stroke-tools-mcp/internal/workspace"
)

// TargetCorners returns the rectified frame corners in TL, TR, BL, BR order.
// The right and bottom corners sit on the outer edge of the last pixel.
func TargetCorners(width, height int) [4]Point {
	w, h := float64(width), float64(height)
	return [4]Point{{0, 0}, {w, 0}, {0, h}, {w, h}}
}

// Rectify warps img so that the quadrilateral with corners (TL, TR, BL, BR)
// fills a width x height frame.
//
// corners are in img's own coordinate space, so a sub-image keeps the
// coordinates of its parent. Every output pixel (x, y) is filled by sampling
// img at H⁻¹(x, y), where H maps corners onto TargetCorners. Samples falling outside img are black.
// interp selects bilinear or nearest-neighbor sampling.
//
// It returns the rectified frame and H.
func Rectify(img image.Image, corners [4]Point, width, height int, interp workspace.Interpolation) (*image.RGBA, Homography, error) {
	if width <= 0 || height <= 0 {
		return nil, Homography{}, fmt.Errorf("rectified size must be positive, got %dx%d", width, height)
	}

	h, err := NewHomography(corners, TargetCorners(width, height))
	if err != nil {
		return nil, Homography{}, err
	}
	inv, err := h.Inverse()
	if err != nil {
		return nil, Homography{}, err
	}

	src := clone.AsShallowRGBA(img)
	out := image.NewRGBA(image.Rect(0, 0, width, height))

	sample := sampleBilinear
	if interp == workspace.Nearest {
		sample = sampleNearest
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p := inv.Apply(Point{float64(x), float64(y)})
			r, g, b := sample(src, p.X, p.Y)
			i := out.PixOffset(x, y)
			out.Pix[i+0] = r
			out.Pix[i+1] = g
			out.Pix[i+2] = b
			out.Pix[i+3] = 0xFF
		}
	}
	return out, h, nil
}

// texel returns the color at integer source coordinates, or black outside
// the image.
func texel(src *image.RGBA, x, y int) (float64, float64, float64) {
	if !(image.Point{x, y}.In(src.Bounds())) {
		return 0, 0, 0
	}
	i := src.PixOffset(x, y)
	return float64(src.Pix[i]), float64(src.Pix[i+1]), float64(src.Pix[i+2])
}

func sampleNearest(src *image.RGBA, fx, fy float64) (uint8, uint8, uint8) {
	if math.IsNaN(fx) || math.IsNaN(fy) || math.IsInf(fx, 0) || math.IsInf(fy, 0) {
		return 0, 0, 0
	}
	r, g, b := texel(src, int(math.Round(fx)), int(math.Round(fy)))
	return uint8(r), uint8(g), uint8(b)
}

func sampleBilinear(src *image.RGBA, fx, fy float64) (uint8, uint8, uint8) {
	if math.IsNaN(fx) || math.IsNaN(fy) || math.IsInf(fx, 0) || math.IsInf(fy, 0) {
		return 0, 0, 0
	}
	bounds := src.Bounds()
	if fx < float64(bounds.Min.X-1) || fy < float64(bounds.Min.Y-1) || fx > float64(bounds.Max.X) || fy > float64(bounds.Max.Y) {
		return 0, 0, 0
	}

	x0, y0 := math.Floor(fx), math.Floor(fy)
	ax, ay := fx-x0, fy-y0
	ix, iy := int(x0), int(y0)

	r00, g00, b00 := texel(src, ix, iy)
	r10, g10, b10 := texel(src, ix+1, iy)
	r01, g01, b01 := texel(src, ix, iy+1)
	r11, g11, b11 := texel(src, ix+1, iy+1)

	lerp := func(c00, c10, c01, c11 float64) uint8 {
		top := c00 + (c10-c00)*ax
		bottom := c01 + (c11-c01)*ax
		v := top + (bottom-top)*ay
		return uint8(math.Max(0, math.Min(255, math.Round(v))))
	}
	return lerp(r00, r10, r01, r11), lerp(g00, g10, g01, g11), lerp(b00, b10, b01, b11)
}
