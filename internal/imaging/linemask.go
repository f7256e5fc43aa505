package imaging

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/anthonynsimon/bild/effect"

	"github.com/ironsheep/stroke-tools-mcp/internal/workspace"
)

// ITU-R BT.601 luma weights.
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// Intensity converts img to an 8-bit single-channel image using BT.601 luma
// weights. The result always has a zero origin.
func Intensity(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	if b.Empty() {
		return gray
	}
	rgba := effect.GrayscaleWithWeights(img, lumaR, lumaG, lumaB)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			gray.Pix[y*gray.Stride+x] = rgba.Pix[y*rgba.Stride+x*4]
		}
	}
	return gray
}

// GaussianBlur smooths gray with a size x size Gaussian kernel of standard
// deviation sigma. Borders replicate the edge pixels.
func GaussianBlur(gray *image.Gray, size int, sigma float64) *image.Gray {
	b := gray.Bounds()
	if b.Empty() || size <= 1 {
		return gray
	}

	k := convolution.NewKernel(size, size)
	r := size / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := float64(x-r), float64(y-r)
			k.Matrix[y*size+x] = math.Exp(-(dx*dx + dy*dy) / (2 * sigma * sigma))
		}
	}

	blurred := convolution.Convolve(gray, k.Normalized(), &convolution.Options{KeepAlpha: true})
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			out.Pix[y*out.Stride+x] = blurred.Pix[y*blurred.Stride+x*4]
		}
	}
	return out
}

// Close performs a morphological closing (dilation followed by erosion) with
// a square structuring element of side 2*radius+1. It bridges gaps of up to
// 2*radius pixels between nearby edge fragments.
func Close(m *Mask, radius int) *Mask {
	if radius <= 0 || m.Width == 0 || m.Height == 0 {
		return m.Clone()
	}
	dilated := effect.Dilate(m.rgba(), float64(radius))
	eroded := effect.Erode(dilated, float64(radius))
	return maskFromRGBA(eroded)
}

// ExtractLineMask turns a rectified frame into a one pixel wide skeleton of
// its drawn lines.
//
// The stages run in a fixed order with the constants in t:
//
//  1. Intensity (BT.601 luma)
//  2. Gaussian blur, t.BlurKernel square with sigma t.BlurSigma
//  3. Canny edges with thresholds t.CannyLow and t.CannyHigh
//  4. Closing with radius t.CloseRadius, joining the two edges of a pen line
//  5. Zhang-Suen thinning to an 8-connected skeleton
//
// When t.CornerMaskPx is positive, a square of that side is cleared at each
// corner of the skeleton, removing marker remnants that survive rectification.
//
// The result depends only on img and t. An empty frame yields an empty mask.
func ExtractLineMask(img image.Image, t workspace.Tuning) *Mask {
	b := img.Bounds()
	if b.Empty() {
		return NewMask(b.Dx(), b.Dy())
	}

	gray := GaussianBlur(Intensity(img), t.BlurKernel, t.BlurSigma)
	edges := Canny(gray, t.CannyLow, t.CannyHigh)
	closed := Close(edges, t.CloseRadius)
	skeleton := Thin(closed)

	if c := t.CornerMaskPx; c > 0 {
		frame := image.Rect(0, 0, skeleton.Width, skeleton.Height)
		for _, role := range workspace.Roles {
			skeleton.ClearRect(CornerRect(frame, role, c))
		}
	}
	return skeleton
}
