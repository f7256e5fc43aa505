package imaging

import (
	"image"
	"math"
)

// EdgeDetectResult contains an edge map encoded as base64 PNG.
//
// The image is grayscale: white pixels (255) are edges and black pixels (0)
// are not.
type EdgeDetectResult struct {
	// Width of the output image in pixels (same as input).
	Width int `json:"width"`

	// Height of the output image in pixels (same as input).
	Height int `json:"height"`

	// EdgePixels is the number of edge pixels found.
	EdgePixels int `json:"edge_pixels"`

	// ImageBase64 is the edge image encoded as base64 PNG.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png".
	MimeType string `json:"mime_type"`
}

// EdgeDetect runs the intensity, blur and Canny stages of the line extractor
// on img and returns the edge map as a PNG.
//
// Parameters:
//   - img: Source image (color or grayscale).
//   - blurKernel, blurSigma: Gaussian pre-blur, e.g. 5 and 1.0.
//   - thresholdLow, thresholdHigh: hysteresis thresholds on the 0-255
//     gradient scale, e.g. 40 and 120.
//
// The output is the same edge map ExtractLineMask closes and thins, so it is
// the first thing to look at when a drawing comes back with missing strokes.
func EdgeDetect(img image.Image, blurKernel int, blurSigma, thresholdLow, thresholdHigh float64) (*EdgeDetectResult, error) {
	gray := GaussianBlur(Intensity(img), blurKernel, blurSigma)
	edges := Canny(gray, thresholdLow, thresholdHigh)

	encoded, err := EncodePNGBase64(edges.Gray())
	if err != nil {
		return nil, err
	}

	return &EdgeDetectResult{
		Width:       edges.Width,
		Height:      edges.Height,
		EdgePixels:  edges.Count(),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

// Canny finds edges in a grayscale image with the Canny algorithm.
//
// The input should already be smoothed; Canny does not blur. Thresholds are on
// the same scale as the Sobel gradient magnitude of 8-bit intensities.
//
// # Algorithm
//
//  1. Gradient computation: Sobel operators for X and Y gradients,
//     magnitude = |Gx| + |Gy| (L1 norm), direction = atan2(Gy, Gx). Borders
//     use clamped (replicated) values.
//
//  2. Non-maximum suppression: keep only pixels that are local maxima along
//     the gradient direction, quantized to 0°, 45°, 90° and 135°. The outermost
//     row and column never hold an edge.
//
//  3. Hysteresis: pixels at or above thresholdHigh seed edges; pixels at or
//     above thresholdLow are kept when 8-connected to a seed through other
//     kept pixels. The chain is followed to any length.
func Canny(gray *image.Gray, thresholdLow, thresholdHigh float64) *Mask {
	bounds := gray.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	edges := NewMask(width, height)
	if width == 0 || height == 0 {
		return edges
	}

	at := func(x, y int) float64 {
		x = clamp(x, 0, width-1)
		y = clamp(y, 0, height-1)
		return float64(gray.Pix[y*gray.Stride+x])
	}

	sobelX := [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY := [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	magnitude := make([]float64, width*height)
	direction := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					v := at(x+kx, y+ky)
					gx += v * sobelX[ky+1][kx+1]
					gy += v * sobelY[ky+1][kx+1]
				}
			}
			magnitude[y*width+x] = gradientMagnitude(gx, gy)
			direction[y*width+x] = math.Atan2(gy, gx)
		}
	}

	mag := func(x, y int) float64 { return magnitude[y*width+x] }

	// Non-maximum suppression
	suppressed := make([]float64, width*height)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			angle := direction[y*width+x]
			m := mag(x, y)
			if m == 0 {
				continue
			}

			var n1, n2 float64
			if (angle >= -math.Pi/8 && angle < math.Pi/8) || (angle >= 7*math.Pi/8 || angle < -7*math.Pi/8) {
				n1 = mag(x-1, y)
				n2 = mag(x+1, y)
			} else if (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8) {
				n1 = mag(x-1, y-1)
				n2 = mag(x+1, y+1)
			} else if (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8) {
				n1 = mag(x, y-1)
				n2 = mag(x, y+1)
			} else {
				n1 = mag(x+1, y-1)
				n2 = mag(x-1, y+1)
			}

			if m >= n1 && m >= n2 {
				suppressed[y*width+x] = m
			}
		}
	}

	// Hysteresis from every strong pixel through weak neighbors
	stack := make([]int, 0, 64)
	for i, v := range suppressed {
		if v < thresholdHigh || edges.Pix[i] == 1 {
			continue
		}
		edges.Pix[i] = 1
		stack = append(stack[:0], i)
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			cx, cy := cur%width, cur/width
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := cx+dx, cy+dy
					if nx < 0 || ny < 0 || nx >= width || ny >= height {
						continue
					}
					ni := ny*width + nx
					if edges.Pix[ni] == 0 && suppressed[ni] >= thresholdLow {
						edges.Pix[ni] = 1
						stack = append(stack, ni)
					}
				}
			}
		}
	}

	return edges
}

// gradientMagnitude is the L1 norm of a Sobel gradient.
func gradientMagnitude(gx, gy float64) float64 {
	return math.Abs(gx) + math.Abs(gy)
}

// clamp constrains an integer value to the range [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
