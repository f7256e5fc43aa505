package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/stroke-tools-mcp/internal/workspace"
)

// CropResult contains the cropped image data
type CropResult struct {
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// CropRegion returns the part of img inside r with its origin at (0, 0),
// resized by scale with a Lanczos filter when scale is positive and not 1.
// r is clipped to the image; an empty intersection yields an empty image.
func CropRegion(img image.Image, r image.Rectangle, scale float64) *image.NRGBA {
	cropped := imaging.Crop(img, r.Intersect(img.Bounds()))
	if scale > 0 && scale != 1 && !cropped.Bounds().Empty() {
		w := max(1, int(float64(cropped.Bounds().Dx())*scale))
		h := max(1, int(float64(cropped.Bounds().Dy())*scale))
		cropped = imaging.Resize(cropped, w, h, imaging.Lanczos)
	}
	return cropped
}

// Crop extracts r from img and returns it as a base64 PNG. r must lie inside
// the image.
func Crop(img image.Image, r image.Rectangle, scale float64) (*CropResult, error) {
	bounds := img.Bounds()
	if r.Empty() {
		return nil, fmt.Errorf("invalid crop region %v: x1 must be < x2, y1 must be < y2", r)
	}
	if !r.In(bounds) {
		return nil, fmt.Errorf("crop region %v outside image bounds %v", r, bounds)
	}

	cropped := CropRegion(img, r, scale)
	encoded, err := EncodePNGBase64(cropped)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cropped image: %w", err)
	}

	return &CropResult{
		X:           r.Min.X,
		Y:           r.Min.Y,
		Width:       cropped.Bounds().Dx(),
		Height:      cropped.Bounds().Dy(),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

// CornerRect returns the size x size square at the corner of bounds that
// role names, clipped to bounds.
func CornerRect(bounds image.Rectangle, role workspace.Role, size int) image.Rectangle {
	var r image.Rectangle
	switch role {
	case workspace.TopLeft:
		r = image.Rect(bounds.Min.X, bounds.Min.Y, bounds.Min.X+size, bounds.Min.Y+size)
	case workspace.TopRight:
		r = image.Rect(bounds.Max.X-size, bounds.Min.Y, bounds.Max.X, bounds.Min.Y+size)
	case workspace.BottomLeft:
		r = image.Rect(bounds.Min.X, bounds.Max.Y-size, bounds.Min.X+size, bounds.Max.Y)
	case workspace.BottomRight:
		r = image.Rect(bounds.Max.X-size, bounds.Max.Y-size, bounds.Max.X, bounds.Max.Y)
	}
	return r.Intersect(bounds)
}

// CropCorner extracts the corner square of img that role names. It is used
// to inspect marker remnants left in a rectified frame.
func CropCorner(img image.Image, role workspace.Role, size int, scale float64) (*CropResult, error) {
	if size <= 0 {
		return nil, fmt.Errorf("corner size must be positive, got %d", size)
	}
	return Crop(img, CornerRect(img.Bounds(), role, size), scale)
}
