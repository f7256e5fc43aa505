// Package mapping converts traced strokes from rectified pixel coordinates
// into physical millimeter coordinates.
//
// The horizontal and vertical factors are independent: the physical sheet and
// the rectified raster need not share an aspect ratio, and callers supply
// both sets of dimensions explicitly.
package mapping

import (
	"fmt"
	"math"

	"github.com/ironsheep/stroke-tools-mcp/internal/trace"
	"github.com/ironsheep/stroke-tools-mcp/internal/workspace"
)

// PointMM is a position on the physical sheet in millimeters.
type PointMM struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PhysicalStroke is the millimeter counterpart of a trace.Stroke, one point
// per pixel in the same order.
type PhysicalStroke []PointMM

// Scale holds the per-axis millimeter-per-pixel factors.
type Scale struct {
	MMPerPxX float64 `json:"mm_per_px_x"`
	MMPerPxY float64 `json:"mm_per_px_y"`
}

// NewScale returns the scale mapping a widthPx x heightPx raster onto a
// widthMM x heightMM sheet.
func NewScale(widthMM, heightMM float64, widthPx, heightPx int) (Scale, error) {
	if widthPx <= 0 || heightPx <= 0 {
		return Scale{}, fmt.Errorf("pixel dimensions must be positive, got %dx%d", widthPx, heightPx)
	}
	if !(widthMM > 0) || !(heightMM > 0) || math.IsInf(widthMM, 0) || math.IsInf(heightMM, 0) {
		return Scale{}, fmt.Errorf("physical dimensions must be positive and finite, got %gx%g mm", widthMM, heightMM)
	}
	return Scale{
		MMPerPxX: widthMM / float64(widthPx),
		MMPerPxY: heightMM / float64(heightPx),
	}, nil
}

// ScaleFor returns the scale between spec's rectified raster and its sheet.
func ScaleFor(spec workspace.Spec) (Scale, error) {
	return NewScale(spec.WidthMM, spec.HeightMM, spec.WidthPx, spec.HeightPx)
}

// ToPhysical maps a pixel coordinate to millimeters. No rounding is applied.
func (s Scale) ToPhysical(p trace.Point) PointMM {
	return PointMM{
		X: float64(p.X) * s.MMPerPxX,
		Y: float64(p.Y) * s.MMPerPxY,
	}
}

// ToPixel maps a millimeter coordinate back to the nearest pixel. For any
// pixel p, ToPixel(ToPhysical(p)) == p.
func (s Scale) ToPixel(p PointMM) trace.Point {
	return trace.Point{
		X: int(math.Round(p.X / s.MMPerPxX)),
		Y: int(math.Round(p.Y / s.MMPerPxY)),
	}
}

// ToPhysicalStroke maps every point of stroke.
func (s Scale) ToPhysicalStroke(stroke trace.Stroke) PhysicalStroke {
	out := make(PhysicalStroke, len(stroke))
	for i, p := range stroke {
		out[i] = s.ToPhysical(p)
	}
	return out
}

// ToPhysicalStrokes maps strokes one-to-one, preserving order.
func (s Scale) ToPhysicalStrokes(strokes []trace.Stroke) []PhysicalStroke {
	out := make([]PhysicalStroke, len(strokes))
	for i, st := range strokes {
		out[i] = s.ToPhysicalStroke(st)
	}
	return out
}
