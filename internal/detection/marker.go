package detection

import (
	"image"
	"math"

	"github.com/ironsheep/stroke-tools-mcp/internal/geometry"
)

// Marker is a decoded fiducial marker.
type Marker struct {
	// ID is the marker's index in the dictionary.
	ID int `json:"id"`

	// Corners holds the outer corners of the marker's black border in the
	// marker's own clockwise order: top-left, top-right, bottom-right,
	// bottom-left.
	Corners [4]geometry.Point `json:"corners"`
}

// Centroid returns the arithmetic mean of the four corners.
func (m Marker) Centroid() geometry.Point {
	var c geometry.Point
	for _, p := range m.Corners {
		c.X += p.X
		c.Y += p.Y
	}
	c.X /= 4
	c.Y /= 4
	return c
}

// Area returns the area enclosed by the corner polygon.
func (m Marker) Area() float64 {
	return math.Abs(shoelace(m.Corners[:])) / 2
}

// shoelace returns twice the signed polygon area. In image coordinates (y
// down) a visually clockwise polygon is positive.
func shoelace(pts []geometry.Point) float64 {
	var s float64
	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		s += a.X*b.Y - b.X*a.Y
	}
	return s
}

// Detector finds fiducial markers in a raster.
//
// Implementations return every marker they can decode, in any order; an image
// without markers yields an empty slice and a nil error.
type Detector interface {
	Detect(img image.Image) ([]Marker, error)
}

// DetectorFunc adapts a function to the Detector interface.
type DetectorFunc func(img image.Image) ([]Marker, error)

// Detect calls f(img).
func (f DetectorFunc) Detect(img image.Image) ([]Marker, error) {
	return f(img)
}
