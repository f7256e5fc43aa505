package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Point is a sub-pixel image coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DegenerateGeometryError reports that four point correspondences do not
// determine a usable projective transform.
type DegenerateGeometryError struct {
	Reason string
	Points [4]Point
}

func (e *DegenerateGeometryError) Error() string {
	return fmt.Sprintf("degenerate marker geometry: %s (points %v)", e.Reason, e.Points)
}

// Homography is a 3x3 projective transform stored row-major. Applying it to
// (x, y) computes (h0*x+h1*y+h2, h3*x+h4*y+h5) / (h6*x+h7*y+h8).
type Homography [9]float64

// Apply maps p through h.
func (h Homography) Apply(p Point) Point {
	w := h[6]*p.X + h[7]*p.Y + h[8]
	return Point{
		X: (h[0]*p.X + h[1]*p.Y + h[2]) / w,
		Y: (h[3]*p.X + h[4]*p.Y + h[5]) / w,
	}
}

// Det returns the determinant of the 3x3 matrix.
func (h Homography) Det() float64 {
	return h[0]*(h[4]*h[8]-h[5]*h[7]) -
		h[1]*(h[3]*h[8]-h[5]*h[6]) +
		h[2]*(h[3]*h[7]-h[4]*h[6])
}

// Mul returns h*o, the transform that applies o first and then h.
func (h Homography) Mul(o Homography) Homography {
	var r Homography
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var s float64
			for k := 0; k < 3; k++ {
				s += h[i*3+k] * o[k*3+j]
			}
			r[i*3+j] = s
		}
	}
	return r
}

// Inverse returns the inverse transform, scaled so that its last element is 1
// when possible.
func (h Homography) Inverse() (Homography, error) {
	var inv mat.Dense
	if err := inv.Inverse(mat.NewDense(3, 3, h[:])); err != nil {
		return Homography{}, &DegenerateGeometryError{Reason: fmt.Sprintf("transform is not invertible: %v", err)}
	}
	var out Homography
	copy(out[:], inv.RawMatrix().Data)
	return out.normalized(), nil
}

func (h Homography) normalized() Homography {
	if math.Abs(h[8]) < 1e-12 {
		return h
	}
	s := h[8]
	for i := range h {
		h[i] /= s
	}
	return h
}

// collinearTolerance is the smallest triangle area, relative to the squared
// extent of the point set, accepted by NewHomography.
const collinearTolerance = 1e-6

// NewHomography computes the exact projective transform taking src[i] to
// dst[i] for all four correspondences.
//
// The point sets are first normalized (centroid at the origin, mean distance
// sqrt 2) so that pixel-scale coordinates do not hurt the conditioning of the
// 8x8 system, which is then solved with h8 fixed at 1.
//
// A *DegenerateGeometryError is returned when any three points of either set
// are collinear or coincident, or when the resulting transform is singular.
// A mirrored quadrilateral is a valid, if surprising, input and is accepted.
func NewHomography(src, dst [4]Point) (Homography, error) {
	if reason := degenerate(src); reason != "" {
		return Homography{}, &DegenerateGeometryError{Reason: "source " + reason, Points: src}
	}
	if reason := degenerate(dst); reason != "" {
		return Homography{}, &DegenerateGeometryError{Reason: "destination " + reason, Points: dst}
	}

	ts, ns := normalize(src)
	td, nd := normalize(dst)

	a := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)
	for i := 0; i < 4; i++ {
		x, y := ns[i].X, ns[i].Y
		u, v := nd[i].X, nd[i].Y
		a.SetRow(2*i, []float64{x, y, 1, 0, 0, 0, -u * x, -u * y})
		a.SetRow(2*i+1, []float64{0, 0, 0, x, y, 1, -v * x, -v * y})
		b.SetVec(2*i, u)
		b.SetVec(2*i+1, v)
	}

	var sol mat.VecDense
	if err := sol.SolveVec(a, b); err != nil {
		return Homography{}, &DegenerateGeometryError{Reason: fmt.Sprintf("correspondence system is singular: %v", err), Points: src}
	}

	hn := Homography{
		sol.AtVec(0), sol.AtVec(1), sol.AtVec(2),
		sol.AtVec(3), sol.AtVec(4), sol.AtVec(5),
		sol.AtVec(6), sol.AtVec(7), 1,
	}

	tdInv, err := td.Inverse()
	if err != nil {
		return Homography{}, err
	}
	h := tdInv.Mul(hn).Mul(ts).normalized()

	if d := h.Det(); math.IsNaN(d) || math.Abs(d) < 1e-12 {
		return Homography{}, &DegenerateGeometryError{Reason: fmt.Sprintf("transform determinant %g is zero", d), Points: src}
	}
	return h, nil
}

// degenerate reports why pts cannot anchor a homography, or "" if they can.
func degenerate(pts [4]Point) string {
	for _, p := range pts {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return "points are not finite"
		}
	}

	minX, maxX := pts[0].X, pts[0].X
	minY, maxY := pts[0].Y, pts[0].Y
	for _, p := range pts[1:] {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	extent := math.Max(maxX-minX, maxY-minY)
	if extent == 0 {
		return "points coincide"
	}

	triples := [4][3]int{{0, 1, 2}, {0, 1, 3}, {0, 2, 3}, {1, 2, 3}}
	for _, t := range triples {
		a, b, c := pts[t[0]], pts[t[1]], pts[t[2]]
		area := math.Abs((b.X-a.X)*(c.Y-a.Y)-(b.Y-a.Y)*(c.X-a.X)) / 2
		if area <= collinearTolerance*extent*extent {
			return fmt.Sprintf("points %d, %d and %d are collinear", t[0], t[1], t[2])
		}
	}
	return ""
}

// normalize returns the similarity transform that centers pts on the origin
// with mean distance sqrt 2, and the transformed points.
func normalize(pts [4]Point) (Homography, [4]Point) {
	var cx, cy float64
	for _, p := range pts {
		cx += p.X
		cy += p.Y
	}
	cx /= 4
	cy /= 4

	var mean float64
	for _, p := range pts {
		mean += math.Hypot(p.X-cx, p.Y-cy)
	}
	mean /= 4
	s := math.Sqrt2 / mean

	t := Homography{s, 0, -s * cx, 0, s, -s * cy, 0, 0, 1}
	var out [4]Point
	for i, p := range pts {
		out[i] = t.Apply(p)
	}
	return t, out
}
