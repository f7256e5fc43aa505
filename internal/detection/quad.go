package detection

import (
	"math"
	"sort"

	"github.com/ironsheep/stroke-tools-mcp/internal/geometry"
	"github.com/ironsheep/stroke-tools-mcp/internal/trace"
)

// minQuadFill is the smallest ratio of quad area to hull area for a region to
// count as a quadrilateral.
const minQuadFill = 0.85

// fitQuad approximates the outline of a dark region with four corners in
// clockwise order (image coordinates). Coordinates are on pixel corners, so a
// region covering pixels [x0, x1) has its left edge at x0 and right at x1.
//
// Regions that touch the frame edge, have a side shorter than minSide, or are
// not close to quadrilateral are rejected.
func fitQuad(region trace.Stroke, minSide float64, width, height int) ([4]geometry.Point, bool) {
	var quad [4]geometry.Point
	if len(region) < 4 {
		return quad, false
	}

	type extent struct{ min, max int }
	rows := make(map[int]extent)
	minX, minY := region[0].X, region[0].Y
	maxX, maxY := minX, minY
	for _, p := range region {
		e, ok := rows[p.Y]
		if !ok {
			e = extent{p.X, p.X}
		}
		if p.X < e.min {
			e.min = p.X
		}
		if p.X > e.max {
			e.max = p.X
		}
		rows[p.Y] = e
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	if minX == 0 || minY == 0 || maxX == width-1 || maxY == height-1 {
		return quad, false
	}
	if float64(maxX-minX+1) < minSide || float64(maxY-minY+1) < minSide {
		return quad, false
	}

	pts := make([]geometry.Point, 0, 4*len(rows))
	for y, e := range rows {
		fy := float64(y)
		pts = append(pts,
			geometry.Point{X: float64(e.min), Y: fy},
			geometry.Point{X: float64(e.min), Y: fy + 1},
			geometry.Point{X: float64(e.max + 1), Y: fy},
			geometry.Point{X: float64(e.max + 1), Y: fy + 1},
		)
	}
	hull := convexHull(pts)
	if len(hull) < 4 {
		return quad, false
	}

	var center geometry.Point
	for _, p := range hull {
		center.X += p.X
		center.Y += p.Y
	}
	center.X /= float64(len(hull))
	center.Y /= float64(len(hull))

	c0 := farthest(hull, center)
	c1 := farthest(hull, c0)

	// The remaining corners are the hull points farthest from the c0-c1
	// diagonal on either side.
	var c2, c3 geometry.Point
	var maxPos, maxNeg float64
	for _, p := range hull {
		d := cross(c0, c1, p)
		if d > maxPos {
			maxPos, c2 = d, p
		}
		if d < maxNeg {
			maxNeg, c3 = d, p
		}
	}
	if maxPos == 0 || maxNeg == 0 {
		return quad, false
	}

	quad = [4]geometry.Point{c0, c2, c1, c3}
	quadArea := math.Abs(shoelace(quad[:])) / 2
	hullArea := math.Abs(shoelace(hull)) / 2
	if hullArea == 0 || quadArea/hullArea < minQuadFill {
		return quad, false
	}

	shortest, longest := math.Inf(1), 0.0
	for i := range quad {
		a, b := quad[i], quad[(i+1)%4]
		l := math.Hypot(b.X-a.X, b.Y-a.Y)
		shortest = math.Min(shortest, l)
		longest = math.Max(longest, l)
	}
	if shortest < minSide || shortest < longest/4 {
		return quad, false
	}

	if shoelace(quad[:]) < 0 {
		quad[1], quad[3] = quad[3], quad[1]
	}
	return quad, true
}

func farthest(pts []geometry.Point, from geometry.Point) geometry.Point {
	best, bestD := pts[0], -1.0
	for _, p := range pts {
		d := (p.X-from.X)*(p.X-from.X) + (p.Y-from.Y)*(p.Y-from.Y)
		if d > bestD {
			best, bestD = p, d
		}
	}
	return best
}

// cross returns the z component of (b-a) x (p-a).
func cross(a, b, p geometry.Point) float64 {
	return (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
}

// convexHull returns the hull of pts with collinear points removed, using
// Andrew's monotone chain.
func convexHull(pts []geometry.Point) []geometry.Point {
	sorted := append([]geometry.Point(nil), pts...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	uniq := sorted[:0]
	for _, p := range sorted {
		if len(uniq) == 0 || p != uniq[len(uniq)-1] {
			uniq = append(uniq, p)
		}
	}
	if len(uniq) < 3 {
		return uniq
	}

	hull := make([]geometry.Point, 0, 2*len(uniq))
	for _, p := range uniq {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(uniq) - 2; i >= 0; i-- {
		p := uniq[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}
