package detection

import (
	"fmt"
	"image"
	"strings"

	"github.com/ironsheep/stroke-tools-mcp/internal/geometry"
	"github.com/ironsheep/stroke-tools-mcp/internal/workspace"
)

// MissingMarkersError reports which corner markers were not found in a frame.
type MissingMarkersError struct {
	// Missing lists the absent roles in canonical order.
	Missing []workspace.Role

	// IDs are the marker identifiers configured for the missing roles.
	IDs []int

	// Found lists every marker identifier that was detected, in detection order.
	Found []int
}

func (e *MissingMarkersError) Error() string {
	parts := make([]string, len(e.Missing))
	for i, r := range e.Missing {
		parts[i] = fmt.Sprintf("%s (id %d)", r, e.IDs[i])
	}
	return fmt.Sprintf("missing corner markers: %s; detected ids %v", strings.Join(parts, ", "), e.Found)
}

// CornerSet holds the centroid of the marker in each corner role. The zero
// value is never returned by Localize; a CornerSet always has all four roles.
type CornerSet struct {
	TopLeft     geometry.Point `json:"top_left"`
	TopRight    geometry.Point `json:"top_right"`
	BottomLeft  geometry.Point `json:"bottom_left"`
	BottomRight geometry.Point `json:"bottom_right"`
}

// Points returns the corners in TL, TR, BL, BR order.
func (c CornerSet) Points() [4]geometry.Point {
	return [4]geometry.Point{c.TopLeft, c.TopRight, c.BottomLeft, c.BottomRight}
}

// Get returns the centroid for role.
func (c CornerSet) Get(role workspace.Role) geometry.Point {
	return c.Points()[role]
}

// Localize assigns detected markers to corner roles by identifier and returns
// the centroid of each.
//
// Markers whose identifier is not configured are ignored. When the same
// identifier is detected more than once, the marker with the largest area
// wins (ties go to the topmost, then leftmost), so the result does not
// depend on detection order. If any role has no marker, a
// *MissingMarkersError naming every absent role is returned.
func Localize(markers []Marker, spec workspace.Spec) (CornerSet, map[workspace.Role]Marker, error) {
	chosen := make(map[workspace.Role]Marker, 4)
	found := make([]int, 0, len(markers))
	for _, m := range markers {
		found = append(found, m.ID)
		role, ok := spec.Markers.RoleOf(m.ID)
		if !ok {
			continue
		}
		if prev, dup := chosen[role]; dup && !preferred(m, prev) {
			continue
		}
		chosen[role] = m
	}

	var missing MissingMarkersError
	var pts [4]geometry.Point
	for _, r := range workspace.Roles {
		m, ok := chosen[r]
		if !ok {
			missing.Missing = append(missing.Missing, r)
			missing.IDs = append(missing.IDs, spec.Markers.ID(r))
			continue
		}
		pts[r] = m.Centroid()
	}
	if len(missing.Missing) > 0 {
		missing.Found = found
		return CornerSet{}, nil, &missing
	}

	return CornerSet{
		TopLeft:     pts[workspace.TopLeft],
		TopRight:    pts[workspace.TopRight],
		BottomLeft:  pts[workspace.BottomLeft],
		BottomRight: pts[workspace.BottomRight],
	}, chosen, nil
}

// preferred reports whether a should replace b for the same role: larger area
// first, then the topmost and leftmost centroid.
func preferred(a, b Marker) bool {
	if aa, ba := a.Area(), b.Area(); aa != ba {
		return aa > ba
	}
	ac, bc := a.Centroid(), b.Centroid()
	if ac.Y != bc.Y {
		return ac.Y < bc.Y
	}
	return ac.X < bc.X
}

// LocalizeFrame runs d over img and localizes the result against spec. The
// detected markers are returned even when localization fails.
func LocalizeFrame(img image.Image, d Detector, spec workspace.Spec) (CornerSet, []Marker, error) {
	markers, err := d.Detect(img)
	if err != nil {
		return CornerSet{}, nil, fmt.Errorf("marker detection failed: %w", err)
	}
	corners, _, err := Localize(markers, spec)
	if err != nil {
		return CornerSet{}, markers, err
	}
	return corners, markers, nil
}
