package workspace

import (
	"errors"
	"fmt"
)

// Role identifies which corner of the drawing surface a fiducial marker marks.
type Role int

const (
	TopLeft Role = iota
	TopRight
	BottomLeft
	BottomRight
)

// Roles lists every corner role in canonical TL, TR, BL, BR order.
var Roles = [4]Role{TopLeft, TopRight, BottomLeft, BottomRight}

func (r Role) String() string {
	switch r {
	case TopLeft:
		return "top-left"
	case TopRight:
		return "top-right"
	case BottomLeft:
		return "bottom-left"
	case BottomRight:
		return "bottom-right"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// MarshalText encodes the role by its hyphenated name.
func (r Role) MarshalText() ([]byte, error) {
	if r < TopLeft || r > BottomRight {
		return nil, fmt.Errorf("invalid marker role %d", int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText accepts any name ParseRole does.
func (r *Role) UnmarshalText(text []byte) error {
	role, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = role
	return nil
}

// ParseRole accepts both the hyphenated names returned by String and the
// underscored names printed on marker sheets ("top_left").
func ParseRole(s string) (Role, error) {
	switch s {
	case "top-left", "top_left", "tl", "TL":
		return TopLeft, nil
	case "top-right", "top_right", "tr", "TR":
		return TopRight, nil
	case "bottom-left", "bottom_left", "bl", "BL":
		return BottomLeft, nil
	case "bottom-right", "bottom_right", "br", "BR":
		return BottomRight, nil
	}
	return 0, fmt.Errorf("unknown marker role %q", s)
}

// MarkerIDs maps each corner role to the marker identifier printed there.
type MarkerIDs struct {
	TopLeft     int `yaml:"top_left" json:"top_left"`
	TopRight    int `yaml:"top_right" json:"top_right"`
	BottomLeft  int `yaml:"bottom_left" json:"bottom_left"`
	BottomRight int `yaml:"bottom_right" json:"bottom_right"`
}

// ID returns the marker identifier configured for role.
func (m MarkerIDs) ID(role Role) int {
	switch role {
	case TopLeft:
		return m.TopLeft
	case TopRight:
		return m.TopRight
	case BottomLeft:
		return m.BottomLeft
	default:
		return m.BottomRight
	}
}

// RoleOf reports the role assigned to marker id, if any.
func (m MarkerIDs) RoleOf(id int) (Role, bool) {
	for _, r := range Roles {
		if m.ID(r) == id {
			return r, true
		}
	}
	return 0, false
}

// Spec describes the drawing surface: the rectified raster size, which marker
// sits in which corner, and the physical size the rectified raster represents.
//
// A Spec is a plain value. Copies are independent and nothing in the pipeline
// mutates one after it has been validated.
type Spec struct {
	// WidthPx and HeightPx are the dimensions of the rectified frame.
	WidthPx  int `yaml:"width_px" json:"width_px"`
	HeightPx int `yaml:"height_px" json:"height_px"`

	// Markers assigns marker identifiers to corner roles.
	Markers MarkerIDs `yaml:"markers" json:"markers"`

	// WidthMM and HeightMM are the physical dimensions used when scaling
	// pixel coordinates to millimeters. They are independent of the pixel size.
	WidthMM  float64 `yaml:"width_mm" json:"width_mm"`
	HeightMM float64 `yaml:"height_mm" json:"height_mm"`
}

// DefaultSpec returns the letter-size workspace used by the printed marker sheet.
func DefaultSpec() Spec {
	return Spec{
		WidthPx:  2200,
		HeightPx: 1700,
		Markers: MarkerIDs{
			TopLeft:     0,
			TopRight:    1,
			BottomLeft:  2,
			BottomRight: 3,
		},
		WidthMM:  220,
		HeightMM: 170,
	}
}

// Validate checks that the spec describes a usable workspace.
func (s Spec) Validate() error {
	var errs []error
	if s.WidthPx <= 0 || s.HeightPx <= 0 {
		errs = append(errs, fmt.Errorf("rectified size must be positive, got %dx%d", s.WidthPx, s.HeightPx))
	}
	if s.WidthMM <= 0 || s.HeightMM <= 0 {
		errs = append(errs, fmt.Errorf("physical size must be positive, got %gx%g mm", s.WidthMM, s.HeightMM))
	}
	seen := make(map[int]Role, 4)
	for _, r := range Roles {
		id := s.Markers.ID(r)
		if id < 0 {
			errs = append(errs, fmt.Errorf("marker id for %s must not be negative, got %d", r, id))
			continue
		}
		if prev, dup := seen[id]; dup {
			errs = append(errs, fmt.Errorf("marker id %d assigned to both %s and %s", id, prev, r))
			continue
		}
		seen[id] = r
	}
	return errors.Join(errs...)
}
