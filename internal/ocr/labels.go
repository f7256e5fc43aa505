package ocr

import (
	"fmt"
	"image"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ironsheep/stroke-tools-mcp/internal/detection"
	"github.com/ironsheep/stroke-tools-mcp/internal/geometry"
	"github.com/ironsheep/stroke-tools-mcp/internal/workspace"
)

// labelPattern matches the caption printed under each marker, "ID 2
// (bottom_left)", tolerating the spacing and bracket noise OCR adds.
var labelPattern = regexp.MustCompile(`(?i)\bID\s*[:#]?\s*(\d+)\s*[(\[{]?\s*(top|bottom)\s*[_\-\s]?\s*(left|right)`)

// Label is a parsed marker caption.
type Label struct {
	ID   int
	Role workspace.Role
}

// ParseLabel extracts the first marker caption from OCR text.
func ParseLabel(text string) (Label, bool) {
	m := labelPattern.FindStringSubmatch(text)
	if m == nil {
		return Label{}, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return Label{}, false
	}
	role, err := workspace.ParseRole(strings.ToLower(m[2]) + "_" + strings.ToLower(m[3]))
	if err != nil {
		return Label{}, false
	}
	return Label{ID: id, Role: role}, true
}

// MarkerLabel is what was read under one detected marker.
type MarkerLabel struct {
	MarkerID int            `json:"marker_id"`
	Centroid geometry.Point `json:"centroid"`

	// Position is the frame corner nearest to the marker.
	Position workspace.Role `json:"position"`

	// Region is the strip that was read.
	Region Bounds `json:"region"`
	Text   string `json:"text"`

	// Readable is false when no caption could be parsed from Text.
	Readable    bool           `json:"readable"`
	PrintedID   int            `json:"printed_id"`
	PrintedRole workspace.Role `json:"printed_role"`
}

// LabelRegion returns the strip under a marker where the sheet prints its
// caption. Captions are left aligned with the marker and run wider than it.
func LabelRegion(m detection.Marker) image.Rectangle {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range m.Corners {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	side := math.Max(maxX-minX, maxY-minY)
	return image.Rect(
		int(math.Floor(minX-side/8)),
		int(math.Floor(maxY)),
		int(math.Ceil(minX+2.5*side)),
		int(math.Ceil(maxY+side/2)),
	)
}

// NearestCorner returns the role of the corner of bounds closest to p.
func NearestCorner(bounds image.Rectangle, p geometry.Point) workspace.Role {
	midX := float64(bounds.Min.X+bounds.Max.X) / 2
	midY := float64(bounds.Min.Y+bounds.Max.Y) / 2
	switch {
	case p.Y < midY && p.X < midX:
		return workspace.TopLeft
	case p.Y < midY:
		return workspace.TopRight
	case p.X < midX:
		return workspace.BottomLeft
	default:
		return workspace.BottomRight
	}
}

// ReadMarkerLabels reads the caption under every marker in img.
func ReadMarkerLabels(img image.Image, markers []detection.Marker, reader TextReader) ([]MarkerLabel, error) {
	bounds := img.Bounds()
	labels := make([]MarkerLabel, 0, len(markers))
	for _, m := range markers {
		c := m.Centroid()
		label := MarkerLabel{
			MarkerID: m.ID,
			Centroid: c,
			Position: NearestCorner(bounds, c),
		}

		r := LabelRegion(m).Intersect(bounds)
		label.Region = Bounds{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
		if !r.Empty() {
			res, err := reader.ReadRegion(img, r)
			if err != nil {
				return nil, fmt.Errorf("marker %d: %w", m.ID, err)
			}
			label.Text = strings.TrimSpace(res.FullText)
			if l, ok := ParseLabel(res.FullText); ok {
				label.Readable = true
				label.PrintedID = l.ID
				label.PrintedRole = l.Role
			}
		}
		labels = append(labels, label)
	}
	return labels, nil
}

// IssueKind classifies a label check finding.
type IssueKind string

const (
	// IssueUnreadable: no caption could be read under the marker.
	IssueUnreadable IssueKind = "unreadable"
	// IssueIDMismatch: the caption names a different id than was decoded.
	IssueIDMismatch IssueKind = "id_mismatch"
	// IssueRoleMismatch: the caption names a different corner than the
	// workspace assigns to the marker.
	IssueRoleMismatch IssueKind = "role_mismatch"
	// IssueMisplaced: the marker sits in a different frame corner than its
	// configured role. The rectified frame will be mirrored or rotated.
	IssueMisplaced IssueKind = "misplaced"
	// IssueUnconfigured: the marker id has no role in the workspace.
	IssueUnconfigured IssueKind = "unconfigured"
)

// LabelIssue is one finding of CheckLabels.
type LabelIssue struct {
	MarkerID int       `json:"marker_id"`
	Kind     IssueKind `json:"kind"`
	Detail   string    `json:"detail"`
}

// LabelReport summarizes CheckLabels.
type LabelReport struct {
	Checked int          `json:"checked"`
	OK      bool         `json:"ok"`
	Issues  []LabelIssue `json:"issues"`
}

// CheckLabels compares what was read under each marker with the roles spec
// assigns. It never fails: every disagreement is reported as an issue, and
// the caller decides whether to trust the frame.
func CheckLabels(labels []MarkerLabel, spec workspace.Spec) *LabelReport {
	report := &LabelReport{Checked: len(labels), Issues: []LabelIssue{}}
	add := func(id int, kind IssueKind, format string, args ...interface{}) {
		report.Issues = append(report.Issues, LabelIssue{MarkerID: id, Kind: kind, Detail: fmt.Sprintf(format, args...)})
	}

	for _, l := range labels {
		role, configured := spec.Markers.RoleOf(l.MarkerID)
		if !configured {
			add(l.MarkerID, IssueUnconfigured, "marker %d is not assigned to any corner", l.MarkerID)
			continue
		}
		if l.Position != role {
			add(l.MarkerID, IssueMisplaced, "marker %d is configured as %s but sits in the %s corner", l.MarkerID, role, l.Position)
		}
		if !l.Readable {
			add(l.MarkerID, IssueUnreadable, "no caption read under marker %d (text %q)", l.MarkerID, l.Text)
			continue
		}
		if l.PrintedID != l.MarkerID {
			add(l.MarkerID, IssueIDMismatch, "marker %d is captioned as id %d", l.MarkerID, l.PrintedID)
		}
		if l.PrintedRole != role {
			add(l.MarkerID, IssueRoleMismatch, "marker %d is printed as %s but configured as %s", l.MarkerID, l.PrintedRole, role)
		}
	}
	report.OK = len(report.Issues) == 0
	return report
}
