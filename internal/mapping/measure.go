package mapping

import "math"

// BoundsMM is an axis-aligned rectangle on the sheet.
type BoundsMM struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// Width returns the horizontal extent.
func (b BoundsMM) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent.
func (b BoundsMM) Height() float64 { return b.MaxY - b.MinY }

// StrokeStats summarizes one physical stroke.
type StrokeStats struct {
	Index    int      `json:"index"`
	Points   int      `json:"points"`
	Bounds   BoundsMM `json:"bounds"`
	Centroid PointMM  `json:"centroid"`

	// PathLengthMM sums the distances between consecutive points. It is only
	// meaningful for walk-ordered strokes; traversal order may jump.
	PathLengthMM float64 `json:"path_length_mm"`

	// SpanMM is the diagonal of the bounding box.
	SpanMM float64 `json:"span_mm"`

	// AngleDegrees is the direction of the bounding box diagonal that best
	// follows the stroke (0 = right, 90 = down).
	AngleDegrees float64 `json:"angle_degrees"`
}

// Summary aggregates the statistics of a stroke set.
type Summary struct {
	StrokeCount int           `json:"stroke_count"`
	PointCount  int           `json:"point_count"`
	Bounds      BoundsMM      `json:"bounds"`
	Strokes     []StrokeStats `json:"strokes"`
}

// Measure computes statistics for each stroke. Values are rounded to
// hundredths of a millimeter (tenths of a degree for angles) for reporting;
// the strokes themselves are not modified. Empty strokes are skipped.
func Measure(strokes []PhysicalStroke) *Summary {
	s := &Summary{Strokes: make([]StrokeStats, 0, len(strokes))}
	first := true
	for i, st := range strokes {
		if len(st) == 0 {
			continue
		}
		stats := measureStroke(st)
		stats.Index = i

		if first {
			s.Bounds = stats.Bounds
			first = false
		} else {
			s.Bounds.MinX = math.Min(s.Bounds.MinX, stats.Bounds.MinX)
			s.Bounds.MinY = math.Min(s.Bounds.MinY, stats.Bounds.MinY)
			s.Bounds.MaxX = math.Max(s.Bounds.MaxX, stats.Bounds.MaxX)
			s.Bounds.MaxY = math.Max(s.Bounds.MaxY, stats.Bounds.MaxY)
		}
		s.StrokeCount++
		s.PointCount += stats.Points
		s.Strokes = append(s.Strokes, round(stats))
	}
	return s
}

func measureStroke(st PhysicalStroke) StrokeStats {
	b := BoundsMM{MinX: st[0].X, MinY: st[0].Y, MaxX: st[0].X, MaxY: st[0].Y}
	var sumX, sumY, length float64
	for i, p := range st {
		sumX += p.X
		sumY += p.Y
		b.MinX = math.Min(b.MinX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MaxY = math.Max(b.MaxY, p.Y)
		if i > 0 {
			length += math.Hypot(p.X-st[i-1].X, p.Y-st[i-1].Y)
		}
	}
	n := float64(len(st))
	c := PointMM{X: sumX / n, Y: sumY / n}

	// Pick the diagonal direction from the sign of the covariance.
	var cov float64
	for _, p := range st {
		cov += (p.X - c.X) * (p.Y - c.Y)
	}
	dx, dy := b.Width(), b.Height()
	if cov < 0 {
		dy = -dy
	}

	return StrokeStats{
		Points:       len(st),
		Bounds:       b,
		Centroid:     c,
		PathLengthMM: length,
		SpanMM:       math.Hypot(b.Width(), b.Height()),
		AngleDegrees: math.Atan2(dy, dx) * 180 / math.Pi,
	}
}

func round(s StrokeStats) StrokeStats {
	r2 := func(v float64) float64 { return math.Round(v*100) / 100 }
	s.Bounds = BoundsMM{MinX: r2(s.Bounds.MinX), MinY: r2(s.Bounds.MinY), MaxX: r2(s.Bounds.MaxX), MaxY: r2(s.Bounds.MaxY)}
	s.Centroid = PointMM{X: r2(s.Centroid.X), Y: r2(s.Centroid.Y)}
	s.PathLengthMM = r2(s.PathLengthMM)
	s.SpanMM = r2(s.SpanMM)
	s.AngleDegrees = math.Round(s.AngleDegrees*10) / 10
	return s
}
