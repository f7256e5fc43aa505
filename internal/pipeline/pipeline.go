// Package pipeline runs the full extraction for one frame: marker
// localization, rectification, line mask extraction, stroke tracing and
// millimeter mapping, in that order.
//
// An Extractor holds only immutable configuration. Every call to Extract
// allocates its own intermediate buffers, so one Extractor may serve
// concurrent callers.
package pipeline

import (
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/stroke-tools-mcp/internal/detection"
	"github.com/ironsheep/stroke-tools-mcp/internal/geometry"
	"github.com/ironsheep/stroke-tools-mcp/internal/imaging"
	"github.com/ironsheep/stroke-tools-mcp/internal/mapping"
	"github.com/ironsheep/stroke-tools-mcp/internal/trace"
	"github.com/ironsheep/stroke-tools-mcp/internal/workspace"
)

// EmptyResultWarning reports that extraction succeeded but no stroke survived
// noise filtering. A blank page is a valid outcome, so this is returned in
// Result.Warning rather than as an error.
type EmptyResultWarning struct {
	// Components counts the connected components before filtering.
	Components int

	// MinStrokeLength is the filter threshold that was applied.
	MinStrokeLength int
}

func (w *EmptyResultWarning) Error() string {
	if w.Components == 0 {
		return "no strokes found: line mask is empty"
	}
	return fmt.Sprintf("no strokes found: all %d components have %d pixels or fewer", w.Components, w.MinStrokeLength)
}

// Localization is the outcome of the marker stage.
type Localization struct {
	Markers []detection.Marker
	Corners detection.CornerSet
}

// Rectification is the outcome of the marker and rectification stages.
type Rectification struct {
	Localization
	Homography geometry.Homography
	Frame      *image.RGBA
}

// Result is everything one extraction produced.
type Result struct {
	FrameID uuid.UUID
	Rectification

	Mask     *imaging.Mask
	Strokes  []trace.Stroke
	Physical []mapping.PhysicalStroke

	// Warning is non-nil when the frame yielded no strokes.
	Warning error
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger for per-stage debug output. Defaults to
// slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.log = l
		}
	}
}

// Extractor turns frames into strokes for one workspace.
type Extractor struct {
	spec     workspace.Spec
	tuning   workspace.Tuning
	detector detection.Detector
	scale    mapping.Scale
	log      *slog.Logger
}

// New validates spec and tuning and returns an Extractor using d to find the
// corner markers.
func New(spec workspace.Spec, tuning workspace.Tuning, d detection.Detector, opts ...Option) (*Extractor, error) {
	if d == nil {
		return nil, fmt.Errorf("marker detector is required")
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid workspace: %w", err)
	}
	if err := tuning.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tuning: %w", err)
	}
	scale, err := mapping.ScaleFor(spec)
	if err != nil {
		return nil, err
	}

	e := &Extractor{
		spec:     spec,
		tuning:   tuning,
		detector: d,
		scale:    scale,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Spec returns the workspace the extractor was built for.
func (e *Extractor) Spec() workspace.Spec { return e.spec }

// Tuning returns the extraction constants.
func (e *Extractor) Tuning() workspace.Tuning { return e.tuning }

// Scale returns the pixel to millimeter scale.
func (e *Extractor) Scale() mapping.Scale { return e.scale }

// Locate detects the markers in frame and assigns them to corner roles.
func (e *Extractor) Locate(frame image.Image) (*Localization, error) {
	if frame == nil || frame.Bounds().Empty() {
		return nil, &imaging.DecodeError{Err: fmt.Errorf("frame has no pixels")}
	}
	corners, markers, err := detection.LocalizeFrame(frame, e.detector, e.spec)
	if err != nil {
		return nil, err
	}
	return &Localization{Markers: markers, Corners: corners}, nil
}

// Rectify locates the markers in frame and warps it to the workspace
// rectangle.
func (e *Extractor) Rectify(frame image.Image) (*Rectification, error) {
	loc, err := e.Locate(frame)
	if err != nil {
		return nil, err
	}
	out, h, err := geometry.Rectify(frame, loc.Corners.Points(), e.spec.WidthPx, e.spec.HeightPx, e.tuning.Interpolation)
	if err != nil {
		return nil, err
	}
	return &Rectification{Localization: *loc, Homography: h, Frame: out}, nil
}

// Extract runs every stage on frame. The first failing stage ends the run
// and its error is returned unchanged, so callers can match it with
// errors.As against *imaging.DecodeError, *detection.MissingMarkersError or
// *geometry.DegenerateGeometryError.
func (e *Extractor) Extract(frame image.Image) (*Result, error) {
	id := uuid.New()
	log := e.log.With("frame", id.String())
	start := time.Now()

	rect, err := e.Rectify(frame)
	if err != nil {
		log.Debug("extraction failed", "error", err)
		return nil, err
	}
	log.Debug("frame rectified",
		"markers", len(rect.Markers),
		"width", e.spec.WidthPx,
		"height", e.spec.HeightPx)

	mask := imaging.ExtractLineMask(rect.Frame, e.tuning)
	log.Debug("line mask extracted", "on_pixels", mask.Count())

	strokes := trace.Trace(mask, e.tuning.MinStrokeLength)
	if e.tuning.PathOrder == workspace.WalkOrder {
		for i, s := range strokes {
			strokes[i] = trace.OrderPath(s)
		}
	}
	log.Debug("strokes traced",
		"strokes", len(strokes),
		"pixels", trace.PixelCount(strokes))

	res := &Result{
		FrameID:       id,
		Rectification: *rect,
		Mask:          mask,
		Strokes:       strokes,
		Physical:      e.scale.ToPhysicalStrokes(strokes),
	}
	if len(strokes) == 0 {
		// Every component was dropped as noise; count them for the warning.
		res.Warning = &EmptyResultWarning{Components: len(trace.Components(mask)), MinStrokeLength: e.tuning.MinStrokeLength}
		log.Info("frame produced no strokes", "warning", res.Warning)
	}
	log.Debug("extraction complete", "elapsed", time.Since(start))
	return res, nil
}

// ExtractFile decodes the image at path and runs Extract on it.
func (e *Extractor) ExtractFile(path string) (*Result, error) {
	frame, err := imaging.DecodeFile(path)
	if err != nil {
		return nil, err
	}
	return e.Extract(frame)
}
