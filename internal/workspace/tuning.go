package workspace

import (
	"errors"
	"fmt"
)

// Interpolation selects how the rectifier resamples the source frame.
type Interpolation string

const (
	Bilinear Interpolation = "bilinear"
	Nearest  Interpolation = "nearest"
)

// PathOrder selects how pixels are ordered inside a traced stroke.
type PathOrder string

const (
	// TraversalOrder keeps the flood-fill visitation order.
	TraversalOrder PathOrder = "traversal"
	// WalkOrder re-walks each stroke along its neighbor chain.
	WalkOrder PathOrder = "walk"
)

// Tuning holds the fixed constants of the line extraction stages. The values
// are never derived from image content, so a given rectified frame always
// produces the same mask.
type Tuning struct {
	BlurKernel      int           `yaml:"blur_kernel" json:"blur_kernel"`
	BlurSigma       float64       `yaml:"blur_sigma" json:"blur_sigma"`
	CannyLow        float64       `yaml:"canny_low" json:"canny_low"`
	CannyHigh       float64       `yaml:"canny_high" json:"canny_high"`
	CloseRadius     int           `yaml:"close_radius" json:"close_radius"`
	MinStrokeLength int           `yaml:"min_stroke_length" json:"min_stroke_length"`
	Interpolation   Interpolation `yaml:"interpolation" json:"interpolation"`
	PathOrder       PathOrder     `yaml:"path_order" json:"path_order"`

	// CornerMaskPx clears a square of this size at each rectified corner
	// before tracing, removing what is left of the markers. Zero disables it.
	CornerMaskPx int `yaml:"corner_mask_px" json:"corner_mask_px"`
}

// DefaultTuning returns the constants the extractor was calibrated with.
func DefaultTuning() Tuning {
	return Tuning{
		BlurKernel:      5,
		BlurSigma:       1.0,
		CannyLow:        40,
		CannyHigh:       120,
		CloseRadius:     1,
		MinStrokeLength: 3,
		Interpolation:   Bilinear,
		PathOrder:       TraversalOrder,
	}
}

// Validate checks the tuning constants for internal consistency.
func (t Tuning) Validate() error {
	var errs []error
	if t.BlurKernel < 1 || t.BlurKernel%2 == 0 {
		errs = append(errs, fmt.Errorf("blur kernel must be a positive odd size, got %d", t.BlurKernel))
	}
	if t.BlurSigma <= 0 {
		errs = append(errs, fmt.Errorf("blur sigma must be positive, got %g", t.BlurSigma))
	}
	if t.CannyLow < 0 || t.CannyHigh < t.CannyLow {
		errs = append(errs, fmt.Errorf("canny thresholds must satisfy 0 <= low <= high, got %g/%g", t.CannyLow, t.CannyHigh))
	}
	if t.CloseRadius < 0 {
		errs = append(errs, fmt.Errorf("close radius must not be negative, got %d", t.CloseRadius))
	}
	if t.MinStrokeLength < 0 {
		errs = append(errs, fmt.Errorf("min stroke length must not be negative, got %d", t.MinStrokeLength))
	}
	if t.CornerMaskPx < 0 {
		errs = append(errs, fmt.Errorf("corner mask must not be negative, got %d", t.CornerMaskPx))
	}
	switch t.Interpolation {
	case Bilinear, Nearest:
	default:
		errs = append(errs, fmt.Errorf("unknown interpolation %q", t.Interpolation))
	}
	switch t.PathOrder {
	case TraversalOrder, WalkOrder:
	default:
		errs = append(errs, fmt.Errorf("unknown path order %q", t.PathOrder))
	}
	return errors.Join(errs...)
}

// DetectorConfig configures the built-in square marker detector.
type DetectorConfig struct {
	// DictionaryPath names a marker dictionary in OpenCV's YAML dump format.
	DictionaryPath string `yaml:"dictionary_path" json:"dictionary_path"`

	// AdaptiveWindow is the side of the local-mean window in pixels. Zero
	// picks one quarter of the shorter frame side.
	AdaptiveWindow int `yaml:"adaptive_window" json:"adaptive_window"`

	// AdaptiveOffset is subtracted from the local mean; darker pixels are
	// marker candidates.
	AdaptiveOffset float64 `yaml:"adaptive_offset" json:"adaptive_offset"`

	// MinMarkerPx rejects candidate quads with a shorter side.
	MinMarkerPx int `yaml:"min_marker_px" json:"min_marker_px"`

	// MaxCorrectionBits overrides the dictionary's correction capacity when >= 0.
	MaxCorrectionBits int `yaml:"max_correction_bits" json:"max_correction_bits"`
}

// DefaultDetectorConfig returns detector settings suited to phone photos of a
// letter-size sheet.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		AdaptiveOffset:    7,
		MinMarkerPx:       12,
		MaxCorrectionBits: -1,
	}
}
