package detection

import (
	"fmt"
	"image"
	"math"

	"github.com/ironsheep/stroke-tools-mcp/internal/geometry"
	"github.com/ironsheep/stroke-tools-mcp/internal/imaging"
	"github.com/ironsheep/stroke-tools-mcp/internal/trace"
	"github.com/ironsheep/stroke-tools-mcp/internal/workspace"
)

const (
	// minCellContrast is the smallest spread between the darkest and brightest
	// cell of a candidate, on the 0-255 scale.
	minCellContrast = 40

	// maxBorderErrorRate is the fraction of border cells allowed to read white.
	maxBorderErrorRate = 0.15
)

// ArucoDetector finds square binary fiducials: a black border one cell wide
// around a grid of black and white code cells.
//
// # Algorithm
//
//  1. Intensity conversion and adaptive mean thresholding: a pixel is dark
//     when it is more than AdaptiveOffset below the mean of its window.
//  2. 8-connected labeling of the dark pixels; each marker's border ring is
//     one region.
//  3. Quadrilateral fit on each region's convex hull.
//  4. The quad is divided into (MarkerSize+2)² cells through a homography and
//     each cell is sampled at nine interior points.
//  5. The border cells must read black; the inner cells are matched against
//     the dictionary in all four orientations.
type ArucoDetector struct {
	dict *Dictionary
	cfg  workspace.DetectorConfig
}

// NewArucoDetector returns a detector for the markers in dict.
func NewArucoDetector(dict *Dictionary, cfg workspace.DetectorConfig) (*ArucoDetector, error) {
	if dict == nil {
		return nil, fmt.Errorf("marker dictionary is required")
	}
	if cfg.AdaptiveWindow < 0 {
		return nil, fmt.Errorf("adaptive window must not be negative, got %d", cfg.AdaptiveWindow)
	}
	return &ArucoDetector{dict: dict, cfg: cfg}, nil
}

// NewArucoDetectorFromConfig loads the dictionary named by cfg.DictionaryPath
// and returns a detector for it.
func NewArucoDetectorFromConfig(cfg workspace.DetectorConfig) (*ArucoDetector, error) {
	if cfg.DictionaryPath == "" {
		return nil, fmt.Errorf("no marker dictionary configured: set %s or detector.dictionary_path", workspace.EnvDictionaryPath)
	}
	dict, err := LoadDictionary(cfg.DictionaryPath)
	if err != nil {
		return nil, err
	}
	return NewArucoDetector(dict, cfg)
}

// Dictionary returns the dictionary the detector decodes against.
func (d *ArucoDetector) Dictionary() *Dictionary { return d.dict }

// Detect returns every marker decoded in img, ordered by the raster position
// of the top of its border.
func (d *ArucoDetector) Detect(img image.Image) ([]Marker, error) {
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("image has no pixels")
	}

	gray := imaging.Intensity(img)
	w, h := bounds.Dx(), bounds.Dy()

	window := d.cfg.AdaptiveWindow
	if window == 0 {
		window = min(w, h) / 4
	}
	window |= 1
	dark := adaptiveThreshold(gray, window, d.cfg.AdaptiveOffset)

	minSide := float64(max(d.cfg.MinMarkerPx, d.dict.MarkerSize+2))
	maxCorrection := d.dict.MaxCorrectionBits
	if d.cfg.MaxCorrectionBits >= 0 {
		maxCorrection = d.cfg.MaxCorrectionBits
	}

	var markers []Marker
	for _, region := range trace.Components(dark) {
		if float64(len(region)) < 4*minSide {
			continue
		}
		quad, ok := fitQuad(region, minSide, w, h)
		if !ok {
			continue
		}
		m, ok := d.decode(gray, quad, maxCorrection)
		if !ok {
			continue
		}
		for i := range m.Corners {
			m.Corners[i].X += float64(bounds.Min.X)
			m.Corners[i].Y += float64(bounds.Min.Y)
		}
		markers = append(markers, m)
	}
	return markers, nil
}

// decode reads the cell grid inside quad and matches it to the dictionary.
func (d *ArucoDetector) decode(gray *image.Gray, quad [4]geometry.Point, maxCorrection int) (Marker, bool) {
	bits := d.dict.MarkerSize
	n := bits + 2
	fn := float64(n)

	grid := [4]geometry.Point{{X: 0, Y: 0}, {X: fn, Y: 0}, {X: fn, Y: fn}, {X: 0, Y: fn}}
	h, err := geometry.NewHomography(grid, quad)
	if err != nil {
		return Marker{}, false
	}

	cells := make([]float64, n*n)
	lo, hi := math.Inf(1), math.Inf(-1)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			var sum float64
			for _, dy := range [3]float64{0.25, 0.5, 0.75} {
				for _, dx := range [3]float64{0.25, 0.5, 0.75} {
					p := h.Apply(geometry.Point{X: float64(c) + dx, Y: float64(r) + dy})
					sum += sampleGray(gray, p.X, p.Y)
				}
			}
			v := sum / 9
			cells[r*n+c] = v
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	if hi-lo < minCellContrast {
		return Marker{}, false
	}
	threshold := (lo + hi) / 2

	borderWhite, borderCells := 0, 0
	code := make([]uint8, 0, bits*bits)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			white := cells[r*n+c] >= threshold
			if r == 0 || c == 0 || r == n-1 || c == n-1 {
				borderCells++
				if white {
					borderWhite++
				}
				continue
			}
			if white {
				code = append(code, 1)
			} else {
				code = append(code, 0)
			}
		}
	}
	if float64(borderWhite) > maxBorderErrorRate*float64(borderCells) {
		return Marker{}, false
	}

	id, rotation, _, ok := d.dict.Match(code, maxCorrection)
	if !ok {
		return Marker{}, false
	}

	m := Marker{ID: id}
	for i := range m.Corners {
		m.Corners[i] = quad[(rotation+i)%4]
	}
	return m, true
}

// adaptiveThreshold marks pixels darker than their local window mean by more
// than offset. Windows are clipped at the frame edge.
func adaptiveThreshold(gray *image.Gray, window int, offset float64) *imaging.Mask {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	out := imaging.NewMask(w, h)

	// integral[y][x] holds the sum of gray over [0,x) x [0,y).
	stride := w + 1
	integral := make([]int64, stride*(h+1))
	for y := 0; y < h; y++ {
		var row int64
		for x := 0; x < w; x++ {
			row += int64(gray.Pix[y*gray.Stride+x])
			integral[(y+1)*stride+x+1] = integral[y*stride+x+1] + row
		}
	}

	r := window / 2
	for y := 0; y < h; y++ {
		y0, y1 := max(0, y-r), min(h, y+r+1)
		for x := 0; x < w; x++ {
			x0, x1 := max(0, x-r), min(w, x+r+1)
			sum := integral[y1*stride+x1] - integral[y0*stride+x1] - integral[y1*stride+x0] + integral[y0*stride+x0]
			mean := float64(sum) / float64((y1-y0)*(x1-x0))
			if float64(gray.Pix[y*gray.Stride+x]) < mean-offset {
				out.Pix[y*w+x] = 1
			}
		}
	}
	return out
}

// sampleGray bilinearly interpolates gray at a continuous coordinate where
// pixel (i, j) covers [i, i+1) x [j, j+1). Samples are clamped to the frame.
func sampleGray(gray *image.Gray, fx, fy float64) float64 {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	x := fx - 0.5
	y := fy - 0.5
	x0, y0 := math.Floor(x), math.Floor(y)
	ax, ay := x-x0, y-y0

	at := func(ix, iy int) float64 {
		ix = min(max(ix, 0), w-1)
		iy = min(max(iy, 0), h-1)
		return float64(gray.Pix[iy*gray.Stride+ix])
	}
	ix, iy := int(x0), int(y0)
	top := at(ix, iy)*(1-ax) + at(ix+1, iy)*ax
	bottom := at(ix, iy+1)*(1-ax) + at(ix+1, iy+1)*ax
	return top*(1-ay) + bottom*ay
}
