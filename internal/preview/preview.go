// Package preview plots physical strokes on millimeter axes, giving a view of
// what a plotter would draw.
package preview

import (
	"bytes"
	"fmt"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ironsheep/stroke-tools-mcp/internal/imaging"
	"github.com/ironsheep/stroke-tools-mcp/internal/mapping"
)

// Formats lists the supported output formats.
var Formats = []string{"svg", "png", "pdf"}

// Options controls the rendered plot.
type Options struct {
	// Format is one of Formats. Empty means svg.
	Format string

	// Connect draws each stroke as a polyline. Traversal-ordered strokes
	// zigzag when connected, so leave it off unless strokes were walked.
	Connect bool

	// WidthIn is the plot width in inches. The height follows the sheet's
	// aspect ratio. Zero means 8 inches.
	WidthIn float64

	// Title is printed above the plot when set.
	Title string
}

// Result holds a rendered preview.
type Result struct {
	Format      string `json:"format"`
	MimeType    string `json:"mime_type"`
	StrokeCount int    `json:"stroke_count"`
	PointCount  int    `json:"point_count"`
	Data        []byte `json:"-"`
}

// Render plots strokes on a widthMM x heightMM sheet. The Y axis grows
// downward like the rectified frame, so the preview reads the same way up as
// the drawing.
func Render(strokes []mapping.PhysicalStroke, widthMM, heightMM float64, opts Options) (*Result, error) {
	if widthMM <= 0 || heightMM <= 0 {
		return nil, fmt.Errorf("sheet size must be positive, got %gx%g mm", widthMM, heightMM)
	}
	format := strings.ToLower(opts.Format)
	if format == "" {
		format = "svg"
	}
	mime, ok := mimeTypes[format]
	if !ok {
		return nil, fmt.Errorf("unsupported preview format %q (supported: %s)", opts.Format, strings.Join(Formats, ", "))
	}
	widthIn := opts.WidthIn
	if widthIn <= 0 {
		widthIn = 8
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "x (mm)"
	p.Y.Label.Text = "y (mm)"
	p.X.Min, p.X.Max = 0, widthMM
	p.Y.Min, p.Y.Max = 0, heightMM
	p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}

	palette := imaging.StrokePalette(len(strokes))
	res := &Result{Format: format, MimeType: mime}
	for i, s := range strokes {
		if len(s) == 0 {
			continue
		}
		pts := make(plotter.XYs, len(s))
		for j, pt := range s {
			pts[j] = plotter.XY{X: pt.X, Y: pt.Y}
		}

		if opts.Connect && len(pts) > 1 {
			line, err := plotter.NewLine(pts)
			if err != nil {
				return nil, fmt.Errorf("stroke %d: %w", i, err)
			}
			line.Color = palette[i]
			line.Width = vg.Points(1)
			p.Add(line)
		} else {
			scatter, err := plotter.NewScatter(pts)
			if err != nil {
				return nil, fmt.Errorf("stroke %d: %w", i, err)
			}
			scatter.Color = palette[i]
			scatter.Radius = vg.Points(0.6)
			p.Add(scatter)
		}
		res.StrokeCount++
		res.PointCount += len(s)
	}

	width := vg.Length(widthIn) * vg.Inch
	height := width * vg.Length(heightMM/widthMM)
	wt, err := p.WriterTo(width, height, format)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s canvas: %w", format, err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to render preview: %w", err)
	}
	res.Data = buf.Bytes()
	return res, nil
}

var mimeTypes = map[string]string{
	"svg": "image/svg+xml",
	"png": "image/png",
	"pdf": "application/pdf",
}
