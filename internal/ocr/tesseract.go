package ocr

import (
	"fmt"
	"image"

	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/stroke-tools-mcp/internal/imaging"
)

// binarizeLevel splits ink from paper before recognition.
const binarizeLevel = 128

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Rect returns b as an image.Rectangle.
func (b Bounds) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

// TextRegion represents a word with its location and OCR confidence.
type TextRegion struct {
	// Text is the recognized word.
	Text string `json:"text"`

	// Confidence is the OCR confidence score (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// Bounds is the word's bounding box in the source frame.
	Bounds Bounds `json:"bounds"`
}

// OCRResult contains the text read from one region.
type OCRResult struct {
	// FullText is all recognized text with original spacing and newlines.
	FullText string `json:"full_text"`

	// Regions contains individual words. It may be empty when Tesseract
	// cannot report word boxes; the text is still in FullText.
	Regions []TextRegion `json:"regions"`
}

// TextReader reads the text inside a region of a frame.
type TextReader interface {
	ReadRegion(img image.Image, r image.Rectangle) (*OCRResult, error)
}

// Engine runs Tesseract through gosseract. A zero Engine reads English with
// the system's default training data.
type Engine struct {
	// Language is a Tesseract language code such as "eng". Empty means "eng".
	Language string

	// TessdataPrefix overrides the training data directory when set.
	TessdataPrefix string
}

func (e Engine) client() (*gosseract.Client, error) {
	client := gosseract.NewClient()
	if e.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(e.TessdataPrefix); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}
	lang := e.Language
	if lang == "" {
		lang = "eng"
	}
	if err := client.SetLanguage(lang); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	return client, nil
}

// ReadRegion performs OCR on r within img.
//
// The region is clipped to the frame and handed to Tesseract as an in-memory
// PNG. Word boxes are reported in img's coordinates, so a word found at
// (10, 20) inside a region starting at (100, 50) is reported at (110, 70).
func (e Engine) ReadRegion(img image.Image, r image.Rectangle) (*OCRResult, error) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return nil, fmt.Errorf("region does not overlap the image")
	}

	// Binarize so paper texture and shading do not reach Tesseract.
	sub := imaging.MaskFromImage(imaging.CropRegion(img, r, 1), binarizeLevel).Gray()
	data, err := imaging.EncodePNG(sub)
	if err != nil {
		return nil, fmt.Errorf("failed to encode region: %w", err)
	}

	client, err := e.client()
	if err != nil {
		return nil, err
	}
	defer client.Close()

	if err := client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return &OCRResult{FullText: text, Regions: []TextRegion{}}, nil
	}

	regions := make([]TextRegion, 0, len(boxes))
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		regions = append(regions, TextRegion{
			Text:       box.Word,
			Confidence: float64(box.Confidence) / 100.0,
			Bounds: Bounds{
				X1: box.Box.Min.X + r.Min.X,
				Y1: box.Box.Min.Y + r.Min.Y,
				X2: box.Box.Max.X + r.Min.X,
				Y2: box.Box.Max.Y + r.Min.Y,
			},
		})
	}
	return &OCRResult{FullText: text, Regions: regions}, nil
}

// Version returns the linked Tesseract version.
func Version() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}
