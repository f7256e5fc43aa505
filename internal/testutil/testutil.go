// Package testutil renders synthetic frames for tests: marker sheets with
// known corner positions, and simple pen lines.
package testutil

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/stroke-tools-mcp/internal/geometry"
)

// MarkerBits is the code size of the test dictionary.
const MarkerBits = 5

// MaxCorrection is the correction capacity of the test dictionary. Codes are
// at least 7 bits apart in every orientation.
const MaxCorrection = 2

// MarkerCodes is a six marker 5x5 test dictionary, row-major with 1 = white.
var MarkerCodes = []string{
	"0101001011100110101101000",
	"1111001010100111010011011",
	"0010011010011110000011010",
	"0110010100010011001001110",
	"0000110001011100011111111",
	"0001001010001011001011110",
}

// DictionaryYAML returns MarkerCodes in OpenCV's dictionary file layout.
func DictionaryYAML() string {
	var b strings.Builder
	b.WriteString("%YAML:1.0\n---\n")
	fmt.Fprintf(&b, "nmarkers: %d\n", len(MarkerCodes))
	fmt.Fprintf(&b, "markersize: %d\n", MarkerBits)
	fmt.Fprintf(&b, "maxCorrectionBits: %d\n", MaxCorrection)
	for i, c := range MarkerCodes {
		fmt.Fprintf(&b, "marker_%d: \"%s\"\n", i, c)
	}
	return b.String()
}

// WriteDictionary writes DictionaryYAML to a temporary file and returns its path.
func WriteDictionary(t testing.TB) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dict_5x5_test.yml")
	if err := os.WriteFile(path, []byte(DictionaryYAML()), 0o600); err != nil {
		t.Fatalf("failed to write dictionary: %v", err)
	}
	return path
}

// Canvas returns an opaque white image.
func Canvas(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img
}

// MarkerSide returns the side in pixels of a marker drawn with the given cell size.
func MarkerSide(cell int) int {
	return (MarkerBits + 2) * cell
}

// DrawMarker draws marker id with its top-left at (x, y). The marker is
// rotated clockwise by quarterTurns before drawing. It returns the marker's
// own corners (top-left, top-right, bottom-right, bottom-left) after rotation.
func DrawMarker(dst draw.Image, id, x, y, cell, quarterTurns int) [4]geometry.Point {
	n := MarkerBits + 2
	code := MarkerCodes[id]

	grid := make([][]bool, n)
	for r := range grid {
		grid[r] = make([]bool, n)
	}
	for r := 0; r < MarkerBits; r++ {
		for c := 0; c < MarkerBits; c++ {
			grid[r+1][c+1] = code[r*MarkerBits+c] == '1'
		}
	}

	turns := ((quarterTurns % 4) + 4) % 4
	for k := 0; k < turns; k++ {
		next := make([][]bool, n)
		for r := range next {
			next[r] = make([]bool, n)
		}
		for r := 0; r < n; r++ {
			for c := 0; c < n; c++ {
				next[c][n-1-r] = grid[r][c]
			}
		}
		grid = next
	}

	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			col := color.Black
			if grid[r][c] {
				col = color.White
			}
			cellRect := image.Rect(x+c*cell, y+r*cell, x+(c+1)*cell, y+(r+1)*cell)
			draw.Draw(dst, cellRect, image.NewUniform(col), image.Point{}, draw.Src)
		}
	}

	side := float64(n * cell)
	fx, fy := float64(x), float64(y)
	square := [4]geometry.Point{{X: fx, Y: fy}, {X: fx + side, Y: fy}, {X: fx + side, Y: fy + side}, {X: fx, Y: fy + side}}
	var corners [4]geometry.Point
	for i := range corners {
		corners[i] = square[(i+turns)%4]
	}
	return corners
}

// Sheet describes a synthetic drawing sheet with a marker in each corner.
type Sheet struct {
	Width, Height int
	Cell          int
	Margin        int

	// IDs in TL, TR, BL, BR order.
	IDs [4]int
}

// Render draws the sheet and returns it with the centroid of each corner
// marker in TL, TR, BL, BR order.
func (s Sheet) Render() (*image.RGBA, [4]geometry.Point) {
	img := Canvas(s.Width, s.Height)
	side := MarkerSide(s.Cell)
	origins := [4]image.Point{
		{s.Margin, s.Margin},
		{s.Width - s.Margin - side, s.Margin},
		{s.Margin, s.Height - s.Margin - side},
		{s.Width - s.Margin - side, s.Height - s.Margin - side},
	}
	var centroids [4]geometry.Point
	for i, o := range origins {
		DrawMarker(img, s.IDs[i], o.X, o.Y, s.Cell, 0)
		centroids[i] = geometry.Point{X: float64(o.X) + float64(side)/2, Y: float64(o.Y) + float64(side)/2}
	}
	return img, centroids
}

// DrawLine draws a dark pen line from (x0, y0) to (x1, y1) with a square
// brush of the given width.
func DrawLine(dst draw.Image, x0, y0, x1, y1, width int, c color.Color) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	brush := image.NewUniform(c)
	half := width / 2
	errv := dx + dy
	for {
		draw.Draw(dst, image.Rect(x0-half, y0-half, x0-half+width, y0-half+width), brush, image.Point{}, draw.Src)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * errv
		if e2 >= dy {
			errv += dy
			x0 += sx
		}
		if e2 <= dx {
			errv += dx
			y0 += sy
		}
	}
}

// SavePNG writes img to a temporary PNG file and returns its path.
func SavePNG(t testing.TB, img image.Image, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("failed to save %s: %v", name, err)
	}
	return path
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
