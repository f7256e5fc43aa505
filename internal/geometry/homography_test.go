package geometry

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/stroke-tools-mcp/internal/workspace"
)

func assertPointNear(t *testing.T, want, got Point, tol float64) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, tol, "x of %v", want)
	assert.InDelta(t, want.Y, got.Y, tol, "y of %v", want)
}

func TestNewHomography_MapsCorrespondences(t *testing.T) {
	tests := []struct {
		name string
		src  [4]Point
		dst  [4]Point
	}{
		{
			name: "identity",
			src:  [4]Point{{0, 0}, {10, 0}, {0, 10}, {10, 10}},
			dst:  [4]Point{{0, 0}, {10, 0}, {0, 10}, {10, 10}},
		},
		{
			name: "perspective photo to letter frame",
			src:  [4]Point{{312.5, 240.25}, {2810, 198}, {260, 2105.5}, {2890.75, 2230}},
			dst:  TargetCorners(2200, 1700),
		},
		{
			name: "mirrored layout is accepted",
			src:  [4]Point{{100, 0}, {0, 0}, {100, 80}, {0, 80}},
			dst:  TargetCorners(200, 160),
		},
		{
			name: "rotated quarter turn",
			src:  [4]Point{{0, 100}, {0, 0}, {100, 100}, {100, 0}},
			dst:  TargetCorners(50, 50),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := NewHomography(tt.src, tt.dst)
			require.NoError(t, err)
			for i := range tt.src {
				assertPointNear(t, tt.dst[i], h.Apply(tt.src[i]), 1e-6)
			}
		})
	}
}

func TestNewHomography_Degenerate(t *testing.T) {
	dst := TargetCorners(100, 100)
	tests := []struct {
		name string
		src  [4]Point
	}{
		{"three collinear", [4]Point{{0, 0}, {50, 0}, {100, 0}, {50, 80}}},
		{"all collinear", [4]Point{{0, 0}, {1, 1}, {2, 2}, {3, 3}}},
		{"coincident pair", [4]Point{{0, 0}, {0, 0}, {0, 100}, {100, 100}}},
		{"all coincident", [4]Point{{5, 5}, {5, 5}, {5, 5}, {5, 5}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHomography(tt.src, dst)
			require.Error(t, err)
			var dge *DegenerateGeometryError
			require.True(t, errors.As(err, &dge), "got %T", err)
			assert.Equal(t, tt.src, dge.Points)
		})
	}
}

func TestHomography_InverseRoundTrip(t *testing.T) {
	src := [4]Point{{31, 22}, {400, 40}, {12, 310}, {380, 290}}
	h, err := NewHomography(src, TargetCorners(440, 340))
	require.NoError(t, err)

	inv, err := h.Inverse()
	require.NoError(t, err)

	for _, p := range []Point{{0, 0}, {100, 50}, {439, 339}, {220.5, 170.25}} {
		assertPointNear(t, p, h.Apply(inv.Apply(p)), 1e-6)
	}
	assert.InDelta(t, 1.0, h[8], 1e-12)
}

func TestHomography_InverseSingular(t *testing.T) {
	_, err := Homography{}.Inverse()
	var dge *DegenerateGeometryError
	assert.True(t, errors.As(err, &dge))
}

// gradientImage has R = x, G = y and B = 128 at every pixel.
func gradientImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}
	return img
}

func TestRectify_IdentityPreservesPixels(t *testing.T) {
	src := gradientImage(64, 48)
	for _, interp := range []workspace.Interpolation{workspace.Bilinear, workspace.Nearest} {
		t.Run(string(interp), func(t *testing.T) {
			out, h, err := Rectify(src, TargetCorners(64, 48), 64, 48, interp)
			require.NoError(t, err)
			require.Equal(t, image.Rect(0, 0, 64, 48), out.Bounds())
			for i, v := range (Homography{1, 0, 0, 0, 1, 0, 0, 0, 1}) {
				assert.InDelta(t, v, h[i], 1e-9)
			}
			for _, p := range []image.Point{{0, 0}, {10, 7}, {63, 0}, {30, 47}, {63, 47}} {
				assert.Equal(t, src.RGBAAt(p.X, p.Y), out.RGBAAt(p.X, p.Y), "pixel %v", p)
			}
		})
	}
}

func TestRectify_ScalesUp(t *testing.T) {
	src := gradientImage(100, 50)
	out, _, err := Rectify(src, TargetCorners(100, 50), 200, 100, workspace.Nearest)
	require.NoError(t, err)

	// Output pixel (2x, 2y) samples source (x, y) exactly.
	for _, p := range []image.Point{{10, 10}, {40, 20}, {99, 49}} {
		assert.Equal(t, src.RGBAAt(p.X, p.Y), out.RGBAAt(2*p.X, 2*p.Y), "source pixel %v", p)
	}
}

func TestRectify_OutsideIsBlack(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 50))
	for i := range src.Pix {
		src.Pix[i] = 0xFF
	}
	corners := [4]Point{{-50, -50}, {150, -50}, {-50, 100}, {150, 100}}
	out, _, err := Rectify(src, corners, 200, 150, workspace.Bilinear)
	require.NoError(t, err)

	assert.Equal(t, color.RGBA{0, 0, 0, 255}, out.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, out.RGBAAt(199, 149))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, out.RGBAAt(100, 75))
}

func TestRectify_NonZeroOrigin(t *testing.T) {
	full := gradientImage(80, 60)
	sub := full.SubImage(image.Rect(20, 10, 80, 60))
	quad := [4]Point{{20, 10}, {80, 10}, {20, 60}, {80, 60}}
	out, _, err := Rectify(sub, quad, 60, 50, workspace.Nearest)
	require.NoError(t, err)
	assert.Equal(t, full.RGBAAt(20, 10), out.RGBAAt(0, 0))
	assert.Equal(t, full.RGBAAt(45, 30), out.RGBAAt(25, 20))
}

func TestRectify_Errors(t *testing.T) {
	src := gradientImage(10, 10)

	_, _, err := Rectify(src, TargetCorners(10, 10), 0, 10, workspace.Bilinear)
	assert.Error(t, err)

	collinear := [4]Point{{0, 0}, {5, 5}, {10, 10}, {0, 10}}
	_, _, err = Rectify(src, collinear, 10, 10, workspace.Bilinear)
	var dge *DegenerateGeometryError
	assert.True(t, errors.As(err, &dge))
}
