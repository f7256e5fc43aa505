package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/stroke-tools-mcp/internal/testutil"
	"github.com/ironsheep/stroke-tools-mcp/internal/trace"
	"github.com/ironsheep/stroke-tools-mcp/internal/workspace"
)

func TestIntensity(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 1))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	img.Set(1, 0, color.RGBA{0, 255, 0, 255})
	img.Set(2, 0, color.White)

	gray := Intensity(img)
	want := []int{76, 150, 255} // BT.601 luma
	for i, w := range want {
		got := int(gray.Pix[i])
		if got < w-1 || got > w+1 {
			t.Errorf("pixel %d: got %d, want %d", i, got, w)
		}
	}
}

func TestIntensity_NonZeroOrigin(t *testing.T) {
	img := testutil.Canvas(40, 30)
	img.Set(25, 20, color.Black)

	gray := Intensity(img.SubImage(image.Rect(20, 10, 40, 30)))
	if gray.Bounds() != image.Rect(0, 0, 20, 20) {
		t.Fatalf("bounds: got %v, want a zero origin", gray.Bounds())
	}
	if gray.GrayAt(5, 10).Y != 0 {
		t.Errorf("dark pixel should move to (5,10), got %d", gray.GrayAt(5, 10).Y)
	}
}

func TestGaussianBlur(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 11, 11))
	for i := range gray.Pix {
		gray.Pix[i] = 128
	}
	gray.Pix[5*11+5] = 255

	blurred := GaussianBlur(gray, 5, 1.0)

	if blurred.GrayAt(5, 5).Y >= 255 {
		t.Error("bright spot should be reduced after blur")
	}
	for _, p := range []image.Point{{4, 5}, {6, 5}, {5, 4}, {5, 6}} {
		if blurred.GrayAt(p.X, p.Y).Y <= 128 {
			t.Errorf("neighbor %v should receive some brightness", p)
		}
	}
	if v := blurred.GrayAt(0, 0).Y; v < 127 || v > 128 {
		t.Errorf("far pixel changed: got %d, want 128", v)
	}
}

func TestGaussianBlur_KernelOfOneIsIdentity(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 4, 4))
	gray.Pix[5] = 200
	if got := GaussianBlur(gray, 1, 1.0); got != gray {
		t.Error("a 1x1 kernel should return the input")
	}
}

func TestClose_BridgesGap(t *testing.T) {
	m := NewMask(30, 11)
	for x := 5; x < 25; x++ {
		if x != 15 {
			m.Set(x, 5, true)
		}
	}

	closed := Close(m, 1)
	if !closed.On(15, 5) {
		t.Error("closing should bridge a one pixel gap")
	}
	if m.On(15, 5) {
		t.Error("Close must not modify its input")
	}
	for x := 5; x < 25; x++ {
		if !closed.On(x, 5) {
			t.Errorf("closing removed (%d,5)", x)
		}
	}
}

func TestClose_ZeroRadius(t *testing.T) {
	m := NewMask(5, 5)
	m.Set(2, 2, true)

	c := Close(m, 0)
	if c == m {
		t.Error("Close should return a copy")
	}
	if c.Count() != 1 || !c.On(2, 2) {
		t.Errorf("zero radius changed the mask: %v", c.Pix)
	}
}

func TestThin_Bar(t *testing.T) {
	m := NewMask(40, 15)
	for y := 5; y < 10; y++ {
		for x := 5; x < 35; x++ {
			m.Set(x, y, true)
		}
	}
	before := m.Count()

	skel := Thin(m)

	if m.Count() != before {
		t.Error("Thin must not modify its input")
	}
	for i, v := range skel.Pix {
		if v == 1 && m.Pix[i] != 1 {
			t.Fatalf("skeleton pixel %d is outside the input", i)
		}
	}
	// Away from the ends the bar collapses to one pixel per column.
	for x := 10; x < 30; x++ {
		n := 0
		for y := 0; y < 15; y++ {
			if skel.On(x, y) {
				n++
			}
		}
		if n != 1 {
			t.Errorf("column %d: got %d skeleton pixels, want 1", x, n)
		}
	}
	if got := len(trace.Components(skel)); got != 1 {
		t.Errorf("components: got %d, want 1", got)
	}
}

func TestThin_SinglePixelLineIsStable(t *testing.T) {
	m := NewMask(20, 5)
	for x := 2; x < 18; x++ {
		m.Set(x, 2, true)
	}

	skel := Thin(m)
	// Interior pixels of a one pixel line have two neighbors and a single
	// transition; only the end points may erode.
	for x := 3; x < 17; x++ {
		if !skel.On(x, 2) {
			t.Errorf("(%d,2) removed from an already thin line", x)
		}
	}
}

func TestExtractLineMask_SingleLine(t *testing.T) {
	img := testutil.Canvas(160, 100)
	testutil.DrawLine(img, 20, 50, 140, 50, 1, color.Black)

	mask := ExtractLineMask(img, workspace.DefaultTuning())

	if mask.Width != 160 || mask.Height != 100 {
		t.Fatalf("size: got %dx%d, want 160x100", mask.Width, mask.Height)
	}
	strokes := trace.Components(mask)
	if len(strokes) != 1 {
		t.Fatalf("components: got %d, want 1", len(strokes))
	}
	for _, p := range strokes[0] {
		if p.Y < 46 || p.Y > 54 {
			t.Fatalf("skeleton pixel %v is off the line", p)
		}
	}
}

func TestExtractLineMask_Blank(t *testing.T) {
	mask := ExtractLineMask(testutil.Canvas(80, 60), workspace.DefaultTuning())
	if mask.Count() != 0 {
		t.Errorf("blank frame: got %d line pixels", mask.Count())
	}

	empty := ExtractLineMask(image.NewRGBA(image.Rect(0, 0, 0, 0)), workspace.DefaultTuning())
	if empty.Width != 0 || empty.Height != 0 {
		t.Errorf("empty frame: got %dx%d", empty.Width, empty.Height)
	}
}

func TestExtractLineMask_CornerMask(t *testing.T) {
	img := testutil.Canvas(120, 90)
	// A blob in each corner and a line in the middle.
	for _, r := range []image.Rectangle{
		image.Rect(0, 0, 12, 12), image.Rect(108, 0, 120, 12),
		image.Rect(0, 78, 12, 90), image.Rect(108, 78, 120, 90),
	} {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				img.Set(x, y, color.Black)
			}
		}
	}
	testutil.DrawLine(img, 30, 45, 90, 45, 1, color.Black)

	tuning := workspace.DefaultTuning()
	unmasked := ExtractLineMask(img, tuning)

	tuning.CornerMaskPx = 20
	masked := ExtractLineMask(img, tuning)

	frame := image.Rect(0, 0, 120, 90)
	for _, role := range workspace.Roles {
		r := CornerRect(frame, role, 20)
		if countIn(unmasked, r) == 0 {
			t.Errorf("%s: expected remnants without the corner mask", role)
		}
		if n := countIn(masked, r); n != 0 {
			t.Errorf("%s: %d pixels survive the corner mask", role, n)
		}
	}
	if countIn(masked, image.Rect(30, 40, 90, 50)) == 0 {
		t.Error("the corner mask must keep the line")
	}
}

func TestExtractLineMask_Deterministic(t *testing.T) {
	img := testutil.Canvas(100, 100)
	testutil.DrawLine(img, 10, 10, 90, 80, 2, color.Black)
	testutil.DrawLine(img, 10, 90, 60, 20, 1, color.Gray{Y: 60})

	a := ExtractLineMask(img, workspace.DefaultTuning())
	b := ExtractLineMask(img, workspace.DefaultTuning())
	if string(a.Pix) != string(b.Pix) {
		t.Error("the same frame and tuning must give the same mask")
	}
}

func countIn(m *Mask, r image.Rectangle) int {
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if m.On(x, y) {
				n++
			}
		}
	}
	return n
}
