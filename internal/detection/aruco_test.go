package detection_test

import (
	"errors"
	"image"
	"image/color"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/stroke-tools-mcp/internal/detection"
	"github.com/ironsheep/stroke-tools-mcp/internal/geometry"
	"github.com/ironsheep/stroke-tools-mcp/internal/testutil"
	"github.com/ironsheep/stroke-tools-mcp/internal/workspace"
)

func newDetector(t *testing.T) *detection.ArucoDetector {
	t.Helper()
	dict, err := detection.LoadDictionary(testutil.WriteDictionary(t))
	require.NoError(t, err)
	d, err := detection.NewArucoDetector(dict, workspace.DefaultDetectorConfig())
	require.NoError(t, err)
	return d
}

func assertNear(t *testing.T, want, got geometry.Point, tol float64, msgAndArgs ...interface{}) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, tol, msgAndArgs...)
	assert.InDelta(t, want.Y, got.Y, tol, msgAndArgs...)
}

func byID(markers []detection.Marker) []detection.Marker {
	out := append([]detection.Marker(nil), markers...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func TestNewArucoDetector_RequiresDictionary(t *testing.T) {
	_, err := detection.NewArucoDetector(nil, workspace.DefaultDetectorConfig())
	assert.Error(t, err)
}

func TestArucoDetector_Sheet(t *testing.T) {
	sheet := testutil.Sheet{Width: 480, Height: 360, Cell: 8, Margin: 24, IDs: [4]int{0, 1, 2, 3}}
	img, centroids := sheet.Render()

	markers, err := newDetector(t).Detect(img)
	require.NoError(t, err)
	require.Len(t, markers, 4)

	got := byID(markers)
	for i, m := range got {
		assert.Equal(t, i, m.ID)
		assertNear(t, centroids[i], m.Centroid(), 0.01, "marker %d centroid", m.ID)
	}

	side := float64(testutil.MarkerSide(8))
	tl := got[0].Corners
	assertNear(t, geometry.Point{X: 24, Y: 24}, tl[0], 0.01)
	assertNear(t, geometry.Point{X: 24 + side, Y: 24}, tl[1], 0.01)
	assertNear(t, geometry.Point{X: 24 + side, Y: 24 + side}, tl[2], 0.01)
	assertNear(t, geometry.Point{X: 24, Y: 24 + side}, tl[3], 0.01)
}

func TestArucoDetector_Rotations(t *testing.T) {
	img := testutil.Canvas(400, 140)
	want := make(map[int][4]geometry.Point)
	for turns := 0; turns < 4; turns++ {
		id := turns + 1
		want[id] = testutil.DrawMarker(img, id, 20+turns*95, 40, 9, turns)
	}

	markers, err := newDetector(t).Detect(img)
	require.NoError(t, err)
	require.Len(t, markers, 4)

	for _, m := range markers {
		corners, ok := want[m.ID]
		require.True(t, ok, "unexpected id %d", m.ID)
		for i := range corners {
			assertNear(t, corners[i], m.Corners[i], 0.01, "marker %d corner %d", m.ID, i)
		}
	}
}

func TestArucoDetector_IgnoresLinesAndBlanks(t *testing.T) {
	img := testutil.Canvas(300, 200)
	testutil.DrawLine(img, 20, 30, 280, 170, 3, color.Black)
	testutil.DrawLine(img, 40, 150, 260, 150, 2, color.Black)

	markers, err := newDetector(t).Detect(img)
	require.NoError(t, err)
	assert.Empty(t, markers)

	markers, err = newDetector(t).Detect(testutil.Canvas(64, 64))
	require.NoError(t, err)
	assert.Empty(t, markers)
}

func TestArucoDetector_RejectsMarkerOnFrameEdge(t *testing.T) {
	img := testutil.Canvas(200, 120)
	testutil.DrawMarker(img, 0, 0, 10, 8, 0)
	testutil.DrawMarker(img, 1, 100, 30, 8, 0)

	markers, err := newDetector(t).Detect(img)
	require.NoError(t, err)
	require.Len(t, markers, 1)
	assert.Equal(t, 1, markers[0].ID)
}

func TestArucoDetector_UnknownCodeIsSkipped(t *testing.T) {
	img := testutil.Canvas(200, 120)
	testutil.DrawMarker(img, 5, 30, 30, 8, 0)

	dict, err := detection.NewDictionary(testutil.MarkerBits, testutil.MaxCorrection, testutil.MarkerCodes[:4])
	require.NoError(t, err)
	d, err := detection.NewArucoDetector(dict, workspace.DefaultDetectorConfig())
	require.NoError(t, err)

	markers, err := d.Detect(img)
	require.NoError(t, err)
	assert.Empty(t, markers)
}

func TestArucoDetector_Perspective(t *testing.T) {
	sheet := testutil.Sheet{Width: 480, Height: 360, Cell: 8, Margin: 24, IDs: [4]int{0, 1, 2, 3}}
	flat, centroids := sheet.Render()

	// Warp the sheet into a tilted view with dark surroundings.
	view := [4]geometry.Point{{X: -40, Y: -30}, {X: 530, Y: -60}, {X: -20, Y: 400}, {X: 510, Y: 420}}
	photo, h, err := geometry.Rectify(flat, view, 560, 440, workspace.Bilinear)
	require.NoError(t, err)

	markers, err := newDetector(t).Detect(photo)
	require.NoError(t, err)
	require.Len(t, markers, 4)

	for i, m := range byID(markers) {
		assert.Equal(t, i, m.ID)
		assertNear(t, h.Apply(centroids[i]), m.Centroid(), 2.0, "marker %d centroid", m.ID)
	}
}

func TestArucoDetector_NonZeroOrigin(t *testing.T) {
	img := testutil.Canvas(300, 200)
	testutil.DrawMarker(img, 2, 150, 80, 8, 0)
	sub := img.SubImage(image.Rect(100, 50, 300, 200))

	markers, err := newDetector(t).Detect(sub)
	require.NoError(t, err)
	require.Len(t, markers, 1)
	assertNear(t, geometry.Point{X: 150, Y: 80}, markers[0].Corners[0], 0.01)
}

func TestArucoDetector_EmptyImage(t *testing.T) {
	_, err := newDetector(t).Detect(image.NewRGBA(image.Rect(0, 0, 0, 0)))
	assert.Error(t, err)
}

func TestLocalizeFrame_DetectorError(t *testing.T) {
	boom := errors.New("camera unplugged")
	d := detection.DetectorFunc(func(image.Image) ([]detection.Marker, error) { return nil, boom })
	_, _, err := detection.LocalizeFrame(testutil.Canvas(10, 10), d, workspace.DefaultSpec())
	assert.ErrorIs(t, err, boom)
}

func TestLocalizeFrame_Sheet(t *testing.T) {
	sheet := testutil.Sheet{Width: 480, Height: 360, Cell: 8, Margin: 24, IDs: [4]int{0, 1, 2, 3}}
	img, centroids := sheet.Render()

	corners, markers, err := detection.LocalizeFrame(img, newDetector(t), workspace.DefaultSpec())
	require.NoError(t, err)
	assert.Len(t, markers, 4)
	pts := corners.Points()
	for i := range pts {
		assertNear(t, centroids[i], pts[i], 0.01, "role %s", workspace.Roles[i])
	}
}

func TestLocalizeFrame_SwappedIDs(t *testing.T) {
	// Markers printed in the wrong corners are assigned by id, not position.
	sheet := testutil.Sheet{Width: 480, Height: 360, Cell: 8, Margin: 24, IDs: [4]int{1, 0, 3, 2}}
	img, centroids := sheet.Render()

	corners, _, err := detection.LocalizeFrame(img, newDetector(t), workspace.DefaultSpec())
	require.NoError(t, err)
	assertNear(t, centroids[1], corners.TopLeft, 0.01)
	assertNear(t, centroids[0], corners.TopRight, 0.01)
}

func TestLocalizeFrame_MissingMarker(t *testing.T) {
	sheet := testutil.Sheet{Width: 480, Height: 360, Cell: 8, Margin: 24, IDs: [4]int{0, 1, 2, 4}}
	img, _ := sheet.Render()

	_, markers, err := detection.LocalizeFrame(img, newDetector(t), workspace.DefaultSpec())
	require.Error(t, err)
	assert.Len(t, markers, 4)

	var mme *detection.MissingMarkersError
	require.True(t, errors.As(err, &mme))
	assert.Equal(t, []workspace.Role{workspace.BottomRight}, mme.Missing)
	assert.Equal(t, []int{3}, mme.IDs)
}
