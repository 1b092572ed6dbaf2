//go:build gocv
// +build gocv

package vision

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"marker-bot/internal/domain/entity"
)

const (
	canvasSide = 600
	markerSide = 200
)

var white = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// markerFrame рисует маркер id в центре белого кадра и поворачивает кадр
// на rotation градусов против часовой стрелки.
func markerFrame(t *testing.T, id int, rotation float64) gocv.Mat {
	t.Helper()

	marker := gocv.NewMatWithSize(markerSide, markerSide, gocv.MatTypeCV8UC1)
	defer marker.Close()
	gocv.ArucoGenerateImageMarker(Dictionary, id, markerSide, marker, 1)

	canvas := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), canvasSide, canvasSide, gocv.MatTypeCV8UC1)
	defer canvas.Close()

	offset := (canvasSide - markerSide) / 2
	roi := canvas.Region(image.Rect(offset, offset, offset+markerSide, offset+markerSide))
	marker.CopyTo(&roi)
	roi.Close()

	rotated := gocv.NewMat()
	defer rotated.Close()
	m := gocv.GetRotationMatrix2D(image.Pt(canvasSide/2, canvasSide/2), rotation, 1.0)
	defer m.Close()
	gocv.WarpAffineWithParams(canvas, &rotated, m, image.Pt(canvasSide, canvasSide),
		gocv.InterpolationLinear, gocv.BorderConstant, white)

	frame := gocv.NewMat()
	gocv.CvtColor(rotated, &frame, gocv.ColorGrayToBGR)
	require.False(t, frame.Empty())
	return frame
}

func angleDistance(a, b int) int {
	d := (a - b) % 360
	if d < 0 {
		d += 360
	}
	if d > 180 {
		d = 360 - d
	}
	return d
}

func bgrAt(mat gocv.Mat, p image.Point) [3]uint8 {
	v := mat.GetVecbAt(p.Y, p.X)
	return [3]uint8{v[0], v[1], v[2]}
}

func TestArucoDetector_FindsMarkerAtKnownLocation(t *testing.T) {
	d := NewArucoDetector(DefaultJPEGQuality)
	defer d.Close()

	frame := markerFrame(t, 23, 0)
	defer frame.Close()

	markers, err := d.DetectMat(frame)
	require.NoError(t, err)
	require.Len(t, markers, 1)
	require.Contains(t, markers, entity.MarkerID(23))

	center := markers[23].Centroid()
	require.InDelta(t, canvasSide/2, center.X, 3)
	require.InDelta(t, canvasSide/2, center.Y, 3)
	require.LessOrEqual(t, angleDistance(markers[23].Orientation(), 90), 1)
}

func TestArucoDetector_RotatedMarkers(t *testing.T) {
	d := NewArucoDetector(DefaultJPEGQuality)
	defer d.Close()

	for _, rotation := range []int{0, 45, 90, 135, 180, 225, 270, 315} {
		frame := markerFrame(t, 7, float64(rotation))
		markers, err := d.DetectMat(frame)
		frame.Close()
		require.NoErrorf(t, err, "rotation=%d", rotation)

		want := (90 + rotation) % 360
		got := markers[7].Orientation()
		require.LessOrEqualf(t, angleDistance(got, want), 2, "rotation=%d got=%d want=%d", rotation, got, want)
	}
}

func TestArucoDetector_NoMarkers(t *testing.T) {
	d := NewArucoDetector(DefaultJPEGQuality)
	defer d.Close()

	blank := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), 300, 300, gocv.MatTypeCV8UC3)
	defer blank.Close()

	markers, err := d.DetectMat(blank)
	require.ErrorIs(t, err, entity.ErrNoMarkers)
	require.Nil(t, markers)
}

func TestArucoDetector_DetectFromBytes(t *testing.T) {
	d := NewArucoDetector(DefaultJPEGQuality)
	defer d.Close()

	frame := markerFrame(t, 101, 30)
	defer frame.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, frame)
	require.NoError(t, err)
	defer buf.Close()

	detection, err := d.Detect(context.Background(), buf.GetBytes())
	require.NoError(t, err)
	require.Equal(t, canvasSide, detection.ImageWidth)
	require.Equal(t, canvasSide, detection.ImageHeight)
	require.Equal(t, []entity.MarkerID{101}, detection.Markers.IDs())
}

func TestArucoDetector_DetectInvalidInput(t *testing.T) {
	d := NewArucoDetector(DefaultJPEGQuality)
	defer d.Close()

	_, err := d.Detect(context.Background(), []byte("not an image"))
	require.EqualError(t, err, "failed to decode image")

	_, err = d.Detect(context.Background(), nil)
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = d.Detect(ctx, []byte("whatever"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestDrawMarkers_Landmarks(t *testing.T) {
	img := gocv.NewMatWithSize(500, 500, gocv.MatTypeCV8UC3)
	defer img.Close()
	img.SetTo(gocv.NewScalar(0, 0, 0, 0))

	markers := entity.Markers{1: {{X: 100, Y: 100}, {X: 300, Y: 100}, {X: 300, Y: 300}, {X: 100, Y: 300}}}
	before := markers[1]
	angles := entity.Angles{1: 90}

	require.NoError(t, DrawMarkers(&img, markers, angles))

	// Цвета в BGR
	require.Equal(t, [3]uint8{125, 125, 125}, bgrAt(img, image.Pt(100, 100)))
	require.Equal(t, [3]uint8{0, 255, 0}, bgrAt(img, image.Pt(300, 100)))
	require.Equal(t, [3]uint8{180, 105, 255}, bgrAt(img, image.Pt(300, 300)))
	require.Equal(t, [3]uint8{255, 255, 255}, bgrAt(img, image.Pt(100, 300)))
	require.Equal(t, [3]uint8{255, 0, 0}, bgrAt(img, image.Pt(200, 150)))

	require.Equal(t, entity.Markers{1: before}, markers)
	require.Equal(t, entity.Angles{1: 90}, angles)
}

func TestDrawMarkers_UnknownMarker(t *testing.T) {
	img := gocv.NewMatWithSize(200, 200, gocv.MatTypeCV8UC3)
	defer img.Close()
	img.SetTo(gocv.NewScalar(0, 0, 0, 0))

	markers := entity.Markers{
		1: {{X: 10, Y: 10}, {X: 60, Y: 10}, {X: 60, Y: 60}, {X: 10, Y: 60}},
		2: {{X: 100, Y: 100}, {X: 150, Y: 100}, {X: 150, Y: 150}, {X: 100, Y: 150}},
	}

	err := DrawMarkers(&img, markers, entity.Angles{1: 90})
	require.ErrorIs(t, err, entity.ErrUnknownMarker)
	require.Equal(t, [3]uint8{0, 0, 0}, bgrAt(img, image.Pt(10, 10)))
}

func TestDrawMarkers_Empty(t *testing.T) {
	img := gocv.NewMatWithSize(50, 50, gocv.MatTypeCV8UC3)
	defer img.Close()

	require.NoError(t, DrawMarkers(&img, entity.Markers{}, entity.Angles{}))
}

func TestArucoDetector_Annotate(t *testing.T) {
	d := NewArucoDetector(DefaultJPEGQuality)
	defer d.Close()

	frame := markerFrame(t, 5, 0)
	defer frame.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, frame)
	require.NoError(t, err)
	defer buf.Close()
	photo := buf.GetBytes()

	detection, err := d.Detect(context.Background(), photo)
	require.NoError(t, err)

	angles := entity.Angles{}
	for id, c := range detection.Markers {
		angles[id] = c.Orientation()
	}

	out, err := d.Annotate(photo, detection.Markers, angles)
	require.NoError(t, err)

	decoded, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, canvasSide, canvasSide), decoded.Bounds())

	_, err = d.Annotate(photo, detection.Markers, entity.Angles{})
	require.ErrorIs(t, err, entity.ErrUnknownMarker)
}

func TestArucoDetector_AnnotateInvalidInput(t *testing.T) {
	d := NewArucoDetector(DefaultJPEGQuality)
	defer d.Close()

	markers := entity.Markers{1: {{X: 10, Y: 10}, {X: 60, Y: 10}, {X: 60, Y: 60}, {X: 10, Y: 60}}}
	angles := entity.Angles{1: 90}

	_, err := d.Annotate([]byte("not an image"), markers, angles)
	require.EqualError(t, err, "failed to decode image")

	_, err = d.Annotate(nil, markers, angles)
	require.EqualError(t, err, "failed to decode image")
}

func TestNewArucoDetector_SharesDictionary(t *testing.T) {
	a := NewArucoDetector(DefaultJPEGQuality)
	defer a.Close()
	b := NewArucoDetector(DefaultJPEGQuality)
	defer b.Close()

	require.Equal(t, a.dict, b.dict)
	require.Equal(t, predefinedDictionary(), a.dict)
}
