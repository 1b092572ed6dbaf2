package entity

import (
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// rotatedSquare строит углы квадрата, у которого направление "вверх" повёрнуто
// на theta градусов против часовой стрелки от оси X экрана.
func rotatedSquare(cx, cy, half, theta float64) Corners {
	rad := theta * math.Pi / 180
	ux, uy := math.Cos(rad), -math.Sin(rad)
	rx, ry := math.Sin(rad), math.Cos(rad)
	at := func(su, sr float64) Point {
		return Point{X: cx + half*(su*ux+sr*rx), Y: cy + half*(su*uy+sr*ry)}
	}
	return Corners{
		TopLeft:     at(1, -1),
		TopRight:    at(1, 1),
		BottomRight: at(-1, 1),
		BottomLeft:  at(-1, -1),
	}
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

func TestCornersOrientation_UprightMarker(t *testing.T) {
	c := Corners{{X: 100, Y: 100}, {X: 200, Y: 100}, {X: 200, Y: 200}, {X: 100, Y: 200}}
	require.Equal(t, image.Pt(150, 150), c.Centroid())
	require.Equal(t, image.Pt(150, 100), c.TopMidpoint())
	require.Equal(t, 90, c.Orientation())
}

func TestCornersOrientation_KnownRotations(t *testing.T) {
	for _, theta := range []int{0, 45, 90, 135, 180, 225, 270, 315} {
		c := rotatedSquare(2000, 2000, 1000, float64(theta))
		got := c.Orientation()
		require.LessOrEqualf(t, angleDistance(got, theta), 1, "theta=%d got=%d", theta, got)
	}
}

func TestCornersOrientation_AlwaysInRange(t *testing.T) {
	for theta := 0.0; theta < 360; theta += 0.25 {
		got := rotatedSquare(300, 300, 40, theta).Orientation()
		require.GreaterOrEqual(t, got, 0)
		require.Less(t, got, 360)
	}
}

func TestCornersOrientation_Degenerate(t *testing.T) {
	// Все углы в одной точке: atan2(0, 0) = 0, без отдельной обработки
	p := Point{X: 10, Y: 10}
	require.Equal(t, 0, Corners{p, p, p, p}.Orientation())
}

func TestCornersPixels_Truncates(t *testing.T) {
	c := Corners{{X: 1.9, Y: 2.1}, {X: 3.5, Y: 4.99}, {X: 5, Y: 6}, {X: 0.2, Y: 0.8}}
	px := c.Pixels()
	require.Equal(t, image.Pt(1, 2), px[TopLeft])
	require.Equal(t, image.Pt(3, 4), px[TopRight])
	require.Equal(t, image.Pt(0, 0), px[BottomLeft])
}

func TestMarkersIDs_Sorted(t *testing.T) {
	m := Markers{7: {}, 2: {}, 40: {}, 0: {}}
	require.Equal(t, []MarkerID{0, 2, 7, 40}, m.IDs())
	require.Empty(t, Markers{}.IDs())
}
