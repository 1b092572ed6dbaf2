package entity

import (
	"errors"
	"image"
	"math"
	"sort"
)

var (
	// ErrNoMarkers возвращается детектором, если на изображении нет ни одного маркера
	ErrNoMarkers = errors.New("no markers detected")
	// ErrUnknownMarker означает, что для маркера нет угла в переданной карте углов
	ErrUnknownMarker = errors.New("marker is missing from orientation map")
)

// MarkerID идентификатор ArUco-маркера (неотрицательный, уникален в пределах кадра)
type MarkerID int

// Point координата угла маркера с субпиксельной точностью
type Point struct {
	X float64
	Y float64
}

// Порядок углов, в котором их возвращает детектор
const (
	TopLeft = iota
	TopRight
	BottomRight
	BottomLeft
)

// Corners четыре угла маркера: верхний левый, верхний правый, нижний правый, нижний левый
type Corners [4]Point

// Markers результат детекции: идентификатор маркера -> его углы
type Markers map[MarkerID]Corners

// Angles ориентация маркеров в целых градусах [0, 360)
type Angles map[MarkerID]int

// Detection итог одного прохода детектора по изображению
type Detection struct {
	ImageWidth  int
	ImageHeight int
	Markers     Markers
}

// IDs возвращает идентификаторы маркеров по возрастанию.
func (m Markers) IDs() []MarkerID {
	ids := make([]MarkerID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Pixels возвращает углы, округлённые до целых пикселей отбрасыванием дробной части.
func (c Corners) Pixels() [4]image.Point {
	var pts [4]image.Point
	for i, p := range c {
		pts[i] = image.Pt(int(p.X), int(p.Y))
	}
	return pts
}

// Centroid возвращает середину диагонали от верхнего левого к нижнему правому углу.
func (c Corners) Centroid() image.Point {
	px := c.Pixels()
	return midpoint(px[TopLeft], px[BottomRight])
}

// TopMidpoint возвращает середину верхней грани маркера.
func (c Corners) TopMidpoint() image.Point {
	px := c.Pixels()
	return midpoint(px[TopLeft], px[TopRight])
}

// Orientation возвращает направление вектора "центр -> середина верхней грани"
// в градусах против часовой стрелки от оси X (ось Y изображения направлена вниз).
// Вертикально стоящий маркер даёт 90. Вырожденный маркер не проверяется.
func (c Corners) Orientation() int {
	center := c.Centroid()
	top := c.TopMidpoint()
	dy := float64(center.Y - top.Y)
	dx := float64(top.X - center.X)

	angle := int(math.Atan2(dy, dx) * 180 / math.Pi)
	if angle < 0 {
		angle += 360
	}
	return angle
}

func midpoint(a, b image.Point) image.Point {
	return image.Pt(int(float64(a.X+b.X)/2.0), int(float64(a.Y+b.Y)/2.0))
}
