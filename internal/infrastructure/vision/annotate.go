//go:build gocv
// +build gocv

package vision

import (
	"fmt"
	"image"
	"image/color"
	"strconv"

	"gocv.io/x/gocv"

	"marker-bot/internal/domain/entity"
)

const (
	landmarkRadius = 5
	axisThickness  = 5
	textScale      = 1.0
	textThickness  = 3
)

var (
	idTextOffset    = image.Pt(20, 0)
	angleTextOffset = image.Pt(-80, 0)
)

// Цвета разметки по роли угла: верхний левый, верхний правый, нижний правый, нижний левый
var cornerColors = [4]color.RGBA{
	entity.TopLeft:     {R: 125, G: 125, B: 125, A: 255},
	entity.TopRight:    {G: 255, A: 255},
	entity.BottomRight: {R: 255, G: 105, B: 180, A: 255},
	entity.BottomLeft:  {R: 255, G: 255, B: 255, A: 255},
}

var (
	centroidColor  = color.RGBA{R: 255, A: 255}
	axisColor      = color.RGBA{B: 255, A: 255}
	idTextColor    = color.RGBA{R: 255, A: 255}
	angleTextColor = color.RGBA{G: 255, A: 255}
)

// DrawMarkers рисует разметку маркеров прямо на img: точки углов и центра,
// линию от центра к середине верхней грани, id справа и угол слева от центра.
// Если для какого-то маркера нет угла, возвращает entity.ErrUnknownMarker и ничего не рисует.
func DrawMarkers(img *gocv.Mat, markers entity.Markers, angles entity.Angles) error {
	ids := markers.IDs()
	for _, id := range ids {
		if _, ok := angles[id]; !ok {
			return fmt.Errorf("marker %d: %w", id, entity.ErrUnknownMarker)
		}
	}

	for _, id := range ids {
		c := markers[id]
		center := c.Centroid()

		for role, p := range c.Pixels() {
			gocv.Circle(img, p, landmarkRadius, cornerColors[role], -1)
		}
		gocv.Circle(img, center, landmarkRadius, centroidColor, -1)
		gocv.Line(img, center, c.TopMidpoint(), axisColor, axisThickness)

		gocv.PutText(img, strconv.Itoa(int(id)), center.Add(idTextOffset),
			gocv.FontHersheySimplex, textScale, idTextColor, textThickness)
		gocv.PutText(img, strconv.Itoa(angles[id]), center.Add(angleTextOffset),
			gocv.FontHersheySimplex, textScale, angleTextColor, textThickness)
	}

	return nil
}

// Annotate рисует разметку на копии изображения и возвращает её в JPEG.
func (d *ArucoDetector) Annotate(imageData []byte, markers entity.Markers, angles entity.Angles) ([]byte, error) {
	mat, err := decodeToMat(imageData)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	if err := DrawMarkers(&mat, markers, angles); err != nil {
		return nil, err
	}

	img, err := mat.ToImage()
	if err != nil {
		return nil, err
	}

	return encodeJPEG(img, d.JPEGQuality)
}
