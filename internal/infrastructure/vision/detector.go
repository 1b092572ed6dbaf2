//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"

	"marker-bot/internal/domain/entity"
)

// Dictionary словарь маркеров: сетка 5x5, 250 шаблонов.
const Dictionary = gocv.ArucoDict5x5_250

// predefinedDictionary создаётся один раз на процесс: у gocv.ArucoDictionary нет Close.
var predefinedDictionary = sync.OnceValue(func() gocv.ArucoDictionary {
	return gocv.GetPredefinedDictionary(Dictionary)
})

// ArucoDetector ищет ArUco-маркеры через OpenCV.
type ArucoDetector struct {
	JPEGQuality int

	mu       sync.Mutex
	dict     gocv.ArucoDictionary
	detector gocv.ArucoDetector
}

// NewArucoDetector создаёт детектор со словарём 5x5_250 и параметрами по умолчанию.
// После использования детектор нужно закрыть через Close.
func NewArucoDetector(jpegQuality int) *ArucoDetector {
	dict := predefinedDictionary()
	params := gocv.NewArucoDetectorParameters()

	return &ArucoDetector{
		JPEGQuality: jpegQuality,
		dict:        dict,
		detector:    gocv.NewArucoDetectorWithParams(dict, params),
	}
}

// Close освобождает ресурсы OpenCV.
func (d *ArucoDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.detector.Close()
	return nil
}

// Detect декодирует изображение и ищет на нём маркеры.
func (d *ArucoDetector) Detect(ctx context.Context, imageData []byte) (*entity.Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mat, err := decodeToMat(imageData)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	markers, err := d.DetectMat(mat)
	if err != nil {
		return nil, err
	}

	return &entity.Detection{
		ImageWidth:  mat.Cols(),
		ImageHeight: mat.Rows(),
		Markers:     markers,
	}, nil
}

// DetectMat ищет маркеры на уже декодированном кадре.
// Если маркеров нет, возвращает entity.ErrNoMarkers. При повторе id в кадре побеждает последний.
func (d *ArucoDetector) DetectMat(mat gocv.Mat) (entity.Markers, error) {
	if mat.Empty() {
		return nil, errors.New("empty image")
	}

	d.mu.Lock()
	corners, ids, _ := d.detector.DetectMarkers(mat)
	d.mu.Unlock()

	if len(ids) == 0 {
		return nil, entity.ErrNoMarkers
	}

	markers := make(entity.Markers, len(ids))
	for i, id := range ids {
		pts := corners[i]
		if len(pts) != len(entity.Corners{}) {
			return nil, fmt.Errorf("marker %d: expected 4 corners, got %d", id, len(pts))
		}

		var c entity.Corners
		for j, p := range pts {
			c[j] = entity.Point{X: float64(p.X), Y: float64(p.Y)}
		}
		markers[entity.MarkerID(id)] = c
	}

	return markers, nil
}

// decodeToMat превращает байты изображения в gocv.Mat.
func decodeToMat(imageData []byte) (gocv.Mat, error) {
	if len(imageData) == 0 {
		return gocv.NewMat(), errors.New("failed to decode image")
	}
	mat, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err == nil && !mat.Empty() {
		return mat, nil
	}
	if !mat.Empty() {
		mat.Close()
	}
	return gocv.NewMat(), errors.New("failed to decode image")
}
