//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"errors"

	"marker-bot/internal/domain/entity"
)

var errNoGoCV = errors.New("gocv build tag is not enabled")

type ArucoDetector struct {
	JPEGQuality int
}

// NewArucoDetector создаёт детектор-заглушку (без OpenCV).
func NewArucoDetector(jpegQuality int) *ArucoDetector {
	return &ArucoDetector{JPEGQuality: jpegQuality}
}

// Detect возвращает ошибку, если сборка без тега gocv.
func (d *ArucoDetector) Detect(ctx context.Context, imageData []byte) (*entity.Detection, error) {
	_ = ctx
	_ = imageData
	return nil, errNoGoCV
}

// Annotate возвращает ошибку, если сборка без тега gocv.
func (d *ArucoDetector) Annotate(imageData []byte, markers entity.Markers, angles entity.Angles) ([]byte, error) {
	_ = imageData
	_ = markers
	_ = angles
	return nil, errNoGoCV
}

// Close ничего не освобождает.
func (d *ArucoDetector) Close() error {
	return nil
}
