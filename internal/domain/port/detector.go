package port

import (
	"context"

	"marker-bot/internal/domain/entity"
)

// MarkerDetector интерфейс детектора ArUco-маркеров
type MarkerDetector interface {
	// Detect находит маркеры на изображении. Если маркеров нет, возвращает entity.ErrNoMarkers
	Detect(ctx context.Context, imageData []byte) (*entity.Detection, error)

	// Annotate рисует разметку маркеров и возвращает новое изображение в JPEG
	Annotate(imageData []byte, markers entity.Markers, angles entity.Angles) ([]byte, error)
}
