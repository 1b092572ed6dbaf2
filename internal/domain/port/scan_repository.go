package port

import (
	"context"

	"marker-bot/internal/domain/entity"
)

// ScanRepository интерфейс хранилища последних сканирований
type ScanRepository interface {
	// SaveLast сохраняет сканирование как последнее для пользователя
	SaveLast(ctx context.Context, userID int64, scan *entity.Scan) error

	// Last возвращает последнее сканирование или entity.ErrScanNotFound
	Last(ctx context.Context, userID int64) (*entity.Scan, error)
}
