package storage

import (
	"context"
	"sync"

	"marker-bot/internal/domain/entity"
	"marker-bot/internal/domain/port"
)

// MemoryScanRepository in-memory хранилище последних сканирований пользователей
type MemoryScanRepository struct {
	mu    sync.RWMutex
	scans map[int64]*entity.Scan
}

// NewMemoryScanRepository создаёт новое in-memory хранилище сканирований
func NewMemoryScanRepository() *MemoryScanRepository {
	return &MemoryScanRepository{
		scans: make(map[int64]*entity.Scan),
	}
}

// SaveLast заменяет последнее сканирование пользователя
func (r *MemoryScanRepository) SaveLast(ctx context.Context, userID int64, scan *entity.Scan) error {
	r.mu.Lock()
	r.scans[userID] = scan
	r.mu.Unlock()

	return nil
}

// Last возвращает последнее сканирование пользователя
func (r *MemoryScanRepository) Last(ctx context.Context, userID int64) (*entity.Scan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	scan, exists := r.scans[userID]
	if !exists {
		return nil, entity.ErrScanNotFound
	}

	return scan, nil
}

// Проверка реализации интерфейса
var _ port.ScanRepository = (*MemoryScanRepository)(nil)
