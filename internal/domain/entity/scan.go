package entity

import (
	"errors"
	"time"
)

// ErrScanNotFound возвращается, если у пользователя ещё нет сохранённого сканирования
var ErrScanNotFound = errors.New("scan not found")

// Scan хранит результат обработки одного кадра.
type Scan struct {
	Source    string    // имя файла или источник кадра
	Detection Detection // найденные маркеры и размер изображения
	Angles    Angles    // ориентация каждого маркера
	ScannedAt time.Time // время обработки
}

// MarkerCount возвращает число найденных маркеров
func (s *Scan) MarkerCount() int {
	return len(s.Detection.Markers)
}
