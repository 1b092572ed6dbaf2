package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"marker-bot/internal/domain/entity"
	"marker-bot/internal/domain/port"
)

// ScanService проводит кадр через детекцию, расчёт ориентации и разметку.
type ScanService struct {
	detector port.MarkerDetector
	scans    port.ScanRepository
	log      zerolog.Logger
	now      func() time.Time
}

// ScanOutput содержит результат сканирования и размеченное изображение в JPEG.
type ScanOutput struct {
	Scan      *entity.Scan
	Annotated []byte
}

// NewScanService создаёт сервис сканирования. scans может быть nil, если история не нужна.
func NewScanService(detector port.MarkerDetector, scans port.ScanRepository, log zerolog.Logger) *ScanService {
	return &ScanService{
		detector: detector,
		scans:    scans,
		log:      log,
		now:      time.Now,
	}
}

// Process обрабатывает одно изображение. Ошибки детектора возвращаются как есть,
// в том числе entity.ErrNoMarkers.
func (s *ScanService) Process(ctx context.Context, source string, photo []byte) (*ScanOutput, error) {
	if s.detector == nil {
		return nil, errors.New("detector is not configured")
	}

	detection, err := s.detector.Detect(ctx, photo)
	if err != nil {
		return nil, err
	}

	angles := CalculateOrientations(detection.Markers)

	annotated, err := s.detector.Annotate(photo, detection.Markers, angles)
	if err != nil {
		return nil, fmt.Errorf("annotate %s: %w", source, err)
	}

	scan := &entity.Scan{
		Source:    source,
		Detection: *detection,
		Angles:    angles,
		ScannedAt: s.now(),
	}

	s.log.Debug().
		Str("source", source).
		Int("markers", scan.MarkerCount()).
		Int("width", detection.ImageWidth).
		Int("height", detection.ImageHeight).
		Msg("frame scanned")

	return &ScanOutput{Scan: scan, Annotated: annotated}, nil
}

// ProcessForUser обрабатывает фото и запоминает результат как последнее сканирование пользователя.
func (s *ScanService) ProcessForUser(ctx context.Context, userID int64, source string, photo []byte) (*ScanOutput, error) {
	out, err := s.Process(ctx, source, photo)
	if err != nil {
		return nil, err
	}

	if s.scans != nil {
		if err := s.scans.SaveLast(ctx, userID, out.Scan); err != nil {
			return nil, fmt.Errorf("save scan: %w", err)
		}
	}

	return out, nil
}

// LastScan возвращает последнее сканирование пользователя.
func (s *ScanService) LastScan(ctx context.Context, userID int64) (*entity.Scan, error) {
	if s.scans == nil {
		return nil, entity.ErrScanNotFound
	}
	return s.scans.Last(ctx, userID)
}
