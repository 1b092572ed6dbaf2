// Package report сериализует результаты сканирования в YAML.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"marker-bot/internal/domain/entity"
)

// Report набор обработанных кадров
type Report struct {
	GeneratedAt time.Time `yaml:"generated_at"`
	Frames      []Frame   `yaml:"frames"`
}

// Frame результат одного кадра. Error заполнен, если кадр не дал маркеров.
type Frame struct {
	Source  string   `yaml:"source"`
	Width   int      `yaml:"width,omitempty"`
	Height  int      `yaml:"height,omitempty"`
	Error   string   `yaml:"error,omitempty"`
	Markers []Marker `yaml:"markers,omitempty"`
}

// Marker данные одного маркера
type Marker struct {
	ID       int           `yaml:"id"`
	Angle    int           `yaml:"angle"`
	Centroid [2]int        `yaml:"centroid,flow"`
	Corners  [4][2]float64 `yaml:"corners,flow"`
}

// FromScan переводит сканирование в кадр отчёта, маркеры по возрастанию id.
func FromScan(scan *entity.Scan) Frame {
	markers := scan.Detection.Markers
	frame := Frame{
		Source:  scan.Source,
		Width:   scan.Detection.ImageWidth,
		Height:  scan.Detection.ImageHeight,
		Markers: make([]Marker, 0, len(markers)),
	}

	for _, id := range markers.IDs() {
		c := markers[id]
		center := c.Centroid()
		m := Marker{
			ID:       int(id),
			Angle:    scan.Angles[id],
			Centroid: [2]int{center.X, center.Y},
		}
		for i, p := range c {
			m.Corners[i] = [2]float64{p.X, p.Y}
		}
		frame.Markers = append(frame.Markers, m)
	}

	return frame
}

// FailedFrame кадр, обработка которого завершилась ошибкой.
func FailedFrame(source string, err error) Frame {
	return Frame{Source: source, Error: err.Error()}
}

// SortFrames упорядочивает кадры по имени источника.
func (r *Report) SortFrames() {
	sort.Slice(r.Frames, func(i, j int) bool { return r.Frames[i].Source < r.Frames[j].Source })
}

// Marshal кодирует отчёт в YAML
func Marshal(r *Report) ([]byte, error) {
	return yaml.Marshal(r)
}

// Write записывает отчёт в YAML-файл, создавая каталог при необходимости
func Write(r *Report, path string) error {
	data, err := Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return os.WriteFile(path, data, 0644)
}

// Read читает отчёт из YAML-файла
func Read(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse report %s: %w", path, err)
	}

	return &r, nil
}
