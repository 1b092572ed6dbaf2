package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"marker-bot/config"
	app "marker-bot/internal/application"
	"marker-bot/internal/batch"
	"marker-bot/internal/domain/entity"
	"marker-bot/internal/infrastructure/report"
	"marker-bot/internal/infrastructure/vision"
	"marker-bot/internal/logging"
)

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".bmp": true,
	".tif": true, ".tiff": true, ".webp": true,
}

// options параметры запуска CLI
type options struct {
	Input    string
	Output   string
	Report   string
	Workers  int
	LogLevel string
}

// parseOptions разбирает флаги. Значения по умолчанию для -workers и -log-level
// берутся из конфигурации (SCAN_WORKERS, LOG_LEVEL).
func parseOptions(cfg *config.Config, args []string) (options, error) {
	var opts options

	fs := flag.NewFlagSet("markerscan", flag.ContinueOnError)
	fs.StringVar(&opts.Input, "input", "", "Путь к изображению или папке с изображениями")
	fs.StringVar(&opts.Output, "output", "output", "Папка для размеченных изображений")
	fs.StringVar(&opts.Report, "report", "", "Путь к YAML-отчёту (по умолчанию <output>/report.yaml)")
	fs.IntVar(&opts.Workers, "workers", cfg.ScanWorkers, "Число параллельно обрабатываемых кадров (SCAN_WORKERS)")
	fs.StringVar(&opts.LogLevel, "log-level", cfg.LogLevel, "Уровень логирования: trace, debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.Input == "" {
		fs.Usage()
		return opts, errors.New("-input is required")
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Report == "" {
		opts.Report = filepath.Join(opts.Output, "report.yaml")
	}

	return opts, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[-] config: %v\n", err)
		os.Exit(1)
	}

	opts, err := parseOptions(cfg, os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	log := logging.New(opts.LogLevel, cfg.LogFormat, os.Stderr)

	files, err := collectImages(opts.Input)
	if err != nil {
		log.Fatal().Err(err).Str("input", opts.Input).Msg("collect images")
	}
	if len(files) == 0 {
		log.Fatal().Str("input", opts.Input).Msg("no images found")
	}
	if err := os.MkdirAll(opts.Output, 0755); err != nil {
		log.Fatal().Err(err).Msg("create output dir")
	}

	detector := vision.NewArucoDetector(cfg.JPEGQuality)
	defer detector.Close()
	svc := app.NewScanService(detector, nil, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	frames, err := batch.Run(ctx, files, opts.Workers, func(ctx context.Context, path string) (report.Frame, error) {
		return scanFile(ctx, svc, log, path, opts.Output)
	})
	if err != nil {
		log.Fatal().Err(err).Msg("batch failed")
	}

	r := &report.Report{GeneratedAt: time.Now(), Frames: frames}
	r.SortFrames()
	if err := report.Write(r, opts.Report); err != nil {
		log.Fatal().Err(err).Str("report", opts.Report).Msg("write report")
	}

	log.Info().
		Int("frames", len(frames)).
		Dur("elapsed", time.Since(start)).
		Str("report", opts.Report).
		Msg("done")
}

// scanFile обрабатывает один файл. Кадр без маркеров попадает в отчёт с ошибкой,
// остальные ошибки останавливают весь пакет.
func scanFile(ctx context.Context, svc *app.ScanService, log zerolog.Logger, path, outDir string) (report.Frame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return report.Frame{}, err
	}

	out, err := svc.Process(ctx, path, data)
	if errors.Is(err, entity.ErrNoMarkers) {
		log.Warn().Str("source", path).Msg("no markers")
		return report.FailedFrame(path, err), nil
	}
	if err != nil {
		return report.Frame{}, fmt.Errorf("%s: %w", path, err)
	}

	dst := filepath.Join(outDir, annotatedName(path))
	if err := os.WriteFile(dst, out.Annotated, 0644); err != nil {
		return report.Frame{}, err
	}

	log.Info().Str("source", path).Int("markers", out.Scan.MarkerCount()).Str("output", dst).Msg("frame annotated")
	return report.FromScan(out.Scan), nil
}

// annotatedName строит имя размеченного файла: frame.png -> frame_markers.jpg
func annotatedName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "_markers.jpg"
}

// collectImages возвращает файл или все изображения каталога (без рекурсии), по имени.
func collectImages(input string) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{input}, nil
	}

	entries, err := os.ReadDir(input)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		files = append(files, filepath.Join(input, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
