package container

import (
	"github.com/rs/zerolog"

	app "marker-bot/internal/application"
	"marker-bot/internal/domain/port"
)

type Container struct {
	UserService *app.UserService
	ScanService *app.ScanService
}

func New(userRepo port.UserRepository, scanRepo port.ScanRepository, detector port.MarkerDetector, log zerolog.Logger) *Container {
	userService := app.NewUserService(userRepo)
	scanService := app.NewScanService(detector, scanRepo, log.With().Str("component", "scan").Logger())

	return &Container{
		UserService: userService,
		ScanService: scanService,
	}
}
