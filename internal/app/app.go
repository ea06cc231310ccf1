package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/Temutjin2k/taxi-ingest/config"
	"github.com/Temutjin2k/taxi-ingest/internal/app/jobs"
	"github.com/Temutjin2k/taxi-ingest/internal/domain/types"
	"github.com/Temutjin2k/taxi-ingest/pkg/logger"
)

var (
	ErrServiceNotInitialized = errors.New("job not initialized")
)

type Service interface {
	Start(ctx context.Context) error
}

type App struct {
	mode    types.JobMode
	service Service

	cfg config.Config
	log logger.Logger
}

// NewApplication builds the job selected by --mode together with every client it needs.
func NewApplication(ctx context.Context, cfg config.Config, log logger.Logger) (*App, error) {
	app := &App{
		mode: cfg.Mode,
		cfg:  cfg,
		log:  log,
	}

	if err := app.initService(ctx, app.mode); err != nil {
		return nil, err
	}

	return app, nil
}

func (a *App) Run(ctx context.Context) error {
	if a.service == nil {
		return ErrServiceNotInitialized
	}

	return a.service.Start(ctx)
}

func (a *App) initService(ctx context.Context, mode types.JobMode) error {
	var (
		service Service
		err     error
	)
	switch mode {
	case types.PostgresMode:
		service, err = jobs.NewPostgres(ctx, a.cfg, a.log)
	case types.LakeMode:
		service, err = jobs.NewLake(ctx, a.cfg, a.log)
	case types.WarehouseMode:
		service, err = jobs.NewWarehouse(ctx, a.cfg, a.log)
	case types.TripsMode:
		service, err = jobs.NewTrips(ctx, a.cfg, a.log)
	default:
		return fmt.Errorf("%w: %q", types.ErrInvalidMode, mode)
	}

	if err != nil {
		return fmt.Errorf("failed to init %s job: %w", mode, err)
	}

	a.service = service

	return nil
}
