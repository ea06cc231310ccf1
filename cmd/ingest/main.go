package main

import (
	"context"
	"errors"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/Temutjin2k/taxi-ingest/config"
	"github.com/Temutjin2k/taxi-ingest/internal/app"
	"github.com/Temutjin2k/taxi-ingest/pkg/logger"
	wrap "github.com/Temutjin2k/taxi-ingest/pkg/logger/wrapper"
)

func main() {
	os.Exit(run())
}

func run() int {
	flags, err := config.ParseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			config.PrintHelp(flags)
			return 0
		}
		config.PrintHelp(nil)
		return 2
	}
	if flags.Help {
		config.PrintHelp(flags)
		return 0
	}

	ctx := context.Background()
	log := logger.InitLogger("", logger.LevelInfo)

	cfg, err := config.NewConfig(flags)
	if err != nil {
		log.Error(ctx, "failed to configure application", err)
		config.PrintHelp(flags)
		return 1
	}

	cfg.RunID = uuid.NewString()
	ctx = wrap.WithRunID(ctx, cfg.RunID)

	level := cfg.Log.Level
	if !logger.ValidateLogLevel(level) {
		level = logger.LevelInfo
	}
	log = logger.InitLogger(cfg.Mode.String(), level)

	// Printing configuration
	config.PrintConfig(ctx, cfg, log)

	// Creating application
	application, err := app.NewApplication(ctx, *cfg, log)
	if err != nil {
		log.Error(logger.ErrorCtx(ctx, err), "failed to init application", err)
		return 1
	}

	// Running the application
	if err = application.Run(ctx); err != nil {
		return 1
	}
	return 0
}
