// The JSON worker pre-computes per-series metadata documents while the host
// is idle, so WADO-RS metadata requests can be served off disk.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/otcheredev/dicomweb-store/internal/config"
	"github.com/otcheredev/dicomweb-store/internal/database"
	"github.com/otcheredev/dicomweb-store/internal/repository"
	"github.com/otcheredev/dicomweb-store/internal/storagepath"
	"github.com/otcheredev/dicomweb-store/internal/worker"
	"github.com/otcheredev/dicomweb-store/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		os.Exit(-2)
	}
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("Invalid configuration")
		os.Exit(-2)
	}

	logger.Init(cfg.Log.Level, cfg.Log.Format)
	log.Info().Msg("Starting background JSON worker")

	if err := database.Connect(cfg.MainDatabase); err != nil {
		log.Error().Err(err).Msg("Failed to connect to database")
		os.Exit(-2)
	}
	defer database.Close()

	layout := storagepath.Layout{
		DicomStore: cfg.LocalStorage.DicomStorePath,
		JSONStore:  cfg.LocalStorage.JSONStorePath,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := worker.NewJSONWorker(repository.NewStateRepository(), layout)
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("JSON worker stopped with error")
		os.Exit(-1)
	}
	log.Info().Msg("JSON worker stopped")
}
