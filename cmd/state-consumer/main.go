// The state consumer replays state projections into the database. It does
// no file I/O; it exists so other sites can mirror state without shipping
// pixel data.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/otcheredev/dicomweb-store/internal/broker"
	"github.com/otcheredev/dicomweb-store/internal/config"
	"github.com/otcheredev/dicomweb-store/internal/consumers"
	"github.com/otcheredev/dicomweb-store/internal/database"
	"github.com/otcheredev/dicomweb-store/internal/repository"
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
	if cfg.Kafka.StateTopic == "" {
		log.Error().Msg("kafka.state_topic is required")
		os.Exit(-2)
	}

	logger.Init(cfg.Log.Level, cfg.Log.Format)

	if err := database.Connect(cfg.MainDatabase); err != nil {
		log.Error().Err(err).Msg("Failed to connect to database")
		os.Exit(-2)
	}
	defer database.Close()

	consumer, err := broker.NewConsumer(cfg.Kafka, cfg.Kafka.StateTopic)
	if err != nil {
		log.Error().Err(err).Str("topic", cfg.Kafka.StateTopic).Msg("Failed to subscribe")
		os.Exit(-1)
	}
	defer consumer.Close()
	log.Info().Str("topic", cfg.Kafka.StateTopic).Msg("Subscribed to state topic")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker := consumers.NewStateConsumer(consumer, repository.NewStateRepository())
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("State consumer stopped with error")
		os.Exit(-1)
	}
	log.Info().Msg("State consumer stopped")
}
