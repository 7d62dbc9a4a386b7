// The transcode consumer rewrites stored instances whose transfer syntax a
// browser viewer cannot decode, replacing each file in place.
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
	if cfg.Kafka.Topic == "" {
		log.Error().Msg("kafka.topic is required")
		os.Exit(-2)
	}

	logger.Init(cfg.Log.Level, cfg.Log.Format)

	if err := database.Connect(cfg.MainDatabase); err != nil {
		log.Error().Err(err).Msg("Failed to connect to database")
		os.Exit(-2)
	}
	defer database.Close()

	consumer, err := broker.NewConsumer(cfg.Kafka, cfg.Kafka.Topic)
	if err != nil {
		log.Error().Err(err).Str("topic", cfg.Kafka.Topic).Msg("Failed to subscribe")
		os.Exit(-1)
	}
	defer consumer.Close()
	log.Info().Str("topic", cfg.Kafka.Topic).Msg("Subscribed to transcode topic")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker := consumers.NewTranscodeConsumer(consumer, repository.NewStateRepository())
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("Transcode consumer stopped with error")
		os.Exit(-1)
	}
	log.Info().Msg("Transcode consumer stopped")
}
