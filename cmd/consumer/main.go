// The storage consumer drains the ingest topic into the database and keeps
// the study caches coherent.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/otcheredev/dicomweb-store/internal/broker"
	"github.com/otcheredev/dicomweb-store/internal/cache"
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

	var backend cache.Cache
	if cfg.Redis.URL != "" {
		redisCache, err := cache.NewRedisCache(cfg.Redis.URL, cfg.Redis.Password)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, cache invalidation degraded to memory")
			backend = cache.NewMemoryCache()
		} else {
			backend = redisCache
		}
	} else {
		backend = cache.NewMemoryCache()
	}
	defer backend.Close()

	consumer, err := broker.NewConsumer(cfg.Kafka, cfg.Kafka.Topic)
	if err != nil {
		log.Error().Err(err).Str("topic", cfg.Kafka.Topic).Msg("Failed to subscribe")
		os.Exit(-1)
	}
	defer consumer.Close()
	log.Info().Str("topic", cfg.Kafka.Topic).Msg("Subscribed to ingest topic")

	var publisher broker.Publisher
	if cfg.Kafka.StateTopic != "" {
		kafkaPublisher := broker.NewKafkaPublisher(cfg.Kafka)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker := consumers.NewStorageConsumer(consumer, repository.NewStateRepository(), cache.NewMetadataCache(backend), publisher)
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("Storage consumer stopped with error")
		os.Exit(-1)
	}
	log.Info().Msg("Storage consumer stopped")
}
