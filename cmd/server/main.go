package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/otcheredev/dicomweb-store/internal/apilog"
	"github.com/otcheredev/dicomweb-store/internal/broker"
	"github.com/otcheredev/dicomweb-store/internal/cache"
	"github.com/otcheredev/dicomweb-store/internal/config"
	"github.com/otcheredev/dicomweb-store/internal/database"
	"github.com/otcheredev/dicomweb-store/internal/repository"
	"github.com/otcheredev/dicomweb-store/internal/server"
	"github.com/otcheredev/dicomweb-store/internal/storagepath"
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
	log.Info().Msg("Starting WADO-RS server")

	if err := database.Connect(cfg.MainDatabase); err != nil {
		log.Error().Err(err).Msg("Failed to connect to database")
		os.Exit(-2)
	}
	defer database.Close()

	// Cache is best-effort: without Redis the server degrades to the
	// in-process cache instead of refusing to start.
	var backend cache.Cache
	if cfg.Redis.URL != "" {
		redisCache, err := cache.NewRedisCache(cfg.Redis.URL, cfg.Redis.Password)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, using memory cache")
			backend = cache.NewMemoryCache()
		} else {
			backend = redisCache
			log.Info().Msg("Redis cache initialized")
		}
	} else {
		backend = cache.NewMemoryCache()
		log.Info().Msg("Memory cache initialized")
	}
	defer backend.Close()
	metaCache := cache.NewMetadataCache(backend)

	var publisher broker.Publisher
	if cfg.Kafka.Brokers != "" {
		kafkaPublisher := broker.NewKafkaPublisher(cfg.Kafka)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	layout := storagepath.Layout{
		DicomStore: cfg.LocalStorage.DicomStorePath,
		JSONStore:  cfg.LocalStorage.JSONStorePath,
	}

	stateRepo := repository.NewStateRepository()
	accessRepo := repository.NewAccessLogRepository()

	retrieveService := server.NewRetrieveService(stateRepo, metaCache, layout)
	wadoHandler := server.NewWADOHandler(retrieveService)
	stowHandler := server.NewSTOWHandler(layout, publisher)
	recorder := apilog.NewRecorder(accessRepo, publisher)

	router := server.BuildRouter(wadoHandler, stowHandler, recorder, "./static")

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 300 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
