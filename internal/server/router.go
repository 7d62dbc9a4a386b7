package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/otcheredev/dicomweb-store/internal/apilog"
	"github.com/otcheredev/dicomweb-store/internal/middleware"
)

// BuildRouter assembles the HTTP surface: WADO-RS retrieval, STOW-RS
// ingress, liveness, metrics, and static assets.
func BuildRouter(wado *WADOHandler, stow *STOWHandler, recorder *apilog.Recorder, staticDir string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Compress(5))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders:   []string{"Authorization", "Accept", "Content-Type", "X-Tenant-ID"},
		ExposedHeaders:   []string{"Content-Length", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Probes and metrics stay outside tenancy and audit.
	r.Get("/echo", Echo)
	r.Get("/health", Health)
	r.Get("/ready", Ready)
	r.Handle("/metrics", promhttp.Handler())

	if staticDir != "" {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir)))
		r.Get("/static/*", fs.ServeHTTP)
	}

	r.Route("/wado-rs", func(r chi.Router) {
		r.Use(middleware.TenantID)
		r.Use(middleware.VerifiedClaims)
		r.Use(recorder.Middleware)

		r.Get("/studies/{studyUID}", wado.RetrieveStudy)
		r.Get("/studies/{studyUID}/metadata", wado.RetrieveStudyMetadata)
		r.Get("/studies/{studyUID}/series/{seriesUID}", wado.RetrieveSeries)
		r.Get("/studies/{studyUID}/series/{seriesUID}/metadata", wado.RetrieveSeriesMetadata)
		r.Get("/studies/{studyUID}/series/{seriesUID}/instances/{instanceUID}", wado.RetrieveInstance)
		r.Get("/studies/{studyUID}/series/{seriesUID}/instances/{instanceUID}/metadata", wado.RetrieveInstanceMetadata)
		r.Get("/studies/{studyUID}/series/{seriesUID}/instances/{instanceUID}/frames/{frameList}", wado.RetrieveFrames)
	})

	r.Route("/stow-rs", func(r chi.Router) {
		r.Use(middleware.TenantID)
		r.Use(middleware.VerifiedClaims)
		r.Use(recorder.Middleware)

		r.Post("/studies", stow.Store)
		r.Post("/studies/{studyUID}", stow.Store)
	})

	return r
}
