package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metadataCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wado_metadata_cache_hits_total",
		Help: "Study metadata requests served from the cache.",
	})
	metadataCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wado_metadata_cache_misses_total",
		Help: "Study metadata requests that fell through to the database.",
	})
	negativeCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wado_negative_cache_hits_total",
		Help: "Requests absorbed by the negative-lookup sentinel.",
	})
	instancesServed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wado_instances_served_total",
		Help: "DICOM instances streamed to clients.",
	})
	onTheFlyTranscodes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wado_transcodes_total",
		Help: "Instances transcoded during retrieval.",
	})
)
