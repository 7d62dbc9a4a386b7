package consumers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messagesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_messages_processed_total",
		Help: "Messages handled per consumer, by outcome.",
	}, []string{"consumer", "outcome"})

	batchFlushes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_batch_flushes_total",
		Help: "State batches written by the storage consumer.",
	})

	transcodesDone = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_transcodes_total",
		Help: "Transcode attempts by outcome.",
	}, []string{"outcome"})
)
