// Package consumers hosts the broker-driven ingest workers. A message that
// cannot be decoded is committed and dropped (poison pill). The storage and
// state consumers do not commit a message that fails processing; the
// transcode consumer commits every decoded message, failed conversions
// included, after logging the failure.
package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/otcheredev/dicomweb-store/internal/broker"
	"github.com/otcheredev/dicomweb-store/internal/cache"
	"github.com/otcheredev/dicomweb-store/internal/models"
	"github.com/otcheredev/dicomweb-store/internal/repository"
)

const (
	// Flush whichever comes first: this many states or this much delay.
	batchSize    = 64
	batchTimeout = 250 * time.Millisecond
)

// StorageConsumer drains the ingest topic into the storage provider.
type StorageConsumer struct {
	consumer  *broker.Consumer
	repo      *repository.StateRepository
	cache     *cache.MetadataCache
	publisher broker.Publisher
	dedup     *broker.DedupSet
}

// NewStorageConsumer wires the storage path. publisher forwards persisted
// states onto the state topic and may be nil.
func NewStorageConsumer(consumer *broker.Consumer, repo *repository.StateRepository, mc *cache.MetadataCache, publisher broker.Publisher) *StorageConsumer {
	return &StorageConsumer{
		consumer:  consumer,
		repo:      repo,
		cache:     mc,
		publisher: publisher,
		dedup:     broker.NewDedupSet(1 << 16),
	}
}

type pendingState struct {
	state models.StateMeta
	msg   *broker.Message
}

// Run consumes until ctx is cancelled.
func (c *StorageConsumer) Run(ctx context.Context) error {
	var batch []pendingState
	var batchStart time.Time

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := c.flush(ctx, batch); err != nil {
			// Offsets stay put; the broker will redeliver the batch.
			log.Error().Err(err).Int("batch", len(batch)).Msg("state batch flush failed")
		}
		batch = batch[:0]
	}

	for {
		wait := batchTimeout
		if len(batch) > 0 {
			wait = time.Until(batchStart.Add(batchTimeout))
		}
		fetchCtx, cancel := context.WithTimeout(ctx, wait)
		msg, err := c.consumer.Fetch(fetchCtx)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				flush()
				return ctx.Err()
			}
			if errors.Is(err, context.DeadlineExceeded) {
				flush()
				continue
			}
			log.Error().Err(err).Msg("fetch from ingest topic failed")
			continue
		}

		var store models.StoreMeta
		if err := json.Unmarshal(msg.Payload, &store); err != nil {
			log.Warn().Err(err).Msg("dropping undecodable ingest message")
			messagesProcessed.WithLabelValues("storage", "poison").Inc()
			_ = msg.Commit(ctx)
			continue
		}
		if err := store.Validate(); err != nil {
			log.Warn().Err(err).Str("tenant_id", store.TenantID).Msg("dropping invalid ingest message")
			messagesProcessed.WithLabelValues("storage", "invalid").Inc()
			_ = msg.Commit(ctx)
			continue
		}

		key := store.TenantID + "_" + store.ImageInfo.SOPInstanceUID.String()
		if c.dedup.Seen(key) {
			messagesProcessed.WithLabelValues("storage", "duplicate").Inc()
			_ = msg.Commit(ctx)
			continue
		}

		if len(batch) == 0 {
			batchStart = time.Now()
		}
		batch = append(batch, pendingState{state: StateFromStore(&store), msg: msg})
		if len(batch) >= batchSize {
			flush()
		}
	}
}

// flush persists the batch, invalidates the touched studies, and commits
// every offset in it.
func (c *StorageConsumer) flush(ctx context.Context, batch []pendingState) error {
	states := make([]models.StateMeta, 0, len(batch))
	for i := range batch {
		states = append(states, batch[i].state)
	}

	if err := c.repo.SaveStateList(ctx, states); err != nil {
		return err
	}
	batchFlushes.Inc()

	// Forward the committed states so downstream mirrors stay current.
	// Best-effort: the rows are durable either way.
	if c.publisher != nil {
		if err := c.publisher.SendState(ctx, states); err != nil {
			log.Debug().Err(err).Msg("state forward failed")
		}
	}

	touched := map[[2]string]bool{}
	for i := range states {
		key := [2]string{states[i].TenantID.String(), states[i].StudyUID.String()}
		if !touched[key] {
			touched[key] = true
			c.cache.InvalidateStudy(ctx, key[0], key[1])
		}
	}

	for i := range batch {
		if err := c.commit(ctx, batch[i].msg); err != nil {
			return err
		}
	}
	messagesProcessed.WithLabelValues("storage", "ok").Add(float64(len(batch)))
	return nil
}

func (c *StorageConsumer) commit(ctx context.Context, msg *broker.Message) error {
	if err := msg.Commit(ctx); err != nil {
		log.Error().Err(err).Msg("offset commit failed")
		return err
	}
	return nil
}
