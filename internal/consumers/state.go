package consumers

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/otcheredev/dicomweb-store/internal/broker"
	"github.com/otcheredev/dicomweb-store/internal/models"
	"github.com/otcheredev/dicomweb-store/internal/repository"
)

// StateConsumer replays state projections into the database. Unlike the
// storage consumer it touches no files and keeps no batch: state messages
// already arrive batched.
type StateConsumer struct {
	consumer *broker.Consumer
	repo     *repository.StateRepository
}

// NewStateConsumer wires the state path.
func NewStateConsumer(consumer *broker.Consumer, repo *repository.StateRepository) *StateConsumer {
	return &StateConsumer{consumer: consumer, repo: repo}
}

// Run consumes until ctx is cancelled.
func (c *StateConsumer) Run(ctx context.Context) error {
	for {
		msg, err := c.consumer.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Error().Err(err).Msg("fetch from state topic failed")
			continue
		}

		var states []models.StateMeta
		if err := json.Unmarshal(msg.Payload, &states); err != nil {
			// A single state object is also accepted.
			var single models.StateMeta
			if err := json.Unmarshal(msg.Payload, &single); err != nil {
				log.Warn().Err(err).Msg("dropping undecodable state message")
				messagesProcessed.WithLabelValues("state", "poison").Inc()
				_ = msg.Commit(ctx)
				continue
			}
			states = []models.StateMeta{single}
		}

		if err := c.repo.SaveStateList(ctx, states); err != nil {
			log.Error().Err(err).Int("states", len(states)).Msg("state save failed; leaving offset for redelivery")
			messagesProcessed.WithLabelValues("state", "error").Inc()
			continue
		}

		if err := msg.Commit(ctx); err != nil {
			log.Error().Err(err).Msg("offset commit failed")
			continue
		}
		messagesProcessed.WithLabelValues("state", "ok").Inc()
	}
}
