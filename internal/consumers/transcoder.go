package consumers

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/otcheredev/dicomweb-store/internal/broker"
	"github.com/otcheredev/dicomweb-store/internal/models"
	"github.com/otcheredev/dicomweb-store/internal/repository"
	"github.com/otcheredev/dicomweb-store/internal/transcode"
)

// TranscodeConsumer converts stored instances whose transfer syntax a
// browser viewer cannot decode. Codec failures are acknowledged with a log
// so a stubborn file never blocks its partition; the instance simply stays
// untranscoded.
type TranscodeConsumer struct {
	consumer *broker.Consumer
	repo     *repository.StateRepository
}

// NewTranscodeConsumer wires the transcode path.
func NewTranscodeConsumer(consumer *broker.Consumer, repo *repository.StateRepository) *TranscodeConsumer {
	return &TranscodeConsumer{consumer: consumer, repo: repo}
}

// Run consumes until ctx is cancelled.
func (c *TranscodeConsumer) Run(ctx context.Context) error {
	for {
		msg, err := c.consumer.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Error().Err(err).Msg("fetch from transcode topic failed")
			continue
		}

		var store models.StoreMeta
		if err := json.Unmarshal(msg.Payload, &store); err != nil {
			log.Warn().Err(err).Msg("dropping undecodable transcode message")
			messagesProcessed.WithLabelValues("transcode", "poison").Inc()
			_ = msg.Commit(ctx)
			continue
		}

		c.handle(ctx, &store)

		if err := msg.Commit(ctx); err != nil {
			log.Error().Err(err).Msg("offset commit failed")
		}
	}
}

// handle converts one instance in place and records the new syntax. All
// failures are terminal for the message.
func (c *TranscodeConsumer) handle(ctx context.Context, store *models.StoreMeta) {
	sopUID := store.ImageInfo.SOPInstanceUID.String()

	if transcode.IsCornerstoneSupported(store.TransferSyntaxUID) {
		messagesProcessed.WithLabelValues("transcode", "skip").Inc()
		return
	}

	dst := store.FilePath + ".rle"
	err := transcode.Convert(store.FilePath, store.FileSize, dst, transcode.RLELossless, true)
	if err != nil {
		var cs *transcode.ChangeStatus
		if errors.As(err, &cs) {
			log.Error().Err(err).Str("sop_uid", sopUID).Str("path", store.FilePath).Msg("transcode failed; instance left as stored")
		} else {
			log.Error().Err(err).Str("sop_uid", sopUID).Msg("unexpected transcode failure")
		}
		transcodesDone.WithLabelValues("failed").Inc()
		return
	}

	if err := c.repo.UpdateTransferSyntax(ctx, store.TenantID, sopUID, transcode.RLELossless); err != nil {
		log.Error().Err(err).Str("sop_uid", sopUID).Msg("recording new transfer syntax failed")
		transcodesDone.WithLabelValues("db_failed").Inc()
		return
	}
	transcodesDone.WithLabelValues("ok").Inc()
	log.Info().Str("sop_uid", sopUID).Str("to", transcode.RLELossless).Msg("instance transcoded")
}
