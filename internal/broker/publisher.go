// Package broker carries the platform's messages: ingest payloads, state
// projections, image events, and access logs. Payloads are UTF-8 JSON.
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/otcheredev/dicomweb-store/internal/config"
	"github.com/otcheredev/dicomweb-store/internal/models"
)

// Publisher sends platform messages to their topics.
type Publisher interface {
	SendMessage(ctx context.Context, msg *models.StoreMeta) error
	SendBatch(ctx context.Context, msgs []models.StoreMeta) error
	SendState(ctx context.Context, states []models.StateMeta) error
	SendImage(ctx context.Context, images []models.ImageMeta) error
	SendWebAPI(ctx context.Context, events []models.AccessLogEvent) error
	Close() error
}

// KafkaPublisher writes to the four deployment topics.
type KafkaPublisher struct {
	store  *kafka.Writer
	state  *kafka.Writer
	image  *kafka.Writer
	webapi *kafka.Writer
}

func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
}

// NewKafkaPublisher builds writers for every configured topic.
func NewKafkaPublisher(cfg config.KafkaConfig) *KafkaPublisher {
	brokers := strings.Split(cfg.Brokers, ",")
	return &KafkaPublisher{
		store:  newWriter(brokers, cfg.Topic),
		state:  newWriter(brokers, cfg.StateTopic),
		image:  newWriter(brokers, cfg.ImageTopic),
		webapi: newWriter(brokers, cfg.WebAPITopic),
	}
}

func writeJSON[T any](ctx context.Context, w *kafka.Writer, key func(*T) string, items []T) error {
	if len(items) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(items))
	for i := range items {
		payload, err := json.Marshal(&items[i])
		if err != nil {
			return fmt.Errorf("marshal message for topic %s: %w", w.Topic, err)
		}
		msgs = append(msgs, kafka.Message{Key: []byte(key(&items[i])), Value: payload})
	}
	if err := w.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write to topic %s: %w", w.Topic, err)
	}
	return nil
}

// SendMessage publishes a single ingest payload.
func (p *KafkaPublisher) SendMessage(ctx context.Context, msg *models.StoreMeta) error {
	return p.SendBatch(ctx, []models.StoreMeta{*msg})
}

// SendBatch publishes ingest payloads keyed by study so one study stays on
// one partition.
func (p *KafkaPublisher) SendBatch(ctx context.Context, msgs []models.StoreMeta) error {
	return writeJSON(ctx, p.store, func(m *models.StoreMeta) string {
		return m.TenantID + "_" + m.StudyInfo.StudyInstanceUID.String()
	}, msgs)
}

// SendState publishes state projections.
func (p *KafkaPublisher) SendState(ctx context.Context, states []models.StateMeta) error {
	return writeJSON(ctx, p.state, func(m *models.StateMeta) string {
		return m.TenantID.String() + "_" + m.StudyUID.String()
	}, states)
}

// SendImage publishes frame/rendered-image events.
func (p *KafkaPublisher) SendImage(ctx context.Context, images []models.ImageMeta) error {
	return writeJSON(ctx, p.image, func(m *models.ImageMeta) string {
		return m.TenantID + "_" + m.SopUID
	}, images)
}

// SendWebAPI publishes access-log events.
func (p *KafkaPublisher) SendWebAPI(ctx context.Context, events []models.AccessLogEvent) error {
	return writeJSON(ctx, p.webapi, func(e *models.AccessLogEvent) string {
		return e.TenantID.String()
	}, events)
}

// Close flushes and closes all writers.
func (p *KafkaPublisher) Close() error {
	var firstErr error
	for _, w := range []*kafka.Writer{p.store, p.state, p.image, p.webapi} {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
