package broker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/otcheredev/dicomweb-store/internal/config"
)

// sessionTimeout balances prompt failure detection against rebalance churn.
const sessionTimeout = 6 * time.Second

// Message is one fetched record with its explicit commit handle.
type Message struct {
	Payload []byte
	raw     kafka.Message
	reader  *kafka.Reader
}

// Commit marks the message processed. Commit is synchronous: the offset is
// on the broker when it returns. Uncommitted messages are redelivered.
func (m *Message) Commit(ctx context.Context) error {
	if err := m.reader.CommitMessages(ctx, m.raw); err != nil {
		return fmt.Errorf("commit offset %d: %w", m.raw.Offset, err)
	}
	return nil
}

// Consumer wraps a Kafka group reader with the platform's delivery policy:
// auto-commit disabled, offsets start at earliest, partition EOF is not an
// end-of-stream signal (Fetch simply blocks for more).
type Consumer struct {
	reader *kafka.Reader
}

// NewConsumer subscribes the group to topic.
func NewConsumer(cfg config.KafkaConfig, topic string) (*Consumer, error) {
	if cfg.Brokers == "" || topic == "" || cfg.ConsumerGroupID == "" {
		return nil, fmt.Errorf("kafka brokers, topic and consumer_group_id are required")
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        strings.Split(cfg.Brokers, ","),
		GroupID:        cfg.ConsumerGroupID,
		Topic:          topic,
		StartOffset:    kafka.FirstOffset,
		SessionTimeout: sessionTimeout,
		// CommitInterval zero keeps CommitMessages synchronous.
		CommitInterval: 0,
		MinBytes:       1,
		MaxBytes:       64 << 20,
	})
	return &Consumer{reader: reader}, nil
}

// Fetch blocks for the next message without committing it.
func (c *Consumer) Fetch(ctx context.Context) (*Message, error) {
	raw, err := c.reader.FetchMessage(ctx)
	if err != nil {
		return nil, err
	}
	return &Message{Payload: raw.Value, raw: raw, reader: c.reader}, nil
}

// Close releases the group membership.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
