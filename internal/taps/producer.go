package taps

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"taplist/internal/shared/config"
	"taplist/pkg/logger"
)

// EventProducer publishes recorded taps to the analytics stream. Publishing
// is best-effort: a broker outage must never fail a tap.
type EventProducer interface {
	PublishTapRecorded(ctx context.Context, event *TapEvent) error
	Close() error
}

// tapStreamMessage is the wire shape consumed by the downstream batch
// aggregation jobs. Raw fingerprint material stays out of the stream.
type tapStreamMessage struct {
	TapID         string  `json:"tap_id"`
	TagID         string  `json:"tag_id"`
	BatchID       string  `json:"batch_id"`
	OccurredAt    string  `json:"occurred_at"`
	DeviceHint    string  `json:"device_hint"`
	IsDuplicate   bool    `json:"is_duplicate"`
	HadSession    bool    `json:"had_session"`
	LinkMethod    *string `json:"link_method,omitempty"`
	AnonVisitorID *string `json:"anon_visitor_id,omitempty"`
}

type kafkaProducer struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

// NewKafkaProducer creates a tap event producer against the configured
// brokers.
func NewKafkaProducer(cfg config.KafkaConfig, log *logger.Logger) (EventProducer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForLocal
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Timeout = 5 * time.Second

	// Hash partitioner keyed by tag id keeps each tag's stream ordered.
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &kafkaProducer{
		producer: producer,
		topic:    cfg.TapTopic,
		log:      log,
	}, nil
}

func (p *kafkaProducer) PublishTapRecorded(ctx context.Context, event *TapEvent) error {
	msg := tapStreamMessage{
		TapID:         event.ID.String(),
		TagID:         event.TagID.String(),
		BatchID:       event.BatchID.String(),
		OccurredAt:    event.OccurredAt.Format(time.RFC3339),
		DeviceHint:    string(event.DeviceHint),
		IsDuplicate:   event.IsDuplicate,
		HadSession:    event.TapperHadSession,
		AnonVisitorID: event.AnonVisitorID,
	}
	if event.LinkMethod != nil {
		method := string(*event.LinkMethod)
		msg.LinkMethod = &method
	}

	messageBytes, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal tap message: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(event.TagID.String()),
		Value:     sarama.ByteEncoder(messageBytes),
		Timestamp: event.OccurredAt,
	}

	if _, _, err := p.producer.SendMessage(message); err != nil {
		return fmt.Errorf("failed to send tap event to Kafka: %w", err)
	}

	return nil
}

func (p *kafkaProducer) Close() error {
	if p.producer != nil {
		if err := p.producer.Close(); err != nil {
			return fmt.Errorf("failed to close Kafka producer: %w", err)
		}
	}
	return nil
}

// noopProducer is used when the Kafka stream is disabled.
type noopProducer struct{}

// NewNoopProducer returns a producer that drops everything.
func NewNoopProducer() EventProducer {
	return noopProducer{}
}

func (noopProducer) PublishTapRecorded(ctx context.Context, event *TapEvent) error { return nil }
func (noopProducer) Close() error                                                  { return nil }
