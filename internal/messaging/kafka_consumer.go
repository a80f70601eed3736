package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/OrtalNisim/PX-OMS/internal/models"
	"github.com/OrtalNisim/PX-OMS/internal/service"
)

// KafkaConsumer consumes hourly performance windows from Kafka and feeds
// them through the margin optimizer
type KafkaConsumer struct {
	reader    *kafka.Reader
	processor service.WindowProcessor
	logger    zerolog.Logger
}

// KafkaConsumerConfig holds Kafka consumer configuration
type KafkaConsumerConfig struct {
	Brokers []string // e.g., ["localhost:9092"]
	Topic   string   // e.g., "performance_windows"
	GroupID string   // e.g., "margin-optimizer"
}

// NewKafkaConsumer creates a new Kafka consumer
func NewKafkaConsumer(
	config KafkaConsumerConfig,
	processor service.WindowProcessor,
	logger zerolog.Logger,
) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        config.Brokers,
		Topic:          config.Topic,
		GroupID:        config.GroupID,
		MinBytes:       1e3,  // 1KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: 1000, // Commit every 1 second
	})

	return &KafkaConsumer{
		reader:    reader,
		processor: processor,
		logger:    logger.With().Str("component", "kafka_consumer").Logger(),
	}
}

// Start begins consuming messages from Kafka
func (c *KafkaConsumer) Start(ctx context.Context) error {
	c.logger.Info().
		Str("topic", c.reader.Config().Topic).
		Str("group_id", c.reader.Config().GroupID).
		Msg("started consuming from Kafka")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info().Msg("stopping Kafka consumer")
			return c.reader.Close()

		default:
			// Read message
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if err == context.Canceled {
					return nil
				}
				c.logger.Error().Err(err).Msg("failed to fetch message")
				continue
			}

			// Process message
			if err := c.processMessage(ctx, msg); err != nil {
				c.logger.Error().
					Err(err).
					Int64("offset", msg.Offset).
					Str("key", string(msg.Key)).
					Msg("failed to process message")
				// Don't commit if processing failed
				continue
			}

			// Commit message
			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				c.logger.Error().Err(err).Msg("failed to commit message")
			}
		}
	}
}

// processMessage processes a single Kafka message
func (c *KafkaConsumer) processMessage(ctx context.Context, msg kafka.Message) error {
	// Parse message
	var kafkaMsg models.KafkaWindowBatchMessage
	if err := json.Unmarshal(msg.Value, &kafkaMsg); err != nil {
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}

	c.logger.Debug().
		Int("window_count", len(kafkaMsg.Windows)).
		Str("batch_id", kafkaMsg.BatchID).
		Msg("processing performance window batch")

	// Windows arrive oldest first and each one moves the optimizer state,
	// so they must be processed in order
	applied := 0
	for i := range kafkaMsg.Windows {
		record, err := c.processor.Process(ctx, kafkaMsg.Windows[i])
		if err != nil {
			if record == nil {
				// No decision was persisted, so the message is safe to retry
				return fmt.Errorf("failed to process window: %w", err)
			}
			// The decision is already persisted. A retry would ingest the
			// window a second time, so an apply failure still commits.
			c.logger.Warn().
				Err(err).
				Float64("margin", kafkaMsg.Windows[i].Margin).
				Str("batch_id", kafkaMsg.BatchID).
				Msg("window processed but margin apply failed")
			continue
		}
		applied++
		c.logger.Debug().
			Str("outcome", record.Outcome).
			Float64("next_margin", record.NextMargin).
			Msg("window processed")
	}

	c.logger.Info().
		Int("window_count", len(kafkaMsg.Windows)).
		Int("applied_count", applied).
		Str("batch_id", kafkaMsg.BatchID).
		Msg("processed performance window batch")

	return nil
}

// Close closes the Kafka reader
func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}
