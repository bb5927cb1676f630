package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/TanakaNakamura/factory-erp-api/internal/config"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	publishAttempts = 3
	publishTimeout  = 5 * time.Second
	baseBackoff     = 100 * time.Millisecond
)

// KafkaEventPublisher implements EventPublisher using Kafka
type KafkaEventPublisher struct {
	producer sarama.SyncProducer
	logger   *zap.Logger
	topics   map[Stream]string
}

// NewKafkaEventPublisher creates a new Kafka event publisher
func NewKafkaEventPublisher(cfg *config.Config, logger *zap.Logger) (*KafkaEventPublisher, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.ClientID = cfg.KafkaClientID
	saramaCfg.Producer.Return.Successes = true
	saramaCfg.Producer.Retry.Max = cfg.KafkaRetries
	saramaCfg.Producer.RequiredAcks = requiredAcks(cfg.KafkaAcks)
	if saramaCfg.Producer.RequiredAcks == sarama.WaitForAll {
		saramaCfg.Producer.Idempotent = true
		saramaCfg.Net.MaxOpenRequests = 1
	}

	producer, err := sarama.NewSyncProducer(cfg.KafkaBrokers, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return newKafkaEventPublisher(producer, cfg, logger), nil
}

func newKafkaEventPublisher(producer sarama.SyncProducer, cfg *config.Config, logger *zap.Logger) *KafkaEventPublisher {
	return &KafkaEventPublisher{
		producer: producer,
		logger:   logger,
		topics: map[Stream]string{
			StreamOrders:    cfg.KafkaTopicOrders,
			StreamInventory: cfg.KafkaTopicInventory,
		},
	}
}

func requiredAcks(acks string) sarama.RequiredAcks {
	switch acks {
	case "0":
		return sarama.NoResponse
	case "1":
		return sarama.WaitForLocal
	default:
		return sarama.WaitForAll
	}
}

func (p *KafkaEventPublisher) topicFor(event Event) (string, error) {
	topic, ok := p.topics[event.Stream()]
	if !ok || topic == "" {
		return "", fmt.Errorf("no topic configured for %s events", event.Stream())
	}
	return topic, nil
}

func (p *KafkaEventPublisher) buildMessage(event Event) (*sarama.ProducerMessage, error) {
	topic, err := p.topicFor(event)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(event.EventType())},
			{Key: []byte("event-id"), Value: []byte(uuid.New().String())},
			{Key: []byte("timestamp"), Value: []byte(time.Now().UTC().Format(time.RFC3339))},
		},
	}
	if key := event.PartitionKey(); key != "" {
		message.Key = sarama.StringEncoder(key)
	}
	return message, nil
}

// Publish publishes an event to Kafka with retries and exponential backoff
func (p *KafkaEventPublisher) Publish(ctx context.Context, event Event) error {
	message, err := p.buildMessage(event)
	if err != nil {
		return err
	}

	for attempt := 0; attempt < publishAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("context cancelled: %w", err)
		}

		err := p.send(ctx, message)
		if err == nil {
			return nil
		}
		p.logger.Warn("Failed to publish event to Kafka, retrying",
			zap.String("topic", message.Topic),
			zap.String("event-type", event.EventType()),
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", publishAttempts),
		)

		if attempt < publishAttempts-1 {
			delay := baseBackoff * time.Duration(1<<uint(attempt))
			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled during backoff: %w", ctx.Err())
			case <-time.After(delay):
			}
		}
	}

	return fmt.Errorf("failed to publish %s to Kafka after %d attempts", event.EventType(), publishAttempts)
}

// send runs one SendMessage bounded by publishTimeout
func (p *KafkaEventPublisher) send(ctx context.Context, message *sarama.ProducerMessage) error {
	sendCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		partition, offset, err := p.producer.SendMessage(message)
		if err == nil {
			p.logger.Debug("Event published to Kafka",
				zap.String("topic", message.Topic),
				zap.Int32("partition", partition),
				zap.Int64("offset", offset),
			)
		}
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-sendCtx.Done():
		return fmt.Errorf("timeout publishing event to Kafka: %w", sendCtx.Err())
	}
}

// Close closes the Kafka producer
func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
