package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/TanakaNakamura/factory-erp-api/internal/config"
	"github.com/TanakaNakamura/factory-erp-api/internal/domain"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testKafkaConfig() *config.Config {
	return &config.Config{
		KafkaTopicOrders:    "erp.orders",
		KafkaTopicInventory: "erp.inventory",
	}
}

func newMockPublisher(t *testing.T) (*KafkaEventPublisher, *mocks.SyncProducer) {
	saramaCfg := mocks.NewTestConfig()
	saramaCfg.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, saramaCfg)
	return newKafkaEventPublisher(producer, testKafkaConfig(), zap.NewNop()), producer
}

func headerValue(message *sarama.ProducerMessage, key string) string {
	for _, h := range message.Headers {
		if string(h.Key) == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestKafkaEventPublisher_BuildMessage_RoutesByStream(t *testing.T) {
	publisher := newKafkaEventPublisher(nil, testKafkaConfig(), zap.NewNop())
	orderID := uuid.New()
	itemID := uuid.New()

	testCases := []struct {
		name      string
		event     Event
		topic     string
		eventType string
		key       string
	}{
		{"OrderCreated", OrderCreatedEvent{OrderID: orderID}, "erp.orders", "OrderCreated", orderID.String()},
		{"OrderStatusChanged", OrderStatusChangedEvent{OrderID: orderID.String()}, "erp.orders", "OrderStatusChanged", orderID.String()},
		{"OrderFulfilled", OrderFulfilledEvent{OrderID: orderID}, "erp.orders", "OrderFulfilled", orderID.String()},
		{"InventoryItemCreated", InventoryItemCreatedEvent{ItemID: itemID}, "erp.inventory", "InventoryItemCreated", itemID.String()},
		{"StockAdjusted", StockAdjustedEvent{ItemID: itemID}, "erp.inventory", "StockAdjusted", itemID.String()},
		{"StockReserved", StockReservedEvent{ItemID: itemID}, "erp.inventory", "StockReserved", itemID.String()},
		{"StockReleased", StockReleasedEvent{ItemID: itemID}, "erp.inventory", "StockReleased", itemID.String()},
		{"InventoryStateChanged", InventoryStateChangedEvent{ItemID: itemID}, "erp.inventory", "InventoryStateChanged", itemID.String()},
		{"InventoryDiscontinued", InventoryDiscontinuedEvent{ItemID: itemID}, "erp.inventory", "InventoryDiscontinued", itemID.String()},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			message, err := publisher.buildMessage(tc.event)
			require.NoError(t, err)
			assert.Equal(t, tc.topic, message.Topic)
			assert.Equal(t, tc.eventType, headerValue(message, "event-type"))
			assert.NotEmpty(t, headerValue(message, "event-id"))
			assert.NotEmpty(t, headerValue(message, "timestamp"))

			key, err := message.Key.Encode()
			require.NoError(t, err)
			assert.Equal(t, tc.key, string(key))
		})
	}
}

func TestKafkaEventPublisher_BuildMessage_MissingTopic(t *testing.T) {
	publisher := newKafkaEventPublisher(nil, &config.Config{KafkaTopicOrders: "erp.orders"}, zap.NewNop())

	_, err := publisher.buildMessage(StockReservedEvent{ItemID: uuid.New()})

	assert.Error(t, err)
}

func TestKafkaEventPublisher_Publish_SendsJSONPayload(t *testing.T) {
	publisher, producer := newMockPublisher(t)
	event := OrderStatusChangedEvent{
		OrderID:    uuid.New().String(),
		From:       domain.StatusPending,
		To:         domain.StatusApproved,
		OccurredAt: time.Now().UTC(),
	}

	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var decoded map[string]interface{}
		if err := json.Unmarshal(val, &decoded); err != nil {
			return err
		}
		if decoded["to"] != "approved" {
			return errors.New("unexpected target status in payload")
		}
		return nil
	})

	err := publisher.Publish(context.Background(), event)

	require.NoError(t, err)
	require.NoError(t, producer.Close())
}

func TestKafkaEventPublisher_Publish_RetriesThenFails(t *testing.T) {
	publisher, producer := newMockPublisher(t)
	brokerDown := errors.New("broker down")
	for i := 0; i < publishAttempts; i++ {
		producer.ExpectSendMessageAndFail(brokerDown)
	}

	err := publisher.Publish(context.Background(), StockAdjustedEvent{ItemID: uuid.New()})

	assert.Error(t, err)
	require.NoError(t, producer.Close())
}

func TestKafkaEventPublisher_Publish_RecoversOnRetry(t *testing.T) {
	publisher, producer := newMockPublisher(t)
	producer.ExpectSendMessageAndFail(errors.New("leader not available"))
	producer.ExpectSendMessageAndSucceed()

	err := publisher.Publish(context.Background(), InventoryItemCreatedEvent{ItemID: uuid.New()})

	assert.NoError(t, err)
	require.NoError(t, producer.Close())
}

func TestKafkaEventPublisher_Publish_CancelledContext(t *testing.T) {
	publisher, _ := newMockPublisher(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := publisher.Publish(ctx, InventoryItemCreatedEvent{ItemID: uuid.New()})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRequiredAcks(t *testing.T) {
	assert.Equal(t, sarama.NoResponse, requiredAcks("0"))
	assert.Equal(t, sarama.WaitForLocal, requiredAcks("1"))
	assert.Equal(t, sarama.WaitForAll, requiredAcks("all"))
	assert.Equal(t, sarama.WaitForAll, requiredAcks("bogus"))
}

func TestInMemoryEventPublisher_Publish(t *testing.T) {
	publisher := NewEventPublisher(zap.NewNop())

	require.NoError(t, publisher.Publish(context.Background(), StockReservedEvent{ItemID: uuid.New()}))
	require.NoError(t, publisher.Publish(context.Background(), OrderCreatedEvent{OrderID: uuid.New()}))

	assert.Equal(t, []string{"StockReserved", "OrderCreated"}, publisher.EventTypes())
	assert.Len(t, publisher.Events(), 2)
}
