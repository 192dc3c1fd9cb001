package storage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"sop-platform/tenant-svc/internal/domain"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	messages []kafka.Message
	err      error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func TestKafkaPublisherPublish(t *testing.T) {
	writer := &recordingWriter{}
	publisher := NewKafkaPublisher(writer)
	event := domain.Event{
		Type:         domain.EventOrderCreated,
		RestaurantID: 12,
		OrderID:      40,
		Status:       "pending",
		Total:        30,
		Items:        []domain.OrderItem{{DishID: 1, DishName: "Hummus", Quantity: 2, Price: 15}},
		Timestamp:    time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}

	require.NoError(t, publisher.Publish(context.Background(), event))
	require.Len(t, writer.messages, 1)
	assert.Equal(t, "12", string(writer.messages[0].Key))

	var decoded domain.Event
	require.NoError(t, json.Unmarshal(writer.messages[0].Value, &decoded))
	assert.Equal(t, event, decoded)
}

func TestKafkaPublisherWriteError(t *testing.T) {
	publisher := NewKafkaPublisher(&recordingWriter{err: errors.New("broker down")})

	err := publisher.Publish(context.Background(), domain.Event{Type: domain.EventRatingApproved, RestaurantID: 1})
	assert.EqualError(t, err, "broker down")
}
