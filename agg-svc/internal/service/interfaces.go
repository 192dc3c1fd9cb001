package service

import (
	"context"

	"github.com/segmentio/kafka-go"

	"sop-platform/agg-svc/internal/domain"
	"sop-platform/agg-svc/internal/storage"
)

type StoreInterface interface {
	RecordOrder(ctx context.Context, restaurantID int, date string, items []domain.OrderItem, total float64) error
	RecordStatus(ctx context.Context, restaurantID int, status string) error
	RecordRating(ctx context.Context, restaurantID, rating int, delta int64) error
	Purge(ctx context.Context, restaurantID int) error
}

// MessageReader is the part of *kafka.Reader the consumer needs.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type ConsumerInterface interface {
	Start(ctx context.Context) error
	Process(ctx context.Context, event domain.Event) error
}

var (
	_ StoreInterface    = (*storage.Store)(nil)
	_ MessageReader     = (*kafka.Reader)(nil)
	_ ConsumerInterface = (*Consumer)(nil)
)
