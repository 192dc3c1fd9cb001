package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"sop-platform/agg-svc/internal/domain"
	"sop-platform/logger"
)

const dateLayout = "2006-01-02"

type Consumer struct {
	Reader   MessageReader
	Store    StoreInterface
	Location *time.Location
	Now      func() time.Time
}

func NewConsumer(reader MessageReader, store StoreInterface, loc *time.Location) *Consumer {
	if loc == nil {
		loc = time.UTC
	}
	return &Consumer{
		Reader:   reader,
		Store:    store,
		Location: loc,
		Now:      time.Now,
	}
}

// Start reads events until ctx is cancelled. Undecodable messages and store
// failures are logged and skipped.
func (c *Consumer) Start(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Info("Starting aggregation consumer")
	for {
		message, err := c.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Error("Error reading message", zap.Error(err))
			continue
		}
		c.handle(ctx, message)
	}
}

func (c *Consumer) handle(ctx context.Context, message kafka.Message) {
	log := logger.FromContext(ctx)

	var event domain.Event
	if err := json.Unmarshal(message.Value, &event); err != nil {
		log.Warn("Skipping malformed message",
			zap.Int64("offset", message.Offset),
			zap.Error(err))
		return
	}
	if err := c.Process(ctx, event); err != nil {
		log.Error("Failed to aggregate event",
			zap.String("type", event.Type),
			zap.Int("restaurant_id", event.RestaurantID),
			zap.Error(err))
	}
}

// Process folds one event into the per-restaurant counters. Counters are
// cumulative: a status counts every order that entered it, including orders
// that moved on. Unknown event types are ignored.
func (c *Consumer) Process(ctx context.Context, event domain.Event) error {
	if event.RestaurantID <= 0 {
		return errors.New("event without restaurant id")
	}

	switch event.Type {
	case domain.EventOrderCreated:
		return c.Store.RecordOrder(ctx, event.RestaurantID, c.day(event.Timestamp), event.Items, event.Total)
	case domain.EventOrderStatusChanged:
		if event.Status == "" {
			return errors.New("status change without status")
		}
		return c.Store.RecordStatus(ctx, event.RestaurantID, event.Status)
	case domain.EventRatingApproved:
		return c.Store.RecordRating(ctx, event.RestaurantID, event.Rating, 1)
	case domain.EventRatingHidden:
		return c.Store.RecordRating(ctx, event.RestaurantID, event.Rating, -1)
	case domain.EventRestaurantDeleted:
		return c.Store.Purge(ctx, event.RestaurantID)
	}
	return nil
}

// day is the calendar date of ts in the consumer's location; events without a
// timestamp count for today.
func (c *Consumer) day(ts time.Time) string {
	if ts.IsZero() {
		ts = c.Now()
	}
	return ts.In(c.Location).Format(dateLayout)
}
