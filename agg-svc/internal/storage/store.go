package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"sop-platform/agg-svc/internal/domain"
)

const (
	// DailyTTL bounds how long per-day counters are kept.
	DailyTTL = 30 * 24 * time.Hour

	pendingStatus = "pending"
	scanBatch     = 100
)

// Key layout shared with the tenant-svc stats reader.
func DishesKey(restaurantID int) string {
	return fmt.Sprintf("stats:%d:dishes", restaurantID)
}

func DailyOrdersKey(restaurantID int, date string) string {
	return fmt.Sprintf("stats:%d:orders:%s", restaurantID, date)
}

func DailyRevenueKey(restaurantID int, date string) string {
	return fmt.Sprintf("stats:%d:revenue:%s", restaurantID, date)
}

func StatusKey(restaurantID int) string {
	return fmt.Sprintf("stats:%d:status", restaurantID)
}

func RatingsKey(restaurantID int) string {
	return fmt.Sprintf("stats:%d:ratings", restaurantID)
}

type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// RecordOrder counts one order for date, counts it as pending and adds its
// items to the dish popularity ranking. All writes go out in one MULTI/EXEC.
func (s *Store) RecordOrder(ctx context.Context, restaurantID int, date string, items []domain.OrderItem, total float64) error {
	ordersKey := DailyOrdersKey(restaurantID, date)
	revenueKey := DailyRevenueKey(restaurantID, date)

	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, item := range items {
			if item.Quantity <= 0 {
				continue
			}
			pipe.ZIncrBy(ctx, DishesKey(restaurantID), float64(item.Quantity), strconv.Itoa(item.DishID))
		}
		pipe.Incr(ctx, ordersKey)
		pipe.HIncrBy(ctx, StatusKey(restaurantID), pendingStatus, 1)
		pipe.IncrByFloat(ctx, revenueKey, total)
		pipe.Expire(ctx, ordersKey, DailyTTL)
		pipe.Expire(ctx, revenueKey, DailyTTL)
		return nil
	})
	return err
}

// Purge removes every counter of a deleted restaurant.
func (s *Store) Purge(ctx context.Context, restaurantID int) error {
	pattern := fmt.Sprintf("stats:%d:*", restaurantID)
	iter := s.rdb.Scan(ctx, 0, pattern, scanBatch).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.rdb.Del(ctx, keys...).Err()
}

func (s *Store) RecordStatus(ctx context.Context, restaurantID int, status string) error {
	return s.rdb.HIncrBy(ctx, StatusKey(restaurantID), status, 1).Err()
}

// RecordRating moves the approved-rating distribution by delta. A bucket never
// drops below zero.
func (s *Store) RecordRating(ctx context.Context, restaurantID, rating int, delta int64) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("rating %d out of range", rating)
	}
	key := RatingsKey(restaurantID)
	field := strconv.Itoa(rating)
	n, err := s.rdb.HIncrBy(ctx, key, field, delta).Result()
	if err != nil {
		return err
	}
	if n < 0 {
		return s.rdb.HSet(ctx, key, field, 0).Err()
	}
	return nil
}
