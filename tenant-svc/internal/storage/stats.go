package storage

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"sop-platform/tenant-svc/internal/domain"
	"sop-platform/tenant-svc/internal/service"
)

const topDishesLimit = 5

// Stat keys written by agg-svc.
func DishesKey(restaurantID int) string {
	return "stats:" + strconv.Itoa(restaurantID) + ":dishes"
}

func DailyOrdersKey(restaurantID int, date string) string {
	return "stats:" + strconv.Itoa(restaurantID) + ":orders:" + date
}

func DailyRevenueKey(restaurantID int, date string) string {
	return "stats:" + strconv.Itoa(restaurantID) + ":revenue:" + date
}

func StatusKey(restaurantID int) string {
	return "stats:" + strconv.Itoa(restaurantID) + ":status"
}

func RatingsKey(restaurantID int) string {
	return "stats:" + strconv.Itoa(restaurantID) + ":ratings"
}

// RedisStats reads the per-tenant aggregates. Days are computed in Location.
type RedisStats struct {
	Client   *redis.Client
	Location *time.Location
	Now      func() time.Time
}

func NewRedisStats(client *redis.Client, loc *time.Location) *RedisStats {
	if loc == nil {
		loc = time.UTC
	}
	return &RedisStats{Client: client, Location: loc, Now: time.Now}
}

func (s *RedisStats) AdvancedStats(ctx context.Context, restaurantID int, days int) (*domain.AdvancedStats, error) {
	stats := &domain.AdvancedStats{
		TopDishes:          []domain.DishScore{},
		Daily:              []domain.DailyStat{},
		StatusCounts:       map[string]int64{},
		RatingDistribution: map[string]int64{},
	}

	top, err := s.Client.ZRevRangeWithScores(ctx, DishesKey(restaurantID), 0, topDishesLimit-1).Result()
	if err != nil {
		return nil, err
	}
	for _, member := range top {
		dishID, err := strconv.Atoi(member.Member.(string))
		if err != nil {
			continue
		}
		stats.TopDishes = append(stats.TopDishes, domain.DishScore{DishID: dishID, Quantity: member.Score})
	}

	today := s.Now().In(s.Location)
	for i := days - 1; i >= 0; i-- {
		date := today.AddDate(0, 0, -i).Format("2006-01-02")
		orders, err := s.getInt(ctx, DailyOrdersKey(restaurantID, date))
		if err != nil {
			return nil, err
		}
		revenue, err := s.getFloat(ctx, DailyRevenueKey(restaurantID, date))
		if err != nil {
			return nil, err
		}
		stats.Daily = append(stats.Daily, domain.DailyStat{Date: date, Orders: orders, Revenue: revenue})
	}

	if stats.StatusCounts, err = s.hashCounts(ctx, StatusKey(restaurantID)); err != nil {
		return nil, err
	}
	if stats.RatingDistribution, err = s.hashCounts(ctx, RatingsKey(restaurantID)); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *RedisStats) getInt(ctx context.Context, key string) (int64, error) {
	n, err := s.Client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

func (s *RedisStats) getFloat(ctx context.Context, key string) (float64, error) {
	f, err := s.Client.Get(ctx, key).Float64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return f, err
}

func (s *RedisStats) hashCounts(ctx context.Context, key string) (map[string]int64, error) {
	raw, err := s.Client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(raw))
	for field, value := range raw {
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			continue
		}
		counts[field] = n
	}
	return counts, nil
}

var _ service.StatsReader = (*RedisStats)(nil)
