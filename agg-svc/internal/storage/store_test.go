package storage

import (
	"context"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sop-platform/agg-svc/internal/domain"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewStore(rdb), mr
}

func TestRecordOrder(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	items := []domain.OrderItem{
		{DishID: 1, Quantity: 2, Price: 25},
		{DishID: 3, Quantity: 1, Price: 20},
		{DishID: 9, Quantity: 0, Price: 5},
	}
	require.NoError(t, store.RecordOrder(ctx, 7, "2024-05-03", items, 70))
	require.NoError(t, store.RecordOrder(ctx, 7, "2024-05-03", items[:1], 50.5))

	score, err := mr.ZScore(DishesKey(7), "1")
	require.NoError(t, err)
	assert.Equal(t, 4.0, score)
	score, err = mr.ZScore(DishesKey(7), "3")
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)
	members, err := mr.ZMembers(DishesKey(7))
	require.NoError(t, err)
	assert.NotContains(t, members, "9")

	orders, err := mr.Get(DailyOrdersKey(7, "2024-05-03"))
	require.NoError(t, err)
	assert.Equal(t, "2", orders)
	revenue, err := mr.Get(DailyRevenueKey(7, "2024-05-03"))
	require.NoError(t, err)
	assert.Equal(t, "120.5", revenue)

	assert.Equal(t, "2", mr.HGet(StatusKey(7), "pending"))
	assert.Equal(t, DailyTTL, mr.TTL(DailyOrdersKey(7, "2024-05-03")))
	assert.Equal(t, DailyTTL, mr.TTL(DailyRevenueKey(7, "2024-05-03")))
	assert.False(t, mr.Exists(DishesKey(8)))
}

func TestRecordStatus(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordStatus(ctx, 1, "ready"))
	require.NoError(t, store.RecordStatus(ctx, 1, "ready"))
	require.NoError(t, store.RecordStatus(ctx, 1, "cancelled"))

	assert.Equal(t, "2", mr.HGet(StatusKey(1), "ready"))
	assert.Equal(t, "1", mr.HGet(StatusKey(1), "cancelled"))
}

func TestRecordRating(t *testing.T) {
	tests := []struct {
		name    string
		ops     []int64
		rating  int
		want    string
		wantErr bool
	}{
		{name: "approve twice", ops: []int64{1, 1}, rating: 5, want: "2"},
		{name: "approve then hide", ops: []int64{1, -1}, rating: 4, want: "0"},
		{name: "hide never goes negative", ops: []int64{-1}, rating: 3, want: "0"},
		{name: "out of range", ops: []int64{1}, rating: 6, wantErr: true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			store, mr := newTestStore(t)
			var err error
			for _, delta := range testCase.ops {
				err = store.RecordRating(context.Background(), 2, testCase.rating, delta)
			}
			if testCase.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.want, mr.HGet(RatingsKey(2), strconv.Itoa(testCase.rating)))
		})
	}
}

func TestPurge(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	items := []domain.OrderItem{{DishID: 1, Quantity: 1, Price: 10}}
	require.NoError(t, store.RecordOrder(ctx, 1, "2024-05-02", items, 10))
	require.NoError(t, store.RecordOrder(ctx, 1, "2024-05-03", items, 10))
	require.NoError(t, store.RecordRating(ctx, 1, 5, 1))
	require.NoError(t, store.RecordOrder(ctx, 11, "2024-05-03", items, 10))

	require.NoError(t, store.Purge(ctx, 1))

	for _, key := range mr.Keys() {
		assert.NotRegexp(t, `^stats:1:`, key)
	}
	assert.True(t, mr.Exists(DishesKey(11)))
	assert.True(t, mr.Exists(DailyOrdersKey(11, "2024-05-03")))

	require.NoError(t, store.Purge(ctx, 99))
}

func TestStoreUnavailable(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()

	assert.Error(t, store.RecordStatus(context.Background(), 1, "ready"))
	assert.Error(t, store.RecordOrder(context.Background(), 1, "2024-05-03", nil, 0))
}

func TestKeysMatchReaderLayout(t *testing.T) {
	assert.Equal(t, "stats:5:dishes", DishesKey(5))
	assert.Equal(t, "stats:5:orders:2024-05-03", DailyOrdersKey(5, "2024-05-03"))
	assert.Equal(t, "stats:5:revenue:2024-05-03", DailyRevenueKey(5, "2024-05-03"))
	assert.Equal(t, "stats:5:status", StatusKey(5))
	assert.Equal(t, "stats:5:ratings", RatingsKey(5))
}
