package tests

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sop-platform/agg-svc/internal/domain"
	"sop-platform/agg-svc/internal/service"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) RecordOrder(ctx context.Context, restaurantID int, date string, items []domain.OrderItem, total float64) error {
	return m.Called(ctx, restaurantID, date, items, total).Error(0)
}

func (m *mockStore) RecordStatus(ctx context.Context, restaurantID int, status string) error {
	return m.Called(ctx, restaurantID, status).Error(0)
}

func (m *mockStore) RecordRating(ctx context.Context, restaurantID, rating int, delta int64) error {
	return m.Called(ctx, restaurantID, rating, delta).Error(0)
}

func (m *mockStore) Purge(ctx context.Context, restaurantID int) error {
	return m.Called(ctx, restaurantID).Error(0)
}

// fakeReader hands out queued messages and then blocks until ctx is done.
type fakeReader struct {
	mu       sync.Mutex
	messages []kafka.Message
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.messages) > 0 {
		m := r.messages[0]
		r.messages = r.messages[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func encode(t *testing.T, event domain.Event) kafka.Message {
	t.Helper()
	value, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Value: value}
}

func newConsumer(store *mockStore) *service.Consumer {
	c := service.NewConsumer(nil, store, time.UTC)
	c.Now = func() time.Time { return time.Date(2024, 5, 3, 12, 0, 0, 0, time.UTC) }
	return c
}

func TestConsumer_Process(t *testing.T) {
	items := []domain.OrderItem{{DishID: 1, DishName: "Hummus", Quantity: 2, Price: 25}}
	ts := time.Date(2024, 5, 1, 23, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		event   domain.Event
		setup   func(m *mockStore)
		wantErr bool
	}{
		{
			name:  "order created",
			event: domain.Event{Type: domain.EventOrderCreated, RestaurantID: 1, Items: items, Total: 50, Timestamp: ts},
			setup: func(m *mockStore) {
				m.On("RecordOrder", mock.Anything, 1, "2024-05-01", items, 50.0).Return(nil)
			},
		},
		{
			name:  "order without timestamp counts for today",
			event: domain.Event{Type: domain.EventOrderCreated, RestaurantID: 1, Items: items, Total: 50},
			setup: func(m *mockStore) {
				m.On("RecordOrder", mock.Anything, 1, "2024-05-03", items, 50.0).Return(nil)
			},
		},
		{
			name:  "status changed",
			event: domain.Event{Type: domain.EventOrderStatusChanged, RestaurantID: 2, Status: "ready"},
			setup: func(m *mockStore) {
				m.On("RecordStatus", mock.Anything, 2, "ready").Return(nil)
			},
		},
		{
			name:    "status changed without status",
			event:   domain.Event{Type: domain.EventOrderStatusChanged, RestaurantID: 2},
			setup:   func(m *mockStore) {},
			wantErr: true,
		},
		{
			name:  "rating approved",
			event: domain.Event{Type: domain.EventRatingApproved, RestaurantID: 3, Rating: 4},
			setup: func(m *mockStore) {
				m.On("RecordRating", mock.Anything, 3, 4, int64(1)).Return(nil)
			},
		},
		{
			name:  "rating hidden",
			event: domain.Event{Type: domain.EventRatingHidden, RestaurantID: 3, Rating: 4},
			setup: func(m *mockStore) {
				m.On("RecordRating", mock.Anything, 3, 4, int64(-1)).Return(nil)
			},
		},
		{
			name:  "store failure",
			event: domain.Event{Type: domain.EventRatingApproved, RestaurantID: 3, Rating: 5},
			setup: func(m *mockStore) {
				m.On("RecordRating", mock.Anything, 3, 5, int64(1)).Return(errors.New("redis down"))
			},
			wantErr: true,
		},
		{
			name:  "restaurant deleted",
			event: domain.Event{Type: domain.EventRestaurantDeleted, RestaurantID: 4},
			setup: func(m *mockStore) {
				m.On("Purge", mock.Anything, 4).Return(nil)
			},
		},
		{
			name:  "reservation events are not aggregated",
			event: domain.Event{Type: domain.EventReservationCreated, RestaurantID: 1},
			setup: func(m *mockStore) {},
		},
		{
			name:  "unknown type ignored",
			event: domain.Event{Type: "menu_published", RestaurantID: 1},
			setup: func(m *mockStore) {},
		},
		{
			name:    "missing restaurant",
			event:   domain.Event{Type: domain.EventOrderCreated},
			setup:   func(m *mockStore) {},
			wantErr: true,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			store := new(mockStore)
			testCase.setup(store)

			err := newConsumer(store).Process(context.Background(), testCase.event)
			if testCase.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			store.AssertExpectations(t)
		})
	}
}

func TestConsumer_DateUsesLocation(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Riyadh")
	require.NoError(t, err)

	store := new(mockStore)
	store.On("RecordOrder", mock.Anything, 1, "2024-05-02", mock.Anything, 10.0).Return(nil)

	c := service.NewConsumer(nil, store, loc)
	event := domain.Event{
		Type:         domain.EventOrderCreated,
		RestaurantID: 1,
		Total:        10,
		Timestamp:    time.Date(2024, 5, 1, 22, 0, 0, 0, time.UTC),
	}
	require.NoError(t, c.Process(context.Background(), event))
	store.AssertExpectations(t)
}

func TestConsumer_StartSkipsBadMessages(t *testing.T) {
	store := new(mockStore)
	done := make(chan struct{})
	store.On("RecordStatus", mock.Anything, 1, "ready").Return(nil).Once()
	store.On("RecordRating", mock.Anything, 1, 5, int64(1)).
		Return(errors.New("redis down")).Once()
	store.On("RecordStatus", mock.Anything, 1, "completed").
		Run(func(mock.Arguments) { close(done) }).
		Return(nil).Once()

	reader := &fakeReader{messages: []kafka.Message{
		encode(t, domain.Event{Type: domain.EventOrderStatusChanged, RestaurantID: 1, Status: "ready"}),
		{Value: []byte("{not json")},
		encode(t, domain.Event{Type: domain.EventRatingApproved, RestaurantID: 1, Rating: 5}),
		encode(t, domain.Event{Type: domain.EventOrderStatusChanged, RestaurantID: 1, Status: "completed"}),
	}}

	c := service.NewConsumer(reader, store, time.UTC)
	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() { result <- c.Start(ctx) }()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not reach the last message")
	}
	cancel()

	select {
	case err := <-result:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop after cancel")
	}
	store.AssertExpectations(t)
}
