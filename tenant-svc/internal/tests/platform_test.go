package tests

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"sop-platform/tenant-svc/internal/domain"
	"sop-platform/tenant-svc/internal/service"
	"sop-platform/tenant-svc/internal/storage"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, len(p.events))
	for i, e := range p.events {
		types[i] = e.Type
	}
	return types
}

// platform wires every service over one memory store, the way main does.
type platform struct {
	store        *storage.MemoryStore
	events       *recordingPublisher
	restaurants  *service.RestaurantService
	menu         *service.MenuService
	orders       *service.OrderService
	reservations *service.ReservationService
	ratings      *service.RatingService
}

func newPlatform(t *testing.T) *platform {
	t.Helper()
	store := storage.NewMemoryStore()
	gate := service.NewGate(domain.DefaultPlans())
	events := &recordingPublisher{}
	opts := service.Options{
		Events: events,
		Now:    func() time.Time { return testNow },
	}
	qr := service.DefaultQRGenerator{BaseURL: "https://sop.example/menu"}

	return &platform{
		store:        store,
		events:       events,
		restaurants:  service.NewRestaurantService(store, gate, nil, qr, opts),
		menu:         service.NewMenuService(store, gate),
		orders:       service.NewOrderService(store, gate, opts),
		reservations: service.NewReservationService(store, gate, opts),
		ratings:      service.NewRatingService(store, gate, opts),
	}
}

func (p *platform) register(t *testing.T, slug string, planID int) *domain.Restaurant {
	t.Helper()
	rest, err := p.restaurants.Register(context.Background(), service.Registration{
		Name:   slug,
		Slug:   slug,
		PlanID: planID,
	})
	require.NoError(t, err)
	return rest
}

func (p *platform) enableReservations(t *testing.T, restaurantID int, settings domain.ReservationSettings) {
	t.Helper()
	settings.IsEnabled = true
	_, err := p.restaurants.UpdateProfile(context.Background(), restaurantID, domain.RestaurantPatch{
		ReservationSettings: &settings,
	})
	require.NoError(t, err)
}

func (p *platform) addDish(t *testing.T, restaurantID int, name string, price float64) *domain.Dish {
	t.Helper()
	ctx := context.Background()
	categories, err := p.menu.ListCategories(ctx, restaurantID)
	require.NoError(t, err)

	var categoryID int
	if len(categories) == 0 {
		category := &domain.Category{RestaurantID: restaurantID, Name: "Mains"}
		require.NoError(t, p.menu.CreateCategory(ctx, category))
		categoryID = category.ID
	} else {
		categoryID = categories[0].ID
	}

	dish := &domain.Dish{RestaurantID: restaurantID, CategoryID: categoryID, Name: name, Price: price, IsAvailable: true}
	require.NoError(t, p.menu.CreateDish(ctx, dish))
	return dish
}

var errBrokerDown = errors.New("broker down")
