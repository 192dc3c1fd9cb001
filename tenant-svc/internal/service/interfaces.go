package service

import (
	"context"

	"sop-platform/tenant-svc/internal/domain"
)

// Store is the entity store. Every tenant-owned lookup takes the owning
// restaurant id and reports domain.ErrNotFound for records of other tenants.
// Update methods run fn on a copy inside the entity's critical section and
// persist it only when fn returns nil.
type Store interface {
	RestaurantRepository
	MenuRepository
	OrderRepository
	ReservationRepository
	RatingRepository
}

type RestaurantRepository interface {
	CreateRestaurant(ctx context.Context, rest *domain.Restaurant) error
	GetRestaurant(ctx context.Context, id int) (*domain.Restaurant, error)
	GetRestaurantBySlug(ctx context.Context, slug string) (*domain.Restaurant, error)
	ListRestaurants(ctx context.Context) ([]domain.Restaurant, error)
	UpdateRestaurant(ctx context.Context, id int, fn func(*domain.Restaurant) error) (*domain.Restaurant, error)
	// DeleteRestaurant removes the tenant and everything it owns atomically.
	DeleteRestaurant(ctx context.Context, id int) error

	GetPlatformSettings(ctx context.Context) (domain.PlatformSettings, error)
	UpdatePlatformSettings(ctx context.Context, fn func(*domain.PlatformSettings)) (domain.PlatformSettings, error)
}

type MenuRepository interface {
	CreateCategory(ctx context.Context, category *domain.Category) error
	GetCategory(ctx context.Context, restaurantID, categoryID int) (*domain.Category, error)
	ListCategories(ctx context.Context, restaurantID int) ([]domain.Category, error)
	UpdateCategory(ctx context.Context, restaurantID, categoryID int, fn func(*domain.Category) error) (*domain.Category, error)
	// DeleteCategory removes the category and its dishes atomically and
	// returns the number of dishes removed.
	DeleteCategory(ctx context.Context, restaurantID, categoryID int) (int, error)

	// CreateDish inserts the dish unless the tenant already holds maxDishes.
	CreateDish(ctx context.Context, dish *domain.Dish, maxDishes int) error
	GetDish(ctx context.Context, restaurantID, dishID int) (*domain.Dish, error)
	ListDishes(ctx context.Context, restaurantID int) ([]domain.Dish, error)
	UpdateDish(ctx context.Context, restaurantID, dishID int, fn func(*domain.Dish) error) (*domain.Dish, error)
	DeleteDish(ctx context.Context, restaurantID, dishID int) error
}

type OrderRepository interface {
	// CreateOrder assigns the id and the restaurant-scoped order number.
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, restaurantID, orderID int) (*domain.Order, error)
	// ListOrders returns newest first; an empty status means all.
	ListOrders(ctx context.Context, restaurantID int, status domain.OrderStatus) ([]domain.Order, error)
	UpdateOrder(ctx context.Context, restaurantID, orderID int, fn func(*domain.Order) error) (*domain.Order, error)
}

type ReservationRepository interface {
	CreateReservation(ctx context.Context, res *domain.Reservation) error
	GetReservation(ctx context.Context, restaurantID, reservationID int) (*domain.Reservation, error)
	ListReservations(ctx context.Context, restaurantID int, status domain.ReservationStatus) ([]domain.Reservation, error)
	FindReservationsByPhone(ctx context.Context, restaurantID int, phone string) ([]domain.Reservation, error)
	UpdateReservation(ctx context.Context, restaurantID, reservationID int, fn func(*domain.Reservation) error) (*domain.Reservation, error)
}

type RatingRepository interface {
	CreateRating(ctx context.Context, rating *domain.Rating) error
	GetRating(ctx context.Context, restaurantID, ratingID int) (*domain.Rating, error)
	ListRatings(ctx context.Context, restaurantID int, approvedOnly bool) ([]domain.Rating, error)
	UpdateRating(ctx context.Context, restaurantID, ratingID int, fn func(*domain.Rating) error) (*domain.Rating, error)
	// DeleteRating returns the removed record.
	DeleteRating(ctx context.Context, restaurantID, ratingID int) (*domain.Rating, error)
}

// EventPublisher delivers domain events after a mutation has been committed.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// StatsReader reads the aggregates maintained by agg-svc.
type StatsReader interface {
	AdvancedStats(ctx context.Context, restaurantID int, days int) (*domain.AdvancedStats, error)
}

// Assistant is the external text-generation collaborator.
type Assistant interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
