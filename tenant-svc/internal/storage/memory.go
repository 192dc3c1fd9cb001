package storage

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"sop-platform/tenant-svc/internal/domain"
	"sop-platform/tenant-svc/internal/service"
)

const firstOrderNumber = 1001

// partition holds everything one tenant owns. Its lock covers the restaurant
// record and all child collections, so cascades are atomic and readers of one
// tenant never wait on writers of another.
type partition struct {
	mu           sync.RWMutex
	deleted      bool
	restaurant   domain.Restaurant
	categories   map[int]domain.Category
	dishes       map[int]domain.Dish
	orders       map[int]domain.Order
	reservations map[int]domain.Reservation
	ratings      map[int]domain.Rating
	orderSeq     int
}

func newPartition(rest domain.Restaurant) *partition {
	return &partition{
		restaurant:   rest,
		categories:   make(map[int]domain.Category),
		dishes:       make(map[int]domain.Dish),
		orders:       make(map[int]domain.Order),
		reservations: make(map[int]domain.Reservation),
		ratings:      make(map[int]domain.Rating),
		orderSeq:     firstOrderNumber - 1,
	}
}

// MemoryStore is the in-process entity store. The index lock is held only to
// resolve a restaurant id or slug to its partition; lock order is always index
// before partition.
type MemoryStore struct {
	mu         sync.RWMutex
	partitions map[int]*partition
	slugs      map[string]int

	settingsMu sync.RWMutex
	settings   domain.PlatformSettings

	lastID atomic.Int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		partitions: make(map[int]*partition),
		slugs:      make(map[string]int),
		settings:   domain.DefaultPlatformSettings(),
	}
}

var _ service.Store = (*MemoryStore)(nil)

func (s *MemoryStore) nextID() int {
	return int(s.lastID.Add(1))
}

func (s *MemoryStore) observeID(id int) {
	for {
		cur := s.lastID.Load()
		if int64(id) <= cur || s.lastID.CompareAndSwap(cur, int64(id)) {
			return
		}
	}
}

func (s *MemoryStore) partition(restaurantID int) *partition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.partitions[restaurantID]
}

// read runs fn under the tenant's read lock. missing is returned when the
// tenant does not exist.
func (s *MemoryStore) read(restaurantID int, missing error, fn func(p *partition) error) error {
	p := s.partition(restaurantID)
	if p == nil {
		return missing
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.deleted {
		return missing
	}
	return fn(p)
}

func (s *MemoryStore) write(restaurantID int, missing error, fn func(p *partition) error) error {
	p := s.partition(restaurantID)
	if p == nil {
		return missing
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.deleted {
		return missing
	}
	return fn(p)
}

func (s *MemoryStore) CreateRestaurant(_ context.Context, rest *domain.Restaurant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.slugs[rest.Slug]; taken {
		return fmt.Errorf("%w: slug %q already taken", domain.ErrConflict, rest.Slug)
	}
	rest.ID = s.nextID()
	if rest.CreatedAt.IsZero() {
		rest.CreatedAt = time.Now().UTC()
	}
	s.partitions[rest.ID] = newPartition(cloneRestaurant(*rest))
	s.slugs[rest.Slug] = rest.ID
	return nil
}

func (s *MemoryStore) GetRestaurant(_ context.Context, id int) (*domain.Restaurant, error) {
	var rest domain.Restaurant
	err := s.read(id, domain.ErrNotFound, func(p *partition) error {
		rest = cloneRestaurant(p.restaurant)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rest, nil
}

func (s *MemoryStore) GetRestaurantBySlug(ctx context.Context, slug string) (*domain.Restaurant, error) {
	s.mu.RLock()
	id, ok := s.slugs[slug]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s.GetRestaurant(ctx, id)
}

func (s *MemoryStore) ListRestaurants(_ context.Context) ([]domain.Restaurant, error) {
	s.mu.RLock()
	parts := make([]*partition, 0, len(s.partitions))
	for _, p := range s.partitions {
		parts = append(parts, p)
	}
	s.mu.RUnlock()

	restaurants := make([]domain.Restaurant, 0, len(parts))
	for _, p := range parts {
		p.mu.RLock()
		if !p.deleted {
			restaurants = append(restaurants, cloneRestaurant(p.restaurant))
		}
		p.mu.RUnlock()
	}
	sort.Slice(restaurants, func(i, j int) bool { return restaurants[i].ID < restaurants[j].ID })
	return restaurants, nil
}

func (s *MemoryStore) UpdateRestaurant(_ context.Context, id int, fn func(*domain.Restaurant) error) (*domain.Restaurant, error) {
	var updated domain.Restaurant
	err := s.write(id, domain.ErrNotFound, func(p *partition) error {
		draft := cloneRestaurant(p.restaurant)
		if err := fn(&draft); err != nil {
			return err
		}
		if draft.ID != id || draft.Slug != p.restaurant.Slug {
			return fmt.Errorf("%w: id and slug are immutable", domain.ErrInvalidOperation)
		}
		p.restaurant = draft
		updated = cloneRestaurant(draft)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *MemoryStore) DeleteRestaurant(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.partitions[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.mu.Lock()
	p.deleted = true
	p.categories, p.dishes, p.orders, p.reservations, p.ratings = nil, nil, nil, nil, nil
	p.mu.Unlock()

	delete(s.slugs, p.restaurant.Slug)
	delete(s.partitions, id)
	return nil
}

func (s *MemoryStore) GetPlatformSettings(_ context.Context) (domain.PlatformSettings, error) {
	s.settingsMu.RLock()
	defer s.settingsMu.RUnlock()
	return s.settings, nil
}

func (s *MemoryStore) UpdatePlatformSettings(_ context.Context, fn func(*domain.PlatformSettings)) (domain.PlatformSettings, error) {
	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()
	fn(&s.settings)
	return s.settings, nil
}

func (s *MemoryStore) CreateCategory(_ context.Context, category *domain.Category) error {
	return s.write(category.RestaurantID, domain.ErrInvalidReference, func(p *partition) error {
		category.ID = s.nextID()
		p.categories[category.ID] = *category
		return nil
	})
}

func (s *MemoryStore) GetCategory(_ context.Context, restaurantID, categoryID int) (*domain.Category, error) {
	var category domain.Category
	err := s.read(restaurantID, domain.ErrNotFound, func(p *partition) error {
		c, ok := p.categories[categoryID]
		if !ok {
			return domain.ErrNotFound
		}
		category = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *MemoryStore) ListCategories(_ context.Context, restaurantID int) ([]domain.Category, error) {
	var categories []domain.Category
	err := s.read(restaurantID, domain.ErrNotFound, func(p *partition) error {
		categories = make([]domain.Category, 0, len(p.categories))
		for _, c := range p.categories {
			categories = append(categories, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortCategories(categories)
	return categories, nil
}

func (s *MemoryStore) UpdateCategory(_ context.Context, restaurantID, categoryID int, fn func(*domain.Category) error) (*domain.Category, error) {
	var updated domain.Category
	err := s.write(restaurantID, domain.ErrNotFound, func(p *partition) error {
		current, ok := p.categories[categoryID]
		if !ok {
			return domain.ErrNotFound
		}
		draft := current
		if err := fn(&draft); err != nil {
			return err
		}
		if draft.ID != current.ID || draft.RestaurantID != current.RestaurantID {
			return fmt.Errorf("%w: category owner is immutable", domain.ErrInvalidOperation)
		}
		p.categories[categoryID] = draft
		updated = draft
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *MemoryStore) DeleteCategory(_ context.Context, restaurantID, categoryID int) (int, error) {
	removed := 0
	err := s.write(restaurantID, domain.ErrNotFound, func(p *partition) error {
		if _, ok := p.categories[categoryID]; !ok {
			return domain.ErrNotFound
		}
		for id, dish := range p.dishes {
			if dish.CategoryID == categoryID {
				delete(p.dishes, id)
				removed++
			}
		}
		delete(p.categories, categoryID)
		return nil
	})
	return removed, err
}

func (s *MemoryStore) CreateDish(_ context.Context, dish *domain.Dish, maxDishes int) error {
	return s.write(dish.RestaurantID, domain.ErrInvalidReference, func(p *partition) error {
		if _, ok := p.categories[dish.CategoryID]; !ok {
			return fmt.Errorf("%w: category %d", domain.ErrInvalidReference, dish.CategoryID)
		}
		if maxDishes > 0 && len(p.dishes) >= maxDishes {
			return fmt.Errorf("%w: plan allows at most %d dishes", domain.ErrForbidden, maxDishes)
		}
		dish.ID = s.nextID()
		p.dishes[dish.ID] = cloneDish(*dish)
		return nil
	})
}

func (s *MemoryStore) GetDish(_ context.Context, restaurantID, dishID int) (*domain.Dish, error) {
	var dish domain.Dish
	err := s.read(restaurantID, domain.ErrNotFound, func(p *partition) error {
		d, ok := p.dishes[dishID]
		if !ok {
			return domain.ErrNotFound
		}
		dish = cloneDish(d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dish, nil
}

func (s *MemoryStore) ListDishes(_ context.Context, restaurantID int) ([]domain.Dish, error) {
	var dishes []domain.Dish
	err := s.read(restaurantID, domain.ErrNotFound, func(p *partition) error {
		dishes = make([]domain.Dish, 0, len(p.dishes))
		for _, d := range p.dishes {
			dishes = append(dishes, cloneDish(d))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(dishes, func(i, j int) bool { return dishes[i].ID < dishes[j].ID })
	return dishes, nil
}

func (s *MemoryStore) UpdateDish(_ context.Context, restaurantID, dishID int, fn func(*domain.Dish) error) (*domain.Dish, error) {
	var updated domain.Dish
	err := s.write(restaurantID, domain.ErrNotFound, func(p *partition) error {
		current, ok := p.dishes[dishID]
		if !ok {
			return domain.ErrNotFound
		}
		draft := cloneDish(current)
		if err := fn(&draft); err != nil {
			return err
		}
		if draft.ID != current.ID || draft.RestaurantID != current.RestaurantID {
			return fmt.Errorf("%w: dish owner is immutable", domain.ErrInvalidOperation)
		}
		if _, ok := p.categories[draft.CategoryID]; !ok {
			return fmt.Errorf("%w: category %d", domain.ErrInvalidReference, draft.CategoryID)
		}
		p.dishes[dishID] = draft
		updated = cloneDish(draft)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *MemoryStore) DeleteDish(_ context.Context, restaurantID, dishID int) error {
	return s.write(restaurantID, domain.ErrNotFound, func(p *partition) error {
		if _, ok := p.dishes[dishID]; !ok {
			return domain.ErrNotFound
		}
		delete(p.dishes, dishID)
		return nil
	})
}

func (s *MemoryStore) CreateOrder(_ context.Context, order *domain.Order) error {
	return s.write(order.RestaurantID, domain.ErrInvalidReference, func(p *partition) error {
		p.orderSeq++
		order.ID = s.nextID()
		order.OrderNumber = fmt.Sprintf("ORD-%d", p.orderSeq)
		if order.CreatedAt.IsZero() {
			order.CreatedAt = time.Now().UTC()
		}
		p.orders[order.ID] = cloneOrder(*order)
		return nil
	})
}

func (s *MemoryStore) GetOrder(_ context.Context, restaurantID, orderID int) (*domain.Order, error) {
	var order domain.Order
	err := s.read(restaurantID, domain.ErrNotFound, func(p *partition) error {
		o, ok := p.orders[orderID]
		if !ok {
			return domain.ErrNotFound
		}
		order = cloneOrder(o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *MemoryStore) ListOrders(_ context.Context, restaurantID int, status domain.OrderStatus) ([]domain.Order, error) {
	var orders []domain.Order
	err := s.read(restaurantID, domain.ErrNotFound, func(p *partition) error {
		orders = make([]domain.Order, 0, len(p.orders))
		for _, o := range p.orders {
			if status == "" || o.Status == status {
				orders = append(orders, cloneOrder(o))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortOrders(orders)
	return orders, nil
}

func (s *MemoryStore) UpdateOrder(_ context.Context, restaurantID, orderID int, fn func(*domain.Order) error) (*domain.Order, error) {
	var updated domain.Order
	err := s.write(restaurantID, domain.ErrNotFound, func(p *partition) error {
		current, ok := p.orders[orderID]
		if !ok {
			return domain.ErrNotFound
		}
		draft := cloneOrder(current)
		if err := fn(&draft); err != nil {
			return err
		}
		if draft.ID != current.ID || draft.RestaurantID != current.RestaurantID {
			return fmt.Errorf("%w: order owner is immutable", domain.ErrInvalidOperation)
		}
		p.orders[orderID] = draft
		updated = cloneOrder(draft)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *MemoryStore) CreateReservation(_ context.Context, res *domain.Reservation) error {
	return s.write(res.RestaurantID, domain.ErrInvalidReference, func(p *partition) error {
		res.ID = s.nextID()
		if res.CreatedAt.IsZero() {
			res.CreatedAt = time.Now().UTC()
		}
		p.reservations[res.ID] = *res
		return nil
	})
}

func (s *MemoryStore) GetReservation(_ context.Context, restaurantID, reservationID int) (*domain.Reservation, error) {
	var res domain.Reservation
	err := s.read(restaurantID, domain.ErrNotFound, func(p *partition) error {
		r, ok := p.reservations[reservationID]
		if !ok {
			return domain.ErrNotFound
		}
		res = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *MemoryStore) ListReservations(_ context.Context, restaurantID int, status domain.ReservationStatus) ([]domain.Reservation, error) {
	return s.filterReservations(restaurantID, func(r domain.Reservation) bool {
		return status == "" || r.Status == status
	})
}

func (s *MemoryStore) FindReservationsByPhone(_ context.Context, restaurantID int, phone string) ([]domain.Reservation, error) {
	return s.filterReservations(restaurantID, func(r domain.Reservation) bool {
		return r.CustomerPhone == phone
	})
}

func (s *MemoryStore) filterReservations(restaurantID int, keep func(domain.Reservation) bool) ([]domain.Reservation, error) {
	var reservations []domain.Reservation
	err := s.read(restaurantID, domain.ErrNotFound, func(p *partition) error {
		reservations = make([]domain.Reservation, 0, len(p.reservations))
		for _, r := range p.reservations {
			if keep(r) {
				reservations = append(reservations, r)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortReservations(reservations)
	return reservations, nil
}

func (s *MemoryStore) UpdateReservation(_ context.Context, restaurantID, reservationID int, fn func(*domain.Reservation) error) (*domain.Reservation, error) {
	var updated domain.Reservation
	err := s.write(restaurantID, domain.ErrNotFound, func(p *partition) error {
		current, ok := p.reservations[reservationID]
		if !ok {
			return domain.ErrNotFound
		}
		draft := current
		if err := fn(&draft); err != nil {
			return err
		}
		if draft.ID != current.ID || draft.RestaurantID != current.RestaurantID {
			return fmt.Errorf("%w: reservation owner is immutable", domain.ErrInvalidOperation)
		}
		p.reservations[reservationID] = draft
		updated = draft
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *MemoryStore) CreateRating(_ context.Context, rating *domain.Rating) error {
	return s.write(rating.RestaurantID, domain.ErrInvalidReference, func(p *partition) error {
		if rating.DishID != nil {
			if _, ok := p.dishes[*rating.DishID]; !ok {
				return fmt.Errorf("%w: dish %d", domain.ErrInvalidReference, *rating.DishID)
			}
		}
		rating.ID = s.nextID()
		if rating.CreatedAt.IsZero() {
			rating.CreatedAt = time.Now().UTC()
		}
		p.ratings[rating.ID] = cloneRating(*rating)
		return nil
	})
}

func (s *MemoryStore) GetRating(_ context.Context, restaurantID, ratingID int) (*domain.Rating, error) {
	var rating domain.Rating
	err := s.read(restaurantID, domain.ErrNotFound, func(p *partition) error {
		r, ok := p.ratings[ratingID]
		if !ok {
			return domain.ErrNotFound
		}
		rating = cloneRating(r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

func (s *MemoryStore) ListRatings(_ context.Context, restaurantID int, approvedOnly bool) ([]domain.Rating, error) {
	var ratings []domain.Rating
	err := s.read(restaurantID, domain.ErrNotFound, func(p *partition) error {
		ratings = make([]domain.Rating, 0, len(p.ratings))
		for _, r := range p.ratings {
			if !approvedOnly || r.IsApproved {
				ratings = append(ratings, cloneRating(r))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortRatings(ratings)
	return ratings, nil
}

func (s *MemoryStore) UpdateRating(_ context.Context, restaurantID, ratingID int, fn func(*domain.Rating) error) (*domain.Rating, error) {
	var updated domain.Rating
	err := s.write(restaurantID, domain.ErrNotFound, func(p *partition) error {
		current, ok := p.ratings[ratingID]
		if !ok {
			return domain.ErrNotFound
		}
		draft := cloneRating(current)
		if err := fn(&draft); err != nil {
			return err
		}
		if draft.ID != current.ID || draft.RestaurantID != current.RestaurantID {
			return fmt.Errorf("%w: rating owner is immutable", domain.ErrInvalidOperation)
		}
		p.ratings[ratingID] = draft
		updated = cloneRating(draft)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *MemoryStore) DeleteRating(_ context.Context, restaurantID, ratingID int) (*domain.Rating, error) {
	var removed domain.Rating
	err := s.write(restaurantID, domain.ErrNotFound, func(p *partition) error {
		r, ok := p.ratings[ratingID]
		if !ok {
			return domain.ErrNotFound
		}
		delete(p.ratings, ratingID)
		removed = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &removed, nil
}

func sortCategories(categories []domain.Category) {
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].SortOrder != categories[j].SortOrder {
			return categories[i].SortOrder < categories[j].SortOrder
		}
		return categories[i].ID < categories[j].ID
	})
}

func sortOrders(orders []domain.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID > orders[j].ID
	})
}

func sortReservations(reservations []domain.Reservation) {
	sort.Slice(reservations, func(i, j int) bool {
		a, b := reservations[i], reservations[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		return a.ID < b.ID
	})
}

func sortRatings(ratings []domain.Rating) {
	sort.Slice(ratings, func(i, j int) bool {
		if !ratings[i].CreatedAt.Equal(ratings[j].CreatedAt) {
			return ratings[i].CreatedAt.After(ratings[j].CreatedAt)
		}
		return ratings[i].ID > ratings[j].ID
	})
}

func cloneRestaurant(r domain.Restaurant) domain.Restaurant {
	if r.SocialLinks != nil {
		r.SocialLinks = append([]domain.SocialLink(nil), r.SocialLinks...)
	}
	if r.ReservationSettings != nil {
		settings := *r.ReservationSettings
		r.ReservationSettings = &settings
	}
	return r
}

func cloneDish(d domain.Dish) domain.Dish {
	if d.Allergens != nil {
		d.Allergens = append([]string(nil), d.Allergens...)
	}
	return d
}

func cloneOrder(o domain.Order) domain.Order {
	o.Items = append([]domain.OrderItem(nil), o.Items...)
	return o
}

func cloneRating(r domain.Rating) domain.Rating {
	if r.DishID != nil {
		id := *r.DishID
		r.DishID = &id
	}
	return r
}

// orderSequence extracts n from an "ORD-<n>" order number.
func orderSequence(orderNumber string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimPrefix(orderNumber, "ORD-"))
	if err != nil || !strings.HasPrefix(orderNumber, "ORD-") {
		return 0, false
	}
	return n, true
}
