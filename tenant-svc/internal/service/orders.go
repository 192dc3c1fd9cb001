package service

import (
	"context"
	"fmt"
	"strings"

	"sop-platform/tenant-svc/internal/domain"
)

// OrderRequest is a checkout. Item prices are snapshots taken by the caller
// and are never re-priced from the catalog.
type OrderRequest struct {
	CustomerName  string             `json:"customerName"`
	CustomerPhone string             `json:"customerPhone"`
	Items         []domain.OrderItem `json:"items"`
}

type OrderServiceInterface interface {
	Create(ctx context.Context, restaurantID int, req OrderRequest) (*domain.Order, error)
	Get(ctx context.Context, restaurantID, orderID int) (*domain.Order, error)
	List(ctx context.Context, restaurantID int, status domain.OrderStatus) ([]domain.Order, error)
	Transition(ctx context.Context, restaurantID, orderID int, next domain.OrderStatus) (*domain.Order, error)
}

type OrderService struct {
	store Store
	gate  *Gate
	opts  Options
}

func NewOrderService(store Store, gate *Gate, opts Options) *OrderService {
	return &OrderService{store: store, gate: gate, opts: opts}
}

// OrderTotal is the sum of price times quantity over all items.
func OrderTotal(items []domain.OrderItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

func (s *OrderService) Create(ctx context.Context, restaurantID int, req OrderRequest) (*domain.Order, error) {
	if len(req.Items) == 0 {
		return nil, validationError("order must contain at least one item")
	}
	for i, item := range req.Items {
		if item.Quantity < 1 {
			return nil, validationError("item %d: quantity must be at least 1", i)
		}
		if item.Price < 0 {
			return nil, validationError("item %d: price must not be negative", i)
		}
	}

	_, plan, err := activeTenant(ctx, s.store, s.gate, restaurantID, FeatureOrders)
	if err != nil {
		return nil, err
	}

	items := make([]domain.OrderItem, len(req.Items))
	for i, item := range req.Items {
		dish, err := s.store.GetDish(ctx, restaurantID, item.DishID)
		if err != nil {
			return nil, asReference(err, "dish", item.DishID)
		}
		if !dish.IsAvailable {
			return nil, validationError("dish %d is not available", item.DishID)
		}
		if strings.TrimSpace(item.DishName) == "" {
			item.DishName = dish.Name
		}
		items[i] = item
	}

	order := &domain.Order{
		RestaurantID:  restaurantID,
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		Items:         items,
		Total:         OrderTotal(items),
		Status:        domain.OrderPending,
		CreatedAt:     s.opts.now().UTC(),
	}
	if err := s.store.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	s.opts.Metrics.OrderCreated(string(plan.Tier))
	s.opts.publish(ctx, domain.Event{
		Type:         domain.EventOrderCreated,
		RestaurantID: restaurantID,
		OrderID:      order.ID,
		Status:       string(order.Status),
		Total:        order.Total,
		Items:        order.Items,
		Timestamp:    order.CreatedAt,
	})
	return order, nil
}

func (s *OrderService) Get(ctx context.Context, restaurantID, orderID int) (*domain.Order, error) {
	return s.store.GetOrder(ctx, restaurantID, orderID)
}

func (s *OrderService) List(ctx context.Context, restaurantID int, status domain.OrderStatus) ([]domain.Order, error) {
	if status != "" && !status.Valid() {
		return nil, validationError("unknown order status %q", status)
	}
	return s.store.ListOrders(ctx, restaurantID, status)
}

// Transition moves an order along its lifecycle. The check and the write run
// in the same critical section, so a rejected edge leaves the order untouched.
func (s *OrderService) Transition(ctx context.Context, restaurantID, orderID int, next domain.OrderStatus) (*domain.Order, error) {
	order, err := s.store.UpdateOrder(ctx, restaurantID, orderID, func(o *domain.Order) error {
		if !o.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, o.Status, next)
		}
		o.Status = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.opts.Metrics.OrderTransitioned(string(next))
	s.opts.publish(ctx, domain.Event{
		Type:         domain.EventOrderStatusChanged,
		RestaurantID: restaurantID,
		OrderID:      order.ID,
		Status:       string(order.Status),
		Total:        order.Total,
	})
	return order, nil
}

var _ OrderServiceInterface = (*OrderService)(nil)
