package service

import (
	"context"
	"strings"

	"sop-platform/tenant-svc/internal/domain"
)

type MenuServiceInterface interface {
	CreateCategory(ctx context.Context, category *domain.Category) error
	ListCategories(ctx context.Context, restaurantID int) ([]domain.Category, error)
	GetCategory(ctx context.Context, restaurantID, categoryID int) (*domain.Category, error)
	UpdateCategory(ctx context.Context, restaurantID, categoryID int, patch domain.CategoryPatch) (*domain.Category, error)
	DeleteCategory(ctx context.Context, restaurantID, categoryID int) (int, error)

	CreateDish(ctx context.Context, dish *domain.Dish) error
	ListDishes(ctx context.Context, restaurantID int) ([]domain.Dish, error)
	GetDish(ctx context.Context, restaurantID, dishID int) (*domain.Dish, error)
	UpdateDish(ctx context.Context, restaurantID, dishID int, patch domain.DishPatch) (*domain.Dish, error)
	DeleteDish(ctx context.Context, restaurantID, dishID int) error
}

type MenuService struct {
	store Store
	gate  *Gate
}

func NewMenuService(store Store, gate *Gate) *MenuService {
	return &MenuService{store: store, gate: gate}
}

func (s *MenuService) CreateCategory(ctx context.Context, category *domain.Category) error {
	if err := validateCategory(*category); err != nil {
		return err
	}
	if _, err := s.store.GetRestaurant(ctx, category.RestaurantID); err != nil {
		return asReference(err, "restaurant", category.RestaurantID)
	}
	return s.store.CreateCategory(ctx, category)
}

func (s *MenuService) ListCategories(ctx context.Context, restaurantID int) ([]domain.Category, error) {
	return s.store.ListCategories(ctx, restaurantID)
}

func (s *MenuService) GetCategory(ctx context.Context, restaurantID, categoryID int) (*domain.Category, error) {
	return s.store.GetCategory(ctx, restaurantID, categoryID)
}

func (s *MenuService) UpdateCategory(ctx context.Context, restaurantID, categoryID int, patch domain.CategoryPatch) (*domain.Category, error) {
	return s.store.UpdateCategory(ctx, restaurantID, categoryID, func(c *domain.Category) error {
		if err := patch.Apply(c); err != nil {
			return err
		}
		return validateCategory(*c)
	})
}

// DeleteCategory removes the category together with its dishes and returns
// how many dishes went with it.
func (s *MenuService) DeleteCategory(ctx context.Context, restaurantID, categoryID int) (int, error) {
	return s.store.DeleteCategory(ctx, restaurantID, categoryID)
}

func (s *MenuService) CreateDish(ctx context.Context, dish *domain.Dish) error {
	if err := validateDish(*dish); err != nil {
		return err
	}
	_, plan, err := tenant(ctx, s.store, s.gate, dish.RestaurantID, "")
	if err != nil {
		return asReference(err, "restaurant", dish.RestaurantID)
	}
	return s.store.CreateDish(ctx, dish, plan.MaxDishes)
}

func (s *MenuService) ListDishes(ctx context.Context, restaurantID int) ([]domain.Dish, error) {
	return s.store.ListDishes(ctx, restaurantID)
}

func (s *MenuService) GetDish(ctx context.Context, restaurantID, dishID int) (*domain.Dish, error) {
	return s.store.GetDish(ctx, restaurantID, dishID)
}

func (s *MenuService) UpdateDish(ctx context.Context, restaurantID, dishID int, patch domain.DishPatch) (*domain.Dish, error) {
	return s.store.UpdateDish(ctx, restaurantID, dishID, func(d *domain.Dish) error {
		if err := patch.Apply(d); err != nil {
			return err
		}
		return validateDish(*d)
	})
}

func (s *MenuService) DeleteDish(ctx context.Context, restaurantID, dishID int) error {
	return s.store.DeleteDish(ctx, restaurantID, dishID)
}

func validateCategory(c domain.Category) error {
	if strings.TrimSpace(c.Name) == "" {
		return validationError("category name is required")
	}
	return nil
}

func validateDish(d domain.Dish) error {
	switch {
	case strings.TrimSpace(d.Name) == "":
		return validationError("dish name is required")
	case d.Price < 0:
		return validationError("price must not be negative")
	case d.PreparationTime < 0:
		return validationError("preparationTime must not be negative")
	}
	return nil
}

var _ MenuServiceInterface = (*MenuService)(nil)
