package service

import (
	"context"
	"math"
	"strings"

	"sop-platform/tenant-svc/internal/domain"
)

type RatingRequest struct {
	DishID       *int   `json:"dishId"`
	CustomerName string `json:"customerName"`
	Rating       int    `json:"rating"`
	Comment      string `json:"comment"`
}

type RatingServiceInterface interface {
	Submit(ctx context.Context, restaurantID int, req RatingRequest) (*domain.Rating, error)
	SetApproval(ctx context.Context, restaurantID, ratingID int, approved bool) (*domain.Rating, error)
	Delete(ctx context.Context, restaurantID, ratingID int) error
	ListApproved(ctx context.Context, restaurantID int) ([]domain.Rating, error)
	ListAll(ctx context.Context, restaurantID int) ([]domain.Rating, error)
}

type RatingService struct {
	store Store
	gate  *Gate
	opts  Options
}

func NewRatingService(store Store, gate *Gate, opts Options) *RatingService {
	return &RatingService{store: store, gate: gate, opts: opts}
}

// Submit stores a customer rating. New ratings stay hidden until approved.
func (s *RatingService) Submit(ctx context.Context, restaurantID int, req RatingRequest) (*domain.Rating, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, validationError("rating must be between 1 and 5")
	}
	if _, _, err := activeTenant(ctx, s.store, s.gate, restaurantID, ""); err != nil {
		return nil, err
	}
	if req.DishID != nil {
		if _, err := s.store.GetDish(ctx, restaurantID, *req.DishID); err != nil {
			return nil, asReference(err, "dish", *req.DishID)
		}
	}

	rating := &domain.Rating{
		RestaurantID: restaurantID,
		DishID:       req.DishID,
		CustomerName: strings.TrimSpace(req.CustomerName),
		Rating:       req.Rating,
		Comment:      strings.TrimSpace(req.Comment),
		IsApproved:   false,
		CreatedAt:    s.opts.now().UTC(),
	}
	if err := s.store.CreateRating(ctx, rating); err != nil {
		return nil, err
	}
	s.opts.Metrics.RatingSubmitted()
	return rating, nil
}

// SetApproval is idempotent; an event is published only when visibility
// actually changes.
func (s *RatingService) SetApproval(ctx context.Context, restaurantID, ratingID int, approved bool) (*domain.Rating, error) {
	changed := false
	rating, err := s.store.UpdateRating(ctx, restaurantID, ratingID, func(r *domain.Rating) error {
		changed = r.IsApproved != approved
		r.IsApproved = approved
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		eventType := domain.EventRatingHidden
		if approved {
			eventType = domain.EventRatingApproved
		}
		s.publishRating(ctx, eventType, rating)
	}
	return rating, nil
}

func (s *RatingService) Delete(ctx context.Context, restaurantID, ratingID int) error {
	removed, err := s.store.DeleteRating(ctx, restaurantID, ratingID)
	if err != nil {
		return err
	}
	if removed.IsApproved {
		s.publishRating(ctx, domain.EventRatingHidden, removed)
	}
	return nil
}

func (s *RatingService) ListApproved(ctx context.Context, restaurantID int) ([]domain.Rating, error) {
	return s.store.ListRatings(ctx, restaurantID, true)
}

func (s *RatingService) ListAll(ctx context.Context, restaurantID int) ([]domain.Rating, error) {
	return s.store.ListRatings(ctx, restaurantID, false)
}

func (s *RatingService) publishRating(ctx context.Context, eventType string, r *domain.Rating) {
	s.opts.publish(ctx, domain.Event{
		Type:         eventType,
		RestaurantID: r.RestaurantID,
		RatingID:     r.ID,
		Rating:       r.Rating,
	})
}

// averageRating is rounded to one decimal, 0 when there are no ratings.
func averageRating(ratings []domain.Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Rating
	}
	return math.Round(float64(sum)/float64(len(ratings))*10) / 10
}

var _ RatingServiceInterface = (*RatingService)(nil)
