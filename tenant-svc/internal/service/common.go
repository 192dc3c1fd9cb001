package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sop-platform/logger"
	"sop-platform/metrics"
	"sop-platform/tenant-svc/internal/domain"
)

// Options carries the optional collaborators shared by the services.
type Options struct {
	Events   EventPublisher
	Metrics  *metrics.Business
	Now      func() time.Time
	Location *time.Location
}

func (o Options) now() time.Time {
	loc := o.Location
	if loc == nil {
		loc = time.UTC
	}
	if o.Now != nil {
		return o.Now().In(loc)
	}
	return time.Now().In(loc)
}

// publish delivers an event after the mutation has been stored. Failures are
// logged and never undo the mutation.
func (o Options) publish(ctx context.Context, event domain.Event) {
	if o.Events == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = o.now().UTC()
	}
	if err := o.Events.Publish(ctx, event); err != nil {
		logger.FromContext(ctx).Warn("failed to publish event",
			zap.String("type", event.Type),
			zap.Int("restaurant_id", event.RestaurantID),
			zap.Error(err),
		)
	}
}

// tenant loads a restaurant with its plan and checks that it may use feature.
// An empty feature skips the gate.
func tenant(ctx context.Context, repo RestaurantRepository, gate *Gate, restaurantID int, feature Feature) (*domain.Restaurant, domain.SubscriptionPlan, error) {
	rest, err := repo.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, domain.SubscriptionPlan{}, err
	}
	plan, err := gate.Plan(rest.PlanID)
	if err != nil {
		return nil, domain.SubscriptionPlan{}, err
	}
	if feature != "" {
		if err := gate.Require(plan, feature); err != nil {
			return nil, domain.SubscriptionPlan{}, err
		}
	}
	return rest, plan, nil
}

// activeTenant is tenant for customer-facing writes, which a suspended or
// expired restaurant no longer accepts.
func activeTenant(ctx context.Context, repo RestaurantRepository, gate *Gate, restaurantID int, feature Feature) (*domain.Restaurant, domain.SubscriptionPlan, error) {
	rest, plan, err := tenant(ctx, repo, gate, restaurantID, feature)
	if err != nil {
		return nil, plan, err
	}
	if rest.Status != domain.RestaurantActive {
		return nil, plan, fmt.Errorf("%w: restaurant is %s", domain.ErrForbidden, rest.Status)
	}
	return rest, plan, nil
}

// asReference turns a missing parent into an invalid reference.
func asReference(err error, what string, id int) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: %s %d", domain.ErrInvalidReference, what, id)
	}
	return err
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrValidationFailed, fmt.Sprintf(format, args...))
}
