package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"sop-platform/tenant-svc/internal/domain"
)

const (
	defaultCurrency   = "ر.س"
	defaultThemeColor = "#2563eb"
	defaultFont       = "Cairo"
)

var (
	slugPattern  = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	nonSlug      = regexp.MustCompile(`[^a-z0-9]+`)
	clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

// Registration is the self-service sign-up payload.
type Registration struct {
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Logo     string `json:"logo"`
	Currency string `json:"currency"`
	PlanID   int    `json:"planId"`
}

type RestaurantServiceInterface interface {
	Register(ctx context.Context, reg Registration) (*domain.Restaurant, error)
	Get(ctx context.Context, id int) (*domain.Restaurant, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Restaurant, error)
	List(ctx context.Context) ([]domain.Restaurant, error)
	UpdateProfile(ctx context.Context, id int, patch domain.RestaurantPatch) (*domain.Restaurant, error)
	UpdateAdmin(ctx context.Context, id int, patch domain.AdminPatch) (*domain.Restaurant, error)
	Delete(ctx context.Context, id int) error
	PublicMenu(ctx context.Context, slug string) (*domain.Menu, error)
	Plans() []domain.SubscriptionPlan
	PlatformSettings(ctx context.Context) (domain.PlatformSettings, error)
	UpdatePlatformSettings(ctx context.Context, patch domain.PlatformSettingsPatch) (domain.PlatformSettings, error)
	Summary(ctx context.Context, id int) (*domain.Summary, error)
	AdvancedStats(ctx context.Context, id int) (*domain.AdvancedStats, error)
	MenuQRCode(ctx context.Context, id int) ([]byte, error)
}

type RestaurantService struct {
	store Store
	gate  *Gate
	stats StatsReader
	qr    QRGenerator
	opts  Options
}

func NewRestaurantService(store Store, gate *Gate, stats StatsReader, qr QRGenerator, opts Options) *RestaurantService {
	return &RestaurantService{store: store, gate: gate, stats: stats, qr: qr, opts: opts}
}

// Slugify derives a URL slug from a restaurant name. Characters outside
// a-z and 0-9 are dropped, so a name without any yields "".
func Slugify(name string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

func generatedSlug() string {
	return "restaurant-" + uuid.NewString()[:8]
}

func (s *RestaurantService) Register(ctx context.Context, reg Registration) (*domain.Restaurant, error) {
	name := strings.TrimSpace(reg.Name)
	if name == "" {
		return nil, validationError("name is required")
	}
	slug := reg.Slug
	if slug == "" {
		slug = Slugify(name)
	}
	if slug == "" {
		slug = generatedSlug()
	}
	if !slugPattern.MatchString(slug) {
		return nil, validationError("slug %q must contain only lower-case letters, digits and dashes", slug)
	}
	if _, err := s.gate.Plan(reg.PlanID); err != nil {
		return nil, err
	}

	rest := &domain.Restaurant{
		Name:        name,
		Slug:        slug,
		Logo:        reg.Logo,
		PlanID:      reg.PlanID,
		Status:      domain.RestaurantActive,
		Address:     reg.Address,
		Phone:       reg.Phone,
		Email:       reg.Email,
		Currency:    reg.Currency,
		ThemeColor:  defaultThemeColor,
		FontFamily:  defaultFont,
		SocialLinks: []domain.SocialLink{},
		CreatedAt:   s.opts.now().UTC(),
	}
	if rest.Currency == "" {
		rest.Currency = defaultCurrency
	}
	if err := s.store.CreateRestaurant(ctx, rest); err != nil {
		return nil, err
	}
	return rest, nil
}

func (s *RestaurantService) Get(ctx context.Context, id int) (*domain.Restaurant, error) {
	return s.store.GetRestaurant(ctx, id)
}

// GetBySlug resolves a customer-facing link. Only active restaurants are
// visible to customers.
func (s *RestaurantService) GetBySlug(ctx context.Context, slug string) (*domain.Restaurant, error) {
	rest, err := s.store.GetRestaurantBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if rest.Status != domain.RestaurantActive {
		return nil, domain.ErrNotFound
	}
	return rest, nil
}

func (s *RestaurantService) List(ctx context.Context) ([]domain.Restaurant, error) {
	return s.store.ListRestaurants(ctx)
}

func (s *RestaurantService) UpdateProfile(ctx context.Context, id int, patch domain.RestaurantPatch) (*domain.Restaurant, error) {
	if patch.TouchesDesign() {
		if _, _, err := tenant(ctx, s.store, s.gate, id, FeatureCustomDesign); err != nil {
			return nil, err
		}
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, validationError("name must not be empty")
	}
	if patch.ReservationSettings != nil {
		if err := validateReservationSettings(*patch.ReservationSettings); err != nil {
			return nil, err
		}
	}
	return s.store.UpdateRestaurant(ctx, id, func(r *domain.Restaurant) error {
		patch.Apply(r)
		return nil
	})
}

func (s *RestaurantService) UpdateAdmin(ctx context.Context, id int, patch domain.AdminPatch) (*domain.Restaurant, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, validationError("unknown status %q", *patch.Status)
	}
	if patch.PlanID != nil {
		if _, err := s.gate.Plan(*patch.PlanID); err != nil {
			return nil, err
		}
	}
	return s.store.UpdateRestaurant(ctx, id, func(r *domain.Restaurant) error {
		if patch.Status != nil {
			r.Status = *patch.Status
		}
		if patch.PlanID != nil {
			r.PlanID = *patch.PlanID
		}
		return nil
	})
}

func (s *RestaurantService) Delete(ctx context.Context, id int) error {
	if err := s.store.DeleteRestaurant(ctx, id); err != nil {
		return err
	}
	s.opts.publish(ctx, domain.Event{Type: domain.EventRestaurantDeleted, RestaurantID: id})
	return nil
}

func (s *RestaurantService) PublicMenu(ctx context.Context, slug string) (*domain.Menu, error) {
	rest, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	categories, err := s.store.ListCategories(ctx, rest.ID)
	if err != nil {
		return nil, err
	}
	dishes, err := s.store.ListDishes(ctx, rest.ID)
	if err != nil {
		return nil, err
	}

	available := make([]domain.Dish, 0, len(dishes))
	for _, d := range dishes {
		if d.IsAvailable {
			available = append(available, d)
		}
	}
	return &domain.Menu{Restaurant: *rest, Categories: categories, Dishes: available}, nil
}

func (s *RestaurantService) Plans() []domain.SubscriptionPlan {
	return s.gate.Plans()
}

func (s *RestaurantService) PlatformSettings(ctx context.Context) (domain.PlatformSettings, error) {
	return s.store.GetPlatformSettings(ctx)
}

func (s *RestaurantService) UpdatePlatformSettings(ctx context.Context, patch domain.PlatformSettingsPatch) (domain.PlatformSettings, error) {
	return s.store.UpdatePlatformSettings(ctx, patch.Apply)
}

// Summary collects the dashboard cards available on every plan.
func (s *RestaurantService) Summary(ctx context.Context, id int) (*domain.Summary, error) {
	_, plan, err := tenant(ctx, s.store, s.gate, id, "")
	if err != nil {
		return nil, err
	}
	orders, err := s.store.ListOrders(ctx, id, "")
	if err != nil {
		return nil, err
	}
	reservations, err := s.store.ListReservations(ctx, id, domain.ReservationPending)
	if err != nil {
		return nil, err
	}
	ratings, err := s.store.ListRatings(ctx, id, true)
	if err != nil {
		return nil, err
	}
	dishes, err := s.store.ListDishes(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.opts.now()
	today := now.Format(dateLayout)
	summary := &domain.Summary{
		PendingReservations: len(reservations),
		ApprovedRatings:     len(ratings),
		Dishes:              len(dishes),
		MaxDishes:           plan.MaxDishes,
	}
	for _, o := range orders {
		if o.CreatedAt.In(now.Location()).Format(dateLayout) == today {
			summary.OrdersToday++
		}
		switch o.Status {
		case domain.OrderPending:
			summary.PendingOrders++
		case domain.OrderCompleted:
			summary.CompletedRevenue += o.Total
		}
	}
	summary.AverageRating = averageRating(ratings)
	return summary, nil
}

func (s *RestaurantService) AdvancedStats(ctx context.Context, id int) (*domain.AdvancedStats, error) {
	if _, _, err := tenant(ctx, s.store, s.gate, id, FeatureAdvancedStats); err != nil {
		return nil, err
	}
	if s.stats == nil {
		return &domain.AdvancedStats{
			TopDishes:          []domain.DishScore{},
			Daily:              []domain.DailyStat{},
			StatusCounts:       map[string]int64{},
			RatingDistribution: map[string]int64{},
		}, nil
	}
	return s.stats.AdvancedStats(ctx, id, statsWindowDays)
}

func (s *RestaurantService) MenuQRCode(ctx context.Context, id int) ([]byte, error) {
	rest, _, err := tenant(ctx, s.store, s.gate, id, FeatureQRCode)
	if err != nil {
		return nil, err
	}
	if s.qr == nil {
		return nil, fmt.Errorf("qr generator is not configured")
	}
	return s.qr.Generate(rest.Slug)
}

const statsWindowDays = 7

// validateReservationSettings checks the window only when reservations are
// switched on; disabling them needs no opening hours.
func validateReservationSettings(rs domain.ReservationSettings) error {
	if !rs.IsEnabled {
		return nil
	}
	if !clockPattern.MatchString(rs.StartTime) || !clockPattern.MatchString(rs.EndTime) {
		return validationError("startTime and endTime must be HH:MM")
	}
	if rs.StartTime == rs.EndTime {
		return validationError("startTime and endTime must differ")
	}
	if rs.SlotDuration <= 0 {
		return validationError("slotDuration must be positive")
	}
	if rs.MaxGuests < 0 || rs.AdvanceBookingDays < 0 {
		return validationError("maxGuests and advanceBookingDays must not be negative")
	}
	return nil
}

var _ RestaurantServiceInterface = (*RestaurantService)(nil)
