package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sop-platform/tenant-svc/internal/domain"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"

	defaultAdvanceBookingDays = 7
	defaultMaxGuests          = 10
	minutesPerDay             = 24 * 60
)

type ReservationRequest struct {
	CustomerName  string `json:"customerName"`
	CustomerPhone string `json:"customerPhone"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Guests        int    `json:"guests"`
}

type ReservationServiceInterface interface {
	Create(ctx context.Context, restaurantID int, req ReservationRequest) (*domain.Reservation, error)
	Get(ctx context.Context, restaurantID, reservationID int) (*domain.Reservation, error)
	List(ctx context.Context, restaurantID int, status domain.ReservationStatus) ([]domain.Reservation, error)
	FindByPhone(ctx context.Context, restaurantID int, phone string) ([]domain.Reservation, error)
	Transition(ctx context.Context, restaurantID, reservationID int, next domain.ReservationStatus) (*domain.Reservation, error)
	AvailableSlots(ctx context.Context, restaurantID int, date string) ([]string, error)
}

type ReservationService struct {
	store Store
	gate  *Gate
	opts  Options
}

func NewReservationService(store Store, gate *Gate, opts Options) *ReservationService {
	return &ReservationService{store: store, gate: gate, opts: opts}
}

// window is a daily opening range in minutes since midnight. An end before the
// start wraps past midnight.
type window struct {
	start, span int
}

func parseClock(value string) (int, error) {
	t, err := time.Parse(clockLayout, value)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

func newWindow(rs domain.ReservationSettings) (window, error) {
	start, err := parseClock(rs.StartTime)
	if err != nil {
		return window{}, fmt.Errorf("%w: bad startTime %q", domain.ErrValidationFailed, rs.StartTime)
	}
	end, err := parseClock(rs.EndTime)
	if err != nil {
		return window{}, fmt.Errorf("%w: bad endTime %q", domain.ErrValidationFailed, rs.EndTime)
	}
	return window{start: start, span: (end - start + minutesPerDay) % minutesPerDay}, nil
}

func (w window) contains(minute int) bool {
	return (minute-w.start+minutesPerDay)%minutesPerDay <= w.span
}

func (w window) slots(step int) []string {
	slots := []string{}
	if step <= 0 {
		return slots
	}
	for offset := 0; offset <= w.span; offset += step {
		m := (w.start + offset) % minutesPerDay
		slots = append(slots, fmt.Sprintf("%02d:%02d", m/60, m%60))
	}
	return slots
}

// enabledSettings returns the reservation settings with the customer-menu
// defaults applied.
func enabledSettings(rest *domain.Restaurant) (domain.ReservationSettings, error) {
	if rest.ReservationSettings == nil || !rest.ReservationSettings.IsEnabled {
		return domain.ReservationSettings{}, fmt.Errorf("%w: reservations are not enabled", domain.ErrFeatureDisabled)
	}
	rs := *rest.ReservationSettings
	if rs.AdvanceBookingDays == 0 {
		rs.AdvanceBookingDays = defaultAdvanceBookingDays
	}
	if rs.MaxGuests == 0 {
		rs.MaxGuests = defaultMaxGuests
	}
	return rs, nil
}

// checkDate accepts dates in [today, today+horizon] in the service location.
func (s *ReservationService) checkDate(date string, horizon int) error {
	now := s.opts.now()
	day, err := time.ParseInLocation(dateLayout, date, now.Location())
	if err != nil {
		return validationError("date %q must be YYYY-MM-DD", date)
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	last := today.AddDate(0, 0, horizon)
	if day.Before(today) {
		return validationError("date %s is in the past", date)
	}
	if day.After(last) {
		return validationError("date %s is more than %d days ahead", date, horizon)
	}
	return nil
}

func (s *ReservationService) Create(ctx context.Context, restaurantID int, req ReservationRequest) (*domain.Reservation, error) {
	rest, _, err := activeTenant(ctx, s.store, s.gate, restaurantID, FeatureReservations)
	if err != nil {
		return nil, err
	}
	rs, err := enabledSettings(rest)
	if err != nil {
		return nil, err
	}
	if err := s.checkDate(req.Date, rs.AdvanceBookingDays); err != nil {
		return nil, err
	}
	w, err := newWindow(rs)
	if err != nil {
		return nil, err
	}
	minute, err := parseClock(req.Time)
	if err != nil {
		return nil, validationError("time %q must be HH:MM", req.Time)
	}
	if !w.contains(minute) {
		return nil, validationError("time %s is outside %s-%s", req.Time, rs.StartTime, rs.EndTime)
	}
	if req.Guests < 1 || req.Guests > rs.MaxGuests {
		return nil, validationError("guests must be between 1 and %d", rs.MaxGuests)
	}

	res := &domain.Reservation{
		RestaurantID:  restaurantID,
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		Date:          req.Date,
		Time:          req.Time,
		Guests:        req.Guests,
		Status:        domain.ReservationPending,
		CreatedAt:     s.opts.now().UTC(),
	}
	if err := s.store.CreateReservation(ctx, res); err != nil {
		return nil, err
	}

	s.opts.Metrics.ReservationCreated()
	s.opts.publish(ctx, domain.Event{
		Type:         domain.EventReservationCreated,
		RestaurantID: restaurantID,
		Status:       string(res.Status),
		Timestamp:    res.CreatedAt,
	})
	return res, nil
}

func (s *ReservationService) Get(ctx context.Context, restaurantID, reservationID int) (*domain.Reservation, error) {
	return s.store.GetReservation(ctx, restaurantID, reservationID)
}

func (s *ReservationService) List(ctx context.Context, restaurantID int, status domain.ReservationStatus) ([]domain.Reservation, error) {
	if status != "" && !status.Valid() {
		return nil, validationError("unknown reservation status %q", status)
	}
	return s.store.ListReservations(ctx, restaurantID, status)
}

func (s *ReservationService) FindByPhone(ctx context.Context, restaurantID int, phone string) ([]domain.Reservation, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, validationError("phone is required")
	}
	return s.store.FindReservationsByPhone(ctx, restaurantID, phone)
}

func (s *ReservationService) Transition(ctx context.Context, restaurantID, reservationID int, next domain.ReservationStatus) (*domain.Reservation, error) {
	return s.store.UpdateReservation(ctx, restaurantID, reservationID, func(r *domain.Reservation) error {
		if !r.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, r.Status, next)
		}
		r.Status = next
		return nil
	})
}

// AvailableSlots lists the bookable start times of date, stepping through the
// opening window by the slot duration.
func (s *ReservationService) AvailableSlots(ctx context.Context, restaurantID int, date string) ([]string, error) {
	rest, _, err := tenant(ctx, s.store, s.gate, restaurantID, FeatureReservations)
	if err != nil {
		return nil, err
	}
	rs, err := enabledSettings(rest)
	if err != nil {
		return nil, err
	}
	if err := s.checkDate(date, rs.AdvanceBookingDays); err != nil {
		return nil, err
	}
	w, err := newWindow(rs)
	if err != nil {
		return nil, err
	}
	return w.slots(rs.SlotDuration), nil
}

var _ ReservationServiceInterface = (*ReservationService)(nil)
