package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"sop-platform/logger"
	"sop-platform/tenant-svc/internal/domain"
	"sop-platform/tenant-svc/internal/service"
)

const (
	TenantHeader = "X-Restaurant-ID"
	AdminHeader  = "X-Admin-Key"
)

type Handler struct {
	Restaurants  service.RestaurantServiceInterface
	Menu         service.MenuServiceInterface
	Orders       service.OrderServiceInterface
	Reservations service.ReservationServiceInterface
	Ratings      service.RatingServiceInterface
	Assistant    service.AssistantServiceInterface
	AdminKey     string
}

func NewHandler(
	restaurants service.RestaurantServiceInterface,
	menu service.MenuServiceInterface,
	orders service.OrderServiceInterface,
	reservations service.ReservationServiceInterface,
	ratings service.RatingServiceInterface,
	assistant service.AssistantServiceInterface,
	adminKey string,
) *Handler {
	return &Handler{
		Restaurants:  restaurants,
		Menu:         menu,
		Orders:       orders,
		Reservations: reservations,
		Ratings:      ratings,
		Assistant:    assistant,
		AdminKey:     adminKey,
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")
	r.HandleFunc("/api/plans", h.getPlans).Methods("GET")
	r.HandleFunc("/api/platform-settings", h.getPlatformSettings).Methods("GET")

	public := r.NewRoute().Subrouter()
	public.Use(h.maintenance)
	public.HandleFunc("/api/restaurants", h.registerRestaurant).Methods("POST")
	public.HandleFunc("/api/menu/{slug}", h.getPublicMenu).Methods("GET")
	public.HandleFunc("/api/menu/{slug}/ratings", h.getPublicRatings).Methods("GET")
	public.HandleFunc("/api/menu/{slug}/ratings", h.submitRating).Methods("POST")
	public.HandleFunc("/api/menu/{slug}/orders", h.createOrder).Methods("POST")
	public.HandleFunc("/api/menu/{slug}/reservations", h.createReservation).Methods("POST")
	public.HandleFunc("/api/menu/{slug}/reservations", h.findReservationsByPhone).Methods("GET")
	public.HandleFunc("/api/menu/{slug}/slots", h.getSlots).Methods("GET")

	tenant := r.PathPrefix("/api/restaurants/{restaurantId:[0-9]+}").Subrouter()
	tenant.Use(h.tenantAuth)
	tenant.HandleFunc("", h.getRestaurant).Methods("GET")
	tenant.HandleFunc("", h.updateProfile).Methods("PATCH")
	tenant.HandleFunc("/summary", h.getSummary).Methods("GET")
	tenant.HandleFunc("/stats", h.getAdvancedStats).Methods("GET")
	tenant.HandleFunc("/qrcode", h.getMenuQRCode).Methods("GET")

	tenant.HandleFunc("/categories", h.createCategory).Methods("POST")
	tenant.HandleFunc("/categories", h.getCategories).Methods("GET")
	tenant.HandleFunc("/categories/{categoryId:[0-9]+}", h.getCategory).Methods("GET")
	tenant.HandleFunc("/categories/{categoryId:[0-9]+}", h.updateCategory).Methods("PATCH")
	tenant.HandleFunc("/categories/{categoryId:[0-9]+}", h.deleteCategory).Methods("DELETE")

	tenant.HandleFunc("/dishes", h.createDish).Methods("POST")
	tenant.HandleFunc("/dishes", h.getDishes).Methods("GET")
	tenant.HandleFunc("/dishes/{dishId:[0-9]+}", h.getDish).Methods("GET")
	tenant.HandleFunc("/dishes/{dishId:[0-9]+}", h.updateDish).Methods("PATCH")
	tenant.HandleFunc("/dishes/{dishId:[0-9]+}", h.deleteDish).Methods("DELETE")

	tenant.HandleFunc("/orders", h.getOrders).Methods("GET")
	tenant.HandleFunc("/orders/{orderId:[0-9]+}", h.getOrder).Methods("GET")
	tenant.HandleFunc("/orders/{orderId:[0-9]+}/status", h.transitionOrder).Methods("PATCH")

	tenant.HandleFunc("/reservations", h.getReservations).Methods("GET")
	tenant.HandleFunc("/reservations/{reservationId:[0-9]+}", h.getReservation).Methods("GET")
	tenant.HandleFunc("/reservations/{reservationId:[0-9]+}/status", h.transitionReservation).Methods("PATCH")

	tenant.HandleFunc("/ratings", h.getRatings).Methods("GET")
	tenant.HandleFunc("/ratings/{ratingId:[0-9]+}/approval", h.setRatingApproval).Methods("PATCH")
	tenant.HandleFunc("/ratings/{ratingId:[0-9]+}", h.deleteRating).Methods("DELETE")

	tenant.HandleFunc("/assistant/description", h.suggestDescription).Methods("POST")
	tenant.HandleFunc("/assistant/ask", h.ask).Methods("POST")

	admin := r.PathPrefix("/api/admin").Subrouter()
	admin.Use(h.adminAuth)
	admin.HandleFunc("/restaurants", h.getRestaurants).Methods("GET")
	admin.HandleFunc("/restaurants/{restaurantId:[0-9]+}", h.updateRestaurantAdmin).Methods("PATCH")
	admin.HandleFunc("/restaurants/{restaurantId:[0-9]+}", h.deleteRestaurant).Methods("DELETE")
	admin.HandleFunc("/platform-settings", h.updatePlatformSettings).Methods("PATCH")
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "tenant-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decodeJSON rejects unknown keys so a typo never becomes a silent no-op.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidReference), errors.Is(err, domain.ErrValidationFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrFeatureDisabled):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidOperation):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, "internal error", status)
		return
	}
	http.Error(w, err.Error(), status)
}

func pathInt(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil {
		return 0, fmt.Errorf("%w: bad %s", domain.ErrInvalidOperation, name)
	}
	return id, nil
}

// tenantID is the restaurant id of a dashboard route.
func tenantID(r *http.Request) int {
	id, _ := strconv.Atoi(mux.Vars(r)["restaurantId"])
	return id
}

// slugTenant resolves the customer-facing slug to an active restaurant.
func (h *Handler) slugTenant(w http.ResponseWriter, r *http.Request) (*domain.Restaurant, bool) {
	rest, err := h.Restaurants.GetBySlug(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return rest, true
}

func (h *Handler) getPlans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Restaurants.Plans())
}

func (h *Handler) getPlatformSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Restaurants.PlatformSettings(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *Handler) registerRestaurant(w http.ResponseWriter, r *http.Request) {
	var reg service.Registration
	if err := decodeJSON(r, &reg); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rest, err := h.Restaurants.Register(r.Context(), reg)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Info("restaurant registered",
		zap.Int("restaurant_id", rest.ID), zap.String("slug", rest.Slug))
	writeJSON(w, http.StatusCreated, rest)
}

func (h *Handler) getPublicMenu(w http.ResponseWriter, r *http.Request) {
	menu, err := h.Restaurants.PublicMenu(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, menu)
}

func (h *Handler) getPublicRatings(w http.ResponseWriter, r *http.Request) {
	rest, ok := h.slugTenant(w, r)
	if !ok {
		return
	}
	ratings, err := h.Ratings.ListApproved(r.Context(), rest.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ratings)
}

func (h *Handler) submitRating(w http.ResponseWriter, r *http.Request) {
	rest, ok := h.slugTenant(w, r)
	if !ok {
		return
	}
	var req service.RatingRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rating, err := h.Ratings.Submit(r.Context(), rest.ID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rating)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	rest, ok := h.slugTenant(w, r)
	if !ok {
		return
	}
	var req service.OrderRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid JSON format: "+err.Error(), http.StatusBadRequest)
		return
	}
	order, err := h.Orders.Create(r.Context(), rest.ID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Info("order created",
		zap.Int("restaurant_id", rest.ID), zap.String("order_number", order.OrderNumber))
	writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) createReservation(w http.ResponseWriter, r *http.Request) {
	rest, ok := h.slugTenant(w, r)
	if !ok {
		return
	}
	var req service.ReservationRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := h.Reservations.Create(r.Context(), rest.ID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) findReservationsByPhone(w http.ResponseWriter, r *http.Request) {
	rest, ok := h.slugTenant(w, r)
	if !ok {
		return
	}
	reservations, err := h.Reservations.FindByPhone(r.Context(), rest.ID, r.URL.Query().Get("phone"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reservations)
}

func (h *Handler) getSlots(w http.ResponseWriter, r *http.Request) {
	rest, ok := h.slugTenant(w, r)
	if !ok {
		return
	}
	slots, err := h.Reservations.AvailableSlots(r.Context(), rest.ID, r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, slots)
}

func (h *Handler) getRestaurant(w http.ResponseWriter, r *http.Request) {
	rest, err := h.Restaurants.Get(r.Context(), tenantID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rest)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var patch domain.RestaurantPatch
	if err := decodeJSON(r, &patch); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rest, err := h.Restaurants.UpdateProfile(r.Context(), tenantID(r), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rest)
}

func (h *Handler) getSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Restaurants.Summary(r.Context(), tenantID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) getAdvancedStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Restaurants.AdvancedStats(r.Context(), tenantID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) getMenuQRCode(w http.ResponseWriter, r *http.Request) {
	png, err := h.Restaurants.MenuQRCode(r.Context(), tenantID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var category domain.Category
	if err := decodeJSON(r, &category); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := claimOwnership(&category.RestaurantID, tenantID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	category.ID = 0
	if err := h.Menu.CreateCategory(r.Context(), &category); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (h *Handler) getCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Menu.ListCategories(r.Context(), tenantID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *Handler) getCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := pathInt(r, "categoryId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	category, err := h.Menu.GetCategory(r.Context(), tenantID(r), categoryID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := pathInt(r, "categoryId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var patch domain.CategoryPatch
	if err := decodeJSON(r, &patch); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	category, err := h.Menu.UpdateCategory(r.Context(), tenantID(r), categoryID, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := pathInt(r, "categoryId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	removed, err := h.Menu.DeleteCategory(r.Context(), tenantID(r), categoryID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Info("category deleted",
		zap.Int("category_id", categoryID), zap.Int("dishes_removed", removed))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) createDish(w http.ResponseWriter, r *http.Request) {
	var dish domain.Dish
	if err := decodeJSON(r, &dish); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := claimOwnership(&dish.RestaurantID, tenantID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	dish.ID = 0
	if err := h.Menu.CreateDish(r.Context(), &dish); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dish)
}

func (h *Handler) getDishes(w http.ResponseWriter, r *http.Request) {
	dishes, err := h.Menu.ListDishes(r.Context(), tenantID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dishes)
}

func (h *Handler) getDish(w http.ResponseWriter, r *http.Request) {
	dishID, err := pathInt(r, "dishId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	dish, err := h.Menu.GetDish(r.Context(), tenantID(r), dishID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dish)
}

func (h *Handler) updateDish(w http.ResponseWriter, r *http.Request) {
	dishID, err := pathInt(r, "dishId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var patch domain.DishPatch
	if err := decodeJSON(r, &patch); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	dish, err := h.Menu.UpdateDish(r.Context(), tenantID(r), dishID, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dish)
}

func (h *Handler) deleteDish(w http.ResponseWriter, r *http.Request) {
	dishID, err := pathInt(r, "dishId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Menu.DeleteDish(r.Context(), tenantID(r), dishID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) getOrders(w http.ResponseWriter, r *http.Request) {
	status := domain.OrderStatus(r.URL.Query().Get("status"))
	orders, err := h.Orders.List(r.Context(), tenantID(r), status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathInt(r, "orderId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	order, err := h.Orders.Get(r.Context(), tenantID(r), orderID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) transitionOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathInt(r, "orderId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	order, err := h.Orders.Transition(r.Context(), tenantID(r), orderID, domain.OrderStatus(req.Status))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) getReservations(w http.ResponseWriter, r *http.Request) {
	var (
		reservations []domain.Reservation
		err          error
	)
	if phone := r.URL.Query().Get("phone"); phone != "" {
		reservations, err = h.Reservations.FindByPhone(r.Context(), tenantID(r), phone)
	} else {
		status := domain.ReservationStatus(r.URL.Query().Get("status"))
		reservations, err = h.Reservations.List(r.Context(), tenantID(r), status)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reservations)
}

func (h *Handler) getReservation(w http.ResponseWriter, r *http.Request) {
	reservationID, err := pathInt(r, "reservationId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.Reservations.Get(r.Context(), tenantID(r), reservationID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) transitionReservation(w http.ResponseWriter, r *http.Request) {
	reservationID, err := pathInt(r, "reservationId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := h.Reservations.Transition(r.Context(), tenantID(r), reservationID, domain.ReservationStatus(req.Status))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) getRatings(w http.ResponseWriter, r *http.Request) {
	ratings, err := h.Ratings.ListAll(r.Context(), tenantID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ratings)
}

func (h *Handler) setRatingApproval(w http.ResponseWriter, r *http.Request) {
	ratingID, err := pathInt(r, "ratingId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req struct {
		Approved *bool `json:"approved"`
	}
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Approved == nil {
		http.Error(w, "approved is required", http.StatusBadRequest)
		return
	}
	rating, err := h.Ratings.SetApproval(r.Context(), tenantID(r), ratingID, *req.Approved)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rating)
}

func (h *Handler) deleteRating(w http.ResponseWriter, r *http.Request) {
	ratingID, err := pathInt(r, "ratingId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Ratings.Delete(r.Context(), tenantID(r), ratingID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) suggestDescription(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DishName string `json:"dishName"`
	}
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": h.Assistant.SuggestDescription(r.Context(), req.DishName)})
}

func (h *Handler) ask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
	}
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": h.Assistant.Ask(r.Context(), req.Question)})
}

func (h *Handler) getRestaurants(w http.ResponseWriter, r *http.Request) {
	restaurants, err := h.Restaurants.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, restaurants)
}

func (h *Handler) updateRestaurantAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "restaurantId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var patch domain.AdminPatch
	if err := decodeJSON(r, &patch); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rest, err := h.Restaurants.UpdateAdmin(r.Context(), id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rest)
}

func (h *Handler) deleteRestaurant(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "restaurantId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Restaurants.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Info("restaurant deleted", zap.Int("restaurant_id", id))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) updatePlatformSettings(w http.ResponseWriter, r *http.Request) {
	var patch domain.PlatformSettingsPatch
	if err := decodeJSON(r, &patch); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	settings, err := h.Restaurants.UpdatePlatformSettings(r.Context(), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// claimOwnership sets the owner of a new record to the path tenant. A body
// naming another tenant is rejected.
func claimOwnership(owner *int, restaurantID int) error {
	if *owner != 0 && *owner != restaurantID {
		return fmt.Errorf("%w: restaurantId does not match the path", domain.ErrInvalidOperation)
	}
	*owner = restaurantID
	return nil
}
