package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	httpapi "sop-platform/tenant-svc/internal/api/http"
	"sop-platform/tenant-svc/internal/domain"
	"sop-platform/tenant-svc/internal/service"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAdminKey = "admin-secret"

func newTestRouter(p *platform, adminKey string) *mux.Router {
	handler := httpapi.NewHandler(p.restaurants, p.menu, p.orders, p.reservations, p.ratings,
		service.NewAssistantService(nil), adminKey)
	r := mux.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func do(r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func asTenant(id int) map[string]string {
	return map[string]string{httpapi.TenantHeader: strconv.Itoa(id)}
}

func TestRegisterRestaurantHandler(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{
			name:     "valid request",
			body:     `{"name":"Al Sharq","planId":2}`,
			wantCode: http.StatusCreated,
		},
		{
			name:     "invalid JSON",
			body:     `{invalid}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "unknown field",
			body:     `{"name":"Al Sharq","planId":2,"isAdmin":true}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "unknown plan",
			body:     `{"name":"Al Sharq","planId":7}`,
			wantCode: http.StatusUnprocessableEntity,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			r := newTestRouter(newPlatform(t), testAdminKey)
			w := do(r, "POST", "/api/restaurants", testCase.body, nil)
			assert.Equal(t, testCase.wantCode, w.Code)
		})
	}
}

func TestRegisterDuplicateSlugHandler(t *testing.T) {
	r := newTestRouter(newPlatform(t), testAdminKey)

	w := do(r, "POST", "/api/restaurants", `{"name":"Al Sharq","planId":1}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var rest domain.Restaurant
	require.NoError(t, json.NewDecoder(w.Body).Decode(&rest))
	assert.Equal(t, "al-sharq", rest.Slug)

	w = do(r, "POST", "/api/restaurants", `{"name":"al sharq","planId":1}`, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTenantAuthHandler(t *testing.T) {
	p := newPlatform(t)
	rest := p.register(t, "guarded", 1)
	other := p.register(t, "intruder", 1)
	r := newTestRouter(p, testAdminKey)
	path := fmt.Sprintf("/api/restaurants/%d", rest.ID)

	tests := []struct {
		name     string
		headers  map[string]string
		wantCode int
	}{
		{name: "no header", headers: nil, wantCode: http.StatusForbidden},
		{name: "other tenant", headers: asTenant(other.ID), wantCode: http.StatusForbidden},
		{name: "own tenant", headers: asTenant(rest.ID), wantCode: http.StatusOK},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			w := do(r, "GET", path, "", testCase.headers)
			assert.Equal(t, testCase.wantCode, w.Code)
		})
	}
}

func TestOrderFlowHandler(t *testing.T) {
	p := newPlatform(t)
	rest := p.register(t, "kitchen", 3)
	dish := p.addDish(t, rest.ID, "Hummus", 15)
	r := newTestRouter(p, testAdminKey)

	body := fmt.Sprintf(`{"customerName":"Sara","customerPhone":"050","items":[{"dishId":%d,"quantity":2,"price":15}]}`, dish.ID)
	w := do(r, "POST", "/api/menu/kitchen/orders", body, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var order domain.Order
	require.NoError(t, json.NewDecoder(w.Body).Decode(&order))
	assert.Equal(t, 30.0, order.Total)
	assert.Equal(t, "ORD-1001", order.OrderNumber)

	statusPath := fmt.Sprintf("/api/restaurants/%d/orders/%d/status", rest.ID, order.ID)

	w = do(r, "PATCH", statusPath, `{"status":"completed"}`, asTenant(rest.ID))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(r, "PATCH", statusPath, `{"status":"preparing"}`, asTenant(rest.ID))
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, "GET", fmt.Sprintf("/api/restaurants/%d/orders?status=preparing", rest.ID), "", asTenant(rest.ID))
	require.Equal(t, http.StatusOK, w.Code)
	var orders []domain.Order
	require.NoError(t, json.NewDecoder(w.Body).Decode(&orders))
	assert.Len(t, orders, 1)

	w = do(r, "GET", fmt.Sprintf("/api/restaurants/%d/orders/999999", rest.ID), "", asTenant(rest.ID))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, "POST", "/api/menu/nowhere/orders", body, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestErrorMappingHandler(t *testing.T) {
	p := newPlatform(t)
	basic := p.register(t, "basic-place", 1)
	p.enableReservations(t, basic.ID, domain.ReservationSettings{StartTime: "12:00", EndTime: "23:00", SlotDuration: 60, MaxGuests: 10})
	category := &domain.Category{RestaurantID: basic.ID, Name: "Mains"}
	require.NoError(t, p.menu.CreateCategory(context.Background(), category))
	r := newTestRouter(p, testAdminKey)
	base := fmt.Sprintf("/api/restaurants/%d", basic.ID)

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		headers  map[string]string
		wantCode int
	}{
		{
			name:     "too many guests",
			method:   "POST",
			path:     "/api/menu/basic-place/reservations",
			body:     `{"customerName":"S","customerPhone":"055","date":"2024-05-02","time":"19:00","guests":12}`,
			wantCode: http.StatusUnprocessableEntity,
		},
		{
			name:     "design on basic plan",
			method:   "PATCH",
			path:     base,
			body:     `{"themeColor":"#000000"}`,
			headers:  asTenant(basic.ID),
			wantCode: http.StatusForbidden,
		},
		{
			name:     "qr code on basic plan",
			method:   "GET",
			path:     base + "/qrcode",
			headers:  asTenant(basic.ID),
			wantCode: http.StatusForbidden,
		},
		{
			name:     "dish for another tenant",
			method:   "POST",
			path:     base + "/dishes",
			body:     fmt.Sprintf(`{"restaurantId":%d,"categoryId":%d,"name":"x","price":1}`, basic.ID+100, category.ID),
			headers:  asTenant(basic.ID),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "dish with unknown category",
			method:   "POST",
			path:     base + "/dishes",
			body:     `{"categoryId":999999,"name":"x","price":1}`,
			headers:  asTenant(basic.ID),
			wantCode: http.StatusUnprocessableEntity,
		},
		{
			name:     "unknown field in patch",
			method:   "PATCH",
			path:     base,
			body:     `{"planId":3}`,
			headers:  asTenant(basic.ID),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "approval without value",
			method:   "PATCH",
			path:     base + "/ratings/1/approval",
			body:     `{}`,
			headers:  asTenant(basic.ID),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "unknown order status filter",
			method:   "GET",
			path:     base + "/orders?status=shipped",
			headers:  asTenant(basic.ID),
			wantCode: http.StatusUnprocessableEntity,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			w := do(r, testCase.method, testCase.path, testCase.body, testCase.headers)
			assert.Equal(t, testCase.wantCode, w.Code, w.Body.String())
		})
	}
}

func TestCategoryHandlers(t *testing.T) {
	p := newPlatform(t)
	rest := p.register(t, "categories", 1)
	r := newTestRouter(p, testAdminKey)
	base := fmt.Sprintf("/api/restaurants/%d", rest.ID)

	w := do(r, "POST", base+"/categories", `{"name":"Desserts","nameEn":"Desserts","sortOrder":3}`, asTenant(rest.ID))
	require.Equal(t, http.StatusCreated, w.Code)
	var category domain.Category
	require.NoError(t, json.NewDecoder(w.Body).Decode(&category))
	assert.Equal(t, rest.ID, category.RestaurantID)

	w = do(r, "POST", base+"/dishes", fmt.Sprintf(`{"categoryId":%d,"name":"Kunafa","price":20,"isAvailable":true}`, category.ID), asTenant(rest.ID))
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(r, "PATCH", fmt.Sprintf("%s/categories/%d", base, category.ID), `{"name":"Sweets"}`, asTenant(rest.ID))
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&category))
	assert.Equal(t, "Sweets", category.Name)

	w = do(r, "DELETE", fmt.Sprintf("%s/categories/%d", base, category.ID), "", asTenant(rest.ID))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, "GET", base+"/dishes", "", asTenant(rest.ID))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestMaintenanceModeHandler(t *testing.T) {
	p := newPlatform(t)
	rest := p.register(t, "open-late", 1)
	r := newTestRouter(p, testAdminKey)
	admin := map[string]string{httpapi.AdminHeader: testAdminKey}

	w := do(r, "PATCH", "/api/admin/platform-settings", `{"isMaintenanceMode":true}`, admin)
	require.Equal(t, http.StatusOK, w.Code)

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		headers  map[string]string
		wantCode int
	}{
		{name: "public menu", method: "GET", path: "/api/menu/open-late", wantCode: http.StatusServiceUnavailable},
		{name: "registration", method: "POST", path: "/api/restaurants", body: `{"name":"New","planId":1}`, wantCode: http.StatusServiceUnavailable},
		{name: "settings stay readable", method: "GET", path: "/api/platform-settings", wantCode: http.StatusOK},
		{name: "plans stay readable", method: "GET", path: "/api/plans", wantCode: http.StatusOK},
		{name: "dashboard keeps working", method: "GET", path: fmt.Sprintf("/api/restaurants/%d/summary", rest.ID), headers: asTenant(rest.ID), wantCode: http.StatusOK},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			w := do(r, testCase.method, testCase.path, testCase.body, testCase.headers)
			assert.Equal(t, testCase.wantCode, w.Code)
		})
	}

	w = do(r, "PATCH", "/api/admin/platform-settings", `{"isMaintenanceMode":false}`, admin)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(r, "GET", "/api/menu/open-late", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminAuthHandler(t *testing.T) {
	p := newPlatform(t)
	rest := p.register(t, "managed", 1)

	tests := []struct {
		name     string
		adminKey string
		header   string
		wantCode int
	}{
		{name: "missing key", adminKey: testAdminKey, header: "", wantCode: http.StatusForbidden},
		{name: "wrong key", adminKey: testAdminKey, header: "guess", wantCode: http.StatusForbidden},
		{name: "admin disabled", adminKey: "", header: "", wantCode: http.StatusForbidden},
		{name: "valid key", adminKey: testAdminKey, header: testAdminKey, wantCode: http.StatusOK},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			r := newTestRouter(p, testCase.adminKey)
			w := do(r, "GET", "/api/admin/restaurants", "", map[string]string{httpapi.AdminHeader: testCase.header})
			assert.Equal(t, testCase.wantCode, w.Code)
		})
	}

	r := newTestRouter(p, testAdminKey)
	admin := map[string]string{httpapi.AdminHeader: testAdminKey}

	w := do(r, "PATCH", fmt.Sprintf("/api/admin/restaurants/%d", rest.ID), `{"status":"expired"}`, admin)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(r, "GET", "/api/menu/managed", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, "PATCH", fmt.Sprintf("/api/admin/restaurants/%d", rest.ID), `{"status":"closed"}`, admin)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(r, "DELETE", fmt.Sprintf("/api/admin/restaurants/%d", rest.ID), "", admin)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(r, "DELETE", fmt.Sprintf("/api/admin/restaurants/%d", rest.ID), "", admin)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRatingHandlers(t *testing.T) {
	p := newPlatform(t)
	rest := p.register(t, "rated", 1)
	r := newTestRouter(p, testAdminKey)

	w := do(r, "POST", "/api/menu/rated/ratings", `{"customerName":"Ahmed","rating":5,"comment":"Great"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var rating domain.Rating
	require.NoError(t, json.NewDecoder(w.Body).Decode(&rating))

	w = do(r, "GET", "/api/menu/rated/ratings", "", nil)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = do(r, "PATCH", fmt.Sprintf("/api/restaurants/%d/ratings/%d/approval", rest.ID, rating.ID), `{"approved":true}`, asTenant(rest.ID))
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, "GET", "/api/menu/rated/ratings", "", nil)
	var visible []domain.Rating
	require.NoError(t, json.NewDecoder(w.Body).Decode(&visible))
	assert.Len(t, visible, 1)
}

func TestQRCodeHandler(t *testing.T) {
	p := newPlatform(t)
	rest := p.register(t, "scan-me", 2)
	r := newTestRouter(p, testAdminKey)

	w := do(r, "GET", fmt.Sprintf("/api/restaurants/%d/qrcode", rest.ID), "", asTenant(rest.ID))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))
}

func TestAssistantHandlerFallback(t *testing.T) {
	p := newPlatform(t)
	rest := p.register(t, "helper", 1)
	r := newTestRouter(p, testAdminKey)

	w := do(r, "POST", fmt.Sprintf("/api/restaurants/%d/assistant/description", rest.ID), `{"dishName":"Hummus"}`, asTenant(rest.ID))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), service.FallbackDescription))
}

func TestHealthCheck(t *testing.T) {
	r := newTestRouter(newPlatform(t), testAdminKey)
	w := do(r, "GET", "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}
