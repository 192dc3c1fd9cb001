package httpapi

import (
	"crypto/subtle"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"sop-platform/logger"
)

// tenantAuth admits dashboard calls whose X-Restaurant-ID names the tenant in
// the path. Login is mocked, so this is an isolation check and not security.
func (h *Handler) tenantAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(TenantHeader) != mux.Vars(r)["restaurantId"] {
			logger.FromContext(r.Context()).Warn("cross-tenant access rejected",
				zap.String("header", r.Header.Get(TenantHeader)),
				zap.String("path", r.URL.Path))
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) adminAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(AdminHeader)
		if h.AdminKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(h.AdminKey)) != 1 {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// maintenance turns customer-facing routes away while the platform is in
// maintenance mode.
func (h *Handler) maintenance(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		settings, err := h.Restaurants.PlatformSettings(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		if settings.IsMaintenanceMode {
			http.Error(w, "platform is under maintenance", http.StatusServiceUnavailable)
			return
		}
		next.ServeHTTP(w, r)
	})
}
