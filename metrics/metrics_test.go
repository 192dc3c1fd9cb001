package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestHTTPMetrics_UsesRouteTemplate(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics("tenant-svc", reg)

	r := mux.NewRouter()
	r.Use(m.Middleware)
	r.HandleFunc("/api/restaurants/{restaurantId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, id := range []string{"1", "2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/restaurants/"+id, nil))
	}

	count := testutil.ToFloat64(m.requests.WithLabelValues("tenant-svc", "GET", "/api/restaurants/{restaurantId}", "418"))
	assert.Equal(t, float64(2), count)
}

func TestBusiness_NilIsNoop(t *testing.T) {
	var b *Business
	assert.NotPanics(t, func() {
		b.OrderCreated("basic")
		b.OrderTransitioned("ready")
		b.ReservationCreated()
		b.RatingSubmitted()
	})
}

func TestHandler_ExposesCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	b := NewBusiness(reg)
	b.OrderTransitioned("completed")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `order_transitions_total{status="completed"} 1`))
}
