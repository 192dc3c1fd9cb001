package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/cors"

	"sop-platform/logger"
	"sop-platform/metrics"
)

func NewRouter(handler *Handler, httpMetrics *metrics.HTTPMetrics, gatherer prometheus.Gatherer) http.Handler {
	r := mux.NewRouter()
	r.Use(logger.Middleware)
	if httpMetrics != nil {
		r.Use(httpMetrics.Middleware)
	}
	if gatherer != nil {
		r.Handle("/metrics", metrics.Handler(gatherer)).Methods("GET")
	}
	handler.RegisterRoutes(r)

	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", TenantHeader, AdminHeader, logger.RequestIDHeader},
		ExposedHeaders: []string{logger.RequestIDHeader},
	}).Handler(r)
}

func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
