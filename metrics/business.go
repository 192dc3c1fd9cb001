package metrics

import "github.com/prometheus/client_golang/prometheus"

// Business holds the domain counters of tenant-svc. A nil *Business is a no-op.
type Business struct {
	ordersCreated       *prometheus.CounterVec
	orderTransitions    *prometheus.CounterVec
	reservationsCreated prometheus.Counter
	ratingsSubmitted    prometheus.Counter
}

func NewBusiness(reg prometheus.Registerer) *Business {
	b := &Business{
		ordersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Orders accepted, by restaurant plan tier",
		}, []string{"tier"}),
		orderTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "order_transitions_total",
			Help: "Order status transitions, by target status",
		}, []string{"status"}),
		reservationsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reservations_created_total",
			Help: "Reservations accepted",
		}),
		ratingsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ratings_submitted_total",
			Help: "Ratings submitted by customers",
		}),
	}
	reg.MustRegister(b.ordersCreated, b.orderTransitions, b.reservationsCreated, b.ratingsSubmitted)
	return b
}

func (b *Business) OrderCreated(tier string) {
	if b != nil {
		b.ordersCreated.WithLabelValues(tier).Inc()
	}
}

func (b *Business) OrderTransitioned(status string) {
	if b != nil {
		b.orderTransitions.WithLabelValues(status).Inc()
	}
}

func (b *Business) ReservationCreated() {
	if b != nil {
		b.reservationsCreated.Inc()
	}
}

func (b *Business) RatingSubmitted() {
	if b != nil {
		b.ratingsSubmitted.Inc()
	}
}
