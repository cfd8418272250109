package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/gauges for the booking workflow and snapshot streams.
type BookingMetrics struct {
	bookingsCreated     *prometheus.CounterVec
	statusTransitions   *prometheus.CounterVec
	activeSubscriptions *prometheus.GaugeVec
	snapshotsDelivered  *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookingsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medical_booking",
			Subsystem: "bookings",
			Name:      "created_total",
			Help:      "Total booking creation attempts by outcome",
		}, []string{"outcome"}),
		statusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medical_booking",
			Subsystem: "bookings",
			Name:      "status_transitions_total",
			Help:      "Total booking status updates by actor, target status and outcome",
		}, []string{"actor", "status", "outcome"}),
		activeSubscriptions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "medical_booking",
			Subsystem: "realtime",
			Name:      "active_subscriptions",
			Help:      "Open snapshot subscriptions",
		}, []string{"stream"}),
		snapshotsDelivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medical_booking",
			Subsystem: "realtime",
			Name:      "snapshots_delivered_total",
			Help:      "Total snapshots pushed to stream clients",
		}, []string{"stream"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsCreated, m.statusTransitions, m.activeSubscriptions, m.snapshotsDelivered)
	return m
}

func (m *BookingMetrics) ObserveCreate(outcome string) {
	if m == nil {
		return
	}
	m.bookingsCreated.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveTransition(actor, status, outcome string) {
	if m == nil {
		return
	}
	m.statusTransitions.WithLabelValues(actor, status, outcome).Inc()
}

func (m *BookingMetrics) SubscriptionOpened(stream string) {
	if m == nil {
		return
	}
	m.activeSubscriptions.WithLabelValues(stream).Inc()
}

func (m *BookingMetrics) SubscriptionClosed(stream string) {
	if m == nil {
		return
	}
	m.activeSubscriptions.WithLabelValues(stream).Dec()
}

func (m *BookingMetrics) ObserveSnapshot(stream string) {
	if m == nil {
		return
	}
	m.snapshotsDelivered.WithLabelValues(stream).Inc()
}
