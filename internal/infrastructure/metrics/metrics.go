package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	LeaseOperationList   = "list"
	LeaseOperationGet    = "get"
	LeaseOperationCreate = "create"
	LeaseOperationUpdate = "update"
	LeaseOperationDelete = "delete"

	ClientHandleCreated      = "created"
	ClientHandleReused       = "reused"
	ClientHandleUnconfigured = "unconfigured"
)

var (
	ReservationRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lease_dashboard_reservation_requests_total",
			Help: "Total number of requests sent to the reservation service",
		},
		[]string{"operation", "status"},
	)

	ReservationRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lease_dashboard_reservation_request_duration_seconds",
			Help:    "Duration of reservation service requests in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"operation"},
	)

	ClientHandles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lease_dashboard_client_handles_total",
			Help: "Reservation client handle lookups by outcome",
		},
		[]string{"result"},
	)

	CacheOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lease_dashboard_cache_operations_total",
			Help: "Total number of cache operations",
		},
		[]string{"operation", "status"},
	)
)

func init() {
	prometheus.MustRegister(ReservationRequests)
	prometheus.MustRegister(ReservationRequestDuration)
	prometheus.MustRegister(ClientHandles)
	prometheus.MustRegister(CacheOperations)
}
