package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const tracerName = "storefront/service"

var (
	corruptRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_corrupt_records_total",
			Help: "Total number of persisted records that failed to decode and were replaced by defaults",
		},
		[]string{"record"},
	)

	storageWriteFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_storage_write_failures_total",
			Help: "Total number of record writes rejected by the storage backend",
		},
		[]string{"record"},
	)

	cartMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cart_mutations_total",
			Help: "Total number of persisted cart mutations by operation",
		},
		[]string{"operation"},
	)

	catalogMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_catalog_mutations_total",
			Help: "Total number of persisted catalog mutations by operation",
		},
		[]string{"operation"},
	)

	ordersPlacedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_orders_placed_total",
			Help: "Total number of simulated orders placed by payment method",
		},
		[]string{"payment_method"},
	)
)
